package nfo

import (
	"strconv"
	"strings"
	"time"

	"github.com/John-Robertt/NFOSaver/internal/nfo/tree"
)

// Field 是 writer 产出的一组同名元素。
//
// Elements 为空表示“该字段没有数据”：若 Tag 属于 saver 的 owned 集合，
// 已有文件里的同名元素会被删除。
type Field struct {
	Tag      string
	Elements []*tree.Element
}

// Fields 按写入顺序收集 Field（同一个 tag 多次写入会合并到第一次出现的位置）。
type Fields struct {
	order []string
	byTag map[string]*Field
}

func (f *Fields) field(tag string) *Field {
	if f.byTag == nil {
		f.byTag = map[string]*Field{}
	}
	if x, ok := f.byTag[tag]; ok {
		return x
	}
	x := &Field{Tag: tag}
	f.byTag[tag] = x
	f.order = append(f.order, tag)
	return x
}

// Declare 声明一个字段存在（即使没有值），用于让空值触发删除。
func (f *Fields) Declare(tag string) {
	f.field(tag)
}

// Text 写一个文本元素；value 去空白后为空则只声明。
func (f *Fields) Text(tag, value string) {
	x := f.field(tag)
	if v := strings.TrimSpace(value); v != "" {
		x.Elements = append(x.Elements, tree.NewLeaf(tag, v))
	}
}

// Texts 按顺序写多个同名文本元素（去空白、去重）。
func (f *Fields) Texts(tag string, values []string) {
	x := f.field(tag)
	for _, v := range normList(values) {
		x.Elements = append(x.Elements, tree.NewLeaf(tag, v))
	}
}

// Int 写整数；ok=false 时只声明。
func (f *Fields) Int(tag string, v int, ok bool) {
	if !ok {
		f.Declare(tag)
		return
	}
	f.Text(tag, strconv.Itoa(v))
}

// Float 写浮点（最短表示，避免 7.5 写成 7.500000）；v<=0 视为无值。
func (f *Fields) Float(tag string, v float64) {
	if v <= 0 {
		f.Declare(tag)
		return
	}
	f.Text(tag, strconv.FormatFloat(v, 'f', -1, 64))
}

// Bool 写 true/false。
func (f *Fields) Bool(tag string, v bool) {
	f.Text(tag, strconv.FormatBool(v))
}

// Date 按 layout 写日期；零值只声明。
func (f *Fields) Date(tag string, t time.Time, layout string) {
	if t.IsZero() {
		f.Declare(tag)
		return
	}
	f.Text(tag, t.Format(layout))
}

// Elem 追加一个已构造好的元素（tag 取自元素名）。
func (f *Fields) Elem(e *tree.Element) {
	if e == nil || e.Name == "" {
		return
	}
	x := f.field(e.Name)
	x.Elements = append(x.Elements, e)
}

// List 返回按首次写入顺序排列的字段。
func (f *Fields) List() []Field {
	out := make([]Field, 0, len(f.order))
	for _, tag := range f.order {
		out = append(out, *f.byTag[tag])
	}
	return out
}

func normList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	m := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := m[s]; ok {
			continue
		}
		m[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
