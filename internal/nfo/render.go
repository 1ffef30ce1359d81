// Package nfo 是 NFO 的序列化与合并引擎。
//
// 输入：已有文件内容（可能为空）+ 条目快照 + saver（Writer）。
// 输出：要写入的完整字节。合并规则：
// - saver 拥有（owned）的标签：用新产出的元素替换；没有新值则删除
// - 其它标签（别的 saver 的、用户手写的）：原样保留，保持相对顺序
// 引擎本身不做任何 I/O，也不记录日志。
package nfo

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/John-Robertt/NFOSaver/internal/config"
	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/nfo/tree"
)

// Writer 是 saver 暴露给引擎的能力：根元素名、自定义字段、自定义 owned 标签。
// 通用字段与通用 owned 标签由引擎统一提供。
type Writer interface {
	RootName(item domain.ItemDescriptor) string
	WriteCustom(item domain.ItemDescriptor, opts config.Options, f *Fields)
	CustomTags() []string
}

// ErrUnownedTag 表示 writer 产出了不在 owned 集合里的标签（实现错误）。
var ErrUnownedTag = errors.New("产出了未声明 owned 的标签")

// ParseError 表示已有文件不是合法的 XML。由调用方决定放弃还是覆盖。
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("已有 NFO 解析失败：%v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError 判断 err 是否为 ParseError。
func IsParseError(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}

// EncodingError 表示字段值无法在 XML 里表示（不是合法的 UTF-8）。
type EncodingError struct {
	Tag    string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("字段 <%s> 无法编码：%s", e.Tag, e.Reason)
}

// IsEncodingError 判断 err 是否为 EncodingError。
func IsEncodingError(err error) bool {
	var e *EncodingError
	return errors.As(err, &e)
}

// Render 解析 existing（nil/空白 => 空文档），合并条目字段后序列化。
// existing 不合法时返回 *ParseError，且不产出任何内容。
func Render(existing []byte, item domain.ItemDescriptor, w Writer, opts config.Options) ([]byte, error) {
	doc, err := tree.Parse(existing)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return RenderDocument(doc, item, w, opts)
}

// RenderDocument 与 Render 相同，但输入是已解析的文档（nil 视为空文档）。doc 不会被修改。
func RenderDocument(doc *tree.Document, item domain.ItemDescriptor, w Writer, opts config.Options) ([]byte, error) {
	fields := BuildFields(item, w, opts)
	owned := OwnedTags(w)
	if err := checkFields(fields, owned); err != nil {
		return nil, err
	}
	return tree.Marshal(Merge(doc, w.RootName(item), owned, fields)), nil
}

// BuildFields 返回通用字段 + saver 自定义字段（按写入顺序）。
func BuildFields(item domain.ItemDescriptor, w Writer, opts config.Options) []Field {
	var f Fields
	writeCommon(item, opts, &f)
	w.WriteCustom(item, opts, &f)
	return f.List()
}

// OwnedTags 返回 saver 有权创建/更新/删除的标签集合。
func OwnedTags(w Writer) map[string]struct{} {
	custom := w.CustomTags()
	owned := make(map[string]struct{}, len(CommonTags)+len(custom))
	for _, t := range CommonTags {
		owned[t] = struct{}{}
	}
	for _, t := range custom {
		owned[t] = struct{}{}
	}
	return owned
}

// Merge 把 fields 合并进 doc，返回新文档（doc 不会被修改）。
//
// 规则：
// - 旧根下 owned 标签的第一次出现位置，放入该标签的全部新元素；后续同名旧元素丢弃
// - 非 owned 的元素、注释、文本节点原样保留
// - 旧文档里没有出现过的标签，按 fields 顺序追加在末尾
// - 根元素改名为 root，保留旧根的属性；Prolog 与 Trailer 保留
func Merge(doc *tree.Document, root string, owned map[string]struct{}, fields []Field) *tree.Document {
	produced := make(map[string][]*tree.Element, len(fields))
	for _, f := range fields {
		produced[f.Tag] = append(produced[f.Tag], f.Elements...)
	}

	out := &tree.Document{}
	newRoot := &tree.Element{Name: root}
	emitted := make(map[string]bool, len(fields))

	emit := func(tag string) {
		if emitted[tag] {
			return
		}
		emitted[tag] = true
		for _, e := range produced[tag] {
			newRoot.Children = append(newRoot.Children, e.Clone())
		}
	}

	if !doc.Empty() {
		for _, c := range doc.Prolog {
			out.Prolog = append(out.Prolog, c.Clone())
		}
		out.Trailer = doc.Trailer
		if len(doc.Root.Attrs) > 0 {
			newRoot.Attrs = append([]tree.Attr(nil), doc.Root.Attrs...)
		}
		for _, c := range doc.Root.Children {
			if c.IsElement() {
				if _, ok := owned[c.Name]; ok {
					emit(c.Name)
					continue
				}
			}
			newRoot.Children = append(newRoot.Children, c.Clone())
		}
	}

	for _, f := range fields {
		emit(f.Tag)
	}

	out.Root = newRoot
	return out
}

func checkFields(fields []Field, owned map[string]struct{}) error {
	for _, f := range fields {
		if _, ok := owned[f.Tag]; !ok {
			return fmt.Errorf("%w：<%s>", ErrUnownedTag, f.Tag)
		}
		for _, e := range f.Elements {
			if err := checkElement(f.Tag, e); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkElement(tag string, e *tree.Element) error {
	var err error
	if e.Text, err = cleanText(tag, e.Text); err != nil {
		return err
	}
	for i := range e.Attrs {
		if e.Attrs[i].Value, err = cleanText(tag, e.Attrs[i].Value); err != nil {
			return err
		}
	}
	for _, c := range e.Children {
		if err := checkElement(tag, c); err != nil {
			return err
		}
	}
	return nil
}

// cleanText 拒绝非法 UTF-8；XML 1.0 不允许的控制字符直接去掉。
func cleanText(tag, s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", &EncodingError{Tag: tag, Reason: "不是合法的 UTF-8"}
	}
	if strings.IndexFunc(s, func(r rune) bool { return !isXMLChar(r) }) < 0 {
		return s, nil
	}
	return strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, s), nil
}

// isXMLChar 对应 XML 1.0 的 Char 产生式。
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}
