// Package tree 是 NFO 文档的内存树：严格解析 + 确定性序列化。
//
// 它不关心任何字段语义；字段映射与合并规则在上层 nfo 包里。
package tree

import "strings"

// Attr 是元素属性（名字保留原始前缀，例如 "xsi:schemaLocation"）。
type Attr struct {
	Name  string
	Value string
}

// Element 是树上的节点。
//
// 三种形态：
// - 普通元素：Name 非空；没有子节点时 Text 为文本内容（叶子）
// - 注释：Comment=true，Text 为注释内容
// - 混合内容里的文本：Name 为空且 Comment=false
type Element struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Element
	Comment  bool
}

// NewLeaf 构造一个文本叶子元素。
func NewLeaf(name, text string) *Element {
	return &Element{Name: name, Text: text}
}

// NewContainer 构造一个带子元素的元素。
func NewContainer(name string, children ...*Element) *Element {
	return &Element{Name: name, Children: children}
}

// IsElement 表示这是一个有名字的元素（非注释、非文本节点）。
func (e *Element) IsElement() bool {
	return e != nil && !e.Comment && e.Name != ""
}

// Attr 返回属性值。
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Child 返回第一个名为 name 的直接子元素。
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.IsElement() && c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed 返回所有名为 name 的直接子元素（保持顺序）。
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.IsElement() && c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// ChildText 返回第一个名为 name 的子元素的文本（去首尾空白）。
func (e *Element) ChildText(name string) string {
	if c := e.Child(name); c != nil {
		return strings.TrimSpace(c.Text)
	}
	return ""
}

// Clone 深拷贝。
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := &Element{Name: e.Name, Text: e.Text, Comment: e.Comment}
	if len(e.Attrs) > 0 {
		out.Attrs = append([]Attr(nil), e.Attrs...)
	}
	if len(e.Children) > 0 {
		out.Children = make([]*Element, len(e.Children))
		for i, c := range e.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Document 是一个完整文件。
//
// 约束：
// - Root 为 nil 表示空文档（文件不存在或内容为空白）
// - Prolog 只保存根元素之前的注释
// - Trailer 是根元素之后的非空白文本（Kodi 允许在 XML 后面追加一行 URL）
type Document struct {
	Prolog  []*Element
	Root    *Element
	Trailer string
}

// Empty 判断是否为空文档。
func (d *Document) Empty() bool {
	return d == nil || d.Root == nil
}
