package tree

import (
	"bytes"
	"strings"
)

// Header 是输出文件固定的 XML 头（与常见刮削器产物一致）。
const Header = `<?xml version="1.0" encoding="utf-8" standalone="yes"?>`

const indentUnit = "  "

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "&#xD;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "\t", "&#x9;", "\n", "&#xA;", "\r", "&#xD;")
)

// Marshal 把 Document 序列化为字节。
//
// 约束：输出只由树决定（相同的树 => 相同的字节），
// 格式固定为两空格缩进、每个元素一行、LF 换行、结尾换行。
// 空文档输出只有 XML 头。
func Marshal(doc *Document) []byte {
	var buf bytes.Buffer
	buf.WriteString(Header)
	buf.WriteByte('\n')
	if doc == nil {
		return buf.Bytes()
	}
	for _, c := range doc.Prolog {
		writeNode(&buf, c, 0)
	}
	if doc.Root != nil {
		writeNode(&buf, doc.Root, 0)
	}
	if t := strings.TrimSpace(doc.Trailer); t != "" {
		textEscaper.WriteString(&buf, t)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, e *Element, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	buf.WriteString(indent)

	switch {
	case e.Comment:
		buf.WriteString("<!--")
		buf.WriteString(e.Text)
		buf.WriteString("-->\n")
		return
	case e.Name == "":
		textEscaper.WriteString(buf, e.Text)
		buf.WriteByte('\n')
		return
	}

	buf.WriteByte('<')
	buf.WriteString(e.Name)
	for _, a := range e.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		attrEscaper.WriteString(buf, a.Value)
		buf.WriteByte('"')
	}

	if len(e.Children) == 0 {
		if e.Text == "" {
			buf.WriteString(" />\n")
			return
		}
		buf.WriteByte('>')
		textEscaper.WriteString(buf, e.Text)
		buf.WriteString("</")
		buf.WriteString(e.Name)
		buf.WriteString(">\n")
		return
	}

	buf.WriteString(">\n")
	for _, c := range e.Children {
		writeNode(buf, c, depth+1)
	}
	buf.WriteString(indent)
	buf.WriteString("</")
	buf.WriteString(e.Name)
	buf.WriteString(">\n")
}
