package tree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// SyntaxError 表示已有文件不是合法的 XML。
type SyntaxError struct {
	Line int
	Msg  string
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("第 %d 行：%s", e.Line, e.Msg)
	}
	return e.Msg
}

func (e *SyntaxError) Unwrap() error { return e.Err }

var utf8BOM = []byte("\xef\xbb\xbf")

// Parse 把 b 解析为 Document。
//
// 规则：
// - 空或纯空白输入 => 空文档，不报错
// - 标签不匹配、未闭合、多个根元素、根之前出现文本 => *SyntaxError
// - 容器元素内的纯空白文本丢弃；非空白文本去首尾空白后作为文本节点保留
// - 叶子元素的文本原样保留
// - 处理指令与 DOCTYPE 丢弃（序列化时统一生成 XML 头）
func Parse(b []byte) (*Document, error) {
	doc := &Document{}
	b = bytes.TrimPrefix(b, utf8BOM)
	if len(bytes.TrimSpace(b)) == 0 {
		return doc, nil
	}

	d := xml.NewDecoder(bytes.NewReader(b))
	d.Strict = true
	// NFO 常被手工编辑，&nbsp; 这类 HTML 实体很常见。
	d.Entity = xml.HTMLEntity
	d.CharsetReader = charsetReader

	type frame struct {
		el   *Element
		text strings.Builder
		// hasChild 表示出现过子元素或注释（决定文本是叶子文本还是混合内容）
		hasChild bool
	}
	var stack []*frame
	rootClosed := false

	for {
		tok, err := d.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, syntaxErr(d, err.Error(), err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootClosed {
				return nil, syntaxErr(d, "存在多个根元素", nil)
			}
			el := &Element{Name: rawName(t.Name)}
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: rawName(a.Name), Value: a.Value})
			}
			if n := len(stack); n > 0 {
				parent := stack[n-1]
				flushMixedText(parent.el, &parent.text)
				parent.hasChild = true
				parent.el.Children = append(parent.el.Children, el)
			} else {
				doc.Root = el
			}
			stack = append(stack, &frame{el: el})

		case xml.EndElement:
			n := len(stack)
			if n == 0 {
				return nil, syntaxErr(d, fmt.Sprintf("多余的结束标签 </%s>", rawName(t.Name)), nil)
			}
			top := stack[n-1]
			if name := rawName(t.Name); name != top.el.Name {
				return nil, syntaxErr(d, fmt.Sprintf("结束标签 </%s> 与 <%s> 不匹配", name, top.el.Name), nil)
			}
			if top.hasChild {
				flushMixedText(top.el, &top.text)
			} else {
				top.el.Text = top.text.String()
			}
			stack = stack[:n-1]
			if len(stack) == 0 {
				rootClosed = true
			}

		case xml.CharData:
			if n := len(stack); n > 0 {
				stack[n-1].text.Write(t)
				continue
			}
			s := strings.TrimSpace(string(t))
			if s == "" {
				continue
			}
			if !rootClosed {
				return nil, syntaxErr(d, "根元素之前出现文本", nil)
			}
			if doc.Trailer != "" {
				doc.Trailer += "\n"
			}
			doc.Trailer += s

		case xml.Comment:
			c := &Element{Comment: true, Text: string(t)}
			if n := len(stack); n > 0 {
				parent := stack[n-1]
				flushMixedText(parent.el, &parent.text)
				parent.hasChild = true
				parent.el.Children = append(parent.el.Children, c)
			} else if !rootClosed {
				doc.Prolog = append(doc.Prolog, c)
			}
			// 根元素之后的注释丢弃

		case xml.ProcInst, xml.Directive:
			// 丢弃
		}
	}

	if len(stack) > 0 {
		return nil, syntaxErr(d, fmt.Sprintf("元素 <%s> 未闭合", stack[len(stack)-1].el.Name), io.ErrUnexpectedEOF)
	}
	if doc.Root == nil {
		return nil, syntaxErr(d, "没有根元素", nil)
	}
	return doc, nil
}

func flushMixedText(el *Element, buf *strings.Builder) {
	s := strings.TrimSpace(buf.String())
	buf.Reset()
	if s == "" {
		return
	}
	el.Children = append(el.Children, &Element{Text: s})
}

func rawName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func syntaxErr(d *xml.Decoder, msg string, err error) error {
	line, _ := d.InputPos()
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		line = se.Line
		msg = se.Msg
	}
	return &SyntaxError{Line: line, Msg: msg, Err: err}
}

// charsetReader 支持 encoding="ISO-8859-1" / "windows-1252" 等声明。
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("不支持的编码 %q：%w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
