// Package htmlx 把 provider 给出的 HTML 片段（简介/传记）转成纯文本。
package htmlx

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagLikeRE   = regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)
	entityRE    = regexp.MustCompile(`&(#[0-9]+|#[xX][0-9a-fA-F]+|[a-zA-Z][a-zA-Z0-9]*);`)
	blankLineRE = regexp.MustCompile(`\n{3,}`)
	breakRE     = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|h[1-6])\s*>`)
)

// PlainText 去掉 HTML 标签并解码实体。
//
// 规则：
// - 不含标签/实体的输入原样返回（只做首尾空白裁剪），避免把 "a < b" 这类文本误伤
// - <br> 与块级元素边界转成换行；连续空行压缩为一个
// - 解析失败时回退为原文
func PlainText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || (!tagLikeRE.MatchString(s) && !entityRE.MatchString(s)) {
		return s
	}

	// 换行在解析前插入：解析器会把元素边界吃掉。
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(breakRE.ReplaceAllStringFunc(s, breakFor)))
	if err != nil {
		return s
	}
	doc.Find("script, style").Remove()

	text := strings.ReplaceAll(doc.Text(), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	text = strings.Join(lines, "\n")
	text = blankLineRE.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func breakFor(tag string) string {
	return tag + "\n"
}
