package config

import (
	"fmt"
	"strings"
)

// 支持的记号（与宿主 UI 的日期格式选项一致）。
var dateTokens = []struct{ token, layout string }{
	{"yyyy", "2006"},
	{"MM", "01"},
	{"dd", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
}

// DateLayout 把 "yyyy-MM-dd HH:mm:ss" 风格的格式串转成 Go 时间布局。
// 未识别的字母视为错误（避免把格式串原样写进 NFO）。
func DateLayout(format string) (string, error) {
	format = strings.TrimSpace(format)
	if format == "" {
		return "", fmt.Errorf("格式不能为空")
	}
	var b strings.Builder
	for i := 0; i < len(format); {
		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(format[i:], t.token) {
				b.WriteString(t.layout)
				i += len(t.token)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		c := format[i]
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
			return "", fmt.Errorf("无法识别的格式记号 %q（位于 %q）", string(c), format)
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), nil
}
