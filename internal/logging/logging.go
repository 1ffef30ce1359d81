// Package logging 构造 CLI 与批量执行使用的 slog logger。
//
// 核心包（paths/saver/nfo/save）不记录日志；只有执行层和 CLI 使用这里的 logger。
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// 结构化字段名（各层统一使用）。
const (
	FieldItem    = "item"
	FieldSaver   = "saver"
	FieldPath    = "path"
	FieldStatus  = "status"
	FieldOpID    = "op_id"
	FieldSession = "session"
)

// Options 描述 logger 的构造参数。
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New 按 Options 构造 logger；Format 支持 text（默认）与 json。
func New(opts Options) (*slog.Logger, error) {
	if opts.Output == nil {
		return nil, fmt.Errorf("log output 不能为空")
	}
	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "text":
		return slog.New(slog.NewTextHandler(opts.Output, hopts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(opts.Output, hopts)), nil
	default:
		return nil, fmt.Errorf("log format 不支持：%q", opts.Format)
	}
}

// Discard 返回丢弃所有输出的 logger（测试与未配置时使用）。
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel 解析日志级别；未知值按 info 处理。
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
