// Package config 提供 xbmcmetadata 选项：TOML 文件读取、默认值、规范化与校验。
//
// Options 在保存时作为不可变值显式传入各层，保存路径本身从不修改它。
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/John-Robertt/NFOSaver/internal/domain"
)

const (
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeNotFound 表示显式指定的配置文件不存在。
	ErrCodeNotFound = "config_not_found"
)

// Name 是这组选项在宿主配置存储里的名字。
const Name = "xbmcmetadata"

// FileName 是默认的配置文件名。
const FileName = Name + ".toml"

const (
	// DefaultReleaseDateFormat 与常见刮削器一致。
	DefaultReleaseDateFormat = "yyyy-MM-dd"

	// ParseErrorAbort：已有文件不是合法 XML 时放弃保存并报告。
	ParseErrorAbort = "abort"
	// ParseErrorOverwrite：已有文件不是合法 XML 时按空文档重新生成。
	ParseErrorOverwrite = "overwrite"
)

// PathSubstitution 把服务器侧路径前缀替换为客户端可见的前缀（只作用于写进 NFO 的图片路径）。
type PathSubstitution struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

// Options 对应 xbmcmetadata.toml。
type Options struct {
	// UserID 选定导出播放状态/个人评分的用户；为空则不写用户数据。
	UserID string `toml:"user_id"`
	// ReleaseDateFormat 使用 yyyy/MM/dd/HH/mm/ss 记号，例如 "yyyy-MM-dd"。
	ReleaseDateFormat string `toml:"release_date_format"`

	SaveImagePathsInNfo          bool `toml:"save_image_paths_in_nfo"`
	EnablePathSubstitution       bool `toml:"enable_path_substitution"`
	EnableExtraThumbsDuplication bool `toml:"enable_extra_thumbs_duplication"`

	// MinimumUpdateKind 为空时按 save_image_paths_in_nfo 推导（见 MinimumUpdate）。
	MinimumUpdateKind string `toml:"minimum_update_kind"`
	// OnParseError 是 abort 或 overwrite。
	OnParseError string `toml:"on_parse_error"`
	// LockDir 存放跨进程写锁文件；为空则用系统临时目录。
	LockDir string `toml:"lock_dir"`

	PathSubstitutions []PathSubstitution `toml:"path_substitutions"`
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Default 返回内置默认值（与宿主首次启用插件时一致）。
func Default() Options {
	return Options{
		ReleaseDateFormat: DefaultReleaseDateFormat,
		OnParseError:      ParseErrorAbort,
	}
}

// Load 读取 path 指向的 TOML 文件，并与默认值合并、规范化、校验。
//
// 发现规则：
// - path 非空：文件必须存在
// - path 为空：尝试 <cwd>/xbmcmetadata.toml（可选，不存在则使用默认值）
//
// 返回的 string 是实际使用的文件路径（未读取任何文件时为空）。
func Load(cwd, path string) (Options, string, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = filepath.Join(cwd, FileName)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	path = filepath.Clean(path)

	opts := Default()
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(b, &opts); err != nil {
			return Options{}, path, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
		}
	case errors.Is(err, fs.ErrNotExist):
		if explicit {
			return Options{}, path, &Error{Code: ErrCodeNotFound, Path: path, Err: err}
		}
		path = ""
	default:
		return Options{}, path, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}

	opts.normalize()
	if err := opts.Validate(); err != nil {
		return Options{}, path, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}
	return opts, path, nil
}

func decode(b []byte, opts *Options) error {
	dec := toml.NewDecoder(bytes.NewReader(b))
	// 拼错的键直接报错，避免“配置了但没生效”。
	dec.DisallowUnknownFields()
	return dec.Decode(opts)
}

// Encode 把 Options 输出为 TOML（config show 使用）。
func Encode(opts Options) ([]byte, error) {
	return toml.Marshal(opts)
}

func (o *Options) normalize() {
	o.UserID = strings.TrimSpace(o.UserID)
	o.ReleaseDateFormat = strings.TrimSpace(o.ReleaseDateFormat)
	if o.ReleaseDateFormat == "" {
		o.ReleaseDateFormat = DefaultReleaseDateFormat
	}
	o.MinimumUpdateKind = strings.TrimSpace(o.MinimumUpdateKind)
	o.OnParseError = strings.ToLower(strings.TrimSpace(o.OnParseError))
	if o.OnParseError == "" {
		o.OnParseError = ParseErrorAbort
	}
	o.LockDir = strings.TrimSpace(o.LockDir)

	subs := o.PathSubstitutions[:0]
	for _, s := range o.PathSubstitutions {
		s.From = strings.TrimSpace(s.From)
		s.To = strings.TrimSpace(s.To)
		if s.From == "" {
			continue
		}
		subs = append(subs, s)
	}
	o.PathSubstitutions = subs
}

// Validate 检查字段取值。
func (o Options) Validate() error {
	if o.MinimumUpdateKind != "" {
		if _, ok := domain.ParseUpdateKind(o.MinimumUpdateKind); !ok {
			return fmt.Errorf("minimum_update_kind 无效：%q", o.MinimumUpdateKind)
		}
	}
	switch o.OnParseError {
	case ParseErrorAbort, ParseErrorOverwrite:
	default:
		return fmt.Errorf("on_parse_error 只能是 %s 或 %s，实际是 %q", ParseErrorAbort, ParseErrorOverwrite, o.OnParseError)
	}
	if _, err := DateLayout(o.ReleaseDateFormat); err != nil {
		return fmt.Errorf("release_date_format 无效：%w", err)
	}
	if o.LockDir != "" && !filepath.IsAbs(o.LockDir) {
		return fmt.Errorf("lock_dir 必须是绝对路径：%q", o.LockDir)
	}
	return nil
}

// MinimumUpdate 返回 saver 启用所需的最小 update kind。
//
// 未显式配置时：写图片路径 => 图片变更也值得重写（ImageUpdate）；否则只有元数据下载才重写。
func (o Options) MinimumUpdate() domain.UpdateKind {
	if k, ok := domain.ParseUpdateKind(o.MinimumUpdateKind); ok {
		return k
	}
	if o.SaveImagePathsInNfo {
		return domain.UpdateImage
	}
	return domain.UpdateMetadataDownload
}

// ReleaseDateLayout 返回 release_date_format 对应的 Go 时间布局（Validate 之后不会失败）。
func (o Options) ReleaseDateLayout() string {
	l, err := DateLayout(o.ReleaseDateFormat)
	if err != nil {
		return "2006-01-02"
	}
	return l
}
