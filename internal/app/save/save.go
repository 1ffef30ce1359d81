// Package save 是单个条目的保存编排：分发 -> 路径解析 -> 读已有文件 -> 合并渲染 -> 原子写入。
//
// 约束：
// - 不记录日志、不展示错误：一切以 domain.SaveOutcome 返回，由调用方决定重试与提示
// - 同一路径的读-改-写在 fsx.Locker 下串行（进程内 + 跨进程）
// - 单个条目失败不会影响其它条目；Service 可被多个 goroutine 并发使用
package save

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/John-Robertt/NFOSaver/internal/artwork"
	"github.com/John-Robertt/NFOSaver/internal/config"
	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/infra/fsx"
	"github.com/John-Robertt/NFOSaver/internal/nfo"
	"github.com/John-Robertt/NFOSaver/internal/saver"
)

// DefaultLockDirName 是 lock_dir 未配置时在系统临时目录下使用的子目录名。
const DefaultLockDirName = "nfosaver-locks"

// Error 是保存失败的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s：%v", e.Code, e.Err)
	}
	return fmt.Sprintf("%s：%q：%v", e.Code, e.Path, e.Err)
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

// IsWriteFailure 判断是否属于“写失败”类（存储拒绝写入、无法编码、拿不到写锁）。
// 这类错误通常值得上层重试或提示用户。
func IsWriteFailure(err error) bool {
	switch Code(err) {
	case domain.ErrCodeWriteFailed, domain.ErrCodeEncodingFailed, domain.ErrCodeLockFailed:
		return true
	default:
		return false
	}
}

// Service 执行保存。构建后只读。
type Service struct {
	registry *saver.Registry
	opts     config.Options
	minimum  domain.UpdateKind
	locker   *fsx.Locker

	// 测试替换点。
	readFile  func(path string) ([]byte, bool, error)
	writeFile func(path string, data []byte) error
	newOpID   func() string
}

// New 创建 Service。opts 应已通过 config.Load 规范化与校验。
func New(reg *saver.Registry, opts config.Options) *Service {
	lockDir := opts.LockDir
	if lockDir == "" {
		lockDir = filepath.Join(os.TempDir(), DefaultLockDirName)
	}
	return &Service{
		registry:  reg,
		opts:      opts,
		minimum:   opts.MinimumUpdate(),
		locker:    fsx.NewLocker(lockDir, fsx.DefaultLockTimeout),
		readFile:  fsx.ReadFile,
		writeFile: fsx.WriteFile,
		newOpID:   uuid.NewString,
	}
}

// Options 返回 Service 使用的配置（副本）。
func (s *Service) Options() config.Options { return s.opts }

// Save 保存一个条目并写入磁盘。
func (s *Service) Save(item domain.ItemDescriptor, update domain.UpdateKind) domain.SaveOutcome {
	return s.run(item, update, true)
}

// DryRun 与 Save 走同样的流程，但不加锁、不写入；
// Status=saved 表示“会写入”，Content 为将要写入的字节。
func (s *Service) DryRun(item domain.ItemDescriptor, update domain.UpdateKind) domain.SaveOutcome {
	return s.run(item, update, false)
}

func (s *Service) run(item domain.ItemDescriptor, update domain.UpdateKind, apply bool) domain.SaveOutcome {
	out := domain.SaveOutcome{OpID: s.newOpID()}

	if err := validateItem(item); err != nil {
		return fail(out, &Error{Code: domain.ErrCodeInvalidItem, Path: item.Path, Err: err})
	}

	sv := s.registry.Select(item, update, s.minimum)
	if sv == nil {
		out.Status = domain.SaveSkipped
		out.SkipReason = domain.SkipNotEnabled
		return out
	}
	out.Saver = sv.Name

	out.Candidates = sv.Resolve(item)
	if len(out.Candidates) == 0 {
		out.Status = domain.SaveSkipped
		out.SkipReason = domain.SkipNoCandidatePath
		return out
	}
	path := out.Candidates[0]
	out.Path = path

	if apply {
		unlock, err := s.locker.Lock(path)
		if err != nil {
			return fail(out, &Error{Code: domain.ErrCodeLockFailed, Path: path, Err: err})
		}
		defer unlock()
	}

	existing, exists, err := s.readFile(path)
	if err != nil {
		return fail(out, &Error{Code: domain.ErrCodeReadFailed, Path: path, Err: err})
	}

	content, err := nfo.Render(existing, item, sv, s.opts)
	if err != nil && nfo.IsParseError(err) && s.opts.OnParseError == config.ParseErrorOverwrite {
		content, err = nfo.RenderDocument(nil, item, sv, s.opts)
		out.ReplacedMalformed = err == nil
	}
	if err != nil {
		return fail(out, &Error{Code: renderCode(err), Path: path, Err: err})
	}
	out.Content = content

	if exists && bytes.Equal(existing, content) {
		out.Status = domain.SaveUnchanged
		return out
	}

	if apply {
		if err := s.writeFile(path, content); err != nil {
			return fail(out, &Error{Code: domain.ErrCodeWriteFailed, Path: path, Err: err})
		}
		out.ExtraThumbs, out.ArtworkErr = artwork.Duplicate(item, s.opts)
	}
	out.Status = domain.SaveSaved
	return out
}

func fail(out domain.SaveOutcome, err error) domain.SaveOutcome {
	out.Status = domain.SaveFailed
	out.Content = nil
	out.Err = err
	return out
}

func renderCode(err error) string {
	switch {
	case nfo.IsParseError(err):
		return domain.ErrCodeParseFailed
	case nfo.IsEncodingError(err):
		return domain.ErrCodeEncodingFailed
	default:
		return domain.ErrCodeRenderFailed
	}
}

// validateItem 只检查会导致错误路径的输入；空 Path 不是错误（解析结果为空 => 跳过）。
func validateItem(item domain.ItemDescriptor) error {
	if _, ok := domain.ParseItemKind(string(item.Kind)); !ok {
		return fmt.Errorf("未知的条目类型：%q", item.Kind)
	}
	if p := strings.TrimSpace(item.Path); p != "" && !filepath.IsAbs(p) {
		return fmt.Errorf("path 必须是绝对路径：%q", item.Path)
	}
	return nil
}

// Result 把 SaveOutcome 转成报告条目。
func Result(item domain.ItemDescriptor, out domain.SaveOutcome) domain.ItemResult {
	r := domain.ItemResult{
		OpID:        out.OpID,
		Item:        item.Label(),
		Kind:        string(item.Kind),
		Saver:       out.Saver,
		Path:        out.Path,
		Candidates:  append([]string{}, out.Candidates...),
		Status:      string(out.Status),
		SkipReason:  string(out.SkipReason),
		ExtraThumbs: out.ExtraThumbs,
	}
	if out.Err != nil {
		r.ErrorCode = Code(out.Err)
		if r.ErrorCode == "" {
			r.ErrorCode = domain.ErrCodeRenderFailed
		}
		r.ErrorMsg = out.Err.Error()
	}
	switch {
	case out.ArtworkErr != nil:
		r.Warning = out.ArtworkErr.Error()
	case out.ReplacedMalformed:
		r.Warning = "已有文件无法解析，已按空文档重新生成"
	}
	return r
}
