// Package saver 是 saver 分发层：一组按注册顺序排列的能力记录（capability record）。
//
// 约束：
// - Registry 在进程启动时构建一次，之后只读，可被任意多个并发保存共享
// - 每个条目每次更新最多只有一个 saver 生效（Select 取第一个启用的）
// - 本包不做 I/O、不记录日志
package saver

import (
	"fmt"
	"strings"

	"github.com/John-Robertt/NFOSaver/internal/config"
	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/nfo"
)

// Saver 描述一种条目类型的元数据如何导出。
//
// 说明：Saver 实现 nfo.Writer，可直接交给合并引擎。
type Saver struct {
	Name string
	// Owned 是自定义字段拥有的标签；通用标签由 nfo.CommonTags 统一提供。
	Owned []string

	EnabledFunc func(item domain.ItemDescriptor, update, minimum domain.UpdateKind) bool
	PathsFunc   func(item domain.ItemDescriptor) []string
	RootFunc    func(item domain.ItemDescriptor) string
	WriteFunc   func(item domain.ItemDescriptor, opts config.Options, f *nfo.Fields)
}

// Enabled 判断该 saver 是否负责这次保存。
func (s *Saver) Enabled(item domain.ItemDescriptor, update, minimum domain.UpdateKind) bool {
	return s.EnabledFunc(item, update, minimum)
}

// Resolve 返回候选路径（按优先级）；第一个即写入目标。
func (s *Saver) Resolve(item domain.ItemDescriptor) []string {
	return s.PathsFunc(item)
}

// RootName 实现 nfo.Writer。
func (s *Saver) RootName(item domain.ItemDescriptor) string {
	return s.RootFunc(item)
}

// WriteCustom 实现 nfo.Writer。
func (s *Saver) WriteCustom(item domain.ItemDescriptor, opts config.Options, f *nfo.Fields) {
	if s.WriteFunc != nil {
		s.WriteFunc(item, opts, f)
	}
}

// CustomTags 实现 nfo.Writer。
func (s *Saver) CustomTags() []string {
	return s.Owned
}

// Registry 是注册好的 saver 集合（只读）。
type Registry struct {
	savers []*Saver
	byName map[string]*Saver
}

// NewRegistry 校验并构建 Registry。
//
// 校验：
// - Name 非空且唯一
// - EnabledFunc/PathsFunc/RootFunc 必须提供
// - Owned 不含空串，也不与通用标签重复
func NewRegistry(savers ...*Saver) (*Registry, error) {
	if len(savers) == 0 {
		return nil, fmt.Errorf("至少需要一个 saver")
	}
	common := make(map[string]struct{}, len(nfo.CommonTags))
	for _, t := range nfo.CommonTags {
		common[t] = struct{}{}
	}

	r := &Registry{byName: make(map[string]*Saver, len(savers))}
	for i, s := range savers {
		if s == nil {
			return nil, fmt.Errorf("saver[%d] 为空", i)
		}
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, fmt.Errorf("saver[%d] 缺少 name", i)
		}
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("saver 名称重复：%q", name)
		}
		if s.EnabledFunc == nil || s.PathsFunc == nil || s.RootFunc == nil {
			return nil, fmt.Errorf("saver %q 缺少必需的函数", name)
		}
		for _, t := range s.Owned {
			if strings.TrimSpace(t) == "" {
				return nil, fmt.Errorf("saver %q 的 owned 标签不能为空", name)
			}
			if _, ok := common[t]; ok {
				return nil, fmt.Errorf("saver %q 的 owned 标签 %q 与通用标签重复", name, t)
			}
		}
		r.byName[name] = s
		r.savers = append(r.savers, s)
	}
	return r, nil
}

// MustRegistry 与 NewRegistry 相同，失败时 panic（只用于内置注册表）。
func MustRegistry(savers ...*Saver) *Registry {
	r, err := NewRegistry(savers...)
	if err != nil {
		panic(err)
	}
	return r
}

var defaultRegistry = MustRegistry(
	Movie(),
	Episode(),
	Series(),
	Season(),
	Album(),
	Artist(),
	BoxSet(),
)

// Default 返回内置注册表（注册顺序即优先级）。
func Default() *Registry {
	return defaultRegistry
}

// Select 按注册顺序返回第一个启用的 saver；没有则返回 nil。
func (r *Registry) Select(item domain.ItemDescriptor, update, minimum domain.UpdateKind) *Saver {
	for _, s := range r.savers {
		if s.Enabled(item, update, minimum) {
			return s
		}
	}
	return nil
}

// Lookup 按名称查找 saver。
func (r *Registry) Lookup(name string) (*Saver, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// Savers 返回注册顺序的副本。
func (r *Registry) Savers() []*Saver {
	return append([]*Saver(nil), r.savers...)
}

// kindGate 是非电影类 saver 的启用规则：类型匹配 + 支持本地元数据 + 达到最小 update kind。
func kindGate(kinds ...domain.ItemKind) func(domain.ItemDescriptor, domain.UpdateKind, domain.UpdateKind) bool {
	return func(item domain.ItemDescriptor, update, minimum domain.UpdateKind) bool {
		if !item.SupportsLocalMetadata {
			return false
		}
		for _, k := range kinds {
			if item.Kind == k {
				return update >= minimum
			}
		}
		return false
	}
}

func fixedRoot(name string) func(domain.ItemDescriptor) string {
	return func(domain.ItemDescriptor) string { return name }
}

func optInt(f *nfo.Fields, tag string, v *int) {
	if v == nil {
		f.Int(tag, 0, false)
		return
	}
	f.Int(tag, *v, true)
}
