// Package artwork 负责 extrathumbs 复制（enable_extra_thumbs_duplication）。
//
// 旧版 Kodi 皮肤从 <folder>/extrathumbs/ 读取额外背景图，这里把条目的 backdrop
// 按顺序复制为 thumb1.jpg、thumb2.jpg ...
package artwork

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/John-Robertt/NFOSaver/internal/config"
	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/infra/fsx"
	"github.com/John-Robertt/NFOSaver/internal/infra/imgx"
)

// DirName 是 extrathumbs 目录名。
const DirName = "extrathumbs"

var readFileFunc = os.ReadFile

// Error 表示某张 backdrop 复制失败。
type Error struct {
	Src string
	Dst string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extrathumbs 复制失败：%q -> %q：%v", e.Src, e.Dst, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Enabled 判断条目是否需要 extrathumbs：开关打开 + 电影家族（非 extra）+ 有 backdrop。
func Enabled(item domain.ItemDescriptor, opts config.Options) bool {
	if !opts.EnableExtraThumbsDuplication || !item.SupportsLocalMetadata {
		return false
	}
	if !item.Kind.IsVideo() || item.Kind == domain.KindEpisode || item.ExtraType != domain.ExtraNone {
		return false
	}
	return len(item.Meta.Images.Backdrops) > 0
}

// Targets 返回每张 backdrop 对应的目标路径（与 Backdrops 一一对应）。
func Targets(item domain.ItemDescriptor) []string {
	dir := filepath.Join(item.Folder(), DirName)
	out := make([]string, 0, len(item.Meta.Images.Backdrops))
	for i := range item.Meta.Images.Backdrops {
		out = append(out, filepath.Join(dir, "thumb"+strconv.Itoa(i+1)+".jpg"))
	}
	return out
}

// Duplicate 复制 backdrop 到 extrathumbs，返回实际写入的路径（内容未变化的不写）。
// 遇到第一个失败即返回 *Error；已写入的文件保留。
func Duplicate(item domain.ItemDescriptor, opts config.Options) ([]string, error) {
	if !Enabled(item, opts) {
		return nil, nil
	}
	var written []string
	for i, dst := range Targets(item) {
		src := item.Meta.Images.Backdrops[i]
		b, err := readFileFunc(src)
		if err != nil {
			return written, &Error{Src: src, Dst: dst, Err: err}
		}
		out, err := imgx.ToJPEG(b)
		if err != nil {
			return written, &Error{Src: src, Dst: dst, Err: err}
		}
		old, ok, err := fsx.ReadFile(dst)
		if err != nil {
			return written, &Error{Src: src, Dst: dst, Err: err}
		}
		if ok && bytes.Equal(old, out) {
			continue
		}
		if err := fsx.WriteFile(dst, out); err != nil {
			return written, &Error{Src: src, Dst: dst, Err: err}
		}
		written = append(written, dst)
	}
	return written, nil
}
