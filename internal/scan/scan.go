// Package scan 在磁盘上发现电影家族条目（宿主媒体库的替身）。
//
// 它只推导路径相关的属性：Kind、Container、ExtraType、Path；
// mixed folder 标记由 app.MarkMixedFolders 基于整体结果计算。
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/NFOSaver/internal/artwork"
	"github.com/John-Robertt/NFOSaver/internal/domain"
)

const (
	dvdDir    = "VIDEO_TS"
	blurayDir = "BDMV"
)

// extras 目录名 -> ExtraType（比较时忽略大小写）。
var extraDirs = map[string]domain.ExtraType{
	"trailers":          domain.ExtraTrailer,
	"behind the scenes": domain.ExtraBehindTheScenes,
	"deleted scenes":    domain.ExtraDeletedScene,
	"interviews":        domain.ExtraInterview,
	"scenes":            domain.ExtraScene,
	"samples":           domain.ExtraSample,
	"shorts":            domain.ExtraClip,
	"featurettes":       domain.ExtraClip,
	"backdrops":         domain.ExtraThemeVideo,
}

// 文件名后缀 -> ExtraType。
var extraSuffixes = []struct {
	suffix string
	typ    domain.ExtraType
}{
	{"-trailer", domain.ExtraTrailer},
	{"-sample", domain.ExtraSample},
	{"-behindthescenes", domain.ExtraBehindTheScenes},
	{"-deleted", domain.ExtraDeletedScene},
	{"-interview", domain.ExtraInterview},
	{"-scene", domain.ExtraScene},
}

// ScanMovies 扫描 root 下的电影家族条目，并应用目录排除规则。
//
// 规则：
// - 包含 VIDEO_TS 的目录是一个 DVD 条目，包含 BDMV 的目录是一个 Bluray 条目（Path 为该目录）
// - 其余视频文件各是一个条目；位于 extras 目录或带 extras 后缀的视为 extra
// - 隐藏目录、extrathumbs、excludeDirs 均跳过
// - excludeDirs：均视为相对 root 的路径（若是绝对路径，则按绝对路径处理）
//
// 注意：扫描阶段只做 ReadDir/stat，不读文件内容。
func ScanMovies(root string, excludeDirs []string) ([]domain.ItemDescriptor, error) {
	root = filepath.Clean(root)
	excluded := buildExcluded(root, excludeDirs)

	items := make([]domain.ItemDescriptor, 0, 128)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		// 统一的排除判断：目录用 SkipDir，文件则直接跳过。
		if isExcluded(path, excluded) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || strings.EqualFold(name, artwork.DirName)) {
				return filepath.SkipDir
			}
			container, ok := discContainer(path)
			if !ok {
				return nil
			}
			items = append(items, domain.ItemDescriptor{
				ID:                    relID(root, path),
				Kind:                  domain.KindMovie,
				Container:             container,
				Path:                  path,
				ContainingFolderPath:  path,
				SupportsLocalMetadata: true,
				Meta:                  domain.Meta{Title: name},
			})
			return filepath.SkipDir
		}

		ext := strings.ToLower(filepath.Ext(name))
		if !isVideoExt(ext) {
			return nil
		}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		extra := extraType(filepath.Base(filepath.Dir(path)), base)
		kind := domain.KindMovie
		if extra != domain.ExtraNone {
			kind = domain.KindVideo
		}
		items = append(items, domain.ItemDescriptor{
			ID:                    relID(root, path),
			Kind:                  kind,
			ExtraType:             extra,
			Path:                  path,
			SupportsLocalMetadata: true,
			Meta:                  domain.Meta{Title: base},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 强制稳定输出，避免不同平台/文件系统行为差异带来的不确定性。
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// discContainer 判断目录是否为光盘结构（只看直接子目录）。
func discContainer(dir string) (string, bool) {
	if isDir(filepath.Join(dir, dvdDir)) {
		return domain.ContainerDVD, true
	}
	if isDir(filepath.Join(dir, blurayDir)) {
		return domain.ContainerBluray, true
	}
	return "", false
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

func extraType(parentDir, base string) domain.ExtraType {
	if t, ok := extraDirs[strings.ToLower(parentDir)]; ok {
		return t
	}
	lower := strings.ToLower(base)
	for _, s := range extraSuffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.typ
		}
	}
	return domain.ExtraNone
}

func relID(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func isVideoExt(ext string) bool {
	switch ext {
	case ".mp4", ".mkv", ".avi", ".m4v", ".mov", ".wmv", ".ts", ".m2ts", ".iso":
		return true
	default:
		return false
	}
}

func buildExcluded(root string, excludeDirs []string) []string {
	excluded := make([]string, 0, len(excludeDirs))
	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if filepath.IsAbs(x) {
			excluded = append(excluded, filepath.Clean(x))
			continue
		}
		// x 是相对路径：相对 root。
		excluded = append(excluded, filepath.Clean(filepath.Join(root, x)))
	}

	// 排除列表排序后，isExcluded 的行为更可预测（且便于测试）。
	sort.Strings(excluded)
	return excluded
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if isUnder(path, base) {
			return true
		}
	}
	return false
}

func isUnder(path, base string) bool {
	if path == base {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(path, base+sep)
}
