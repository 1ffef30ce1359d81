// Package paths 把条目映射为 NFO 的候选输出路径（纯函数，不访问文件系统）。
//
// 路径约定必须与第三方媒体扫描器（Kodi 等）读取的位置严格一致，
// 包括候选顺序：调用方通常取第一个候选。
package paths

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"github.com/John-Robertt/NFOSaver/internal/domain"
)

const nfoExt = ".nfo"

// Resolver 为某一类条目计算候选路径（最优先的在前）。
type Resolver func(item domain.ItemDescriptor) []string

// 目录类条目的固定文件名规则。
var (
	Series = FolderFile("tvshow.nfo")
	Season = FolderFile("season.nfo")
	Album  = FolderFile("album.nfo")
	Artist = FolderFile("artist.nfo")
	BoxSet = FolderFile("collection.nfo")
)

var resolvers = map[domain.ItemKind]Resolver{
	domain.KindMovie:       Movie,
	domain.KindMusicVideo:  Movie,
	domain.KindVideo:       Movie,
	domain.KindTrailer:     Movie,
	domain.KindEpisode:     Episode,
	domain.KindSeries:      Series,
	domain.KindSeason:      Season,
	domain.KindMusicAlbum:  Album,
	domain.KindMusicArtist: Artist,
	domain.KindBoxSet:      BoxSet,
}

// Resolve 按条目类型分派到对应规则。
// 没有规则的类型（或 Path 为空）返回空列表，表示“没有输出位置”，不是错误。
func Resolve(item domain.ItemDescriptor) []string {
	if strings.TrimSpace(item.Path) == "" {
		return nil
	}
	r, ok := resolvers[item.Kind]
	if !ok {
		return nil
	}
	return r(item)
}

// Movie 是电影家族（电影/MV/普通视频/预告）的规则：
// - DVD：<folder>/VIDEO_TS/VIDEO_TS.nfo，然后 <folder>/<folder名>.nfo
// - Bluray：<folder>/<folder名>.nfo
// - 其它：<媒体文件去扩展名>.nfo；独占目录（非 mixed folder）时追加 <folder>/movie.nfo
func Movie(item domain.ItemDescriptor) []string {
	if strings.TrimSpace(item.Path) == "" {
		return nil
	}
	folder := item.Folder()
	isDVD := ContainerIs(item.Container, domain.ContainerDVD)

	list := make([]string, 0, 2)
	if isDVD {
		list = append(list, filepath.Join(folder, "VIDEO_TS", "VIDEO_TS"+nfoExt))
	}
	if isDVD || ContainerIs(item.Container, domain.ContainerBluray) {
		return append(list, folderNamed(folder))
	}

	list = append(list, ChangeExt(item.Path, nfoExt))
	if !item.IsInMixedFolder {
		list = append(list, filepath.Join(folder, "movie"+nfoExt))
	}
	return list
}

// Episode 与媒体文件同名；光盘结构的单集落在所在目录的同名 nfo。
func Episode(item domain.ItemDescriptor) []string {
	if strings.TrimSpace(item.Path) == "" {
		return nil
	}
	if ContainerIs(item.Container, domain.ContainerDVD) || ContainerIs(item.Container, domain.ContainerBluray) {
		return []string{folderNamed(item.Folder())}
	}
	return []string{ChangeExt(item.Path, nfoExt)}
}

// FolderFile 返回“目录类条目写固定文件名”的规则（tvshow.nfo / season.nfo / ...）。
func FolderFile(name string) Resolver {
	return func(item domain.ItemDescriptor) []string {
		if strings.TrimSpace(item.Path) == "" {
			return nil
		}
		return []string{filepath.Join(item.Path, name)}
	}
}

// ChangeExt 替换 p 的扩展名；没有扩展名时直接追加。
// 扩展名只看最后一个路径分量（目录名里的 '.' 不算）。
func ChangeExt(p, ext string) string {
	return strings.TrimSuffix(p, filepath.Ext(p)) + ext
}

// ContainerIs 比较容器名（Unicode case folding，不区分大小写）。
func ContainerIs(container, want string) bool {
	c := strings.TrimSpace(container)
	if c == "" {
		return false
	}
	// cases.Caser 不能跨 goroutine 共享，这里每次新建。
	fold := cases.Fold()
	return fold.String(c) == cases.Fold().String(want)
}

func folderNamed(folder string) string {
	return filepath.Join(folder, filepath.Base(folder)+nfoExt)
}
