package app

import (
	"sort"

	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/paths"
)

// FolderGroup 是同一目录下的文件型条目（光盘条目自成一组）。
type FolderGroup struct {
	Folder string
	Items  []int
}

// GroupByFolder 把条目按所在目录分组（Items 只存 index）。
//
// - 分组稳定排序：按 Folder 字典序
// - 组内 Items 稳定排序：按 Path 字典序
// - 光盘条目（dvd/bluray）不参与分组：它们本身就代表整个目录
func GroupByFolder(items []domain.ItemDescriptor) []FolderGroup {
	index := make(map[string]int, len(items))
	groups := make([]FolderGroup, 0, len(items))

	for i := range items {
		if isDisc(items[i]) {
			continue
		}
		f := items[i].Folder()
		if idx, ok := index[f]; ok {
			groups[idx].Items = append(groups[idx].Items, i)
			continue
		}
		index[f] = len(groups)
		groups = append(groups, FolderGroup{Folder: f, Items: []int{i}})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Folder < groups[j].Folder })
	for g := range groups {
		sort.Slice(groups[g].Items, func(a, b int) bool {
			return items[groups[g].Items[a]].Path < items[groups[g].Items[b]].Path
		})
	}
	return groups
}

// MarkMixedFolders 标记 IsInMixedFolder：同一目录下有多个文件型条目时，
// 目录级的 movie.nfo 不再属于其中任何一个。返回被标记的条目数。
func MarkMixedFolders(items []domain.ItemDescriptor) int {
	n := 0
	for _, g := range GroupByFolder(items) {
		mixed := len(g.Items) > 1
		for _, i := range g.Items {
			items[i].IsInMixedFolder = mixed
			if mixed {
				n++
			}
		}
	}
	return n
}

func isDisc(it domain.ItemDescriptor) bool {
	return paths.ContainerIs(it.Container, domain.ContainerDVD) || paths.ContainerIs(it.Container, domain.ContainerBluray)
}
