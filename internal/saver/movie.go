package saver

import (
	"github.com/John-Robertt/NFOSaver/internal/config"
	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/nfo"
	"github.com/John-Robertt/NFOSaver/internal/paths"
)

// Movie 是电影类 saver：Movie / MusicVideo / Video / Trailer。
func Movie() *Saver {
	return &Saver{
		Name:        "movie",
		Owned:       []string{"album", "artist", "set", "id"},
		EnabledFunc: movieEnabled,
		PathsFunc:   paths.Movie,
		RootFunc:    movieRoot,
		WriteFunc:   writeMovie,
	}
}

// movieEnabled：
// 1. 不支持本地元数据 => 不启用
// 2. 视频且不是剧集：主题曲/主题视频 extra 不启用；其余要求 update >= minimum
// 3. 其它情况不启用
func movieEnabled(item domain.ItemDescriptor, update, minimum domain.UpdateKind) bool {
	if !item.SupportsLocalMetadata {
		return false
	}
	if item.Kind.IsVideo() && item.Kind != domain.KindEpisode {
		if item.ExtraType.IsTheme() {
			return false
		}
		return update >= minimum
	}
	return false
}

func movieRoot(item domain.ItemDescriptor) string {
	if item.Kind == domain.KindMusicVideo {
		return "musicvideo"
	}
	return "movie"
}

func writeMovie(item domain.ItemDescriptor, _ config.Options, f *nfo.Fields) {
	m := item.Meta
	f.Text("id", m.ProviderID(domain.ProviderImdb))
	if item.Kind == domain.KindMusicVideo {
		f.Texts("artist", m.Artists)
		f.Text("album", m.Album)
	}
	// 合集只属于电影；其它类型已有的 <set> 按 owned 规则删除。
	if item.Kind == domain.KindMovie {
		f.Texts("set", m.Collections)
	}
}
