package nfo

import (
	"regexp"
	"strings"

	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/nfo/tree"
)

var (
	imdbURLRE = regexp.MustCompile(`imdb\.com/title/(tt\d+)`)
	tmdbURLRE = regexp.MustCompile(`themoviedb\.org/(?:movie|tv)/(\d+)`)
	tvdbURLRE = regexp.MustCompile(`thetvdb\.com/\?tab=series&id=(\d+)|thetvdb\.com/series/(\d+)`)
)

// ProviderIDs 从已有 NFO 中提取 provider id（用于重新导入）。
//
// 来源（先到先得，同一 provider 不覆盖）：
// 1. <uniqueid type="...">
// 2. <imdbid>/<imdb_id>/<tmdbid>/<tvdbid>
// 3. 以 "tt" 开头的 <id>
// 4. 根元素之后的 URL 行
func ProviderIDs(doc *tree.Document) map[string]string {
	out := map[string]string{}
	set := func(key, v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		if _, ok := out[key]; ok {
			return
		}
		out[key] = v
	}

	if !doc.Empty() {
		for _, u := range doc.Root.ChildrenNamed("uniqueid") {
			typ, _ := u.Attr("type")
			if key := providerKey(typ); key != "" {
				set(key, u.Text)
			}
		}
		set(domain.ProviderImdb, doc.Root.ChildText("imdbid"))
		set(domain.ProviderImdb, doc.Root.ChildText("imdb_id"))
		set(domain.ProviderTmdb, doc.Root.ChildText("tmdbid"))
		set(domain.ProviderTvdb, doc.Root.ChildText("tvdbid"))
		set(domain.ProviderTmdbCollection, doc.Root.ChildText("collectionnumber"))
		if id := doc.Root.ChildText("id"); strings.HasPrefix(id, "tt") {
			set(domain.ProviderImdb, id)
		}
	}

	if doc != nil && doc.Trailer != "" {
		if m := imdbURLRE.FindStringSubmatch(doc.Trailer); m != nil {
			set(domain.ProviderImdb, m[1])
		}
		if m := tmdbURLRE.FindStringSubmatch(doc.Trailer); m != nil {
			set(domain.ProviderTmdb, m[1])
		}
		if m := tvdbURLRE.FindStringSubmatch(doc.Trailer); m != nil {
			set(domain.ProviderTvdb, m[1]+m[2])
		}
	}
	return out
}

func providerKey(typ string) string {
	typ = strings.TrimSpace(typ)
	switch strings.ToLower(typ) {
	case "":
		return ""
	case "imdb":
		return domain.ProviderImdb
	case "tmdb":
		return domain.ProviderTmdb
	case "tvdb":
		return domain.ProviderTvdb
	case "tmdbcollection":
		return domain.ProviderTmdbCollection
	case "musicbrainzalbum":
		return domain.ProviderMusicBrainzAlbum
	case "musicbrainzartist":
		return domain.ProviderMusicBrainzArtist
	default:
		return typ
	}
}
