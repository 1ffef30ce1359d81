package nfo

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/John-Robertt/NFOSaver/internal/config"
	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/infra/htmlx"
	"github.com/John-Robertt/NFOSaver/internal/nfo/tree"
)

// CommonTags 是每个 saver 都拥有的标签（由 writeCommon 产出）。
var CommonTags = []string{
	"plot", "outline", "biography", "customrating", "lockdata", "lockedfields", "dateadded",
	"title", "originaltitle", "director", "writer", "credits", "trailer",
	"rating", "criticrating", "year", "sorttitle", "mpaa",
	"imdbid", "tmdbid", "tvdbid", "language", "countrycode",
	"premiered", "releasedate", "aired", "formed", "enddate",
	"country", "genre", "studio", "tag", "tagline", "runtime",
	"art", "actor", "uniqueid", "collectionnumber",
	"watched", "playcount", "lastplayed", "userrating", "isuserfavorite", "resume",
}

// DateTimeLayout 用于 dateadded / lastplayed。
const DateTimeLayout = "2006-01-02 15:04:05"

// ticksPerSecond：宿主的时长单位是 100ns。
const ticksPerSecond = 10_000_000

func writeCommon(item domain.ItemDescriptor, opts config.Options, f *Fields) {
	m := item.Meta

	if item.Kind == domain.KindMusicArtist {
		f.Text("biography", htmlx.PlainText(m.Overview))
	}
	f.Text("plot", htmlx.PlainText(m.Overview))
	f.Text("outline", htmlx.PlainText(m.ShortOverview))
	f.Text("customrating", m.CustomRating)
	f.Bool("lockdata", m.LockData)
	f.Text("lockedfields", strings.Join(normList(m.LockedFields), "|"))
	f.Date("dateadded", m.DateAdded, DateTimeLayout)

	f.Text("title", m.Title)
	f.Text("originaltitle", m.OriginalTitle)

	var directors, writers []string
	for _, p := range m.People {
		switch {
		case strings.EqualFold(p.Type, domain.PersonDirector):
			directors = append(directors, p.Name)
		case strings.EqualFold(p.Type, domain.PersonWriter):
			writers = append(writers, p.Name)
		}
	}
	f.Texts("director", directors)
	f.Texts("writer", writers)
	f.Texts("credits", writers)

	trailers := make([]string, 0, len(m.Trailers))
	for _, u := range m.Trailers {
		trailers = append(trailers, TrailerURL(u))
	}
	f.Texts("trailer", trailers)

	f.Float("rating", m.CommunityRating)
	f.Float("criticrating", m.CriticRating)
	f.Int("year", m.ProductionYear, m.ProductionYear > 0)
	f.Text("sorttitle", m.SortTitle)
	f.Text("mpaa", m.OfficialRating)

	f.Text("imdbid", m.ProviderID(domain.ProviderImdb))
	f.Text("tmdbid", m.ProviderID(domain.ProviderTmdb))
	f.Text("tvdbid", m.ProviderID(domain.ProviderTvdb))
	f.Text("language", m.PreferredLanguage)
	f.Text("countrycode", m.PreferredCountryCode)

	layout := opts.ReleaseDateLayout()
	switch item.Kind {
	case domain.KindMusicArtist:
		f.Date("formed", m.PremiereDate, layout)
	case domain.KindEpisode:
		f.Date("aired", m.PremiereDate, layout)
		f.Date("premiered", m.PremiereDate, layout)
	default:
		f.Date("premiered", m.PremiereDate, layout)
		f.Date("releasedate", m.PremiereDate, layout)
	}
	if item.Kind == domain.KindSeries {
		f.Date("enddate", m.EndDate, "2006-01-02")
	}

	f.Texts("country", m.ProductionLocations)
	f.Texts("genre", m.Genres)
	f.Texts("studio", m.Studios)
	f.Texts("tag", m.Tags)
	f.Text("tagline", m.Tagline)

	if item.Kind.IsVideo() && m.RunTimeTicks > 0 {
		mins := int(math.Round(float64(m.RunTimeTicks) / float64(60*ticksPerSecond)))
		f.Int("runtime", mins, mins > 0)
	}

	if opts.SaveImagePathsInNfo {
		if art := artElement(m.Images, opts); art != nil {
			f.Elem(art)
		}
	}

	for _, p := range m.People {
		if strings.EqualFold(p.Type, domain.PersonDirector) || strings.EqualFold(p.Type, domain.PersonWriter) {
			continue
		}
		if a := actorElement(p, opts); a != nil {
			f.Elem(a)
		}
	}

	for _, id := range uniqueIDs(m.ProviderIDs) {
		f.Elem(id)
	}
	f.Text("collectionnumber", m.ProviderID(domain.ProviderTmdbCollection))

	if opts.UserID != "" {
		if ud, ok := m.UserData[opts.UserID]; ok {
			writeUserData(ud, m.RunTimeTicks, f)
		}
	}
}

func artElement(im domain.Images, opts config.Options) *tree.Element {
	art := tree.NewContainer("art")
	add := func(name, p string) {
		if p = strings.TrimSpace(p); p != "" {
			art.Children = append(art.Children, tree.NewLeaf(name, opts.SubstitutePath(p)))
		}
	}
	add("poster", im.Primary)
	for _, b := range im.Backdrops {
		add("fanart", b)
	}
	add("banner", im.Banner)
	add("clearlogo", im.Logo)
	add("landscape", im.Thumb)
	add("discart", im.Disc)
	add("clearart", im.Art)
	if len(art.Children) == 0 {
		return nil
	}
	return art
}

func actorElement(p domain.Person, opts config.Options) *tree.Element {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil
	}
	a := tree.NewContainer("actor", tree.NewLeaf("name", name))
	if r := strings.TrimSpace(p.Role); r != "" {
		a.Children = append(a.Children, tree.NewLeaf("role", r))
	}
	if t := strings.TrimSpace(p.Type); t != "" {
		a.Children = append(a.Children, tree.NewLeaf("type", t))
	}
	if p.SortOrder != nil {
		a.Children = append(a.Children, tree.NewLeaf("sortorder", strconv.Itoa(*p.SortOrder)))
	}
	if th := strings.TrimSpace(p.Thumb); th != "" && opts.SaveImagePathsInNfo {
		a.Children = append(a.Children, tree.NewLeaf("thumb", opts.SubstitutePath(th)))
	}
	return a
}

// uniqueIDs 按 provider 名排序，保证输出稳定。
func uniqueIDs(ids map[string]string) []*tree.Element {
	keys := make([]string, 0, len(ids))
	for k, v := range ids {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		// 合集 id 单独写成 collectionnumber。
		if strings.EqualFold(k, domain.ProviderTmdbCollection) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*tree.Element, 0, len(keys))
	for _, k := range keys {
		e := tree.NewLeaf("uniqueid", strings.TrimSpace(ids[k]))
		e.Attrs = []tree.Attr{{Name: "type", Value: strings.ToLower(k)}}
		out = append(out, e)
	}
	return out
}

func writeUserData(ud domain.UserData, runtimeTicks int64, f *Fields) {
	f.Bool("isuserfavorite", ud.IsFavorite)
	f.Int("playcount", ud.PlayCount, true)
	f.Bool("watched", ud.Played)
	f.Date("lastplayed", ud.LastPlayedDate, DateTimeLayout)
	f.Float("userrating", ud.Rating)
	if ud.PlaybackPositionTicks > 0 {
		r := tree.NewContainer("resume",
			tree.NewLeaf("position", seconds(ud.PlaybackPositionTicks)),
			tree.NewLeaf("total", seconds(runtimeTicks)),
		)
		f.Elem(r)
	}
}

func seconds(ticks int64) string {
	return strconv.FormatFloat(float64(ticks)/ticksPerSecond, 'f', -1, 64)
}

// TrailerURL 把 YouTube 链接转成 Kodi YouTube 插件的播放地址；其它链接原样返回。
func TrailerURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")
	var id string
	switch host {
	case "youtube.com":
		if u.Path == "/watch" {
			id = u.Query().Get("v")
		}
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	}
	if id == "" {
		return raw
	}
	return "plugin://plugin.video.youtube/?action=play_video&videoid=" + id
}
