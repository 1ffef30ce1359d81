package saver

import (
	"encoding/json"
	"strings"

	"github.com/John-Robertt/NFOSaver/internal/config"
	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/nfo"
	"github.com/John-Robertt/NFOSaver/internal/paths"
)

// Episode 写 <episodedetails>。
func Episode() *Saver {
	return &Saver{
		Name: "episode",
		Owned: []string{
			"season", "episode", "episodenumberend",
			"airsafter_season", "airsbefore_season", "airsbefore_episode",
			"displayseason", "displayepisode", "displayafterseason",
		},
		EnabledFunc: kindGate(domain.KindEpisode),
		PathsFunc:   paths.Episode,
		RootFunc:    fixedRoot("episodedetails"),
		WriteFunc:   writeEpisode,
	}
}

func writeEpisode(item domain.ItemDescriptor, _ config.Options, f *nfo.Fields) {
	m := item.Meta
	optInt(f, "season", m.ParentIndexNumber)
	optInt(f, "episode", m.IndexNumber)
	optInt(f, "episodenumberend", m.IndexNumberEnd)
	optInt(f, "airsafter_season", m.AirsAfterSeason)
	optInt(f, "airsbefore_season", m.AirsBeforeSeason)
	optInt(f, "airsbefore_episode", m.AirsBeforeEpisode)

	// Kodi 用 display* 表示特别篇插在哪里播出。
	optInt(f, "displayseason", m.AirsBeforeSeason)
	optInt(f, "displayepisode", m.AirsBeforeEpisode)
	optInt(f, "displayafterseason", m.AirsAfterSeason)
}

// Series 写 <tvshow>。
func Series() *Saver {
	return &Saver{
		Name: "series",
		Owned: []string{
			"id", "episodeguide", "season", "episode",
			"status", "displayorder", "airs_time", "airs_dayofweek",
		},
		EnabledFunc: kindGate(domain.KindSeries),
		PathsFunc:   paths.Series,
		RootFunc:    fixedRoot("tvshow"),
		WriteFunc:   writeSeries,
	}
}

func writeSeries(item domain.ItemDescriptor, _ config.Options, f *nfo.Fields) {
	m := item.Meta
	f.Text("id", m.ProviderID(domain.ProviderTvdb))
	f.Text("episodeguide", episodeGuide(m))
	// 剧集级别固定写 -1（Kodi 约定）。
	f.Int("season", -1, true)
	f.Int("episode", -1, true)
	f.Text("status", m.Status)
	f.Text("displayorder", m.DisplayOrder)
	f.Text("airs_time", m.AirTime)
	if len(m.AirDays) > 0 {
		f.Text("airs_dayofweek", m.AirDays[0])
	} else {
		f.Declare("airs_dayofweek")
	}
}

// episodeGuide 输出 Kodi 新格式的 JSON（key 为小写 provider 名，按 key 排序）。
func episodeGuide(m domain.Meta) string {
	ids := map[string]string{}
	for _, k := range []string{domain.ProviderImdb, domain.ProviderTmdb, domain.ProviderTvdb} {
		if v := strings.TrimSpace(m.ProviderID(k)); v != "" {
			ids[strings.ToLower(k)] = v
		}
	}
	if len(ids) == 0 {
		return ""
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return ""
	}
	return string(b)
}

// Season 写 <season>。
func Season() *Saver {
	return &Saver{
		Name:        "season",
		Owned:       []string{"seasonnumber"},
		EnabledFunc: kindGate(domain.KindSeason),
		PathsFunc:   paths.Season,
		RootFunc:    fixedRoot("season"),
		WriteFunc: func(item domain.ItemDescriptor, _ config.Options, f *nfo.Fields) {
			optInt(f, "seasonnumber", item.Meta.IndexNumber)
		},
	}
}
