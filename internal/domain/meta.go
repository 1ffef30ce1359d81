package domain

import (
	"strings"
	"time"
)

// 常见 provider id 的 key（与宿主约定一致，大小写不敏感）。
const (
	ProviderImdb              = "Imdb"
	ProviderTmdb              = "Tmdb"
	ProviderTvdb              = "Tvdb"
	ProviderTmdbCollection    = "TmdbCollection"
	ProviderMusicBrainzAlbum  = "MusicBrainzAlbum"
	ProviderMusicBrainzArtist = "MusicBrainzArtist"
)

// 人员类型（actor 之外的类型写成 director/writer 等独立元素）。
const (
	PersonActor     = "Actor"
	PersonGuestStar = "GuestStar"
	PersonDirector  = "Director"
	PersonWriter    = "Writer"
	PersonProducer  = "Producer"
	PersonComposer  = "Composer"
)

// Meta 是条目的元数据字段集合。
//
// 约束：
// - 字段缺失允许为空；空值意味着“该字段没有数据”，由 saver 决定是否删除已有元素
// - 列表保持宿主给出的顺序
type Meta struct {
	Title         string `json:"title,omitempty"`
	OriginalTitle string `json:"original_title,omitempty"`
	SortTitle     string `json:"sort_title,omitempty"`
	Overview      string `json:"overview,omitempty"`
	ShortOverview string `json:"short_overview,omitempty"`
	Tagline       string `json:"tagline,omitempty"`

	OfficialRating  string  `json:"official_rating,omitempty"`
	CustomRating    string  `json:"custom_rating,omitempty"`
	CommunityRating float64 `json:"community_rating,omitempty"`
	CriticRating    float64 `json:"critic_rating,omitempty"`

	ProductionYear int       `json:"production_year,omitempty"`
	PremiereDate   time.Time `json:"premiere_date,omitempty"`
	EndDate        time.Time `json:"end_date,omitempty"`
	DateAdded      time.Time `json:"date_added,omitempty"`
	RunTimeTicks   int64     `json:"runtime_ticks,omitempty"`

	Genres              []string `json:"genres,omitempty"`
	Studios             []string `json:"studios,omitempty"`
	Tags                []string `json:"tags,omitempty"`
	ProductionLocations []string `json:"production_locations,omitempty"`

	PreferredLanguage    string   `json:"preferred_language,omitempty"`
	PreferredCountryCode string   `json:"preferred_country_code,omitempty"`
	LockData             bool     `json:"lock_data,omitempty"`
	LockedFields         []string `json:"locked_fields,omitempty"`

	ProviderIDs map[string]string `json:"provider_ids,omitempty"`
	People      []Person          `json:"people,omitempty"`
	Images      Images            `json:"images,omitempty"`
	Trailers    []string          `json:"trailers,omitempty"`

	// Collections 是条目所属合集的名称（写成 <set>）。
	Collections []string `json:"collections,omitempty"`

	// 音乐相关
	Artists      []string     `json:"artists,omitempty"`
	AlbumArtists []string     `json:"album_artists,omitempty"`
	Album        string       `json:"album,omitempty"`
	Tracks       []Track      `json:"tracks,omitempty"`
	Albums       []AlbumEntry `json:"albums,omitempty"`
	Disbanded    time.Time    `json:"disbanded,omitempty"`

	// 剧集相关；nil 表示未知（与 0 区分：第 0 季是特别篇）
	IndexNumber       *int     `json:"index_number,omitempty"`
	IndexNumberEnd    *int     `json:"index_number_end,omitempty"`
	ParentIndexNumber *int     `json:"parent_index_number,omitempty"`
	AirsAfterSeason   *int     `json:"airs_after_season,omitempty"`
	AirsBeforeSeason  *int     `json:"airs_before_season,omitempty"`
	AirsBeforeEpisode *int     `json:"airs_before_episode,omitempty"`
	Status            string   `json:"status,omitempty"`
	AirTime           string   `json:"air_time,omitempty"`
	AirDays           []string `json:"air_days,omitempty"`
	DisplayOrder      string   `json:"display_order,omitempty"`

	// UserData 以用户 id 为 key；只有配置里选中的用户会被导出。
	UserData map[string]UserData `json:"user_data,omitempty"`
}

// ProviderID 按 key 查找 provider id（大小写不敏感）。
func (m Meta) ProviderID(key string) string {
	if v, ok := m.ProviderIDs[key]; ok {
		return v
	}
	for k, v := range m.ProviderIDs {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// Person 是演职人员条目。
type Person struct {
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	Type      string `json:"type,omitempty"`
	SortOrder *int   `json:"sort_order,omitempty"`
	Thumb     string `json:"thumb,omitempty"`
}

// Images 是本地图片的绝对路径（只有 save_image_paths_in_nfo 打开时才会写入 NFO）。
type Images struct {
	Primary   string   `json:"primary,omitempty"`
	Backdrops []string `json:"backdrops,omitempty"`
	Logo      string   `json:"logo,omitempty"`
	Banner    string   `json:"banner,omitempty"`
	Thumb     string   `json:"thumb,omitempty"`
	Disc      string   `json:"disc,omitempty"`
	Art       string   `json:"art,omitempty"`
}

// Empty 判断是否一张图都没有。
func (im Images) Empty() bool {
	return im.Primary == "" && len(im.Backdrops) == 0 && im.Logo == "" && im.Banner == "" &&
		im.Thumb == "" && im.Disc == "" && im.Art == ""
}

// Track 是专辑曲目。
type Track struct {
	Position     *int   `json:"position,omitempty"`
	Title        string `json:"title"`
	RunTimeTicks int64  `json:"runtime_ticks,omitempty"`
}

// AlbumEntry 是艺人的专辑列表条目。
type AlbumEntry struct {
	Title string `json:"title"`
	Year  int    `json:"year,omitempty"`
}

// UserData 是单个用户对条目的播放状态。
type UserData struct {
	Played                bool      `json:"played,omitempty"`
	PlayCount             int       `json:"play_count,omitempty"`
	LastPlayedDate        time.Time `json:"last_played_date,omitempty"`
	IsFavorite            bool      `json:"is_favorite,omitempty"`
	Rating                float64   `json:"rating,omitempty"`
	PlaybackPositionTicks int64     `json:"playback_position_ticks,omitempty"`
}
