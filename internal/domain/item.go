package domain

import (
	"path/filepath"
	"strings"
)

// ItemKind 是媒体库条目的类型（封闭集合）。
type ItemKind string

const (
	KindMovie       ItemKind = "movie"
	KindMusicVideo  ItemKind = "musicvideo"
	KindVideo       ItemKind = "video"
	KindTrailer     ItemKind = "trailer"
	KindEpisode     ItemKind = "episode"
	KindSeries      ItemKind = "series"
	KindSeason      ItemKind = "season"
	KindMusicAlbum  ItemKind = "musicalbum"
	KindMusicArtist ItemKind = "musicartist"
	KindBoxSet      ItemKind = "boxset"
	KindAudio       ItemKind = "audio"
)

var allKinds = []ItemKind{
	KindMovie, KindMusicVideo, KindVideo, KindTrailer, KindEpisode,
	KindSeries, KindSeason, KindMusicAlbum, KindMusicArtist, KindBoxSet, KindAudio,
}

// ParseItemKind 解析 kind 字符串（大小写不敏感）。
func ParseItemKind(s string) (ItemKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range allKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// IsVideo 表示该类型在宿主模型里属于“视频”。
func (k ItemKind) IsVideo() bool {
	switch k {
	case KindMovie, KindMusicVideo, KindVideo, KindTrailer, KindEpisode:
		return true
	default:
		return false
	}
}

// IsFolder 表示该类型的 Path 指向目录而不是媒体文件。
func (k ItemKind) IsFolder() bool {
	switch k {
	case KindSeries, KindSeason, KindMusicAlbum, KindMusicArtist, KindBoxSet:
		return true
	default:
		return false
	}
}

// ExtraType 描述视频是否为附属内容（预告、花絮、主题曲等）。
// 空串表示不是 extra。
type ExtraType string

const (
	ExtraNone            ExtraType = ""
	ExtraTrailer         ExtraType = "trailer"
	ExtraBehindTheScenes ExtraType = "behindthescenes"
	ExtraDeletedScene    ExtraType = "deletedscene"
	ExtraInterview       ExtraType = "interview"
	ExtraScene           ExtraType = "scene"
	ExtraSample          ExtraType = "sample"
	ExtraClip            ExtraType = "clip"
	ExtraThemeSong       ExtraType = "themesong"
	ExtraThemeVideo      ExtraType = "themevideo"
)

// IsTheme 判断是否为主题曲/主题视频（这类 extra 永远不写 NFO）。
func (e ExtraType) IsTheme() bool {
	return e == ExtraThemeSong || e == ExtraThemeVideo
}

// UpdateKind 是一次条目变更的“严重程度”，可比较大小。
type UpdateKind int

const (
	UpdateNone UpdateKind = iota
	UpdateMetadataImport
	UpdateImage
	UpdateMetadataDownload
	UpdateMetadataEdit
)

var updateKindNames = map[UpdateKind]string{
	UpdateNone:             "none",
	UpdateMetadataImport:   "metadata_import",
	UpdateImage:            "image_update",
	UpdateMetadataDownload: "metadata_download",
	UpdateMetadataEdit:     "metadata_edit",
}

func (u UpdateKind) String() string {
	if s, ok := updateKindNames[u]; ok {
		return s
	}
	return "unknown"
}

// ParseUpdateKind 解析 update kind 名称（例如 "metadata_download"）。
func ParseUpdateKind(s string) (UpdateKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	for k, name := range updateKindNames {
		if name == s {
			return k, true
		}
	}
	return UpdateNone, false
}

// 常见容器名（与宿主约定一致，比较时大小写不敏感）。
const (
	ContainerDVD    = "dvd"
	ContainerBluray = "bluray"
)

// ItemDescriptor 是一次保存操作开始时对条目的不可变快照。
//
// 约束：
// - 由宿主在每次保存前新建，保存过程中不得修改
// - Path 必须是 clean + absolute；文件夹类条目（剧集/季/专辑/艺人/合集）的 Path 指向目录
// - ContainingFolderPath 为空时由 Path 推导（见 Folder）
type ItemDescriptor struct {
	ID        string
	Kind      ItemKind
	ExtraType ExtraType

	Container            string
	Path                 string
	ContainingFolderPath string
	IsInMixedFolder      bool

	// SupportsLocalMetadata 为 false 时（例如远程/虚拟条目）任何 saver 都不应启用。
	SupportsLocalMetadata bool

	Meta Meta
}

// Folder 返回条目所在目录；未显式给出时：文件夹类条目与光盘结构（Path 即光盘目录）取自身，
// 其余取 Path 的父目录。
func (it ItemDescriptor) Folder() string {
	if strings.TrimSpace(it.ContainingFolderPath) != "" {
		return it.ContainingFolderPath
	}
	if it.Kind.IsFolder() || it.IsDisc() {
		return it.Path
	}
	return filepath.Dir(it.Path)
}

// IsDisc 表示条目是 DVD/Bluray 光盘结构。
func (it ItemDescriptor) IsDisc() bool {
	c := strings.TrimSpace(it.Container)
	return strings.EqualFold(c, ContainerDVD) || strings.EqualFold(c, ContainerBluray)
}

// Label 返回便于日志/报告定位的名称。
func (it ItemDescriptor) Label() string {
	if it.ID != "" {
		return it.ID
	}
	if t := strings.TrimSpace(it.Meta.Title); t != "" {
		return t
	}
	return it.Path
}
