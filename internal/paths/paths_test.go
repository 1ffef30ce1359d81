package paths

import (
	"reflect"
	"testing"

	"github.com/John-Robertt/NFOSaver/internal/domain"
)

func TestMovie_Bluray_FolderNameOnly(t *testing.T) {
	item := domain.ItemDescriptor{
		Kind:                 domain.KindMovie,
		Container:            "bluray",
		Path:                 "/lib/Heat (1995)",
		ContainingFolderPath: "/lib/Heat (1995)",
	}
	got := Resolve(item)
	want := []string{"/lib/Heat (1995)/Heat (1995).nfo"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("bluray 路径不一致：%v", got)
	}
}

func TestMovie_DVD_PathIsDiscFolder(t *testing.T) {
	item := domain.ItemDescriptor{Kind: domain.KindMovie, Container: "dvd", Path: "/lib/Heat (1995)"}
	got := Resolve(item)
	want := []string{"/lib/Heat (1995)/VIDEO_TS/VIDEO_TS.nfo", "/lib/Heat (1995)/Heat (1995).nfo"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dvd 路径不一致：%v", got)
	}
}

func TestMovie_DVD_VideoTSFirst(t *testing.T) {
	item := domain.ItemDescriptor{
		Kind:                 domain.KindMovie,
		Container:            "DVD",
		Path:                 "/lib/Alien/VIDEO_TS/VIDEO_TS.IFO",
		ContainingFolderPath: "/lib/Alien",
	}
	got := Resolve(item)
	want := []string{"/lib/Alien/VIDEO_TS/VIDEO_TS.nfo", "/lib/Alien/Alien.nfo"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dvd 路径顺序不一致：%v", got)
	}
}

func TestMovie_File_NotMixed_AppendsMovieNfo(t *testing.T) {
	item := domain.ItemDescriptor{
		Kind:      domain.KindMovie,
		Container: "mkv",
		Path:      "/lib/Movie (2020)/Movie.mkv",
	}
	got := Resolve(item)
	want := []string{"/lib/Movie (2020)/Movie.nfo", "/lib/Movie (2020)/movie.nfo"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("普通电影路径不一致：%v", got)
	}
}

func TestMovie_File_Mixed_NoFallback(t *testing.T) {
	item := domain.ItemDescriptor{
		Kind:            domain.KindMusicVideo,
		Container:       "mp4",
		Path:            "/mv/Artist - Song.mp4",
		IsInMixedFolder: true,
	}
	got := Resolve(item)
	want := []string{"/mv/Artist - Song.nfo"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("mixed folder 不应追加 movie.nfo：%v", got)
	}
}

func TestResolve_PerKind(t *testing.T) {
	cases := []struct {
		name string
		item domain.ItemDescriptor
		want []string
	}{
		{"episode", domain.ItemDescriptor{Kind: domain.KindEpisode, Path: "/tv/Show/Season 1/S01E01.mkv"}, []string{"/tv/Show/Season 1/S01E01.nfo"}},
		{"episode-bluray", domain.ItemDescriptor{Kind: domain.KindEpisode, Container: "BluRay", Path: "/tv/Show/Disc1", ContainingFolderPath: "/tv/Show/Disc1"}, []string{"/tv/Show/Disc1/Disc1.nfo"}},
		{"series", domain.ItemDescriptor{Kind: domain.KindSeries, Path: "/tv/Show"}, []string{"/tv/Show/tvshow.nfo"}},
		{"season", domain.ItemDescriptor{Kind: domain.KindSeason, Path: "/tv/Show/Season 1"}, []string{"/tv/Show/Season 1/season.nfo"}},
		{"album", domain.ItemDescriptor{Kind: domain.KindMusicAlbum, Path: "/music/A/B"}, []string{"/music/A/B/album.nfo"}},
		{"artist", domain.ItemDescriptor{Kind: domain.KindMusicArtist, Path: "/music/A"}, []string{"/music/A/artist.nfo"}},
		{"audio-no-rule", domain.ItemDescriptor{Kind: domain.KindAudio, Path: "/music/A/B/01.flac"}, nil},
		{"empty-path", domain.ItemDescriptor{Kind: domain.KindMovie}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.item)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestResolve_Pure(t *testing.T) {
	item := domain.ItemDescriptor{Kind: domain.KindMovie, Container: "mkv", Path: "/does/not/exist/x.mkv"}
	a := Resolve(item)
	b := Resolve(item)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("相同输入必须得到相同输出：%v %v", a, b)
	}
}

func TestChangeExt(t *testing.T) {
	if got := ChangeExt("/a.b/c", ".nfo"); got != "/a.b/c.nfo" {
		t.Fatalf("目录名中的点不应视为扩展名：%q", got)
	}
	if got := ChangeExt("/a/c.tar.mkv", ".nfo"); got != "/a/c.tar.nfo" {
		t.Fatalf("只替换最后一个扩展名：%q", got)
	}
}

func TestContainerIs(t *testing.T) {
	if !ContainerIs(" BluRay ", "bluray") {
		t.Fatalf("容器比较应大小写不敏感")
	}
	if ContainerIs("", "dvd") {
		t.Fatalf("空容器不应匹配")
	}
}
