package saver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/John-Robertt/NFOSaver/internal/config"
	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/nfo"
	"github.com/John-Robertt/NFOSaver/internal/nfo/tree"
	"github.com/John-Robertt/NFOSaver/internal/paths"
)

// Album 写 <album>。
func Album() *Saver {
	return &Saver{
		Name:        "album",
		Owned:       []string{"artist", "albumartist", "track"},
		EnabledFunc: kindGate(domain.KindMusicAlbum),
		PathsFunc:   paths.Album,
		RootFunc:    fixedRoot("album"),
		WriteFunc:   writeAlbum,
	}
}

func writeAlbum(item domain.ItemDescriptor, _ config.Options, f *nfo.Fields) {
	m := item.Meta
	f.Texts("artist", m.Artists)
	f.Texts("albumartist", m.AlbumArtists)
	f.Declare("track")
	for _, t := range m.Tracks {
		title := strings.TrimSpace(t.Title)
		if title == "" {
			continue
		}
		e := tree.NewContainer("track")
		if t.Position != nil {
			e.Children = append(e.Children, tree.NewLeaf("position", strconv.Itoa(*t.Position)))
		}
		e.Children = append(e.Children, tree.NewLeaf("title", title))
		if t.RunTimeTicks > 0 {
			e.Children = append(e.Children, tree.NewLeaf("duration", duration(t.RunTimeTicks)))
		}
		f.Elem(e)
	}
}

// duration 输出 m:ss。
func duration(ticks int64) string {
	secs := ticks / 10_000_000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// Artist 写 <artist>。
func Artist() *Saver {
	return &Saver{
		Name:        "artist",
		Owned:       []string{"disbanded", "album"},
		EnabledFunc: kindGate(domain.KindMusicArtist),
		PathsFunc:   paths.Artist,
		RootFunc:    fixedRoot("artist"),
		WriteFunc:   writeArtist,
	}
}

func writeArtist(item domain.ItemDescriptor, opts config.Options, f *nfo.Fields) {
	m := item.Meta
	f.Date("disbanded", m.Disbanded, opts.ReleaseDateLayout())
	f.Declare("album")
	for _, a := range m.Albums {
		title := strings.TrimSpace(a.Title)
		if title == "" {
			continue
		}
		e := tree.NewContainer("album", tree.NewLeaf("title", title))
		if a.Year > 0 {
			e.Children = append(e.Children, tree.NewLeaf("year", strconv.Itoa(a.Year)))
		}
		f.Elem(e)
	}
}
