package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/NFOSaver/internal/domain"
)

func TestJournal_RecordAndRecent(t *testing.T) {
	ctx := context.Background()
	j, err := Open(filepath.Join(t.TempDir(), "sub", "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return base }

	saved := domain.ItemResult{
		OpID: "op-1", Item: "heat", Kind: "movie", Saver: "movie",
		Path: "/lib/Heat/Heat.nfo", Candidates: []string{"/lib/Heat/Heat.nfo", "/lib/Heat/movie.nfo"},
		Status: "saved",
	}
	require.NoError(t, j.Record(ctx, "s1", false, saved, []byte("<movie />\n")))

	skipped := domain.ItemResult{OpID: "op-2", Item: "theme", Kind: "video", Status: "skipped", SkipReason: "not_enabled"}
	require.NoError(t, j.Record(ctx, "s1", true, skipped, nil))

	all, err := j.Recent(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "op-2", all[0].OpID, "按时间倒序")
	assert.True(t, all[0].Detail.DryRun)

	e := all[1]
	assert.Equal(t, "s1", e.Session)
	assert.Equal(t, "/lib/Heat/Heat.nfo", e.Path)
	assert.Equal(t, saved.Candidates, e.Detail.Candidates)
	assert.Len(t, e.Detail.ContentSHA256, 64)
	assert.Equal(t, len("<movie />\n"), e.Detail.ContentSize)
	assert.True(t, base.Equal(e.CreatedAt))

	byPath, err := j.Recent(ctx, Query{Path: "/lib/Heat/Heat.nfo"})
	require.NoError(t, err)
	require.Len(t, byPath, 1)

	byStatus, err := j.Recent(ctx, Query{Status: "skipped", Limit: 5})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "not_enabled", byStatus[0].Skip)
}
