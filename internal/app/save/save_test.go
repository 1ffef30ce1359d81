package save

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/NFOSaver/internal/config"
	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/nfo/tree"
	"github.com/John-Robertt/NFOSaver/internal/saver"
)

func newService(t *testing.T, mutate func(*config.Options)) *Service {
	t.Helper()
	opts := config.Default()
	opts.LockDir = t.TempDir()
	if mutate != nil {
		mutate(&opts)
	}
	return New(saver.Default(), opts)
}

func movieItem(t *testing.T) domain.ItemDescriptor {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "Heat (1995)")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return domain.ItemDescriptor{
		ID:                    "heat",
		Kind:                  domain.KindMovie,
		Path:                  filepath.Join(dir, "Heat.mkv"),
		SupportsLocalMetadata: true,
		Meta:                  domain.Meta{Title: "Heat", ProductionYear: 1995},
	}
}

func TestSave_CreateThenUnchangedThenMerge(t *testing.T) {
	s := newService(t, nil)
	item := movieItem(t)
	target := filepath.Join(filepath.Dir(item.Path), "Heat.nfo")

	out := s.Save(item, domain.UpdateMetadataEdit)
	require.NoError(t, out.Err)
	assert.Equal(t, domain.SaveSaved, out.Status)
	assert.Equal(t, "movie", out.Saver)
	assert.Equal(t, target, out.Path)
	assert.Equal(t, []string{target, filepath.Join(filepath.Dir(item.Path), "movie.nfo")}, out.Candidates)
	assert.NotEmpty(t, out.OpID)

	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, out.Content, b)

	again := s.Save(item, domain.UpdateMetadataEdit)
	assert.Equal(t, domain.SaveUnchanged, again.Status)
	assert.NotEqual(t, out.OpID, again.OpID)

	// 用户手写的标签在下一次保存后仍然存在。
	edited := []byte(string(b[:len(b)-len("</movie>\n")]) + "  <mynote>keep</mynote>\n</movie>\n")
	require.NoError(t, os.WriteFile(target, edited, 0o644))
	item.Meta.Title = "Heat (Director's Cut)"

	merged := s.Save(item, domain.UpdateMetadataEdit)
	require.Equal(t, domain.SaveSaved, merged.Status)
	doc, err := tree.Parse(merged.Content)
	require.NoError(t, err)
	assert.Equal(t, "keep", doc.Root.ChildText("mynote"))
	assert.Equal(t, "Heat (Director's Cut)", doc.Root.ChildText("title"))
}

func TestSave_SkipReasons(t *testing.T) {
	s := newService(t, nil)
	item := movieItem(t)

	out := s.Save(item, domain.UpdateImage)
	assert.Equal(t, domain.SaveSkipped, out.Status)
	assert.Equal(t, domain.SkipNotEnabled, out.SkipReason)
	assert.Empty(t, out.Saver)

	theme := item
	theme.Kind = domain.KindVideo
	theme.ExtraType = domain.ExtraThemeVideo
	out = s.Save(theme, domain.UpdateMetadataEdit)
	assert.Equal(t, domain.SkipNotEnabled, out.SkipReason)

	noPath := item
	noPath.Path = ""
	out = s.Save(noPath, domain.UpdateMetadataEdit)
	assert.Equal(t, domain.SaveSkipped, out.Status)
	assert.Equal(t, domain.SkipNoCandidatePath, out.SkipReason)
	assert.Equal(t, "movie", out.Saver)

	_, err := os.Stat(filepath.Join(filepath.Dir(item.Path), "Heat.nfo"))
	assert.True(t, os.IsNotExist(err), "跳过时不应写入")
}

func TestSave_ImageUpdateEnabledWhenImagePathsSaved(t *testing.T) {
	s := newService(t, func(o *config.Options) { o.SaveImagePathsInNfo = true })
	out := s.Save(movieItem(t), domain.UpdateImage)
	assert.Equal(t, domain.SaveSaved, out.Status)
}

func TestSave_ParseErrorPolicies(t *testing.T) {
	item := movieItem(t)
	target := filepath.Join(filepath.Dir(item.Path), "Heat.nfo")
	garbage := []byte("<movie><title>broken</movie>")
	require.NoError(t, os.WriteFile(target, garbage, 0o644))

	abort := newService(t, nil)
	out := abort.Save(item, domain.UpdateMetadataEdit)
	assert.Equal(t, domain.SaveFailed, out.Status)
	assert.Equal(t, domain.ErrCodeParseFailed, Code(out.Err))
	assert.Nil(t, out.Content)
	b, _ := os.ReadFile(target)
	assert.Equal(t, garbage, b, "abort 不应改动已有文件")

	overwrite := newService(t, func(o *config.Options) { o.OnParseError = config.ParseErrorOverwrite })
	out = overwrite.Save(item, domain.UpdateMetadataEdit)
	require.NoError(t, out.Err)
	assert.Equal(t, domain.SaveSaved, out.Status)
	assert.True(t, out.ReplacedMalformed)
	doc, err := tree.Parse(out.Content)
	require.NoError(t, err)
	assert.Equal(t, "Heat", doc.Root.ChildText("title"))
}

func TestSave_WriteFailure(t *testing.T) {
	s := newService(t, nil)
	s.writeFile = func(string, []byte) error { return os.ErrPermission }

	out := s.Save(movieItem(t), domain.UpdateMetadataEdit)
	assert.Equal(t, domain.SaveFailed, out.Status)
	assert.True(t, IsWriteFailure(out.Err))
	assert.True(t, errors.Is(out.Err, os.ErrPermission))
}

func TestSave_ReadFailure(t *testing.T) {
	s := newService(t, nil)
	s.readFile = func(string) ([]byte, bool, error) { return nil, false, os.ErrPermission }

	out := s.Save(movieItem(t), domain.UpdateMetadataEdit)
	assert.Equal(t, domain.SaveFailed, out.Status)
	assert.Equal(t, domain.ErrCodeReadFailed, Code(out.Err))
	assert.False(t, IsWriteFailure(out.Err))
}

func TestSave_EncodingFailure(t *testing.T) {
	s := newService(t, nil)
	item := movieItem(t)
	item.Meta.Title = "bad \xfe"

	out := s.Save(item, domain.UpdateMetadataEdit)
	assert.Equal(t, domain.SaveFailed, out.Status)
	assert.Equal(t, domain.ErrCodeEncodingFailed, Code(out.Err))
	assert.True(t, IsWriteFailure(out.Err))
}

func TestSave_InvalidItem(t *testing.T) {
	s := newService(t, nil)

	rel := movieItem(t)
	rel.Path = "relative/Heat.mkv"
	out := s.Save(rel, domain.UpdateMetadataEdit)
	assert.Equal(t, domain.ErrCodeInvalidItem, Code(out.Err))

	unknown := movieItem(t)
	unknown.Kind = "podcast"
	out = s.Save(unknown, domain.UpdateMetadataEdit)
	assert.Equal(t, domain.ErrCodeInvalidItem, Code(out.Err))
}

func TestDryRun_DoesNotWrite(t *testing.T) {
	s := newService(t, nil)
	item := movieItem(t)

	out := s.DryRun(item, domain.UpdateMetadataEdit)
	assert.Equal(t, domain.SaveSaved, out.Status)
	assert.NotEmpty(t, out.Content)

	_, err := os.Stat(out.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestSave_ConcurrentSamePath(t *testing.T) {
	s := newService(t, nil)
	item := movieItem(t)

	var wg sync.WaitGroup
	outs := make([]domain.SaveOutcome, 12)
	for i := range outs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outs[i] = s.Save(item, domain.UpdateMetadataEdit)
		}(i)
	}
	wg.Wait()

	saved := 0
	for _, o := range outs {
		require.NoError(t, o.Err)
		if o.Status == domain.SaveSaved {
			saved++
		}
	}
	assert.Equal(t, 1, saved, "串行化后只有第一次真正写入，其余都是 unchanged")

	b, err := os.ReadFile(outs[0].Path)
	require.NoError(t, err)
	_, err = tree.Parse(b)
	assert.NoError(t, err)
}

func TestResult(t *testing.T) {
	item := movieItem(t)
	out := domain.SaveOutcome{
		OpID:   "op-1",
		Status: domain.SaveFailed,
		Saver:  "movie",
		Path:   "/x/Heat.nfo",
		Err:    &Error{Code: domain.ErrCodeWriteFailed, Path: "/x/Heat.nfo", Err: os.ErrPermission},
	}
	r := Result(item, out)
	assert.Equal(t, "op-1", r.OpID)
	assert.Equal(t, "heat", r.Item)
	assert.Equal(t, "movie", r.Kind)
	assert.Equal(t, "failed", r.Status)
	assert.Equal(t, domain.ErrCodeWriteFailed, r.ErrorCode)
	assert.NotNil(t, r.Candidates)
}
