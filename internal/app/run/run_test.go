package run

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/John-Robertt/NFOSaver/internal/app/save"
	"github.com/John-Robertt/NFOSaver/internal/config"
	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/saver"
)

type recordObserver struct {
	mu sync.Mutex

	startCalls  int
	finishCalls int
	items       []string
}

func (o *recordObserver) OnStart(session string, opts Options, total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.startCalls++
}

func (o *recordObserver) OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = append(o.items, res.Item)
}

func (o *recordObserver) OnFinish(rr domain.RunReport) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finishCalls++
}

type memRecorder struct {
	mu      sync.Mutex
	entries []domain.ItemResult
	dryRun  []bool
}

func (m *memRecorder) Record(ctx context.Context, session string, dryRun bool, r domain.ItemResult, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, r)
	m.dryRun = append(m.dryRun, dryRun)
	return nil
}

func fixture(t *testing.T) ([]domain.ItemDescriptor, *save.Service) {
	t.Helper()
	root := t.TempDir()
	mk := func(rel string) string {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("创建目录失败：%v", err)
		}
		return p
	}

	items := []domain.ItemDescriptor{
		{ID: "a", Kind: domain.KindMovie, Path: mk("A/A.mkv"), SupportsLocalMetadata: true, Meta: domain.Meta{Title: "A"}},
		{ID: "b", Kind: domain.KindMovie, Path: mk("B/B.mkv"), SupportsLocalMetadata: true, Meta: domain.Meta{Title: "B"}},
		{ID: "c", Kind: domain.KindVideo, ExtraType: domain.ExtraThemeSong, Path: mk("C/theme.mkv"), SupportsLocalMetadata: true},
		{ID: "d", Kind: domain.KindSeries, Path: mk("D/x"), SupportsLocalMetadata: true, Meta: domain.Meta{Title: "D"}},
	}
	items[3].Path = filepath.Dir(items[3].Path)

	broken := filepath.Join(root, "B", "B.nfo")
	if err := os.WriteFile(broken, []byte("<movie><oops></movie>"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}

	opts := config.Default()
	opts.LockDir = t.TempDir()
	return items, save.New(saver.Default(), opts)
}

func TestExecute_ApplyWritesAndReports(t *testing.T) {
	items, svc := fixture(t)
	obs := &recordObserver{}
	rec := &memRecorder{}

	r := &Runner{Service: svc, Observer: obs, Recorder: rec}
	rr := r.Execute(context.Background(), items, Options{Source: "test", Update: domain.UpdateMetadataEdit, Apply: true, Workers: 3})

	if rr.DryRun {
		t.Fatalf("apply 模式不应标记 dry_run")
	}
	if rr.UpdateKind != "metadata_edit" {
		t.Fatalf("update_kind 不符合预期：%q", rr.UpdateKind)
	}
	want := domain.ReportSummary{Saved: 2, Skipped: 1, Failed: 1}
	if rr.Summary != want {
		t.Fatalf("summary 不符合预期：got=%+v want=%+v", rr.Summary, want)
	}
	// Finalize 后按 item 排序。
	var got []string
	for _, it := range rr.Items {
		got = append(got, it.Item)
	}
	if !sort.StringsAreSorted(got) {
		t.Fatalf("items 未排序：%v", got)
	}

	for _, it := range rr.Items {
		switch it.Item {
		case "a":
			if _, err := os.Stat(it.Path); err != nil {
				t.Fatalf("a 应已写入：%v", err)
			}
		case "b":
			if it.ErrorCode != domain.ErrCodeParseFailed {
				t.Fatalf("b 期望 parse_failed，实际：%+v", it)
			}
		case "c":
			if it.SkipReason != string(domain.SkipNotEnabled) {
				t.Fatalf("c 期望 not_enabled，实际：%+v", it)
			}
		case "d":
			if filepath.Base(it.Path) != "tvshow.nfo" {
				t.Fatalf("d 期望写 tvshow.nfo，实际：%+v", it)
			}
		}
		if it.OpID == "" {
			t.Fatalf("每条结果都应带 op_id：%+v", it)
		}
	}

	if obs.startCalls != 1 || obs.finishCalls != 1 || len(obs.items) != len(items) {
		t.Fatalf("observer 事件不完整：%+v", obs)
	}
	if len(rec.entries) != len(items) || rec.dryRun[0] {
		t.Fatalf("recorder 记录不完整：%d", len(rec.entries))
	}
}

func TestExecute_DryRunDoesNotWrite(t *testing.T) {
	items, svc := fixture(t)
	r := &Runner{Service: svc}
	rr := r.Execute(context.Background(), items[:1], Options{Update: domain.UpdateMetadataEdit})

	if !rr.DryRun || rr.Summary.Saved != 1 {
		t.Fatalf("dry-run 报告不符合预期：%+v", rr)
	}
	if _, err := os.Stat(rr.Items[0].Path); !os.IsNotExist(err) {
		t.Fatalf("dry-run 不应写入：%v", err)
	}
}

func TestExecute_CanceledContextStops(t *testing.T) {
	items, svc := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Service: svc}
	rr := r.Execute(ctx, items, Options{Update: domain.UpdateMetadataEdit, Apply: true})
	if len(rr.Items) > len(items) {
		t.Fatalf("结果数量异常：%d", len(rr.Items))
	}
}
