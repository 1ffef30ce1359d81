package planner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/saver"
)

func TestPlanItem_CreateAndMerge(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Movie (2020)")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	item := domain.ItemDescriptor{
		ID:                    "m",
		Kind:                  domain.KindMovie,
		Path:                  filepath.Join(dir, "Movie.mkv"),
		SupportsLocalMetadata: true,
	}

	p := PlanItem(saver.Default(), item, domain.UpdateMetadataEdit, domain.UpdateMetadataDownload)
	if p.Action != domain.PlanCreate {
		t.Fatalf("期望 create，实际：%+v", p)
	}
	if p.Saver != "movie" || p.Target != filepath.Join(dir, "Movie.nfo") || len(p.Candidates) != 2 {
		t.Fatalf("计划不符合预期：%+v", p)
	}

	// 只有第二个候选存在：仍然写第一个候选（create）。
	write(t, filepath.Join(dir, "movie.nfo"))
	p = PlanItem(saver.Default(), item, domain.UpdateMetadataEdit, domain.UpdateMetadataDownload)
	if p.Action != domain.PlanCreate || len(p.ExistingCandidates) != 1 {
		t.Fatalf("期望 create 且记录已有的 movie.nfo：%+v", p)
	}

	write(t, filepath.Join(dir, "Movie.nfo"))
	p = PlanItem(saver.Default(), item, domain.UpdateMetadataEdit, domain.UpdateMetadataDownload)
	if p.Action != domain.PlanMerge {
		t.Fatalf("期望 merge，实际：%+v", p)
	}
}

func TestPlanItem_Skip(t *testing.T) {
	item := domain.ItemDescriptor{
		Kind:                  domain.KindMovie,
		Path:                  "/lib/Movie/Movie.mkv",
		SupportsLocalMetadata: true,
	}

	p := PlanItem(saver.Default(), item, domain.UpdateMetadataImport, domain.UpdateMetadataDownload)
	if p.Action != domain.PlanSkip || p.SkipReason != domain.SkipNotEnabled {
		t.Fatalf("期望 not_enabled，实际：%+v", p)
	}

	item.Path = ""
	p = PlanItem(saver.Default(), item, domain.UpdateMetadataEdit, domain.UpdateMetadataDownload)
	if p.Action != domain.PlanSkip || p.SkipReason != domain.SkipNoCandidatePath {
		t.Fatalf("期望 no_candidate_path，实际：%+v", p)
	}
	if p.Candidates == nil {
		t.Fatalf("Candidates 应为空切片而不是 nil（JSON 输出稳定）")
	}
}

func TestSortPlans(t *testing.T) {
	plans := []domain.ItemPlan{{Item: "b"}, {Item: "a"}, {Item: "c"}}
	SortPlans(plans)
	if plans[0].Item != "a" || plans[1].Item != "b" || plans[2].Item != "c" {
		t.Fatalf("排序不符合预期：%+v", plans)
	}
}

func write(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
}
