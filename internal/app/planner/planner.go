package planner

import (
	"os"
	"sort"

	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/saver"
)

// ExistingCandidates 返回候选路径中已存在的普通文件（只做 Stat，不读内容）。
// 保持候选顺序；Stat 出错（权限等）的路径按“不存在”处理，真正的读错误留给保存阶段报告。
func ExistingCandidates(candidates []string) []string {
	var out []string
	for _, p := range candidates {
		fi, err := os.Stat(p)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		out = append(out, p)
	}
	return out
}

// PlanItem 生成确定性的保存计划（不读文件内容、不写入）。
//
// 规则与保存一致：
// - 没有 saver 启用 => skip/not_enabled
// - 候选为空 => skip/no_candidate_path
// - 目标（第一个候选）已存在 => merge，否则 create
func PlanItem(reg *saver.Registry, item domain.ItemDescriptor, update, minimum domain.UpdateKind) domain.ItemPlan {
	p := domain.ItemPlan{
		Item:       item.Label(),
		Kind:       item.Kind,
		Candidates: []string{},
	}

	sv := reg.Select(item, update, minimum)
	if sv == nil {
		p.Action = domain.PlanSkip
		p.SkipReason = domain.SkipNotEnabled
		return p
	}
	p.Saver = sv.Name

	cands := sv.Resolve(item)
	if len(cands) == 0 {
		p.Action = domain.PlanSkip
		p.SkipReason = domain.SkipNoCandidatePath
		return p
	}
	p.Candidates = cands
	p.Target = cands[0]
	p.ExistingCandidates = ExistingCandidates(cands)

	p.Action = domain.PlanCreate
	if len(p.ExistingCandidates) > 0 && p.ExistingCandidates[0] == p.Target {
		p.Action = domain.PlanMerge
	}
	return p
}

// SortPlans 让上层在需要时可显式保证稳定顺序。
func SortPlans(plans []domain.ItemPlan) {
	sort.SliceStable(plans, func(i, j int) bool { return plans[i].Item < plans[j].Item })
}
