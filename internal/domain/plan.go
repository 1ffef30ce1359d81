package domain

// PlanAction 描述目标文件将被如何处理。
type PlanAction string

const (
	// PlanCreate：目标文件不存在，会新建。
	PlanCreate PlanAction = "create"
	// PlanMerge：目标文件已存在，会与已有内容合并。
	PlanMerge PlanAction = "merge"
	// PlanSkip：不会写入，原因见 SkipReason。
	PlanSkip PlanAction = "skip"
)

// ItemPlan 是单个条目的保存计划（不读文件内容、不写入）。
type ItemPlan struct {
	Item       string     `json:"item"`
	Kind       ItemKind   `json:"kind"`
	Saver      string     `json:"saver"`
	Candidates []string   `json:"candidates"`
	Target     string     `json:"target"`
	Action     PlanAction `json:"action"`
	SkipReason SkipReason `json:"skip_reason,omitempty"`

	// ExistingCandidates 是候选路径中已存在的文件（可能不止第一个）。
	ExistingCandidates []string `json:"existing_candidates,omitempty"`
}
