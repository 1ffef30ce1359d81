package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	ErrCodeInvalidItem    = "invalid_item"
	ErrCodeParseFailed    = "parse_failed"
	ErrCodeReadFailed     = "read_failed"
	ErrCodeWriteFailed    = "write_failed"
	ErrCodeEncodingFailed = "encoding_failed"
	ErrCodeRenderFailed   = "render_failed"
	ErrCodeLockFailed     = "lock_failed"
	ErrCodeConfigInvalid  = "config_invalid"
)

// RunReport 是一次批量保存对外稳定输出（stdout JSON）的结构。
type RunReport struct {
	Source     string `json:"source"`
	DryRun     bool   `json:"dry_run"`
	UpdateKind string `json:"update_kind"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Saved     int `json:"saved"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

type ItemResult struct {
	OpID string `json:"op_id"`
	Item string `json:"item"`
	Kind string `json:"kind"`

	Saver      string   `json:"saver"`
	Path       string   `json:"path"`
	Candidates []string `json:"candidates"`

	Status     string `json:"status"`
	SkipReason string `json:"skip_reason"`
	ErrorCode  string `json:"error_code"`
	ErrorMsg   string `json:"error_msg"`

	ExtraThumbs []string `json:"extra_thumbs,omitempty"`
	Warning     string   `json:"warning,omitempty"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) items 稳定排序：按 item 字典序；item=="" 的条目排在最后
// 3) summary 由 items 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		a := r.Items[i].Item
		b := r.Items[j].Item
		if a == "" && b == "" {
			return false
		}
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	var s ReportSummary
	for _, it := range r.Items {
		switch SaveStatus(it.Status) {
		case SaveSaved:
			s.Saved++
		case SaveUnchanged:
			s.Unchanged++
		case SaveSkipped:
			s.Skipped++
		case SaveFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
