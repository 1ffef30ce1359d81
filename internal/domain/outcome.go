package domain

// SaveStatus 是一次保存尝试的结果分类。
type SaveStatus string

const (
	// SaveSaved 表示已写入（新建或覆盖）。
	SaveSaved SaveStatus = "saved"
	// SaveUnchanged 表示渲染结果与磁盘上已有内容逐字节相同，没有写入。
	SaveUnchanged SaveStatus = "unchanged"
	// SaveSkipped 表示无事可做（不是错误），原因见 SkipReason。
	SaveSkipped SaveStatus = "skipped"
	// SaveFailed 表示失败，Err 非空。
	SaveFailed SaveStatus = "failed"
)

// SkipReason 解释为什么跳过。
type SkipReason string

const (
	SkipNone SkipReason = ""
	// SkipNotEnabled：没有 saver 适用，或被 minimum update kind 拦下。
	SkipNotEnabled SkipReason = "not_enabled"
	// SkipNoCandidatePath：saver 适用，但路径解析结果为空。
	SkipNoCandidatePath SkipReason = "no_candidate_path"
)

// SaveOutcome 是单个条目一次保存的结果。
//
// 约束：
// - Status==SaveSaved/SaveUnchanged 时 Path 与 Content 有效
// - Status==SaveSkipped 时 SkipReason 非空
// - Status==SaveFailed 时 Err 非空，且不会有任何部分写入
type SaveOutcome struct {
	// OpID 唯一标识这次保存尝试（日志与 journal 用它关联）。
	OpID string

	Status     SaveStatus
	SkipReason SkipReason

	Saver      string
	Path       string
	Candidates []string
	Content    []byte

	Err error

	// ReplacedMalformed 表示已有文件无法解析，按 on_parse_error=overwrite 重新生成。
	ReplacedMalformed bool
	// ExtraThumbs 是本次写入的 extrathumbs 文件；ArtworkErr 是复制失败（不影响 NFO 结果）。
	ExtraThumbs []string
	ArtworkErr  error
}

// Wrote 表示这次保存是否真的落盘。
func (o SaveOutcome) Wrote() bool { return o.Status == SaveSaved }
