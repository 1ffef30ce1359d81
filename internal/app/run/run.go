// Package run 批量执行保存：worker pool + 每条结果的事件 + 对外稳定的 RunReport。
package run

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/John-Robertt/NFOSaver/internal/app/save"
	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/logging"
)

// Options 描述一次批量执行。
type Options struct {
	// Source 只写进报告（清单路径或扫描目录）。
	Source string
	Update domain.UpdateKind
	// Apply=false 为 dry-run：渲染但不写入。
	Apply   bool
	Workers int
}

// Recorder 接收每条结果（例如 journal）。失败只记日志，不影响执行。
type Recorder interface {
	Record(ctx context.Context, session string, dryRun bool, r domain.ItemResult, content []byte) error
}

// Runner 持有批量执行的协作者。Observer/Recorder 可为空。
type Runner struct {
	Service  *save.Service
	Logger   *slog.Logger
	Observer Observer
	Recorder Recorder
}

type execResult struct {
	res     domain.ItemResult
	content []byte
	dur     time.Duration
}

// Execute 执行一次批量保存并返回报告。
//
// 说明：
// - 单条失败只影响该条（降级为 item 级 failed）
// - 同一路径的写入由 save.Service 串行化，worker 之间无需额外协调
// - ctx 取消后不再派发新条目；已开始的条目会完成，未派发的条目不出现在报告里
func (r *Runner) Execute(ctx context.Context, items []domain.ItemDescriptor, o Options) domain.RunReport {
	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	session := uuid.NewString()
	logger = logger.With(logging.FieldSession, session)

	rr := domain.RunReport{
		Source:     o.Source,
		DryRun:     !o.Apply,
		UpdateKind: o.Update.String(),
		StartedAt:  time.Now().UTC(),
		Items:      make([]domain.ItemResult, 0, len(items)),
	}
	if r.Observer != nil {
		r.Observer.OnStart(session, o, len(items))
	}

	workers := o.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan domain.ItemDescriptor)
	results := make(chan execResult, len(items))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range jobs {
				started := time.Now()
				var out domain.SaveOutcome
				if o.Apply {
					out = r.Service.Save(it, o.Update)
				} else {
					out = r.Service.DryRun(it, o.Update)
				}
				results <- execResult{
					res:     save.Result(it, out),
					content: out.Content,
					dur:     time.Since(started),
				}
			}
		}()
	}

	go func() {
		defer func() {
			close(jobs)
			wg.Wait()
			close(results)
		}()
		for _, it := range items {
			select {
			case jobs <- it:
			case <-ctx.Done():
				return
			}
		}
	}()

	done := 0
	for it := range results {
		done++
		rr.Items = append(rr.Items, it.res)
		logResult(logger, it.res, it.dur)
		if r.Recorder != nil {
			// 记录失败不影响执行；用独立 ctx，避免取消时丢掉已完成条目的记录。
			if err := r.Recorder.Record(context.WithoutCancel(ctx), session, !o.Apply, it.res, it.content); err != nil {
				logger.Warn("写入 journal 失败", logging.FieldOpID, it.res.OpID, "error", err)
			}
		}
		if r.Observer != nil {
			r.Observer.OnItemDone(done, len(items), it.res, it.dur)
		}
	}
	if ctx.Err() != nil && done < len(items) {
		logger.Warn("执行被取消", "done", done, "total", len(items))
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	if r.Observer != nil {
		r.Observer.OnFinish(rr)
	}
	return rr
}

func logResult(logger *slog.Logger, res domain.ItemResult, dur time.Duration) {
	attrs := []any{
		logging.FieldItem, res.Item,
		logging.FieldSaver, res.Saver,
		logging.FieldPath, res.Path,
		logging.FieldStatus, res.Status,
		logging.FieldOpID, res.OpID,
		"duration", dur,
	}
	switch domain.SaveStatus(res.Status) {
	case domain.SaveFailed:
		logger.Error("保存失败", append(attrs, "error_code", res.ErrorCode, "error", res.ErrorMsg)...)
	case domain.SaveSkipped:
		logger.Debug("跳过", append(attrs, "skip_reason", res.SkipReason)...)
	default:
		if res.Warning != "" {
			logger.Warn("保存完成（有警告）", append(attrs, "warning", res.Warning)...)
			return
		}
		logger.Info("保存完成", attrs...)
	}
}
