package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/NFOSaver/internal/app/run"
	"github.com/John-Robertt/NFOSaver/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端的简洁进度输出。
//
// 约束：
// - 只写到 stderr（或 fallback 到 stdout 终端），不污染 stdout 的 JSON 契约
// - 长时间没有条目完成时定期输出一行 keepalive
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	workers int
	total   int
	done    int
	saved   int
	same    int
	skip    int
	fail    int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(session string, opts run.Options, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	p.startedAt = now
	p.workers = opts.Workers
	p.total = total

	mode := "dry-run (不写入)"
	if opts.Apply {
		mode = "apply"
	}
	fmt.Fprintf(p.w, "[%s] nfosaver save (%s)\n", now.Format("15:04:05"), mode)
	fmt.Fprintf(p.w, "  source: %s\n", opts.Source)
	fmt.Fprintf(p.w, "  update_kind: %s\n", opts.Update)
	fmt.Fprintf(p.w, "  workers: %d  items: %d\n", opts.Workers, total)
	fmt.Fprintf(p.w, "  session: %s\n\n", session)

	p.lastPrinted = now
	if total > 0 && !p.tickerStarted {
		p.startTickerLocked()
	}
}

func (p *progressUI) OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total

	switch domain.SaveStatus(res.Status) {
	case domain.SaveSaved:
		p.saved++
	case domain.SaveUnchanged:
		p.same++
	case domain.SaveSkipped:
		p.skip++
	case domain.SaveFailed:
		p.fail++
	}

	fmt.Fprintln(p.w, formatItemLine(idx, total, res, dur))
	p.lastPrinted = time.Now()

	// 最后一条完成：停止 ticker，避免结束后又冒出 keepalive。
	if p.tickerStarted && p.done >= p.total {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func (p *progressUI) OnFinish(rr domain.RunReport) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tickerStarted {
		close(p.stopCh)
		p.tickerStarted = false
	}
	fmt.Fprintf(p.w, "\n用时 %s\n", formatElapsed(rr.FinishedAt.Sub(rr.StartedAt)))
}

func formatItemLine(idx, total int, res domain.ItemResult, dur time.Duration) string {
	prefix := fmt.Sprintf("[%d/%d] %s", idx, total, res.Item)
	switch domain.SaveStatus(res.Status) {
	case domain.SaveFailed:
		return fmt.Sprintf("%s FAIL %s: %s (%s)", prefix, res.ErrorCode, truncate(strings.TrimSpace(res.ErrorMsg), 160), formatShortDuration(dur))
	case domain.SaveSkipped:
		return fmt.Sprintf("%s SKIP %s (%s)", prefix, res.SkipReason, formatShortDuration(dur))
	case domain.SaveUnchanged:
		return fmt.Sprintf("%s SAME %s (%s)", prefix, res.Path, formatShortDuration(dur))
	default:
		line := fmt.Sprintf("%s OK saver=%s %s", prefix, res.Saver, res.Path)
		if n := len(res.ExtraThumbs); n > 0 {
			line += fmt.Sprintf(" extrathumbs=%d", n)
		}
		if res.Warning != "" {
			line += " warning=" + truncate(res.Warning, 90)
		}
		return line + " (" + formatShortDuration(dur) + ")"
	}
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true
	stop := p.stopCh

	go func() {
		t := time.NewTicker(p.tickerInterval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				p.keepalive()
			case <-stop:
				return
			}
		}
	}()
}

// keepalive 在超过阈值没有输出时补一行整体进度。
func (p *progressUI) keepalive() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if time.Since(p.lastPrinted) <= p.keepaliveThreshold {
		return
	}
	active := min(p.workers, p.total-p.done)
	fmt.Fprintf(p.w, "进度: done=%d/%d saved=%d same=%d skip=%d fail=%d active=%d elapsed=%s\n",
		p.done, p.total, p.saved, p.same, p.skip, p.fail, active, formatElapsed(time.Since(p.startedAt)),
	)
	p.lastPrinted = time.Now()
}

func formatShortDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
