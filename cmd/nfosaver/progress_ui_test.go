package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/John-Robertt/NFOSaver/internal/app/run"
	"github.com/John-Robertt/NFOSaver/internal/domain"
)

func TestFormatItemLine(t *testing.T) {
	cases := []struct {
		res  domain.ItemResult
		want string
	}{
		{domain.ItemResult{Item: "a", Status: "saved", Saver: "movie", Path: "/m/a.nfo"}, "[1/2] a OK saver=movie /m/a.nfo"},
		{domain.ItemResult{Item: "a", Status: "unchanged", Path: "/m/a.nfo"}, "[1/2] a SAME /m/a.nfo"},
		{domain.ItemResult{Item: "a", Status: "skipped", SkipReason: "not_enabled"}, "[1/2] a SKIP not_enabled"},
		{domain.ItemResult{Item: "a", Status: "failed", ErrorCode: "parse_failed", ErrorMsg: "bad"}, "[1/2] a FAIL parse_failed: bad"},
	}
	for _, tc := range cases {
		got := formatItemLine(1, 2, tc.res, 1500*time.Millisecond)
		if !strings.HasPrefix(got, tc.want) || !strings.HasSuffix(got, "(1.5s)") {
			t.Fatalf("输出不符合预期：got=%q want prefix=%q", got, tc.want)
		}
	}
}

func TestProgressUI_Events(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressUI(&buf)

	p.OnStart("sess-1", run.Options{Source: "/lib", Update: domain.UpdateMetadataEdit, Apply: true, Workers: 2}, 1)
	p.OnItemDone(1, 1, domain.ItemResult{Item: "a", Status: "saved", Saver: "movie", Path: "/lib/a.nfo"}, time.Second)
	now := time.Now()
	p.OnFinish(domain.RunReport{StartedAt: now.Add(-3 * time.Second), FinishedAt: now})

	out := buf.String()
	for _, want := range []string{"(apply)", "source: /lib", "session: sess-1", "[1/1] a OK", "00:00:03"} {
		if !strings.Contains(out, want) {
			t.Fatalf("输出缺少 %q：\n%s", want, out)
		}
	}
	if p.tickerStarted {
		t.Fatalf("全部完成后 ticker 应已停止")
	}
}

func TestProgressUI_KeepaliveOnlyAfterThreshold(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressUI(&buf)
	p.workers, p.total, p.done = 4, 3, 1
	p.startedAt = time.Now()

	p.lastPrinted = time.Now()
	p.keepalive()
	if buf.Len() != 0 {
		t.Fatalf("阈值内不应输出：%q", buf.String())
	}

	p.lastPrinted = time.Now().Add(-time.Minute)
	p.keepalive()
	if !strings.Contains(buf.String(), "done=1/3") || !strings.Contains(buf.String(), "active=2") {
		t.Fatalf("keepalive 输出不符合预期：%q", buf.String())
	}
}
