package slogobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/leofalp/llmjson/providers/observability"
)

func newTestObserver(level slog.Level) (*Observer, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(WithOutput(&buf), WithLevel(level), WithFormat(FormatCompact), WithColors(false)), &buf
}

func TestObserverLogging(t *testing.T) {
	obs, buf := newTestObserver(LevelTrace)
	ctx := context.Background()

	obs.Trace(ctx, "t-msg")
	obs.Debug(ctx, "d-msg")
	obs.Info(ctx, "i-msg", observability.Int(observability.AttrExtractAttempts, 3))
	obs.Warn(ctx, "w-msg")
	obs.Error(ctx, "e-msg", observability.Error(errors.New("bad")))

	out := buf.String()
	for _, want := range []string{
		"TRACE t-msg", "DEBUG d-msg", `INFO i-msg -> {"extract.attempts":3}`,
		"WARN w-msg", `ERROR e-msg -> {"error":"bad"}`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestObserverSpan(t *testing.T) {
	obs, buf := newTestObserver(slog.LevelDebug)

	_, span := obs.StartSpan(context.Background(), observability.SpanExtract,
		observability.String(observability.AttrExtractID, "id-1"))
	span.SetAttributes(observability.Int(observability.AttrExtractAttempts, 2))
	span.SetStatus(observability.StatusOK, "")
	span.End()
	span.End()

	out := buf.String()
	if strings.Count(out, "span ended") != 1 {
		t.Errorf("End must log once:\n%s", out)
	}
	for _, want := range []string{`"span":"llmjson.extract"`, `"extract.id":"id-1"`, `"extract.attempts":2`, `"status":"ok"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestObserverMetricsSnapshot(t *testing.T) {
	obs, _ := newTestObserver(slog.LevelInfo)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			obs.Counter(observability.MetricExtractRequests).Add(ctx, 1,
				observability.String(observability.AttrStatus, "ok"))
			obs.Histogram(observability.MetricExtractDuration).Record(ctx, float64(i))
		}(i)
	}
	wg.Wait()

	snap := obs.Snapshot()
	if got := snap.Counters[observability.MetricExtractRequests]; got != 20 {
		t.Errorf("requests = %d, want 20", got)
	}
	h := snap.Histograms[observability.MetricExtractDuration]
	if h.Count != 20 || h.Min != 0 || h.Max != 19 || h.Mean() != 9.5 {
		t.Errorf("histogram stats = %+v (mean %v)", h, h.Mean())
	}
	if names := snap.Names(); len(names) != 2 || names[0] != observability.MetricExtractDuration {
		t.Errorf("Names() = %v", names)
	}
}

func TestObserverSkipsDisabledLevels(t *testing.T) {
	obs, buf := newTestObserver(slog.LevelError)
	obs.Counter("c").Add(context.Background(), 5)
	obs.Info(context.Background(), "nope")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
	if obs.Snapshot().Counters["c"] != 5 {
		t.Error("counter totals must be kept even when logging is filtered")
	}
}
