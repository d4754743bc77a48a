package slogobs

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/leofalp/llmjson/providers/observability"
)

// Observer is an observability.Provider writing to a slog.Logger.
type Observer struct {
	logger *slog.Logger
	store  *store
}

var _ observability.Provider = (*Observer)(nil)

// New returns an Observer. Without options the format and level come from
// the environment (see FormatFromEnv and LevelFromEnv) and records go to
// os.Stderr.
//
//	obs := slogobs.New(slogobs.WithLevel(slog.LevelDebug))
//	ex, _ := extract.New(s, extract.WithObserver(obs))
func New(opts ...Option) *Observer {
	cfg := newConfig(opts...)
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(NewHandler(&HandlerOptions{
			Format: cfg.format,
			Level:  cfg.level,
			Output: cfg.output,
			Colors: cfg.colors,
		}))
	}
	return &Observer{logger: logger, store: newStore()}
}

// Logger exposes the underlying slog.Logger.
func (o *Observer) Logger() *slog.Logger { return o.logger }

// --- TRACING ---

func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	s := &span{
		name:   name,
		start:  time.Now(),
		logger: o.logger,
		ctx:    ctx,
		attrs:  append([]observability.Attribute(nil), attrs...),
	}
	o.logger.LogAttrs(ctx, slog.LevelDebug, "span started", s.slogAttrs("span.start")...)
	return ctx, s
}

type span struct {
	name   string
	start  time.Time
	logger *slog.Logger
	ctx    context.Context

	mu    sync.Mutex
	attrs []observability.Attribute
	ended bool
}

// slogAttrs must be called with mu held or before the span is shared.
func (s *span) slogAttrs(event string, extra ...slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, 2+len(extra)+len(s.attrs))
	out = append(out, slog.String("span", s.name), slog.String("event", event))
	out = append(out, extra...)
	for _, a := range s.attrs {
		out = append(out, slog.Any(a.Key, a.Value))
	}
	return out
}

func (s *span) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	s.logger.LogAttrs(s.ctx, slog.LevelDebug, "span ended",
		s.slogAttrs("span.end", slog.Duration(observability.AttrDuration, time.Since(s.start)))...)
}

func (s *span) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, attrs...)
}

func (s *span) SetStatus(code observability.StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, observability.String(observability.AttrStatus, code.String()))
	if description != "" {
		s.attrs = append(s.attrs, observability.String("status_description", description))
	}
}

func (s *span) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, observability.Error(err))
	s.logger.LogAttrs(s.ctx, slog.LevelDebug, "span error",
		slog.String("span", s.name), slog.String(observability.AttrError, err.Error()))
}

func (s *span) AddEvent(name string, attrs ...observability.Attribute) {
	out := []slog.Attr{slog.String("span", s.name), slog.String("event", name)}
	for _, a := range attrs {
		out = append(out, slog.Any(a.Key, a.Value))
	}
	s.logger.LogAttrs(s.ctx, LevelTrace, "span event", out...)
}

// --- METRICS ---

func (o *Observer) Counter(name string) observability.Counter {
	return o.store.counter(name, o.logger)
}

func (o *Observer) Histogram(name string) observability.Histogram {
	return o.store.histogram(name, o.logger)
}

// HistogramStats summarises the values recorded by one histogram.
type HistogramStats struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
}

// Mean returns Sum/Count, or 0 when nothing was recorded.
func (s HistogramStats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Snapshot is a point-in-time copy of all metric totals.
type Snapshot struct {
	Counters   map[string]int64
	Histograms map[string]HistogramStats
}

// Names returns every metric name in the snapshot, sorted.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s.Counters)+len(s.Histograms))
	for n := range s.Counters {
		names = append(names, n)
	}
	for n := range s.Histograms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns the current metric totals. Attributes are not part of
// the series key: all Add calls on one counter name sum together.
func (o *Observer) Snapshot() Snapshot {
	return o.store.snapshot()
}

type store struct {
	mu         sync.Mutex
	counters   map[string]*counter
	histograms map[string]*histogram
}

func newStore() *store {
	return &store{
		counters:   make(map[string]*counter),
		histograms: make(map[string]*histogram),
	}
}

func (s *store) counter(name string, logger *slog.Logger) *counter {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[name]
	if !ok {
		c = &counter{name: name, logger: logger}
		s.counters[name] = c
	}
	return c
}

func (s *store) histogram(name string, logger *slog.Logger) *histogram {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.histograms[name]
	if !ok {
		h = &histogram{name: name, logger: logger, stats: HistogramStats{Min: math.Inf(1), Max: math.Inf(-1)}}
		s.histograms[name] = h
	}
	return h
}

func (s *store) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Counters:   make(map[string]int64, len(s.counters)),
		Histograms: make(map[string]HistogramStats, len(s.histograms)),
	}
	for name, c := range s.counters {
		c.mu.Lock()
		snap.Counters[name] = c.total
		c.mu.Unlock()
	}
	for name, h := range s.histograms {
		h.mu.Lock()
		snap.Histograms[name] = h.stats
		h.mu.Unlock()
	}
	return snap
}

type counter struct {
	name   string
	logger *slog.Logger
	mu     sync.Mutex
	total  int64
}

func (c *counter) Add(ctx context.Context, value int64, attrs ...observability.Attribute) {
	c.mu.Lock()
	c.total += value
	total := c.total
	c.mu.Unlock()

	out := []slog.Attr{
		slog.String("metric", c.name),
		slog.Int64("delta", value),
		slog.Int64("total", total),
	}
	for _, a := range attrs {
		out = append(out, slog.Any(a.Key, a.Value))
	}
	c.logger.LogAttrs(ctx, LevelTrace, "counter", out...)
}

type histogram struct {
	name   string
	logger *slog.Logger
	mu     sync.Mutex
	stats  HistogramStats
}

func (h *histogram) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	h.mu.Lock()
	h.stats.Count++
	h.stats.Sum += value
	h.stats.Min = math.Min(h.stats.Min, value)
	h.stats.Max = math.Max(h.stats.Max, value)
	h.mu.Unlock()

	out := []slog.Attr{slog.String("metric", h.name), slog.Float64("value", value)}
	for _, a := range attrs {
		out = append(out, slog.Any(a.Key, a.Value))
	}
	h.logger.LogAttrs(ctx, LevelTrace, "histogram", out...)
}

// --- LOGGING ---

func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, LevelTrace, msg, attrs)
}

func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelDebug, msg, attrs)
}

func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelInfo, msg, attrs)
}

func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelWarn, msg, attrs)
}

func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelError, msg, attrs)
}

func (o *Observer) log(ctx context.Context, level slog.Level, msg string, attrs []observability.Attribute) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !o.logger.Enabled(ctx, level) {
		return
	}
	out := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, slog.Any(a.Key, a.Value))
	}
	o.logger.LogAttrs(ctx, level, msg, out...)
}
