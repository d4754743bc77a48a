package slogobs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var attrJSON = jsoniter.Config{EscapeHTML: false, SortMapKeys: false}.Froze()

// Handler is a slog.Handler rendering records in one of the Format styles.
// Attributes keep the order in which they were added.
type Handler struct {
	format Format
	level  slog.Leveler
	colors bool
	// mu guards out and is shared by every handler derived with WithAttrs/WithGroup
	mu     *sync.Mutex
	out    io.Writer
	attrs  []slog.Attr
	prefix string
}

// HandlerOptions configures NewHandler. Zero values give compact output at
// INFO level to os.Stderr.
type HandlerOptions struct {
	Format Format
	Level  slog.Leveler
	Output io.Writer
	Colors bool
}

// NewHandler builds a Handler.
func NewHandler(opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	h := &Handler{
		format: opts.Format,
		level:  opts.Level,
		colors: opts.Colors,
		mu:     &sync.Mutex{},
		out:    opts.Output,
	}
	if h.format == "" {
		h.format = FormatCompact
	}
	if h.level == nil {
		h.level = slog.LevelInfo
	}
	if h.out == nil {
		h.out = os.Stderr
	}
	if !h.colors && h.format != FormatJSON {
		if f, ok := h.out.(*os.File); ok {
			h.colors = isTerminal(f)
		}
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	fields := h.fields(r)

	var line []byte
	var err error
	switch h.format {
	case FormatJSON:
		line, err = h.renderJSON(r, fields)
	case FormatPretty:
		line = h.renderPretty(r, fields)
	default:
		line, err = h.renderCompact(r, fields)
	}
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(line)
	return err
}

type kv struct {
	key   string
	value any
}

// fields flattens handler and record attributes, expanding groups into
// dotted keys.
func (h *Handler) fields(r slog.Record) []kv {
	out := make([]kv, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		out = appendAttr(out, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		out = appendAttr(out, h.prefix, a)
		return true
	})
	return out
}

func appendAttr(out []kv, prefix string, a slog.Attr) []kv {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			out = appendAttr(out, prefix+a.Key+".", child)
		}
		return out
	}
	if a.Key == "" {
		return out
	}
	var value any
	switch v.Kind() {
	case slog.KindDuration:
		value = v.Duration().String()
	case slog.KindTime:
		value = v.Time().Format(time.RFC3339)
	default:
		value = v.Any()
		if err, ok := value.(error); ok {
			value = err.Error()
		}
	}
	return append(out, kv{key: prefix + a.Key, value: value})
}

func (h *Handler) renderCompact(r slog.Record, fields []kv) ([]byte, error) {
	var b strings.Builder
	b.WriteString(r.Time.Format("2006-01-02 15:04:05"))
	b.WriteByte(' ')
	h.writeLevel(&b, r.Level, true)
	b.WriteByte(' ')
	b.WriteString(r.Message)
	if len(fields) > 0 {
		obj, err := encodeFields(fields)
		if err != nil {
			return nil, err
		}
		b.WriteString(" -> ")
		b.Write(obj)
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func (h *Handler) renderPretty(r slog.Record, fields []kv) []byte {
	var b strings.Builder
	b.WriteString(r.Time.Format("2006-01-02 15:04:05"))
	b.WriteByte(' ')
	h.writeLevel(&b, r.Level, false)
	b.WriteString("  ")
	b.WriteString(r.Message)
	b.WriteByte('\n')
	for i, f := range fields {
		branch := "|- "
		if i == len(fields)-1 {
			branch = "`- "
		}
		fmt.Fprintf(&b, "%20s%s%s: %v\n", "", branch, f.key, f.value)
	}
	return []byte(b.String())
}

func (h *Handler) renderJSON(r slog.Record, fields []kv) ([]byte, error) {
	all := make([]kv, 0, len(fields)+3)
	all = append(all,
		kv{key: "time", value: r.Time.Format(time.RFC3339)},
		kv{key: "level", value: levelName(r.Level)},
		kv{key: "msg", value: r.Message},
	)
	all = append(all, fields...)
	line, err := encodeFields(all)
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}

// encodeFields writes fields as a JSON object in slice order.
func encodeFields(fields []kv) ([]byte, error) {
	stream := attrJSON.BorrowStream(nil)
	defer attrJSON.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, f := range fields {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(f.key)
		stream.WriteVal(f.value)
	}
	stream.WriteObjectEnd()
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

func (h *Handler) writeLevel(b *strings.Builder, level slog.Level, pad bool) {
	name := levelName(level)
	if pad {
		name = fmt.Sprintf("%5s", name)
	}
	if h.colors {
		b.WriteString(levelColor(level))
		b.WriteString(name)
		b.WriteString(colorReset)
		return
	}
	b.WriteString(name)
}

func levelName(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "TRACE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

func levelColor(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return colorGray
	case level < slog.LevelInfo:
		return colorBlue
	case level < slog.LevelWarn:
		return colorGreen
	case level < slog.LevelError:
		return colorYellow
	default:
		return colorRed
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
