package extract

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/leofalp/llmjson/core/schema"
	"github.com/leofalp/llmjson/core/value"
	"github.com/leofalp/llmjson/internal/cursor"
	"github.com/leofalp/llmjson/internal/utils"
	"github.com/leofalp/llmjson/providers/observability"
)

// Extractor finds and parses the first value matching a compiled schema in
// arbitrary text. It is immutable after New and safe for concurrent use.
type Extractor struct {
	schema   *schema.Schema
	root     schema.Node
	anchor   byte
	parser   parser
	observer observability.Provider
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithObserver enables tracing, metrics and logging for every call. Without
// it (and without an observer in the call context) no instrumentation code
// runs at all.
func WithObserver(p observability.Provider) Option {
	return func(e *Extractor) { e.observer = p }
}

// WithStrictUTF8 makes a string value containing invalid UTF-8 fail the
// current attempt with ErrInvalidText. By default such bytes are replaced
// with U+FFFD.
func WithStrictUTF8() Option {
	return func(e *Extractor) { e.parser.strictUTF8 = true }
}

// New returns an Extractor for s. The schema root must be an object, which
// anchors the scan on '{', or an array, which anchors it on '['.
func New(s *schema.Schema, opts ...Option) (*Extractor, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil schema", ErrUnsupportedRoot)
	}
	e := &Extractor{schema: s, root: s.Root()}
	switch e.root.Kind() {
	case schema.KindObject:
		e.anchor = '{'
	case schema.KindArray:
		e.anchor = '['
	default:
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedRoot, e.root.Kind())
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Extract is a one-shot helper building an Extractor for s.
func Extract(s *schema.Schema, text []byte) (value.Value, error) {
	e, err := New(s)
	if err != nil {
		return value.Value{}, err
	}
	return e.Extract(text)
}

// Schema returns the compiled schema the extractor was built with.
func (e *Extractor) Schema() *schema.Schema { return e.schema }

// Extract scans text for the first start offset at which the schema parses.
// When every candidate fails the error is a *NotFoundError.
func (e *Extractor) Extract(text []byte) (value.Value, error) {
	return e.ExtractContext(context.Background(), text)
}

// ExtractString is Extract for string input.
func (e *Extractor) ExtractString(text string) (value.Value, error) {
	return e.ExtractContext(context.Background(), []byte(text))
}

// ExtractContext is Extract with a context. The context is only used to find
// an observer when the extractor has none; the scan itself is not
// cancellable.
func (e *Extractor) ExtractContext(ctx context.Context, text []byte) (value.Value, error) {
	observer := e.observer
	if observer == nil {
		observer = observability.ObserverFromContext(ctx)
	}
	if observer == nil {
		v, _, err := e.scan(text, nil)
		return v, err
	}
	return e.extractObserved(ctx, observer, text)
}

// scan is the haystack loop. onReject, when set, is told about every failed
// candidate.
func (e *Extractor) scan(text []byte, onReject func(offset int, err error)) (value.Value, int, error) {
	attempts := 0
	var lastErr error

	for offset := 0; offset < len(text); {
		i := bytes.IndexByte(text[offset:], e.anchor)
		if i < 0 {
			break
		}
		start := offset + i
		attempts++

		v, err := e.parser.parse(cursor.New(text[start:]), e.root, 0)
		if err == nil {
			return v, attempts, nil
		}
		if onReject != nil {
			onReject(start, err)
		}
		lastErr = err
		offset = start + 1
	}
	return value.Value{}, attempts, &NotFoundError{Attempts: attempts, LastErr: lastErr}
}

func (e *Extractor) extractObserved(ctx context.Context, observer observability.Provider, text []byte) (value.Value, error) {
	id := uuid.NewString()
	ctx, span := observer.StartSpan(ctx, observability.SpanExtract,
		observability.String(observability.AttrExtractID, id),
		observability.Int(observability.AttrExtractInputBytes, len(text)),
		observability.String(observability.AttrExtractRootKind, e.root.Kind().String()),
	)
	defer span.End()
	ctx = observability.ContextWithSpan(ctx, span)
	ctx = observability.ContextWithObserver(ctx, observer)

	timer := utils.NewTimer()
	v, attempts, err := e.scan(text, func(offset int, err error) {
		span.AddEvent(observability.EventCandidateRejected,
			observability.Int(observability.AttrExtractOffset, offset),
			observability.Error(err),
		)
	})
	timer.Stop()

	span.SetAttributes(observability.Int(observability.AttrExtractAttempts, attempts))
	observer.Counter(observability.MetricExtractAttempts).Add(ctx, int64(attempts))
	observer.Histogram(observability.MetricExtractDuration).Record(ctx, timer.Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, "no match")
		observer.Counter(observability.MetricExtractRequests).Add(ctx, 1,
			observability.String(observability.AttrStatus, "error"))
		observer.Warn(ctx, "extraction failed",
			observability.String(observability.AttrExtractID, id),
			observability.Int(observability.AttrExtractAttempts, attempts),
			observability.String(observability.AttrExtractInputPreview, utils.Preview(text, utils.DefaultPreviewLength)),
			observability.Error(err),
		)
		return value.Value{}, err
	}

	span.SetStatus(observability.StatusOK, "")
	observer.Counter(observability.MetricExtractRequests).Add(ctx, 1,
		observability.String(observability.AttrStatus, "ok"))
	observer.Debug(ctx, "extraction succeeded",
		observability.String(observability.AttrExtractID, id),
		observability.Int(observability.AttrExtractAttempts, attempts),
		observability.Duration(observability.AttrDuration, timer.GetDuration()),
	)
	return v, nil
}
