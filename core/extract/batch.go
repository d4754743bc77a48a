package extract

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/leofalp/llmjson/core/value"
	"github.com/leofalp/llmjson/providers/observability"
)

// Result is the outcome of one batch item.
type Result struct {
	Value value.Value
	Err   error
}

// ExtractBatch runs Extract over texts with at most concurrency calls in
// flight (GOMAXPROCS when concurrency <= 0). results[i] belongs to texts[i].
// A failing item does not affect the others. Cancelling ctx stops new items
// from starting; those get ctx.Err() as their error and the same error is
// returned.
func (e *Extractor) ExtractBatch(ctx context.Context, texts [][]byte, concurrency int) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	observer := e.observer
	if observer == nil {
		observer = observability.ObserverFromContext(ctx)
	}
	if observer != nil {
		var span observability.Span
		ctx, span = observer.StartSpan(ctx, observability.SpanExtractBatch,
			observability.Int(observability.AttrExtractBatchSize, len(texts)))
		defer span.End()
		ctx = observability.ContextWithSpan(ctx, span)
		ctx = observability.ContextWithObserver(ctx, observer)
	}

	results := make([]Result, len(texts))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			v, err := e.ExtractContext(ctx, text)
			results[i] = Result{Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	if observer != nil {
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		if span := observability.SpanFromContext(ctx); span != nil {
			span.SetAttributes(observability.Int(observability.AttrExtractBatchFailed, failed))
		}
		observer.Info(ctx, "batch extraction finished",
			observability.Int(observability.AttrExtractBatchSize, len(texts)),
			observability.Int(observability.AttrExtractBatchFailed, failed),
		)
	}
	return results, ctx.Err()
}
