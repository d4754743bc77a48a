package extract

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/leofalp/llmjson/providers/observability"
)

func TestExtractBatch(t *testing.T) {
	e := newExtractor(t, personSchema)

	texts := make([][]byte, 40)
	for i := range texts {
		if i%4 == 3 {
			texts[i] = []byte("no json in this one")
			continue
		}
		texts[i] = []byte(fmt.Sprintf(`item %d: {"name": "n%d", "age": %d}`, i, i, i))
	}

	for _, concurrency := range []int{0, 1, 3, 64} {
		t.Run(fmt.Sprintf("concurrency %d", concurrency), func(t *testing.T) {
			results, err := e.ExtractBatch(context.Background(), texts, concurrency)
			if err != nil {
				t.Fatalf("ExtractBatch() error = %v", err)
			}
			if len(results) != len(texts) {
				t.Fatalf("len(results) = %d, want %d", len(results), len(texts))
			}
			for i, r := range results {
				if i%4 == 3 {
					if !errors.Is(r.Err, ErrNotFound) {
						t.Errorf("results[%d].Err = %v, want ErrNotFound", i, r.Err)
					}
					continue
				}
				want := fmt.Sprintf(`{"name":"n%d","age":%d}`, i, i)
				if r.Err != nil || r.Value.String() != want {
					t.Errorf("results[%d] = %s, %v; want %s", i, r.Value, r.Err, want)
				}
			}
		})
	}
}

func TestExtractBatchCancelled(t *testing.T) {
	e := newExtractor(t, personSchema)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := e.ExtractBatch(ctx, [][]byte{[]byte(`{"name": "a"}`), []byte(`{"name": "b"}`)}, 2)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ExtractBatch() error = %v, want context.Canceled", err)
	}
	for i, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("results[%d].Err = %v, want context.Canceled", i, r.Err)
		}
	}
}

func TestExtractBatchEmpty(t *testing.T) {
	e := newExtractor(t, personSchema)
	results, err := e.ExtractBatch(context.Background(), nil, 4)
	if err != nil || len(results) != 0 {
		t.Errorf("ExtractBatch(nil) = %v, %v", results, err)
	}
}

func TestExtractBatchObserved(t *testing.T) {
	obs := newRecordingObserver()
	e := newExtractor(t, personSchema, WithObserver(obs))

	_, err := e.ExtractBatch(context.Background(), [][]byte{[]byte(`{"name": "a"}`), []byte(`x`)}, 2)
	if err != nil {
		t.Fatalf("ExtractBatch() error = %v", err)
	}

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if len(obs.spans) != 3 || obs.spans[0] != observability.SpanExtractBatch {
		t.Errorf("spans = %v, want the batch span followed by two extraction spans", obs.spans)
	}
	if obs.counters[observability.MetricExtractRequests] != 2 {
		t.Errorf("requests = %d", obs.counters[observability.MetricExtractRequests])
	}
	if obs.logs[len(obs.logs)-1] != "batch extraction finished" {
		t.Errorf("last log = %q", obs.logs[len(obs.logs)-1])
	}
}
