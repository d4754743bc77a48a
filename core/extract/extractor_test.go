package extract

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/leofalp/llmjson/core/schema"
	"github.com/leofalp/llmjson/core/value"
	"github.com/leofalp/llmjson/internal/jsonschema"
	"github.com/leofalp/llmjson/providers/observability"
)

func compile(t testing.TB, desc string) *schema.Schema {
	t.Helper()
	d, err := jsonschema.Parse([]byte(desc))
	if err != nil {
		t.Fatalf("jsonschema.Parse() error = %v", err)
	}
	s, err := schema.Compile(d)
	if err != nil {
		t.Fatalf("schema.Compile() error = %v", err)
	}
	return s
}

func newExtractor(t testing.TB, desc string, opts ...Option) *Extractor {
	t.Helper()
	e, err := New(compile(t, desc), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

const personSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer"},
		"active": {"type": "boolean"},
		"tags": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["name"]
}`

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		input  string
		want   string
	}{
		{
			name:   "noise before object",
			schema: `{"type":"object","properties":{"a":{"type":"string"}},"required":["a"]}`,
			input:  `noise noise { "a": "hi" }`,
			want:   `{"a":"hi"}`,
		},
		{
			name:   "embedded quotes",
			schema: `{"type":"object","properties":{"a":{"type":"string"}},"required":["a"]}`,
			input:  `{ 'a': 'it said "hello" to me' }`,
			want:   `{"a":"it said \"hello\" to me"}`,
		},
		{
			name:   "markdown fence and prose",
			schema: personSchema,
			input:  "Sure! Here is the data:\n```json\n{\"name\": \"Ada\", \"age\": 36, \"active\": True, \"tags\": [\"math\", \"code\"]}\n```\nHope it helps.",
			want:   `{"name":"Ada","age":36,"active":true,"tags":["math","code"]}`,
		},
		{
			name:   "single quotes and a missing comma",
			schema: personSchema,
			input:  `{'name': 'Bob', 'age': 41 'tags': ['x', 'y']}`,
			want:   `{"name":"Bob","age":41,"tags":["x","y"]}`,
		},
		{
			name:   "junk between fields and reordering",
			schema: personSchema,
			input:  `{"age": 7 (approx) -- "active": false, and finally "name": "Cy"}`,
			want:   `{"age":7,"active":false,"name":"Cy"}`,
		},
		{
			name:   "trailing percent after number",
			schema: `{"type":"object","properties":{"score":{"type":"number"}}}`,
			input:  `{"score": 95.5 %}`,
			want:   `{"score":95.5}`,
		},
		{
			name:   "thousands separator",
			schema: `{"type":"object","properties":{"total":{"type":"number"}}}`,
			input:  `{"total": 1,234.5}`,
			want:   `{"total":1234.5}`,
		},
		{
			name:   "bad bool and bad number",
			schema: personSchema,
			input:  `{"name": "D", "active": maybe, "age": unknown}`,
			want:   `{"name":"D","active":null,"age":0}`,
		},
		{
			name:   "unquoted values",
			schema: `{"type":"object","properties":{"a":{"type":"string"},"b":{"type":"string"}}}`,
			input:  `{"a": hello, "b": null}`,
			want:   `{"a":"hello","b":null}`,
		},
		{
			name:   "fullwidth punctuation",
			schema: personSchema,
			input:  "{\"name\": ＂张三＂，\"age\": 30｝",
			want:   `{"name":"张三","age":30}`,
		},
		{
			name:   "last duplicate wins in place",
			schema: personSchema,
			input:  `{"name": "first", "age": 1, "name": "second"}`,
			want:   `{"name":"second","age":1}`,
		},
		{
			name:   "untyped field is a placeholder",
			schema: `{"type":"object","properties":{"meta":{},"id":{"type":"integer"}}}`,
			input:  `{"meta": {"deep": [1, 2]}, "id": 9}`,
			want:   `{"meta":null,"id":9}`,
		},
		{
			name:   "nested objects",
			schema: `{"type":"object","properties":{"user":{"type":"object","properties":{"id":{"type":"integer"}},"required":["id"]},"ok":{"type":"boolean"}},"required":["user"]}`,
			input:  `result => {"user": {"id": 5}, "ok": true}`,
			want:   `{"user":{"id":5},"ok":true}`,
		},
		{
			name:   "array of objects",
			schema: `{"type":"object","properties":{"items":{"type":"array","items":{"type":"object","properties":{"n":{"type":"integer"}}}}}}`,
			input:  `{"items": [{"n": 1}, {"n": 2},]}`,
			want:   `{"items":[{"n":1},{"n":2}]}`,
		},
		{
			name:   "array root",
			schema: `{"type":"array","items":{"type":"string"}}`,
			input:  `Here: ["a", "b"] done`,
			want:   `["a","b"]`,
		},
		{
			name:   "retry after empty object",
			schema: `{"type":"object","properties":{"a":{"type":"string"}},"required":["a"]}`,
			input:  `{} then {"a": "ok"}`,
			want:   `{"a":"ok"}`,
		},
		{
			name:   "escapes decoded",
			schema: `{"type":"object","properties":{"a":{"type":"string"}}}`,
			input:  `{"a": "line\nnext \"q\" é 😀"}`,
			want:   `{"a":"line\nnext \"q\" é 😀"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newExtractor(t, tt.schema)
			got, err := e.ExtractString(tt.input)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("Extract() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtractMissingField(t *testing.T) {
	e := newExtractor(t, `{
		"type": "object",
		"properties": {"a": {"type": "string"}, "b": {"type": "string"}, "c": {"type": "integer"}},
		"required": ["a", "b"]
	}`)

	inputs := []string{
		`{"a": "x"}`,
		`{"a": "x", "c": 1}`,
		`{"c": 1, "a": "x", "junk": 2, "more": 3} {"a": "y"}`,
		`{}`,
	}
	for _, in := range inputs {
		_, err := e.ExtractString(in)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Extract(%q) error = %v, want ErrNotFound", in, err)
		}
		if !errors.Is(err, ErrMissingField) {
			t.Errorf("Extract(%q) error = %v, want ErrMissingField", in, err)
		}
		var missing *MissingFieldError
		if !errors.As(err, &missing) {
			t.Fatalf("Extract(%q) error does not carry *MissingFieldError", in)
		}
	}

	// the first missing name in declaration order is reported
	_, err := e.ExtractString(`{"c": 1}`)
	var missing *MissingFieldError
	if errors.As(err, &missing) && missing.Name != "a" {
		t.Errorf("missing.Name = %q, want a", missing.Name)
	}
}

func TestExtractRequiredWithoutProperty(t *testing.T) {
	e := newExtractor(t, `{"type":"object","properties":{"a":{"type":"string"}},"required":["z"]}`)
	_, err := e.ExtractString(`{"a": "x", "z": 1}`)
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("error = %v, want ErrMissingField for an undeclared required name", err)
	}
}

func TestExtractNotFound(t *testing.T) {
	e := newExtractor(t, personSchema)

	_, err := e.ExtractString("no braces here at all")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want *NotFoundError", err)
	}
	if nf.Attempts != 0 || nf.LastErr != nil {
		t.Errorf("NotFoundError = %+v, want no attempts", nf)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = false")
	}

	_, err = e.ExtractString(`{"name": "unterminated`)
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("error = %v, want ErrUnexpectedEOF underneath", err)
	}

	if _, err := e.Extract(nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("Extract(nil) error = %v", err)
	}
}

func TestScanAttempts(t *testing.T) {
	e := newExtractor(t, `{"type":"object","properties":{"a":{"type":"string"}},"required":["a"]}`)
	_, attempts, err := e.scan([]byte(`{} {} {"a": "x"}`), nil)
	if err != nil {
		t.Fatalf("scan() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}

	var rejected []int
	_, attempts, _ = e.scan([]byte(`{}{`), func(offset int, _ error) { rejected = append(rejected, offset) })
	if attempts != 2 || fmt.Sprint(rejected) != "[0 2]" {
		t.Errorf("attempts = %d, rejected = %v", attempts, rejected)
	}
}

func nestedArrays(levels int) string {
	desc := `{"type":"number"}`
	for i := 0; i < levels; i++ {
		desc = `{"type":"array","items":` + desc + `}`
	}
	return desc
}

func TestRecursionLimit(t *testing.T) {
	deep := newExtractor(t, nestedArrays(MaxDepth+1))
	_, err := deep.ExtractString("[1]")
	if !errors.Is(err, ErrRecursionLimit) {
		t.Errorf("error = %v, want ErrRecursionLimit", err)
	}

	input := strings.Repeat("[", 200) + "1" + strings.Repeat("]", 200)
	if _, err := deep.ExtractString(input); !errors.Is(err, ErrRecursionLimit) {
		t.Errorf("deep input error = %v, want ErrRecursionLimit", err)
	}

	limit := newExtractor(t, nestedArrays(MaxDepth))
	if _, err := limit.ExtractString("[1]"); err != nil {
		t.Errorf("%d levels should parse, got %v", MaxDepth, err)
	}
}

func TestNewRejectsPrimitiveRoots(t *testing.T) {
	for _, desc := range []string{`{"type":"string"}`, `{"type":"number"}`, `{"type":"boolean"}`, `{}`} {
		if _, err := New(compile(t, desc)); !errors.Is(err, ErrUnsupportedRoot) {
			t.Errorf("New(%s) error = %v, want ErrUnsupportedRoot", desc, err)
		}
	}
	if _, err := New(nil); !errors.Is(err, ErrUnsupportedRoot) {
		t.Errorf("New(nil) error = %v", err)
	}
}

func TestStrictUTF8(t *testing.T) {
	desc := `{"type":"object","properties":{"a":{"type":"string"}},"required":["a"]}`
	input := "{\"a\": \"bad \xfe byte\"}"

	lossy, err := newExtractor(t, desc).ExtractString(input)
	if err != nil {
		t.Fatalf("lossy Extract() error = %v", err)
	}
	if lossy.String() != `{"a":"bad � byte"}` {
		t.Errorf("lossy Extract() = %s", lossy)
	}

	pair, err := newExtractor(t, desc).ExtractString("{\"a\": \"\xff\xfe\"}")
	if err != nil {
		t.Fatalf("lossy Extract() error = %v", err)
	}
	if pair.String() != `{"a":"��"}` {
		t.Errorf("lossy Extract() = %s, want one replacement per invalid byte", pair)
	}

	_, err = newExtractor(t, desc, WithStrictUTF8()).ExtractString(input)
	if !errors.Is(err, ErrInvalidText) {
		t.Errorf("strict Extract() error = %v, want ErrInvalidText", err)
	}
}

func TestFieldLookupThresholdIsInvisible(t *testing.T) {
	build := func(n int) string {
		props := make([]string, n)
		for i := range props {
			props[i] = fmt.Sprintf(`"f%02d":{"type":"integer"}`, i)
		}
		return `{"type":"object","properties":{` + strings.Join(props, ",") + `}}`
	}
	input := `{"f03": 3, 'f00': 0, "f14": 14, "f99": 99}`

	small := newExtractor(t, build(schema.SmallFieldThreshold-1))
	large := newExtractor(t, build(schema.SmallFieldThreshold))

	a, errA := small.ExtractString(input)
	b, errB := large.ExtractString(input)
	if errA != nil || errB != nil {
		t.Fatalf("errors: %v, %v", errA, errB)
	}
	if !a.Equal(b) {
		t.Errorf("small = %s, large = %s", a, b)
	}
	if a.String() != `{"f03":3,"f00":0,"f14":14}` {
		t.Errorf("Extract() = %s", a)
	}
}

func TestExtractTerminatesOnGarbage(t *testing.T) {
	e := newExtractor(t, `{
		"type": "object",
		"properties": {
			"a": {"type": "array", "items": {"type": "boolean"}},
			"b": {"type": "array", "items": {"type": "array", "items": {"type": "number"}}},
			"c": {"type": "string"},
			"d": {"type": "object", "properties": {"a": {"type": "array", "items": {}}}}
		}
	}`)

	alphabet := []byte(`{}[]"',: ab0.-eTf\n` + "＂，｝\xff")
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		buf := make([]byte, rng.Intn(400))
		for j := range buf {
			buf[j] = alphabet[rng.Intn(len(alphabet))]
		}
		// must return; errors are fine
		_, _ = e.Extract(buf)
	}

	adversarial := []string{
		`{"a": [` + strings.Repeat("x", 1000),
		`{"b": [[[[[[`,
		`{"d": {"a": [,,,,,,]`,
		strings.Repeat(`{"c": `, 500),
	}
	for _, in := range adversarial {
		_, _ = e.ExtractString(in)
	}
}

func TestExtractConcurrent(t *testing.T) {
	e := newExtractor(t, personSchema)
	want := `{"name":"Ada","age":36}`

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got, err := e.ExtractString(`prefix {"name": "Ada", "age": 36} suffix`)
				if err != nil || got.String() != want {
					t.Errorf("Extract() = %v, %v", got, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestExtractHelper(t *testing.T) {
	v, err := Extract(compile(t, personSchema), []byte(`{"name": "x"}`))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	obj, _ := v.AsObject()
	if name, _ := obj.Get("name"); !name.Equal(value.String("x")) {
		t.Errorf("name = %v", name)
	}
	if _, err := Extract(compile(t, `{"type":"string"}`), nil); !errors.Is(err, ErrUnsupportedRoot) {
		t.Errorf("Extract() error = %v", err)
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	spans    []string
	events   []string
	counters map[string]int64
	logs     []string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{counters: map[string]int64{}}
}

func (r *recordingObserver) StartSpan(ctx context.Context, name string, _ ...observability.Attribute) (context.Context, observability.Span) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spans = append(r.spans, name)
	return ctx, &recordingSpan{r: r}
}

func (r *recordingObserver) Counter(name string) observability.Counter {
	return recordingCounter{r: r, name: name}
}

func (r *recordingObserver) Histogram(string) observability.Histogram { return recordingHistogram{} }

func (r *recordingObserver) log(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, msg)
}

func (r *recordingObserver) Trace(_ context.Context, msg string, _ ...observability.Attribute) { r.log(msg) }
func (r *recordingObserver) Debug(_ context.Context, msg string, _ ...observability.Attribute) { r.log(msg) }
func (r *recordingObserver) Info(_ context.Context, msg string, _ ...observability.Attribute)  { r.log(msg) }
func (r *recordingObserver) Warn(_ context.Context, msg string, _ ...observability.Attribute)  { r.log(msg) }
func (r *recordingObserver) Error(_ context.Context, msg string, _ ...observability.Attribute) { r.log(msg) }

type recordingSpan struct{ r *recordingObserver }

func (s *recordingSpan) End()                                       {}
func (s *recordingSpan) SetAttributes(...observability.Attribute)   {}
func (s *recordingSpan) SetStatus(observability.StatusCode, string) {}
func (s *recordingSpan) RecordError(error)                          {}
func (s *recordingSpan) AddEvent(name string, _ ...observability.Attribute) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	s.r.events = append(s.r.events, name)
}

type recordingCounter struct {
	r    *recordingObserver
	name string
}

func (c recordingCounter) Add(_ context.Context, v int64, _ ...observability.Attribute) {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	c.r.counters[c.name] += v
}

type recordingHistogram struct{}

func (recordingHistogram) Record(context.Context, float64, ...observability.Attribute) {}

func TestExtractObserved(t *testing.T) {
	obs := newRecordingObserver()
	e := newExtractor(t, `{"type":"object","properties":{"a":{"type":"string"}},"required":["a"]}`, WithObserver(obs))

	if _, err := e.ExtractString(`{} {"a": "x"}`); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if _, err := e.ExtractString(`nothing`); err == nil {
		t.Fatal("expected an error")
	}

	if len(obs.spans) != 2 || obs.spans[0] != observability.SpanExtract {
		t.Errorf("spans = %v", obs.spans)
	}
	if len(obs.events) != 1 || obs.events[0] != observability.EventCandidateRejected {
		t.Errorf("events = %v", obs.events)
	}
	if got := obs.counters[observability.MetricExtractRequests]; got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
	if got := obs.counters[observability.MetricExtractAttempts]; got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
	if strings.Join(obs.logs, "|") != "extraction succeeded|extraction failed" {
		t.Errorf("logs = %v", obs.logs)
	}
}

func TestExtractObserverFromContext(t *testing.T) {
	obs := newRecordingObserver()
	e := newExtractor(t, personSchema)
	ctx := observability.ContextWithObserver(context.Background(), obs)

	if _, err := e.ExtractContext(ctx, []byte(`{"name": "n"}`)); err != nil {
		t.Fatalf("ExtractContext() error = %v", err)
	}
	if len(obs.spans) != 1 {
		t.Errorf("spans = %v, want one extraction span", obs.spans)
	}
}

func BenchmarkExtract(b *testing.B) {
	e := newExtractor(b, personSchema)
	input := []byte("The model replied:\n{'name': 'Ada', \"age\": 36, \"active\": True, \"tags\": [\"a\", \"b\", \"c\"]}")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := e.Extract(input); err != nil {
			b.Fatal(err)
		}
	}
}
