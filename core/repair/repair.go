package repair

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"

	"github.com/leofalp/llmjson/core/value"
	"github.com/leofalp/llmjson/internal/utils"
	"github.com/leofalp/llmjson/providers/observability"
)

// Repair parses text as JSON without a schema. It tolerates prose before
// and after the value, comments, trailing commas, single quotes, the
// Python literals True/False/None and bare NaN/Infinity/-Infinity. Object
// keys must be quoted: an unquoted key fails with ErrUnquotedKey.
func Repair(text string) (value.Value, error) {
	v, _, err := repair(text)
	return v, err
}

// RepairContext is Repair instrumented with the observer stored in ctx, if
// any.
func RepairContext(ctx context.Context, text string) (value.Value, error) {
	observer := observability.ObserverFromContext(ctx)
	if observer == nil {
		return Repair(text)
	}

	ctx, span := observer.StartSpan(ctx, observability.SpanRepair,
		observability.Int(observability.AttrRepairInputBytes, len(text)))
	defer span.End()

	timer := utils.NewTimer()
	v, skipped, err := repair(text)
	timer.Stop()
	span.SetAttributes(observability.Int(observability.AttrRepairSkippedBytes, skipped))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, "repair failed")
		observer.Counter(observability.MetricRepairRequests).Add(ctx, 1,
			observability.String(observability.AttrStatus, "error"))
		observer.Warn(ctx, "repair failed",
			observability.String(observability.AttrExtractInputPreview, utils.Preview([]byte(text), utils.DefaultPreviewLength)),
			observability.Error(err),
		)
		return value.Value{}, err
	}

	span.SetStatus(observability.StatusOK, "")
	observer.Counter(observability.MetricRepairRequests).Add(ctx, 1,
		observability.String(observability.AttrStatus, "ok"))
	observer.Debug(ctx, "repair succeeded",
		observability.Int(observability.AttrRepairSkippedBytes, skipped),
		observability.Duration(observability.AttrDuration, timer.GetDuration()),
	)
	return v, nil
}

// repair also returns the number of leading bytes skipped as prose.
func repair(text string) (value.Value, int, error) {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		// no container, let jsonrepair have a go at a bare scalar
		start = 0
	}

	normalized, err := normalize(text[start:])
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Offset += start
		}
		return value.Value{}, start, err
	}

	repaired, err := jsonrepair.JSONRepair(normalized)
	if err != nil {
		return value.Value{}, start, &ParseError{Offset: start, Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}
	if !gjson.Valid(repaired) {
		return value.Value{}, start, &ParseError{Offset: start, Err: ErrMalformed}
	}
	return fromResult(gjson.Parse(repaired)), start, nil
}

func fromResult(r gjson.Result) value.Value {
	switch r.Type {
	case gjson.True:
		return value.Bool(true)
	case gjson.False:
		return value.Bool(false)
	case gjson.Number:
		return value.Number(r.Num)
	case gjson.String:
		return fromString(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			items := make([]value.Value, 0)
			r.ForEach(func(_, item gjson.Result) bool {
				items = append(items, fromResult(item))
				return true
			})
			return value.Array(items...)
		}
		obj := value.NewObject()
		r.ForEach(func(key, item gjson.Result) bool {
			obj.Set(key.Str, fromResult(item))
			return true
		})
		return value.ObjectValue(obj)
	default:
		return value.Null()
	}
}

func fromString(s string) value.Value {
	if rest, ok := strings.CutPrefix(s, marker); ok {
		switch rest {
		case "NaN":
			return value.Number(math.NaN())
		case "Infinity":
			return value.Number(math.Inf(1))
		case "-Infinity":
			return value.Number(math.Inf(-1))
		}
	}
	return value.String(s)
}
