// Package observability defines the tracing, metrics and logging interfaces
// used by the extraction engine, together with the attribute keys, span
// names and metric names it records.
//
// [Provider] composes [Tracer], [Metrics] and [Logger] into one dependency.
// It travels either as an explicit option or through a [context.Context]
// via [ContextWithObserver] and [ObserverFromContext]; the active [Span] is
// carried the same way with [ContextWithSpan] and [SpanFromContext].
//
// A slog-backed implementation lives in the slogobs subpackage.
package observability
