// Package slogobs implements observability.Provider on top of log/slog.
//
// Spans, counters and histograms are rendered as debug-level log records,
// and counter and histogram totals are kept in memory so a command can print
// them with [Observer.Snapshot] before exiting. Output format and level come
// from LLMJSON_LOG_FORMAT and LLMJSON_LOG_LEVEL unless set with options.
package slogobs
