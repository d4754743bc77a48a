package slogobs

import (
	"log/slog"
	"os"
	"strings"
)

// LevelTrace sits below slog.LevelDebug and enables per-candidate scan logs.
const LevelTrace = slog.LevelDebug - 4

// Format selects how records are rendered.
type Format string

const (
	// FormatCompact is one line per record with attributes as a JSON object:
	//	2026-01-02 15:04:05  INFO extraction succeeded -> {"extract.attempts":2}
	FormatCompact Format = "compact"

	// FormatPretty puts every attribute on its own indented line.
	FormatPretty Format = "pretty"

	// FormatJSON writes one JSON object per record, for log shipping.
	FormatJSON Format = "json"
)

func (f Format) String() string { return string(f) }

// ParseFormat maps a name to a Format, falling back to FormatCompact.
func ParseFormat(s string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPretty:
		return FormatPretty
	case FormatJSON:
		return FormatJSON
	default:
		return FormatCompact
	}
}

// ParseLogLevel maps TRACE, DEBUG, INFO, WARN/WARNING or ERROR (any case) to
// a level. The second result is false for anything else, in which case
// the level is slog.LevelInfo.
func ParseLogLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace, true
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// FormatFromEnv reads LLMJSON_LOG_FORMAT, then LOG_FORMAT.
func FormatFromEnv() Format {
	return ParseFormat(firstEnv("LLMJSON_LOG_FORMAT", "LOG_FORMAT"))
}

// LevelFromEnv reads LLMJSON_LOG_LEVEL, then LOG_LEVEL. Unknown or missing
// values give INFO.
func LevelFromEnv() slog.Level {
	level, _ := ParseLogLevel(firstEnv("LLMJSON_LOG_LEVEL", "LOG_LEVEL"))
	return level
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
