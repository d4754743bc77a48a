package slogobs

import (
	"log/slog"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input  string
		want   slog.Level
		wantOK bool
	}{
		{"TRACE", LevelTrace, true},
		{"debug", slog.LevelDebug, true},
		{"  Info ", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"WARN", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLogLevel(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLogLevel(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"compact", FormatCompact},
		{"PRETTY", FormatPretty},
		{" json ", FormatJSON},
		{"xml", FormatCompact},
		{"", FormatCompact},
	}
	for _, tt := range tests {
		if got := ParseFormat(tt.input); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestEnvPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		wantLevel  slog.Level
		wantFormat Format
	}{
		{
			name:       "nothing set",
			env:        map[string]string{},
			wantLevel:  slog.LevelInfo,
			wantFormat: FormatCompact,
		},
		{
			name:       "generic variables",
			env:        map[string]string{"LOG_LEVEL": "debug", "LOG_FORMAT": "json"},
			wantLevel:  slog.LevelDebug,
			wantFormat: FormatJSON,
		},
		{
			name: "prefixed variables win",
			env: map[string]string{
				"LOG_LEVEL": "debug", "LLMJSON_LOG_LEVEL": "warn",
				"LOG_FORMAT": "json", "LLMJSON_LOG_FORMAT": "pretty",
			},
			wantLevel:  slog.LevelWarn,
			wantFormat: FormatPretty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"LOG_LEVEL", "LLMJSON_LOG_LEVEL", "LOG_FORMAT", "LLMJSON_LOG_FORMAT"} {
				t.Setenv(k, tt.env[k])
			}
			if got := LevelFromEnv(); got != tt.wantLevel {
				t.Errorf("LevelFromEnv() = %v, want %v", got, tt.wantLevel)
			}
			if got := FormatFromEnv(); got != tt.wantFormat {
				t.Errorf("FormatFromEnv() = %v, want %v", got, tt.wantFormat)
			}
		})
	}
}
