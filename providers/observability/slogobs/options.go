package slogobs

import (
	"io"
	"log/slog"
	"os"
)

// Option configures an Observer.
type Option func(*config)

type config struct {
	format Format
	level  slog.Level
	output io.Writer
	colors bool
	// logger, when set, replaces the built-in handler entirely
	logger *slog.Logger
}

func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

func WithLevel(level slog.Level) Option {
	return func(c *config) { c.level = level }
}

// WithOutput sets the destination. The default is os.Stderr so that logs
// never mix with extracted JSON written to stdout.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.output = w }
}

// WithColors forces ANSI colours on or off for the compact and pretty
// formats. Without it colours are enabled only when the output is a terminal.
func WithColors(enabled bool) Option {
	return func(c *config) { c.colors = enabled }
}

// WithLogger routes everything through an existing logger. Format, level,
// output and colour options are ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		format: FormatFromEnv(),
		level:  LevelFromEnv(),
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
