package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leofalp/llmjson/providers/observability"
	"github.com/leofalp/llmjson/providers/observability/slogobs"
)

const envPrefix = "LLMJSON"

// app is the state shared by all subcommands of one invocation.
type app struct {
	v        *viper.Viper
	observer *slogobs.Observer
	level    slog.Level
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "llmjson",
		Short:         "Extract and repair JSON in language model output",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			a.logMetrics(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (yaml, json or toml) with flag defaults")
	flags.String("log-level", "warn", "log level: trace, debug, info, warn, error")
	flags.String("log-format", string(slogobs.FormatCompact), "log format: compact, pretty, json")

	root.AddCommand(newExtractCmd(a), newRepairCmd(a), newSchemaCmd(a))
	return root
}

// setup resolves configuration in the order flag, environment, config file,
// default, and builds the observer.
func (a *app) setup(cmd *cobra.Command) error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	level, ok := slogobs.ParseLogLevel(a.v.GetString("log-level"))
	if !ok {
		return fmt.Errorf("unknown log level %q", a.v.GetString("log-level"))
	}
	a.level = level
	a.observer = slogobs.New(
		slogobs.WithOutput(cmd.ErrOrStderr()),
		slogobs.WithLevel(level),
		slogobs.WithFormat(slogobs.ParseFormat(a.v.GetString("log-format"))),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(observability.ContextWithObserver(ctx, a.observer))
	return nil
}

// logMetrics writes the metric totals of the run at debug level.
func (a *app) logMetrics(ctx context.Context) {
	if a.observer == nil || a.level > slog.LevelDebug {
		return
	}
	snap := a.observer.Snapshot()
	for _, name := range snap.Names() {
		if n, ok := snap.Counters[name]; ok {
			a.observer.Debug(ctx, "counter", observability.String("name", name), observability.Int64("total", n))
			continue
		}
		h := snap.Histograms[name]
		a.observer.Debug(ctx, "histogram",
			observability.String("name", name),
			observability.Int64("count", h.Count),
			observability.Float64("mean", h.Mean()),
			observability.Float64("max", h.Max),
		)
	}
}
