package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/feasibility/feasibility"
)

const (
	envConfig   = "FEASIBILITY_CONFIG"
	envAddr     = "FEASIBILITY_ADDR"
	envLogLevel = "FEASIBILITY_LOG_LEVEL"
)

type rootOptions struct {
	configFile string
	verbose    bool
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "feasibility",
		Short:         "Operational feasibility decisions from staff section assessments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			if opts.configFile == "" {
				opts.configFile = os.Getenv(envConfig)
			}
			opts.logger = newLogger(opts.verbose, os.Getenv(envLogLevel))
			slog.SetDefault(opts.logger)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to config file, JSON or YAML (env "+envConfig+")")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging to stderr")

	cmd.AddCommand(
		newEvaluateCmd(opts),
		newRunCmd(opts),
		newServeCmd(opts),
		newPolicyCmd(opts),
	)
	return cmd
}

func (o *rootOptions) loadConfig() (*feasibility.Config, error) {
	if o.configFile == "" {
		cfg := feasibility.DefaultConfig()
		return &cfg, nil
	}
	return feasibility.LoadConfig(o.configFile)
}

func newLogger(verbose bool, level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))
}
