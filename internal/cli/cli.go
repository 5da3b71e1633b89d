// Package cli wires the gridsweep subcommands: generate, submit, status.
package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gridsweep/gridsweep/internal/ctxlog"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// New builds the root command. Output intended for the operator goes to
// outW; logs go to stderr.
func New(outW io.Writer) *cobra.Command {
	var logLevel, logFormat string

	root := &cobra.Command{
		Use:           "gridsweep",
		Short:         "Parameter sweep orchestrator for HPC batch schedulers",
		Long:          "gridsweep expands a declarative sweep spec into per-run directories,\nsubmits each combination as an independent batch job, and keeps a\nmanifest mapping runs to parameters, job IDs and output paths.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := strings.ToLower(logLevel)
			switch level {
			case "debug", "info", "warn", "error":
			default:
				return &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
			}
			format := strings.ToLower(logFormat)
			if format != "text" && format != "json" {
				return &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
			}
			logger := newLogger(level, format, cmd.ErrOrStderr())
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
			return nil
		},
	}
	root.SetOut(outW)

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")

	root.AddCommand(newGenerateCmd(), newSubmitCmd(), newStatusCmd())
	return root
}

// newLogger creates and configures a new slog.Logger instance. It does not
// set the global logger, allowing for isolated logger instances.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler

	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}

	return slog.New(handler)
}
