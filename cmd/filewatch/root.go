package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/zoobzio/query/internal/logger"
	"github.com/zoobzio/query/internal/watch"
)

// envPollTime overrides the default poll interval, in seconds.
const envPollTime = "FILEWATCH_POLL_TIME"

// pollDefault returns the poll interval default, honouring envPollTime.
func pollDefault(getenv func(string) string) (float64, error) {
	raw := getenv(envPollTime)
	if raw == "" {
		return watch.DefaultInterval.Seconds(), nil
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds <= 0 {
		return watch.DefaultInterval.Seconds(), fmt.Errorf("%s=%q: %w", envPollTime, raw, watch.ErrInvalidInterval)
	}
	return seconds, nil
}

// notFileError reports a watch target that is missing or not a regular file.
type notFileError string

func (e notFileError) Error() string {
	return fmt.Sprintf("%s is not a file.", string(e))
}

func newRootCmd(stdout, stderr io.Writer, opts ...watch.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filewatch <file> <command>",
		Short: "Run a command whenever a file changes",
		Long: `Polls <file>, hashing its content every interval, and runs <command>
through the shell each time the hash changes. Runs until interrupted.`,
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pollTime, _ := cmd.Flags().GetFloat64("poll-time")
			levelName, _ := cmd.Flags().GetString("log-level")

			level, err := zapcore.ParseLevel(levelName)
			if err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			if !cmd.Flags().Changed("poll-time") {
				def, err := pollDefault(os.Getenv)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v, using %v\n", err, def)
				}
				pollTime = def
			}
			interval := time.Duration(pollTime * float64(time.Second))
			if interval <= 0 {
				return fmt.Errorf("poll time %vs: %w", pollTime, watch.ErrInvalidInterval)
			}

			log, err := logger.New(level)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			cfg := watch.Config{
				Path:     args[0],
				Command:  args[1],
				Interval: interval,
			}
			w, err := watch.New(cfg, append([]watch.Option{
				watch.WithLogger(log),
				watch.WithOutput(stdout),
			}, opts...)...)
			if errors.Is(err, watch.ErrNotRegularFile) {
				return notFileError(cfg.Path)
			}
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().Float64P("poll-time", "p", watch.DefaultInterval.Seconds(),
		"Poll interval in seconds (default from "+envPollTime+" when set)")
	cmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	return cmd
}

// execute runs the root command and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer, opts ...watch.Option) int {
	cmd := newRootCmd(stdout, stderr, opts...)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
