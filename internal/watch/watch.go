// Package watch polls a file and runs a shell command whenever its content changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// DefaultInterval is the poll interval used when Config.Interval is zero.
const DefaultInterval = time.Second

const timestampLayout = "2006-01-02 15:04:05"

var (
	// ErrNotRegularFile reports a watch target that is missing or not a regular file.
	ErrNotRegularFile = errors.New("not a regular file")
	// ErrEmptyCommand reports a blank command line.
	ErrEmptyCommand = errors.New("command is required")
	// ErrInvalidInterval reports a poll interval that is not positive.
	ErrInvalidInterval = errors.New("poll interval must be positive")
)

// Config describes what to watch and what to run.
type Config struct {
	Path     string
	Command  string
	Interval time.Duration
}

// Runner executes a command line.
type Runner interface {
	Run(ctx context.Context, command string) error
}

// ShellRunner runs commands through `<Shell> -c`.
type ShellRunner struct {
	Stdout io.Writer
	Stderr io.Writer
	Shell  string
}

// Run implements Runner.
func (r ShellRunner) Run(ctx context.Context, command string) error {
	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Stdin = os.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	return cmd.Run()
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithOutput sets where change notices are printed. Defaults to stdout.
func WithOutput(out io.Writer) Option {
	return func(w *Watcher) {
		w.out = out
	}
}

// WithRunner replaces the shell runner.
func WithRunner(runner Runner) Option {
	return func(w *Watcher) {
		w.runner = runner
	}
}

// WithClock sets the time source for change notices.
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) {
		w.now = now
	}
}

// Watcher polls a single file.
type Watcher struct {
	logger *zap.Logger
	out    io.Writer
	runner Runner
	now    func() time.Time
	cfg    Config
	hash   uint64
}

// New validates cfg and returns a Watcher. The path must name an existing
// regular file.
func New(cfg Config, opts ...Option) (*Watcher, error) {
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("%v: %w", cfg.Interval, ErrInvalidInterval)
	}
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, ErrEmptyCommand
	}
	info, err := os.Stat(cfg.Path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", cfg.Path, ErrNotRegularFile)
	}

	w := &Watcher{
		cfg:    cfg,
		logger: zap.NewNop(),
		out:    os.Stdout,
		runner: ShellRunner{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Config returns the validated configuration.
func (w *Watcher) Config() Config {
	return w.cfg
}

// Hash returns the xxhash64 digest of the file's content.
func Hash(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// Run hashes the file, then re-hashes it every interval and runs the
// command after each change. It returns nil once ctx is cancelled.
// Command failures are logged and never stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.prime(); err != nil {
		return err
	}
	w.logger.Info("watching file",
		zap.String("path", w.cfg.Path),
		zap.Duration("interval", w.cfg.Interval),
		zap.String("command", w.cfg.Command),
	)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("watch stopped", zap.String("path", w.cfg.Path))
			return nil
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) prime() error {
	hash, err := Hash(w.cfg.Path)
	if err != nil {
		return fmt.Errorf("hash %s: %w", w.cfg.Path, err)
	}
	w.hash = hash
	return nil
}

// poll re-hashes the file and reports whether it changed.
func (w *Watcher) poll(ctx context.Context) bool {
	hash, err := Hash(w.cfg.Path)
	if err != nil {
		w.logger.Warn("could not read watched file", zap.String("path", w.cfg.Path), zap.Error(err))
		return false
	}
	if hash == w.hash {
		return false
	}

	fmt.Fprintf(w.out, "%s File changed! Running %s\n", w.now().Format(timestampLayout), w.cfg.Command)
	if err := w.runner.Run(ctx, w.cfg.Command); err != nil {
		w.logger.Info("command failed", zap.String("command", w.cfg.Command), zap.Error(err))
	}
	w.hash = hash
	return true
}
