package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRunner struct {
	err      error
	commands chan string
}

func newFakeRunner(err error) *fakeRunner {
	return &fakeRunner{err: err, commands: make(chan string, 16)}
}

func (r *fakeRunner) Run(_ context.Context, command string) error {
	r.commands <- command
	return r.err
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func tempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "watched.txt")
	writeFile(t, path, content)
	return path
}

var fixedClock = func() time.Time {
	return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
}

func TestNew(t *testing.T) {
	path := tempFile(t, "a")

	w, err := New(Config{Path: path, Command: "make"})
	require.NoError(t, err)
	assert.Equal(t, DefaultInterval, w.Config().Interval)
	assert.Equal(t, "make", w.Config().Command)
}

func TestNew_Errors(t *testing.T) {
	path := tempFile(t, "a")

	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"missing file", Config{Path: filepath.Join(t.TempDir(), "nope"), Command: "make"}, ErrNotRegularFile},
		{"directory", Config{Path: t.TempDir(), Command: "make"}, ErrNotRegularFile},
		{"empty command", Config{Path: path, Command: "  "}, ErrEmptyCommand},
		{"negative interval", Config{Path: path, Command: "make", Interval: -time.Second}, ErrInvalidInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := New(tt.cfg)
			assert.Nil(t, w)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNew_ErrorNamesPath(t *testing.T) {
	dir := t.TempDir()
	_, err := New(Config{Path: dir, Command: "make"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), dir)
}

func TestHash(t *testing.T) {
	a := tempFile(t, "same")
	b := tempFile(t, "same")
	c := tempFile(t, "different")

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)
	hc, err := Hash(c)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.NotEqual(t, ha, hc)
}

func TestHash_Missing(t *testing.T) {
	_, err := Hash(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestPoll(t *testing.T) {
	path := tempFile(t, "v1")
	runner := newFakeRunner(nil)
	var out bytes.Buffer

	w, err := New(Config{Path: path, Command: "go test ./..."},
		WithRunner(runner), WithOutput(&out), WithClock(fixedClock))
	require.NoError(t, err)
	require.NoError(t, w.prime())

	assert.False(t, w.poll(context.Background()), "unchanged file must not trigger")
	assert.Empty(t, out.String())

	writeFile(t, path, "v2")
	assert.True(t, w.poll(context.Background()))
	assert.Equal(t, "2024-03-09 14:05:07 File changed! Running go test ./...\n", out.String())
	assert.Equal(t, "go test ./...", <-runner.commands)

	assert.False(t, w.poll(context.Background()), "hash must be updated after a change")
	assert.Len(t, runner.commands, 0)
}

func TestPoll_CommandFailureIsLogged(t *testing.T) {
	path := tempFile(t, "v1")
	core, logs := observer.New(zapcore.InfoLevel)

	w, err := New(Config{Path: path, Command: "false"},
		WithRunner(newFakeRunner(errors.New("exit status 1"))),
		WithOutput(&bytes.Buffer{}),
		WithLogger(zap.New(core)))
	require.NoError(t, err)
	require.NoError(t, w.prime())

	writeFile(t, path, "v2")
	assert.True(t, w.poll(context.Background()))

	entries := logs.FilterMessage("command failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	assert.False(t, w.poll(context.Background()), "a failed command still records the new hash")
}

func TestPoll_ReadFailureKeepsHash(t *testing.T) {
	path := tempFile(t, "v1")
	core, logs := observer.New(zapcore.WarnLevel)
	runner := newFakeRunner(nil)

	w, err := New(Config{Path: path, Command: "make"},
		WithRunner(runner), WithOutput(&bytes.Buffer{}), WithLogger(zap.New(core)))
	require.NoError(t, err)
	require.NoError(t, w.prime())

	require.NoError(t, os.Remove(path))
	assert.False(t, w.poll(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("could not read watched file").Len())

	writeFile(t, path, "v1")
	assert.False(t, w.poll(context.Background()), "restored content matches the old hash")
	assert.Len(t, runner.commands, 0)
}

func TestRun(t *testing.T) {
	path := tempFile(t, "v1")
	runner := newFakeRunner(nil)
	core, logs := observer.New(zapcore.InfoLevel)
	out := &syncBuffer{}

	w, err := New(Config{Path: path, Command: "make", Interval: 5 * time.Millisecond},
		WithRunner(runner), WithOutput(out), WithLogger(zap.New(core)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("watching file").Len() == 1
	}, time.Second, time.Millisecond)

	writeFile(t, path, "v2")

	select {
	case cmd := <-runner.commands:
		assert.Equal(t, "make", cmd)
	case <-time.After(2 * time.Second):
		t.Fatal("command was not run after the file changed")
	}
	assert.Contains(t, out.String(), "File changed! Running make")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_MissingFile(t *testing.T) {
	path := tempFile(t, "v1")
	w, err := New(Config{Path: path, Command: "make"}, WithRunner(newFakeRunner(nil)))
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	assert.Error(t, w.Run(context.Background()))
}

func TestShellRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	var stdout bytes.Buffer
	r := ShellRunner{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	require.NoError(t, r.Run(context.Background(), "echo hello && echo world"))
	assert.Equal(t, "hello\nworld\n", stdout.String())

	assert.Error(t, r.Run(context.Background(), "exit 3"))
}
