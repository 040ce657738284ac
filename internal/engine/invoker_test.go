package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/flood-sim-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeScript creates an executable stub engine in dir and returns its name relative to dir.
func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	const name = "run.sh"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"+body), 0o755))
	return "./" + name
}

func TestInvoke_Success(t *testing.T) {
	dir := t.TempDir()
	cmd := writeScript(t, dir, `echo "args: $*"
echo "cwd: $(pwd -P)"
echo "progress" >&2
`)

	inv := NewInvoker(cmd, dir, 0, discardLogger())
	res := inv.Invoke(context.Background(), []string{"data/dem.tif", "10,5", "0"})

	assert.Equal(t, domain.ExitOK, res.Status)
	assert.Equal(t, 0, res.ExitCode)
	require.NoError(t, res.Err)
	assert.Contains(t, res.Stdout, "args: data/dem.tif 10,5 0")

	realDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, "cwd: "+realDir)
	assert.Equal(t, "progress\n", res.Stderr)
	assert.Positive(t, res.Duration)
}

func TestInvoke_ArgumentsArePositional(t *testing.T) {
	dir := t.TempDir()
	cmd := writeScript(t, dir, `for a in "$@"; do echo "[$a]"; done
`)

	inv := NewInvoker(cmd, dir, 0, discardLogger())
	res := inv.Invoke(context.Background(), []string{"a b", "", "1,2"})

	require.Equal(t, domain.ExitOK, res.Status)
	assert.Equal(t, "[a b]\n[]\n[1,2]\n", res.Stdout)
}

func TestInvoke_NonZeroExit(t *testing.T) {
	dir := t.TempDir()
	cmd := writeScript(t, dir, `echo "partial"
echo "Failed to open DEM: data/dem.tif" >&2
exit 3
`)

	inv := NewInvoker(cmd, dir, 0, discardLogger())
	res := inv.Invoke(context.Background(), nil)

	assert.Equal(t, domain.ExitFailed, res.Status)
	assert.Equal(t, 3, res.ExitCode)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "exit status 3")
	assert.Contains(t, res.Stdout, "partial")
	assert.Contains(t, res.Stderr, "Failed to open DEM")
}

func TestInvoke_DomainFailureWithZeroExit(t *testing.T) {
	dir := t.TempDir()
	cmd := writeScript(t, dir, `echo "Failed: invalid coordinate" >&2
exit 0
`)

	res := NewInvoker(cmd, dir, 0, discardLogger()).Invoke(context.Background(), nil)

	assert.Equal(t, domain.ExitOK, res.Status)
	outcome := domain.Classify(res)
	assert.Equal(t, domain.OutcomeDomainError, outcome.Kind)
	assert.Equal(t, "Failed: invalid coordinate", outcome.Message)
}

func TestInvoke_SpawnFailure(t *testing.T) {
	dir := t.TempDir()

	res := NewInvoker("./missing.sh", dir, 0, discardLogger()).Invoke(context.Background(), nil)

	assert.Equal(t, domain.ExitSpawnFailed, res.Status)
	assert.Equal(t, -1, res.ExitCode)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "start ./missing.sh")
	assert.Empty(t, res.Stdout)
}

func TestInvoke_TimeoutKillsEngine(t *testing.T) {
	dir := t.TempDir()
	cmd := writeScript(t, dir, `sleep 30 &
wait
`)

	inv := NewInvoker(cmd, dir, 200*time.Millisecond, discardLogger())
	start := time.Now()
	res := inv.Invoke(context.Background(), nil)

	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Equal(t, domain.ExitFailed, res.Status)
	require.Error(t, res.Err)
	assert.True(t, strings.Contains(res.Err.Error(), "killed"), res.Err.Error())
}

func TestCheckReadiness(t *testing.T) {
	dir := t.TempDir()
	cmd := writeScript(t, dir, "exit 0\n")

	t.Run("relative executable", func(t *testing.T) {
		assert.NoError(t, NewInvoker(cmd, dir, 0, discardLogger()).CheckReadiness(context.Background()))
	})

	t.Run("absolute executable", func(t *testing.T) {
		abs := filepath.Join(dir, "run.sh")
		assert.NoError(t, NewInvoker(abs, "/", 0, discardLogger()).CheckReadiness(context.Background()))
	})

	t.Run("on PATH", func(t *testing.T) {
		assert.NoError(t, NewInvoker("sh", dir, 0, discardLogger()).CheckReadiness(context.Background()))
	})

	t.Run("missing", func(t *testing.T) {
		err := NewInvoker("./nope.sh", dir, 0, discardLogger()).CheckReadiness(context.Background())
		assert.True(t, errors.Is(err, ErrEngineNotFound))
	})

	t.Run("not executable", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.sh"), []byte("exit 0\n"), 0o644))
		err := NewInvoker("./plain.sh", dir, 0, discardLogger()).CheckReadiness(context.Background())
		assert.True(t, errors.Is(err, ErrEngineNotFound))
		assert.Contains(t, err.Error(), "not executable")
	})

	t.Run("unknown binary", func(t *testing.T) {
		err := NewInvoker("definitely-not-a-flood-engine", dir, 0, discardLogger()).CheckReadiness(context.Background())
		assert.True(t, errors.Is(err, ErrEngineNotFound))
	})
}
