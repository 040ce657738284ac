// Package engine runs the external flood simulation engine. It is the only
// package in the service that creates subprocesses.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/couchcryptid/flood-sim-gateway/internal/domain"
)

// ErrEngineNotFound is returned by CheckReadiness when the engine command cannot be resolved.
var ErrEngineNotFound = errors.New("simulation engine not found")

// Invoker runs the engine synchronously in a fixed working directory.
type Invoker struct {
	command string
	workDir string
	timeout time.Duration
	logger  *slog.Logger
}

// NewInvoker creates an Invoker. A zero timeout lets the engine run until it
// exits on its own; a relative command is resolved against workDir.
func NewInvoker(command, workDir string, timeout time.Duration, logger *slog.Logger) *Invoker {
	return &Invoker{
		command: command,
		workDir: workDir,
		timeout: timeout,
		logger:  logger,
	}
}

// Invoke starts the engine with args, waits for it to exit and returns
// everything it wrote. Output is buffered in full; nothing is streamed.
func (inv *Invoker) Invoke(ctx context.Context, args []string) domain.Invocation {
	if inv.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, inv.command, args...)
	cmd.Dir = inv.workDir

	// Own process group so a timeout also kills whatever the engine script spawned.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	inv.logger.Debug("starting simulation engine", "command", inv.command, "args", len(args), "dir", inv.workDir)

	start := time.Now()
	err := cmd.Run()

	result := domain.Invocation{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.Status = domain.ExitOK
	case errors.As(err, &exitErr):
		result.Status = domain.ExitFailed
		result.ExitCode = exitErr.ExitCode()
		result.Err = fmt.Errorf("command failed: %s: %w", inv.command, err)
	default:
		result.Status = domain.ExitSpawnFailed
		result.ExitCode = -1
		result.Err = fmt.Errorf("start %s: %w", inv.command, err)
	}

	return result
}

// CheckReadiness reports whether the engine command resolves to an executable file.
func (inv *Invoker) CheckReadiness(_ context.Context) error {
	if !strings.ContainsRune(inv.command, filepath.Separator) {
		if _, err := exec.LookPath(inv.command); err != nil {
			return fmt.Errorf("%w: %s is not on PATH", ErrEngineNotFound, inv.command)
		}
		return nil
	}

	path := inv.command
	if !filepath.IsAbs(path) {
		path = filepath.Join(inv.workDir, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrEngineNotFound, path)
	}
	if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%w: %s is not executable", ErrEngineNotFound, path)
	}
	return nil
}
