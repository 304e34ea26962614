package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"time"

	"github.com/waseem196/down-fb/internal/metrics"
)

// Process is a running invocation of the external tool.
// Stdout and Stderr must be drained before Wait is called.
type Process interface {
	Stdout() io.Reader
	Stderr() io.Reader
	// Wait blocks until the process exits. A non-zero exit is reported through
	// exitCode with a nil error; err is only set when the process could not be waited on.
	Wait() (exitCode int, err error)
}

// Invoker starts the external tool. Cancelling ctx must terminate the process.
type Invoker interface {
	Invoke(ctx context.Context, args ...string) (Process, error)
}

// ExecInvoker runs a real binary as a child process in its own process group,
// so that helpers it spawns (ffmpeg) die with it.
type ExecInvoker struct {
	binary    string
	waitDelay time.Duration
	metrics   *metrics.Metrics
}

func NewExecInvoker(binary string, m *metrics.Metrics) *ExecInvoker {
	return &ExecInvoker{
		binary:    binary,
		waitDelay: 5 * time.Second,
		metrics:   m,
	}
}

func (i *ExecInvoker) Binary() string {
	return i.binary
}

func (i *ExecInvoker) Invoke(ctx context.Context, args ...string) (Process, error) {
	cmd := exec.CommandContext(ctx, i.binary, args...)
	configureProcessGroup(cmd)
	cmd.WaitDelay = i.waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", i.binary, err)
	}
	i.metrics.IncrementProcesses()

	return &execProcess{cmd: cmd, stdout: stdout, stderr: stderr, metrics: i.metrics}, nil
}

type execProcess struct {
	cmd     *exec.Cmd
	stdout  io.Reader
	stderr  io.Reader
	metrics *metrics.Metrics
}

func (p *execProcess) Stdout() io.Reader { return p.stdout }
func (p *execProcess) Stderr() io.Reader { return p.stderr }

func (p *execProcess) Wait() (int, error) {
	defer p.metrics.DecrementProcesses()

	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// IsNotInstalled reports whether err means the binary could not be found.
func IsNotInstalled(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
