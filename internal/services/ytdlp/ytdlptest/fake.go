// Package ytdlptest provides an in-memory ytdlp.Invoker for tests.
package ytdlptest

import (
	"context"
	"io"
	"sync"

	"github.com/waseem196/down-fb/internal/services/ytdlp"
)

// Response is the canned behaviour of one invocation.
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	// StartErr makes Invoke fail as if the binary could not be spawned.
	StartErr error
	// Hang keeps the process alive after writing its output until ctx is done,
	// then reports exit code -1 as a killed process would.
	Hang bool
	// Before runs inside the fake process before any output is written.
	Before func(args []string)
}

// Invoker replays Response for every call and records the arguments it saw.
type Invoker struct {
	Response Response
	// Respond, when set, overrides Response per call.
	Respond func(args []string) Response

	mu    sync.Mutex
	calls [][]string
}

func New(resp Response) *Invoker {
	return &Invoker{Response: resp}
}

func (f *Invoker) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *Invoker) Invoke(ctx context.Context, args ...string) (ytdlp.Process, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), args...))
	resp := f.Response
	if f.Respond != nil {
		resp = f.Respond(args)
	}
	f.mu.Unlock()

	if resp.StartErr != nil {
		return nil, resp.StartErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	p := &process{stdout: stdoutR, stderr: stderrR, done: make(chan struct{})}

	go func() {
		defer close(p.done)
		if resp.Before != nil {
			resp.Before(args)
		}
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = io.WriteString(stdoutW, resp.Stdout)
		}()
		go func() {
			defer wg.Done()
			_, _ = io.WriteString(stderrW, resp.Stderr)
		}()
		wg.Wait()

		p.exitCode = resp.ExitCode
		if resp.Hang {
			<-ctx.Done()
			p.exitCode = -1
		}
		stdoutW.Close()
		stderrW.Close()
	}()

	return p, nil
}

type process struct {
	stdout   io.Reader
	stderr   io.Reader
	done     chan struct{}
	exitCode int
}

func (p *process) Stdout() io.Reader { return p.stdout }
func (p *process) Stderr() io.Reader { return p.stderr }

func (p *process) Wait() (int, error) {
	<-p.done
	return p.exitCode, nil
}
