package ytdlp

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/waseem196/down-fb/internal/utils"
)

// Result is what one finished invocation produced.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   string
}

// RunOptions tune how output is collected.
type RunOptions struct {
	// OnStarted fires once, right after the process has been spawned.
	OnStarted func()
	// OnFirstOutput fires once, when the first stdout bytes arrive.
	OnFirstOutput func()
	// StdoutLimit caps retained stdout; 0 means unlimited. Excess is drained and dropped.
	StdoutLimit int64
	// StderrLimit caps retained stderr; 0 means unlimited.
	StderrLimit int64
}

// Run invokes the tool, drains both output streams concurrently and waits for exit.
// Start failures are returned as errors; a non-zero exit is not an error.
func Run(ctx context.Context, invoker Invoker, args []string, opts RunOptions) (*Result, error) {
	logger := utils.ComponentLogger(ctx, "ytdlp").WithField("args", redactArgs(args))
	started := time.Now()

	proc, err := invoker.Invoke(ctx, args...)
	if err != nil {
		logger.WithError(err).Warn("Failed to start yt-dlp")
		return nil, err
	}
	logger.Debug("Started yt-dlp")
	if opts.OnStarted != nil {
		opts.OnStarted()
	}

	stdout := &cappedBuffer{limit: opts.StdoutLimit}
	stderr := &cappedBuffer{limit: opts.StderrLimit}

	var g errgroup.Group
	g.Go(func() error {
		var w io.Writer = stdout
		if opts.OnFirstOutput != nil {
			w = &firstWriteNotifier{w: stdout, notify: opts.OnFirstOutput}
		}
		_, err := io.Copy(w, proc.Stdout())
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(stderr, proc.Stderr())
		return err
	})
	// A read error here only means the pipe was torn down (usually by a kill); Wait reports the real outcome.
	_ = g.Wait()

	exitCode, waitErr := proc.Wait()
	if waitErr != nil {
		logger.WithError(waitErr).Warn("Failed to wait for yt-dlp")
		return nil, waitErr
	}
	logger.WithFields(logrus.Fields{
		"exit_code": exitCode,
		"duration":  time.Since(started).String(),
	}).Info("yt-dlp exited")

	return &Result{
		ExitCode: exitCode,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.String(),
	}, nil
}

// redactArgs hides credential file paths from logs.
func redactArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i+1 < len(out); i++ {
		if out[i] == "--cookies" {
			out[i+1] = "[redacted]"
		}
	}
	return out
}

type firstWriteNotifier struct {
	w      io.Writer
	notify func()
	once   sync.Once
}

func (f *firstWriteNotifier) Write(p []byte) (int, error) {
	if len(p) > 0 {
		f.once.Do(f.notify)
	}
	return f.w.Write(p)
}

// cappedBuffer keeps at most limit bytes and silently discards the rest.
type cappedBuffer struct {
	buf   bytes.Buffer
	limit int64
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if c.limit > 0 {
		room := c.limit - int64(c.buf.Len())
		if room <= 0 {
			return n, nil
		}
		if int64(len(p)) > room {
			p = p[:room]
		}
	}
	c.buf.Write(p)
	return n, nil
}

func (c *cappedBuffer) Bytes() []byte  { return c.buf.Bytes() }
func (c *cappedBuffer) String() string { return c.buf.String() }
