package ffmpeg

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"time"
)

// DefaultBinary is the ffmpeg executable looked up on PATH.
const DefaultBinary = "ffmpeg"

// waitDelay bounds how long a killed ffmpeg may hold its stderr pipe open.
const waitDelay = 2 * time.Second

// Engine transcodes one file. Implementations must be safe for concurrent use.
type Engine interface {
	Transcode(ctx context.Context, job Job) error
}

// Executor is the Engine backed by the ffmpeg binary.
type Executor struct {
	Binary string

	// Verbose raises ffmpeg's log level and tees its stderr to os.Stderr.
	Verbose bool

	// OnRetry, if set, is called before each retry attempt.
	OnRetry func(job Job, action RetryAction)
}

// NewExecutor returns an Executor for the ffmpeg on PATH.
func NewExecutor(verbose bool) *Executor {
	return &Executor{Binary: DefaultBinary, Verbose: verbose}
}

// Transcode runs ffmpeg for job. A failed run is retried when its stderr
// matches a fix that has not been tried yet; otherwise the failure is
// returned as *ExecError. Cancellation of ctx kills the child process and
// returns ctx.Err().
func (e *Executor) Transcode(ctx context.Context, job Job) error {
	bin := e.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	rs := NewRetryState()
	for {
		args := Build(bin, job, e.Verbose, rs)
		stderr, err := e.run(ctx, args)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		action := rs.Advance(stderr)
		if action == RetryNone {
			return newExecError(args, stderr, err)
		}
		if e.OnRetry != nil {
			e.OnRetry(job, action)
		}
	}
}

func (e *Executor) run(ctx context.Context, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.WaitDelay = waitDelay

	var stderrBuf bytes.Buffer
	if e.Verbose {
		cmd.Stderr = io.MultiWriter(&stderrBuf, os.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	return stderrBuf.String(), err
}
