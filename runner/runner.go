// Package runner launches competitor executables under a hard deadline and
// collects whatever result file they leave behind.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/jamesainslie/go-dicebench/dice"
)

// DefaultTimeout is the wall-clock budget of one competitor run.
const DefaultTimeout = 15 * time.Second

// Status classifies how a run ended from the evaluator's point of view.
type Status int

const (
	// StatusOK means a parseable result file was produced.
	StatusOK Status = iota
	// StatusLaunchFailed means the executable could not be started.
	StatusLaunchFailed
	// StatusNoOutput means no result file existed after the process ended.
	StatusNoOutput
	// StatusMalformedOutput means the result file could not be parsed.
	StatusMalformedOutput
	// StatusCanceled means the run was aborted by the caller's context.
	StatusCanceled
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusLaunchFailed:
		return "launch failed"
	case StatusNoOutput:
		return "no output"
	case StatusMalformedOutput:
		return "malformed output"
	case StatusCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome describes one competitor run. Elapsed is always set, including
// for failed runs.
type Outcome struct {
	Status   Status
	Result   *dice.DetectionResult
	Elapsed  time.Duration
	TimedOut bool

	// Err carries the launch, exit or parse error behind a non-OK status,
	// or the exit error of a process that still produced a usable result.
	Err error
}

// Succeeded reports whether a usable detection result was obtained.
func (o Outcome) Succeeded() bool {
	return o.Status == StatusOK
}

// Reason is a short human readable explanation of a failed run.
func (o Outcome) Reason() string {
	if o.Succeeded() {
		return ""
	}
	reason := o.Status.String()
	if o.TimedOut {
		reason = "timed out, " + reason
	}
	if o.Err != nil {
		reason += ": " + o.Err.Error()
	}
	return reason
}

// Runner executes competitor processes one at a time.
type Runner struct {
	timeout time.Duration
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Runner{
		timeout: cfg.timeout,
		clock:   cfg.clock,
		logger:  cfg.logger,
	}
}

// Timeout returns the per-run deadline.
func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

// Run invokes `executable videoPath outputPath`, waits for it to exit or for
// the timeout to expire, and then loads outputPath. Any stale file at
// outputPath is removed first. A process still alive at the deadline, or when
// ctx is canceled, is killed and reaped before Run returns.
func (r *Runner) Run(ctx context.Context, executable, videoPath, outputPath string) Outcome {
	if err := removeStale(outputPath); err != nil {
		r.logger.Warn("could not remove stale result file", "path", outputPath, "error", err)
	}

	cmd := exec.Command(executable, videoPath, outputPath)
	detach(cmd)

	start := r.clock.Now()
	if err := cmd.Start(); err != nil {
		return Outcome{
			Status:  StatusLaunchFailed,
			Elapsed: r.clock.Since(start),
			Err:     err,
		}
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	timer := r.clock.Timer(r.timeout)
	defer timer.Stop()

	var (
		out     Outcome
		waitErr error
	)
	select {
	case waitErr = <-exited:
		out.Elapsed = r.clock.Since(start)
	case <-timer.C:
		out.Elapsed = r.clock.Since(start)
		out.TimedOut = true
		waitErr = r.terminate(cmd, exited)
	case <-ctx.Done():
		out.Elapsed = r.clock.Since(start)
		_ = r.terminate(cmd, exited)
		out.Status = StatusCanceled
		out.Err = ctx.Err()
		return out
	}

	if waitErr != nil && !out.TimedOut {
		out.Err = waitErr
	}

	info, err := os.Stat(outputPath)
	if err != nil || !info.Mode().IsRegular() {
		out.Status = StatusNoOutput
		return out
	}

	result, err := dice.LoadResult(outputPath)
	if err != nil {
		out.Status = StatusMalformedOutput
		out.Err = err
		return out
	}

	out.Status = StatusOK
	out.Result = result
	return out
}

// terminate kills the process (and its group, where supported) and waits for
// it to be reaped.
func (r *Runner) terminate(cmd *exec.Cmd, exited <-chan error) error {
	if err := kill(cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
		r.logger.Warn("kill failed", "pid", cmd.Process.Pid, "error", err)
	}
	return <-exited
}

func removeStale(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	return os.Remove(path)
}
