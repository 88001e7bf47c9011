package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jamesainslie/go-dicebench/dice"
)

// script writes an executable shell script into dir and returns its path.
// The competitor receives the video path as $1 and the output path as $2.
func script(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("Skipping: shell scripts not supported on windows")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus Status
		wantDice   int
		wantExit   bool
	}{
		{
			name:       "valid result",
			body:       `printf '12\n2\n10 10 3\n20 20 4\n' > "$2"`,
			wantStatus: StatusOK,
			wantDice:   2,
		},
		{
			name:       "nonzero exit with result",
			body:       `printf '1\n0\n' > "$2"; exit 3`,
			wantStatus: StatusOK,
			wantExit:   true,
		},
		{
			name:       "no result written",
			body:       `exit 0`,
			wantStatus: StatusNoOutput,
		},
		{
			name:       "crash without result",
			body:       `kill -9 $$`,
			wantStatus: StatusNoOutput,
			wantExit:   true,
		},
		{
			name:       "malformed result",
			body:       `printf '12\nmany\n' > "$2"`,
			wantStatus: StatusMalformedOutput,
		},
		{
			name:       "directory instead of file",
			body:       `mkdir "$2"`,
			wantStatus: StatusNoOutput,
		},
		{
			name:       "receives video path",
			body:       `[ "$1" = "clip.avi" ] && printf '0\n0\n' > "$2"`,
			wantStatus: StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			exe := script(t, dir, "competitor.sh", tt.body)
			out := filepath.Join(dir, "clip - competitor.txt")

			r := New(WithTimeout(5 * time.Second))
			got := r.Run(context.Background(), exe, "clip.avi", out)

			if got.Status != tt.wantStatus {
				t.Fatalf("Status = %v, want %v (err: %v)", got.Status, tt.wantStatus, got.Err)
			}
			if got.Succeeded() != (tt.wantStatus == StatusOK) {
				t.Errorf("Succeeded() = %v", got.Succeeded())
			}
			if got.TimedOut {
				t.Error("unexpected timeout")
			}
			if got.Elapsed <= 0 {
				t.Errorf("Elapsed = %v, want > 0", got.Elapsed)
			}
			if tt.wantStatus == StatusOK {
				if len(got.Result.DetectedDice) != tt.wantDice {
					t.Errorf("got %d dice, want %d", len(got.Result.DetectedDice), tt.wantDice)
				}
				if (got.Err != nil) != tt.wantExit {
					t.Errorf("Err = %v, wantExit %v", got.Err, tt.wantExit)
				}
				if got.Reason() != "" {
					t.Errorf("Reason() = %q, want empty", got.Reason())
				}
			} else {
				if got.Result != nil {
					t.Error("expected nil result")
				}
				if got.Reason() == "" {
					t.Error("expected a reason")
				}
			}
			if tt.wantStatus == StatusMalformedOutput && !errors.Is(got.Err, dice.ErrMalformedResult) {
				t.Errorf("expected ErrMalformedResult, got: %v", got.Err)
			}
		})
	}
}

func TestRun_Timeout(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping: timeout test in short mode")
	}
	dir := t.TempDir()
	marker := filepath.Join(dir, "still-running")
	exe := script(t, dir, "slow.sh", `sleep 3; touch "`+marker+`"; printf '0\n0\n' > "$2"`)
	out := filepath.Join(dir, "result.txt")

	timeout := 300 * time.Millisecond
	r := New(WithTimeout(timeout))
	got := r.Run(context.Background(), exe, "clip.avi", out)

	if !got.TimedOut {
		t.Fatal("expected timeout")
	}
	if got.Status != StatusNoOutput {
		t.Errorf("Status = %v, want %v", got.Status, StatusNoOutput)
	}
	if got.Elapsed < timeout || got.Elapsed > timeout+2*time.Second {
		t.Errorf("Elapsed = %v, want about %v", got.Elapsed, timeout)
	}

	// The killed process (and its sleeping child) must not finish later.
	time.Sleep(3500 * time.Millisecond)
	if _, err := os.Stat(marker); err == nil {
		t.Error("competitor kept running after the timeout")
	}
	if _, err := os.Stat(out); err == nil {
		t.Error("result file appeared after the timeout")
	}
}

func TestRun_TimeoutAfterWritingResult(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping: timeout test in short mode")
	}
	dir := t.TempDir()
	exe := script(t, dir, "hang.sh", `printf '4\n1\n1 1 1\n' > "$2"; sleep 10`)
	out := filepath.Join(dir, "result.txt")

	got := New(WithTimeout(300*time.Millisecond)).Run(context.Background(), exe, "clip.avi", out)

	if !got.TimedOut {
		t.Fatal("expected timeout")
	}
	if got.Status != StatusOK || got.Result.ReferenceFrameNo != 4 {
		t.Errorf("got %+v, want a result written before the deadline", got)
	}
}

func TestRun_RemovesStaleResult(t *testing.T) {
	dir := t.TempDir()
	exe := script(t, dir, "lazy.sh", `exit 0`)
	out := filepath.Join(dir, "result.txt")
	if err := os.WriteFile(out, []byte("1\n0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := New().Run(context.Background(), exe, "clip.avi", out)

	if got.Status != StatusNoOutput {
		t.Errorf("Status = %v, want %v", got.Status, StatusNoOutput)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stale result file still present: %v", err)
	}
}

func TestRun_LaunchFailure(t *testing.T) {
	dir := t.TempDir()
	got := New().Run(context.Background(), filepath.Join(dir, "missing"), "clip.avi", filepath.Join(dir, "out.txt"))

	if got.Status != StatusLaunchFailed {
		t.Errorf("Status = %v, want %v", got.Status, StatusLaunchFailed)
	}
	if got.Err == nil {
		t.Error("expected launch error")
	}
}

func TestRun_ContextCanceled(t *testing.T) {
	dir := t.TempDir()
	exe := script(t, dir, "slow.sh", `sleep 10`)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	got := New(WithTimeout(time.Minute)).Run(ctx, exe, "clip.avi", filepath.Join(dir, "out.txt"))

	if got.Status != StatusCanceled {
		t.Errorf("Status = %v, want %v", got.Status, StatusCanceled)
	}
	if !errors.Is(got.Err, context.DeadlineExceeded) {
		t.Errorf("Err = %v, want context.DeadlineExceeded", got.Err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Run did not return promptly after cancellation")
	}
}

func TestWithTimeout_IgnoresNonPositive(t *testing.T) {
	if got := New(WithTimeout(0)).Timeout(); got != DefaultTimeout {
		t.Errorf("Timeout() = %v, want %v", got, DefaultTimeout)
	}
	if got := New(WithTimeout(-time.Second)).Timeout(); got != DefaultTimeout {
		t.Errorf("Timeout() = %v, want %v", got, DefaultTimeout)
	}
}
