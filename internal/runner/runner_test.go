package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"testing"

	"github.com/trezy/git-switch/internal/logging"
)

func TestOutput_Mock(t *testing.T) {
	m := NewMockRunner(func(c Call) Result {
		if c.Name == "git" && len(c.Args) > 0 && c.Args[0] == "fail" {
			return Result{Stderr: "fatal: bad thing\n", ExitCode: 128}
		}
		return Result{Stdout: "ok:" + c.Stdin}
	})

	out, err := Output(context.Background(), m, strings.NewReader("input"), "git", "config")
	if err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if out != "ok:input" {
		t.Errorf("Output() = %q, want %q", out, "ok:input")
	}

	_, err = Output(context.Background(), m, nil, "git", "fail")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %T (%v)", err, err)
	}
	if exitErr.Code != 128 {
		t.Errorf("Code = %d, want 128", exitErr.Code)
	}
	if !strings.Contains(exitErr.Error(), "fatal: bad thing") {
		t.Errorf("expected stderr in error message, got %q", exitErr.Error())
	}

	calls := m.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].Line() != "git config" {
		t.Errorf("Line() = %q", calls[0].Line())
	}
}

func TestMockRunner_LookPath(t *testing.T) {
	m := NewMockRunner(nil)
	if _, err := m.LookPath("pbcopy"); !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("expected exec.ErrNotFound, got %v", err)
	}
	m.AddPath("pbcopy")
	p, err := m.LookPath("pbcopy")
	if err != nil {
		t.Fatalf("LookPath() error = %v", err)
	}
	if p != "/usr/bin/pbcopy" {
		t.Errorf("LookPath() = %q", p)
	}
}

func TestExitCode(t *testing.T) {
	if got := ExitCode(&ExitError{Name: "git", Code: 5}); got != 5 {
		t.Errorf("ExitCode() = %d, want 5", got)
	}
	if got := ExitCode(errors.New("boom")); got != -1 {
		t.Errorf("ExitCode() = %d, want -1", got)
	}
	if got := ExitCode(nil); got != -1 {
		t.Errorf("ExitCode(nil) = %d, want -1", got)
	}
}

func TestRealRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	r := New()
	if _, err := r.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	out, err := Output(context.Background(), r, strings.NewReader("hello"), "sh", "-c", "cat")
	if err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if out != "hello" {
		t.Errorf("Output() = %q, want hello", out)
	}

	_, err = Output(context.Background(), r, nil, "sh", "-c", "echo oops >&2; exit 3")
	if ExitCode(err) != 3 {
		t.Fatalf("expected exit code 3, got %v", err)
	}
	if !strings.Contains(err.Error(), "oops") {
		t.Errorf("expected stderr in error, got %q", err.Error())
	}
}

func TestOutput_LogsThroughContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := logging.WithContext(context.Background(), logger)

	m := NewMockRunner(func(c Call) Result {
		return Result{ExitCode: 5}
	})
	_, err := Output(ctx, m, nil, "git", "config", "--global", "--unset", "user.email")
	if ExitCode(err) != 5 {
		t.Fatalf("ExitCode() = %d, want 5", ExitCode(err))
	}

	out := buf.String()
	if !strings.Contains(out, "running command") || !strings.Contains(out, "command=git") {
		t.Errorf("expected command to be logged, got %q", out)
	}
	if !strings.Contains(out, "exit_code=5") {
		t.Errorf("expected exit code to be logged, got %q", out)
	}
}
