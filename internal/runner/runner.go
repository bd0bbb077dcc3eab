// Package runner abstracts external command execution so the git and
// clipboard collaborators can be tested without real binaries.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/trezy/git-switch/internal/logging"
)

// Runner is an interface for executing commands.
type Runner interface {
	// LookPath finds the executable in PATH
	LookPath(file string) (string, error)
	// CommandContext creates a command that can be executed
	CommandContext(ctx context.Context, name string, args ...string) Command
}

// Command represents an executable command.
type Command interface {
	// SetStdin sets the stdin reader
	SetStdin(stdin io.Reader)
	// SetStdout sets the stdout writer
	SetStdout(stdout io.Writer)
	// SetStderr sets the stderr writer
	SetStderr(stderr io.Writer)
	// Run starts the command and waits for it to complete
	Run() error
}

// ExitError reports a command that ran but exited with a non-zero status.
type ExitError struct {
	Name   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// ExitCode returns the exit status carried by err, or -1 if err is not an
// *ExitError.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

// Output runs name with args, feeding stdin when non-nil, and returns stdout.
// A non-zero exit is returned as *ExitError carrying stderr.
func Output(ctx context.Context, r Runner, stdin io.Reader, name string, args ...string) (string, error) {
	log := logging.FromContext(ctx)
	log.Debug("running command", "command", name, "args", args)
	cmd := r.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	if stdin != nil {
		cmd.SetStdin(stdin)
	}
	cmd.SetStdout(&stdout)
	cmd.SetStderr(&stderr)

	if err := cmd.Run(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Stderr == "" {
				exitErr.Stderr = stderr.String()
			}
			log.Debug("command failed", "command", name, "exit_code", exitErr.Code)
			return stdout.String(), exitErr
		}
		return stdout.String(), fmt.Errorf("failed to run %s: %w", name, err)
	}
	return stdout.String(), nil
}

// realRunner is the real implementation using os/exec.
type realRunner struct{}

// New creates a new real command runner.
func New() Runner {
	return &realRunner{}
}

func (r *realRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (r *realRunner) CommandContext(ctx context.Context, name string, args ...string) Command {
	// #nosec G204 - name is git or a clipboard tool resolved from config or a fixed list
	return &realCommand{name: name, cmd: exec.CommandContext(ctx, name, args...)}
}

// realCommand wraps exec.Cmd to implement the Command interface.
type realCommand struct {
	name string
	cmd  *exec.Cmd
}

func (c *realCommand) SetStdin(stdin io.Reader) {
	c.cmd.Stdin = stdin
}

func (c *realCommand) SetStdout(stdout io.Writer) {
	c.cmd.Stdout = stdout
}

func (c *realCommand) SetStderr(stderr io.Writer) {
	c.cmd.Stderr = stderr
}

func (c *realCommand) Run() error {
	err := c.cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Name: c.name, Code: exitErr.ExitCode()}
	}
	return err
}
