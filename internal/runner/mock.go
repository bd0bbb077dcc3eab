package runner

import (
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Call records one command executed through a MockRunner.
type Call struct {
	Name  string
	Args  []string
	Stdin string
}

// Line returns the call as a single space-separated command line.
func (c Call) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is what a MockRunner handler returns for a call.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// MockRunner is a Runner that records calls and answers them from a handler.
type MockRunner struct {
	mu      sync.Mutex
	calls   []Call
	handler func(Call) Result
	paths   map[string]string
}

// NewMockRunner creates a mock runner. Binaries are found by LookPath only
// after being registered with AddPath.
func NewMockRunner(handler func(Call) Result) *MockRunner {
	if handler == nil {
		handler = func(Call) Result { return Result{} }
	}
	return &MockRunner{handler: handler, paths: make(map[string]string)}
}

// AddPath makes LookPath resolve file.
func (m *MockRunner) AddPath(file string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths[file] = "/usr/bin/" + file
}

// Calls returns the recorded calls.
func (m *MockRunner) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// LookPath implements Runner.
func (m *MockRunner) LookPath(file string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.paths[file]; ok {
		return p, nil
	}
	return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
}

// CommandContext implements Runner.
func (m *MockRunner) CommandContext(ctx context.Context, name string, args ...string) Command {
	return &mockCommand{runner: m, name: name, args: args}
}

func (m *MockRunner) record(c Call) Result {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	handler := m.handler
	m.mu.Unlock()
	return handler(c)
}

// mockCommand is the Command handed out by MockRunner.
type mockCommand struct {
	runner *MockRunner
	name   string
	args   []string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (c *mockCommand) SetStdin(stdin io.Reader)   { c.stdin = stdin }
func (c *mockCommand) SetStdout(stdout io.Writer) { c.stdout = stdout }
func (c *mockCommand) SetStderr(stderr io.Writer) { c.stderr = stderr }

// Run implements Command.
func (c *mockCommand) Run() error {
	call := Call{Name: c.name, Args: c.args}
	if c.stdin != nil {
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			return err
		}
		call.Stdin = string(data)
	}

	res := c.runner.record(call)
	if c.stdout != nil && res.Stdout != "" {
		_, _ = io.WriteString(c.stdout, res.Stdout)
	}
	if c.stderr != nil && res.Stderr != "" {
		_, _ = io.WriteString(c.stderr, res.Stderr)
	}
	if res.Err != nil {
		return res.Err
	}
	if res.ExitCode != 0 {
		return &ExitError{Name: c.name, Code: res.ExitCode}
	}
	return nil
}
