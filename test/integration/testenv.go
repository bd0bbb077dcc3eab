//go:build integration

// Package integration runs the git-switch binary against isolated home
// directories.
package integration

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// TestEnv is an isolated home directory for one test.
type TestEnv struct {
	Home  string
	extra []string
}

// NewTestEnv creates an empty home with a config that generates ed25519 keys.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	home := t.TempDir()
	configDir := filepath.Join(home, ".config", "git-switch")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configContent := `keys:
  type: ed25519
notifications:
  enabled: false
`
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	return &TestEnv{Home: home}
}

// Setenv adds an environment variable to every run.
func (e *TestEnv) Setenv(key, value string) {
	e.extra = append(e.extra, key+"="+value)
}

// Path joins parts onto the home directory.
func (e *TestEnv) Path(parts ...string) string {
	return filepath.Join(append([]string{e.Home}, parts...)...)
}

// BinaryPath returns the path to the git-switch binary.
func BinaryPath(t *testing.T) string {
	t.Helper()

	if path := os.Getenv("GIT_SWITCH_BINARY"); path != "" {
		return path
	}

	// Try to find it relative to the test directory
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get caller information")
	}

	// Go up from test/integration to project root
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	binaryPath := filepath.Join(projectRoot, "bin", "git-switch")

	if runtime.GOOS == "windows" {
		binaryPath += ".exe"
	}

	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Fatalf("git-switch binary not found at %s - run 'go build -o bin/git-switch ./cmd/git-switch' first", binaryPath)
	}

	return binaryPath
}

// Run runs git-switch with args and stdin, returning stdout and stderr.
func (e *TestEnv) Run(ctx context.Context, t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.CommandContext(ctx, BinaryPath(t), args...)
	cmd.Env = append(os.Environ(),
		"HOME="+e.Home,
		"XDG_CONFIG_HOME="+e.Path(".config"),
		"GIT_SWITCH_CONFIG_DIR="+e.Path(".config", "git-switch"),
		"GIT_CONFIG_NOSYSTEM=1",
	)
	cmd.Env = append(cmd.Env, e.extra...)
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// MustRun runs git-switch and fails the test on a non-zero exit.
func (e *TestEnv) MustRun(ctx context.Context, t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := e.Run(ctx, t, "", args...)
	if err != nil {
		t.Fatalf("git-switch %s failed: %v\nstdout: %s\nstderr: %s", strings.Join(args, " "), err, stdout, stderr)
	}
	return stdout
}

// SkipIfGitMissing skips the test if git is not on PATH.
func SkipIfGitMissing(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not found in PATH")
	}
}
