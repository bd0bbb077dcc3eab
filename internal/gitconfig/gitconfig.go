// Package gitconfig reads and writes the global git identity (user.name and
// user.email).
package gitconfig

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/trezy/git-switch/internal/config"
	"github.com/trezy/git-switch/internal/runner"
)

const (
	sectionUser = "user"
	keyName     = "name"
	keyEmail    = "email"
)

// Identity is the pair of git settings a profile controls.
type Identity struct {
	Name  string
	Email string
}

// Reader returns the current global identity.
type Reader interface {
	Identity(ctx context.Context) (Identity, error)
}

// Writer applies an identity globally. An empty field unsets the matching
// git setting.
type Writer interface {
	Apply(ctx context.Context, id Identity) error
}

// ReadWriter combines Reader and Writer.
type ReadWriter interface {
	Reader
	Writer
}

// Backend is a named ReadWriter.
type Backend interface {
	ReadWriter
	// Name identifies the backend in diagnostics.
	Name() string
}

// New picks the backend configured in cfg. The auto backend uses the git
// binary when it is on PATH and edits the config file otherwise.
func New(cfg config.GitConfig, home string, r runner.Runner) (Backend, error) {
	binary := cfg.Binary
	if binary == "" {
		binary = "git"
	}

	path := cfg.ConfigFile
	if path == "" {
		path = filepath.Join(home, ".gitconfig")
	}

	switch cfg.Backend {
	case config.GitBackendCommand:
		return NewCommandStore(r, binary), nil
	case config.GitBackendFile:
		return NewFileStore(path), nil
	case config.GitBackendAuto, "":
		if _, err := r.LookPath(binary); err == nil {
			return NewCommandStore(r, binary), nil
		}
		return NewFileStore(path), nil
	default:
		return nil, fmt.Errorf("%w: unknown git backend %q", config.ErrInvalidConfig, cfg.Backend)
	}
}
