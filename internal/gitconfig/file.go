package gitconfig

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	format "github.com/go-git/go-git/v5/plumbing/format/config"

	"github.com/trezy/git-switch/internal/types"
)

// FileStore edits a gitconfig file directly. Comments and formatting of the
// file are not preserved on write.
type FileStore struct {
	path string
}

// NewFileStore creates a store over the gitconfig at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Name implements Backend.
func (s *FileStore) Name() string {
	return "file"
}

// Path returns the gitconfig file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) load() (*format.Config, os.FileMode, error) {
	cfg := format.New()

	// #nosec G304 - path is the configured global gitconfig
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, 0644, nil
		}
		return nil, 0, fmt.Errorf("%w: read %s: %v", types.ErrExternalTool, s.path, err)
	}

	if err := format.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
		return nil, 0, fmt.Errorf("%w: parse %s: %v", types.ErrExternalTool, s.path, err)
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}
	return cfg, mode, nil
}

// Identity implements Reader.
func (s *FileStore) Identity(ctx context.Context) (Identity, error) {
	cfg, _, err := s.load()
	if err != nil {
		return Identity{}, err
	}
	if !cfg.HasSection(sectionUser) {
		return Identity{}, nil
	}
	user := cfg.Section(sectionUser)
	return Identity{
		Name:  user.Option(keyName),
		Email: user.Option(keyEmail),
	}, nil
}

// Apply implements Writer.
func (s *FileStore) Apply(ctx context.Context, id Identity) error {
	cfg, mode, err := s.load()
	if err != nil {
		return err
	}

	user := cfg.Section(sectionUser)
	for _, opt := range [][2]string{{keyName, id.Name}, {keyEmail, id.Email}} {
		if opt[1] == "" {
			user.RemoveOption(opt[0])
			continue
		}
		user.SetOption(opt[0], opt[1])
	}

	var buf bytes.Buffer
	if err := format.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("%w: encode %s: %v", types.ErrExternalTool, s.path, err)
	}

	// A symlinked gitconfig (dotfile managers) is rewritten at its target.
	path := s.path
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %v", types.ErrExternalTool, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), mode); err != nil {
		return fmt.Errorf("%w: write %s: %v", types.ErrExternalTool, path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: write %s: %v", types.ErrExternalTool, path, err)
	}
	return nil
}
