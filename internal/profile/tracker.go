package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Tracker persists the name of the active profile in the store's "current"
// sentinel file. It does not check that the name refers to an existing
// profile.
type Tracker struct {
	path    string
	loaded  bool
	current string
}

// NewTracker creates a tracker for the store rooted at root.
func NewTracker(root string) *Tracker {
	return &Tracker{path: filepath.Join(root, CurrentFileName)}
}

// Get returns the active profile name, or "" when none was ever set. The
// sentinel is read once per process.
func (t *Tracker) Get() (string, error) {
	if t.loaded {
		return t.current, nil
	}

	// #nosec G304 - path is the sentinel inside the store root
	data, err := os.ReadFile(t.path)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read active profile: %w", err)
	}

	t.current = strings.TrimSpace(string(data))
	t.loaded = true
	return t.current, nil
}

// Set records name as the active profile.
func (t *Tracker) Set(name string) error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0700); err != nil {
		return fmt.Errorf("failed to create profile store: %w", err)
	}
	if err := os.WriteFile(t.path, []byte(name), 0600); err != nil {
		return fmt.Errorf("failed to write active profile: %w", err)
	}
	t.current = name
	t.loaded = true
	return nil
}
