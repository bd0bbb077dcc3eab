// Package profile provides the directory-backed profile store and the
// active-profile tracker.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/trezy/git-switch/internal/types"
	"github.com/trezy/git-switch/internal/utils"
)

const (
	// ConfigFileName holds a profile's identity fields.
	ConfigFileName = "config.json"
	// PrivateKeyFileName is the profile's private key.
	PrivateKeyFileName = "privatekey"
	// PublicKeyFileName is the profile's public key.
	PublicKeyFileName = "publickey"
	// CurrentFileName is the sentinel holding the active profile name.
	CurrentFileName = "current"
)

// ProvisionFunc installs key material into a freshly created profile directory.
type ProvisionFunc func(dir string) error

// Store is a collection of profiles, one subdirectory per profile under root.
type Store struct {
	root string
}

// NewStore creates a store rooted at root. The directory is not created until
// Ensure is called.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

// Ensure creates the store directory if it does not exist.
func (s *Store) Ensure() error {
	if err := os.MkdirAll(s.root, 0700); err != nil {
		return fmt.Errorf("failed to create profile store: %w", err)
	}
	return nil
}

// Dir returns the directory of the named profile.
func (s *Store) Dir(name string) string {
	return filepath.Join(s.root, name)
}

// List returns the names of all profiles in lexicographic order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read profile store: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || !utils.IsSafeProfileName(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether the named profile directory exists. Any name that
// List can return is accepted; the stricter charset applies to Create only.
func (s *Store) Exists(name string) bool {
	if !utils.IsSafeProfileName(name) {
		return false
	}
	info, err := os.Stat(s.Dir(name))
	return err == nil && info.IsDir()
}

// Create adds a profile: it creates the directory, writes config.json and
// then runs provision. The steps are not transactional; a failing step
// leaves the earlier ones on disk.
func (s *Store) Create(p types.Profile, provision ProvisionFunc) error {
	if !utils.IsValidProfileName(p.Name) {
		return fmt.Errorf("%w: %q", types.ErrInvalidName, p.Name)
	}
	if s.Exists(p.Name) {
		return fmt.Errorf("%w: %s", types.ErrAlreadyExists, p.Name)
	}

	if err := s.Ensure(); err != nil {
		return err
	}

	dir := s.Dir(p.Name)
	if err := os.Mkdir(dir, 0700); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", types.ErrAlreadyExists, p.Name)
		}
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	if err := s.writeConfig(&p); err != nil {
		return err
	}

	if provision != nil {
		if err := provision(dir); err != nil {
			return fmt.Errorf("failed to provision keys for %s: %w", p.Name, err)
		}
	}

	return nil
}

// writeConfig replaces config.json wholesale.
func (s *Store) writeConfig(p *types.Profile) error {
	data, err := p.MarshalConfig()
	if err != nil {
		return err
	}
	path := filepath.Join(s.Dir(p.Name), ConfigFileName)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Read loads the named profile's config.json.
func (s *Store) Read(name string) (*types.Profile, error) {
	if !s.Exists(name) {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, name)
	}

	path := filepath.Join(s.Dir(name), ConfigFileName)
	// #nosec G304 - path is built from the store root and a single path element checked by Exists
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s has no %s", types.ErrNotFound, name, ConfigFileName)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return types.UnmarshalConfig(name, data)
}

// Delete removes every file in the profile directory and then the directory
// itself. Removal is sequential; on failure the directory is left partially
// emptied and still listed.
func (s *Store) Delete(name string) error {
	if !s.Exists(name) {
		return fmt.Errorf("%w: %s", types.ErrNotFound, name)
	}

	dir := s.Dir(name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read profile directory: %w", err)
	}

	var errs []error
	for _, entry := range entries {
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to delete profile %s: %w", name, errors.Join(errs...))
	}

	if err := os.Remove(dir); err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", name, err)
	}
	return nil
}
