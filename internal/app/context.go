// Package app implements the profile commands on top of the store, key,
// git identity and clipboard collaborators.
package app

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/trezy/git-switch/internal/clipboard"
	"github.com/trezy/git-switch/internal/gitconfig"
	"github.com/trezy/git-switch/internal/logging"
	"github.com/trezy/git-switch/internal/notify"
	"github.com/trezy/git-switch/internal/profile"
	"github.com/trezy/git-switch/internal/prompt"
	"github.com/trezy/git-switch/internal/types"
)

// KeyManager provisions and links profile keypairs.
type KeyManager interface {
	ProvisionFromExisting(profileDir string) error
	ProvisionNew(profileDir, comment string) error
	Activate(profileDir string) error
	PublicKey(profileDir string) (string, error)
	Fingerprint(profileDir string) (string, error)
	// Unmanaged reports whether the SSH directory holds keys no profile owns.
	Unmanaged() bool
}

// StoreContext carries every collaborator a profile command needs.
type StoreContext struct {
	Store     *profile.Store
	Tracker   *profile.Tracker
	Keys      KeyManager
	Identity  gitconfig.ReadWriter
	Clipboard clipboard.Copier
	Prompt    prompt.Asker
	Notifier  notify.Notifier
	Logger    *slog.Logger
}

func (s *StoreContext) logger() *slog.Logger {
	if s.Logger == nil {
		return logging.Discard()
	}
	return s.Logger
}

func (s *StoreContext) notifier() notify.Notifier {
	if s.Notifier == nil {
		return notify.Nop()
	}
	return s.Notifier
}

// resolve returns name when it is an existing profile, or asks the user to
// choose one when name is empty.
func (s *StoreContext) resolve(label, name string) (string, error) {
	names, err := s.Store.List()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w: no profiles yet, run 'git-switch add'", types.ErrNotFound)
	}

	if name == "" {
		if s.Prompt == nil {
			return "", fmt.Errorf("%w: profile name required", types.ErrNotFound)
		}
		choice, err := s.Prompt.Choose(label, names)
		if err != nil {
			return "", err
		}
		name = choice
	}

	if !slices.Contains(names, name) {
		return "", fmt.Errorf("%w: %s", types.ErrNotFound, name)
	}
	return name, nil
}
