package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/trezy/git-switch/internal/gitconfig"
	"github.com/trezy/git-switch/internal/types"
)

// Switch makes name the active profile. An empty name is chosen
// interactively. Switching to the already active profile does nothing
// unless force is set. It reports whether anything changed.
//
// Key activation failures abort the switch. A git identity failure is
// logged and returned after the tracker has been updated.
func (s *StoreContext) Switch(ctx context.Context, name string, force bool) (bool, error) {
	log := s.logger()

	name, err := s.resolve("Switch to profile", name)
	if err != nil {
		return false, err
	}

	current, err := s.Tracker.Get()
	if err != nil {
		return false, err
	}
	if name == current && !force {
		log.Debug("profile already active", "profile", name)
		return false, nil
	}

	p, err := s.Store.Read(name)
	if err != nil {
		return false, err
	}

	if err := s.Keys.Activate(s.Store.Dir(name)); err != nil {
		_ = s.notifier().NotifyFailure(name, err)
		return false, fmt.Errorf("failed to activate keys for %s: %w", name, err)
	}
	log.Debug("ssh keys linked", "profile", name)

	var errs []error
	if err := s.Identity.Apply(ctx, gitconfig.Identity{Name: p.DisplayName, Email: p.Email}); err != nil {
		log.Warn("failed to apply git identity", "profile", name, "error", err)
		if nerr := s.notifier().NotifyFailure(name, err); nerr != nil {
			log.Debug("notification failed", "error", nerr)
		}
		errs = append(errs, err)
	}

	if err := s.Tracker.Set(name); err != nil {
		errs = append(errs, err)
	}

	if err := s.notifier().NotifySwitch(p); err != nil {
		log.Debug("notification failed", "error", err)
	}

	log.Info("switched profile", "from", current, "to", name, "forced", force)
	return true, errors.Join(errs...)
}

// Reset re-applies the active profile's keys and identity.
func (s *StoreContext) Reset(ctx context.Context) (string, error) {
	current, err := s.Tracker.Get()
	if err != nil {
		return "", err
	}
	if current == "" {
		return "", types.ErrNoActiveProfile
	}
	_, err = s.Switch(ctx, current, true)
	return current, err
}
