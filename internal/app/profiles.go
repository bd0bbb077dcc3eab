package app

import (
	"context"
	"fmt"

	"github.com/trezy/git-switch/internal/types"
)

// Remove deletes a profile. An empty name is chosen interactively. The
// active-profile tracker is left as is, even when it names the removed
// profile.
func (s *StoreContext) Remove(ctx context.Context, name string) (string, error) {
	name, err := s.resolve("Remove profile", name)
	if err != nil {
		return "", err
	}

	if err := s.Store.Delete(name); err != nil {
		return "", err
	}

	log := s.logger()
	log.Info("profile removed", "profile", name)
	if current, err := s.Tracker.Get(); err == nil && current == name {
		log.Warn("removed the active profile; its keys are no longer available", "profile", name)
	}
	return name, nil
}

// List returns every profile with its identity and key fingerprint. A
// profile whose config cannot be read is still listed by name.
func (s *StoreContext) List(ctx context.Context) ([]types.ProfileInfo, error) {
	names, err := s.Store.List()
	if err != nil {
		return nil, err
	}

	current, err := s.Tracker.Get()
	if err != nil {
		return nil, err
	}

	log := s.logger()
	infos := make([]types.ProfileInfo, 0, len(names))
	for _, name := range names {
		info := types.ProfileInfo{Name: name, Current: name == current}

		p, err := s.Store.Read(name)
		if err != nil {
			log.Warn("skipping unreadable profile config", "profile", name, "error", err)
		} else {
			info.DisplayName = p.DisplayName
			info.Email = p.Email
		}

		if fp, err := s.Keys.Fingerprint(s.Store.Dir(name)); err == nil {
			info.Fingerprint = fp
		} else {
			log.Debug("no fingerprint", "profile", name, "error", err)
		}

		infos = append(infos, info)
	}
	return infos, nil
}

// Key returns the public key of the active profile and, when toClipboard is set,
// places it on the clipboard.
func (s *StoreContext) Key(ctx context.Context, toClipboard bool) (string, error) {
	current, err := s.Tracker.Get()
	if err != nil {
		return "", err
	}
	if current == "" {
		return "", types.ErrNoActiveProfile
	}
	if !s.Store.Exists(current) {
		return "", fmt.Errorf("%w: active profile %s was removed", types.ErrNotFound, current)
	}

	pub, err := s.Keys.PublicKey(s.Store.Dir(current))
	if err != nil {
		return "", err
	}

	if toClipboard {
		if s.Clipboard == nil {
			return pub, fmt.Errorf("%w: no clipboard configured", types.ErrExternalTool)
		}
		if err := s.Clipboard.Write(ctx, pub); err != nil {
			return pub, err
		}
		s.logger().Debug("public key copied", "profile", current)
	}
	return pub, nil
}
