package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/trezy/git-switch/internal/gitconfig"
	"github.com/trezy/git-switch/internal/prompt"
	"github.com/trezy/git-switch/internal/types"
	"github.com/trezy/git-switch/internal/utils"
)

// AddOptions are the inputs of Add. Empty fields are asked for when
// Interactive is set, and otherwise default to the global git identity.
type AddOptions struct {
	Name        string
	DisplayName string
	Email       string
	// UseExistingKey adopts the current ~/.ssh/id_rsa pair instead of
	// generating a new one.
	UseExistingKey bool
	// UseExistingKeySet means UseExistingKey was given explicitly.
	UseExistingKeySet bool
	Interactive       bool
}

// Add creates a profile, applies its identity and provisions its keys.
// The new profile becomes active only when it adopted the current keys,
// since those are the ones the SSH links point at.
func (s *StoreContext) Add(ctx context.Context, opts AddOptions) (*types.Profile, error) {
	log := s.logger()

	current, err := s.Identity.Identity(ctx)
	if err != nil {
		log.Warn("could not read global git identity", "error", err)
		current = gitconfig.Identity{}
	}

	p, useExisting, err := s.collect(opts, current)
	if err != nil {
		return nil, err
	}

	var errs []error
	if err := s.Identity.Apply(ctx, gitconfig.Identity{Name: p.DisplayName, Email: p.Email}); err != nil {
		if !errors.Is(err, types.ErrExternalTool) {
			return nil, err
		}
		log.Warn("failed to apply git identity", "profile", p.Name, "error", err)
		errs = append(errs, err)
	}

	provision := func(dir string) error {
		if useExisting {
			log.Debug("adopting existing ssh keys", "profile", p.Name, "dir", dir)
			return s.Keys.ProvisionFromExisting(dir)
		}
		log.Debug("generating ssh keys", "profile", p.Name, "dir", dir)
		return s.Keys.ProvisionNew(dir, p.Name)
	}
	if err := s.Store.Create(*p, provision); err != nil {
		return nil, errors.Join(append(errs, err)...)
	}
	log.Info("profile created", "profile", p.Name, "existing_key", useExisting)

	if useExisting {
		if err := s.Tracker.Set(p.Name); err != nil {
			errs = append(errs, err)
		}
	}

	return p, errors.Join(errs...)
}

// collect fills in the profile fields from opts, prompts and the current
// identity.
func (s *StoreContext) collect(opts AddOptions, current gitconfig.Identity) (*types.Profile, bool, error) {
	validateName := func(name string) error {
		if !utils.IsValidProfileName(name) {
			return fmt.Errorf("%w: %q (use letters, digits, '.', '_' or '-')", types.ErrInvalidName, name)
		}
		if s.Store.Exists(name) {
			return fmt.Errorf("%w: %s", types.ErrAlreadyExists, name)
		}
		return nil
	}

	ask := opts.Interactive && s.Prompt != nil
	p := &types.Profile{Name: opts.Name, DisplayName: opts.DisplayName, Email: opts.Email}

	if p.Name != "" {
		if err := validateName(p.Name); err != nil {
			return nil, false, err
		}
	} else if ask {
		name, err := s.Prompt.Ask(prompt.Question{
			Label:    "Profile name",
			Default:  utils.SuggestProfileName(current.Email),
			Required: true,
			Validate: validateName,
		})
		if err != nil {
			return nil, false, err
		}
		p.Name = name
	} else {
		return nil, false, fmt.Errorf("%w: a profile name is required", types.ErrInvalidName)
	}

	if p.DisplayName == "" {
		p.DisplayName = current.Name
		if ask {
			v, err := s.Prompt.Ask(prompt.Question{Label: "Name", Default: current.Name})
			if err != nil {
				return nil, false, err
			}
			p.DisplayName = v
		}
	}

	if p.Email == "" {
		p.Email = current.Email
		if ask {
			v, err := s.Prompt.Ask(prompt.Question{Label: "Email", Default: current.Email})
			if err != nil {
				return nil, false, err
			}
			p.Email = v
		}
	}

	useExisting := opts.UseExistingKey
	if !opts.UseExistingKeySet && ask && s.Keys.Unmanaged() {
		v, err := s.Prompt.Confirm("Use your current SSH key (~/.ssh/id_rsa) for this profile?", false)
		if err != nil {
			return nil, false, err
		}
		useExisting = v
	}

	return p, useExisting, nil
}
