package gitconfig

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/trezy/git-switch/internal/runner"
	"github.com/trezy/git-switch/internal/types"
)

// git config exit statuses.
const (
	exitKeyMissing   = 1
	exitUnsetMissing = 5
)

// CommandStore runs `git config --global`.
type CommandStore struct {
	runner runner.Runner
	binary string
}

// NewCommandStore creates a store that shells out to binary.
func NewCommandStore(r runner.Runner, binary string) *CommandStore {
	return &CommandStore{runner: r, binary: binary}
}

// Name implements Backend.
func (s *CommandStore) Name() string {
	return "command"
}

// Identity implements Reader.
func (s *CommandStore) Identity(ctx context.Context) (Identity, error) {
	name, err := s.get(ctx, sectionUser+"."+keyName)
	if err != nil {
		return Identity{}, err
	}
	email, err := s.get(ctx, sectionUser+"."+keyEmail)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Name: name, Email: email}, nil
}

func (s *CommandStore) get(ctx context.Context, key string) (string, error) {
	out, err := runner.Output(ctx, s.runner, nil, s.binary, "config", "--global", key)
	if err != nil {
		if runner.ExitCode(err) == exitKeyMissing {
			return "", nil
		}
		return "", fmt.Errorf("%w: git config %s: %v", types.ErrExternalTool, key, err)
	}
	return strings.TrimSpace(out), nil
}

// Apply implements Writer. Both settings are attempted; failures are joined.
func (s *CommandStore) Apply(ctx context.Context, id Identity) error {
	return errors.Join(
		s.set(ctx, sectionUser+"."+keyName, id.Name),
		s.set(ctx, sectionUser+"."+keyEmail, id.Email),
	)
}

func (s *CommandStore) set(ctx context.Context, key, value string) error {
	args := []string{"config", "--global", key, value}
	if value == "" {
		args = []string{"config", "--global", "--unset", key}
	}

	_, err := runner.Output(ctx, s.runner, nil, s.binary, args...)
	if err != nil {
		if value == "" && runner.ExitCode(err) == exitUnsetMissing {
			return nil
		}
		return fmt.Errorf("%w: git config %s: %v", types.ErrExternalTool, key, err)
	}
	return nil
}
