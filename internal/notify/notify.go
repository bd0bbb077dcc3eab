// Package notify provides desktop notification support for git-switch.
package notify

import (
	"fmt"

	"github.com/trezy/git-switch/internal/config"
	"github.com/trezy/git-switch/internal/types"
)

// Notifier defines the interface for sending desktop notifications.
type Notifier interface {
	// NotifySwitch sends a notification about a profile becoming active.
	NotifySwitch(p *types.Profile) error
	// NotifyFailure sends a notification about a failed step while switching.
	NotifyFailure(profile string, err error) error
}

// Option configures a Notifier.
type Option func(*notifier)

// WithBackend sets a custom notification backend (for testing).
func WithBackend(backend Backend) Option {
	return func(n *notifier) {
		n.backend = backend
	}
}

// notifier sends desktop notifications using the system notification service.
type notifier struct {
	onSwitch  bool
	onFailure bool
	backend   Backend
}

// NotifySwitch sends a notification about a profile switch.
func (n *notifier) NotifySwitch(p *types.Profile) error {
	if !n.onSwitch {
		return nil
	}

	title := "git-switch: Profile Switched"
	message := fmt.Sprintf("Now using '%s'.", p.Name)
	if id := p.Identity(); id != "" {
		message += "\n" + id
	}

	return n.backend.Notify(title, message, "")
}

// NotifyFailure sends a notification about a failed switch step.
func (n *notifier) NotifyFailure(profile string, err error) error {
	if !n.onFailure {
		return nil
	}

	title := "git-switch: Switch Incomplete"
	message := fmt.Sprintf("Switching to '%s' did not fully succeed.\nError: %v", profile, err)

	return n.backend.Alert(title, message, "")
}

// New creates a new Notifier based on the configuration.
func New(cfg config.NotificationConfig, opts ...Option) Notifier {
	n := &notifier{
		onSwitch:  cfg.Enabled && cfg.OnSwitch,
		onFailure: cfg.Enabled && cfg.OnFailure,
		backend:   newDesktopBackend(),
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Nop returns a Notifier that never sends anything.
func Nop() Notifier {
	return &notifier{}
}
