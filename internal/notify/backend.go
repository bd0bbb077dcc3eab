package notify

import "github.com/gen2brain/beeep"

// Backend delivers a single notification to the desktop.
type Backend interface {
	// Notify sends an informational notification.
	Notify(title, message, iconPath string) error
	// Alert sends a notification that also plays the system alert sound.
	Alert(title, message, iconPath string) error
}

// beeepBackend delivers notifications through beeep.
type beeepBackend struct{}

func (beeepBackend) Notify(title, message, iconPath string) error {
	return beeep.Notify(title, message, iconPath)
}

func (beeepBackend) Alert(title, message, iconPath string) error {
	return beeep.Alert(title, message, iconPath)
}

// newDesktopBackend returns the beeep backend registered under the
// application name.
func newDesktopBackend() Backend {
	beeep.AppName = "git-switch"
	return beeepBackend{}
}
