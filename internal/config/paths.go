// Package config provides configuration management for git-switch.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	// AppName is the application name used for directories.
	AppName = "git-switch"
	// ConfigFileName is the default configuration file name.
	ConfigFileName = "config.yaml"
	// StoreDirName is the profile store directory created under the home directory.
	StoreDirName = ".git-switch"
	// ConfigDirEnvVar overrides the configuration directory.
	ConfigDirEnvVar = "GIT_SWITCH_CONFIG_DIR"
)

// Paths holds all the application paths.
type Paths struct {
	HomeDir       string
	ConfigDir     string
	ConfigFile    string
	StoreDir      string
	SSHDir        string
	GitConfigFile string
}

// GetPaths returns the application paths. The tool config follows the XDG
// Base Directory specification; the store, SSH and git paths hang off the
// home directory.
func GetPaths() Paths {
	home := homeDir()
	configDir := getConfigDir()
	return Paths{
		HomeDir:       home,
		ConfigDir:     configDir,
		ConfigFile:    filepath.Join(configDir, ConfigFileName),
		StoreDir:      filepath.Join(home, StoreDirName),
		SSHDir:        filepath.Join(home, ".ssh"),
		GitConfigFile: filepath.Join(home, ".gitconfig"),
	}
}

// homeDir returns the user's home directory, preferring $HOME so tests can
// redirect it.
func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if runtime.GOOS == "windows" {
		if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
			return userProfile
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	if dir := os.Getenv(ConfigDirEnvVar); dir != "" {
		return dir
	}

	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
			return filepath.Join(userProfile, "AppData", "Roaming", AppName)
		}
	case "darwin":
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			return filepath.Join(xdgConfig, AppName)
		}
		if home := os.Getenv("HOME"); home != "" {
			xdgPath := filepath.Join(home, ".config", AppName)
			if _, err := os.Stat(xdgPath); err == nil {
				return xdgPath
			}
			return filepath.Join(home, "Library", "Application Support", AppName)
		}
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			return filepath.Join(xdgConfig, AppName)
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", AppName)
		}
	}

	return filepath.Join(".", "."+AppName)
}

// EnsureDirs creates the configuration directory if it doesn't exist.
func (p Paths) EnsureDirs() error {
	return os.MkdirAll(p.ConfigDir, 0700)
}
