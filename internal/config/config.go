package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables that override file settings.
const EnvPrefix = "GIT_SWITCH"

// ErrInvalidConfig indicates a configuration value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// KeyType is the algorithm used for newly generated SSH keys.
type KeyType string

const (
	// KeyTypeRSA generates RSA keys, matching the id_rsa file names.
	KeyTypeRSA KeyType = "rsa"
	// KeyTypeED25519 generates ED25519 keys.
	KeyTypeED25519 KeyType = "ed25519"
)

// GitBackend selects how the global git identity is read and written.
type GitBackend string

const (
	// GitBackendAuto uses the git binary when available and the file otherwise.
	GitBackendAuto GitBackend = "auto"
	// GitBackendCommand runs `git config --global`.
	GitBackendCommand GitBackend = "command"
	// GitBackendFile edits the global gitconfig file directly.
	GitBackendFile GitBackend = "file"
)

// KeyConfig holds SSH key generation settings.
type KeyConfig struct {
	// Type is the key algorithm (rsa or ed25519).
	Type KeyType `yaml:"type,omitempty" json:"type,omitempty"`
	// Bits is the RSA modulus size. Ignored for ed25519.
	Bits int `yaml:"bits,omitempty" json:"bits,omitempty"`
}

// GitConfig holds settings for the git identity collaborator.
type GitConfig struct {
	// Backend is auto, command or file.
	Backend GitBackend `yaml:"backend,omitempty" json:"backend,omitempty"`
	// Binary is the git executable used by the command backend.
	Binary string `yaml:"binary,omitempty" json:"binary,omitempty"`
	// ConfigFile is the global gitconfig edited by the file backend.
	ConfigFile string `yaml:"config_file,omitempty" json:"config_file,omitempty"`
}

// ClipboardConfig holds settings for copying public keys.
type ClipboardConfig struct {
	// Command is a custom copy command reading from stdin (e.g. "xclip -selection clipboard").
	Command string `yaml:"command,omitempty" json:"command,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the logging level (debug, info, warn, error).
	Level string `yaml:"level,omitempty" json:"level,omitempty"`
	// Format is text or json.
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
}

// NotificationConfig holds settings for desktop notifications.
type NotificationConfig struct {
	// Enabled enables desktop notifications.
	Enabled bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	// OnSwitch sends a notification when the active profile changes.
	OnSwitch bool `yaml:"on_switch,omitempty" json:"on_switch,omitempty"`
	// OnFailure sends a notification when git or the clipboard fails.
	OnFailure bool `yaml:"on_failure,omitempty" json:"on_failure,omitempty"`
}

// Config represents the git-switch configuration.
type Config struct {
	// StoreDir is the directory holding one subdirectory per profile.
	StoreDir string `yaml:"store_dir,omitempty" json:"store_dir,omitempty"`
	// SSHDir is the directory holding the id_rsa symlinks.
	SSHDir string `yaml:"ssh_dir,omitempty" json:"ssh_dir,omitempty"`
	// Keys holds key generation settings.
	Keys KeyConfig `yaml:"keys,omitempty" json:"keys,omitempty"`
	// Git holds git identity settings.
	Git GitConfig `yaml:"git,omitempty" json:"git,omitempty"`
	// Clipboard holds clipboard settings.
	Clipboard ClipboardConfig `yaml:"clipboard,omitempty" json:"clipboard,omitempty"`
	// Log holds logging settings.
	Log LogConfig `yaml:"log,omitempty" json:"log,omitempty"`
	// Notifications holds notification settings.
	Notifications NotificationConfig `yaml:"notifications,omitempty" json:"notifications,omitempty"`

	// filePath is the path where this config was loaded from.
	filePath string `yaml:"-"`
}

// envOverrides lists the settings that can be overridden from the environment.
type envOverrides struct {
	StoreDir   string `envconfig:"STORE_DIR"`
	SSHDir     string `envconfig:"SSH_DIR"`
	LogLevel   string `envconfig:"LOG_LEVEL"`
	GitBackend string `envconfig:"GIT_BACKEND"`
	Clipboard  string `envconfig:"CLIPBOARD"`
}

// Default returns a new Config with default values.
func Default() *Config {
	paths := GetPaths()
	return &Config{
		StoreDir: paths.StoreDir,
		SSHDir:   paths.SSHDir,
		Keys: KeyConfig{
			Type: KeyTypeRSA,
			Bits: 4096,
		},
		Git: GitConfig{
			Backend:    GitBackendAuto,
			Binary:     "git",
			ConfigFile: paths.GitConfigFile,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Notifications: NotificationConfig{
			Enabled:   false,
			OnSwitch:  true,
			OnFailure: true,
		},
		filePath: paths.ConfigFile,
	}
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	return LoadFrom(GetPaths().ConfigFile)
}

// LoadFrom loads the configuration from a specific path, then applies
// GIT_SWITCH_* environment overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.filePath = path

	// #nosec G304 - path is the config file path (controlled, from user config directory)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// No config file, keep defaults
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overlays non-empty GIT_SWITCH_* variables.
func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if env.StoreDir != "" {
		c.StoreDir = env.StoreDir
	}
	if env.SSHDir != "" {
		c.SSHDir = env.SSHDir
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if env.GitBackend != "" {
		c.Git.Backend = GitBackend(env.GitBackend)
	}
	if env.Clipboard != "" {
		c.Clipboard.Command = env.Clipboard
	}
	return nil
}

// applyDefaults fills values a partial config file left empty.
func (c *Config) applyDefaults() {
	def := Default()
	if c.StoreDir == "" {
		c.StoreDir = def.StoreDir
	}
	if c.SSHDir == "" {
		c.SSHDir = def.SSHDir
	}
	if c.Keys.Type == "" {
		c.Keys.Type = def.Keys.Type
	}
	if c.Keys.Bits == 0 {
		c.Keys.Bits = def.Keys.Bits
	}
	if c.Git.Backend == "" {
		c.Git.Backend = def.Git.Backend
	}
	if c.Git.Binary == "" {
		c.Git.Binary = def.Git.Binary
	}
	if c.Git.ConfigFile == "" {
		c.Git.ConfigFile = def.Git.ConfigFile
	}

	home := GetPaths().HomeDir
	c.StoreDir = ExpandHome(c.StoreDir, home)
	c.SSHDir = ExpandHome(c.SSHDir, home)
	c.Git.ConfigFile = ExpandHome(c.Git.ConfigFile, home)
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Keys.Type {
	case KeyTypeRSA:
		if c.Keys.Bits < 2048 {
			return fmt.Errorf("%w: keys.bits must be at least 2048, got %d", ErrInvalidConfig, c.Keys.Bits)
		}
	case KeyTypeED25519:
	default:
		return fmt.Errorf("%w: keys.type must be 'rsa' or 'ed25519', got %q", ErrInvalidConfig, c.Keys.Type)
	}

	switch c.Git.Backend {
	case GitBackendAuto, GitBackendCommand, GitBackendFile:
	default:
		return fmt.Errorf("%w: git.backend must be 'auto', 'command' or 'file', got %q", ErrInvalidConfig, c.Git.Backend)
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be 'text' or 'json', got %q", ErrInvalidConfig, c.Log.Format)
	}

	if c.StoreDir == "" {
		return fmt.Errorf("%w: store_dir is required", ErrInvalidConfig)
	}
	if c.SSHDir == "" {
		return fmt.Errorf("%w: ssh_dir is required", ErrInvalidConfig)
	}

	return nil
}

// Save writes the configuration to its file path.
func (c *Config) Save() error {
	if c.filePath == "" {
		return errors.New("config file path not set")
	}

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FilePath returns the path where this config was loaded from.
func (c *Config) FilePath() string {
	return c.filePath
}

// ExpandHome replaces a leading "~" with home.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
