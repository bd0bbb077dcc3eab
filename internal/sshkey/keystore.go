// Package sshkey manages profile keypairs and the ~/.ssh/id_rsa symlinks that
// select the active one.
package sshkey

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/trezy/git-switch/internal/types"
)

const (
	// PrivateKeyName is the SSH private key file the active profile links to.
	PrivateKeyName = "id_rsa"
	// PublicKeyName is the SSH public key file the active profile links to.
	PublicKeyName = "id_rsa.pub"

	privateKeyFile = "privatekey"
	publicKeyFile  = "publickey"
)

// link pairs an SSH path with the profile file it points at.
type link struct {
	sshPath     string
	profileFile string
}

// KeyStore moves, generates and links keypairs between the SSH directory and
// profile directories.
type KeyStore struct {
	sshDir    string
	generator Generator
}

// NewKeyStore creates a key store over sshDir. generator may be nil when no
// keys will be generated.
func NewKeyStore(sshDir string, generator Generator) *KeyStore {
	return &KeyStore{sshDir: sshDir, generator: generator}
}

// SSHDir returns the SSH directory.
func (k *KeyStore) SSHDir() string {
	return k.sshDir
}

// PrivateKeyPath returns the path of the active private key link.
func (k *KeyStore) PrivateKeyPath() string {
	return filepath.Join(k.sshDir, PrivateKeyName)
}

// PublicKeyPath returns the path of the active public key link.
func (k *KeyStore) PublicKeyPath() string {
	return filepath.Join(k.sshDir, PublicKeyName)
}

func (k *KeyStore) links() []link {
	return []link{
		{sshPath: k.PrivateKeyPath(), profileFile: privateKeyFile},
		{sshPath: k.PublicKeyPath(), profileFile: publicKeyFile},
	}
}

// ProvisionFromExisting adopts the current SSH keys into profileDir: each key
// is moved into the profile and a symlink is left in its place. The private
// key is handled first; there is no rollback if the public key fails.
func (k *KeyStore) ProvisionFromExisting(profileDir string) error {
	for _, l := range k.links() {
		info, err := os.Lstat(l.sshPath)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", types.ErrNotFound, l.sshPath)
			}
			return fmt.Errorf("failed to inspect %s: %w", l.sshPath, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("%w: %s is already linked to a profile", types.ErrAlreadyExists, l.sshPath)
		}

		dst := filepath.Join(profileDir, l.profileFile)
		if err := os.Rename(l.sshPath, dst); err != nil {
			return fmt.Errorf("failed to move %s: %w", l.sshPath, err)
		}
		if err := os.Symlink(dst, l.sshPath); err != nil {
			return fmt.Errorf("failed to link %s: %w", l.sshPath, err)
		}
	}
	return nil
}

// ProvisionNew generates a keypair labelled comment into profileDir.
func (k *KeyStore) ProvisionNew(profileDir, comment string) error {
	if k.generator == nil {
		return fmt.Errorf("%w: no key generator configured", types.ErrExternalTool)
	}

	pair, err := k.generator.Generate(comment)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(profileDir, privateKeyFile), pair.PrivateKey, 0600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}
	if err := os.WriteFile(filepath.Join(profileDir, publicKeyFile), pair.PublicKey, 0644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}
	return nil
}

// Activate points the SSH key links at profileDir's keypair. Existing links
// are replaced; a regular file in their place is left alone and reported as
// ErrUnmanagedKey.
func (k *KeyStore) Activate(profileDir string) error {
	links := k.links()

	for _, l := range links {
		target := filepath.Join(profileDir, l.profileFile)
		if _, err := os.Stat(target); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", types.ErrNotFound, target)
			}
			return fmt.Errorf("failed to inspect %s: %w", target, err)
		}

		info, err := os.Lstat(l.sshPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to inspect %s: %w", l.sshPath, err)
		}
		if info.Mode()&os.ModeSymlink == 0 {
			return fmt.Errorf("%w: %s", types.ErrUnmanagedKey, l.sshPath)
		}
	}

	if err := os.MkdirAll(k.sshDir, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", k.sshDir, err)
	}

	for _, l := range links {
		if err := os.Remove(l.sshPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", l.sshPath, err)
		}
		if err := os.Symlink(filepath.Join(profileDir, l.profileFile), l.sshPath); err != nil {
			return fmt.Errorf("failed to link %s: %w", l.sshPath, err)
		}
	}
	return nil
}

// Unmanaged reports whether both SSH key paths hold regular files that no
// profile owns yet.
func (k *KeyStore) Unmanaged() bool {
	for _, l := range k.links() {
		info, err := os.Lstat(l.sshPath)
		if err != nil || !info.Mode().IsRegular() {
			return false
		}
	}
	return true
}

// ActiveDir returns the profile directory the private key link points into,
// or "" if the link is missing or is not a symlink.
func (k *KeyStore) ActiveDir() (string, error) {
	target, err := k.resolve(k.PrivateKeyPath())
	if err != nil || target == "" {
		return "", err
	}
	return filepath.Dir(target), nil
}

// resolve returns the absolute link target of path, "" when path is absent
// or a regular file.
func (k *KeyStore) resolve(path string) (string, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return "", nil
	}

	target, err := os.Readlink(path)
	if err != nil {
		return "", fmt.Errorf("failed to read link %s: %w", path, err)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return filepath.Clean(target), nil
}

// Verify checks that both SSH key links resolve to profileDir's keypair.
func (k *KeyStore) Verify(profileDir string) error {
	var errs []error
	for _, l := range k.links() {
		want := filepath.Clean(filepath.Join(profileDir, l.profileFile))
		got, err := k.resolve(l.sshPath)
		switch {
		case err != nil:
			errs = append(errs, err)
		case got == "":
			errs = append(errs, fmt.Errorf("%s is not a managed link", l.sshPath))
		case got != want:
			errs = append(errs, fmt.Errorf("%s points to %s", l.sshPath, got))
		default:
			if _, err := os.Stat(got); err != nil {
				errs = append(errs, fmt.Errorf("%s is dangling", l.sshPath))
			}
		}
	}
	return errors.Join(errs...)
}

// PublicKey returns the profile's public key text.
func (k *KeyStore) PublicKey(profileDir string) (string, error) {
	path := filepath.Join(profileDir, publicKeyFile)
	// #nosec G304 - path is inside a profile directory
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", types.ErrNotFound, path)
		}
		return "", fmt.Errorf("read public key: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Fingerprint returns the SHA256 fingerprint of the profile's public key.
func (k *KeyStore) Fingerprint(profileDir string) (string, error) {
	pub, err := k.PublicKey(profileDir)
	if err != nil {
		return "", err
	}
	return Fingerprint([]byte(pub))
}
