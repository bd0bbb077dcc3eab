package sshkey

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezy/git-switch/internal/types"
)

// fakeGenerator returns fixed key material and records the comment.
type fakeGenerator struct {
	comment string
	err     error
}

func (f *fakeGenerator) Generate(comment string) (*KeyPair, error) {
	f.comment = comment
	if f.err != nil {
		return nil, f.err
	}
	return &KeyPair{
		PrivateKey: []byte("private-" + comment),
		PublicKey:  []byte("ssh-ed25519 AAAA " + comment + "\n"),
	}, nil
}

type fixture struct {
	ks     *KeyStore
	gen    *fakeGenerator
	sshDir string
	root   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	f := &fixture{
		gen:    &fakeGenerator{},
		sshDir: filepath.Join(base, ".ssh"),
		root:   filepath.Join(base, ".git-switch"),
	}
	require.NoError(t, os.MkdirAll(f.sshDir, 0700))
	require.NoError(t, os.MkdirAll(f.root, 0700))
	f.ks = NewKeyStore(f.sshDir, f.gen)
	return f
}

// profile creates a profile directory with generated keys.
func (f *fixture) profile(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(f.root, name)
	require.NoError(t, os.Mkdir(dir, 0700))
	require.NoError(t, f.ks.ProvisionNew(dir, name))
	return dir
}

func readLink(t *testing.T, path string) string {
	t.Helper()
	target, err := os.Readlink(path)
	require.NoError(t, err)
	return target
}

func TestProvisionNew(t *testing.T) {
	f := newFixture(t)
	dir := f.profile(t, "work")

	assert.Equal(t, "work", f.gen.comment)

	info, err := os.Stat(filepath.Join(dir, "privatekey"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	info, err = os.Stat(filepath.Join(dir, "publickey"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	pub, err := f.ks.PublicKey(dir)
	require.NoError(t, err)
	assert.Equal(t, "ssh-ed25519 AAAA work", pub)
}

func TestProvisionNew_GeneratorFailure(t *testing.T) {
	f := newFixture(t)
	f.gen.err = types.ErrExternalTool
	dir := filepath.Join(f.root, "work")
	require.NoError(t, os.Mkdir(dir, 0700))

	err := f.ks.ProvisionNew(dir, "work")
	assert.ErrorIs(t, err, types.ErrExternalTool)

	_, statErr := os.Stat(filepath.Join(dir, "privatekey"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestProvisionFromExisting(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.ks.PrivateKeyPath(), []byte("mine"), 0600))
	require.NoError(t, os.WriteFile(f.ks.PublicKeyPath(), []byte("mine.pub"), 0644))

	dir := filepath.Join(f.root, "personal")
	require.NoError(t, os.Mkdir(dir, 0700))
	require.NoError(t, f.ks.ProvisionFromExisting(dir))

	data, err := os.ReadFile(filepath.Join(dir, "privatekey"))
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))

	assert.Equal(t, filepath.Join(dir, "privatekey"), readLink(t, f.ks.PrivateKeyPath()))
	assert.Equal(t, filepath.Join(dir, "publickey"), readLink(t, f.ks.PublicKeyPath()))

	active, err := f.ks.ActiveDir()
	require.NoError(t, err)
	assert.Equal(t, dir, active)
}

func TestProvisionFromExisting_MissingPublicKey(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.ks.PrivateKeyPath(), []byte("mine"), 0600))

	dir := filepath.Join(f.root, "personal")
	require.NoError(t, os.Mkdir(dir, 0700))

	err := f.ks.ProvisionFromExisting(dir)
	assert.ErrorIs(t, err, types.ErrNotFound)

	// The private key step already completed.
	_, err = os.Stat(filepath.Join(dir, "privatekey"))
	assert.NoError(t, err)
}

func TestProvisionFromExisting_AlreadyLinked(t *testing.T) {
	f := newFixture(t)
	work := f.profile(t, "work")
	require.NoError(t, f.ks.Activate(work))

	dir := filepath.Join(f.root, "other")
	require.NoError(t, os.Mkdir(dir, 0700))

	err := f.ks.ProvisionFromExisting(dir)
	assert.ErrorIs(t, err, types.ErrAlreadyExists)
}

func TestActivate(t *testing.T) {
	f := newFixture(t)
	work := f.profile(t, "work")
	home := f.profile(t, "home")

	require.NoError(t, f.ks.Activate(work))
	assert.Equal(t, filepath.Join(work, "privatekey"), readLink(t, f.ks.PrivateKeyPath()))
	assert.NoError(t, f.ks.Verify(work))

	require.NoError(t, f.ks.Activate(home))
	assert.Equal(t, filepath.Join(home, "privatekey"), readLink(t, f.ks.PrivateKeyPath()))
	assert.Equal(t, filepath.Join(home, "publickey"), readLink(t, f.ks.PublicKeyPath()))
	assert.Error(t, f.ks.Verify(work))

	active, err := f.ks.ActiveDir()
	require.NoError(t, err)
	assert.Equal(t, home, active)

	// Activating twice is harmless.
	require.NoError(t, f.ks.Activate(home))
	assert.NoError(t, f.ks.Verify(home))
}

func TestActivate_CreatesSSHDir(t *testing.T) {
	f := newFixture(t)
	work := f.profile(t, "work")
	require.NoError(t, os.RemoveAll(f.sshDir))

	require.NoError(t, f.ks.Activate(work))
	assert.NoError(t, f.ks.Verify(work))
}

func TestActivate_MissingProfileKey(t *testing.T) {
	f := newFixture(t)
	work := f.profile(t, "work")
	require.NoError(t, f.ks.Activate(work))

	broken := filepath.Join(f.root, "broken")
	require.NoError(t, os.Mkdir(broken, 0700))

	err := f.ks.Activate(broken)
	assert.ErrorIs(t, err, types.ErrNotFound)

	// The previous links are untouched.
	assert.NoError(t, f.ks.Verify(work))
}

func TestActivate_RefusesRegularFile(t *testing.T) {
	f := newFixture(t)
	work := f.profile(t, "work")
	require.NoError(t, os.WriteFile(f.ks.PrivateKeyPath(), []byte("user key"), 0600))

	err := f.ks.Activate(work)
	assert.True(t, errors.Is(err, types.ErrUnmanagedKey))

	data, err := os.ReadFile(f.ks.PrivateKeyPath())
	require.NoError(t, err)
	assert.Equal(t, "user key", string(data))
}

func TestActiveDir_NoLink(t *testing.T) {
	f := newFixture(t)

	dir, err := f.ks.ActiveDir()
	require.NoError(t, err)
	assert.Empty(t, dir)

	require.NoError(t, os.WriteFile(f.ks.PrivateKeyPath(), []byte("user key"), 0600))
	dir, err = f.ks.ActiveDir()
	require.NoError(t, err)
	assert.Empty(t, dir)
}

func TestVerify_Dangling(t *testing.T) {
	f := newFixture(t)
	work := f.profile(t, "work")
	require.NoError(t, f.ks.Activate(work))
	require.NoError(t, os.RemoveAll(work))

	assert.Error(t, f.ks.Verify(work))
}

func TestPublicKey_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.ks.PublicKey(filepath.Join(f.root, "gone"))
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestKeyStore_Fingerprint(t *testing.T) {
	base := t.TempDir()
	ks := NewKeyStore(filepath.Join(base, ".ssh"), &ED25519Generator{})
	dir := filepath.Join(base, "work")
	require.NoError(t, os.Mkdir(dir, 0700))
	require.NoError(t, ks.ProvisionNew(dir, "work"))

	fp, err := ks.Fingerprint(dir)
	require.NoError(t, err)
	assert.Contains(t, fp, "SHA256:")
}

func TestUnmanaged(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.ks.Unmanaged())

	require.NoError(t, os.WriteFile(f.ks.PrivateKeyPath(), []byte("mine"), 0600))
	assert.False(t, f.ks.Unmanaged())

	require.NoError(t, os.WriteFile(f.ks.PublicKeyPath(), []byte("mine.pub"), 0644))
	assert.True(t, f.ks.Unmanaged())

	dir := filepath.Join(f.root, "personal")
	require.NoError(t, os.Mkdir(dir, 0700))
	require.NoError(t, f.ks.ProvisionFromExisting(dir))
	assert.False(t, f.ks.Unmanaged())
}
