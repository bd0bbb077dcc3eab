package sshkey

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"encoding/pem"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/trezy/git-switch/internal/config"
	"github.com/trezy/git-switch/internal/types"
)

// DefaultRSABits is the modulus size used when none is configured.
const DefaultRSABits = 4096

// MinRSABits is the smallest accepted RSA modulus.
const MinRSABits = 2048

// KeyPair is a freshly generated keypair in on-disk form.
type KeyPair struct {
	// PrivateKey is the OpenSSH PEM encoded private key.
	PrivateKey []byte
	// PublicKey is the authorized_keys line, comment included.
	PublicKey []byte
}

// Generator creates keypairs labelled with comment.
type Generator interface {
	Generate(comment string) (*KeyPair, error)
}

// NewGenerator returns the generator for the configured key type.
func NewGenerator(keyType config.KeyType, bits int) (Generator, error) {
	switch keyType {
	case config.KeyTypeRSA, "":
		if bits == 0 {
			bits = DefaultRSABits
		}
		if bits < MinRSABits {
			return nil, fmt.Errorf("rsa keys need at least %d bits, got %d", MinRSABits, bits)
		}
		return &RSAGenerator{Bits: bits}, nil
	case config.KeyTypeED25519:
		return &ED25519Generator{}, nil
	default:
		return nil, fmt.Errorf("unsupported key type %q", keyType)
	}
}

// RSAGenerator generates RSA keys.
type RSAGenerator struct {
	Bits int
}

// Generate implements Generator.
func (g *RSAGenerator) Generate(comment string) (*KeyPair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, g.Bits)
	if err != nil {
		return nil, fmt.Errorf("%w: generate rsa key: %v", types.ErrExternalTool, err)
	}
	return encode(priv, &priv.PublicKey, comment)
}

// ED25519Generator generates ed25519 keys.
type ED25519Generator struct{}

// Generate implements Generator.
func (g *ED25519Generator) Generate(comment string) (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: generate ed25519 key: %v", types.ErrExternalTool, err)
	}
	return encode(priv, pub, comment)
}

func encode(priv crypto.PrivateKey, pub crypto.PublicKey, comment string) (*KeyPair, error) {
	block, err := ssh.MarshalPrivateKey(priv, comment)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal private key: %v", types.ErrExternalTool, err)
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: create ssh public key: %v", types.ErrExternalTool, err)
	}

	line := strings.TrimSuffix(string(ssh.MarshalAuthorizedKey(sshPub)), "\n")
	if comment != "" {
		line += " " + comment
	}

	return &KeyPair{
		PrivateKey: pem.EncodeToMemory(block),
		PublicKey:  []byte(line + "\n"),
	}, nil
}

// Fingerprint returns the SHA256 fingerprint of an authorized_keys line.
func Fingerprint(publicKey []byte) (string, error) {
	key, _, _, _, err := ssh.ParseAuthorizedKey(publicKey)
	if err != nil {
		return "", fmt.Errorf("parse public key: %w", err)
	}
	return ssh.FingerprintSHA256(key), nil
}
