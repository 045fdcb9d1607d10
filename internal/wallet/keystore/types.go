package keystore

import (
	"context"

	"github.com/pkg/errors"
)

const (
	Version    = 3
	CipherName = "aes-128-ctr"
	KDFName    = "scrypt"
)

var (
	ErrMACMismatch = errors.New("invalid password: MAC mismatch")
	ErrExists      = errors.New("keystore file already exists")
	ErrUnsupported = errors.New("unsupported keystore format")
)

// Service stores a mnemonic in a password-encrypted JSON file
type Service interface {
	// Create encrypts mnemonic and writes it to path together with the plaintext
	// address it derives to. An existing file is never overwritten.
	Create(ctx context.Context, path string, mnemonic string, password string, address string) (*Keystore, error)

	// Load reads and checks the keystore at path without decrypting it
	Load(ctx context.Context, path string) (*Keystore, error)

	// Decrypt reads the keystore at path and returns the mnemonic
	Decrypt(ctx context.Context, path string, password string) (string, error)
}

// Keystore is the v3-style keystore document. The MAC is SHA-256 rather than Keccak-256.
type Keystore struct {
	Version int    `json:"version"`
	ID      string `json:"id"`
	Address string `json:"address,omitempty"` // verification address, not secret
	Crypto  Crypto `json:"crypto"`
}

type Crypto struct {
	Ciphertext   string       `json:"ciphertext"`
	CipherParams CipherParams `json:"cipherparams"`
	Cipher       string       `json:"cipher"`
	KDF          string       `json:"kdf"`
	KDFParams    KDFParams    `json:"kdfparams"`
	MAC          string       `json:"mac"`
}

type CipherParams struct {
	IV string `json:"iv"`
}

type KDFParams struct {
	DKLen int    `json:"dklen"`
	Salt  string `json:"salt"`
	N     int    `json:"n"`
	R     int    `json:"r"`
	P     int    `json:"p"`
}

// ScryptParams defines scrypt KDF parameters
type ScryptParams struct {
	DKLen int // Derived key length (32 bytes)
	N     int // CPU/memory cost parameter
	R     int // Block size parameter
	P     int // Parallelization parameter
}

// DefaultScryptParams returns the standard v3 scrypt parameters
func DefaultScryptParams() ScryptParams {
	const (
		scryptDKLen = 32
		scryptN     = 262144 // 2^18
		scryptR     = 8
		scryptP     = 1
	)

	return ScryptParams{
		DKLen: scryptDKLen,
		N:     scryptN,
		R:     scryptR,
		P:     scryptP,
	}
}

// LightScryptParams trades strength for speed, for tests and constrained hosts
func LightScryptParams() ScryptParams {
	p := DefaultScryptParams()
	p.N = 4096

	return p
}
