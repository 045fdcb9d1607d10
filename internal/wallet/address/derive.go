package address

import (
	"context"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
	"github/chapool/side-transfer/internal/wallet/txerr"
)

const privateKeyLength = 32

// DeriveKeyPair derives a key pair from seed and BIP32 path
// WARNING: Caller must clear the key pair after use
func (s *service) DeriveKeyPair(_ context.Context, seed []byte, path string) (*KeyPair, error) {
	privateKey, err := DerivePrivateKey(seed, path)
	if err != nil {
		return nil, err
	}

	defer func() {
		for i := range privateKey {
			privateKey[i] = 0
		}
	}()

	return newKeyPair(privateKey)
}

// KeyPairFromHex imports a raw hex private key, with or without 0x prefix
func (s *service) KeyPairFromHex(hexKey string) (*KeyPair, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")

	privateKey, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, &txerr.DerivationError{Reason: "private key is not valid hex", Err: err}
	}

	defer func() {
		for i := range privateKey {
			privateKey[i] = 0
		}
	}()

	return newKeyPair(privateKey)
}

// DerivePrivateKey derives a private key from seed and BIP32 path
// WARNING: Caller must clear the private key after use
func DerivePrivateKey(seed []byte, path string) ([]byte, error) {
	if len(seed) == 0 {
		return nil, &txerr.DerivationError{Reason: "seed not initialized"}
	}

	// Create master key from seed
	masterKey, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, &txerr.DerivationError{Reason: "failed to create master key", Err: err}
	}

	// Derive key from path
	derivedKey, err := deriveKeyFromPath(masterKey, path)
	if err != nil {
		return nil, &txerr.DerivationError{Reason: "failed to derive key from path " + path, Err: err}
	}

	// Return private key (32 bytes)
	return derivedKey.Key, nil
}

func newKeyPair(privateKey []byte) (*KeyPair, error) {
	if len(privateKey) != privateKeyLength {
		return nil, &txerr.DerivationError{Reason: "private key must be 32 bytes, got " + strconv.Itoa(len(privateKey))}
	}

	key, _ := btcec.PrivKeyFromBytes(privateKey)
	if key.Key.IsZero() {
		return nil, &txerr.DerivationError{Reason: "private key is zero modulo the curve order"}
	}

	return &KeyPair{PrivateKey: key}, nil
}

// deriveKeyFromPath derives a key from a BIP32 path
// Path format: m/86'/0'/0'/0/{index}
func deriveKeyFromPath(masterKey *bip32.Key, path string) (*bip32.Key, error) {
	indices, err := ParsePath(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse BIP32 path")
	}

	// Derive key step by step
	key := masterKey
	for _, index := range indices {
		key, err = key.NewChildKey(index)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to derive child key at index %d", index)
		}
	}

	return key, nil
}

// ParsePath parses a BIP32 path string into child indices
// Example: "m/86'/0'/0'/0/0" -> [2147483734, 2147483648, 2147483648, 0, 0]
func ParsePath(path string) ([]uint32, error) {
	path = strings.TrimSpace(path)
	if path == "" || path[0] != 'm' {
		return nil, errors.Errorf("invalid BIP32 path: %q", path)
	}

	rest := strings.TrimPrefix(path, "m")
	if rest == "" {
		return []uint32{}, nil
	}
	if rest[0] != '/' {
		return nil, errors.Errorf("invalid BIP32 path: %q", path)
	}

	parts := strings.Split(rest[1:], "/")
	indices := make([]uint32, 0, len(parts))
	for _, part := range parts {
		hardened := false
		if n := len(part); n > 0 && (part[n-1] == '\'' || part[n-1] == 'h' || part[n-1] == 'H') {
			hardened = true
			part = part[:n-1]
		}

		// child numbers are 31 bit, the top bit is the hardened flag
		index, err := strconv.ParseUint(part, 10, 31)
		if err != nil {
			return nil, errors.Errorf("invalid path segment %q in %q", part, path)
		}

		if hardened {
			index += uint64(bip32.FirstHardenedChild)
		}

		indices = append(indices, uint32(index))
	}

	return indices, nil
}
