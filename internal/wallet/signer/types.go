package signer

import (
	"context"

	"github/chapool/side-transfer/internal/wallet/address"
)

// Service provides transaction signing functionality
type Service interface {
	// Sign signs the SignDoc bytes with BIP137 message signing and checks the
	// signature recovers to the key pair's public key before returning it
	Sign(ctx context.Context, signDoc []byte, keyPair *address.KeyPair) ([]byte, error)
}

// Config controls the signature encoding
type Config struct {
	// Compressed selects the compressed public key recovery header (27 + 4 + recid)
	Compressed bool
}
