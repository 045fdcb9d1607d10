package signer

import (
	"context"

	"github/chapool/side-transfer/internal/util"
	"github/chapool/side-transfer/internal/wallet/address"
	"github/chapool/side-transfer/internal/wallet/txerr"
)

type service struct {
	compressed bool
}

// NewService creates a new signer Service
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(cfg Config) Service {
	return &service{
		compressed: cfg.Compressed,
	}
}

// Sign signs the SignDoc bytes and verifies the result against the key pair
func (s *service) Sign(ctx context.Context, signDoc []byte, keyPair *address.KeyPair) ([]byte, error) {
	log := util.LogFromContext(ctx)

	if keyPair == nil || keyPair.PrivateKey == nil {
		return nil, &txerr.SigningError{Reason: "key pair not initialized"}
	}

	sig, err := SignMessage(signDoc, keyPair.PrivateKey, s.compressed)
	if err != nil {
		return nil, err
	}

	// the ledger recovers the signer from the signature, so recovery must give our key
	if err := VerifyMessage(signDoc, sig, keyPair.PublicKey()); err != nil {
		log.Error().Err(err).Msg("Signature failed local verification")
		return nil, err
	}

	log.Debug().
		Int("sign_doc_bytes", len(signDoc)).
		Uint8("header", sig[0]).
		Msg("Signed sign doc")

	return sig, nil
}
