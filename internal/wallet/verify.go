package wallet

import (
	"github.com/pkg/errors"
	"github/chapool/side-transfer/internal/wallet/txerr"
)

// VerifyAddress compares the derived address with the address the key source
// recorded. An empty expected address is accepted, e.g. for raw keys and mnemonics.
// A mismatch after a successful keystore decryption means the derivation path,
// key type or network differs from the one the keystore was created with.
func VerifyAddress(derived string, expected string) error {
	if expected == "" || expected == derived {
		return nil
	}

	return &txerr.DerivationError{
		Reason: "derived address does not match keystore address",
		Err:    errors.Errorf("derived %s, keystore has %s (check derivation_path, key_type and network)", derived, expected),
	}
}
