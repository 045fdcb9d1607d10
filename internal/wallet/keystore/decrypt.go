package keystore

import (
	"crypto/subtle"
	"encoding/hex"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

// decryptMnemonic verifies the MAC and decrypts the mnemonic
func decryptMnemonic(ks *Keystore, password string) (string, error) {
	if err := ks.check(); err != nil {
		return "", err
	}

	kdf := ks.Crypto.KDFParams

	salt, err := hex.DecodeString(kdf.Salt)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode salt")
	}

	if len(salt) == 0 {
		return "", errors.Wrap(ErrUnsupported, "empty salt")
	}

	//nolint:varnamelen // iv is a common abbreviation for initialization vector
	iv, err := hex.DecodeString(ks.Crypto.CipherParams.IV)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode IV")
	}

	if len(iv) != ivSize {
		return "", errors.Wrapf(ErrUnsupported, "IV must be %d bytes, got %d", ivSize, len(iv))
	}

	ciphertext, err := hex.DecodeString(ks.Crypto.Ciphertext)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode ciphertext")
	}

	expectedMAC, err := hex.DecodeString(ks.Crypto.MAC)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode MAC")
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, kdf.N, kdf.R, kdf.P, kdf.DKLen)
	if err != nil {
		return "", errors.Wrap(err, "failed to derive key")
	}
	defer zero(derivedKey)

	if subtle.ConstantTimeCompare(calculateMAC(derivedKey[aesKey:], ciphertext), expectedMAC) != 1 {
		return "", ErrMACMismatch
	}

	plaintext, err := xorAES128CTR(derivedKey[:aesKey], iv, ciphertext)
	if err != nil {
		return "", errors.Wrap(err, "failed to decrypt mnemonic")
	}
	defer zero(plaintext)

	return string(plaintext), nil
}

func (ks *Keystore) check() error {
	switch {
	case ks.Version != Version:
		return errors.Wrapf(ErrUnsupported, "version %d", ks.Version)
	case ks.Crypto.Cipher != CipherName:
		return errors.Wrapf(ErrUnsupported, "cipher %q", ks.Crypto.Cipher)
	case ks.Crypto.KDF != KDFName:
		return errors.Wrapf(ErrUnsupported, "kdf %q", ks.Crypto.KDF)
	case ks.Crypto.KDFParams.DKLen != 2*aesKey:
		return errors.Wrapf(ErrUnsupported, "dklen %d", ks.Crypto.KDFParams.DKLen)
	}

	return nil
}
