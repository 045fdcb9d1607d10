package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

const (
	saltSize = 32
	ivSize   = aes.BlockSize
	aesKey   = 16 // AES-128, the second half of the derived key feeds the MAC
)

// encryptMnemonic encrypts a mnemonic into a keystore document
//
//nolint:varnamelen // iv is a common abbreviation for initialization vector
func encryptMnemonic(mnemonic string, password string, params ScryptParams) (*Keystore, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "failed to generate salt")
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.Wrap(err, "failed to generate IV")
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, params.N, params.R, params.P, params.DKLen)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}
	defer zero(derivedKey)

	plaintext := []byte(mnemonic)
	defer zero(plaintext)

	ciphertext, err := xorAES128CTR(derivedKey[:aesKey], iv, plaintext)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encrypt mnemonic")
	}

	return &Keystore{
		Version: Version,
		ID:      uuid.New().String(),
		Crypto: Crypto{
			Ciphertext:   hex.EncodeToString(ciphertext),
			CipherParams: CipherParams{IV: hex.EncodeToString(iv)},
			Cipher:       CipherName,
			KDF:          KDFName,
			KDFParams: KDFParams{
				DKLen: params.DKLen,
				Salt:  hex.EncodeToString(salt),
				N:     params.N,
				R:     params.R,
				P:     params.P,
			},
			MAC: hex.EncodeToString(calculateMAC(derivedKey[aesKey:], ciphertext)),
		},
	}, nil
}

// xorAES128CTR encrypts or decrypts data using AES-128-CTR mode
//
//nolint:varnamelen // iv is a common abbreviation for initialization vector
func xorAES128CTR(key []byte, iv []byte, in []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}

	if len(iv) != ivSize {
		return nil, errors.Errorf("IV must be %d bytes, got %d", ivSize, len(iv))
	}

	out := make([]byte, len(in))
	cipher.NewCTR(block, iv).XORKeyStream(out, in)

	return out, nil
}

// calculateMAC is SHA-256(derivedKey[16:32] || ciphertext)
func calculateMAC(key []byte, ciphertext []byte) []byte {
	hasher := sha256.New()
	hasher.Write(key)
	hasher.Write(ciphertext)
	return hasher.Sum(nil)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
