package keystore_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/side-transfer/internal/wallet/keystore"
)

const (
	testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	testPassword = "correct horse battery staple"
	testAddress  = "bc1p5cyxnuxmeuwuvkwfem96lqzszd02n6xdcjrs20cac6yqjjwudpxqkedrcr"
)

func newService() keystore.Service {
	return keystore.NewService(keystore.LightScryptParams())
}

func TestCreateAndDecrypt(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "keys", "side.json")
	svc := newService()

	ks, err := svc.Create(ctx, path, testMnemonic, testPassword, testAddress)
	require.NoError(t, err)
	assert.Equal(t, keystore.Version, ks.Version)
	assert.NotEmpty(t, ks.ID)
	assert.Equal(t, "aes-128-ctr", ks.Crypto.Cipher)
	assert.Equal(t, "scrypt", ks.Crypto.KDF)
	assert.Equal(t, 32, ks.Crypto.KDFParams.DKLen)
	assert.Equal(t, testAddress, ks.Address)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "abandon")

	mnemonic, err := svc.Decrypt(ctx, path, testPassword)
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, mnemonic)

	loaded, err := svc.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, ks.ID, loaded.ID)
	assert.Equal(t, testAddress, loaded.Address)
}

func TestDecryptWrongPassword(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "side.json")
	svc := newService()

	_, err := svc.Create(ctx, path, testMnemonic, testPassword, testAddress)
	require.NoError(t, err)

	_, err = svc.Decrypt(ctx, path, "wrong")
	require.ErrorIs(t, err, keystore.ErrMACMismatch)
	assert.Contains(t, err.Error(), "MAC mismatch")
}

func TestCreateNeverOverwrites(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "side.json")
	svc := newService()

	_, err := svc.Create(ctx, path, testMnemonic, testPassword, testAddress)
	require.NoError(t, err)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = svc.Create(ctx, path, "other words", testPassword, "")
	require.ErrorIs(t, err, keystore.ErrExists)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCreateRejectsEmptyPassword(t *testing.T) {
	_, err := newService().Create(t.Context(), filepath.Join(t.TempDir(), "side.json"), testMnemonic, "", testAddress)
	require.Error(t, err)
}

func TestEachCreateUsesFreshSaltAndIV(t *testing.T) {
	ctx := t.Context()
	dir := t.TempDir()
	svc := newService()

	a, err := svc.Create(ctx, filepath.Join(dir, "a.json"), testMnemonic, testPassword, testAddress)
	require.NoError(t, err)
	b, err := svc.Create(ctx, filepath.Join(dir, "b.json"), testMnemonic, testPassword, testAddress)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Crypto.KDFParams.Salt, b.Crypto.KDFParams.Salt)
	assert.NotEqual(t, a.Crypto.CipherParams.IV, b.Crypto.CipherParams.IV)
	assert.NotEqual(t, a.Crypto.Ciphertext, b.Crypto.Ciphertext)
}

func TestLoadRejectsUnsupported(t *testing.T) {
	ctx := t.Context()
	dir := t.TempDir()
	svc := newService()

	path := filepath.Join(dir, "side.json")
	ks, err := svc.Create(ctx, path, testMnemonic, testPassword, testAddress)
	require.NoError(t, err)

	mutations := map[string]func(k *keystore.Keystore){
		"version": func(k *keystore.Keystore) { k.Version = 1 },
		"cipher":  func(k *keystore.Keystore) { k.Crypto.Cipher = "aes-256-gcm" },
		"kdf":     func(k *keystore.Keystore) { k.Crypto.KDF = "pbkdf2" },
		"dklen":   func(k *keystore.Keystore) { k.Crypto.KDFParams.DKLen = 16 },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			copied := *ks
			mutate(&copied)

			data, err := json.Marshal(copied)
			require.NoError(t, err)

			bad := filepath.Join(dir, name+".json")
			require.NoError(t, os.WriteFile(bad, data, 0o600))

			_, err = svc.Load(ctx, bad)
			require.ErrorIs(t, err, keystore.ErrUnsupported)
		})
	}
}

func TestLoadMissingOrCorrupt(t *testing.T) {
	ctx := t.Context()
	dir := t.TempDir()
	svc := newService()

	_, err := svc.Load(ctx, filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{"), 0o600))

	_, err = svc.Decrypt(ctx, corrupt, testPassword)
	require.Error(t, err)
}

func TestDecryptRejectsCorruptCipherParams(t *testing.T) {
	ctx := t.Context()
	dir := t.TempDir()
	svc := newService()

	path := filepath.Join(dir, "side.json")
	ks, err := svc.Create(ctx, path, testMnemonic, testPassword, testAddress)
	require.NoError(t, err)

	// the MAC covers only the ciphertext, so these reach the cipher setup
	mutations := map[string]func(k *keystore.Keystore){
		"short iv": func(k *keystore.Keystore) { k.Crypto.CipherParams.IV = "00" },
		"empty iv": func(k *keystore.Keystore) { k.Crypto.CipherParams.IV = "" },
		"long iv":  func(k *keystore.Keystore) { k.Crypto.CipherParams.IV += "00" },
		"no salt":  func(k *keystore.Keystore) { k.Crypto.KDFParams.Salt = "" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			copied := *ks
			mutate(&copied)

			data, err := json.Marshal(copied)
			require.NoError(t, err)

			bad := filepath.Join(dir, name+".json")
			require.NoError(t, os.WriteFile(bad, data, 0o600))

			require.NotPanics(t, func() {
				_, err = svc.Decrypt(ctx, bad, testPassword)
			})
			require.ErrorIs(t, err, keystore.ErrUnsupported)
		})
	}
}
