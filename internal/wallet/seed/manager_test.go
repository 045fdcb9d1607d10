package seed_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip39"
	"github/chapool/side-transfer/internal/wallet/seed"
)

//nolint:dupword // BIP39 test vector
const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestInitializeMatchesBIP39Vector(t *testing.T) {
	m := seed.NewManager()
	require.NoError(t, m.Initialize(testMnemonic, ""))
	require.True(t, m.IsInitialized())

	// BIP39 reference seed for the all-abandon phrase with an empty passphrase
	assert.Equal(t,
		"5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc19a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e4",
		hex.EncodeToString(m.GetSeed()))
}

func TestInitializeWithPassphrase(t *testing.T) {
	m := seed.NewManager()
	require.NoError(t, m.Initialize(testMnemonic, "TREZOR"))
	assert.Equal(t, bip39.NewSeed(testMnemonic, "TREZOR"), m.GetSeed())
}

func TestInitializeNormalizesWhitespace(t *testing.T) {
	a := seed.NewManager()
	b := seed.NewManager()
	require.NoError(t, a.Initialize(testMnemonic, ""))
	require.NoError(t, b.Initialize("  "+strings.ReplaceAll(testMnemonic, " ", "\n\t")+" ", ""))
	assert.Equal(t, a.GetSeed(), b.GetSeed())
}

func TestInitializeRejectsBadChecksum(t *testing.T) {
	m := seed.NewManager()
	err := m.Initialize(strings.Replace(testMnemonic, "about", "abandon", 1), "")
	require.ErrorIs(t, err, seed.ErrInvalidMnemonic)
	assert.False(t, m.IsInitialized())
	assert.Nil(t, m.GetSeed())
}

func TestGetSeedReturnsCopy(t *testing.T) {
	m := seed.NewManager()
	require.NoError(t, m.Initialize(testMnemonic, ""))

	s := m.GetSeed()
	s[0] ^= 0xff
	assert.NotEqual(t, s, m.GetSeed())
}

func TestClear(t *testing.T) {
	m := seed.NewManager()
	require.NoError(t, m.Initialize(testMnemonic, ""))
	m.Clear()
	assert.False(t, m.IsInitialized())
	assert.Nil(t, m.GetSeed())
}

func TestNewMnemonic(t *testing.T) {
	mnemonic, err := seed.NewMnemonic()
	require.NoError(t, err)
	assert.Len(t, strings.Fields(mnemonic), 24)
	assert.True(t, bip39.IsMnemonicValid(mnemonic))
}
