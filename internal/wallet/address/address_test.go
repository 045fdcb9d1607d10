package address_test

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/side-transfer/internal/wallet/address"
	"github/chapool/side-transfer/internal/wallet/seed"
	"github/chapool/side-transfer/internal/wallet/txerr"
)

//nolint:dupword // BIP39 test vector
const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func testSeed(t *testing.T) []byte {
	t.Helper()

	m := seed.NewManager()
	require.NoError(t, m.Initialize(testMnemonic, ""))
	t.Cleanup(m.Clear)

	return m.GetSeed()
}

func TestParsePath(t *testing.T) {
	indices, err := address.ParsePath("m/86'/0'/0'/0/5")
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x80000056, 0x80000000, 0x80000000, 0, 5}, indices)

	indices, err = address.ParsePath("m/84h/1H/0'")
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x80000054, 0x80000001, 0x80000000}, indices)

	indices, err = address.ParsePath("m")
	require.NoError(t, err)
	assert.Empty(t, indices)

	for _, bad := range []string{"", "86'/0'", "m86'", "m/86'//0", "m/x", "m/2147483648", "m/-1"} {
		_, err := address.ParsePath(bad)
		assert.Error(t, err, bad)
	}
}

func TestTaprootAddressBIP86Vector(t *testing.T) {
	svc, err := address.NewService(address.Config{Network: "mainnet", KeyType: address.KeyTypeTaproot})
	require.NoError(t, err)

	kp, err := svc.DeriveKeyPair(t.Context(), testSeed(t), address.DefaultTaprootPath)
	require.NoError(t, err)
	defer kp.Zero()

	// internal key from the BIP86 reference vectors
	assert.Equal(t, "cc8a4bc64d897bddc5fbc2f670f7a8ba0b386779106cf1223c6fc5d7cd6fc115",
		hex.EncodeToString(schnorr.SerializePubKey(kp.PublicKey())))
	assert.Len(t, kp.PublicKeyBytes(), 33)

	addr, err := svc.EncodeAddress(kp.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, "bc1p5cyxnuxmeuwuvkwfem96lqzszd02n6xdcjrs20cac6yqjjwudpxqkedrcr", addr)
	assert.NoError(t, svc.Validate(addr))
	assert.Equal(t, address.TaprootPubKeyTypeURL, svc.PubKeyTypeURL())
}

func TestSegwitAddressBIP84Vector(t *testing.T) {
	svc, err := address.NewService(address.Config{Network: "mainnet", KeyType: address.KeyTypeSegwit})
	require.NoError(t, err)

	kp, err := svc.DeriveKeyPair(t.Context(), testSeed(t), address.DefaultSegwitPath)
	require.NoError(t, err)
	defer kp.Zero()

	addr, err := svc.EncodeAddress(kp.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", addr)
	assert.Equal(t, address.SegwitPubKeyTypeURL, svc.PubKeyTypeURL())
}

func TestKeyPairFromHexMatchesDerivation(t *testing.T) {
	svc, err := address.NewService(address.Config{})
	require.NoError(t, err)
	assert.Equal(t, address.KeyTypeTaproot, svc.KeyType())
	assert.Equal(t, "mainnet", svc.Network().Name)

	raw, err := address.DerivePrivateKey(testSeed(t), address.DefaultTaprootPath)
	require.NoError(t, err)

	kp, err := svc.KeyPairFromHex("0x" + hex.EncodeToString(raw))
	require.NoError(t, err)

	addr, err := svc.EncodeAddress(kp.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, "bc1p5cyxnuxmeuwuvkwfem96lqzszd02n6xdcjrs20cac6yqjjwudpxqkedrcr", addr)
}

func TestKeyPairFromHexRejectsGarbage(t *testing.T) {
	svc, err := address.NewService(address.Config{})
	require.NoError(t, err)

	var derr *txerr.DerivationError

	_, err = svc.KeyPairFromHex("zz")
	require.ErrorAs(t, err, &derr)

	_, err = svc.KeyPairFromHex("abcd")
	require.ErrorAs(t, err, &derr)

	_, err = svc.KeyPairFromHex(hex.EncodeToString(make([]byte, 32)))
	require.ErrorAs(t, err, &derr)
}

func TestDeriveWithoutSeed(t *testing.T) {
	_, err := address.DerivePrivateKey(nil, address.DefaultTaprootPath)
	var derr *txerr.DerivationError
	require.ErrorAs(t, err, &derr)
}

func TestValidate(t *testing.T) {
	svc, err := address.NewService(address.Config{Network: "mainnet"})
	require.NoError(t, err)

	assert.NoError(t, svc.Validate("bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu"))

	var aerr *txerr.InvalidAddressError
	for _, bad := range []string{
		"",
		"not-an-address",
		"1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2",                             // legacy P2PKH
		"tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx",                     // testnet
		"bc1p5cyxnuxmeuwuvkwfem96lqzszd02n6xdcjrs20cac6yqjjwudpxqkedrcq", // checksum
	} {
		require.ErrorAs(t, svc.Validate(bad), &aerr, bad)
	}
}

func TestNewServiceRejectsUnknown(t *testing.T) {
	_, err := address.NewService(address.Config{Network: "dogecoin"})
	require.Error(t, err)

	_, err = address.NewService(address.Config{KeyType: "legacy"})
	require.Error(t, err)
}
