package address

import (
	"context"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
)

// Service derives keys from a seed and encodes them as Bitcoin witness addresses
type Service interface {
	// DeriveKeyPair derives the key pair at path from a BIP39 seed
	// WARNING: Caller must call KeyPair.Zero after use
	DeriveKeyPair(ctx context.Context, seed []byte, path string) (*KeyPair, error)

	// KeyPairFromHex imports a raw hex encoded 32 byte private key
	KeyPairFromHex(hexKey string) (*KeyPair, error)

	// EncodeAddress encodes the public key with the configured key type and network
	EncodeAddress(pub *btcec.PublicKey) (string, error)

	// Validate checks that addr is a witness address on the configured network
	Validate(addr string) error

	// PubKeyTypeURL is the ledger's type URL for public keys of the configured key type
	PubKeyTypeURL() string

	// KeyType returns the configured key type
	KeyType() KeyType

	// Network returns the configured network parameters
	Network() *chaincfg.Params
}

// KeyType selects the address and public key scheme
type KeyType string

const (
	// KeyTypeTaproot is a BIP86 key-path-only P2TR output
	KeyTypeTaproot KeyType = "taproot"
	// KeyTypeSegwit is a P2WPKH output
	KeyTypeSegwit KeyType = "segwit"
)

// Public key type URLs registered by the ledger's custom key modules
const (
	TaprootPubKeyTypeURL = "/cosmos.crypto.taproot.PubKey"
	SegwitPubKeyTypeURL  = "/cosmos.crypto.segwit.PubKey"
)

// Default derivation paths per key type
const (
	DefaultTaprootPath = "m/86'/0'/0'/0/0"
	DefaultSegwitPath  = "m/84'/0'/0'/0/0"
)

// Config selects the encoder's network and key type
type Config struct {
	Network string  // mainnet, testnet3, signet or regtest
	KeyType KeyType // taproot or segwit
}

// KeyPair is a secp256k1 key pair derived for signing
type KeyPair struct {
	PrivateKey *btcec.PrivateKey
}

// PublicKey returns the public key
func (k *KeyPair) PublicKey() *btcec.PublicKey {
	return k.PrivateKey.PubKey()
}

// PublicKeyBytes returns the 33 byte compressed public key encoding
func (k *KeyPair) PublicKeyBytes() []byte {
	return k.PrivateKey.PubKey().SerializeCompressed()
}

// Zero clears the private scalar from memory
func (k *KeyPair) Zero() {
	if k != nil && k.PrivateKey != nil {
		k.PrivateKey.Zero()
	}
}

// DefaultPath returns the first receive address path for the key type
func DefaultPath(keyType KeyType) string {
	if keyType == KeyTypeSegwit {
		return DefaultSegwitPath
	}

	return DefaultTaprootPath
}
