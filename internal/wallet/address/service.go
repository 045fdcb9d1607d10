package address

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/pkg/errors"
	"github/chapool/side-transfer/internal/wallet/txerr"
)

type service struct {
	params  *chaincfg.Params
	keyType KeyType
}

// NewService creates a new address Service for the given network and key type
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(cfg Config) (Service, error) {
	params, err := NetworkParams(cfg.Network)
	if err != nil {
		return nil, err
	}

	switch cfg.KeyType {
	case KeyTypeTaproot, KeyTypeSegwit:
	case "":
		cfg.KeyType = KeyTypeTaproot
	default:
		return nil, errors.Errorf("unsupported key type: %s", cfg.KeyType)
	}

	return &service{
		params:  params,
		keyType: cfg.KeyType,
	}, nil
}

// NetworkParams maps a network name to its chain parameters
func NetworkParams(network string) (*chaincfg.Params, error) {
	switch network {
	case "", "mainnet", "bitcoin":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, errors.Errorf("unsupported network: %s", network)
	}
}

// EncodeAddress encodes the public key as a taproot or segwit address
func (s *service) EncodeAddress(pub *btcec.PublicKey) (string, error) {
	if pub == nil {
		return "", errors.New("public key is nil")
	}

	switch s.keyType {
	case KeyTypeSegwit:
		addr, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(pub.SerializeCompressed()), s.params)
		if err != nil {
			return "", errors.Wrap(err, "failed to encode segwit address")
		}
		return addr.EncodeAddress(), nil
	default:
		// BIP86: tweak the internal key with an empty script tree
		outputKey := txscript.ComputeTaprootKeyNoScript(pub)
		addr, err := btcutil.NewAddressTaproot(schnorr.SerializePubKey(outputKey), s.params)
		if err != nil {
			return "", errors.Wrap(err, "failed to encode taproot address")
		}
		return addr.EncodeAddress(), nil
	}
}

// Validate accepts segwit v0 and taproot addresses on the configured network
func (s *service) Validate(addr string) error {
	decoded, err := btcutil.DecodeAddress(addr, s.params)
	if err != nil {
		return &txerr.InvalidAddressError{Field: "address", Address: addr, Err: err}
	}

	if !decoded.IsForNet(s.params) {
		return &txerr.InvalidAddressError{Field: "address", Address: addr, Err: errors.Errorf("not a %s address", s.params.Name)}
	}

	switch decoded.(type) {
	case *btcutil.AddressTaproot, *btcutil.AddressWitnessPubKeyHash, *btcutil.AddressWitnessScriptHash:
		return nil
	default:
		return &txerr.InvalidAddressError{Field: "address", Address: addr, Err: errors.New("only witness addresses are accepted")}
	}
}

// PubKeyTypeURL returns the public key type URL for the configured key type
func (s *service) PubKeyTypeURL() string {
	if s.keyType == KeyTypeSegwit {
		return SegwitPubKeyTypeURL
	}
	return TaprootPubKeyTypeURL
}

// KeyType returns the configured key type
func (s *service) KeyType() KeyType {
	return s.keyType
}

// Network returns the configured network parameters
func (s *service) Network() *chaincfg.Params {
	return s.params
}
