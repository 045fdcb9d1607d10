package signer

import (
	"bytes"
	"crypto/subtle"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github/chapool/side-transfer/internal/wallet/txerr"
)

// MessagePrefix is the magic prefix of Bitcoin signed messages, length byte included
const MessagePrefix = "\x18Bitcoin Signed Message:\n"

// SignatureLength is the size of a compact recoverable signature
const SignatureLength = 65

// MagicHash returns double-SHA256(prefix || varint(len(msg)) || msg)
func MagicHash(msg []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(MessagePrefix)
	// writing to a bytes.Buffer cannot fail
	_ = wire.WriteVarBytes(&buf, 0, msg)

	return chainhash.DoubleHashB(buf.Bytes())
}

// SignMessage produces a 65 byte BIP137 signature over msg.
// The nonce is RFC6979 deterministic, so equal inputs give equal signatures.
func SignMessage(msg []byte, key *btcec.PrivateKey, compressed bool) ([]byte, error) {
	if key == nil || key.Key.IsZero() {
		return nil, &txerr.SigningError{Reason: "private key is missing"}
	}
	if len(msg) == 0 {
		return nil, &txerr.SigningError{Reason: "message is empty"}
	}

	return ecdsa.SignCompact(key, MagicHash(msg), compressed), nil
}

// RecoverMessage recovers the public key that produced sig over msg
func RecoverMessage(msg []byte, sig []byte) (*btcec.PublicKey, bool, error) {
	if len(sig) != SignatureLength {
		return nil, false, &txerr.SigningError{Reason: "signature must be 65 bytes"}
	}

	pub, compressed, err := ecdsa.RecoverCompact(sig, MagicHash(msg))
	if err != nil {
		return nil, false, &txerr.SigningError{Reason: "public key recovery failed", Err: err}
	}

	return pub, compressed, nil
}

// VerifyMessage checks that sig over msg was made by pub
func VerifyMessage(msg []byte, sig []byte, pub *btcec.PublicKey) error {
	if pub == nil {
		return &txerr.SigningError{Reason: "public key is missing"}
	}

	recovered, _, err := RecoverMessage(msg, sig)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare(recovered.SerializeCompressed(), pub.SerializeCompressed()) != 1 {
		return &txerr.SigningError{Reason: "signature does not match public key"}
	}

	return nil
}
