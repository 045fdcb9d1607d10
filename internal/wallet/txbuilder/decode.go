package txbuilder

import (
	"encoding/base64"
	"encoding/hex"

	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/tx"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	gogoproto "github.com/cosmos/gogoproto/proto"
	"github.com/pkg/errors"
	"github/chapool/side-transfer/internal/wallet/txerr"
)

// Decoded is a readable view of a signed single-signer MsgSend transaction
type Decoded struct {
	TxHash        string        `json:"txhash"`
	Messages      []DecodedSend `json:"messages"`
	Memo          string        `json:"memo,omitempty"`
	Fee           string        `json:"fee"`
	GasLimit      uint64        `json:"gas_limit"`
	PubKeyTypeURL string        `json:"pubkey_type_url"`
	PubKey        string        `json:"pubkey"` // hex, compressed
	Sequence      uint64        `json:"sequence"`
	Signature     string        `json:"signature"` // base64

	bodyBytes     []byte
	authInfoBytes []byte
	signature     []byte
	pubKey        []byte
}

type DecodedSend struct {
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Amount      string `json:"amount"`
}

// Decode parses TxRaw bytes as produced by Attach
func Decode(txRawBytes []byte) (*Decoded, error) {
	raw, err := DecodeTxRaw(txRawBytes)
	if err != nil {
		return nil, err
	}

	if len(raw.Signatures) != 1 {
		return nil, &txerr.EncodingError{Field: "signatures", Err: errors.Errorf("expected 1 signature, got %d", len(raw.Signatures))}
	}

	var body tx.TxBody
	if err := gogoproto.Unmarshal(raw.BodyBytes, &body); err != nil {
		return nil, &txerr.EncodingError{Field: "tx_body", Err: err}
	}

	var authInfo tx.AuthInfo
	if err := gogoproto.Unmarshal(raw.AuthInfoBytes, &authInfo); err != nil {
		return nil, &txerr.EncodingError{Field: "auth_info", Err: err}
	}

	if len(authInfo.SignerInfos) != 1 || authInfo.SignerInfos[0].PublicKey == nil {
		return nil, &txerr.EncodingError{Field: "signer_infos", Err: errors.New("expected 1 signer with a public key")}
	}
	signerInfo := authInfo.SignerInfos[0]

	var pub secp256k1.PubKey
	if err := gogoproto.Unmarshal(signerInfo.PublicKey.Value, &pub); err != nil {
		return nil, &txerr.EncodingError{Field: "public_key", Err: err}
	}

	d := &Decoded{
		TxHash:        TxHash(txRawBytes),
		Memo:          body.Memo,
		PubKeyTypeURL: signerInfo.PublicKey.TypeUrl,
		PubKey:        hex.EncodeToString(pub.Key),
		Sequence:      signerInfo.Sequence,
		Signature:     base64.StdEncoding.EncodeToString(raw.Signatures[0]),
		bodyBytes:     raw.BodyBytes,
		authInfoBytes: raw.AuthInfoBytes,
		signature:     raw.Signatures[0],
		pubKey:        pub.Key,
	}

	if authInfo.Fee != nil {
		d.Fee = sdk.Coins(authInfo.Fee.Amount).String()
		d.GasLimit = authInfo.Fee.GasLimit
	}

	for _, anyMsg := range body.Messages {
		if anyMsg.TypeUrl != MsgSendTypeURL {
			return nil, &txerr.EncodingError{Field: "messages", Value: anyMsg.TypeUrl, Err: errors.New("unsupported message type")}
		}

		var msg banktypes.MsgSend
		if err := gogoproto.Unmarshal(anyMsg.Value, &msg); err != nil {
			return nil, &txerr.EncodingError{Field: "messages", Err: err}
		}

		d.Messages = append(d.Messages, DecodedSend{
			FromAddress: msg.FromAddress,
			ToAddress:   msg.ToAddress,
			Amount:      msg.Amount.String(),
		})
	}

	return d, nil
}

// SignDocBytes rebuilds the bytes the signature covers. Chain id and account
// number are not part of the transaction and must be supplied.
func (d *Decoded) SignDocBytes(chainID string, accountNumber uint64) ([]byte, error) {
	return marshal("sign_doc", &tx.SignDoc{
		BodyBytes:     d.bodyBytes,
		AuthInfoBytes: d.authInfoBytes,
		ChainId:       chainID,
		AccountNumber: accountNumber,
	})
}

// RawSignature returns the 65 byte signature
func (d *Decoded) RawSignature() []byte { return d.signature }

// RawPubKey returns the compressed public key of the signer
func (d *Decoded) RawPubKey() []byte { return d.pubKey }
