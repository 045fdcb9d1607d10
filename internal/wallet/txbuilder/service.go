package txbuilder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/tx"
	"github.com/cosmos/cosmos-sdk/types/tx/signing"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	gogoproto "github.com/cosmos/gogoproto/proto"
	"github.com/pkg/errors"
	"github/chapool/side-transfer/internal/util"
	"github/chapool/side-transfer/internal/wallet/txerr"
)

// MsgSendTypeURL is the Any type URL of bank MsgSend
var MsgSendTypeURL = sdk.MsgTypeURL(&banktypes.MsgSend{})

type service struct {
	validator AddressValidator
}

// NewService creates a new transaction builder Service
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(validator AddressValidator) Service {
	return &service{
		validator: validator,
	}
}

// Build encodes MsgSend, TxBody, AuthInfo and the SignDoc over them
func (s *service) Build(ctx context.Context, p Params) (*Unsigned, error) {
	log := util.LogFromContext(ctx)

	// 1. Validate and parse inputs
	amount, err := ParseCoin("amount", p.Denom, p.Amount)
	if err != nil {
		return nil, err
	}

	feeAmount, err := ParseCoin("fee_amount", p.Denom, p.FeeAmount)
	if err != nil {
		return nil, err
	}

	gasLimit, err := ParseGasLimit(p.GasLimit)
	if err != nil {
		return nil, err
	}

	if err := s.validateAddress("from_address", p.FromAddress); err != nil {
		return nil, err
	}

	if err := s.validateAddress("to_address", p.ToAddress); err != nil {
		return nil, err
	}

	if p.ChainID == "" {
		return nil, &txerr.EncodingError{Field: "chain_id", Value: p.ChainID, Err: errors.New("must not be empty")}
	}

	if len(p.PublicKey) == 0 {
		return nil, &txerr.EncodingError{Field: "public_key", Err: errors.New("must not be empty")}
	}

	if p.PubKeyTypeURL == "" {
		return nil, &txerr.EncodingError{Field: "pubkey_type_url", Value: p.PubKeyTypeURL, Err: errors.New("must not be empty")}
	}

	// 2. Body: the message is encoded on its own and embedded as Any
	msgSend := &banktypes.MsgSend{
		FromAddress: p.FromAddress,
		ToAddress:   p.ToAddress,
		Amount:      sdk.Coins{amount},
	}

	msgBytes, err := marshal("msg_send", msgSend)
	if err != nil {
		return nil, err
	}

	body := &tx.TxBody{
		Messages: []*codectypes.Any{{TypeUrl: MsgSendTypeURL, Value: msgBytes}},
		Memo:     p.Memo,
	}

	// 3. AuthInfo: the key keeps the secp256k1 wire layout under the ledger's own type URL
	pubKeyBytes, err := marshal("public_key", &secp256k1.PubKey{Key: p.PublicKey})
	if err != nil {
		return nil, err
	}

	authInfo := &tx.AuthInfo{
		SignerInfos: []*tx.SignerInfo{{
			PublicKey: &codectypes.Any{TypeUrl: p.PubKeyTypeURL, Value: pubKeyBytes},
			ModeInfo: &tx.ModeInfo{
				Sum: &tx.ModeInfo_Single_{
					Single: &tx.ModeInfo_Single{Mode: signing.SignMode_SIGN_MODE_DIRECT},
				},
			},
			Sequence: p.AccountSequence,
		}},
		Fee: &tx.Fee{
			Amount:   sdk.Coins{feeAmount},
			GasLimit: gasLimit,
		},
	}

	// 4. Encode body and auth info once; the SignDoc and TxRaw share these bytes
	bodyBytes, err := marshal("tx_body", body)
	if err != nil {
		return nil, err
	}

	authInfoBytes, err := marshal("auth_info", authInfo)
	if err != nil {
		return nil, err
	}

	signDocBytes, err := marshal("sign_doc", &tx.SignDoc{
		BodyBytes:     bodyBytes,
		AuthInfoBytes: authInfoBytes,
		ChainId:       p.ChainID,
		AccountNumber: p.AccountNumber,
	})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("chain_id", p.ChainID).
		Uint64("account_number", p.AccountNumber).
		Uint64("sequence", p.AccountSequence).
		Int("body_bytes", len(bodyBytes)).
		Int("auth_info_bytes", len(authInfoBytes)).
		Msg("Built sign doc")

	return &Unsigned{
		BodyBytes:     bodyBytes,
		AuthInfoBytes: authInfoBytes,
		SignDocBytes:  signDocBytes,
		ChainID:       p.ChainID,
		AccountNumber: p.AccountNumber,
	}, nil
}

func (s *service) validateAddress(field string, addr string) error {
	if s.validator == nil {
		return nil
	}

	if err := s.validator.Validate(addr); err != nil {
		var aerr *txerr.InvalidAddressError
		if errors.As(err, &aerr) {
			return &txerr.InvalidAddressError{Field: field, Address: addr, Err: aerr.Err}
		}
		return &txerr.InvalidAddressError{Field: field, Address: addr, Err: err}
	}

	return nil
}

// Attach wraps the signature into a TxRaw built from the exact bytes that were signed
func (u *Unsigned) Attach(signature []byte) (*Signed, error) {
	if len(signature) == 0 {
		return nil, &txerr.SigningError{Reason: "signature is empty"}
	}

	txRawBytes, err := marshal("tx_raw", &tx.TxRaw{
		BodyBytes:     u.BodyBytes,
		AuthInfoBytes: u.AuthInfoBytes,
		Signatures:    [][]byte{signature},
	})
	if err != nil {
		return nil, err
	}

	return &Signed{
		TxRawBytes: txRawBytes,
		TxHash:     TxHash(txRawBytes),
	}, nil
}

// TxHash returns the hash the ledger indexes the transaction under
func TxHash(txRaw []byte) string {
	sum := sha256.Sum256(txRaw)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// DecodeTxRaw decodes a TxRaw envelope
func DecodeTxRaw(b []byte) (*tx.TxRaw, error) {
	var raw tx.TxRaw
	if err := gogoproto.Unmarshal(b, &raw); err != nil {
		return nil, &txerr.EncodingError{Field: "tx_raw", Err: err}
	}

	return &raw, nil
}

func marshal(field string, msg gogoproto.Message) ([]byte, error) {
	bz, err := gogoproto.Marshal(msg)
	if err != nil {
		return nil, &txerr.EncodingError{Field: field, Err: err}
	}

	return bz, nil
}
