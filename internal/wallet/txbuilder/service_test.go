package txbuilder_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/tx"
	"github.com/cosmos/cosmos-sdk/types/tx/signing"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	gogoproto "github.com/cosmos/gogoproto/proto"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/side-transfer/internal/wallet/txbuilder"
	"github/chapool/side-transfer/internal/wallet/txerr"
)

const (
	fromAddress = "bc1p5cyxnuxmeuwuvkwfem96lqzszd02n6xdcjrs20cac6yqjjwudpxqkedrcr"
	toAddress   = "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu"
)

type validatorFunc func(string) error

func (f validatorFunc) Validate(addr string) error { return f(addr) }

func testPubKey() []byte {
	return append([]byte{0x02}, bytes.Repeat([]byte{0x11}, 32)...)
}

func testParams() txbuilder.Params {
	return txbuilder.Params{
		FromAddress:     fromAddress,
		ToAddress:       toAddress,
		Denom:           "uside",
		Amount:          "1000000",
		FeeAmount:       "300",
		GasLimit:        "200000",
		ChainID:         "sidechain-1",
		AccountNumber:   5,
		AccountSequence: 2,
		PublicKey:       testPubKey(),
		PubKeyTypeURL:   "/cosmos.crypto.taproot.PubKey",
	}
}

func build(t *testing.T, p txbuilder.Params) *txbuilder.Unsigned {
	t.Helper()

	unsigned, err := txbuilder.NewService(nil).Build(t.Context(), p)
	require.NoError(t, err)

	return unsigned
}

func TestMsgSendTypeURL(t *testing.T) {
	assert.Equal(t, "/cosmos.bank.v1beta1.MsgSend", txbuilder.MsgSendTypeURL)
}

func TestCoinWireFormat(t *testing.T) {
	coin, err := txbuilder.ParseCoin("fee_amount", "uside", "300")
	require.NoError(t, err)

	bz, err := gogoproto.Marshal(&coin)
	require.NoError(t, err)

	// field 1 denom, field 2 amount as decimal text
	assert.Equal(t, "0a0575736964651203333030", hex.EncodeToString(bz))
}

func TestCoinRoundTrip(t *testing.T) {
	for _, tc := range []struct{ denom, amount string }{
		{"uside", "0"},
		{"uside", "1"},
		{"sat", "2100000000000000"},
		{"ibc/27394FB092D2ECCD56123C74F36E4C1F926001CEADA9CA97EA622B25F41E5EB2", "115792089237316195423570985008687907853269984665640564039457584007913129639935"},
	} {
		coin, err := txbuilder.ParseCoin("amount", tc.denom, tc.amount)
		require.NoError(t, err, tc.amount)

		bz, err := gogoproto.Marshal(&coin)
		require.NoError(t, err)

		var decoded sdk.Coin
		require.NoError(t, gogoproto.Unmarshal(bz, &decoded))
		assert.Equal(t, tc.denom, decoded.Denom)
		assert.Equal(t, tc.amount, decoded.Amount.String())
	}
}

func TestParseCoinRejects(t *testing.T) {
	for _, tc := range []struct{ denom, amount string }{
		{"uside", ""},
		{"uside", "-1"},
		{"uside", "+1"},
		{"uside", "1.5"},
		{"uside", "1e6"},
		{"uside", "007"},
		{"uside", " 1"},
		{"uside", "1" + strings.Repeat("0", 80)},
		{"", "1"},
		{"1bad", "1"},
	} {
		_, err := txbuilder.ParseCoin("amount", tc.denom, tc.amount)

		var eerr *txerr.EncodingError
		assert.ErrorAs(t, err, &eerr, "%s %q", tc.denom, tc.amount)
	}
}

func TestParseGasLimit(t *testing.T) {
	gas, err := txbuilder.ParseGasLimit("200000")
	require.NoError(t, err)
	assert.Equal(t, uint64(200000), gas)

	for _, bad := range []string{"", "-1", "abc", "18446744073709551616"} {
		_, err := txbuilder.ParseGasLimit(bad)

		var eerr *txerr.EncodingError
		assert.ErrorAs(t, err, &eerr, bad)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	a := build(t, testParams())
	b := build(t, testParams())

	assert.Equal(t, a.BodyBytes, b.BodyBytes)
	assert.Equal(t, a.AuthInfoBytes, b.AuthInfoBytes)
	assert.Equal(t, a.SignDocBytes, b.SignDocBytes)
}

func TestSequenceChangesAuthInfoAndSignDoc(t *testing.T) {
	p := testParams()
	a := build(t, p)

	p.AccountSequence = 3
	b := build(t, p)

	assert.Equal(t, a.BodyBytes, b.BodyBytes)
	assert.NotEqual(t, a.AuthInfoBytes, b.AuthInfoBytes)
	assert.NotEqual(t, a.SignDocBytes, b.SignDocBytes)

	// sequence 0 is the proto3 default and still must yield a distinct encoding
	p.AccountSequence = 0
	c := build(t, p)
	assert.NotEqual(t, a.AuthInfoBytes, c.AuthInfoBytes)
}

func TestAccountNumberAndChainIDChangeSignDocOnly(t *testing.T) {
	p := testParams()
	a := build(t, p)

	p.AccountNumber = 6
	b := build(t, p)
	assert.Equal(t, a.AuthInfoBytes, b.AuthInfoBytes)
	assert.NotEqual(t, a.SignDocBytes, b.SignDocBytes)

	p.AccountNumber = 5
	p.ChainID = "sidechain-testnet-4"
	c := build(t, p)
	assert.NotEqual(t, a.SignDocBytes, c.SignDocBytes)
}

func TestBuildContents(t *testing.T) {
	p := testParams()
	p.Memo = "hello"
	unsigned := build(t, p)

	var signDoc tx.SignDoc
	require.NoError(t, gogoproto.Unmarshal(unsigned.SignDocBytes, &signDoc))
	assert.Equal(t, unsigned.BodyBytes, signDoc.BodyBytes)
	assert.Equal(t, unsigned.AuthInfoBytes, signDoc.AuthInfoBytes)
	assert.Equal(t, "sidechain-1", signDoc.ChainId)
	assert.Equal(t, uint64(5), signDoc.AccountNumber)

	var body tx.TxBody
	require.NoError(t, gogoproto.Unmarshal(signDoc.BodyBytes, &body))
	assert.Equal(t, "hello", body.Memo)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "/cosmos.bank.v1beta1.MsgSend", body.Messages[0].TypeUrl)

	var msg banktypes.MsgSend
	require.NoError(t, gogoproto.Unmarshal(body.Messages[0].Value, &msg))
	assert.Equal(t, fromAddress, msg.FromAddress)
	assert.Equal(t, toAddress, msg.ToAddress)
	require.Len(t, msg.Amount, 1)
	assert.Equal(t, "uside", msg.Amount[0].Denom)
	assert.Equal(t, "1000000", msg.Amount[0].Amount.String())

	var authInfo tx.AuthInfo
	require.NoError(t, gogoproto.Unmarshal(signDoc.AuthInfoBytes, &authInfo))
	require.Len(t, authInfo.SignerInfos, 1)

	si := authInfo.SignerInfos[0]
	assert.Equal(t, "/cosmos.crypto.taproot.PubKey", si.PublicKey.TypeUrl)
	assert.Equal(t, uint64(2), si.Sequence)
	assert.Equal(t, signing.SignMode_SIGN_MODE_DIRECT, si.ModeInfo.GetSingle().GetMode())

	var pub secp256k1.PubKey
	require.NoError(t, gogoproto.Unmarshal(si.PublicKey.Value, &pub))
	assert.Equal(t, testPubKey(), pub.Key)
	// field 1, 33 bytes
	assert.Equal(t, append([]byte{0x0a, 0x21}, testPubKey()...), si.PublicKey.Value)

	require.NotNil(t, authInfo.Fee)
	assert.Equal(t, uint64(200000), authInfo.Fee.GasLimit)
	require.Len(t, authInfo.Fee.Amount, 1)
	assert.Equal(t, "300", authInfo.Fee.Amount[0].Amount.String())
	assert.Equal(t, "uside", authInfo.Fee.Amount[0].Denom)
}

func TestAttachReusesSignedBytes(t *testing.T) {
	unsigned := build(t, testParams())
	sig := bytes.Repeat([]byte{0x1f}, 65)

	signed, err := unsigned.Attach(sig)
	require.NoError(t, err)

	raw, err := txbuilder.DecodeTxRaw(signed.TxRawBytes)
	require.NoError(t, err)
	assert.Equal(t, unsigned.BodyBytes, raw.BodyBytes)
	assert.Equal(t, unsigned.AuthInfoBytes, raw.AuthInfoBytes)
	assert.Equal(t, [][]byte{sig}, raw.Signatures)

	sum := sha256.Sum256(signed.TxRawBytes)
	assert.Equal(t, strings.ToUpper(hex.EncodeToString(sum[:])), signed.TxHash)
	assert.Equal(t, signed.TxHash, txbuilder.TxHash(signed.TxRawBytes))
}

func TestAttachRejectsEmptySignature(t *testing.T) {
	_, err := build(t, testParams()).Attach(nil)

	var serr *txerr.SigningError
	require.ErrorAs(t, err, &serr)
}

func TestDecodeTxRawRejectsGarbage(t *testing.T) {
	_, err := txbuilder.DecodeTxRaw([]byte{0xff, 0xff, 0xff})

	var eerr *txerr.EncodingError
	require.ErrorAs(t, err, &eerr)
}

func TestBuildEncodingErrors(t *testing.T) {
	cases := map[string]func(p *txbuilder.Params){
		"amount":          func(p *txbuilder.Params) { p.Amount = "1.0" },
		"fee_amount":      func(p *txbuilder.Params) { p.FeeAmount = "-300" },
		"gas_limit":       func(p *txbuilder.Params) { p.GasLimit = "lots" },
		"chain_id":        func(p *txbuilder.Params) { p.ChainID = "" },
		"public_key":      func(p *txbuilder.Params) { p.PublicKey = nil },
		"pubkey_type_url": func(p *txbuilder.Params) { p.PubKeyTypeURL = "" },
	}

	for field, mutate := range cases {
		p := testParams()
		mutate(&p)

		_, err := txbuilder.NewService(nil).Build(t.Context(), p)

		var eerr *txerr.EncodingError
		require.ErrorAs(t, err, &eerr, field)
		assert.Equal(t, field, eerr.Field)
	}
}

func TestBuildInvalidAddress(t *testing.T) {
	validator := validatorFunc(func(addr string) error {
		if addr == toAddress {
			return nil
		}
		return &txerr.InvalidAddressError{Field: "address", Address: addr, Err: errors.New("bad checksum")}
	})

	_, err := txbuilder.NewService(validator).Build(t.Context(), testParams())

	var aerr *txerr.InvalidAddressError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "from_address", aerr.Field)
	assert.Equal(t, fromAddress, aerr.Address)
	assert.EqualError(t, aerr.Err, "bad checksum")

	plain := validatorFunc(func(addr string) error {
		if addr == toAddress {
			return errors.New("unsupported")
		}
		return nil
	})

	_, err = txbuilder.NewService(plain).Build(t.Context(), testParams())
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "to_address", aerr.Field)
}

func TestDecodeSignedTransaction(t *testing.T) {
	p := testParams()
	p.Memo = "rent"
	unsigned := build(t, p)

	sig := bytes.Repeat([]byte{0x1f}, 65)
	signed, err := unsigned.Attach(sig)
	require.NoError(t, err)

	decoded, err := txbuilder.Decode(signed.TxRawBytes)
	require.NoError(t, err)

	assert.Equal(t, signed.TxHash, decoded.TxHash)
	assert.Equal(t, []txbuilder.DecodedSend{{
		FromAddress: fromAddress,
		ToAddress:   toAddress,
		Amount:      "1000000uside",
	}}, decoded.Messages)
	assert.Equal(t, "rent", decoded.Memo)
	assert.Equal(t, "300uside", decoded.Fee)
	assert.Equal(t, uint64(200000), decoded.GasLimit)
	assert.Equal(t, "/cosmos.crypto.taproot.PubKey", decoded.PubKeyTypeURL)
	assert.Equal(t, hex.EncodeToString(testPubKey()), decoded.PubKey)
	assert.Equal(t, uint64(2), decoded.Sequence)
	assert.Equal(t, sig, decoded.RawSignature())
	assert.Equal(t, testPubKey(), decoded.RawPubKey())

	signDoc, err := decoded.SignDocBytes(p.ChainID, p.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, unsigned.SignDocBytes, signDoc)
}

func TestDecodeRejectsUnsignedEnvelope(t *testing.T) {
	unsigned := build(t, testParams())

	raw, err := gogoproto.Marshal(&tx.TxRaw{
		BodyBytes:     unsigned.BodyBytes,
		AuthInfoBytes: unsigned.AuthInfoBytes,
	})
	require.NoError(t, err)

	_, err = txbuilder.Decode(raw)

	var encErr *txerr.EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "signatures", encErr.Field)
}
