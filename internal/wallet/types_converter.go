package wallet

import (
	"encoding/base64"

	"github/chapool/side-transfer/internal/config"
	"github/chapool/side-transfer/internal/wallet/address"
	"github/chapool/side-transfer/internal/wallet/lcd"
	"github/chapool/side-transfer/internal/wallet/txbuilder"
)

// toParams combines the request, the fetched account and the key into builder input
func toParams(req Request, chainID string, from string, to string, account *lcd.Account, keyPair *address.KeyPair, pubKeyTypeURL string) txbuilder.Params {
	return txbuilder.Params{
		FromAddress:     from,
		ToAddress:       to,
		Denom:           req.Denom,
		Amount:          req.Amount,
		FeeAmount:       req.FeeAmount,
		GasLimit:        req.GasLimit,
		Memo:            req.Memo,
		ChainID:         chainID,
		AccountNumber:   account.AccountNumber,
		AccountSequence: account.Sequence,
		PublicKey:       keyPair.PublicKeyBytes(),
		PubKeyTypeURL:   pubKeyTypeURL,
	}
}

// newResult describes a signed transaction before broadcast
func newResult(params txbuilder.Params, signed *txbuilder.Signed) *Result {
	return &Result{
		Address:       params.FromAddress,
		ToAddress:     params.ToAddress,
		ChainID:       params.ChainID,
		AccountNumber: params.AccountNumber,
		Sequence:      params.AccountSequence,
		TxHash:        signed.TxHash,
		TxBytes:       base64.StdEncoding.EncodeToString(signed.TxRawBytes),
	}
}

// RequestFromConfig maps the transfer settings onto a Request
func RequestFromConfig(t config.Transfer) Request {
	return Request{
		ToAddress: t.ToAddress,
		Denom:     t.Denom,
		Amount:    t.Amount,
		FeeAmount: t.FeeAmount,
		GasLimit:  t.GasLimit,
		Memo:      t.Memo,
		DryRun:    t.DryRun,
	}
}
