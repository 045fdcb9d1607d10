package lcd

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

const (
	accountsPath  = "/cosmos/auth/v1beta1/accounts/"
	broadcastPath = "/cosmos/tx/v1beta1/txs"

	BroadcastModeSync  = "BROADCAST_MODE_SYNC"
	BroadcastModeAsync = "BROADCAST_MODE_ASYNC"
)

// Account is the signing metadata of an on-chain account
type Account struct {
	Type          string
	Address       string
	AccountNumber uint64
	Sequence      uint64
}

// BroadcastResult is the ledger's answer to an accepted broadcast
type BroadcastResult struct {
	TxHash string
	Height uint64
	RawLog string
}

// uint64Value decodes a JSON string or number into a uint64. The gateway
// renders 64-bit integers as strings, some proxies rewrite them to numbers.
type uint64Value uint64

func (v *uint64Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = 0
		return nil
	}

	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}

	if s == "" {
		*v = 0
		return nil
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid unsigned integer %s", string(b))
	}

	*v = uint64Value(n)
	return nil
}

type accountFields struct {
	Address       string      `json:"address"`
	AccountNumber uint64Value `json:"account_number"`
	Sequence      uint64Value `json:"sequence"`
}

// accountResponse covers BaseAccount and the vesting accounts that nest it
type accountResponse struct {
	Account struct {
		Type string `json:"@type"`
		accountFields
		BaseAccount *accountFields `json:"base_account"`
		BaseVesting *struct {
			BaseAccount *accountFields `json:"base_account"`
		} `json:"base_vesting_account"`
	} `json:"account"`
}

func (r *accountResponse) toAccount() *Account {
	fields := r.Account.accountFields
	switch {
	case r.Account.BaseAccount != nil:
		fields = *r.Account.BaseAccount
	case r.Account.BaseVesting != nil && r.Account.BaseVesting.BaseAccount != nil:
		fields = *r.Account.BaseVesting.BaseAccount
	}

	return &Account{
		Type:          r.Account.Type,
		Address:       fields.Address,
		AccountNumber: uint64(fields.AccountNumber),
		Sequence:      uint64(fields.Sequence),
	}
}

type broadcastRequest struct {
	TxBytes string `json:"tx_bytes"`
	Mode    string `json:"mode"`
}

type broadcastResponse struct {
	TxResponse *struct {
		Height    uint64Value `json:"height"`
		TxHash    string      `json:"txhash"`
		Codespace string      `json:"codespace"`
		Code      uint32      `json:"code"`
		RawLog    string      `json:"raw_log"`
	} `json:"tx_response"`
}

// gatewayError is the grpc-gateway error body returned with non-2xx statuses
type gatewayError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
