package wallet

import (
	"context"
	"time"

	"github/chapool/side-transfer/internal/wallet/address"
	"github/chapool/side-transfer/internal/wallet/lcd"
)

// Sender moves value from the configured key's address to another address
type Sender interface {
	// Send runs derivation, account lookup, assembly, signing and broadcast in order.
	// Any failure is returned as *PhaseError.
	Send(ctx context.Context, req Request) (*Result, error)

	// Address derives the sending address without any network access
	Address(ctx context.Context) (string, error)

	// Account fetches the sending address's account metadata
	Account(ctx context.Context) (string, *lcd.Account, error)
}

// KeyProvider yields the signing key pair from the configured key material
type KeyProvider interface {
	// KeyPair returns the key pair and, if the source recorded one, the address
	// it is expected to encode to.
	// WARNING: Caller must call KeyPair.Zero after use
	KeyPair(ctx context.Context) (*address.KeyPair, string, error)
}

// AccountClient is the subset of the REST client the sender uses
type AccountClient interface {
	GetAccountInfo(ctx context.Context, address string) (*lcd.Account, error)
	BroadcastTx(ctx context.Context, txBytes []byte) (*lcd.BroadcastResult, error)
}

// PasswordPrompt asks the operator for a secret
type PasswordPrompt func(prompt string) (string, error)

// Request is one transfer. Amounts are decimal strings in the smallest denomination.
type Request struct {
	ToAddress string // empty sends to self
	Denom     string
	Amount    string
	FeeAmount string
	GasLimit  string
	Memo      string
	DryRun    bool
}

// Result describes a signed and possibly broadcast transfer
type Result struct {
	Address       string `json:"address"`
	ToAddress     string `json:"to_address"`
	ChainID       string `json:"chain_id"`
	AccountNumber uint64 `json:"account_number"`
	Sequence      uint64 `json:"sequence"`
	TxHash        string `json:"txhash"`
	TxBytes       string `json:"tx_bytes"` // base64 TxRaw
	Broadcast     bool   `json:"broadcast"`
}

// Options bound the sender's network behaviour
type Options struct {
	ChainID              string
	OperationTimeout     time.Duration
	AccountLookupRetries uint64
	RetryInitialInterval time.Duration
}
