package txbuilder

import "context"

// Service assembles bank transfer transactions for signing
type Service interface {
	// Build turns transfer intent plus account metadata into the bytes to sign
	Build(ctx context.Context, p Params) (*Unsigned, error)
}

// AddressValidator accepts or rejects ledger addresses
type AddressValidator interface {
	Validate(addr string) error
}

// Params is everything a single MsgSend transaction is built from
type Params struct {
	FromAddress     string
	ToAddress       string
	Denom           string
	Amount          string // decimal string
	FeeAmount       string // decimal string, same denom as Amount
	GasLimit        string // decimal string
	Memo            string
	ChainID         string
	AccountNumber   uint64
	AccountSequence uint64
	PublicKey       []byte // compressed secp256k1 public key
	PubKeyTypeURL   string
}

// Unsigned holds the encoded body and auth info and the SignDoc built from them.
// BodyBytes and AuthInfoBytes are reused as-is by Attach.
type Unsigned struct {
	BodyBytes     []byte
	AuthInfoBytes []byte
	SignDocBytes  []byte
	ChainID       string
	AccountNumber uint64
}

// Signed is the final TxRaw envelope
type Signed struct {
	TxRawBytes []byte
	TxHash     string // upper-case hex SHA-256 of TxRawBytes
}
