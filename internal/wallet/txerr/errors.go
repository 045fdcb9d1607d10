// Package txerr holds the typed failures a transfer can end with.
// Callers classify them with errors.As; every type unwraps to its cause.
package txerr

import (
	"fmt"
	"strings"
)

// TransportError is a network or HTTP level failure reaching the REST endpoint.
type TransportError struct {
	Op         string // "account_lookup" or "broadcast"
	URL        string
	StatusCode int    // 0 if no response was received
	Code       int    // grpc-gateway error code from the body, if any
	Message    string // grpc-gateway error message from the body, if any
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "transport error during %s", e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s (code %d)", e.Message, e.Code)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

// EncodingError is a malformed numeric or textual input that cannot be serialized.
type EncodingError struct {
	Field string
	Value string
	Err   error
}

func (e *EncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot encode %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("cannot encode %s %q", e.Field, e.Value)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// InvalidAddressError is an address the target ledger would not accept.
type InvalidAddressError struct {
	Field   string
	Address string
	Err     error
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Address, e.Err)
}

func (e *InvalidAddressError) Unwrap() error { return e.Err }

// RemoteRejectionError means the endpoint answered but the ledger refused the transaction.
type RemoteRejectionError struct {
	Code      uint32
	Codespace string
	RawLog    string
	TxHash    string
}

func (e *RemoteRejectionError) Error() string {
	return fmt.Sprintf("transaction %s rejected by ledger: codespace=%s code=%d: %s", e.TxHash, e.Codespace, e.Code, e.RawLog)
}

// SigningError covers malformed keys or digests and misuse of the signature scheme.
type SigningError struct {
	Reason string
	Err    error
}

func (e *SigningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("signing failed: %s: %v", e.Reason, e.Err)
	}
	return "signing failed: " + e.Reason
}

func (e *SigningError) Unwrap() error { return e.Err }

// DerivationError is a failure turning key material into a key pair.
type DerivationError struct {
	Reason string
	Err    error
}

func (e *DerivationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("key derivation failed: %s: %v", e.Reason, e.Err)
	}
	return "key derivation failed: " + e.Reason
}

func (e *DerivationError) Unwrap() error { return e.Err }
