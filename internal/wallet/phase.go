package wallet

import "fmt"

// Phase names a step of a transfer
type Phase string

const (
	PhaseDerivation    Phase = "derivation"
	PhaseAccountLookup Phase = "account_lookup"
	PhaseAssembly      Phase = "assembly"
	PhaseSigning       Phase = "signing"
	PhaseBroadcast     Phase = "broadcast"
)

// PhaseError reports the phase a transfer failed in. The typed cause from
// txerr stays reachable through errors.As.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }
