package seed

// Manager holds the BIP39 seed for the lifetime of one transfer
type Manager interface {
	// Initialize validates the mnemonic and derives the seed from it
	Initialize(mnemonic string, passphrase string) error

	// GetSeed gets the seed (from memory)
	GetSeed() []byte

	// IsInitialized checks if seed is initialized
	IsInitialized() bool

	// Clear clears the seed from memory
	Clear()
}
