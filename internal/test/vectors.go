package test

import (
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github/chapool/side-transfer/internal/util"
)

// KeyVector is a published derivation test vector
type KeyVector struct {
	Name        string `toml:"name"`
	Mnemonic    string `toml:"mnemonic"`
	Passphrase  string `toml:"passphrase"`
	Path        string `toml:"path"`
	KeyType     string `toml:"key_type"`
	Network     string `toml:"network"`
	Address     string `toml:"address"`
	InternalKey string `toml:"internal_key"`
}

// TransferVector is a complete transfer with fixed account metadata
type TransferVector struct {
	Name          string `toml:"name"`
	Key           string `toml:"key"`
	ToAddress     string `toml:"to_address"`
	Denom         string `toml:"denom"`
	Amount        string `toml:"amount"`
	FeeAmount     string `toml:"fee_amount"`
	GasLimit      string `toml:"gas_limit"`
	Memo          string `toml:"memo"`
	ChainID       string `toml:"chain_id"`
	AccountNumber uint64 `toml:"account_number"`
	Sequence      uint64 `toml:"sequence"`
}

type Vectors struct {
	Keys      []KeyVector      `toml:"key"`
	Transfers []TransferVector `toml:"transfer"`
}

// LoadVectors reads test/testdata/vectors.toml
func LoadVectors(t *testing.T) Vectors {
	t.Helper()

	var v Vectors
	if _, err := toml.DecodeFile(filepath.Join(util.GetProjectRootDir(), "test", "testdata", "vectors.toml"), &v); err != nil {
		t.Fatalf("failed to load test vectors: %v", err)
	}

	return v
}

// Key returns the key vector called name
func (v Vectors) Key(t *testing.T, name string) KeyVector {
	t.Helper()

	for _, k := range v.Keys {
		if k.Name == name {
			return k
		}
	}

	t.Fatalf("no key vector named %q", name)
	return KeyVector{}
}
