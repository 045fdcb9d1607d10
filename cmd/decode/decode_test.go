package decode_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/side-transfer/cmd/decode"
	"github/chapool/side-transfer/internal/config"
	"github/chapool/side-transfer/internal/test"
	"github/chapool/side-transfer/internal/wallet"
)

// dryRunTxBytes signs the self-transfer vector without broadcasting it
func dryRunTxBytes(t *testing.T) (string, test.TransferVector) {
	t.Helper()

	vectors := test.LoadVectors(t)
	transfer := vectors.Transfers[0]
	key := vectors.Key(t, transfer.Key)
	mock := test.NewMockLCD(t, transfer.AccountNumber, transfer.Sequence)

	app, err := wallet.InitNewApp(config.Sender{
		Key:   config.Key{Mnemonic: key.Mnemonic, DerivationPath: key.Path, KeyType: key.KeyType, Network: key.Network},
		Chain: config.Chain{RESTEndpoint: mock.URL(), ChainID: transfer.ChainID},
		Client: config.Client{
			RequestTimeout:   5 * time.Second,
			OperationTimeout: 10 * time.Second,
			BroadcastMode:    "BROADCAST_MODE_SYNC",
		},
	}, nil)
	require.NoError(t, err)

	res, err := app.Sender.Send(t.Context(), wallet.Request{
		ToAddress: transfer.ToAddress,
		Denom:     transfer.Denom,
		Amount:    transfer.Amount,
		FeeAmount: transfer.FeeAmount,
		GasLimit:  transfer.GasLimit,
		Memo:      transfer.Memo,
		DryRun:    true,
	})
	require.NoError(t, err)
	require.Empty(t, mock.Broadcasts())

	return res.TxBytes, transfer
}

func runDecode(t *testing.T, args ...string) map[string]any {
	t.Helper()

	cmd := decode.New()
	cmd.SetArgs(args)

	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, cmd.ExecuteContext(t.Context()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))

	return decoded
}

func TestDecodeVerify(t *testing.T) {
	txBytes, transfer := dryRunTxBytes(t)

	out := runDecode(t, txBytes, "--verify", "--account-number", "5")
	assert.Equal(t, true, out["signature_valid"])
	assert.Equal(t, "/cosmos.crypto.taproot.PubKey", out["pubkey_type_url"])
	assert.InDelta(t, float64(transfer.Sequence), out["sequence"], 0)
	assert.Equal(t, "300uside", out["fee"])

	messages, ok := out["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, "1000000uside", messages[0].(map[string]any)["amount"])
}

func TestDecodeVerifyWrongAccountNumber(t *testing.T) {
	txBytes, _ := dryRunTxBytes(t)

	out := runDecode(t, txBytes, "--verify", "--account-number", "6")
	assert.Equal(t, false, out["signature_valid"])
}

func TestDecodeWithoutVerify(t *testing.T) {
	txBytes, _ := dryRunTxBytes(t)

	out := runDecode(t, txBytes)
	assert.NotContains(t, out, "signature_valid")
	assert.NotEmpty(t, out["txhash"])
}

func TestDecodeRejectsBadInput(t *testing.T) {
	cmd := decode.New()
	cmd.SetArgs([]string{"not base64!"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	require.Error(t, cmd.ExecuteContext(t.Context()))
}
