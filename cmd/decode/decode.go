package decode

import (
	"encoding/base64"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/side-transfer/internal/util/command"
	"github/chapool/side-transfer/internal/wallet/signer"
	"github/chapool/side-transfer/internal/wallet/txbuilder"
)

const (
	verifyFlag        = "verify"
	accountNumberFlag = "account-number"
)

type decodeOutput struct {
	*txbuilder.Decoded

	SignatureValid *bool `json:"signature_valid,omitempty"`
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <base64 tx_bytes>",
		Short: "Decode a signed transaction, e.g. the tx_bytes of a dry run",
		Long: `Decodes a base64 TxRaw into JSON. With --verify the BIP137 signature is checked
against the SignDoc rebuilt from --chain-id and --account-number.`,
		Args: cobra.ExactArgs(1),
		RunE: runDecode,
	}

	cmd.Flags().Bool(verifyFlag, false, "verify the signature")
	cmd.Flags().Uint64(accountNumberFlag, 0, "account number the transaction was signed for")

	return cmd
}

func runDecode(cmd *cobra.Command, args []string) error {
	txBytes, err := base64.StdEncoding.DecodeString(strings.TrimSpace(args[0]))
	if err != nil {
		return errors.Wrap(err, "tx_bytes is not valid base64")
	}

	decoded, err := txbuilder.Decode(txBytes)
	if err != nil {
		return err
	}

	out := decodeOutput{Decoded: decoded}

	verify, err := cmd.Flags().GetBool(verifyFlag)
	if err != nil {
		return errors.Wrap(err, "failed to read verify flag")
	}

	if verify {
		valid, err := verifySignature(cmd, decoded)
		if err != nil {
			return err
		}
		out.SignatureValid = &valid
	}

	return command.PrintJSON(cmd.OutOrStdout(), out)
}

func verifySignature(cmd *cobra.Command, decoded *txbuilder.Decoded) (bool, error) {
	cfg, err := command.Config()
	if err != nil {
		return false, err
	}

	accountNumber, err := cmd.Flags().GetUint64(accountNumberFlag)
	if err != nil {
		return false, errors.Wrap(err, "failed to read account-number flag")
	}

	signDoc, err := decoded.SignDocBytes(cfg.Chain.ChainID, accountNumber)
	if err != nil {
		return false, err
	}

	pub, err := btcec.ParsePubKey(decoded.RawPubKey())
	if err != nil {
		return false, errors.Wrap(err, "invalid signer public key")
	}

	return signer.VerifyMessage(signDoc, decoded.RawSignature(), pub) == nil, nil
}
