package account

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/side-transfer/internal/util/command"
	"github/chapool/side-transfer/internal/wallet"
)

type accountOutput struct {
	Address       string `json:"address"`
	Type          string `json:"type,omitempty"`
	AccountNumber uint64 `json:"account_number"`
	Sequence      uint64 `json:"sequence"`
}

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Print account number and sequence of the configured key",
		Args:  cobra.NoArgs,
		RunE:  runAccount,
	}
}

func runAccount(cmd *cobra.Command, _ []string) error {
	cfg, err := command.Config()
	if err != nil {
		return err
	}

	if err := cfg.ValidateKey(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	if err := cfg.ValidateEndpoint(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	return command.WithApp(cmd.Context(), cfg, wallet.TerminalPrompt(), func(ctx context.Context, app *wallet.App) error {
		addr, acc, err := app.Sender.Account(ctx)
		if err != nil {
			return err
		}

		return command.PrintJSON(cmd.OutOrStdout(), accountOutput{
			Address:       addr,
			Type:          acc.Type,
			AccountNumber: acc.AccountNumber,
			Sequence:      acc.Sequence,
		})
	})
}
