package address

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/side-transfer/internal/util/command"
	"github/chapool/side-transfer/internal/wallet"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the address derived from the configured key",
		Args:  cobra.NoArgs,
		RunE:  runAddress,
	}
}

func runAddress(cmd *cobra.Command, _ []string) error {
	cfg, err := command.Config()
	if err != nil {
		return err
	}

	if err := cfg.ValidateKey(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	return command.WithApp(cmd.Context(), cfg, wallet.TerminalPrompt(), func(ctx context.Context, app *wallet.App) error {
		addr, err := app.Sender.Address(ctx)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), addr)

		return errors.Wrap(err, "failed to write address")
	})
}
