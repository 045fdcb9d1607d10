package send

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/side-transfer/internal/config"
	"github/chapool/side-transfer/internal/util/command"
	"github/chapool/side-transfer/internal/wallet"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Build, sign and broadcast a bank MsgSend",
		Long: `Derives the sender key, looks up its account, signs a MsgSend with a
BIP137 signature over the SignDoc and broadcasts it. The result is printed as JSON.
Key material comes from SIDE_MNEMONIC, SIDE_PRIVATE_KEY or --keystore-file.`,
		Args: cobra.NoArgs,
		RunE: runSend,
	}

	flags := cmd.Flags()
	flags.String(command.FlagName(config.KeyToAddress), "", "recipient address, empty sends to self")
	flags.String(command.FlagName(config.KeyDenom), "", "coin denomination for amount and fee")
	flags.String(command.FlagName(config.KeyAmount), "", "amount in base units")
	flags.String(command.FlagName(config.KeyFeeAmount), "", "fee in base units")
	flags.String(command.FlagName(config.KeyGasLimit), "", "gas limit")
	flags.String(command.FlagName(config.KeyMemo), "", "transaction memo")
	flags.Bool(command.FlagName(config.KeyDryRun), false, "sign and print the transaction without broadcasting")

	return cmd
}

func runSend(cmd *cobra.Command, _ []string) error {
	cfg, err := command.Config()
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	return command.WithApp(cmd.Context(), cfg, wallet.TerminalPrompt(), func(ctx context.Context, app *wallet.App) error {
		res, err := app.Sender.Send(ctx, wallet.RequestFromConfig(cfg.Transfer))
		if err != nil {
			return err
		}

		return command.PrintJSON(cmd.OutOrStdout(), res)
	})
}
