package keystore

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/side-transfer/internal/config"
	"github/chapool/side-transfer/internal/util/command"
	"github/chapool/side-transfer/internal/wallet"
)

const importFlag = "import"

func New() *cobra.Command {
	return command.NewSubcommandGroup("keystore",
		newCreate(),
		newShow(),
	)
}

func newCreate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Encrypt a mnemonic into --keystore-file",
		Long: `Creates an encrypted keystore at --keystore-file. The mnemonic is taken from
SIDE_MNEMONIC, prompted for with --import, or generated. A generated mnemonic is
printed once to stderr and must be backed up.`,
		Args: cobra.NoArgs,
		RunE: runCreate,
	}

	cmd.Flags().Bool(importFlag, false, "prompt for an existing mnemonic")

	return cmd
}

func runCreate(cmd *cobra.Command, _ []string) error {
	cfg, err := command.Config()
	if err != nil {
		return err
	}

	path := cfg.Key.KeystoreFile
	if path == "" {
		return errors.Errorf("--%s is required", command.FlagName(config.KeyKeystoreFile))
	}

	importMnemonic, err := cmd.Flags().GetBool(importFlag)
	if err != nil {
		return errors.Wrap(err, "failed to read import flag")
	}

	prompt := wallet.TerminalPrompt()

	return command.WithApp(cmd.Context(), cfg, prompt, func(ctx context.Context, app *wallet.App) error {
		mnemonic := cfg.Key.Mnemonic
		if importMnemonic && mnemonic == "" {
			mnemonic, err = prompt("Enter mnemonic: ")
			if err != nil {
				return errors.Wrap(err, "failed to read mnemonic")
			}
		}

		generated, addr, err := wallet.InitializeKeystore(ctx, cfg, path, mnemonic, app.Seed, app.Keystore, app.Address, prompt)
		if err != nil {
			return err
		}

		if generated != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "\nNew mnemonic, write it down and keep it offline:\n\n%s\n\n", generated)
		}

		return command.PrintJSON(cmd.OutOrStdout(), map[string]string{
			"address":       addr,
			"keystore_file": path,
		})
	})
}

func newShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the address recorded in --keystore-file without decrypting it",
		Args:  cobra.NoArgs,
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, _ []string) error {
	cfg, err := command.Config()
	if err != nil {
		return err
	}

	if cfg.Key.KeystoreFile == "" {
		return errors.Errorf("--%s is required", command.FlagName(config.KeyKeystoreFile))
	}

	return command.WithApp(cmd.Context(), cfg, nil, func(ctx context.Context, app *wallet.App) error {
		ks, err := app.Keystore.Load(ctx, cfg.Key.KeystoreFile)
		if err != nil {
			return err
		}

		return command.PrintJSON(cmd.OutOrStdout(), map[string]any{
			"id":      ks.ID,
			"version": ks.Version,
			"address": ks.Address,
		})
	})
}
