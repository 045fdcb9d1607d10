package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/side-transfer/cmd/account"
	"github/chapool/side-transfer/cmd/address"
	"github/chapool/side-transfer/cmd/decode"
	"github/chapool/side-transfer/cmd/env"
	"github/chapool/side-transfer/cmd/keystore"
	"github/chapool/side-transfer/cmd/send"
	"github/chapool/side-transfer/internal/config"
	"github/chapool/side-transfer/internal/util"
	"github/chapool/side-transfer/internal/util/command"
	"github/chapool/side-transfer/internal/wallet"
)

const envFileFlag = "env-file"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "side-transfer",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

Sends native tokens on a cosmos-sdk ledger whose accounts are controlled
by Bitcoin taproot or segwit keys.
Configuration is read from flags, SIDE_* environment variables and an optional .env file.`, config.ModuleName),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: preRun,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String(envFileFlag, ".env", "dotenv file to load before reading SIDE_* variables")

	flags.String(command.FlagName(config.KeyKeystoreFile), "", "encrypted keystore holding the mnemonic")
	flags.String(command.FlagName(config.KeyDerivationPath), "", "BIP32 path, empty selects m/86'/0'/0'/0/0 (taproot) or m/84'/0'/0'/0/0 (segwit)")
	flags.String(command.FlagName(config.KeyKeyType), "", "taproot or segwit")
	flags.String(command.FlagName(config.KeyNetwork), "", "bitcoin network parameters for the address (mainnet, testnet, signet, regtest)")
	flags.String(command.FlagName(config.KeyRESTEndpoint), "", "REST (LCD) endpoint of the ledger")
	flags.String(command.FlagName(config.KeyChainID), "", "chain id the transaction is signed for")
	flags.Duration(command.FlagName(config.KeyRequestTimeout), 0, "timeout of a single HTTP request")
	flags.Duration(command.FlagName(config.KeyOperationTimeout), 0, "timeout of account lookup, signing and broadcast; starts after key derivation")
	flags.Uint64(command.FlagName(config.KeyAccountLookupRetries), 0, "retries of a failed account lookup")
	flags.String(command.FlagName(config.KeyBroadcastMode), "", "BROADCAST_MODE_SYNC or BROADCAST_MODE_ASYNC")
	flags.String(command.FlagName(config.KeyLogLevel), "", "trace, debug, info, warn, error")
	flags.Bool(command.FlagName(config.KeyLogPretty), false, "human readable console logs")
	flags.String(command.FlagName(config.KeyMetricsTextfile), "", "write run metrics to this node-exporter textfile")
}

func preRun(cmd *cobra.Command, _ []string) error {
	envFile, err := cmd.Flags().GetString(envFileFlag)
	if err != nil {
		return errors.Wrap(err, "failed to read env-file flag")
	}

	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	if err := command.BindFlags(cmd.Flags()); err != nil {
		return err
	}

	cfg, err := command.Config()
	if err != nil {
		return err
	}

	util.ConfigureLogger(util.LoggerConfig{
		Level:              cfg.Logger.Level,
		PrettyPrintConsole: cfg.Logger.PrettyPrintConsole,
	})

	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	// attach the subcommands
	rootCmd.AddCommand(
		account.New(),
		address.New(),
		decode.New(),
		env.New(),
		keystore.New(),
		send.New(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var phaseErr *wallet.PhaseError
		if errors.As(err, &phaseErr) {
			log.Error().Err(phaseErr.Err).Str("phase", string(phaseErr.Phase)).Msg("Transfer failed")
		} else {
			log.Error().Err(err).Msg("Failed to execute root command")
		}
		os.Exit(1)
	}
}
