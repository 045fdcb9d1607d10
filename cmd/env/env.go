package env

import (
	"github.com/spf13/cobra"
	"github/chapool/side-transfer/internal/util/command"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Prints the effective configuration as JSON",
		Long: `Prints the configuration resolved from flags, SIDE_* environment variables
and defaults. Secrets are never printed.`,
		Args: cobra.NoArgs,
		RunE: runEnv,
	}
}

func runEnv(cmd *cobra.Command, _ []string) error {
	cfg, err := command.Config()
	if err != nil {
		return err
	}

	return command.PrintJSON(cmd.OutOrStdout(), cfg)
}
