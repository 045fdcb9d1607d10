package command

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github/chapool/side-transfer/internal/config"
	"github/chapool/side-transfer/internal/util"
	"github/chapool/side-transfer/internal/wallet"
)

// the viper instance every command reads its configuration from
var v = config.NewViper()

// Viper returns the shared configuration instance
func Viper() *viper.Viper {
	return v
}

// Config reads the current configuration from defaults, SIDE_* env vars and bound flags
func Config() (config.Sender, error) {
	return config.FromViper(v)
}

// FlagName returns the flag name for a configuration key
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// BindFlags binds every flag in flags whose name matches a configuration key.
// Unset flags fall back to the environment and then to the defaults.
func BindFlags(flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if bindErr == nil {
			bindErr = v.BindPFlag(key, f)
		}
	})

	return errors.Wrap(bindErr, "failed to bind flags")
}

// NewSubcommandGroup returns a command that only groups subCommands
func NewSubcommandGroup(name string, subCommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("%s related subcommands", name),
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				log.Error().Err(err).Msg("Failed to print help")
			}
		},
	}

	cmd.AddCommand(subCommands...)

	return cmd
}

// WithApp wires an App for cfg and runs f with it. The run's metrics are
// written afterwards, whether f succeeded or not.
func WithApp(ctx context.Context, cfg config.Sender, prompt wallet.PasswordPrompt, f func(ctx context.Context, app *wallet.App) error) error {
	app, err := wallet.InitNewApp(cfg, prompt)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize app")
		return err
	}

	ctx = util.WithLogger(ctx, "side-transfer")
	runErr := f(ctx, app)

	if err := app.Metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
		log.Warn().Err(err).Msg("Failed to write metrics textfile")
	}

	return runErr
}

// PrintJSON writes v as indented JSON followed by a newline
func PrintJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal output")
	}

	_, err = fmt.Fprintln(w, string(b))

	return errors.Wrap(err, "failed to write output")
}
