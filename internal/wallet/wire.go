//go:build wireinject

package wallet

import (
	"github.com/google/wire"
	"github/chapool/side-transfer/internal/config"
	"github/chapool/side-transfer/internal/metrics"
	"github/chapool/side-transfer/internal/wallet/lcd"
	"github/chapool/side-transfer/internal/wallet/seed"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// appSet groups the providers required for a transfer run
var appSet = wire.NewSet(
	newAppWithComponents,
	NewSender,
	NewKeyProvider,
	NewAddressService,
	NewKeystoreService,
	NewSignerService,
	NewTxBuilder,
	NewOptions,
	seed.NewManager,
	metrics.NewTransfer,
	clientSet,
)

var clientSet = wire.NewSet(
	NewLCDClient,
	wire.Bind(new(AccountClient), new(*lcd.Client)),
)

// InitNewApp returns a new App instance.
func InitNewApp(
	_ config.Sender,
	_ PasswordPrompt,
) (*App, error) {
	wire.Build(appSet)
	return new(App), nil
}
