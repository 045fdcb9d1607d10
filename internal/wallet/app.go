package wallet

import (
	"github/chapool/side-transfer/internal/config"
	"github/chapool/side-transfer/internal/metrics"
	"github/chapool/side-transfer/internal/wallet/address"
	"github/chapool/side-transfer/internal/wallet/keystore"
	"github/chapool/side-transfer/internal/wallet/lcd"
	"github/chapool/side-transfer/internal/wallet/seed"
	"github/chapool/side-transfer/internal/wallet/signer"
	"github/chapool/side-transfer/internal/wallet/txbuilder"
)

// App keeps all components of one run.
// It is initialized with wire, see wire.go. To add a component:
// - declare it in this struct
// - add a provider function below
// - add the provider to appSet in wire.go and regenerate wire_gen.go
type App struct {
	Config   config.Sender
	Sender   Sender
	Keys     KeyProvider
	Address  address.Service
	Seed     seed.Manager
	Keystore keystore.Service
	Client   *lcd.Client
	Metrics  *metrics.Transfer
	Prompt   PasswordPrompt
}

func newAppWithComponents(
	cfg config.Sender,
	sender Sender,
	keys KeyProvider,
	addressService address.Service,
	seedManager seed.Manager,
	keystoreService keystore.Service,
	client *lcd.Client,
	m *metrics.Transfer,
	prompt PasswordPrompt,
) *App {
	return &App{
		Config:   cfg,
		Sender:   sender,
		Keys:     keys,
		Address:  addressService,
		Seed:     seedManager,
		Keystore: keystoreService,
		Client:   client,
		Metrics:  m,
		Prompt:   prompt,
	}
}

// NewAddressService builds the address encoder for the configured network and key type
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewAddressService(cfg config.Sender) (address.Service, error) {
	return address.NewService(address.Config{
		Network: cfg.Key.Network,
		KeyType: address.KeyType(cfg.Key.KeyType),
	})
}

//nolint:ireturn // Returning interface is intentional for dependency injection
func NewKeystoreService() keystore.Service {
	return keystore.NewService(keystore.DefaultScryptParams())
}

// NewSignerService signs with compressed-key BIP137 headers
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewSignerService() signer.Service {
	return signer.NewService(signer.Config{Compressed: true})
}

//nolint:ireturn // Returning interface is intentional for dependency injection
func NewTxBuilder(addressService address.Service) txbuilder.Service {
	return txbuilder.NewService(addressService)
}

func NewLCDClient(cfg config.Sender) *lcd.Client {
	return lcd.NewClient(cfg.Chain.RESTEndpoint,
		lcd.WithTimeout(cfg.Client.RequestTimeout),
		lcd.WithBroadcastMode(cfg.Client.BroadcastMode),
	)
}

func NewOptions(cfg config.Sender) Options {
	return Options{
		ChainID:              cfg.Chain.ChainID,
		OperationTimeout:     cfg.Client.OperationTimeout,
		AccountLookupRetries: cfg.Client.AccountLookupRetries,
	}
}
