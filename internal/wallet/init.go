package wallet

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/side-transfer/internal/config"
	"github/chapool/side-transfer/internal/wallet/address"
	"github/chapool/side-transfer/internal/wallet/keystore"
	"github/chapool/side-transfer/internal/wallet/seed"
	"github/chapool/side-transfer/internal/wallet/txerr"
	"golang.org/x/term"
)

const minPasswordLength = 8

type keyProvider struct {
	cfg             config.Key
	seedManager     seed.Manager
	keystoreService keystore.Service
	addressService  address.Service
	prompt          PasswordPrompt
}

// NewKeyProvider resolves the configured key source into a signing key
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewKeyProvider(
	cfg config.Sender,
	seedManager seed.Manager,
	keystoreService keystore.Service,
	addressService address.Service,
	prompt PasswordPrompt,
) KeyProvider {
	return &keyProvider{
		cfg:             cfg.Key,
		seedManager:     seedManager,
		keystoreService: keystoreService,
		addressService:  addressService,
		prompt:          prompt,
	}
}

// KeyPair loads the key from a mnemonic, a raw private key or a keystore file
func (p *keyProvider) KeyPair(ctx context.Context) (*address.KeyPair, string, error) {
	switch p.cfg.Source() {
	case config.KeySourcePrivateKey:
		keyPair, err := p.addressService.KeyPairFromHex(p.cfg.PrivateKey)
		return keyPair, "", err

	case config.KeySourceMnemonic:
		keyPair, err := p.fromMnemonic(ctx, p.cfg.Mnemonic)
		return keyPair, "", err

	case config.KeySourceKeystore:
		return p.fromKeystore(ctx)

	case config.KeySourceNone:
	}

	return nil, "", &txerr.DerivationError{Reason: "no key material configured"}
}

func (p *keyProvider) fromKeystore(ctx context.Context) (*address.KeyPair, string, error) {
	log := log.With().Str("component", "key_provider").Logger()

	//nolint:varnamelen // ks is a common abbreviation for keystore
	ks, err := p.keystoreService.Load(ctx, p.cfg.KeystoreFile)
	if err != nil {
		return nil, "", &txerr.DerivationError{Reason: "failed to load keystore", Err: err}
	}

	password := p.cfg.KeystorePassword
	if password == "" {
		if p.prompt == nil {
			return nil, "", &txerr.DerivationError{Reason: "keystore password not configured"}
		}

		password, err = p.prompt("Enter keystore password: ")
		if err != nil {
			return nil, "", &txerr.DerivationError{Reason: "failed to read password", Err: err}
		}
	}

	mnemonic, err := p.keystoreService.Decrypt(ctx, p.cfg.KeystoreFile, password)
	if err != nil {
		return nil, "", &txerr.DerivationError{Reason: "failed to decrypt keystore (invalid password?)", Err: err}
	}

	log.Debug().Str("keystore_id", ks.ID).Msg("Keystore unlocked")

	keyPair, err := p.fromMnemonic(ctx, mnemonic)
	if err != nil {
		return nil, "", err
	}

	return keyPair, ks.Address, nil
}

func (p *keyProvider) fromMnemonic(ctx context.Context, mnemonic string) (*address.KeyPair, error) {
	if err := p.seedManager.Initialize(mnemonic, p.cfg.Passphrase); err != nil {
		return nil, &txerr.DerivationError{Reason: "invalid mnemonic", Err: err}
	}
	defer p.seedManager.Clear()

	seed := p.seedManager.GetSeed()
	defer func() {
		for i := range seed {
			seed[i] = 0
		}
	}()

	return p.addressService.DeriveKeyPair(ctx, seed, DerivationPath(p.cfg, p.addressService.KeyType()))
}

// DerivationPath is the configured path or the key type's default
func DerivationPath(cfg config.Key, keyType address.KeyType) string {
	if cfg.DerivationPath != "" {
		return cfg.DerivationPath
	}

	return address.DefaultPath(keyType)
}

// InitializeKeystore creates the keystore file at path. When mnemonic is empty
// a new 24 word mnemonic is generated. The password is prompted for twice.
// The mnemonic is returned only when generated, so the caller can show it once for backup.
func InitializeKeystore(
	ctx context.Context,
	cfg config.Sender,
	path string,
	mnemonic string,
	seedManager seed.Manager,
	keystoreService keystore.Service,
	addressService address.Service,
	prompt PasswordPrompt,
) (string, string, error) {
	log := log.With().Str("component", "wallet_init").Logger()

	if _, err := os.Stat(path); err == nil {
		return "", "", errors.Wrap(keystore.ErrExists, path)
	}

	generated := mnemonic == ""
	if generated {
		log.Info().Msg("Generating new mnemonic...")

		var err error
		mnemonic, err = seed.NewMnemonic()
		if err != nil {
			return "", "", errors.Wrap(err, "failed to generate mnemonic")
		}
	}
	mnemonic = seed.NormalizeMnemonic(mnemonic)

	password, err := prompt(fmt.Sprintf("Enter password for keystore (min %d characters): ", minPasswordLength))
	if err != nil {
		return "", "", errors.Wrap(err, "failed to read password")
	}

	if len(password) < minPasswordLength {
		return "", "", errors.Errorf("password must be at least %d characters", minPasswordLength)
	}

	passwordConfirm, err := prompt("Confirm password: ")
	if err != nil {
		return "", "", errors.Wrap(err, "failed to read password confirmation")
	}

	if password != passwordConfirm {
		return "", "", errors.New("passwords do not match")
	}

	// the stored address lets later unlocks detect a changed path or key type
	provider := &keyProvider{
		cfg:            cfg.Key,
		seedManager:    seedManager,
		addressService: addressService,
	}

	keyPair, err := provider.fromMnemonic(ctx, mnemonic)
	if err != nil {
		return "", "", err
	}
	defer keyPair.Zero()

	addr, err := addressService.EncodeAddress(keyPair.PublicKey())
	if err != nil {
		return "", "", errors.Wrap(err, "failed to encode address")
	}

	if _, err := keystoreService.Create(ctx, path, mnemonic, password, addr); err != nil {
		return "", "", errors.Wrap(err, "failed to create keystore")
	}

	log.Info().Str("address", addr).Bool("generated", generated).Msg("Keystore created successfully")

	if !generated {
		mnemonic = ""
	}

	return mnemonic, addr, nil
}

// TerminalPrompt reads a password from the terminal without echo. The prompt goes to stderr.
func TerminalPrompt() PasswordPrompt {
	return promptPassword
}

// promptPassword prompts for password input (hides input)
//
//nolint:forbidigo // Password input requires direct terminal I/O
func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // stdin descriptor fits in int
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal, set the password in the environment instead")
	}

	fmt.Fprint(os.Stderr, prompt)

	passwordBytes, err := term.ReadPassword(fd)
	if err != nil {
		return "", errors.Wrap(err, "failed to read password from terminal")
	}

	fmt.Fprintln(os.Stderr) // New line after password input

	return string(passwordBytes), nil
}
