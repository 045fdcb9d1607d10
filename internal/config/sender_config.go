package config

import (
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"github/chapool/side-transfer/internal/util"
)

// EnvPrefix prefixes every environment variable, e.g. SIDE_REST_ENDPOINT
const EnvPrefix = "SIDE"

// Configuration keys, also used as flag names with "_" replaced by "-"
const (
	KeyMnemonic             = "mnemonic"
	KeyPassphrase           = "passphrase"
	KeyPrivateKey           = "private_key"
	KeyKeystoreFile         = "keystore_file"
	KeyKeystorePassword     = "keystore_password"
	KeyDerivationPath       = "derivation_path"
	KeyKeyType              = "key_type"
	KeyNetwork              = "network"
	KeyRESTEndpoint         = "rest_endpoint"
	KeyChainID              = "chain_id"
	KeyToAddress            = "to_address"
	KeyDenom                = "denom"
	KeyAmount               = "amount"
	KeyFeeAmount            = "fee_amount"
	KeyGasLimit             = "gas_limit"
	KeyMemo                 = "memo"
	KeyDryRun               = "dry_run"
	KeyRequestTimeout       = "request_timeout"
	KeyOperationTimeout     = "operation_timeout"
	KeyAccountLookupRetries = "account_lookup_retries"
	KeyBroadcastMode        = "broadcast_mode"
	KeyLogLevel             = "log_level"
	KeyLogPretty            = "log_pretty"
	KeyMetricsTextfile      = "metrics_textfile"
)

// KeySource names where the signing key comes from
type KeySource string

const (
	KeySourceNone       KeySource = ""
	KeySourceMnemonic   KeySource = "mnemonic"
	KeySourcePrivateKey KeySource = "private_key"
	KeySourceKeystore   KeySource = "keystore"
)

// Key holds key material and derivation settings. Secrets never serialize.
type Key struct {
	Mnemonic         string `json:"-"`
	Passphrase       string `json:"-"`
	PrivateKey       string `json:"-"`
	KeystoreFile     string
	KeystorePassword string `json:"-"`
	DerivationPath   string
	KeyType          string
	Network          string
}

// Source reports which key source is configured. Validate guarantees at most one.
func (k Key) Source() KeySource {
	switch {
	case k.Mnemonic != "":
		return KeySourceMnemonic
	case k.PrivateKey != "":
		return KeySourcePrivateKey
	case k.KeystoreFile != "":
		return KeySourceKeystore
	default:
		return KeySourceNone
	}
}

// Chain identifies the target ledger
type Chain struct {
	RESTEndpoint string
	ChainID      string
}

// Transfer describes the value transfer. Amounts are decimal strings.
type Transfer struct {
	ToAddress string // empty sends to self
	Denom     string
	Amount    string
	FeeAmount string
	GasLimit  string
	Memo      string
	DryRun    bool
}

// Client holds REST client policy
type Client struct {
	RequestTimeout       time.Duration
	OperationTimeout     time.Duration
	AccountLookupRetries uint64
	BroadcastMode        string
}

// Logger holds global logger settings
type Logger struct {
	Level              zerolog.Level
	PrettyPrintConsole bool
}

// Metrics holds the optional node-exporter textfile target
type Metrics struct {
	TextfilePath string
}

// Sender is the complete configuration of one transfer run
type Sender struct {
	Key      Key
	Chain    Chain
	Transfer Transfer
	Client   Client
	Logger   Logger
	Metrics  Metrics
}

// NewViper returns a viper instance with all defaults set and SIDE_* env binding enabled
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyMnemonic, "")
	v.SetDefault(KeyPassphrase, "")
	v.SetDefault(KeyPrivateKey, "")
	v.SetDefault(KeyKeystoreFile, "")
	v.SetDefault(KeyKeystorePassword, "")
	v.SetDefault(KeyDerivationPath, "") // empty selects the key type's BIP86/BIP84 path
	v.SetDefault(KeyKeyType, "taproot")
	v.SetDefault(KeyNetwork, "mainnet")
	v.SetDefault(KeyRESTEndpoint, "https://rest.side.one")
	v.SetDefault(KeyChainID, "sidechain-1")
	v.SetDefault(KeyToAddress, "")
	v.SetDefault(KeyDenom, "uside")
	v.SetDefault(KeyAmount, "")
	v.SetDefault(KeyFeeAmount, "300")
	v.SetDefault(KeyGasLimit, "200000")
	v.SetDefault(KeyMemo, "")
	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyRequestTimeout, 30*time.Second)
	v.SetDefault(KeyOperationTimeout, 2*time.Minute)
	v.SetDefault(KeyAccountLookupRetries, 3)
	v.SetDefault(KeyBroadcastMode, "BROADCAST_MODE_SYNC")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogPretty, false)
	v.SetDefault(KeyMetricsTextfile, "")

	return v
}

// LoadDotEnv loads KEY=value pairs from the given files into the process env.
// Missing files are skipped, variables already set are not overridden.
func LoadDotEnv(files ...string) error {
	for _, file := range files {
		if err := gotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errors.Wrapf(err, "failed to load env file %s", file)
		}
	}

	return nil
}

// FromViper reads a Sender config from v
func FromViper(v *viper.Viper) (Sender, error) {
	level, err := util.ParseLogLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return Sender{}, err
	}

	return Sender{
		Key: Key{
			Mnemonic:         v.GetString(KeyMnemonic),
			Passphrase:       v.GetString(KeyPassphrase),
			PrivateKey:       v.GetString(KeyPrivateKey),
			KeystoreFile:     v.GetString(KeyKeystoreFile),
			KeystorePassword: v.GetString(KeyKeystorePassword),
			DerivationPath:   v.GetString(KeyDerivationPath),
			KeyType:          v.GetString(KeyKeyType),
			Network:          v.GetString(KeyNetwork),
		},
		Chain: Chain{
			RESTEndpoint: strings.TrimRight(v.GetString(KeyRESTEndpoint), "/"),
			ChainID:      v.GetString(KeyChainID),
		},
		Transfer: Transfer{
			ToAddress: v.GetString(KeyToAddress),
			Denom:     v.GetString(KeyDenom),
			Amount:    v.GetString(KeyAmount),
			FeeAmount: v.GetString(KeyFeeAmount),
			GasLimit:  v.GetString(KeyGasLimit),
			Memo:      v.GetString(KeyMemo),
			DryRun:    v.GetBool(KeyDryRun),
		},
		Client: Client{
			RequestTimeout:       v.GetDuration(KeyRequestTimeout),
			OperationTimeout:     v.GetDuration(KeyOperationTimeout),
			AccountLookupRetries: v.GetUint64(KeyAccountLookupRetries),
			BroadcastMode:        v.GetString(KeyBroadcastMode),
		},
		Logger: Logger{
			Level:              level,
			PrettyPrintConsole: v.GetBool(KeyLogPretty),
		},
		Metrics: Metrics{
			TextfilePath: v.GetString(KeyMetricsTextfile),
		},
	}, nil
}

// DefaultSenderConfigFromEnv returns the config built from defaults and SIDE_* env vars
func DefaultSenderConfigFromEnv() Sender {
	cfg, err := FromViper(NewViper())
	if err != nil {
		// only the log level can fail to parse, fall back to info
		cfg.Logger.Level = zerolog.InfoLevel
	}

	return cfg
}

// ValidateEndpoint checks the REST settings needed by any command talking to the ledger
func (c Sender) ValidateEndpoint() error {
	return vala.BeginValidation().Validate(
		vala.StringNotEmpty(c.Chain.RESTEndpoint, KeyRESTEndpoint),
		isHTTPURL(c.Chain.RESTEndpoint, KeyRESTEndpoint),
		positiveDuration(c.Client.RequestTimeout, KeyRequestTimeout),
	).Check()
}

// ValidateKey checks that exactly one key source is configured
func (c Sender) ValidateKey() error {
	return vala.BeginValidation().Validate(
		exactlyOneKeySource(c.Key),
		vala.StringNotEmpty(c.Key.Network, KeyNetwork),
		oneOf(c.Key.KeyType, KeyKeyType, "taproot", "segwit"),
	).Check()
}

// Validate checks everything a send needs
func (c Sender) Validate() error {
	if err := c.ValidateKey(); err != nil {
		return err
	}

	if err := c.ValidateEndpoint(); err != nil {
		return err
	}

	return vala.BeginValidation().Validate(
		vala.StringNotEmpty(c.Chain.ChainID, KeyChainID),
		vala.StringNotEmpty(c.Transfer.Denom, KeyDenom),
		vala.StringNotEmpty(c.Transfer.Amount, KeyAmount),
		vala.StringNotEmpty(c.Transfer.FeeAmount, KeyFeeAmount),
		vala.StringNotEmpty(c.Transfer.GasLimit, KeyGasLimit),
		positiveDuration(c.Client.OperationTimeout, KeyOperationTimeout),
		oneOf(c.Client.BroadcastMode, KeyBroadcastMode, "BROADCAST_MODE_SYNC", "BROADCAST_MODE_ASYNC"),
	).Check()
}

func exactlyOneKeySource(k Key) vala.Checker {
	return func() (bool, string) {
		n := 0
		for _, s := range []string{k.Mnemonic, k.PrivateKey, k.KeystoreFile} {
			if s != "" {
				n++
			}
		}

		switch n {
		case 1:
			return true, ""
		case 0:
			return false, "one of mnemonic, private_key or keystore_file must be set"
		default:
			return false, "only one of mnemonic, private_key or keystore_file may be set"
		}
	}
}

func isHTTPURL(raw string, name string) vala.Checker {
	return func() (bool, string) {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return false, "parameter " + name + " must be an http(s) URL"
		}
		return true, ""
	}
}

func positiveDuration(d time.Duration, name string) vala.Checker {
	return func() (bool, string) {
		return d > 0, "parameter " + name + " must be a positive duration"
	}
}

func oneOf(value string, name string, allowed ...string) vala.Checker {
	return func() (bool, string) {
		for _, a := range allowed {
			if value == a {
				return true, ""
			}
		}
		return false, "parameter " + name + " must be one of " + strings.Join(allowed, ", ")
	}
}
