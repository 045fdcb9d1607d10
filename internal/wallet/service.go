package wallet

import (
	"context"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github/chapool/side-transfer/internal/metrics"
	"github/chapool/side-transfer/internal/util"
	"github/chapool/side-transfer/internal/wallet/address"
	"github/chapool/side-transfer/internal/wallet/lcd"
	"github/chapool/side-transfer/internal/wallet/signer"
	"github/chapool/side-transfer/internal/wallet/txbuilder"
	"github/chapool/side-transfer/internal/wallet/txerr"
)

const defaultRetryInitialInterval = 500 * time.Millisecond

type sender struct {
	opts           Options
	keys           KeyProvider
	addressService address.Service
	client         AccountClient
	builder        txbuilder.Service
	signerService  signer.Service
	metrics        *metrics.Transfer
}

// NewSender creates a new Sender
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewSender(
	opts Options,
	keys KeyProvider,
	addressService address.Service,
	client AccountClient,
	builder txbuilder.Service,
	signerService signer.Service,
	m *metrics.Transfer,
) Sender {
	if opts.RetryInitialInterval <= 0 {
		opts.RetryInitialInterval = defaultRetryInitialInterval
	}

	if m == nil {
		m = metrics.NewTransfer()
	}

	return &sender{
		opts:           opts,
		keys:           keys,
		addressService: addressService,
		client:         client,
		builder:        builder,
		signerService:  signerService,
		metrics:        m,
	}
}

// Send signs and broadcasts one transfer. OperationTimeout starts after key
// derivation, so a password prompt does not eat into it.
func (s *sender) Send(ctx context.Context, req Request) (*Result, error) {
	log := util.LogFromContext(ctx)

	// 1. Derive key and sending address
	var (
		keyPair *address.KeyPair
		from    string
	)
	err := s.runPhase(ctx, PhaseDerivation, func(ctx context.Context) error {
		var err error
		keyPair, from, err = s.deriveAddress(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer keyPair.Zero()

	if s.opts.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.OperationTimeout)
		defer cancel()
	}

	to := req.ToAddress
	if to == "" {
		to = from
	}

	// 2. Fresh account metadata, never reused across transfers
	var account *lcd.Account
	err = s.runPhase(ctx, PhaseAccountLookup, func(ctx context.Context) error {
		var err error
		account, err = s.lookupAccount(ctx, from)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 3. Assemble
	params := toParams(req, s.opts.ChainID, from, to, account, keyPair, s.addressService.PubKeyTypeURL())

	var unsigned *txbuilder.Unsigned
	err = s.runPhase(ctx, PhaseAssembly, func(ctx context.Context) error {
		var err error
		unsigned, err = s.builder.Build(ctx, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 4. Sign the exact SignDoc bytes and attach the signature
	var signed *txbuilder.Signed
	err = s.runPhase(ctx, PhaseSigning, func(ctx context.Context) error {
		signature, err := s.signerService.Sign(ctx, unsigned.SignDocBytes, keyPair)
		if err != nil {
			return err
		}

		signed, err = unsigned.Attach(signature)
		return err
	})
	keyPair.Zero()
	if err != nil {
		return nil, err
	}

	result := newResult(params, signed)

	log.Info().
		Str("from", from).
		Str("to", to).
		Str("amount", req.Amount+req.Denom).
		Uint64("account_number", account.AccountNumber).
		Uint64("sequence", account.Sequence).
		Str("tx_hash", signed.TxHash).
		Bool("dry_run", req.DryRun).
		Msg("Transaction signed")

	if req.DryRun {
		s.metrics.RecordBroadcast(metrics.BroadcastSkipped)
		return result, nil
	}

	// 5. Broadcast exactly once
	err = s.runPhase(ctx, PhaseBroadcast, func(ctx context.Context) error {
		res, err := s.client.BroadcastTx(ctx, signed.TxRawBytes)
		if err != nil {
			var rerr *txerr.RemoteRejectionError
			if errors.As(err, &rerr) {
				s.metrics.RecordBroadcast(metrics.BroadcastRejected)
			} else {
				s.metrics.RecordBroadcast(metrics.BroadcastFailed)
			}
			return err
		}

		s.metrics.RecordBroadcast(metrics.BroadcastAccepted)

		if res.TxHash != signed.TxHash {
			log.Warn().
				Str("local_tx_hash", signed.TxHash).
				Str("remote_tx_hash", res.TxHash).
				Msg("Ledger reported a different transaction hash")
		}

		result.TxHash = res.TxHash
		return nil
	})
	if err != nil {
		log.Error().
			Err(err).
			Uint64("sequence", account.Sequence).
			Msg("Broadcast failed, fetch the account again before any retry")
		return nil, err
	}

	result.Broadcast = true

	return result, nil
}

// Address derives the sending address
func (s *sender) Address(ctx context.Context) (string, error) {
	var addr string
	err := s.runPhase(ctx, PhaseDerivation, func(ctx context.Context) error {
		keyPair, from, err := s.deriveAddress(ctx)
		if err != nil {
			return err
		}
		keyPair.Zero()

		addr = from
		return nil
	})

	return addr, err
}

// Account derives the sending address and fetches its account metadata
func (s *sender) Account(ctx context.Context) (string, *lcd.Account, error) {
	addr, err := s.Address(ctx)
	if err != nil {
		return "", nil, err
	}

	var account *lcd.Account
	err = s.runPhase(ctx, PhaseAccountLookup, func(ctx context.Context) error {
		var err error
		account, err = s.lookupAccount(ctx, addr)
		return err
	})
	if err != nil {
		return "", nil, err
	}

	return addr, account, nil
}

// deriveAddress returns the key pair and its address
// WARNING: Caller must call KeyPair.Zero after use
func (s *sender) deriveAddress(ctx context.Context) (*address.KeyPair, string, error) {
	keyPair, expected, err := s.keys.KeyPair(ctx)
	if err != nil {
		return nil, "", err
	}

	addr, err := s.addressService.EncodeAddress(keyPair.PublicKey())
	if err != nil {
		keyPair.Zero()
		return nil, "", err
	}

	if err := VerifyAddress(addr, expected); err != nil {
		keyPair.Zero()
		return nil, "", err
	}

	util.LogFromContext(ctx).Debug().
		Str("address", addr).
		Str("key_type", string(s.addressService.KeyType())).
		Msg("Derived sending address")

	return keyPair, addr, nil
}

// lookupAccount fetches account metadata, retrying transport failures that may be transient.
// Lookups are read-only, so retrying cannot cause a double submission.
func (s *sender) lookupAccount(ctx context.Context, addr string) (*lcd.Account, error) {
	log := util.LogFromContext(ctx)

	expBackOff := backoff.NewExponentialBackOff()
	expBackOff.InitialInterval = s.opts.RetryInitialInterval
	expBackOff.MaxElapsedTime = 0
	expBackOff.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(expBackOff, s.opts.AccountLookupRetries), ctx)

	var account *lcd.Account
	operation := func() error {
		s.metrics.RecordLookupAttempt()

		a, err := s.client.GetAccountInfo(ctx, addr)
		if err != nil {
			if isRetryable(ctx, err) {
				return err
			}
			return backoff.Permanent(err)
		}

		account = a
		return nil
	}

	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Msg("Account lookup failed, retrying")
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		// cancelled while waiting between attempts
		var terr *txerr.TransportError
		if !errors.As(err, &terr) && ctx.Err() != nil {
			return nil, &txerr.TransportError{Op: "account_lookup", Err: err}
		}
		return nil, err
	}

	return account, nil
}

// isRetryable accepts connection failures, 429 and 5xx
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	var terr *txerr.TransportError
	if !errors.As(err, &terr) {
		return false
	}

	return terr.StatusCode == 0 ||
		terr.StatusCode == http.StatusTooManyRequests ||
		terr.StatusCode >= http.StatusInternalServerError
}

func (s *sender) runPhase(ctx context.Context, phase Phase, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	s.metrics.ObservePhase(string(phase), time.Since(start), err)

	if err != nil {
		util.LogFromContext(ctx).Debug().Err(err).Str("phase", string(phase)).Msg("Phase failed")
		return &PhaseError{Phase: phase, Err: err}
	}

	return nil
}
