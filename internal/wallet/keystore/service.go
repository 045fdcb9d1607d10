package keystore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github/chapool/side-transfer/internal/util"
)

type service struct {
	params ScryptParams
}

// NewService creates a new keystore Service
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(params ScryptParams) Service {
	return &service{
		params: params,
	}
}

// Create encrypts mnemonic and writes it to path
func (s *service) Create(ctx context.Context, path string, mnemonic string, password string, address string) (*Keystore, error) {
	log := util.LogFromContext(ctx)

	if password == "" {
		return nil, errors.New("keystore password must not be empty")
	}

	if _, err := os.Stat(path); err == nil {
		return nil, errors.Wrap(ErrExists, path)
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to check keystore existence")
	}

	ks, err := encryptMnemonic(mnemonic, password, s.params)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encrypt mnemonic")
		return nil, errors.Wrap(err, "failed to encrypt mnemonic")
	}
	ks.Address = address

	data, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal keystore JSON")
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrap(err, "failed to create keystore directory")
		}
	}

	// O_EXCL: never overwrite, even if the file appeared after the Stat
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, errors.Wrap(ErrExists, path)
		}
		return nil, errors.Wrap(err, "failed to create keystore file")
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "failed to write keystore file")
	}

	if err := f.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to close keystore file")
	}

	log.Info().Str("path", path).Str("id", ks.ID).Str("address", address).Msg("Keystore created")

	return ks, nil
}

// Load reads the keystore at path
func (s *service) Load(_ context.Context, path string) (*Keystore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read keystore file")
	}

	var ks Keystore
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal keystore JSON")
	}

	if err := ks.check(); err != nil {
		return nil, err
	}

	return &ks, nil
}

// Decrypt returns the mnemonic stored at path
func (s *service) Decrypt(ctx context.Context, path string, password string) (string, error) {
	log := util.LogFromContext(ctx)

	ks, err := s.Load(ctx, path)
	if err != nil {
		return "", err
	}

	mnemonic, err := decryptMnemonic(ks, password)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to decrypt mnemonic")
		return "", errors.Wrap(err, "failed to decrypt mnemonic")
	}

	return mnemonic, nil
}
