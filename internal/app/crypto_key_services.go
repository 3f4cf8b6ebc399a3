package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/domain/keys"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// algorithmNamed returns the table algorithm called name, or an unchecked
// algorithm the engine resolves on first use.
func algorithmNamed(name string) *crypto.Algorithm {
	if algorithm, ok := crypto.AlgorithmByName(name); ok {
		return algorithm
	}
	return crypto.Unchecked(name)
}

// cryptoKeyGenerateService implements the CryptoKeyGenerateService interface
type cryptoKeyGenerateService struct {
	provider      crypto.Provider
	keyStore      keys.KeyStore
	cryptoKeyRepo keys.CryptoKeyRepository
	logger        logger.Logger
}

// NewCryptoKeyGenerateService creates a new cryptoKeyGenerateService instance
func NewCryptoKeyGenerateService(provider crypto.Provider, keyStore keys.KeyStore, cryptoKeyRepo keys.CryptoKeyRepository, logger logger.Logger) (keys.CryptoKeyGenerateService, error) {
	if provider == nil || keyStore == nil || cryptoKeyRepo == nil {
		return nil, fmt.Errorf("provider, key store and repository are required")
	}
	return &cryptoKeyGenerateService{
		provider:      provider,
		keyStore:      keyStore,
		cryptoKeyRepo: cryptoKeyRepo,
		logger:        logger,
	}, nil
}

// Generate creates a symmetric key or a key pair, stores the live keys and
// persists their metadata. Nothing is kept when any step fails.
func (s *cryptoKeyGenerateService) Generate(ctx context.Context, userID, algorithmName string, bits int, curve string) ([]*keys.CryptoKeyMeta, error) {
	algorithm := algorithmNamed(algorithmName)

	var generated []*crypto.Key
	if algorithm.HasScope(crypto.ScopeKeyGenerator) && !algorithm.IsUnchecked() {
		var params *crypto.KeyGeneratorParameters
		if bits > 0 {
			params = &crypto.KeyGeneratorParameters{Bits: bits}
		}
		key, err := s.provider.GenerateKey(algorithm, params)
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s key: %w", algorithmName, err)
		}
		generated = []*crypto.Key{key}
	} else {
		pair, err := s.provider.GenerateKeyPair(algorithm, &crypto.KeyPairGeneratorParameters{Bits: bits, Curve: curve})
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s key pair: %w", algorithmName, err)
		}
		generated = []*crypto.Key{pair.Private, pair.Public}
	}

	keyPairID := uuid.NewString()
	now := time.Now().UTC()
	metas := make([]*keys.CryptoKeyMeta, 0, len(generated))
	for _, key := range generated {
		metas = append(metas, &keys.CryptoKeyMeta{
			ID:              uuid.NewString(),
			KeyPairID:       keyPairID,
			Algorithm:       key.Algorithm().Name,
			KeySize:         key.Bits(),
			Type:            string(key.Type()),
			Engine:          s.provider.EngineName(),
			DateTimeCreated: now,
			UserID:          userID,
		})
	}

	if err := s.keep(ctx, generated, metas); err != nil {
		return nil, err
	}

	s.logger.Info("Generated ", len(metas), " ", algorithmName, " key(s) in key pair ", keyPairID)
	return metas, nil
}

// keep hands generated to the key store and persists metas. On failure every
// key is closed and every stored entry removed again.
func (s *cryptoKeyGenerateService) keep(ctx context.Context, generated []*crypto.Key, metas []*keys.CryptoKeyMeta) error {
	stored := 0
	var err error
	for i, key := range generated {
		if err = s.keyStore.Put(metas[i].ID, key); err != nil {
			break
		}
		stored++
		if err = s.cryptoKeyRepo.Create(ctx, metas[i]); err != nil {
			break
		}
	}
	if err == nil {
		return nil
	}

	rollback := err
	for i := range generated {
		if i < stored {
			rollback = multierr.Append(rollback, s.keyStore.Delete(metas[i].ID))
			if err := s.cryptoKeyRepo.DeleteByID(ctx, metas[i].ID); err != nil && !errors.Is(err, keys.ErrKeyNotFound) {
				rollback = multierr.Append(rollback, err)
			}
		} else {
			rollback = multierr.Append(rollback, generated[i].Close())
		}
	}
	return fmt.Errorf("failed to store generated keys: %w", rollback)
}

// cryptoKeyMetadataService implements the CryptoKeyMetadataService interface
type cryptoKeyMetadataService struct {
	keyStore      keys.KeyStore
	cryptoKeyRepo keys.CryptoKeyRepository
	logger        logger.Logger
}

// NewCryptoKeyMetadataService creates a new cryptoKeyMetadataService instance
func NewCryptoKeyMetadataService(keyStore keys.KeyStore, cryptoKeyRepo keys.CryptoKeyRepository, logger logger.Logger) (keys.CryptoKeyMetadataService, error) {
	return &cryptoKeyMetadataService{
		keyStore:      keyStore,
		cryptoKeyRepo: cryptoKeyRepo,
		logger:        logger,
	}, nil
}

// List retrieves all cryptographic key metadata based on a query.
func (s *cryptoKeyMetadataService) List(ctx context.Context, query *keys.CryptoKeyQuery) ([]*keys.CryptoKeyMeta, error) {
	metas, err := s.cryptoKeyRepo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return metas, nil
}

// GetByID retrieves the metadata of a cryptographic key by its ID.
func (s *cryptoKeyMetadataService) GetByID(ctx context.Context, keyID string) (*keys.CryptoKeyMeta, error) {
	meta, err := s.cryptoKeyRepo.GetByID(ctx, keyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	return meta, nil
}

// DeleteByID releases the live key and deletes its metadata. Metadata whose
// key is no longer live, e.g. after a restart, is still deleted.
func (s *cryptoKeyMetadataService) DeleteByID(ctx context.Context, keyID string) error {
	if _, err := s.GetByID(ctx, keyID); err != nil {
		return err
	}

	if err := s.keyStore.Delete(keyID); err != nil {
		s.logger.Warn("Key ", keyID, " had no live handle: ", err)
	}

	if err := s.cryptoKeyRepo.DeleteByID(ctx, keyID); err != nil {
		return fmt.Errorf("failed to delete key from database: %w", err)
	}
	return nil
}

// cryptoKeyExportService implements the CryptoKeyExportService interface
type cryptoKeyExportService struct {
	provider crypto.Provider
	keyStore keys.KeyStore
	logger   logger.Logger
}

// NewCryptoKeyExportService creates a new cryptoKeyExportService instance
func NewCryptoKeyExportService(provider crypto.Provider, keyStore keys.KeyStore, logger logger.Logger) (keys.CryptoKeyExportService, error) {
	return &cryptoKeyExportService{
		provider: provider,
		keyStore: keyStore,
		logger:   logger,
	}, nil
}

// ExportByID encodes the live key stored under keyID.
func (s *cryptoKeyExportService) ExportByID(_ context.Context, keyID string) ([]byte, error) {
	var encoded []byte
	err := s.keyStore.With(keyID, func(key *crypto.Key) error {
		var err error
		encoded, err = s.provider.ExportKey(key)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to export key %s: %w", keyID, err)
	}
	return encoded, nil
}
