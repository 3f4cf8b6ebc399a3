package app

import (
	"context"
	"fmt"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/domain/keys"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/logger"
)

// cryptoOperationService implements the CryptoOperationService interface
type cryptoOperationService struct {
	provider      crypto.Provider
	keyStore      keys.KeyStore
	defaultDigest string
	logger        logger.Logger
}

// NewCryptoOperationService creates a new cryptoOperationService instance.
// defaultDigest names the digest used by Hash requests that name none.
func NewCryptoOperationService(provider crypto.Provider, keyStore keys.KeyStore, defaultDigest string, logger logger.Logger) (keys.CryptoOperationService, error) {
	if provider == nil || keyStore == nil {
		return nil, fmt.Errorf("provider and key store are required")
	}
	if _, err := crypto.Validate(algorithmNamed(defaultDigest), crypto.ScopeDigest); err != nil {
		return nil, fmt.Errorf("invalid default digest: %w", err)
	}
	return &cryptoOperationService{
		provider:      provider,
		keyStore:      keyStore,
		defaultDigest: defaultDigest,
		logger:        logger,
	}, nil
}

func (s *cryptoOperationService) cipher(keyID string, params *crypto.CipherParameters, mode crypto.Mode, input, aad []byte) ([]byte, error) {
	p := crypto.CipherParameters{}
	if params != nil {
		p = *params
	}
	p.Mode = mode

	var output []byte
	err := s.keyStore.With(keyID, func(key *crypto.Key) error {
		var err error
		output, err = s.provider.Cipher(key, &p, input, aad)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to %s with key %s: %w", mode, keyID, err)
	}
	return output, nil
}

// Encrypt encrypts plaintext with the stored key
func (s *cryptoOperationService) Encrypt(_ context.Context, keyID string, params *crypto.CipherParameters, plaintext, aad []byte) ([]byte, error) {
	return s.cipher(keyID, params, crypto.ModeEncrypt, plaintext, aad)
}

// Decrypt decrypts ciphertext with the stored key
func (s *cryptoOperationService) Decrypt(_ context.Context, keyID string, params *crypto.CipherParameters, ciphertext, aad []byte) ([]byte, error) {
	return s.cipher(keyID, params, crypto.ModeDecrypt, ciphertext, aad)
}

// Sign signs data with the stored private key
func (s *cryptoOperationService) Sign(_ context.Context, keyID string, params *crypto.SignatureParameters, data []byte) ([]byte, error) {
	var signature []byte
	err := s.keyStore.With(keyID, func(key *crypto.Key) error {
		var err error
		signature, err = s.provider.Sign(key, params, data)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign with key %s: %w", keyID, err)
	}
	return signature, nil
}

// Verify checks signature over data with the stored public key
func (s *cryptoOperationService) Verify(_ context.Context, keyID string, params *crypto.SignatureParameters, signature, data []byte) (bool, error) {
	var valid bool
	err := s.keyStore.With(keyID, func(key *crypto.Key) error {
		var err error
		valid, err = s.provider.Verify(key, params, signature, data)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to verify with key %s: %w", keyID, err)
	}
	return valid, nil
}

// Agree derives the shared secret of two stored keys
func (s *cryptoOperationService) Agree(_ context.Context, privateKeyID, peerKeyID string) ([]byte, error) {
	var secret []byte
	err := s.keyStore.WithPair(privateKeyID, peerKeyID, func(private, peer *crypto.Key) error {
		var err error
		secret, err = s.provider.Agree(private, peer)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to agree on a secret with keys %s and %s: %w", privateKeyID, peerKeyID, err)
	}
	return secret, nil
}

// Hash digests data
func (s *cryptoOperationService) Hash(_ context.Context, algorithmName string, data []byte) ([]byte, error) {
	if algorithmName == "" {
		algorithmName = s.defaultDigest
	}
	digest, err := s.provider.Hash(algorithmNamed(algorithmName), data)
	if err != nil {
		return nil, fmt.Errorf("failed to hash with %s: %w", algorithmName, err)
	}
	return digest, nil
}

// GenerateParameters generates and PEM encodes domain parameters
func (s *cryptoOperationService) GenerateParameters(_ context.Context, algorithmName string, bits, generator int) ([]byte, error) {
	algorithm := algorithmNamed(algorithmName)
	if bits == 0 {
		bits = algorithm.DefaultSize
	}
	params, err := s.provider.GenerateParameters(algorithm, &crypto.DomainParameterGeneratorParameters{Bits: bits, Generator: generator})
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s parameters: %w", algorithmName, err)
	}
	encoded, err := s.provider.EncodeParameters(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s parameters: %w", algorithmName, err)
	}
	s.logger.Info("Generated ", params.Bits(), " bit ", algorithmName, " parameters")
	return encoded, nil
}

// Algorithms lists the algorithm table
func (s *cryptoOperationService) Algorithms() []*crypto.Algorithm {
	return crypto.Algorithms()
}
