//go:build unit
// +build unit

package app

import (
	"context"
	"testing"

	"github.com/MGTheTrain/crypto-facade/internal/domain/keys"
	"github.com/MGTheTrain/crypto-facade/internal/infrastructure/cryptography"
	"github.com/MGTheTrain/crypto-facade/internal/infrastructure/engine"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCryptoKeyRepository is a mock implementation of CryptoKeyRepository
type MockCryptoKeyRepository struct {
	mock.Mock
}

func (m *MockCryptoKeyRepository) Create(ctx context.Context, key *keys.CryptoKeyMeta) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCryptoKeyRepository) List(ctx context.Context, query *keys.CryptoKeyQuery) ([]*keys.CryptoKeyMeta, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*keys.CryptoKeyMeta), args.Error(1)
}

func (m *MockCryptoKeyRepository) GetByID(ctx context.Context, keyID string) (*keys.CryptoKeyMeta, error) {
	args := m.Called(ctx, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keys.CryptoKeyMeta), args.Error(1)
}

func (m *MockCryptoKeyRepository) UpdateByID(ctx context.Context, key *keys.CryptoKeyMeta) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCryptoKeyRepository) DeleteByID(ctx context.Context, keyID string) error {
	return m.Called(ctx, keyID).Error(0)
}

// setupProvider builds a provider over a fresh software engine and checks
// that no handle is left when the test ends.
func setupProvider(t *testing.T) (*cryptography.Provider, *engine.SoftwareEngine) {
	t.Helper()

	software, err := engine.NewSoftwareEngine(testutil.DefaultEngineSettings(), testutil.SetupTestLogger(t))
	require.NoError(t, err)

	provider, err := cryptography.NewProvider(software, testutil.SetupTestLogger(t))
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.Zero(t, software.LiveHandles(), "every engine handle must be released")
	})
	return provider, software
}

// newKeyStore returns a store closed before the handle check of setupProvider runs
func newKeyStore(t *testing.T) keys.KeyStore {
	t.Helper()

	store := NewInMemoryKeyStore()
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}
