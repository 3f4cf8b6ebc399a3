//go:build unit
// +build unit

package app

import (
	"context"
	"encoding/pem"
	"errors"
	"testing"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/domain/keys"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type keyServices struct {
	generate keys.CryptoKeyGenerateService
	metadata keys.CryptoKeyMetadataService
	export   keys.CryptoKeyExportService
	repo     *MockCryptoKeyRepository
	store    keys.KeyStore
}

func setupKeyServices(t *testing.T) *keyServices {
	t.Helper()

	provider, _ := setupProvider(t)
	store := newKeyStore(t)
	repo := new(MockCryptoKeyRepository)
	log := testutil.SetupTestLogger(t)

	generate, err := NewCryptoKeyGenerateService(provider, store, repo, log)
	require.NoError(t, err)
	metadata, err := NewCryptoKeyMetadataService(store, repo, log)
	require.NoError(t, err)
	export, err := NewCryptoKeyExportService(provider, store, log)
	require.NoError(t, err)

	return &keyServices{generate: generate, metadata: metadata, export: export, repo: repo, store: store}
}

func TestCryptoKeyGenerateService_Generate(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		bits      int
		curve     string
		wantTypes []string
		wantBits  int
	}{
		{"AES default size", "AES", 0, "", []string{"symmetric"}, 256},
		{"AES 128", "aes", 128, "", []string{"symmetric"}, 128},
		{"RSA 1024", "RSA", 1024, "", []string{"private", "public"}, 1024},
		{"EC P-384", "EC", 0, crypto.CurveP384, []string{"private", "public"}, 384},
		{"Ed25519", "Ed25519", 0, "", []string{"private", "public"}, 256},
		{"name ignores case", "x25519", 0, "", []string{"private", "public"}, 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupKeyServices(t)
			s.repo.On("Create", mock.Anything, mock.AnythingOfType("*keys.CryptoKeyMeta")).Return(nil)

			userID := uuid.NewString()
			metas, err := s.generate.Generate(context.Background(), userID, tt.algorithm, tt.bits, tt.curve)
			require.NoError(t, err)
			require.Len(t, metas, len(tt.wantTypes))

			for i, meta := range metas {
				assert.Equal(t, tt.wantTypes[i], meta.Type)
				assert.Equal(t, tt.wantBits, meta.KeySize)
				assert.Equal(t, "software", meta.Engine)
				assert.Equal(t, userID, meta.UserID)
				assert.Equal(t, metas[0].KeyPairID, meta.KeyPairID)
				require.NoError(t, meta.Validate())
				require.NoError(t, s.store.With(meta.ID, func(*crypto.Key) error { return nil }))
			}
			s.repo.AssertNumberOfCalls(t, "Create", len(tt.wantTypes))
		})
	}
}

func TestCryptoKeyGenerateService_Generate_Rejects(t *testing.T) {
	s := setupKeyServices(t)

	_, err := s.generate.Generate(context.Background(), "user", "SHA-256", 0, "")
	assert.ErrorIs(t, err, crypto.ErrUnsupportedScope)

	_, err = s.generate.Generate(context.Background(), "user", "RSA", 1000, "")
	assert.ErrorIs(t, err, crypto.ErrUnsupportedParameter)

	_, err = s.generate.Generate(context.Background(), "user", "NoSuchAlgorithm", 0, "")
	assert.ErrorIs(t, err, crypto.ErrInitialization)

	s.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCryptoKeyGenerateService_Generate_RollsBackOnRepositoryFailure(t *testing.T) {
	s := setupKeyServices(t)

	s.repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	s.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	s.repo.On("DeleteByID", mock.Anything, mock.Anything).Return(nil)

	metas, err := s.generate.Generate(context.Background(), "user", "EC", 0, "")
	assert.Nil(t, metas)
	assert.ErrorContains(t, err, "disk full")

	// the private key was stored before the public key failed, both are gone
	s.repo.AssertNumberOfCalls(t, "DeleteByID", 2)
}

func TestCryptoKeyGenerateService_Generate_RollbackReportsRepositoryErrors(t *testing.T) {
	s := setupKeyServices(t)

	s.repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	s.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	s.repo.On("DeleteByID", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()
	s.repo.On("DeleteByID", mock.Anything, mock.Anything).Return(keys.ErrKeyNotFound).Once()

	_, err := s.generate.Generate(context.Background(), "user", "Ed25519", 0, "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")
	assert.ErrorContains(t, err, "connection reset", "a failed row delete is part of the report")
	assert.NotErrorIs(t, err, keys.ErrKeyNotFound, "the row that was never created is expected to be missing")
}

func TestCryptoKeyMetadataService_DeleteByID(t *testing.T) {
	s := setupKeyServices(t)
	s.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	metas, err := s.generate.Generate(context.Background(), "user", "AES", 0, "")
	require.NoError(t, err)
	id := metas[0].ID

	s.repo.On("GetByID", mock.Anything, id).Return(metas[0], nil)
	s.repo.On("DeleteByID", mock.Anything, id).Return(nil)
	require.NoError(t, s.metadata.DeleteByID(context.Background(), id))

	err = s.store.With(id, func(*crypto.Key) error { return nil })
	assert.ErrorIs(t, err, keys.ErrKeyNotFound)

	missing := uuid.NewString()
	s.repo.On("GetByID", mock.Anything, missing).Return(nil, keys.ErrKeyNotFound)
	assert.ErrorIs(t, s.metadata.DeleteByID(context.Background(), missing), keys.ErrKeyNotFound)
}

func TestCryptoKeyMetadataService_ListAndGet(t *testing.T) {
	s := setupKeyServices(t)
	meta := &keys.CryptoKeyMeta{ID: "abc"}

	s.repo.On("List", mock.Anything, mock.Anything).Return([]*keys.CryptoKeyMeta{meta}, nil)
	s.repo.On("GetByID", mock.Anything, "abc").Return(meta, nil)

	listed, err := s.metadata.List(context.Background(), keys.NewCryptoKeyQuery())
	require.NoError(t, err)
	assert.Equal(t, []*keys.CryptoKeyMeta{meta}, listed)

	got, err := s.metadata.GetByID(context.Background(), "abc")
	require.NoError(t, err)
	assert.Same(t, meta, got)
}

func TestCryptoKeyExportService_ExportByID(t *testing.T) {
	s := setupKeyServices(t)
	s.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	metas, err := s.generate.Generate(context.Background(), "user", "ECDH", 0, "")
	require.NoError(t, err)

	for _, meta := range metas {
		encoded, err := s.export.ExportByID(context.Background(), meta.ID)
		require.NoError(t, err)
		block, _ := pem.Decode(encoded)
		require.NotNil(t, block, "%s key is PEM encoded", meta.Type)
	}

	symmetric, err := s.generate.Generate(context.Background(), "user", "ChaCha20-Poly1305", 0, "")
	require.NoError(t, err)
	raw, err := s.export.ExportByID(context.Background(), symmetric[0].ID)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	_, err = s.export.ExportByID(context.Background(), "missing")
	assert.ErrorIs(t, err, keys.ErrKeyNotFound)
}
