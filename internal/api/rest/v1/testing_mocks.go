//go:build unit
// +build unit

package v1

import (
	"context"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/domain/keys"

	"github.com/stretchr/testify/mock"
)

// MockCryptoKeyGenerateService is a mock implementation of CryptoKeyGenerateService
type MockCryptoKeyGenerateService struct {
	mock.Mock
}

func (m *MockCryptoKeyGenerateService) Generate(ctx context.Context, userID, algorithm string, bits int, curve string) ([]*keys.CryptoKeyMeta, error) {
	args := m.Called(ctx, userID, algorithm, bits, curve)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*keys.CryptoKeyMeta), args.Error(1)
}

// MockCryptoKeyMetadataService is a mock implementation of CryptoKeyMetadataService
type MockCryptoKeyMetadataService struct {
	mock.Mock
}

func (m *MockCryptoKeyMetadataService) List(ctx context.Context, query *keys.CryptoKeyQuery) ([]*keys.CryptoKeyMeta, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*keys.CryptoKeyMeta), args.Error(1)
}

func (m *MockCryptoKeyMetadataService) GetByID(ctx context.Context, keyID string) (*keys.CryptoKeyMeta, error) {
	args := m.Called(ctx, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keys.CryptoKeyMeta), args.Error(1)
}

func (m *MockCryptoKeyMetadataService) DeleteByID(ctx context.Context, keyID string) error {
	args := m.Called(ctx, keyID)
	return args.Error(0)
}

// MockCryptoKeyExportService is a mock implementation of CryptoKeyExportService
type MockCryptoKeyExportService struct {
	mock.Mock
}

func (m *MockCryptoKeyExportService) ExportByID(ctx context.Context, keyID string) ([]byte, error) {
	args := m.Called(ctx, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockCryptoOperationService is a mock implementation of CryptoOperationService
type MockCryptoOperationService struct {
	mock.Mock
}

func (m *MockCryptoOperationService) bytes(args mock.Arguments) ([]byte, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCryptoOperationService) Encrypt(ctx context.Context, keyID string, params *crypto.CipherParameters, plaintext, aad []byte) ([]byte, error) {
	return m.bytes(m.Called(ctx, keyID, params, plaintext, aad))
}

func (m *MockCryptoOperationService) Decrypt(ctx context.Context, keyID string, params *crypto.CipherParameters, ciphertext, aad []byte) ([]byte, error) {
	return m.bytes(m.Called(ctx, keyID, params, ciphertext, aad))
}

func (m *MockCryptoOperationService) Sign(ctx context.Context, keyID string, params *crypto.SignatureParameters, data []byte) ([]byte, error) {
	return m.bytes(m.Called(ctx, keyID, params, data))
}

func (m *MockCryptoOperationService) Verify(ctx context.Context, keyID string, params *crypto.SignatureParameters, signature, data []byte) (bool, error) {
	args := m.Called(ctx, keyID, params, signature, data)
	return args.Bool(0), args.Error(1)
}

func (m *MockCryptoOperationService) Agree(ctx context.Context, privateKeyID, peerKeyID string) ([]byte, error) {
	return m.bytes(m.Called(ctx, privateKeyID, peerKeyID))
}

func (m *MockCryptoOperationService) Hash(ctx context.Context, algorithm string, data []byte) ([]byte, error) {
	return m.bytes(m.Called(ctx, algorithm, data))
}

func (m *MockCryptoOperationService) GenerateParameters(ctx context.Context, algorithm string, bits, generator int) ([]byte, error) {
	return m.bytes(m.Called(ctx, algorithm, bits, generator))
}

func (m *MockCryptoOperationService) Algorithms() []*crypto.Algorithm {
	return m.Called().Get(0).([]*crypto.Algorithm)
}
