//go:build unit
// +build unit

package app

import (
	"context"
	"encoding/hex"
	"encoding/pem"
	"testing"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/domain/keys"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type operationServices struct {
	*keyServices
	operations keys.CryptoOperationService
}

func setupOperationServices(t *testing.T) *operationServices {
	t.Helper()

	provider, _ := setupProvider(t)
	store := newKeyStore(t)
	repo := new(MockCryptoKeyRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	log := testutil.SetupTestLogger(t)

	generate, err := NewCryptoKeyGenerateService(provider, store, repo, log)
	require.NoError(t, err)
	operations, err := NewCryptoOperationService(provider, store, crypto.DigestSHA256, log)
	require.NoError(t, err)

	return &operationServices{
		keyServices: &keyServices{generate: generate, repo: repo, store: store},
		operations:  operations,
	}
}

func (s *operationServices) generateKeys(t *testing.T, algorithm string, bits int) []*keys.CryptoKeyMeta {
	t.Helper()
	metas, err := s.generate.Generate(context.Background(), "user", algorithm, bits, "")
	require.NoError(t, err)
	return metas
}

func TestNewCryptoOperationService_RejectsDefaultDigest(t *testing.T) {
	provider, _ := setupProvider(t)

	_, err := NewCryptoOperationService(provider, newKeyStore(t), "AES", testutil.SetupTestLogger(t))
	assert.ErrorIs(t, err, crypto.ErrUnsupportedScope)
}

func TestCryptoOperationService_EncryptDecrypt(t *testing.T) {
	s := setupOperationServices(t)
	ctx := context.Background()

	aes := s.generateKeys(t, "AES", 128)[0]
	rsa := s.generateKeys(t, "RSA", 1024)
	private, public := rsa[0], rsa[1]

	tests := []struct {
		name      string
		encryptID string
		decryptID string
		params    *crypto.CipherParameters
		aad       []byte
	}{
		{"AES default mode", aes.ID, aes.ID, &crypto.CipherParameters{IV: make([]byte, 16)}, nil},
		{"AES-GCM with associated data", aes.ID, aes.ID, &crypto.CipherParameters{BlockMode: crypto.BlockModeGCM, IV: make([]byte, 12)}, []byte("header")},
		{"RSA-OAEP", public.ID, private.ID, &crypto.CipherParameters{Padding: crypto.PaddingOAEP}, nil},
		{"RSA default padding", public.ID, private.ID, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plaintext := []byte("attack at dawn")

			ciphertext, err := s.operations.Encrypt(ctx, tt.encryptID, tt.params, plaintext, tt.aad)
			require.NoError(t, err)
			assert.NotEqual(t, plaintext, ciphertext)

			decrypted, err := s.operations.Decrypt(ctx, tt.decryptID, tt.params, ciphertext, tt.aad)
			require.NoError(t, err)
			assert.Equal(t, plaintext, decrypted)
		})
	}

	_, err := s.operations.Encrypt(ctx, private.ID, nil, []byte("x"), nil)
	assert.ErrorIs(t, err, crypto.ErrInitialization, "encrypting needs the public key")

	_, err = s.operations.Encrypt(ctx, "missing", nil, []byte("x"), nil)
	assert.ErrorIs(t, err, keys.ErrKeyNotFound)
}

func TestCryptoOperationService_SignVerify(t *testing.T) {
	s := setupOperationServices(t)
	ctx := context.Background()

	for _, algorithm := range []string{"EC", "Ed25519", "ML-DSA-65", "RSA"} {
		t.Run(algorithm, func(t *testing.T) {
			bits := 0
			if algorithm == "RSA" {
				bits = 1024
			}
			pair := s.generateKeys(t, algorithm, bits)
			data := []byte("signed payload")

			signature, err := s.operations.Sign(ctx, pair[0].ID, nil, data)
			require.NoError(t, err)

			valid, err := s.operations.Verify(ctx, pair[1].ID, nil, signature, data)
			require.NoError(t, err)
			assert.True(t, valid)

			valid, err = s.operations.Verify(ctx, pair[1].ID, nil, signature, []byte("other payload"))
			require.NoError(t, err)
			assert.False(t, valid)
		})
	}
}

func TestCryptoOperationService_Agree(t *testing.T) {
	s := setupOperationServices(t)
	ctx := context.Background()

	alice := s.generateKeys(t, "X25519", 0)
	bob := s.generateKeys(t, "X25519", 0)

	aliceSecret, err := s.operations.Agree(ctx, alice[0].ID, bob[1].ID)
	require.NoError(t, err)
	bobSecret, err := s.operations.Agree(ctx, bob[0].ID, alice[1].ID)
	require.NoError(t, err)
	assert.Equal(t, aliceSecret, bobSecret)
	assert.Len(t, aliceSecret, 32)

	_, err = s.operations.Agree(ctx, alice[1].ID, bob[0].ID)
	assert.ErrorIs(t, err, crypto.ErrInitialization)
}

func TestCryptoOperationService_Hash(t *testing.T) {
	s := setupOperationServices(t)

	digest, err := s.operations.Hash(context.Background(), "", []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", hex.EncodeToString(digest))

	digest, err = s.operations.Hash(context.Background(), "SHA-512", []byte("abc"))
	require.NoError(t, err)
	assert.Len(t, digest, 64)

	_, err = s.operations.Hash(context.Background(), "AES", []byte("abc"))
	assert.ErrorIs(t, err, crypto.ErrUnsupportedScope)
}

func TestCryptoOperationService_GenerateParameters(t *testing.T) {
	s := setupOperationServices(t)

	encoded, err := s.operations.GenerateParameters(context.Background(), "DH", 512, 0)
	require.NoError(t, err)
	block, _ := pem.Decode(encoded)
	require.NotNil(t, block)

	_, err = s.operations.GenerateParameters(context.Background(), "EC", 512, 0)
	assert.ErrorIs(t, err, crypto.ErrUnsupportedScope)

	assert.Equal(t, crypto.Algorithms(), s.operations.Algorithms())
}
