package keys

import (
	"context"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
)

// CryptoKeyGenerateService creates keys in the catalog.
type CryptoKeyGenerateService interface {
	// Generate creates a symmetric key or a key pair for algorithm and
	// returns the metadata of every key created. bits of zero selects the
	// algorithm default; curve is honoured by EC and ECDH only.
	Generate(ctx context.Context, userID, algorithm string, bits int, curve string) ([]*CryptoKeyMeta, error)
}

// CryptoKeyMetadataService defines methods for managing cryptographic key metadata and deleting keys.
type CryptoKeyMetadataService interface {
	// List retrieves all cryptographic keys metadata considering a query filter when set.
	List(ctx context.Context, query *CryptoKeyQuery) ([]*CryptoKeyMeta, error)

	// GetByID retrieves the metadata of a cryptographic key by its unique ID.
	GetByID(ctx context.Context, keyID string) (*CryptoKeyMeta, error)

	// DeleteByID releases the key and deletes its metadata.
	DeleteByID(ctx context.Context, keyID string) error
}

// CryptoKeyExportService encodes catalog keys.
type CryptoKeyExportService interface {
	// ExportByID returns the PEM encoding of an asymmetric key or the raw
	// bytes of a symmetric key.
	ExportByID(ctx context.Context, keyID string) ([]byte, error)
}

// CryptoOperationService runs cryptographic operations with catalog keys.
type CryptoOperationService interface {
	Encrypt(ctx context.Context, keyID string, params *crypto.CipherParameters, plaintext, aad []byte) ([]byte, error)
	Decrypt(ctx context.Context, keyID string, params *crypto.CipherParameters, ciphertext, aad []byte) ([]byte, error)
	Sign(ctx context.Context, keyID string, params *crypto.SignatureParameters, data []byte) ([]byte, error)
	Verify(ctx context.Context, keyID string, params *crypto.SignatureParameters, signature, data []byte) (bool, error)
	// Agree derives a shared secret from a catalog private key and a catalog public key.
	Agree(ctx context.Context, privateKeyID, peerKeyID string) ([]byte, error)
	// Hash digests data; an empty algorithm selects the configured default.
	Hash(ctx context.Context, algorithm string, data []byte) ([]byte, error)
	// GenerateParameters returns PEM encoded domain parameters.
	GenerateParameters(ctx context.Context, algorithm string, bits, generator int) ([]byte, error)
	// Algorithms lists the algorithm table.
	Algorithms() []*crypto.Algorithm
}

// CryptoKeyRepository defines the interface for CryptoKey-related operations
type CryptoKeyRepository interface {
	Create(ctx context.Context, key *CryptoKeyMeta) error
	List(ctx context.Context, query *CryptoKeyQuery) ([]*CryptoKeyMeta, error)
	GetByID(ctx context.Context, keyID string) (*CryptoKeyMeta, error)
	UpdateByID(ctx context.Context, key *CryptoKeyMeta) error
	DeleteByID(ctx context.Context, keyID string) error
}

// KeyStore holds the live keys of the catalog. A key is only used inside
// the callbacks, which run while the store holds that key exclusively.
type KeyStore interface {
	// Put takes ownership of key under id.
	Put(id string, key *crypto.Key) error
	// With runs fn with the key stored under id.
	With(id string, fn func(key *crypto.Key) error) error
	// WithPair runs fn with two distinct keys held at once.
	WithPair(firstID, secondID string, fn func(first, second *crypto.Key) error) error
	// Delete removes and closes the key stored under id.
	Delete(id string) error
	// Close closes every key.
	Close() error
}
