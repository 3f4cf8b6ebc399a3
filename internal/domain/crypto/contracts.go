package crypto

import "math/big"

// Handle is an opaque reference to engine-owned state: a context, a key, a
// parameter set, a cipher primitive or a block of key material. The zero
// Handle is never valid. Every handle obtained from an engine must be released
// exactly once with the matching Free function.
type Handle uint64

// NilHandle is the invalid handle
const NilHandle Handle = 0

// KeyReleaser releases the handles a Key can own.
type KeyReleaser interface {
	// FreeKey releases a key or parameter handle.
	FreeKey(key Handle)
	// FreeData releases a key material handle.
	FreeData(data Handle)
}

// KeyOperations covers key and domain parameter generation and key material handling.
type KeyOperations interface {
	KeyReleaser

	// LookupAlgorithm resolves an algorithm name to the engine identifier.
	LookupAlgorithm(name string) (AlgorithmID, error)

	// NewGenerationContext creates a generation context for an algorithm.
	NewGenerationContext(id AlgorithmID) (Handle, error)
	// NewGenerationContextFromParameters creates a generation context seeded with a domain parameter handle.
	NewGenerationContextFromParameters(params Handle) (Handle, error)
	// NewKeyContext creates an operation context bound to a key, used for asymmetric transforms and derivation.
	NewKeyContext(key Handle) (Handle, error)
	// FreeContext releases a generation or key context.
	FreeContext(ctx Handle)

	KeygenInit(ctx Handle) error
	ParamgenInit(ctx Handle) error
	SetIntParameter(ctx Handle, name string, value int) error
	SetStringParameter(ctx Handle, name, value string) error
	Keygen(ctx Handle) (Handle, error)
	Paramgen(ctx Handle) (Handle, error)

	// PublicKeyOnly returns a new handle that carries only the public half of key.
	PublicKeyOnly(key Handle) (Handle, error)
	// KeyBits reports the size of a key in bits.
	KeyBits(key Handle) (int, error)
	// IsPrivateKey reports whether the handle holds private material.
	IsPrivateKey(key Handle) (bool, error)
	// GetBigNumParameter reads a big number field (FieldPrime, FieldGenerator) of a key or parameter handle.
	GetBigNumParameter(key Handle, name string) (*big.Int, error)
	// NewParameters builds a domain parameter handle from its fields.
	NewParameters(id AlgorithmID, fields map[string]*big.Int) (Handle, error)

	// EncodeKeyPEM serializes a key handle to PEM.
	EncodeKeyPEM(key Handle) ([]byte, error)
	// DecodeKeyPEM parses a PEM key for the algorithm into a new key handle.
	DecodeKeyPEM(id AlgorithmID, data []byte) (Handle, error)

	// NewRandomData creates a handle holding size random bytes.
	NewRandomData(size int) (Handle, error)
	// NewData creates a handle holding a copy of material.
	NewData(material []byte) (Handle, error)
	// DataBytes returns a copy of the bytes held by a data handle.
	DataBytes(data Handle) ([]byte, error)
}

// CipherOperations covers symmetric encryption.
type CipherOperations interface {
	// FetchCipher resolves the primitive for name, block mode and key size.
	FetchCipher(name string, mode BlockMode, keyBits int) (Handle, error)
	FreeCipher(cipher Handle)
	CipherBlockSize(cipher Handle) (int, error)

	NewCipherContext() (Handle, error)
	FreeCipherContext(ctx Handle)
	// CipherInit prepares ctx; a nil iv is valid for modes that take none.
	CipherInit(ctx, cipher Handle, key, iv []byte, encrypt bool) error
	CipherSetPadding(ctx Handle, enabled bool) error
	CipherSetTagLength(ctx Handle, tagLength int) error
	CipherSetAAD(ctx Handle, aad []byte) error
	CipherUpdate(ctx Handle, out, in []byte) (int, error)
	CipherFinal(ctx Handle, out []byte) (int, error)
}

// AsymmetricOperations covers public-key transforms and secret derivation on
// key contexts. Calls taking an out buffer report the required length when
// out is nil.
type AsymmetricOperations interface {
	EncryptInit(ctx Handle) error
	DecryptInit(ctx Handle) error
	SetPadding(ctx Handle, padding Padding, digest string) error
	Encrypt(ctx Handle, out, in []byte) (int, error)
	Decrypt(ctx Handle, out, in []byte) (int, error)

	DeriveInit(ctx Handle) error
	DeriveSetPeer(ctx, peer Handle) error
	Derive(ctx Handle, out []byte) (int, error)
}

// DigestOperations covers plain digests and digest-based signatures.
type DigestOperations interface {
	NewDigestContext() (Handle, error)
	FreeDigestContext(ctx Handle)

	DigestInit(ctx Handle, digest string) error
	DigestUpdate(ctx Handle, data []byte) error
	DigestSize(ctx Handle) (int, error)
	DigestFinal(ctx Handle, out []byte) (int, error)

	// DigestSignInit binds a private key; digest is empty for schemes that sign messages directly.
	DigestSignInit(ctx Handle, digest string, key Handle, padding Padding) error
	// DigestSign reports the maximum signature length when out is nil.
	DigestSign(ctx Handle, out, data []byte) (int, error)
	DigestVerifyInit(ctx Handle, digest string, key Handle, padding Padding) error
	// DigestVerify returns false with a nil error for a signature that does not verify.
	DigestVerify(ctx Handle, signature, data []byte) (bool, error)
}

// ErrorQueue exposes the engine's pending error entries.
type ErrorQueue interface {
	// PopError removes and returns the oldest entry; ok is false once the queue is empty.
	PopError() (entry EngineError, ok bool)
}

// CryptoEngine is the handle-based native backend the protocols drive.
type CryptoEngine interface {
	Name() string
	KeyOperations
	CipherOperations
	AsymmetricOperations
	DigestOperations
	ErrorQueue
}

// Provider is the facade the application drives. It validates algorithm and
// parameter choices against the capability table and runs the matching
// protocol against one engine.
type Provider interface {
	// EngineName names the backend the provider drives.
	EngineName() string

	GenerateKey(algorithm *Algorithm, params *KeyGeneratorParameters) (*Key, error)
	GenerateKeyPair(algorithm *Algorithm, params *KeyPairGeneratorParameters) (*KeyPair, error)
	GenerateKeyPairFromParameters(params *DomainParameters) (*KeyPair, error)
	GenerateParameters(algorithm *Algorithm, params *DomainParameterGeneratorParameters) (*DomainParameters, error)

	// Cipher encrypts or decrypts input with key; aad is only accepted by AEAD modes.
	Cipher(key *Key, params *CipherParameters, input, aad []byte) ([]byte, error)
	Sign(key *Key, params *SignatureParameters, data []byte) ([]byte, error)
	// Verify returns false with a nil error for a signature that does not verify.
	Verify(key *Key, params *SignatureParameters, signature, data []byte) (bool, error)
	Agree(private, peer *Key) ([]byte, error)

	Hash(algorithm *Algorithm, data []byte) ([]byte, error)

	// ExportKey returns PEM for asymmetric keys and raw bytes for symmetric keys.
	ExportKey(key *Key) ([]byte, error)
	// ImportKey is the inverse of ExportKey; keyType selects the raw or PEM form.
	ImportKey(algorithm *Algorithm, keyType KeyType, data []byte) (*Key, error)
	EncodeParameters(params *DomainParameters) ([]byte, error)
	DecodeParameters(algorithm *Algorithm, data []byte) (*DomainParameters, error)
}
