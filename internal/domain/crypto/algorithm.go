package crypto

import (
	"slices"
	"strings"
)

// Algorithm describes what an algorithm supports. Table algorithms are
// package-level values built once at start-up and never mutated.
type Algorithm struct {
	Name string
	// ID is the numeric engine identifier; AlgorithmIDUnknown for unchecked algorithms.
	ID     AlgorithmID
	Scopes []Scope
	// SupportedSizes reports whether a key, prime or digest size in bits is valid.
	SupportedSizes      func(bits int) bool
	SupportedBlockModes []BlockMode
	SupportedPaddings   []Padding
	SupportedDigests    []string
	DefaultBlockMode    BlockMode
	DefaultPadding      Padding
	DefaultDigest       string
	DefaultSize         int

	unchecked bool
}

// HasScope reports whether the algorithm declares scope. Unchecked algorithms declare every scope.
func (a *Algorithm) HasScope(scope Scope) bool {
	return a.unchecked || slices.Contains(a.Scopes, scope)
}

// IsUnchecked reports whether the algorithm bypasses the static table.
func (a *Algorithm) IsUnchecked() bool {
	return a.unchecked
}

// SupportsSize reports whether bits is a valid size for the algorithm.
func (a *Algorithm) SupportsSize(bits int) bool {
	if a.unchecked || a.SupportedSizes == nil {
		return true
	}
	return a.SupportedSizes(bits)
}

func (a *Algorithm) String() string {
	return a.Name
}

func sizes(valid ...int) func(int) bool {
	return func(bits int) bool {
		return slices.Contains(valid, bits)
	}
}

var (
	// AES is the Advanced Encryption Standard block cipher
	AES = &Algorithm{
		Name:                "AES",
		ID:                  AlgorithmIDAES,
		Scopes:              []Scope{ScopeCipher, ScopeKeyGenerator},
		SupportedSizes:      sizes(128, 192, 256),
		SupportedBlockModes: []BlockMode{BlockModeECB, BlockModeCBC, BlockModeCTR, BlockModeGCM},
		SupportedPaddings:   []Padding{PaddingNone, PaddingPKCS7},
		DefaultBlockMode:    BlockModeCBC,
		DefaultPadding:      PaddingPKCS7,
		DefaultSize:         256,
	}

	// ChaCha20Poly1305 is the ChaCha20 stream cipher with a Poly1305 authenticator
	ChaCha20Poly1305 = &Algorithm{
		Name:                "ChaCha20-Poly1305",
		ID:                  AlgorithmIDChaCha20Poly1305,
		Scopes:              []Scope{ScopeCipher, ScopeKeyGenerator},
		SupportedSizes:      sizes(256),
		SupportedBlockModes: []BlockMode{BlockModePoly1305},
		SupportedPaddings:   []Padding{PaddingNone},
		DefaultBlockMode:    BlockModePoly1305,
		DefaultPadding:      PaddingNone,
		DefaultSize:         256,
	}

	// RSA supports public-key encryption and signatures
	RSA = &Algorithm{
		Name:              "RSA",
		ID:                AlgorithmIDRSA,
		Scopes:            []Scope{ScopeCipher, ScopeKeypairGenerator, ScopeSignature},
		SupportedSizes:    sizes(1024, 2048, 3072, 4096),
		SupportedPaddings: []Padding{PaddingPKCS1, PaddingOAEP, PaddingPSS},
		SupportedDigests:  []string{DigestSHA256, DigestSHA384, DigestSHA512},
		DefaultPadding:    PaddingPKCS1,
		DefaultDigest:     DigestSHA256,
		DefaultSize:       2048,
	}

	// EC is ECDSA over the NIST prime curves
	EC = &Algorithm{
		Name:             "EC",
		ID:               AlgorithmIDEC,
		Scopes:           []Scope{ScopeKeypairGenerator, ScopeSignature},
		SupportedSizes:   sizes(256, 384, 521),
		SupportedDigests: []string{DigestSHA256, DigestSHA384, DigestSHA512},
		DefaultDigest:    DigestSHA256,
		DefaultSize:      256,
	}

	// ECDH is elliptic curve Diffie-Hellman over the NIST prime curves
	ECDH = &Algorithm{
		Name:           "ECDH",
		ID:             AlgorithmIDECDH,
		Scopes:         []Scope{ScopeKeypairGenerator, ScopeKeyAgreement},
		SupportedSizes: sizes(256, 384, 521),
		DefaultSize:    256,
	}

	// DH is finite field Diffie-Hellman
	DH = &Algorithm{
		Name:   "DH",
		ID:     AlgorithmIDDH,
		Scopes: []Scope{ScopeParameterGenerator, ScopeKeypairGenerator, ScopeKeyAgreement},
		SupportedSizes: func(bits int) bool {
			return bits >= 512 && bits <= 8192 && bits%64 == 0
		},
		DefaultSize: 2048,
	}

	// X25519 is Diffie-Hellman over Curve25519
	X25519 = &Algorithm{
		Name:           "X25519",
		ID:             AlgorithmIDX25519,
		Scopes:         []Scope{ScopeKeypairGenerator, ScopeKeyAgreement},
		SupportedSizes: sizes(256),
		DefaultSize:    256,
	}

	// Ed25519 is the Edwards-curve signature scheme; it signs messages directly without a separate digest
	Ed25519 = &Algorithm{
		Name:           "Ed25519",
		ID:             AlgorithmIDEd25519,
		Scopes:         []Scope{ScopeKeypairGenerator, ScopeSignature},
		SupportedSizes: sizes(256),
		DefaultSize:    256,
	}

	// MLDSA65 is the ML-DSA-65 post-quantum signature scheme (FIPS 204), security category 3
	MLDSA65 = &Algorithm{
		Name:           "ML-DSA-65",
		ID:             AlgorithmIDMLDSA65,
		Scopes:         []Scope{ScopeKeypairGenerator, ScopeSignature},
		SupportedSizes: sizes(192),
		DefaultSize:    192,
	}

	// SHA256 is the SHA-2 digest with 256-bit output
	SHA256 = digestAlgorithm(DigestSHA256, AlgorithmIDSHA256, 256)
	// SHA384 is the SHA-2 digest with 384-bit output
	SHA384 = digestAlgorithm(DigestSHA384, AlgorithmIDSHA384, 384)
	// SHA512 is the SHA-2 digest with 512-bit output
	SHA512 = digestAlgorithm(DigestSHA512, AlgorithmIDSHA512, 512)
	// SHA3_256 is the SHA-3 digest with 256-bit output
	SHA3_256 = digestAlgorithm(DigestSHA3_256, AlgorithmIDSHA3_256, 256)
	// SHA3_512 is the SHA-3 digest with 512-bit output
	SHA3_512 = digestAlgorithm(DigestSHA3_512, AlgorithmIDSHA3_512, 512)
)

func digestAlgorithm(name string, id AlgorithmID, bits int) *Algorithm {
	return &Algorithm{
		Name:           name,
		ID:             id,
		Scopes:         []Scope{ScopeDigest},
		SupportedSizes: sizes(bits),
		DefaultSize:    bits,
	}
}

var algorithmTable = []*Algorithm{
	AES, ChaCha20Poly1305, RSA, EC, ECDH, DH, X25519, Ed25519, MLDSA65,
	SHA256, SHA384, SHA512, SHA3_256, SHA3_512,
}

// Algorithms returns the full static algorithm table.
func Algorithms() []*Algorithm {
	return slices.Clone(algorithmTable)
}

// AlgorithmsWithScope returns every table algorithm that declares scope.
func AlgorithmsWithScope(scope Scope) []*Algorithm {
	var matching []*Algorithm
	for _, alg := range algorithmTable {
		if alg.HasScope(scope) {
			matching = append(matching, alg)
		}
	}
	return matching
}

// AlgorithmByName looks up a table algorithm, ignoring case.
func AlgorithmByName(name string) (*Algorithm, bool) {
	for _, alg := range algorithmTable {
		if strings.EqualFold(alg.Name, name) {
			return alg, true
		}
	}
	return nil, false
}

// AlgorithmByID looks up a table algorithm by its engine identifier.
func AlgorithmByID(id AlgorithmID) (*Algorithm, bool) {
	for _, alg := range algorithmTable {
		if alg.ID == id {
			return alg, true
		}
	}
	return nil, false
}

// Unchecked returns an algorithm outside the static table. It passes every
// scope check and is resolved by name at the first engine call, which fails
// if the engine does not know it.
func Unchecked(name string) *Algorithm {
	return &Algorithm{
		Name:      name,
		ID:        AlgorithmIDUnknown,
		unchecked: true,
	}
}
