//go:build unit
// +build unit

package cryptography

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/infrastructure/engine"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProvider(t *testing.T, opts ...Option) (*Provider, *engine.SoftwareEngine) {
	t.Helper()

	software, err := engine.NewSoftwareEngine(testutil.DefaultEngineSettings(), testutil.SetupTestLogger(t))
	require.NoError(t, err)

	provider, err := NewProvider(software, testutil.SetupTestLogger(t), opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.Zero(t, software.LiveHandles(), "every engine handle must be released")
	})
	return provider, software
}

func closeKeys(t *testing.T, closers ...interface{ Close() error }) {
	t.Helper()
	for _, c := range closers {
		require.NoError(t, c.Close())
	}
}

func TestProvider_GenerateKeyPair(t *testing.T) {
	provider, _ := setupProvider(t)

	tests := []struct {
		name      string
		algorithm *crypto.Algorithm
		params    *crypto.KeyPairGeneratorParameters
		wantBits  int
	}{
		{"RSA 1024", crypto.RSA, &crypto.KeyPairGeneratorParameters{Bits: 1024}, 1024},
		{"EC default", crypto.EC, nil, 256},
		{"EC by curve", crypto.EC, &crypto.KeyPairGeneratorParameters{Curve: crypto.CurveP384}, 384},
		{"ECDH P-521", crypto.ECDH, &crypto.KeyPairGeneratorParameters{Bits: 521}, 521},
		{"X25519", crypto.X25519, nil, 256},
		{"Ed25519", crypto.Ed25519, nil, 256},
		{"ML-DSA-65", crypto.MLDSA65, nil, 192},
		{"DH with fresh parameters", crypto.DH, &crypto.KeyPairGeneratorParameters{Bits: 512}, 512},
		{"unchecked name", crypto.Unchecked("ed25519"), nil, 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := provider.GenerateKeyPair(tt.algorithm, tt.params)
			require.NoError(t, err)
			defer closeKeys(t, pair)

			assert.Equal(t, crypto.KeyTypePublic, pair.Public.Type())
			assert.Equal(t, crypto.KeyTypePrivate, pair.Private.Type())
			assert.Equal(t, tt.wantBits, pair.Private.Bits())
			assert.Equal(t, tt.wantBits, pair.Public.Bits())
			assert.False(t, pair.Private.Algorithm().IsUnchecked(), "keys carry the resolved table algorithm")
		})
	}
}

func TestProvider_GenerateKeyPair_Rejects(t *testing.T) {
	provider, _ := setupProvider(t)

	_, err := provider.GenerateKeyPair(crypto.AES, nil)
	assert.ErrorIs(t, err, crypto.ErrUnsupportedScope)

	_, err = provider.GenerateKeyPair(crypto.RSA, &crypto.KeyPairGeneratorParameters{Bits: 1000})
	assert.ErrorIs(t, err, crypto.ErrUnsupportedParameter)

	_, err = provider.GenerateKeyPair(crypto.Ed25519, &crypto.KeyPairGeneratorParameters{Curve: crypto.CurveP256})
	assert.ErrorIs(t, err, crypto.ErrUnsupportedParameter)

	_, err = provider.GenerateKeyPair(crypto.Unchecked("NOPE"), nil)
	assert.ErrorIs(t, err, crypto.ErrInitialization)

	_, err = provider.GenerateKeyPair(crypto.Unchecked("SHA-256"), nil)
	assert.ErrorIs(t, err, crypto.ErrInitialization)
}

func TestKeyPairBits_UnknownCurve(t *testing.T) {
	_, err := keyPairBits(crypto.EC, &crypto.KeyPairGeneratorParameters{Curve: "P-192"})
	assert.ErrorIs(t, err, crypto.ErrUnsupportedParameter)

	bits, err := keyPairBits(crypto.ECDH, &crypto.KeyPairGeneratorParameters{Curve: crypto.CurveP521})
	require.NoError(t, err)
	assert.Equal(t, 521, bits)
}

func TestProvider_GenerateParameters(t *testing.T) {
	provider, _ := setupProvider(t)

	domain, err := provider.GenerateParameters(crypto.DH, &crypto.DomainParameterGeneratorParameters{Bits: 512})
	require.NoError(t, err)

	assert.Len(t, domain.PrimeBytes(), 64)
	assert.Equal(t, 512, domain.Bits())
	assert.Equal(t, int64(2), domain.Generator().Int64())
	assert.Same(t, crypto.DH, domain.Algorithm())

	_, err = provider.GenerateParameters(crypto.DH, &crypto.DomainParameterGeneratorParameters{Bits: 520})
	assert.ErrorIs(t, err, crypto.ErrUnsupportedParameter)

	_, err = provider.GenerateParameters(crypto.ECDH, &crypto.DomainParameterGeneratorParameters{Bits: 512})
	assert.ErrorIs(t, err, crypto.ErrUnsupportedScope)
}

func TestProvider_GenerateKey(t *testing.T) {
	provider, _ := setupProvider(t)

	key, err := provider.GenerateKey(crypto.AES, &crypto.KeyGeneratorParameters{Bits: 192})
	require.NoError(t, err)
	defer closeKeys(t, key)

	assert.Equal(t, crypto.KeyTypeSymmetric, key.Type())
	assert.Equal(t, 192, key.Bits())
	material, err := provider.ExportKey(key)
	require.NoError(t, err)
	assert.Len(t, material, 24)

	_, err = provider.GenerateKey(crypto.AES, &crypto.KeyGeneratorParameters{Bits: 100})
	assert.ErrorIs(t, err, crypto.ErrUnsupportedParameter)

	_, err = provider.GenerateKey(crypto.RSA, nil)
	assert.ErrorIs(t, err, crypto.ErrUnsupportedScope)
}

func TestProvider_AES128CBCZeroIV(t *testing.T) {
	provider, _ := setupProvider(t)

	key, err := provider.ImportKey(crypto.AES, crypto.KeyTypeSymmetric, make([]byte, 16))
	require.NoError(t, err)
	defer closeKeys(t, key)

	plaintext := []byte("This is a secret")
	iv := make([]byte, 16)

	ciphertext, err := provider.Cipher(key, &crypto.CipherParameters{Mode: crypto.ModeEncrypt, IV: iv}, plaintext, nil)
	require.NoError(t, err)
	assert.Len(t, ciphertext, 32, "a full block of PKCS7 padding follows a block-aligned input")

	decrypted, err := provider.Cipher(key, &crypto.CipherParameters{Mode: crypto.ModeDecrypt, IV: iv}, ciphertext, nil)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestProvider_SymmetricRoundTrip(t *testing.T) {
	provider, _ := setupProvider(t)

	iv := bytes.Repeat([]byte{0x42}, 16)
	nonce := bytes.Repeat([]byte{0x24}, 12)
	plaintext := []byte("attack at dawn, bring snacks and at least one umbrella")

	tests := []struct {
		name      string
		algorithm *crypto.Algorithm
		bits      int
		params    crypto.CipherParameters
		aad       []byte
		overhead  int
	}{
		{"AES-128-ECB", crypto.AES, 128, crypto.CipherParameters{BlockMode: crypto.BlockModeECB}, nil, 10},
		{"AES-192-CBC", crypto.AES, 192, crypto.CipherParameters{BlockMode: crypto.BlockModeCBC, IV: iv}, nil, 10},
		{"AES-256-CTR", crypto.AES, 256, crypto.CipherParameters{BlockMode: crypto.BlockModeCTR, IV: iv}, nil, 0},
		{"AES-256-GCM", crypto.AES, 256, crypto.CipherParameters{BlockMode: crypto.BlockModeGCM, IV: nonce}, nil, 16},
		{"AES-128-GCM short tag with aad", crypto.AES, 128, crypto.CipherParameters{BlockMode: crypto.BlockModeGCM, IV: nonce, TagLength: 12}, []byte("header"), 12},
		{"ChaCha20-Poly1305", crypto.ChaCha20Poly1305, 256, crypto.CipherParameters{IV: nonce}, []byte("header"), 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := provider.GenerateKey(tt.algorithm, &crypto.KeyGeneratorParameters{Bits: tt.bits})
			require.NoError(t, err)
			defer closeKeys(t, key)

			encrypt := tt.params
			encrypt.Mode = crypto.ModeEncrypt
			ciphertext, err := provider.Cipher(key, &encrypt, plaintext, tt.aad)
			require.NoError(t, err)
			assert.Len(t, ciphertext, len(plaintext)+tt.overhead)

			decrypt := tt.params
			decrypt.Mode = crypto.ModeDecrypt
			decrypted, err := provider.Cipher(key, &decrypt, ciphertext, tt.aad)
			require.NoError(t, err)
			assert.Equal(t, plaintext, decrypted)
		})
	}
}

func TestProvider_AEADRejectsTampering(t *testing.T) {
	provider, _ := setupProvider(t)

	key, err := provider.GenerateKey(crypto.ChaCha20Poly1305, nil)
	require.NoError(t, err)
	defer closeKeys(t, key)

	nonce := make([]byte, 12)
	ciphertext, err := provider.Cipher(key, &crypto.CipherParameters{Mode: crypto.ModeEncrypt, IV: nonce}, []byte("payload"), []byte("v1"))
	require.NoError(t, err)

	_, err = provider.Cipher(key, &crypto.CipherParameters{Mode: crypto.ModeDecrypt, IV: nonce}, ciphertext, []byte("v2"))
	assert.ErrorIs(t, err, crypto.ErrCipher)
}

func TestProvider_CipherRejects(t *testing.T) {
	sm4 := crypto.Unchecked("SM4")
	provider, software := setupProvider(t, WithCipher(sm4, BlockCipher))

	aesKey, err := provider.GenerateKey(crypto.AES, &crypto.KeyGeneratorParameters{Bits: 128})
	require.NoError(t, err)
	defer closeKeys(t, aesKey)

	t.Run("associated data on a non-AEAD mode", func(t *testing.T) {
		_, err := provider.Cipher(aesKey, &crypto.CipherParameters{Mode: crypto.ModeEncrypt, BlockMode: crypto.BlockModeECB}, []byte("x"), []byte("aad"))
		assert.ErrorIs(t, err, crypto.ErrUnsupportedParameter)
	})

	t.Run("tag length on a non-AEAD mode", func(t *testing.T) {
		params := &crypto.CipherParameters{Mode: crypto.ModeEncrypt, BlockMode: crypto.BlockModeCBC, IV: make([]byte, 16), TagLength: 12}
		_, err := provider.Cipher(aesKey, params, []byte("x"), nil)
		assert.ErrorIs(t, err, crypto.ErrUnsupportedParameter)
		assert.Equal(t, 1, software.LiveHandles(), "rejected before any engine call")
	})

	t.Run("iv on ECB", func(t *testing.T) {
		_, err := provider.Cipher(aesKey, &crypto.CipherParameters{Mode: crypto.ModeEncrypt, BlockMode: crypto.BlockModeECB, IV: make([]byte, 16)}, []byte("x"), nil)
		assert.ErrorIs(t, err, crypto.ErrUnsupportedParameter)
	})

	t.Run("tag length on GCM is accepted", func(t *testing.T) {
		params := &crypto.CipherParameters{Mode: crypto.ModeEncrypt, BlockMode: crypto.BlockModeGCM, IV: make([]byte, 12), TagLength: 12}
		out, err := provider.Cipher(aesKey, params, []byte("x"), nil)
		require.NoError(t, err)
		assert.Len(t, out, 1+12)
	})

	t.Run("block mode outside the table", func(t *testing.T) {
		_, err := provider.Cipher(aesKey, &crypto.CipherParameters{Mode: crypto.ModeEncrypt, BlockMode: crypto.BlockModePoly1305}, []byte("x"), nil)
		assert.ErrorIs(t, err, crypto.ErrUnsupportedParameter)
	})

	t.Run("missing iv fails at init", func(t *testing.T) {
		_, err := provider.Cipher(aesKey, &crypto.CipherParameters{Mode: crypto.ModeEncrypt, BlockMode: crypto.BlockModeCBC}, []byte("x"), nil)
		assert.ErrorIs(t, err, crypto.ErrInitialization)

		var entry crypto.EngineError
		assert.ErrorAs(t, err, &entry)
		_, queued := software.PopError()
		assert.False(t, queued, "the error queue is drained")
	})

	t.Run("unaligned input without padding", func(t *testing.T) {
		_, err := provider.Cipher(aesKey, &crypto.CipherParameters{Mode: crypto.ModeEncrypt, BlockMode: crypto.BlockModeECB, Padding: crypto.PaddingNone}, []byte("not sixteen"), nil)
		assert.ErrorIs(t, err, crypto.ErrCipher)
	})

	t.Run("engine has no primitive", func(t *testing.T) {
		data, err := software.NewData(make([]byte, 16))
		require.NoError(t, err)
		key := crypto.NewSymmetricKey(software, sm4, data, 128)
		defer closeKeys(t, key)

		_, err = provider.Cipher(key, &crypto.CipherParameters{Mode: crypto.ModeEncrypt, BlockMode: crypto.BlockModeCBC, IV: make([]byte, 16)}, []byte("x"), nil)
		assert.ErrorIs(t, err, crypto.ErrUnsupportedConfiguration)
	})

	t.Run("closed key", func(t *testing.T) {
		key, err := provider.GenerateKey(crypto.AES, nil)
		require.NoError(t, err)
		require.NoError(t, key.Close())

		_, err = provider.Cipher(key, &crypto.CipherParameters{Mode: crypto.ModeEncrypt, BlockMode: crypto.BlockModeECB}, []byte("x"), nil)
		assert.ErrorIs(t, err, crypto.ErrKeyClosed)
	})
}

func TestProvider_RSACipher(t *testing.T) {
	provider, _ := setupProvider(t)

	pair, err := provider.GenerateKeyPair(crypto.RSA, &crypto.KeyPairGeneratorParameters{Bits: 1024})
	require.NoError(t, err)
	defer closeKeys(t, pair)

	message := []byte("wrapped session key")

	for _, padding := range []crypto.Padding{crypto.PaddingPKCS1, crypto.PaddingOAEP} {
		t.Run(string(padding), func(t *testing.T) {
			ciphertext, err := provider.Cipher(pair.Public, &crypto.CipherParameters{Mode: crypto.ModeEncrypt, Padding: padding}, message, nil)
			require.NoError(t, err)
			assert.Len(t, ciphertext, 128)

			plaintext, err := provider.Cipher(pair.Private, &crypto.CipherParameters{Mode: crypto.ModeDecrypt, Padding: padding}, ciphertext, nil)
			require.NoError(t, err)
			assert.Equal(t, message, plaintext)
		})
	}

	t.Run("encrypt with private key", func(t *testing.T) {
		_, err := provider.Cipher(pair.Private, &crypto.CipherParameters{Mode: crypto.ModeEncrypt}, message, nil)
		assert.ErrorIs(t, err, crypto.ErrInitialization)
	})

	t.Run("decrypt with public key", func(t *testing.T) {
		_, err := provider.Cipher(pair.Public, &crypto.CipherParameters{Mode: crypto.ModeDecrypt}, message, nil)
		assert.ErrorIs(t, err, crypto.ErrInitialization)
	})

	t.Run("PSS cannot encrypt", func(t *testing.T) {
		_, err := provider.Cipher(pair.Public, &crypto.CipherParameters{Mode: crypto.ModeEncrypt, Padding: crypto.PaddingPSS}, message, nil)
		assert.ErrorIs(t, err, crypto.ErrUnsupportedParameter)
	})

	t.Run("symmetric key", func(t *testing.T) {
		data, err := provider.GenerateKey(crypto.AES, nil)
		require.NoError(t, err)
		defer closeKeys(t, data)

		_, err = AsymmetricCipher(provider.Engine())(data, &crypto.CipherParameters{Mode: crypto.ModeEncrypt, Padding: crypto.PaddingPKCS1}, message, nil)
		assert.ErrorIs(t, err, crypto.ErrInitialization)
	})
}

func TestProvider_SignVerify(t *testing.T) {
	provider, _ := setupProvider(t)

	tests := []struct {
		name      string
		algorithm *crypto.Algorithm
		keyParams *crypto.KeyPairGeneratorParameters
		params    *crypto.SignatureParameters
	}{
		{"RSA PKCS1 SHA-256", crypto.RSA, &crypto.KeyPairGeneratorParameters{Bits: 1024}, nil},
		{"RSA PSS SHA-384", crypto.RSA, &crypto.KeyPairGeneratorParameters{Bits: 1024}, &crypto.SignatureParameters{Padding: crypto.PaddingPSS, Digest: crypto.DigestSHA384}},
		{"ECDSA P-256", crypto.EC, nil, nil},
		{"ECDSA P-521 SHA-512", crypto.EC, &crypto.KeyPairGeneratorParameters{Curve: crypto.CurveP521}, &crypto.SignatureParameters{Digest: crypto.DigestSHA512}},
		{"Ed25519", crypto.Ed25519, nil, nil},
		{"ML-DSA-65", crypto.MLDSA65, nil, nil},
	}

	data := []byte("This is a test message.")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := provider.GenerateKeyPair(tt.algorithm, tt.keyParams)
			require.NoError(t, err)
			defer closeKeys(t, pair)

			signature, err := provider.Sign(pair.Private, tt.params, data)
			require.NoError(t, err)
			require.NotEmpty(t, signature)

			valid, err := provider.Verify(pair.Public, tt.params, signature, data)
			require.NoError(t, err)
			assert.True(t, valid)

			valid, err = provider.Verify(pair.Public, tt.params, signature, []byte("Modified message."))
			require.NoError(t, err)
			assert.False(t, valid)

			corrupted := bytes.Clone(signature)
			corrupted[len(corrupted)/2] ^= 0xFF
			valid, err = provider.Verify(pair.Public, tt.params, corrupted, data)
			require.NoError(t, err)
			assert.False(t, valid)
		})
	}
}

func TestSignatureEngine_RoleChecks(t *testing.T) {
	provider, software := setupProvider(t)

	pair, err := provider.GenerateKeyPair(crypto.Ed25519, nil)
	require.NoError(t, err)
	defer closeKeys(t, pair)

	logger := testutil.SetupTestLogger(t)

	_, err = NewSignatureEngine(software, pair.Public, &crypto.SignatureParameters{Mode: crypto.ModeSign}, logger)
	assert.ErrorIs(t, err, crypto.ErrInitialization)

	_, err = NewSignatureEngine(software, pair.Private, &crypto.SignatureParameters{Mode: crypto.ModeVerify}, logger)
	assert.ErrorIs(t, err, crypto.ErrInitialization)

	_, err = NewSignatureEngine(software, pair.Private, &crypto.SignatureParameters{Mode: crypto.ModeSign, Digest: crypto.DigestSHA256}, logger)
	assert.ErrorIs(t, err, crypto.ErrUnsupportedParameter)

	verifier, err := NewSignatureEngine(software, pair.Public, &crypto.SignatureParameters{Mode: crypto.ModeVerify}, logger)
	require.NoError(t, err)
	_, err = verifier.Sign([]byte("x"))
	assert.ErrorIs(t, err, crypto.ErrInitialization)

	x25519, err := provider.GenerateKeyPair(crypto.X25519, nil)
	require.NoError(t, err)
	defer closeKeys(t, x25519)

	_, err = NewSignatureEngine(software, x25519.Private, &crypto.SignatureParameters{Mode: crypto.ModeSign}, logger)
	assert.ErrorIs(t, err, crypto.ErrUnsupportedScope)
}

func TestProvider_KeyAgreement(t *testing.T) {
	provider, _ := setupProvider(t)

	dh, err := provider.GenerateParameters(crypto.DH, &crypto.DomainParameterGeneratorParameters{Bits: 512})
	require.NoError(t, err)

	tests := []struct {
		name       string
		generate   func() (*crypto.KeyPair, error)
		secretSize int
	}{
		{"DH 512", func() (*crypto.KeyPair, error) { return provider.GenerateKeyPairFromParameters(dh) }, 64},
		{"ECDH P-256", func() (*crypto.KeyPair, error) { return provider.GenerateKeyPair(crypto.ECDH, nil) }, 32},
		{"ECDH P-384", func() (*crypto.KeyPair, error) {
			return provider.GenerateKeyPair(crypto.ECDH, &crypto.KeyPairGeneratorParameters{Curve: crypto.CurveP384})
		}, 48},
		{"X25519", func() (*crypto.KeyPair, error) { return provider.GenerateKeyPair(crypto.X25519, nil) }, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alice, err := tt.generate()
			require.NoError(t, err)
			defer closeKeys(t, alice)
			bob, err := tt.generate()
			require.NoError(t, err)
			defer closeKeys(t, bob)

			aliceSecret, err := provider.Agree(alice.Private, bob.Public)
			require.NoError(t, err)
			bobSecret, err := provider.Agree(bob.Private, alice.Public)
			require.NoError(t, err)

			assert.Equal(t, aliceSecret, bobSecret)
			assert.Len(t, aliceSecret, tt.secretSize)
		})
	}

	t.Run("mismatched algorithms", func(t *testing.T) {
		ecdh, err := provider.GenerateKeyPair(crypto.ECDH, nil)
		require.NoError(t, err)
		defer closeKeys(t, ecdh)
		x25519, err := provider.GenerateKeyPair(crypto.X25519, nil)
		require.NoError(t, err)
		defer closeKeys(t, x25519)

		_, err = provider.Agree(ecdh.Private, x25519.Public)
		assert.ErrorIs(t, err, crypto.ErrInitialization)

		_, err = provider.Agree(ecdh.Public, ecdh.Public)
		assert.ErrorIs(t, err, crypto.ErrInitialization)
	})

	t.Run("different DH groups", func(t *testing.T) {
		alice, err := provider.GenerateKeyPairFromParameters(dh)
		require.NoError(t, err)
		defer closeKeys(t, alice)
		stranger, err := provider.GenerateKeyPair(crypto.DH, &crypto.KeyPairGeneratorParameters{Bits: 512})
		require.NoError(t, err)
		defer closeKeys(t, stranger)

		_, err = provider.Agree(alice.Private, stranger.Public)
		assert.ErrorIs(t, err, crypto.ErrInitialization)
	})
}

func TestProvider_Hash(t *testing.T) {
	provider, _ := setupProvider(t)

	tests := []struct {
		algorithm *crypto.Algorithm
		want      string
	}{
		{crypto.SHA256, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{crypto.SHA3_256, "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"},
		{crypto.Unchecked("sha-256"), "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm.Name, func(t *testing.T) {
			digest, err := provider.HashString(tt.algorithm, "abc")
			require.NoError(t, err)
			assert.Equal(t, tt.want, hex.EncodeToString(digest))
		})
	}

	sizes := map[*crypto.Algorithm]int{crypto.SHA384: 48, crypto.SHA512: 64, crypto.SHA3_512: 64}
	for algorithm, size := range sizes {
		digest, err := provider.Hash(algorithm, nil)
		require.NoError(t, err)
		assert.Len(t, digest, size, algorithm.Name)
	}

	_, err := provider.Hash(crypto.AES, []byte("abc"))
	assert.ErrorIs(t, err, crypto.ErrUnsupportedScope)

	_, err = provider.Hash(crypto.Unchecked("MD5"), []byte("abc"))
	assert.ErrorIs(t, err, crypto.ErrInitialization)
}

func TestProvider_ImportExport(t *testing.T) {
	provider, _ := setupProvider(t)

	t.Run("private key round trip", func(t *testing.T) {
		pair, err := provider.GenerateKeyPair(crypto.EC, nil)
		require.NoError(t, err)
		defer closeKeys(t, pair)

		encoded, err := provider.ExportKey(pair.Private)
		require.NoError(t, err)
		assert.Contains(t, string(encoded), "PRIVATE KEY")

		imported, err := provider.ImportKey(crypto.EC, crypto.KeyTypePrivate, encoded)
		require.NoError(t, err)
		defer closeKeys(t, imported)

		signature, err := provider.Sign(imported, nil, []byte("data"))
		require.NoError(t, err)
		valid, err := provider.Verify(pair.Public, nil, signature, []byte("data"))
		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("private PEM imported as public", func(t *testing.T) {
		pair, err := provider.GenerateKeyPair(crypto.X25519, nil)
		require.NoError(t, err)
		defer closeKeys(t, pair)

		encoded, err := provider.ExportKey(pair.Private)
		require.NoError(t, err)
		public, err := provider.ImportKey(crypto.X25519, crypto.KeyTypePublic, encoded)
		require.NoError(t, err)
		defer closeKeys(t, public)

		want, err := provider.ExportKey(pair.Public)
		require.NoError(t, err)
		got, err := provider.ExportKey(public)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("public PEM imported as private", func(t *testing.T) {
		pair, err := provider.GenerateKeyPair(crypto.Ed25519, nil)
		require.NoError(t, err)
		defer closeKeys(t, pair)

		encoded, err := provider.ExportKey(pair.Public)
		require.NoError(t, err)
		_, err = provider.ImportKey(crypto.Ed25519, crypto.KeyTypePrivate, encoded)
		assert.ErrorIs(t, err, crypto.ErrEncoding)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := provider.ImportKey(crypto.RSA, crypto.KeyTypePublic, []byte("not a pem"))
		assert.ErrorIs(t, err, crypto.ErrEncoding)

		_, err = provider.ImportKey(crypto.AES, crypto.KeyTypeSymmetric, make([]byte, 10))
		assert.ErrorIs(t, err, crypto.ErrUnsupportedParameter)
	})

	t.Run("domain parameters", func(t *testing.T) {
		domain, err := provider.GenerateParameters(crypto.DH, &crypto.DomainParameterGeneratorParameters{Bits: 512, Generator: 5})
		require.NoError(t, err)

		encoded, err := provider.EncodeParameters(domain)
		require.NoError(t, err)
		assert.Contains(t, string(encoded), "DH PARAMETERS")

		decoded, err := provider.DecodeParameters(crypto.DH, encoded)
		require.NoError(t, err)
		assert.Zero(t, domain.Prime().Cmp(decoded.Prime()))
		assert.Zero(t, domain.Generator().Cmp(decoded.Generator()))
	})
}

func TestProvider_BackendErrorAggregation(t *testing.T) {
	provider, software := setupProvider(t)

	key, err := provider.GenerateKey(crypto.AES, &crypto.KeyGeneratorParameters{Bits: 128})
	require.NoError(t, err)
	defer closeKeys(t, key)

	truncated := make([]byte, 15)
	_, err = provider.Cipher(key, &crypto.CipherParameters{Mode: crypto.ModeDecrypt, BlockMode: crypto.BlockModeCBC, IV: make([]byte, 16)}, truncated, nil)
	require.Error(t, err)

	var opErr *crypto.OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, crypto.ErrCipher, opErr.Kind)
	assert.Equal(t, "cipher final", opErr.Op)
	assert.Contains(t, err.Error(), "error:")

	_, queued := software.PopError()
	assert.False(t, queued)
}
