package cryptography

import (
	"fmt"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/resource"
)

// CipherFunc transforms input with key in the direction params.Mode names.
// params arrives validated with table defaults filled in.
type CipherFunc func(key *crypto.Key, params *crypto.CipherParameters, input, aad []byte) ([]byte, error)

const defaultTagLength = 16

func isAEAD(mode crypto.BlockMode) bool {
	return mode == crypto.BlockModeGCM || mode == crypto.BlockModePoly1305
}

func requireKeyType(key *crypto.Key, want crypto.KeyType, op string) error {
	if key.Type() != want {
		return crypto.NewOperationError(crypto.ErrInitialization, op,
			fmt.Errorf("%s needs a %s key, got %s", op, want, key.Type()))
	}
	return nil
}

// BlockCipher returns the CipherFunc for symmetric ciphers. The output buffer
// is sized for the input plus one block of padding plus the AEAD tag, and is
// truncated to what update and final actually produced. AEAD output is the
// ciphertext followed by the tag.
func BlockCipher(engine crypto.CryptoEngine) CipherFunc {
	return func(key *crypto.Key, params *crypto.CipherParameters, input, aad []byte) ([]byte, error) {
		op := string(params.Mode)
		if err := requireKeyType(key, crypto.KeyTypeSymmetric, op); err != nil {
			return nil, err
		}
		aead := isAEAD(params.BlockMode)
		if len(aad) > 0 && !aead {
			return nil, fmt.Errorf("%w: block mode %s takes no associated data", crypto.ErrUnsupportedParameter, params.BlockMode)
		}
		if params.TagLength != 0 && !aead {
			return nil, fmt.Errorf("%w: block mode %s takes no tag length", crypto.ErrUnsupportedParameter, params.BlockMode)
		}
		if len(params.IV) > 0 && params.BlockMode == crypto.BlockModeECB {
			return nil, fmt.Errorf("%w: block mode %s takes no iv", crypto.ErrUnsupportedParameter, params.BlockMode)
		}
		data, err := key.Handle()
		if err != nil {
			return nil, err
		}

		return resource.Run(func(s *resource.Scope) ([]byte, error) {
			material, err := engine.DataBytes(data)
			if err != nil {
				return nil, backendError(engine, crypto.ErrInitialization, "read key material", err)
			}
			s.Defer(func() { clear(material) })

			cipher, err := engine.FetchCipher(key.Algorithm().Name, params.BlockMode, key.Bits())
			if err != nil {
				return nil, backendError(engine, crypto.ErrUnsupportedConfiguration,
					fmt.Sprintf("fetch %s-%d-%s", key.Algorithm().Name, key.Bits(), params.BlockMode), err)
			}
			cipher = resource.Acquire(s, cipher, engine.FreeCipher)

			blockSize, err := engine.CipherBlockSize(cipher)
			if err != nil {
				return nil, backendError(engine, crypto.ErrInitialization, "read block size", err)
			}

			ctx, err := engine.NewCipherContext()
			if err != nil {
				return nil, backendError(engine, crypto.ErrInitialization, "create cipher context", err)
			}
			ctx = resource.Acquire(s, ctx, engine.FreeCipherContext)

			if err := engine.CipherInit(ctx, cipher, material, params.IV, params.Mode == crypto.ModeEncrypt); err != nil {
				return nil, backendError(engine, crypto.ErrInitialization, "cipher init", err)
			}
			if params.BlockMode == crypto.BlockModeECB || params.BlockMode == crypto.BlockModeCBC {
				if err := engine.CipherSetPadding(ctx, params.Padding != crypto.PaddingNone); err != nil {
					return nil, backendError(engine, crypto.ErrInitialization, "set padding", err)
				}
			}

			tagLength := 0
			if aead {
				tagLength = params.TagLength
				if tagLength == 0 {
					tagLength = defaultTagLength
				}
				if err := engine.CipherSetTagLength(ctx, tagLength); err != nil {
					return nil, backendError(engine, crypto.ErrInitialization, "set tag length", err)
				}
				if len(aad) > 0 {
					if err := engine.CipherSetAAD(ctx, aad); err != nil {
						return nil, backendError(engine, crypto.ErrInitialization, "set associated data", err)
					}
				}
			}

			out := make([]byte, len(input)+blockSize+tagLength)
			n, err := engine.CipherUpdate(ctx, out, input)
			if err != nil {
				return nil, backendError(engine, crypto.ErrCipher, "cipher update", err)
			}
			m, err := engine.CipherFinal(ctx, out[n:])
			if err != nil {
				return nil, backendError(engine, crypto.ErrCipher, "cipher final", err)
			}
			return out[:n+m], nil
		})
	}
}

// AsymmetricCipher returns the CipherFunc for public-key encryption.
// Encryption needs a public key and decryption a private key. The output
// length is asked from the engine before the real call.
func AsymmetricCipher(engine crypto.CryptoEngine) CipherFunc {
	return func(key *crypto.Key, params *crypto.CipherParameters, input, aad []byte) ([]byte, error) {
		op := string(params.Mode)
		encrypt := params.Mode == crypto.ModeEncrypt
		want := crypto.KeyTypePrivate
		if encrypt {
			want = crypto.KeyTypePublic
		}
		if err := requireKeyType(key, want, op); err != nil {
			return nil, err
		}
		if len(aad) > 0 {
			return nil, fmt.Errorf("%w: %s takes no associated data", crypto.ErrUnsupportedParameter, key.Algorithm().Name)
		}
		if params.Padding != crypto.PaddingPKCS1 && params.Padding != crypto.PaddingOAEP {
			return nil, fmt.Errorf("%w: padding %s cannot encrypt", crypto.ErrUnsupportedParameter, params.Padding)
		}
		handle, err := key.Handle()
		if err != nil {
			return nil, err
		}

		return resource.Run(func(s *resource.Scope) ([]byte, error) {
			ctx, err := engine.NewKeyContext(handle)
			if err != nil {
				return nil, backendError(engine, crypto.ErrInitialization, "create key context", err)
			}
			ctx = resource.Acquire(s, ctx, engine.FreeContext)

			transform := engine.Decrypt
			initialize := engine.DecryptInit
			if encrypt {
				transform = engine.Encrypt
				initialize = engine.EncryptInit
			}
			if err := initialize(ctx); err != nil {
				return nil, backendError(engine, crypto.ErrInitialization, op+" init", err)
			}
			if err := engine.SetPadding(ctx, params.Padding, key.Algorithm().DefaultDigest); err != nil {
				return nil, backendError(engine, crypto.ErrInitialization, "set padding", err)
			}

			size, err := transform(ctx, nil, input)
			if err != nil {
				return nil, backendError(engine, crypto.ErrCipher, op+" size", err)
			}
			out := make([]byte, size)
			n, err := transform(ctx, out, input)
			if err != nil {
				return nil, backendError(engine, crypto.ErrCipher, op, err)
			}
			return out[:n], nil
		})
	}
}

// Cipher validates params against the key's algorithm, fills in the table
// defaults and dispatches to the registered CipherFunc.
func (p *Provider) Cipher(key *crypto.Key, params *crypto.CipherParameters, input, aad []byte) ([]byte, error) {
	if key == nil || params == nil {
		return nil, fmt.Errorf("%w: key and cipher parameters are required", crypto.ErrUnsupportedParameter)
	}
	algorithm, err := crypto.Validate(key.Algorithm(), crypto.ScopeCipher)
	if err != nil {
		return nil, err
	}

	filled := *params
	if filled.BlockMode == "" {
		filled.BlockMode = algorithm.DefaultBlockMode
	}
	if filled.Padding == "" {
		filled.Padding = algorithm.DefaultPadding
	}
	if _, err := crypto.ValidateParameters(algorithm, &filled); err != nil {
		return nil, err
	}

	transform, err := p.ciphers.Lookup(algorithm)
	if err != nil {
		if !algorithm.IsUnchecked() {
			return nil, err
		}
		resolved, rerr := p.resolve(algorithm, crypto.ScopeCipher)
		if rerr != nil {
			return nil, rerr
		}
		if transform, err = p.ciphers.Lookup(resolved); err != nil {
			return nil, err
		}
	}

	output, err := transform(key, &filled, input, aad)
	if err != nil {
		p.logger.Error("Cipher operation failed for ", key, ": ", err)
		return nil, err
	}
	return output, nil
}
