package cryptography

import (
	"fmt"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/logger"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/resource"
)

// SignatureEngine signs or verifies with one key. It borrows the key, which
// must stay open while the engine is used. Not safe for concurrent use.
type SignatureEngine struct {
	engine crypto.CryptoEngine
	key    *crypto.Key
	params crypto.SignatureParameters
	logger logger.Logger
}

// NewSignatureEngine checks that key can play the role params.Mode asks for:
// signing needs a private key and verification a public one.
func NewSignatureEngine(engine crypto.CryptoEngine, key *crypto.Key, params *crypto.SignatureParameters, logger logger.Logger) (*SignatureEngine, error) {
	if key == nil || params == nil {
		return nil, fmt.Errorf("%w: key and signature parameters are required", crypto.ErrUnsupportedParameter)
	}
	algorithm, err := crypto.Validate(key.Algorithm(), crypto.ScopeSignature)
	if err != nil {
		return nil, err
	}

	filled := *params
	if filled.Digest == "" {
		filled.Digest = algorithm.DefaultDigest
	}
	if filled.Padding == "" && algorithm == crypto.RSA {
		filled.Padding = algorithm.DefaultPadding
	}
	if _, err := crypto.ValidateParameters(algorithm, &filled); err != nil {
		return nil, err
	}
	if filled.Padding == crypto.PaddingOAEP {
		return nil, fmt.Errorf("%w: padding %s cannot sign", crypto.ErrUnsupportedParameter, filled.Padding)
	}

	want := crypto.KeyTypePrivate
	if filled.Mode == crypto.ModeVerify {
		want = crypto.KeyTypePublic
	}
	if err := requireKeyType(key, want, string(filled.Mode)); err != nil {
		return nil, err
	}

	return &SignatureEngine{
		engine: engine,
		key:    key,
		params: filled,
		logger: logger,
	}, nil
}

// Sign returns the signature of data.
func (e *SignatureEngine) Sign(data []byte) ([]byte, error) {
	if e.params.Mode != crypto.ModeSign {
		return nil, crypto.NewOperationError(crypto.ErrInitialization, "sign", fmt.Errorf("engine was created to %s", e.params.Mode))
	}
	handle, err := e.key.Handle()
	if err != nil {
		return nil, err
	}

	signature, err := resource.Run(func(s *resource.Scope) ([]byte, error) {
		ctx, err := e.newContext(s)
		if err != nil {
			return nil, err
		}
		if err := e.engine.DigestSignInit(ctx, e.params.Digest, handle, e.params.Padding); err != nil {
			return nil, backendError(e.engine, crypto.ErrInitialization, "sign init", err)
		}

		size, err := e.engine.DigestSign(ctx, nil, data)
		if err != nil {
			return nil, backendError(e.engine, crypto.ErrSignature, "signature size", err)
		}
		out := make([]byte, size)
		n, err := e.engine.DigestSign(ctx, out, data)
		if err != nil {
			return nil, backendError(e.engine, crypto.ErrSignature, "sign", err)
		}
		return out[:n], nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Signed ", len(data), " bytes with ", e.key)
	return signature, nil
}

// Verify reports whether signature is valid for data. A signature that does
// not verify is false with a nil error; errors mean the check could not run.
func (e *SignatureEngine) Verify(signature, data []byte) (bool, error) {
	if e.params.Mode != crypto.ModeVerify {
		return false, crypto.NewOperationError(crypto.ErrInitialization, "verify", fmt.Errorf("engine was created to %s", e.params.Mode))
	}
	handle, err := e.key.Handle()
	if err != nil {
		return false, err
	}

	valid, err := resource.Run(func(s *resource.Scope) (bool, error) {
		ctx, err := e.newContext(s)
		if err != nil {
			return false, err
		}
		if err := e.engine.DigestVerifyInit(ctx, e.params.Digest, handle, e.params.Padding); err != nil {
			return false, backendError(e.engine, crypto.ErrInitialization, "verify init", err)
		}

		valid, err := e.engine.DigestVerify(ctx, signature, data)
		if err != nil {
			return false, backendError(e.engine, crypto.ErrSignature, "verify", err)
		}
		return valid, nil
	})
	if err != nil {
		return false, err
	}

	if !valid {
		e.logger.Warn("Signature did not verify with ", e.key)
	}
	return valid, nil
}

func (e *SignatureEngine) newContext(s *resource.Scope) (crypto.Handle, error) {
	ctx, err := e.engine.NewDigestContext()
	if err != nil {
		return crypto.NilHandle, backendError(e.engine, crypto.ErrInitialization, "create digest context", err)
	}
	return resource.Acquire(s, ctx, e.engine.FreeDigestContext), nil
}

// Sign signs data with a private key.
func (p *Provider) Sign(key *crypto.Key, params *crypto.SignatureParameters, data []byte) ([]byte, error) {
	withMode := crypto.SignatureParameters{Mode: crypto.ModeSign}
	if params != nil {
		withMode.Padding, withMode.Digest = params.Padding, params.Digest
	}
	signer, err := NewSignatureEngine(p.engine, key, &withMode, p.logger)
	if err != nil {
		return nil, err
	}
	return signer.Sign(data)
}

// Verify checks a signature with a public key.
func (p *Provider) Verify(key *crypto.Key, params *crypto.SignatureParameters, signature, data []byte) (bool, error) {
	withMode := crypto.SignatureParameters{Mode: crypto.ModeVerify}
	if params != nil {
		withMode.Padding, withMode.Digest = params.Padding, params.Digest
	}
	verifier, err := NewSignatureEngine(p.engine, key, &withMode, p.logger)
	if err != nil {
		return false, err
	}
	return verifier.Verify(signature, data)
}
