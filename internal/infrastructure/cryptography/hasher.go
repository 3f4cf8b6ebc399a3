package cryptography

import (
	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/resource"
)

// Hash returns the digest of data.
func (p *Provider) Hash(algorithm *crypto.Algorithm, data []byte) ([]byte, error) {
	algorithm, err := crypto.Validate(algorithm, crypto.ScopeDigest)
	if err != nil {
		return nil, err
	}
	if algorithm, err = p.resolve(algorithm, crypto.ScopeDigest); err != nil {
		return nil, err
	}

	return resource.Run(func(s *resource.Scope) ([]byte, error) {
		ctx, err := p.engine.NewDigestContext()
		if err != nil {
			return nil, backendError(p.engine, crypto.ErrDigest, "create digest context", err)
		}
		ctx = resource.Acquire(s, ctx, p.engine.FreeDigestContext)

		if err := p.engine.DigestInit(ctx, algorithm.Name); err != nil {
			return nil, backendError(p.engine, crypto.ErrDigest, "digest init", err)
		}
		if err := p.engine.DigestUpdate(ctx, data); err != nil {
			return nil, backendError(p.engine, crypto.ErrDigest, "digest update", err)
		}
		size, err := p.engine.DigestSize(ctx)
		if err != nil {
			return nil, backendError(p.engine, crypto.ErrDigest, "digest size", err)
		}
		out := make([]byte, size)
		n, err := p.engine.DigestFinal(ctx, out)
		if err != nil {
			return nil, backendError(p.engine, crypto.ErrDigest, "digest final", err)
		}
		return out[:n], nil
	})
}

// HashString returns the digest of the UTF-8 bytes of s.
func (p *Provider) HashString(algorithm *crypto.Algorithm, s string) ([]byte, error) {
	return p.Hash(algorithm, []byte(s))
}
