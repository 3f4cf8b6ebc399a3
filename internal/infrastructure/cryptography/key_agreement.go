package cryptography

import (
	"fmt"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/logger"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/resource"
)

// KeyAgreement derives shared secrets from one private key. The key is
// borrowed and must stay open while the agreement is used.
type KeyAgreement struct {
	engine  crypto.CryptoEngine
	private *crypto.Key
	logger  logger.Logger
}

// NewKeyAgreement binds a private key of a key agreement algorithm.
func NewKeyAgreement(engine crypto.CryptoEngine, private *crypto.Key, logger logger.Logger) (*KeyAgreement, error) {
	if private == nil {
		return nil, fmt.Errorf("%w: private key is required", crypto.ErrUnsupportedParameter)
	}
	if _, err := crypto.Validate(private.Algorithm(), crypto.ScopeKeyAgreement); err != nil {
		return nil, err
	}
	if err := requireKeyType(private, crypto.KeyTypePrivate, "key agreement"); err != nil {
		return nil, err
	}
	return &KeyAgreement{engine: engine, private: private, logger: logger}, nil
}

// GenerateSecret derives the secret shared with the owner of peer. Both
// sides obtain the same bytes.
func (a *KeyAgreement) GenerateSecret(peer *crypto.Key) ([]byte, error) {
	if peer == nil {
		return nil, fmt.Errorf("%w: peer key is required", crypto.ErrUnsupportedParameter)
	}
	if err := requireKeyType(peer, crypto.KeyTypePublic, "key agreement"); err != nil {
		return nil, err
	}
	if peer.Algorithm().Name != a.private.Algorithm().Name {
		return nil, crypto.NewOperationError(crypto.ErrInitialization, "key agreement",
			fmt.Errorf("peer key is %s, private key is %s", peer.Algorithm().Name, a.private.Algorithm().Name))
	}
	private, err := a.private.Handle()
	if err != nil {
		return nil, err
	}
	public, err := peer.Handle()
	if err != nil {
		return nil, err
	}

	secret, err := resource.Run(func(s *resource.Scope) ([]byte, error) {
		ctx, err := a.engine.NewKeyContext(private)
		if err != nil {
			return nil, backendError(a.engine, crypto.ErrInitialization, "create key context", err)
		}
		ctx = resource.Acquire(s, ctx, a.engine.FreeContext)

		if err := a.engine.DeriveInit(ctx); err != nil {
			return nil, backendError(a.engine, crypto.ErrInitialization, "derive init", err)
		}
		if err := a.engine.DeriveSetPeer(ctx, public); err != nil {
			return nil, backendError(a.engine, crypto.ErrInitialization, "set peer", err)
		}

		size, err := a.engine.Derive(ctx, nil)
		if err != nil {
			return nil, backendError(a.engine, crypto.ErrAgreement, "secret size", err)
		}
		out := make([]byte, size)
		n, err := a.engine.Derive(ctx, out)
		if err != nil {
			return nil, backendError(a.engine, crypto.ErrAgreement, "derive", err)
		}
		return out[:n], nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("Derived ", len(secret), " byte ", a.private.Algorithm().Name, " secret")
	return secret, nil
}

// Agree derives the secret between private and peer.
func (p *Provider) Agree(private, peer *crypto.Key) ([]byte, error) {
	agreement, err := NewKeyAgreement(p.engine, private, p.logger)
	if err != nil {
		return nil, err
	}
	return agreement.GenerateSecret(peer)
}
