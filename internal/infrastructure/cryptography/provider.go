package cryptography

import (
	"fmt"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/logger"
)

// Provider implements crypto.Provider over one engine. Its registries are
// filled by NewProvider and sealed before it returns.
type Provider struct {
	engine     crypto.CryptoEngine
	keyPairs   *Registry[KeyPairConfigurer]
	parameters *Registry[ParameterConfigurer]
	ciphers    *Registry[CipherFunc]
	logger     logger.Logger
}

// Option registers additional per-algorithm behaviour while a Provider is built.
type Option func(p *Provider) error

// WithGenerator registers a key pair configurer.
func WithGenerator(algorithm *crypto.Algorithm, configure KeyPairConfigurer) Option {
	return func(p *Provider) error {
		return p.keyPairs.Register(algorithm, configure)
	}
}

// WithParameterGenerator registers a domain parameter configurer.
func WithParameterGenerator(algorithm *crypto.Algorithm, configure ParameterConfigurer) Option {
	return func(p *Provider) error {
		return p.parameters.Register(algorithm, configure)
	}
}

// WithCipher registers a cipher implementation. The function receives the
// provider's engine.
func WithCipher(algorithm *crypto.Algorithm, cipher func(engine crypto.CryptoEngine) CipherFunc) Option {
	return func(p *Provider) error {
		return p.ciphers.Register(algorithm, cipher(p.engine))
	}
}

// NewProvider registers the built-in behaviour for every table algorithm,
// applies opts and seals the registries. Registering an algorithm twice
// fails with crypto.ErrAlreadyRegistered.
func NewProvider(engine crypto.CryptoEngine, logger logger.Logger, opts ...Option) (*Provider, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	p := &Provider{
		engine:     engine,
		keyPairs:   NewRegistry[KeyPairConfigurer](crypto.ScopeKeypairGenerator),
		parameters: NewRegistry[ParameterConfigurer](crypto.ScopeParameterGenerator),
		ciphers:    NewRegistry[CipherFunc](crypto.ScopeCipher),
		logger:     logger,
	}

	builtins := []Option{
		WithGenerator(crypto.RSA, ConfigureModulus),
		WithGenerator(crypto.EC, ConfigureCurve),
		WithGenerator(crypto.ECDH, ConfigureCurve),
		WithGenerator(crypto.DH, ConfigureNothing),
		WithGenerator(crypto.X25519, ConfigureNothing),
		WithGenerator(crypto.Ed25519, ConfigureNothing),
		WithGenerator(crypto.MLDSA65, ConfigureNothing),
		WithParameterGenerator(crypto.DH, ConfigureGroup),
		WithCipher(crypto.AES, BlockCipher),
		WithCipher(crypto.ChaCha20Poly1305, BlockCipher),
		WithCipher(crypto.RSA, AsymmetricCipher),
	}
	for _, opt := range append(builtins, opts...) {
		if err := opt(p); err != nil {
			return nil, fmt.Errorf("failed to build provider: %w", err)
		}
	}

	p.keyPairs.Seal()
	p.parameters.Seal()
	p.ciphers.Seal()

	p.logger.Info("Provider ready on engine ", engine.Name(), " with ciphers ", p.ciphers.Algorithms())
	return p, nil
}

// EngineName names the backend the provider drives
func (p *Provider) EngineName() string { return p.engine.Name() }

// Engine returns the backend the provider drives
func (p *Provider) Engine() crypto.CryptoEngine { return p.engine }

var _ crypto.Provider = (*Provider)(nil)
