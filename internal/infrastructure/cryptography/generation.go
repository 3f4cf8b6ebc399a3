package cryptography

import (
	"fmt"
	"math/big"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/resource"
)

// KeyPairConfigurer applies algorithm parameters to an initialized key
// generation context. bits has already been validated against the table.
type KeyPairConfigurer func(engine crypto.KeyOperations, ctx crypto.Handle, bits int, params *crypto.KeyPairGeneratorParameters) error

// ParameterConfigurer applies algorithm parameters to an initialized domain
// parameter generation context.
type ParameterConfigurer func(engine crypto.KeyOperations, ctx crypto.Handle, params *crypto.DomainParameterGeneratorParameters) error

// ConfigureNothing is the configurer for algorithms with a fixed key size.
func ConfigureNothing(crypto.KeyOperations, crypto.Handle, int, *crypto.KeyPairGeneratorParameters) error {
	return nil
}

// ConfigureModulus sets the modulus size of an RSA context.
func ConfigureModulus(engine crypto.KeyOperations, ctx crypto.Handle, bits int, _ *crypto.KeyPairGeneratorParameters) error {
	return engine.SetIntParameter(ctx, crypto.ParamBits, bits)
}

// ConfigureCurve selects the named curve of an EC or ECDH context. An
// explicit curve wins over the size.
func ConfigureCurve(engine crypto.KeyOperations, ctx crypto.Handle, bits int, params *crypto.KeyPairGeneratorParameters) error {
	curve := params.Curve
	if curve == "" {
		var ok bool
		if curve, ok = crypto.CurveForSize(bits); !ok {
			return fmt.Errorf("no curve of %d bits", bits)
		}
	}
	return engine.SetStringParameter(ctx, crypto.ParamCurve, curve)
}

// ConfigureGroup sets the prime length and generator of a Diffie-Hellman
// parameter generation context.
func ConfigureGroup(engine crypto.KeyOperations, ctx crypto.Handle, params *crypto.DomainParameterGeneratorParameters) error {
	if err := engine.SetIntParameter(ctx, crypto.ParamPrimeLength, params.Bits); err != nil {
		return err
	}
	generator := params.Generator
	if generator == 0 {
		generator = 2
	}
	return engine.SetIntParameter(ctx, crypto.ParamGenerator, generator)
}

// resolve maps an unchecked algorithm to the table entry the engine knows it
// by and checks the entry against scope. Table algorithms pass through.
func (p *Provider) resolve(algorithm *crypto.Algorithm, scope crypto.Scope) (*crypto.Algorithm, error) {
	if !algorithm.IsUnchecked() {
		return algorithm, nil
	}

	op := "resolve " + algorithm.Name
	id, err := p.engine.LookupAlgorithm(algorithm.Name)
	if err != nil {
		return nil, backendError(p.engine, crypto.ErrInitialization, op, err)
	}
	resolved, ok := crypto.AlgorithmByID(id)
	if !ok {
		return nil, crypto.NewOperationError(crypto.ErrInitialization, op, fmt.Errorf("engine id %d has no table entry", id))
	}
	if _, err := crypto.Validate(resolved, scope); err != nil {
		return nil, crypto.NewOperationError(crypto.ErrInitialization, op, err)
	}
	return resolved, nil
}

func keyPairBits(algorithm *crypto.Algorithm, params *crypto.KeyPairGeneratorParameters) (int, error) {
	bits := params.Bits
	if params.Curve != "" {
		if algorithm != crypto.EC && algorithm != crypto.ECDH {
			return 0, fmt.Errorf("%w: %s takes no curve", crypto.ErrUnsupportedParameter, algorithm.Name)
		}
		var ok bool
		if bits, ok = crypto.SizeForCurve(params.Curve); !ok {
			return 0, fmt.Errorf("%w: unknown curve %q", crypto.ErrUnsupportedParameter, params.Curve)
		}
	}
	if bits == 0 {
		bits = algorithm.DefaultSize
	}
	if err := crypto.ValidateSize(algorithm, bits); err != nil {
		return 0, err
	}
	return bits, nil
}

// GenerateKeyPair creates a key pair. Algorithms that also generate domain
// parameters, such as DH, get a fresh parameter set of the requested size
// first.
func (p *Provider) GenerateKeyPair(algorithm *crypto.Algorithm, params *crypto.KeyPairGeneratorParameters) (*crypto.KeyPair, error) {
	if params == nil {
		params = &crypto.KeyPairGeneratorParameters{}
	}
	algorithm, err := crypto.Validate(algorithm, crypto.ScopeKeypairGenerator)
	if err != nil {
		return nil, err
	}
	if params, err = crypto.ValidateParameters(algorithm, params); err != nil {
		return nil, err
	}
	if algorithm, err = p.resolve(algorithm, crypto.ScopeKeypairGenerator); err != nil {
		return nil, err
	}
	bits, err := keyPairBits(algorithm, params)
	if err != nil {
		return nil, err
	}

	if algorithm.HasScope(crypto.ScopeParameterGenerator) {
		domain, err := p.GenerateParameters(algorithm, &crypto.DomainParameterGeneratorParameters{Bits: bits})
		if err != nil {
			return nil, err
		}
		return p.GenerateKeyPairFromParameters(domain)
	}

	configure, err := p.keyPairs.Lookup(algorithm)
	if err != nil {
		return nil, err
	}

	pair, err := resource.Run(func(s *resource.Scope) (*crypto.KeyPair, error) {
		ctx, err := p.engine.NewGenerationContext(algorithm.ID)
		if err != nil {
			return nil, backendError(p.engine, crypto.ErrInitialization, "create generation context", err)
		}
		ctx = resource.Acquire(s, ctx, p.engine.FreeContext)

		return p.generatePair(s, algorithm, ctx, func() error {
			return configure(p.engine, ctx, bits, params)
		})
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("Generated key pair ", algorithm.Name, " of ", pair.Private.Bits(), " bits")
	return pair, nil
}

// GenerateKeyPairFromParameters creates a key pair within an existing domain
// parameter set.
func (p *Provider) GenerateKeyPairFromParameters(domain *crypto.DomainParameters) (*crypto.KeyPair, error) {
	if domain == nil {
		return nil, fmt.Errorf("%w: domain parameters are required", crypto.ErrUnsupportedParameter)
	}
	algorithm, err := crypto.Validate(domain.Algorithm(), crypto.ScopeKeypairGenerator)
	if err != nil {
		return nil, err
	}
	if algorithm, err = p.resolve(algorithm, crypto.ScopeKeypairGenerator); err != nil {
		return nil, err
	}
	configure, err := p.keyPairs.Lookup(algorithm)
	if err != nil {
		return nil, err
	}
	params := &crypto.KeyPairGeneratorParameters{Bits: domain.Bits()}

	pair, err := resource.Run(func(s *resource.Scope) (*crypto.KeyPair, error) {
		fields := map[string]*big.Int{
			crypto.FieldPrime:     domain.Prime(),
			crypto.FieldGenerator: domain.Generator(),
		}
		group, err := p.engine.NewParameters(algorithm.ID, fields)
		if err != nil {
			return nil, backendError(p.engine, crypto.ErrInitialization, "import domain parameters", err)
		}
		group = resource.Acquire(s, group, p.engine.FreeKey)

		ctx, err := p.engine.NewGenerationContextFromParameters(group)
		if err != nil {
			return nil, backendError(p.engine, crypto.ErrInitialization, "create generation context", err)
		}
		ctx = resource.Acquire(s, ctx, p.engine.FreeContext)

		return p.generatePair(s, algorithm, ctx, func() error {
			return configure(p.engine, ctx, params.Bits, params)
		})
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("Generated key pair ", algorithm.Name, " from domain parameters of ", domain.Bits(), " bits")
	return pair, nil
}

// generatePair runs the shared tail of key pair generation on ctx. The
// generated handle becomes the private key; the public key gets its own
// public-only handle.
func (p *Provider) generatePair(s *resource.Scope, algorithm *crypto.Algorithm, ctx crypto.Handle, configure func() error) (*crypto.KeyPair, error) {
	if err := p.engine.KeygenInit(ctx); err != nil {
		return nil, backendError(p.engine, crypto.ErrInitialization, "keygen init", err)
	}
	if err := configure(); err != nil {
		return nil, backendError(p.engine, crypto.ErrInitialization, "configure "+algorithm.Name, err)
	}

	private, err := p.engine.Keygen(ctx)
	if err != nil {
		return nil, backendError(p.engine, crypto.ErrGeneration, "keygen", err)
	}
	private = resource.AcquireUntilCommit(s, private, p.engine.FreeKey)

	public, err := p.engine.PublicKeyOnly(private)
	if err != nil {
		return nil, backendError(p.engine, crypto.ErrGeneration, "extract public key", err)
	}
	public = resource.AcquireUntilCommit(s, public, p.engine.FreeKey)

	bits, err := p.engine.KeyBits(private)
	if err != nil {
		return nil, backendError(p.engine, crypto.ErrGeneration, "read key size", err)
	}

	return crypto.NewKeyPair(
		crypto.NewAsymmetricKey(p.engine, algorithm, crypto.KeyTypePublic, public, bits),
		crypto.NewAsymmetricKey(p.engine, algorithm, crypto.KeyTypePrivate, private, bits),
	), nil
}

// GenerateParameters creates a domain parameter set. The engine handle is
// released before returning; the result only carries the values.
func (p *Provider) GenerateParameters(algorithm *crypto.Algorithm, params *crypto.DomainParameterGeneratorParameters) (*crypto.DomainParameters, error) {
	algorithm, err := crypto.Validate(algorithm, crypto.ScopeParameterGenerator)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = &crypto.DomainParameterGeneratorParameters{Bits: algorithm.DefaultSize}
	}
	if params, err = crypto.ValidateParameters(algorithm, params); err != nil {
		return nil, err
	}
	if algorithm, err = p.resolve(algorithm, crypto.ScopeParameterGenerator); err != nil {
		return nil, err
	}
	if err := crypto.ValidateSize(algorithm, params.Bits); err != nil {
		return nil, err
	}
	configure, err := p.parameters.Lookup(algorithm)
	if err != nil {
		return nil, err
	}

	domain, err := resource.Run(func(s *resource.Scope) (*crypto.DomainParameters, error) {
		ctx, err := p.engine.NewGenerationContext(algorithm.ID)
		if err != nil {
			return nil, backendError(p.engine, crypto.ErrInitialization, "create generation context", err)
		}
		ctx = resource.Acquire(s, ctx, p.engine.FreeContext)

		if err := p.engine.ParamgenInit(ctx); err != nil {
			return nil, backendError(p.engine, crypto.ErrInitialization, "paramgen init", err)
		}
		if err := configure(p.engine, ctx, params); err != nil {
			return nil, backendError(p.engine, crypto.ErrInitialization, "configure "+algorithm.Name, err)
		}

		group, err := p.engine.Paramgen(ctx)
		if err != nil {
			return nil, backendError(p.engine, crypto.ErrGeneration, "paramgen", err)
		}
		group = resource.Acquire(s, group, p.engine.FreeKey)

		return p.readParameters(algorithm, group, crypto.ErrGeneration)
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("Generated ", algorithm.Name, " domain parameters of ", domain.Bits(), " bits")
	return domain, nil
}

func (p *Provider) readParameters(algorithm *crypto.Algorithm, group crypto.Handle, kind error) (*crypto.DomainParameters, error) {
	prime, err := p.engine.GetBigNumParameter(group, crypto.FieldPrime)
	if err != nil {
		return nil, backendError(p.engine, kind, "read prime", err)
	}
	generator, err := p.engine.GetBigNumParameter(group, crypto.FieldGenerator)
	if err != nil {
		return nil, backendError(p.engine, kind, "read generator", err)
	}
	domain, err := crypto.NewDomainParameters(algorithm, prime, generator)
	if err != nil {
		return nil, crypto.NewOperationError(kind, "build domain parameters", err)
	}
	return domain, nil
}

// GenerateKey creates a random symmetric key.
func (p *Provider) GenerateKey(algorithm *crypto.Algorithm, params *crypto.KeyGeneratorParameters) (*crypto.Key, error) {
	algorithm, err := crypto.Validate(algorithm, crypto.ScopeKeyGenerator)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = &crypto.KeyGeneratorParameters{Bits: algorithm.DefaultSize}
	}
	if params, err = crypto.ValidateParameters(algorithm, params); err != nil {
		return nil, err
	}
	if algorithm, err = p.resolve(algorithm, crypto.ScopeKeyGenerator); err != nil {
		return nil, err
	}
	if err := crypto.ValidateSize(algorithm, params.Bits); err != nil {
		return nil, err
	}
	if params.Bits%8 != 0 {
		return nil, fmt.Errorf("%w: key size %d is not a whole number of bytes", crypto.ErrUnsupportedParameter, params.Bits)
	}

	key, err := resource.Run(func(s *resource.Scope) (*crypto.Key, error) {
		data, err := p.engine.NewRandomData(params.Bits / 8)
		if err != nil {
			return nil, backendError(p.engine, crypto.ErrGeneration, "generate key material", err)
		}
		data = resource.AcquireUntilCommit(s, data, p.engine.FreeData)
		return crypto.NewSymmetricKey(p.engine, algorithm, data, params.Bits), nil
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("Generated ", algorithm.Name, " key of ", params.Bits, " bits")
	return key, nil
}
