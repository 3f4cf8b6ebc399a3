package cryptography

import (
	"fmt"
	"math/big"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/resource"
)

// ExportKey serializes key. Symmetric keys are returned as raw bytes and
// asymmetric keys as PEM.
func (p *Provider) ExportKey(key *crypto.Key) ([]byte, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: key is required", crypto.ErrUnsupportedParameter)
	}
	handle, err := key.Handle()
	if err != nil {
		return nil, err
	}

	if key.Type() == crypto.KeyTypeSymmetric {
		material, err := p.engine.DataBytes(handle)
		if err != nil {
			return nil, backendError(p.engine, crypto.ErrEncoding, "export key material", err)
		}
		return material, nil
	}

	encoded, err := p.engine.EncodeKeyPEM(handle)
	if err != nil {
		return nil, backendError(p.engine, crypto.ErrEncoding, "encode "+key.String(), err)
	}
	return encoded, nil
}

// ImportKey builds a key from the output of ExportKey. A private PEM
// imported as a public key keeps only its public half.
func (p *Provider) ImportKey(algorithm *crypto.Algorithm, keyType crypto.KeyType, data []byte) (*crypto.Key, error) {
	if keyType == crypto.KeyTypeSymmetric {
		return p.importSymmetric(algorithm, data)
	}
	if keyType != crypto.KeyTypePublic && keyType != crypto.KeyTypePrivate {
		return nil, fmt.Errorf("%w: key type %q", crypto.ErrUnsupportedParameter, keyType)
	}

	algorithm, err := crypto.Validate(algorithm, crypto.ScopeKeypairGenerator)
	if err != nil {
		return nil, err
	}
	if algorithm, err = p.resolve(algorithm, crypto.ScopeKeypairGenerator); err != nil {
		return nil, err
	}

	handle, isPrivate, err := p.decodeKey(algorithm, keyType, data)
	if err != nil {
		return nil, err
	}
	if keyType == crypto.KeyTypePublic && isPrivate {
		if handle, err = p.publicHalf(handle); err != nil {
			return nil, err
		}
	}

	key, err := resource.Run(func(s *resource.Scope) (*crypto.Key, error) {
		handle = resource.AcquireUntilCommit(s, handle, p.engine.FreeKey)
		bits, err := p.engine.KeyBits(handle)
		if err != nil {
			return nil, backendError(p.engine, crypto.ErrEncoding, "read key size", err)
		}
		return crypto.NewAsymmetricKey(p.engine, algorithm, keyType, handle, bits), nil
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("Imported ", key)
	return key, nil
}

// decodeKey parses data into a new key handle owned by the caller. A public
// PEM is rejected when a private key is wanted.
func (p *Provider) decodeKey(algorithm *crypto.Algorithm, keyType crypto.KeyType, data []byte) (crypto.Handle, bool, error) {
	var isPrivate bool
	handle, err := resource.Run(func(s *resource.Scope) (crypto.Handle, error) {
		decoded, err := p.engine.DecodeKeyPEM(algorithm.ID, data)
		if err != nil {
			return crypto.NilHandle, backendError(p.engine, crypto.ErrEncoding, "decode "+algorithm.Name+" key", err)
		}
		decoded = resource.AcquireUntilCommit(s, decoded, p.engine.FreeKey)

		if isPrivate, err = p.engine.IsPrivateKey(decoded); err != nil {
			return crypto.NilHandle, backendError(p.engine, crypto.ErrEncoding, "inspect key", err)
		}
		if keyType == crypto.KeyTypePrivate && !isPrivate {
			return crypto.NilHandle, crypto.NewOperationError(crypto.ErrEncoding, "import private key",
				fmt.Errorf("PEM holds a public %s key", algorithm.Name))
		}
		return decoded, nil
	})
	return handle, isPrivate, err
}

// publicHalf takes ownership of a private key handle and returns a new handle
// holding only its public half.
func (p *Provider) publicHalf(private crypto.Handle) (crypto.Handle, error) {
	return resource.Run(func(s *resource.Scope) (crypto.Handle, error) {
		private = resource.Acquire(s, private, p.engine.FreeKey)
		public, err := p.engine.PublicKeyOnly(private)
		if err != nil {
			return crypto.NilHandle, backendError(p.engine, crypto.ErrEncoding, "extract public key", err)
		}
		return public, nil
	})
}

func (p *Provider) importSymmetric(algorithm *crypto.Algorithm, material []byte) (*crypto.Key, error) {
	algorithm, err := crypto.Validate(algorithm, crypto.ScopeKeyGenerator)
	if err != nil {
		return nil, err
	}
	if algorithm, err = p.resolve(algorithm, crypto.ScopeKeyGenerator); err != nil {
		return nil, err
	}
	bits := len(material) * 8
	if err := crypto.ValidateSize(algorithm, bits); err != nil {
		return nil, err
	}

	return resource.Run(func(s *resource.Scope) (*crypto.Key, error) {
		data, err := p.engine.NewData(material)
		if err != nil {
			return nil, backendError(p.engine, crypto.ErrEncoding, "import key material", err)
		}
		data = resource.AcquireUntilCommit(s, data, p.engine.FreeData)
		return crypto.NewSymmetricKey(p.engine, algorithm, data, bits), nil
	})
}

// EncodeParameters serializes a domain parameter set to PEM.
func (p *Provider) EncodeParameters(domain *crypto.DomainParameters) ([]byte, error) {
	if domain == nil {
		return nil, fmt.Errorf("%w: domain parameters are required", crypto.ErrUnsupportedParameter)
	}
	algorithm, err := p.resolve(domain.Algorithm(), crypto.ScopeParameterGenerator)
	if err != nil {
		return nil, err
	}

	return resource.Run(func(s *resource.Scope) ([]byte, error) {
		fields := map[string]*big.Int{
			crypto.FieldPrime:     domain.Prime(),
			crypto.FieldGenerator: domain.Generator(),
		}
		group, err := p.engine.NewParameters(algorithm.ID, fields)
		if err != nil {
			return nil, backendError(p.engine, crypto.ErrEncoding, "import domain parameters", err)
		}
		group = resource.Acquire(s, group, p.engine.FreeKey)

		encoded, err := p.engine.EncodeKeyPEM(group)
		if err != nil {
			return nil, backendError(p.engine, crypto.ErrEncoding, "encode domain parameters", err)
		}
		return encoded, nil
	})
}

// DecodeParameters parses the output of EncodeParameters. The domain
// parameters of an encoded key are accepted too.
func (p *Provider) DecodeParameters(algorithm *crypto.Algorithm, data []byte) (*crypto.DomainParameters, error) {
	algorithm, err := crypto.Validate(algorithm, crypto.ScopeParameterGenerator)
	if err != nil {
		return nil, err
	}
	if algorithm, err = p.resolve(algorithm, crypto.ScopeParameterGenerator); err != nil {
		return nil, err
	}

	return resource.Run(func(s *resource.Scope) (*crypto.DomainParameters, error) {
		group, err := p.engine.DecodeKeyPEM(algorithm.ID, data)
		if err != nil {
			return nil, backendError(p.engine, crypto.ErrEncoding, "decode domain parameters", err)
		}
		group = resource.Acquire(s, group, p.engine.FreeKey)
		return p.readParameters(algorithm, group, crypto.ErrEncoding)
	})
}
