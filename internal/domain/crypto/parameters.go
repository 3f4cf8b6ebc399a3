package crypto

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/MGTheTrain/crypto-facade/internal/pkg/validators"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := validators.Register(v, map[string]validator.Func{
		"blockmode": validators.EnumValidation(
			string(BlockModeECB), string(BlockModeCBC), string(BlockModeCTR), string(BlockModeGCM), string(BlockModePoly1305)),
		"padding": validators.EnumValidation(
			string(PaddingNone), string(PaddingPKCS7), string(PaddingPKCS1), string(PaddingOAEP), string(PaddingPSS)),
		"digest": validators.EnumValidation(
			DigestSHA256, DigestSHA384, DigestSHA512, DigestSHA3_256, DigestSHA3_512),
		"curve": validators.EnumValidation(CurveP256, CurveP384, CurveP521),
	})
	if err != nil {
		panic(fmt.Sprintf("crypto: failed to register validations: %v", err))
	}
	return v
}

func validateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var messages []string
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("Field: %s, Tag: %s", fieldErr.Field(), fieldErr.Tag()))
			}
			return fmt.Errorf("%w: validation failed: %v", ErrUnsupportedParameter, messages)
		}
		return fmt.Errorf("%w: validation error: %v", ErrUnsupportedParameter, err)
	}
	return nil
}

// Options are the table-checked settings a parameter object carries.
type Options struct {
	BlockMode BlockMode
	Padding   Padding
	Digest    string
}

// Parameters is implemented by every parameter object.
type Parameters interface {
	// Validate checks the object on its own, without an algorithm.
	Validate() error
	// Options returns the settings checked against an algorithm.
	Options() Options
}

// CipherParameters configures one encrypt or decrypt call.
type CipherParameters struct {
	Mode      Mode      `validate:"required,oneof=encrypt decrypt"`
	BlockMode BlockMode `validate:"omitempty,blockmode"`
	Padding   Padding   `validate:"omitempty,padding"`
	// IV is the initialization vector or nonce; for CTR it is the initial counter block.
	IV []byte `validate:"omitempty,min=8,max=16"`
	// TagLength is the AEAD tag length in bytes; zero selects 16.
	TagLength int `validate:"omitempty,min=12,max=16"`
}

// Validate checks the parameters.
func (p *CipherParameters) Validate() error { return validateStruct(p) }

// Options returns the table-checked settings.
func (p *CipherParameters) Options() Options {
	return Options{BlockMode: p.BlockMode, Padding: p.Padding}
}

// SignatureParameters configures a signature engine.
type SignatureParameters struct {
	Mode    Mode    `validate:"required,oneof=sign verify"`
	Padding Padding `validate:"omitempty,padding"`
	Digest  string  `validate:"omitempty,digest"`
}

// Validate checks the parameters.
func (p *SignatureParameters) Validate() error { return validateStruct(p) }

// Options returns the table-checked settings.
func (p *SignatureParameters) Options() Options {
	return Options{Padding: p.Padding, Digest: p.Digest}
}

// KeyGeneratorParameters configures symmetric key generation.
type KeyGeneratorParameters struct {
	Bits int `validate:"required,gt=0"`
}

// Validate checks the parameters.
func (p *KeyGeneratorParameters) Validate() error { return validateStruct(p) }

// Options returns the table-checked settings.
func (p *KeyGeneratorParameters) Options() Options { return Options{} }

// KeyPairGeneratorParameters configures key pair generation. Curve, when set,
// takes precedence over Bits for elliptic curve algorithms.
type KeyPairGeneratorParameters struct {
	Bits  int    `validate:"gte=0"`
	Curve string `validate:"omitempty,curve"`
}

// Validate checks the parameters.
func (p *KeyPairGeneratorParameters) Validate() error { return validateStruct(p) }

// Options returns the table-checked settings.
func (p *KeyPairGeneratorParameters) Options() Options { return Options{} }

// DomainParameterGeneratorParameters configures domain parameter generation.
type DomainParameterGeneratorParameters struct {
	Bits int `validate:"required,gte=512"`
	// Generator is the requested group generator; zero selects 2.
	Generator int `validate:"omitempty,oneof=2 5"`
}

// Validate checks the parameters.
func (p *DomainParameterGeneratorParameters) Validate() error { return validateStruct(p) }

// Options returns the table-checked settings.
func (p *DomainParameterGeneratorParameters) Options() Options { return Options{} }

// DomainParameters are algorithm-wide values shared by both parties before
// key pair generation, such as a Diffie-Hellman prime and generator. They own
// no engine handle and are immutable; accessors return copies.
type DomainParameters struct {
	algorithm *Algorithm
	prime     *big.Int
	generator *big.Int
}

// NewDomainParameters copies prime and generator into a new value.
func NewDomainParameters(algorithm *Algorithm, prime, generator *big.Int) (*DomainParameters, error) {
	if prime == nil || generator == nil {
		return nil, fmt.Errorf("%w: prime and generator are required", ErrUnsupportedParameter)
	}
	if prime.Sign() <= 0 || generator.Cmp(big.NewInt(1)) <= 0 || generator.Cmp(prime) >= 0 {
		return nil, fmt.Errorf("%w: generator must lie in (1, p)", ErrUnsupportedParameter)
	}
	return &DomainParameters{
		algorithm: algorithm,
		prime:     new(big.Int).Set(prime),
		generator: new(big.Int).Set(generator),
	}, nil
}

// Algorithm returns the algorithm the parameters belong to
func (d *DomainParameters) Algorithm() *Algorithm { return d.algorithm }

// Prime returns a copy of the prime
func (d *DomainParameters) Prime() *big.Int { return new(big.Int).Set(d.prime) }

// Generator returns a copy of the generator
func (d *DomainParameters) Generator() *big.Int { return new(big.Int).Set(d.generator) }

// PrimeBytes returns the big-endian encoding of the prime.
func (d *DomainParameters) PrimeBytes() []byte { return d.prime.Bytes() }

// Bits returns the bit length of the prime.
func (d *DomainParameters) Bits() int { return d.prime.BitLen() }
