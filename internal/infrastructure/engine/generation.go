package engine

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"

	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
	"golang.org/x/crypto/curve25519"
)

type generationOp int

const (
	opNone generationOp = iota
	opKeygen
	opParamgen
)

type generationContext struct {
	id      crypto.AlgorithmID
	group   *dhGroup
	op      generationOp
	ints    map[string]int
	strings map[string]string
}

func (c *generationContext) intOr(name string, fallback int) int {
	if v, ok := c.ints[name]; ok {
		return v
	}
	return fallback
}

func (c *generationContext) stringOr(name, fallback string) string {
	if v, ok := c.strings[name]; ok {
		return v
	}
	return fallback
}

var generatable = map[crypto.AlgorithmID]bool{
	crypto.AlgorithmIDRSA:     true,
	crypto.AlgorithmIDEC:      true,
	crypto.AlgorithmIDECDH:    true,
	crypto.AlgorithmIDDH:      true,
	crypto.AlgorithmIDX25519:  true,
	crypto.AlgorithmIDEd25519: true,
	crypto.AlgorithmIDMLDSA65: true,
}

func newGenerationContext(id crypto.AlgorithmID, group *dhGroup) *generationContext {
	return &generationContext{
		id:      id,
		group:   group,
		ints:    make(map[string]int),
		strings: make(map[string]string),
	}
}

// NewGenerationContext creates a generation context for an asymmetric algorithm.
func (e *SoftwareEngine) NewGenerationContext(id crypto.AlgorithmID) (crypto.Handle, error) {
	const fn = "NewGenerationContext"
	if !generatable[id] {
		return crypto.NilHandle, e.raise(libKeys, fn, reasonUnsupportedAlgorithm, fmt.Errorf("algorithm id %d", id))
	}
	return e.put(fn, kindGenerationContext, newGenerationContext(id, nil))
}

// NewGenerationContextFromParameters creates a key generation context seeded
// with the domain parameters held by params.
func (e *SoftwareEngine) NewGenerationContextFromParameters(params crypto.Handle) (crypto.Handle, error) {
	const fn = "NewGenerationContextFromParameters"
	material, err := lookup[keyMaterial](e, fn, params, kindKey)
	if err != nil {
		return crypto.NilHandle, err
	}
	group, ok := material.(*dhGroup)
	if !ok {
		return crypto.NilHandle, e.raise(libKeys, fn, reasonInvalidKey, errors.New("handle holds no domain parameters"))
	}
	return e.put(fn, kindGenerationContext, newGenerationContext(group.algorithm(), group))
}

// NewKeyContext creates an operation context bound to key.
func (e *SoftwareEngine) NewKeyContext(key crypto.Handle) (crypto.Handle, error) {
	const fn = "NewKeyContext"
	material, err := lookup[keyMaterial](e, fn, key, kindKey)
	if err != nil {
		return crypto.NilHandle, err
	}
	return e.put(fn, kindKeyContext, &keyContext{key: material})
}

// FreeContext releases a generation or key context.
func (e *SoftwareEngine) FreeContext(ctx crypto.Handle) {
	e.release("FreeContext", ctx, kindGenerationContext, kindKeyContext)
}

// KeygenInit prepares ctx for key generation.
func (e *SoftwareEngine) KeygenInit(ctx crypto.Handle) error {
	gc, err := lookup[*generationContext](e, "KeygenInit", ctx, kindGenerationContext)
	if err != nil {
		return err
	}
	gc.op = opKeygen
	return nil
}

// ParamgenInit prepares ctx for domain parameter generation.
func (e *SoftwareEngine) ParamgenInit(ctx crypto.Handle) error {
	const fn = "ParamgenInit"
	gc, err := lookup[*generationContext](e, fn, ctx, kindGenerationContext)
	if err != nil {
		return err
	}
	if gc.id != crypto.AlgorithmIDDH || gc.group != nil {
		return e.raise(libKeys, fn, reasonUnsupportedAlgorithm, errors.New("parameter generation needs an unseeded DH context"))
	}
	gc.op = opParamgen
	return nil
}

// SetIntParameter sets a numeric generation parameter.
func (e *SoftwareEngine) SetIntParameter(ctx crypto.Handle, name string, value int) error {
	const fn = "SetIntParameter"
	gc, err := lookup[*generationContext](e, fn, ctx, kindGenerationContext)
	if err != nil {
		return err
	}

	var valid bool
	switch {
	case gc.op == opNone:
		return e.raise(libKeys, fn, reasonInvalidState, nil)
	case gc.id == crypto.AlgorithmIDRSA && gc.op == opKeygen && name == crypto.ParamBits:
		valid = value >= 1024 && value <= 16384
	case gc.id == crypto.AlgorithmIDDH && gc.op == opParamgen && name == crypto.ParamPrimeLength:
		valid = value >= 512 && value <= 8192
	case gc.id == crypto.AlgorithmIDDH && gc.op == opParamgen && name == crypto.ParamGenerator:
		valid = value == 2 || value == 5
	default:
		return e.raise(libKeys, fn, reasonInvalidParameter, fmt.Errorf("%s is not settable here", name))
	}
	if !valid {
		return e.raise(libKeys, fn, reasonInvalidParameter, fmt.Errorf("%s=%d", name, value))
	}

	gc.ints[name] = value
	return nil
}

// SetStringParameter sets a named generation parameter.
func (e *SoftwareEngine) SetStringParameter(ctx crypto.Handle, name, value string) error {
	const fn = "SetStringParameter"
	gc, err := lookup[*generationContext](e, fn, ctx, kindGenerationContext)
	if err != nil {
		return err
	}
	if gc.op == opNone {
		return e.raise(libKeys, fn, reasonInvalidState, nil)
	}
	if name != crypto.ParamCurve || (gc.id != crypto.AlgorithmIDEC && gc.id != crypto.AlgorithmIDECDH) {
		return e.raise(libKeys, fn, reasonInvalidParameter, fmt.Errorf("%s is not settable here", name))
	}
	if _, ok := ecdsaCurve(value); !ok {
		return e.raise(libKeys, fn, reasonInvalidParameter, fmt.Errorf("unknown curve %q", value))
	}

	gc.strings[name] = value
	return nil
}

// Keygen generates a key and returns a handle carrying both halves.
func (e *SoftwareEngine) Keygen(ctx crypto.Handle) (crypto.Handle, error) {
	const fn = "Keygen"
	gc, err := lookup[*generationContext](e, fn, ctx, kindGenerationContext)
	if err != nil {
		return crypto.NilHandle, err
	}
	if gc.op != opKeygen {
		return crypto.NilHandle, e.raise(libKeys, fn, reasonInvalidState, nil)
	}

	material, err := gc.generateKey()
	if err != nil {
		return crypto.NilHandle, e.raise(libKeys, fn, reasonOperationFailed, err)
	}
	return e.put(fn, kindKey, material)
}

func (c *generationContext) generateKey() (keyMaterial, error) {
	switch c.id {
	case crypto.AlgorithmIDRSA:
		private, err := rsa.GenerateKey(rand.Reader, c.intOr(crypto.ParamBits, 2048))
		if err != nil {
			return nil, err
		}
		return &rsaKey{private: private, public: &private.PublicKey}, nil

	case crypto.AlgorithmIDEC:
		curve, _ := ecdsaCurve(c.stringOr(crypto.ParamCurve, crypto.CurveP256))
		private, err := ecdsa.GenerateKey(curve, rand.Reader)
		if err != nil {
			return nil, err
		}
		return &ecdsaKey{private: private, public: &private.PublicKey}, nil

	case crypto.AlgorithmIDECDH:
		name := c.stringOr(crypto.ParamCurve, crypto.CurveP256)
		curve, _ := ecdhCurve(name)
		private, err := curve.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
		return &ecdhKey{curve: name, private: private, public: private.PublicKey()}, nil

	case crypto.AlgorithmIDX25519:
		private := make([]byte, curve25519.ScalarSize)
		if _, err := rand.Read(private); err != nil {
			return nil, err
		}
		public, err := curve25519.X25519(private, curve25519.Basepoint)
		if err != nil {
			return nil, err
		}
		return &x25519Key{private: private, public: public}, nil

	case crypto.AlgorithmIDEd25519:
		public, private, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
		return &ed25519Key{private: private, public: public}, nil

	case crypto.AlgorithmIDMLDSA65:
		public, private, err := mldsa65.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
		return &mldsaKey{private: private, public: public}, nil

	case crypto.AlgorithmIDDH:
		if c.group == nil {
			return nil, errors.New("DH key generation needs domain parameters")
		}
		return generateDHKey(c.group)

	default:
		return nil, fmt.Errorf("algorithm id %d", c.id)
	}
}

// generateDHKey picks x uniformly from [2, p-2] and computes y = g^x mod p.
func generateDHKey(group *dhGroup) (*dhKey, error) {
	bound := new(big.Int).Sub(group.p, big.NewInt(3))
	x, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return nil, err
	}
	x.Add(x, big.NewInt(2))
	y := new(big.Int).Exp(group.g, x, group.p)
	return &dhKey{group: group, x: x, y: y}, nil
}

// Paramgen generates a DH prime of the requested length.
func (e *SoftwareEngine) Paramgen(ctx crypto.Handle) (crypto.Handle, error) {
	const fn = "Paramgen"
	gc, err := lookup[*generationContext](e, fn, ctx, kindGenerationContext)
	if err != nil {
		return crypto.NilHandle, err
	}
	if gc.op != opParamgen {
		return crypto.NilHandle, e.raise(libKeys, fn, reasonInvalidState, nil)
	}

	// rand.Prime sets the top two bits, so p has exactly the requested length.
	p, err := rand.Prime(rand.Reader, gc.intOr(crypto.ParamPrimeLength, 2048))
	if err != nil {
		return crypto.NilHandle, e.raise(libKeys, fn, reasonOperationFailed, err)
	}
	g := big.NewInt(int64(gc.intOr(crypto.ParamGenerator, 2)))
	return e.put(fn, kindKey, &dhGroup{p: p, g: g})
}

// NewParameters builds a DH parameter handle from the p and g fields.
func (e *SoftwareEngine) NewParameters(id crypto.AlgorithmID, fields map[string]*big.Int) (crypto.Handle, error) {
	const fn = "NewParameters"
	if id != crypto.AlgorithmIDDH {
		return crypto.NilHandle, e.raise(libKeys, fn, reasonUnsupportedAlgorithm, fmt.Errorf("algorithm id %d", id))
	}
	p, g := fields[crypto.FieldPrime], fields[crypto.FieldGenerator]
	if p == nil || g == nil || g.Cmp(big.NewInt(1)) <= 0 || g.Cmp(p) >= 0 {
		return crypto.NilHandle, e.raise(libKeys, fn, reasonInvalidParameter, errors.New("need 1 < g < p"))
	}
	return e.put(fn, kindKey, &dhGroup{p: new(big.Int).Set(p), g: new(big.Int).Set(g)})
}

// PublicKeyOnly returns a new handle holding only the public half of key.
func (e *SoftwareEngine) PublicKeyOnly(key crypto.Handle) (crypto.Handle, error) {
	const fn = "PublicKeyOnly"
	material, err := lookup[keyMaterial](e, fn, key, kindKey)
	if err != nil {
		return crypto.NilHandle, err
	}
	return e.put(fn, kindKey, material.publicOnly())
}

// KeyBits reports the key size in bits.
func (e *SoftwareEngine) KeyBits(key crypto.Handle) (int, error) {
	material, err := lookup[keyMaterial](e, "KeyBits", key, kindKey)
	if err != nil {
		return 0, err
	}
	return material.bits(), nil
}

// IsPrivateKey reports whether key holds private material.
func (e *SoftwareEngine) IsPrivateKey(key crypto.Handle) (bool, error) {
	material, err := lookup[keyMaterial](e, "IsPrivateKey", key, kindKey)
	if err != nil {
		return false, err
	}
	return material.hasPrivate(), nil
}

// GetBigNumParameter reads p or g from a DH key or parameter handle.
func (e *SoftwareEngine) GetBigNumParameter(key crypto.Handle, name string) (*big.Int, error) {
	const fn = "GetBigNumParameter"
	material, err := lookup[keyMaterial](e, fn, key, kindKey)
	if err != nil {
		return nil, err
	}

	var group *dhGroup
	switch m := material.(type) {
	case *dhGroup:
		group = m
	case *dhKey:
		group = m.group
	default:
		return nil, e.raise(libKeys, fn, reasonInvalidParameter, fmt.Errorf("%T has no big number fields", material))
	}

	switch name {
	case crypto.FieldPrime:
		return new(big.Int).Set(group.p), nil
	case crypto.FieldGenerator:
		return new(big.Int).Set(group.g), nil
	default:
		return nil, e.raise(libKeys, fn, reasonInvalidParameter, fmt.Errorf("unknown field %q", name))
	}
}

// FreeKey releases a key or parameter handle.
func (e *SoftwareEngine) FreeKey(key crypto.Handle) {
	e.release("FreeKey", key, kindKey)
}
