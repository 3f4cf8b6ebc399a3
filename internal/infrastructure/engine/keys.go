package engine

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"math/big"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"

	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
)

// keyMaterial is the value behind a key handle. Domain parameter sets are
// key handles too and carry no private part.
type keyMaterial interface {
	algorithm() crypto.AlgorithmID
	bits() int
	hasPrivate() bool
	// publicOnly returns material that shares no private component with the receiver.
	publicOnly() keyMaterial
}

type rsaKey struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
}

func (k *rsaKey) algorithm() crypto.AlgorithmID { return crypto.AlgorithmIDRSA }
func (k *rsaKey) bits() int                     { return k.public.N.BitLen() }
func (k *rsaKey) hasPrivate() bool              { return k.private != nil }
func (k *rsaKey) publicOnly() keyMaterial       { return &rsaKey{public: k.public} }

type ecdsaKey struct {
	private *ecdsa.PrivateKey
	public  *ecdsa.PublicKey
}

func (k *ecdsaKey) algorithm() crypto.AlgorithmID { return crypto.AlgorithmIDEC }
func (k *ecdsaKey) bits() int                     { return k.public.Curve.Params().BitSize }
func (k *ecdsaKey) hasPrivate() bool              { return k.private != nil }
func (k *ecdsaKey) publicOnly() keyMaterial       { return &ecdsaKey{public: k.public} }

type ecdhKey struct {
	curve   string
	private *ecdh.PrivateKey
	public  *ecdh.PublicKey
}

func (k *ecdhKey) algorithm() crypto.AlgorithmID { return crypto.AlgorithmIDECDH }
func (k *ecdhKey) hasPrivate() bool              { return k.private != nil }
func (k *ecdhKey) publicOnly() keyMaterial       { return &ecdhKey{curve: k.curve, public: k.public} }

func (k *ecdhKey) bits() int {
	curve, _ := ecdsaCurve(k.curve)
	return curve.Params().BitSize
}

// x25519Key holds raw 32 byte scalars and points.
type x25519Key struct {
	private []byte
	public  []byte
}

func (k *x25519Key) algorithm() crypto.AlgorithmID { return crypto.AlgorithmIDX25519 }
func (k *x25519Key) bits() int                     { return 256 }
func (k *x25519Key) hasPrivate() bool              { return k.private != nil }
func (k *x25519Key) publicOnly() keyMaterial       { return &x25519Key{public: k.public} }

type ed25519Key struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey
}

func (k *ed25519Key) algorithm() crypto.AlgorithmID { return crypto.AlgorithmIDEd25519 }
func (k *ed25519Key) bits() int                     { return 256 }
func (k *ed25519Key) hasPrivate() bool              { return k.private != nil }
func (k *ed25519Key) publicOnly() keyMaterial       { return &ed25519Key{public: k.public} }

type mldsaKey struct {
	private *mldsa65.PrivateKey
	public  *mldsa65.PublicKey
}

func (k *mldsaKey) algorithm() crypto.AlgorithmID { return crypto.AlgorithmIDMLDSA65 }
func (k *mldsaKey) bits() int                     { return 192 }
func (k *mldsaKey) hasPrivate() bool              { return k.private != nil }
func (k *mldsaKey) publicOnly() keyMaterial       { return &mldsaKey{public: k.public} }

// dhGroup is a finite field Diffie-Hellman parameter set.
type dhGroup struct {
	p *big.Int
	g *big.Int
}

func (g *dhGroup) algorithm() crypto.AlgorithmID { return crypto.AlgorithmIDDH }
func (g *dhGroup) bits() int                     { return g.p.BitLen() }
func (g *dhGroup) hasPrivate() bool              { return false }
func (g *dhGroup) publicOnly() keyMaterial       { return g }

func (g *dhGroup) equal(other *dhGroup) bool {
	return g.p.Cmp(other.p) == 0 && g.g.Cmp(other.g) == 0
}

type dhKey struct {
	group *dhGroup
	x     *big.Int
	y     *big.Int
}

func (k *dhKey) algorithm() crypto.AlgorithmID { return crypto.AlgorithmIDDH }
func (k *dhKey) bits() int                     { return k.group.bits() }
func (k *dhKey) hasPrivate() bool              { return k.x != nil }
func (k *dhKey) publicOnly() keyMaterial       { return &dhKey{group: k.group, y: k.y} }

func ecdsaCurve(name string) (elliptic.Curve, bool) {
	switch name {
	case crypto.CurveP256:
		return elliptic.P256(), true
	case crypto.CurveP384:
		return elliptic.P384(), true
	case crypto.CurveP521:
		return elliptic.P521(), true
	default:
		return nil, false
	}
}

func ecdhCurve(name string) (ecdh.Curve, bool) {
	switch name {
	case crypto.CurveP256:
		return ecdh.P256(), true
	case crypto.CurveP384:
		return ecdh.P384(), true
	case crypto.CurveP521:
		return ecdh.P521(), true
	default:
		return nil, false
	}
}

// coordinateSize is the byte length of a field element on the named NIST curve.
func coordinateSize(name string) int {
	curve, ok := ecdsaCurve(name)
	if !ok {
		return 0
	}
	return (curve.Params().BitSize + 7) / 8
}
