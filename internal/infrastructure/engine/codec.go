package engine

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"

	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
)

// PEM block types
const (
	pemPrivateKey      = "PRIVATE KEY"
	pemPublicKey       = "PUBLIC KEY"
	pemDHParameters    = "DH PARAMETERS"
	pemDHPrivateKey    = "DH PRIVATE KEY"
	pemDHPublicKey     = "DH PUBLIC KEY"
	pemMLDSAPrivateKey = "ML-DSA-65 PRIVATE KEY"
	pemMLDSAPublicKey  = "ML-DSA-65 PUBLIC KEY"
)

type dhParametersASN1 struct {
	P *big.Int
	G *big.Int
}

type dhPrivateKeyASN1 struct {
	P *big.Int
	G *big.Int
	X *big.Int
	Y *big.Int
}

type dhPublicKeyASN1 struct {
	P *big.Int
	G *big.Int
	Y *big.Int
}

// EncodeKeyPEM serializes the key behind key. Private keys use PKCS#8 and
// public keys PKIX where x509 supports the algorithm.
func (e *SoftwareEngine) EncodeKeyPEM(key crypto.Handle) ([]byte, error) {
	const fn = "EncodeKeyPEM"
	material, err := lookup[keyMaterial](e, fn, key, kindKey)
	if err != nil {
		return nil, err
	}

	block, err := encodeKey(material)
	if err != nil {
		return nil, e.raise(libKeys, fn, reasonOperationFailed, err)
	}
	return pem.EncodeToMemory(block), nil
}

func encodeKey(material keyMaterial) (*pem.Block, error) {
	var private, public any
	switch k := material.(type) {
	case *rsaKey:
		private, public = k.private, k.public
	case *ecdsaKey:
		private, public = k.private, k.public
	case *ecdhKey:
		private, public = k.private, k.public
	case *ed25519Key:
		private, public = k.private, k.public
	case *x25519Key:
		if k.private != nil {
			key, err := ecdh.X25519().NewPrivateKey(k.private)
			if err != nil {
				return nil, err
			}
			private = key
		}
		key, err := ecdh.X25519().NewPublicKey(k.public)
		if err != nil {
			return nil, err
		}
		public = key
	case *mldsaKey:
		return encodeMLDSA(k)
	case *dhKey:
		return encodeDH(k)
	case *dhGroup:
		der, err := asn1.Marshal(dhParametersASN1{P: k.p, G: k.g})
		return &pem.Block{Type: pemDHParameters, Bytes: der}, err
	default:
		return nil, fmt.Errorf("cannot encode %T", material)
	}

	if material.hasPrivate() {
		der, err := x509.MarshalPKCS8PrivateKey(private)
		return &pem.Block{Type: pemPrivateKey, Bytes: der}, err
	}
	der, err := x509.MarshalPKIXPublicKey(public)
	return &pem.Block{Type: pemPublicKey, Bytes: der}, err
}

func encodeMLDSA(k *mldsaKey) (*pem.Block, error) {
	if k.private != nil {
		raw, err := k.private.MarshalBinary()
		return &pem.Block{Type: pemMLDSAPrivateKey, Bytes: raw}, err
	}
	raw, err := k.public.MarshalBinary()
	return &pem.Block{Type: pemMLDSAPublicKey, Bytes: raw}, err
}

func encodeDH(k *dhKey) (*pem.Block, error) {
	if k.x != nil {
		der, err := asn1.Marshal(dhPrivateKeyASN1{P: k.group.p, G: k.group.g, X: k.x, Y: k.y})
		return &pem.Block{Type: pemDHPrivateKey, Bytes: der}, err
	}
	der, err := asn1.Marshal(dhPublicKeyASN1{P: k.group.p, G: k.group.g, Y: k.y})
	return &pem.Block{Type: pemDHPublicKey, Bytes: der}, err
}

// DecodeKeyPEM parses a PEM key of the given algorithm into a new key handle.
func (e *SoftwareEngine) DecodeKeyPEM(id crypto.AlgorithmID, data []byte) (crypto.Handle, error) {
	const fn = "DecodeKeyPEM"
	block, _ := pem.Decode(data)
	if block == nil {
		return crypto.NilHandle, e.raise(libKeys, fn, reasonDecodeFailed, errors.New("no PEM block found"))
	}

	material, err := decodeKey(id, block)
	if err != nil {
		return crypto.NilHandle, e.raise(libKeys, fn, reasonDecodeFailed, err)
	}
	return e.put(fn, kindKey, material)
}

func decodeKey(id crypto.AlgorithmID, block *pem.Block) (keyMaterial, error) {
	switch id {
	case crypto.AlgorithmIDMLDSA65:
		return decodeMLDSA(block)
	case crypto.AlgorithmIDDH:
		return decodeDH(block)
	}

	var parsed any
	var err error
	switch block.Type {
	case pemPrivateKey:
		parsed, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	case pemPublicKey:
		parsed, err = x509.ParsePKIXPublicKey(block.Bytes)
	default:
		return nil, fmt.Errorf("unexpected PEM type %q", block.Type)
	}
	if err != nil {
		return nil, err
	}

	switch k := parsed.(type) {
	case *rsa.PrivateKey:
		if id == crypto.AlgorithmIDRSA {
			return &rsaKey{private: k, public: &k.PublicKey}, nil
		}
	case *rsa.PublicKey:
		if id == crypto.AlgorithmIDRSA {
			return &rsaKey{public: k}, nil
		}
	case *ecdsa.PrivateKey:
		return decodeNISTKey(id, k, &k.PublicKey)
	case *ecdsa.PublicKey:
		return decodeNISTKey(id, nil, k)
	case ed25519.PrivateKey:
		if id == crypto.AlgorithmIDEd25519 {
			return &ed25519Key{private: k, public: k.Public().(ed25519.PublicKey)}, nil
		}
	case ed25519.PublicKey:
		if id == crypto.AlgorithmIDEd25519 {
			return &ed25519Key{public: k}, nil
		}
	case *ecdh.PrivateKey:
		if id == crypto.AlgorithmIDX25519 && k.Curve() == ecdh.X25519() {
			return &x25519Key{private: k.Bytes(), public: k.PublicKey().Bytes()}, nil
		}
	case *ecdh.PublicKey:
		if id == crypto.AlgorithmIDX25519 && k.Curve() == ecdh.X25519() {
			return &x25519Key{public: k.Bytes()}, nil
		}
	}
	return nil, fmt.Errorf("%T is not a key for algorithm id %d", parsed, id)
}

// decodeNISTKey maps a parsed NIST curve key to ECDSA or ECDH material.
func decodeNISTKey(id crypto.AlgorithmID, private *ecdsa.PrivateKey, public *ecdsa.PublicKey) (keyMaterial, error) {
	switch id {
	case crypto.AlgorithmIDEC:
		return &ecdsaKey{private: private, public: public}, nil
	case crypto.AlgorithmIDECDH:
		key := &ecdhKey{curve: public.Curve.Params().Name}
		var err error
		if key.public, err = public.ECDH(); err != nil {
			return nil, err
		}
		if private != nil {
			if key.private, err = private.ECDH(); err != nil {
				return nil, err
			}
		}
		return key, nil
	}
	return nil, fmt.Errorf("NIST curve key is not a key for algorithm id %d", id)
}

func decodeMLDSA(block *pem.Block) (keyMaterial, error) {
	switch block.Type {
	case pemMLDSAPrivateKey:
		private := new(mldsa65.PrivateKey)
		if err := private.UnmarshalBinary(block.Bytes); err != nil {
			return nil, err
		}
		return &mldsaKey{private: private, public: private.Public().(*mldsa65.PublicKey)}, nil
	case pemMLDSAPublicKey:
		public := new(mldsa65.PublicKey)
		if err := public.UnmarshalBinary(block.Bytes); err != nil {
			return nil, err
		}
		return &mldsaKey{public: public}, nil
	}
	return nil, fmt.Errorf("unexpected PEM type %q", block.Type)
}

func decodeDH(block *pem.Block) (keyMaterial, error) {
	switch block.Type {
	case pemDHParameters:
		var params dhParametersASN1
		if _, err := asn1.Unmarshal(block.Bytes, &params); err != nil {
			return nil, err
		}
		return &dhGroup{p: params.P, g: params.G}, nil
	case pemDHPrivateKey:
		var key dhPrivateKeyASN1
		if _, err := asn1.Unmarshal(block.Bytes, &key); err != nil {
			return nil, err
		}
		return &dhKey{group: &dhGroup{p: key.P, g: key.G}, x: key.X, y: key.Y}, nil
	case pemDHPublicKey:
		var key dhPublicKeyASN1
		if _, err := asn1.Unmarshal(block.Bytes, &key); err != nil {
			return nil, err
		}
		return &dhKey{group: &dhGroup{p: key.P, g: key.G}, y: key.Y}, nil
	}
	return nil, fmt.Errorf("unexpected PEM type %q", block.Type)
}
