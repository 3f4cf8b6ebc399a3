package engine

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"

	"golang.org/x/crypto/curve25519"
)

type keyOp int

const (
	keyOpNone keyOp = iota
	keyOpEncrypt
	keyOpDecrypt
	keyOpDerive
)

// keyContext is an operation context bound to one key.
type keyContext struct {
	key     keyMaterial
	op      keyOp
	padding crypto.Padding
	digest  string
	peer    keyMaterial
}

func (e *SoftwareEngine) rsaContext(fn string, ctx crypto.Handle, needPrivate bool) (*keyContext, *rsaKey, error) {
	kc, err := lookup[*keyContext](e, fn, ctx, kindKeyContext)
	if err != nil {
		return nil, nil, err
	}
	key, ok := kc.key.(*rsaKey)
	if !ok {
		return nil, nil, e.raise(libAsymmetric, fn, reasonUnsupportedAlgorithm, fmt.Errorf("%T cannot encrypt", kc.key))
	}
	if needPrivate && !key.hasPrivate() {
		return nil, nil, e.raise(libAsymmetric, fn, reasonInvalidKey, errors.New("private key required"))
	}
	return kc, key, nil
}

// EncryptInit prepares ctx for public key encryption with PKCS#1 v1.5 padding.
func (e *SoftwareEngine) EncryptInit(ctx crypto.Handle) error {
	kc, _, err := e.rsaContext("EncryptInit", ctx, false)
	if err != nil {
		return err
	}
	kc.op, kc.padding, kc.digest = keyOpEncrypt, crypto.PaddingPKCS1, ""
	return nil
}

// DecryptInit prepares ctx for private key decryption with PKCS#1 v1.5 padding.
func (e *SoftwareEngine) DecryptInit(ctx crypto.Handle) error {
	kc, _, err := e.rsaContext("DecryptInit", ctx, true)
	if err != nil {
		return err
	}
	kc.op, kc.padding, kc.digest = keyOpDecrypt, crypto.PaddingPKCS1, ""
	return nil
}

// SetPadding selects PKCS#1 v1.5 or OAEP. digest names the OAEP hash and
// defaults to SHA-256.
func (e *SoftwareEngine) SetPadding(ctx crypto.Handle, padding crypto.Padding, digest string) error {
	const fn = "SetPadding"
	kc, err := lookup[*keyContext](e, fn, ctx, kindKeyContext)
	if err != nil {
		return err
	}
	if kc.op != keyOpEncrypt && kc.op != keyOpDecrypt {
		return e.raise(libAsymmetric, fn, reasonInvalidState, nil)
	}

	switch padding {
	case crypto.PaddingPKCS1:
	case crypto.PaddingOAEP:
		if digest == "" {
			digest = crypto.DigestSHA256
		}
		if _, ok := hashFor(digest); !ok {
			return e.raise(libAsymmetric, fn, reasonInvalidParameter, fmt.Errorf("OAEP digest %q", digest))
		}
	default:
		return e.raise(libAsymmetric, fn, reasonInvalidParameter, fmt.Errorf("padding %q cannot encrypt", padding))
	}
	kc.padding, kc.digest = padding, digest
	return nil
}

// Encrypt encrypts in under the context's public key. With a nil out it
// reports the ciphertext length.
func (e *SoftwareEngine) Encrypt(ctx crypto.Handle, out, in []byte) (int, error) {
	const fn = "Encrypt"
	kc, key, err := e.rsaContext(fn, ctx, false)
	if err != nil {
		return 0, err
	}
	if kc.op != keyOpEncrypt {
		return 0, e.raise(libAsymmetric, fn, reasonInvalidState, nil)
	}

	size := key.public.Size()
	if out == nil {
		return size, nil
	}
	if len(out) < size {
		return 0, e.raise(libAsymmetric, fn, reasonBufferTooSmall, nil)
	}

	var result []byte
	if kc.padding == crypto.PaddingOAEP {
		h, _ := hashFor(kc.digest)
		result, err = rsa.EncryptOAEP(h.new(), rand.Reader, key.public, in, nil)
	} else {
		result, err = rsa.EncryptPKCS1v15(rand.Reader, key.public, in)
	}
	if err != nil {
		return 0, e.raise(libAsymmetric, fn, reasonOperationFailed, err)
	}
	return copy(out, result), nil
}

// Decrypt decrypts in with the context's private key. With a nil out it
// reports an upper bound of the plaintext length.
func (e *SoftwareEngine) Decrypt(ctx crypto.Handle, out, in []byte) (int, error) {
	const fn = "Decrypt"
	kc, key, err := e.rsaContext(fn, ctx, true)
	if err != nil {
		return 0, err
	}
	if kc.op != keyOpDecrypt {
		return 0, e.raise(libAsymmetric, fn, reasonInvalidState, nil)
	}
	if out == nil {
		return key.public.Size(), nil
	}

	var result []byte
	if kc.padding == crypto.PaddingOAEP {
		h, _ := hashFor(kc.digest)
		result, err = rsa.DecryptOAEP(h.new(), rand.Reader, key.private, in, nil)
	} else {
		result, err = rsa.DecryptPKCS1v15(rand.Reader, key.private, in)
	}
	if err != nil {
		return 0, e.raise(libAsymmetric, fn, reasonBadDecrypt, err)
	}
	if len(out) < len(result) {
		return 0, e.raise(libAsymmetric, fn, reasonBufferTooSmall, nil)
	}
	return copy(out, result), nil
}

// DeriveInit prepares ctx for shared secret derivation.
func (e *SoftwareEngine) DeriveInit(ctx crypto.Handle) error {
	const fn = "DeriveInit"
	kc, err := lookup[*keyContext](e, fn, ctx, kindKeyContext)
	if err != nil {
		return err
	}
	switch kc.key.(type) {
	case *dhKey, *ecdhKey, *x25519Key:
	default:
		return e.raise(libAsymmetric, fn, reasonUnsupportedAlgorithm, fmt.Errorf("%T cannot derive", kc.key))
	}
	if !kc.key.hasPrivate() {
		return e.raise(libAsymmetric, fn, reasonInvalidKey, errors.New("private key required"))
	}
	kc.op, kc.peer = keyOpDerive, nil
	return nil
}

// DeriveSetPeer sets the peer public key. It must use the same algorithm and
// the same group or curve as the context key.
func (e *SoftwareEngine) DeriveSetPeer(ctx, peer crypto.Handle) error {
	const fn = "DeriveSetPeer"
	kc, err := lookup[*keyContext](e, fn, ctx, kindKeyContext)
	if err != nil {
		return err
	}
	if kc.op != keyOpDerive {
		return e.raise(libAsymmetric, fn, reasonInvalidState, nil)
	}
	material, err := lookup[keyMaterial](e, fn, peer, kindKey)
	if err != nil {
		return err
	}

	var compatible bool
	switch own := kc.key.(type) {
	case *dhKey:
		other, ok := material.(*dhKey)
		compatible = ok && own.group.equal(other.group) && validDHPublic(other)
	case *ecdhKey:
		other, ok := material.(*ecdhKey)
		compatible = ok && own.curve == other.curve
	case *x25519Key:
		_, compatible = material.(*x25519Key)
	}
	if !compatible {
		return e.raise(libAsymmetric, fn, reasonInvalidKey, errors.New("peer key does not match"))
	}

	kc.peer = material
	return nil
}

// validDHPublic checks 1 < y < p-1.
func validDHPublic(k *dhKey) bool {
	pMinusOne := new(big.Int).Sub(k.group.p, big.NewInt(1))
	return k.y.Cmp(big.NewInt(1)) > 0 && k.y.Cmp(pMinusOne) < 0
}

// Derive computes the shared secret. With a nil out it reports its length.
// DH secrets are left-padded to the byte length of the prime.
func (e *SoftwareEngine) Derive(ctx crypto.Handle, out []byte) (int, error) {
	const fn = "Derive"
	kc, err := lookup[*keyContext](e, fn, ctx, kindKeyContext)
	if err != nil {
		return 0, err
	}
	if kc.op != keyOpDerive || kc.peer == nil {
		return 0, e.raise(libAsymmetric, fn, reasonInvalidState, nil)
	}

	var size int
	switch own := kc.key.(type) {
	case *dhKey:
		size = (own.group.p.BitLen() + 7) / 8
	case *ecdhKey:
		size = coordinateSize(own.curve)
	case *x25519Key:
		size = curve25519.PointSize
	}
	if out == nil {
		return size, nil
	}
	if len(out) < size {
		return 0, e.raise(libAsymmetric, fn, reasonBufferTooSmall, nil)
	}

	var secret []byte
	switch own := kc.key.(type) {
	case *dhKey:
		peer := kc.peer.(*dhKey)
		secret = new(big.Int).Exp(peer.y, own.x, own.group.p).FillBytes(make([]byte, size))
	case *ecdhKey:
		secret, err = own.private.ECDH(kc.peer.(*ecdhKey).public)
	case *x25519Key:
		secret, err = curve25519.X25519(own.private, kc.peer.(*x25519Key).public)
	}
	if err != nil {
		return 0, e.raise(libAsymmetric, fn, reasonOperationFailed, err)
	}
	return copy(out, secret), nil
}
