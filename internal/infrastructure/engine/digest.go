package engine

import (
	stdcrypto "crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"

	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
	"golang.org/x/crypto/sha3"
)

type digestSpec struct {
	id  stdcrypto.Hash
	new func() hash.Hash
}

var digestSpecs = map[string]digestSpec{
	crypto.DigestSHA256:   {id: stdcrypto.SHA256, new: sha256.New},
	crypto.DigestSHA384:   {id: stdcrypto.SHA384, new: sha512.New384},
	crypto.DigestSHA512:   {id: stdcrypto.SHA512, new: sha512.New},
	crypto.DigestSHA3_256: {id: stdcrypto.SHA3_256, new: sha3.New256},
	crypto.DigestSHA3_512: {id: stdcrypto.SHA3_512, new: sha3.New512},
}

func hashFor(name string) (digestSpec, bool) {
	spec, ok := digestSpecs[name]
	return spec, ok
}

type digestOp int

const (
	digestIdle digestOp = iota
	digestHash
	digestSign
	digestVerify
)

type digestContext struct {
	op      digestOp
	spec    digestSpec
	hash    hash.Hash
	key     keyMaterial
	padding crypto.Padding
}

// NewDigestContext creates an uninitialized digest context.
func (e *SoftwareEngine) NewDigestContext() (crypto.Handle, error) {
	return e.put("NewDigestContext", kindDigestContext, &digestContext{})
}

// FreeDigestContext releases a digest context.
func (e *SoftwareEngine) FreeDigestContext(ctx crypto.Handle) {
	e.release("FreeDigestContext", ctx, kindDigestContext)
}

// DigestInit starts a plain digest computation.
func (e *SoftwareEngine) DigestInit(ctx crypto.Handle, digest string) error {
	const fn = "DigestInit"
	dc, err := lookup[*digestContext](e, fn, ctx, kindDigestContext)
	if err != nil {
		return err
	}
	spec, ok := hashFor(digest)
	if !ok {
		return e.raise(libDigest, fn, reasonUnsupportedAlgorithm, fmt.Errorf("digest %q", digest))
	}
	*dc = digestContext{op: digestHash, spec: spec, hash: spec.new()}
	return nil
}

// DigestUpdate feeds data into the digest.
func (e *SoftwareEngine) DigestUpdate(ctx crypto.Handle, data []byte) error {
	const fn = "DigestUpdate"
	dc, err := lookup[*digestContext](e, fn, ctx, kindDigestContext)
	if err != nil {
		return err
	}
	if dc.op != digestHash {
		return e.raise(libDigest, fn, reasonInvalidState, nil)
	}
	dc.hash.Write(data)
	return nil
}

// DigestSize reports the digest length in bytes.
func (e *SoftwareEngine) DigestSize(ctx crypto.Handle) (int, error) {
	const fn = "DigestSize"
	dc, err := lookup[*digestContext](e, fn, ctx, kindDigestContext)
	if err != nil {
		return 0, err
	}
	if dc.op != digestHash {
		return 0, e.raise(libDigest, fn, reasonInvalidState, nil)
	}
	return dc.hash.Size(), nil
}

// DigestFinal writes the digest to out and finishes the context.
func (e *SoftwareEngine) DigestFinal(ctx crypto.Handle, out []byte) (int, error) {
	const fn = "DigestFinal"
	dc, err := lookup[*digestContext](e, fn, ctx, kindDigestContext)
	if err != nil {
		return 0, err
	}
	if dc.op != digestHash {
		return 0, e.raise(libDigest, fn, reasonInvalidState, nil)
	}
	if len(out) < dc.hash.Size() {
		return 0, e.raise(libDigest, fn, reasonBufferTooSmall, nil)
	}
	sum := dc.hash.Sum(out[:0])
	dc.op = digestIdle
	return len(sum), nil
}

// signingSetup checks that key, digest and padding form a signature scheme
// and returns the digest spec, empty for schemes that sign messages directly.
func (e *SoftwareEngine) signingSetup(fn string, key keyMaterial, digest string, padding crypto.Padding) (digestSpec, crypto.Padding, error) {
	var spec digestSpec
	switch key.(type) {
	case *rsaKey, *ecdsaKey:
		var ok bool
		if spec, ok = hashFor(digest); !ok || spec.id == stdcrypto.SHA3_256 || spec.id == stdcrypto.SHA3_512 {
			return spec, "", e.raise(libDigest, fn, reasonInvalidParameter, fmt.Errorf("digest %q", digest))
		}
	case *ed25519Key, *mldsaKey:
		if digest != "" {
			return spec, "", e.raise(libDigest, fn, reasonInvalidParameter, fmt.Errorf("%T signs messages directly", key))
		}
	default:
		return spec, "", e.raise(libDigest, fn, reasonUnsupportedAlgorithm, fmt.Errorf("%T cannot sign", key))
	}

	_, isRSA := key.(*rsaKey)
	switch {
	case isRSA && (padding == "" || padding == crypto.PaddingPKCS1):
		padding = crypto.PaddingPKCS1
	case isRSA && padding == crypto.PaddingPSS:
	case !isRSA && padding == "":
	default:
		return spec, "", e.raise(libDigest, fn, reasonInvalidParameter, fmt.Errorf("padding %q", padding))
	}
	return spec, padding, nil
}

func (e *SoftwareEngine) signatureInit(fn string, ctx, key crypto.Handle, digest string, padding crypto.Padding, op digestOp) error {
	dc, err := lookup[*digestContext](e, fn, ctx, kindDigestContext)
	if err != nil {
		return err
	}
	material, err := lookup[keyMaterial](e, fn, key, kindKey)
	if err != nil {
		return err
	}
	if op == digestSign && !material.hasPrivate() {
		return e.raise(libDigest, fn, reasonInvalidKey, errors.New("private key required"))
	}
	spec, padding, err := e.signingSetup(fn, material, digest, padding)
	if err != nil {
		return err
	}
	*dc = digestContext{op: op, spec: spec, key: material, padding: padding}
	return nil
}

// DigestSignInit binds a private key for signing.
func (e *SoftwareEngine) DigestSignInit(ctx crypto.Handle, digest string, key crypto.Handle, padding crypto.Padding) error {
	return e.signatureInit("DigestSignInit", ctx, key, digest, padding, digestSign)
}

// DigestVerifyInit binds a key for verification.
func (e *SoftwareEngine) DigestVerifyInit(ctx crypto.Handle, digest string, key crypto.Handle, padding crypto.Padding) error {
	return e.signatureInit("DigestVerifyInit", ctx, key, digest, padding, digestVerify)
}

func (dc *digestContext) digest(data []byte) []byte {
	h := dc.spec.new()
	h.Write(data)
	return h.Sum(nil)
}

// maxSignatureSize is the largest signature the context key can produce.
func (dc *digestContext) maxSignatureSize() int {
	switch k := dc.key.(type) {
	case *rsaKey:
		return k.public.Size()
	case *ecdsaKey:
		// DER SEQUENCE of two INTEGERs, each possibly carrying a leading zero byte.
		integers := 2 * (coordinateSize(k.public.Curve.Params().Name) + 3)
		if integers < 128 {
			return integers + 2
		}
		return integers + 3
	case *ed25519Key:
		return ed25519.SignatureSize
	case *mldsaKey:
		return mldsa65.SignatureSize
	default:
		return 0
	}
}

// DigestSign signs data in one shot. With a nil out it reports the maximum
// signature length; the actual length can be shorter.
func (e *SoftwareEngine) DigestSign(ctx crypto.Handle, out, data []byte) (int, error) {
	const fn = "DigestSign"
	dc, err := lookup[*digestContext](e, fn, ctx, kindDigestContext)
	if err != nil {
		return 0, err
	}
	if dc.op != digestSign {
		return 0, e.raise(libDigest, fn, reasonInvalidState, nil)
	}
	if out == nil {
		return dc.maxSignatureSize(), nil
	}

	var signature []byte
	switch k := dc.key.(type) {
	case *rsaKey:
		if dc.padding == crypto.PaddingPSS {
			signature, err = rsa.SignPSS(rand.Reader, k.private, dc.spec.id, dc.digest(data), &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash})
		} else {
			signature, err = rsa.SignPKCS1v15(rand.Reader, k.private, dc.spec.id, dc.digest(data))
		}
	case *ecdsaKey:
		signature, err = ecdsa.SignASN1(rand.Reader, k.private, dc.digest(data))
	case *ed25519Key:
		signature = ed25519.Sign(k.private, data)
	case *mldsaKey:
		signature = make([]byte, mldsa65.SignatureSize)
		err = mldsa65.SignTo(k.private, data, nil, true, signature)
	}
	if err != nil {
		return 0, e.raise(libDigest, fn, reasonOperationFailed, err)
	}
	if len(out) < len(signature) {
		return 0, e.raise(libDigest, fn, reasonBufferTooSmall, nil)
	}
	return copy(out, signature), nil
}

// DigestVerify checks signature over data. A signature that does not verify
// yields false and a nil error.
func (e *SoftwareEngine) DigestVerify(ctx crypto.Handle, signature, data []byte) (bool, error) {
	const fn = "DigestVerify"
	dc, err := lookup[*digestContext](e, fn, ctx, kindDigestContext)
	if err != nil {
		return false, err
	}
	if dc.op != digestVerify {
		return false, e.raise(libDigest, fn, reasonInvalidState, nil)
	}

	switch k := dc.key.(type) {
	case *rsaKey:
		if dc.padding == crypto.PaddingPSS {
			return rsa.VerifyPSS(k.public, dc.spec.id, dc.digest(data), signature, &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash}) == nil, nil
		}
		return rsa.VerifyPKCS1v15(k.public, dc.spec.id, dc.digest(data), signature) == nil, nil
	case *ecdsaKey:
		return ecdsa.VerifyASN1(k.public, dc.digest(data), signature), nil
	case *ed25519Key:
		return ed25519.Verify(k.public, data, signature), nil
	case *mldsaKey:
		return mldsa65.Verify(k.public, data, nil, signature), nil
	default:
		return false, e.raise(libDigest, fn, reasonUnsupportedAlgorithm, nil)
	}
}
