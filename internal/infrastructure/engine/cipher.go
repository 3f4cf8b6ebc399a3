package engine

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"strings"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	gcmNonceSize = 12
	aeadTagSize  = 16
)

// cipherSpec is a resolved primitive. AEAD and counter modes report a block
// size of 1.
type cipherSpec struct {
	name      string
	mode      crypto.BlockMode
	keyBytes  int
	blockSize int
}

func (s *cipherSpec) aead() bool {
	return s.mode == crypto.BlockModeGCM || s.mode == crypto.BlockModePoly1305
}

func resolveCipher(name string, mode crypto.BlockMode, keyBits int) (*cipherSpec, error) {
	switch strings.ToLower(name) {
	case "aes":
		if keyBits != 128 && keyBits != 192 && keyBits != 256 {
			return nil, fmt.Errorf("no AES-%d", keyBits)
		}
		switch mode {
		case crypto.BlockModeECB, crypto.BlockModeCBC:
			return &cipherSpec{name: "AES", mode: mode, keyBytes: keyBits / 8, blockSize: aes.BlockSize}, nil
		case crypto.BlockModeCTR, crypto.BlockModeGCM:
			return &cipherSpec{name: "AES", mode: mode, keyBytes: keyBits / 8, blockSize: 1}, nil
		}
		return nil, fmt.Errorf("no AES-%d-%s", keyBits, mode)

	case "chacha20-poly1305":
		if keyBits != chacha20poly1305.KeySize*8 || mode != crypto.BlockModePoly1305 {
			return nil, fmt.Errorf("no ChaCha20-Poly1305 with %d bits in mode %s", keyBits, mode)
		}
		return &cipherSpec{name: "ChaCha20-Poly1305", mode: mode, keyBytes: chacha20poly1305.KeySize, blockSize: 1}, nil
	}
	return nil, fmt.Errorf("unknown cipher %q", name)
}

// FetchCipher resolves the primitive for name, mode and key size.
func (e *SoftwareEngine) FetchCipher(name string, mode crypto.BlockMode, keyBits int) (crypto.Handle, error) {
	const fn = "FetchCipher"
	spec, err := resolveCipher(name, mode, keyBits)
	if err != nil {
		return crypto.NilHandle, e.raise(libCipher, fn, reasonUnsupportedAlgorithm, err)
	}
	return e.put(fn, kindCipher, spec)
}

// FreeCipher releases a cipher handle.
func (e *SoftwareEngine) FreeCipher(cipher crypto.Handle) {
	e.release("FreeCipher", cipher, kindCipher)
}

// CipherBlockSize reports the block size of a cipher.
func (e *SoftwareEngine) CipherBlockSize(cipher crypto.Handle) (int, error) {
	spec, err := lookup[*cipherSpec](e, "CipherBlockSize", cipher, kindCipher)
	if err != nil {
		return 0, err
	}
	return spec.blockSize, nil
}

type cipherState int

const (
	cipherIdle cipherState = iota
	cipherReady
	cipherUpdating
	cipherFinished
)

type cipherContext struct {
	spec      *cipherSpec
	state     cipherState
	encrypt   bool
	key       []byte
	iv        []byte
	padding   bool
	tagLength int
	aad       []byte
	pending   []byte
	blocks    cipher.BlockMode
	stream    cipher.Stream
}

// NewCipherContext creates an uninitialized cipher context.
func (e *SoftwareEngine) NewCipherContext() (crypto.Handle, error) {
	return e.put("NewCipherContext", kindCipherContext, &cipherContext{})
}

// FreeCipherContext zeroes and releases a cipher context.
func (e *SoftwareEngine) FreeCipherContext(ctx crypto.Handle) {
	cc := e.release("FreeCipherContext", ctx, kindCipherContext).(*cipherContext)
	clear(cc.key)
	clear(cc.pending)
}

// CipherInit binds a cipher, a key and an optional IV to ctx. Padding is
// enabled and the AEAD tag length is 16 after init.
func (e *SoftwareEngine) CipherInit(ctx, cipherHandle crypto.Handle, key, iv []byte, encrypt bool) error {
	const fn = "CipherInit"
	cc, err := lookup[*cipherContext](e, fn, ctx, kindCipherContext)
	if err != nil {
		return err
	}
	spec, err := lookup[*cipherSpec](e, fn, cipherHandle, kindCipher)
	if err != nil {
		return err
	}
	if len(key) != spec.keyBytes {
		return e.raise(libCipher, fn, reasonInvalidKey, fmt.Errorf("key is %d bytes, %s needs %d", len(key), spec.name, spec.keyBytes))
	}

	var blocks cipher.BlockMode
	var stream cipher.Stream
	switch spec.mode {
	case crypto.BlockModeECB, crypto.BlockModeCBC, crypto.BlockModeCTR:
		block, err := aes.NewCipher(key)
		if err != nil {
			return e.raise(libCipher, fn, reasonInvalidKey, err)
		}
		if spec.mode != crypto.BlockModeECB && len(iv) != aes.BlockSize {
			return e.raise(libCipher, fn, reasonInvalidParameter, fmt.Errorf("%s needs a %d byte iv, got %d", spec.mode, aes.BlockSize, len(iv)))
		}
		switch {
		case spec.mode == crypto.BlockModeECB:
			blocks = newECB(block, encrypt)
		case spec.mode == crypto.BlockModeCTR:
			stream = cipher.NewCTR(block, iv)
		case encrypt:
			blocks = cipher.NewCBCEncrypter(block, iv)
		default:
			blocks = cipher.NewCBCDecrypter(block, iv)
		}
	case crypto.BlockModeGCM:
		if len(iv) != gcmNonceSize {
			return e.raise(libCipher, fn, reasonInvalidParameter, fmt.Errorf("GCM needs a %d byte nonce, got %d", gcmNonceSize, len(iv)))
		}
	case crypto.BlockModePoly1305:
		if len(iv) != chacha20poly1305.NonceSize {
			return e.raise(libCipher, fn, reasonInvalidParameter, fmt.Errorf("ChaCha20-Poly1305 needs a %d byte nonce, got %d", chacha20poly1305.NonceSize, len(iv)))
		}
	}

	*cc = cipherContext{
		spec:      spec,
		state:     cipherReady,
		encrypt:   encrypt,
		key:       append([]byte(nil), key...),
		iv:        append([]byte(nil), iv...),
		padding:   true,
		tagLength: aeadTagSize,
		blocks:    blocks,
		stream:    stream,
	}
	return nil
}

func (e *SoftwareEngine) configurableCipher(fn string, ctx crypto.Handle) (*cipherContext, error) {
	cc, err := lookup[*cipherContext](e, fn, ctx, kindCipherContext)
	if err != nil {
		return nil, err
	}
	if cc.state != cipherReady {
		return nil, e.raise(libCipher, fn, reasonInvalidState, errors.New("configure after init and before update"))
	}
	return cc, nil
}

// CipherSetPadding toggles PKCS#7 padding. Modes without blocks ignore it.
func (e *SoftwareEngine) CipherSetPadding(ctx crypto.Handle, enabled bool) error {
	cc, err := e.configurableCipher("CipherSetPadding", ctx)
	if err != nil {
		return err
	}
	cc.padding = enabled
	return nil
}

// CipherSetTagLength sets the AEAD tag length in bytes.
func (e *SoftwareEngine) CipherSetTagLength(ctx crypto.Handle, tagLength int) error {
	const fn = "CipherSetTagLength"
	cc, err := e.configurableCipher(fn, ctx)
	if err != nil {
		return err
	}

	switch {
	case cc.spec.mode == crypto.BlockModeGCM && tagLength >= 12 && tagLength <= aeadTagSize:
	case cc.spec.mode == crypto.BlockModePoly1305 && tagLength == aeadTagSize:
	default:
		return e.raise(libCipher, fn, reasonInvalidParameter, fmt.Errorf("tag length %d for %s-%s", tagLength, cc.spec.name, cc.spec.mode))
	}
	cc.tagLength = tagLength
	return nil
}

// CipherSetAAD appends additional authenticated data.
func (e *SoftwareEngine) CipherSetAAD(ctx crypto.Handle, aad []byte) error {
	const fn = "CipherSetAAD"
	cc, err := e.configurableCipher(fn, ctx)
	if err != nil {
		return err
	}
	if !cc.spec.aead() {
		return e.raise(libCipher, fn, reasonInvalidParameter, fmt.Errorf("%s-%s takes no AAD", cc.spec.name, cc.spec.mode))
	}
	cc.aad = append(cc.aad, aad...)
	return nil
}

// CipherUpdate processes in and writes what can be produced so far to out.
// Block modes hold back partial blocks, and when decrypting with padding the
// last full block. AEAD modes buffer everything until CipherFinal.
func (e *SoftwareEngine) CipherUpdate(ctx crypto.Handle, out, in []byte) (int, error) {
	const fn = "CipherUpdate"
	cc, err := lookup[*cipherContext](e, fn, ctx, kindCipherContext)
	if err != nil {
		return 0, err
	}
	if cc.state != cipherReady && cc.state != cipherUpdating {
		return 0, e.raise(libCipher, fn, reasonInvalidState, nil)
	}
	cc.state = cipherUpdating

	switch {
	case cc.stream != nil:
		if len(out) < len(in) {
			return 0, e.raise(libCipher, fn, reasonBufferTooSmall, nil)
		}
		cc.stream.XORKeyStream(out[:len(in)], in)
		return len(in), nil

	case cc.blocks != nil:
		cc.pending = append(cc.pending, in...)
		n := len(cc.pending) - len(cc.pending)%cc.spec.blockSize
		if !cc.encrypt && cc.padding && n > 0 && n == len(cc.pending) {
			n -= cc.spec.blockSize
		}
		if len(out) < n {
			return 0, e.raise(libCipher, fn, reasonBufferTooSmall, nil)
		}
		cc.blocks.CryptBlocks(out[:n], cc.pending[:n])
		cc.pending = append(cc.pending[:0], cc.pending[n:]...)
		return n, nil

	default:
		cc.pending = append(cc.pending, in...)
		return 0, nil
	}
}

// CipherFinal writes the remaining output: the padded last block, or the
// whole AEAD result. Encryption appends the tag to the ciphertext; decryption
// expects it at the end of the input.
func (e *SoftwareEngine) CipherFinal(ctx crypto.Handle, out []byte) (int, error) {
	const fn = "CipherFinal"
	cc, err := lookup[*cipherContext](e, fn, ctx, kindCipherContext)
	if err != nil {
		return 0, err
	}
	if cc.state != cipherReady && cc.state != cipherUpdating {
		return 0, e.raise(libCipher, fn, reasonInvalidState, nil)
	}
	cc.state = cipherFinished

	switch {
	case cc.stream != nil:
		return 0, nil
	case cc.blocks != nil:
		return e.finalBlocks(fn, cc, out)
	default:
		return e.finalAEAD(fn, cc, out)
	}
}

func (e *SoftwareEngine) finalBlocks(fn string, cc *cipherContext, out []byte) (int, error) {
	bs := cc.spec.blockSize

	if !cc.padding {
		if len(cc.pending) != 0 {
			return 0, e.raise(libCipher, fn, reasonInvalidParameter, errors.New("data not a multiple of the block length"))
		}
		return 0, nil
	}

	if cc.encrypt {
		padded := pkcs7Pad(cc.pending, bs)
		if len(out) < len(padded) {
			return 0, e.raise(libCipher, fn, reasonBufferTooSmall, nil)
		}
		cc.blocks.CryptBlocks(out[:len(padded)], padded)
		return len(padded), nil
	}

	if len(cc.pending) != bs {
		return 0, e.raise(libCipher, fn, reasonBadDecrypt, errors.New("wrong final block length"))
	}
	last := make([]byte, bs)
	cc.blocks.CryptBlocks(last, cc.pending)
	plain, ok := pkcs7Unpad(last, bs)
	if !ok {
		return 0, e.raise(libCipher, fn, reasonBadDecrypt, nil)
	}
	if len(out) < len(plain) {
		return 0, e.raise(libCipher, fn, reasonBufferTooSmall, nil)
	}
	return copy(out, plain), nil
}

func (e *SoftwareEngine) finalAEAD(fn string, cc *cipherContext, out []byte) (int, error) {
	var aead cipher.AEAD
	var err error
	if cc.spec.mode == crypto.BlockModeGCM {
		var block cipher.Block
		if block, err = aes.NewCipher(cc.key); err == nil {
			aead, err = cipher.NewGCMWithTagSize(block, cc.tagLength)
		}
	} else {
		aead, err = chacha20poly1305.New(cc.key)
	}
	if err != nil {
		return 0, e.raise(libCipher, fn, reasonOperationFailed, err)
	}

	if cc.encrypt {
		if len(out) < len(cc.pending)+aead.Overhead() {
			return 0, e.raise(libCipher, fn, reasonBufferTooSmall, nil)
		}
		sealed := aead.Seal(out[:0], cc.iv, cc.pending, cc.aad)
		return len(sealed), nil
	}

	if len(cc.pending) < aead.Overhead() {
		return 0, e.raise(libCipher, fn, reasonBadDecrypt, errors.New("input shorter than the tag"))
	}
	plain, err := aead.Open(nil, cc.iv, cc.pending, cc.aad)
	if err != nil {
		return 0, e.raise(libCipher, fn, reasonBadDecrypt, err)
	}
	if len(out) < len(plain) {
		return 0, e.raise(libCipher, fn, reasonBufferTooSmall, nil)
	}
	return copy(out, plain), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(append([]byte(nil), data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(block []byte, blockSize int) ([]byte, bool) {
	n := int(block[len(block)-1])
	if n == 0 || n > blockSize {
		return nil, false
	}
	for _, b := range block[len(block)-n:] {
		if int(b) != n {
			return nil, false
		}
	}
	return block[:len(block)-n], true
}

// ecb encrypts or decrypts each block independently.
type ecb struct {
	block   cipher.Block
	encrypt bool
}

func newECB(block cipher.Block, encrypt bool) cipher.BlockMode {
	return &ecb{block: block, encrypt: encrypt}
}

func (m *ecb) BlockSize() int { return m.block.BlockSize() }

func (m *ecb) CryptBlocks(dst, src []byte) {
	bs := m.block.BlockSize()
	for i := 0; i < len(src); i += bs {
		if m.encrypt {
			m.block.Encrypt(dst[i:i+bs], src[i:i+bs])
		} else {
			m.block.Decrypt(dst[i:i+bs], src[i:i+bs])
		}
	}
}
