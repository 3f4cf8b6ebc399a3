package crypto

import (
	"fmt"

	"go.uber.org/multierr"
)

// KeyBody is the handle a Key owns. It is either a DataBody (raw key
// material) or an AsymmetricBody (an engine key); each variant knows how to
// release its handle.
type KeyBody interface {
	Handle() Handle
	release(engine KeyReleaser)
}

// DataBody holds a key material handle.
type DataBody struct {
	handle Handle
}

// Handle returns the data handle
func (b DataBody) Handle() Handle { return b.handle }

func (b DataBody) release(engine KeyReleaser) { engine.FreeData(b.handle) }

// AsymmetricBody holds an engine key handle.
type AsymmetricBody struct {
	handle Handle
}

// Handle returns the key handle
func (b AsymmetricBody) Handle() Handle { return b.handle }

func (b AsymmetricBody) release(engine KeyReleaser) { engine.FreeKey(b.handle) }

// Key is the sole owner of one engine handle. Close releases it exactly once;
// any other use after Close fails with ErrKeyClosed. A Key is not safe for
// concurrent use.
type Key struct {
	engine    KeyReleaser
	algorithm *Algorithm
	keyType   KeyType
	bits      int
	body      KeyBody
	closed    bool
}

// NewSymmetricKey takes ownership of a key material handle.
func NewSymmetricKey(engine KeyReleaser, algorithm *Algorithm, data Handle, bits int) *Key {
	return &Key{
		engine:    engine,
		algorithm: algorithm,
		keyType:   KeyTypeSymmetric,
		bits:      bits,
		body:      DataBody{handle: data},
	}
}

// NewAsymmetricKey takes ownership of an engine key handle.
func NewAsymmetricKey(engine KeyReleaser, algorithm *Algorithm, keyType KeyType, key Handle, bits int) *Key {
	return &Key{
		engine:    engine,
		algorithm: algorithm,
		keyType:   keyType,
		bits:      bits,
		body:      AsymmetricBody{handle: key},
	}
}

// Algorithm returns the algorithm the key belongs to
func (k *Key) Algorithm() *Algorithm { return k.algorithm }

// Type returns the key role
func (k *Key) Type() KeyType { return k.keyType }

// Bits returns the key size in bits
func (k *Key) Bits() int { return k.bits }

// Closed reports whether the handle has been released
func (k *Key) Closed() bool { return k.closed }

// Body returns the owned body, or ErrKeyClosed.
func (k *Key) Body() (KeyBody, error) {
	if k.closed {
		return nil, fmt.Errorf("%w: %s %s key", ErrKeyClosed, k.algorithm, k.keyType)
	}
	return k.body, nil
}

// Handle returns the owned handle, or ErrKeyClosed.
func (k *Key) Handle() (Handle, error) {
	body, err := k.Body()
	if err != nil {
		return NilHandle, err
	}
	return body.Handle(), nil
}

// Close releases the handle. Closing an already closed key is a no-op.
func (k *Key) Close() error {
	if k.closed {
		return nil
	}
	k.closed = true
	k.body.release(k.engine)
	return nil
}

func (k *Key) String() string {
	return fmt.Sprintf("%s %s key (%d bits)", k.algorithm, k.keyType, k.bits)
}

// KeyPair owns a public and a private key created together. The two keys
// have independent lifetimes; Close closes both.
type KeyPair struct {
	Public  *Key
	Private *Key
}

// NewKeyPair pairs two keys.
func NewKeyPair(public, private *Key) *KeyPair {
	return &KeyPair{Public: public, Private: private}
}

// Close closes both keys.
func (p *KeyPair) Close() error {
	return multierr.Combine(p.Public.Close(), p.Private.Close())
}
