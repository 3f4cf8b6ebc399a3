package engine

import (
	"crypto/rand"
	"fmt"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
)

// NewRandomData creates a handle holding size bytes from crypto/rand.
func (e *SoftwareEngine) NewRandomData(size int) (crypto.Handle, error) {
	const fn = "NewRandomData"
	if size <= 0 {
		return crypto.NilHandle, e.raise(libKeys, fn, reasonInvalidParameter, fmt.Errorf("size %d", size))
	}
	material := make([]byte, size)
	if _, err := rand.Read(material); err != nil {
		return crypto.NilHandle, e.raise(libKeys, fn, reasonOperationFailed, err)
	}
	return e.put(fn, kindData, material)
}

// NewData creates a handle holding a copy of material.
func (e *SoftwareEngine) NewData(material []byte) (crypto.Handle, error) {
	const fn = "NewData"
	if len(material) == 0 {
		return crypto.NilHandle, e.raise(libKeys, fn, reasonInvalidParameter, fmt.Errorf("empty key material"))
	}
	return e.put(fn, kindData, append([]byte(nil), material...))
}

// DataBytes returns a copy of the bytes behind data.
func (e *SoftwareEngine) DataBytes(data crypto.Handle) ([]byte, error) {
	material, err := lookup[[]byte](e, "DataBytes", data, kindData)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), material...), nil
}

// FreeData zeroes and releases a data handle.
func (e *SoftwareEngine) FreeData(data crypto.Handle) {
	material := e.release("FreeData", data, kindData).([]byte)
	clear(material)
}
