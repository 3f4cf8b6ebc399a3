package engine

import (
	"fmt"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
)

type library uint32

const (
	libHandles library = iota + 1
	libKeys
	libCipher
	libAsymmetric
	libDigest
)

func (l library) String() string {
	switch l {
	case libHandles:
		return "handles"
	case libKeys:
		return "keys"
	case libCipher:
		return "cipher"
	case libAsymmetric:
		return "asymmetric"
	case libDigest:
		return "digest"
	default:
		return "unknown"
	}
}

type reason uint32

const (
	reasonInvalidHandle reason = iota + 1
	reasonHandleLimit
	reasonUnsupportedAlgorithm
	reasonInvalidState
	reasonInvalidParameter
	reasonInvalidKey
	reasonBufferTooSmall
	reasonOperationFailed
	reasonBadDecrypt
	reasonDecodeFailed
)

var reasonText = map[reason]string{
	reasonInvalidHandle:        "invalid handle",
	reasonHandleLimit:          "handle table full",
	reasonUnsupportedAlgorithm: "unsupported algorithm",
	reasonInvalidState:         "operation not initialized",
	reasonInvalidParameter:     "invalid parameter",
	reasonInvalidKey:           "invalid key",
	reasonBufferTooSmall:       "output buffer too small",
	reasonOperationFailed:      "operation failed",
	reasonBadDecrypt:           "bad decrypt",
	reasonDecodeFailed:         "decode error",
}

// raise queues an entry for a failed call and returns an error describing it.
func (e *SoftwareEngine) raise(lib library, fn string, r reason, detail error) error {
	entry := crypto.EngineError{
		Code:     uint32(lib)<<24 | uint32(r),
		Library:  lib.String(),
		Function: fn,
		Reason:   reasonText[r],
	}
	if detail != nil {
		entry.Reason = fmt.Sprintf("%s (%v)", entry.Reason, detail)
	}

	e.queueMu.Lock()
	e.queue = append(e.queue, entry)
	e.queueMu.Unlock()

	return fmt.Errorf("%s failed: %s", fn, entry.Reason)
}

// PopError removes and returns the oldest queued entry.
func (e *SoftwareEngine) PopError() (crypto.EngineError, bool) {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()

	if len(e.queue) == 0 {
		return crypto.EngineError{}, false
	}
	entry := e.queue[0]
	e.queue = e.queue[1:]
	return entry, true
}
