package crypto

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedScope indicates an algorithm does not declare the requested scope
	ErrUnsupportedScope = errors.New("crypto: unsupported scope")

	// ErrUnsupportedParameter indicates a parameter value the algorithm does not support
	ErrUnsupportedParameter = errors.New("crypto: unsupported parameter")

	// ErrUnsupportedConfiguration indicates the engine has no primitive for a valid-looking combination
	ErrUnsupportedConfiguration = errors.New("crypto: unsupported configuration")

	// ErrInitialization indicates a context creation, init or configure step failed
	ErrInitialization = errors.New("crypto: initialization failed")

	// ErrGeneration indicates key or parameter generation failed after initialization
	ErrGeneration = errors.New("crypto: generation failed")

	// ErrCipher indicates an encrypt or decrypt step failed
	ErrCipher = errors.New("crypto: cipher operation failed")

	// ErrSignature indicates signing failed or verification could not be carried out
	ErrSignature = errors.New("crypto: signature operation failed")

	// ErrAgreement indicates shared secret derivation failed
	ErrAgreement = errors.New("crypto: key agreement failed")

	// ErrDigest indicates a digest computation failed
	ErrDigest = errors.New("crypto: digest operation failed")

	// ErrAlreadyRegistered indicates a registry already holds an entry for the algorithm
	ErrAlreadyRegistered = errors.New("crypto: algorithm already registered")

	// ErrRegistrySealed indicates a write to a registry after initialization
	ErrRegistrySealed = errors.New("crypto: registry is sealed")

	// ErrNotRegistered indicates a registry holds no entry for the algorithm
	ErrNotRegistered = errors.New("crypto: algorithm not registered")

	// ErrKeyClosed indicates use of a key whose handle was already released
	ErrKeyClosed = errors.New("crypto: key is closed")

	// ErrEncoding indicates a key or parameter set could not be encoded or decoded
	ErrEncoding = errors.New("crypto: encoding failed")
)

// OperationError ties a failure kind to the operation that failed and to the
// aggregated engine errors that caused it. errors.Is matches both the kind
// sentinel and anything in the cause chain.
type OperationError struct {
	Kind  error
	Op    string
	Cause error
}

func (e *OperationError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Op, e.Cause)
}

// Unwrap exposes both the kind and the cause.
func (e *OperationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// NewOperationError creates an OperationError.
func NewOperationError(kind error, op string, cause error) error {
	return &OperationError{Kind: kind, Op: op, Cause: cause}
}

// EngineError is one entry of an engine error queue.
type EngineError struct {
	Code     uint32
	Library  string
	Function string
	Reason   string
}

func (e EngineError) String() string {
	return fmt.Sprintf("error:%08X:%s:%s:%s", e.Code, e.Library, e.Function, e.Reason)
}

// Error makes an entry usable as a cause in an error chain.
func (e EngineError) Error() string { return e.String() }
