package engine

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/config"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/logger"
)

type handleKind int

const (
	kindGenerationContext handleKind = iota + 1
	kindKeyContext
	kindKey
	kindData
	kindCipher
	kindCipherContext
	kindDigestContext
)

func (k handleKind) String() string {
	switch k {
	case kindGenerationContext:
		return "generation context"
	case kindKeyContext:
		return "key context"
	case kindKey:
		return "key"
	case kindData:
		return "data"
	case kindCipher:
		return "cipher"
	case kindCipherContext:
		return "cipher context"
	case kindDigestContext:
		return "digest context"
	default:
		return "unknown"
	}
}

type object struct {
	kind  handleKind
	value any
}

// SoftwareEngine implements crypto.CryptoEngine in process. It is safe for
// concurrent use; the objects behind individual handles are not.
type SoftwareEngine struct {
	mu         sync.Mutex
	next       crypto.Handle
	objects    map[crypto.Handle]object
	maxHandles int

	queueMu sync.Mutex
	queue   []crypto.EngineError

	logger logger.Logger
}

var _ crypto.CryptoEngine = (*SoftwareEngine)(nil)

// NewSoftwareEngine creates a SoftwareEngine from settings.
func NewSoftwareEngine(settings *config.EngineSettings, logger logger.Logger) (*SoftwareEngine, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine settings: %w", err)
	}
	if settings.Name != config.EngineSoftware {
		return nil, fmt.Errorf("unsupported engine: %s", settings.Name)
	}

	return &SoftwareEngine{
		objects:    make(map[crypto.Handle]object),
		maxHandles: settings.MaxHandles,
		logger:     logger,
	}, nil
}

// Name returns the engine name
func (e *SoftwareEngine) Name() string {
	return config.EngineSoftware
}

// LiveHandles reports how many handles have been created and not yet freed.
func (e *SoftwareEngine) LiveHandles() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.objects)
}

func (e *SoftwareEngine) put(fn string, kind handleKind, value any) (crypto.Handle, error) {
	e.mu.Lock()
	if e.maxHandles > 0 && len(e.objects) >= e.maxHandles {
		e.mu.Unlock()
		return crypto.NilHandle, e.raise(libHandles, fn, reasonHandleLimit, fmt.Errorf("limit of %d reached", e.maxHandles))
	}
	e.next++
	h := e.next
	e.objects[h] = object{kind: kind, value: value}
	e.mu.Unlock()

	e.logger.Debug("Allocated ", kind, " handle ", uint64(h))
	return h, nil
}

// lookup returns the value behind h when h is a live handle of kind.
func lookup[T any](e *SoftwareEngine, fn string, h crypto.Handle, kind handleKind) (T, error) {
	var zero T

	e.mu.Lock()
	obj, ok := e.objects[h]
	e.mu.Unlock()

	if !ok || obj.kind != kind {
		return zero, e.raise(libHandles, fn, reasonInvalidHandle, fmt.Errorf("handle %d is not a live %s", h, kind))
	}
	value, ok := obj.value.(T)
	if !ok {
		return zero, e.raise(libHandles, fn, reasonInvalidHandle, fmt.Errorf("handle %d holds %T", h, obj.value))
	}
	return value, nil
}

// release removes h from the table. Releasing anything but a live handle of
// one of kinds is a programming error and panics.
func (e *SoftwareEngine) release(fn string, h crypto.Handle, kinds ...handleKind) any {
	e.mu.Lock()
	obj, ok := e.objects[h]
	if !ok || !slices.Contains(kinds, obj.kind) {
		e.mu.Unlock()
		panic(fmt.Sprintf("engine: %s: handle %d is not a live %v", fn, h, kinds))
	}
	delete(e.objects, h)
	e.mu.Unlock()

	e.logger.Debug("Freed ", obj.kind, " handle ", uint64(h))
	return obj.value
}

var algorithmIDs = map[string]crypto.AlgorithmID{
	"aes":               crypto.AlgorithmIDAES,
	"chacha20-poly1305": crypto.AlgorithmIDChaCha20Poly1305,
	"rsa":               crypto.AlgorithmIDRSA,
	"ec":                crypto.AlgorithmIDEC,
	"ecdh":              crypto.AlgorithmIDECDH,
	"dh":                crypto.AlgorithmIDDH,
	"x25519":            crypto.AlgorithmIDX25519,
	"ed25519":           crypto.AlgorithmIDEd25519,
	"ml-dsa-65":         crypto.AlgorithmIDMLDSA65,
	"sha-256":           crypto.AlgorithmIDSHA256,
	"sha-384":           crypto.AlgorithmIDSHA384,
	"sha-512":           crypto.AlgorithmIDSHA512,
	"sha3-256":          crypto.AlgorithmIDSHA3_256,
	"sha3-512":          crypto.AlgorithmIDSHA3_512,
}

// LookupAlgorithm resolves an algorithm name, ignoring case.
func (e *SoftwareEngine) LookupAlgorithm(name string) (crypto.AlgorithmID, error) {
	id, ok := algorithmIDs[strings.ToLower(name)]
	if !ok {
		return crypto.AlgorithmIDUnknown, e.raise(libKeys, "LookupAlgorithm", reasonUnsupportedAlgorithm, fmt.Errorf("unknown algorithm %q", name))
	}
	return id, nil
}
