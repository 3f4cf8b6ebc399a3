package cryptography

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
)

// Registry maps algorithms to per-algorithm behaviour for one scope. It is
// written while a Provider is built and read-only once sealed. Names are
// matched without regard to case.
type Registry[V any] struct {
	mu      sync.RWMutex
	scope   crypto.Scope
	entries map[string]V
	names   map[string]string
	sealed  bool
}

// NewRegistry creates an empty registry for algorithms declaring scope.
func NewRegistry[V any](scope crypto.Scope) *Registry[V] {
	return &Registry[V]{
		scope:   scope,
		entries: make(map[string]V),
		names:   make(map[string]string),
	}
}

func registryKey(algorithm *crypto.Algorithm) string {
	return strings.ToLower(algorithm.Name)
}

// Register adds value for algorithm. The algorithm must declare the
// registry's scope, and an existing entry is never replaced.
func (r *Registry[V]) Register(algorithm *crypto.Algorithm, value V) error {
	if _, err := crypto.Validate(algorithm, r.scope); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: cannot register %s for %s", crypto.ErrRegistrySealed, algorithm.Name, r.scope)
	}
	key := registryKey(algorithm)
	if _, ok := r.entries[key]; ok {
		return fmt.Errorf("%w: %s for %s", crypto.ErrAlreadyRegistered, algorithm.Name, r.scope)
	}
	r.entries[key] = value
	r.names[key] = algorithm.Name
	return nil
}

// Unregister removes the entry for algorithm. It is only allowed before Seal.
func (r *Registry[V]) Unregister(algorithm *crypto.Algorithm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: cannot unregister %s for %s", crypto.ErrRegistrySealed, algorithm.Name, r.scope)
	}
	key := registryKey(algorithm)
	if _, ok := r.entries[key]; !ok {
		return fmt.Errorf("%w: %s for %s", crypto.ErrNotRegistered, algorithm.Name, r.scope)
	}
	delete(r.entries, key)
	delete(r.names, key)
	return nil
}

// Lookup returns the entry for algorithm.
func (r *Registry[V]) Lookup(algorithm *crypto.Algorithm) (V, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.entries[registryKey(algorithm)]
	if !ok {
		return value, fmt.Errorf("%w: %s for %s", crypto.ErrNotRegistered, algorithm.Name, r.scope)
	}
	return value, nil
}

// Seal makes the registry read-only.
func (r *Registry[V]) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether Seal has been called
func (r *Registry[V]) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Algorithms returns the registered algorithm names in sorted order.
func (r *Registry[V]) Algorithms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.names))
	for _, name := range r.names {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
