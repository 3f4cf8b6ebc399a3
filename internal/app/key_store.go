package app

import (
	"fmt"
	"sync"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-facade/internal/domain/keys"

	"go.uber.org/multierr"
)

type storedKey struct {
	mu  sync.Mutex
	key *crypto.Key
}

// inMemoryKeyStore owns the live keys of the catalog. crypto.Key is not
// safe for concurrent use, so every entry carries its own lock.
type inMemoryKeyStore struct {
	mu      sync.RWMutex
	entries map[string]*storedKey
}

// NewInMemoryKeyStore returns an empty key store
func NewInMemoryKeyStore() keys.KeyStore {
	return &inMemoryKeyStore{entries: make(map[string]*storedKey)}
}

func (s *inMemoryKeyStore) Put(id string, key *crypto.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; ok {
		return fmt.Errorf("key with ID %s already stored", id)
	}
	s.entries[id] = &storedKey{key: key}
	return nil
}

func (s *inMemoryKeyStore) lookup(id string) (*storedKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: no live key with ID %s", keys.ErrKeyNotFound, id)
	}
	return entry, nil
}

func (s *inMemoryKeyStore) With(id string, fn func(key *crypto.Key) error) error {
	entry, err := s.lookup(id)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.key)
}

func (s *inMemoryKeyStore) WithPair(firstID, secondID string, fn func(first, second *crypto.Key) error) error {
	if firstID == secondID {
		return fmt.Errorf("key %s cannot be paired with itself", firstID)
	}
	first, err := s.lookup(firstID)
	if err != nil {
		return err
	}
	second, err := s.lookup(secondID)
	if err != nil {
		return err
	}

	// lock in id order so concurrent pairs cannot deadlock
	lockFirst, lockSecond := first, second
	if secondID < firstID {
		lockFirst, lockSecond = second, first
	}
	lockFirst.mu.Lock()
	defer lockFirst.mu.Unlock()
	lockSecond.mu.Lock()
	defer lockSecond.mu.Unlock()

	return fn(first.key, second.key)
}

func (s *inMemoryKeyStore) Delete(id string) error {
	s.mu.Lock()
	entry, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: no live key with ID %s", keys.ErrKeyNotFound, id)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.key.Close()
}

func (s *inMemoryKeyStore) Close() error {
	s.mu.Lock()
	entries := s.entries
	s.entries = make(map[string]*storedKey)
	s.mu.Unlock()

	var err error
	for _, entry := range entries {
		entry.mu.Lock()
		err = multierr.Append(err, entry.key.Close())
		entry.mu.Unlock()
	}
	return err
}
