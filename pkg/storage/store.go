// Package storage provides the persistent key/value stores that back the
// "set persistent value" primitive of the view-state router.
//
// Every backend stores plain strings under string keys:
//
//	MemoryStore  process memory, for tests and single-process use
//	BoltStore    a bbolt file, one bucket
//	SQLiteStore  a SQLite table (modernc.org/sqlite, no cgo)
//	S3Store      one object per key in an S3 bucket
//
// Clearing a value is an explicit write of the empty string; a missing key
// and an empty value both read back as "nothing stored".
package storage

import (
	"context"
	"strings"
	"sync"
)

// Store is a string key/value store.
type Store interface {
	// Get returns the value stored under key and whether one was found.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Close releases the store's resources.
	Close() error
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	v, ok := s.values[key]
	s.mu.RUnlock()
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Prefixed returns a Store that namespaces every key of inner with prefix.
// Closing it does not close inner.
func Prefixed(inner Store, prefix string) Store {
	return &prefixed{inner: inner, prefix: prefix}
}

type prefixed struct {
	inner  Store
	prefix string
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Close() error { return nil }

// SessionPrefix builds the key prefix used for a session's values.
func SessionPrefix(sessionID string) string {
	return "session/" + strings.TrimSpace(sessionID) + "/"
}
