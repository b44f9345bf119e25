// Package memory provides an in-process kv.Store for tests and local
// development. All data lives in maps guarded by a single RWMutex.
package memory

import (
	"context"
	"sync"

	"github.com/smallnest/memorygo/kv"
)

// MemoryStore is an in-process implementation of kv.Store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
	lists  map[string][]string
}

var _ kv.Store = (*MemoryStore)(nil)

// New creates an empty in-process store.
func New() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
		lists:  make(map[string][]string),
	}
}

// Set stores a value under a key.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(value))
	copy(buf, value)
	s.values[key] = buf
	return nil
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, kv.ErrKeyNotFound
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	return buf, nil
}

// Delete removes a key and any list stored under it.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	delete(s.lists, key)
	return nil
}

// ListPush prepends a value to the list stored under key.
func (s *MemoryStore) ListPush(ctx context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists[key] = append([]string{value}, s.lists[key]...)
	return nil
}

// ListRange returns list elements between start and stop inclusive.
func (s *MemoryStore) ListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.lists[key]
	lo, hi, ok := kv.NormalizeRange(int64(len(list)), start, stop)
	if !ok {
		return []string{}, nil
	}

	out := make([]string, hi-lo)
	copy(out, list[lo:hi])
	return out, nil
}
