package state

import (
	"sort"
	"sync"
	"sync/atomic"
)

// MemoryStore implements StateStore using in-memory storage.
// Useful for testing and for sessions that never touch disk.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string][]byte
	maxBytes int
	closed   atomic.Bool
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMaxBytes caps the total size of keys plus values. A Put that would
// exceed the cap fails with ErrQuotaExceeded and leaves the store as it was.
// Zero means no cap.
func WithMaxBytes(n int) MemoryOption {
	return func(s *MemoryStore) {
		s.maxBytes = n
	}
}

// NewMemoryStore creates a new in-memory state store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		data: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves a value by key.
func (s *MemoryStore) Get(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return nil, ErrClosed
	}
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}

	// Return a copy to prevent mutation
	val := make([]byte, len(v))
	copy(val, v)
	return val, nil
}

// Put stores a value.
func (s *MemoryStore) Put(key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Close may have won the race for the lock.
	if s.data == nil {
		return ErrClosed
	}

	if s.maxBytes > 0 {
		used := s.usedLocked()
		if old, ok := s.data[key]; ok {
			used -= len(key) + len(old)
		}
		if used+len(key)+len(value) > s.maxBytes {
			return ErrQuotaExceeded
		}
	}

	// Copy value to prevent external mutation
	val := make([]byte, len(value))
	copy(val, value)
	s.data[key] = val
	return nil
}

// usedLocked returns the bytes held. Must be called with lock held.
func (s *MemoryStore) usedLocked() int {
	n := 0
	for k, v := range s.data {
		n += len(k) + len(v)
	}
	return n
}

// Delete removes a key.
func (s *MemoryStore) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return ErrClosed
	}
	delete(s.data, key)
	return nil
}

// Keys returns all keys matching a pattern, sorted.
func (s *MemoryStore) Keys(pattern string) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return nil, ErrClosed
	}
	var keys []string
	for key := range s.data {
		if MatchPattern(pattern, key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close shuts down the store.
func (s *MemoryStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}
