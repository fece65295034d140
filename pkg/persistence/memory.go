package persistence

import "sync"

// MemoryStore is a Store kept only in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]value
	closed bool

	// FailCommit, when set, is returned by every Commit without applying it.
	FailCommit error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]value)}
}

func (s *MemoryStore) get(key string) (value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStore) Int64(key string, def int64) int64 {
	v, ok := s.get(key)
	return asInt64(v, ok, def)
}

func (s *MemoryStore) String(key string, def string) string {
	v, ok := s.get(key)
	return asString(v, ok, def)
}

func (s *MemoryStore) Bool(key string, def bool) bool {
	v, ok := s.get(key)
	return asBool(v, ok, def)
}

func (s *MemoryStore) IDs(key string) []int {
	v, ok := s.get(key)
	return asIDs(v, ok)
}

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

func (s *MemoryStore) Edit() Editor {
	return newBatch(s.commit)
}

func (s *MemoryStore) commit(ops []op) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.FailCommit != nil {
		return s.FailCommit
	}
	s.values = apply(s.values, ops)
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ Store = (*MemoryStore)(nil)
