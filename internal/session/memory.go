package session

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultMemorySessions bounds the in-memory store. Every first-time visitor
// gets an anonymous session, so the least recently used ones are evicted
// once the limit is reached.
const defaultMemorySessions = 50_000

// MemoryStore keeps sessions in a bounded LRU for single-instance deployments.
type MemoryStore struct {
	sessions *lru.Cache[string, memoryEntry]
	now      func() time.Time
}

type memoryEntry struct {
	data      *Data
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	store, err := newMemoryStore(defaultMemorySessions, time.Now)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return store
}

func newMemoryStore(size int, now func() time.Time) (*MemoryStore, error) {
	sessions, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{sessions: sessions, now: now}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Data, bool) {
	entry, ok := s.sessions.Get(key)
	if !ok {
		return nil, false
	}
	if s.now().After(entry.expiresAt) {
		s.sessions.Remove(key)
		return nil, false
	}
	return cloneData(entry.data), true
}

func (s *MemoryStore) Set(_ context.Context, key string, data *Data, ttl time.Duration) {
	s.sessions.Add(key, memoryEntry{
		data:      cloneData(data),
		expiresAt: s.now().Add(ttl),
	})
}

func (s *MemoryStore) Delete(_ context.Context, key string) {
	s.sessions.Remove(key)
}

func (s *MemoryStore) Len() int {
	return s.sessions.Len()
}

func (s *MemoryStore) Close() error {
	s.sessions.Purge()
	return nil
}
