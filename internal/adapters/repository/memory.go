package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/dreamxi/internal/domain/model"
	"github.com/okian/dreamxi/pkg/metrics"
)

const (
	defaultMemoryCapacity = 10000
	memoryBackend         = "memory"
)

// MemoryStore keeps matches in process memory. Stored and returned matches
// are copies, so callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	matches  map[string]*model.Match
	order    []string
	capacity int
}

// NewMemoryStore creates an in-memory match store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		matches:  make(map[string]*model.Match),
		capacity: defaultMemoryCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save inserts or replaces a match. A replaced match keeps its eviction slot.
func (s *MemoryStore) Save(ctx context.Context, m *model.Match) error {
	if m == nil || m.ID == "" {
		return fmt.Errorf("save: %w", ErrInvalidMatch)
	}
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(memoryBackend, "save", float64(time.Since(start).Microseconds())/1000)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.matches[m.ID]; !exists {
		if s.capacity > 0 && len(s.order) >= s.capacity {
			s.evictOldest()
		}
		s.order = append(s.order, m.ID)
	}
	s.matches[m.ID] = m.Clone()
	metrics.UpdateMatchesStored(len(s.matches))
	return nil
}

// Must be called with s.mu held.
func (s *MemoryStore) evictOldest() {
	oldest := s.order[0]
	s.order[0] = ""
	s.order = s.order[1:]
	delete(s.matches, oldest)
}

// Get returns a copy of the match with id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*model.Match, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(memoryBackend, "get", float64(time.Since(start).Microseconds())/1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	return m.Clone(), nil
}

// Count returns the number of stored matches.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}
