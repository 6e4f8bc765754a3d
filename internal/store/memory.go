package store

import (
	"errors"
	"sync"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
)

var (
	// ErrNotFound is returned when no dataset snapshot is available.
	ErrNotFound = errors.New("no dataset loaded")
)

// MemoryStore is a concurrency-safe in-memory store of dataset snapshots.
// Snapshots are immutable; the lock only guards the history slice.
type MemoryStore struct {
	mu sync.RWMutex

	// oldest first; the last element is the current snapshot
	history []*airquality.Dataset

	maxHistory int
}

// NewMemoryStore creates a new MemoryStore keeping at most maxHistory snapshots.
// If maxHistory is <= 0, only the latest snapshot is kept.
func NewMemoryStore(maxHistory int) *MemoryStore {
	if maxHistory <= 0 {
		maxHistory = 1
	}
	return &MemoryStore{
		maxHistory: maxHistory,
	}
}

// Save makes ds the current snapshot and enforces retention.
func (s *MemoryStore) Save(ds *airquality.Dataset) {
	if ds == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, ds)

	if len(s.history) > s.maxHistory {
		over := len(s.history) - s.maxHistory
		// Drop references so evicted tables can be collected.
		for i := 0; i < over; i++ {
			s.history[i] = nil
		}
		s.history = s.history[over:]
	}
}

// Latest returns the current snapshot.
func (s *MemoryStore) Latest() (*airquality.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.history) == 0 {
		return nil, ErrNotFound
	}
	return s.history[len(s.history)-1], nil
}

// Get returns a retained snapshot by id.
func (s *MemoryStore) Get(id string) (*airquality.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ds := range s.history {
		if ds.ID == id {
			return ds, nil
		}
	}
	return nil, ErrNotFound
}

// History returns metadata of the retained snapshots, oldest first.
func (s *MemoryStore) History() []airquality.DatasetInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]airquality.DatasetInfo, 0, len(s.history))
	for _, ds := range s.history {
		out = append(out, ds.DatasetInfo)
	}
	return out
}
