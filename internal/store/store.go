// Package store holds dispatched signals in a bounded, most-recent-first
// in-memory buffer. Contents are intentionally lost on restart.
package store

import (
	"sync"

	"github.com/tokoquant/idxradar/internal/models"
)

// Store is safe for concurrent use; the scan loop writes while the query API
// and bot commands read.
type Store struct {
	mu       sync.RWMutex
	capacity int
	signals  []models.Signal
}

// New creates a store that keeps at most capacity signals.
func New(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{
		capacity: capacity,
		signals:  make([]models.Signal, 0, capacity),
	}
}

// Add pushes a signal to the head, evicting the oldest entry once the store
// is full.
func (s *Store) Add(sig models.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.signals = append([]models.Signal{sig}, s.signals...)
	if len(s.signals) > s.capacity {
		s.signals = s.signals[:s.capacity]
	}
}

// Recent returns up to limit signals, most recent first. A limit <= 0 returns
// everything. The result is a copy and safe to retain.
func (s *Store) Recent(limit int) []models.Signal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.signals)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.Signal, n)
	copy(out, s.signals[:n])
	return out
}

// Latest returns the most recent signal, if any.
func (s *Store) Latest() (models.Signal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.signals) == 0 {
		return models.Signal{}, false
	}
	return s.signals[0], true
}

// Len reports how many signals are currently stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.signals)
}
