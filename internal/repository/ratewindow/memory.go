// Package ratewindow stores fixed rate-limit windows per client key.
package ratewindow

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/pathwise/internal/domain/ratelimit"
)

// MemoryStore keeps windows in process memory.
// Every admission runs under one mutex, so concurrent requests for the same key
// never observe a stale count.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]ratelimit.Window
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]ratelimit.Window)}
}

// Admit applies policy to the window for key and stores the result.
func (s *MemoryStore) Admit(
	_ context.Context, key string, policy ratelimit.Policy, now time.Time,
) (ratelimit.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, found := s.windows[key]
	next, d := policy.Apply(w, found, now)
	s.windows[key] = next
	return d, nil
}

// Prune drops windows that expired before now. Returns the number removed.
func (s *MemoryStore) Prune(policy ratelimit.Policy, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, w := range s.windows {
		if policy.Expired(w, now) {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}
