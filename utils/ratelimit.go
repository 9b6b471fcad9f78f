package utils

import (
	"sync"
	"time"
)

// RateGate enforces a minimum interval between consecutive operations.
// The run is strictly sequential, so the gate's job is pacing the external
// page-source provider, not coordinating goroutines.
type RateGate struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewRateGate creates a gate with the given minimum interval between
// operations. A zero or negative interval disables pacing.
func NewRateGate(interval time.Duration) *RateGate {
	return &RateGate{interval: interval}
}

// Wait blocks until at least the configured interval has elapsed since the
// previous Wait returned.
func (g *RateGate) Wait() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.interval <= 0 {
		g.last = time.Now()
		return
	}

	if elapsed := time.Since(g.last); elapsed < g.interval {
		time.Sleep(g.interval - elapsed)
	}
	g.last = time.Now()
}

// URLSet is a set for tracking listing URLs already seen in this run.
type URLSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewURLSet creates an empty URLSet.
func NewURLSet() *URLSet {
	return &URLSet{seen: make(map[string]struct{})}
}

// Add returns true if the URL was newly added, false if already present.
func (s *URLSet) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[url]; exists {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

// Contains returns true if the URL has already been seen.
func (s *URLSet) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[url]
	return exists
}

// Size returns the number of unique URLs tracked.
func (s *URLSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
