// Package ratelimit throttles attendance API requests per client key using a
// sliding window, so a misbehaving device cannot flood the attendance ledger.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result reports the outcome of a single Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter decides whether one more request is allowed for a key.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// SlidingWindow is an in-memory sliding-window limiter. It is process-local;
// with multiple replicas each replica enforces the limit independently.
type SlidingWindow struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string][]time.Time

	now func() time.Time
}

// NewSlidingWindow creates a limiter allowing limit requests per window.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		limit:   limit,
		window:  window,
		buckets: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow records one request for key and reports whether it fits the window.
func (s *SlidingWindow) Allow(_ context.Context, key string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	timestamps := prune(s.buckets[key], now.Add(-s.window))

	if len(timestamps) >= s.limit {
		s.buckets[key] = timestamps
		return &Result{
			Allowed:   false,
			Limit:     s.limit,
			Remaining: 0,
			ResetAt:   timestamps[0].Add(s.window),
		}, nil
	}

	timestamps = append(timestamps, now)
	s.buckets[key] = timestamps
	return &Result{
		Allowed:   true,
		Limit:     s.limit,
		Remaining: s.limit - len(timestamps),
		ResetAt:   timestamps[0].Add(s.window),
	}, nil
}

// Reset clears the window for a key.
func (s *SlidingWindow) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
}

// prune drops timestamps at or before cutoff. The slice is kept sorted by
// insertion order, so the first retained index is a linear scan.
func prune(timestamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(timestamps); i++ {
		if timestamps[i].After(cutoff) {
			break
		}
	}
	return timestamps[i:]
}
