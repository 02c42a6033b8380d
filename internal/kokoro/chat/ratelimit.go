package chat

import (
	"sync"
	"time"
)

// RateLimiter enforces a per-user sliding window on incoming messages.
type RateLimiter struct {
	mu     sync.Mutex
	events map[string][]time.Time
	window time.Duration
	max    int
	now    func() time.Time
}

// NewRateLimiter allows max messages per user per window.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		events: make(map[string][]time.Time),
		window: window,
		max:    max,
		now:    time.Now,
	}
}

// Allow records an attempt and reports whether it is within the limit.
func (r *RateLimiter) Allow(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-r.window)

	kept := r.events[userID][:0]
	for _, t := range r.events[userID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= r.max {
		r.events[userID] = kept
		return false
	}

	r.events[userID] = append(kept, now)
	return true
}
