package recovery

import (
	"sync"
	"time"
)

const (
	// cooldownWindow is the short window used to detect a user stuck in a
	// rapid failure loop.
	cooldownWindow = 60 * time.Second
	// historyRetention is how long error timestamps are kept per user.
	historyRetention = 24 * time.Hour
	// cooldownEscalation is the number of prior errors inside the cooldown
	// window that forces the next error to at least SeverityHigh.
	cooldownEscalation = 3
	// dailyEscalation is the number of prior errors inside the retention
	// window that bumps severity by one level.
	dailyEscalation = 10
)

// historyWindow tracks per-user error timestamps inside a rolling retention
// window. Stale entries are pruned on every write, keeping memory bounded
// per active user.
//
// historyWindow is safe for concurrent use from multiple goroutines.
type historyWindow struct {
	mu     sync.Mutex
	events map[string][]time.Time // userID → error timestamps in window
	now    func() time.Time
}

func newHistoryWindow() *historyWindow {
	return &historyWindow{
		events: make(map[string][]time.Time),
		now:    time.Now,
	}
}

// record appends a new error timestamp for the user, pruning entries older
// than the retention window.
func (h *historyWindow) record(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	cutoff := now.Add(-historyRetention)

	existing := h.events[userID]
	valid := existing[:0] // reuse backing array
	for _, t := range existing {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	h.events[userID] = append(valid, now)
}

// countSince returns how many errors the user accumulated within the last
// window duration.
func (h *historyWindow) countSince(userID string, window time.Duration) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := h.now().Add(-window)
	n := 0
	for _, t := range h.events[userID] {
		if t.After(cutoff) {
			n++
		}
	}
	return n
}

// reset clears the history for one user (used on session reset).
func (h *historyWindow) reset(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.events, userID)
}
