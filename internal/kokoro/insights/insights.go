// Package insights triggers background pattern discovery after entity
// writes. Discovery is advisory: it runs off the request path and its
// failures never affect the triggering operation.
package insights

import (
	"context"
	"log/slog"
	"time"
)

// Discoverer runs pattern discovery over a user's recent entities.
type Discoverer interface {
	Discover(ctx context.Context, userID, entityType string) error
}

// Noop is a Discoverer that does nothing. Used when no discovery backend
// is configured.
type Noop struct{}

func (Noop) Discover(context.Context, string, string) error { return nil }

// Logging is a Discoverer stub that only records that discovery would have
// run. Useful until a real backend is wired.
type Logging struct{}

func (Logging) Discover(_ context.Context, userID, entityType string) error {
	slog.Debug("insight discovery triggered", "user_id", userID, "entity_type", entityType)
	return nil
}

// discoverTimeout bounds a single background discovery run.
const discoverTimeout = 30 * time.Second

// Trigger kicks off discovery in the background. It detaches from the
// caller's context so request cancellation does not abort the run; failures
// are logged and swallowed.
func Trigger(d Discoverer, userID, entityType string) {
	if d == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), discoverTimeout)
		defer cancel()
		if err := d.Discover(ctx, userID, entityType); err != nil {
			slog.Warn("insight discovery failed",
				"user_id", userID, "entity_type", entityType, "err", err)
		}
	}()
}
