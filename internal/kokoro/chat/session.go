package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kokoro-app/kokoro/internal/kokoro/engine"
)

// DefaultSessionTTL is how long a pending confirmation stays answerable.
const DefaultSessionTTL = 5 * time.Minute

// PendingOperation is an operation held at the confirmation gate, waiting
// for the user's next message.
type PendingOperation struct {
	ID        string
	Message   string
	Op        engine.ParsedEntityOperation
	Result    *engine.OperationResult
	CreatedAt time.Time
}

// SessionStore keeps at most one pending operation per user, expiring
// entries after the TTL.
type SessionStore struct {
	mu      sync.Mutex
	pending map[string]*PendingOperation
	ttl     time.Duration
	now     func() time.Time
}

// NewSessionStore creates a session store; ttl <= 0 picks the default.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		pending: make(map[string]*PendingOperation),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores the user's pending operation, replacing any previous one.
func (s *SessionStore) Put(userID string, op engine.ParsedEntityOperation, res *engine.OperationResult) *PendingOperation {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &PendingOperation{
		ID:        uuid.NewString(),
		Message:   op.OriginalMessage,
		Op:        op,
		Result:    res,
		CreatedAt: s.now(),
	}
	s.pending[userID] = p
	return p
}

// Get returns the user's pending operation, or nil when there is none or
// it has expired.
func (s *SessionStore) Get(userID string) *PendingOperation {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[userID]
	if !ok {
		return nil
	}
	if s.now().Sub(p.CreatedAt) > s.ttl {
		delete(s.pending, userID)
		return nil
	}
	return p
}

// Clear drops the user's pending operation.
func (s *SessionStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, userID)
}
