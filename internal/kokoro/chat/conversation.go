package chat

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/kokoro-app/kokoro/internal/kokoro/engine"
)

// Confirmation word lists. Matched against the whole trimmed message so
// "yes please delete it" confirms but "yesterday was rough" does not.
var (
	yesWords = map[string]bool{
		"yes": true, "y": true, "yeah": true, "yep": true, "sure": true,
		"ok": true, "okay": true, "confirm": true, "do it": true,
		"yes please": true, "go ahead": true,
	}
	noWords = map[string]bool{
		"no": true, "n": true, "nope": true, "cancel": true, "stop": true,
		"never mind": true, "nevermind": true, "don't": true, "abort": true,
	}
)

// Executor runs a parsed operation; *engine.Engine satisfies it.
type Executor interface {
	Execute(ctx context.Context, op engine.ParsedEntityOperation) *engine.OperationResult
}

// Conversation drives the message loop for all users: rate limiting,
// pending-reply interpretation, parsing, and execution.
type Conversation struct {
	engine   Executor
	sessions *SessionStore
	limiter  *RateLimiter
	classify func(userID, message string) *engine.OperationResult
}

// Options tunes the conversation layer; zero values pick defaults.
type Options struct {
	SessionTTL time.Duration
	// RateLimit is the max messages per user per minute; 0 disables
	// limiting.
	RateLimit int
}

// New creates a conversation over the given engine.
func New(e *engine.Engine, opts Options) *Conversation {
	c := &Conversation{
		engine:   e,
		sessions: NewSessionStore(opts.SessionTTL),
	}
	if opts.RateLimit > 0 {
		c.limiter = NewRateLimiter(opts.RateLimit, time.Minute)
	}
	c.classify = func(userID, message string) *engine.OperationResult {
		cerr := e.Classifier().ClassifyParsing(userID, message)
		return &engine.OperationResult{Success: false, Message: cerr.UserFriendlyMessage, Error: cerr}
	}
	return c
}

// HandleMessage processes one user message and always returns a renderable
// result. Replies to a pending confirmation are interpreted before any
// reparse, so "yes" answers the question instead of failing to parse.
func (c *Conversation) HandleMessage(ctx context.Context, userID, message string) *engine.OperationResult {
	if c.limiter != nil && !c.limiter.Allow(userID) {
		return &engine.OperationResult{
			Success: false,
			Message: "You're sending messages a little fast for me. Give it a moment and try again.",
		}
	}

	if pending := c.sessions.Get(userID); pending != nil {
		if res, handled := c.handlePendingReply(ctx, userID, message, pending); handled {
			return res
		}
		// The reply was a new request; the pending operation is abandoned.
		c.sessions.Clear(userID)
	}

	op, err := Parse(message)
	if errors.Is(err, ErrNotAnOperation) {
		return c.classify(userID, message)
	}
	op.UserID = userID

	return c.execute(ctx, userID, op)
}

// handlePendingReply interprets a message as an answer to the pending
// confirmation or disambiguation. The second return is false when the
// message is neither, meaning it should be parsed as a fresh operation.
func (c *Conversation) handlePendingReply(ctx context.Context, userID, message string, pending *PendingOperation) (*engine.OperationResult, bool) {
	reply := strings.ToLower(strings.Trim(strings.TrimSpace(message), ".!"))

	if noWords[reply] {
		c.sessions.Clear(userID)
		return &engine.OperationResult{Success: true, Message: "Okay, cancelled."}, true
	}

	if yesWords[reply] {
		if len(pending.Result.Alternatives) > 1 {
			// "yes" doesn't answer a which-one question.
			return pending.Result, true
		}
		c.sessions.Clear(userID)
		op := pending.Op
		op.Confirmed = true
		return c.execute(ctx, userID, op), true
	}

	// A disambiguation answer: a list number or one of the option names.
	if opts := pending.Result.Alternatives; len(opts) > 0 {
		if n, err := strconv.Atoi(reply); err == nil && n >= 1 && n <= len(opts) {
			return c.resolvePending(ctx, userID, pending, opts[n-1].ID), true
		}
		for _, opt := range opts {
			if strings.EqualFold(strings.TrimSpace(opt.Name), strings.TrimSpace(message)) {
				return c.resolvePending(ctx, userID, pending, opt.ID), true
			}
		}
	}

	return nil, false
}

// resolvePending re-runs the pending operation pinned to the chosen entity.
func (c *Conversation) resolvePending(ctx context.Context, userID string, pending *PendingOperation, entityID string) *engine.OperationResult {
	c.sessions.Clear(userID)
	op := pending.Op
	op.EntityID = entityID
	return c.execute(ctx, userID, op)
}

// execute runs the operation and parks it as pending when the engine held
// it for confirmation or disambiguation.
func (c *Conversation) execute(ctx context.Context, userID string, op engine.ParsedEntityOperation) *engine.OperationResult {
	res := c.engine.Execute(ctx, op)
	if !res.Success && (res.NeedsConfirmation || len(res.Alternatives) > 0) {
		c.sessions.Put(userID, op, res)
	}
	return res
}
