package chat

import (
	"context"
	"testing"
	"time"

	"github.com/kokoro-app/kokoro/internal/kokoro/confirm"
	"github.com/kokoro-app/kokoro/internal/kokoro/engine"
	"github.com/kokoro-app/kokoro/internal/kokoro/recovery"
)

// fakeExecutor returns scripted results and records every operation it was
// asked to run.
type fakeExecutor struct {
	ops     []engine.ParsedEntityOperation
	results []*engine.OperationResult
}

func (f *fakeExecutor) Execute(_ context.Context, op engine.ParsedEntityOperation) *engine.OperationResult {
	f.ops = append(f.ops, op)
	if len(f.results) > 0 {
		res := f.results[0]
		f.results = f.results[1:]
		return res
	}
	return &engine.OperationResult{Success: true, Message: "done"}
}

func newTestConversation(exec *fakeExecutor) *Conversation {
	return &Conversation{
		engine:   exec,
		sessions: NewSessionStore(0),
		classify: func(userID, message string) *engine.OperationResult {
			return &engine.OperationResult{
				Success: false,
				Message: "I didn't catch that.",
				Error:   &recovery.ChatEntityError{Type: recovery.TypeParsing},
			}
		},
	}
}

func TestHandleMessage_ParseFailureIsClassified(t *testing.T) {
	exec := &fakeExecutor{}
	c := newTestConversation(exec)

	res := c.HandleMessage(context.Background(), "u1", "asdf")
	if res.Success {
		t.Fatal("gibberish must not succeed")
	}
	if res.Error == nil || res.Error.Type != recovery.TypeParsing {
		t.Errorf("error: got %+v", res.Error)
	}
	if len(exec.ops) != 0 {
		t.Error("nothing may execute for an unparseable message")
	}
}

func TestHandleMessage_ConfirmationYes(t *testing.T) {
	exec := &fakeExecutor{results: []*engine.OperationResult{
		{Success: false, NeedsConfirmation: true, ConfirmationPrompt: "Are you sure?"},
	}}
	c := newTestConversation(exec)

	held := c.HandleMessage(context.Background(), "u1", "delete my habit Exercise")
	if !held.NeedsConfirmation {
		t.Fatalf("expected the delete to be held, got %+v", held)
	}

	done := c.HandleMessage(context.Background(), "u1", "yes")
	if !done.Success {
		t.Fatalf("confirmed operation failed: %+v", done)
	}
	if len(exec.ops) != 2 {
		t.Fatalf("executions: got %d, want 2", len(exec.ops))
	}
	if !exec.ops[1].Confirmed {
		t.Error("the re-executed operation must carry Confirmed")
	}
	if c.sessions.Get("u1") != nil {
		t.Error("session must be cleared after confirmation")
	}
}

func TestHandleMessage_ConfirmationNo(t *testing.T) {
	exec := &fakeExecutor{results: []*engine.OperationResult{
		{Success: false, NeedsConfirmation: true, ConfirmationPrompt: "Are you sure?"},
	}}
	c := newTestConversation(exec)

	c.HandleMessage(context.Background(), "u1", "delete my habit Exercise")
	res := c.HandleMessage(context.Background(), "u1", "no")

	if !res.Success || res.Message != "Okay, cancelled." {
		t.Errorf("cancel reply: got %+v", res)
	}
	if len(exec.ops) != 1 {
		t.Errorf("executions: got %d, want 1 (nothing after cancel)", len(exec.ops))
	}
	if c.sessions.Get("u1") != nil {
		t.Error("session must be cleared after cancel")
	}
}

func TestHandleMessage_DisambiguationByNumber(t *testing.T) {
	exec := &fakeExecutor{results: []*engine.OperationResult{
		{Success: false, Alternatives: []confirm.Option{
			{ID: "h1", Name: "Morning run"},
			{ID: "h2", Name: "Evening run"},
		}},
	}}
	c := newTestConversation(exec)

	c.HandleMessage(context.Background(), "u1", "complete run")
	res := c.HandleMessage(context.Background(), "u1", "2")

	if !res.Success {
		t.Fatalf("selection failed: %+v", res)
	}
	if len(exec.ops) != 2 || exec.ops[1].EntityID != "h2" {
		t.Errorf("re-executed op: got %+v", exec.ops)
	}
}

func TestHandleMessage_DisambiguationByName(t *testing.T) {
	exec := &fakeExecutor{results: []*engine.OperationResult{
		{Success: false, Alternatives: []confirm.Option{
			{ID: "h1", Name: "Morning run"},
			{ID: "h2", Name: "Evening run"},
		}},
	}}
	c := newTestConversation(exec)

	c.HandleMessage(context.Background(), "u1", "complete run")
	res := c.HandleMessage(context.Background(), "u1", "morning run")

	if !res.Success {
		t.Fatalf("selection failed: %+v", res)
	}
	if exec.ops[1].EntityID != "h1" {
		t.Errorf("selected entity: got %q, want h1", exec.ops[1].EntityID)
	}
}

func TestHandleMessage_YesDoesNotAnswerWhichOne(t *testing.T) {
	exec := &fakeExecutor{results: []*engine.OperationResult{
		{Success: false, Alternatives: []confirm.Option{
			{ID: "h1", Name: "Morning run"},
			{ID: "h2", Name: "Evening run"},
		}},
	}}
	c := newTestConversation(exec)

	c.HandleMessage(context.Background(), "u1", "complete run")
	res := c.HandleMessage(context.Background(), "u1", "yes")

	if res.Success {
		t.Fatal("a bare yes cannot resolve a which-one question")
	}
	if len(exec.ops) != 1 {
		t.Errorf("executions: got %d, want 1", len(exec.ops))
	}
	if c.sessions.Get("u1") == nil {
		t.Error("the pending operation must survive an unhelpful reply")
	}
}

func TestHandleMessage_NewRequestAbandonsPending(t *testing.T) {
	exec := &fakeExecutor{results: []*engine.OperationResult{
		{Success: false, NeedsConfirmation: true, ConfirmationPrompt: "Are you sure?"},
	}}
	c := newTestConversation(exec)

	c.HandleMessage(context.Background(), "u1", "delete my habit Exercise")
	res := c.HandleMessage(context.Background(), "u1", "show my habits")

	if !res.Success {
		t.Fatalf("new request failed: %+v", res)
	}
	if len(exec.ops) != 2 || exec.ops[1].Intent != engine.IntentView {
		t.Errorf("ops: got %+v", exec.ops)
	}
	if exec.ops[1].Confirmed {
		t.Error("a fresh operation must not inherit confirmation")
	}
	if c.sessions.Get("u1") != nil {
		t.Error("the abandoned pending operation must be cleared")
	}
}

func TestHandleMessage_RateLimited(t *testing.T) {
	exec := &fakeExecutor{}
	c := newTestConversation(exec)
	c.limiter = NewRateLimiter(2, time.Minute)

	c.HandleMessage(context.Background(), "u1", "show my habits")
	c.HandleMessage(context.Background(), "u1", "show my habits")
	res := c.HandleMessage(context.Background(), "u1", "show my habits")

	if res.Success {
		t.Fatal("the third message inside the window must be limited")
	}
	if len(exec.ops) != 2 {
		t.Errorf("executions: got %d, want 2", len(exec.ops))
	}

	// A different user is unaffected.
	other := c.HandleMessage(context.Background(), "u2", "show my habits")
	if !other.Success {
		t.Errorf("other user limited: %+v", other)
	}
}

func TestSessionStore_TTL(t *testing.T) {
	s := NewSessionStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	s.Put("u1", engine.ParsedEntityOperation{UserID: "u1"}, &engine.OperationResult{})
	if s.Get("u1") == nil {
		t.Fatal("pending operation must be retrievable")
	}

	now = now.Add(2 * time.Minute)
	if s.Get("u1") != nil {
		t.Error("pending operation must expire after the TTL")
	}
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	r := NewRateLimiter(2, time.Minute)
	now := time.Now()
	r.now = func() time.Time { return now }

	if !r.Allow("u1") || !r.Allow("u1") {
		t.Fatal("first two attempts must pass")
	}
	if r.Allow("u1") {
		t.Fatal("third attempt inside the window must fail")
	}

	now = now.Add(61 * time.Second)
	if !r.Allow("u1") {
		t.Error("attempts must pass again once the window slides")
	}
}
