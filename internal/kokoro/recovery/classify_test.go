package recovery

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kokoro-app/kokoro/internal/kokoro/validate"
)

func TestClassifyParsing_Gibberish(t *testing.T) {
	c := NewClassifier()
	e := c.ClassifyParsing("u1", "asdf")

	if e.Type != TypeParsing {
		t.Errorf("type: got %s, want parsing", e.Type)
	}
	if e.UserFriendlyMessage == "" {
		t.Error("user-friendly message must never be empty")
	}

	var specific *ErrorSuggestion
	for i := range e.Suggestions {
		if e.Suggestions[i].ID == "be_more_specific" {
			specific = &e.Suggestions[i]
		}
	}
	if specific == nil {
		t.Fatalf("suggestions %v missing be_more_specific", e.SuggestionTitles())
	}
	if specific.Confidence < 0.8 {
		t.Errorf("be_more_specific confidence: got %v, want >= 0.8", specific.Confidence)
	}

	hasGuided := false
	for _, a := range e.RecoveryActions {
		if a.Handler == "guided_input" && a.ActionType == RecoveryUserInput {
			hasGuided = true
		}
	}
	if !hasGuided {
		t.Errorf("recovery actions %v missing guided_input option", e.RecoveryActions)
	}
}

func TestClassifyValidation_NamesFields(t *testing.T) {
	c := NewClassifier()
	e := c.ClassifyValidation("u1", "add a habit", "habit", "create", []validate.FieldError{
		{Field: "name", Message: "is required"},
	})

	if e.Type != TypeValidation {
		t.Errorf("type: got %s, want validation", e.Type)
	}
	if e.Severity != SeverityLow {
		t.Errorf("severity: got %s, want low for a first validation error", e.Severity)
	}
	if want := "name"; !contains(e.UserFriendlyMessage, want) {
		t.Errorf("user message %q does not mention %q", e.UserFriendlyMessage, want)
	}
	if e.Context.EntityType != "habit" || e.Context.Intent != "create" {
		t.Errorf("context: got %+v", e.Context)
	}
}

func TestSeverityEscalation_CooldownWindow(t *testing.T) {
	c := NewClassifier()

	// Three failures inside 60 seconds...
	for i := 0; i < 3; i++ {
		c.ClassifyParsing("u1", "asdf")
	}

	// ...force the fourth to at least high, even for a normally-low type.
	e := c.ClassifyParsing("u1", "asdf")
	if e.Severity.rank() < SeverityHigh.rank() {
		t.Errorf("fourth error severity: got %s, want at least high", e.Severity)
	}

	// A different user is unaffected.
	other := c.ClassifyParsing("u2", "asdf")
	if other.Severity != SeverityLow {
		t.Errorf("other user severity: got %s, want low", other.Severity)
	}
}

func TestSeverityEscalation_DailyWindow(t *testing.T) {
	c := NewClassifier()
	now := time.Now()
	c.history.now = func() time.Time { return now }

	// Ten failures spread over the day: outside the cooldown window but
	// inside retention.
	for i := 0; i < 10; i++ {
		now = now.Add(30 * time.Minute)
		c.ClassifyParsing("u1", "asdf")
	}

	now = now.Add(30 * time.Minute)
	e := c.ClassifyParsing("u1", "asdf")
	if e.Severity.rank() < SeverityMedium.rank() {
		t.Errorf("severity after a day of failures: got %s, want at least medium", e.Severity)
	}
}

func TestHistoryWindow_PrunesOldEntries(t *testing.T) {
	h := newHistoryWindow()
	now := time.Now()
	h.now = func() time.Time { return now }

	h.record("u1")
	now = now.Add(25 * time.Hour)
	h.record("u1")

	if got := h.countSince("u1", historyRetention); got != 1 {
		t.Errorf("count after retention: got %d, want 1", got)
	}
}

func TestServiceErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorType
	}{
		{errors.New("dial tcp: connection refused"), TypeNetwork},
		{errors.New("request timed out"), TypeNetwork},
		{context.DeadlineExceeded, TypeNetwork},
		{errors.New("401 unauthorized"), TypeAuthentication},
		{errors.New("permission denied for user"), TypeAuthentication},
		{errors.New("rate limit exceeded"), TypeRateLimit},
		{errors.New("HTTP 429 too many requests"), TypeRateLimit},
		{errors.New("habit not found"), TypeService},
		{nil, TypeUnknown},
	}
	for _, tt := range tests {
		if got := ServiceErrorType(tt.err); got != tt.want {
			t.Errorf("ServiceErrorType(%v): got %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestTransient(t *testing.T) {
	if !Transient(errors.New("connection reset by peer")) {
		t.Error("network errors must be transient")
	}
	if !Transient(errors.New("rate limit exceeded")) {
		t.Error("rate-limit errors must be transient")
	}
	if Transient(errors.New("401 unauthorized")) {
		t.Error("authentication errors must never be retried")
	}
	if Transient(errors.New("constraint violation")) {
		t.Error("generic service errors must not be transient")
	}
}

func TestClassifyService_CoreDependencyIsCritical(t *testing.T) {
	c := NewClassifier()
	e := c.ClassifyService("u1", "delete habit Exercise", "habit", "delete",
		errors.New("database is locked"))

	if e.Severity != SeverityCritical {
		t.Errorf("severity: got %s, want critical for a persistence failure", e.Severity)
	}
	if contains(e.UserFriendlyMessage, "database") {
		t.Errorf("user message %q leaks internal error text", e.UserFriendlyMessage)
	}
}

func TestClassifyService_NetworkHasAutomaticRetry(t *testing.T) {
	c := NewClassifier()
	e := c.ClassifyService("u1", "add habit Reading", "habit", "create",
		errors.New("connection refused"))

	if e.Type != TypeNetwork {
		t.Fatalf("type: got %s, want network", e.Type)
	}
	if len(e.RecoveryActions) == 0 {
		t.Fatal("expected recovery actions")
	}
	first := e.RecoveryActions[0]
	if first.ActionType != RecoveryAutomatic || first.Handler != "retry_operation" {
		t.Errorf("top recovery action: got %+v, want automatic retry_operation", first)
	}
	for i := 1; i < len(e.RecoveryActions); i++ {
		if e.RecoveryActions[i].Priority < e.RecoveryActions[i-1].Priority {
			t.Error("recovery actions are not ordered by priority")
		}
	}
}

func TestTypoSuggestions(t *testing.T) {
	c := NewClassifier()
	e := c.ClassifyParsing("u1", "pls make a habbit for running")

	found := false
	for _, s := range e.Suggestions {
		if s.ID == "typo_habit" {
			found = true
			if s.Parameters["with"] != "habit" {
				t.Errorf("typo parameters: got %v", s.Parameters)
			}
		}
	}
	if !found {
		t.Errorf("suggestions %v missing habbit→habit correction", e.SuggestionTitles())
	}
}

func contains(s, sub string) bool { return strings.Contains(s, sub) }
