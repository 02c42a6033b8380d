package confirm

import (
	"strings"
	"testing"
)

func TestAssess_NonDestructiveExactIsReady(t *testing.T) {
	d := Assess(Request{Action: "complete", EntityName: "Reading"})
	if d.State != StateReady {
		t.Errorf("state: got %s, want ready", d.State)
	}
	if d.Prompt != "" {
		t.Errorf("unexpected prompt %q", d.Prompt)
	}
}

func TestAssess_DestructiveNeedsConfirmation(t *testing.T) {
	d := Assess(Request{Action: "delete", EntityName: "Exercise", Destructive: true})
	if d.State != StateNeedsConfirmation {
		t.Fatalf("state: got %s, want needs_confirmation", d.State)
	}
	if !strings.Contains(d.Prompt, "Exercise") || !strings.Contains(d.Prompt, "cannot be undone") {
		t.Errorf("prompt: got %q", d.Prompt)
	}
}

func TestAssess_ConfirmedDestructiveIsReady(t *testing.T) {
	d := Assess(Request{Action: "delete", EntityName: "Exercise", Destructive: true, Confirmed: true})
	if d.State != StateReady {
		t.Errorf("state: got %s, want ready after confirmation", d.State)
	}
}

func TestAssess_UncertainMatchNeedsConfirmation(t *testing.T) {
	d := Assess(Request{Action: "complete", EntityName: "Exercise", Uncertain: true})
	if d.State != StateNeedsConfirmation {
		t.Fatalf("state: got %s, want needs_confirmation", d.State)
	}
	if !strings.Contains(d.Prompt, "Did you mean") {
		t.Errorf("prompt: got %q", d.Prompt)
	}
}

func TestAssess_AmbiguityBeforeDestructiveness(t *testing.T) {
	d := Assess(Request{
		Action:      "delete",
		Destructive: true,
		Matches: []Option{
			{ID: "1", Name: "Morning run"},
			{ID: "2", Name: "Evening run"},
		},
	})
	if d.State != StateNeedsDisambiguation {
		t.Fatalf("state: got %s, want needs_disambiguation", d.State)
	}
	if len(d.Options) != 2 {
		t.Errorf("options: got %d, want 2", len(d.Options))
	}
	if !strings.Contains(d.Prompt, "1. Morning run") || !strings.Contains(d.Prompt, "2. Evening run") {
		t.Errorf("prompt: got %q", d.Prompt)
	}
}

func TestValidTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateParsed, StateValidated, true},
		{StateParsed, StateRejected, true},
		{StateValidated, StateReady, true},
		{StateNeedsConfirmation, StateReady, true},
		{StateNeedsConfirmation, StateCancelled, true},
		{StateNeedsDisambiguation, StateNeedsConfirmation, true},
		{StateReady, StateExecuting, true},
		{StateExecuting, StateSucceeded, true},
		{StateExecuting, StateFailed, true},
		{StateParsed, StateExecuting, false},
		{StateRejected, StateReady, false},
		{StateCancelled, StateExecuting, false},
		{StateSucceeded, StateExecuting, false},
	}
	for _, tt := range tests {
		if got := ValidTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("ValidTransition(%s, %s): got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range []State{StateRejected, StateCancelled, StateSucceeded, StateFailed} {
		if !Terminal(s) {
			t.Errorf("%s must be terminal", s)
		}
	}
	for _, s := range []State{StateParsed, StateReady, StateExecuting} {
		if Terminal(s) {
			t.Errorf("%s must not be terminal", s)
		}
	}
}
