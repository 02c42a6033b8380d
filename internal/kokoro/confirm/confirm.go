// Package confirm implements the confirmation gate that sits between a
// validated operation and its execution. Destructive or uncertain operations
// are held until the user confirms, disambiguates, or cancels.
package confirm

import "fmt"

// State tracks an operation through its conversational lifecycle.
type State string

const (
	StateParsed              State = "parsed"
	StateValidated           State = "validated"
	StateRejected            State = "rejected"
	StateNeedsDisambiguation State = "needs_disambiguation"
	StateNeedsConfirmation   State = "needs_confirmation"
	StateReady               State = "ready"
	StateCancelled           State = "cancelled"
	StateExecuting           State = "executing"
	StateSucceeded           State = "succeeded"
	StateFailed              State = "failed"
)

// transitions lists the allowed successor states for each state. Terminal
// states have no successors.
var transitions = map[State][]State{
	StateParsed:              {StateValidated, StateRejected},
	StateValidated:           {StateNeedsDisambiguation, StateNeedsConfirmation, StateReady},
	StateNeedsDisambiguation: {StateNeedsConfirmation, StateReady, StateCancelled},
	StateNeedsConfirmation:   {StateReady, StateCancelled},
	StateReady:               {StateExecuting},
	StateExecuting:           {StateSucceeded, StateFailed},
}

// ValidTransition reports whether an operation may move from one state to
// another.
func ValidTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a state has no successors.
func Terminal(s State) bool {
	return len(transitions[s]) == 0
}

// Option is a candidate entity presented to the user for disambiguation.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Request describes a validated operation for the gate to assess.
type Request struct {
	// Action is the human-readable verb, e.g. "delete".
	Action string
	// EntityName is the display name of the resolved target, when known.
	EntityName string
	// Destructive marks operations that cannot be undone.
	Destructive bool
	// Uncertain marks targets resolved by fuzzy matching rather than an
	// exact name or ID.
	Uncertain bool
	// Confirmed is set when the user already answered yes for this exact
	// operation.
	Confirmed bool
	// Matches holds the candidates when resolution was ambiguous.
	Matches []Option
}

// Decision is the gate's verdict on a request.
type Decision struct {
	State   State
	Prompt  string
	Options []Option
}

// Assess decides whether a validated operation may execute. Ambiguity is
// checked before destructiveness: there is no point confirming a delete
// when we do not yet know which entity it targets.
func Assess(req Request) Decision {
	if len(req.Matches) > 1 {
		return Decision{
			State:   StateNeedsDisambiguation,
			Prompt:  disambiguationPrompt(req),
			Options: req.Matches,
		}
	}

	if req.Confirmed {
		return Decision{State: StateReady}
	}

	if req.Destructive {
		return Decision{
			State:  StateNeedsConfirmation,
			Prompt: fmt.Sprintf("Are you sure you want to %s %q? This cannot be undone.", req.Action, req.EntityName),
		}
	}

	if req.Uncertain {
		return Decision{
			State:  StateNeedsConfirmation,
			Prompt: fmt.Sprintf("Did you mean %q? Reply yes to %s it.", req.EntityName, req.Action),
		}
	}

	return Decision{State: StateReady}
}

func disambiguationPrompt(req Request) string {
	prompt := fmt.Sprintf("I found %d matches to %s. Which one did you mean?", len(req.Matches), req.Action)
	for i, opt := range req.Matches {
		prompt += fmt.Sprintf("\n%d. %s", i+1, opt.Name)
	}
	return prompt
}
