package engine

import (
	"fmt"
	"strings"

	"github.com/kokoro-app/kokoro/internal/kokoro/confirm"
	"github.com/kokoro-app/kokoro/internal/kokoro/recovery"
)

// EntityType identifies one of the supported domain entities.
type EntityType string

const (
	EntityHabit         EntityType = "habit"
	EntityGoal          EntityType = "goal"
	EntityJournal       EntityType = "journal"
	EntityMood          EntityType = "mood"
	EntityRoutine       EntityType = "routine"
	EntityBelief        EntityType = "belief"
	EntitySynchronicity EntityType = "synchronicity"
)

// Intent is what the user wants done with an entity.
type Intent string

const (
	IntentCreate   Intent = "create"
	IntentUpdate   Intent = "update"
	IntentDelete   Intent = "delete"
	IntentComplete Intent = "complete"
	IntentToggle   Intent = "toggle"
	IntentView     Intent = "view"
)

// ParsedEntityOperation is a structured operation extracted from a chat
// message, ready for validation and execution.
type ParsedEntityOperation struct {
	EntityType EntityType
	Intent     Intent
	// Parameters carries the entity fields extracted from the message.
	Parameters Params
	// EntityID pins the target exactly, skipping name resolution. Set when
	// the user picked from a disambiguation list.
	EntityID string
	UserID   string
	// OriginalMessage is the raw chat text the operation was parsed from.
	OriginalMessage string
	// Confirmed is set when the user already answered yes to the
	// confirmation prompt for this exact operation.
	Confirmed bool
}

// Key returns the "entity.intent" action key used for audit entries.
func (op ParsedEntityOperation) Key() string {
	return string(op.EntityType) + "." + string(op.Intent)
}

// OperationResult is the outcome of executing (or gating) an operation.
type OperationResult struct {
	Success bool
	// Message is the user-facing reply text.
	Message string
	// Data carries the affected entity or computed stats for rendering.
	Data map[string]any
	// NeedsConfirmation is set when the operation was held at the gate;
	// ConfirmationPrompt holds the question to ask.
	NeedsConfirmation  bool
	ConfirmationPrompt string
	// Alternatives holds disambiguation candidates when resolution was
	// ambiguous.
	Alternatives []confirm.Option
	// Error is the classified failure when Success is false and the
	// operation was not merely gated.
	Error *recovery.ChatEntityError

	// state is the gate state the result was produced in, set only for
	// results held at the gate. The engine uses it to place the result in
	// the operation lifecycle.
	state confirm.State
}

// held reports whether the result parked the operation at the gate, as
// opposed to failing outright.
func (r *OperationResult) held() bool {
	return r.state == confirm.StateNeedsConfirmation || r.state == confirm.StateNeedsDisambiguation
}

// SuggestedActions flattens the classified error's suggestion titles for
// rendering, or nil when the operation did not fail.
func (r *OperationResult) SuggestedActions() []string {
	if r.Error == nil {
		return nil
	}
	return r.Error.SuggestionTitles()
}

// Params is a dynamic parameter bag with typed accessors. Values may arrive
// as native Go types from the parser or as JSON types from the HTTP layer;
// the accessors absorb both.
type Params map[string]any

// String returns the named parameter as a trimmed string, or "" when absent
// or not a string.
func (p Params) String(key string) string {
	v, ok := p[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// Int returns the named parameter as an int. JSON numbers decode as
// float64; both are accepted. Returns 0 when absent or non-numeric.
func (p Params) Int(key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// StringSlice returns the named parameter as a string slice, absorbing
// []any from JSON decoding.
func (p Params) StringSlice(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Has reports whether the named parameter is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// successResult builds a standard success reply.
func successResult(message string, data map[string]any) *OperationResult {
	return &OperationResult{Success: true, Message: message, Data: data}
}

// failureResult wraps a classified error into a result.
func failureResult(cerr *recovery.ChatEntityError) *OperationResult {
	return &OperationResult{
		Success: false,
		Message: cerr.UserFriendlyMessage,
		Error:   cerr,
	}
}

// gatedResult converts a gate decision that held the operation into a
// result asking the user to confirm or choose.
func gatedResult(d confirm.Decision) *OperationResult {
	return &OperationResult{
		Success:            false,
		Message:            d.Prompt,
		NeedsConfirmation:  d.State == confirm.StateNeedsConfirmation,
		ConfirmationPrompt: d.Prompt,
		Alternatives:       d.Options,
		state:              d.State,
	}
}

// notFoundResult builds the reply for a target name that matched nothing.
func notFoundResult(entity EntityType, name string, suggestions []confirm.Option) *OperationResult {
	msg := fmt.Sprintf("I couldn't find a %s named %q.", entity, name)
	if len(suggestions) > 0 {
		names := make([]string, 0, len(suggestions))
		for _, s := range suggestions {
			names = append(names, fmt.Sprintf("%q", s.Name))
		}
		msg += " Did you mean " + strings.Join(names, ", ") + "?"
	}
	return &OperationResult{Success: false, Message: msg, Alternatives: suggestions}
}
