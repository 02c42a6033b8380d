// Package recovery classifies failures from the chat operation pipeline and
// proposes how to get the user unstuck.
//
// Three entry points mirror the pipeline stages: parsing (no usable
// operation extracted), validation (well-formed operation, invalid
// parameters), and service (a domain-service call failed). Every classified
// error carries a user-friendly message, heuristic suggestions derived from
// the original message, and ranked recovery actions. The package is purely
// advisory: it never performs a retry itself; callers consult
// RecoveryActions and execute the named handler.
package recovery

import "time"

// ErrorType is the failure taxonomy.
type ErrorType string

const (
	TypeParsing        ErrorType = "parsing"
	TypeValidation     ErrorType = "validation"
	TypeService        ErrorType = "service"
	TypeNetwork        ErrorType = "network"
	TypeAuthentication ErrorType = "authentication"
	TypeRateLimit      ErrorType = "rate_limit"
	TypeUnknown        ErrorType = "unknown"
)

// Severity grades how bad a classified error is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// rank orders severities for escalation comparisons.
func (s Severity) rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	}
	return 0
}

// atLeast returns the higher of s and floor.
func (s Severity) atLeast(floor Severity) Severity {
	if s.rank() < floor.rank() {
		return floor
	}
	return s
}

// SuggestionAction is what acting on a suggestion means.
type SuggestionAction string

const (
	SuggestRetry       SuggestionAction = "retry"
	SuggestModify      SuggestionAction = "modify"
	SuggestAlternative SuggestionAction = "alternative"
	SuggestHelp        SuggestionAction = "help"
)

// ErrorSuggestion is one actionable hint shown to the user.
type ErrorSuggestion struct {
	ID          string
	Title       string
	Description string
	ActionType  SuggestionAction
	// Confidence is a 0–1 score for how likely the suggestion addresses
	// the actual problem.
	Confidence float64
	// Parameters carries suggestion-specific values, e.g. a typo
	// correction's replacement term.
	Parameters map[string]string
}

// RecoveryMode is how a recovery action is executed.
type RecoveryMode string

const (
	// RecoveryAutomatic actions may be run by the engine without asking
	// (e.g. retrying a transient network failure).
	RecoveryAutomatic RecoveryMode = "automatic"
	// RecoveryUserInput actions need the user to answer or choose.
	RecoveryUserInput RecoveryMode = "user_input"
	// RecoveryFallback actions drop to a non-conversational path.
	RecoveryFallback RecoveryMode = "fallback"
)

// RecoveryAction is one ranked recovery path out of a failure.
type RecoveryAction struct {
	ID          string
	Label       string
	Description string
	ActionType  RecoveryMode
	// Handler names the recovery routine the caller should invoke.
	Handler string
	// Priority orders actions; lower runs first.
	Priority int
}

// ErrorContext captures where in the pipeline the failure happened.
type ErrorContext struct {
	OriginalMessage string
	EntityType      string
	Intent          string
	UserID          string
	Timestamp       time.Time
}

// ChatEntityError is a fully classified pipeline failure.
type ChatEntityError struct {
	Type     ErrorType
	Severity Severity
	// Message is the internal description; never shown to the user.
	Message string
	// UserFriendlyMessage is always non-empty and safe to render.
	UserFriendlyMessage string
	Code                string
	Context             ErrorContext
	Suggestions         []ErrorSuggestion
	RecoveryActions     []RecoveryAction
}

// SuggestionTitles returns the suggestion titles in order, for rendering as
// a short follow-up list.
func (e *ChatEntityError) SuggestionTitles() []string {
	out := make([]string, 0, len(e.Suggestions))
	for _, s := range e.Suggestions {
		out = append(out, s.Title)
	}
	return out
}
