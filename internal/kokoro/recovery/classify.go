package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kokoro-app/kokoro/internal/kokoro/validate"
)

// Classifier turns pipeline failures into ChatEntityErrors. It keeps a
// per-user rolling error history to escalate severity for repeat failures.
//
// Classifier is safe for concurrent use from multiple goroutines.
type Classifier struct {
	history *historyWindow
}

// NewClassifier returns a Classifier with an empty error history.
func NewClassifier() *Classifier {
	return &Classifier{history: newHistoryWindow()}
}

// ResetUser drops the error history for one user (session reset).
func (c *Classifier) ResetUser(userID string) {
	c.history.reset(userID)
}

// ClassifyParsing handles the case where the parser produced nothing usable
// from the message.
func (c *Classifier) ClassifyParsing(userID, message string) *ChatEntityError {
	severity := c.escalate(userID, SeverityLow)
	e := &ChatEntityError{
		Type:                TypeParsing,
		Severity:            severity,
		Message:             fmt.Sprintf("no operation extracted from message %q", message),
		UserFriendlyMessage: "I couldn't work out what you'd like me to do with that.",
		Code:                "parse_no_operation",
		Context:             c.contextFor(userID, message, "", ""),
		Suggestions:         suggestionsFor(message),
		RecoveryActions:     recoveryActionsFor(TypeParsing),
	}
	c.finish(e)
	return e
}

// ClassifyValidation handles an operation whose parameters violated the
// schema for its entity type and intent. The full violation list is folded
// into the user-facing message so the user can fix everything in one go.
func (c *Classifier) ClassifyValidation(userID, message, entityType, intent string, fieldErrors []validate.FieldError) *ChatEntityError {
	severity := c.escalate(userID, SeverityLow)

	var parts []string
	for _, fe := range fieldErrors {
		parts = append(parts, fe.String())
	}
	detail := strings.Join(parts, "; ")

	e := &ChatEntityError{
		Type:                TypeValidation,
		Severity:            severity,
		Message:             fmt.Sprintf("validation failed for %s %s: %s", entityType, intent, detail),
		UserFriendlyMessage: fmt.Sprintf("I need a bit more to %s that %s: %s.", intent, entityType, detail),
		Code:                "validation_failed",
		Context:             c.contextFor(userID, message, entityType, intent),
		Suggestions:         suggestionsFor(message),
		RecoveryActions:     recoveryActionsFor(TypeValidation),
	}
	c.finish(e)
	return e
}

// ClassifyService handles an error raised by a domain-service call. The
// error type is inferred from the error text, a best-effort keyword
// classifier, not exhaustive.
func (c *Classifier) ClassifyService(userID, message, entityType, intent string, err error) *ChatEntityError {
	errType := ServiceErrorType(err)
	severity := c.escalate(userID, baseSeverity(errType))

	if errType == TypeService && isCoreDependency(err) {
		severity = SeverityCritical
	}

	e := &ChatEntityError{
		Type:                errType,
		Severity:            severity,
		Message:             fmt.Sprintf("%s %s service call failed: %v", entityType, intent, err),
		UserFriendlyMessage: userMessageFor(errType, entityType),
		Code:                string(errType) + "_error",
		Context:             c.contextFor(userID, message, entityType, intent),
		Suggestions:         suggestionsFor(message),
		RecoveryActions:     recoveryActionsFor(errType),
	}
	c.finish(e)
	return e
}

// contextFor stamps the error context with the current time.
func (c *Classifier) contextFor(userID, message, entityType, intent string) ErrorContext {
	return ErrorContext{
		OriginalMessage: message,
		EntityType:      entityType,
		Intent:          intent,
		UserID:          userID,
		Timestamp:       c.history.now(),
	}
}

// escalate returns the effective severity for a new error, given the user's
// recent failure history, and records the error. Prior errors are counted
// before recording so the Nth failure sees N-1 in the window.
func (c *Classifier) escalate(userID string, base Severity) Severity {
	recent := c.history.countSince(userID, cooldownWindow)
	daily := c.history.countSince(userID, historyRetention)
	c.history.record(userID)

	severity := base
	if recent >= cooldownEscalation {
		severity = severity.atLeast(SeverityHigh)
	} else if daily >= dailyEscalation {
		// A slow burn of failures over the day still warrants a bump.
		severity = severity.atLeast(SeverityMedium)
	}
	return severity
}

// finish applies the invariants every classified error must satisfy and
// gives operators visibility into critical failures.
func (c *Classifier) finish(e *ChatEntityError) {
	if e.UserFriendlyMessage == "" {
		e.UserFriendlyMessage = "Something went wrong on my side. Please try again."
	}
	if e.Severity == SeverityCritical {
		slog.Error("critical chat operation failure",
			"code", e.Code,
			"type", string(e.Type),
			"user", e.Context.UserID,
			"entity", e.Context.EntityType,
			"intent", e.Context.Intent,
			"err", e.Message,
		)
	}
}

// ServiceErrorType infers the error taxonomy bucket from a service error's
// message content.
func ServiceErrorType(err error) ErrorType {
	if err == nil {
		return TypeUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return TypeNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "rate limit", "too many requests", "429"):
		return TypeRateLimit
	case containsAny(msg, "unauthorized", "forbidden", "permission denied", "invalid credentials", "authentication"):
		return TypeAuthentication
	case containsAny(msg, "timeout", "timed out", "deadline exceeded", "connection refused", "connection reset", "no such host", "network", "unreachable", "broken pipe"):
		return TypeNetwork
	default:
		return TypeService
	}
}

// Transient reports whether an error is a candidate for automatic retry.
// Parsing, validation, and authentication failures are never transient.
func Transient(err error) bool {
	switch ServiceErrorType(err) {
	case TypeNetwork, TypeRateLimit:
		return true
	default:
		return false
	}
}

// isCoreDependency reports whether the error names a core persistence
// dependency, which warrants operator attention.
func isCoreDependency(err error) bool {
	msg := strings.ToLower(err.Error())
	return containsAny(msg, "database", "sqlite", "sql:", "storage", "persistence", "disk")
}

func baseSeverity(t ErrorType) Severity {
	switch t {
	case TypeParsing, TypeValidation:
		return SeverityLow
	case TypeAuthentication:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

func userMessageFor(t ErrorType, entityType string) string {
	noun := entityType
	if noun == "" {
		noun = "request"
	}
	switch t {
	case TypeNetwork:
		return "I'm having trouble reaching the service right now. Please try again in a moment."
	case TypeRateLimit:
		return "You're sending requests faster than I can handle. Give it a few seconds and try again."
	case TypeAuthentication:
		return "I'm not allowed to do that for your account right now. You may need to sign in again."
	default:
		return fmt.Sprintf("I couldn't finish working on your %s. Nothing was changed, so please try again.", noun)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
