package engine

import (
	"context"
	"fmt"
)

// route dispatches an operation to its entity handler. Unknown entity
// types and unsupported intents produce a reply, not an error: there is
// nothing to recover from.
func (e *Engine) route(ctx context.Context, op ParsedEntityOperation) (*OperationResult, error) {
	switch op.EntityType {
	case EntityHabit:
		return e.handleHabit(ctx, op)
	case EntityGoal:
		return e.handleGoal(ctx, op)
	case EntityJournal:
		return e.handleJournal(ctx, op)
	case EntityMood:
		return e.handleMood(ctx, op)
	case EntityRoutine:
		return e.handleRoutine(ctx, op)
	case EntityBelief:
		return e.handleBelief(ctx, op)
	case EntitySynchronicity:
		return e.handleSynchronicity(ctx, op)
	default:
		return &OperationResult{
			Success: false,
			Message: fmt.Sprintf("Sorry, I don't know how to work with %q yet.", op.EntityType),
		}, nil
	}
}

// unsupported is the reply for an intent an entity type does not have.
func unsupported(entity EntityType, intent Intent) *OperationResult {
	return &OperationResult{
		Success: false,
		Message: fmt.Sprintf("You can't %s a %s entry.", intent, entity),
	}
}
