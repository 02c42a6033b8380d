package engine

import (
	"context"
	"fmt"

	"github.com/kokoro-app/kokoro/internal/kokoro/resolve"
	"github.com/kokoro-app/kokoro/internal/kokoro/store"
)

func (e *Engine) handleBelief(ctx context.Context, op ParsedEntityOperation) (*OperationResult, error) {
	p := op.Parameters

	switch op.Intent {
	case IntentCreate:
		n := store.NewBeliefCycle{
			Belief:    p.String("belief"),
			Category:  p.String("category"),
			Intensity: p.Int("intensity"),
		}
		var b *store.BeliefCycle
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			b, err = e.svc.Beliefs.CreateBeliefCycle(ctx, op.UserID, n)
			return err
		})
		if err != nil {
			return nil, err
		}
		return successResult(fmt.Sprintf("Recorded the belief %q. When you're ready, tell me how you'd reframe it.", b.Belief),
			beliefData(b)), nil

	case IntentView:
		if p.String("belief") == "" && p.String("name") == "" && op.EntityID == "" {
			return e.listBeliefs(ctx, op)
		}
	}

	beliefs, err := e.beliefCandidates(ctx, op.UserID)
	if err != nil {
		return nil, err
	}
	cand, held := e.resolveTarget(op, beliefs)
	if held != nil {
		return held, nil
	}
	if held := e.gate(op, cand.Name); held != nil {
		return held, nil
	}

	switch op.Intent {
	case IntentUpdate:
		patch := store.BeliefPatch{}
		if p.Has("reframe") {
			v := p.String("reframe")
			patch.Reframe = &v
		}
		if p.Has("status") {
			v := p.String("status")
			patch.Status = &v
		}
		if p.Has("category") {
			v := p.String("category")
			patch.Category = &v
		}
		if p.Has("intensity") {
			v := p.Int("intensity")
			patch.Intensity = &v
		}
		var b *store.BeliefCycle
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			b, err = e.svc.Beliefs.UpdateBeliefCycle(ctx, op.UserID, cand.ID, patch)
			return err
		})
		if err != nil {
			return nil, err
		}
		msg := fmt.Sprintf("Updated the belief %q.", b.Belief)
		if b.Status == store.BeliefReframed && b.Reframe.Valid {
			msg = fmt.Sprintf("Reframed %q as %q. Well done.", b.Belief, b.Reframe.String)
		}
		return successResult(msg, beliefData(b)), nil

	case IntentDelete:
		var deleted bool
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			deleted, err = e.svc.Beliefs.DeleteBeliefCycle(ctx, op.UserID, cand.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		if !deleted {
			return notFoundResult(EntityBelief, cand.Name, nil), nil
		}
		return successResult(fmt.Sprintf("Deleted the belief %q.", cand.Name), nil), nil

	case IntentComplete:
		// Completing a belief cycle means it has been worked through.
		status := store.BeliefReframed
		var b *store.BeliefCycle
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			b, err = e.svc.Beliefs.UpdateBeliefCycle(ctx, op.UserID, cand.ID, store.BeliefPatch{Status: &status})
			return err
		})
		if err != nil {
			return nil, err
		}
		return successResult(fmt.Sprintf("Marked the belief %q as reframed.", b.Belief), beliefData(b)), nil

	case IntentView:
		var b *store.BeliefCycle
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			b, err = e.svc.Beliefs.GetBeliefCycle(ctx, op.UserID, cand.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		msg := fmt.Sprintf("Belief %q is %s.", b.Belief, b.Status)
		if b.Reframe.Valid {
			msg += fmt.Sprintf(" Reframe: %q.", b.Reframe.String)
		}
		return successResult(msg, beliefData(b)), nil
	}

	return unsupported(EntityBelief, op.Intent), nil
}

func (e *Engine) listBeliefs(ctx context.Context, op ParsedEntityOperation) (*OperationResult, error) {
	var beliefs []*store.BeliefCycle
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		beliefs, err = e.svc.Beliefs.ListBeliefCycles(ctx, op.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(beliefs) == 0 {
		return successResult("No beliefs recorded yet. Share a limiting belief you'd like to work on.", nil), nil
	}

	items := make([]map[string]any, 0, len(beliefs))
	active := 0
	for _, b := range beliefs {
		if b.Status != store.BeliefReframed {
			active++
		}
		items = append(items, beliefData(b))
	}
	return successResult(fmt.Sprintf("You're tracking %d beliefs, %d still in progress.", len(beliefs), active),
		map[string]any{"beliefs": items}), nil
}

func (e *Engine) beliefCandidates(ctx context.Context, userID string) ([]resolve.Candidate, error) {
	var beliefs []*store.BeliefCycle
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		beliefs, err = e.svc.Beliefs.ListBeliefCycles(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	cands := make([]resolve.Candidate, 0, len(beliefs))
	for _, b := range beliefs {
		cands = append(cands, resolve.Candidate{ID: b.ID, Name: b.Belief})
	}
	return cands, nil
}

func beliefData(b *store.BeliefCycle) map[string]any {
	return map[string]any{
		"id":        b.ID,
		"belief":    b.Belief,
		"category":  b.Category.String,
		"intensity": b.Intensity.Int64,
		"reframe":   b.Reframe.String,
		"status":    b.Status,
	}
}
