package engine

import (
	"context"
	"fmt"

	"github.com/kokoro-app/kokoro/internal/kokoro/resolve"
	"github.com/kokoro-app/kokoro/internal/kokoro/store"
)

func (e *Engine) handleGoal(ctx context.Context, op ParsedEntityOperation) (*OperationResult, error) {
	p := op.Parameters

	switch op.Intent {
	case IntentCreate:
		n := store.NewGoal{
			Title:       p.String("title"),
			Description: p.String("description"),
			Category:    p.String("category"),
			TargetDate:  p.String("target_date"),
		}
		if n.Category == "" {
			n.Category = inferCategory(n.Title + " " + n.Description)
		}
		var g *store.Goal
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			g, err = e.svc.Goals.CreateGoal(ctx, op.UserID, n)
			return err
		})
		if err != nil {
			return nil, err
		}
		msg := fmt.Sprintf("Created goal %q.", g.Title)
		if g.TargetDate.Valid {
			msg = fmt.Sprintf("Created goal %q with a target of %s.", g.Title, g.TargetDate.String)
		}
		return successResult(msg, goalData(g)), nil

	case IntentView:
		if p.String("title") == "" && p.String("name") == "" && op.EntityID == "" {
			return e.listGoals(ctx, op)
		}
	}

	goals, err := e.goalCandidates(ctx, op.UserID)
	if err != nil {
		return nil, err
	}
	cand, held := e.resolveTarget(op, goals)
	if held != nil {
		return held, nil
	}
	if held := e.gate(op, cand.Name); held != nil {
		return held, nil
	}

	switch op.Intent {
	case IntentUpdate:
		patch := store.GoalPatch{}
		if p.Has("new_title") {
			v := p.String("new_title")
			patch.Title = &v
		}
		if p.Has("description") {
			v := p.String("description")
			patch.Description = &v
		}
		if p.Has("category") {
			v := p.String("category")
			patch.Category = &v
		}
		if p.Has("target_date") {
			v := p.String("target_date")
			patch.TargetDate = &v
		}
		if p.Has("progress") {
			v := p.Int("progress")
			patch.Progress = &v
		}
		var g *store.Goal
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			g, err = e.svc.Goals.UpdateGoal(ctx, op.UserID, cand.ID, patch)
			return err
		})
		if err != nil {
			return nil, err
		}
		msg := fmt.Sprintf("Updated goal %q.", g.Title)
		if patch.Progress != nil {
			msg = fmt.Sprintf("Goal %q is now at %d%%.", g.Title, g.Progress)
		}
		return successResult(msg, goalData(g)), nil

	case IntentDelete:
		var deleted bool
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			deleted, err = e.svc.Goals.DeleteGoal(ctx, op.UserID, cand.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		if !deleted {
			return notFoundResult(EntityGoal, cand.Name, nil), nil
		}
		return successResult(fmt.Sprintf("Deleted goal %q.", cand.Name), nil), nil

	case IntentComplete:
		var g *store.Goal
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			g, err = e.svc.Goals.CompleteGoal(ctx, op.UserID, cand.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		return successResult(fmt.Sprintf("Congratulations, goal %q is complete!", g.Title), goalData(g)), nil

	case IntentView:
		var g *store.Goal
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			g, err = e.svc.Goals.GetGoal(ctx, op.UserID, cand.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		state := fmt.Sprintf("at %d%%", g.Progress)
		if g.Completed {
			state = "complete"
		}
		return successResult(fmt.Sprintf("Goal %q is %s.", g.Title, state), goalData(g)), nil
	}

	return unsupported(EntityGoal, op.Intent), nil
}

func (e *Engine) listGoals(ctx context.Context, op ParsedEntityOperation) (*OperationResult, error) {
	var goals []*store.Goal
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		goals, err = e.svc.Goals.ListGoals(ctx, op.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return successResult("You don't have any goals yet. Try \"set a goal to run a marathon\".", nil), nil
	}

	items := make([]map[string]any, 0, len(goals))
	open := 0
	for _, g := range goals {
		if !g.Completed {
			open++
		}
		items = append(items, goalData(g))
	}
	return successResult(fmt.Sprintf("You have %d goals, %d still open.", len(goals), open),
		map[string]any{"goals": items}), nil
}

func (e *Engine) goalCandidates(ctx context.Context, userID string) ([]resolve.Candidate, error) {
	var goals []*store.Goal
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		goals, err = e.svc.Goals.ListGoals(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	cands := make([]resolve.Candidate, 0, len(goals))
	for _, g := range goals {
		cands = append(cands, resolve.Candidate{ID: g.ID, Name: g.Title})
	}
	return cands, nil
}

func goalData(g *store.Goal) map[string]any {
	return map[string]any{
		"id":          g.ID,
		"title":       g.Title,
		"category":    g.Category.String,
		"target_date": g.TargetDate.String,
		"progress":    g.Progress,
		"completed":   g.Completed,
	}
}
