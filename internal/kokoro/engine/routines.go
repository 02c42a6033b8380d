package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/kokoro-app/kokoro/internal/kokoro/resolve"
	"github.com/kokoro-app/kokoro/internal/kokoro/store"
)

func (e *Engine) handleRoutine(ctx context.Context, op ParsedEntityOperation) (*OperationResult, error) {
	p := op.Parameters

	switch op.Intent {
	case IntentCreate:
		n := store.NewRoutine{
			Name:        p.String("name"),
			Description: p.String("description"),
			TimeOfDay:   p.String("time_of_day"),
			Steps:       p.StringSlice("steps"),
		}
		var r *store.Routine
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			r, err = e.svc.Routines.CreateRoutine(ctx, op.UserID, n)
			return err
		})
		if err != nil {
			return nil, err
		}
		msg := fmt.Sprintf("Created %s routine %q.", r.TimeOfDay, r.Name)
		if len(r.Steps) > 0 {
			msg = fmt.Sprintf("Created %s routine %q with %d steps.", r.TimeOfDay, r.Name, len(r.Steps))
		}
		return successResult(msg, routineData(r)), nil

	case IntentView:
		if p.String("name") == "" && op.EntityID == "" {
			return e.listRoutines(ctx, op)
		}
	}

	routines, err := e.routineCandidates(ctx, op.UserID)
	if err != nil {
		return nil, err
	}
	cand, held := e.resolveTarget(op, routines)
	if held != nil {
		return held, nil
	}
	if held := e.gate(op, cand.Name); held != nil {
		return held, nil
	}

	switch op.Intent {
	case IntentUpdate:
		patch := store.RoutinePatch{}
		if p.Has("new_name") {
			v := p.String("new_name")
			patch.Name = &v
		}
		if p.Has("description") {
			v := p.String("description")
			patch.Description = &v
		}
		if p.Has("time_of_day") {
			v := p.String("time_of_day")
			patch.TimeOfDay = &v
		}
		if p.Has("steps") {
			v := p.StringSlice("steps")
			patch.Steps = &v
		}
		if v, ok := p["active"].(bool); ok {
			patch.Active = &v
		}
		var r *store.Routine
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			r, err = e.svc.Routines.UpdateRoutine(ctx, op.UserID, cand.ID, patch)
			return err
		})
		if err != nil {
			return nil, err
		}
		return successResult(fmt.Sprintf("Updated routine %q.", r.Name), routineData(r)), nil

	case IntentDelete:
		var deleted bool
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			deleted, err = e.svc.Routines.DeleteRoutine(ctx, op.UserID, cand.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		if !deleted {
			return notFoundResult(EntityRoutine, cand.Name, nil), nil
		}
		return successResult(fmt.Sprintf("Deleted routine %q.", cand.Name), nil), nil

	case IntentComplete:
		var r *store.Routine
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			r, err = e.svc.Routines.CompleteRoutine(ctx, op.UserID, cand.ID, time.Now())
			return err
		})
		if err != nil {
			return nil, err
		}
		return successResult(fmt.Sprintf("Nice, %q is done for today.", r.Name), routineData(r)), nil

	case IntentToggle:
		var current *store.Routine
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			current, err = e.svc.Routines.GetRoutine(ctx, op.UserID, cand.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		active := !current.Active
		var r *store.Routine
		err = e.call(ctx, func(ctx context.Context) error {
			var err error
			r, err = e.svc.Routines.UpdateRoutine(ctx, op.UserID, cand.ID, store.RoutinePatch{Active: &active})
			return err
		})
		if err != nil {
			return nil, err
		}
		verb := "Paused"
		if r.Active {
			verb = "Resumed"
		}
		return successResult(fmt.Sprintf("%s routine %q.", verb, r.Name), routineData(r)), nil

	case IntentView:
		var r *store.Routine
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			r, err = e.svc.Routines.GetRoutine(ctx, op.UserID, cand.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		msg := fmt.Sprintf("Routine %q runs in the %s with %d steps.", r.Name, r.TimeOfDay, len(r.Steps))
		return successResult(msg, routineData(r)), nil
	}

	return unsupported(EntityRoutine, op.Intent), nil
}

func (e *Engine) listRoutines(ctx context.Context, op ParsedEntityOperation) (*OperationResult, error) {
	var routines []*store.Routine
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		routines, err = e.svc.Routines.ListRoutines(ctx, op.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(routines) == 0 {
		return successResult("You don't have any routines yet. Try \"create a morning routine\".", nil), nil
	}

	items := make([]map[string]any, 0, len(routines))
	for _, r := range routines {
		items = append(items, routineData(r))
	}
	return successResult(fmt.Sprintf("You have %d routines.", len(routines)),
		map[string]any{"routines": items}), nil
}

func (e *Engine) routineCandidates(ctx context.Context, userID string) ([]resolve.Candidate, error) {
	var routines []*store.Routine
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		routines, err = e.svc.Routines.ListRoutines(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	cands := make([]resolve.Candidate, 0, len(routines))
	for _, r := range routines {
		cands = append(cands, resolve.Candidate{ID: r.ID, Name: r.Name})
	}
	return cands, nil
}

func routineData(r *store.Routine) map[string]any {
	return map[string]any{
		"id":          r.ID,
		"name":        r.Name,
		"time_of_day": r.TimeOfDay,
		"steps":       r.Steps,
		"active":      r.Active,
	}
}
