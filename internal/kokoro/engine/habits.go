package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/kokoro-app/kokoro/internal/kokoro/resolve"
	"github.com/kokoro-app/kokoro/internal/kokoro/store"
)

func (e *Engine) handleHabit(ctx context.Context, op ParsedEntityOperation) (*OperationResult, error) {
	p := op.Parameters

	switch op.Intent {
	case IntentCreate:
		n := store.NewHabit{
			Name:        p.String("name"),
			Description: p.String("description"),
			Frequency:   p.String("frequency"),
			Category:    p.String("category"),
		}
		if n.Category == "" {
			n.Category = inferCategory(n.Name + " " + n.Description)
		}
		var h *store.Habit
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			h, err = e.svc.Habits.CreateHabit(ctx, op.UserID, n)
			return err
		})
		if err != nil {
			return nil, err
		}
		return successResult(fmt.Sprintf("Created habit %q, tracked %s.", h.Name, h.Frequency), habitData(h)), nil

	case IntentView:
		if p.String("name") == "" && op.EntityID == "" {
			return e.listHabits(ctx, op)
		}
	}

	// Every remaining intent targets one existing habit.
	habits, err := e.habitCandidates(ctx, op.UserID)
	if err != nil {
		return nil, err
	}
	cand, held := e.resolveTarget(op, habits)
	if held != nil {
		return held, nil
	}
	if held := e.gate(op, cand.Name); held != nil {
		return held, nil
	}

	switch op.Intent {
	case IntentUpdate:
		patch := store.HabitPatch{}
		if p.Has("new_name") {
			v := p.String("new_name")
			patch.Name = &v
		}
		if p.Has("description") {
			v := p.String("description")
			patch.Description = &v
		}
		if p.Has("frequency") {
			v := p.String("frequency")
			patch.Frequency = &v
		}
		if p.Has("category") {
			v := p.String("category")
			patch.Category = &v
		}
		if v, ok := p["active"].(bool); ok {
			patch.Active = &v
		}
		var h *store.Habit
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			h, err = e.svc.Habits.UpdateHabit(ctx, op.UserID, cand.ID, patch)
			return err
		})
		if err != nil {
			return nil, err
		}
		return successResult(fmt.Sprintf("Updated habit %q.", h.Name), habitData(h)), nil

	case IntentDelete:
		var deleted bool
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			deleted, err = e.svc.Habits.DeleteHabit(ctx, op.UserID, cand.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		if !deleted {
			return notFoundResult(EntityHabit, cand.Name, nil), nil
		}
		return successResult(fmt.Sprintf("Deleted habit %q and its history.", cand.Name), nil), nil

	case IntentComplete:
		var h *store.Habit
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			h, err = e.svc.Habits.CompleteHabit(ctx, op.UserID, cand.ID, time.Now())
			return err
		})
		if err != nil {
			return nil, err
		}
		var stats *store.HabitStats
		statsErr := e.call(ctx, func(ctx context.Context) error {
			var err error
			stats, err = e.svc.Habits.HabitStats(ctx, op.UserID, cand.ID)
			return err
		})
		msg := fmt.Sprintf("Marked %q done for today.", h.Name)
		data := habitData(h)
		if statsErr == nil {
			msg = fmt.Sprintf("Marked %q done for today. Current streak: %d.", h.Name, stats.Streak)
			data["streak"] = stats.Streak
			data["best_streak"] = stats.BestStreak
		}
		return successResult(msg, data), nil

	case IntentToggle:
		var current *store.Habit
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			current, err = e.svc.Habits.GetHabit(ctx, op.UserID, cand.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		active := !current.Active
		var h *store.Habit
		err = e.call(ctx, func(ctx context.Context) error {
			var err error
			h, err = e.svc.Habits.UpdateHabit(ctx, op.UserID, cand.ID, store.HabitPatch{Active: &active})
			return err
		})
		if err != nil {
			return nil, err
		}
		verb := "Paused"
		if h.Active {
			verb = "Resumed"
		}
		return successResult(fmt.Sprintf("%s habit %q.", verb, h.Name), habitData(h)), nil

	case IntentView:
		var h *store.Habit
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			h, err = e.svc.Habits.GetHabit(ctx, op.UserID, cand.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		var stats *store.HabitStats
		err = e.call(ctx, func(ctx context.Context) error {
			var err error
			stats, err = e.svc.Habits.HabitStats(ctx, op.UserID, cand.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		data := habitData(h)
		data["streak"] = stats.Streak
		data["best_streak"] = stats.BestStreak
		data["completion_rate_30d"] = stats.CompletionRate30d
		data["total_completions"] = stats.TotalCompletions
		msg := fmt.Sprintf("%q: streak %d, best %d, %d completions total.",
			h.Name, stats.Streak, stats.BestStreak, stats.TotalCompletions)
		return successResult(msg, data), nil
	}

	return unsupported(EntityHabit, op.Intent), nil
}

func (e *Engine) listHabits(ctx context.Context, op ParsedEntityOperation) (*OperationResult, error) {
	var habits []*store.Habit
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		habits, err = e.svc.Habits.ListHabits(ctx, op.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(habits) == 0 {
		return successResult("You don't have any habits yet. Try \"add a habit called Reading\".", nil), nil
	}

	items := make([]map[string]any, 0, len(habits))
	for _, h := range habits {
		items = append(items, habitData(h))
	}
	return successResult(fmt.Sprintf("You have %d habits.", len(habits)), map[string]any{"habits": items}), nil
}

func (e *Engine) habitCandidates(ctx context.Context, userID string) ([]resolve.Candidate, error) {
	var habits []*store.Habit
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		habits, err = e.svc.Habits.ListHabits(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	cands := make([]resolve.Candidate, 0, len(habits))
	for _, h := range habits {
		cands = append(cands, resolve.Candidate{ID: h.ID, Name: h.Name})
	}
	return cands, nil
}

func habitData(h *store.Habit) map[string]any {
	return map[string]any{
		"id":        h.ID,
		"name":      h.Name,
		"frequency": h.Frequency,
		"category":  h.Category.String,
		"active":    h.Active,
	}
}
