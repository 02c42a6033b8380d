package engine

import (
	"context"
	"fmt"

	"github.com/kokoro-app/kokoro/internal/kokoro/store"
)

// moodStatsWindow is how many recent entries the view intent summarizes.
const moodStatsWindow = 30

func (e *Engine) handleMood(ctx context.Context, op ParsedEntityOperation) (*OperationResult, error) {
	p := op.Parameters

	switch op.Intent {
	case IntentCreate:
		n := store.NewMoodEntry{
			Rating:   p.Int("rating"),
			Energy:   p.Int("energy"),
			Note:     p.String("note"),
			Emotions: p.StringSlice("emotions"),
		}
		if len(n.Emotions) == 0 && n.Note != "" {
			if mood := inferMood(n.Note); mood != "" {
				n.Emotions = []string{mood}
			}
		}
		var entry *store.MoodEntry
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			entry, err = e.svc.Moods.CreateMoodEntry(ctx, op.UserID, n)
			return err
		})
		if err != nil {
			return nil, err
		}
		return successResult(fmt.Sprintf("Logged your mood at %d/10.", entry.Rating), moodData(entry)), nil

	case IntentView:
		var stats *store.MoodStats
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			stats, err = e.svc.Moods.MoodStats(ctx, op.UserID, moodStatsWindow)
			return err
		})
		if err != nil {
			return nil, err
		}
		if stats.Count == 0 {
			return successResult("No mood entries yet. Tell me how you're feeling on a scale of 1 to 10.", nil), nil
		}
		msg := fmt.Sprintf("Over your last %d check-ins your mood averaged %.1f and is %s.",
			stats.Count, stats.Average, stats.Trend)
		return successResult(msg, map[string]any{
			"count":   stats.Count,
			"average": stats.Average,
			"trend":   stats.Trend,
		}), nil

	case IntentDelete:
		if op.EntityID == "" {
			return &OperationResult{
				Success: false,
				Message: "Mood entries can only be removed by ID from the mood history view.",
			}, nil
		}
		if held := e.gate(op, "mood entry"); held != nil {
			return held, nil
		}
		var deleted bool
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			deleted, err = e.svc.Moods.DeleteMoodEntry(ctx, op.UserID, op.EntityID)
			return err
		})
		if err != nil {
			return nil, err
		}
		if !deleted {
			return notFoundResult(EntityMood, op.EntityID, nil), nil
		}
		return successResult("Deleted the mood entry.", nil), nil
	}

	return unsupported(EntityMood, op.Intent), nil
}

func moodData(entry *store.MoodEntry) map[string]any {
	return map[string]any{
		"id":       entry.ID,
		"rating":   entry.Rating,
		"energy":   entry.Energy.Int64,
		"note":     entry.Note.String,
		"emotions": entry.Emotions,
	}
}
