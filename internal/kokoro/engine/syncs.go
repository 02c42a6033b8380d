package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/kokoro-app/kokoro/internal/kokoro/resolve"
	"github.com/kokoro-app/kokoro/internal/kokoro/store"
)

func (e *Engine) handleSynchronicity(ctx context.Context, op ParsedEntityOperation) (*OperationResult, error) {
	p := op.Parameters

	switch op.Intent {
	case IntentCreate:
		n := store.NewSynchronicity{
			Description:  p.String("description"),
			Tags:         p.StringSlice("tags"),
			Significance: p.Int("significance"),
		}
		if occurred := p.String("occurred_at"); occurred != "" {
			if t, err := time.Parse("2006-01-02", occurred); err == nil {
				n.OccurredAt = t
			}
		}
		if len(n.Tags) == 0 {
			n.Tags = inferTags(n.Description)
		}
		var sync *store.Synchronicity
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			sync, err = e.svc.Syncs.CreateSynchronicity(ctx, op.UserID, n)
			return err
		})
		if err != nil {
			return nil, err
		}
		return successResult("Logged the synchronicity. I'll watch for patterns.", syncData(sync)), nil

	case IntentView:
		var syncs []*store.Synchronicity
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			syncs, err = e.svc.Syncs.ListSynchronicities(ctx, op.UserID)
			return err
		})
		if err != nil {
			return nil, err
		}
		if len(syncs) == 0 {
			return successResult("No synchronicities logged yet.", nil), nil
		}
		items := make([]map[string]any, 0, len(syncs))
		for _, sync := range syncs {
			items = append(items, syncData(sync))
		}
		return successResult(fmt.Sprintf("You've logged %d synchronicities.", len(syncs)),
			map[string]any{"synchronicities": items}), nil

	case IntentDelete:
		syncs, err := e.syncCandidates(ctx, op.UserID)
		if err != nil {
			return nil, err
		}
		cand, held := e.resolveTarget(op, syncs)
		if held != nil {
			return held, nil
		}
		if held := e.gate(op, cand.Name); held != nil {
			return held, nil
		}
		var deleted bool
		err = e.call(ctx, func(ctx context.Context) error {
			var err error
			deleted, err = e.svc.Syncs.DeleteSynchronicity(ctx, op.UserID, cand.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		if !deleted {
			return notFoundResult(EntitySynchronicity, cand.Name, nil), nil
		}
		return successResult("Deleted the synchronicity.", nil), nil
	}

	return unsupported(EntitySynchronicity, op.Intent), nil
}

func (e *Engine) syncCandidates(ctx context.Context, userID string) ([]resolve.Candidate, error) {
	var syncs []*store.Synchronicity
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		syncs, err = e.svc.Syncs.ListSynchronicities(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	cands := make([]resolve.Candidate, 0, len(syncs))
	for _, sync := range syncs {
		cands = append(cands, resolve.Candidate{ID: sync.ID, Name: sync.Description})
	}
	return cands, nil
}

func syncData(sync *store.Synchronicity) map[string]any {
	return map[string]any{
		"id":           sync.ID,
		"description":  sync.Description,
		"tags":         sync.Tags,
		"significance": sync.Significance.Int64,
		"occurred_at":  sync.OccurredAt,
	}
}
