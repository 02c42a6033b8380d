package engine

import (
	"context"
	"fmt"

	"github.com/kokoro-app/kokoro/internal/kokoro/resolve"
	"github.com/kokoro-app/kokoro/internal/kokoro/store"
)

func (e *Engine) handleJournal(ctx context.Context, op ParsedEntityOperation) (*OperationResult, error) {
	p := op.Parameters

	switch op.Intent {
	case IntentCreate:
		content := p.String("content")
		n := store.NewJournalEntry{
			Title:   p.String("title"),
			Content: content,
			Mood:    p.String("mood"),
			Tags:    p.StringSlice("tags"),
		}
		if n.Title == "" {
			n.Title = deriveTitle(content)
		}
		if n.Mood == "" {
			n.Mood = inferMood(content)
		}
		if n.Mood == "" {
			n.Mood = moodFromSentiment(content)
		}
		if len(n.Tags) == 0 {
			n.Tags = inferTags(content)
		}
		var entry *store.JournalEntry
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			entry, err = e.svc.Journal.CreateJournalEntry(ctx, op.UserID, n)
			return err
		})
		if err != nil {
			return nil, err
		}
		return successResult(fmt.Sprintf("Saved journal entry %q.", entry.Title.String), journalData(entry)), nil

	case IntentView:
		if p.String("title") == "" && p.String("name") == "" && op.EntityID == "" {
			return e.listJournalEntries(ctx, op)
		}
	}

	entries, err := e.journalCandidates(ctx, op.UserID)
	if err != nil {
		return nil, err
	}
	cand, held := e.resolveTarget(op, entries)
	if held != nil {
		return held, nil
	}
	if held := e.gate(op, cand.Name); held != nil {
		return held, nil
	}

	switch op.Intent {
	case IntentUpdate:
		patch := store.JournalPatch{}
		if p.Has("content") {
			v := p.String("content")
			patch.Content = &v
		}
		if p.Has("mood") {
			v := p.String("mood")
			patch.Mood = &v
		}
		if p.Has("tags") {
			v := p.StringSlice("tags")
			patch.Tags = &v
		}
		var entry *store.JournalEntry
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			entry, err = e.svc.Journal.UpdateJournalEntry(ctx, op.UserID, cand.ID, patch)
			return err
		})
		if err != nil {
			return nil, err
		}
		return successResult(fmt.Sprintf("Updated journal entry %q.", entry.Title.String), journalData(entry)), nil

	case IntentDelete:
		var deleted bool
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			deleted, err = e.svc.Journal.DeleteJournalEntry(ctx, op.UserID, cand.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		if !deleted {
			return notFoundResult(EntityJournal, cand.Name, nil), nil
		}
		return successResult(fmt.Sprintf("Deleted journal entry %q.", cand.Name), nil), nil

	case IntentView:
		var entry *store.JournalEntry
		err := e.call(ctx, func(ctx context.Context) error {
			var err error
			entry, err = e.svc.Journal.GetJournalEntry(ctx, op.UserID, cand.ID)
			return err
		})
		if err != nil {
			return nil, err
		}
		return successResult(entry.Content, journalData(entry)), nil
	}

	return unsupported(EntityJournal, op.Intent), nil
}

func (e *Engine) listJournalEntries(ctx context.Context, op ParsedEntityOperation) (*OperationResult, error) {
	var entries []*store.JournalEntry
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		entries, err = e.svc.Journal.ListJournalEntries(ctx, op.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return successResult("Your journal is empty. Tell me about your day to start one.", nil), nil
	}

	items := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		items = append(items, journalData(entry))
	}
	return successResult(fmt.Sprintf("You have %d journal entries.", len(entries)),
		map[string]any{"entries": items}), nil
}

func (e *Engine) journalCandidates(ctx context.Context, userID string) ([]resolve.Candidate, error) {
	var entries []*store.JournalEntry
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		entries, err = e.svc.Journal.ListJournalEntries(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	cands := make([]resolve.Candidate, 0, len(entries))
	for _, entry := range entries {
		cands = append(cands, resolve.Candidate{ID: entry.ID, Name: entry.Title.String})
	}
	return cands, nil
}

func journalData(entry *store.JournalEntry) map[string]any {
	return map[string]any{
		"id":         entry.ID,
		"title":      entry.Title.String,
		"content":    entry.Content,
		"mood":       entry.Mood.String,
		"tags":       entry.Tags,
		"created_at": entry.CreatedAt,
	}
}
