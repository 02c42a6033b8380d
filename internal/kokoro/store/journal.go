package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JournalEntry represents one journal entry.
type JournalEntry struct {
	ID        string
	UserID    string
	Title     sql.NullString
	Content   string
	Mood      sql.NullString
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewJournalEntry holds the fields for creating a journal entry.
type NewJournalEntry struct {
	Title   string
	Content string
	Mood    string
	Tags    []string
}

// JournalPatch holds optional updates; nil fields are left unchanged.
type JournalPatch struct {
	Title   *string
	Content *string
	Mood    *string
	Tags    *[]string
}

const journalColumns = `id, user_id, title, content, mood, tags_json, created_at, updated_at`

// CreateJournalEntry inserts a new journal entry for the user.
func (s *Store) CreateJournalEntry(ctx context.Context, userID string, e NewJournalEntry) (*JournalEntry, error) {
	now := time.Now()
	entry := &JournalEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     nullString(e.Title),
		Content:   e.Content,
		Mood:      nullString(e.Mood),
		Tags:      e.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tagsJSON, err := marshalTags(e.Tags)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO journal_entries (id, user_id, title, content, mood, tags_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.UserID, entry.Title, entry.Content, entry.Mood, tagsJSON, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal entry: %w", err)
	}

	return entry, nil
}

// GetJournalEntry retrieves a journal entry owned by the user.
func (s *Store) GetJournalEntry(ctx context.Context, userID, id string) (*JournalEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+journalColumns+` FROM journal_entries WHERE id = ? AND user_id = ?
	`, id, userID)
	entry, err := scanJournalEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("journal entry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}
	return entry, nil
}

// ListJournalEntries returns the user's journal entries, newest first.
func (s *Store) ListJournalEntries(ctx context.Context, userID string) ([]*JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+journalColumns+` FROM journal_entries WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []*JournalEntry
	for rows.Next() {
		entry, err := scanJournalEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entries: %w", err)
	}
	return entries, nil
}

// UpdateJournalEntry applies the patch and returns the updated entry.
func (s *Store) UpdateJournalEntry(ctx context.Context, userID, id string, patch JournalPatch) (*JournalEntry, error) {
	entry, err := s.GetJournalEntry(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		entry.Title = nullString(*patch.Title)
	}
	if patch.Content != nil {
		entry.Content = *patch.Content
	}
	if patch.Mood != nil {
		entry.Mood = nullString(*patch.Mood)
	}
	if patch.Tags != nil {
		entry.Tags = *patch.Tags
	}
	entry.UpdatedAt = time.Now()

	tagsJSON, err := marshalTags(entry.Tags)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE journal_entries SET title = ?, content = ?, mood = ?, tags_json = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, entry.Title, entry.Content, entry.Mood, tagsJSON, entry.UpdatedAt, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update journal entry: %w", err)
	}

	return entry, nil
}

// DeleteJournalEntry removes an entry. Returns false when it did not exist.
func (s *Store) DeleteJournalEntry(ctx context.Context, userID, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM journal_entries WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete journal entry: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return n > 0, nil
}

func scanJournalEntry(scan func(...any) error) (*JournalEntry, error) {
	entry := &JournalEntry{}
	var tagsJSON sql.NullString
	if err := scan(
		&entry.ID, &entry.UserID, &entry.Title, &entry.Content, &entry.Mood,
		&tagsJSON, &entry.CreatedAt, &entry.UpdatedAt,
	); err != nil {
		return nil, err
	}
	entry.Tags = unmarshalTags(tagsJSON)
	return entry, nil
}

func marshalTags(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	jsonBytes, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal tags: %w", err)
	}
	return sql.NullString{String: string(jsonBytes), Valid: true}, nil
}

func unmarshalTags(tagsJSON sql.NullString) []string {
	if !tagsJSON.Valid {
		return nil
	}
	var tags []string
	// A corrupt tags column should not fail the whole read.
	_ = json.Unmarshal([]byte(tagsJSON.String), &tags)
	return tags
}
