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

// MoodEntry represents one mood check-in.
type MoodEntry struct {
	ID        string
	UserID    string
	Rating    int // 1..10
	Energy    sql.NullInt64
	Note      sql.NullString
	Emotions  []string
	CreatedAt time.Time
}

// NewMoodEntry holds the fields for recording a mood.
type NewMoodEntry struct {
	Rating   int
	Energy   int // 0 means unset
	Note     string
	Emotions []string
}

// MoodStats summarizes recent mood entries.
type MoodStats struct {
	Count   int
	Average float64
	// Trend compares the newer half of the window against the older half:
	// "improving", "declining", or "stable".
	Trend string
}

const moodColumns = `id, user_id, rating, energy, note, emotions_json, created_at`

// CreateMoodEntry records a mood check-in for the user.
func (s *Store) CreateMoodEntry(ctx context.Context, userID string, m NewMoodEntry) (*MoodEntry, error) {
	entry := &MoodEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Rating:    m.Rating,
		Energy:    nullInt(m.Energy),
		Note:      nullString(m.Note),
		Emotions:  m.Emotions,
		CreatedAt: time.Now(),
	}

	var emotionsJSON sql.NullString
	if len(m.Emotions) > 0 {
		jsonBytes, err := json.Marshal(m.Emotions)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal emotions: %w", err)
		}
		emotionsJSON = sql.NullString{String: string(jsonBytes), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mood_entries (id, user_id, rating, energy, note, emotions_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.UserID, entry.Rating, entry.Energy, entry.Note, emotionsJSON, entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create mood entry: %w", err)
	}

	return entry, nil
}

// GetMoodEntry retrieves a mood entry owned by the user.
func (s *Store) GetMoodEntry(ctx context.Context, userID, id string) (*MoodEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+moodColumns+` FROM mood_entries WHERE id = ? AND user_id = ?
	`, id, userID)
	entry, err := scanMoodEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mood entry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mood entry: %w", err)
	}
	return entry, nil
}

// ListMoodEntries returns the user's mood entries, newest first, capped at
// limit (0 means a default of 50).
func (s *Store) ListMoodEntries(ctx context.Context, userID string, limit int) ([]*MoodEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+moodColumns+` FROM mood_entries WHERE user_id = ? ORDER BY created_at DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list mood entries: %w", err)
	}
	defer rows.Close()

	var entries []*MoodEntry
	for rows.Next() {
		entry, err := scanMoodEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mood entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mood entries: %w", err)
	}
	return entries, nil
}

// DeleteMoodEntry removes a mood entry. Returns false when it did not exist.
func (s *Store) DeleteMoodEntry(ctx context.Context, userID, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM mood_entries WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete mood entry: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return n > 0, nil
}

// MoodStats summarizes the most recent entries for the user.
func (s *Store) MoodStats(ctx context.Context, userID string, window int) (*MoodStats, error) {
	entries, err := s.ListMoodEntries(ctx, userID, window)
	if err != nil {
		return nil, err
	}
	return computeMoodStats(entries), nil
}

// computeMoodStats averages ratings and derives a trend by comparing the
// newer half of the window against the older half.
func computeMoodStats(entries []*MoodEntry) *MoodStats {
	stats := &MoodStats{Count: len(entries), Trend: "stable"}
	if len(entries) == 0 {
		return stats
	}

	sum := 0
	for _, e := range entries {
		sum += e.Rating
	}
	stats.Average = float64(sum) / float64(len(entries))

	if len(entries) < 4 {
		return stats
	}

	half := len(entries) / 2
	newer, older := 0.0, 0.0
	for i := 0; i < half; i++ {
		newer += float64(entries[i].Rating)
	}
	for i := half; i < len(entries); i++ {
		older += float64(entries[i].Rating)
	}
	newer /= float64(half)
	older /= float64(len(entries) - half)

	switch {
	case newer-older > 0.5:
		stats.Trend = "improving"
	case older-newer > 0.5:
		stats.Trend = "declining"
	}
	return stats
}

func scanMoodEntry(scan func(...any) error) (*MoodEntry, error) {
	entry := &MoodEntry{}
	var emotionsJSON sql.NullString
	if err := scan(
		&entry.ID, &entry.UserID, &entry.Rating, &entry.Energy, &entry.Note,
		&emotionsJSON, &entry.CreatedAt,
	); err != nil {
		return nil, err
	}
	entry.Emotions = unmarshalTags(emotionsJSON)
	return entry, nil
}
