package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Synchronicity represents a meaningful-coincidence log entry.
type Synchronicity struct {
	ID           string
	UserID       string
	Description  string
	Tags         []string
	Significance sql.NullInt64 // 1..10
	OccurredAt   time.Time
	CreatedAt    time.Time
}

// NewSynchronicity holds the fields for logging a synchronicity. A zero
// OccurredAt defaults to the time of logging.
type NewSynchronicity struct {
	Description  string
	Tags         []string
	Significance int // 0 means unset
	OccurredAt   time.Time
}

const syncColumns = `id, user_id, description, tags_json, significance, occurred_at, created_at`

// CreateSynchronicity logs a synchronicity for the user.
func (s *Store) CreateSynchronicity(ctx context.Context, userID string, n NewSynchronicity) (*Synchronicity, error) {
	now := time.Now()
	if n.OccurredAt.IsZero() {
		n.OccurredAt = now
	}
	sync := &Synchronicity{
		ID:           uuid.NewString(),
		UserID:       userID,
		Description:  n.Description,
		Tags:         n.Tags,
		Significance: nullInt(n.Significance),
		OccurredAt:   n.OccurredAt,
		CreatedAt:    now,
	}

	tagsJSON, err := marshalTags(n.Tags)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO synchronicities (id, user_id, description, tags_json, significance, occurred_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sync.ID, sync.UserID, sync.Description, tagsJSON, sync.Significance, sync.OccurredAt, sync.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create synchronicity: %w", err)
	}

	return sync, nil
}

// GetSynchronicity retrieves a synchronicity owned by the user.
func (s *Store) GetSynchronicity(ctx context.Context, userID, id string) (*Synchronicity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+syncColumns+` FROM synchronicities WHERE id = ? AND user_id = ?
	`, id, userID)
	sync, err := scanSynchronicity(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("synchronicity %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get synchronicity: %w", err)
	}
	return sync, nil
}

// ListSynchronicities returns the user's synchronicities, most recent
// occurrence first.
func (s *Store) ListSynchronicities(ctx context.Context, userID string) ([]*Synchronicity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+syncColumns+` FROM synchronicities WHERE user_id = ? ORDER BY occurred_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list synchronicities: %w", err)
	}
	defer rows.Close()

	var syncs []*Synchronicity
	for rows.Next() {
		sync, err := scanSynchronicity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan synchronicity: %w", err)
		}
		syncs = append(syncs, sync)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating synchronicities: %w", err)
	}
	return syncs, nil
}

// DeleteSynchronicity removes a synchronicity. Returns false when it did
// not exist.
func (s *Store) DeleteSynchronicity(ctx context.Context, userID, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM synchronicities WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete synchronicity: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return n > 0, nil
}

func scanSynchronicity(scan func(...any) error) (*Synchronicity, error) {
	sync := &Synchronicity{}
	var tagsJSON sql.NullString
	if err := scan(
		&sync.ID, &sync.UserID, &sync.Description, &tagsJSON,
		&sync.Significance, &sync.OccurredAt, &sync.CreatedAt,
	); err != nil {
		return nil, err
	}
	sync.Tags = unmarshalTags(tagsJSON)
	return sync, nil
}
