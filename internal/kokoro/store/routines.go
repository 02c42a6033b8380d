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

// Routine represents a multi-step routine, e.g. a morning routine.
type Routine struct {
	ID          string
	UserID      string
	Name        string
	Description sql.NullString
	TimeOfDay   string // "morning", "afternoon", "evening"
	Steps       []string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewRoutine holds the fields for creating a routine.
type NewRoutine struct {
	Name        string
	Description string
	TimeOfDay   string
	Steps       []string
}

// RoutinePatch holds optional updates; nil fields are left unchanged.
type RoutinePatch struct {
	Name        *string
	Description *string
	TimeOfDay   *string
	Steps       *[]string
	Active      *bool
}

const routineColumns = `id, user_id, name, description, time_of_day, steps_json, active, created_at, updated_at`

// CreateRoutine inserts a new routine for the user.
func (s *Store) CreateRoutine(ctx context.Context, userID string, r NewRoutine) (*Routine, error) {
	if r.TimeOfDay == "" {
		r.TimeOfDay = "morning"
	}
	now := time.Now()
	routine := &Routine{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        r.Name,
		Description: nullString(r.Description),
		TimeOfDay:   r.TimeOfDay,
		Steps:       r.Steps,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	stepsJSON, err := marshalTags(r.Steps)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO routines (id, user_id, name, description, time_of_day, steps_json, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)
	`, routine.ID, routine.UserID, routine.Name, routine.Description, routine.TimeOfDay, stepsJSON, routine.CreatedAt, routine.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create routine: %w", err)
	}

	return routine, nil
}

// GetRoutine retrieves a routine owned by the user.
func (s *Store) GetRoutine(ctx context.Context, userID, id string) (*Routine, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+routineColumns+` FROM routines WHERE id = ? AND user_id = ?
	`, id, userID)
	routine, err := scanRoutine(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("routine %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get routine: %w", err)
	}
	return routine, nil
}

// ListRoutines returns the user's routines, newest first.
func (s *Store) ListRoutines(ctx context.Context, userID string) ([]*Routine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+routineColumns+` FROM routines WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list routines: %w", err)
	}
	defer rows.Close()

	var routines []*Routine
	for rows.Next() {
		routine, err := scanRoutine(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan routine: %w", err)
		}
		routines = append(routines, routine)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating routines: %w", err)
	}
	return routines, nil
}

// UpdateRoutine applies the patch and returns the updated routine.
func (s *Store) UpdateRoutine(ctx context.Context, userID, id string, patch RoutinePatch) (*Routine, error) {
	routine, err := s.GetRoutine(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		routine.Name = *patch.Name
	}
	if patch.Description != nil {
		routine.Description = nullString(*patch.Description)
	}
	if patch.TimeOfDay != nil {
		routine.TimeOfDay = *patch.TimeOfDay
	}
	if patch.Steps != nil {
		routine.Steps = *patch.Steps
	}
	if patch.Active != nil {
		routine.Active = *patch.Active
	}
	routine.UpdatedAt = time.Now()

	stepsJSON, err := marshalTags(routine.Steps)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE routines SET name = ?, description = ?, time_of_day = ?, steps_json = ?, active = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, routine.Name, routine.Description, routine.TimeOfDay, stepsJSON, routine.Active, routine.UpdatedAt, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update routine: %w", err)
	}

	return routine, nil
}

// DeleteRoutine removes a routine and its run history. Returns false when
// the routine did not exist.
func (s *Store) DeleteRoutine(ctx context.Context, userID, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM routines WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete routine: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return n > 0, nil
}

// CompleteRoutine records a run for the given day. Running the same day
// twice is a no-op.
func (s *Store) CompleteRoutine(ctx context.Context, userID, id string, day time.Time) (*Routine, error) {
	routine, err := s.GetRoutine(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO routine_runs (routine_id, day, completed_at)
		VALUES (?, ?, ?)
	`, id, dayKey(day), time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to record routine run: %w", err)
	}

	return routine, nil
}

func scanRoutine(scan func(...any) error) (*Routine, error) {
	routine := &Routine{}
	var stepsJSON sql.NullString
	if err := scan(
		&routine.ID, &routine.UserID, &routine.Name, &routine.Description,
		&routine.TimeOfDay, &stepsJSON, &routine.Active,
		&routine.CreatedAt, &routine.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if stepsJSON.Valid {
		_ = json.Unmarshal([]byte(stepsJSON.String), &routine.Steps)
	}
	return routine, nil
}
