package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Belief status values.
const (
	BeliefActive   = "active"
	BeliefWorking  = "working"
	BeliefReframed = "reframed"
)

// BeliefCycle represents a limiting belief being worked through.
type BeliefCycle struct {
	ID        string
	UserID    string
	Belief    string
	Category  sql.NullString
	Intensity sql.NullInt64 // 1..10
	Reframe   sql.NullString
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBeliefCycle holds the fields for recording a belief.
type NewBeliefCycle struct {
	Belief    string
	Category  string
	Intensity int // 0 means unset
}

// BeliefPatch holds optional updates; nil fields are left unchanged.
type BeliefPatch struct {
	Belief    *string
	Category  *string
	Intensity *int
	Reframe   *string
	Status    *string
}

const beliefColumns = `id, user_id, belief, category, intensity, reframe, status, created_at, updated_at`

// CreateBeliefCycle records a new belief in the active state.
func (s *Store) CreateBeliefCycle(ctx context.Context, userID string, b NewBeliefCycle) (*BeliefCycle, error) {
	now := time.Now()
	cycle := &BeliefCycle{
		ID:        uuid.NewString(),
		UserID:    userID,
		Belief:    b.Belief,
		Category:  nullString(b.Category),
		Intensity: nullInt(b.Intensity),
		Status:    BeliefActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO belief_cycles (id, user_id, belief, category, intensity, reframe, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, NULL, ?, ?, ?)
	`, cycle.ID, cycle.UserID, cycle.Belief, cycle.Category, cycle.Intensity, cycle.Status, cycle.CreatedAt, cycle.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create belief cycle: %w", err)
	}

	return cycle, nil
}

// GetBeliefCycle retrieves a belief cycle owned by the user.
func (s *Store) GetBeliefCycle(ctx context.Context, userID, id string) (*BeliefCycle, error) {
	b := &BeliefCycle{}
	err := s.db.QueryRowContext(ctx, `
		SELECT `+beliefColumns+` FROM belief_cycles WHERE id = ? AND user_id = ?
	`, id, userID).Scan(
		&b.ID, &b.UserID, &b.Belief, &b.Category, &b.Intensity, &b.Reframe,
		&b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("belief cycle %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get belief cycle: %w", err)
	}
	return b, nil
}

// ListBeliefCycles returns the user's belief cycles, newest first.
func (s *Store) ListBeliefCycles(ctx context.Context, userID string) ([]*BeliefCycle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+beliefColumns+` FROM belief_cycles WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list belief cycles: %w", err)
	}
	defer rows.Close()

	var cycles []*BeliefCycle
	for rows.Next() {
		b := &BeliefCycle{}
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.Belief, &b.Category, &b.Intensity, &b.Reframe,
			&b.Status, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan belief cycle: %w", err)
		}
		cycles = append(cycles, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating belief cycles: %w", err)
	}
	return cycles, nil
}

// UpdateBeliefCycle applies the patch and returns the updated cycle.
// Setting a reframe moves the cycle to the reframed state unless the patch
// also sets an explicit status.
func (s *Store) UpdateBeliefCycle(ctx context.Context, userID, id string, patch BeliefPatch) (*BeliefCycle, error) {
	b, err := s.GetBeliefCycle(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Belief != nil {
		b.Belief = *patch.Belief
	}
	if patch.Category != nil {
		b.Category = nullString(*patch.Category)
	}
	if patch.Intensity != nil {
		b.Intensity = nullInt(*patch.Intensity)
	}
	if patch.Reframe != nil {
		b.Reframe = nullString(*patch.Reframe)
		if *patch.Reframe != "" && patch.Status == nil {
			b.Status = BeliefReframed
		}
	}
	if patch.Status != nil {
		b.Status = *patch.Status
	}
	b.UpdatedAt = time.Now()

	_, err = s.db.ExecContext(ctx, `
		UPDATE belief_cycles SET belief = ?, category = ?, intensity = ?, reframe = ?, status = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, b.Belief, b.Category, b.Intensity, b.Reframe, b.Status, b.UpdatedAt, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update belief cycle: %w", err)
	}

	return b, nil
}

// DeleteBeliefCycle removes a belief cycle. Returns false when it did not
// exist.
func (s *Store) DeleteBeliefCycle(ctx context.Context, userID, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM belief_cycles WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete belief cycle: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return n > 0, nil
}
