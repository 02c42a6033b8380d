package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Goal represents a long-term goal with manual progress tracking.
type Goal struct {
	ID          string
	UserID      string
	Title       string
	Description sql.NullString
	Category    sql.NullString
	TargetDate  sql.NullString // YYYY-MM-DD
	Progress    int            // 0..100
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewGoal holds the fields for creating a goal.
type NewGoal struct {
	Title       string
	Description string
	Category    string
	TargetDate  string
}

// GoalPatch holds optional updates; nil fields are left unchanged.
type GoalPatch struct {
	Title       *string
	Description *string
	Category    *string
	TargetDate  *string
	Progress    *int
}

const goalColumns = `id, user_id, title, description, category, target_date, progress, completed, created_at, updated_at`

// CreateGoal inserts a new goal for the user.
func (s *Store) CreateGoal(ctx context.Context, userID string, g NewGoal) (*Goal, error) {
	now := time.Now()
	goal := &Goal{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       g.Title,
		Description: nullString(g.Description),
		Category:    nullString(g.Category),
		TargetDate:  nullString(g.TargetDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (id, user_id, title, description, category, target_date, progress, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, ?)
	`, goal.ID, goal.UserID, goal.Title, goal.Description, goal.Category, goal.TargetDate, goal.CreatedAt, goal.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return goal, nil
}

// GetGoal retrieves a goal owned by the user.
func (s *Store) GetGoal(ctx context.Context, userID, id string) (*Goal, error) {
	g := &Goal{}
	err := s.db.QueryRowContext(ctx, `
		SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?
	`, id, userID).Scan(
		&g.ID, &g.UserID, &g.Title, &g.Description, &g.Category, &g.TargetDate,
		&g.Progress, &g.Completed, &g.CreatedAt, &g.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return g, nil
}

// ListGoals returns the user's goals, newest first.
func (s *Store) ListGoals(ctx context.Context, userID string) ([]*Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []*Goal
	for rows.Next() {
		g := &Goal{}
		if err := rows.Scan(
			&g.ID, &g.UserID, &g.Title, &g.Description, &g.Category, &g.TargetDate,
			&g.Progress, &g.Completed, &g.CreatedAt, &g.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}
	return goals, nil
}

// UpdateGoal applies the patch and returns the updated goal. Setting
// progress to 100 marks the goal completed; lowering it reopens the goal.
func (s *Store) UpdateGoal(ctx context.Context, userID, id string, patch GoalPatch) (*Goal, error) {
	g, err := s.GetGoal(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		g.Title = *patch.Title
	}
	if patch.Description != nil {
		g.Description = nullString(*patch.Description)
	}
	if patch.Category != nil {
		g.Category = nullString(*patch.Category)
	}
	if patch.TargetDate != nil {
		g.TargetDate = nullString(*patch.TargetDate)
	}
	if patch.Progress != nil {
		p := *patch.Progress
		if p < 0 {
			p = 0
		}
		if p > 100 {
			p = 100
		}
		g.Progress = p
		g.Completed = p == 100
	}
	g.UpdatedAt = time.Now()

	_, err = s.db.ExecContext(ctx, `
		UPDATE goals SET title = ?, description = ?, category = ?, target_date = ?, progress = ?, completed = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, g.Title, g.Description, g.Category, g.TargetDate, g.Progress, g.Completed, g.UpdatedAt, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	return g, nil
}

// DeleteGoal removes a goal. Returns false when the goal did not exist.
func (s *Store) DeleteGoal(ctx context.Context, userID, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM goals WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete goal: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return n > 0, nil
}

// CompleteGoal marks the goal done and snaps progress to 100.
func (s *Store) CompleteGoal(ctx context.Context, userID, id string) (*Goal, error) {
	full := 100
	return s.UpdateGoal(ctx, userID, id, GoalPatch{Progress: &full})
}
