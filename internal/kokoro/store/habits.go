package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Habit represents a tracked habit.
type Habit struct {
	ID          string
	UserID      string
	Name        string
	Description sql.NullString
	Frequency   string // "daily" or "weekly"
	Category    sql.NullString
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewHabit holds the fields for creating a habit.
type NewHabit struct {
	Name        string
	Description string
	Frequency   string
	Category    string
}

// HabitPatch holds optional updates; nil fields are left unchanged.
type HabitPatch struct {
	Name        *string
	Description *string
	Frequency   *string
	Category    *string
	Active      *bool
}

// HabitStats summarizes a habit's completion history.
type HabitStats struct {
	// Streak is the current run of consecutive completed days ending today
	// or yesterday.
	Streak int
	// BestStreak is the longest run ever recorded.
	BestStreak int
	// CompletionRate30d is the share of the last 30 days with a completion.
	CompletionRate30d float64
	// TotalCompletions is the all-time completion count.
	TotalCompletions int
}

const habitColumns = `id, user_id, name, description, frequency, category, active, created_at, updated_at`

// CreateHabit inserts a new habit for the user.
func (s *Store) CreateHabit(ctx context.Context, userID string, h NewHabit) (*Habit, error) {
	if h.Frequency == "" {
		h.Frequency = "daily"
	}
	now := time.Now()
	habit := &Habit{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        h.Name,
		Description: nullString(h.Description),
		Frequency:   h.Frequency,
		Category:    nullString(h.Category),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (id, user_id, name, description, frequency, category, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)
	`, habit.ID, habit.UserID, habit.Name, habit.Description, habit.Frequency, habit.Category, habit.CreatedAt, habit.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	return habit, nil
}

// GetHabit retrieves a habit owned by the user.
func (s *Store) GetHabit(ctx context.Context, userID, id string) (*Habit, error) {
	h := &Habit{}
	err := s.db.QueryRowContext(ctx, `
		SELECT `+habitColumns+` FROM habits WHERE id = ? AND user_id = ?
	`, id, userID).Scan(
		&h.ID, &h.UserID, &h.Name, &h.Description, &h.Frequency, &h.Category,
		&h.Active, &h.CreatedAt, &h.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("habit %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	return h, nil
}

// ListHabits returns the user's habits, newest first.
func (s *Store) ListHabits(ctx context.Context, userID string) ([]*Habit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+habitColumns+` FROM habits WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	var habits []*Habit
	for rows.Next() {
		h := &Habit{}
		if err := rows.Scan(
			&h.ID, &h.UserID, &h.Name, &h.Description, &h.Frequency, &h.Category,
			&h.Active, &h.CreatedAt, &h.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating habits: %w", err)
	}
	return habits, nil
}

// UpdateHabit applies the patch and returns the updated habit.
func (s *Store) UpdateHabit(ctx context.Context, userID, id string, patch HabitPatch) (*Habit, error) {
	h, err := s.GetHabit(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		h.Name = *patch.Name
	}
	if patch.Description != nil {
		h.Description = nullString(*patch.Description)
	}
	if patch.Frequency != nil {
		h.Frequency = *patch.Frequency
	}
	if patch.Category != nil {
		h.Category = nullString(*patch.Category)
	}
	if patch.Active != nil {
		h.Active = *patch.Active
	}
	h.UpdatedAt = time.Now()

	_, err = s.db.ExecContext(ctx, `
		UPDATE habits SET name = ?, description = ?, frequency = ?, category = ?, active = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, h.Name, h.Description, h.Frequency, h.Category, h.Active, h.UpdatedAt, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}

	return h, nil
}

// DeleteHabit removes a habit and its completion history. Returns false
// when the habit did not exist.
func (s *Store) DeleteHabit(ctx context.Context, userID, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM habits WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete habit: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return n > 0, nil
}

// CompleteHabit records a completion for the given day. Completing the same
// day twice is a no-op.
func (s *Store) CompleteHabit(ctx context.Context, userID, id string, day time.Time) (*Habit, error) {
	h, err := s.GetHabit(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO habit_completions (habit_id, day, completed_at)
		VALUES (?, ?, ?)
	`, id, dayKey(day), time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to record habit completion: %w", err)
	}

	return h, nil
}

// HabitStats computes the streak and completion-rate summary for one habit.
// Read-only.
func (s *Store) HabitStats(ctx context.Context, userID, id string) (*HabitStats, error) {
	if _, err := s.GetHabit(ctx, userID, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT day FROM habit_completions WHERE habit_id = ? ORDER BY day DESC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query habit completions: %w", err)
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completions: %w", err)
	}

	return computeHabitStats(days, time.Now()), nil
}

// computeHabitStats derives streaks and rates from completion day keys
// sorted newest first.
func computeHabitStats(days []string, now time.Time) *HabitStats {
	stats := &HabitStats{TotalCompletions: len(days)}
	if len(days) == 0 {
		return stats
	}

	completed := make(map[string]bool, len(days))
	for _, d := range days {
		completed[d] = true
	}

	// Current streak: walk backwards from today; a streak still counts when
	// today is not yet completed but yesterday was.
	cursor := now
	if !completed[dayKey(cursor)] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	for completed[dayKey(cursor)] {
		stats.Streak++
		cursor = cursor.AddDate(0, 0, -1)
	}

	// Best streak: scan runs over the sorted unique days.
	best, run := 0, 0
	var prev time.Time
	for i := len(days) - 1; i >= 0; i-- { // oldest first
		d, err := time.Parse("2006-01-02", days[i])
		if err != nil {
			continue
		}
		if run > 0 && d.Sub(prev) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = d
	}
	stats.BestStreak = best

	// Completion rate over the last 30 days.
	n := 0
	for i := 0; i < 30; i++ {
		if completed[dayKey(now.AddDate(0, 0, -i))] {
			n++
		}
	}
	stats.CompletionRate30d = float64(n) / 30

	return stats
}
