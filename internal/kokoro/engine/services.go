package engine

import (
	"context"
	"time"

	"github.com/kokoro-app/kokoro/internal/kokoro/store"
)

// The engine talks to storage through per-entity service interfaces so
// tests can substitute fakes. *store.Store satisfies all of them.

// HabitService manages habits and their completion history.
type HabitService interface {
	CreateHabit(ctx context.Context, userID string, h store.NewHabit) (*store.Habit, error)
	GetHabit(ctx context.Context, userID, id string) (*store.Habit, error)
	ListHabits(ctx context.Context, userID string) ([]*store.Habit, error)
	UpdateHabit(ctx context.Context, userID, id string, patch store.HabitPatch) (*store.Habit, error)
	DeleteHabit(ctx context.Context, userID, id string) (bool, error)
	CompleteHabit(ctx context.Context, userID, id string, day time.Time) (*store.Habit, error)
	HabitStats(ctx context.Context, userID, id string) (*store.HabitStats, error)
}

// GoalService manages goals and their progress.
type GoalService interface {
	CreateGoal(ctx context.Context, userID string, g store.NewGoal) (*store.Goal, error)
	GetGoal(ctx context.Context, userID, id string) (*store.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]*store.Goal, error)
	UpdateGoal(ctx context.Context, userID, id string, patch store.GoalPatch) (*store.Goal, error)
	DeleteGoal(ctx context.Context, userID, id string) (bool, error)
	CompleteGoal(ctx context.Context, userID, id string) (*store.Goal, error)
}

// JournalService manages journal entries.
type JournalService interface {
	CreateJournalEntry(ctx context.Context, userID string, e store.NewJournalEntry) (*store.JournalEntry, error)
	GetJournalEntry(ctx context.Context, userID, id string) (*store.JournalEntry, error)
	ListJournalEntries(ctx context.Context, userID string) ([]*store.JournalEntry, error)
	UpdateJournalEntry(ctx context.Context, userID, id string, patch store.JournalPatch) (*store.JournalEntry, error)
	DeleteJournalEntry(ctx context.Context, userID, id string) (bool, error)
}

// MoodService records mood check-ins.
type MoodService interface {
	CreateMoodEntry(ctx context.Context, userID string, m store.NewMoodEntry) (*store.MoodEntry, error)
	ListMoodEntries(ctx context.Context, userID string, limit int) ([]*store.MoodEntry, error)
	DeleteMoodEntry(ctx context.Context, userID, id string) (bool, error)
	MoodStats(ctx context.Context, userID string, window int) (*store.MoodStats, error)
}

// RoutineService manages routines and their runs.
type RoutineService interface {
	CreateRoutine(ctx context.Context, userID string, r store.NewRoutine) (*store.Routine, error)
	GetRoutine(ctx context.Context, userID, id string) (*store.Routine, error)
	ListRoutines(ctx context.Context, userID string) ([]*store.Routine, error)
	UpdateRoutine(ctx context.Context, userID, id string, patch store.RoutinePatch) (*store.Routine, error)
	DeleteRoutine(ctx context.Context, userID, id string) (bool, error)
	CompleteRoutine(ctx context.Context, userID, id string, day time.Time) (*store.Routine, error)
}

// BeliefService manages belief cycles.
type BeliefService interface {
	CreateBeliefCycle(ctx context.Context, userID string, b store.NewBeliefCycle) (*store.BeliefCycle, error)
	GetBeliefCycle(ctx context.Context, userID, id string) (*store.BeliefCycle, error)
	ListBeliefCycles(ctx context.Context, userID string) ([]*store.BeliefCycle, error)
	UpdateBeliefCycle(ctx context.Context, userID, id string, patch store.BeliefPatch) (*store.BeliefCycle, error)
	DeleteBeliefCycle(ctx context.Context, userID, id string) (bool, error)
}

// SynchronicityService logs synchronicities.
type SynchronicityService interface {
	CreateSynchronicity(ctx context.Context, userID string, n store.NewSynchronicity) (*store.Synchronicity, error)
	ListSynchronicities(ctx context.Context, userID string) ([]*store.Synchronicity, error)
	DeleteSynchronicity(ctx context.Context, userID, id string) (bool, error)
}

// AuditService records the audit trail.
type AuditService interface {
	WriteAudit(ctx context.Context, traceID, userID, action, target, result string, payload store.AuditPayload, errorMsg string) error
}

// Services bundles the domain services the engine routes to.
type Services struct {
	Habits   HabitService
	Goals    GoalService
	Journal  JournalService
	Moods    MoodService
	Routines RoutineService
	Beliefs  BeliefService
	Syncs    SynchronicityService
	Audit    AuditService
}
