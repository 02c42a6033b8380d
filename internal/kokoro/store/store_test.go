package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHabitLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	h, err := s.CreateHabit(ctx, "u1", NewHabit{Name: "Exercise", Category: "health"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if h.Frequency != "daily" {
		t.Errorf("default frequency: got %q, want daily", h.Frequency)
	}
	if !h.Active {
		t.Error("new habits must start active")
	}

	got, err := s.GetHabit(ctx, "u1", h.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Exercise" || got.Category.String != "health" {
		t.Errorf("get: got %+v", got)
	}

	newName := "Morning exercise"
	updated, err := s.UpdateHabit(ctx, "u1", h.ID, HabitPatch{Name: &newName})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != newName {
		t.Errorf("update name: got %q", updated.Name)
	}
	if updated.Category.String != "health" {
		t.Error("update must not clear unpatched fields")
	}

	deleted, err := s.DeleteHabit(ctx, "u1", h.ID)
	if err != nil || !deleted {
		t.Fatalf("delete: %v deleted=%v", err, deleted)
	}
	if _, err := s.GetHabit(ctx, "u1", h.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: got %v, want ErrNotFound", err)
	}

	deleted, err = s.DeleteHabit(ctx, "u1", h.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if deleted {
		t.Error("deleting a missing habit must report false")
	}
}

func TestHabitUserIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	h, err := s.CreateHabit(ctx, "u1", NewHabit{Name: "Reading"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.GetHabit(ctx, "u2", h.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-user get: got %v, want ErrNotFound", err)
	}
	if deleted, _ := s.DeleteHabit(ctx, "u2", h.ID); deleted {
		t.Error("cross-user delete must not remove the habit")
	}
}

func TestCompleteHabit_SameDayIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	h, err := s.CreateHabit(ctx, "u1", NewHabit{Name: "Meditate"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	today := time.Now()
	if _, err := s.CompleteHabit(ctx, "u1", h.ID, today); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	if _, err := s.CompleteHabit(ctx, "u1", h.ID, today); err != nil {
		t.Fatalf("repeat completion: %v", err)
	}

	stats, err := s.HabitStats(ctx, "u1", h.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalCompletions != 1 {
		t.Errorf("total completions: got %d, want 1", stats.TotalCompletions)
	}
	if stats.Streak != 1 {
		t.Errorf("streak: got %d, want 1", stats.Streak)
	}
}

func TestComputeHabitStats(t *testing.T) {
	now, _ := time.Parse("2006-01-02", "2026-08-25")

	tests := []struct {
		name       string
		days       []string // newest first
		streak     int
		bestStreak int
	}{
		{"empty", nil, 0, 0},
		{"today only", []string{"2026-08-25"}, 1, 1},
		{"ends yesterday", []string{"2026-08-24", "2026-08-23"}, 2, 2},
		{"broken run", []string{"2026-08-25", "2026-08-23", "2026-08-22", "2026-08-21"}, 1, 3},
		{"stale", []string{"2026-08-10", "2026-08-09"}, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := computeHabitStats(tt.days, now)
			if stats.Streak != tt.streak {
				t.Errorf("streak: got %d, want %d", stats.Streak, tt.streak)
			}
			if stats.BestStreak != tt.bestStreak {
				t.Errorf("best streak: got %d, want %d", stats.BestStreak, tt.bestStreak)
			}
		})
	}
}

func TestGoalProgressAndCompletion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g, err := s.CreateGoal(ctx, "u1", NewGoal{Title: "Run a marathon", Category: "fitness"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Progress != 0 || g.Completed {
		t.Errorf("new goal: got progress=%d completed=%v", g.Progress, g.Completed)
	}

	p := 150
	g, err = s.UpdateGoal(ctx, "u1", g.ID, GoalPatch{Progress: &p})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if g.Progress != 100 || !g.Completed {
		t.Errorf("clamped progress: got progress=%d completed=%v", g.Progress, g.Completed)
	}

	p = 40
	g, err = s.UpdateGoal(ctx, "u1", g.ID, GoalPatch{Progress: &p})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if g.Progress != 40 || g.Completed {
		t.Errorf("reopened goal: got progress=%d completed=%v", g.Progress, g.Completed)
	}

	g, err = s.CompleteGoal(ctx, "u1", g.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if g.Progress != 100 || !g.Completed {
		t.Errorf("completed goal: got progress=%d completed=%v", g.Progress, g.Completed)
	}
}

func TestJournalTagsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e, err := s.CreateJournalEntry(ctx, "u1", NewJournalEntry{
		Content: "Grateful for the rain today.",
		Mood:    "grateful",
		Tags:    []string{"gratitude", "weather"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetJournalEntry(ctx, "u1", e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "gratitude" {
		t.Errorf("tags: got %v", got.Tags)
	}
	if got.Title.Valid {
		t.Error("entry without a title must keep it null")
	}

	title := "Rainy day"
	got, err = s.UpdateJournalEntry(ctx, "u1", e.ID, JournalPatch{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title.String != title {
		t.Errorf("title: got %q", got.Title.String)
	}
	if len(got.Tags) != 2 {
		t.Error("update must not drop tags")
	}
}

func TestMoodStatsTrend(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int // newest first
		trend   string
		average float64
	}{
		{"empty", nil, "stable", 0},
		{"too few", []int{8, 2}, "stable", 5},
		{"improving", []int{8, 8, 4, 4}, "improving", 6},
		{"declining", []int{3, 3, 7, 7}, "declining", 5},
		{"flat", []int{5, 5, 5, 5}, "stable", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entries []*MoodEntry
			for _, r := range tt.ratings {
				entries = append(entries, &MoodEntry{Rating: r})
			}
			stats := computeMoodStats(entries)
			if stats.Trend != tt.trend {
				t.Errorf("trend: got %q, want %q", stats.Trend, tt.trend)
			}
			if stats.Average != tt.average {
				t.Errorf("average: got %v, want %v", stats.Average, tt.average)
			}
		})
	}
}

func TestMoodEntriesPersist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateMoodEntry(ctx, "u1", NewMoodEntry{Rating: 7, Energy: 6, Emotions: []string{"calm"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = s.CreateMoodEntry(ctx, "u1", NewMoodEntry{Rating: 4, Note: "rough morning"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	entries, err := s.ListMoodEntries(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(entries))
	}

	stats, err := s.MoodStats(ctx, "u1", 30)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Count != 2 || stats.Average != 5.5 {
		t.Errorf("stats: got %+v", stats)
	}
}

func TestRoutineStepsAndRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r, err := s.CreateRoutine(ctx, "u1", NewRoutine{
		Name:  "Morning routine",
		Steps: []string{"stretch", "journal", "coffee"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.TimeOfDay != "morning" {
		t.Errorf("default time of day: got %q", r.TimeOfDay)
	}

	got, err := s.GetRoutine(ctx, "u1", r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Steps) != 3 || got.Steps[1] != "journal" {
		t.Errorf("steps: got %v", got.Steps)
	}

	if _, err := s.CompleteRoutine(ctx, "u1", r.ID, time.Now()); err != nil {
		t.Fatalf("complete: %v", err)
	}

	active := false
	got, err = s.UpdateRoutine(ctx, "u1", r.ID, RoutinePatch{Active: &active})
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if got.Active {
		t.Error("routine must be inactive after toggle")
	}
}

func TestBeliefReframeTransitions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b, err := s.CreateBeliefCycle(ctx, "u1", NewBeliefCycle{
		Belief:    "I am not good enough",
		Intensity: 8,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Status != BeliefActive {
		t.Errorf("new belief status: got %q, want active", b.Status)
	}

	working := BeliefWorking
	b, err = s.UpdateBeliefCycle(ctx, "u1", b.ID, BeliefPatch{Status: &working})
	if err != nil {
		t.Fatalf("status update: %v", err)
	}
	if b.Status != BeliefWorking {
		t.Errorf("status: got %q", b.Status)
	}

	reframe := "I am learning and improving every day"
	b, err = s.UpdateBeliefCycle(ctx, "u1", b.ID, BeliefPatch{Reframe: &reframe})
	if err != nil {
		t.Fatalf("reframe: %v", err)
	}
	if b.Status != BeliefReframed {
		t.Errorf("status after reframe: got %q, want reframed", b.Status)
	}
	if b.Reframe.String != reframe {
		t.Errorf("reframe text: got %q", b.Reframe.String)
	}
}

func TestSynchronicityDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	sync, err := s.CreateSynchronicity(ctx, "u1", NewSynchronicity{
		Description:  "Saw 11:11 twice today",
		Significance: 7,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sync.OccurredAt.Before(before) {
		t.Error("zero occurred_at must default to now")
	}

	syncs, err := s.ListSynchronicities(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(syncs) != 1 || syncs[0].Significance.Int64 != 7 {
		t.Errorf("list: got %+v", syncs)
	}
}

func TestAuditTrail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WriteAudit(ctx, "t_abc", "u1", "habit.create", "Exercise", "success",
		AuditPayload{"name": "Exercise"}, "")
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	err = s.WriteAudit(ctx, "t_abc", "u1", "habit.delete", "Exercise", "error",
		nil, "database is locked")
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	recent, err := s.RecentAudit(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent: got %d entries, want 2", len(recent))
	}
	if recent[0].Action != "habit.delete" {
		t.Errorf("ordering: got %q first, want habit.delete", recent[0].Action)
	}

	byTrace, err := s.AuditByTrace(ctx, "t_abc")
	if err != nil {
		t.Fatalf("by trace: %v", err)
	}
	if len(byTrace) != 2 || byTrace[0].Action != "habit.create" {
		t.Errorf("by trace: got %+v", byTrace)
	}
}
