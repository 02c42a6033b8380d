package resolve_test

import (
	"math"
	"testing"

	"github.com/kokoro-app/kokoro/internal/kokoro/resolve"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"habit", "", 5},
		{"", "goal", 4},
		{"habit", "habit", 0},
		{"habbit", "habit", 1},
		{"kitten", "sitting", 3},
		{"mood", "good", 1},
	}
	for _, tt := range tests {
		if got := resolve.Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%q, %q): got %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"exercise", "", 0},
		{"", "exercise", 0},
		{"exercise", "exercise", 1},
		{"habbit", "habit", 1 - 1.0/6.0},
	}
	for _, tt := range tests {
		if got := resolve.Similarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Similarity(%q, %q): got %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func candidates(names ...string) []resolve.Candidate {
	out := make([]resolve.Candidate, 0, len(names))
	for i, n := range names {
		out = append(out, resolve.Candidate{ID: string(rune('a' + i)), Name: n})
	}
	return out
}

func TestResolve_ExactMatchIsAuthoritative(t *testing.T) {
	// "Read" also substring-matches "Reading list", but an exact match wins
	// regardless of other partial matches.
	res := resolve.Resolve("read", candidates("Read", "Reading list", "Meditation"))
	if !res.Found() {
		t.Fatal("expected a match")
	}
	if res.Match.Name != "Read" {
		t.Errorf("match: got %q, want %q", res.Match.Name, "Read")
	}
	if len(res.Alternatives) != 0 {
		t.Errorf("alternatives: got %d, want 0", len(res.Alternatives))
	}
}

func TestResolve_ExactMatchCaseInsensitive(t *testing.T) {
	res := resolve.Resolve("EXERCISE", candidates("Exercise", "Journaling"))
	if !res.Found() || res.Match.Name != "Exercise" {
		t.Fatalf("expected exact match on Exercise, got %+v", res)
	}
}

func TestResolve_UniqueSubstringMatch(t *testing.T) {
	res := resolve.Resolve("reading", candidates("Reading", "Meditation"))
	if !res.Found() || res.Match.Name != "Reading" {
		t.Fatalf("expected substring match on Reading, got %+v", res)
	}
}

func TestResolve_MultipleSubstringMatchesAreAmbiguous(t *testing.T) {
	res := resolve.Resolve("med", candidates("Morning meditation", "Evening meditation", "Running"))
	if res.Found() {
		t.Fatalf("ambiguous query must not auto-select, got match %q", res.Match.Name)
	}
	if !res.Ambiguous {
		t.Error("expected Ambiguous=true")
	}
	if len(res.Alternatives) != 2 {
		t.Fatalf("alternatives: got %d, want 2", len(res.Alternatives))
	}
	for _, alt := range res.Alternatives {
		if alt.Name != "Morning meditation" && alt.Name != "Evening meditation" {
			t.Errorf("unexpected alternative %q", alt.Name)
		}
	}
}

func TestResolve_TokenOverlap(t *testing.T) {
	res := resolve.Resolve("drink glass water", candidates("Water intake", "Stretching"))
	if !res.Found() || res.Match.Name != "Water intake" {
		t.Fatalf("expected token-overlap match on Water intake, got %+v", res)
	}
}

func TestResolve_EditDistanceSuggestions(t *testing.T) {
	res := resolve.Resolve("exercize", candidates("Exercise", "Meditation"))
	if res.Found() {
		t.Fatalf("typo query should not be authoritative, got %q", res.Match.Name)
	}
	if res.Ambiguous {
		t.Error("fuzzy suggestions must not be flagged ambiguous")
	}
	if len(res.Alternatives) == 0 || res.Alternatives[0].Name != "Exercise" {
		t.Fatalf("expected Exercise as top suggestion, got %+v", res.Alternatives)
	}
}

func TestResolve_SuggestionsRankedAndCapped(t *testing.T) {
	res := resolve.Resolve("run", candidates("Runs", "Rune study", "Running club", "Ruining", "Meditation"))
	if len(res.Alternatives) > resolve.MaxAlternatives {
		t.Errorf("alternatives: got %d, want at most %d", len(res.Alternatives), resolve.MaxAlternatives)
	}
}

func TestResolve_NothingAboveFloor(t *testing.T) {
	res := resolve.Resolve("zzzzzzzzzzzzzzzz", candidates("Exercise", "Meditation"))
	if res.Found() {
		t.Fatalf("expected no match, got %q", res.Match.Name)
	}
	if len(res.Alternatives) != 0 {
		t.Fatalf("expected no alternatives, got %+v", res.Alternatives)
	}
}

func TestResolve_EmptyInputs(t *testing.T) {
	if res := resolve.Resolve("", candidates("Exercise")); res.Found() || len(res.Alternatives) != 0 {
		t.Errorf("empty query: got %+v, want empty resolution", res)
	}
	if res := resolve.Resolve("exercise", nil); res.Found() || len(res.Alternatives) != 0 {
		t.Errorf("no candidates: got %+v, want empty resolution", res)
	}
}
