package validate_test

import (
	"testing"

	"github.com/kokoro-app/kokoro/internal/kokoro/validate"
)

func hasFieldError(res validate.Result, field string) bool {
	for _, e := range res.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidate_RequiredFields(t *testing.T) {
	tests := []struct {
		entity    string
		intent    string
		params    map[string]any
		wantField string
	}{
		{"habit", "create", map[string]any{}, "name"},
		{"goal", "create", map[string]any{"description": "x"}, "title"},
		{"journal", "create", map[string]any{"title": "Day one"}, "content"},
		{"mood", "create", map[string]any{"note": "fine"}, "rating"},
		{"routine", "create", map[string]any{}, "name"},
		{"belief", "create", map[string]any{"category": "work"}, "belief"},
		{"synchronicity", "create", map[string]any{}, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.entity, func(t *testing.T) {
			res := validate.Validate(tt.entity, tt.intent, tt.params)
			if res.Valid {
				t.Fatalf("expected invalid result for %s/%s with %v", tt.entity, tt.intent, tt.params)
			}
			if !hasFieldError(res, tt.wantField) {
				t.Errorf("errors %v do not name required field %q", res.Errors, tt.wantField)
			}
		})
	}
}

func TestValidate_ValidCreates(t *testing.T) {
	tests := []struct {
		entity string
		params map[string]any
	}{
		{"habit", map[string]any{"name": "Exercise", "frequency": "daily"}},
		{"goal", map[string]any{"title": "Run a marathon", "progress": 25}},
		{"journal", map[string]any{"content": "Long day, good ending.", "tags": []string{"work"}}},
		{"mood", map[string]any{"rating": 7, "energy": 5}},
		{"routine", map[string]any{"name": "Morning pages", "time_of_day": "morning"}},
		{"belief", map[string]any{"belief": "I am not creative", "intensity": 8}},
		{"synchronicity", map[string]any{"description": "Saw 11:11 twice today"}},
	}

	for _, tt := range tests {
		t.Run(tt.entity, func(t *testing.T) {
			res := validate.Validate(tt.entity, "create", tt.params)
			if !res.Valid {
				t.Errorf("expected valid, got errors %v", res.Errors)
			}
		})
	}
}

func TestValidate_RatingBounds(t *testing.T) {
	for _, rating := range []int{0, 11, -3} {
		res := validate.Validate("mood", "create", map[string]any{"rating": rating})
		if res.Valid {
			t.Errorf("rating %d should be rejected (must be 1-10)", rating)
		}
		if !hasFieldError(res, "rating") {
			t.Errorf("rating %d: errors %v do not name the rating field", rating, res.Errors)
		}
	}

	for _, rating := range []int{1, 5, 10} {
		res := validate.Validate("mood", "create", map[string]any{"rating": rating})
		if !res.Valid {
			t.Errorf("rating %d should be accepted, got errors %v", rating, res.Errors)
		}
	}
}

func TestValidate_ReportsAllViolationsAtOnce(t *testing.T) {
	res := validate.Validate("mood", "create", map[string]any{
		"rating": 42,
		"energy": 0,
	})
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !hasFieldError(res, "rating") || !hasFieldError(res, "energy") {
		t.Errorf("expected both rating and energy violations, got %v", res.Errors)
	}
}

func TestValidate_WrongTypes(t *testing.T) {
	res := validate.Validate("habit", "create", map[string]any{"name": 12})
	if res.Valid {
		t.Fatal("numeric name should be rejected")
	}
	if !hasFieldError(res, "name") {
		t.Errorf("errors %v do not name the name field", res.Errors)
	}
}

func TestValidate_TargetIntentsAreLenient(t *testing.T) {
	for _, intent := range []string{"delete", "complete", "toggle", "view"} {
		res := validate.Validate("habit", intent, map[string]any{"name": "Exercise"})
		if !res.Valid {
			t.Errorf("%s: expected valid, got %v", intent, res.Errors)
		}
		res = validate.Validate("habit", intent, nil)
		if !res.Valid {
			t.Errorf("%s with nil params: expected valid, got %v", intent, res.Errors)
		}
	}
}

func TestValidate_UnknownEntityPassesThrough(t *testing.T) {
	res := validate.Validate("starchart", "create", map[string]any{})
	if !res.Valid {
		t.Errorf("unknown entity must validate true (router rejects it), got %v", res.Errors)
	}
}

func TestValidate_EmptyStringName(t *testing.T) {
	res := validate.Validate("habit", "create", map[string]any{"name": ""})
	if res.Valid {
		t.Fatal("empty habit name should be rejected")
	}
}
