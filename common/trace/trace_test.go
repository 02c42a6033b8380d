package trace_test

import (
	"context"
	"strings"
	"testing"

	"github.com/kokoro-app/kokoro/common/trace"
)

func TestNewID_Format(t *testing.T) {
	id := trace.NewID()
	if !strings.HasPrefix(id, "t_") {
		t.Errorf("trace ID %q missing t_ prefix", id)
	}
	if len(id) != 2+32 {
		t.Errorf("trace ID %q has length %d, want 34", id, len(id))
	}
	if id == trace.NewID() {
		t.Error("two generated trace IDs collided")
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := trace.FromContext(ctx); got != "" {
		t.Errorf("FromContext on empty context: got %q, want empty", got)
	}

	ctx = trace.WithTraceID(ctx, "t_abc")
	if got := trace.FromContext(ctx); got != "t_abc" {
		t.Errorf("FromContext: got %q, want %q", got, "t_abc")
	}
}

func TestEnsure(t *testing.T) {
	ctx := trace.WithTraceID(context.Background(), "t_existing")
	_, id := trace.Ensure(ctx)
	if id != "t_existing" {
		t.Errorf("Ensure replaced an existing trace ID: got %q", id)
	}

	ctx2, id2 := trace.Ensure(context.Background())
	if id2 == "" {
		t.Fatal("Ensure returned empty trace ID")
	}
	if got := trace.FromContext(ctx2); got != id2 {
		t.Errorf("Ensure context carries %q, want %q", got, id2)
	}
}
