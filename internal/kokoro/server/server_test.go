package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kokoro-app/kokoro/internal/kokoro/engine"
)

type fakeConversation struct {
	lastUserID  string
	lastMessage string
	result      *engine.OperationResult
}

func (f *fakeConversation) HandleMessage(_ context.Context, userID, message string) *engine.OperationResult {
	f.lastUserID = userID
	f.lastMessage = message
	if f.result != nil {
		return f.result
	}
	return &engine.OperationResult{Success: true, Message: "done"}
}

func TestChatEndpoint(t *testing.T) {
	conv := &fakeConversation{}
	srv := httptest.NewServer(New(conv).Handler())
	defer srv.Close()

	body := `{"user_id":"u1","message":"add a habit called Reading"}`
	resp, err := http.Post(srv.URL+"/v1/chat", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		TraceID string `json:"trace_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Success || out.Message != "done" {
		t.Errorf("response: got %+v", out)
	}
	if out.TraceID == "" {
		t.Error("every reply must carry a trace ID")
	}
	if conv.lastUserID != "u1" || conv.lastMessage != "add a habit called Reading" {
		t.Errorf("conversation got %q / %q", conv.lastUserID, conv.lastMessage)
	}
}

func TestChatEndpoint_BadRequests(t *testing.T) {
	srv := httptest.NewServer(New(&fakeConversation{}).Handler())
	defer srv.Close()

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{{{"},
		{"missing user", `{"message":"hi"}`},
		{"missing message", `{"user_id":"u1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v1/chat", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := httptest.NewServer(New(&fakeConversation{}).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d", resp.StatusCode)
	}
}
