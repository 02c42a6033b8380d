// Package server exposes the conversation layer over HTTP: a single chat
// endpoint plus a health check.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/kokoro-app/kokoro/common/trace"
	"github.com/kokoro-app/kokoro/common/version"
	"github.com/kokoro-app/kokoro/internal/kokoro/confirm"
	"github.com/kokoro-app/kokoro/internal/kokoro/engine"
)

// MessageHandler processes one chat message; *chat.Conversation satisfies it.
type MessageHandler interface {
	HandleMessage(ctx context.Context, userID, message string) *engine.OperationResult
}

// Server is the HTTP front end.
type Server struct {
	conv MessageHandler
	mux  *http.ServeMux
}

// New creates the server and registers its routes.
func New(conv MessageHandler) *Server {
	s := &Server{conv: conv, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /v1/chat", s.handleChat)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// chatRequest is the POST /v1/chat body.
type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// chatResponse is the POST /v1/chat reply.
type chatResponse struct {
	Success            bool             `json:"success"`
	Message            string           `json:"message"`
	Data               map[string]any   `json:"data,omitempty"`
	NeedsConfirmation  bool             `json:"needs_confirmation,omitempty"`
	ConfirmationPrompt string           `json:"confirmation_prompt,omitempty"`
	Alternatives       []confirm.Option `json:"alternatives,omitempty"`
	SuggestedActions   []string         `json:"suggested_actions,omitempty"`
	TraceID            string           `json:"trace_id"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "user_id and message are required")
		return
	}

	ctx, traceID := trace.Ensure(r.Context())
	res := s.conv.HandleMessage(ctx, req.UserID, req.Message)

	slog.Info("chat message handled",
		"trace_id", traceID,
		"user_id", req.UserID,
		"success", res.Success,
		"duration", time.Since(start))

	writeJSON(w, http.StatusOK, chatResponse{
		Success:            res.Success,
		Message:            res.Message,
		Data:               res.Data,
		NeedsConfirmation:  res.NeedsConfirmation,
		ConfirmationPrompt: res.ConfirmationPrompt,
		Alternatives:       res.Alternatives,
		SuggestedActions:   res.SuggestedActions(),
		TraceID:            traceID,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
