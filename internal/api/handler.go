// Package api provides HTTP handlers for the math practice API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/abhisek/mathdrill/internal/feedback"
	"github.com/abhisek/mathdrill/internal/orchestrator"
	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/store"
)

// Handler serves the problem and submission endpoints.
type Handler struct {
	orch     *orchestrator.Orchestrator
	problems problemgen.Generator
	feedback feedback.Source
	sessions store.SessionRepo
	logger   *slog.Logger
}

// NewHandler creates a Handler. A nil orchestrator gets the default bound.
func NewHandler(orch *orchestrator.Orchestrator, problems problemgen.Generator, fb feedback.Source, sessions store.SessionRepo, logger *slog.Logger) *Handler {
	if orch == nil {
		orch = orchestrator.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		orch:     orch,
		problems: problems,
		feedback: fb,
		sessions: sessions,
		logger:   logger,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// statusFor maps a failed call to an HTTP status.
func statusFor(kind orchestrator.ErrorKind) int {
	switch kind {
	case orchestrator.KindTimeout:
		return http.StatusGatewayTimeout
	case orchestrator.KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// outcomeError writes the response for a failed orchestrated call.
func outcomeError[T any](w http.ResponseWriter, out orchestrator.Outcome[T]) {
	msg := out.Message
	if msg == "" {
		msg = out.Kind.Message()
	}
	Error(w, statusFor(out.Kind), msg)
}
