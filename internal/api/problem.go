package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/mathdrill/internal/feedback"
	"github.com/abhisek/mathdrill/internal/orchestrator"
	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/store"
)

// Operation names for the orchestrator, shared with the TUI where they overlap.
const (
	opGenerateProblem  = "generate-problem"
	opCreateSession    = "create-session"
	opLoadSession      = "load-session"
	opFeedback         = "feedback"
	opRecordSubmission = "record-submission"
)

// RegisterRoutes registers the problem routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/math-problem", func(r chi.Router) {
		r.Post("/", h.GenerateProblem)
		r.Post("/submit", h.SubmitAnswer)
		r.Get("/{id}", h.GetSession)
	})
}

type problemResponse struct {
	ProblemText string  `json:"problem_text"`
	FinalAnswer float64 `json:"final_answer"`
	SessionID   string  `json:"session_id"`
}

// GenerateProblem creates a new problem and stores it as a session.
func (h *Handler) GenerateProblem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	gen := orchestrator.Execute(ctx, h.orch, opGenerateProblem, h.problems.NewProblem)
	if !gen.OK() {
		outcomeError(w, gen)
		return
	}
	p := gen.Value

	created := orchestrator.Execute(ctx, h.orch, opCreateSession, func(ctx context.Context) (string, error) {
		return h.sessions.CreateSession(ctx, p.Text, p.Answer)
	})
	if !created.OK() {
		outcomeError(w, created)
		return
	}

	JSON(w, http.StatusOK, problemResponse{
		ProblemText: p.Text,
		FinalAnswer: p.Answer,
		SessionID:   created.Value,
	})
}

type submitRequest struct {
	SessionID  string          `json:"session_id"`
	UserAnswer json.RawMessage `json:"user_answer"`
}

type submitResponse struct {
	IsCorrect    bool   `json:"is_correct"`
	FeedbackText string `json:"feedback_text"`
	Saved        bool   `json:"saved"`
}

// SubmitAnswer grades an answer against a stored session and returns feedback.
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		Error(w, http.StatusBadRequest, "session_id is required")
		return
	}
	answer, err := parseUserAnswer(req.UserAnswer)
	if err != nil {
		Error(w, http.StatusBadRequest, "user_answer must be a number")
		return
	}

	loaded := orchestrator.Execute(ctx, h.orch, opLoadSession, func(ctx context.Context) (*store.Session, error) {
		return h.sessions.GetSession(ctx, req.SessionID)
	})
	if !loaded.OK() {
		if errors.Is(loaded.Err, store.ErrSessionNotFound) {
			Error(w, http.StatusNotFound, "Session not found")
			return
		}
		outcomeError(w, loaded)
		return
	}
	sess := loaded.Value

	in := feedback.Input{ProblemText: sess.ProblemText, CorrectAnswer: sess.CorrectAnswer, UserAnswer: answer}
	fb := orchestrator.Execute(ctx, h.orch, opFeedback, func(ctx context.Context) (string, error) {
		return h.feedback.Feedback(ctx, in)
	})
	if !fb.OK() {
		outcomeError(w, fb)
		return
	}

	correct := problemgen.IsCorrect(answer, sess.CorrectAnswer)
	rec := orchestrator.Execute(ctx, h.orch, opRecordSubmission, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.sessions.RecordSubmission(ctx, store.Submission{
			SessionID:    sess.ID,
			UserAnswer:   answer,
			IsCorrect:    correct,
			FeedbackText: fb.Value,
		})
	})
	if !rec.OK() {
		h.logger.Warn("submission not saved", "session_id", sess.ID, "error", rec.Err)
	}

	JSON(w, http.StatusOK, submitResponse{
		IsCorrect:    correct,
		FeedbackText: fb.Value,
		Saved:        rec.OK(),
	})
}

// parseUserAnswer accepts a JSON number or a numeric string.
func parseUserAnswer(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, problemgen.ErrEmptyAnswer
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return problemgen.ParseAnswer(s)
	}
	return problemgen.ParseAnswer(strings.TrimSpace(string(raw)))
}

type submissionView struct {
	UserAnswer   float64   `json:"user_answer"`
	IsCorrect    bool      `json:"is_correct"`
	FeedbackText string    `json:"feedback_text"`
	CreatedAt    time.Time `json:"created_at"`
}

type sessionView struct {
	ID            string           `json:"id"`
	ProblemText   string           `json:"problem_text"`
	CorrectAnswer float64          `json:"correct_answer"`
	CreatedAt     time.Time        `json:"created_at"`
	Submissions   []submissionView `json:"submissions"`
}

// GetSession returns a stored session with its submissions.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	sess, err := h.sessions.GetSession(ctx, id)
	if errors.Is(err, store.ErrSessionNotFound) {
		Error(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		h.logger.Error("load session", "session_id", id, "error", err)
		Error(w, http.StatusInternalServerError, "Failed to load session")
		return
	}

	subs, err := h.sessions.ListSubmissions(ctx, id)
	if err != nil {
		h.logger.Error("list submissions", "session_id", id, "error", err)
		Error(w, http.StatusInternalServerError, "Failed to load submissions")
		return
	}

	view := sessionView{
		ID:            sess.ID,
		ProblemText:   sess.ProblemText,
		CorrectAnswer: sess.CorrectAnswer,
		CreatedAt:     sess.CreatedAt,
		Submissions:   make([]submissionView, 0, len(subs)),
	}
	for _, s := range subs {
		view.Submissions = append(view.Submissions, submissionView{
			UserAnswer:   s.UserAnswer,
			IsCorrect:    s.IsCorrect,
			FeedbackText: s.FeedbackText,
			CreatedAt:    s.CreatedAt,
		})
	}
	JSON(w, http.StatusOK, view)
}
