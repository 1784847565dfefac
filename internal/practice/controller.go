// Package practice drives one problem session at a time: it requests a
// problem, grades the learner's answer, asks for feedback, and gates
// skipping a problem that has not been answered correctly.
package practice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/abhisek/mathdrill/internal/feedback"
	"github.com/abhisek/mathdrill/internal/orchestrator"
	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/store"
)

// Operation names used for logging and metrics.
const (
	OpGenerateProblem  = "generate-problem"
	OpCreateSession    = "create-session"
	OpFeedback         = "feedback"
	OpRecordSubmission = "record-submission"
)

var (
	// ErrBusy is returned when an action is requested while a call is outstanding.
	ErrBusy = errors.New("a request is already in progress")

	// ErrNoProblem is returned by Submit when no problem is shown.
	ErrNoProblem = errors.New("no problem to answer")

	// ErrInvalidAnswer wraps problemgen.ErrEmptyAnswer or problemgen.ErrNotNumeric.
	ErrInvalidAnswer = errors.New("invalid answer")

	// ErrNothingToRetry is returned by Retry when the last call succeeded.
	ErrNothingToRetry = errors.New("nothing to retry")

	// ErrNotAwaitingConfirmation is returned by ConfirmSkip without a pending dialog.
	ErrNotAwaitingConfirmation = errors.New("no skip confirmation pending")
)

// SessionStore persists problems and graded answers.
type SessionStore interface {
	CreateSession(ctx context.Context, problemText string, correctAnswer float64) (string, error)
	RecordSubmission(ctx context.Context, sub store.Submission) error
}

// Deps are the controller's collaborators.
type Deps struct {
	Problems     problemgen.Generator
	Feedback     feedback.Source
	Sessions     SessionStore
	Orchestrator *orchestrator.Orchestrator
	Logger       *slog.Logger
}

// resumePoint records which step failed, so Retry restarts there.
type resumePoint int

const (
	resumeNone resumePoint = iota
	resumeGenerate
	resumePersistSession
	resumeSubmit
	resumeRecordSubmission
)

// pendingRecord is a graded submission whose write failed.
type pendingRecord struct {
	session  ProblemSession
	attempt  Attempt
	correct  bool
	feedback string
}

// Controller is the practice state machine. Methods are safe for
// concurrent use; calls block for the duration of their outbound call.
type Controller struct {
	problems problemgen.Generator
	feedback feedback.Source
	sessions SessionStore
	orch     *orchestrator.Orchestrator
	logger   *slog.Logger

	mu       sync.Mutex
	state    InteractionState
	awaiting bool
	inFlight bool
	resume   resumePoint
	pending  *pendingRecord
}

// New creates a Controller in PhaseIdle.
func New(deps Deps) *Controller {
	c := &Controller{
		problems: deps.Problems,
		feedback: deps.Feedback,
		sessions: deps.Sessions,
		orch:     deps.Orchestrator,
		logger:   deps.Logger,
	}
	if c.orch == nil {
		c.orch = orchestrator.New()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		InteractionState:     c.state,
		AwaitingConfirmation: c.awaiting,
		Busy:                 c.inFlight,
	}
	if c.state.Current != nil {
		cur := *c.state.Current
		s.Current = &cur
	}
	return s
}

// CanGenerate reports whether the generate control should be enabled.
func (c *Controller) CanGenerate() bool {
	return !c.busy()
}

// CanSubmit reports whether the submit control should be enabled.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.inFlight && c.state.Current != nil
}

// SetAnswer records the learner's in-progress input.
func (c *Controller) SetAnswer(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inFlight {
		c.state.UserAnswer = raw
	}
}

func (c *Controller) busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Generate requests a new problem without consulting the gate.
func (c *Controller) Generate(ctx context.Context) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrBusy
	}
	c.awaiting = false
	c.beginGenerateLocked()
	c.mu.Unlock()

	c.runGenerate(ctx)
	return nil
}

func (c *Controller) beginGenerateLocked() {
	c.inFlight = true
	c.state.Phase = PhaseGenerating
	c.state.FeedbackText = ""
	c.state.LastOutcome = VerdictUnknown
	c.clearErrorLocked()
	c.state.LastAttempt = Attempt{Kind: ActionGenerate}
}

func (c *Controller) runGenerate(ctx context.Context) {
	out := orchestrator.Execute(ctx, c.orch, OpGenerateProblem, c.problems.NewProblem)
	if !out.OK() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.state.Current = nil
		c.state.UserAnswer = ""
		c.failLocked(out.Kind, out.Message, resumeGenerate)
		return
	}

	p := ProblemSession{ProblemText: out.Value.Text, CorrectAnswer: out.Value.Answer}
	c.persistSession(ctx, p, true)
}

// persistSession stores p and installs it as the current problem. A write
// failure still installs p, without an ID, and reports a server error.
func (c *Controller) persistSession(ctx context.Context, p ProblemSession, fresh bool) {
	out := orchestrator.Execute(ctx, c.orch, OpCreateSession, func(ctx context.Context) (string, error) {
		return c.sessions.CreateSession(ctx, p.ProblemText, p.CorrectAnswer)
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	p.ID = out.Value
	c.state.Current = &p
	c.state.Phase = PhaseReady
	if fresh {
		c.state.LastOutcome = VerdictUnknown
		c.state.UserAnswer = ""
		c.state.FeedbackText = ""
	}

	if !out.OK() {
		c.failLocked(out.Kind, out.Message, resumePersistSession)
		c.state.Phase = PhaseReady
		return
	}
	c.succeedLocked()
	c.logger.Debug("problem ready", "session_id", p.ID)
}

// Submit grades raw against the current problem and requests feedback.
func (c *Controller) Submit(ctx context.Context, raw string) error {
	answer, err := problemgen.ParseAnswer(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAnswer, err)
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state.Current == nil {
		c.mu.Unlock()
		return ErrNoProblem
	}
	cur := *c.state.Current
	att := Attempt{Kind: ActionSubmit, SessionID: cur.ID, UserAnswer: answer, Raw: raw}
	c.awaiting = false
	c.state.UserAnswer = raw
	c.state.LastAttempt = att
	c.beginSubmitLocked()
	c.mu.Unlock()

	c.runSubmit(ctx, cur, att)
	return nil
}

func (c *Controller) beginSubmitLocked() {
	c.inFlight = true
	c.state.Phase = PhaseSubmitting
	c.state.FeedbackText = ""
	c.clearErrorLocked()
}

func (c *Controller) runSubmit(ctx context.Context, cur ProblemSession, att Attempt) {
	in := feedback.Input{
		ProblemText:   cur.ProblemText,
		CorrectAnswer: cur.CorrectAnswer,
		UserAnswer:    att.UserAnswer,
	}
	out := orchestrator.Execute(ctx, c.orch, OpFeedback, func(ctx context.Context) (string, error) {
		return c.feedback.Feedback(ctx, in)
	})
	if !out.OK() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.failLocked(out.Kind, out.Message, resumeSubmit)
		return
	}

	correct := problemgen.IsCorrect(att.UserAnswer, cur.CorrectAnswer)
	c.recordSubmission(ctx, pendingRecord{session: cur, attempt: att, correct: correct, feedback: out.Value})
}

// recordSubmission writes the graded answer and resolves the problem. A
// problem that was never persisted is stored first. Write failures keep
// the feedback visible and report a server error.
func (c *Controller) recordSubmission(ctx context.Context, rec pendingRecord) {
	sessionID := rec.attempt.SessionID
	if sessionID == "" {
		sessionID = c.currentID(rec.session)
	}

	var failure orchestrator.Outcome[struct{}]
	if sessionID == "" {
		created := orchestrator.Execute(ctx, c.orch, OpCreateSession, func(ctx context.Context) (string, error) {
			return c.sessions.CreateSession(ctx, rec.session.ProblemText, rec.session.CorrectAnswer)
		})
		if created.OK() {
			sessionID = created.Value
		} else {
			failure.Kind, failure.Message = created.Kind, created.Message
		}
	}

	if sessionID != "" {
		sub := store.Submission{
			SessionID:    sessionID,
			UserAnswer:   rec.attempt.UserAnswer,
			IsCorrect:    rec.correct,
			FeedbackText: rec.feedback,
		}
		failure = orchestrator.Execute(ctx, c.orch, OpRecordSubmission, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.sessions.RecordSubmission(ctx, sub)
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cur := c.state.Current; cur != nil && cur.ID == "" && sessionID != "" &&
		cur.ProblemText == rec.session.ProblemText && cur.CorrectAnswer == rec.session.CorrectAnswer {
		updated := *cur
		updated.ID = sessionID
		c.state.Current = &updated
	}

	c.state.Phase = PhaseResolved
	c.state.FeedbackText = rec.feedback
	c.state.LastOutcome = verdictOf(rec.correct)

	if !failure.OK() {
		c.failLocked(failure.Kind, failure.Message, resumeRecordSubmission)
		c.state.Phase = PhaseResolved
		c.pending = &rec
		return
	}
	c.succeedLocked()
	c.logger.Debug("answer recorded", "session_id", sessionID, "correct", rec.correct)
}

func (c *Controller) currentID(p ProblemSession) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur := c.state.Current; cur != nil && cur.ProblemText == p.ProblemText && cur.CorrectAnswer == p.CorrectAnswer {
		return cur.ID
	}
	return ""
}

// Retry replays the last failed action with its original input. The
// error is cleared before the replay starts.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state.ErrorKind == orchestrator.KindNone || c.resume == resumeNone {
		c.mu.Unlock()
		return ErrNothingToRetry
	}

	resume := c.resume
	att := c.state.LastAttempt
	c.awaiting = false
	c.clearErrorLocked()
	c.logger.Debug("retrying", "resume", int(resume))

	switch resume {
	case resumeGenerate:
		c.beginGenerateLocked()
		c.mu.Unlock()
		c.runGenerate(ctx)

	case resumePersistSession:
		cur := *c.state.Current
		c.inFlight = true
		c.mu.Unlock()
		c.persistSession(ctx, cur, false)

	case resumeSubmit:
		if c.state.Current == nil {
			c.mu.Unlock()
			return ErrNoProblem
		}
		cur := *c.state.Current
		c.beginSubmitLocked()
		c.mu.Unlock()
		c.runSubmit(ctx, cur, att)

	case resumeRecordSubmission:
		rec := *c.pending
		c.inFlight = true
		c.mu.Unlock()
		c.recordSubmission(ctx, rec)

	default:
		c.mu.Unlock()
		return ErrNothingToRetry
	}
	return nil
}

func (c *Controller) failLocked(kind orchestrator.ErrorKind, msg string, at resumePoint) {
	c.inFlight = false
	c.state.Phase = PhaseError
	c.state.ErrorKind = kind
	c.state.ErrorMessage = msg
	c.resume = at
}

func (c *Controller) succeedLocked() {
	c.inFlight = false
	c.resume = resumeNone
	c.pending = nil
}

func (c *Controller) clearErrorLocked() {
	c.state.ErrorKind = orchestrator.KindNone
	c.state.ErrorMessage = ""
}
