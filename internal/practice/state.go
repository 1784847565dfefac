package practice

import "github.com/abhisek/mathdrill/internal/orchestrator"

// Phase is the controller's position in the practice loop.
type Phase int

const (
	PhaseIdle       Phase = iota // No problem requested yet
	PhaseGenerating              // Waiting for a new problem
	PhaseReady                   // Problem shown, awaiting an answer
	PhaseSubmitting              // Waiting for feedback on an answer
	PhaseResolved                // Answer graded, feedback shown
	PhaseError                   // Last generate or submit call failed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseGenerating:
		return "generating"
	case PhaseReady:
		return "ready"
	case PhaseSubmitting:
		return "submitting"
	case PhaseResolved:
		return "resolved"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Verdict is the last known correctness for the current problem.
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictCorrect
	VerdictIncorrect
)

func verdictOf(correct bool) Verdict {
	if correct {
		return VerdictCorrect
	}
	return VerdictIncorrect
}

// ActionKind identifies a replayable user action.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionGenerate
	ActionSubmit
)

// Attempt is the last generate or submit action with its exact input,
// kept so a retry can replay it.
type Attempt struct {
	Kind ActionKind

	// SessionID and UserAnswer are set for ActionSubmit.
	SessionID  string
	UserAnswer float64

	// Raw is the answer as the learner typed it.
	Raw string
}

// ProblemSession is one generated problem. It is replaced wholesale,
// never modified in place.
type ProblemSession struct {
	// ID is assigned by the session store. Empty if the problem could
	// not be persisted yet.
	ID            string
	ProblemText   string
	CorrectAnswer float64
}

// InteractionState is the controller's complete in-memory state.
type InteractionState struct {
	Phase        Phase
	Current      *ProblemSession
	LastOutcome  Verdict
	ErrorKind    orchestrator.ErrorKind
	ErrorMessage string // remote message for KindServer, when reported
	LastAttempt  Attempt
	UserAnswer   string
	FeedbackText string
}

// Snapshot is a read-only copy of the state for rendering.
type Snapshot struct {
	InteractionState

	// AwaitingConfirmation is set while the skip dialog is shown.
	AwaitingConfirmation bool

	// Busy is set while a call is outstanding.
	Busy bool
}

// HasError reports whether the last call failed.
func (s Snapshot) HasError() bool {
	return s.ErrorKind != orchestrator.KindNone
}

// ErrorText returns the message to show for the current error.
func (s Snapshot) ErrorText() string {
	if s.ErrorMessage != "" {
		return s.ErrorMessage
	}
	return s.ErrorKind.Message()
}
