package store

import (
	"context"
	"time"
)

// QueryOpts configures list queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	From    time.Time // created >= From
	To      time.Time // created <= To
	Purpose string    // LLM events only; empty matches all
}

// Session is a generated problem together with its correct answer.
type Session struct {
	ID            string
	ProblemText   string
	CorrectAnswer float64
	CreatedAt     time.Time
}

// Submission is one graded answer to a Session.
type Submission struct {
	ID           int
	SessionID    string
	UserAnswer   float64
	IsCorrect    bool
	FeedbackText string
	CreatedAt    time.Time
}

// SessionRepo persists problem sessions and their submissions.
type SessionRepo interface {
	// CreateSession stores a new problem and returns its generated ID.
	CreateSession(ctx context.Context, problemText string, correctAnswer float64) (string, error)

	// GetSession returns the session or an error wrapping ErrSessionNotFound.
	GetSession(ctx context.Context, id string) (*Session, error)

	// RecordSubmission stores a graded answer. The referenced session must exist.
	RecordSubmission(ctx context.Context, sub Submission) error

	// ListSessions returns sessions newest first.
	ListSessions(ctx context.Context, opts QueryOpts) ([]Session, error)

	// ListSubmissions returns the submissions for a session, oldest first.
	ListSubmissions(ctx context.Context, sessionID string) ([]Submission, error)

	// Stats returns totals across all sessions.
	Stats(ctx context.Context) (PracticeStats, error)
}

// PracticeStats are lifetime totals.
type PracticeStats struct {
	Sessions    int
	Submissions int
	Correct     int
}

// Accuracy returns the share of correct submissions, or 0 with none.
func (s PracticeStats) Accuracy() float64 {
	if s.Submissions == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Submissions)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	ID           int
	Timestamp    time.Time
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMUsageStats aggregates LLM events by purpose or model.
type LLMUsageStats struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventData, error)

	// GetLLMEvent returns a single event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventData, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsageStats, error)
}
