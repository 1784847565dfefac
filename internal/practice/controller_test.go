package practice

import (
	"context"
	"errors"
	"net"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathdrill/internal/feedback"
	"github.com/abhisek/mathdrill/internal/orchestrator"
	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/store"
)

// --- fakes ---

type genResult struct {
	p     *problemgen.Problem
	err   error
	block bool // wait for ctx to end
}

type fakeGenerator struct {
	mu      sync.Mutex
	results []genResult
	calls   int
}

func (g *fakeGenerator) NewProblem(ctx context.Context) (*problemgen.Problem, error) {
	g.mu.Lock()
	g.calls++
	var r genResult
	if len(g.results) > 0 {
		r = g.results[0]
		g.results = g.results[1:]
	} else {
		r = genResult{p: &problemgen.Problem{Text: "What is 1+1?", Answer: 2}}
	}
	g.mu.Unlock()

	if r.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return r.p, r.err
}

func (g *fakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fakeFeedback struct {
	mu    sync.Mutex
	errs  []error
	calls []feedback.Input
}

func (f *fakeFeedback) Feedback(_ context.Context, in feedback.Input) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, in)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	if in.UserAnswer == in.CorrectAnswer {
		return "Well done!", nil
	}
	return "Not quite.", nil
}

type fakeSessions struct {
	mu          sync.Mutex
	ids         []string
	createErrs  []error
	recordErrs  []error
	created     []string
	submissions []store.Submission
}

func (s *fakeSessions) CreateSession(_ context.Context, text string, _ float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		if err != nil {
			return "", err
		}
	}
	s.created = append(s.created, text)
	id := "session-" + string(rune('a'+len(s.created)-1))
	if len(s.ids) > 0 {
		id = s.ids[0]
		s.ids = s.ids[1:]
	}
	return id, nil
}

func (s *fakeSessions) RecordSubmission(_ context.Context, sub store.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.recordErrs) > 0 {
		err := s.recordErrs[0]
		s.recordErrs = s.recordErrs[1:]
		if err != nil {
			return err
		}
	}
	s.submissions = append(s.submissions, sub)
	return nil
}

type fixture struct {
	gen      *fakeGenerator
	fb       *fakeFeedback
	sessions *fakeSessions
	ctrl     *Controller
}

func newFixture(t *testing.T, opts ...orchestrator.Option) *fixture {
	t.Helper()
	f := &fixture{
		gen:      &fakeGenerator{},
		fb:       &fakeFeedback{},
		sessions: &fakeSessions{},
	}
	f.ctrl = New(Deps{
		Problems:     f.gen,
		Feedback:     f.fb,
		Sessions:     f.sessions,
		Orchestrator: orchestrator.New(opts...),
	})
	return f
}

func problem(text string, answer float64) genResult {
	return genResult{p: &problemgen.Problem{Text: text, Answer: answer}}
}

var errRefused = &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}

// --- scenarios ---

func TestScenario_CorrectAnswerThenUngatedGenerate(t *testing.T) {
	f := newFixture(t)
	f.gen.results = []genResult{problem("What is 12+7?", 19)}
	f.sessions.ids = []string{"abc"}
	ctx := context.Background()

	gated, err := f.ctrl.RequestGenerate(ctx)
	require.NoError(t, err)
	assert.False(t, gated)

	s := f.ctrl.Snapshot()
	require.Equal(t, PhaseReady, s.Phase)
	require.NotNil(t, s.Current)
	assert.Equal(t, "What is 12+7?", s.Current.ProblemText)
	assert.Equal(t, 19.0, s.Current.CorrectAnswer)
	assert.Equal(t, "abc", s.Current.ID)

	require.NoError(t, f.ctrl.Submit(ctx, "19"))
	s = f.ctrl.Snapshot()
	assert.Equal(t, PhaseResolved, s.Phase)
	assert.Equal(t, VerdictCorrect, s.LastOutcome)
	assert.Equal(t, "Well done!", s.FeedbackText)
	assert.False(t, s.HasError())

	require.Len(t, f.sessions.submissions, 1)
	sub := f.sessions.submissions[0]
	assert.Equal(t, "abc", sub.SessionID)
	assert.Equal(t, 19.0, sub.UserAnswer)
	assert.True(t, sub.IsCorrect)
	assert.Equal(t, "Well done!", sub.FeedbackText)

	gated, err = f.ctrl.RequestGenerate(ctx)
	require.NoError(t, err)
	assert.False(t, gated)
	assert.False(t, f.ctrl.AwaitingConfirmation())
	assert.Equal(t, 2, f.gen.Calls())
}

func TestScenario_WrongAnswerGatesGenerate(t *testing.T) {
	f := newFixture(t)
	f.gen.results = []genResult{problem("What is 12+7?", 19), problem("What is 3*4?", 12)}
	ctx := context.Background()

	_, err := f.ctrl.RequestGenerate(ctx)
	require.NoError(t, err)
	require.NoError(t, f.ctrl.Submit(ctx, "20"))

	s := f.ctrl.Snapshot()
	assert.Equal(t, VerdictIncorrect, s.LastOutcome)
	assert.False(t, f.sessions.submissions[0].IsCorrect)

	gated, err := f.ctrl.RequestGenerate(ctx)
	require.NoError(t, err)
	assert.True(t, gated)
	assert.True(t, f.ctrl.Snapshot().AwaitingConfirmation)
	assert.Equal(t, 1, f.gen.Calls(), "gated request must not call out")

	require.NoError(t, f.ctrl.ConfirmSkip(ctx))
	assert.Equal(t, 2, f.gen.Calls())

	s = f.ctrl.Snapshot()
	assert.False(t, s.AwaitingConfirmation)
	assert.Equal(t, PhaseReady, s.Phase)
	assert.Equal(t, "What is 3*4?", s.Current.ProblemText)
	assert.Equal(t, VerdictUnknown, s.LastOutcome)
	assert.Empty(t, s.FeedbackText)
	assert.Empty(t, s.UserAnswer)
}

func TestScenario_TimeoutThenRetryIssuesFreshCall(t *testing.T) {
	f := newFixture(t, orchestrator.WithTimeout(30*time.Millisecond))
	f.gen.results = []genResult{{block: true}, problem("What is 5+5?", 10)}
	ctx := context.Background()

	_, err := f.ctrl.RequestGenerate(ctx)
	require.NoError(t, err)

	s := f.ctrl.Snapshot()
	assert.Equal(t, PhaseError, s.Phase)
	assert.Equal(t, orchestrator.KindTimeout, s.ErrorKind)
	assert.Nil(t, s.Current)
	assert.False(t, s.Busy)
	assert.Equal(t, orchestrator.KindTimeout.Message(), s.ErrorText())

	require.NoError(t, f.ctrl.Retry(ctx))
	assert.Equal(t, 2, f.gen.Calls())

	s = f.ctrl.Snapshot()
	assert.Equal(t, PhaseReady, s.Phase)
	assert.Equal(t, orchestrator.KindNone, s.ErrorKind)
	assert.Equal(t, "What is 5+5?", s.Current.ProblemText)
}

// --- gate ---

func TestGate(t *testing.T) {
	tests := []struct {
		name    string
		current *ProblemSession
		outcome Verdict
		want    bool
	}{
		{"no session", nil, VerdictUnknown, false},
		{"unanswered", &ProblemSession{ID: "a"}, VerdictUnknown, true},
		{"incorrect", &ProblemSession{ID: "a"}, VerdictIncorrect, true},
		{"correct", &ProblemSession{ID: "a"}, VerdictCorrect, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Deps{})
			c.state.Current = tt.current
			c.state.LastOutcome = tt.outcome

			assert.Equal(t, tt.want, c.Gate())
			assert.Equal(t, tt.want, c.AwaitingConfirmation())
		})
	}
}

func TestCancelSkip_LeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ctrl.RequestGenerate(ctx)
	require.NoError(t, err)
	f.ctrl.SetAnswer("4")
	before := f.ctrl.Snapshot()

	gated, err := f.ctrl.RequestGenerate(ctx)
	require.NoError(t, err)
	require.True(t, gated)

	f.ctrl.CancelSkip()
	after := f.ctrl.Snapshot()
	assert.Equal(t, before, after)
	assert.Equal(t, 1, f.gen.Calls())
}

func TestConfirmSkip_WithoutDialog(t *testing.T) {
	f := newFixture(t)
	err := f.ctrl.ConfirmSkip(context.Background())
	assert.ErrorIs(t, err, ErrNotAwaitingConfirmation)
	assert.Equal(t, 0, f.gen.Calls())
}

// --- generate ---

func TestGenerate_AnswerUnchanged(t *testing.T) {
	for _, answer := range []float64{19, -3, 0, 1.75, 1e9 + 0.5} {
		f := newFixture(t)
		f.gen.results = []genResult{problem("p", answer)}
		require.NoError(t, f.ctrl.Generate(context.Background()))
		assert.Equal(t, answer, f.ctrl.Snapshot().Current.CorrectAnswer)
	}
}

func TestGenerate_FailureClearsCurrent(t *testing.T) {
	f := newFixture(t)
	f.gen.results = []genResult{problem("first", 1), {err: errRefused}}
	ctx := context.Background()

	require.NoError(t, f.ctrl.Generate(ctx))
	require.NoError(t, f.ctrl.Submit(ctx, "1"))
	require.NoError(t, f.ctrl.Generate(ctx))

	s := f.ctrl.Snapshot()
	assert.Equal(t, PhaseError, s.Phase)
	assert.Equal(t, orchestrator.KindNetwork, s.ErrorKind)
	assert.Nil(t, s.Current)
	assert.Empty(t, s.FeedbackText)
	assert.Equal(t, VerdictUnknown, s.LastOutcome)
	assert.Equal(t, ActionGenerate, s.LastAttempt.Kind)
}

func TestRetry_GenerateAfterNetworkFailure(t *testing.T) {
	f := newFixture(t)
	f.gen.results = []genResult{{err: errRefused}, problem("fresh", 7)}
	ctx := context.Background()

	require.NoError(t, f.ctrl.Generate(ctx))
	require.Equal(t, orchestrator.KindNetwork, f.ctrl.Snapshot().ErrorKind)

	require.NoError(t, f.ctrl.Retry(ctx))
	s := f.ctrl.Snapshot()
	assert.Equal(t, 2, f.gen.Calls())
	assert.Equal(t, "fresh", s.Current.ProblemText)
	assert.Equal(t, ActionGenerate, s.LastAttempt.Kind)
	assert.Zero(t, s.LastAttempt.UserAnswer)
}

func TestGenerate_StoreFailureKeepsProblem(t *testing.T) {
	f := newFixture(t)
	f.gen.results = []genResult{problem("What is 2+2?", 4)}
	f.sessions.createErrs = []error{&store.Error{Op: "save problem", Err: errors.New("disk full")}}
	ctx := context.Background()

	require.NoError(t, f.ctrl.Generate(ctx))

	s := f.ctrl.Snapshot()
	assert.Equal(t, PhaseReady, s.Phase)
	require.NotNil(t, s.Current)
	assert.Empty(t, s.Current.ID)
	assert.Equal(t, orchestrator.KindServer, s.ErrorKind)
	assert.Equal(t, "Failed to save problem", s.ErrorText())
	assert.True(t, f.ctrl.CanSubmit())

	// Retry persists the same problem without generating a new one.
	require.NoError(t, f.ctrl.Retry(ctx))
	s = f.ctrl.Snapshot()
	assert.Equal(t, 1, f.gen.Calls())
	assert.Equal(t, "session-a", s.Current.ID)
	assert.Equal(t, "What is 2+2?", s.Current.ProblemText)
	assert.False(t, s.HasError())
}

func TestSubmit_CreatesMissingSession(t *testing.T) {
	f := newFixture(t)
	f.gen.results = []genResult{problem("What is 2+2?", 4)}
	f.sessions.createErrs = []error{&store.Error{Op: "save problem", Err: errors.New("locked")}}
	ctx := context.Background()

	require.NoError(t, f.ctrl.Generate(ctx))
	require.NoError(t, f.ctrl.Submit(ctx, "4"))

	s := f.ctrl.Snapshot()
	assert.Equal(t, PhaseResolved, s.Phase)
	assert.False(t, s.HasError())
	assert.Equal(t, "session-a", s.Current.ID)
	require.Len(t, f.sessions.submissions, 1)
	assert.Equal(t, "session-a", f.sessions.submissions[0].SessionID)
}

// --- submit ---

func TestSubmit_InvalidAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ctrl.Generate(ctx))
	before := f.ctrl.Snapshot()

	for _, raw := range []string{"", "   ", "nineteen", "NaN"} {
		err := f.ctrl.Submit(ctx, raw)
		assert.ErrorIs(t, err, ErrInvalidAnswer, raw)
	}
	assert.ErrorIs(t, f.ctrl.Submit(ctx, ""), problemgen.ErrEmptyAnswer)
	assert.Equal(t, before, f.ctrl.Snapshot())
	assert.Empty(t, f.fb.calls)
}

func TestSubmit_NoProblem(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.ctrl.Submit(context.Background(), "3"), ErrNoProblem)
	assert.False(t, f.ctrl.CanSubmit())
}

func TestSubmit_ExactGrading(t *testing.T) {
	tests := []struct {
		correct float64
		raw     string
		want    Verdict
	}{
		{3, "3", VerdictCorrect},
		{3, "3.0", VerdictCorrect},
		{3, " 3 ", VerdictCorrect},
		{3, "3.01", VerdictIncorrect},
		{-4, "-4", VerdictCorrect},
		{0, "0", VerdictCorrect},
		{0, "-0", VerdictCorrect},
		{19, "20", VerdictIncorrect},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			f := newFixture(t)
			f.gen.results = []genResult{problem("p", tt.correct)}
			ctx := context.Background()
			require.NoError(t, f.ctrl.Generate(ctx))
			require.NoError(t, f.ctrl.Submit(ctx, tt.raw))
			assert.Equal(t, tt.want, f.ctrl.Snapshot().LastOutcome)
		})
	}
}

func TestSubmit_FailurePreservesProblemAndAnswer(t *testing.T) {
	f := newFixture(t)
	f.gen.results = []genResult{problem("What is 6*7?", 42)}
	f.fb.errs = []error{errRefused}
	ctx := context.Background()

	require.NoError(t, f.ctrl.Generate(ctx))
	require.NoError(t, f.ctrl.Submit(ctx, "41"))

	s := f.ctrl.Snapshot()
	assert.Equal(t, PhaseError, s.Phase)
	assert.Equal(t, orchestrator.KindNetwork, s.ErrorKind)
	require.NotNil(t, s.Current)
	assert.Equal(t, "What is 6*7?", s.Current.ProblemText)
	assert.Equal(t, "41", s.UserAnswer)
	assert.Equal(t, VerdictUnknown, s.LastOutcome)
	assert.Empty(t, f.sessions.submissions)
}

func TestRetry_SubmitReusesExactPayload(t *testing.T) {
	f := newFixture(t)
	f.gen.results = []genResult{problem("What is 6*7?", 42)}
	f.sessions.ids = []string{"s1"}
	f.fb.errs = []error{errRefused}
	ctx := context.Background()

	require.NoError(t, f.ctrl.Generate(ctx))
	require.NoError(t, f.ctrl.Submit(ctx, "41"))

	// Typing after the failure must not change what is replayed.
	f.ctrl.SetAnswer("40")
	require.NoError(t, f.ctrl.Retry(ctx))

	require.Len(t, f.fb.calls, 2)
	assert.Equal(t, f.fb.calls[0], f.fb.calls[1])
	require.Len(t, f.sessions.submissions, 1)
	assert.Equal(t, "s1", f.sessions.submissions[0].SessionID)
	assert.Equal(t, 41.0, f.sessions.submissions[0].UserAnswer)

	s := f.ctrl.Snapshot()
	assert.Equal(t, PhaseResolved, s.Phase)
	assert.Equal(t, VerdictIncorrect, s.LastOutcome)
	assert.Equal(t, Attempt{Kind: ActionSubmit, SessionID: "s1", UserAnswer: 41, Raw: "41"}, s.LastAttempt)
}

func TestSubmit_RecordFailureKeepsFeedback(t *testing.T) {
	f := newFixture(t)
	f.gen.results = []genResult{problem("What is 12+7?", 19)}
	f.sessions.recordErrs = []error{&store.Error{Op: "save submission", Err: store.ErrSessionNotFound}}
	ctx := context.Background()

	require.NoError(t, f.ctrl.Generate(ctx))
	require.NoError(t, f.ctrl.Submit(ctx, "19"))

	s := f.ctrl.Snapshot()
	assert.Equal(t, PhaseResolved, s.Phase)
	assert.Equal(t, "Well done!", s.FeedbackText)
	assert.Equal(t, VerdictCorrect, s.LastOutcome)
	assert.Equal(t, orchestrator.KindServer, s.ErrorKind)
	assert.Equal(t, "Session not found", s.ErrorText())

	// Retry writes the submission without asking for feedback again.
	require.NoError(t, f.ctrl.Retry(ctx))
	assert.Len(t, f.fb.calls, 1)
	require.Len(t, f.sessions.submissions, 1)
	assert.True(t, f.sessions.submissions[0].IsCorrect)
	assert.False(t, f.ctrl.Snapshot().HasError())
}

// --- retry / busy ---

func TestRetry_NothingToRetry(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.ctrl.Retry(context.Background()), ErrNothingToRetry)

	require.NoError(t, f.ctrl.Generate(context.Background()))
	assert.ErrorIs(t, f.ctrl.Retry(context.Background()), ErrNothingToRetry)
}

func TestBusy_RejectsSecondCall(t *testing.T) {
	f := newFixture(t)
	f.gen.results = []genResult{{block: true}}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = f.ctrl.Generate(ctx)
	}()

	require.Eventually(t, func() bool { return f.ctrl.Snapshot().Busy }, time.Second, time.Millisecond)
	assert.Equal(t, PhaseGenerating, f.ctrl.Snapshot().Phase)
	assert.False(t, f.ctrl.CanGenerate())
	assert.ErrorIs(t, f.ctrl.Generate(context.Background()), ErrBusy)
	_, err := f.ctrl.RequestGenerate(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	cancel()
	<-done
	assert.True(t, f.ctrl.CanGenerate())
	assert.Equal(t, 1, f.gen.Calls())
	assert.Equal(t, orchestrator.KindUnknown, f.ctrl.Snapshot().ErrorKind)
}

func TestSnapshot_IsCopy(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.Generate(context.Background()))

	s := f.ctrl.Snapshot()
	s.Current.ProblemText = "changed"
	assert.NotEqual(t, "changed", f.ctrl.Snapshot().Current.ProblemText)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "ready", PhaseReady.String())
	assert.Equal(t, "error", PhaseError.String())
	assert.Equal(t, "unknown", Phase(99).String())
}
