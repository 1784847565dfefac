package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range Tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table.Name,
		).Scan(&name)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table.Name, err)
		}
		if name != table.Name {
			t.Errorf("table name = %q, want %q", name, table.Name)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.SessionRepo().CreateSession(ctx, "What is 6 x 7?", 42)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.SessionRepo().GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "What is 6 x 7?", got.ProblemText)
}

func TestSessionCreateAndGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	id, err := repo.CreateSession(ctx, "A shop sold 1250 pens on Monday and 875 on Tuesday. How many pens were sold?", 2125)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, 2125.0, got.CorrectAnswer)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)
}

func TestGetSession_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.SessionRepo().GetSession(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	var storeErr *Error
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "Session not found", storeErr.ServerMessage())
}

func TestRecordSubmission(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	id, err := repo.CreateSession(ctx, "What is 48 + 27?", 75)
	require.NoError(t, err)

	require.NoError(t, repo.RecordSubmission(ctx, Submission{
		SessionID: id, UserAnswer: 74, IsCorrect: false, FeedbackText: "Close! Check the ones column.",
	}))
	require.NoError(t, repo.RecordSubmission(ctx, Submission{
		SessionID: id, UserAnswer: 75, IsCorrect: true, FeedbackText: "Correct!",
	}))

	subs, err := repo.ListSubmissions(ctx, id)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, 74.0, subs[0].UserAnswer)
	assert.False(t, subs[0].IsCorrect)
	assert.Equal(t, "Close! Check the ones column.", subs[0].FeedbackText)
	assert.True(t, subs[1].IsCorrect)
	assert.Less(t, subs[0].ID, subs[1].ID)
}

func TestRecordSubmission_UnknownSession(t *testing.T) {
	s := openTestStore(t)

	err := s.SessionRepo().RecordSubmission(context.Background(), Submission{
		SessionID: "nope", UserAnswer: 1, FeedbackText: "x",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStats(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	empty, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, PracticeStats{}, empty)
	assert.Zero(t, empty.Accuracy())

	a, err := repo.CreateSession(ctx, "a", 1)
	require.NoError(t, err)
	_, err = repo.CreateSession(ctx, "b", 2)
	require.NoError(t, err)
	for _, correct := range []bool{false, true, true, true} {
		require.NoError(t, repo.RecordSubmission(ctx, Submission{SessionID: a, IsCorrect: correct}))
	}

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, PracticeStats{Sessions: 2, Submissions: 4, Correct: 3}, stats)
	assert.InDelta(t, 0.75, stats.Accuracy(), 1e-9)
}

func TestListSessions_NewestFirstWithLimit(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := repo.CreateSession(ctx, "problem", float64(i))
		require.NoError(t, err)
		ids = append(ids, id)
		time.Sleep(5 * time.Millisecond)
	}

	all, err := repo.ListSessions(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, ids[0], all[2].ID)

	limited, err := repo.ListSessions(ctx, QueryOpts{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestStoreError_ServerMessage(t *testing.T) {
	err := wrapErr("save problem", errors.New("disk full"))
	var storeErr *Error
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "Failed to save problem", storeErr.ServerMessage())
	assert.Nil(t, wrapErr("save problem", nil))
}

func TestEventRepo_AppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "problem-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 300, Success: true, RequestBody: "[user]\nGenerate", ResponseBody: `{"problem_text":"p","final_answer":1}`},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "feedback", InputTokens: 80, OutputTokens: 40, LatencyMs: 100, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "feedback", InputTokens: 20, OutputTokens: 0, LatencyMs: 300, Success: false, ErrorMessage: "LLM provider unavailable"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "LLM provider unavailable", got[0].ErrorMessage)
	assert.Equal(t, "problem-gen", got[2].Purpose)

	feedbackOnly, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "feedback", Limit: 1})
	require.NoError(t, err)
	require.Len(t, feedbackOnly, 1)
	assert.False(t, feedbackOnly[0].Success)

	one, err := repo.GetLLMEvent(ctx, got[2].ID)
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, `{"problem_text":"p","final_answer":1}`, one.ResponseBody)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEventRepo_Usage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{Model: "m1", Purpose: "feedback", InputTokens: 10, OutputTokens: 5, LatencyMs: 100, Success: true}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{Model: "m1", Purpose: "feedback", InputTokens: 30, OutputTokens: 15, LatencyMs: 300, Success: true}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{Model: "m2", Purpose: "problem-gen", InputTokens: 7, OutputTokens: 3, LatencyMs: 50, Success: true}))

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, LLMUsageStats{Purpose: "feedback", Calls: 2, InputTokens: 40, OutputTokens: 20, AvgLatencyMs: 200}, byPurpose[0])
	assert.Equal(t, "problem-gen", byPurpose[1].Purpose)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, "m2", byModel[1].Model)
	assert.Equal(t, 1, byModel[1].Calls)
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("MATHDRILL_DB", filepath.Join(dir, "nested", "x.db"))
	p, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nested", "x.db"), p)
	assert.DirExists(t, filepath.Join(dir, "nested"))

	t.Setenv("MATHDRILL_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mathdrill", "mathdrill.db"), p)
}
