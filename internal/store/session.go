package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// sessionRepo implements SessionRepo on the ent SQL driver.
type sessionRepo struct {
	drv *entsql.Driver
}

func (r *sessionRepo) CreateSession(ctx context.Context, problemText string, correctAnswer float64) (string, error) {
	id := uuid.NewString()

	q, args := entsql.Dialect(dialect.SQLite).
		Insert(SessionsTable.Name).
		Columns("id", "problem_text", "correct_answer", "created_at").
		Values(id, problemText, correctAnswer, time.Now().UTC()).
		Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		return "", wrapErr("save problem", err)
	}
	return id, nil
}

func (r *sessionRepo) GetSession(ctx context.Context, id string) (*Session, error) {
	t := entsql.Table(SessionsTable.Name)
	q, args := entsql.Dialect(dialect.SQLite).
		Select(t.C("id"), t.C("problem_text"), t.C("correct_answer"), t.C("created_at")).
		From(t).
		Where(entsql.EQ(t.C("id"), id)).
		Limit(1).
		Query()

	sessions, err := r.querySessions(ctx, q, args)
	if err != nil {
		return nil, wrapErr("load session", err)
	}
	if len(sessions) == 0 {
		return nil, wrapErr("load session", ErrSessionNotFound)
	}
	return &sessions[0], nil
}

func (r *sessionRepo) RecordSubmission(ctx context.Context, sub Submission) error {
	exists, err := r.sessionExists(ctx, sub.SessionID)
	if err != nil {
		return wrapErr("save submission", err)
	}
	if !exists {
		return wrapErr("save submission", ErrSessionNotFound)
	}

	created := sub.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	q, args := entsql.Dialect(dialect.SQLite).
		Insert(SubmissionsTable.Name).
		Columns("session_id", "user_answer", "is_correct", "feedback_text", "created_at").
		Values(sub.SessionID, sub.UserAnswer, sub.IsCorrect, sub.FeedbackText, created).
		Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		return wrapErr("save submission", err)
	}
	return nil
}

func (r *sessionRepo) ListSessions(ctx context.Context, opts QueryOpts) ([]Session, error) {
	t := entsql.Table(SessionsTable.Name)
	sel := entsql.Dialect(dialect.SQLite).
		Select(t.C("id"), t.C("problem_text"), t.C("correct_answer"), t.C("created_at")).
		From(t).
		OrderBy(entsql.Desc(t.C("created_at")))
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE(t.C("created_at"), opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE(t.C("created_at"), opts.To.UTC()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	q, args := sel.Query()
	sessions, err := r.querySessions(ctx, q, args)
	if err != nil {
		return nil, wrapErr("list sessions", err)
	}
	return sessions, nil
}

func (r *sessionRepo) ListSubmissions(ctx context.Context, sessionID string) ([]Submission, error) {
	t := entsql.Table(SubmissionsTable.Name)
	q, args := entsql.Dialect(dialect.SQLite).
		Select(t.C("id"), t.C("session_id"), t.C("user_answer"), t.C("is_correct"), t.C("feedback_text"), t.C("created_at")).
		From(t).
		Where(entsql.EQ(t.C("session_id"), sessionID)).
		OrderBy(t.C("id")).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, q, args, rows); err != nil {
		return nil, wrapErr("list submissions", err)
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var s Submission
		if err := rows.Scan(&s.ID, &s.SessionID, &s.UserAnswer, &s.IsCorrect, &s.FeedbackText, &s.CreatedAt); err != nil {
			return nil, wrapErr("list submissions", fmt.Errorf("scan: %w", err))
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list submissions", err)
	}
	return out, nil
}

func (r *sessionRepo) Stats(ctx context.Context) (PracticeStats, error) {
	var stats PracticeStats

	st := entsql.Table(SessionsTable.Name)
	q, args := entsql.Dialect(dialect.SQLite).
		Select(entsql.Count("*")).
		From(st).
		Query()
	var sessions sql.NullInt64
	if err := r.scanOne(ctx, q, args, &sessions); err != nil {
		return stats, wrapErr("load stats", err)
	}

	sub := entsql.Table(SubmissionsTable.Name)
	q, args = entsql.Dialect(dialect.SQLite).
		Select(entsql.Count("*"), entsql.Sum(sub.C("is_correct"))).
		From(sub).
		Query()
	var submissions, correct sql.NullInt64
	if err := r.scanOne(ctx, q, args, &submissions, &correct); err != nil {
		return stats, wrapErr("load stats", err)
	}

	stats.Sessions = int(sessions.Int64)
	stats.Submissions = int(submissions.Int64)
	stats.Correct = int(correct.Int64)
	return stats, nil
}

// scanOne scans the first row of q into dest.
func (r *sessionRepo) scanOne(ctx context.Context, q string, args []any, dest ...any) error {
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, q, args, rows); err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *sessionRepo) querySessions(ctx context.Context, q string, args []any) ([]Session, error) {
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, q, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.ProblemText, &s.CorrectAnswer, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sessionRepo) sessionExists(ctx context.Context, id string) (bool, error) {
	t := entsql.Table(SessionsTable.Name)
	q, args := entsql.Dialect(dialect.SQLite).
		Select(entsql.Count("*")).
		From(t).
		Where(entsql.EQ(t.C("id"), id)).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, q, args, rows); err != nil {
		return false, err
	}
	defer rows.Close()

	var n sql.NullInt64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return false, err
		}
	}
	return n.Int64 > 0, rows.Err()
}
