package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo on the ent SQL driver. Event IDs are
// assigned by the table's auto-increment key and give a total order.
type eventRepo struct {
	drv *entsql.Driver
}

var llmEventColumns = []string{
	"id", "timestamp", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success",
	"error_message", "request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	ts := data.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	q, args := entsql.Dialect(dialect.SQLite).
		Insert(LLMRequestEventsTable.Name).
		Columns(llmEventColumns[1:]...).
		Values(
			ts, data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
			data.ErrorMessage, data.RequestBody, data.ResponseBody,
		).
		Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventData, error) {
	t := entsql.Table(LLMRequestEventsTable.Name)
	sel := entsql.Dialect(dialect.SQLite).
		Select(llmEventColumns...).
		From(t).
		OrderBy(entsql.Desc(t.C("id")))
	if opts.Purpose != "" {
		sel.Where(entsql.EQ(t.C("purpose"), opts.Purpose))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE(t.C("timestamp"), opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE(t.C("timestamp"), opts.To.UTC()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	q, args := sel.Query()
	events, err := r.queryEvents(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventData, error) {
	t := entsql.Table(LLMRequestEventsTable.Name)
	q, args := entsql.Dialect(dialect.SQLite).
		Select(llmEventColumns...).
		From(t).
		Where(entsql.EQ(t.C("id"), id)).
		Query()

	events, err := r.queryEvents(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error) {
	return r.usageBy(ctx, "purpose")
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMUsageStats, error) {
	return r.usageBy(ctx, "model")
}

func (r *eventRepo) usageBy(ctx context.Context, column string) ([]LLMUsageStats, error) {
	t := entsql.Table(LLMRequestEventsTable.Name)
	q, args := entsql.Dialect(dialect.SQLite).
		Select(
			t.C(column),
			entsql.Count("*"),
			entsql.Sum(t.C("input_tokens")),
			entsql.Sum(t.C("output_tokens")),
			entsql.Avg(t.C("latency_ms")),
		).
		From(t).
		GroupBy(t.C(column)).
		OrderBy(t.C(column)).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, q, args, rows); err != nil {
		return nil, fmt.Errorf("query LLM usage by %s: %w", column, err)
	}
	defer rows.Close()

	var out []LLMUsageStats
	for rows.Next() {
		var (
			key              string
			calls, in, outTk sql.NullInt64
			avg              sql.NullFloat64
		)
		if err := rows.Scan(&key, &calls, &in, &outTk, &avg); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		st := LLMUsageStats{
			Calls:        int(calls.Int64),
			InputTokens:  int(in.Int64),
			OutputTokens: int(outTk.Int64),
			AvgLatencyMs: int64(avg.Float64),
		}
		if column == "purpose" {
			st.Purpose = key
		} else {
			st.Model = key
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (r *eventRepo) queryEvents(ctx context.Context, q string, args []any) ([]LLMRequestEventData, error) {
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, q, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LLMRequestEventData
	for rows.Next() {
		var (
			e                   LLMRequestEventData
			errMsg, reqB, respB sql.NullString
		)
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose,
			&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
			&errMsg, &reqB, &respB,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		e.ErrorMessage = errMsg.String
		e.RequestBody = reqB.String
		e.ResponseBody = respB.String
		out = append(out, e)
	}
	return out, rows.Err()
}
