// Package orchestrator runs a single outbound call under a bounded wait
// and reduces whatever happens to a classified Outcome. It never retries
// and never lets an error or panic escape as anything other than an
// Outcome.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTimeout is the upper bound on a single call.
const DefaultTimeout = 120 * time.Second

var errPanic = errors.New("operation panicked")

// Recorder receives one observation per orchestrated call.
type Recorder interface {
	RecordCall(ctx context.Context, name string, kind ErrorKind, latency time.Duration)
}

// Orchestrator holds the wait bound and observation sinks shared by calls.
type Orchestrator struct {
	timeout  time.Duration
	recorder Recorder
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Timeout returns the configured wait bound.
func (o *Orchestrator) Timeout() time.Duration {
	return o.timeout
}

type result[T any] struct {
	value T
	err   error
}

// Execute runs op, one outbound call, with the orchestrator's wait bound.
// op must honor ctx cancellation to release its resources promptly once
// the bound is exceeded. The derived context
// is cancelled on every return path, so an operation that honors its
// context is released as soon as Execute returns.
func Execute[T any](ctx context.Context, o *Orchestrator, name string, op func(ctx context.Context) (T, error)) Outcome[T] {
	start := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	// Buffered so the goroutine can always deliver and exit, even after
	// Execute has stopped waiting.
	done := make(chan result[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result[T]{err: fmt.Errorf("%w: %v", errPanic, r)}
			}
		}()
		v, err := op(callCtx)
		done <- result[T]{value: v, err: err}
	}()

	var out Outcome[T]
	select {
	case r := <-done:
		if r.err == nil {
			out.Value = r.value
		} else {
			out.Err = r.err
			out.Kind, out.Message = classifyWithContext(callCtx, r.err)
		}
	case <-callCtx.Done():
		out.Err = callCtx.Err()
		out.Kind, out.Message = classifyWithContext(callCtx, out.Err)
	}
	out.Latency = time.Since(start)

	o.observe(ctx, name, out.Kind, out.Latency, out.Err)
	return out
}

// classifyWithContext prefers the call context's own state: an operation
// that surfaces some transport error after our deadline fired still timed out.
func classifyWithContext(callCtx context.Context, err error) (ErrorKind, string) {
	switch {
	case errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return KindTimeout, ""
	case errors.Is(callCtx.Err(), context.Canceled):
		return KindUnknown, ""
	}
	return Classify(err)
}

func (o *Orchestrator) observe(ctx context.Context, name string, kind ErrorKind, latency time.Duration, err error) {
	if o.recorder != nil {
		o.recorder.RecordCall(ctx, name, kind, latency)
	}

	attrs := []slog.Attr{
		slog.String("op", name),
		slog.String("kind", kind.String()),
		slog.Duration("latency", latency),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		o.logger.LogAttrs(ctx, slog.LevelWarn, "call failed", attrs...)
		return
	}
	o.logger.LogAttrs(ctx, slog.LevelDebug, "call succeeded", attrs...)
}
