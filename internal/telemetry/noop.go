package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/mathdrill/internal/orchestrator"
)

// NoOpExporter is a recorder that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (NoOpExporter) RecordCall(context.Context, string, orchestrator.ErrorKind, time.Duration) {}

func (NoOpExporter) Close(context.Context) error {
	return nil
}

// Setup returns an OTLP exporter when configured, and a no-op recorder
// otherwise. Setup never fails; exporter errors are returned alongside
// the no-op fallback so the caller can log them.
func Setup(ctx context.Context, cfg Config, version string) (Recorder, error) {
	exp, err := NewExporter(ctx, cfg, version)
	if err != nil {
		if errors.Is(err, ErrDisabled) {
			return NewNoOpExporter(), nil
		}
		return NewNoOpExporter(), err
	}
	return exp, nil
}
