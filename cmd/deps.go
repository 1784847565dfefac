package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/abhisek/mathdrill/internal/feedback"
	"github.com/abhisek/mathdrill/internal/llm"
	"github.com/abhisek/mathdrill/internal/orchestrator"
	"github.com/abhisek/mathdrill/internal/practice"
	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/store"
	"github.com/abhisek/mathdrill/internal/telemetry"
	"github.com/spf13/cobra"
)

// services holds everything the TUI and the API share.
type services struct {
	store    *store.Store
	recorder telemetry.Recorder
	orch     *orchestrator.Orchestrator

	// Nil when no LLM provider is configured.
	provider llm.Provider
	problems problemgen.Generator
	feedback feedback.Source

	logger *slog.Logger
}

// buildServices opens the store and wires the provider, sources and
// orchestrator. A missing provider is not an error; check s.provider.
func buildServices(cmd *cobra.Command, logger *slog.Logger) (*services, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openStore(cmd)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	recorder, err := telemetry.Setup(ctx, telemetry.LoadConfig(), version)
	if err != nil {
		logger.Warn("telemetry unavailable, metrics disabled", "error", err)
	}

	s := &services{
		store:    st,
		recorder: recorder,
		orch: orchestrator.New(
			orchestrator.WithTimeout(orchestrator.TimeoutFromEnv()),
			orchestrator.WithRecorder(recorder),
			orchestrator.WithLogger(logger),
		),
		logger: logger,
	}

	provider, err := llm.NewProviderFromEnv(ctx, st.EventRepo(), logger)
	switch {
	case errors.Is(err, llm.ErrNoProvider):
		logger.Warn("LLM provider not configured, practice is unavailable")
	case err != nil:
		logger.Error("LLM provider failed to initialize", "error", err)
	default:
		s.provider = provider
		s.problems = problemgen.New(provider, problemgen.DefaultConfig())
		s.feedback = feedback.New(provider, feedback.DefaultConfig())
		logger.Info("LLM provider ready", "model", provider.ModelID())
	}

	return s, nil
}

// newController builds a practice controller over the shared services.
func (s *services) newController() *practice.Controller {
	return practice.New(practice.Deps{
		Problems:     s.problems,
		Feedback:     s.feedback,
		Sessions:     s.store.SessionRepo(),
		Orchestrator: s.orch,
		Logger:       s.logger,
	})
}

func (s *services) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(s.recorder.Close(ctx), s.store.Close())
}

// logLevel reads MATHDRILL_LOG_LEVEL (debug, info, warn, error).
func logLevel() slog.Level {
	switch strings.ToLower(os.Getenv("MATHDRILL_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newJSONLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel()}))
}
