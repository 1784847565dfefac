// Package feedback asks an LLM to explain a learner's answer to a problem.
package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/mathdrill/internal/llm"
	"github.com/abhisek/mathdrill/internal/problemgen"
)

// FallbackText is returned when the model produces no usable feedback.
const FallbackText = "Good try!"

// Input is what the feedback prompt is built from.
type Input struct {
	ProblemText   string
	CorrectAnswer float64
	UserAnswer    float64
}

// Source produces explanatory feedback text for a submitted answer.
type Source interface {
	Feedback(ctx context.Context, in Input) (string, error)
}

// Config controls the LLM request.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns recommended defaults.
func DefaultConfig() Config {
	return Config{MaxTokens: 400, Temperature: 0.5}
}

// LLMSource implements Source using an LLM provider.
type LLMSource struct {
	provider llm.Provider
	config   Config
}

// New creates an LLMSource.
func New(provider llm.Provider, cfg Config) *LLMSource {
	return &LLMSource{provider: provider, config: cfg}
}

// Feedback returns the model's feedback. Transport and status failures are
// returned as errors; a response that carries no usable text yields
// FallbackText instead.
func (s *LLMSource) Feedback(ctx context.Context, in Input) (string, error) {
	ctx = llm.WithPurpose(ctx, "feedback")

	req := llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildPrompt(in)},
		},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		var invalid *llm.ErrInvalidResponse
		var truncated *llm.ErrMaxTokensExceeded
		if errors.As(err, &invalid) || errors.As(err, &truncated) {
			return FallbackText, nil
		}
		return "", fmt.Errorf("feedback generation failed: %w", err)
	}

	text := extractText(resp.Content)
	if text == "" {
		return FallbackText, nil
	}
	return text, nil
}

func buildPrompt(in Input) string {
	return fmt.Sprintf(
		"A student answered this math problem: %q. The correct answer is %s. The student's answer was %s. Give helpful feedback.",
		in.ProblemText,
		problemgen.FormatAnswer(in.CorrectAnswer),
		problemgen.FormatAnswer(in.UserAnswer),
	)
}

// extractText unwraps a JSON string response, falling back to the raw bytes.
func extractText(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(content))
}
