package problemgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/abhisek/mathdrill/internal/llm"
)

// ErrNoJSON is returned when the response contains no JSON object.
var ErrNoJSON = errors.New("response did not contain a JSON object")

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	history  *history
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{
		provider: provider,
		config:   cfg,
		history:  &history{max: cfg.MaxPriorProblems},
	}
}

// problemOutput is the raw LLM response before validation.
type problemOutput struct {
	ProblemText string          `json:"problem_text"`
	FinalAnswer json.RawMessage `json:"final_answer"`
}

// NewProblem produces a single problem.
func (g *LLMGenerator) NewProblem(ctx context.Context) (*Problem, error) {
	ctx = llm.WithPurpose(ctx, "problem-gen")

	input := GenerateInput{
		Level:         g.config.Level,
		Topic:         g.config.Topic,
		PriorProblems: g.history.snapshot(),
	}

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
		},
		Schema:      ProblemSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	p, err := decodeProblem(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	// Run validators in order.
	for _, v := range g.config.Validators {
		if verr := v.Validate(p); verr != nil {
			return nil, verr
		}
	}

	g.history.add(p.Text)
	return p, nil
}

// decodeProblem accepts either the structured object or a text response
// with the object embedded in it.
func decodeProblem(content json.RawMessage) (*Problem, error) {
	var raw problemOutput
	if err := json.Unmarshal(content, &raw); err != nil {
		var text string
		if json.Unmarshal(content, &text) != nil {
			text = string(content)
		}
		match := jsonObjectRe.FindString(text)
		if match == "" {
			return nil, ErrNoJSON
		}
		if err := json.Unmarshal([]byte(match), &raw); err != nil {
			return nil, err
		}
	}

	answer, err := decodeAnswer(raw.FinalAnswer)
	if err != nil {
		return nil, err
	}
	return &Problem{Text: raw.ProblemText, Answer: answer}, nil
}

// decodeAnswer reads final_answer as a JSON number, or as a string holding one.
func decodeAnswer(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, errors.New("final_answer is missing")
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("final_answer is not a number: %s", raw)
	}
	return ParseAnswer(s)
}
