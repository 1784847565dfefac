package problemgen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators is the ordered list of validators to run on every
	// generated problem. They execute in order; the first failure
	// stops the pipeline.
	Validators []Validator

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// Level and Topic are included in the prompt.
	Level string
	Topic string

	// MaxPriorProblems is the maximum number of prior problems
	// to include in the prompt for deduplication.
	MaxPriorProblems int
}

// DefaultConfig returns a Config with the standard validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&AnswerValidator{},
		},
		MaxTokens:        512,
		Temperature:      0.7,
		Level:            "Primary 5 Singapore",
		Topic:            "whole numbers",
		MaxPriorProblems: 8,
	}
}
