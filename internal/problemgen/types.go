package problemgen

// Problem is a generated word problem and its correct numeric answer.
type Problem struct {
	// Text is the problem statement shown to the learner, in plain text.
	Text string

	// Answer is the exact correct answer as returned by the generator.
	// It is never rounded or coerced.
	Answer float64
}

// GenerateInput holds the context included in a generation prompt.
type GenerateInput struct {
	// Level is the curriculum level, e.g. "Primary 5 Singapore".
	Level string

	// Topic narrows the kind of numbers used, e.g. "whole numbers".
	Topic string

	// PriorProblems contains the text of problems already generated in
	// this process, oldest first. Used for deduplication in the prompt.
	PriorProblems []string
}
