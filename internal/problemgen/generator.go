package problemgen

import "context"

// Generator produces math word problems.
type Generator interface {
	// NewProblem produces a single validated problem. It takes no input:
	// level and topic come from the generator's configuration.
	NewProblem(ctx context.Context) (*Problem, error)
}
