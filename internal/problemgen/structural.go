package problemgen

import (
	"fmt"
	"math"
	"strings"
)

// maxProblemTextLen bounds the problem statement length.
const maxProblemTextLen = 1000

// StructuralValidator checks that the problem text is present and within
// length limits.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(p *Problem) *ValidationError {
	if strings.TrimSpace(p.Text) == "" {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "problem_text is empty",
		}
	}
	if len(p.Text) > maxProblemTextLen {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("problem_text exceeds %d characters", maxProblemTextLen),
		}
	}
	return nil
}

// AnswerValidator checks that the answer is a finite number.
type AnswerValidator struct{}

func (v *AnswerValidator) Name() string { return "answer" }

func (v *AnswerValidator) Validate(p *Problem) *ValidationError {
	if math.IsNaN(p.Answer) || math.IsInf(p.Answer, 0) {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "final_answer is not a finite number",
		}
	}
	return nil
}
