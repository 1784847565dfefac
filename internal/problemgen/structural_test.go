package problemgen

import (
	"math"
	"strings"
	"testing"
)

func validProblem() *Problem {
	return &Problem{
		Text:   "A baker made 1250 buns and sold 875. How many buns were left?",
		Answer: 375,
	}
}

func TestStructural_ValidProblem(t *testing.T) {
	v := &StructuralValidator{}
	if err := v.Validate(validProblem()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestStructural_EmptyText(t *testing.T) {
	v := &StructuralValidator{}
	p := validProblem()
	p.Text = "   "
	err := v.Validate(p)
	if err == nil {
		t.Fatal("expected error for empty problem_text")
	}
	if err.Validator != "structural" {
		t.Errorf("expected validator %q, got %q", "structural", err.Validator)
	}
}

func TestStructural_TextTooLong(t *testing.T) {
	v := &StructuralValidator{}
	p := validProblem()
	p.Text = strings.Repeat("a", maxProblemTextLen+1)
	if err := v.Validate(p); err == nil {
		t.Fatal("expected error for long problem_text")
	}
}

func TestAnswerValidator(t *testing.T) {
	v := &AnswerValidator{}

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		p := validProblem()
		p.Answer = bad
		if err := v.Validate(p); err == nil {
			t.Errorf("expected error for answer %v", bad)
		}
	}

	for _, good := range []float64{0, -12, 3.75, 1e6} {
		p := validProblem()
		p.Answer = good
		if err := v.Validate(p); err != nil {
			t.Errorf("unexpected error for answer %v: %v", good, err)
		}
	}
}
