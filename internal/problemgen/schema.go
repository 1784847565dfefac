package problemgen

import "github.com/abhisek/mathdrill/internal/llm"

// ProblemSchema defines the JSON schema for LLM problem generation responses.
var ProblemSchema = &llm.Schema{
	Name:        "math-problem",
	Description: "A single math word problem with its numeric answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"problem_text": map[string]any{
				"type":        "string",
				"description": "The word problem shown to the learner, in plain text",
			},
			"final_answer": map[string]any{
				"type":        "number",
				"description": "The correct numeric answer, with no units",
			},
		},
		"required":             []any{"problem_text", "final_answer"},
		"additionalProperties": false,
	},
}
