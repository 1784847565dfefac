package problemgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a math teacher writing practice word problems.

Rules:
- Write exactly one word problem at the requested level using the requested kind of numbers.
- The problem must be self-contained and have exactly one numeric answer.
- Use plain text only. No LaTeX, no Markdown.
- The final answer is a number with no units, commas, or words.
- Reply ONLY in this JSON format: {"problem_text": "...", "final_answer": ...}
- Do not repeat any problem from the "already asked" list.`

// buildUserMessage constructs the user message from GenerateInput and Config limits.
func buildUserMessage(input GenerateInput, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a %s math word problem involving %s.\n", input.Level, input.Topic)

	b.WriteString("\nAlready asked:\n")
	b.WriteString(buildDedup(input.PriorProblems, cfg.MaxPriorProblems))

	return b.String()
}
