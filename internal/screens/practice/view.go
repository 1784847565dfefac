package practice

import (
	"strings"

	"charm.land/lipgloss/v2"

	drill "github.com/abhisek/mathdrill/internal/practice"
	"github.com/abhisek/mathdrill/internal/ui/components"
	"github.com/abhisek/mathdrill/internal/ui/theme"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (s *PracticeScreen) View(width, height int) string {
	snap := s.ctrl.Snapshot()
	if snap.AwaitingConfirmation {
		return renderSkipConfirm(width)
	}

	cw := components.ContentWidth(width)
	var sections []string

	switch {
	case snap.Current != nil:
		sections = append(sections, renderProblem(snap.Current.ProblemText, cw, width))
		sections = append(sections, s.renderAnswer(snap, width))
	case snap.Phase == drill.PhaseGenerating:
		sections = append(sections, s.renderBusy("Generating problem...", width))
	case !snap.HasError():
		sections = append(sections, centered(width).
			Foreground(theme.TextDim).
			Render("Press N to generate a new problem."))
	}

	if snap.Phase == drill.PhaseResolved {
		sections = append(sections, renderResult(snap, cw, width))
	}
	if snap.HasError() {
		sections = append(sections, renderError(snap.ErrorText(), width))
	}
	if s.notice != "" {
		sections = append(sections, centered(width).Foreground(theme.Accent).Render(s.notice))
	}

	return "\n" + strings.Join(sections, "\n\n")
}

func centered(width int) lipgloss.Style {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
}

func renderProblem(text string, cw, width int) string {
	body := lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Width(cw - 6).
		Render(text)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, components.ArcadeCard(body, cw))
}

func (s *PracticeScreen) renderAnswer(snap drill.Snapshot, width int) string {
	if snap.Phase == drill.PhaseSubmitting {
		return s.renderBusy("Checking your answer...", width)
	}
	if snap.Phase == drill.PhaseGenerating {
		return s.renderBusy("Generating problem...", width)
	}
	return centered(width).Render("Answer: " + s.input.View())
}

func (s *PracticeScreen) renderBusy(label string, width int) string {
	frame := spinnerFrames[s.frame%len(spinnerFrames)]
	return centered(width).
		Foreground(theme.TextDim).
		Render(lipgloss.NewStyle().Foreground(theme.Secondary).Render(frame) + " " + label)
}

func renderResult(snap drill.Snapshot, cw, width int) string {
	var b strings.Builder
	if snap.LastOutcome == drill.VerdictCorrect {
		b.WriteString(centered(width).Inherit(theme.Correct).Render("Correct!"))
	} else {
		b.WriteString(centered(width).Inherit(theme.Incorrect).Render("Not quite"))
	}
	if snap.FeedbackText != "" {
		b.WriteString("\n\n")
		fb := theme.Feedback.Width(cw).Render(snap.FeedbackText)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, fb))
	}
	return b.String()
}

func renderError(msg string, width int) string {
	return centered(width).
		Foreground(theme.Error).
		Render(msg + "\n\nPress R to retry.")
}

// renderSkipConfirm renders the skip confirmation dialog.
func renderSkipConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(centered(width).
		Foreground(theme.Text).
		Bold(true).
		Render("Skip this problem?"))
	b.WriteString("\n")
	b.WriteString(centered(width).
		Foreground(theme.TextDim).
		Render("You haven't answered it correctly yet."))
	b.WriteString("\n\n")

	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		components.ArcadeButton("[Y] New problem", true, 22),
		"  ",
		components.ArcadeButton("[N] Keep trying", false, 22),
	)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, buttons))

	return b.String()
}
