package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/ui/theme"
)

// ProgressBar displays a labelled ratio, such as answer accuracy.
type ProgressBar struct {
	Label       string
	Ratio       float64 // 0..1, clamped when rendered
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, ratio float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Ratio:       ratio,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var b strings.Builder

	if p.Label != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label))
		b.WriteString("  ")
	}

	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // "  100%"
	}

	barWidth := p.Width - lipgloss.Width(b.String()) - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	ratio := min(max(p.Ratio, 0), 1)
	filled := int(float64(barWidth) * ratio)

	b.WriteString(theme.ProgressFilled.Render(strings.Repeat(" ", filled)))
	b.WriteString(theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled)))

	if p.ShowPercent {
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(ratio*100))))
	}

	return b.String()
}
