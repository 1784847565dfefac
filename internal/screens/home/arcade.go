package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/store"
	"github.com/abhisek/mathdrill/internal/ui/components"
	"github.com/abhisek/mathdrill/internal/ui/theme"
)

const arcadeTitleFull = `╔╦╗╔═╗╔╦╗╦ ╦╔╦╗╦═╗╦╦  ╦  
║║║╠═╣ ║ ╠═╣ ║║╠╦╝║║  ║  
╩ ╩╩ ╩ ╩ ╩ ╩═╩╝╩╚═╩╩═╝╩═╝`

const arcadeTitleCompact = "M · A · T · H · D · R · I · L · L"

const subtitle = "Primary 5 word problems"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.ArcadeYellow).
		Bold(true)

	title := arcadeTitleFull
	if compact {
		title = arcadeTitleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title) + "\n" + theme.Subtitle.Render(subtitle))
}

// renderStatsBar renders lifetime totals in a bordered box matching content width.
func renderStatsBar(stats store.PracticeStats, cw int, compact bool) string {
	problemStyle := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	correctStyle := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	answerStyle := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)

	var line string
	if compact {
		line = fmt.Sprintf("%s %s %s",
			problemStyle.Render(fmt.Sprintf("?%d", stats.Sessions)),
			answerStyle.Render(fmt.Sprintf("✎%d", stats.Submissions)),
			correctStyle.Render(fmt.Sprintf("✓%d", stats.Correct)),
		)
	} else {
		line = fmt.Sprintf("%s  %s  %s",
			problemStyle.Render(fmt.Sprintf("%d PROBLEMS", stats.Sessions)),
			answerStyle.Render(fmt.Sprintf("%d ANSWERS", stats.Submissions)),
			correctStyle.Render(fmt.Sprintf("%d CORRECT", stats.Correct)),
		)
		if stats.Submissions > 0 {
			bar := components.NewProgressBar("Accuracy", stats.Accuracy(), true, cw-6)
			line += "\n" + bar.View()
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw - 2). // account for border chars
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(line)
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderArcadeMenu renders each menu item as a fixed-width button.
func renderArcadeMenu(items []string, selected int, cw int, compact bool) string {
	var lines []string
	for i, label := range items {
		if compact {
			lines = append(lines, renderCompactItem(label, i == selected))
			continue
		}
		lines = append(lines, components.ArcadeButton(label, i == selected, buttonWidth))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

// renderCompactItem renders a menu item as a plain text line for small
// terminals where bordered buttons would overflow.
func renderCompactItem(label string, selected bool) string {
	if selected {
		return lipgloss.NewStyle().
			Foreground(theme.BgDark).
			Background(theme.ArcadeYellow).
			Bold(true).
			Render(" ▸ " + label + " ")
	}
	return lipgloss.NewStyle().
		Foreground(theme.Text).
		Render("   " + label)
}

// renderLLMBanner renders a warning banner when no LLM API key is configured.
func renderLLMBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ Set an LLM API key to start practicing (see mathdrill --help)")
}

// renderMascotBox renders the mascot centered in a box matching content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}
