package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/store"
	"github.com/abhisek/mathdrill/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // Default purple
	MascotCelebrating                      // Gold, star eyes; high accuracy
	MascotAlert                            // Orange, exclamation; low accuracy
)

// Accuracy thresholds for the mascot, applied once enough answers exist.
const (
	mascotMinAnswers    = 5
	celebrateAccuracy   = 0.8
	encourageAccuracy   = 0.5
)

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ▽  │
│ ±×÷ │
└─────┘`

const mascotCelebrating = `┌─────┐
│ ★ ★ │
│  ▿  │
│ ±×÷ │
└─╥═╥─┘
  ╚═╝`

const mascotAlert = `┌─────┐
│ ◉ ◉ │ !
│  ▽  │
│ ±×÷ │
└─────┘`

// mascotFor picks a variant from lifetime accuracy.
func mascotFor(stats store.PracticeStats) MascotVariant {
	if stats.Submissions < mascotMinAnswers {
		return MascotIdle
	}
	switch acc := stats.Accuracy(); {
	case acc >= celebrateAccuracy:
		return MascotCelebrating
	case acc < encourageAccuracy:
		return MascotAlert
	default:
		return MascotIdle
	}
}

// RenderMascot returns the mascot ASCII art for the given variant.
func RenderMascot(v MascotVariant) string {
	art := mascotIdle
	fg := theme.Primary

	switch v {
	case MascotCelebrating:
		art = mascotCelebrating
		fg = theme.ArcadeYellow
	case MascotAlert:
		art = mascotAlert
		fg = theme.Accent
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
