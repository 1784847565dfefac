package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	drill "github.com/abhisek/mathdrill/internal/practice"
	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/screens/history"
	"github.com/abhisek/mathdrill/internal/screens/placeholder"
	practicescreen "github.com/abhisek/mathdrill/internal/screens/practice"
	"github.com/abhisek/mathdrill/internal/store"
	"github.com/abhisek/mathdrill/internal/ui/components"
	"github.com/abhisek/mathdrill/internal/ui/layout"
)

// Deps are the home screen's collaborators. Either may be nil.
type Deps struct {
	// NewController builds a practice controller for each practice visit.
	// Nil when no LLM provider is configured.
	NewController func() *drill.Controller

	Sessions store.SessionRepo
}

type statsLoadedMsg struct {
	Stats store.PracticeStats
	Err   error
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	deps       Deps
	menu       components.Menu
	menuLabels []string
	stats      store.PracticeStats
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	menuLabels := []string{"PRACTICE", "HISTORY", "QUIT"}

	items := []components.MenuItem{
		{Label: menuLabels[0], Action: func() tea.Cmd {
			if deps.NewController == nil {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: placeholder.New("Practice",
						"No LLM provider is configured.\nSet GEMINI_API_KEY, ANTHROPIC_API_KEY,\nor OPENAI_API_KEY and restart.")}
				}
			}
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: practicescreen.New(deps.NewController())}
			}
		}},
		{Label: menuLabels[1], Action: func() tea.Cmd {
			if deps.Sessions == nil {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: placeholder.New("History", "History is unavailable\nwithout a database.")}
				}
			}
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(deps.Sessions)}
			}
		}},
		{Label: menuLabels[2], Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		deps:       deps,
		menu:       components.NewMenu(items),
		menuLabels: menuLabels,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) loadStats() tea.Cmd {
	repo := h.deps.Sessions
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		stats, err := repo.Stats(context.Background())
		return statsLoadedMsg{Stats: stats, Err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		if msg.Err == nil {
			h.stats = msg.Stats
		}
		return h, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		h.menu, cmd = h.menu.Update(msg)
		return h, cmd
	}
	return h, nil
}

// Resume reloads totals after returning from practice.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	termHeight := height + 8
	compact := layout.IsCompactHeight(termHeight) || layout.IsCompactWidth(width)

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))

	if !compact {
		sections = append(sections, renderMascotBox(mascotFor(h.stats), cw))
	}

	if h.deps.NewController == nil {
		sections = append(sections, renderLLMBanner(cw))
	}

	sections = append(sections, renderStatsBar(h.stats, cw, compact))
	sections = append(sections, renderArcadeMenu(h.menuLabels, h.menu.Selected, cw, compact))

	content := strings.Join(sections, "\n\n")
	return components.CabinetFrame(content, width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
