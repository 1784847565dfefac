package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/store"
	"github.com/abhisek/mathdrill/internal/ui/layout"
	"github.com/abhisek/mathdrill/internal/ui/theme"
)

const historyLimit = 50

type historyLoadedMsg struct {
	Sessions    []store.Session
	Submissions map[string][]store.Submission // sessionID → submissions
	Err         error
}

// HistoryScreen displays past problems and the answers given to them.
type HistoryScreen struct {
	repo        store.SessionRepo
	sessions    []store.Session
	submissions map[string][]store.Submission
	selected    int
	expanded    map[int]bool
	loaded      bool
	errMsg      string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(repo store.SessionRepo) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		sessions, err := s.repo.ListSessions(ctx, store.QueryOpts{Limit: historyLimit})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		subs := make(map[string][]store.Submission, len(sessions))
		for _, sess := range sessions {
			list, err := s.repo.ListSubmissions(ctx, sess.ID)
			if err != nil {
				return historyLoadedMsg{Err: err}
			}
			subs[sess.ID] = list
		}

		return historyLoadedMsg{Sessions: sessions, Submissions: subs}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
			s.submissions = msg.Submissions
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

// solved reports whether any submission was correct.
func solved(subs []store.Submission) bool {
	for _, sub := range subs {
		if sub.IsCorrect {
			return true
		}
	}
	return false
}

func truncate(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if n <= 1 || len(r) <= n {
		return text
	}
	return string(r[:n-1]) + "…"
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No problems yet. Start practicing!")
	}

	textWidth := width - 40
	if textWidth < 20 {
		textWidth = 20
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		subs := s.submissions[sess.ID]

		status := lipgloss.NewStyle().Foreground(theme.TextDim).Render("·")
		switch {
		case solved(subs):
			status = lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		case len(subs) > 0:
			status = lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		attempts := fmt.Sprintf("%d attempt", len(subs))
		if len(subs) != 1 {
			attempts += "s"
		}

		line := fmt.Sprintf("%s%s  %s  %s",
			prefix, sess.CreatedAt.Local().Format("Jan 02 15:04"), truncate(sess.ProblemText, textWidth), attempts)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)+" "+status))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(renderDetails(sess, subs, width))
		}
	}

	return b.String()
}

func renderDetails(sess store.Session, subs []store.Submission, width int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	var b strings.Builder

	body := lipgloss.NewStyle().Foreground(theme.Text).Width(min(width-8, 70)).
		Render(sess.ProblemText + "\n" + dim.Render("Answer: "+problemgen.FormatAnswer(sess.CorrectAnswer)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, body))
	b.WriteString("\n")

	if len(subs) == 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			dim.Italic(true).Render("    Not answered")))
		b.WriteString("\n")
		return b.String()
	}

	for _, sub := range subs {
		verdict := theme.Incorrect.Render("✗")
		if sub.IsCorrect {
			verdict = theme.Correct.Render("✓")
		}
		line := fmt.Sprintf("    %s %s  %s", verdict, problemgen.FormatAnswer(sub.UserAnswer),
			dim.Render(truncate(sub.FeedbackText, 60)))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
		b.WriteString("\n")
	}
	return b.String()
}
