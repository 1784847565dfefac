// Package practice implements the practice screen: one word problem at a
// time, with feedback, retry, and the skip confirmation dialog.
package practice

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	drill "github.com/abhisek/mathdrill/internal/practice"
	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/ui/components"
	"github.com/abhisek/mathdrill/internal/ui/layout"
)

const spinnerInterval = 120 * time.Millisecond

// PracticeScreen renders a practice.Controller and routes keys to it.
// Controller calls block, so each one runs inside a tea.Cmd.
type PracticeScreen struct {
	ctrl    *drill.Controller
	input   components.TextInput
	pending bool // a command is running
	frame   int
	notice  string
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)

// New creates a PracticeScreen around ctrl.
func New(ctrl *drill.Controller) *PracticeScreen {
	return &PracticeScreen{
		ctrl:  ctrl,
		input: components.NewTextInput("Type your answer...", true, 24),
	}
}

func (s *PracticeScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *PracticeScreen) Title() string {
	return "Practice"
}

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	snap := s.ctrl.Snapshot()
	switch {
	case snap.AwaitingConfirmation:
		return []layout.KeyHint{
			{Key: "Y", Description: "New problem"},
			{Key: "N", Description: "Keep trying"},
		}
	case s.busy(snap):
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
		}
	}

	hints := []layout.KeyHint{{Key: "N", Description: "New problem"}}
	if snap.Current != nil {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Submit"})
	}
	if snap.HasError() {
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Retry"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *PracticeScreen) busy(snap drill.Snapshot) bool {
	return s.pending || snap.Busy
}

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case actionDoneMsg:
		return s.handleDone(msg)

	case spinnerTickMsg:
		if !s.pending {
			return s, nil
		}
		s.frame++
		return s, spinnerTick()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *PracticeScreen) handleDone(msg actionDoneMsg) (screen.Screen, tea.Cmd) {
	s.pending = false

	switch {
	case msg.Err == nil:
	case errors.Is(msg.Err, drill.ErrInvalidAnswer):
		s.notice = "Please enter a number."
	case errors.Is(msg.Err, drill.ErrBusy), errors.Is(msg.Err, drill.ErrNothingToRetry):
	default:
		s.notice = msg.Err.Error()
	}

	snap := s.ctrl.Snapshot()
	switch msg.Kind {
	case actionGenerate, actionConfirm:
		if snap.Phase == drill.PhaseReady {
			s.input.Reset()
		}
	case actionSubmit, actionRetry:
		if snap.Phase == drill.PhaseResolved {
			s.input.Submit(snap.LastOutcome == drill.VerdictCorrect)
		}
	}
	return s, nil
}

func (s *PracticeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	snap := s.ctrl.Snapshot()

	if key == "esc" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	// Skip confirmation dialog.
	if snap.AwaitingConfirmation {
		switch key {
		case "y", "Y", "enter":
			return s, s.run(actionConfirm, s.ctrl.ConfirmSkip)
		case "n", "N":
			s.ctrl.CancelSkip()
		}
		return s, nil
	}

	// Controls are disabled while a call is outstanding.
	if s.busy(snap) {
		return s, nil
	}

	switch key {
	case "n", "N":
		s.notice = ""
		return s, s.run(actionGenerate, func(ctx context.Context) error {
			_, err := s.ctrl.RequestGenerate(ctx)
			return err
		})
	case "r", "R":
		if snap.HasError() {
			s.notice = ""
			return s, s.run(actionRetry, s.ctrl.Retry)
		}
		return s, nil
	case "enter":
		return s.submit(snap)
	}

	if snap.Current == nil {
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.ctrl.SetAnswer(s.input.Value())
	return s, cmd
}

func (s *PracticeScreen) submit(snap drill.Snapshot) (screen.Screen, tea.Cmd) {
	if snap.Current == nil {
		return s, nil
	}
	raw := s.input.Value()
	if _, err := problemgen.ParseAnswer(raw); err != nil {
		s.notice = "Please enter a number."
		return s, nil
	}
	s.notice = ""
	return s, s.run(actionSubmit, func(ctx context.Context) error {
		return s.ctrl.Submit(ctx, raw)
	})
}

// run executes fn off the UI loop and reports back with actionDoneMsg.
func (s *PracticeScreen) run(kind actionKind, fn func(ctx context.Context) error) tea.Cmd {
	s.pending = true
	s.frame = 0
	return tea.Batch(
		func() tea.Msg {
			return actionDoneMsg{Kind: kind, Err: fn(context.Background())}
		},
		spinnerTick(),
	)
}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}
