package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/screens/placeholder"
	"github.com/abhisek/mathdrill/internal/store"
)

type statsRepo struct {
	store.SessionRepo
	stats store.PracticeStats
}

func (r statsRepo) Stats(context.Context) (store.PracticeStats, error) {
	return r.stats, nil
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestMascotFor(t *testing.T) {
	tests := []struct {
		name  string
		stats store.PracticeStats
		want  MascotVariant
	}{
		{"too few answers", store.PracticeStats{Submissions: 2, Correct: 2}, MascotIdle},
		{"high accuracy", store.PracticeStats{Submissions: 10, Correct: 9}, MascotCelebrating},
		{"low accuracy", store.PracticeStats{Submissions: 10, Correct: 3}, MascotAlert},
		{"middling", store.PracticeStats{Submissions: 10, Correct: 6}, MascotIdle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mascotFor(tt.stats); got != tt.want {
				t.Errorf("mascotFor = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHome_LoadsStats(t *testing.T) {
	h := New(Deps{Sessions: statsRepo{stats: store.PracticeStats{Sessions: 4, Submissions: 6, Correct: 5}}})

	cmd := h.Init()
	if cmd == nil {
		t.Fatal("expected stats command")
	}
	scr, _ := h.Update(cmd())
	view := scr.View(120, 40)
	if !strings.Contains(view, "4 PROBLEMS") || !strings.Contains(view, "5 CORRECT") {
		t.Errorf("expected totals in view:\n%s", view)
	}

	if h.Resume() == nil {
		t.Error("expected Resume to reload stats")
	}
}

func TestHome_PracticeWithoutProvider(t *testing.T) {
	h := New(Deps{})
	if h.Init() != nil {
		t.Error("expected no stats command without a repo")
	}
	if !strings.Contains(h.View(120, 40), "LLM API key") {
		t.Error("expected provider banner")
	}

	_, cmd := h.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*placeholder.PlaceholderScreen); !ok {
		t.Errorf("expected placeholder screen, got %T", push.Screen)
	}
}

func TestHome_Title(t *testing.T) {
	if New(Deps{}).Title() != "Home" {
		t.Error("unexpected title")
	}
}
