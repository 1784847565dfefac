package problemgen

import (
	"fmt"
	"strings"
	"sync"
)

// buildDedup formats prior problems for the prompt, respecting the max limit.
// Returns "None" if there are no prior problems.
func buildDedup(prior []string, max int) string {
	if len(prior) == 0 {
		return "None"
	}

	// Keep only the most recent N problems.
	if max > 0 && len(prior) > max {
		prior = prior[len(prior)-max:]
	}

	var b strings.Builder
	for i, q := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}

// history remembers the most recent problem texts.
type history struct {
	mu    sync.Mutex
	max   int
	items []string
}

func (h *history) add(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, text)
	if h.max > 0 && len(h.items) > h.max {
		h.items = h.items[len(h.items)-h.max:]
	}
}

func (h *history) snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.items...)
}
