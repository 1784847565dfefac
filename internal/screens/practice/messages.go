package practice

import "time"

// actionKind names the controller call a command ran.
type actionKind int

const (
	actionGenerate actionKind = iota
	actionConfirm
	actionSubmit
	actionRetry
)

// actionDoneMsg is sent when a controller call returns.
type actionDoneMsg struct {
	Kind actionKind
	Err  error
}

// spinnerTickMsg is sent at short intervals to animate the busy indicator.
type spinnerTickMsg time.Time
