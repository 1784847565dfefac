package practice

import "context"

// needsConfirmationLocked reports whether a generate request would
// discard a problem that is unanswered or was answered incorrectly.
func (c *Controller) needsConfirmationLocked() bool {
	return c.state.Current != nil && c.state.LastOutcome != VerdictCorrect
}

// Gate checks a generate request against the skip rule. When the request
// must be confirmed it raises the awaiting-confirmation flag and returns
// true; the caller then waits for ConfirmSkip or CancelSkip. When it
// returns false the caller may call Generate directly.
func (c *Controller) Gate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.needsConfirmationLocked() {
		c.awaiting = true
		return true
	}
	return false
}

// RequestGenerate is a generate request routed through the gate. It
// returns gated=true without calling out when confirmation is needed.
func (c *Controller) RequestGenerate(ctx context.Context) (gated bool, err error) {
	if c.busy() {
		return false, ErrBusy
	}
	if c.Gate() {
		return true, nil
	}
	return false, c.Generate(ctx)
}

// ConfirmSkip accepts the skip dialog and generates a new problem exactly
// as an ungated request would.
func (c *Controller) ConfirmSkip(ctx context.Context) error {
	c.mu.Lock()
	if !c.awaiting {
		c.mu.Unlock()
		return ErrNotAwaitingConfirmation
	}
	c.awaiting = false
	c.mu.Unlock()

	c.logger.Debug("skip confirmed")
	return c.Generate(ctx)
}

// CancelSkip dismisses the skip dialog. The state is left unchanged.
func (c *Controller) CancelSkip() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.awaiting = false
}

// AwaitingConfirmation reports whether the skip dialog is shown.
func (c *Controller) AwaitingConfirmation() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.awaiting
}
