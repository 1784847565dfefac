package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ServerMessage reports the rate limit as a remote failure.
func (e *ErrRateLimit) ServerMessage() string {
	return "The problem service is busy. Please wait a moment."
}

// ErrProviderStatus indicates the provider answered with a non-success
// HTTP status other than 429.
type ErrProviderStatus struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ErrProviderStatus) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("LLM provider returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("LLM provider returned %d: %v", e.StatusCode, e.Err)
}

func (e *ErrProviderStatus) Unwrap() error { return e.Err }

// ServerMessage returns a short description of the failed status.
func (e *ErrProviderStatus) ServerMessage() string {
	text := http.StatusText(e.StatusCode)
	if text == "" {
		text = "error"
	}
	return fmt.Sprintf("The problem service responded with %d %s.", e.StatusCode, text)
}

// ErrInvalidResponse indicates the LLM returned content that does not
// conform to the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider could not be reached or
// failed before producing a response.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// mapStatusError converts an HTTP status reported by a provider SDK.
func mapStatusError(status int, message string, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{Err: err}
	case status >= 400:
		return &ErrProviderStatus{StatusCode: status, Message: message, Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

// textContent wraps a plain-text completion as a JSON string so Response.Content
// is always valid JSON.
func textContent(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
