package orchestrator

import "time"

// ErrorKind classifies why an orchestrated call did not produce a payload.
type ErrorKind int

const (
	KindNone    ErrorKind = iota // call succeeded
	KindNetwork                  // no response was received
	KindTimeout                  // wait bound exceeded, call aborted
	KindServer                   // a response arrived but reported failure
	KindUnknown                  // anything else, including malformed payloads
)

// String returns the lowercase name used in logs and metrics.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Message returns the learner-facing description of the failure kind.
func (k ErrorKind) Message() string {
	switch k {
	case KindNone:
		return ""
	case KindNetwork:
		return "Could not reach the problem service. Check your connection and try again."
	case KindTimeout:
		return "The request took too long and was cancelled. Please try again."
	case KindServer:
		return "The service reported a problem. Please try again."
	default:
		return "Something unexpected went wrong. Please try again."
	}
}

// Outcome is the classified result of one orchestrated call.
type Outcome[T any] struct {
	// Value is the decoded payload, returned unchanged. Zero when Kind != KindNone.
	Value T

	// Kind is KindNone on success.
	Kind ErrorKind

	// Message is the failure message reported by the remote side, when
	// Kind is KindServer and one was available.
	Message string

	// Err is the underlying error, kept for logging only.
	Err error

	// Latency is the wall-clock duration of the call.
	Latency time.Duration
}

// OK reports whether the call succeeded.
func (o Outcome[T]) OK() bool {
	return o.Kind == KindNone
}
