package orchestrator

import (
	"context"
	"errors"
	"net"
	"net/url"
	"syscall"
)

// ServerReporter is implemented by errors describing a response that the
// remote side sent back as a failure (non-success status, explicit error
// field, rejected write).
type ServerReporter interface {
	ServerMessage() string
}

// Classify maps an operation error to an ErrorKind and, for server
// failures, the reported message.
func Classify(err error) (ErrorKind, string) {
	if err == nil {
		return KindNone, ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout, ""
	}

	var reporter ServerReporter
	if errors.As(err, &reporter) {
		return KindServer, reporter.ServerMessage()
	}

	if isNetworkError(err) {
		return KindNetwork, ""
	}
	return KindUnknown, ""
}

func isNetworkError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
