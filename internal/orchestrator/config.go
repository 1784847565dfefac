package orchestrator

import (
	"os"
	"time"
)

// TimeoutFromEnv reads MATHDRILL_REQUEST_TIMEOUT (a Go duration string),
// falling back to DefaultTimeout when unset or invalid.
func TimeoutFromEnv() time.Duration {
	v := os.Getenv("MATHDRILL_REQUEST_TIMEOUT")
	if v == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}
