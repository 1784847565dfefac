package telemetry

import (
	"os"
	"strconv"
)

// Config holds OTLP metrics exporter configuration.
type Config struct {
	Endpoint string
	Enabled  bool
	Insecure bool
}

// LoadConfig loads telemetry configuration from environment variables.
func LoadConfig() Config {
	enabled, _ := strconv.ParseBool(os.Getenv("MATHDRILL_OTEL_ENABLED"))
	insecure, _ := strconv.ParseBool(os.Getenv("MATHDRILL_OTEL_INSECURE"))

	return Config{
		Endpoint: os.Getenv("MATHDRILL_OTEL_ENDPOINT"),
		Enabled:  enabled,
		Insecure: insecure,
	}
}
