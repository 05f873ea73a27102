// Package observability provides OpenTelemetry-based tracing, run metrics, and
// structured logging for uilogstat.
package observability

import "log/slog"

// AppMode identifies which subcommand the process runs.
type AppMode string

const (
	// ModeAnalyze is the full statistics run.
	ModeAnalyze AppMode = "analyze"
	// ModeReorder only demultiplexes the log.
	ModeReorder AppMode = "reorder"
)

const (
	defaultServiceName        = "uilogstat"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the version of the running binary.
	ServiceVersion string

	// Mode identifies how the binary was launched.
	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables trace export.
	OTLPEndpoint string

	// OTLPInsecure disables TLS for the OTLP gRPC connection.
	OTLPInsecure bool

	// SampleRatio is the trace sampling ratio (0.0 to 1.0).
	SampleRatio float64

	// LogLevel controls the minimum slog severity.
	LogLevel slog.Level

	// LogJSON enables JSON-formatted log output.
	LogJSON bool

	// ShutdownTimeoutSec is the maximum seconds to wait for flush on shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeAnalyze,
		LogLevel:           slog.LevelInfo,
		SampleRatio:        1,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
