package instrumentation

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Exporter names accepted by METRICS_EXPORTER and TRACING_EXPORTER.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	RefreshResultSuccess = "success"
	RefreshResultFailure = "failure"
)

// Config selects the OpenTelemetry exporters. The variable names follow the
// OTEL_* conventions where one exists.
type Config struct {
	ServiceName       string `env:"OTEL_SERVICE_NAME" envDefault:"calmux"`
	ServiceVersion    string
	ServiceInstanceID string `env:"OTEL_SERVICE_INSTANCE_ID"`

	// Enabled turns metrics and tracing off entirely when false.
	Enabled bool `env:"INSTRUMENTATION_ENABLED" envDefault:"true"`

	MetricsExporter string `env:"METRICS_EXPORTER" envDefault:"prometheus"`
	TracingExporter string `env:"TRACING_EXPORTER" envDefault:"none"`

	// OTLPEndpoint is host:port without a scheme, e.g. "localhost:4318".
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE"`

	TraceSamplingRate float64 `env:"OTEL_TRACES_SAMPLER_ARG" envDefault:"0.1"`

	// DetailedLabels adds the caller's email domain to tool metrics.
	// Keep it disabled in production.
	DetailedLabels bool `env:"METRICS_DETAILED_LABELS"`

	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig controls the tool invocation audit trail.
type AuditLoggingConfig struct {
	Enabled bool `env:"AUDIT_LOGGING_ENABLED" envDefault:"true"`

	// IncludePII logs full user names instead of hashes. Audit logs written
	// with it must be stored with restricted access.
	IncludePII bool `env:"AUDIT_LOGGING_INCLUDE_PII"`
}

// LoadConfig parses the instrumentation settings from the environment.
func LoadConfig() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("failed to parse instrumentation config: %w", err)
	}
	return c, nil
}

// Validate checks exporter names, the sampling rate and that OTLP exporters
// have an endpoint.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	switch c.MetricsExporter {
	case "", ExporterPrometheus, ExporterOTLP, ExporterStdout:
	default:
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	switch c.TracingExporter {
	case "", ExporterOTLP, ExporterStdout, ExporterNone:
	default:
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if c.OTLPEndpoint == "" && (c.TracingExporter == ExporterOTLP || c.MetricsExporter == ExporterOTLP) {
		return fmt.Errorf("OTLP endpoint is required when using an OTLP exporter")
	}
	return nil
}
