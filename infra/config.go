package infra

import (
	"fmt"
)

type PgConfig struct {
	ConnectionString   string
	Database           string
	Hostname           string
	Password           string
	Port               string
	User               string
	MaxPoolConnections int
	SslMode            string
}

func (config PgConfig) GetConnectionString() string {
	if config.ConnectionString != "" {
		return config.ConnectionString
	}

	if config.SslMode == "" {
		config.SslMode = "prefer"
	}

	return fmt.Sprintf("host=%s user=%s password=%s database=%s sslmode=%s port=%s",
		config.Hostname, config.User, config.Password, config.Database, config.SslMode, config.Port)
}

type TelemetryConfiguration struct {
	Enabled         bool
	ApplicationName string
	// "otlp" (default) or "gcp"
	Exporter    string
	ProjectID   string
	SamplingMap TelemetrySamplingMap
}

// TelemetrySamplingMap overrides the default sampling rates, keyed by http route prefix or span name.
type TelemetrySamplingMap struct {
	HttpRoutes map[string]float64
	SpanNames  map[string]float64
}
