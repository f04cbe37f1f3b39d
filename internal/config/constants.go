package config

import "time"

// Application constants for the TRP valuation engine.
const (
	AppName    = "TRP Valuation Engine"
	AppVersion = "1.0.0"

	DefaultInputDir  = "data/input"
	DefaultOutputDir = "data/output"
	DefaultLogsDir   = "logs"

	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	MaxLogFileSize    = 100 * 1024 * 1024 // 100MB
	MaxLogFileAge     = 30                // days
	MaxLogFileBackups = 10

	DefaultRunTimeout = 30 * time.Minute

	// API endpoint paths. cmd/trp-report does not use these; its routes
	// are registered under /api in internal/transport/http.
	APIBasePath        = "/api/v1"
	ValuationsEndpoint = "/api/v1/valuations"
	SummariesEndpoint  = "/api/v1/summaries"
	RunsEndpoint       = "/api/v1/runs"
	HealthEndpoint     = "/health"
	MetricsEndpoint    = "/metrics"
	WebSocketEndpoint  = "/ws"
)
