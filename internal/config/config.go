package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration for the TRP engine and
// its reporting server.
type Config struct {
	Report  ReportConfig  `yaml:"report" envconfig:"REPORT"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	OTel    OTelSettings  `yaml:"otel" envconfig:"OTEL"`
}

// ReportConfig contains cmd/trp-report's HTTP server settings.
type ReportConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	AllowedOrigins  []string      `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains the file system paths the engine reads and writes,
// resolved relative to the executable directory unless already absolute.
type PathsConfig struct {
	InputDir     string `yaml:"input_dir" envconfig:"INPUT_DIR"`
	OutputDir    string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	BudgetConfig string `yaml:"budget_config" envconfig:"BUDGET_CONFIG"`
}

// OTelSettings controls the OpenTelemetry providers wired in
// internal/infrastructure.
type OTelSettings struct {
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	PrometheusPort string  `yaml:"prometheus_port" envconfig:"PROMETHEUS_PORT"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load builds configuration in three layers, each overriding the last:
// built-in defaults, an optional config.yaml (the first of config.yaml,
// configs/config.yaml or ../configs/config.yaml found relative to the
// working directory), then environment variables. None of the struct tags
// above carry an envconfig
// "default" — that would make env processing stomp the file layer even
// when no TRP_* variable is set, since envconfig applies defaults
// unconditionally when a var is absent.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := getConfigFilePath(); configFile != "" {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = fileCfg
	}

	if err := envconfig.Process("TRP", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile unmarshals filePath over a copy of Default(), so any field
// the file omits keeps its default rather than becoming zero-valued.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolvePaths() error {
	paths, err := GetPaths(c.Paths)
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	c.Paths.InputDir = paths.InputDir
	c.Paths.OutputDir = paths.OutputDir
	c.Paths.LogsDir = paths.LogsDir
	c.Paths.BudgetConfig = paths.BudgetConfigFile
	return nil
}

func (c *Config) validate() error {
	if c.Report.Port <= 0 || c.Report.Port > 65535 {
		return fmt.Errorf("invalid report server port: %d", c.Report.Port)
	}
	if len(c.Report.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "console" {
		c.Logging.Output = "both"
	}
	return nil
}

func getConfigFilePath() string {
	locations := []string{"config.yaml", "configs/config.yaml", "../configs/config.yaml"}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the built-in configuration used before file/env overrides
// are applied.
func Default() *Config {
	return &Config{
		Report: ReportConfig{
			Port:            8090,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"http://localhost:8090"},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/trp-engine.log",
		},
		Paths: PathsConfig{
			InputDir:     "data/input",
			OutputDir:    "data/output",
			LogsDir:      "logs",
			BudgetConfig: "budget_config.yaml",
		},
		OTel: OTelSettings{
			TraceExporter:  "stdout",
			MetricExporter: "prometheus",
			PrometheusPort: "9090",
			SampleRatio:    1.0,
		},
	}
}
