// Package config provides centralized configuration management for the TRP
// valuation engine. It loads settings from environment variables and an
// optional YAML file, validates them, and resolves every file path relative
// to the executable directory so the binary behaves the same whether it
// runs from a dev checkout or an installed location.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A config.yaml file (config.yaml, configs/config.yaml or
//	   ../configs/config.yaml, relative to the working directory)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern TRP_* for namespacing:
//
//	TRP_LOGGING_LEVEL=debug
//	TRP_REPORT_PORT=8090
//	TRP_PATHS_INPUT_DIR=./data/projections
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
