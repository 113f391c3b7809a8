// Package config provides configuration management for dashgate.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("dashgate.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("dashgate.yaml")
//
// An empty path loads the defaults.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention DASHGATE_SECTION_FIELD.
// For example:
//
//   - DASHGATE_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - DASHGATE_DISPATCH_ALLOWED_NAME_PATTERN overrides dispatch.allowed_name_pattern
//   - DASHGATE_STORE_SQLITE_PATH overrides store.sqlite.path
//
// ALLOWED_APPNAME_PATTERN and RETENTION_PERIOD_MIN are also read for the two
// dispatch settings. The DASHGATE_ forms win when both are set.
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Hot Reload
//
// Watcher observes the configuration file and hands every successfully
// validated reload to a callback. Only the dispatch section is applied at
// runtime; the other sections take effect on restart.
//
// # Example Configuration
//
//	server:
//	  listen_address: "127.0.0.1:8050"
//
//	dispatch:
//	  allowed_name_pattern: "^[a-zA-Z0-9_-]+$"
//	  retention_period_min: 60
//	  sweep_schedule: "*/15 * * * *"
//
//	store:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/dashgate.db"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
