// Package config provides centralized configuration management for the
// DebtLens service. It handles loading configuration from multiple sources,
// validation, and path resolution anchored to the executable location.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern DEBTLENS_* for namespacing:
//
//	DEBTLENS_SERVER_PORT=8080
//	DEBTLENS_DATA_PATH=/srv/debt/lebanon_external_debt.csv
//	DEBTLENS_LOGGING_LEVEL=info
//	DEBTLENS_TELEMETRY_ENABLE_METRICS=true
//
// # Path Management
//
// The Paths type resolves the data, exports, and logs directories relative
// to the executable, never the working directory:
//
//	paths, err := config.GetPaths()
//	exportPath := paths.ResolveExportFile("external_debt_filtered.csv")
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
