// Package config provides configuration management for tablegate.
//
// This package handles loading and validating tablegate server configuration
// from environment variables and a configuration file.
//
// # Configuration Sources
//
// Configuration is loaded from, in increasing precedence:
//
//   - Built-in defaults
//   - tablegate.yml under TABLEGATE_CONFIG_PATH (default /etc/tablegate/config)
//   - TABLEGATE_* environment variables
//
// Each attribute remembers which source supplied it; "tablegatectl
// configuration show" renders the table.
//
// # Key Configuration Options
//
//   - TABLEGATE_DATA_KEY: credential encryption key (env only, see pkg/crypto)
//   - TABLEGATE_JWT_SECRET: token signing secret (env only)
//   - TABLEGATE_LOG_LEVEL: logging verbosity
//   - DATABASE_URL: control-plane database connection
//   - PORT / BIND_ADDRESS: server listen address
package config
