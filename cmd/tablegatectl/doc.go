// Command tablegatectl operates a tablegate server: a permission-resolving
// gateway in front of administered PostgreSQL databases.
//
// # Quick Start
//
//	# Generate a data key for credential encryption
//	export TABLEGATE_DATA_KEY="$(tablegatectl data-key generate)"
//	export TABLEGATE_JWT_SECRET="change-me"
//
//	# Run database migrations
//	tablegatectl db migrate
//
//	# Create the first super admin
//	tablegatectl user create --email root@example.com --name Root --role super_admin
//
//	# Start the server
//	tablegatectl server
//
// # Environment Variables
//
//   - DATABASE_URL: control-plane PostgreSQL connection string
//   - TABLEGATE_DATA_KEY: base64-encoded 256-bit key for credential encryption
//   - TABLEGATE_JWT_SECRET: signing secret for auth tokens
//   - TABLEGATE_AUDIT_DATABASE_URL: optional audit database
//   - TABLEGATE_CONFIG_PATH: config file location (default ./tablegate.yml)
//   - TABLEGATE_LOG_LEVEL: set to "debug" for SQL query logging
package main
