// Package config loads the application configuration.
//
// Values come from built-in defaults, an optional YAML file, an optional
// .env file and TRENDPULSE_* environment variables, in increasing order of
// precedence:
//
//	TRENDPULSE_SERVER_PORT=9000
//	TRENDPULSE_PATHS_DATA_DIR=/srv/ott/data
//	TRENDPULSE_DASHBOARD_DEFAULT_START=2024-06-01
//
// ResolvePaths turns the configured directories into absolute paths; the
// trend, blog and news input directories live under the data directory.
package config
