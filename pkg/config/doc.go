// Package config loads server configuration from STRYDE_* environment
// variables with sensible defaults for local development.
package config
