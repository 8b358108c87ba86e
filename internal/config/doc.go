// Package config loads, normalizes and validates gyre's configuration from
// TOML files and programmatic overrides. Validation is eager: every fatal
// option error is reported before the first download is scheduled.
package config
