// Package config loads, normalizes, and validates reframe
// configuration from TOML.
//
// Configuration is optional: when no file exists at the default
// location (~/.config/reframe/config.toml) the repository defaults
// apply. Path fields are tilde-expanded and made absolute during
// normalization. Validation is strict and runs before any file is
// processed.
package config
