// Package config loads, normalizes, and validates silencescan configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the SILENCESCAN_INPUT_DIR
// environment fallback. The Config type centralizes every knob the scanner,
// decoders, and CLI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical extensions, and clear validation errors.
package config
