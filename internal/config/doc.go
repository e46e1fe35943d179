// Package config loads, normalizes, and validates dubber configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// daemon and CLI need: data/log directories, the API bind address, ffmpeg
// binaries, and the global merge defaults layered under per-owner
// preferences.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical codec/format values, and clear validation errors.
package config
