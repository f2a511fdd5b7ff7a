// Package config loads, normalizes, and validates MewAI configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MEWAI_BASE_URL and MEWAI_API_TOKEN. The Config type centralizes every knob
// the CLI and the job tracker need, so the remote service location, polling
// cadence, and local state directory are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
