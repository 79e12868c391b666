// Package config loads, normalizes, and validates backlogtimer configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as RA_USERNAME and
// RA_API_KEY. Every knob the scan pipeline and CLI need lives on Config so
// that data files, remote service endpoints, and concurrency limits are
// resolved in one pass.
package config
