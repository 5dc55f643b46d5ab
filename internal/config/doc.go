// Package config loads, normalizes, and validates phototagger configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PHOTOTAGGER_EMBEDDING_URL. The Config type centralizes every knob the
// watcher and CLI need: the embedding service, preview sizing, per-stage
// ranking parameters, vocabulary overrides, and log routing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
