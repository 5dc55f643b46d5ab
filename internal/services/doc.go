// Package services defines shared utilities consumed by the tagging pipeline,
// the run drivers, and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, image paths, stage names, and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that let drivers classify
//     per-file failures (unreadable image vs sidecar write failure) without
//     string matching.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across scan and watch runs.
package services
