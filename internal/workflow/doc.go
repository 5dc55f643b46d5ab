// Package workflow drives per-file tagging shared by scan and watch runs.
//
// Processor.Process is the single unit of work: skip already-tagged files
// unless forced, infer tags, and merge them into the sidecar. Scan walks a
// directory tree in lexical order and feeds every recognized image through
// a Processor, collecting a Summary. Per-file failures are reported and
// never abort the run.
package workflow
