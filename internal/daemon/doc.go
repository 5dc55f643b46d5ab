// Package daemon runs long-lived watch mode and guards sidecar writers with
// a per-folder instance lock.
//
// Watcher adds an fsnotify watch on the root and every subdirectory, queues
// created images and drains the queue on a single worker. Each file is
// processed forced, after a settle delay that lets the writer finish. On
// shutdown the in-flight file completes and unstarted queue entries are
// dropped with a logged count.
//
// Daemon wraps any run (scan or watch) with a gofrs/flock lock stored
// under the state directory and keyed by the absolute root path.
package daemon
