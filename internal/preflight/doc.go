// Package preflight provides readiness checks for the filesystem paths and
// the embedding service phototagger depends on.
//
// The CLI "phototagger check" command prints every result; scan and watch
// run the folder check before taking the instance lock so a read-only or
// missing folder fails fast instead of once per image.
package preflight
