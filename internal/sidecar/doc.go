// Package sidecar reads and writes the XMP sidecar that holds an image's
// keyword list.
//
// The sidecar for photo.jpg is photo.xmp in the same directory. Keywords
// live in dc:subject as an rdf:Bag. Writes always persist the union of the
// keywords already on disk and the new ones, and replace only the
// dc:subject element of a parseable document so ratings, labels, and
// develop settings written by other tools survive.
package sidecar
