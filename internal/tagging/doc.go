// Package tagging runs the cascading inference that turns one image into a
// TagSet.
//
// The cascade ranks the genre vocabulary, then the universal content
// vocabulary, then every specialized vocabulary whose trigger the detected
// genre labels set. Accepted labels from all stages are merged into a
// sorted, exact-string deduplicated TagSet.
package tagging
