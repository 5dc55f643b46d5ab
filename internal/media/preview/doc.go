// Package preview prepares images for the embedding service: decode, EXIF
// orientation, downscale to a bounded edge and re-encode as JPEG.
package preview
