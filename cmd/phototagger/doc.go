// Command phototagger tags photos with keywords using a CLIP embedding
// service and records them in XMP sidecars beside each image.
//
//	phototagger <folder> [--watch] [--force]
//	phototagger scan <folder> [--force]
//	phototagger watch <folder>
//	phototagger check [folder]
//	phototagger config init|validate
//	phototagger vocab [name]
package main
