package workflow

import (
	"path/filepath"
	"sort"
	"strings"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".tif":  {},
	".tiff": {},
	".arw":  {},
	".cr2":  {},
	".nef":  {},
	".dng":  {},
	".raf":  {},
	".orf":  {},
}

// IsImage reports whether path has a recognized image extension. Matching
// is case-insensitive.
func IsImage(path string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions returns the recognized extensions in sorted order.
func Extensions() []string {
	out := make([]string, 0, len(imageExtensions))
	for ext := range imageExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
