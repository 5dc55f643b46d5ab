package sidecar

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"phototagger/internal/fileutil"
	"phototagger/internal/logging"
	"phototagger/internal/services"
	"phototagger/internal/tagging"
)

// Extension is the sidecar file extension.
const Extension = ".xmp"

// Path returns the sidecar path for image: the image path with its
// extension replaced by .xmp.
func Path(image string) string {
	return strings.TrimSuffix(image, filepath.Ext(image)) + Extension
}

// Store reads and writes sidecars beside their images.
type Store struct {
	logger *slog.Logger
}

// NewStore constructs a Store.
func NewStore(logger *slog.Logger) *Store {
	return &Store{logger: logging.NewComponentLogger(logger, "sidecar")}
}

// Read returns the keywords persisted for image. A missing, unreadable, or
// malformed sidecar yields an empty set.
func (s *Store) Read(image string) tagging.TagSet {
	doc := s.load(image)
	if doc == nil {
		return nil
	}
	return tagging.NewTagSet(doc.tags...)
}

// IsTagged reports whether the sidecar for image holds at least one keyword.
func (s *Store) IsTagged(image string) bool {
	return len(s.Read(image)) > 0
}

// MergeAndWrite persists the union of the existing keywords and tags and
// returns it. An empty union writes nothing. The document is replaced
// atomically; when it already holds exactly the union it is left untouched.
func (s *Store) MergeAndWrite(image string, tags tagging.TagSet) (tagging.TagSet, error) {
	path := Path(image)
	doc := s.load(image)

	var existing tagging.TagSet
	if doc != nil {
		existing = tagging.NewTagSet(doc.tags...)
	}
	merged := existing.Union(tags...)
	if merged.Empty() {
		return nil, nil
	}
	if doc != nil && len(doc.subjects) == 1 && merged.Equal(existing) {
		s.logger.Debug("sidecar already current", logging.String("sidecar", path), logging.Int("tags", len(merged)))
		return merged, nil
	}

	var data []byte
	if doc != nil {
		if rendered, ok := doc.render(merged); ok {
			data = rendered
		}
	}
	if data == nil {
		data = freshDocument(merged)
	}

	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return nil, services.Wrap(services.ErrSidecarWrite, "sidecar", "write", path, err)
	}
	s.logger.Debug("sidecar written",
		logging.String("sidecar", path),
		logging.Int("existing", len(existing)),
		logging.Int("tags", len(merged)),
	)
	return merged, nil
}

// load reads and parses the sidecar. It returns nil when the file is absent,
// unreadable, or malformed.
func (s *Store) load(image string) *document {
	path := Path(image)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("sidecar unreadable, treating as empty", logging.String("sidecar", path), logging.Error(err))
		}
		return nil
	}
	doc, err := parseDocument(data)
	if err != nil {
		s.logger.Debug("sidecar malformed, treating as empty", logging.String("sidecar", path), logging.Error(err))
		return nil
	}
	return doc
}
