// Package vocab holds the ordered candidate label sets offered to the
// similarity classifier.
package vocab

import "strings"

// Set names.
const (
	Genre   = "genre"
	Content = "content"
	Bird    = "bird"
	Insect  = "insect"
	Street  = "street"
)

// Vocabulary is a named, ordered, immutable list of labels.
type Vocabulary struct {
	name   string
	labels []string
}

// New builds a vocabulary. Blank labels and exact duplicates are dropped;
// the first occurrence keeps its position.
func New(name string, labels ...string) Vocabulary {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return Vocabulary{name: name, labels: out}
}

// Name returns the set name.
func (v Vocabulary) Name() string { return v.name }

// Len returns the number of labels.
func (v Vocabulary) Len() int { return len(v.labels) }

// Labels returns a copy of the labels in vocabulary order.
func (v Vocabulary) Labels() []string {
	out := make([]string, len(v.labels))
	copy(out, v.labels)
	return out
}

// Registry maps set names to vocabularies.
type Registry struct {
	sets map[string]Vocabulary
}

// Names lists the set names in pipeline order.
func Names() []string {
	return []string{Genre, Content, Bird, Insect, Street}
}

// Default returns the built-in registry.
func Default() Registry {
	return Registry{sets: map[string]Vocabulary{
		Genre:   New(Genre, genreLabels...),
		Content: New(Content, contentLabels...),
		Bird:    New(Bird, birdLabels...),
		Insect:  New(Insect, insectLabels...),
		Street:  New(Street, streetLabels...),
	}}
}

// Get returns the named vocabulary.
func (r Registry) Get(name string) (Vocabulary, bool) {
	v, ok := r.sets[name]
	return v, ok
}

// MustGet returns the named vocabulary or an empty one with that name.
func (r Registry) MustGet(name string) Vocabulary {
	if v, ok := r.sets[name]; ok {
		return v
	}
	return Vocabulary{name: name}
}

// WithOverrides returns a registry where each named override replaces that
// set's labels. Unknown names and overrides that are empty after cleanup are
// ignored. The receiver is not modified.
func (r Registry) WithOverrides(overrides map[string][]string) Registry {
	sets := make(map[string]Vocabulary, len(r.sets))
	for name, v := range r.sets {
		sets[name] = v
	}
	for name, labels := range overrides {
		if _, ok := sets[name]; !ok {
			continue
		}
		replacement := New(name, labels...)
		if replacement.Len() == 0 {
			continue
		}
		sets[name] = replacement
	}
	return Registry{sets: sets}
}
