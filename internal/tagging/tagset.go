package tagging

import "sort"

// TagSet is a sorted list of unique tags. Duplicates collapse on exact
// string equality only; case variants are distinct tags.
type TagSet []string

// NewTagSet builds a TagSet from labels, dropping empty strings.
func NewTagSet(labels ...string) TagSet {
	return TagSet(nil).Union(labels...)
}

// Union returns a new TagSet containing t and labels.
func (t TagSet) Union(labels ...string) TagSet {
	seen := make(map[string]struct{}, len(t)+len(labels))
	out := make([]string, 0, len(t)+len(labels))
	for _, group := range [][]string{t, labels} {
		for _, label := range group {
			if label == "" {
				continue
			}
			if _, ok := seen[label]; ok {
				continue
			}
			seen[label] = struct{}{}
			out = append(out, label)
		}
	}
	sort.Strings(out)
	return TagSet(out)
}

// Contains reports whether label is in the set.
func (t TagSet) Contains(label string) bool {
	i := sort.SearchStrings(t, label)
	return i < len(t) && t[i] == label
}

// ContainsAll reports whether every tag of other is in t.
func (t TagSet) ContainsAll(other TagSet) bool {
	for _, label := range other {
		if !t.Contains(label) {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold the same tags.
func (t TagSet) Equal(other TagSet) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if t[i] != other[i] {
			return false
		}
	}
	return true
}

// Empty reports whether the set has no tags.
func (t TagSet) Empty() bool { return len(t) == 0 }

// Strings returns a copy of the tags.
func (t TagSet) Strings() []string {
	out := make([]string, len(t))
	copy(out, t)
	return out
}
