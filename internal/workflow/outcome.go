package workflow

import (
	"time"

	"phototagger/internal/tagging"
)

// OutcomeKind classifies the result of processing one file.
type OutcomeKind string

const (
	OutcomeSkipped OutcomeKind = "skipped"
	OutcomeFailed  OutcomeKind = "failed"
	OutcomeNoTags  OutcomeKind = "no_tags"
	OutcomeTagged  OutcomeKind = "tagged"
)

// Outcome is the per-file result handed to a Reporter.
type Outcome struct {
	Path      string
	Kind      OutcomeKind
	Inferred  tagging.TagSet
	Persisted tagging.TagSet
	Err       error
	Elapsed   time.Duration
}

// Reporter receives every per-file outcome.
type Reporter interface {
	Report(Outcome)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Outcome)

// Report calls f.
func (f ReporterFunc) Report(o Outcome) { f(o) }

// Summary aggregates outcomes over a scan.
type Summary struct {
	Root     string
	Total    int
	Tagged   int
	Skipped  int
	NoTags   int
	Failed   int
	Failures []Outcome
	Elapsed  time.Duration
}

// Add records one outcome.
func (s *Summary) Add(o Outcome) {
	s.Total++
	switch o.Kind {
	case OutcomeTagged:
		s.Tagged++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeNoTags:
		s.NoTags++
	case OutcomeFailed:
		s.Failed++
		s.Failures = append(s.Failures, o)
	}
}
