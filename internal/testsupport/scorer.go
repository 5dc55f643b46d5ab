package testsupport

import (
	"context"
	"sync"

	"phototagger/internal/classify"
)

// ScriptedScorer returns fixed scores per label from Table. Labels without a
// score get Default. Calls records the label batch of every invocation.
type ScriptedScorer struct {
	mu      sync.Mutex
	Table   map[string]float64
	Default float64
	// FailOn makes any batch containing this label return Err.
	FailOn string
	Err    error
	calls  [][]string
	paths  []string
}

var _ classify.Scorer = (*ScriptedScorer)(nil)

// NewScriptedScorer returns a scorer over scores with a default of 0.
func NewScriptedScorer(scores map[string]float64) *ScriptedScorer {
	return &ScriptedScorer{Table: scores}
}

// Scores implements classify.Scorer.
func (s *ScriptedScorer) Scores(_ context.Context, image *classify.Image, labels []string) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, append([]string(nil), labels...))
	if image != nil {
		s.paths = append(s.paths, image.Path)
	}
	out := make([]float64, len(labels))
	for i, label := range labels {
		if s.Err != nil && (s.FailOn == "" || s.FailOn == label) {
			return nil, s.Err
		}
		score, ok := s.Table[label]
		if !ok {
			score = s.Default
		}
		out[i] = score
	}
	return out, nil
}

// Calls returns the number of Scores invocations.
func (s *ScriptedScorer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// Batches returns a copy of every label batch scored so far.
func (s *ScriptedScorer) Batches() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.calls))
	for i, batch := range s.calls {
		out[i] = append([]string(nil), batch...)
	}
	return out
}

// Paths returns the image paths scored, one per call.
func (s *ScriptedScorer) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}
