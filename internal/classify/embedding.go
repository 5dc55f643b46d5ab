package classify

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/vecgo/distance"
)

// Embedder turns images and label text into vectors in one shared space.
type Embedder interface {
	EmbedImage(ctx context.Context, path string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingScorer scores labels by cosine similarity between the image
// embedding and each label embedding. Label embeddings are cached for the
// life of the scorer. It is not safe for concurrent use.
type EmbeddingScorer struct {
	embedder Embedder
	labels   map[string][]float32
}

// NewEmbeddingScorer constructs a scorer over embedder.
func NewEmbeddingScorer(embedder Embedder) *EmbeddingScorer {
	return &EmbeddingScorer{embedder: embedder, labels: make(map[string][]float32)}
}

var errZeroVector = errors.New("embedding has zero norm")

// Scores implements Scorer.
func (s *EmbeddingScorer) Scores(ctx context.Context, image *Image, labels []string) ([]float64, error) {
	if image == nil {
		return nil, errors.New("nil image")
	}
	if image.embedding == nil {
		raw, err := s.embedder.EmbedImage(ctx, image.Path)
		if err != nil {
			return nil, err
		}
		normalized, ok := distance.NormalizeL2Copy(raw)
		if !ok {
			return nil, fmt.Errorf("image %s: %w", image.Path, errZeroVector)
		}
		image.embedding = normalized
	}
	if err := s.ensureLabels(ctx, labels); err != nil {
		return nil, err
	}

	scores := make([]float64, len(labels))
	for i, label := range labels {
		vec := s.labels[label]
		if len(vec) != len(image.embedding) {
			return nil, fmt.Errorf("label %q: dimension %d does not match image dimension %d", label, len(vec), len(image.embedding))
		}
		scores[i] = float64(distance.Dot(image.embedding, vec))
	}
	return scores, nil
}

func (s *EmbeddingScorer) ensureLabels(ctx context.Context, labels []string) error {
	missing := make([]string, 0, len(labels))
	for _, label := range labels {
		if _, ok := s.labels[label]; !ok {
			missing = append(missing, label)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	vectors, err := s.embedder.EmbedTexts(ctx, missing)
	if err != nil {
		return fmt.Errorf("embed labels: %w", err)
	}
	if len(vectors) != len(missing) {
		return fmt.Errorf("embed labels: got %d vectors for %d labels", len(vectors), len(missing))
	}
	for i, label := range missing {
		normalized, ok := distance.NormalizeL2Copy(vectors[i])
		if !ok {
			return fmt.Errorf("label %q: %w", label, errZeroVector)
		}
		s.labels[label] = normalized
	}
	return nil
}
