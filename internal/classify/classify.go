package classify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"phototagger/internal/logging"
	"phototagger/internal/services"
	"phototagger/internal/vocab"
)

// Image is the picture being classified. Scorers may cache per-image state
// on it, so reuse one value for every stage of a single inference.
type Image struct {
	Path string

	embedding []float32
}

// NewImage returns an Image for path.
func NewImage(path string) *Image {
	return &Image{Path: path}
}

// Scorer produces one similarity score per label, in label order.
type Scorer interface {
	Scores(ctx context.Context, image *Image, labels []string) ([]float64, error)
}

// Classifier ranks vocabularies with a Scorer.
type Classifier struct {
	scorer Scorer
	logger *slog.Logger
}

// New constructs a Classifier.
func New(scorer Scorer, logger *slog.Logger) *Classifier {
	return &Classifier{scorer: scorer, logger: logging.NewComponentLogger(logger, "classify")}
}

type scored struct {
	label string
	score float64
}

// Rank returns at most topK labels from candidates whose score is strictly
// greater than threshold, best first. Equal scores keep vocabulary order.
// Any scorer failure is reported as services.ErrImageUnreadable unless ctx
// itself was cancelled.
func (c *Classifier) Rank(ctx context.Context, image *Image, candidates vocab.Vocabulary, topK int, threshold float64) ([]string, error) {
	labels := candidates.Labels()
	if topK <= 0 || len(labels) == 0 {
		return nil, nil
	}
	if c == nil || c.scorer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "classify", "rank", "no scorer configured", nil)
	}

	scores, err := c.scorer.Scores(ctx, image, labels)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("rank %s: %w", candidates.Name(), ctxErr)
		}
		return nil, services.Wrap(services.ErrImageUnreadable, "classify", "rank", candidates.Name(), err)
	}
	if len(scores) != len(labels) {
		return nil, services.Wrap(
			services.ErrImageUnreadable, "classify", "rank",
			fmt.Sprintf("%s: got %d scores for %d labels", candidates.Name(), len(scores), len(labels)),
			nil,
		)
	}

	ranked := make([]scored, len(labels))
	for i, label := range labels {
		ranked[i] = scored{label: label, score: scores[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	accepted := make([]string, 0, topK)
	for _, item := range ranked {
		if len(accepted) == topK {
			break
		}
		if !(item.score > threshold) {
			// Sorted descending, nothing later can pass. NaN never passes.
			break
		}
		accepted = append(accepted, item.label)
	}

	if c.logger.Enabled(ctx, slog.LevelDebug) {
		top := ranked[0]
		logging.WithContext(ctx, c.logger).Debug("vocabulary ranked",
			logging.String("vocabulary", candidates.Name()),
			logging.String("best_label", top.label),
			logging.String("best_score", strconv.FormatFloat(top.score, 'f', 4, 64)),
			logging.Float64("threshold", threshold),
			logging.Strings("accepted", accepted),
		)
	}
	return accepted, nil
}
