package tagging

import (
	"context"
	"fmt"
	"log/slog"

	"phototagger/internal/classify"
	"phototagger/internal/logging"
	"phototagger/internal/services"
	"phototagger/internal/vocab"
)

// Ranker is the classifier surface the pipeline needs.
type Ranker interface {
	Rank(ctx context.Context, image *classify.Image, candidates vocab.Vocabulary, topK int, threshold float64) ([]string, error)
}

// Pipeline runs the genre-conditioned cascade for one image at a time.
type Pipeline struct {
	ranker Ranker
	stages Stages
	logger *slog.Logger
}

// NewPipeline constructs a Pipeline.
func NewPipeline(ranker Ranker, stages Stages, logger *slog.Logger) *Pipeline {
	return &Pipeline{ranker: ranker, stages: stages, logger: logging.NewComponentLogger(logger, "tagging")}
}

// Stages returns the cascade the pipeline runs.
func (p *Pipeline) Stages() Stages { return p.stages }

// Infer tags the image at path. Genre and content stages always run;
// specialized stages run when the detected genres trigger them. Any stage
// failure aborts the inference and yields an empty TagSet.
func (p *Pipeline) Infer(ctx context.Context, path string) (TagSet, error) {
	image := classify.NewImage(path)
	ctx = services.WithImagePath(ctx, path)

	genres, err := p.run(ctx, image, p.stages.Genre)
	if err != nil {
		return nil, err
	}
	content, err := p.run(ctx, image, p.stages.Content)
	if err != nil {
		return nil, err
	}

	accepted := make([]string, 0, len(genres)+len(content)+4)
	accepted = append(accepted, genres...)
	accepted = append(accepted, content...)

	triggers := DetectTriggers(genres)
	logging.WithContext(ctx, p.logger).Debug("genre triggers",
		logging.Strings("genres", genres),
		logging.String("triggers", triggers.String()),
	)
	for _, stage := range p.stages.Specialized {
		if !triggers.Has(stage.Trigger) {
			continue
		}
		labels, err := p.run(ctx, image, stage)
		if err != nil {
			return nil, err
		}
		accepted = append(accepted, labels...)
	}

	return NewTagSet(accepted...), nil
}

func (p *Pipeline) run(ctx context.Context, image *classify.Image, stage Stage) ([]string, error) {
	ctx = services.WithStage(ctx, stage.Name)
	labels, err := p.ranker.Rank(ctx, image, stage.Vocabulary, stage.TopK, stage.Threshold)
	if err != nil {
		return nil, fmt.Errorf("%s stage: %w", stage.Name, err)
	}
	logging.WithContext(ctx, p.logger).Debug("stage complete", logging.Strings("labels", labels))
	return labels, nil
}
