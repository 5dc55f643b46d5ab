package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"phototagger/internal/logging"
	"phototagger/internal/services"
	"phototagger/internal/tagging"
)

// Inferer produces tags for one image.
type Inferer interface {
	Infer(ctx context.Context, path string) (tagging.TagSet, error)
}

// SidecarStore persists tags beside images.
type SidecarStore interface {
	IsTagged(image string) bool
	MergeAndWrite(image string, tags tagging.TagSet) (tagging.TagSet, error)
}

// Processor runs the per-file tagging unit of work.
type Processor struct {
	inferer  Inferer
	store    SidecarStore
	reporter Reporter
	logger   *slog.Logger
	now      func() time.Time
}

// NewProcessor constructs a Processor. A nil reporter discards outcomes.
func NewProcessor(inferer Inferer, store SidecarStore, reporter Reporter, logger *slog.Logger) *Processor {
	if reporter == nil {
		reporter = ReporterFunc(func(Outcome) {})
	}
	return &Processor{
		inferer:  inferer,
		store:    store,
		reporter: reporter,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		now:      time.Now,
	}
}

// Process tags the image at path. Unless force is set, an image whose
// sidecar already holds keywords is skipped without classifier calls.
func (p *Processor) Process(ctx context.Context, path string, force bool) Outcome {
	started := p.now()
	ctx = services.WithImagePath(ctx, path)
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}
	logger := logging.WithContext(ctx, p.logger)

	outcome := p.process(ctx, logger, path, force)
	outcome.Path = path
	outcome.Elapsed = p.now().Sub(started)
	p.log(logger, outcome)
	p.reporter.Report(outcome)
	return outcome
}

func (p *Processor) process(ctx context.Context, logger *slog.Logger, path string, force bool) Outcome {
	if !force && p.store.IsTagged(path) {
		return Outcome{Kind: OutcomeSkipped}
	}

	logger.Debug("inferring tags", logging.Bool("force", force))
	inferred, err := p.inferer.Infer(ctx, path)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, Err: err}
	}
	if inferred.Empty() {
		return Outcome{Kind: OutcomeNoTags}
	}

	persisted, err := p.store.MergeAndWrite(path, inferred)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, Inferred: inferred, Err: err}
	}
	return Outcome{Kind: OutcomeTagged, Inferred: inferred, Persisted: persisted}
}

func (p *Processor) log(logger *slog.Logger, o Outcome) {
	switch o.Kind {
	case OutcomeSkipped:
		logger.Debug("image already tagged",
			logging.String(logging.FieldEventType, "image_skipped"),
		)
	case OutcomeNoTags:
		logger.Info("no reliable tags",
			logging.String(logging.FieldEventType, "image_no_tags"),
			logging.Duration("elapsed", o.Elapsed),
		)
	case OutcomeTagged:
		logger.Info("image tagged",
			logging.String(logging.FieldEventType, "image_tagged"),
			logging.Strings("tags", o.Inferred.Strings()),
			logging.Int("keywords", len(o.Persisted)),
			logging.Duration("elapsed", o.Elapsed),
		)
	case OutcomeFailed:
		attrs := logging.Failure(o.Err)
		attrs = append(attrs,
			logging.String(logging.FieldErrorHint, failureHint(o.Err)),
			logging.String(logging.FieldImpact, "image left untagged"),
		)
		logging.WarnWithContext(logger, "image failed", "image_failed", attrs...)
	}
}

func failureHint(err error) string {
	switch services.FailureKind(err) {
	case "image_unreadable":
		return "check the file decodes and the embedding service accepts it"
	case "sidecar_write_failure":
		return "check write permission on the image directory"
	case "timeout":
		return "raise embedding.timeout_seconds or check the embedding service load"
	default:
		return "rerun with --force once the embedding service is healthy"
	}
}
