package testsupport

import (
	"path/filepath"
	"testing"

	"phototagger/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = ""
	cfgVal.Watch.SettleDelayMillis = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithEmbeddingURL points the embedding client at a test server.
func WithEmbeddingURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Embedding.BaseURL = url
	}
}

// WithSettleDelay sets the watch settle delay in milliseconds.
func WithSettleDelay(millis int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Watch.SettleDelayMillis = millis
	}
}

// WithStage overrides one stage's ranking parameters.
func WithStage(name string, topK int, threshold float64) ConfigOption {
	return func(b *configBuilder) {
		stage := config.Stage{TopK: topK, Threshold: threshold}
		switch name {
		case config.StageGenre:
			b.cfg.Stages.Genre = stage
		case config.StageContent:
			b.cfg.Stages.Content = stage
		case config.StageBird:
			b.cfg.Stages.Bird = stage
		case config.StageInsect:
			b.cfg.Stages.Insect = stage
		case config.StageStreet:
			b.cfg.Stages.Street = stage
		default:
			b.t.Fatalf("unknown stage %q", name)
		}
	}
}

// WithLogDir enables file logging under the test temp dir.
func WithLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.LogDir = filepath.Join(b.baseDir, "logs")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
