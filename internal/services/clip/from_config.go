package clip

import (
	"phototagger/internal/config"
	"phototagger/internal/media/preview"
)

// NewFromConfig builds a client from the [embedding] and [preview] sections.
// Extra options are applied after the configured ones.
func NewFromConfig(cfg *config.Config, opts ...Option) *Client {
	if cfg == nil {
		return NewClient(Config{}, opts...)
	}
	base := []Option{
		WithRetryMaxAttempts(cfg.Embedding.MaxAttempts),
		WithRequestsPerSecond(cfg.Embedding.RequestsPerSecond),
		WithPreviewOptions(preview.Options{
			MaxEdge: cfg.Preview.MaxEdge,
			Quality: cfg.Preview.JPEGQuality,
		}),
	}
	return NewClient(Config{
		BaseURL:        cfg.Embedding.BaseURL,
		APIKey:         cfg.Embedding.APIKey,
		Model:          cfg.Embedding.Model,
		TimeoutSeconds: cfg.Embedding.TimeoutSeconds,
	}, append(base, opts...)...)
}
