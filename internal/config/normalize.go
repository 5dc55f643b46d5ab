package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEmbedding()
	c.normalizePreview()
	c.normalizeVocabulary()
	c.normalizeWatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEmbedding() {
	if value, ok := os.LookupEnv("PHOTOTAGGER_EMBEDDING_URL"); ok && strings.TrimSpace(value) != "" {
		c.Embedding.BaseURL = value
	}
	if value, ok := os.LookupEnv("PHOTOTAGGER_EMBEDDING_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.Embedding.APIKey = value
	}
	c.Embedding.BaseURL = strings.TrimRight(strings.TrimSpace(c.Embedding.BaseURL), "/")
	if c.Embedding.BaseURL == "" {
		c.Embedding.BaseURL = defaultEmbeddingBaseURL
	}
	c.Embedding.APIKey = strings.TrimSpace(c.Embedding.APIKey)
	c.Embedding.Model = strings.TrimSpace(c.Embedding.Model)
	if c.Embedding.Model == "" {
		c.Embedding.Model = defaultEmbeddingModel
	}
	if c.Embedding.TimeoutSeconds <= 0 {
		c.Embedding.TimeoutSeconds = defaultEmbeddingTimeout
	}
	if c.Embedding.MaxAttempts <= 0 {
		c.Embedding.MaxAttempts = defaultEmbeddingAttempts
	}
	if c.Embedding.RequestsPerSecond < 0 {
		c.Embedding.RequestsPerSecond = 0
	}
}

func (c *Config) normalizePreview() {
	if c.Preview.MaxEdge <= 0 {
		c.Preview.MaxEdge = defaultPreviewMaxEdge
	}
	if c.Preview.JPEGQuality <= 0 {
		c.Preview.JPEGQuality = defaultPreviewQuality
	}
}

// Labels are compared by exact string, so only surrounding whitespace is trimmed.
func (c *Config) normalizeVocabulary() {
	c.Vocabulary.Genre = trimLabels(c.Vocabulary.Genre)
	c.Vocabulary.Content = trimLabels(c.Vocabulary.Content)
	c.Vocabulary.Bird = trimLabels(c.Vocabulary.Bird)
	c.Vocabulary.Insect = trimLabels(c.Vocabulary.Insect)
	c.Vocabulary.Street = trimLabels(c.Vocabulary.Street)
}

func trimLabels(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (c *Config) normalizeWatch() {
	if c.Watch.SettleDelayMillis < 0 {
		c.Watch.SettleDelayMillis = 0
	}
	if c.Watch.BacklogWarning <= 0 {
		c.Watch.BacklogWarning = defaultWatchBacklogWarn
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
