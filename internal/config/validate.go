package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validatePreview(); err != nil {
		return err
	}
	if err := c.validateStages(); err != nil {
		return err
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	parsed, err := url.Parse(c.Embedding.BaseURL)
	if err != nil {
		return fmt.Errorf("embedding.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("embedding.base_url must use http or https, got %q", c.Embedding.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("embedding.base_url must include a host, got %q", c.Embedding.BaseURL)
	}
	return nil
}

func (c *Config) validatePreview() error {
	if c.Preview.MaxEdge < 64 {
		return errors.New("preview.max_edge must be at least 64")
	}
	if c.Preview.JPEGQuality > 100 {
		return errors.New("preview.jpeg_quality must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateStages() error {
	for _, name := range []string{StageGenre, StageContent, StageBird, StageInsect, StageStreet} {
		stage, _ := c.StageSettings(name)
		if stage.TopK < 0 {
			return fmt.Errorf("stages.%s.top_k must be >= 0", name)
		}
		if stage.Threshold < -1 || stage.Threshold > 1 {
			return fmt.Errorf("stages.%s.threshold must be between -1 and 1", name)
		}
	}
	return nil
}
