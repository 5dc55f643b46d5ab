package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directories used for operational artifacts.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Embedding contains connection settings for the CLIP embedding service.
type Embedding struct {
	BaseURL           string  `toml:"base_url"`
	APIKey            string  `toml:"api_key"`
	Model             string  `toml:"model"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	MaxAttempts       int     `toml:"max_attempts"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Preview controls how images are prepared before embedding.
type Preview struct {
	MaxEdge     int `toml:"max_edge"`
	JPEGQuality int `toml:"jpeg_quality"`
}

// Stage holds the ranking parameters for one inference stage.
type Stage struct {
	TopK      int     `toml:"top_k"`
	Threshold float64 `toml:"threshold"`
}

// Stages holds per-stage ranking parameters.
type Stages struct {
	Genre   Stage `toml:"genre"`
	Content Stage `toml:"content"`
	Bird    Stage `toml:"bird"`
	Insect  Stage `toml:"insect"`
	Street  Stage `toml:"street"`
}

// Vocabulary replaces the labels of named sets. An empty list keeps the
// built-in labels.
type Vocabulary struct {
	Genre   []string `toml:"genre"`
	Content []string `toml:"content"`
	Bird    []string `toml:"bird"`
	Insect  []string `toml:"insect"`
	Street  []string `toml:"street"`
}

// Watch contains watch-mode timing.
type Watch struct {
	SettleDelayMillis int `toml:"settle_delay_ms"`
	BacklogWarning    int `toml:"backlog_warning"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for phototagger.
//
// Configuration sections:
//   - Paths: lock and log directories
//   - Embedding: CLIP embedding service connection
//   - Preview: decode and resize settings
//   - Stages: per-stage top_k and threshold
//   - Vocabulary: label overrides per named set
//   - Watch: settle delay and queue depth
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Embedding  Embedding  `toml:"embedding"`
	Preview    Preview    `toml:"preview"`
	Stages     Stages     `toml:"stages"`
	Vocabulary Vocabulary `toml:"vocabulary"`
	Watch      Watch      `toml:"watch"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory and, when configured, the log directory.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// EmbeddingTimeout returns the per-request timeout for the embedding service.
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Embedding.TimeoutSeconds) * time.Second
}

// SettleDelay returns the wait between a create event and processing.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Watch.SettleDelayMillis) * time.Millisecond
}

// StageSettings returns the ranking parameters for the named stage.
func (c *Config) StageSettings(name string) (Stage, bool) {
	switch name {
	case StageGenre:
		return c.Stages.Genre, true
	case StageContent:
		return c.Stages.Content, true
	case StageBird:
		return c.Stages.Bird, true
	case StageInsect:
		return c.Stages.Insect, true
	case StageStreet:
		return c.Stages.Street, true
	default:
		return Stage{}, false
	}
}

// VocabularyOverrides returns the non-empty label overrides keyed by set name.
func (c *Config) VocabularyOverrides() map[string][]string {
	out := make(map[string][]string)
	for name, labels := range map[string][]string{
		StageGenre:   c.Vocabulary.Genre,
		StageContent: c.Vocabulary.Content,
		StageBird:    c.Vocabulary.Bird,
		StageInsect:  c.Vocabulary.Insect,
		StageStreet:  c.Vocabulary.Street,
	} {
		if len(labels) > 0 {
			out[name] = append([]string(nil), labels...)
		}
	}
	return out
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
