package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"phototagger/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("PHOTOTAGGER_EMBEDDING_URL", "")
	t.Setenv("PHOTOTAGGER_EMBEDDING_API_KEY", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "state", "phototagger")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.LogDir != "" {
		t.Fatalf("expected no log dir by default, got %q", cfg.Paths.LogDir)
	}
	if cfg.Embedding.BaseURL != "http://127.0.0.1:7997" {
		t.Fatalf("unexpected embedding url: %q", cfg.Embedding.BaseURL)
	}
	if cfg.SettleDelay() != time.Second {
		t.Fatalf("expected 1s settle delay, got %s", cfg.SettleDelay())
	}
	if cfg.EmbeddingTimeout() != 60*time.Second {
		t.Fatalf("unexpected embedding timeout: %s", cfg.EmbeddingTimeout())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.StateDir); err != nil || !info.IsDir() {
		t.Fatalf("expected state dir to exist: %v", err)
	}
}

func TestDefaultStageParameters(t *testing.T) {
	cfg := config.Default()
	tests := []struct {
		name      string
		topK      int
		threshold float64
	}{
		{config.StageGenre, 2, 0.23},
		{config.StageContent, 2, 0.22},
		{config.StageBird, 1, 0.21},
		{config.StageInsect, 1, 0.21},
		{config.StageStreet, 3, 0.20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, ok := cfg.StageSettings(tt.name)
			if !ok {
				t.Fatalf("stage %q not found", tt.name)
			}
			if stage.TopK != tt.topK || stage.Threshold != tt.threshold {
				t.Fatalf("got (%d, %v), want (%d, %v)", stage.TopK, stage.Threshold, tt.topK, tt.threshold)
			}
		})
	}
	if _, ok := cfg.StageSettings("unknown"); ok {
		t.Fatal("expected unknown stage to be absent")
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("PHOTOTAGGER_EMBEDDING_URL", "")
	configPath := filepath.Join(t.TempDir(), "phototagger.toml")

	type stage struct {
		TopK      int     `toml:"top_k"`
		Threshold float64 `toml:"threshold"`
	}
	type payload struct {
		Embedding struct {
			BaseURL string `toml:"base_url"`
			Model   string `toml:"model"`
		} `toml:"embedding"`
		Stages struct {
			Street stage `toml:"street"`
		} `toml:"stages"`
		Vocabulary struct {
			Content []string `toml:"content"`
		} `toml:"vocabulary"`
		Watch struct {
			SettleDelayMillis int `toml:"settle_delay_ms"`
		} `toml:"watch"`
	}
	custom := payload{}
	custom.Embedding.BaseURL = "https://clip.example.com/v1/"
	custom.Embedding.Model = "custom-clip"
	custom.Stages.Street = stage{TopK: 5, Threshold: 0.3}
	custom.Vocabulary.Content = []string{" dog ", "", "Dog"}
	custom.Watch.SettleDelayMillis = 250
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Embedding.BaseURL != "https://clip.example.com/v1" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Embedding.BaseURL)
	}
	if cfg.Embedding.Model != "custom-clip" {
		t.Fatalf("unexpected model %q", cfg.Embedding.Model)
	}
	if cfg.Stages.Street.TopK != 5 || cfg.Stages.Street.Threshold != 0.3 {
		t.Fatalf("unexpected street stage: %+v", cfg.Stages.Street)
	}
	if cfg.Stages.Genre.TopK != 2 || cfg.Stages.Genre.Threshold != 0.23 {
		t.Fatalf("expected untouched genre defaults, got %+v", cfg.Stages.Genre)
	}
	if cfg.SettleDelay() != 250*time.Millisecond {
		t.Fatalf("unexpected settle delay %s", cfg.SettleDelay())
	}
	overrides := cfg.VocabularyOverrides()
	got := overrides[config.StageContent]
	if len(got) != 2 || got[0] != "dog" || got[1] != "Dog" {
		t.Fatalf("unexpected content override: %#v", got)
	}
	if _, ok := overrides[config.StageGenre]; ok {
		t.Fatal("expected no genre override")
	}
}

func TestEnvOverridesEmbeddingSettings(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "phototagger.toml")
	if err := os.WriteFile(configPath, []byte("[embedding]\nbase_url = \"http://file:1\"\napi_key = \"file-key\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PHOTOTAGGER_EMBEDDING_URL", "http://env:2")
	t.Setenv("PHOTOTAGGER_EMBEDDING_API_KEY", "env-key")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Embedding.BaseURL != "http://env:2" {
		t.Errorf("expected env url, got %q", cfg.Embedding.BaseURL)
	}
	if cfg.Embedding.APIKey != "env-key" {
		t.Errorf("expected env api key, got %q", cfg.Embedding.APIKey)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "phototagger.toml")
	if err := os.WriteFile(configPath, []byte("[embedding]\nbase_urll = \"http://typo\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[stages.genre]") {
		t.Fatalf("sample config missing stage section: %s", contents)
	}

	t.Setenv("PHOTOTAGGER_EMBEDDING_URL", "")
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	def := config.Default()
	if cfg.Stages != def.Stages {
		t.Fatalf("sample stages differ from defaults: %+v", cfg.Stages)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad scheme", func(c *config.Config) { c.Embedding.BaseURL = "ftp://host" }},
		{"missing host", func(c *config.Config) { c.Embedding.BaseURL = "http://" }},
		{"negative top_k", func(c *config.Config) { c.Stages.Bird.TopK = -1 }},
		{"threshold out of range", func(c *config.Config) { c.Stages.Street.Threshold = 1.5 }},
		{"tiny preview", func(c *config.Config) { c.Preview.MaxEdge = 10 }},
		{"quality too high", func(c *config.Config) { c.Preview.JPEGQuality = 101 }},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }},
		{"empty state dir", func(c *config.Config) { c.Paths.StateDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
