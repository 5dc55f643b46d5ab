package config

const (
	defaultConfigPath        = "~/.config/phototagger/config.toml"
	projectConfigName        = "phototagger.toml"
	defaultStateDir          = "~/.local/state/phototagger"
	defaultEmbeddingBaseURL  = "http://127.0.0.1:7997"
	defaultEmbeddingModel    = "openai/clip-vit-base-patch32"
	defaultEmbeddingTimeout  = 60
	defaultEmbeddingAttempts = 5
	defaultPreviewMaxEdge    = 768
	defaultPreviewQuality    = 90
	defaultSettleDelayMillis = 1000
	defaultWatchBacklogWarn  = 256
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Stage names shared by the config sections and the inference pipeline.
const (
	StageGenre   = "genre"
	StageContent = "content"
	StageBird    = "bird"
	StageInsect  = "insect"
	StageStreet  = "street"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Embedding: Embedding{
			BaseURL:        defaultEmbeddingBaseURL,
			Model:          defaultEmbeddingModel,
			TimeoutSeconds: defaultEmbeddingTimeout,
			MaxAttempts:    defaultEmbeddingAttempts,
		},
		Preview: Preview{
			MaxEdge:     defaultPreviewMaxEdge,
			JPEGQuality: defaultPreviewQuality,
		},
		Stages: Stages{
			Genre:   Stage{TopK: 2, Threshold: 0.23},
			Content: Stage{TopK: 2, Threshold: 0.22},
			Bird:    Stage{TopK: 1, Threshold: 0.21},
			Insect:  Stage{TopK: 1, Threshold: 0.21},
			Street:  Stage{TopK: 3, Threshold: 0.20},
		},
		Watch: Watch{
			SettleDelayMillis: defaultSettleDelayMillis,
			BacklogWarning:    defaultWatchBacklogWarn,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
