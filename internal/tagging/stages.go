package tagging

import (
	"phototagger/internal/config"
	"phototagger/internal/vocab"
)

// Stage is one ranking pass over a vocabulary. A specialized stage runs only
// when the genre triggers include its Trigger.
type Stage struct {
	Name       string
	Vocabulary vocab.Vocabulary
	TopK       int
	Threshold  float64
	Trigger    Triggers
}

// Stages is the fixed cascade: genre, then content, then specialized stages
// in table order.
type Stages struct {
	Genre       Stage
	Content     Stage
	Specialized []Stage
}

// DefaultStages builds the cascade over reg with the built-in ranking
// parameters.
func DefaultStages(reg vocab.Registry) Stages {
	return Stages{
		Genre:   Stage{Name: vocab.Genre, Vocabulary: reg.MustGet(vocab.Genre), TopK: 2, Threshold: 0.23},
		Content: Stage{Name: vocab.Content, Vocabulary: reg.MustGet(vocab.Content), TopK: 2, Threshold: 0.22},
		Specialized: []Stage{
			{Name: vocab.Bird, Vocabulary: reg.MustGet(vocab.Bird), TopK: 1, Threshold: 0.21, Trigger: TriggerBird},
			{Name: vocab.Insect, Vocabulary: reg.MustGet(vocab.Insect), TopK: 1, Threshold: 0.21, Trigger: TriggerInsect},
			{Name: vocab.Street, Vocabulary: reg.MustGet(vocab.Street), TopK: 3, Threshold: 0.20, Trigger: TriggerStreet},
		},
	}
}

// StagesFromConfig builds the cascade from cfg: vocabulary overrides are
// applied to the built-in registry and each stage takes its top_k and
// threshold from the matching [stages.<name>] section.
func StagesFromConfig(cfg *config.Config) Stages {
	reg := vocab.Default().WithOverrides(cfg.VocabularyOverrides())
	stages := DefaultStages(reg)
	apply := func(stage *Stage) {
		if settings, ok := cfg.StageSettings(stage.Name); ok {
			stage.TopK = settings.TopK
			stage.Threshold = settings.Threshold
		}
	}
	apply(&stages.Genre)
	apply(&stages.Content)
	specialized := make([]Stage, len(stages.Specialized))
	copy(specialized, stages.Specialized)
	for i := range specialized {
		apply(&specialized[i])
	}
	stages.Specialized = specialized
	return stages
}

// All returns every stage in cascade order.
func (s Stages) All() []Stage {
	out := make([]Stage, 0, 2+len(s.Specialized))
	out = append(out, s.Genre, s.Content)
	return append(out, s.Specialized...)
}
