package tagging

import "strings"

// Triggers records which specialized vocabularies the detected genres unlock.
type Triggers uint8

const (
	TriggerBird Triggers = 1 << iota
	TriggerInsect
	TriggerStreet
)

var triggerWords = []struct {
	flag  Triggers
	name  string
	words []string
}{
	{TriggerBird, "bird", []string{"bird", "wildlife"}},
	{TriggerInsect, "insect", []string{"macro", "insect"}},
	{TriggerStreet, "street", []string{"street", "architecture"}},
}

// DetectTriggers derives trigger flags from genre labels. The labels are
// lower-cased and joined with spaces, then searched for trigger words.
// Only genre labels are inspected.
func DetectTriggers(genres []string) Triggers {
	text := strings.ToLower(strings.Join(genres, " "))
	var out Triggers
	for _, tw := range triggerWords {
		for _, word := range tw.words {
			if strings.Contains(text, word) {
				out |= tw.flag
				break
			}
		}
	}
	return out
}

// Has reports whether every flag in f is set.
func (t Triggers) Has(f Triggers) bool {
	return f != 0 && t&f == f
}

func (t Triggers) String() string {
	if t == 0 {
		return "none"
	}
	names := make([]string, 0, len(triggerWords))
	for _, tw := range triggerWords {
		if t&tw.flag != 0 {
			names = append(names, tw.name)
		}
	}
	return strings.Join(names, "|")
}
