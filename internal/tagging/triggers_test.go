package tagging

import "testing"

func TestDetectTriggers(t *testing.T) {
	tests := []struct {
		name   string
		genres []string
		want   Triggers
	}{
		{"none", nil, 0},
		{"landscape only", []string{"Landscape", "Night"}, 0},
		{"bird", []string{"Bird"}, TriggerBird},
		{"wildlife", []string{"Wildlife"}, TriggerBird},
		{"macro", []string{"Macro"}, TriggerInsect},
		{"street photography", []string{"Street Photography"}, TriggerStreet},
		{"architecture", []string{"Architecture"}, TriggerStreet},
		{"case insensitive", []string{"BIRD"}, TriggerBird},
		{"two flags", []string{"Macro", "Architecture"}, TriggerInsect | TriggerStreet},
		{"substring", []string{"Insects at dusk"}, TriggerInsect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectTriggers(tt.genres); got != tt.want {
				t.Fatalf("DetectTriggers(%v) = %s, want %s", tt.genres, got, tt.want)
			}
		})
	}
}

func TestTriggersString(t *testing.T) {
	if got := Triggers(0).String(); got != "none" {
		t.Fatalf("got %q", got)
	}
	if got := (TriggerBird | TriggerStreet).String(); got != "bird|street" {
		t.Fatalf("got %q", got)
	}
	if (TriggerBird).Has(0) {
		t.Fatal("empty flag must not match")
	}
}
