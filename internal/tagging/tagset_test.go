package tagging

import "testing"

func TestTagSetUnion(t *testing.T) {
	base := NewTagSet("sunset", "Landscape", "", "sunset")
	if !base.Equal(TagSet{"Landscape", "sunset"}) {
		t.Fatalf("unexpected base %v", base)
	}
	merged := base.Union("Dog", "dog", "Landscape")
	want := TagSet{"Dog", "Landscape", "dog", "sunset"}
	if !merged.Equal(want) {
		t.Fatalf("got %v want %v", merged, want)
	}
	if !merged.ContainsAll(base) {
		t.Fatal("union must contain the original set")
	}
	if len(base) != 2 {
		t.Fatal("union must not modify the receiver")
	}
	if merged.Contains("cat") || !merged.Contains("dog") {
		t.Fatal("unexpected Contains result")
	}
}

func TestTagSetEmpty(t *testing.T) {
	if !NewTagSet().Empty() || !NewTagSet("").Empty() {
		t.Fatal("expected empty set")
	}
	strs := NewTagSet("a").Strings()
	strs[0] = "b"
	if NewTagSet("a").Strings()[0] != "a" {
		t.Fatal("Strings must copy")
	}
}
