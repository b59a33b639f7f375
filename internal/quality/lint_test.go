package quality

import (
	"strings"
	"testing"

	"newsjack/internal/core"
)

func TestDetectVaguePhrases(t *testing.T) {
	count, found := DetectVaguePhrases("Several agencies and several states announced a number of changes. Multiplex is fine.")
	if count != 3 {
		t.Errorf("Expected 3 vague phrases, got %d", count)
	}
	if len(found) != 2 {
		t.Errorf("Expected 2 distinct phrases, got %v", found)
	}
}

func TestDetectNumbers(t *testing.T) {
	if n := DetectNumbers("NIH capped rates at 15% on $9,000,000 in 2025"); n != 3 {
		t.Errorf("Expected 3 figures, got %d", n)
	}
	if n := DetectNumbers("no figures here"); n != 0 {
		t.Errorf("Expected 0 figures, got %d", n)
	}
}

func TestLint(t *testing.T) {
	thresholds := DefaultLintThresholds()
	source := "https://news.example.org/nih"

	good := core.Draft{
		Title:           "NIH Caps Indirect Costs at 15%",
		MetaDescription: strings.Repeat("m", 150),
		ContentMarkdown: strings.Repeat("word ", 600) + "The cap is 15% per [NIH](" + source + ").",
	}
	if warnings := Lint(good, source, thresholds); len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}

	bad := core.Draft{
		Title:           strings.Repeat("t", 90),
		MetaDescription: "short",
		ContentMarkdown: "Several several several several several several things happened.",
	}
	warnings := Lint(bad, source, thresholds)

	for _, want := range []string{"Too short", "Title is", "Meta description", "Too vague", "No specific figures", "not linked"} {
		found := false
		for _, w := range warnings {
			if strings.Contains(w, want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected warning containing %q in %v", want, warnings)
		}
	}
}
