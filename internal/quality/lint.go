package quality

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"newsjack/internal/core"
)

// LintThresholds bounds the editorial heuristics applied to a draft.
type LintThresholds struct {
	MinWords        int
	MaxWords        int
	MaxTitleChars   int
	MinMetaChars    int
	MaxMetaChars    int
	MaxVaguePhrases int
}

// DefaultLintThresholds returns the thresholds used for review emails.
func DefaultLintThresholds() LintThresholds {
	return LintThresholds{
		MinWords:        400,
		MaxWords:        1400,
		MaxTitleChars:   70,
		MinMetaChars:    120,
		MaxMetaChars:    170,
		MaxVaguePhrases: 5,
	}
}

// VaguePhrases are generic quantifiers that usually signal a missing fact.
var VaguePhrases = []string{
	"several",
	"various",
	"multiple",
	"numerous",
	"a number of",
	"a few",
	"a couple of",
	"certain",
}

var (
	vaguePattern  = buildVaguePattern(VaguePhrases)
	numberPattern = regexp.MustCompile(`\$?\d[\d,]*(?:\.\d+)?%?`)
)

func buildVaguePattern(phrases []string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// DetectVaguePhrases counts vague phrases and lists the distinct ones found.
func DetectVaguePhrases(text string) (count int, found []string) {
	seen := make(map[string]bool)
	for _, m := range vaguePattern.FindAllString(text, -1) {
		count++
		phrase := strings.ToLower(m)
		if !seen[phrase] {
			seen[phrase] = true
			found = append(found, phrase)
		}
	}
	return count, found
}

// DetectNumbers counts figures, dollar amounts and percentages in text.
func DetectNumbers(text string) int {
	return len(numberPattern.FindAllString(text, -1))
}

// Lint returns editorial warnings for a draft. Warnings are advisory and
// shown to the reviewer; they never block a story.
func Lint(draft core.Draft, sourceURL string, t LintThresholds) []string {
	warnings := []string{}

	words := len(strings.Fields(draft.ContentMarkdown))
	if words < t.MinWords {
		warnings = append(warnings, fmt.Sprintf("Too short: %d words (min: %d)", words, t.MinWords))
	} else if words > t.MaxWords {
		warnings = append(warnings, fmt.Sprintf("Too long: %d words (max: %d)", words, t.MaxWords))
	}

	if n := utf8.RuneCountInString(draft.Title); n > t.MaxTitleChars {
		warnings = append(warnings, fmt.Sprintf("Title is %d characters (max: %d)", n, t.MaxTitleChars))
	}

	if n := utf8.RuneCountInString(draft.MetaDescription); n < t.MinMetaChars || n > t.MaxMetaChars {
		warnings = append(warnings, fmt.Sprintf("Meta description is %d characters (want %d-%d)", n, t.MinMetaChars, t.MaxMetaChars))
	}

	if count, found := DetectVaguePhrases(draft.ContentMarkdown); count > t.MaxVaguePhrases {
		warnings = append(warnings, fmt.Sprintf("Too vague: %d generic phrases (%s)", count, strings.Join(found, ", ")))
	}

	if DetectNumbers(draft.ContentMarkdown) == 0 {
		warnings = append(warnings, "No specific figures, amounts or dates found")
	}

	if sourceURL != "" && !strings.Contains(draft.ContentMarkdown, sourceURL) {
		warnings = append(warnings, "Original source is not linked in the body")
	}

	return warnings
}
