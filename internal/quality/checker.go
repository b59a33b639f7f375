// Package quality fact-checks generated drafts and flags editorial problems
// for the human reviewer.
package quality

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"newsjack/internal/core"
	"newsjack/internal/fetch"
	"newsjack/internal/llm"
)

// ErrNoVerdict is returned when the model reply has no pass field.
var ErrNoVerdict = errors.New("quality reply has no verdict")

// maxSourceChars bounds the source excerpt sent alongside the draft.
const maxSourceChars = 4000

// TextGenerator is the subset of llm.Client the checker needs.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error)
}

// Checker asks a search-grounded model to verify a draft against the source.
type Checker struct {
	gen TextGenerator
	log *slog.Logger
}

// NewChecker returns a Checker. A nil generator makes every check fail with
// llm.ErrMissingAPIKey.
func NewChecker(gen TextGenerator, log *slog.Logger) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{gen: gen, log: log}
}

type verdict struct {
	Pass   *bool    `json:"pass"`
	Issues []string `json:"issues"`
}

// Check returns the model's verdict on the draft. Callers decide what a
// failed check means; the report is only meaningful when err is nil.
func (c *Checker) Check(ctx context.Context, draft core.Draft, sourceText string) (core.QualityReport, error) {
	if c.gen == nil {
		return core.QualityReport{}, fmt.Errorf("quality check: %w", llm.ErrMissingAPIKey)
	}

	reply, err := c.gen.GenerateText(ctx, BuildPrompt(draft, sourceText), llm.TextGenerationOptions{
		SystemPrompt: checkerSystemPrompt,
		Temperature:  0.1,
		GoogleSearch: true,
	})
	if err != nil {
		return core.QualityReport{}, fmt.Errorf("quality check failed: %w", err)
	}

	report, err := ParseVerdict(reply)
	if err != nil {
		return core.QualityReport{}, err
	}

	c.log.Debug("Quality check complete", "pass", report.Pass, "issues", len(report.Issues))
	return report, nil
}

// ParseVerdict decodes a {"pass": bool, "issues": [...]} reply.
func ParseVerdict(reply string) (core.QualityReport, error) {
	var v verdict
	if err := json.Unmarshal([]byte(llm.ExtractJSON(reply)), &v); err != nil {
		return core.QualityReport{}, fmt.Errorf("failed to parse quality reply: %w", err)
	}
	if v.Pass == nil {
		return core.QualityReport{}, ErrNoVerdict
	}

	issues := make([]string, 0, len(v.Issues))
	for _, issue := range v.Issues {
		if issue = strings.TrimSpace(issue); issue != "" {
			issues = append(issues, issue)
		}
	}
	return core.QualityReport{Pass: *v.Pass, Issues: issues}, nil
}

const checkerSystemPrompt = `You are a meticulous fact-checker for a grant-writing blog.
Use Google Search to verify claims that are not supported by the source article.
Flag factual errors, invented quotes, wrong dates or amounts, and claims that overstate the source.
Do not flag style or tone.`

// BuildPrompt renders the fact-check request.
func BuildPrompt(draft core.Draft, sourceText string) string {
	var b strings.Builder

	b.WriteString("Fact-check this draft blog post.\n\n")
	fmt.Fprintf(&b, "TITLE: %s\n\n", draft.Title)
	b.WriteString("DRAFT:\n")
	b.WriteString(draft.ContentMarkdown)

	if sourceText != "" {
		b.WriteString("\n\nSOURCE ARTICLE:\n")
		b.WriteString(fetch.Truncate(sourceText, maxSourceChars))
	}

	b.WriteString("\n\nRespond with only a JSON object of the form ")
	b.WriteString(`{"pass": true|false, "issues": ["short description of each problem"]}`)
	b.WriteString(". Set pass to false only for factual problems. Use an empty issues list when there are none.")
	return b.String()
}
