package pipeline

import (
	"context"

	"newsjack/internal/core"
	"newsjack/internal/llm"
)

// Scraper retrieves the readable text of a source article
type Scraper interface {
	// Scrape returns cleaned, truncated article text
	Scrape(ctx context.Context, url string) (string, error)
}

// ContextGatherer collects recent discussion related to a story
type ContextGatherer interface {
	// Gather returns a short research summary for the story
	Gather(ctx context.Context, story core.Story) (string, error)
}

// Drafter writes the structured blog draft
type Drafter interface {
	// Draft returns a schema-conforming draft or an error
	Draft(ctx context.Context, in llm.DraftInput) (core.Draft, error)
}

// QualityChecker fact-checks a draft against its source
type QualityChecker interface {
	// Check returns the verdict; the pipeline treats errors as a pass
	Check(ctx context.Context, draft core.Draft, sourceText string) (core.QualityReport, error)
}

// StoryStore persists generated content
type StoryStore interface {
	// SaveDraft writes content and moves the story from drafting to review
	SaveDraft(ctx context.Context, id string, content core.GeneratedContent) error
}

// Notifier tells reviewers a draft is waiting
type Notifier interface {
	NotifyReview(ctx context.Context, notice core.ReviewNotice) error
}

// LinkBuilder produces signed action links for a story
type LinkBuilder interface {
	ActionURL(storyID string, action core.Action) string
}
