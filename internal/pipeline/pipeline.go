// Package pipeline turns a detected story into a reviewed draft:
// scrape, gather context, draft, fact-check, persist and notify.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newsjack/internal/core"
	"newsjack/internal/fetch"
	"newsjack/internal/llm"
	"newsjack/internal/metrics"
	"newsjack/internal/quality"
)

// Pipeline orchestrates draft generation for one story at a time.
// Scraper, gatherer, checker and notifier are optional.
type Pipeline struct {
	scraper  Scraper
	gatherer ContextGatherer
	drafter  Drafter
	checker  QualityChecker
	store    StoryStore
	notifier Notifier
	links    LinkBuilder

	config Config
	log    *slog.Logger
}

// Config holds pipeline configuration
type Config struct {
	// MaxSourceChars caps the source snapshot saved with the story
	MaxSourceChars int

	// Lint thresholds for the advisory editorial notes
	Lint quality.LintThresholds
}

// DefaultConfig returns the default pipeline configuration
func DefaultConfig() Config {
	return Config{
		MaxSourceChars: fetch.DefaultMaxChars,
		Lint:           quality.DefaultLintThresholds(),
	}
}

// Deps are the components a Pipeline runs.
type Deps struct {
	Scraper  Scraper
	Gatherer ContextGatherer
	Drafter  Drafter
	Checker  QualityChecker
	Store    StoryStore
	Notifier Notifier
	Links    LinkBuilder
}

// StepError reports which step aborted the pipeline.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Result describes a completed run.
type Result struct {
	Story    core.Story
	Warnings []string

	// Notified is true when a review notice was delivered.
	Notified bool

	// NotifyErr is set when any notifier failed. With Notified also set,
	// delivery was partial.
	NotifyErr error
}

// New creates a pipeline. Drafter, Store and Links are required.
func New(deps Deps, config Config, log *slog.Logger) (*Pipeline, error) {
	if deps.Drafter == nil {
		return nil, errors.New("pipeline: drafter is required")
	}
	if deps.Store == nil {
		return nil, errors.New("pipeline: story store is required")
	}
	if deps.Links == nil {
		return nil, errors.New("pipeline: link builder is required")
	}
	if config.MaxSourceChars <= 0 {
		config.MaxSourceChars = fetch.DefaultMaxChars
	}
	if log == nil {
		log = slog.Default()
	}

	return &Pipeline{
		scraper:  deps.Scraper,
		gatherer: deps.Gatherer,
		drafter:  deps.Drafter,
		checker:  deps.Checker,
		store:    deps.Store,
		notifier: deps.Notifier,
		links:    deps.Links,
		config:   config,
		log:      log,
	}, nil
}

// Run generates content for a story that is already in drafting. Only the
// draft and persist steps are fatal; every other step degrades to a default.
func (p *Pipeline) Run(ctx context.Context, story core.Story) (*Result, error) {
	log := p.log.With("story_id", story.ID)
	started := time.Now()
	log.Info("Starting newsjack generation", "headline", story.Headline)

	// Step 1: Scrape the source article
	sourceText := p.scrape(ctx, log, story)

	// Step 2: Gather recent context
	researchContext := p.gather(ctx, log, story)

	// Step 3: Draft
	stepStart := time.Now()
	draft, err := p.drafter.Draft(ctx, llm.DraftInput{Story: story, SourceText: sourceText, Context: researchContext})
	metrics.ObserveStep(metrics.StepDraft, stepStart, err)
	if err != nil {
		log.Error("Draft generation failed", "error", err)
		return nil, &StepError{Step: metrics.StepDraft, Err: err}
	}
	log.Info("Draft generated", "title", draft.Title, "category", draft.Category)

	// Step 4: Fact check
	report := p.check(ctx, log, draft, sourceText)

	// Step 5: Persist
	content := core.GeneratedContent{
		Slug:           SlugFor(draft.Title, story.ID),
		Draft:          draft,
		Quality:        report,
		SourceArticles: fetch.Truncate(sourceText, p.config.MaxSourceChars),
	}
	stepStart = time.Now()
	err = p.store.SaveDraft(ctx, story.ID, content)
	metrics.ObserveStep(metrics.StepPersist, stepStart, err)
	if err != nil {
		log.Error("Failed to save draft", "error", err)
		return nil, &StepError{Step: metrics.StepPersist, Err: err}
	}

	story = applyContent(story, content)
	result := &Result{
		Story:    story,
		Warnings: quality.Lint(draft, story.SourceURL, p.config.Lint),
	}

	// Step 6: Notify reviewers
	if p.notifier != nil {
		result.NotifyErr = p.notify(ctx, log, story, result.Warnings)
		result.Notified = reachedReviewer(result.NotifyErr)
	} else {
		log.Warn("No notifier configured, reviewer must use the CLI")
	}

	log.Info("Newsjack generation complete",
		"slug", story.Slug,
		"quality_pass", report.Pass,
		"issues", len(report.Issues),
		"duration", time.Since(started))
	return result, nil
}

func (p *Pipeline) scrape(ctx context.Context, log *slog.Logger, story core.Story) string {
	if p.scraper == nil || story.SourceURL == "" {
		log.Warn("Skipping scrape", "has_scraper", p.scraper != nil, "source_url", story.SourceURL)
		return ""
	}

	started := time.Now()
	text, err := p.scraper.Scrape(ctx, story.SourceURL)
	metrics.ObserveStep(metrics.StepScrape, started, err)
	if err != nil {
		log.Warn("Scrape failed, continuing without source text", "url", story.SourceURL, "error", err)
		return ""
	}
	log.Debug("Scraped source", "chars", len(text))
	return text
}

func (p *Pipeline) gather(ctx context.Context, log *slog.Logger, story core.Story) string {
	if p.gatherer == nil {
		return ""
	}

	started := time.Now()
	text, err := p.gatherer.Gather(ctx, story)
	metrics.ObserveStep(metrics.StepContext, started, err)
	if err != nil {
		log.Warn("Context gathering failed, continuing without context", "error", err)
		return ""
	}
	return text
}

// check runs the fact check. Any failure yields a passing report with no issues.
func (p *Pipeline) check(ctx context.Context, log *slog.Logger, draft core.Draft, sourceText string) core.QualityReport {
	failOpen := core.QualityReport{Pass: true, Issues: []string{}}
	if p.checker == nil {
		metrics.RecordQuality(metrics.QualityFailOpen)
		return failOpen
	}

	started := time.Now()
	report, err := p.checker.Check(ctx, draft, sourceText)
	metrics.ObserveStep(metrics.StepQuality, started, err)
	if err != nil {
		log.Warn("Quality check failed, defaulting to pass", "error", err)
		metrics.RecordQuality(metrics.QualityFailOpen)
		return failOpen
	}

	if report.Issues == nil {
		report.Issues = []string{}
	}
	if report.Pass {
		metrics.RecordQuality(metrics.QualityPass)
	} else {
		metrics.RecordQuality(metrics.QualityFail)
		log.Warn("Quality check flagged issues", "issues", report.Issues)
	}
	return report
}

func (p *Pipeline) notify(ctx context.Context, log *slog.Logger, story core.Story, warnings []string) error {
	notice := core.ReviewNotice{
		Story:      story,
		PublishURL: p.links.ActionURL(story.ID, core.ActionPublish),
		RejectURL:  p.links.ActionURL(story.ID, core.ActionReject),
		SkipURL:    p.links.ActionURL(story.ID, core.ActionSkip),
		Warnings:   warnings,
	}

	started := time.Now()
	err := p.notifier.NotifyReview(ctx, notice)
	metrics.ObserveStep(metrics.StepNotify, started, err)
	if err != nil {
		log.Error("Review notification failed; story remains in review", "error", err)
	}
	return err
}

// SlugFor derives the URL slug from a title, falling back to the story ID.
func SlugFor(title, storyID string) string {
	if slug := core.Slugify(title); slug != "" {
		return slug
	}
	return storyID
}

func applyContent(story core.Story, c core.GeneratedContent) core.Story {
	pass := c.Quality.Pass
	story.Status = core.StatusReview
	story.Slug = c.Slug
	story.Title = c.Draft.Title
	story.MetaDescription = c.Draft.MetaDescription
	story.ContentMarkdown = c.Draft.ContentMarkdown
	story.Category = c.Draft.Category
	story.QualityPass = &pass
	story.QualityIssues = c.Quality.Issues
	story.SourceArticles = c.SourceArticles
	return story
}
