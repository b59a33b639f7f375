// Package newsjack handles reviewer actions on detected stories and guards
// the story lifecycle: detected -> drafting -> review -> published | archived.
package newsjack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newsjack/internal/actiontoken"
	"newsjack/internal/core"
	"newsjack/internal/metrics"
	"newsjack/internal/persistence"
	"newsjack/internal/pipeline"
	"newsjack/internal/revalidate"
)

// TokenVerifier checks signed action tokens.
type TokenVerifier interface {
	Verify(token string) (actiontoken.Claims, error)
}

// Store is the subset of the story repository the service mutates.
type Store interface {
	Get(ctx context.Context, id string) (*core.Story, error)
	TransitionStatus(ctx context.Context, id string, from, to core.Status) error
	MarkPublished(ctx context.Context, id string, at time.Time) error
	Archive(ctx context.Context, id string, from core.Status) error
}

// Generator runs the draft pipeline for a story in drafting.
type Generator interface {
	Run(ctx context.Context, story core.Story) (*pipeline.Result, error)
}

// Revalidator refreshes cached site pages.
type Revalidator interface {
	Revalidate(ctx context.Context, paths []string) error
}

// Deps are the collaborators of a Service.
type Deps struct {
	Verifier    TokenVerifier
	Store       Store
	Generator   Generator
	Revalidator Revalidator

	// SiteURL is used to link to published posts; optional.
	SiteURL string
}

// Service executes reviewer actions.
type Service struct {
	verifier    TokenVerifier
	store       Store
	generator   Generator
	revalidator Revalidator
	siteURL     string
	now         func() time.Time
	log         *slog.Logger
}

// NewService creates a Service. Verifier, Store and Generator are required.
func NewService(deps Deps, log *slog.Logger) (*Service, error) {
	if deps.Verifier == nil || deps.Store == nil || deps.Generator == nil {
		return nil, errors.New("newsjack: verifier, store and generator are required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		verifier:    deps.Verifier,
		store:       deps.Store,
		generator:   deps.Generator,
		revalidator: deps.Revalidator,
		siteURL:     strings.TrimRight(deps.SiteURL, "/"),
		now:         time.Now,
		log:         log,
	}, nil
}

// Handle verifies token and applies the action it carries. Every failure is
// reported as an Outcome; invalid tokens never reveal why they failed.
func (s *Service) Handle(ctx context.Context, token string) Outcome {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		s.log.Warn("Rejected action token", "error", err)
		metrics.RecordAction("", resultInvalidToken)
		return invalidTokenOutcome()
	}
	return s.Execute(ctx, claims.StoryID, claims.Action)
}

// Approve starts generation for a detected story without a token.
func (s *Service) Approve(ctx context.Context, storyID string) Outcome {
	return s.Execute(ctx, storyID, core.ActionApprove)
}

// Execute applies action to the story after checking its current status.
func (s *Service) Execute(ctx context.Context, storyID string, action core.Action) Outcome {
	log := s.log.With("story_id", storyID, "action", action)

	if !action.Known() {
		log.Warn("Unrecognized action")
		metrics.RecordAction(string(action), resultUnknown)
		return unknownActionOutcome(action)
	}

	story, err := s.store.Get(ctx, storyID)
	if errors.Is(err, persistence.ErrNotFound) {
		log.Warn("Story not found")
		metrics.RecordAction(string(action), resultNotFound)
		return notFoundOutcome(action)
	}
	if err != nil {
		log.Error("Failed to load story", "error", err)
		metrics.RecordAction(string(action), resultFailed)
		return errorOutcome(action)
	}

	if !action.Allows(story.Status) {
		log.Info("Action does not apply to current status", "status", story.Status)
		metrics.RecordAction(string(action), resultPrecondition)
		return preconditionOutcome(action, story)
	}

	var outcome Outcome
	switch action {
	case core.ActionApprove:
		outcome = s.approve(ctx, log, story)
	case core.ActionPublish:
		outcome = s.publish(ctx, log, story)
	case core.ActionReject, core.ActionSkip:
		outcome = s.archive(ctx, log, story, action)
	}

	metrics.RecordAction(string(action), metricResult(outcome.Kind))
	return outcome
}

func (s *Service) approve(ctx context.Context, log *slog.Logger, story *core.Story) Outcome {
	if err := s.store.TransitionStatus(ctx, story.ID, core.StatusDetected, core.StatusDrafting); err != nil {
		return s.transitionFailed(ctx, log, core.ActionApprove, story, err)
	}
	story.Status = core.StatusDrafting
	log.Info("Story moved to drafting")

	result, err := s.generator.Run(ctx, *story)
	if err != nil {
		log.Error("Generation failed, reverting to detected", "error", err)
		// The request context may already be done; the revert must still land.
		revertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if revertErr := s.store.TransitionStatus(revertCtx, story.ID, core.StatusDrafting, core.StatusDetected); revertErr != nil {
			log.Error("Failed to revert story to detected", "error", revertErr)
		} else {
			story.Status = core.StatusDetected
		}
		return Outcome{
			Kind:    KindFailure,
			Title:   "Draft generation failed",
			Message: fmt.Sprintf("%s. Nothing was saved. Click the approve link again to retry.", failureReason(err)),
			Action:  core.ActionApprove,
			Story:   story,
		}
	}

	generated := result.Story
	var message string
	switch {
	case result.Notified && result.NotifyErr != nil:
		message = "The draft is ready. A review notification was sent, but at least one notification channel failed."
	case result.Notified:
		message = "The draft is ready. A review email with publish and reject links has been sent."
	case result.NotifyErr != nil:
		message = "The draft is ready, but the review notification could not be sent. Use `newsjack story show` to review it."
	default:
		message = "The draft is ready. No reviewer notification is configured; use `newsjack story show` to review it."
	}
	if generated.QualityPass != nil && !*generated.QualityPass {
		message += " The fact check flagged issues that need attention."
	}

	return Outcome{
		Kind:    KindSuccess,
		Title:   "Draft ready for review",
		Message: message,
		Action:  core.ActionApprove,
		Story:   &generated,
	}
}

func (s *Service) publish(ctx context.Context, log *slog.Logger, story *core.Story) Outcome {
	publishedAt := s.now().UTC()
	if err := s.store.MarkPublished(ctx, story.ID, publishedAt); err != nil {
		return s.transitionFailed(ctx, log, core.ActionPublish, story, err)
	}
	story.Status = core.StatusPublished
	story.PublishedAt = &publishedAt
	log.Info("Story published", "slug", story.Slug)

	if s.revalidator != nil {
		if err := s.revalidator.Revalidate(ctx, revalidate.BlogPaths(story.Slug)); err != nil {
			log.Warn("Site revalidation failed; pages will refresh on their next rebuild", "error", err)
		}
	}

	outcome := Outcome{
		Kind:    KindSuccess,
		Title:   "Published",
		Message: fmt.Sprintf("%q is now live on the blog.", story.Title),
		Action:  core.ActionPublish,
		Story:   story,
	}
	if s.siteURL != "" && story.Slug != "" {
		outcome.Link = s.siteURL + "/blog/" + story.Slug
		outcome.LinkText = "View post"
	}
	return outcome
}

func (s *Service) archive(ctx context.Context, log *slog.Logger, story *core.Story, action core.Action) Outcome {
	if err := s.store.Archive(ctx, story.ID, story.Status); err != nil {
		return s.transitionFailed(ctx, log, action, story, err)
	}
	story.Status = core.StatusArchived
	log.Info("Story archived")

	title := "Story rejected"
	if action == core.ActionSkip {
		title = "Story skipped"
	}
	return Outcome{
		Kind:    KindSuccess,
		Title:   title,
		Message: "The story has been archived and will not be published.",
		Action:  action,
		Story:   story,
	}
}

// transitionFailed maps a failed status update to an outcome. A CAS conflict
// means another request moved the story first, so the fresh status is shown.
func (s *Service) transitionFailed(ctx context.Context, log *slog.Logger, action core.Action, story *core.Story, err error) Outcome {
	switch {
	case errors.Is(err, persistence.ErrStatusConflict):
		log.Info("Story status changed concurrently", "error", err)
		if current, getErr := s.store.Get(ctx, story.ID); getErr == nil {
			story = current
		}
		return preconditionOutcome(action, story)
	case errors.Is(err, persistence.ErrNotFound):
		return notFoundOutcome(action)
	default:
		log.Error("Failed to update story status", "error", err)
		return errorOutcome(action)
	}
}

func failureReason(err error) string {
	var stepErr *pipeline.StepError
	if errors.As(err, &stepErr) {
		switch stepErr.Step {
		case metrics.StepDraft:
			return "The writing model did not return a usable draft"
		case metrics.StepPersist:
			return "The draft could not be saved"
		}
	}
	return "Generation stopped unexpectedly"
}

func metricResult(kind OutcomeKind) string {
	switch kind {
	case KindSuccess:
		return resultSuccess
	case KindNotice:
		return resultPrecondition
	case KindInvalid:
		return resultNotFound
	default:
		return resultFailed
	}
}
