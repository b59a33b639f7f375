package newsjack

import "newsjack/internal/core"

// OutcomeKind classifies the page shown after an action link is followed.
type OutcomeKind string

const (
	KindSuccess OutcomeKind = "success"
	KindNotice  OutcomeKind = "notice" // precondition not met, nothing changed
	KindFailure OutcomeKind = "failure"
	KindInvalid OutcomeKind = "invalid"
)

// Outcome is the result of handling an action, rendered as an HTML page.
type Outcome struct {
	Kind    OutcomeKind
	Title   string
	Message string

	// Link is an optional follow-up URL, such as the published post.
	Link     string
	LinkText string

	Action core.Action
	Story  *core.Story
}

// metric labels for handled actions
const (
	resultSuccess      = "success"
	resultInvalidToken = "invalid_token"
	resultUnknown      = "unknown_action"
	resultNotFound     = "not_found"
	resultPrecondition = "precondition"
	resultFailed       = "failed"
)

func invalidTokenOutcome() Outcome {
	return Outcome{
		Kind:    KindInvalid,
		Title:   "Invalid or expired link",
		Message: "This link is not valid. Use the buttons from the most recent review email.",
	}
}

func notFoundOutcome(action core.Action) Outcome {
	return Outcome{
		Kind:    KindInvalid,
		Title:   "Story not found",
		Message: "The story for this link no longer exists.",
		Action:  action,
	}
}

func unknownActionOutcome(action core.Action) Outcome {
	return Outcome{
		Kind:    KindInvalid,
		Title:   "Unrecognized action",
		Message: "This link asks for an action the newsjack service does not support.",
		Action:  action,
	}
}

func errorOutcome(action core.Action) Outcome {
	return Outcome{
		Kind:    KindFailure,
		Title:   "Something went wrong",
		Message: "The story could not be loaded or updated. Try the link again in a minute.",
		Action:  action,
	}
}

// preconditionOutcome explains why an action does not apply to the story's
// current status.
func preconditionOutcome(action core.Action, story *core.Story) Outcome {
	o := Outcome{Kind: KindNotice, Action: action, Story: story}

	switch action {
	case core.ActionApprove:
		switch story.Status {
		case core.StatusDrafting:
			o.Title = "Draft in progress"
			o.Message = "This story is already being drafted. A review email will follow when it is ready."
		case core.StatusReview:
			o.Title = "Draft already generated"
			o.Message = "This story already has a draft waiting for review. Use the publish link from the review email."
		case core.StatusPublished:
			o.Title = "Already published"
			o.Message = "This story has already been published."
		default:
			o.Title = "Story archived"
			o.Message = "This story was rejected or skipped and can no longer be drafted."
		}
	case core.ActionPublish:
		switch story.Status {
		case core.StatusPublished:
			o.Title = "Already published"
			o.Message = "This story has already been published."
		case core.StatusDetected, core.StatusDrafting:
			o.Title = "Not ready to publish"
			o.Message = "This story has no reviewed draft yet."
		default:
			o.Title = "Story archived"
			o.Message = "This story was rejected or skipped and cannot be published."
		}
	case core.ActionReject, core.ActionSkip:
		switch story.Status {
		case core.StatusPublished:
			o.Title = "Already published"
			o.Message = "This story is live on the blog and can no longer be rejected or skipped."
		case core.StatusArchived:
			o.Title = "Already archived"
			o.Message = "This story was already rejected or skipped."
		case core.StatusDrafting:
			o.Title = "Draft in progress"
			o.Message = "This story is being drafted. Use the links in the review email once it arrives."
		default:
			o.Title = "No draft to reject"
			o.Message = "This story has not been drafted yet. Use the skip link to dismiss it."
		}
	default:
		o.Title = "Nothing to do"
		o.Message = "This action does not apply to the story in its current state."
	}
	return o
}
