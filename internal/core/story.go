// Package core defines the newsjack story model and its lifecycle.
package core

import (
	"regexp"
	"strings"
	"time"
)

// Status is the lifecycle state of a newsjack story.
type Status string

const (
	StatusDetected  Status = "detected"
	StatusDrafting  Status = "drafting"
	StatusReview    Status = "review"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDetected, StatusDrafting, StatusReview, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Action is a reviewer decision carried by an action token.
type Action string

const (
	ActionApprove Action = "approve"
	ActionPublish Action = "publish"
	ActionReject  Action = "reject"
	ActionSkip    Action = "skip"
)

// Known reports whether a is an action the handler understands.
func (a Action) Known() bool {
	switch a {
	case ActionApprove, ActionPublish, ActionReject, ActionSkip:
		return true
	}
	return false
}

// AllowedFrom returns the statuses an action may be applied from.
// Published and archived are terminal, so no action leaves them.
func (a Action) AllowedFrom() []Status {
	switch a {
	case ActionApprove:
		return []Status{StatusDetected}
	case ActionPublish, ActionReject:
		return []Status{StatusReview}
	case ActionSkip:
		return []Status{StatusDetected, StatusReview}
	}
	return nil
}

// Allows reports whether the action may be applied to a story in status s.
func (a Action) Allows(s Status) bool {
	for _, from := range a.AllowedFrom() {
		if from == s {
			return true
		}
	}
	return false
}

// Story is a content record tracked through the newsjack lifecycle.
type Story struct {
	ID     string `json:"id"`
	Status Status `json:"status"`

	// Set by the detection job
	Headline   string `json:"headline"`
	GrantAngle string `json:"grant_angle"`
	SourceURL  string `json:"source_url"`

	// Generation outputs
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
	ContentMarkdown string `json:"content_markdown"`
	Category        string `json:"category"`

	QualityPass    *bool    `json:"quality_pass"`
	QualityIssues  []string `json:"quality_issues"`
	SourceArticles string   `json:"source_articles"`

	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Draft is the structured article returned by the generation model.
type Draft struct {
	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
	Category        string `json:"category"`
	ContentMarkdown string `json:"content_markdown"`
}

// QualityReport is the outcome of the automated fact check.
type QualityReport struct {
	Pass   bool     `json:"pass"`
	Issues []string `json:"issues"`
}

// GeneratedContent is everything the pipeline writes back to a story.
type GeneratedContent struct {
	Slug           string
	Draft          Draft
	Quality        QualityReport
	SourceArticles string
}

// DefaultCategories are the blog categories the draft model may choose from.
var DefaultCategories = []string{
	"Funding News",
	"Policy & Regulation",
	"Nonprofit Strategy",
	"Grant Writing Tips",
	"Foundation Spotlight",
}

const maxSlugLength = 80

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a URL path segment.
func Slugify(title string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}
