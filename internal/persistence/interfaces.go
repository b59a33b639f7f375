// Package persistence stores newsjack stories and their lifecycle status.
package persistence

import (
	"context"
	"errors"
	"time"

	"newsjack/internal/core"
)

var (
	// ErrNotFound is returned when no story has the requested ID.
	ErrNotFound = errors.New("story not found")

	// ErrStatusConflict is returned when a compare-and-set status update
	// finds the story in a different status than expected.
	ErrStatusConflict = errors.New("story status changed concurrently")
)

// StoryRepository handles newsjack story persistence operations
type StoryRepository interface {
	// Create inserts a new story in the detected status
	Create(ctx context.Context, story *core.Story) error

	// Get retrieves a story by ID
	Get(ctx context.Context, id string) (*core.Story, error)

	// List retrieves stories, newest first
	List(ctx context.Context, opts ListOptions) ([]core.Story, error)

	// TransitionStatus moves a story from one status to another only if it
	// is still in the from status
	TransitionStatus(ctx context.Context, id string, from, to core.Status) error

	// SaveDraft writes generated content and moves the story from drafting to review
	SaveDraft(ctx context.Context, id string, content core.GeneratedContent) error

	// MarkPublished moves a story from review to published
	MarkPublished(ctx context.Context, id string, at time.Time) error

	// Archive moves a story to archived only if it is still in the from status
	Archive(ctx context.Context, id string, from core.Status) error
}

// ListOptions provides filtering and pagination for list operations
type ListOptions struct {
	Status core.Status // Empty means any status
	Limit  int
	Offset int
}

// Database represents the main database interface
type Database interface {
	// Stories returns the story repository
	Stories() StoryRepository

	// Close closes the database connection
	Close() error

	// Ping verifies the database connection
	Ping(ctx context.Context) error
}
