package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"newsjack/internal/core"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const storiesTable = "newsjack_stories"

const defaultListLimit = 50

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var storyColumns = []string{
	"id", "status", "headline", "grant_angle", "source_url",
	"slug", "title", "meta_description", "content_markdown", "category",
	"quality_pass", "quality_issues", "source_articles",
	"created_at", "published_at", "updated_at",
}

// postgresStoryRepo implements StoryRepository for PostgreSQL
type postgresStoryRepo struct {
	db  *sql.DB
	now func() time.Time
}

func (r *postgresStoryRepo) Create(ctx context.Context, story *core.Story) error {
	if story.ID == "" {
		story.ID = uuid.NewString()
	}
	if story.Status == "" {
		story.Status = core.StatusDetected
	}
	now := r.now().UTC()
	story.CreatedAt = now
	story.UpdatedAt = now

	query, args, err := insertStoryQuery(story).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert story: %w", err)
	}
	return nil
}

func (r *postgresStoryRepo) Get(ctx context.Context, id string) (*core.Story, error) {
	// ids are UUIDs; anything else cannot match and would fail the cast
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	query, args, err := selectStoryQuery(id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	story, err := scanStory(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}
	return story, nil
}

func (r *postgresStoryRepo) List(ctx context.Context, opts ListOptions) ([]core.Story, error) {
	query, args, err := listStoriesQuery(opts).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	defer rows.Close()

	var stories []core.Story
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, *story)
	}
	return stories, rows.Err()
}

func (r *postgresStoryRepo) TransitionStatus(ctx context.Context, id string, from, to core.Status) error {
	return r.execGuarded(ctx, id, transitionQuery(id, from, to, r.now().UTC()))
}

func (r *postgresStoryRepo) SaveDraft(ctx context.Context, id string, content core.GeneratedContent) error {
	return r.execGuarded(ctx, id, saveDraftQuery(id, content, r.now().UTC()))
}

func (r *postgresStoryRepo) MarkPublished(ctx context.Context, id string, at time.Time) error {
	return r.execGuarded(ctx, id, markPublishedQuery(id, at.UTC(), r.now().UTC()))
}

func (r *postgresStoryRepo) Archive(ctx context.Context, id string, from core.Status) error {
	return r.execGuarded(ctx, id, archiveQuery(id, from, r.now().UTC()))
}

// execGuarded runs a status update and tells a missing story apart from a
// story whose status no longer matches the guard.
func (r *postgresStoryRepo) execGuarded(ctx context.Context, id string, update sq.UpdateBuilder) error {
	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update story %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected > 0 {
		return nil
	}

	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: story %s is %s", ErrStatusConflict, id, current.Status)
}

func insertStoryQuery(s *core.Story) sq.InsertBuilder {
	return psql.Insert(storiesTable).
		Columns("id", "status", "headline", "grant_angle", "source_url", "created_at", "updated_at").
		Values(s.ID, string(s.Status), s.Headline, s.GrantAngle, s.SourceURL, s.CreatedAt, s.UpdatedAt)
}

func selectStoryQuery(id string) sq.SelectBuilder {
	return psql.Select(storyColumns...).From(storiesTable).Where(sq.Eq{"id": id})
}

func listStoriesQuery(opts ListOptions) sq.SelectBuilder {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	q := psql.Select(storyColumns...).From(storiesTable)
	if opts.Status != "" {
		q = q.Where(sq.Eq{"status": string(opts.Status)})
	}
	q = q.OrderBy("created_at DESC").Limit(uint64(limit))
	if opts.Offset > 0 {
		q = q.Offset(uint64(opts.Offset))
	}
	return q
}

func transitionQuery(id string, from, to core.Status, now time.Time) sq.UpdateBuilder {
	return psql.Update(storiesTable).
		Set("status", string(to)).
		Set("updated_at", now).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"status": string(from)})
}

func saveDraftQuery(id string, c core.GeneratedContent, now time.Time) sq.UpdateBuilder {
	issues := c.Quality.Issues
	if issues == nil {
		issues = []string{}
	}
	return psql.Update(storiesTable).
		Set("slug", c.Slug).
		Set("title", c.Draft.Title).
		Set("meta_description", c.Draft.MetaDescription).
		Set("content_markdown", c.Draft.ContentMarkdown).
		Set("category", c.Draft.Category).
		Set("quality_pass", c.Quality.Pass).
		Set("quality_issues", pq.Array(issues)).
		Set("source_articles", c.SourceArticles).
		Set("status", string(core.StatusReview)).
		Set("updated_at", now).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"status": string(core.StatusDrafting)})
}

func markPublishedQuery(id string, at, now time.Time) sq.UpdateBuilder {
	return psql.Update(storiesTable).
		Set("status", string(core.StatusPublished)).
		Set("published_at", at).
		Set("updated_at", now).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"status": string(core.StatusReview)})
}

func archiveQuery(id string, from core.Status, now time.Time) sq.UpdateBuilder {
	return psql.Update(storiesTable).
		Set("status", string(core.StatusArchived)).
		Set("updated_at", now).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"status": string(from)})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStory(row rowScanner) (*core.Story, error) {
	var (
		s           core.Story
		status      string
		qualityPass sql.NullBool
		issues      pq.StringArray
		publishedAt sql.NullTime
	)
	err := row.Scan(
		&s.ID, &status, &s.Headline, &s.GrantAngle, &s.SourceURL,
		&s.Slug, &s.Title, &s.MetaDescription, &s.ContentMarkdown, &s.Category,
		&qualityPass, &issues, &s.SourceArticles,
		&s.CreatedAt, &publishedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Status = core.Status(status)
	if qualityPass.Valid {
		pass := qualityPass.Bool
		s.QualityPass = &pass
	}
	s.QualityIssues = []string(issues)
	if s.QualityIssues == nil {
		s.QualityIssues = []string{}
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		s.PublishedAt = &t
	}
	return &s, nil
}
