package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"newsjack/internal/config"
	"newsjack/internal/core"
	"newsjack/internal/persistence"

	"github.com/spf13/cobra"
)

// NewStoryCmd creates the story command group
func NewStoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Record and inspect newsjack stories",
	}

	cmd.AddCommand(newStoryAddCmd())
	cmd.AddCommand(newStoryListCmd())
	cmd.AddCommand(newStoryShowCmd())

	return cmd
}

func newStoryAddCmd() *cobra.Command {
	var story core.Story

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a detected story",
		Long: `Record a story in the detected status, as the detection job does.

Example:
  newsjack story add --headline "NIH caps indirect costs" \
    --angle "Universities face budget gaps" --url https://example.org/nih`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoryAdd(cmd.Context(), &story)
		},
	}

	cmd.Flags().StringVar(&story.Headline, "headline", "", "News headline (required)")
	cmd.Flags().StringVar(&story.GrantAngle, "angle", "", "Why the story matters to grant seekers")
	cmd.Flags().StringVar(&story.SourceURL, "url", "", "Source article URL")
	_ = cmd.MarkFlagRequired("headline")

	return cmd
}

func runStoryAdd(ctx context.Context, story *core.Story) error {
	story.Headline = strings.TrimSpace(story.Headline)
	if story.Headline == "" {
		return fmt.Errorf("headline must not be empty")
	}
	story.Status = core.StatusDetected

	db, err := getDatabase(config.Get())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Stories().Create(ctx, story); err != nil {
		return err
	}

	fmt.Println(story.ID)
	return nil
}

func newStoryListCmd() *cobra.Command {
	var (
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stories, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoryList(cmd.Context(), core.Status(status), limit)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (detected, drafting, review, published, archived)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of stories")

	return cmd
}

func runStoryList(ctx context.Context, status core.Status, limit int) error {
	if status != "" && !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}

	db, err := getDatabase(config.Get())
	if err != nil {
		return err
	}
	defer db.Close()

	stories, err := db.Stories().List(ctx, persistence.ListOptions{Status: status, Limit: limit})
	if err != nil {
		return err
	}
	if len(stories) == 0 {
		fmt.Println("No stories found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tCREATED\tHEADLINE")
	for _, s := range stories {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Status, s.CreatedAt.Format("2006-01-02 15:04"), s.Headline)
	}
	return w.Flush()
}

func newStoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a story and its draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoryShow(cmd.Context(), args[0])
		},
	}
}

func runStoryShow(ctx context.Context, id string) error {
	db, err := getDatabase(config.Get())
	if err != nil {
		return err
	}
	defer db.Close()

	story, err := db.Stories().Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Print(formatStory(story))
	return nil
}

// formatStory renders a story for the terminal.
func formatStory(s *core.Story) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ID:        %s\n", s.ID)
	fmt.Fprintf(&b, "Status:    %s\n", s.Status)
	fmt.Fprintf(&b, "Headline:  %s\n", s.Headline)
	if s.GrantAngle != "" {
		fmt.Fprintf(&b, "Angle:     %s\n", s.GrantAngle)
	}
	if s.SourceURL != "" {
		fmt.Fprintf(&b, "Source:    %s\n", s.SourceURL)
	}
	fmt.Fprintf(&b, "Created:   %s\n", s.CreatedAt.Format("2006-01-02 15:04:05"))
	if s.PublishedAt != nil {
		fmt.Fprintf(&b, "Published: %s\n", s.PublishedAt.Format("2006-01-02 15:04:05"))
	}

	if s.Title == "" {
		return b.String()
	}

	fmt.Fprintf(&b, "\nTitle:     %s\n", s.Title)
	fmt.Fprintf(&b, "Slug:      %s\n", s.Slug)
	fmt.Fprintf(&b, "Category:  %s\n", s.Category)
	fmt.Fprintf(&b, "Meta:      %s\n", s.MetaDescription)

	switch {
	case s.QualityPass == nil:
		b.WriteString("Quality:   not checked\n")
	case *s.QualityPass:
		b.WriteString("Quality:   pass\n")
	default:
		b.WriteString("Quality:   flagged\n")
	}
	for _, issue := range s.QualityIssues {
		fmt.Fprintf(&b, "  - %s\n", issue)
	}

	fmt.Fprintf(&b, "\n%s\n", s.ContentMarkdown)
	return b.String()
}
