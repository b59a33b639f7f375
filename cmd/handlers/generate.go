package handlers

import (
	"context"

	"newsjack/internal/config"

	"github.com/spf13/cobra"
)

// NewGenerateCmd creates the generate command, which approves a story directly
func NewGenerateCmd() *cobra.Command {
	var storyID string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a draft for a detected story",
		Long: `Run the approve action for a story without an action link.

The story must be in the detected status. On success it moves to review
and reviewers are notified, exactly as if the approve link was clicked.

Example:
  newsjack generate --story 3f2b...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), storyID)
		},
	}

	cmd.Flags().StringVar(&storyID, "story", "", "Story ID (required)")
	_ = cmd.MarkFlagRequired("story")

	return cmd
}

func runGenerate(ctx context.Context, storyID string) error {
	cfg := config.Get()
	if err := cfg.RequireServing(); err != nil {
		return err
	}

	db, err := getDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	service, err := buildService(ctx, cfg, db)
	if err != nil {
		return err
	}

	return printOutcome(service.Approve(ctx, storyID))
}
