package handlers

import (
	"fmt"

	"newsjack/internal/actiontoken"
	"newsjack/internal/config"
	"newsjack/internal/core"

	"github.com/spf13/cobra"
)

// NewTokenCmd creates the token command, which prints a signed action link
func NewTokenCmd() *cobra.Command {
	var (
		storyID string
		action  string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed action token and link",
		Long: `Print the signed token and action URL for a story.

Example:
  newsjack token --story 3f2b... --action publish`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(storyID, core.Action(action))
		},
	}

	cmd.Flags().StringVar(&storyID, "story", "", "Story ID (required)")
	cmd.Flags().StringVar(&action, "action", "", "Action: approve, publish, reject or skip (required)")
	_ = cmd.MarkFlagRequired("story")
	_ = cmd.MarkFlagRequired("action")

	return cmd
}

func runToken(storyID string, action core.Action) error {
	if !action.Known() {
		return fmt.Errorf("unknown action %q", action)
	}
	if err := actiontoken.ValidateStoryID(storyID); err != nil {
		return err
	}

	cfg := config.Get()
	signer, err := newSigner(cfg)
	if err != nil {
		return err
	}

	fmt.Println(signer.Generate(storyID, action))
	fmt.Println(signer.ActionURL(cfg.Newsjack.BaseURL, storyID, action))
	return nil
}
