package handlers

import (
	"fmt"
	"os"

	"newsjack/internal/config"
	"newsjack/internal/logger"

	"github.com/spf13/cobra"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "newsjack",
		Short: "Turn breaking news into reviewed blog posts",
		Long: `Newsjack drafts blog posts from detected news stories.

Each story moves through detected -> drafting -> review -> published,
or is archived. Reviewers act on a story through signed links in the
review email; the same actions are available here for operators.

Examples:
  # Apply database migrations
  newsjack migrate up

  # Record a story and generate a draft for it
  newsjack story add --headline "NIH caps indirect costs" --url https://example.org/nih
  newsjack generate --story <id>

  # Serve the action endpoint
  newsjack serve`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.newsjack.yaml or $HOME/.newsjack.yaml)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewMigrateCmd())
	rootCmd.AddCommand(NewStoryCmd())
	rootCmd.AddCommand(NewTokenCmd())
	rootCmd.AddCommand(NewGenerateCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig loads configuration and configures the default logger from it.
func initConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Configure(cfg.Logging.Level, cfg.Logging.Format)
	if cfg.App.ConfigFile != "" {
		logger.Debug("Using config file", "path", cfg.App.ConfigFile)
	}
	return nil
}
