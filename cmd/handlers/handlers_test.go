package handlers

import (
	"errors"
	"strings"
	"testing"
	"time"

	"newsjack/internal/actiontoken"
	"newsjack/internal/config"
	"newsjack/internal/core"
	"newsjack/internal/logger"
)

func TestNewRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()

	for _, path := range [][]string{
		{"serve"},
		{"migrate", "up"},
		{"migrate", "status"},
		{"story", "add"},
		{"story", "list"},
		{"story", "show"},
		{"token"},
		{"generate"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Errorf("Command %v not registered (err=%v)", path, err)
		}
	}
}

func TestBuildNotifiers(t *testing.T) {
	testCases := []struct {
		name string
		cfg  config.Config
		want int
	}{
		{"nothing configured", config.Config{}, 0},
		{
			"smtp without recipients",
			config.Config{Email: config.Email{SMTP: config.SMTPConfig{Host: "smtp.example.org"}}},
			0,
		},
		{
			"smtp with recipients",
			config.Config{Email: config.Email{
				SMTP:        config.SMTPConfig{Host: "smtp.example.org"},
				FromAddress: "newsjack@example.org",
				ReviewTo:    []string{"editor@example.org"},
			}},
			1,
		},
		{
			"email and slack",
			config.Config{
				Email: config.Email{
					SMTP:     config.SMTPConfig{Host: "smtp.example.org"},
					ReviewTo: []string{"editor@example.org"},
				},
				Messaging: config.Messaging{Slack: config.SlackConfig{WebhookURL: "https://hooks.slack.com/services/T/B/X"}},
			},
			2,
		},
		{
			"invalid slack webhook",
			config.Config{Messaging: config.Messaging{Slack: config.SlackConfig{WebhookURL: "https://example.org/hook"}}},
			0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := buildNotifiers(&tc.cfg, logger.Discard()); len(got) != tc.want {
				t.Errorf("Expected %d notifiers, got %d", tc.want, len(got))
			}
		})
	}
}

func TestNewSigner_RequiresSecret(t *testing.T) {
	if _, err := newSigner(&config.Config{}); err == nil || !strings.Contains(err.Error(), "NEWSJACK_ACTION_SECRET") {
		t.Errorf("Expected missing secret error, got %v", err)
	}
}

func TestRunToken_RejectsSeparatorInStoryID(t *testing.T) {
	if err := runToken("2025:abc", core.ActionPublish); !errors.Is(err, actiontoken.ErrInvalidStoryID) {
		t.Errorf("Expected ErrInvalidStoryID, got %v", err)
	}
}

func TestFormatStory(t *testing.T) {
	pass := false
	story := &core.Story{
		ID:              "s1",
		Status:          core.StatusReview,
		Headline:        "NIH caps indirect costs",
		SourceURL:       "https://news.example.org/nih",
		Title:           "What the NIH Cap Means",
		Slug:            "what-the-nih-cap-means",
		Category:        "Policy & Regulation",
		ContentMarkdown: "## What changed",
		QualityPass:     &pass,
		QualityIssues:   []string{"15% figure not in source"},
		CreatedAt:       time.Date(2025, 2, 10, 9, 30, 0, 0, time.UTC),
	}

	out := formatStory(story)
	for _, want := range []string{"Status:    review", "Quality:   flagged", "  - 15% figure not in source", "## What changed", "2025-02-10 09:30:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}

	detected := formatStory(&core.Story{ID: "s2", Status: core.StatusDetected, Headline: "H"})
	if strings.Contains(detected, "Title:") {
		t.Errorf("Undrafted story should not show draft fields:\n%s", detected)
	}
}
