// Package messaging posts review notices to chat webhooks.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"newsjack/internal/core"
)

// ErrWebhookNotConfigured is returned when no Slack webhook URL is set.
var ErrWebhookNotConfigured = errors.New("slack webhook URL not configured")

// SlackMessage represents a Slack message structure
type SlackMessage struct {
	Text      string       `json:"text,omitempty"`
	Blocks    []SlackBlock `json:"blocks,omitempty"`
	Username  string       `json:"username,omitempty"`
	IconEmoji string       `json:"icon_emoji,omitempty"`
}

// SlackBlock represents a Slack block kit element
type SlackBlock struct {
	Type     string              `json:"type"`
	Text     *SlackText          `json:"text,omitempty"`
	Fields   []SlackText         `json:"fields,omitempty"`
	Elements []SlackBlockElement `json:"elements,omitempty"`
}

// SlackText represents text in Slack blocks
type SlackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SlackBlockElement represents elements within blocks
type SlackBlockElement struct {
	Type  string     `json:"type"`
	Text  *SlackText `json:"text,omitempty"`
	URL   string     `json:"url,omitempty"`
	Style string     `json:"style,omitempty"`
}

// SlackClient posts to a Slack incoming webhook.
type SlackClient struct {
	WebhookURL string
	Username   string
	IconEmoji  string
	HTTPClient *http.Client
	log        *slog.Logger
}

// NewSlackClient creates a new Slack webhook client
func NewSlackClient(webhookURL, username, iconEmoji string, timeout time.Duration, log *slog.Logger) *SlackClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &SlackClient{
		WebhookURL: webhookURL,
		Username:   username,
		IconEmoji:  iconEmoji,
		HTTPClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// NotifyReview posts a review notice with publish and reject buttons.
func (c *SlackClient) NotifyReview(ctx context.Context, notice core.ReviewNotice) error {
	msg := BuildReviewMessage(notice)
	msg.Username = c.Username
	msg.IconEmoji = c.IconEmoji

	if err := c.SendSlackMessage(ctx, msg); err != nil {
		return err
	}
	c.log.Info("Slack review notice sent", "story_id", notice.Story.ID)
	return nil
}

// BuildReviewMessage converts a review notice into Slack blocks.
func BuildReviewMessage(notice core.ReviewNotice) *SlackMessage {
	story := notice.Story

	quality := ":white_check_mark: Fact check passed"
	if story.QualityPass != nil && !*story.QualityPass {
		quality = ":warning: Fact check flagged issues"
		for _, issue := range story.QualityIssues {
			quality += "\n• " + issue
		}
	}

	blocks := []SlackBlock{
		{
			Type: "header",
			Text: &SlackText{Type: "plain_text", Text: truncate("Review: "+story.Title, 150)},
		},
		{
			Type: "section",
			Fields: []SlackText{
				{Type: "mrkdwn", Text: "*Category*\n" + story.Category},
				{Type: "mrkdwn", Text: "*Slug*\n/blog/" + story.Slug},
			},
		},
		{
			Type: "section",
			Text: &SlackText{Type: "mrkdwn", Text: fmt.Sprintf("*Detected:* %s\n%s", story.Headline, story.MetaDescription)},
		},
		{
			Type: "section",
			Text: &SlackText{Type: "mrkdwn", Text: quality},
		},
	}

	if len(notice.Warnings) > 0 {
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackText{Type: "mrkdwn", Text: "_Editorial notes:_ " + strings.Join(notice.Warnings, "; ")},
		})
	}

	actions := []SlackBlockElement{
		button("Publish", notice.PublishURL, "primary"),
		button("Reject", notice.RejectURL, "danger"),
	}
	if notice.SkipURL != "" {
		actions = append(actions, button("Skip", notice.SkipURL, ""))
	}
	blocks = append(blocks, SlackBlock{Type: "actions", Elements: actions})

	return &SlackMessage{
		Text:   "Newsjack draft ready for review: " + story.Title,
		Blocks: blocks,
	}
}

func button(label, url, style string) SlackBlockElement {
	return SlackBlockElement{
		Type:  "button",
		Text:  &SlackText{Type: "plain_text", Text: label},
		URL:   url,
		Style: style,
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// SendSlackMessage sends a message to Slack webhook
func (c *SlackClient) SendSlackMessage(ctx context.Context, message *SlackMessage) error {
	if c.WebhookURL == "" {
		return ErrWebhookNotConfigured
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create Slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Slack message: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Warn("Failed to close Slack response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("slack webhook returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// ValidateWebhookURL validates if a webhook URL is properly formatted
func ValidateWebhookURL(url string) error {
	if url == "" {
		return ErrWebhookNotConfigured
	}
	if !strings.HasPrefix(url, "https://hooks.slack.com/") {
		return fmt.Errorf("invalid Slack webhook URL format")
	}
	return nil
}
