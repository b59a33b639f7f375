// Package research gathers recent discussion around a story from a
// search-augmented chat model.
package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"newsjack/internal/core"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel   = "sonar"
	DefaultBaseURL = "https://api.perplexity.ai"
)

// ErrMissingAPIKey is returned when no Perplexity key is configured.
var ErrMissingAPIKey = errors.New("perplexity API key is required")

const systemPrompt = `You are a research assistant for a grant-writing newsletter. ` +
	`Summarize recent news coverage and public discussion related to the story you are given. ` +
	`Focus on facts a nonprofit or grant seeker would care about: agencies, dollar amounts, deadlines, eligibility changes and reactions from the sector. ` +
	`Use short bullet points and name your sources. Do not speculate.`

// Config configures a Gatherer.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Gatherer queries Perplexity's OpenAI-compatible chat API.
type Gatherer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewGatherer returns a Gatherer. A Gatherer without an API key is valid;
// Gather reports ErrMissingAPIKey so callers can skip the step.
func NewGatherer(cfg Config) *Gatherer {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	g := &Gatherer{model: cfg.Model, timeout: cfg.Timeout}
	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		g.client = openai.NewClientWithConfig(clientCfg)
	}
	return g
}

// Gather returns a plain-text digest of related coverage for story.
func (g *Gatherer) Gather(ctx context.Context, story core.Story) (string, error) {
	if g.client == nil {
		return "", ErrMissingAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildQuery(story)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("perplexity request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("perplexity returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// BuildQuery renders the user prompt for a story.
func BuildQuery(story core.Story) string {
	var b strings.Builder
	b.WriteString("What has been reported or discussed in the past two weeks about this story?\n\n")
	fmt.Fprintf(&b, "Headline: %s\n", story.Headline)
	if story.GrantAngle != "" {
		fmt.Fprintf(&b, "Why it matters for grant seekers: %s\n", story.GrantAngle)
	}
	if story.SourceURL != "" {
		fmt.Fprintf(&b, "Original source: %s\n", story.SourceURL)
	}
	return b.String()
}
