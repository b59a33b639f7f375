package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"newsjack/internal/core"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const (
	DefaultDraftModel = "gpt-4o"
	draftSchemaName   = "newsjack_article"
)

// DraftInput is everything the drafting model sees about a story.
type DraftInput struct {
	Story      core.Story
	SourceText string
	Context    string
}

// DrafterConfig configures a Drafter.
type DrafterConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float32
	Categories  []string
}

// Drafter writes structured blog drafts with OpenAI structured outputs.
type Drafter struct {
	client      *openai.Client
	model       string
	timeout     time.Duration
	temperature float32
	categories  []string
	schema      jsonschema.Definition
}

// NewDrafter returns a Drafter. An API key is required since drafting has no fallback.
func NewDrafter(cfg DrafterConfig) (*Drafter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w. Set OPENAI_API_KEY or ai.openai.api_key", ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultDraftModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = core.DefaultCategories
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &Drafter{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		categories:  cfg.Categories,
		schema:      StrictSchema(DraftSchema(cfg.Categories)),
	}, nil
}

// DraftSchema describes the article object the model must return.
func DraftSchema(categories []string) jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"title": {
				Type:        jsonschema.String,
				Description: "Headline for the blog post, under 70 characters",
			},
			"meta_description": {
				Type:        jsonschema.String,
				Description: "SEO meta description, 140-160 characters",
			},
			"category": {
				Type:        jsonschema.String,
				Description: "Blog category",
				Enum:        categories,
			},
			"content_markdown": {
				Type:        jsonschema.String,
				Description: "Full article body in Markdown, 600-900 words, without the title",
			},
		},
	}
}

// Draft generates the article. Any failure is returned to the caller.
func (d *Drafter) Draft(ctx context.Context, in DraftInput) (core.Draft, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	schema := d.schema
	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       d.model,
		Temperature: d.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: draftSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildDraftPrompt(in)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   draftSchemaName,
				Schema: &schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return core.Draft{}, fmt.Errorf("draft generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return core.Draft{}, fmt.Errorf("draft generation returned no choices")
	}

	return d.parseDraft(resp.Choices[0].Message.Content)
}

func (d *Drafter) parseDraft(content string) (core.Draft, error) {
	var draft core.Draft
	if err := json.Unmarshal([]byte(ExtractJSON(content)), &draft); err != nil {
		return core.Draft{}, fmt.Errorf("failed to parse draft JSON: %w", err)
	}

	draft.Title = strings.TrimSpace(draft.Title)
	draft.ContentMarkdown = strings.TrimSpace(draft.ContentMarkdown)
	draft.MetaDescription = strings.TrimSpace(draft.MetaDescription)
	if draft.Title == "" || draft.ContentMarkdown == "" {
		return core.Draft{}, fmt.Errorf("draft is missing title or content")
	}

	if !contains(d.categories, draft.Category) {
		draft.Category = d.categories[0]
	}
	return draft, nil
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

const draftSystemPrompt = `You write timely blog posts for a grant-writing platform whose readers are nonprofit leaders, grant writers and researchers.
Connect the news to what it means for people applying for grants: funding availability, NOFO/RFP changes, deadlines, eligibility and strategy.
Be accurate. Only state facts supported by the source text or research context. Do not invent quotes, numbers or dates.
Write in a confident, practical voice with short paragraphs and descriptive H2 subheadings. End with concrete next steps for grant seekers.`

// BuildDraftPrompt renders the user prompt for the drafting model.
func BuildDraftPrompt(in DraftInput) string {
	var b strings.Builder

	b.WriteString("Write a blog post about the following news story.\n\n")
	fmt.Fprintf(&b, "**Headline:** %s\n", in.Story.Headline)
	if in.Story.GrantAngle != "" {
		fmt.Fprintf(&b, "**Grant angle:** %s\n", in.Story.GrantAngle)
	}
	if in.Story.SourceURL != "" {
		fmt.Fprintf(&b, "**Source:** %s\n", in.Story.SourceURL)
	}

	b.WriteString("\n**SOURCE ARTICLE:**\n")
	if in.SourceText != "" {
		b.WriteString(in.SourceText)
	} else {
		b.WriteString("(unavailable; rely on the headline and research context)")
	}

	if in.Context != "" {
		b.WriteString("\n\n**RECENT RESEARCH CONTEXT:**\n")
		b.WriteString(in.Context)
	}

	b.WriteString("\n\nCite the original source with a Markdown link in the body.")
	return b.String()
}
