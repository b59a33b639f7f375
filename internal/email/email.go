// Package email renders and sends the review email for a drafted story.
package email

import (
	"bytes"
	"fmt"
	"html/template"

	"newsjack/internal/core"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Theme controls the colors and width of the review email.
type Theme struct {
	HeaderColor     string
	BackgroundColor string
	TextColor       string
	LinkColor       string
	BorderColor     string
	MaxWidth        string
	FontFamily      string
}

// DefaultTheme returns the theme used for review emails.
func DefaultTheme() Theme {
	return Theme{
		HeaderColor:     "#2563eb", // Blue-600
		BackgroundColor: "#f8fafc", // Slate-50
		TextColor:       "#1e293b", // Slate-800
		LinkColor:       "#3b82f6", // Blue-500
		BorderColor:     "#e2e8f0", // Slate-200
		MaxWidth:        "680px",
		FontFamily:      "system-ui, -apple-system, 'Segoe UI', Roboto, sans-serif",
	}
}

// emailCSS returns the inline stylesheet for a theme.
func emailCSS(t Theme) template.HTML {
	return template.HTML(fmt.Sprintf(`<style type="text/css">
  body { margin: 0; padding: 0; background-color: %s; font-family: %s; color: %s; line-height: 1.6; }
  .container { max-width: %s; margin: 0 auto; background-color: #ffffff; border: 1px solid %s; }
  .header { background-color: %s; color: #ffffff; padding: 24px; }
  .header h1 { margin: 0; font-size: 22px; }
  .content { padding: 24px; }
  .meta { font-size: 14px; color: #64748b; }
  .quality { padding: 12px 16px; border-radius: 6px; margin: 16px 0; }
  .quality.pass { background-color: #ecfdf5; }
  .quality.fail { background-color: #fef2f2; }
  .actions a { display: inline-block; padding: 10px 18px; margin-right: 8px; border-radius: 6px; color: #ffffff; text-decoration: none; font-weight: 600; }
  .publish { background-color: #16a34a; }
  .reject { background-color: #dc2626; }
  .skip { background-color: #64748b; }
  .article { border-top: 1px solid %s; margin-top: 24px; padding-top: 16px; }
  .article a { color: %s; }
</style>`, t.BackgroundColor, t.FontFamily, t.TextColor, t.MaxWidth, t.BorderColor, t.HeaderColor, t.BorderColor, t.LinkColor))
}

// renderMarkdown converts the draft body to HTML for the email preview.
func renderMarkdown(text string) template.HTML {
	if text == "" {
		return template.HTML("")
	}

	mdParser := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.SkipHTML,
	})

	return template.HTML(markdown.ToHTML([]byte(text), mdParser, renderer))
}

var reviewTemplate = template.Must(template.New("review").Funcs(template.FuncMap{
	"markdown": renderMarkdown,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Story.Title}}</title>
{{.CSS}}
</head>
<body>
<div class="container">
  <div class="header">
    <p style="margin:0 0 8px 0;font-size:13px;text-transform:uppercase;letter-spacing:0.05em;">Newsjack draft ready for review</p>
    <h1>{{.Story.Title}}</h1>
  </div>
  <div class="content">
    <p class="meta"><strong>Detected headline:</strong> {{.Story.Headline}}</p>
    {{if .Story.GrantAngle}}<p class="meta"><strong>Grant angle:</strong> {{.Story.GrantAngle}}</p>{{end}}
    {{if .Story.SourceURL}}<p class="meta"><strong>Source:</strong> <a href="{{.Story.SourceURL}}">{{.Story.SourceURL}}</a></p>{{end}}
    <p class="meta"><strong>Category:</strong> {{.Story.Category}} &middot; <strong>Slug:</strong> /blog/{{.Story.Slug}}</p>
    <p class="meta"><strong>Meta description:</strong> {{.Story.MetaDescription}}</p>

    {{if .QualityPass}}
    <div class="quality pass"><strong>Fact check passed.</strong></div>
    {{else}}
    <div class="quality fail"><strong>Fact check flagged issues:</strong>
      <ul>{{range .Story.QualityIssues}}<li>{{.}}</li>{{end}}</ul>
    </div>
    {{end}}

    {{if .Warnings}}
    <p><strong>Editorial notes:</strong></p>
    <ul>{{range .Warnings}}<li>{{.}}</li>{{end}}</ul>
    {{end}}

    <div class="actions">
      <a class="publish" href="{{.PublishURL}}">Publish</a>
      <a class="reject" href="{{.RejectURL}}">Reject</a>
      {{if .SkipURL}}<a class="skip" href="{{.SkipURL}}">Skip</a>{{end}}
    </div>

    <div class="article">
      {{markdown .Story.ContentMarkdown}}
    </div>
  </div>
</div>
</body>
</html>
`))

// RenderReviewEmail renders the HTML body of the review email.
func RenderReviewEmail(notice core.ReviewNotice, theme Theme) (string, error) {
	data := struct {
		core.ReviewNotice
		CSS         template.HTML
		QualityPass bool
	}{
		ReviewNotice: notice,
		CSS:          emailCSS(theme),
		QualityPass:  notice.Story.QualityPass == nil || *notice.Story.QualityPass,
	}

	var buf bytes.Buffer
	if err := reviewTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render review email: %w", err)
	}
	return buf.String(), nil
}

// ReviewSubject returns the subject line for a review email.
func ReviewSubject(story core.Story) string {
	prefix := "[Newsjack] Review"
	if story.QualityPass != nil && !*story.QualityPass {
		prefix = "[Newsjack] Review (fact check flagged)"
	}
	return fmt.Sprintf("%s: %s", prefix, story.Title)
}
