package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"newsjack/internal/core"
	"newsjack/internal/newsjack"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed templates/*.html
var templateFiles embed.FS

// PageRenderer renders outcome pages from the embedded templates.
type PageRenderer struct {
	templates *template.Template
}

// NewPageRenderer parses the embedded templates.
func NewPageRenderer() (*PageRenderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"kindLabel": kindLabel,
	}).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &PageRenderer{templates: tmpl}, nil
}

type pageData struct {
	Outcome newsjack.Outcome
	Preview template.HTML
}

// RenderOutcome writes the full HTML page for an outcome.
func (pr *PageRenderer) RenderOutcome(w io.Writer, outcome newsjack.Outcome) error {
	data := pageData{Outcome: outcome}

	// Show the draft under the approve page so the reviewer can skim it
	// without waiting for the email.
	if outcome.Kind == newsjack.KindSuccess && outcome.Action == core.ActionApprove && outcome.Story != nil {
		data.Preview = renderMarkdown(outcome.Story.ContentMarkdown)
	}

	var buf bytes.Buffer
	if err := pr.templates.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func kindLabel(kind newsjack.OutcomeKind) string {
	switch kind {
	case newsjack.KindSuccess:
		return "Done"
	case newsjack.KindNotice:
		return "No change"
	case newsjack.KindFailure:
		return "Failed"
	default:
		return "Link problem"
	}
}

// renderMarkdown converts markdown text to HTML, returning it as template.HTML for safe rendering.
// Raw HTML in the model output is dropped.
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
