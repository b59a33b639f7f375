// Package fetch retrieves readable source text for a story through a
// readability proxy.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultProxyURL = "https://r.jina.ai"
	DefaultTimeout  = 15 * time.Second
	DefaultMaxChars = 8000

	// Upper bound on the response body read from the proxy
	maxBodyBytes = 2 << 20
)

// ErrEmptyContent is returned when a page yields no usable text.
var ErrEmptyContent = errors.New("no readable content")

// Options configures a Scraper.
type Options struct {
	ProxyURL   string
	Timeout    time.Duration
	MaxChars   int
	UserAgent  string
	HTTPClient *http.Client
}

// Scraper fetches pages through a readability proxy and cleans the result.
type Scraper struct {
	proxyURL  string
	timeout   time.Duration
	maxChars  int
	userAgent string
	client    *http.Client
	log       *slog.Logger
}

// NewScraper returns a Scraper with defaults applied for zero options.
func NewScraper(opts Options, log *slog.Logger) *Scraper {
	if opts.ProxyURL == "" {
		opts.ProxyURL = DefaultProxyURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	return &Scraper{
		proxyURL:  strings.TrimRight(opts.ProxyURL, "/"),
		timeout:   opts.Timeout,
		maxChars:  opts.MaxChars,
		userAgent: opts.UserAgent,
		client:    opts.HTTPClient,
		log:       log,
	}
}

// Scrape returns the cleaned, truncated text of sourceURL.
func (s *Scraper) Scrape(ctx context.Context, sourceURL string) (string, error) {
	parsed, err := url.ParseRequestURI(sourceURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", fmt.Errorf("invalid source URL %q", sourceURL)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.proxyURL+"/"+sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", sourceURL, err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("X-Return-Format", "text")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch %s: status code %d", sourceURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body from %s: %w", sourceURL, err)
	}

	text := string(body)
	if isHTML(resp.Header.Get("Content-Type")) {
		text, err = ExtractText(text)
		if err != nil {
			return "", fmt.Errorf("failed to parse HTML from %s: %w", sourceURL, err)
		}
	}

	cleaned := Truncate(StripBoilerplate(text), s.maxChars)
	if cleaned == "" {
		return "", fmt.Errorf("%s: %w", sourceURL, ErrEmptyContent)
	}

	if s.log != nil {
		s.log.Debug("Scraped source", "url", sourceURL, "chars", len([]rune(cleaned)))
	}
	return cleaned, nil
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && (mediaType == "text/html" || mediaType == "application/xhtml+xml")
}

// ExtractText pulls the main textual content out of an HTML document.
func ExtractText(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, nav, footer, header, aside, form, iframe, noscript, .sidebar, #sidebar, .ad, .advertisement, .popup, .modal, .cookie-banner").Remove()

	var b strings.Builder
	collect := func(sel *goquery.Selection) {
		sel.Find("h1, h2, h3, h4, h5, h6, p, li, blockquote, pre").Each(func(_ int, item *goquery.Selection) {
			if text := strings.TrimSpace(item.Text()); text != "" {
				b.WriteString(text)
				b.WriteString("\n\n")
			}
		})
	}

	for _, selector := range []string{"article", "main", "[role='main']", ".entry-content", ".post-content", ".article-body", "#content"} {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) { collect(s) })
		if b.Len() > 0 {
			break
		}
	}
	if b.Len() == 0 {
		collect(doc.Find("body"))
	}

	return strings.TrimSpace(b.String()), nil
}

var (
	// Header lines emitted by the readability proxy
	proxyHeaderLine = regexp.MustCompile(`^(Title|URL Source|Published Time|Markdown Content|Warning):`)
	imageLine       = regexp.MustCompile(`^!\[[^\]]*\]\([^)]*\)$`)
	bareLinkLine    = regexp.MustCompile(`^[*\-+]?\s*\[[^\]]*\]\([^)]*\)$`)
	ruleLine        = regexp.MustCompile(`^([-=*_]\s*){3,}$`)
	chromeLine      = regexp.MustCompile(`(?i)^(skip to (main )?content|sign in|log in|subscribe( now)?|share( this)?( article)?|menu|search|advertisement|accept( all)? cookies|cookie (policy|settings)|follow us|related (articles|stories)|read more|newsletter)\b.{0,40}$`)
)

// StripBoilerplate removes navigation chrome, proxy headers, bare links
// and image lines, collapsing runs of blank lines.
func StripBoilerplate(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	kept := make([]string, 0, len(lines))
	blank := true

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			if !blank {
				kept = append(kept, "")
			}
			blank = true
			continue
		}
		if proxyHeaderLine.MatchString(line) || imageLine.MatchString(line) ||
			bareLinkLine.MatchString(line) || ruleLine.MatchString(line) || chromeLine.MatchString(line) {
			continue
		}
		kept = append(kept, line)
		blank = false
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// Truncate caps text at max characters (runes).
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
