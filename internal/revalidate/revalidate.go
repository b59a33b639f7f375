// Package revalidate asks the marketing site to rebuild cached pages.
package revalidate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"newsjack/internal/metrics"
)

// SecretHeader carries the shared revalidation secret.
const SecretHeader = "x-revalidate-secret"

// Config configures a Client.
type Config struct {
	SiteURL string
	Secret  string
	Timeout time.Duration
}

// Client posts page paths to the site's revalidation endpoint.
type Client struct {
	endpoint   string
	secret     string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient returns a Client. Without a site URL the client is disabled and
// Revalidate does nothing.
func NewClient(cfg Config, log *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	c := &Client{secret: cfg.Secret, httpClient: &http.Client{Timeout: cfg.Timeout}, log: log}
	if cfg.SiteURL != "" {
		c.endpoint = strings.TrimRight(cfg.SiteURL, "/") + "/api/revalidate"
	}
	return c
}

// Enabled reports whether a site URL is configured.
func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

// BlogPaths returns the pages affected by publishing the post at slug.
func BlogPaths(slug string) []string {
	return []string{"/blog", "/blog/" + slug}
}

// Revalidate asks the site to rebuild paths.
func (c *Client) Revalidate(ctx context.Context, paths []string) error {
	if !c.Enabled() {
		c.log.Debug("Revalidation disabled, skipping", "paths", paths)
		return nil
	}

	err := c.post(ctx, paths)
	metrics.RecordRevalidation(err)
	if err != nil {
		return err
	}

	c.log.Info("Revalidated site paths", "paths", paths)
	return nil
}

func (c *Client) post(ctx context.Context, paths []string) error {
	body, err := json.Marshal(struct {
		Paths []string `json:"paths"`
	}{Paths: paths})
	if err != nil {
		return fmt.Errorf("failed to marshal revalidate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create revalidate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set(SecretHeader, c.secret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revalidate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("revalidate returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
