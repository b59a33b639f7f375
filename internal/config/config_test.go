package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func withCleanConfig(t *testing.T) {
	t.Helper()
	Reset()
	t.Cleanup(Reset)
	// Avoid picking up a developer's .env or config in the package directory
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	withCleanConfig(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Scrape.Timeout != 15*time.Second {
		t.Errorf("Expected 15s scrape timeout, got %s", cfg.Scrape.Timeout)
	}
	if cfg.Scrape.MaxChars != 8000 {
		t.Errorf("Expected 8000 max chars, got %d", cfg.Scrape.MaxChars)
	}
	if cfg.Server.RequestTimeout != 120*time.Second {
		t.Errorf("Expected 120s request timeout, got %s", cfg.Server.RequestTimeout)
	}
	if cfg.AI.Perplexity.Model != "sonar" {
		t.Errorf("Expected sonar model, got %q", cfg.AI.Perplexity.Model)
	}
	if len(cfg.Newsjack.Categories) == 0 {
		t.Error("Expected default categories")
	}
}

func TestLoad_EnvironmentAliases(t *testing.T) {
	withCleanConfig(t)

	t.Setenv("PPLX_API_KEY", "pplx-key")
	t.Setenv("GOOGLE_AI_API_KEY", "gemini-key")
	t.Setenv("NEWSJACK_ACTION_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://localhost/newsjack")
	t.Setenv("NEWSJACK_REVIEW_EMAIL", "editor@example.org, second@example.org")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AI.Perplexity.APIKey != "pplx-key" {
		t.Errorf("Perplexity key not bound, got %q", cfg.AI.Perplexity.APIKey)
	}
	if cfg.AI.Gemini.APIKey != "gemini-key" {
		t.Errorf("Gemini key not bound, got %q", cfg.AI.Gemini.APIKey)
	}
	if cfg.Newsjack.ActionSecret != "s3cret" {
		t.Errorf("Action secret not bound, got %q", cfg.Newsjack.ActionSecret)
	}
	if cfg.Database.ConnectionString != "postgres://localhost/newsjack" {
		t.Errorf("Database URL not bound, got %q", cfg.Database.ConnectionString)
	}
	if len(cfg.Email.ReviewTo) != 2 || cfg.Email.ReviewTo[1] != "second@example.org" {
		t.Errorf("Review recipients not split, got %v", cfg.Email.ReviewTo)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	withCleanConfig(t)

	path := filepath.Join(t.TempDir(), "newsjack.yaml")
	content := `
server:
  port: 9090
scrape:
  max_chars: 4000
  timeout: 5s
newsjack:
  base_url: https://grants.example.org
  categories:
    - Funding News
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Scrape.MaxChars != 4000 || cfg.Scrape.Timeout != 5*time.Second {
		t.Errorf("Scrape settings not read: %+v", cfg.Scrape)
	}
	if cfg.Newsjack.BaseURL != "https://grants.example.org" {
		t.Errorf("Base URL not read, got %q", cfg.Newsjack.BaseURL)
	}
	if len(cfg.Newsjack.Categories) != 1 {
		t.Errorf("Expected 1 category, got %v", cfg.Newsjack.Categories)
	}
	if cfg.App.ConfigFile != path {
		t.Errorf("Expected ConfigFile %q, got %q", path, cfg.App.ConfigFile)
	}
}

func TestLoad_Invalid(t *testing.T) {
	withCleanConfig(t)
	t.Setenv("LOG_LEVEL", "verbose")
	t.Setenv("SMTP_HOST", "smtp.example.org")

	_, err := Load("")
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "logging.level") {
		t.Errorf("Expected logging.level error, got %v", err)
	}
	if !strings.Contains(err.Error(), "email.from_address") {
		t.Errorf("Expected from_address error, got %v", err)
	}
}

func TestRequireServing(t *testing.T) {
	cfg := &Config{}
	err := cfg.RequireServing()
	if err == nil {
		t.Fatal("Expected error for empty config")
	}
	for _, key := range []string{"DATABASE_URL", "NEWSJACK_ACTION_SECRET", "OPENAI_API_KEY"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("Expected %s in error, got %v", key, err)
		}
	}

	cfg.Database.ConnectionString = "postgres://x"
	cfg.Newsjack.ActionSecret = "s"
	cfg.AI.OpenAI.APIKey = "k"
	if err := cfg.RequireServing(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
