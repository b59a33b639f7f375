package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newsjack/internal/config"
	"newsjack/internal/core"
	"newsjack/internal/logger"
	"newsjack/internal/newsjack"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

// fakeActions returns a fixed outcome for "good" and an invalid outcome otherwise.
type fakeActions struct {
	tokens []string
}

func (f *fakeActions) Handle(ctx context.Context, token string) newsjack.Outcome {
	f.tokens = append(f.tokens, token)
	if token == "good" {
		return newsjack.Outcome{
			Kind:    newsjack.KindSuccess,
			Title:   "Published",
			Message: "The post is live.",
			Link:    "https://site.example.org/blog/nih-caps",
			Action:  core.ActionPublish,
			Story:   &core.Story{ID: "s1", Headline: "NIH caps <indirect> costs", Status: core.StatusPublished},
		}
	}
	return newsjack.Outcome{Kind: newsjack.KindInvalid, Title: "Invalid or expired link"}
}

func newTestServer(t *testing.T, db Pinger, cfg config.Server) (*Server, *fakeActions) {
	t.Helper()
	actions := &fakeActions{}
	s, err := New(db, actions, cfg, logger.Discard())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, actions
}

func get(s *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleAction_AlwaysOK(t *testing.T) {
	s, actions := newTestServer(t, fakePinger{}, config.Server{})

	testCases := []struct {
		name   string
		target string
		want   string
	}{
		{"valid token", "/api/newsjack/action?token=good", "Published"},
		{"invalid token", "/api/newsjack/action?token=bad", "Invalid or expired link"},
		{"missing token", "/api/newsjack/action", "Invalid or expired link"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(s, tc.target)

			if rec.Code != http.StatusOK {
				t.Errorf("Expected 200, got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
				t.Errorf("Unexpected content type %q", ct)
			}
			body := rec.Body.String()
			if !strings.Contains(body, "<!DOCTYPE html>") || !strings.Contains(body, tc.want) {
				t.Errorf("Body missing %q:\n%s", tc.want, body)
			}
		})
	}

	if len(actions.tokens) != 3 || actions.tokens[2] != "" {
		t.Errorf("Unexpected tokens passed to handler: %q", actions.tokens)
	}
}

func TestHandleAction_EscapesStoryFields(t *testing.T) {
	s, _ := newTestServer(t, fakePinger{}, config.Server{})
	body := get(s, "/api/newsjack/action?token=good").Body.String()

	if strings.Contains(body, "<indirect>") {
		t.Error("Headline was not escaped")
	}
	if !strings.Contains(body, "https://site.example.org/blog/nih-caps") {
		t.Error("Expected link to published post")
	}
}

func TestHandleAction_Headers(t *testing.T) {
	s, _ := newTestServer(t, fakePinger{}, config.Server{})
	rec := get(s, "/api/newsjack/action?token=good")

	expected := map[string]string{
		"Cache-Control":          "no-cache, no-store, must-revalidate",
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
	}
	for header, want := range expected {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if csp := rec.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "default-src 'none'") {
		t.Errorf("Unexpected CSP %q", csp)
	}
}

func TestHandleAction_RateLimited(t *testing.T) {
	cfg := config.Server{RateLimit: config.RateLimit{Enabled: true, RequestsPerSecond: 0.001, Burst: 1}}
	s, actions := newTestServer(t, fakePinger{}, cfg)

	first := get(s, "/api/newsjack/action?token=good")
	second := get(s, "/api/newsjack/action?token=good")

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("Expected 200 for both requests, got %d and %d", first.Code, second.Code)
	}
	if !strings.Contains(second.Body.String(), "Too many requests") {
		t.Errorf("Expected rate limit page, got:\n%s", second.Body.String())
	}
	if len(actions.tokens) != 1 {
		t.Errorf("Rate limited request reached the handler: %d calls", len(actions.tokens))
	}
}

func TestHandleHealth(t *testing.T) {
	testCases := []struct {
		name       string
		db         Pinger
		wantStatus int
		wantBody   string
	}{
		{"healthy", fakePinger{}, http.StatusOK, "ok"},
		{"database down", fakePinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "unhealthy"},
		{"no database", nil, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestServer(t, tc.db, config.Server{})
			rec := get(s, "/health")

			if rec.Code != tc.wantStatus {
				t.Errorf("Expected %d, got %d", tc.wantStatus, rec.Code)
			}
			var resp HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Invalid JSON: %v", err)
			}
			if resp.Status != tc.wantBody {
				t.Errorf("Expected status %q, got %q", tc.wantBody, resp.Status)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, fakePinger{}, config.Server{})
	rec := get(s, "/metrics")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("Expected Go runtime metrics in output")
	}
}

func TestRenderOutcome_ApprovePreview(t *testing.T) {
	pages, err := NewPageRenderer()
	if err != nil {
		t.Fatalf("NewPageRenderer failed: %v", err)
	}

	var buf strings.Builder
	err = pages.RenderOutcome(&buf, newsjack.Outcome{
		Kind:   newsjack.KindSuccess,
		Title:  "Draft generated",
		Action: core.ActionApprove,
		Story:  &core.Story{ID: "s1", Headline: "H", ContentMarkdown: "## What changed\n\nDetails.<script>alert(1)</script>"},
	})
	if err != nil {
		t.Fatalf("RenderOutcome failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<h2") || !strings.Contains(out, "What changed") {
		t.Errorf("Expected rendered markdown preview:\n%s", out)
	}
	if strings.Contains(out, "<script>") {
		t.Error("Raw HTML from the draft must be dropped")
	}
}
