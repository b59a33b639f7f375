package revalidate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"newsjack/internal/logger"
)

func TestRevalidate(t *testing.T) {
	var gotPaths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/revalidate" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get(SecretHeader); got != "s3cret" {
			t.Errorf("Unexpected secret header %q", got)
		}
		var body struct {
			Paths []string `json:"paths"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode body: %v", err)
		}
		gotPaths = body.Paths
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(Config{SiteURL: server.URL + "/", Secret: "s3cret"}, logger.Discard())
	if err := c.Revalidate(context.Background(), BlogPaths("nih-caps")); err != nil {
		t.Fatalf("Revalidate failed: %v", err)
	}
	if !reflect.DeepEqual(gotPaths, []string{"/blog", "/blog/nih-caps"}) {
		t.Errorf("Unexpected paths %v", gotPaths)
	}
}

func TestRevalidate_Disabled(t *testing.T) {
	c := NewClient(Config{}, logger.Discard())
	if c.Enabled() {
		t.Error("Client without site URL should be disabled")
	}
	if err := c.Revalidate(context.Background(), []string{"/blog"}); err != nil {
		t.Errorf("Disabled client should not fail, got %v", err)
	}
}

func TestRevalidate_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid secret", http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewClient(Config{SiteURL: server.URL}, logger.Discard())
	if err := c.Revalidate(context.Background(), []string{"/blog"}); err == nil {
		t.Error("Expected error on 401")
	}
}
