package actiontoken

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
	"testing"

	"newsjack/internal/core"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := NewSigner("test-secret")
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	return s
}

func TestNewSigner_MissingSecret(t *testing.T) {
	if _, err := NewSigner(""); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("Expected ErrMissingSecret, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	s := newTestSigner(t)

	testCases := []struct {
		storyID string
		action  core.Action
	}{
		{"abc123", core.ActionPublish},
		{"abc123", core.ActionApprove},
		{"0b7a1c9e-6f3d-4a8e-9d51-2f6c7e1a4b20", core.ActionReject},
		{"story-with-dashes", core.ActionSkip},
		{"x", core.Action("unknown")},
	}

	for _, tc := range testCases {
		t.Run(tc.storyID+"/"+string(tc.action), func(t *testing.T) {
			token := s.Generate(tc.storyID, tc.action)
			claims, err := s.Verify(token)
			if err != nil {
				t.Fatalf("Verify failed: %v", err)
			}
			if claims.StoryID != tc.storyID {
				t.Errorf("Expected story ID %q, got %q", tc.storyID, claims.StoryID)
			}
			if claims.Action != tc.action {
				t.Errorf("Expected action %q, got %q", tc.action, claims.Action)
			}
		})
	}
}

func TestValidateStoryID(t *testing.T) {
	s := newTestSigner(t)

	for _, id := range []string{"abc123", "0b7a1c9e-6f3d-4a8e-9d51-2f6c7e1a4b20"} {
		if err := ValidateStoryID(id); err != nil {
			t.Errorf("ValidateStoryID(%q) = %v", id, err)
		}
		if _, err := s.Verify(s.Generate(id, core.ActionPublish)); err != nil {
			t.Errorf("Valid ID %q failed round trip: %v", id, err)
		}
	}

	// IDs rejected here are exactly the ones Verify could never accept
	for _, id := range []string{"", "2025:abc"} {
		if err := ValidateStoryID(id); !errors.Is(err, ErrInvalidStoryID) {
			t.Errorf("ValidateStoryID(%q) = %v, want ErrInvalidStoryID", id, err)
		}
		if _, err := s.Verify(s.Generate(id, core.ActionPublish)); err == nil {
			t.Errorf("ID %q unexpectedly round-tripped", id)
		}
	}
}

func TestGenerate_UsesFreshNonce(t *testing.T) {
	s := newTestSigner(t)
	a := s.Generate("abc123", core.ActionPublish)
	b := s.Generate("abc123", core.ActionPublish)
	if a == b {
		t.Error("Expected distinct tokens for repeated generation")
	}
}

func TestGenerate_Format(t *testing.T) {
	s := newTestSigner(t)
	s.nonce = func() string { return "fixed-nonce" }

	token := s.Generate("abc123", core.ActionPublish)
	if strings.ContainsAny(token, "+/=") {
		t.Errorf("Token should be unpadded base64url, got %q", token)
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("Token did not decode: %v", err)
	}
	parts := strings.Split(string(raw), ":")
	if len(parts) != 4 {
		t.Fatalf("Expected 4 parts, got %d (%q)", len(parts), raw)
	}
	if parts[0] != "abc123" || parts[1] != "publish" || parts[2] != "fixed-nonce" {
		t.Errorf("Unexpected payload %q", raw)
	}
	if len(parts[3]) != 64 {
		t.Errorf("Expected hex SHA-256 signature, got %q", parts[3])
	}
}

func TestVerify_CorruptedCharacter(t *testing.T) {
	s := newTestSigner(t)
	token := s.Generate("abc123", core.ActionPublish)

	for i := 0; i < len(token); i++ {
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		corrupted := token[:i] + string(replacement) + token[i+1:]
		if _, err := s.Verify(corrupted); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Corrupting index %d should fail verification, got %v", i, err)
		}
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	s := newTestSigner(t)
	token := s.Generate("abc123", core.ActionReject)

	raw, _ := base64.RawURLEncoding.DecodeString(token)
	parts := strings.Split(string(raw), ":")

	tamper := func(idx int, value string) string {
		p := append([]string(nil), parts...)
		p[idx] = value
		return base64.RawURLEncoding.EncodeToString([]byte(strings.Join(p, ":")))
	}

	flipped := []byte(parts[3])
	if flipped[0] == 'a' {
		flipped[0] = 'b'
	} else {
		flipped[0] = 'a'
	}

	testCases := map[string]string{
		"story id":  tamper(0, "other"),
		"action":    tamper(1, "publish"),
		"nonce":     tamper(2, "replayed"),
		"signature": tamper(3, string(flipped)),
	}

	for name, tampered := range testCases {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestVerify_Malformed(t *testing.T) {
	s := newTestSigner(t)
	enc := base64.RawURLEncoding.EncodeToString

	testCases := map[string]string{
		"empty":          "",
		"not base64":     "!!!not-base64!!!",
		"too few parts":  enc([]byte("abc123:publish:nonce")),
		"too many parts": enc([]byte("abc:123:publish:nonce:sig")),
		"empty field":    enc([]byte(":publish:nonce:abcd")),
		"non-hex sig":    enc([]byte("abc123:publish:nonce:zzzz")),
	}

	for name, token := range testCases {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Verify(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestVerify_DifferentSecret(t *testing.T) {
	s := newTestSigner(t)
	other, _ := NewSigner("another-secret")

	token := s.Generate("abc123", core.ActionPublish)
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Token signed with a different secret must fail, got %v", err)
	}
}

func TestActionURL(t *testing.T) {
	s := newTestSigner(t)

	link := s.ActionURL("https://example.org/", "abc123", core.ActionApprove)
	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("ActionURL produced invalid URL: %v", err)
	}
	if parsed.Host != "example.org" || parsed.Path != "/api/newsjack/action" {
		t.Errorf("Unexpected URL %q", link)
	}

	claims, err := s.Verify(parsed.Query().Get("token"))
	if err != nil {
		t.Fatalf("Token from URL failed verification: %v", err)
	}
	if claims.StoryID != "abc123" || claims.Action != core.ActionApprove {
		t.Errorf("Unexpected claims %+v", claims)
	}
}
