// Package actiontoken signs and verifies the links emailed to reviewers.
//
// A token is base64url(storyID:action:nonce:signature) where signature is the
// hex HMAC-SHA256 of "storyID:action:nonce" under a shared secret. Tokens do
// not expire so that links in older review emails keep working.
package actiontoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"newsjack/internal/core"

	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned for every verification failure.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrMissingSecret is returned when a Signer is built without a secret.
	ErrMissingSecret = errors.New("action token secret is required")

	// ErrInvalidStoryID is returned for story IDs a token cannot carry.
	ErrInvalidStoryID = errors.New("story ID must be non-empty and must not contain ':'")
)

const separator = ":"

var encoding = base64.RawURLEncoding

// Claims is the verified content of a token.
type Claims struct {
	StoryID string
	Action  core.Action
}

// Signer creates and verifies action tokens.
type Signer struct {
	secret []byte
	nonce  func() string
}

// NewSigner returns a Signer using secret as the HMAC key.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Signer{
		secret: []byte(secret),
		nonce:  uuid.NewString,
	}, nil
}

// ValidateStoryID reports whether id survives a Generate/Verify round trip.
func ValidateStoryID(id string) error {
	if id == "" || strings.Contains(id, separator) {
		return ErrInvalidStoryID
	}
	return nil
}

// Generate returns a signed token authorizing action on storyID.
func (s *Signer) Generate(storyID string, action core.Action) string {
	payload := strings.Join([]string{storyID, string(action), s.nonce()}, separator)
	raw := payload + separator + s.sign(payload)
	return encoding.EncodeToString([]byte(raw))
}

// Verify checks the token signature and returns its claims.
// Action strings are not validated here; the caller decides what it accepts.
func (s *Signer) Verify(token string) (Claims, error) {
	if token == "" {
		return Claims{}, ErrInvalidToken
	}

	decoded, err := encoding.Strict().DecodeString(token)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	parts := strings.Split(string(decoded), separator)
	if len(parts) != 4 {
		return Claims{}, ErrInvalidToken
	}
	for _, p := range parts {
		if p == "" {
			return Claims{}, ErrInvalidToken
		}
	}

	payload := strings.Join(parts[:3], separator)
	if !hmac.Equal([]byte(parts[3]), []byte(s.sign(payload))) {
		return Claims{}, ErrInvalidToken
	}

	return Claims{StoryID: parts[0], Action: core.Action(parts[1])}, nil
}

// ActionURL builds the link a reviewer clicks to perform action on storyID.
func (s *Signer) ActionURL(baseURL, storyID string, action core.Action) string {
	q := url.Values{}
	q.Set("token", s.Generate(storyID, action))
	return fmt.Sprintf("%s/api/newsjack/action?%s", strings.TrimRight(baseURL, "/"), q.Encode())
}

func (s *Signer) sign(payload string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}
