// Package session signs and verifies the stateless session cookie binding a
// request to a user id.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
)

// CookieName is the session cookie carried by every authenticated request.
const CookieName = "galleryAuth"

// MaxAge is the cookie lifetime in seconds (12 hours). Tokens carry no
// embedded expiry; staleness is bounded only by this.
const MaxAge = 12 * 60 * 60

// Codec produces and validates tamper-evident session tokens of the form
// "<userID>.<hexHmacSha256>". It is stateless; the only input beyond the
// token is the process-wide secret injected at construction.
type Codec struct {
	secret []byte
	secure bool
}

// New constructs a Codec. An empty secret is a misconfiguration and is
// rejected here so the caller can fail at startup, not per request.
// secure controls the Secure attribute on issued cookies.
func New(secret []byte, secure bool) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("session: signing secret is not configured")
	}
	return &Codec{secret: append([]byte(nil), secret...), secure: secure}, nil
}

func (c *Codec) signature(userID string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(userID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign returns the session token for userID.
func (c *Codec) Sign(userID string) string {
	return userID + "." + c.signature(userID)
}

// Verify extracts the user id from token. It splits on the first '.' and
// compares the supplied signature against the expected one in constant time.
// Unequal lengths report false before any comparison is attempted.
func (c *Codec) Verify(token string) (string, bool) {
	userID, sig, found := strings.Cut(token, ".")
	if !found || userID == "" || sig == "" {
		return "", false
	}
	want := c.signature(userID)
	if len(sig) != len(want) {
		return "", false
	}
	if subtle.ConstantTimeCompare([]byte(sig), []byte(want)) != 1 {
		return "", false
	}
	return userID, true
}

// Cookie returns the Set-Cookie payload establishing a session for userID.
func (c *Codec) Cookie(userID string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    c.Sign(userID),
		Path:     "/",
		MaxAge:   MaxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie returns the Set-Cookie payload removing the session cookie.
// It is set whenever an unverifiable cookie is detected, so stale clients
// self-heal into the logged-out state.
func (c *Codec) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
