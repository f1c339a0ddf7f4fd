package twitter

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Credentials is the cookie bundle of an already-logged-in browser session.
type Credentials struct {
	AuthToken string
	CT0       string

	// CookieHeader, when set, is sent verbatim (with ct0 kept current)
	// instead of a header built from AuthToken and CT0.
	CookieHeader string
}

// CredentialsFromCookie extracts auth_token and ct0 from a raw Cookie header
// and keeps the header itself for sending.
func CredentialsFromCookie(header string) Credentials {
	creds := Credentials{CookieHeader: strings.TrimSpace(header)}
	for _, part := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch name {
		case "auth_token":
			creds.AuthToken = value
		case "ct0":
			creds.CT0 = value
		}
	}
	return creds
}

func (c Credentials) validate() error {
	if c.AuthToken == "" {
		return fmt.Errorf("%w: auth_token is required", ErrInvalidInput)
	}
	if c.CT0 == "" {
		return fmt.Errorf("%w: ct0 is required", ErrInvalidInput)
	}
	return nil
}

// cookie returns the Cookie header value for these credentials.
func (c Credentials) cookie() string {
	if c.CookieHeader != "" {
		return c.CookieHeader
	}
	return "auth_token=" + c.AuthToken + "; ct0=" + c.CT0
}

// session guards the credential bundle. The platform may rotate ct0 through
// set-cookie on any response; the new value must be echoed in both the cookie
// and the x-csrf-token header from then on.
type session struct {
	mu    sync.Mutex
	creds Credentials
}

func newSession(creds Credentials) *session {
	return &session{creds: creds}
}

// Credentials returns a snapshot of the current credentials under lock.
func (s *session) Credentials() Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds
}

// absorb adopts a rotated ct0 from response headers. Reports whether it changed.
func (s *session) absorb(headers map[string]string) bool {
	ct0 := extractCT0FromHeaders(headers)
	if ct0 == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ct0 == s.creds.CT0 {
		return false
	}
	old := s.creds.CT0
	s.creds.CT0 = ct0
	if s.creds.CookieHeader != "" {
		s.creds.CookieHeader = replaceCookie(s.creds.CookieHeader, "ct0", ct0)
	}
	slog.Debug("ct0 rotated by server", slog.String("old_prefix", old[:min(8, len(old))]))
	return true
}

// extractCT0FromHeaders parses ct0 value from a set-cookie response header.
func extractCT0FromHeaders(headers map[string]string) string {
	cookie := headers["set-cookie"]
	if cookie == "" {
		return ""
	}
	for _, part := range strings.Split(cookie, ";") {
		part = strings.TrimSpace(part)
		// Several cookies may be folded into one header value.
		if i := strings.LastIndex(part, ", "); i >= 0 {
			part = part[i+2:]
		}
		if val, ok := strings.CutPrefix(part, "ct0="); ok && val != "" {
			return val
		}
	}
	return ""
}

func replaceCookie(header, name, value string) string {
	parts := strings.Split(header, ";")
	found := false
	for i, part := range parts {
		k, _, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && k == name {
			parts[i] = " " + name + "=" + value
			found = true
		}
	}
	if !found {
		parts = append(parts, " "+name+"="+value)
	}
	return strings.TrimSpace(strings.Join(parts, ";"))
}
