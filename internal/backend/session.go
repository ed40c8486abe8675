package backend

import (
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opdesk/opdesk/pkg/errors"
)

// Session holds the bearer token established at login. It is injected
// into each role-scoped client at construction; Invalidate clears it on
// logout. Expiry is peeked locally (unverified) so an obviously stale
// session is refused before a round trip; signature validation stays
// backend-owned.
type Session struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

func NewSession(token string) *Session {
	s := &Session{}
	s.Set(token)
	return s
}

// Set replaces the session token, re-reading its expiry claim.
func (s *Session) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiresAt = time.Time{}

	if token == "" {
		return
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			s.expiresAt = exp.Time
		}
	}
}

// Invalidate clears the token; subsequent requests fail as unauthorized
// until a new login sets one.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
}

// Authorize attaches the bearer token to req.
func (s *Session) Authorize(req *http.Request) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return errors.Unauthorized(nil)
	}
	if !s.expiresAt.IsZero() && time.Now().After(s.expiresAt) {
		return errors.Unauthorized(nil)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	return nil
}

// Active reports whether a usable token is present.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return false
	}
	return s.expiresAt.IsZero() || time.Now().Before(s.expiresAt)
}
