// Package session holds the signed-in user's tokens in memory and notifies
// listeners when the session is cleared.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/homestay/homestay-client/internal/pkg/localstore"
)

var (
	ErrNoToken      = errors.New("session: no access token")
	ErrInvalidToken = errors.New("session: malformed access token")
)

// Claims mirrors the access token payload issued by the API. The client never
// verifies the signature; it only reads the claims.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	Type   string    `json:"type"`
	jwt.RegisteredClaims
}

// Principal identifies the signed-in user.
type Principal struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	Role   string    `json:"role,omitempty"`
}

// State is the persistable part of a session.
type State struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	Principal    *Principal `json:"principal,omitempty"`
}

// Session is safe for concurrent use.
type Session struct {
	mu        sync.RWMutex
	access    string
	refresh   string
	principal *Principal
	onClear   []func()
}

func New() *Session {
	return &Session{}
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// SetTokens replaces the access token. An empty refresh token keeps the
// current one, matching servers that rotate refresh tokens only through cookies.
func (s *Session) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	if refresh != "" {
		s.refresh = refresh
	}
}

func (s *Session) SetPrincipal(p Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = &p
}

func (s *Session) Authenticated() bool {
	return s.AccessToken() != ""
}

// Principal returns the stored principal, falling back to the token claims.
func (s *Session) Principal() (Principal, bool) {
	s.mu.RLock()
	p := s.principal
	s.mu.RUnlock()
	if p != nil {
		return *p, true
	}

	claims, err := s.Claims()
	if err != nil {
		return Principal{}, false
	}
	id := claims.UserID
	if id == uuid.Nil {
		parsed, err := uuid.Parse(claims.Subject)
		if err != nil {
			return Principal{}, false
		}
		id = parsed
	}
	return Principal{UserID: id, Role: claims.Role}, true
}

// Claims decodes the current access token without verifying it.
func (s *Session) Claims() (*Claims, error) {
	token := s.AccessToken()
	if token == "" {
		return nil, ErrNoToken
	}
	return ParseClaims(token)
}

// ExpiresAt reports the access token expiry, zero when unknown.
func (s *Session) ExpiresAt() time.Time {
	claims, err := s.Claims()
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// ParseClaims decodes an access token's claims without verifying it.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// OnClear registers fn to run every time the session is cleared.
func (s *Session) OnClear(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = append(s.onClear, fn)
}

// Clear drops every token and the principal, then runs the clear listeners.
func (s *Session) Clear() {
	s.mu.Lock()
	s.access = ""
	s.refresh = ""
	s.principal = nil
	listeners := append([]func(){}, s.onClear...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{AccessToken: s.access, RefreshToken: s.refresh}
	if s.principal != nil {
		p := *s.principal
		st.Principal = &p
	}
	return st
}

func (s *Session) Restore(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = st.AccessToken
	s.refresh = st.RefreshToken
	s.principal = nil
	if st.Principal != nil {
		p := *st.Principal
		s.principal = &p
	}
}

// Save persists the session under key.
func (s *Session) Save(ctx context.Context, store localstore.Store, key string) error {
	return store.Save(ctx, key, s.Snapshot())
}

// Load restores a persisted session. It reports false when nothing was saved.
func (s *Session) Load(ctx context.Context, store localstore.Store, key string) (bool, error) {
	var st State
	ok, err := store.Load(ctx, key, &st)
	if err != nil || !ok {
		return false, err
	}
	s.Restore(st)
	return true, nil
}
