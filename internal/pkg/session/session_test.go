package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/homestay/homestay-client/internal/pkg/localstore"
)

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestPrincipalFromClaims(t *testing.T) {
	userID := uuid.New()
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	token := signToken(t, Claims{
		UserID: userID,
		Role:   "host",
		Type:   "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	s := New()
	s.SetTokens(token, "refresh-1")

	p, ok := s.Principal()
	if !ok || p.UserID != userID || p.Role != "host" {
		t.Fatalf("unexpected principal: %+v ok=%v", p, ok)
	}
	if !s.ExpiresAt().Equal(exp) {
		t.Fatalf("expected expiry %s, got %s", exp, s.ExpiresAt())
	}
}

func TestPrincipalFallsBackToSubject(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()}})

	s := New()
	s.SetTokens(token, "")
	p, ok := s.Principal()
	if !ok || p.UserID != userID {
		t.Fatalf("expected subject fallback, got %+v ok=%v", p, ok)
	}
}

func TestClaimsRejectsGarbage(t *testing.T) {
	s := New()
	if _, err := s.Claims(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	s.SetTokens("not-a-jwt", "")
	if _, err := s.Claims(); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, ok := s.Principal(); ok {
		t.Fatal("expected no principal for garbage token")
	}
}

func TestSetTokensKeepsRefreshWhenEmpty(t *testing.T) {
	s := New()
	s.SetTokens("a1", "r1")
	s.SetTokens("a2", "")
	if s.AccessToken() != "a2" || s.RefreshToken() != "r1" {
		t.Fatalf("unexpected tokens: %q %q", s.AccessToken(), s.RefreshToken())
	}
}

func TestClearNotifiesListeners(t *testing.T) {
	s := New()
	s.SetTokens("a", "r")
	s.SetPrincipal(Principal{UserID: uuid.New()})

	calls := 0
	s.OnClear(func() { calls++ })
	s.OnClear(func() { calls++ })
	s.Clear()

	if s.Authenticated() || s.RefreshToken() != "" {
		t.Fatal("expected tokens cleared")
	}
	if _, ok := s.Principal(); ok {
		t.Fatal("expected principal cleared")
	}
	if calls != 2 {
		t.Fatalf("expected 2 listener calls, got %d", calls)
	}
}

func TestSaveAndLoad(t *testing.T) {
	store, err := localstore.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	ctx := context.Background()
	userID := uuid.New()

	s := New()
	s.SetTokens("access", "refresh")
	s.SetPrincipal(Principal{UserID: userID, Email: "guest@example.com"})
	if err := s.Save(ctx, store, "session"); err != nil {
		t.Fatalf("save: %v", err)
	}

	restored := New()
	ok, err := restored.Load(ctx, store, "session")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	p, _ := restored.Principal()
	if restored.AccessToken() != "access" || restored.RefreshToken() != "refresh" || p.Email != "guest@example.com" {
		t.Fatalf("unexpected restored session: %+v", restored.Snapshot())
	}
}
