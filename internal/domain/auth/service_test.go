package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/homestay/homestay-client/internal/domain/user"
	"github.com/homestay/homestay-client/internal/pkg/apiclient"
	"github.com/homestay/homestay-client/internal/pkg/response"
	"github.com/homestay/homestay-client/internal/pkg/session"
	"github.com/homestay/homestay-client/internal/pkg/validator"
)

type fakeAuthAPI struct {
	userID     uuid.UUID
	calls      int32
	logouts    int32
	failLogout bool
}

func (f *fakeAuthAPI) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			atomic.AddInt32(&f.calls, 1)
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var in LoginRequest
		_ = json.NewDecoder(req.Body).Decode(&in)
		switch {
		case in.Email == "banned@example.com":
			response.Error(w, http.StatusForbidden, codeUserBanned, "user is banned")
		case in.Email != "host@example.com" || in.Password != "secret123":
			response.Error(w, http.StatusUnauthorized, codeInvalidCreds, "invalid email or password")
		default:
			response.OK(w, AuthResponse{
				User:   user.User{ID: f.userID, Email: in.Email, Role: user.RoleHost},
				Tokens: apiclient.Tokens{AccessToken: "access", RefreshToken: "refresh"},
			})
		}
	})
	r.Post("/auth/register", func(w http.ResponseWriter, req *http.Request) {
		var in RegisterRequest
		_ = json.NewDecoder(req.Body).Decode(&in)
		if in.Email == "taken@example.com" {
			response.Error(w, http.StatusConflict, codeEmailExists, "email already registered")
			return
		}
		response.Created(w, AuthResponse{User: user.User{ID: f.userID, Email: in.Email, Role: user.Role(in.Role)}, VerificationSent: true})
	})
	r.Post("/auth/logout", func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&f.logouts, 1)
		if f.failLogout {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "boom")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/auth/verify/confirm", func(w http.ResponseWriter, req *http.Request) {
		var in VerifyEmailRequest
		_ = json.NewDecoder(req.Body).Decode(&in)
		if in.Code != "123456" {
			response.Error(w, http.StatusBadRequest, codeInvalidCode, "invalid code")
			return
		}
		response.OK(w, map[string]string{"status": "verified"})
	})
	return r
}

func newTestService(t *testing.T, f *fakeAuthAPI) (*Service, *session.Session) {
	t.Helper()
	server := httptest.NewServer(f.routes())
	t.Cleanup(server.Close)
	sess := session.New()
	return NewService(apiclient.New(apiclient.Options{BaseURL: server.URL}, sess)), sess
}

func TestLoginStoresSession(t *testing.T) {
	f := &fakeAuthAPI{userID: uuid.New()}
	s, sess := newTestService(t, f)

	u, err := s.Login(context.Background(), LoginRequest{Email: "  Host@Example.com ", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.ID != f.userID || sess.AccessToken() != "access" || sess.RefreshToken() != "refresh" {
		t.Fatalf("unexpected session state: %+v %q %q", u, sess.AccessToken(), sess.RefreshToken())
	}
	p, ok := sess.Principal()
	if !ok || p.UserID != f.userID || p.Role != "host" || p.Email != "host@example.com" {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestLoginErrors(t *testing.T) {
	f := &fakeAuthAPI{userID: uuid.New()}
	s, sess := newTestService(t, f)
	ctx := context.Background()

	_, err := s.Login(ctx, LoginRequest{Email: "host@example.com", Password: "nope"})
	if !errors.Is(err, ErrInvalidCredentials) || !errors.Is(err, apiclient.ErrUnauthorized) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if errors.Is(err, apiclient.ErrSessionExpired) {
		t.Fatal("login failure must not look like an expired session")
	}

	if _, err := s.Login(ctx, LoginRequest{Email: "banned@example.com", Password: "x"}); !errors.Is(err, ErrUserBanned) {
		t.Fatalf("expected ErrUserBanned, got %v", err)
	}

	before := atomic.LoadInt32(&f.calls)
	var verr *validator.Error
	if _, err := s.Login(ctx, LoginRequest{Email: "not-an-email"}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if atomic.LoadInt32(&f.calls) != before {
		t.Fatal("invalid form must not reach the API")
	}
	if sess.Authenticated() {
		t.Fatal("failed logins must not populate the session")
	}
}

func TestRegister(t *testing.T) {
	f := &fakeAuthAPI{userID: uuid.New()}
	s, sess := newTestService(t, f)
	ctx := context.Background()

	req := RegisterRequest{
		Email: "new@example.com", Password: "secret123", ConfirmPassword: "secret123",
		FirstName: "New", LastName: "Guest", Role: "guest",
	}
	u, err := s.Register(ctx, req)
	if !errors.Is(err, ErrVerificationRequired) || u == nil || u.Email != "new@example.com" {
		t.Fatalf("expected verification required with user, got %+v %v", u, err)
	}
	if sess.Authenticated() {
		t.Fatal("unverified registration must not sign in")
	}

	req.Email = "taken@example.com"
	if _, err := s.Register(ctx, req); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}

	short := req
	short.Password, short.ConfirmPassword = "abc", "abc"
	var verr *validator.Error
	if _, err := s.Register(ctx, short); !errors.As(err, &verr) || verr.Fields["password"] == "" {
		t.Fatalf("expected short password rejected, got %v", err)
	}

	mismatch := req
	mismatch.ConfirmPassword = "secret124"
	if _, err := s.Register(ctx, mismatch); !errors.As(err, &verr) || verr.Fields["confirm_password"] == "" {
		t.Fatalf("expected mismatched confirm rejected, got %v", err)
	}
}

func TestLogoutAlwaysClearsSession(t *testing.T) {
	f := &fakeAuthAPI{userID: uuid.New(), failLogout: true}
	s, sess := newTestService(t, f)
	sess.SetTokens("access", "refresh")

	cleared := false
	sess.OnClear(func() { cleared = true })

	err := s.Logout(context.Background())
	if !errors.Is(err, apiclient.ErrServer) {
		t.Fatalf("expected server error surfaced, got %v", err)
	}
	if !cleared || sess.Authenticated() {
		t.Fatal("expected session cleared despite server failure")
	}
	if n := atomic.LoadInt32(&f.logouts); n != 1 {
		t.Fatalf("expected one logout call, got %d", n)
	}
}

func TestVerifyEmail(t *testing.T) {
	f := &fakeAuthAPI{userID: uuid.New()}
	s, _ := newTestService(t, f)
	ctx := context.Background()

	if err := s.VerifyEmail(ctx, VerifyEmailRequest{Email: "a@b.co", Code: "000000"}); !errors.Is(err, ErrInvalidVerifyCode) {
		t.Fatalf("expected ErrInvalidVerifyCode, got %v", err)
	}
	if err := s.VerifyEmail(ctx, VerifyEmailRequest{Email: "a@b.co", Code: "123456"}); err != nil {
		t.Fatalf("verify: %v", err)
	}
}
