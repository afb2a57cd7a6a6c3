package auth

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/homestay/homestay-client/internal/domain/user"
	"github.com/homestay/homestay-client/internal/pkg/apiclient"
	"github.com/homestay/homestay-client/internal/pkg/logger"
	"github.com/homestay/homestay-client/internal/pkg/session"
	"github.com/homestay/homestay-client/internal/pkg/validator"
)

const (
	logoutPath         = "/auth/logout"
	forgotPasswordPath = "/auth/forgot-password"
	resetPasswordPath  = "/auth/reset-password"
	verifyEmailPath    = "/auth/verify/confirm"
)

// Service handles sign-in flows and keeps the session in step with them.
type Service struct {
	api  *apiclient.Client
	sess *session.Session
	log  zerolog.Logger
}

// NewService creates auth service
func NewService(api *apiclient.Client) *Service {
	return &Service{
		api:  api,
		sess: api.Session(),
		log:  logger.Component("auth"),
	}
}

// Register creates an account. When the API signs the user in right away
// the session is populated; otherwise ErrVerificationRequired is returned
// with the created user.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*user.User, error) {
	req.Email = canonicalEmail(req.Email)
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	var resp AuthResponse
	if err := s.api.Post(ctx, apiclient.RegisterPath, req, &resp); err != nil {
		return nil, wrapStepError("register", mapAPIError(err))
	}
	if resp.Tokens.AccessToken == "" {
		s.log.Info().Str("email", req.Email).Bool("verification_sent", resp.VerificationSent).Msg("Registered, awaiting verification")
		return &resp.User, ErrVerificationRequired
	}

	s.signIn(resp)
	return &resp.User, nil
}

// Login signs in and stores the tokens and user in the session.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*user.User, error) {
	req.Email = canonicalEmail(req.Email)
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	var resp AuthResponse
	if err := s.api.Post(ctx, apiclient.LoginPath, req, &resp); err != nil {
		return nil, wrapStepError("login", mapAPIError(err))
	}
	if resp.Tokens.AccessToken == "" {
		return nil, wrapStepError("login", ErrInvalidCredentials)
	}

	s.signIn(resp)
	return &resp.User, nil
}

func (s *Service) signIn(resp AuthResponse) {
	s.sess.SetTokens(resp.Tokens.AccessToken, resp.Tokens.RefreshToken)
	s.sess.SetPrincipal(session.Principal{
		UserID: resp.User.ID,
		Email:  resp.User.Email,
		Role:   string(resp.User.Role),
	})
	s.log.Info().Str("user_id", resp.User.ID.String()).Str("role", string(resp.User.Role)).Msg("Signed in")
}

// Logout revokes the refresh token on the server and always clears the
// local session, which also tears down the notification socket.
func (s *Service) Logout(ctx context.Context) error {
	if !s.sess.Authenticated() {
		s.sess.Clear()
		return nil
	}

	err := s.api.Post(ctx, logoutPath, logoutRequest{RefreshToken: s.sess.RefreshToken()}, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("Server logout failed, clearing local session anyway")
	}
	s.sess.Clear()
	return wrapStepError("logout", err)
}

// ForgotPassword asks the API to email a reset link.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	req := ForgotPasswordRequest{Email: canonicalEmail(email)}
	if err := validator.Check(req); err != nil {
		return err
	}
	return wrapStepError("forgot password", mapAPIError(s.api.Post(ctx, forgotPasswordPath, req, nil)))
}

// ResetPassword sets a new password from a reset token.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if err := validator.Check(req); err != nil {
		return err
	}
	return wrapStepError("reset password", mapAPIError(s.api.Post(ctx, resetPasswordPath, req, nil)))
}

// VerifyEmail confirms an email address with the emailed code.
func (s *Service) VerifyEmail(ctx context.Context, req VerifyEmailRequest) error {
	req.Email = canonicalEmail(req.Email)
	if err := validator.Check(req); err != nil {
		return err
	}
	return wrapStepError("verify email", mapAPIError(s.api.Post(ctx, verifyEmailPath, req, nil)))
}

// canonicalEmail is the form the API stores addresses in.
func canonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
