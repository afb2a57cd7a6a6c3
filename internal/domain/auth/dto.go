package auth

import (
	"github.com/homestay/homestay-client/internal/domain/user"
	"github.com/homestay/homestay-client/internal/pkg/apiclient"
)

// RegisterRequest for POST /auth/register
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,password,max=128"`
	ConfirmPassword string `json:"confirm_password,omitempty" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name" validate:"required,min=1,max=100"`
	LastName        string `json:"last_name" validate:"required,min=1,max=100"`
	Role            string `json:"role" validate:"required,role"`
}

// LoginRequest for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest for POST /auth/forgot-password
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest for POST /auth/reset-password
type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,password"`
	ConfirmPassword string `json:"confirm_password,omitempty" validate:"required,eqfield=Password"`
}

// VerifyEmailRequest for POST /auth/verify/confirm
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// AuthResponse returned after login/register
type AuthResponse struct {
	User             user.User        `json:"user"`
	Tokens           apiclient.Tokens `json:"tokens"`
	VerificationSent bool             `json:"verification_sent,omitempty"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}
