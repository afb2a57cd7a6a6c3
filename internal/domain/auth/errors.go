package auth

import "errors"

var (
	ErrEmailAlreadyExists   = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUserBanned           = errors.New("user is banned")
	ErrEmailNotVerified     = errors.New("email is not verified")
	ErrInvalidResetToken    = errors.New("invalid or expired reset token")
	ErrInvalidVerifyCode    = errors.New("invalid or expired verification code")
	ErrVerificationRequired = errors.New("account created, verify your email to sign in")
)
