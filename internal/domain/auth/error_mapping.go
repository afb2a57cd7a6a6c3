package auth

import (
	"errors"
	"fmt"

	"github.com/homestay/homestay-client/internal/pkg/apiclient"
)

// API error codes the auth endpoints answer with.
const (
	codeEmailExists      = "EMAIL_EXISTS"
	codeInvalidCreds     = "INVALID_CREDENTIALS"
	codeUserBanned       = "USER_BANNED"
	codeEmailNotVerified = "EMAIL_NOT_VERIFIED"
	codeInvalidToken     = "INVALID_TOKEN"
	codeInvalidCode      = "INVALID_CODE"
)

// mapAPIError attaches the matching auth sentinel to an API error, keeping
// the original in the chain.
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.Code == codeEmailExists || errors.Is(err, apiclient.ErrConflict):
		return fmt.Errorf("%w: %w", ErrEmailAlreadyExists, err)
	case apiErr.Code == codeUserBanned:
		return fmt.Errorf("%w: %w", ErrUserBanned, err)
	case apiErr.Code == codeEmailNotVerified:
		return fmt.Errorf("%w: %w", ErrEmailNotVerified, err)
	case apiErr.Code == codeInvalidToken:
		return fmt.Errorf("%w: %w", ErrInvalidResetToken, err)
	case apiErr.Code == codeInvalidCode:
		return fmt.Errorf("%w: %w", ErrInvalidVerifyCode, err)
	case apiErr.Code == codeInvalidCreds || errors.Is(err, apiclient.ErrUnauthorized):
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return err
}

func wrapStepError(step string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", step, err)
}
