package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/homestay/homestay-client/internal/pkg/apiclient"
	"github.com/homestay/homestay-client/internal/pkg/imaging"
	"github.com/homestay/homestay-client/internal/pkg/state"
	"github.com/homestay/homestay-client/internal/pkg/validator"
)

// Service covers profile and admin user-management calls.
type Service struct {
	api *apiclient.Client
	// Users is the admin user list.
	Users *state.Container[User]
}

// NewService creates user service
func NewService(api *apiclient.Client) *Service {
	return &Service{
		api:   api,
		Users: state.New[User](state.NewEndpoint[User](api, "/admin/users"), Key, state.DefaultLimit),
	}
}

// Me returns the signed-in user.
func (s *Service) Me(ctx context.Context) (*User, error) {
	if !s.api.Session().Authenticated() {
		return nil, ErrNotAuthenticated
	}
	var u User
	if err := s.api.Get(ctx, "/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a public user profile.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	if err := s.api.Get(ctx, "/users/"+id.String(), nil, &u); err != nil {
		return nil, mapNotFound(err)
	}
	return &u, nil
}

// UpdateProfile updates the signed-in user's profile.
func (s *Service) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	var u User
	if err := s.api.Put(ctx, "/users/me", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ChangePassword changes the signed-in user's password.
func (s *Service) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if err := validator.Check(req); err != nil {
		return err
	}
	err := s.api.Post(ctx, "/users/me/password", req, nil)
	if apiclient.StatusCode(err) == http.StatusBadRequest && !errors.Is(err, apiclient.ErrValidation) {
		return fmt.Errorf("%w: %w", ErrWrongPassword, err)
	}
	return err
}

// UploadAvatar replaces the signed-in user's avatar.
func (s *Service) UploadAvatar(ctx context.Context, filename string, r io.Reader) (*User, error) {
	if !imaging.ValidateType(filename) {
		return nil, ErrAvatarNotAnImage
	}
	var u User
	if err := s.api.Upload(ctx, http.MethodPut, "/users/me/avatar", "avatar", filename, r, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers loads one page of the admin user list into Users.
func (s *Service) ListUsers(ctx context.Context, page int) (state.Snapshot[User], error) {
	err := s.Users.Fetch(ctx, page)
	return s.Users.Snapshot(), err
}

// UpdateStatus bans or re-activates a user.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*User, error) {
	req := UpdateStatusRequest{Status: status}
	if err := validator.Check(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStatus, err)
	}
	var u User
	if err := s.api.Patch(ctx, "/admin/users/"+id.String()+"/status", req, &u); err != nil {
		return nil, mapNotFound(err)
	}
	s.Users.Upsert(u)
	return &u, nil
}

// Delete removes a user account (admin).
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return mapNotFound(s.Users.Delete(ctx, id.String()))
}

func mapNotFound(err error) error {
	if errors.Is(err, apiclient.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrUserNotFound, err)
	}
	return err
}
