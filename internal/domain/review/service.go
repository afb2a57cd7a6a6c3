package review

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/homestay/homestay-client/internal/pkg/apiclient"
	"github.com/homestay/homestay-client/internal/pkg/state"
	"github.com/homestay/homestay-client/internal/pkg/validator"
)

// Service creates reviews and keeps one container per reviewed listing.
type Service struct {
	api      *apiclient.Client
	endpoint *state.Endpoint[Review]

	mu      sync.Mutex
	targets map[string]*state.Container[Review]
}

// NewService creates review service
func NewService(api *apiclient.Client) *Service {
	return &Service{
		api:      api,
		endpoint: state.NewEndpoint[Review](api, "/reviews"),
		targets:  make(map[string]*state.Container[Review]),
	}
}

// For returns the review container of one listing, creating it on first use.
func (s *Service) For(kind TargetKind, id uuid.UUID) *state.Container[Review] {
	key := string(kind) + ":" + id.String()

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.targets[key]; ok {
		return c
	}
	path := "/homes/" + id.String() + "/reviews"
	if kind == TargetExperience {
		path = "/experiences/" + id.String() + "/reviews"
	}
	c := state.New[Review](s.endpoint.WithListPath(path), Key, state.DefaultLimit)
	s.targets[key] = c
	return c
}

// ListForHome loads one page of a home's reviews.
func (s *Service) ListForHome(ctx context.Context, homeID uuid.UUID, page int) (state.Snapshot[Review], error) {
	c := s.For(TargetHome, homeID)
	err := c.Fetch(ctx, page)
	return c.Snapshot(), err
}

// ListForExperience loads one page of an experience's reviews.
func (s *Service) ListForExperience(ctx context.Context, experienceID uuid.UUID, page int) (state.Snapshot[Review], error) {
	c := s.For(TargetExperience, experienceID)
	err := c.Fetch(ctx, page)
	return c.Snapshot(), err
}

// Create posts a review and adds it to the listing's container.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Review, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	r, err := s.For(req.TargetKind, req.TargetID).Create(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, apiclient.ErrConflict):
			return nil, fmt.Errorf("%w: %w", ErrAlreadyReviewed, err)
		case errors.Is(err, apiclient.ErrForbidden):
			return nil, fmt.Errorf("%w: %w", ErrNotEligible, err)
		}
		return nil, err
	}
	return &r, nil
}

// Delete removes a review. Guests may delete their own; admins any.
func (s *Service) Delete(ctx context.Context, r Review) error {
	if p, ok := s.api.Session().Principal(); ok && p.Role != "admin" && p.UserID != r.AuthorID {
		return ErrCannotDeleteOther
	}
	if err := s.endpoint.Delete(ctx, r.ID.String()); err != nil {
		if errors.Is(err, apiclient.ErrNotFound) {
			return fmt.Errorf("%w: %w", ErrReviewNotFound, err)
		}
		return err
	}
	s.For(r.TargetKind, r.TargetID).Remove(r.ID.String())
	return nil
}
