package listing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/homestay/homestay-client/internal/pkg/apiclient"
	"github.com/homestay/homestay-client/internal/pkg/logger"
	"github.com/homestay/homestay-client/internal/pkg/state"
	"github.com/homestay/homestay-client/internal/pkg/validator"
)

const (
	homesPath       = "/homes"
	myHomesPath     = "/homes/mine"
	experiencesPath = "/experiences"
	myExpPath       = "/experiences/mine"
)

// Service covers home and experience listings. Search results and the
// host's own listings live in separate containers.
type Service struct {
	api *apiclient.Client
	log zerolog.Logger

	homes       *state.Endpoint[HomeListing]
	experiences *state.Endpoint[ExperienceListing]

	Homes         *state.Container[HomeListing]
	MyHomes       *state.Container[HomeListing]
	Experiences   *state.Container[ExperienceListing]
	MyExperiences *state.Container[ExperienceListing]
}

// NewService creates listing service
func NewService(api *apiclient.Client) *Service {
	homes := state.NewEndpoint[HomeListing](api, homesPath)
	experiences := state.NewEndpoint[ExperienceListing](api, experiencesPath)

	return &Service{
		api:           api,
		log:           logger.Component("listing"),
		homes:         homes,
		experiences:   experiences,
		Homes:         state.New[HomeListing](homes, HomeKey, state.DefaultLimit),
		MyHomes:       state.New[HomeListing](homes.WithListPath(myHomesPath), HomeKey, state.DefaultLimit),
		Experiences:   state.New[ExperienceListing](experiences, ExperienceKey, state.DefaultLimit),
		MyExperiences: state.New[ExperienceListing](experiences.WithListPath(myExpPath), ExperienceKey, state.DefaultLimit),
	}
}

// SearchHomes loads the first page of homes matching filter.
func (s *Service) SearchHomes(ctx context.Context, filter HomeFilter) (state.Snapshot[HomeListing], error) {
	if err := validator.Check(filter); err != nil {
		return state.Snapshot[HomeListing]{}, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	s.Homes.SetFilter(filter.Values())
	err := s.Homes.Fetch(ctx, 1)
	return s.Homes.Snapshot(), err
}

// GetHome returns one home by ID.
func (s *Service) GetHome(ctx context.Context, id uuid.UUID) (*HomeListing, error) {
	h, err := s.homes.Get(ctx, id.String())
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &h, nil
}

// CreateHome publishes a new home owned by the signed-in host.
func (s *Service) CreateHome(ctx context.Context, req HomeRequest) (*HomeListing, error) {
	if err := s.checkHost(); err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	h, err := s.MyHomes.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("listing_id", h.ID.String()).Str("kind", string(KindHome)).Msg("Listing created")
	return &h, nil
}

// UpdateHome replaces a home's editable fields.
func (s *Service) UpdateHome(ctx context.Context, id uuid.UUID, req HomeRequest) (*HomeListing, error) {
	if err := s.checkHost(); err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	h, err := s.MyHomes.Update(ctx, id.String(), req)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if _, ok := s.Homes.Find(id.String()); ok {
		s.Homes.Upsert(h)
	}
	return &h, nil
}

// DeleteHome removes a home.
func (s *Service) DeleteHome(ctx context.Context, id uuid.UUID) error {
	if err := s.MyHomes.Delete(ctx, id.String()); err != nil {
		return mapNotFound(err)
	}
	s.Homes.Remove(id.String())
	return nil
}

// ListMyHomes loads one page of the host's homes.
func (s *Service) ListMyHomes(ctx context.Context, page int) (state.Snapshot[HomeListing], error) {
	err := s.MyHomes.Fetch(ctx, page)
	return s.MyHomes.Snapshot(), err
}

// SearchExperiences loads the first page of experiences matching filter.
func (s *Service) SearchExperiences(ctx context.Context, filter ExperienceFilter) (state.Snapshot[ExperienceListing], error) {
	if err := validator.Check(filter); err != nil {
		return state.Snapshot[ExperienceListing]{}, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	s.Experiences.SetFilter(filter.Values())
	err := s.Experiences.Fetch(ctx, 1)
	return s.Experiences.Snapshot(), err
}

// GetExperience returns one experience by ID, sessions included.
func (s *Service) GetExperience(ctx context.Context, id uuid.UUID) (*ExperienceListing, error) {
	e, err := s.experiences.Get(ctx, id.String())
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &e, nil
}

// CreateExperience publishes a new experience owned by the signed-in host.
func (s *Service) CreateExperience(ctx context.Context, req ExperienceRequest) (*ExperienceListing, error) {
	if err := s.checkHost(); err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	e, err := s.MyExperiences.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("listing_id", e.ID.String()).Str("kind", string(KindExperience)).Msg("Listing created")
	return &e, nil
}

func (s *Service) UpdateExperience(ctx context.Context, id uuid.UUID, req ExperienceRequest) (*ExperienceListing, error) {
	if err := s.checkHost(); err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	e, err := s.MyExperiences.Update(ctx, id.String(), req)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if _, ok := s.Experiences.Find(id.String()); ok {
		s.Experiences.Upsert(e)
	}
	return &e, nil
}

func (s *Service) DeleteExperience(ctx context.Context, id uuid.UUID) error {
	if err := s.MyExperiences.Delete(ctx, id.String()); err != nil {
		return mapNotFound(err)
	}
	s.Experiences.Remove(id.String())
	return nil
}

// ListMyExperiences loads one page of the host's experiences.
func (s *Service) ListMyExperiences(ctx context.Context, page int) (state.Snapshot[ExperienceListing], error) {
	err := s.MyExperiences.Fetch(ctx, page)
	return s.MyExperiences.Snapshot(), err
}

func (s *Service) checkHost() error {
	p, ok := s.api.Session().Principal()
	if !ok {
		return nil
	}
	if p.Role != "host" && p.Role != "admin" {
		return ErrNotHost
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, apiclient.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrListingNotFound, err)
	}
	return err
}
