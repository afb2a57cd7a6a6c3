package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/homestay/homestay-client/internal/pkg/apiclient"
	"github.com/homestay/homestay-client/internal/pkg/logger"
	"github.com/homestay/homestay-client/internal/pkg/state"
	"github.com/homestay/homestay-client/internal/pkg/validator"
)

// Service covers home and experience bookings for guests and hosts.
type Service struct {
	log         zerolog.Logger
	now         func() time.Time
	homes       *track[HomeBooking]
	experiences *track[ExperienceBooking]

	MyHomeBookings         *state.Container[HomeBooking]
	HostHomeBookings       *state.Container[HomeBooking]
	MyExperienceBookings   *state.Container[ExperienceBooking]
	HostExperienceBookings *state.Container[ExperienceBooking]
}

// NewService creates booking service
func NewService(api *apiclient.Client) *Service {
	homes := newTrack(api, "/bookings/homes", HomeKey, homeStatus)
	experiences := newTrack(api, "/bookings/experiences", ExperienceKey, experienceStatus)

	return &Service{
		log:                    logger.Component("booking"),
		now:                    time.Now,
		homes:                  homes,
		experiences:            experiences,
		MyHomeBookings:         homes.mine,
		HostHomeBookings:       homes.hosted,
		MyExperienceBookings:   experiences.mine,
		HostExperienceBookings: experiences.hosted,
	}
}

// BookHome requests a stay. The server decides availability; a conflict
// comes back as ErrUnavailable.
func (s *Service) BookHome(ctx context.Context, req CreateHomeRequest) (*HomeBooking, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	// compare calendar days in the zone the stay is given in
	loc := req.CheckIn.Location()
	y, m, d := s.now().In(loc).Date()
	if req.CheckIn.Before(time.Date(y, m, d, 0, 0, 0, 0, loc)) {
		return nil, ErrStayInPast
	}

	b, err := s.homes.create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("booking_id", b.ID.String()).
		Str("home_id", b.HomeID.String()).
		Int("nights", b.Nights()).
		Msg("Home booked")
	return &b, nil
}

// GetHomeBooking returns one home booking.
func (s *Service) GetHomeBooking(ctx context.Context, id uuid.UUID) (*HomeBooking, error) {
	b, err := s.homes.get(ctx, id.String())
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListMyHomeBookings loads the guest's home bookings.
func (s *Service) ListMyHomeBookings(ctx context.Context, page int) (state.Snapshot[HomeBooking], error) {
	err := s.MyHomeBookings.Fetch(ctx, page)
	return s.MyHomeBookings.Snapshot(), err
}

// ListHostHomeBookings loads bookings on the host's homes.
func (s *Service) ListHostHomeBookings(ctx context.Context, page int) (state.Snapshot[HomeBooking], error) {
	err := s.HostHomeBookings.Fetch(ctx, page)
	return s.HostHomeBookings.Snapshot(), err
}

// CancelHomeBooking cancels a pending or confirmed stay.
func (s *Service) CancelHomeBooking(ctx context.Context, id uuid.UUID, reason string) (*HomeBooking, error) {
	req := CancelRequest{Reason: reason}
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	b, err := s.homes.transition(ctx, id.String(), "cancel", Status.CanCancel, req)
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	return &b, nil
}

// ConfirmHomeBooking accepts a pending stay (host).
func (s *Service) ConfirmHomeBooking(ctx context.Context, id uuid.UUID) (*HomeBooking, error) {
	b, err := s.homes.transition(ctx, id.String(), "confirm", Status.CanConfirm, nil)
	if err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	return &b, nil
}

// BookExperience reserves seats on a session.
func (s *Service) BookExperience(ctx context.Context, req CreateExperienceRequest) (*ExperienceBooking, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	b, err := s.experiences.create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("booking_id", b.ID.String()).
		Str("session_id", b.SessionID.String()).
		Int("participants", b.Participants).
		Msg("Experience booked")
	return &b, nil
}

func (s *Service) GetExperienceBooking(ctx context.Context, id uuid.UUID) (*ExperienceBooking, error) {
	b, err := s.experiences.get(ctx, id.String())
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Service) ListMyExperienceBookings(ctx context.Context, page int) (state.Snapshot[ExperienceBooking], error) {
	err := s.MyExperienceBookings.Fetch(ctx, page)
	return s.MyExperienceBookings.Snapshot(), err
}

func (s *Service) ListHostExperienceBookings(ctx context.Context, page int) (state.Snapshot[ExperienceBooking], error) {
	err := s.HostExperienceBookings.Fetch(ctx, page)
	return s.HostExperienceBookings.Snapshot(), err
}

func (s *Service) CancelExperienceBooking(ctx context.Context, id uuid.UUID, reason string) (*ExperienceBooking, error) {
	req := CancelRequest{Reason: reason}
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	b, err := s.experiences.transition(ctx, id.String(), "cancel", Status.CanCancel, req)
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	return &b, nil
}

func (s *Service) ConfirmExperienceBooking(ctx context.Context, id uuid.UUID) (*ExperienceBooking, error) {
	b, err := s.experiences.transition(ctx, id.String(), "confirm", Status.CanConfirm, nil)
	if err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	return &b, nil
}
