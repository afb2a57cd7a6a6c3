package payment

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

// Service starts and tracks booking payments.
type Service struct {
	endpoint *state.Endpoint[Payment]
	log      zerolog.Logger

	// Payments is the signed-in user's payment history.
	Payments *state.Container[Payment]
}

// NewService creates payment service
func NewService(api *apiclient.Client) *Service {
	ep := state.NewEndpoint[Payment](api, "/payments")
	return &Service{
		endpoint: ep,
		log:      logger.Component("payment"),
		Payments: state.New[Payment](ep.WithListPath("/payments/mine"), Key, state.DefaultLimit),
	}
}

// Create starts a payment for a booking. Card payments come back with a
// checkout URL to finish at the provider.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Payment, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	p, err := s.Payments.Create(ctx, req)
	if err != nil {
		if errors.Is(err, apiclient.ErrConflict) {
			return nil, fmt.Errorf("%w: %w", ErrAlreadyPaid, err)
		}
		return nil, err
	}
	s.log.Info().
		Str("payment_id", p.ID.String()).
		Str("booking_id", p.BookingID.String()).
		Float64("amount", p.Amount).
		Str("status", string(p.Status)).
		Msg("Payment created")
	return &p, nil
}

// Get fetches a payment and refreshes it in the history when present.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p, err := s.endpoint.Get(ctx, id.String())
	if err != nil {
		if errors.Is(err, apiclient.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrPaymentNotFound, err)
		}
		return nil, err
	}
	if _, ok := s.Payments.Find(id.String()); ok {
		s.Payments.Upsert(p)
	}
	return &p, nil
}

// ListMine loads one page of the user's payments.
func (s *Service) ListMine(ctx context.Context, page int) (state.Snapshot[Payment], error) {
	err := s.Payments.Fetch(ctx, page)
	return s.Payments.Snapshot(), err
}
