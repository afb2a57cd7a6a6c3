package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/homestay/homestay-client/internal/pkg/apiclient"
	"github.com/homestay/homestay-client/internal/pkg/validator"
)

// Period selects the stats window.
type Period string

const (
	PeriodWeek    Period = "7d"
	PeriodMonth   Period = "30d"
	PeriodQuarter Period = "90d"
	PeriodYear    Period = "365d"
)

var ErrForbidden = errors.New("dashboard not available for this role")

// AdminStats represents marketplace-wide statistics
type AdminStats struct {
	TotalUsers         int     `json:"total_users"`
	NewUsers           int     `json:"new_users"`
	TotalHosts         int     `json:"total_hosts"`
	BannedUsers        int     `json:"banned_users"`
	HomeListings       int     `json:"home_listings"`
	ExperienceListings int     `json:"experience_listings"`
	PendingListings    int     `json:"pending_listings"`
	Bookings           int     `json:"bookings"`
	CancelledBookings  int     `json:"cancelled_bookings"`
	Revenue            float64 `json:"revenue"`
	Currency           string  `json:"currency"`
}

// CancellationRate returns cancelled bookings as a share of all bookings.
func (s *AdminStats) CancellationRate() float64 {
	if s.Bookings == 0 {
		return 0
	}
	return float64(s.CancelledBookings) / float64(s.Bookings)
}

// HostStats represents statistics for the signed-in host
type HostStats struct {
	ActiveListings   int     `json:"active_listings"`
	ListingViews     int     `json:"listing_views"`
	PendingBookings  int     `json:"pending_bookings"`
	UpcomingBookings int     `json:"upcoming_bookings"`
	BookedNights     int     `json:"booked_nights"`
	AvailableNights  int     `json:"available_nights"`
	Earnings         float64 `json:"earnings"`
	Currency         string  `json:"currency"`
	AverageRating    float64 `json:"average_rating"`
	ReviewCount      int     `json:"review_count"`
}

// OccupancyRate returns booked nights as a share of available nights.
func (s *HostStats) OccupancyRate() float64 {
	if s.AvailableNights == 0 {
		return 0
	}
	return float64(s.BookedNights) / float64(s.AvailableNights)
}

type statsQuery struct {
	Period Period `json:"period" validate:"required,oneof=7d 30d 90d 365d"`
}

// Service provides dashboard statistics
type Service struct {
	api *apiclient.Client
}

// NewService creates dashboard service
func NewService(api *apiclient.Client) *Service {
	return &Service{api: api}
}

// AdminStats returns marketplace statistics for the period (admin).
func (s *Service) AdminStats(ctx context.Context, period Period) (*AdminStats, error) {
	var stats AdminStats
	if err := s.get(ctx, "/admin/stats", period, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// HostStats returns the signed-in host's statistics for the period.
func (s *Service) HostStats(ctx context.Context, period Period) (*HostStats, error) {
	var stats HostStats
	if err := s.get(ctx, "/host/stats", period, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *Service) get(ctx context.Context, path string, period Period, out any) error {
	if period == "" {
		period = PeriodMonth
	}
	if err := validator.Check(statsQuery{Period: period}); err != nil {
		return err
	}
	err := s.api.Get(ctx, path, url.Values{"period": {string(period)}}, out)
	if errors.Is(err, apiclient.ErrForbidden) {
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	}
	return err
}
