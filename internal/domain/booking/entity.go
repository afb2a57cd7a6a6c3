package booking

import (
	"time"

	"github.com/google/uuid"
)

// Status represents booking status
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// CanCancel reports whether a booking in this status may still be cancelled.
func (s Status) CanCancel() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanConfirm reports whether the host may confirm a booking in this status.
func (s Status) CanConfirm() bool {
	return s == StatusPending
}

// HomeBooking is a stay at a home for a date range.
type HomeBooking struct {
	ID           uuid.UUID `json:"id"`
	HomeID       uuid.UUID `json:"home_id"`
	GuestID      uuid.UUID `json:"guest_id"`
	HostID       uuid.UUID `json:"host_id"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	Guests       int       `json:"guests"`
	TotalPrice   float64   `json:"total_price"`
	Currency     string    `json:"currency"`
	Status       Status    `json:"status"`
	CancelReason string    `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Nights returns the number of nights in the stay.
func (b *HomeBooking) Nights() int {
	d := b.CheckOut.Sub(b.CheckIn)
	if d <= 0 {
		return 0
	}
	return int(d.Round(24*time.Hour) / (24 * time.Hour))
}

// ExperienceBooking reserves seats on one experience session.
type ExperienceBooking struct {
	ID           uuid.UUID `json:"id"`
	ExperienceID uuid.UUID `json:"experience_id"`
	SessionID    uuid.UUID `json:"session_id"`
	GuestID      uuid.UUID `json:"guest_id"`
	HostID       uuid.UUID `json:"host_id"`
	Participants int       `json:"participants"`
	StartsAt     time.Time `json:"starts_at"`
	TotalPrice   float64   `json:"total_price"`
	Currency     string    `json:"currency"`
	Status       Status    `json:"status"`
	CancelReason string    `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func HomeKey(b HomeBooking) string { return b.ID.String() }

func ExperienceKey(b ExperienceBooking) string { return b.ID.String() }

func homeStatus(b HomeBooking) Status { return b.Status }

func experienceStatus(b ExperienceBooking) Status { return b.Status }
