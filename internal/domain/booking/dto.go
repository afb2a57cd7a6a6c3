package booking

import (
	"time"

	"github.com/google/uuid"
)

// CreateHomeRequest for POST /bookings/homes
type CreateHomeRequest struct {
	HomeID   uuid.UUID `json:"home_id" validate:"required"`
	CheckIn  time.Time `json:"check_in" validate:"required"`
	CheckOut time.Time `json:"check_out" validate:"required,gtfield=CheckIn"`
	Guests   int       `json:"guests" validate:"required,gte=1,lte=50"`
	Message  string    `json:"message,omitempty" validate:"max=1000"`
}

// CreateExperienceRequest for POST /bookings/experiences
type CreateExperienceRequest struct {
	ExperienceID uuid.UUID `json:"experience_id" validate:"required"`
	SessionID    uuid.UUID `json:"session_id" validate:"required"`
	Participants int       `json:"participants" validate:"required,gte=1,lte=100"`
}

// CancelRequest for PATCH /bookings/{kind}/{id}/cancel
type CancelRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}
