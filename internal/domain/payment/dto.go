package payment

import "github.com/google/uuid"

// CreateRequest for POST /payments
type CreateRequest struct {
	BookingID   uuid.UUID   `json:"booking_id" validate:"required"`
	BookingKind BookingKind `json:"booking_kind" validate:"required,oneof=home experience"`
	Provider    Provider    `json:"provider" validate:"required,oneof=card manual"`
	ReturnURL   string      `json:"return_url,omitempty" validate:"omitempty,url"`
}
