package review

import "github.com/google/uuid"

// CreateRequest for POST /reviews
type CreateRequest struct {
	TargetKind TargetKind `json:"target_kind" validate:"required,listing_kind"`
	TargetID   uuid.UUID  `json:"target_id" validate:"required"`
	BookingID  uuid.UUID  `json:"booking_id" validate:"required"`
	Rating     int        `json:"rating" validate:"required,gte=1,lte=5"`
	Comment    string     `json:"comment" validate:"max=2000"`
}
