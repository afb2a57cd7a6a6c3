package favorite

import "github.com/google/uuid"

// AddRequest for POST /favorites
type AddRequest struct {
	Kind      string    `json:"entity_type" validate:"required,listing_kind"`
	ListingID uuid.UUID `json:"entity_id" validate:"required"`
}

type checkResponse struct {
	IsFavorited bool `json:"is_favorited"`
}
