package favorite

import (
	"time"

	"github.com/google/uuid"

	"github.com/homestay/homestay-client/internal/domain/listing"
)

// Favorite is a listing saved to the user's wishlist.
type Favorite struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"user_id"`
	Kind      listing.Kind `json:"entity_type"`
	ListingID uuid.UUID    `json:"entity_id"`
	CreatedAt time.Time    `json:"created_at"`
}

// Key identifies a favorite by the listing it points at, so a listing is
// saved at most once.
func Key(f Favorite) string { return ref(f.Kind, f.ListingID) }

func ref(kind listing.Kind, id uuid.UUID) string {
	return string(kind) + "/" + id.String()
}
