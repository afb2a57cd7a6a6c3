package notification

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type represents notification type
type Type string

const (
	TypeBookingRequested Type = "booking_requested" // Host: a guest asked to book
	TypeBookingConfirmed Type = "booking_confirmed" // Guest: host accepted
	TypeBookingCancelled Type = "booking_cancelled" // Both
	TypePaymentReceived  Type = "payment_received"  // Host
	TypeReviewPosted     Type = "review_posted"     // Host: new review on a listing
	TypeListingApproved  Type = "listing_approved"  // Host: listing went live
)

// Notification represents a user notification
type Notification struct {
	ID          uuid.UUID       `json:"id"`
	RecipientID uuid.UUID       `json:"recipient_id"`
	Type        Type            `json:"type"`
	Title       string          `json:"title"`
	Body        string          `json:"body,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	IsRead      bool            `json:"is_read"`
	ReadAt      *time.Time      `json:"read_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Data links a notification to the records it is about.
type Data struct {
	BookingID *uuid.UUID `json:"booking_id,omitempty"`
	ListingID *uuid.UUID `json:"listing_id,omitempty"`
	PaymentID *uuid.UUID `json:"payment_id,omitempty"`
	ReviewID  *uuid.UUID `json:"review_id,omitempty"`
}

// GetData decodes data from JSON
func (n *Notification) GetData() *Data {
	if len(n.Data) == 0 {
		return &Data{}
	}
	var data Data
	_ = json.Unmarshal(n.Data, &data)
	return &data
}

func Key(n Notification) string { return n.ID.String() }
