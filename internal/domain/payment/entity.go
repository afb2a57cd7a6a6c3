package payment

import (
	"time"

	"github.com/google/uuid"
)

// Status represents payment status
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Settled reports whether the payment no longer changes.
func (s Status) Settled() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusRefunded
}

// Provider represents payment provider
type Provider string

const (
	ProviderCard   Provider = "card"
	ProviderManual Provider = "manual"
)

// BookingKind tells which booking collection a payment belongs to.
type BookingKind string

const (
	BookingHome       BookingKind = "home"
	BookingExperience BookingKind = "experience"
)

// Payment represents a payment transaction
type Payment struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	BookingID   uuid.UUID   `json:"booking_id"`
	BookingKind BookingKind `json:"booking_kind"`
	Amount      float64     `json:"amount"`
	Currency    string      `json:"currency"`
	Status      Status      `json:"status"`
	Provider    Provider    `json:"provider"`
	CheckoutURL string      `json:"checkout_url,omitempty"`
	ExternalID  string      `json:"external_id,omitempty"`
	PaidAt      *time.Time  `json:"paid_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

func Key(p Payment) string { return p.ID.String() }
