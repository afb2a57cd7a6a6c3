package review

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// TargetKind is the kind of listing a review is about.
type TargetKind string

const (
	TargetHome       TargetKind = "home"
	TargetExperience TargetKind = "experience"
)

// Review is a guest's rating of a listing after a completed booking.
type Review struct {
	ID         uuid.UUID  `json:"id"`
	AuthorID   uuid.UUID  `json:"author_id"`
	AuthorName string     `json:"author_name,omitempty"`
	TargetKind TargetKind `json:"target_kind"`
	TargetID   uuid.UUID  `json:"target_id"`
	BookingID  uuid.UUID  `json:"booking_id"`
	Rating     int        `json:"rating"`
	Comment    string     `json:"comment,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func Key(r Review) string { return r.ID.String() }

// RatingSummary for listing rating overview
type RatingSummary struct {
	AverageRating float64     `json:"average_rating"`
	TotalReviews  int         `json:"total_reviews"`
	Distribution  map[int]int `json:"distribution"`
}

// Summarize computes the rating summary of the given reviews.
func Summarize(reviews []Review) RatingSummary {
	sum := RatingSummary{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	total := 0
	for _, r := range reviews {
		if r.Rating < 1 || r.Rating > 5 {
			continue
		}
		sum.Distribution[r.Rating]++
		sum.TotalReviews++
		total += r.Rating
	}
	if sum.TotalReviews > 0 {
		sum.AverageRating = math.Round(float64(total)/float64(sum.TotalReviews)*10) / 10
	}
	return sum
}
