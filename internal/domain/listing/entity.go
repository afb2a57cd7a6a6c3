package listing

import (
	"time"

	"github.com/google/uuid"
)

// Status represents listing publication status
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Kind distinguishes homes from experiences.
type Kind string

const (
	KindHome       Kind = "home"
	KindExperience Kind = "experience"
)

// Image is a listing photo stored on the media host.
type Image struct {
	ID       uuid.UUID `json:"id,omitempty"`
	URL      string    `json:"url"`
	Position int       `json:"position"`
	IsCover  bool      `json:"is_cover"`
}

// Location is the geocoded place of a listing.
type Location struct {
	Address     string  `json:"address"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// HomeListing mirrors the API home record.
type HomeListing struct {
	ID             uuid.UUID   `json:"id"`
	HostID         uuid.UUID   `json:"host_id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	PropertyTypeID uuid.UUID   `json:"property_type_id"`
	Location       Location    `json:"location"`
	PricePerNight  float64     `json:"price_per_night"`
	Currency       string      `json:"currency"`
	MaxGuests      int         `json:"max_guests"`
	Bedrooms       int         `json:"bedrooms"`
	Beds           int         `json:"beds"`
	Bathrooms      int         `json:"bathrooms"`
	AmenityIDs     []uuid.UUID `json:"amenity_ids,omitempty"`
	FacilityIDs    []uuid.UUID `json:"facility_ids,omitempty"`
	Images         []Image     `json:"images,omitempty"`
	Status         Status      `json:"status"`
	Rating         float64     `json:"rating"`
	ReviewCount    int         `json:"review_count"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Cover returns the cover image URL, falling back to the first image.
func (h *HomeListing) Cover() string {
	return coverOf(h.Images)
}

// Session is one scheduled run of an experience.
type Session struct {
	ID       uuid.UUID `json:"id,omitempty"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Capacity int       `json:"capacity"`
	Booked   int       `json:"booked"`
}

// Available returns free seats left in the session.
func (s Session) Available() int {
	if n := s.Capacity - s.Booked; n > 0 {
		return n
	}
	return 0
}

// ExperienceListing mirrors the API experience record.
type ExperienceListing struct {
	ID              uuid.UUID   `json:"id"`
	HostID          uuid.UUID   `json:"host_id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	CategoryID      uuid.UUID   `json:"category_id"`
	Location        Location    `json:"location"`
	Price           float64     `json:"price"`
	Currency        string      `json:"currency"`
	DurationMinutes int         `json:"duration_minutes"`
	MaxParticipants int         `json:"max_participants"`
	Languages       []string    `json:"languages,omitempty"`
	InterestIDs     []uuid.UUID `json:"interest_ids,omitempty"`
	Images          []Image     `json:"images,omitempty"`
	Sessions        []Session   `json:"sessions,omitempty"`
	Status          Status      `json:"status"`
	Rating          float64     `json:"rating"`
	ReviewCount     int         `json:"review_count"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Cover returns the cover image URL, falling back to the first image.
func (e *ExperienceListing) Cover() string {
	return coverOf(e.Images)
}

// UpcomingSessions returns sessions starting after now that still have seats.
func (e *ExperienceListing) UpcomingSessions(now time.Time) []Session {
	var out []Session
	for _, s := range e.Sessions {
		if s.StartsAt.After(now) && s.Available() > 0 {
			out = append(out, s)
		}
	}
	return out
}

func coverOf(images []Image) string {
	for _, img := range images {
		if img.IsCover {
			return img.URL
		}
	}
	if len(images) > 0 {
		return images[0].URL
	}
	return ""
}

// HomeKey identifies a home inside a state container.
func HomeKey(h HomeListing) string { return h.ID.String() }

// ExperienceKey identifies an experience inside a state container.
func ExperienceKey(e ExperienceListing) string { return e.ID.String() }
