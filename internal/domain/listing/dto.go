package listing

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// HomeFilter narrows the public home search.
type HomeFilter struct {
	Location       string     `json:"location" validate:"max=200"`
	Guests         int        `json:"guests" validate:"gte=0,lte=50"`
	MinPrice       float64    `json:"min_price" validate:"gte=0"`
	MaxPrice       float64    `json:"max_price" validate:"omitempty,gtefield=MinPrice"`
	CheckIn        time.Time  `json:"check_in"`
	CheckOut       time.Time  `json:"check_out" validate:"required_with=CheckIn,omitempty,gtfield=CheckIn"`
	PropertyTypeID *uuid.UUID `json:"property_type_id"`
}

// Values renders the filter as query parameters, skipping zero fields.
func (f HomeFilter) Values() url.Values {
	q := url.Values{}
	setString(q, "location", f.Location)
	setInt(q, "guests", f.Guests)
	setPrice(q, "min_price", f.MinPrice)
	setPrice(q, "max_price", f.MaxPrice)
	setDate(q, "check_in", f.CheckIn)
	setDate(q, "check_out", f.CheckOut)
	if f.PropertyTypeID != nil {
		q.Set("property_type_id", f.PropertyTypeID.String())
	}
	return q
}

// ExperienceFilter narrows the public experience search.
type ExperienceFilter struct {
	Location     string     `json:"location" validate:"max=200"`
	Participants int        `json:"participants" validate:"gte=0,lte=100"`
	MinPrice     float64    `json:"min_price" validate:"gte=0"`
	MaxPrice     float64    `json:"max_price" validate:"omitempty,gtefield=MinPrice"`
	Date         time.Time  `json:"date"`
	CategoryID   *uuid.UUID `json:"category_id"`
}

func (f ExperienceFilter) Values() url.Values {
	q := url.Values{}
	setString(q, "location", f.Location)
	setInt(q, "participants", f.Participants)
	setPrice(q, "min_price", f.MinPrice)
	setPrice(q, "max_price", f.MaxPrice)
	setDate(q, "date", f.Date)
	if f.CategoryID != nil {
		q.Set("category_id", f.CategoryID.String())
	}
	return q
}

func setString(q url.Values, k, v string) {
	if v = strings.TrimSpace(v); v != "" {
		q.Set(k, v)
	}
}

func setInt(q url.Values, k string, v int) {
	if v > 0 {
		q.Set(k, strconv.Itoa(v))
	}
}

func setPrice(q url.Values, k string, v float64) {
	if v > 0 {
		q.Set(k, strconv.FormatFloat(v, 'f', -1, 64))
	}
}

func setDate(q url.Values, k string, v time.Time) {
	if !v.IsZero() {
		q.Set(k, v.Format(dateLayout))
	}
}

// ImageInput references an already uploaded image.
type ImageInput struct {
	URL     string `json:"url" validate:"required,url"`
	IsCover bool   `json:"is_cover"`
}

// LocationInput for listing requests
type LocationInput struct {
	Address     string  `json:"address" validate:"required,max=300"`
	City        string  `json:"city" validate:"required,max=100"`
	Country     string  `json:"country" validate:"required,max=100"`
	CountryCode string  `json:"country_code,omitempty" validate:"omitempty,len=2"`
	Lat         float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon         float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// HomeRequest for POST /homes and PUT /homes/{id}
type HomeRequest struct {
	Title          string        `json:"title" validate:"required,min=5,max=120"`
	Description    string        `json:"description" validate:"required,min=20,max=5000"`
	PropertyTypeID uuid.UUID     `json:"property_type_id" validate:"required"`
	Location       LocationInput `json:"location"`
	PricePerNight  float64       `json:"price_per_night" validate:"required,gt=0"`
	Currency       string        `json:"currency" validate:"required,len=3"`
	MaxGuests      int           `json:"max_guests" validate:"required,gte=1,lte=50"`
	Bedrooms       int           `json:"bedrooms" validate:"gte=0,lte=50"`
	Beds           int           `json:"beds" validate:"gte=1,lte=100"`
	Bathrooms      int           `json:"bathrooms" validate:"gte=0,lte=50"`
	AmenityIDs     []uuid.UUID   `json:"amenity_ids,omitempty"`
	FacilityIDs    []uuid.UUID   `json:"facility_ids,omitempty"`
	Images         []ImageInput  `json:"images" validate:"required,min=1,dive"`
}

// SessionInput schedules one experience session.
type SessionInput struct {
	StartsAt time.Time `json:"starts_at" validate:"required"`
	EndsAt   time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
	Capacity int       `json:"capacity" validate:"required,gte=1,lte=100"`
}

// ExperienceRequest for POST /experiences and PUT /experiences/{id}
type ExperienceRequest struct {
	Title           string         `json:"title" validate:"required,min=5,max=120"`
	Description     string         `json:"description" validate:"required,min=20,max=5000"`
	CategoryID      uuid.UUID      `json:"category_id" validate:"required"`
	Location        LocationInput  `json:"location"`
	Price           float64        `json:"price" validate:"required,gt=0"`
	Currency        string         `json:"currency" validate:"required,len=3"`
	DurationMinutes int            `json:"duration_minutes" validate:"required,gte=15,lte=1440"`
	MaxParticipants int            `json:"max_participants" validate:"required,gte=1,lte=100"`
	Languages       []string       `json:"languages" validate:"required,min=1,dive,bcp47_language_tag"`
	InterestIDs     []uuid.UUID    `json:"interest_ids,omitempty"`
	Images          []ImageInput   `json:"images" validate:"required,min=1,dive"`
	Sessions        []SessionInput `json:"sessions" validate:"required,min=1,dive"`
}
