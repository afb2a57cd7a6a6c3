package draft

import (
	"time"

	"github.com/google/uuid"

	"github.com/homestay/homestay-client/internal/domain/listing"
)

// Photo is an attached image kept inline until submit.
type Photo struct {
	Name    string `json:"name"`
	DataURL string `json:"data_url" validate:"required"`
	IsCover bool   `json:"is_cover"`
}

// HomeDraft collects a home listing across wizard steps.
type HomeDraft struct {
	Title          string                `json:"title" validate:"required,min=5,max=120"`
	Description    string                `json:"description" validate:"required,min=20,max=5000"`
	PropertyTypeID uuid.UUID             `json:"property_type_id" validate:"required"`
	Location       listing.LocationInput `json:"location"`
	MaxGuests      int                   `json:"max_guests" validate:"required,gte=1,lte=50"`
	Bedrooms       int                   `json:"bedrooms" validate:"gte=0,lte=50"`
	Beds           int                   `json:"beds" validate:"gte=1,lte=100"`
	Bathrooms      int                   `json:"bathrooms" validate:"gte=0,lte=50"`
	AmenityIDs     []uuid.UUID           `json:"amenity_ids"`
	FacilityIDs    []uuid.UUID           `json:"facility_ids"`
	Photos         []Photo               `json:"photos" validate:"required,min=1,max=20,dive"`
	PricePerNight  float64               `json:"price_per_night" validate:"required,gt=0"`
	Currency       string                `json:"currency" validate:"required,len=3"`
}

func (d *HomeDraft) photos() *[]Photo { return &d.Photos }

func (d *HomeDraft) request(images []listing.ImageInput) listing.HomeRequest {
	return listing.HomeRequest{
		Title:          d.Title,
		Description:    d.Description,
		PropertyTypeID: d.PropertyTypeID,
		Location:       d.Location,
		PricePerNight:  d.PricePerNight,
		Currency:       d.Currency,
		MaxGuests:      d.MaxGuests,
		Bedrooms:       d.Bedrooms,
		Beds:           d.Beds,
		Bathrooms:      d.Bathrooms,
		AmenityIDs:     d.AmenityIDs,
		FacilityIDs:    d.FacilityIDs,
		Images:         images,
	}
}

// ExperienceDraft collects an experience listing across wizard steps.
type ExperienceDraft struct {
	Title           string                 `json:"title" validate:"required,min=5,max=120"`
	Description     string                 `json:"description" validate:"required,min=20,max=5000"`
	CategoryID      uuid.UUID              `json:"category_id" validate:"required"`
	Location        listing.LocationInput  `json:"location"`
	DurationMinutes int                    `json:"duration_minutes" validate:"required,gte=15,lte=1440"`
	MaxParticipants int                    `json:"max_participants" validate:"required,gte=1,lte=100"`
	Languages       []string               `json:"languages" validate:"required,min=1,dive,bcp47_language_tag"`
	InterestIDs     []uuid.UUID            `json:"interest_ids"`
	Sessions        []listing.SessionInput `json:"sessions" validate:"required,min=1,dive"`
	Photos          []Photo                `json:"photos" validate:"required,min=1,max=20,dive"`
	Price           float64                `json:"price" validate:"required,gt=0"`
	Currency        string                 `json:"currency" validate:"required,len=3"`
}

func (d *ExperienceDraft) photos() *[]Photo { return &d.Photos }

func (d *ExperienceDraft) request(images []listing.ImageInput) listing.ExperienceRequest {
	return listing.ExperienceRequest{
		Title:           d.Title,
		Description:     d.Description,
		CategoryID:      d.CategoryID,
		Location:        d.Location,
		Price:           d.Price,
		Currency:        d.Currency,
		DurationMinutes: d.DurationMinutes,
		MaxParticipants: d.MaxParticipants,
		Languages:       d.Languages,
		InterestIDs:     d.InterestIDs,
		Images:          images,
		Sessions:        d.Sessions,
	}
}

// Record is what gets persisted for one owner and kind.
type Record struct {
	Kind       listing.Kind     `json:"kind"`
	OwnerID    uuid.UUID        `json:"owner_id"`
	Step       int              `json:"step"`
	Home       *HomeDraft       `json:"home,omitempty"`
	Experience *ExperienceDraft `json:"experience,omitempty"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func newRecord(kind listing.Kind, owner uuid.UUID) Record {
	rec := Record{Kind: kind, OwnerID: owner}
	switch kind {
	case listing.KindHome:
		rec.Home = &HomeDraft{}
	case listing.KindExperience:
		rec.Experience = &ExperienceDraft{}
	}
	return rec
}

// complete reports whether the record carries the draft of its kind.
func (r *Record) complete() bool {
	switch r.Kind {
	case listing.KindHome:
		return r.Home != nil
	case listing.KindExperience:
		return r.Experience != nil
	}
	return false
}

// body returns the active draft.
func (r *Record) body() any {
	if r.Kind == listing.KindExperience {
		return r.Experience
	}
	return r.Home
}

func (r *Record) photoList() *[]Photo {
	if r.Kind == listing.KindExperience {
		return r.Experience.photos()
	}
	return r.Home.photos()
}

// Key returns the store key of a draft.
func Key(kind listing.Kind, owner uuid.UUID) string {
	return "draft:" + string(kind) + ":" + owner.String()
}
