package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Entry holds the fields every catalog record shares.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Amenity is something a home offers (wifi, kitchen).
type Amenity struct {
	Entry
	Category string `json:"category,omitempty"`
}

// Facility is a shared building or site feature (pool, parking).
type Facility struct {
	Entry
}

// Interest tags experiences and guest profiles.
type Interest struct {
	Entry
}

// PropertyType classifies homes (apartment, cabin).
type PropertyType struct {
	Entry
}

// ExperienceCategory classifies experiences (food, outdoors).
type ExperienceCategory struct {
	Entry
}

func AmenityKey(a Amenity) string                       { return a.ID.String() }
func FacilityKey(f Facility) string                     { return f.ID.String() }
func InterestKey(i Interest) string                     { return i.ID.String() }
func PropertyTypeKey(p PropertyType) string             { return p.ID.String() }
func ExperienceCategoryKey(c ExperienceCategory) string { return c.ID.String() }
