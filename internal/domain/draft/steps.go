package draft

import (
	"slices"
	"strings"

	"github.com/homestay/homestay-client/internal/domain/listing"
)

// Step is one wizard page. Keys are the top-level draft fields the page may
// patch; Fields are the validation field names it owns.
type Step struct {
	Name   string
	Keys   []string
	Fields []string
}

var locationFields = []string{"location", "address", "city", "country", "country_code", "lat", "lon"}

var homeSteps = []Step{
	{Name: "basics", Keys: []string{"title", "description", "property_type_id"}},
	{Name: "location", Keys: []string{"location"}, Fields: locationFields},
	{Name: "details", Keys: []string{"max_guests", "bedrooms", "beds", "bathrooms"}},
	{Name: "amenities", Keys: []string{"amenity_ids", "facility_ids"}},
	{Name: "photos", Keys: []string{"photos"}, Fields: []string{"photos", "data_url"}},
	{Name: "pricing", Keys: []string{"price_per_night", "currency"}},
	{Name: "review"},
}

var experienceSteps = []Step{
	{Name: "basics", Keys: []string{"title", "description", "category_id"}},
	{Name: "location", Keys: []string{"location"}, Fields: locationFields},
	{Name: "details", Keys: []string{"duration_minutes", "max_participants", "languages", "interest_ids"}},
	{Name: "schedule", Keys: []string{"sessions"}, Fields: []string{"sessions", "starts_at", "ends_at", "capacity"}},
	{Name: "photos", Keys: []string{"photos"}, Fields: []string{"photos", "data_url"}},
	{Name: "pricing", Keys: []string{"price", "currency"}},
	{Name: "review"},
}

// Steps returns the ordered steps of a draft kind.
func Steps(kind listing.Kind) ([]Step, error) {
	switch kind {
	case listing.KindHome:
		return homeSteps, nil
	case listing.KindExperience:
		return experienceSteps, nil
	}
	return nil, ErrUnknownKind
}

// owns reports whether a validation error on field belongs to the step.
// Element errors such as languages[0] belong to the owner of languages.
func (s Step) owns(field string) bool {
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}
	if s.Fields != nil {
		return slices.Contains(s.Fields, field)
	}
	return slices.Contains(s.Keys, field)
}

func (s Step) patches(key string) bool {
	return slices.Contains(s.Keys, key)
}

func stepIndex(steps []Step, name string) int {
	return slices.IndexFunc(steps, func(s Step) bool { return s.Name == name })
}
