package catalog

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/homestay/homestay-client/internal/pkg/apiclient"
)

// Service groups the reference catalogs used by listing forms and filters.
type Service struct {
	Amenities            *Collection[Amenity]
	Facilities           *Collection[Facility]
	Interests            *Collection[Interest]
	PropertyTypes        *Collection[PropertyType]
	ExperienceCategories *Collection[ExperienceCategory]
}

// NewService creates catalog service
func NewService(api *apiclient.Client) *Service {
	return &Service{
		Amenities:            newCollection(api, "/amenities", AmenityKey, func(a Amenity) string { return a.Name }),
		Facilities:           newCollection(api, "/facilities", FacilityKey, func(f Facility) string { return f.Name }),
		Interests:            newCollection(api, "/interests", InterestKey, func(i Interest) string { return i.Name }),
		PropertyTypes:        newCollection(api, "/property-types", PropertyTypeKey, func(p PropertyType) string { return p.Name }),
		ExperienceCategories: newCollection(api, "/experience-categories", ExperienceCategoryKey, func(c ExperienceCategory) string { return c.Name }),
	}
}

// LoadAll fetches every catalog concurrently.
func (s *Service) LoadAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { _, err := s.Amenities.Load(ctx); return err })
	g.Go(func() error { _, err := s.Facilities.Load(ctx); return err })
	g.Go(func() error { _, err := s.Interests.Load(ctx); return err })
	g.Go(func() error { _, err := s.PropertyTypes.Load(ctx); return err })
	g.Go(func() error { _, err := s.ExperienceCategories.Load(ctx); return err })
	return g.Wait()
}
