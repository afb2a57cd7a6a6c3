package favorite

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/homestay/homestay-client/internal/domain/listing"
	"github.com/homestay/homestay-client/internal/pkg/apiclient"
	"github.com/homestay/homestay-client/internal/pkg/state"
	"github.com/homestay/homestay-client/internal/pkg/validator"
)

const favoritesPath = "/favorites"

// Service keeps the signed-in user's wishlist.
type Service struct {
	api *apiclient.Client
	// Favorites is the wishlist, newest first.
	Favorites *state.Container[Favorite]
}

// NewService creates favorites service
func NewService(api *apiclient.Client) *Service {
	return &Service{
		api:       api,
		Favorites: state.New[Favorite](state.NewEndpoint[Favorite](api, favoritesPath), Key, state.DefaultLimit),
	}
}

// List loads one page of the wishlist, optionally only one listing kind.
func (s *Service) List(ctx context.Context, kind listing.Kind, page int) (state.Snapshot[Favorite], error) {
	filter := url.Values{}
	if kind != "" {
		filter.Set("type", string(kind))
	}
	s.Favorites.SetFilter(filter)
	err := s.Favorites.Fetch(ctx, page)
	return s.Favorites.Snapshot(), err
}

// Add saves a listing. Saving an already saved listing returns the
// existing favorite.
func (s *Service) Add(ctx context.Context, kind listing.Kind, id uuid.UUID) (*Favorite, error) {
	req := AddRequest{Kind: string(kind), ListingID: id}
	if err := validator.Check(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKind, err)
	}
	var fav Favorite
	if err := s.api.Post(ctx, favoritesPath, req, &fav); err != nil {
		return nil, err
	}
	s.Favorites.Upsert(fav)
	return &fav, nil
}

// Remove drops a listing from the wishlist.
func (s *Service) Remove(ctx context.Context, kind listing.Kind, id uuid.UUID) error {
	err := s.api.Delete(ctx, favoritesPath+"/"+ref(kind, id))
	if err != nil && !errors.Is(err, apiclient.ErrNotFound) {
		return err
	}
	s.Favorites.Remove(ref(kind, id))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFavoriteNotFound, err)
	}
	return nil
}

// IsFavorite answers from the loaded wishlist when it can and asks the API
// otherwise.
func (s *Service) IsFavorite(ctx context.Context, kind listing.Kind, id uuid.UUID) (bool, error) {
	if _, ok := s.Favorites.Find(ref(kind, id)); ok {
		return true, nil
	}
	var resp checkResponse
	if err := s.api.Get(ctx, favoritesPath+"/"+ref(kind, id)+"/check", nil, &resp); err != nil {
		return false, err
	}
	return resp.IsFavorited, nil
}

// Toggle saves an unsaved listing or removes a saved one, and reports whether
// the listing is saved afterwards.
func (s *Service) Toggle(ctx context.Context, kind listing.Kind, id uuid.UUID) (bool, error) {
	saved, err := s.IsFavorite(ctx, kind, id)
	if err != nil {
		return false, err
	}
	if saved {
		return false, s.Remove(ctx, kind, id)
	}
	_, err = s.Add(ctx, kind, id)
	return err == nil, err
}
