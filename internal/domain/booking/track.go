package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/homestay/homestay-client/internal/pkg/apiclient"
	"github.com/homestay/homestay-client/internal/pkg/state"
)

// track is one booking kind: the guest's own bookings and the bookings on
// the host's listings share item routes under one collection.
type track[T any] struct {
	api      *apiclient.Client
	endpoint *state.Endpoint[T]
	status   func(T) Status
	mine     *state.Container[T]
	hosted   *state.Container[T]
}

func newTrack[T any](api *apiclient.Client, path string, key func(T) string, status func(T) Status) *track[T] {
	ep := state.NewEndpoint[T](api, path)
	return &track[T]{
		api:      api,
		endpoint: ep,
		status:   status,
		mine:     state.New[T](ep.WithListPath(path+"/mine"), key, state.DefaultLimit),
		hosted:   state.New[T](ep.WithListPath(path+"/host"), key, state.DefaultLimit),
	}
}

func (t *track[T]) create(ctx context.Context, req any) (T, error) {
	b, err := t.mine.Create(ctx, req)
	if err != nil {
		return b, mapError(err)
	}
	return b, nil
}

func (t *track[T]) get(ctx context.Context, id string) (T, error) {
	b, err := t.endpoint.Get(ctx, id)
	return b, mapError(err)
}

// transition applies action ("cancel", "confirm") to a booking and patches
// whichever containers hold it. A locally known status that forbids the
// change fails without a request.
func (t *track[T]) transition(ctx context.Context, id, action string, allowed func(Status) bool, body any) (T, error) {
	var zero T
	for _, c := range []*state.Container[T]{t.mine, t.hosted} {
		if b, ok := c.Find(id); ok && !allowed(t.status(b)) {
			return zero, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, t.status(b))
		}
	}

	var b T
	if err := t.api.Patch(ctx, t.endpoint.Path()+"/"+id+"/"+action, body, &b); err != nil {
		if errors.Is(err, apiclient.ErrConflict) {
			return zero, fmt.Errorf("%w: %w", ErrInvalidTransition, err)
		}
		return zero, mapError(err)
	}
	for _, c := range []*state.Container[T]{t.mine, t.hosted} {
		if _, ok := c.Find(id); ok {
			c.Upsert(b)
		}
	}
	return b, nil
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apiclient.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrBookingNotFound, err)
	case errors.Is(err, apiclient.ErrConflict):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
