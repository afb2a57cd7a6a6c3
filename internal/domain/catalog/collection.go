package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/homestay/homestay-client/internal/pkg/apiclient"
	"github.com/homestay/homestay-client/internal/pkg/state"
	"github.com/homestay/homestay-client/internal/pkg/validator"
)

// catalogLimit fits a whole catalog in one page.
const catalogLimit = 100

// Collection is one reference catalog: readable by everyone, editable by
// admins.
type Collection[T any] struct {
	*state.Container[T]
	api  *apiclient.Client
	name func(T) string
}

func newCollection[T any](api *apiclient.Client, path string, key, name func(T) string) *Collection[T] {
	return &Collection[T]{
		Container: state.New[T](state.NewEndpoint[T](api, path), key, catalogLimit),
		api:       api,
		name:      name,
	}
}

// Load fetches the catalog.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	if err := c.Fetch(ctx, 1); err != nil {
		return nil, err
	}
	return c.Snapshot().Items, nil
}

// Add creates an entry (admin).
func (c *Collection[T]) Add(ctx context.Context, req EntryRequest) (T, error) {
	var zero T
	if err := c.checkAdmin(req); err != nil {
		return zero, err
	}
	item, err := c.Create(ctx, req)
	return item, mapError(err)
}

// Edit updates an entry (admin).
func (c *Collection[T]) Edit(ctx context.Context, id uuid.UUID, req EntryRequest) (T, error) {
	var zero T
	if err := c.checkAdmin(req); err != nil {
		return zero, err
	}
	item, err := c.Update(ctx, id.String(), req)
	return item, mapError(err)
}

// Drop deletes an entry (admin).
func (c *Collection[T]) Drop(ctx context.Context, id uuid.UUID) error {
	if p, ok := c.api.Session().Principal(); ok && p.Role != "admin" {
		return ErrAdminOnly
	}
	return mapError(c.Delete(ctx, id.String()))
}

// Names resolves IDs to names from the loaded entries, skipping unknown IDs.
func (c *Collection[T]) Names(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if item, ok := c.Find(id.String()); ok {
			out = append(out, c.name(item))
		}
	}
	return out
}

func (c *Collection[T]) checkAdmin(req EntryRequest) error {
	if p, ok := c.api.Session().Principal(); ok && p.Role != "admin" {
		return ErrAdminOnly
	}
	return validator.Check(req)
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apiclient.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrEntryNotFound, err)
	case errors.Is(err, apiclient.ErrConflict):
		return fmt.Errorf("%w: %w", ErrDuplicateName, err)
	case errors.Is(err, apiclient.ErrForbidden):
		return fmt.Errorf("%w: %w", ErrAdminOnly, err)
	}
	return err
}
