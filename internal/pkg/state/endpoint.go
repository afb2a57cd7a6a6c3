package state

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/homestay/homestay-client/internal/pkg/apiclient"
	"github.com/homestay/homestay-client/internal/pkg/response"
)

// Endpoint is a REST collection at Path: list and create on Path, get,
// update and delete on Path/{id}.
type Endpoint[T any] struct {
	api      *apiclient.Client
	path     string
	listPath string
}

func NewEndpoint[T any](api *apiclient.Client, path string) *Endpoint[T] {
	path = "/" + strings.Trim(path, "/")
	return &Endpoint[T]{api: api, path: path, listPath: path}
}

// WithListPath returns a copy that lists from another path, such as the
// caller's own records, while keeping item routes on the collection.
func (e *Endpoint[T]) WithListPath(p string) *Endpoint[T] {
	cp := *e
	cp.listPath = "/" + strings.Trim(p, "/")
	return &cp
}

func (e *Endpoint[T]) Path() string { return e.path }

func (e *Endpoint[T]) List(ctx context.Context, page, limit int, filter url.Values) ([]T, *response.Meta, error) {
	q := cloneValues(filter)
	if q == nil {
		q = url.Values{}
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var items []T
	meta, err := e.api.GetPage(ctx, e.listPath, q, &items)
	if err != nil {
		return nil, nil, err
	}
	return items, meta, nil
}

func (e *Endpoint[T]) Get(ctx context.Context, id string) (T, error) {
	var item T
	err := e.api.Get(ctx, e.itemPath(id), nil, &item)
	return item, err
}

func (e *Endpoint[T]) Create(ctx context.Context, input any) (T, error) {
	var item T
	err := e.api.Post(ctx, e.path, input, &item)
	return item, err
}

func (e *Endpoint[T]) Update(ctx context.Context, id string, input any) (T, error) {
	var item T
	err := e.api.Put(ctx, e.itemPath(id), input, &item)
	return item, err
}

func (e *Endpoint[T]) Delete(ctx context.Context, id string) error {
	return e.api.Delete(ctx, e.itemPath(id))
}

func (e *Endpoint[T]) itemPath(id string) string {
	return e.path + "/" + url.PathEscape(id)
}
