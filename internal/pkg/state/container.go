// Package state holds client-side collections of server records: the fetched
// page, pagination cursor, loading flag and last error, kept in step with
// create/update/delete calls.
package state

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/homestay/homestay-client/internal/pkg/response"
)

const DefaultLimit = 20

// ErrNotLoaded is returned by FetchNext before any page was fetched.
var ErrNotLoaded = errors.New("container has no page loaded")

// Resource is the remote collection a Container mirrors.
type Resource[T any] interface {
	List(ctx context.Context, page, limit int, filter url.Values) ([]T, *response.Meta, error)
	Create(ctx context.Context, input any) (T, error)
	Update(ctx context.Context, id string, input any) (T, error)
	Delete(ctx context.Context, id string) error
}

// Snapshot is a point-in-time copy of a container.
type Snapshot[T any] struct {
	Items   []T
	Page    int
	Pages   int
	Limit   int
	Total   int
	HasNext bool
	Loading bool
	Err     error
}

// Container is safe for concurrent use.
type Container[T any] struct {
	res   Resource[T]
	key   func(T) string
	limit int

	mu        sync.RWMutex
	filter    url.Values
	snap      Snapshot[T]
	seq       uint64
	observers map[int]func(Snapshot[T])
	nextObs   int
}

// New creates an empty container. key extracts the record ID used to patch
// the list on update and delete.
func New[T any](res Resource[T], key func(T) string, limit int) *Container[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Container[T]{
		res:       res,
		key:       key,
		limit:     limit,
		snap:      Snapshot[T]{Limit: limit},
		observers: make(map[int]func(Snapshot[T])),
	}
}

// SetFilter replaces the query sent with every list call. It does not refetch.
func (c *Container[T]) SetFilter(filter url.Values) {
	c.mu.Lock()
	c.filter = cloneValues(filter)
	c.mu.Unlock()
}

// Fetch loads page (1-based) and replaces the items. When fetches overlap,
// only the most recent one is applied.
func (c *Container[T]) Fetch(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	return c.load(ctx, page, false)
}

// FetchNext appends the following page. It is a no-op when there is none.
func (c *Container[T]) FetchNext(ctx context.Context) error {
	c.mu.RLock()
	page, hasNext := c.snap.Page, c.snap.HasNext
	c.mu.RUnlock()

	if page == 0 {
		return ErrNotLoaded
	}
	if !hasNext {
		return nil
	}
	return c.load(ctx, page+1, true)
}

func (c *Container[T]) load(ctx context.Context, page int, appendItems bool) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	filter := cloneValues(c.filter)
	c.snap.Loading = true
	c.snap.Err = nil
	c.mu.Unlock()
	c.notify()

	items, meta, err := c.res.List(ctx, page, c.limit, filter)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		return err
	}
	c.snap.Loading = false
	if err != nil {
		c.snap.Err = err
		c.mu.Unlock()
		c.notify()
		return err
	}

	if appendItems {
		c.snap.Items = append(c.snap.Items, items...)
	} else {
		c.snap.Items = append([]T(nil), items...)
	}
	c.applyMeta(page, len(items), meta)
	c.mu.Unlock()
	c.notify()
	return nil
}

func (c *Container[T]) applyMeta(page, n int, meta *response.Meta) {
	if meta == nil {
		c.snap.Page = page
		c.snap.Pages = 1
		c.snap.Total = len(c.snap.Items)
		c.snap.HasNext = false
		return
	}
	c.snap.Page = meta.Page
	if c.snap.Page == 0 {
		c.snap.Page = page
	}
	if meta.Limit > 0 {
		c.snap.Limit = meta.Limit
	}
	c.snap.Total = meta.Total
	c.snap.Pages = meta.Pages
	c.snap.HasNext = meta.HasNext || (meta.Pages > 0 && c.snap.Page < meta.Pages && n > 0)
}

// Create calls the resource and prepends the created record.
func (c *Container[T]) Create(ctx context.Context, input any) (T, error) {
	item, err := c.res.Create(ctx, input)
	if err != nil {
		c.setErr(err)
		return item, err
	}
	c.mu.Lock()
	c.snap.Items = append([]T{item}, c.snap.Items...)
	c.snap.Total++
	c.snap.Err = nil
	c.mu.Unlock()
	c.notify()
	return item, nil
}

// Update calls the resource and replaces the record with the same ID.
func (c *Container[T]) Update(ctx context.Context, id string, input any) (T, error) {
	item, err := c.res.Update(ctx, id, input)
	if err != nil {
		c.setErr(err)
		return item, err
	}
	c.mu.Lock()
	if i := c.indexLocked(id); i >= 0 {
		c.snap.Items[i] = item
	}
	c.snap.Err = nil
	c.mu.Unlock()
	c.notify()
	return item, nil
}

// Delete calls the resource and removes the record with the same ID.
func (c *Container[T]) Delete(ctx context.Context, id string) error {
	if err := c.res.Delete(ctx, id); err != nil {
		c.setErr(err)
		return err
	}
	c.Remove(id)
	return nil
}

// Upsert patches a record into the list without a server call: it replaces the
// record with the same ID or prepends it.
func (c *Container[T]) Upsert(item T) {
	c.mu.Lock()
	if i := c.indexLocked(c.key(item)); i >= 0 {
		c.snap.Items[i] = item
	} else {
		c.snap.Items = append([]T{item}, c.snap.Items...)
		c.snap.Total++
	}
	c.mu.Unlock()
	c.notify()
}

// Remove drops the record with id locally.
func (c *Container[T]) Remove(id string) {
	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return
	}
	c.snap.Items = append(c.snap.Items[:i:i], c.snap.Items[i+1:]...)
	if c.snap.Total > 0 {
		c.snap.Total--
	}
	c.snap.Err = nil
	c.mu.Unlock()
	c.notify()
}

// Find returns the loaded record with id.
func (c *Container[T]) Find(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.snap.Items[i], true
	}
	var zero T
	return zero, false
}

// Reset forgets every loaded page.
func (c *Container[T]) Reset() {
	c.mu.Lock()
	c.seq++
	c.snap = Snapshot[T]{Limit: c.limit}
	c.mu.Unlock()
	c.notify()
}

// Snapshot returns a copy safe to read without locking.
func (c *Container[T]) Snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyLocked()
}

// OnChange registers fn to run after every state change. The returned func
// removes it.
func (c *Container[T]) OnChange(fn func(Snapshot[T])) func() {
	c.mu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

func (c *Container[T]) setErr(err error) {
	c.mu.Lock()
	c.snap.Err = err
	c.mu.Unlock()
	c.notify()
}

func (c *Container[T]) notify() {
	c.mu.RLock()
	if len(c.observers) == 0 {
		c.mu.RUnlock()
		return
	}
	snap := c.copyLocked()
	fns := make([]func(Snapshot[T]), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.mu.RUnlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (c *Container[T]) copyLocked() Snapshot[T] {
	s := c.snap
	s.Items = append([]T(nil), c.snap.Items...)
	return s
}

func (c *Container[T]) indexLocked(id string) int {
	for i, item := range c.snap.Items {
		if c.key(item) == id {
			return i
		}
	}
	return -1
}

func cloneValues(v url.Values) url.Values {
	if v == nil {
		return nil
	}
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
