package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/homestay/homestay-client/internal/pkg/apiclient"
	"github.com/homestay/homestay-client/internal/pkg/state"
)

const basePath = "/notifications"

// Service holds the notification inbox and its unread counter.
type Service struct {
	api *apiclient.Client
	now func() time.Time

	// Notifications is the inbox, newest first.
	Notifications *state.Container[Notification]

	mu       sync.Mutex
	unread   int
	onUnread []func(int)
}

// NewService creates notification service
func NewService(api *apiclient.Client) *Service {
	return &Service{
		api:           api,
		now:           time.Now,
		Notifications: state.New[Notification](state.NewEndpoint[Notification](api, basePath), Key, state.DefaultLimit),
	}
}

// List loads one page of the inbox.
func (s *Service) List(ctx context.Context, page int) (state.Snapshot[Notification], error) {
	err := s.Notifications.Fetch(ctx, page)
	return s.Notifications.Snapshot(), err
}

// UnreadCount asks the server for the unread count and stores it.
func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	var resp UnreadCountResponse
	if err := s.api.Get(ctx, basePath+"/unread-count", nil, &resp); err != nil {
		return 0, err
	}
	s.setUnread(func(int) int { return resp.UnreadCount })
	return resp.UnreadCount, nil
}

// Unread returns the locally tracked unread count.
func (s *Service) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// OnUnread registers fn to run whenever the unread count changes.
func (s *Service) OnUnread(fn func(int)) {
	s.mu.Lock()
	s.onUnread = append(s.onUnread, fn)
	s.mu.Unlock()
}

// MarkRead marks one notification as read.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.api.Patch(ctx, basePath+"/"+id.String()+"/read", nil, nil); err != nil {
		return mapNotFound(err)
	}
	n, ok := s.Notifications.Find(id.String())
	if !ok || n.IsRead {
		return nil
	}
	now := s.now()
	n.IsRead, n.ReadAt = true, &now
	s.Notifications.Upsert(n)
	s.setUnread(func(c int) int { return c - 1 })
	return nil
}

// MarkAllRead marks every notification as read.
func (s *Service) MarkAllRead(ctx context.Context) error {
	if err := s.api.Post(ctx, basePath+"/read-all", nil, nil); err != nil {
		return err
	}
	now := s.now()
	for _, n := range s.Notifications.Snapshot().Items {
		if !n.IsRead {
			n.IsRead, n.ReadAt = true, &now
			s.Notifications.Upsert(n)
		}
	}
	s.setUnread(func(int) int { return 0 })
	return nil
}

// Delete removes a notification.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	n, known := s.Notifications.Find(id.String())
	if err := s.Notifications.Delete(ctx, id.String()); err != nil {
		return mapNotFound(err)
	}
	if known && !n.IsRead {
		s.setUnread(func(c int) int { return c - 1 })
	}
	return nil
}

// Receive adds a pushed notification to the inbox. A notification already
// present is replaced without touching the counter.
func (s *Service) Receive(n Notification) {
	_, known := s.Notifications.Find(Key(n))
	s.Notifications.Upsert(n)
	if !known && !n.IsRead {
		s.setUnread(func(c int) int { return c + 1 })
	}
}

func (s *Service) setUnread(update func(int) int) {
	s.mu.Lock()
	next := update(s.unread)
	if next < 0 {
		next = 0
	}
	changed := next != s.unread
	s.unread = next
	fns := append([]func(int){}, s.onUnread...)
	s.mu.Unlock()

	if changed {
		for _, fn := range fns {
			fn(next)
		}
	}
}

func mapNotFound(err error) error {
	if errors.Is(err, apiclient.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotificationNotFound, err)
	}
	return err
}
