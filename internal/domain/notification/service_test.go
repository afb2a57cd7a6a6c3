package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/homestay/homestay-client/internal/pkg/apiclient"
	"github.com/homestay/homestay-client/internal/pkg/realtime"
	"github.com/homestay/homestay-client/internal/pkg/realtime/realtimetest"
	"github.com/homestay/homestay-client/internal/pkg/response"
	"github.com/homestay/homestay-client/internal/pkg/session"
)

type fakeInbox struct {
	items       []Notification
	unread      int32
	readAllHits int32
}

func (f *fakeInbox) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/notifications", func(w http.ResponseWriter, req *http.Request) {
		response.WithMeta(w, f.items, response.Meta{Total: len(f.items), Page: 1, Limit: 20, Pages: 1})
	})
	r.Get("/notifications/unread-count", func(w http.ResponseWriter, req *http.Request) {
		response.OK(w, UnreadCountResponse{UnreadCount: int(atomic.LoadInt32(&f.unread))})
	})
	r.Patch("/notifications/{id}/read", func(w http.ResponseWriter, req *http.Request) {
		for _, n := range f.items {
			if n.ID.String() == chi.URLParam(req, "id") {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "notification not found")
	})
	r.Post("/notifications/read-all", func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&f.readAllHits, 1)
		w.WriteHeader(http.StatusNoContent)
	})
	r.Delete("/notifications/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func newTestService(t *testing.T, f *fakeInbox) (*Service, *session.Session) {
	t.Helper()
	server := httptest.NewServer(f.routes())
	t.Cleanup(server.Close)
	sess := session.New()
	sess.SetTokens("token", "")
	return NewService(apiclient.New(apiclient.Options{BaseURL: server.URL}, sess)), sess
}

func TestInboxOperations(t *testing.T) {
	unread := Notification{ID: uuid.New(), Type: TypeBookingRequested, Title: "New booking request"}
	read := Notification{ID: uuid.New(), Type: TypeReviewPosted, Title: "New review", IsRead: true}
	other := Notification{ID: uuid.New(), Type: TypePaymentReceived, Title: "Payment received"}
	f := &fakeInbox{items: []Notification{unread, read, other}, unread: 2}
	s, _ := newTestService(t, f)
	ctx := context.Background()

	var seen []int
	s.OnUnread(func(n int) { seen = append(seen, n) })

	if snap, err := s.List(ctx, 1); err != nil || len(snap.Items) != 3 {
		t.Fatalf("list: %+v %v", snap, err)
	}
	if n, err := s.UnreadCount(ctx); err != nil || n != 2 {
		t.Fatalf("unread count: %d %v", n, err)
	}

	if err := s.MarkRead(ctx, unread.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if got, _ := s.Notifications.Find(unread.ID.String()); !got.IsRead || got.ReadAt == nil {
		t.Fatalf("expected read notification, got %+v", got)
	}
	if s.Unread() != 1 {
		t.Fatalf("expected 1 unread, got %d", s.Unread())
	}
	// marking an already read one changes nothing locally
	if err := s.MarkRead(ctx, read.ID); err != nil || s.Unread() != 1 {
		t.Fatalf("mark read twice: %v unread=%d", err, s.Unread())
	}
	if err := s.MarkRead(ctx, uuid.New()); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}

	if err := s.Delete(ctx, other.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.Unread() != 0 || len(s.Notifications.Snapshot().Items) != 2 {
		t.Fatalf("expected unread deleted, unread=%d", s.Unread())
	}

	s.Receive(Notification{ID: uuid.New(), Title: "pushed"})
	if err := s.MarkAllRead(ctx); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	for _, n := range s.Notifications.Snapshot().Items {
		if !n.IsRead {
			t.Fatalf("expected every notification read, got %+v", n)
		}
	}

	want := []int{2, 1, 0, 1, 0}
	if len(seen) != len(want) {
		t.Fatalf("unread changes = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("unread changes = %v, want %v", seen, want)
		}
	}
}

func TestListenerPushesIntoInbox(t *testing.T) {
	f := &fakeInbox{unread: 3}
	s, sess := newTestService(t, f)
	me := uuid.New()
	sess.SetPrincipal(session.Principal{UserID: me, Role: "host"})

	broker := realtimetest.NewBroker(t)
	bridge := realtime.NewBridge(realtime.Options{URL: broker.URL()}, sess.AccessToken)
	t.Cleanup(bridge.Disconnect)

	l := NewListener(s, bridge, sess)
	got := make(chan Notification, 4)
	l.OnNotification(func(n Notification) { got <- n })

	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := l.Start(context.Background()); !errors.Is(err, ErrListenerRunning) {
		t.Fatalf("expected ErrListenerRunning, got %v", err)
	}
	if s.Unread() != 3 {
		t.Fatalf("expected unread count loaded on connect, got %d", s.Unread())
	}
	broker.WaitSubscribed(t, Topic(me))
	if tokens := broker.Tokens(); len(tokens) != 1 || tokens[0] != "token" {
		t.Fatalf("unexpected CONNECT tokens %v", tokens)
	}

	pushed := Notification{ID: uuid.New(), RecipientID: me, Type: TypeBookingConfirmed, Title: "Booking confirmed"}
	body, _ := json.Marshal(pushed)
	broker.Push(t, Topic(me), "not json")
	broker.Push(t, Topic(me), string(body))
	// same notification again: stored once, counted once
	broker.Push(t, Topic(me), string(body))

	for i := 0; i < 2; i++ {
		select {
		case n := <-got:
			if n.ID != pushed.ID {
				t.Fatalf("unexpected notification %+v", n)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for pushed notification")
		}
	}
	if items := s.Notifications.Snapshot().Items; len(items) != 1 || items[0].ID != pushed.ID {
		t.Fatalf("expected pushed notification in inbox, got %+v", items)
	}
	if s.Unread() != 4 {
		t.Fatalf("expected unread raised to 4, got %d", s.Unread())
	}
}

func TestListenerRestartsAfterSignOut(t *testing.T) {
	f := &fakeInbox{unread: 1}
	s, sess := newTestService(t, f)
	sess.SetPrincipal(session.Principal{UserID: uuid.New(), Role: "guest"})

	broker := realtimetest.NewBroker(t)
	bridge := realtime.NewBridge(realtime.Options{URL: broker.URL()}, sess.AccessToken)
	t.Cleanup(bridge.Disconnect)
	l := NewListener(s, bridge, sess)
	sess.OnClear(bridge.Disconnect)

	got := make(chan Notification, 1)
	l.OnNotification(func(n Notification) { got <- n })

	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	sess.Clear()

	next := uuid.New()
	sess.SetTokens("token-2", "refresh-2")
	sess.SetPrincipal(session.Principal{UserID: next, Role: "host"})
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("start after sign-in: %v", err)
	}
	broker.WaitSubscribed(t, Topic(next))

	pushed := Notification{ID: uuid.New(), RecipientID: next, Type: TypeBookingRequested, Title: "New booking request"}
	body, _ := json.Marshal(pushed)
	broker.Push(t, Topic(next), string(body))

	select {
	case n := <-got:
		if n.ID != pushed.ID {
			t.Fatalf("unexpected notification %+v", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for pushed notification")
	}
}

func TestListenerNeedsRecipient(t *testing.T) {
	s, _ := newTestService(t, &fakeInbox{})
	bridge := realtime.NewBridge(realtime.Options{URL: "ws://127.0.0.1:1/ws"}, nil)
	l := NewListener(s, bridge, session.New())
	if err := l.Start(context.Background()); !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("expected ErrNoRecipient, got %v", err)
	}
}
