package listing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/homestay/homestay-client/internal/pkg/apiclient"
	"github.com/homestay/homestay-client/internal/pkg/response"
	"github.com/homestay/homestay-client/internal/pkg/session"
	"github.com/homestay/homestay-client/internal/pkg/validator"
)

type fakeHomesAPI struct {
	mu        sync.Mutex
	homes     map[uuid.UUID]HomeListing
	lastQuery map[string]string
	hostID    uuid.UUID
}

func newFakeHomesAPI(hostID uuid.UUID, seed ...HomeListing) *fakeHomesAPI {
	f := &fakeHomesAPI{homes: map[uuid.UUID]HomeListing{}, hostID: hostID}
	for _, h := range seed {
		f.homes[h.ID] = h
	}
	return f
}

func (f *fakeHomesAPI) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/homes", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.lastQuery = map[string]string{}
		for k := range req.URL.Query() {
			f.lastQuery[k] = req.URL.Query().Get(k)
		}
		items := make([]HomeListing, 0, len(f.homes))
		for _, h := range f.homes {
			items = append(items, h)
		}
		response.WithMeta(w, items, response.Meta{Total: len(items), Page: 1, Limit: 20, Pages: 1})
	})
	r.Get("/homes/mine", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var items []HomeListing
		for _, h := range f.homes {
			if h.HostID == f.hostID {
				items = append(items, h)
			}
		}
		response.WithMeta(w, items, response.Meta{Total: len(items), Page: 1, Limit: 20, Pages: 1})
	})
	r.Post("/homes", func(w http.ResponseWriter, req *http.Request) {
		var in HomeRequest
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			response.Error(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
			return
		}
		h := fromRequest(uuid.New(), f.hostID, in)
		f.mu.Lock()
		f.homes[h.ID] = h
		f.mu.Unlock()
		response.Created(w, h)
	})
	r.Get("/homes/{id}", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		h, ok := f.homes[uuid.MustParse(chi.URLParam(req, "id"))]
		if !ok {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "home not found")
			return
		}
		response.OK(w, h)
	})
	r.Put("/homes/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := uuid.MustParse(chi.URLParam(req, "id"))
		var in HomeRequest
		_ = json.NewDecoder(req.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.homes[id]; !ok {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "home not found")
			return
		}
		h := fromRequest(id, f.hostID, in)
		f.homes[id] = h
		response.OK(w, h)
	})
	r.Delete("/homes/{id}", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.homes, uuid.MustParse(chi.URLParam(req, "id")))
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func fromRequest(id, hostID uuid.UUID, in HomeRequest) HomeListing {
	h := HomeListing{
		ID: id, HostID: hostID, Title: in.Title, Description: in.Description,
		PropertyTypeID: in.PropertyTypeID, PricePerNight: in.PricePerNight,
		Currency: in.Currency, MaxGuests: in.MaxGuests, Status: StatusPublished,
	}
	for i, img := range in.Images {
		h.Images = append(h.Images, Image{URL: img.URL, Position: i, IsCover: img.IsCover})
	}
	return h
}

func newTestService(t *testing.T, f *fakeHomesAPI, role string) *Service {
	t.Helper()
	server := httptest.NewServer(f.routes())
	t.Cleanup(server.Close)
	sess := session.New()
	sess.SetTokens("token", "")
	sess.SetPrincipal(session.Principal{UserID: f.hostID, Email: "host@example.com", Role: role})
	return NewService(apiclient.New(apiclient.Options{BaseURL: server.URL}, sess))
}

func validHome() HomeRequest {
	return HomeRequest{
		Title:          "Cabin by the lake",
		Description:    "Quiet wooden cabin with a private pier and sauna.",
		PropertyTypeID: uuid.New(),
		Location:       LocationInput{Address: "1 Shore Rd", City: "Almaty", Country: "Kazakhstan", Lat: 43.2, Lon: 76.9},
		PricePerNight:  80,
		Currency:       "USD",
		MaxGuests:      4,
		Bedrooms:       2,
		Beds:           3,
		Bathrooms:      1,
		Images:         []ImageInput{{URL: "https://cdn.example/a.jpg", IsCover: true}},
	}
}

func TestSearchHomesSendsFilter(t *testing.T) {
	hostID := uuid.New()
	f := newFakeHomesAPI(hostID, HomeListing{ID: uuid.New(), HostID: uuid.New(), Title: "Loft"})
	s := newTestService(t, f, "guest")

	checkIn := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	snap, err := s.SearchHomes(context.Background(), HomeFilter{
		Location: " Almaty ", Guests: 2, MinPrice: 50, MaxPrice: 120,
		CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, 3),
	})
	if err != nil || len(snap.Items) != 1 {
		t.Fatalf("search: %+v %v", snap, err)
	}

	f.mu.Lock()
	q := f.lastQuery
	f.mu.Unlock()
	want := map[string]string{
		"location": "Almaty", "guests": "2", "min_price": "50", "max_price": "120",
		"check_in": "2026-07-01", "check_out": "2026-07-04", "page": "1", "limit": "20",
	}
	for k, v := range want {
		if q[k] != v {
			t.Errorf("query %s = %q, want %q", k, q[k], v)
		}
	}
	if _, ok := q["property_type_id"]; ok {
		t.Error("unset filter must not be sent")
	}
}

func TestSearchHomesRejectsBadFilter(t *testing.T) {
	f := newFakeHomesAPI(uuid.New())
	s := newTestService(t, f, "guest")
	ctx := context.Background()

	if _, err := s.SearchHomes(ctx, HomeFilter{MinPrice: 100, MaxPrice: 50}); !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter for inverted price range, got %v", err)
	}
	day := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	if _, err := s.SearchHomes(ctx, HomeFilter{CheckIn: day, CheckOut: day}); !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter for empty stay, got %v", err)
	}
}

func TestHostLifecycle(t *testing.T) {
	hostID := uuid.New()
	f := newFakeHomesAPI(hostID)
	s := newTestService(t, f, "host")
	ctx := context.Background()

	if _, err := s.ListMyHomes(ctx, 1); err != nil {
		t.Fatalf("list mine: %v", err)
	}

	bad := validHome()
	bad.Images = nil
	var verr *validator.Error
	if _, err := s.CreateHome(ctx, bad); !errors.As(err, &verr) || verr.Fields["images"] == "" {
		t.Fatalf("expected images required, got %v", err)
	}

	h, err := s.CreateHome(ctx, validHome())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if h.Cover() != "https://cdn.example/a.jpg" {
		t.Fatalf("unexpected cover %q", h.Cover())
	}
	if snap := s.MyHomes.Snapshot(); len(snap.Items) != 1 || snap.Items[0].ID != h.ID {
		t.Fatalf("expected created home in MyHomes, got %+v", snap.Items)
	}

	if _, err := s.SearchHomes(ctx, HomeFilter{}); err != nil {
		t.Fatalf("search: %v", err)
	}
	upd := validHome()
	upd.Title = "Cabin by the frozen lake"
	if _, err := s.UpdateHome(ctx, h.ID, upd); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got, _ := s.Homes.Find(h.ID.String()); got.Title != upd.Title {
		t.Fatalf("expected search results patched, got %q", got.Title)
	}

	if err := s.DeleteHome(ctx, h.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.Homes.Find(h.ID.String()); ok {
		t.Fatal("expected home removed from search results")
	}
	if _, err := s.GetHome(ctx, h.ID); !errors.Is(err, ErrListingNotFound) || !errors.Is(err, apiclient.ErrNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}

func TestGuestCannotCreate(t *testing.T) {
	f := newFakeHomesAPI(uuid.New())
	s := newTestService(t, f, "guest")
	if _, err := s.CreateHome(context.Background(), validHome()); !errors.Is(err, ErrNotHost) {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}
}

func TestUpcomingSessions(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	e := ExperienceListing{Sessions: []Session{
		{StartsAt: now.Add(-time.Hour), Capacity: 5},
		{StartsAt: now.Add(time.Hour), Capacity: 5, Booked: 5},
		{StartsAt: now.Add(2 * time.Hour), Capacity: 5, Booked: 2},
	}}
	got := e.UpcomingSessions(now)
	if len(got) != 1 || got[0].Available() != 3 {
		t.Fatalf("unexpected sessions %+v", got)
	}
}
