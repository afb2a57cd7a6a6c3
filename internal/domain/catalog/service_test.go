package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/homestay/homestay-client/internal/pkg/apiclient"
	"github.com/homestay/homestay-client/internal/pkg/response"
	"github.com/homestay/homestay-client/internal/pkg/session"
)

// fakeCatalogAPI serves every catalog path from one in-memory map each.
type fakeCatalogAPI struct {
	mu      sync.Mutex
	entries map[string]map[uuid.UUID]Amenity
}

func newFakeCatalogAPI() *fakeCatalogAPI {
	return &fakeCatalogAPI{entries: map[string]map[uuid.UUID]Amenity{}}
}

func (f *fakeCatalogAPI) seed(path, name string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entries[path] == nil {
		f.entries[path] = map[uuid.UUID]Amenity{}
	}
	id := uuid.New()
	f.entries[path][id] = Amenity{Entry: Entry{ID: id, Name: name}}
	return id
}

func (f *fakeCatalogAPI) routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/{catalog}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			items := []Amenity{}
			for _, a := range f.entries[chi.URLParam(req, "catalog")] {
				items = append(items, a)
			}
			response.WithMeta(w, items, response.Meta{Total: len(items), Page: 1, Limit: catalogLimit, Pages: 1})
		})
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			var in EntryRequest
			_ = json.NewDecoder(req.Body).Decode(&in)
			path := chi.URLParam(req, "catalog")
			f.mu.Lock()
			defer f.mu.Unlock()
			for _, a := range f.entries[path] {
				if a.Name == in.Name {
					response.Error(w, http.StatusConflict, "DUPLICATE", "name taken")
					return
				}
			}
			if f.entries[path] == nil {
				f.entries[path] = map[uuid.UUID]Amenity{}
			}
			a := Amenity{Entry: Entry{ID: uuid.New(), Name: in.Name, Icon: in.Icon}, Category: in.Category}
			f.entries[path][a.ID] = a
			response.Created(w, a)
		})
		r.Put("/{id}", func(w http.ResponseWriter, req *http.Request) {
			var in EntryRequest
			_ = json.NewDecoder(req.Body).Decode(&in)
			path, id := chi.URLParam(req, "catalog"), uuid.MustParse(chi.URLParam(req, "id"))
			f.mu.Lock()
			defer f.mu.Unlock()
			a, ok := f.entries[path][id]
			if !ok {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "not found")
				return
			}
			a.Name = in.Name
			f.entries[path][id] = a
			response.OK(w, a)
		})
		r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.entries[chi.URLParam(req, "catalog")], uuid.MustParse(chi.URLParam(req, "id")))
			w.WriteHeader(http.StatusNoContent)
		})
	})
	return r
}

func newTestService(t *testing.T, f *fakeCatalogAPI, role string) *Service {
	t.Helper()
	server := httptest.NewServer(f.routes())
	t.Cleanup(server.Close)
	sess := session.New()
	sess.SetTokens("token", "")
	sess.SetPrincipal(session.Principal{UserID: uuid.New(), Role: role})
	return NewService(apiclient.New(apiclient.Options{BaseURL: server.URL}, sess))
}

func TestLoadAllAndNames(t *testing.T) {
	f := newFakeCatalogAPI()
	wifi := f.seed("amenities", "Wifi")
	kitchen := f.seed("amenities", "Kitchen")
	f.seed("property-types", "Cabin")
	f.seed("experience-categories", "Food")
	s := newTestService(t, f, "guest")

	if err := s.LoadAll(context.Background()); err != nil {
		t.Fatalf("load all: %v", err)
	}
	if n := len(s.PropertyTypes.Snapshot().Items); n != 1 {
		t.Fatalf("expected 1 property type, got %d", n)
	}
	if n := len(s.Interests.Snapshot().Items); n != 0 {
		t.Fatalf("expected no interests, got %d", n)
	}
	names := s.Amenities.Names([]uuid.UUID{kitchen, uuid.New(), wifi})
	if len(names) != 2 || names[0] != "Kitchen" || names[1] != "Wifi" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestAdminEdits(t *testing.T) {
	f := newFakeCatalogAPI()
	f.seed("interests", "Hiking")
	s := newTestService(t, f, "admin")
	ctx := context.Background()

	if _, err := s.Interests.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := s.Interests.Add(ctx, EntryRequest{Name: "Hiking"}); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if _, err := s.Interests.Add(ctx, EntryRequest{Name: "x"}); err == nil {
		t.Fatal("expected short name rejected")
	}

	added, err := s.Interests.Add(ctx, EntryRequest{Name: "Cooking", Icon: "pan"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if items := s.Interests.Snapshot().Items; len(items) != 2 || items[0].ID != added.ID {
		t.Fatalf("expected new interest first, got %+v", items)
	}

	if _, err := s.Interests.Edit(ctx, added.ID, EntryRequest{Name: "Home cooking"}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if got, _ := s.Interests.Find(added.ID.String()); got.Name != "Home cooking" {
		t.Fatalf("expected renamed entry, got %q", got.Name)
	}
	if _, err := s.Interests.Edit(ctx, uuid.New(), EntryRequest{Name: "Ghost"}); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}

	if err := s.Interests.Drop(ctx, added.ID); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, ok := s.Interests.Find(added.ID.String()); ok {
		t.Fatal("expected entry removed")
	}
}

func TestNonAdminCannotEdit(t *testing.T) {
	s := newTestService(t, newFakeCatalogAPI(), "host")
	if _, err := s.Amenities.Add(context.Background(), EntryRequest{Name: "Sauna"}); !errors.Is(err, ErrAdminOnly) {
		t.Fatalf("expected ErrAdminOnly, got %v", err)
	}
	if err := s.Amenities.Drop(context.Background(), uuid.New()); !errors.Is(err, ErrAdminOnly) {
		t.Fatalf("expected ErrAdminOnly, got %v", err)
	}
}
