package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/homestay/homestay-client/internal/domain/listing"
	"github.com/homestay/homestay-client/internal/pkg/geocode"
	"github.com/homestay/homestay-client/internal/pkg/localstore"
	"github.com/homestay/homestay-client/internal/pkg/validator"
)

type fakeUploader struct {
	mu    sync.Mutex
	names []string
	fail  error
}

func (u *fakeUploader) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if u.fail != nil {
		return "", u.fail
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.names = append(u.names, name)
	return "https://cdn.test/" + name, nil
}

type fakePublisher struct {
	homes       []listing.HomeRequest
	experiences []listing.ExperienceRequest
	fail        error
}

func (p *fakePublisher) CreateHome(ctx context.Context, req listing.HomeRequest) (*listing.HomeListing, error) {
	if p.fail != nil {
		return nil, p.fail
	}
	p.homes = append(p.homes, req)
	return &listing.HomeListing{ID: uuid.New(), Title: req.Title}, nil
}

func (p *fakePublisher) CreateExperience(ctx context.Context, req listing.ExperienceRequest) (*listing.ExperienceListing, error) {
	if p.fail != nil {
		return nil, p.fail
	}
	p.experiences = append(p.experiences, req)
	return &listing.ExperienceListing{ID: uuid.New(), Title: req.Title}, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newFileStore(t *testing.T, dir string) localstore.Store {
	t.Helper()
	s, err := localstore.NewFileStore(dir)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	return s
}

func apply(t *testing.T, w *Wizard, step, patch string) {
	t.Helper()
	if err := w.Apply(context.Background(), step, json.RawMessage(patch)); err != nil {
		t.Fatalf("apply %s: %v", step, err)
	}
}

func fillHome(t *testing.T, w *Wizard) {
	t.Helper()
	apply(t, w, "basics", `{"title":"Cabin by the lake","description":"Quiet wooden cabin with a private pier.","property_type_id":"`+uuid.NewString()+`"}`)
	apply(t, w, "location", `{"location":{"address":"1 Shore Rd","city":"Almaty","country":"Kazakhstan","lat":43.2,"lon":76.9}}`)
	apply(t, w, "details", `{"max_guests":4,"bedrooms":2,"beds":3,"bathrooms":1}`)
	apply(t, w, "pricing", `{"price_per_night":80,"currency":"USD"}`)
}

func TestStepNavigation(t *testing.T) {
	ctx := context.Background()
	w, err := Open(ctx, Deps{Store: newFileStore(t, t.TempDir())}, listing.KindHome, uuid.New())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := w.Back(ctx); !errors.Is(err, ErrFirstStep) {
		t.Fatalf("expected ErrFirstStep, got %v", err)
	}

	var verr *validator.Error
	if err := w.Next(ctx); !errors.As(err, &verr) || verr.Fields["title"] == "" {
		t.Fatalf("expected basics rejected, got %v", err)
	}
	if _, ok := verr.Fields["price_per_night"]; ok {
		t.Fatal("next must only report the current step")
	}

	if err := w.Apply(ctx, "basics", json.RawMessage(`{"price_per_night":10}`)); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := w.Apply(ctx, "basics", json.RawMessage(`{"title":5}`)); err == nil {
		t.Fatal("expected type mismatch rejected")
	}
	if err := w.Apply(ctx, "nope", json.RawMessage(`{}`)); !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("expected ErrUnknownStep, got %v", err)
	}

	fillHome(t, w)
	if err := w.Next(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	if w.Step().Name != "location" {
		t.Fatalf("expected location step, got %s", w.Step().Name)
	}

	// photos are still missing, so a jump to review stops there
	if err := w.Goto(ctx, "review"); !errors.As(err, &verr) || verr.Fields["photos"] == "" {
		t.Fatalf("expected photos step to block, got %v", err)
	}
	if w.Step().Name != "photos" {
		t.Fatalf("expected wizard parked on photos, got %s", w.Step().Name)
	}
	if err := w.Goto(ctx, "basics"); err != nil || w.StepIndex() != 0 {
		t.Fatalf("goto back: %v step=%d", err, w.StepIndex())
	}

	if err := w.AddPhoto(ctx, "lake.png", pngBytes(t, 8, 8)); err != nil {
		t.Fatalf("add photo: %v", err)
	}
	if err := w.Goto(ctx, "review"); err != nil || !w.IsLast() {
		t.Fatalf("goto review: %v last=%v", err, w.IsLast())
	}
	if err := w.Next(ctx); !errors.Is(err, ErrLastStep) {
		t.Fatalf("expected ErrLastStep, got %v", err)
	}
}

func TestStepOwnsElementErrors(t *testing.T) {
	ctx := context.Background()
	w, err := Open(ctx, Deps{Store: newFileStore(t, t.TempDir())}, listing.KindExperience, uuid.New())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	apply(t, w, "basics", `{"title":"Sunrise hike","description":"Guided walk up to the ridge before dawn.","category_id":"`+uuid.NewString()+`"}`)
	apply(t, w, "location", `{"location":{"address":"1 Trail Rd","city":"Almaty","country":"Kazakhstan","lat":43.1,"lon":77.0}}`)
	apply(t, w, "details", `{"duration_minutes":180,"max_participants":8,"languages":["not a tag!!"]}`)
	if err := w.Goto(ctx, "details"); err != nil {
		t.Fatalf("goto details: %v", err)
	}

	var verr *validator.Error
	if err := w.Next(ctx); !errors.As(err, &verr) || verr.Fields["languages[0]"] == "" {
		t.Fatalf("expected invalid language rejected, got %v", err)
	}
	if w.Step().Name != "details" {
		t.Fatalf("expected wizard to stay on details, got %s", w.Step().Name)
	}

	apply(t, w, "details", `{"languages":["en","kk"]}`)
	if err := w.Next(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	if w.Step().Name != "schedule" {
		t.Fatalf("expected schedule step, got %s", w.Step().Name)
	}
}

func TestDraftSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	owner := uuid.New()

	w, err := Open(ctx, Deps{Store: newFileStore(t, dir)}, listing.KindHome, owner)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	fillHome(t, w)
	if err := w.AddPhoto(ctx, "a.png", pngBytes(t, 4, 4)); err != nil {
		t.Fatalf("add photo: %v", err)
	}
	if err := w.Next(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}

	reopened, err := Open(ctx, Deps{Store: newFileStore(t, dir)}, listing.KindHome, owner)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	rec := reopened.Record()
	if reopened.StepIndex() != 1 || rec.Home.Title != "Cabin by the lake" || rec.Home.Location.City != "Almaty" {
		t.Fatalf("draft not restored: step=%d %+v", reopened.StepIndex(), rec.Home)
	}
	if len(rec.Home.Photos) != 1 || !rec.Home.Photos[0].IsCover {
		t.Fatalf("photo not restored: %+v", rec.Home.Photos)
	}

	// other owners and kinds do not see it
	other, err := Open(ctx, Deps{Store: newFileStore(t, dir)}, listing.KindExperience, owner)
	if err != nil || other.Record().Experience.Title != "" {
		t.Fatalf("expected empty experience draft, got %+v %v", other.Record(), err)
	}
}

func TestRedisBackedDraft(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()
	owner := uuid.New()

	w, err := Open(ctx, Deps{Store: localstore.NewRedisStore(client, "homestay:", time.Hour)}, listing.KindExperience, owner)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	apply(t, w, "schedule", `{"sessions":[{"starts_at":"2026-06-01T10:00:00Z","ends_at":"2026-06-01T12:00:00Z","capacity":6}]}`)

	reopened, err := Open(ctx, Deps{Store: localstore.NewRedisStore(client, "homestay:", time.Hour)}, listing.KindExperience, owner)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if s := reopened.Record().Experience.Sessions; len(s) != 1 || s[0].Capacity != 6 {
		t.Fatalf("sessions not restored: %+v", s)
	}
}

func TestPhotos(t *testing.T) {
	ctx := context.Background()
	w, err := Open(ctx, Deps{Store: newFileStore(t, t.TempDir())}, listing.KindHome, uuid.New())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := w.AddPhoto(ctx, "notes.txt", []byte("just text")); !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage, got %v", err)
	}
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		if err := w.AddPhoto(ctx, name, pngBytes(t, 4, 4)); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	if err := w.SetCover(ctx, 2); err != nil {
		t.Fatalf("set cover: %v", err)
	}
	if err := w.RemovePhoto(ctx, 2); err != nil {
		t.Fatalf("remove: %v", err)
	}
	photos := w.Record().Home.Photos
	if len(photos) != 2 || !photos[0].IsCover || photos[1].IsCover {
		t.Fatalf("expected cover promoted to first photo, got %+v", photos)
	}
	if err := w.RemovePhoto(ctx, 5); !errors.Is(err, ErrNoPhoto) {
		t.Fatalf("expected ErrNoPhoto, got %v", err)
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t, t.TempDir())
	owner := uuid.New()
	uploader := &fakeUploader{}
	publisher := &fakePublisher{}
	deps := Deps{Store: store, Publisher: publisher, Uploader: uploader}

	w, err := Open(ctx, deps, listing.KindHome, owner)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var verr *validator.Error
	if _, err := w.Submit(ctx); !errors.As(err, &verr) {
		t.Fatalf("expected incomplete draft rejected, got %v", err)
	}

	fillHome(t, w)
	for _, name := range []string{"front.png", "pier.png", "sauna.png"} {
		if err := w.AddPhoto(ctx, name, pngBytes(t, 16, 12)); err != nil {
			t.Fatalf("add photo: %v", err)
		}
	}
	if err := w.SetCover(ctx, 1); err != nil {
		t.Fatalf("set cover: %v", err)
	}

	publisher.fail = errors.New("api down")
	if _, err := w.Submit(ctx); err == nil {
		t.Fatal("expected publisher failure")
	}
	var kept Record
	if found, _ := store.Load(ctx, Key(listing.KindHome, owner), &kept); !found || kept.Home.Title == "" {
		t.Fatal("failed submit must keep the draft")
	}

	publisher.fail = nil
	id, err := w.Submit(ctx)
	if err != nil || id == uuid.Nil {
		t.Fatalf("submit: %v", err)
	}

	if len(publisher.homes) != 1 {
		t.Fatalf("expected one listing created, got %d", len(publisher.homes))
	}
	images := publisher.homes[0].Images
	if len(images) != 3 || images[0].URL != "https://cdn.test/front.png" || !images[1].IsCover || images[0].IsCover {
		t.Fatalf("unexpected images %+v", images)
	}
	uploader.mu.Lock()
	names := append([]string(nil), uploader.names...)
	uploader.mu.Unlock()
	sort.Strings(names)
	if len(names) != 6 || names[0] != "front.png" {
		t.Fatalf("unexpected uploads %v", names)
	}

	if found, _ := store.Load(ctx, Key(listing.KindHome, owner), &kept); found {
		t.Fatal("submitted draft must be cleared")
	}
	if w.StepIndex() != 0 || w.Record().Home.Title != "" {
		t.Fatal("wizard must restart after submit")
	}
}

func TestSubmitUploadFailureKeepsDraft(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(t, t.TempDir())
	owner := uuid.New()
	publisher := &fakePublisher{}
	w, err := Open(ctx, Deps{Store: store, Publisher: publisher, Uploader: &fakeUploader{fail: errors.New("quota")}}, listing.KindHome, owner)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	fillHome(t, w)
	if err := w.AddPhoto(ctx, "a.png", pngBytes(t, 4, 4)); err != nil {
		t.Fatalf("add photo: %v", err)
	}

	if _, err := w.Submit(ctx); err == nil {
		t.Fatal("expected upload failure")
	}
	if len(publisher.homes) != 0 {
		t.Fatal("listing must not be created when uploads fail")
	}
	if err := w.Discard(ctx); err != nil {
		t.Fatalf("discard: %v", err)
	}
	var rec Record
	if found, _ := store.Load(ctx, Key(listing.KindHome, owner), &rec); found {
		t.Fatal("discarded draft must be gone")
	}
}

type fakeGeocoder struct{}

func (fakeGeocoder) Reverse(_ context.Context, lat, lon float64) (*geocode.Address, error) {
	if lat > 90 {
		return nil, geocode.ErrInvalidCoordinates
	}
	return &geocode.Address{Road: "Abay Ave", HouseNumber: "12", City: "Almaty", Country: "Kazakhstan", CountryCode: "KZ", Lat: lat, Lon: lon}, nil
}

func TestLocate(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	owner := uuid.New()

	bare, err := Open(ctx, Deps{Store: newFileStore(t, dir)}, listing.KindHome, owner)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := bare.Locate(ctx, 43.2, 76.9); !errors.Is(err, ErrNoGeocoder) {
		t.Fatalf("expected ErrNoGeocoder, got %v", err)
	}

	w, err := Open(ctx, Deps{Store: newFileStore(t, dir), Geocoder: fakeGeocoder{}}, listing.KindHome, owner)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := w.Locate(ctx, 95, 0); !errors.Is(err, geocode.ErrInvalidCoordinates) {
		t.Fatalf("expected geocoder error, got %v", err)
	}
	loc, err := w.Locate(ctx, 43.2, 76.9)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if loc.Address != "12 Abay Ave" || loc.City != "Almaty" || loc.CountryCode != "KZ" {
		t.Fatalf("unexpected location %+v", loc)
	}

	reopened, err := Open(ctx, Deps{Store: newFileStore(t, dir)}, listing.KindHome, owner)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.Record().Home.Location; got.City != "Almaty" || got.Lat != 43.2 {
		t.Fatalf("location not persisted: %+v", got)
	}
}
