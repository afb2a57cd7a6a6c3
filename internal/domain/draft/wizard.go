package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/homestay/homestay-client/internal/domain/listing"
	"github.com/homestay/homestay-client/internal/pkg/geocode"
	"github.com/homestay/homestay-client/internal/pkg/imaging"
	"github.com/homestay/homestay-client/internal/pkg/localstore"
	"github.com/homestay/homestay-client/internal/pkg/logger"
	"github.com/homestay/homestay-client/internal/pkg/media"
	"github.com/homestay/homestay-client/internal/pkg/validator"
)

// Publisher creates listings from submitted drafts.
type Publisher interface {
	CreateHome(ctx context.Context, req listing.HomeRequest) (*listing.HomeListing, error)
	CreateExperience(ctx context.Context, req listing.ExperienceRequest) (*listing.ExperienceListing, error)
}

// Geocoder resolves coordinates to an address.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (*geocode.Address, error)
}

// Deps are the collaborators of a wizard.
type Deps struct {
	Store     localstore.Store
	Publisher Publisher
	Uploader  media.Uploader
	Processor *imaging.Processor
	Geocoder  Geocoder
	// UploadConcurrency caps parallel photo uploads (default 4).
	UploadConcurrency int
}

// Wizard walks one owner through creating a listing of one kind. Every
// change is persisted, so a wizard reopened later resumes where it was left.
type Wizard struct {
	deps  Deps
	steps []Step
	key   string
	log   zerolog.Logger
	now   func() time.Time

	mu  sync.Mutex
	rec Record
}

// Open loads the owner's draft of kind, or starts an empty one.
func Open(ctx context.Context, deps Deps, kind listing.Kind, owner uuid.UUID) (*Wizard, error) {
	steps, err := Steps(kind)
	if err != nil {
		return nil, err
	}
	if owner == uuid.Nil {
		return nil, ErrNoOwner
	}
	if deps.Processor == nil {
		deps.Processor = imaging.NewProcessor(imaging.DefaultConfig())
	}
	if deps.UploadConcurrency <= 0 {
		deps.UploadConcurrency = 4
	}

	w := &Wizard{
		deps:  deps,
		steps: steps,
		key:   Key(kind, owner),
		log:   logger.Component("draft").With().Str("kind", string(kind)).Str("owner_id", owner.String()).Logger(),
		now:   time.Now,
		rec:   newRecord(kind, owner),
	}

	var stored Record
	found, err := deps.Store.Load(ctx, w.key, &stored)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if found && stored.Kind == kind && stored.complete() {
		if stored.Step < 0 || stored.Step >= len(steps) {
			stored.Step = 0
		}
		w.rec = stored
		w.log.Debug().Str("step", steps[stored.Step].Name).Msg("Resumed draft")
	}
	return w, nil
}

// Kind returns the listing kind being drafted.
func (w *Wizard) Kind() listing.Kind { return w.rec.Kind }

// Steps returns the wizard's ordered steps.
func (w *Wizard) Steps() []Step { return w.steps }

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.steps[w.rec.Step]
}

// StepIndex returns the zero-based position of the current step.
func (w *Wizard) StepIndex() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rec.Step
}

// IsLast reports whether the current step is the final review step.
func (w *Wizard) IsLast() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rec.Step == len(w.steps)-1
}

// Record returns a copy of the draft state.
func (w *Wizard) Record() Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	raw, _ := json.Marshal(w.rec)
	var cp Record
	_ = json.Unmarshal(raw, &cp)
	return cp
}

// Apply merges patch, a JSON object, into the draft. Only fields owned by
// step may appear in it.
func (w *Wizard) Apply(ctx context.Context, step string, patch json.RawMessage) error {
	i := stepIndex(w.steps, step)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return fmt.Errorf("decode patch: %w", err)
	}
	var foreign []string
	for k := range fields {
		if !w.steps[i].patches(k) {
			foreign = append(foreign, k)
		}
	}
	if len(foreign) > 0 {
		return fmt.Errorf("%w %s: %s", ErrUnknownField, step, strings.Join(foreign, ", "))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	// decode onto a copy so a bad value leaves the draft untouched
	next := w.cloneBodyLocked()
	if err := json.Unmarshal(patch, next); err != nil {
		return fmt.Errorf("decode patch: %w", err)
	}
	w.setBodyLocked(next)
	return w.saveLocked(ctx)
}

// Next validates the current step and moves forward.
func (w *Wizard) Next(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.rec.Step == len(w.steps)-1 {
		return ErrLastStep
	}
	if err := w.checkStepLocked(w.rec.Step); err != nil {
		return err
	}
	w.rec.Step++
	return w.saveLocked(ctx)
}

// Back moves to the previous step without validating.
func (w *Wizard) Back(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.rec.Step == 0 {
		return ErrFirstStep
	}
	w.rec.Step--
	return w.saveLocked(ctx)
}

// Goto jumps to a named step. Jumping forward requires every step before the
// target to be valid.
func (w *Wizard) Goto(ctx context.Context, step string) error {
	i := stepIndex(w.steps, step)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for s := w.rec.Step; s < i; s++ {
		if err := w.checkStepLocked(s); err != nil {
			w.rec.Step = s
			if serr := w.saveLocked(ctx); serr != nil {
				return serr
			}
			return err
		}
	}
	w.rec.Step = i
	return w.saveLocked(ctx)
}

// Locate fills the draft location from a map pin.
func (w *Wizard) Locate(ctx context.Context, lat, lon float64) (listing.LocationInput, error) {
	if w.deps.Geocoder == nil {
		return listing.LocationInput{}, ErrNoGeocoder
	}
	addr, err := w.deps.Geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		return listing.LocationInput{}, fmt.Errorf("locate: %w", err)
	}

	loc := listing.LocationInput{
		Address:     strings.TrimSpace(strings.Join([]string{addr.HouseNumber, addr.Road}, " ")),
		City:        addr.City,
		Country:     addr.Country,
		CountryCode: addr.CountryCode,
		Lat:         lat,
		Lon:         lon,
	}
	if loc.Address == "" {
		loc.Address = addr.DisplayName
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.rec.Kind == listing.KindExperience {
		w.rec.Experience.Location = loc
	} else {
		w.rec.Home.Location = loc
	}
	return loc, w.saveLocked(ctx)
}

// AddPhoto attaches an image, stored inline as a data URL.
func (w *Wizard) AddPhoto(ctx context.Context, name string, data []byte) error {
	if int64(len(data)) > imaging.MaxFileSize {
		return ErrPhotoTooLarge
	}
	if !strings.HasPrefix(media.DetectMIME(data), "image/") {
		return ErrNotAnImage
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	photos := w.rec.photoList()
	*photos = append(*photos, Photo{
		Name:    name,
		DataURL: media.EncodeDataURL(data),
		IsCover: len(*photos) == 0,
	})
	return w.saveLocked(ctx)
}

// RemovePhoto drops the photo at index i. Removing the cover promotes the
// next photo.
func (w *Wizard) RemovePhoto(ctx context.Context, i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	photos := w.rec.photoList()
	if i < 0 || i >= len(*photos) {
		return ErrNoPhoto
	}
	wasCover := (*photos)[i].IsCover
	*photos = append((*photos)[:i:i], (*photos)[i+1:]...)
	if wasCover && len(*photos) > 0 {
		(*photos)[0].IsCover = true
	}
	return w.saveLocked(ctx)
}

// SetCover makes the photo at index i the cover.
func (w *Wizard) SetCover(ctx context.Context, i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	photos := *w.rec.photoList()
	if i < 0 || i >= len(photos) {
		return ErrNoPhoto
	}
	for j := range photos {
		photos[j].IsCover = j == i
	}
	return w.saveLocked(ctx)
}

// Validate checks the whole draft.
func (w *Wizard) Validate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return validator.Check(w.rec.body())
}

// Discard deletes the persisted draft and starts over.
func (w *Wizard) Discard(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.deps.Store.Delete(ctx, w.key); err != nil {
		return fmt.Errorf("discard draft: %w", err)
	}
	w.rec = newRecord(w.rec.Kind, w.rec.OwnerID)
	w.log.Info().Msg("Draft discarded")
	return nil
}

// checkStepLocked validates the draft and keeps only the errors of step i.
func (w *Wizard) checkStepLocked(i int) error {
	all := validator.Validate(w.rec.body())
	own := make(map[string]string)
	for field, msg := range all {
		if w.steps[i].owns(field) {
			own[field] = msg
		}
	}
	if len(own) > 0 {
		return &validator.Error{Fields: own}
	}
	return nil
}

func (w *Wizard) saveLocked(ctx context.Context) error {
	w.rec.UpdatedAt = w.now().UTC()
	if err := w.deps.Store.Save(ctx, w.key, w.rec); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (w *Wizard) cloneBodyLocked() any {
	raw, _ := json.Marshal(w.rec.body())
	if w.rec.Kind == listing.KindExperience {
		cp := &ExperienceDraft{}
		_ = json.Unmarshal(raw, cp)
		return cp
	}
	cp := &HomeDraft{}
	_ = json.Unmarshal(raw, cp)
	return cp
}

func (w *Wizard) setBodyLocked(body any) {
	switch b := body.(type) {
	case *HomeDraft:
		w.rec.Home = b
	case *ExperienceDraft:
		w.rec.Experience = b
	}
}
