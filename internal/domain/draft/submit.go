package draft

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/homestay/homestay-client/internal/domain/listing"
	"github.com/homestay/homestay-client/internal/pkg/media"
	"github.com/homestay/homestay-client/internal/pkg/validator"
)

// Submit validates the draft, uploads its photos, creates the listing and
// clears the draft. On any failure the draft is kept as it was.
func (w *Wizard) Submit(ctx context.Context) (uuid.UUID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := validator.Check(w.rec.body()); err != nil {
		return uuid.Nil, err
	}

	images, err := w.uploadPhotosLocked(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	switch w.rec.Kind {
	case listing.KindHome:
		h, err := w.deps.Publisher.CreateHome(ctx, w.rec.Home.request(images))
		if err != nil {
			return uuid.Nil, fmt.Errorf("create listing: %w", err)
		}
		id = h.ID
	case listing.KindExperience:
		e, err := w.deps.Publisher.CreateExperience(ctx, w.rec.Experience.request(images))
		if err != nil {
			return uuid.Nil, fmt.Errorf("create listing: %w", err)
		}
		id = e.ID
	default:
		return uuid.Nil, ErrUnknownKind
	}

	if err := w.deps.Store.Delete(ctx, w.key); err != nil {
		w.log.Warn().Err(err).Msg("Failed to delete submitted draft")
	}
	w.rec = newRecord(w.rec.Kind, w.rec.OwnerID)
	w.log.Info().Str("listing_id", id.String()).Int("photos", len(images)).Msg("Draft submitted")
	return id, nil
}

// uploadPhotosLocked decodes, downscales and uploads every photo in parallel,
// keeping the draft order.
func (w *Wizard) uploadPhotosLocked(ctx context.Context) ([]listing.ImageInput, error) {
	photos := *w.rec.photoList()
	if len(photos) > 0 && w.deps.Uploader == nil {
		return nil, ErrNoUploader
	}
	images := make([]listing.ImageInput, len(photos))
	cover := -1

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.deps.UploadConcurrency)
	for i, p := range photos {
		if p.IsCover && cover < 0 {
			cover = i
		}
		g.Go(func() error {
			_, data, err := media.DecodeDataURL(p.DataURL)
			if err != nil {
				return fmt.Errorf("photo %d: %w", i+1, err)
			}
			prepared, err := w.deps.Processor.Process(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("photo %d: %w", i+1, err)
			}
			url, err := w.deps.Uploader.Upload(gctx, p.Name, prepared.Data, prepared.ContentType)
			if err != nil {
				return fmt.Errorf("photo %d: %w", i+1, err)
			}
			images[i] = listing.ImageInput{URL: url}
			w.log.Debug().Int("photo", i+1).Bool("resized", prepared.Resized).Msg("Photo uploaded")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("upload photos: %w", err)
	}

	if cover < 0 {
		cover = 0
	}
	if len(images) > 0 {
		images[cover].IsCover = true
	}
	return images, nil
}
