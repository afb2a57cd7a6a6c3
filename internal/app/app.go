// Package app wires configuration, the session, the API client and every
// domain service into one value the commands share.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/homestay/homestay-client/internal/config"
	"github.com/homestay/homestay-client/internal/domain/auth"
	"github.com/homestay/homestay-client/internal/domain/booking"
	"github.com/homestay/homestay-client/internal/domain/catalog"
	"github.com/homestay/homestay-client/internal/domain/dashboard"
	"github.com/homestay/homestay-client/internal/domain/draft"
	"github.com/homestay/homestay-client/internal/domain/favorite"
	"github.com/homestay/homestay-client/internal/domain/listing"
	"github.com/homestay/homestay-client/internal/domain/notification"
	"github.com/homestay/homestay-client/internal/domain/payment"
	"github.com/homestay/homestay-client/internal/domain/review"
	"github.com/homestay/homestay-client/internal/domain/user"
	"github.com/homestay/homestay-client/internal/pkg/apiclient"
	"github.com/homestay/homestay-client/internal/pkg/geocode"
	"github.com/homestay/homestay-client/internal/pkg/imaging"
	"github.com/homestay/homestay-client/internal/pkg/localstore"
	"github.com/homestay/homestay-client/internal/pkg/logger"
	"github.com/homestay/homestay-client/internal/pkg/media"
	"github.com/homestay/homestay-client/internal/pkg/realtime"
	"github.com/homestay/homestay-client/internal/pkg/session"
)

var ErrNotSignedIn = errors.New("not signed in")

// App is the wired client.
type App struct {
	Config  *config.Config
	Session *session.Session
	API     *apiclient.Client
	Bridge  *realtime.Bridge

	Auth          *auth.Service
	Users         *user.Service
	Listings      *listing.Service
	Bookings      *booking.Service
	Favorites     *favorite.Service
	Payments      *payment.Service
	Reviews       *review.Service
	Catalog       *catalog.Service
	Notifications *notification.Service
	Listener      *notification.Listener
	Dashboard     *dashboard.Service

	Geocoder  *geocode.Client
	Processor *imaging.Processor

	sessionStore localstore.Store
	sessionKey   string
	drafts       localstore.Store
	uploader     media.Uploader
	redis        *redis.Client
	log          zerolog.Logger
}

// New builds an App from cfg and restores the saved session, if any.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{
		Config:  cfg,
		Session: session.New(),
		log:     logger.Component("app"),
	}

	dir, key := splitSessionFile(cfg.SessionFile)
	store, err := localstore.NewFileStore(dir)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	a.sessionStore, a.sessionKey = store, key
	if ok, err := a.Session.Load(ctx, store, key); err != nil {
		a.log.Warn().Err(err).Msg("Failed to restore session")
	} else if ok {
		a.log.Debug().Msg("Session restored")
	}

	a.API = apiclient.New(apiclient.Options{
		BaseURL:           cfg.APIBaseURL,
		Timeout:           cfg.APITimeout,
		UserAgent:         cfg.UserAgent,
		RateLimitRPS:      cfg.APIRateLimitRPS,
		MaxRefreshRetries: cfg.MaxRefreshRetries,
	}, a.Session)

	a.Bridge = realtime.NewBridge(realtime.Options{
		URL:            cfg.WSURL,
		ReconnectDelay: cfg.WSReconnectDelay,
		HeartBeat:      cfg.WSHeartbeat,
	}, a.Session.AccessToken)

	a.Auth = auth.NewService(a.API)
	a.Users = user.NewService(a.API)
	a.Listings = listing.NewService(a.API)
	a.Bookings = booking.NewService(a.API)
	a.Favorites = favorite.NewService(a.API)
	a.Payments = payment.NewService(a.API)
	a.Reviews = review.NewService(a.API)
	a.Catalog = catalog.NewService(a.API)
	a.Notifications = notification.NewService(a.API)
	a.Listener = notification.NewListener(a.Notifications, a.Bridge, a.Session)
	a.Listener.SetTopicPrefix(cfg.NotificationPrefix)
	a.Dashboard = dashboard.NewService(a.API)

	a.Geocoder = geocode.New(cfg.GeocodeBaseURL, cfg.UserAgent, cfg.Language, float64(cfg.GeocodeRPS))
	a.Processor = imaging.NewProcessor(imaging.Config{MaxWidth: cfg.MediaMaxSide, MaxHeight: cfg.MediaMaxSide})

	// a cleared session (logout or failed refresh) drops the socket and the saved tokens
	a.Session.OnClear(a.Bridge.Disconnect)
	a.Session.OnClear(func() {
		if err := store.Delete(context.Background(), key); err != nil {
			a.log.Warn().Err(err).Msg("Failed to delete saved session")
		}
	})

	if err := a.initDrafts(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) initDrafts() error {
	switch a.Config.DraftBackend {
	case "", "file":
		store, err := localstore.NewFileStore(a.Config.DraftDir)
		if err != nil {
			return fmt.Errorf("draft store: %w", err)
		}
		a.drafts = store
	case "redis":
		client, err := localstore.NewRedisClient(a.Config.RedisURL)
		if err != nil {
			return fmt.Errorf("draft store: %w", err)
		}
		a.redis = client
		a.drafts = localstore.NewRedisStore(client, "homestay:", a.Config.DraftTTL)
	default:
		return fmt.Errorf("unknown draft backend %q", a.Config.DraftBackend)
	}
	return nil
}

// Uploader returns the configured media backend, built on first use.
func (a *App) Uploader(ctx context.Context) (media.Uploader, error) {
	if a.uploader != nil {
		return a.uploader, nil
	}

	var (
		u   media.Uploader
		err error
	)
	switch a.Config.MediaProvider {
	case "", "preset":
		u, err = media.NewPresetUploader(media.PresetConfig{
			URL:    a.Config.MediaUploadURL,
			Preset: a.Config.MediaUploadPreset,
			Folder: a.Config.MediaFolder,
		}, nil)
	case "s3":
		u, err = media.NewS3Uploader(ctx, media.S3Config{
			Endpoint:  a.Config.S3Endpoint,
			Region:    a.Config.S3Region,
			Bucket:    a.Config.S3Bucket,
			AccessKey: a.Config.S3AccessKey,
			SecretKey: a.Config.S3SecretKey,
			PublicURL: a.Config.S3PublicURL,
			Folder:    a.Config.MediaFolder,
		}, nil)
	default:
		err = fmt.Errorf("unknown media provider %q", a.Config.MediaProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("media uploader: %w", err)
	}
	a.uploader = u
	return u, nil
}

// Wizard opens the signed-in user's draft of kind.
func (a *App) Wizard(ctx context.Context, kind listing.Kind) (*draft.Wizard, error) {
	p, ok := a.Session.Principal()
	if !ok || p.UserID == uuid.Nil {
		return nil, ErrNotSignedIn
	}
	deps := draft.Deps{
		Store:     a.drafts,
		Publisher: a.Listings,
		Processor: a.Processor,
		Geocoder:  a.Geocoder,
	}
	// the uploader is only needed at submit; a missing one must not block editing
	if u, err := a.Uploader(ctx); err == nil {
		deps.Uploader = u
	} else {
		a.log.Debug().Err(err).Msg("Media uploader unavailable")
	}
	return draft.Open(ctx, deps, kind, p.UserID)
}

// SaveSession persists the current tokens.
func (a *App) SaveSession(ctx context.Context) error {
	if !a.Session.Authenticated() {
		return nil
	}
	return a.Session.Save(ctx, a.sessionStore, a.sessionKey)
}

// Close disconnects the bridge and releases the draft store.
func (a *App) Close() {
	if a.Bridge != nil {
		a.Bridge.Disconnect()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}
}

// splitSessionFile turns a session file path into a store directory and key.
func splitSessionFile(path string) (dir, key string) {
	if path == "" {
		path = "session.json"
	}
	dir = filepath.Dir(path)
	key = strings.TrimSuffix(filepath.Base(path), ".json")
	return dir, key
}
