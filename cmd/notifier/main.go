package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/homestay/homestay-client/internal/app"
	"github.com/homestay/homestay-client/internal/config"
	"github.com/homestay/homestay-client/internal/domain/auth"
	"github.com/homestay/homestay-client/internal/domain/notification"
	"github.com/homestay/homestay-client/internal/middleware"
	"github.com/homestay/homestay-client/internal/pkg/logger"
	"github.com/homestay/homestay-client/internal/pkg/metrics"
)

func main() {
	email := flag.String("email", "", "sign in with this email instead of the saved session")
	password := flag.String("password", os.Getenv("HOMESTAY_PASSWORD"), "account password")
	flag.Parse()

	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env}); err != nil {
		log.Error().Err(err).Msg("Failed to init logger")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("api", cfg.APIBaseURL).
		Str("ws", cfg.WSURL).
		Msg("Starting notifier")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start notifier")
	}
	defer a.Close()

	if *email != "" {
		if _, err := a.Auth.Login(ctx, auth.LoginRequest{Email: *email, Password: *password}); err != nil {
			log.Fatal().Err(err).Msg("Login failed")
		}
		if err := a.SaveSession(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to save session")
		}
	}
	if !a.Session.Authenticated() {
		log.Fatal().Msg("No saved session, pass -email to sign in")
	}

	var server *http.Server
	if cfg.MetricsAddr != "" {
		r := chi.NewRouter()
		r.Use(middleware.RequestID, middleware.Logger, middleware.Recover)
		r.Mount("/", metrics.Router(metrics.InitRegistry()))

		server = &http.Server{
			Addr:         cfg.MetricsAddr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.MetricsAddr).Msg("Metrics server listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Metrics server error")
			}
		}()
	}

	a.Notifications.OnUnread(func(n int) {
		log.Info().Int("unread", n).Msg("Unread count changed")
	})
	a.Listener.OnNotification(func(n notification.Notification) {
		log.Info().
			Str("id", n.ID.String()).
			Str("type", string(n.Type)).
			Str("title", n.Title).
			Msg("Notification received")
	})
	// a failed refresh clears the session and drops the socket
	expired := make(chan struct{})
	var once sync.Once
	a.Session.OnClear(func() { once.Do(func() { close(expired) }) })

	if err := a.Listener.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start listener")
	}
	if err := a.SaveSession(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to save session")
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down notifier...")
	case <-expired:
		log.Warn().Msg("Session expired, sign in again")
	}

	a.Listener.Stop()
	a.Bridge.Disconnect()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Metrics server forced to shutdown")
		}
	}
	log.Info().Msg("Notifier stopped")
}
