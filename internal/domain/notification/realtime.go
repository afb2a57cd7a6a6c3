package notification

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/homestay/homestay-client/internal/pkg/logger"
	"github.com/homestay/homestay-client/internal/pkg/realtime"
	"github.com/homestay/homestay-client/internal/pkg/session"
)

// DefaultTopicPrefix is the destination prefix of per-recipient topics.
const DefaultTopicPrefix = "/topic/notifications/"

// Topic returns the push destination of one recipient.
func Topic(recipientID uuid.UUID) string {
	return DefaultTopicPrefix + recipientID.String()
}

// Listener feeds pushed notifications from the bridge into the service.
type Listener struct {
	svc    *Service
	bridge *realtime.Bridge
	sess   *session.Session
	prefix string
	log    zerolog.Logger

	mu       sync.Mutex
	unsub    realtime.Unsubscribe
	handlers []func(Notification)
}

// NewListener creates a stopped listener. Clearing sess stops it, so the
// next sign-in can Start it again.
func NewListener(svc *Service, bridge *realtime.Bridge, sess *session.Session) *Listener {
	l := &Listener{
		svc:    svc,
		bridge: bridge,
		sess:   sess,
		prefix: DefaultTopicPrefix,
		log:    logger.Component("notification"),
	}
	sess.OnClear(l.Stop)
	return l
}

// SetTopicPrefix overrides DefaultTopicPrefix. Call before Start.
func (l *Listener) SetTopicPrefix(prefix string) {
	if prefix != "" {
		l.prefix = prefix
	}
}

// OnNotification registers fn to run for every pushed notification after
// it has been stored.
func (l *Listener) OnNotification(fn func(Notification)) {
	l.mu.Lock()
	l.handlers = append(l.handlers, fn)
	l.mu.Unlock()
}

// Start connects the bridge and subscribes the signed-in user's topic. The
// unread count is re-read from the server after every (re)connect so pushes
// missed while offline are still counted.
func (l *Listener) Start(ctx context.Context) error {
	p, ok := l.sess.Principal()
	if !ok {
		return ErrNoRecipient
	}

	l.mu.Lock()
	if l.unsub != nil {
		l.mu.Unlock()
		return ErrListenerRunning
	}
	topic := l.prefix + p.UserID.String()
	unsub, err := realtime.SubscribeJSON(l.bridge, topic, l.receive)
	if err != nil {
		l.mu.Unlock()
		return fmt.Errorf("subscribe notifications: %w", err)
	}
	l.unsub = unsub
	l.mu.Unlock()

	err = l.bridge.Connect(ctx, func() {
		if _, err := l.svc.UnreadCount(context.WithoutCancel(ctx)); err != nil {
			l.log.Warn().Err(err).Msg("Failed to refresh unread count")
		}
	})
	if err != nil {
		l.Stop()
		return fmt.Errorf("connect notifications: %w", err)
	}
	l.log.Info().Str("topic", topic).Msg("Listening for notifications")
	return nil
}

// Stop drops the topic subscription and leaves the bridge connected.
func (l *Listener) Stop() {
	l.mu.Lock()
	unsub := l.unsub
	l.unsub = nil
	l.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (l *Listener) receive(n Notification) {
	if n.ID == uuid.Nil {
		l.log.Debug().Msg("Dropping notification without id")
		return
	}
	l.svc.Receive(n)
	l.log.Debug().Str("notification_id", n.ID.String()).Str("type", string(n.Type)).Msg("Notification received")

	l.mu.Lock()
	fns := append([]func(Notification){}, l.handlers...)
	l.mu.Unlock()
	for _, fn := range fns {
		fn(n)
	}
}
