// Package realtime keeps one shared STOMP-over-WebSocket connection per session
// and fans inbound JSON messages out to per-destination handlers.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/homestay/homestay-client/internal/pkg/logger"
	"github.com/homestay/homestay-client/internal/pkg/metrics"
)

const (
	writeWait        = 10 * time.Second
	handshakeTimeout = 10 * time.Second
	maxMessageSize   = 512 * 1024 // 512KB
	sendBuffer       = 256

	DefaultReconnectDelay = 5 * time.Second
	DefaultHeartBeat      = 10 * time.Second
)

// Handler receives the raw JSON body of a MESSAGE frame. Handlers run on the
// bridge's reader goroutine.
type Handler func(payload json.RawMessage)

// Unsubscribe removes a subscription. Calling it more than once is a no-op.
type Unsubscribe func()

// Options configures a Bridge.
type Options struct {
	URL            string
	Host           string
	ReconnectDelay time.Duration
	HeartBeat      time.Duration
	Dialer         *websocket.Dialer
}

type connState int

const (
	stateIdle connState = iota
	stateConnecting
	stateConnected
)

type subscription struct {
	id          string
	destination string
	handler     Handler
	unsubscribe Unsubscribe
}

// transport is one live socket with its reader and writer goroutines.
type transport struct {
	conn        *websocket.Conn
	send        chan []byte
	writerDone  chan struct{}
	readerDone  chan struct{}
	sendEvery   time.Duration
	readTimeout time.Duration
	// set while the reader runs a message handler
	dispatching atomic.Bool
}

// Bridge is the shared notification connection.
type Bridge struct {
	opts   Options
	token  func() string
	dialer *websocket.Dialer
	log    zerolog.Logger

	mu        sync.Mutex
	state     connState
	cur       *transport
	stop      chan struct{}
	subs      map[string]*subscription
	byID      map[string]*subscription
	onConnect []func()
}

// NewBridge creates an idle bridge. token is read on every dial so a
// refreshed access token is used after reconnects.
func NewBridge(opts Options, token func() string) *Bridge {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.Host == "" {
		if u, err := url.Parse(opts.URL); err == nil {
			opts.Host = u.Hostname()
		}
	}
	if token == nil {
		token = func() string { return "" }
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		}
	}

	return &Bridge{
		opts:   opts,
		token:  token,
		dialer: dialer,
		log:    logger.Component("realtime"),
		subs:   make(map[string]*subscription),
		byID:   make(map[string]*subscription),
	}
}

// Connected reports whether a transport is currently up.
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == stateConnected
}

// Destinations lists the live subscriptions.
func (b *Bridge) Destinations() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.subs))
	for d := range b.subs {
		out = append(out, d)
	}
	return out
}

// Connect opens the shared transport and waits for CONNECTED. While the bridge
// is already connecting or connected, it only registers onConnect (running it
// at once when connected) and returns nil. onConnect runs again after every
// reconnect.
func (b *Bridge) Connect(ctx context.Context, onConnect func()) error {
	if b.opts.URL == "" {
		return ErrNoURL
	}

	b.mu.Lock()
	if b.state != stateIdle {
		connected := b.state == stateConnected
		if onConnect != nil {
			b.onConnect = append(b.onConnect, onConnect)
		}
		b.mu.Unlock()
		if connected && onConnect != nil {
			onConnect()
		}
		return nil
	}
	b.state = stateConnecting
	b.stop = make(chan struct{})
	n := len(b.onConnect)
	if onConnect != nil {
		b.onConnect = append(b.onConnect, onConnect)
	}
	stop := b.stop
	b.mu.Unlock()

	t, err := b.dial(ctx)
	if err != nil {
		b.mu.Lock()
		if b.stop == stop {
			b.state = stateIdle
			// drop this attempt's callback
			if onConnect != nil && len(b.onConnect) > n {
				b.onConnect = append(b.onConnect[:n:n], b.onConnect[n+1:]...)
			}
		}
		b.mu.Unlock()
		return err
	}
	if !b.install(t, stop) {
		return ErrDisconnected
	}
	metrics.ObserveSocket("connect")
	b.log.Info().Str("url", b.opts.URL).Msg("Notification socket connected")
	return nil
}

// Subscribe registers handler for destination. A destination has at most one
// live subscription: a repeated call returns the existing Unsubscribe and
// ignores handler. Subscriptions made while disconnected are sent once the
// transport is up.
func (b *Bridge) Subscribe(destination string, handler Handler) (Unsubscribe, error) {
	if destination == "" {
		return nil, ErrInvalidDestination
	}
	if handler == nil {
		return nil, ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.subs[destination]; ok {
		b.log.Debug().Str("destination", destination).Msg("Already subscribed")
		return existing.unsubscribe, nil
	}

	sub := &subscription{
		id:          uuid.NewString(),
		destination: destination,
		handler:     handler,
	}
	var once sync.Once
	sub.unsubscribe = func() {
		once.Do(func() { b.unsubscribe(sub) })
	}
	b.subs[destination] = sub
	b.byID[sub.id] = sub

	if b.state == stateConnected && b.cur != nil {
		b.enqueueLocked(b.cur, subscribeFrame(sub))
	}
	return sub.unsubscribe, nil
}

// SubscribeJSON subscribes and decodes each payload into T. Payloads that do
// not decode are logged and dropped.
func SubscribeJSON[T any](b *Bridge, destination string, fn func(T)) (Unsubscribe, error) {
	return b.Subscribe(destination, func(raw json.RawMessage) {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			metrics.ObserveSocket("dropped")
			b.log.Warn().Err(err).Str("destination", destination).Msg("Dropping undecodable message")
			return
		}
		fn(v)
	})
}

func (b *Bridge) unsubscribe(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[sub.destination] != sub {
		return
	}
	delete(b.subs, sub.destination)
	delete(b.byID, sub.id)

	if b.state == stateConnected && b.cur != nil {
		b.enqueueLocked(b.cur, frame.New(frame.UNSUBSCRIBE, hdrID, sub.id))
	}
}

// Disconnect sends DISCONNECT, closes the socket and forgets every
// subscription and onConnect callback. It is meant for logout.
func (b *Bridge) Disconnect() {
	b.mu.Lock()
	t := b.cur
	wasActive := b.state != stateIdle
	if wasActive {
		close(b.stop)
	}
	b.cur = nil
	b.state = stateIdle
	b.subs = make(map[string]*subscription)
	b.byID = make(map[string]*subscription)
	b.onConnect = nil
	if t != nil {
		b.enqueueLocked(t, frame.New(frame.DISCONNECT))
		close(t.send)
	}
	b.mu.Unlock()

	if t != nil {
		waitOrTimeout(t.writerDone, writeWait)
		// a handler calling Disconnect runs on the reader, which exits after it returns
		if !t.dispatching.Load() {
			waitOrTimeout(t.readerDone, writeWait)
		}
	}
	if wasActive {
		metrics.ObserveSocket("disconnect")
		b.log.Info().Msg("Notification socket disconnected")
	}
}

func (b *Bridge) dial(ctx context.Context) (*transport, error) {
	conn, _, err := b.dialer.DialContext(ctx, b.opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", b.opts.URL, err)
	}

	connect := frame.New(frame.CONNECT,
		hdrAcceptVersion, stompVersion,
		hdrHost, b.opts.Host,
		hdrHeartBeat, heartbeatHeader(b.opts.HeartBeat),
	)
	if token := b.token(); token != "" {
		connect.Header.Add(hdrAuthorization, "Bearer "+token)
	}
	msg, err := encode(connect)
	if err != nil {
		conn.Close()
		return nil, err
	}

	deadline := time.Now().Add(handshakeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetWriteDeadline(deadline)
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send CONNECT: %w", err)
	}

	conn.SetReadDeadline(deadline)
	connected, err := readConnected(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	conn.SetReadDeadline(time.Time{})

	sendEvery, recvEvery := negotiate(b.opts.HeartBeat, connected.Header.Get(hdrHeartBeat))
	return &transport{
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		writerDone:  make(chan struct{}),
		readerDone:  make(chan struct{}),
		sendEvery:   sendEvery,
		readTimeout: 2 * recvEvery,
	}, nil
}

func readConnected(conn *websocket.Conn) (*frame.Frame, error) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("await CONNECTED: %w", err)
		}
		frames, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("await CONNECTED: %w", err)
		}
		if len(frames) == 0 {
			continue
		}
		f := frames[0]
		switch f.Command {
		case frame.CONNECTED:
			return f, nil
		case frame.ERROR:
			return nil, fmt.Errorf("%w: %s", ErrRejected, f.Header.Get(hdrMessage))
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedFrame, f.Command)
		}
	}
}

// install makes t the live transport unless Disconnect ran since the dial
// started, then replays every subscription and runs onConnect callbacks.
func (b *Bridge) install(t *transport, stop chan struct{}) bool {
	b.mu.Lock()
	select {
	case <-stop:
		b.mu.Unlock()
		t.conn.Close()
		return false
	default:
	}

	b.cur = t
	b.state = stateConnected
	go b.writePump(t)
	go b.readPump(t)

	for _, sub := range b.subs {
		b.enqueueLocked(t, subscribeFrame(sub))
	}
	callbacks := append([]func(){}, b.onConnect...)
	b.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
	return true
}

// enqueueLocked hands a frame to t's writer. Callers hold b.mu, which also
// guards closing t.send.
func (b *Bridge) enqueueLocked(t *transport, f *frame.Frame) {
	msg, err := encode(f)
	if err != nil {
		b.log.Error().Err(err).Msg("Failed to encode frame")
		return
	}
	select {
	case t.send <- msg:
	case <-t.writerDone:
	}
}

func subscribeFrame(sub *subscription) *frame.Frame {
	return frame.New(frame.SUBSCRIBE,
		hdrID, sub.id,
		hdrDestination, sub.destination,
		hdrAck, "auto",
	)
}

func (b *Bridge) readPump(t *transport) {
	defer func() {
		close(t.readerDone)
		b.handleLoss(t)
	}()

	t.conn.SetReadLimit(maxMessageSize)
	if t.readTimeout > 0 {
		t.conn.SetPongHandler(func(string) error {
			return t.conn.SetReadDeadline(time.Now().Add(t.readTimeout))
		})
	}

	for {
		if t.readTimeout > 0 {
			t.conn.SetReadDeadline(time.Now().Add(t.readTimeout))
		}
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				b.log.Warn().Err(err).Msg("Notification socket read error")
			}
			return
		}

		frames, err := decode(data)
		if err != nil {
			metrics.ObserveSocket("dropped")
			b.log.Warn().Err(err).Msg("Dropping malformed frame")
		}
		for _, f := range frames {
			t.dispatching.Store(true)
			b.handleFrame(f)
			t.dispatching.Store(false)
		}
	}
}

func (b *Bridge) writePump(t *transport) {
	var tick <-chan time.Time
	if t.sendEvery > 0 {
		ticker := time.NewTicker(t.sendEvery)
		defer ticker.Stop()
		tick = ticker.C
	}
	defer func() {
		close(t.writerDone)
		t.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-t.send:
			t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				t.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := t.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				b.log.Warn().Err(err).Msg("Notification socket write error")
				return
			}

		case <-tick:
			t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteMessage(websocket.TextMessage, heartbeatFrame); err != nil {
				return
			}
		}
	}
}

func (b *Bridge) handleFrame(f *frame.Frame) {
	switch f.Command {
	case frame.MESSAGE:
		b.mu.Lock()
		sub := b.byID[f.Header.Get(hdrSubscription)]
		if sub == nil {
			sub = b.subs[f.Header.Get(hdrDestination)]
		}
		b.mu.Unlock()

		if sub == nil {
			metrics.ObserveSocket("dropped")
			b.log.Debug().Str("destination", f.Header.Get(hdrDestination)).Msg("Message for unknown subscription")
			return
		}
		if !json.Valid(f.Body) {
			metrics.ObserveSocket("dropped")
			b.log.Warn().Str("destination", sub.destination).Msg("Dropping non-JSON message")
			return
		}
		metrics.ObserveSocket("message")
		sub.handler(json.RawMessage(f.Body))

	case frame.ERROR:
		b.log.Warn().Str("message", f.Header.Get(hdrMessage)).Msg("Broker error frame")

	case frame.RECEIPT:
	default:
		b.log.Debug().Str("command", f.Command).Msg("Ignoring frame")
	}
}

// handleLoss runs when t's reader exits. Unless the bridge already moved on
// from t, it schedules a reconnect.
func (b *Bridge) handleLoss(t *transport) {
	b.mu.Lock()
	if b.cur != t {
		b.mu.Unlock()
		return
	}
	b.cur = nil
	b.state = stateConnecting
	close(t.send)
	stop := b.stop
	b.mu.Unlock()

	metrics.ObserveSocket("lost")
	b.log.Warn().Dur("retry_in", b.opts.ReconnectDelay).Msg("Notification socket lost, reconnecting")
	go b.reconnect(stop)
}

// reconnect redials after a fixed delay until it succeeds or Disconnect runs.
func (b *Bridge) reconnect(stop chan struct{}) {
	timer := time.NewTimer(b.opts.ReconnectDelay)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), handshakeTimeout)
		t, err := b.dial(ctx)
		cancel()
		if err != nil {
			b.log.Warn().Err(err).Msg("Reconnect failed")
			timer.Reset(b.opts.ReconnectDelay)
			continue
		}
		if b.install(t, stop) {
			metrics.ObserveSocket("reconnect")
			b.log.Info().Msg("Notification socket reconnected")
		}
		return
	}
}

func waitOrTimeout(ch <-chan struct{}, d time.Duration) {
	select {
	case <-ch:
	case <-time.After(d):
	}
}
