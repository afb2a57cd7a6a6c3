// Package realtimetest provides an in-process STOMP-over-WebSocket broker for
// tests of code built on the realtime bridge.
package realtimetest

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/gorilla/websocket"
)

const waitTimeout = 2 * time.Second

// Broker accepts STOMP clients, records their subscriptions and lets the
// test push MESSAGE frames to them.
type Broker struct {
	server     *httptest.Server
	subscribed chan string

	mu     sync.Mutex
	conn   *websocket.Conn
	subs   map[string]string
	tokens []string
}

// NewBroker starts a broker closed by t.Cleanup.
func NewBroker(t *testing.T) *Broker {
	t.Helper()
	b := &Broker{subscribed: make(chan string, 64), subs: make(map[string]string)}
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		b.serve(ws)
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *Broker) serve(ws *websocket.Conn) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		reader := frame.NewReader(bytes.NewReader(data))
		for {
			f, err := reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return
			}
			if f == nil {
				continue
			}

			switch f.Command {
			case frame.CONNECT:
				b.mu.Lock()
				b.conn = ws
				b.subs = make(map[string]string)
				b.tokens = append(b.tokens, strings.TrimPrefix(f.Header.Get("Authorization"), "Bearer "))
				b.mu.Unlock()
				if err := b.write(ws, frame.New(frame.CONNECTED, "version", "1.2", "heart-beat", "0,0")); err != nil {
					return
				}
			case frame.SUBSCRIBE:
				dest := f.Header.Get("destination")
				b.mu.Lock()
				b.subs[dest] = f.Header.Get("id")
				b.mu.Unlock()
				b.subscribed <- dest
			case frame.UNSUBSCRIBE:
				b.mu.Lock()
				for dest, id := range b.subs {
					if id == f.Header.Get("id") {
						delete(b.subs, dest)
					}
				}
				b.mu.Unlock()
			case frame.DISCONNECT:
				return
			}
		}
	}
}

func (b *Broker) write(ws *websocket.Conn, f *frame.Frame) error {
	var buf bytes.Buffer
	if err := frame.NewWriter(&buf).Write(f); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return ws.WriteMessage(websocket.TextMessage, buf.Bytes())
}

// URL returns the ws:// address of the broker.
func (b *Broker) URL() string {
	return "ws" + strings.TrimPrefix(b.server.URL, "http") + "/ws"
}

// Tokens returns the bearer tokens seen on CONNECT, in order.
func (b *Broker) Tokens() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.tokens...)
}

// WaitSubscribed blocks until a client subscribes to destination.
func (b *Broker) WaitSubscribed(t *testing.T, destination string) {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case dest := <-b.subscribed:
			if dest == destination {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for SUBSCRIBE %s", destination)
		}
	}
}

// Push sends body as a MESSAGE on destination to the current client.
func (b *Broker) Push(t *testing.T, destination, body string) {
	t.Helper()
	b.mu.Lock()
	ws, id := b.conn, b.subs[destination]
	b.mu.Unlock()
	if ws == nil {
		t.Fatal("push: no client connected")
	}

	f := frame.New(frame.MESSAGE,
		"destination", destination,
		"subscription", id,
		"message-id", destination+"-"+body,
		"content-type", "application/json",
	)
	f.Body = []byte(body)
	if err := b.write(ws, f); err != nil {
		t.Fatalf("push: %v", err)
	}
}
