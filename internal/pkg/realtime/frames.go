package realtime

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
)

// STOMP header names used by the bridge.
const (
	hdrAcceptVersion = "accept-version"
	hdrHost          = "host"
	hdrHeartBeat     = "heart-beat"
	hdrAuthorization = "Authorization"
	hdrDestination   = "destination"
	hdrID            = "id"
	hdrSubscription  = "subscription"
	hdrAck           = "ack"
	hdrMessage       = "message"
)

const stompVersion = "1.2"

var heartbeatFrame = []byte("\n")

// encode serializes one frame into a single WebSocket message.
func encode(f *frame.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := frame.NewWriter(&buf).Write(f); err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", f.Command, err)
	}
	return buf.Bytes(), nil
}

// decode parses every frame carried by one WebSocket message. Heart-beats are
// skipped.
func decode(data []byte) ([]*frame.Frame, error) {
	r := frame.NewReader(bytes.NewReader(data))
	var frames []*frame.Frame
	for {
		f, err := r.Read()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		if f != nil {
			frames = append(frames, f)
		}
	}
}

func heartbeatHeader(d time.Duration) string {
	ms := strconv.FormatInt(d.Milliseconds(), 10)
	return ms + "," + ms
}

// negotiate applies the STOMP heart-beat rules to our interval and the
// server's "sx,sy" header. It returns how often we must send and how often we
// can expect to receive; zero disables either side.
func negotiate(local time.Duration, server string) (send, recv time.Duration) {
	if local <= 0 {
		return 0, 0
	}
	parts := strings.SplitN(server, ",", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	sx, err1 := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	sy, err2 := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err1 != nil || err2 != nil {
		return 0, 0
	}

	if sy > 0 {
		send = maxDuration(local, time.Duration(sy)*time.Millisecond)
	}
	if sx > 0 {
		recv = maxDuration(local, time.Duration(sx)*time.Millisecond)
	}
	return send, recv
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
