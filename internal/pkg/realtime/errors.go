package realtime

import "errors"

var (
	ErrNoURL              = errors.New("websocket url is not configured")
	ErrInvalidDestination = errors.New("destination is required")
	ErrNilHandler         = errors.New("handler is required")
	ErrDisconnected       = errors.New("bridge disconnected")
	ErrRejected           = errors.New("broker rejected connection")
	ErrUnexpectedFrame    = errors.New("unexpected frame")
)
