package notification

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNoRecipient          = errors.New("no signed-in user to listen for")
	ErrListenerRunning      = errors.New("listener already running")
)
