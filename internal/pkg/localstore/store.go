// Package localstore persists small JSON documents between runs: wizard drafts
// and the saved session. It plays the role browser local storage plays for the
// web client.
package localstore

import (
	"context"
	"errors"
	"strings"
)

var ErrInvalidKey = errors.New("localstore: invalid key")

// Store is a key/value store of JSON documents.
type Store interface {
	// Load decodes the value stored under key into dst. It reports false when
	// nothing is stored.
	Load(ctx context.Context, key string, dst any) (bool, error)
	Save(ctx context.Context, key string, v any) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
