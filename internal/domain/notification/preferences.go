package notification

import (
	"context"

	"github.com/homestay/homestay-client/internal/pkg/validator"
)

const preferencesPath = "/notifications/preferences"

// ChannelSettings represents notification settings per channel
type ChannelSettings struct {
	InApp bool `json:"in_app"`
	Email bool `json:"email"`
	Push  bool `json:"push"`
}

// Preferences holds the user's notification preferences
type Preferences struct {
	// Global toggles
	EmailEnabled bool `json:"email_enabled"`
	PushEnabled  bool `json:"push_enabled"`
	InAppEnabled bool `json:"in_app_enabled"`

	// Per-type overrides
	Types map[Type]ChannelSettings `json:"types,omitempty"`

	DigestEnabled   bool   `json:"digest_enabled"`
	DigestFrequency string `json:"digest_frequency,omitempty" validate:"omitempty,oneof=daily weekly"`
}

// Allows reports whether t should reach the user in-app.
func (p *Preferences) Allows(t Type) bool {
	if !p.InAppEnabled {
		return false
	}
	if s, ok := p.Types[t]; ok {
		return s.InApp
	}
	return true
}

// GetPreferences loads the signed-in user's preferences.
func (s *Service) GetPreferences(ctx context.Context) (*Preferences, error) {
	var p Preferences
	if err := s.api.Get(ctx, preferencesPath, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePreferences replaces the signed-in user's preferences.
func (s *Service) UpdatePreferences(ctx context.Context, p Preferences) (*Preferences, error) {
	if err := validator.Check(p); err != nil {
		return nil, err
	}
	var out Preferences
	if err := s.api.Put(ctx, preferencesPath, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
