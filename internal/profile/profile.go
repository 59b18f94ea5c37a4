// Package profile stores the user's model credential and free-text diet preferences.
package profile

import (
	"context"
	"strings"

	"chefbook/internal/config"
	"chefbook/internal/docstore"
)

// Service reads and writes the profile documents.
type Service struct {
	store *docstore.Store
}

// NewService creates a profile Service.
func NewService(store *docstore.Store) *Service {
	return &Service{store: store}
}

// APIKey returns the stored key, or "" when none is stored or the read failed.
func (s *Service) APIKey(ctx context.Context) string {
	key, _ := s.store.LoadString(ctx, docstore.KeyAPIKey)
	return key
}

// SaveAPIKey stores key after trimming whitespace.
func (s *Service) SaveAPIKey(ctx context.Context, key string) bool {
	return s.store.Save(ctx, docstore.KeyAPIKey, strings.TrimSpace(key))
}

// RemoveAPIKey deletes the stored key so the configured default applies again.
func (s *Service) RemoveAPIKey(ctx context.Context) bool {
	return s.store.Remove(ctx, docstore.KeyAPIKey)
}

// Preferences returns the diet/allergy profile. Empty means no restriction.
func (s *Service) Preferences(ctx context.Context) string {
	prefs, _ := s.store.LoadString(ctx, docstore.KeyPreferences)
	return prefs
}

// SavePreferences stores the diet/allergy profile.
func (s *Service) SavePreferences(ctx context.Context, prefs string) bool {
	return s.store.Save(ctx, docstore.KeyPreferences, strings.TrimSpace(prefs))
}

// SaveSettings writes the key and the preferences as two independent documents.
// The result is false if either write failed; a successful write is not rolled back.
// An empty key removes the stored one.
func (s *Service) SaveSettings(ctx context.Context, key, prefs string) bool {
	var keyOK bool
	if strings.TrimSpace(key) == "" {
		keyOK = s.RemoveAPIKey(ctx)
	} else {
		keyOK = s.SaveAPIKey(ctx, key)
	}
	prefsOK := s.SavePreferences(ctx, prefs)
	return keyOK && prefsOK
}

// ActiveAPIKey resolves the credential to use: the stored key, else defaultKey.
// It returns "" when neither is usable.
func (s *Service) ActiveAPIKey(ctx context.Context, defaultKey string) string {
	if key := s.APIKey(ctx); key != "" {
		return key
	}
	if IsUsableKey(defaultKey) {
		return defaultKey
	}
	return ""
}

// IsUsableKey reports whether key is neither blank nor the placeholder.
func IsUsableKey(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != config.PlaceholderAPIKey
}
