// Package docstore is the key -> JSON document facade every chefbook service persists through.
//
// There are no transactions across keys, and writers of the same key are not coordinated: a
// read-modify-write cycle that overlaps another one on the same key loses one of the updates
// (last writer wins). chefbook assumes a single client per store.
package docstore

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"chefbook/internal/logging"
)

// ErrNotFound is returned by a Backend when the key holds no document.
var ErrNotFound = errors.New("document not found")

// Document keys. Values are JSON and carry no schema version.
const (
	KeyAPIKey          = "@gemini_api_key"
	KeyPreferences     = "@user_preferences"
	KeyShoppingList    = "@shopping_list"
	KeyMealPlans       = "@meal_plans"
	KeyFinishedRecipes = "@finished_recipes"

	chatHistoryPrefix = "@chat_history_"
)

// ChatHistoryKey returns the transcript key for a recipe.
func ChatHistoryKey(idMeal string) string {
	return chatHistoryPrefix + idMeal
}

// Backend persists raw document bytes.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Store wraps a Backend with JSON encoding. It never returns errors to callers: failures
// are logged and reported as false.
type Store struct {
	backend Backend
	logger  *zap.Logger
}

// New creates a Store over backend.
func New(backend Backend, logger *zap.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logging.OrNop(logger).Named("docstore"),
	}
}

// Load decodes the document at key into v. found is false when the key is absent;
// ok is false when the read or the decode failed, in which case v is untouched and
// callers must not write back a document derived from it.
func (s *Store) Load(ctx context.Context, key string, v any) (found, ok bool) {
	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, true
	}
	if err != nil {
		s.logger.Error("failed to read document", zap.String("key", key), zap.Error(err))
		return false, false
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Error("failed to decode document", zap.String("key", key), zap.Error(err))
		return false, false
	}
	return true, true
}

// Save encodes v and stores it at key.
func (s *Store) Save(ctx context.Context, key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode document", zap.String("key", key), zap.Error(err))
		return false
	}

	if err := s.backend.Set(ctx, key, data); err != nil {
		s.logger.Error("failed to write document", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Remove deletes the document at key. Removing an absent key succeeds.
func (s *Store) Remove(ctx context.Context, key string) bool {
	if err := s.backend.Remove(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Error("failed to remove document", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// LoadString reads a string document; a missing key yields "".
func (s *Store) LoadString(ctx context.Context, key string) (string, bool) {
	var value string
	if _, ok := s.Load(ctx, key, &value); !ok {
		return "", false
	}
	return value, true
}
