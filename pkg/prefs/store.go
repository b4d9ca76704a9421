// Package prefs persists user interface preferences through the storage
// gateway. Preferences are forgiving: a missing or unreadable record
// falls back to defaults rather than failing the caller.
package prefs

import (
	"encoding/json"
	"log/slog"

	"github.com/minigamehub/progress-engine/pkg/domain"
	"github.com/minigamehub/progress-engine/pkg/errors"
	"github.com/minigamehub/progress-engine/pkg/storage"
)

var validThemes = map[string]bool{
	"light":  true,
	"dark":   true,
	"system": true,
}

// Store reads and writes per-user preferences.
type Store struct {
	gateway storage.Gateway
	logger  *slog.Logger
}

// NewStore creates a preferences store over the given gateway.
func NewStore(gateway storage.Gateway, logger *slog.Logger) *Store {
	return &Store{gateway: gateway, logger: logger}
}

// Load returns the user's preferences, or the defaults when nothing is
// stored or the stored record cannot be parsed.
func (s *Store) Load(userID string) *domain.Preferences {
	raw, ok := s.gateway.Get(storage.PrefsKey(userID))
	if !ok {
		return domain.DefaultPreferences()
	}

	var p domain.Preferences
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.logger.Warn("discarding unreadable preferences record",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return domain.DefaultPreferences()
	}
	if !validThemes[p.Theme] {
		p.Theme = "system"
	}
	return &p
}

// Save validates and persists the user's preferences.
func (s *Store) Save(userID string, p *domain.Preferences) error {
	if p == nil {
		return errors.ErrInvalidInput("preferences must not be nil")
	}
	if !validThemes[p.Theme] {
		return errors.ErrInvalidInput("unknown theme " + p.Theme)
	}

	data, err := json.Marshal(p)
	if err != nil {
		return errors.ErrStorage("marshal preferences", err)
	}
	return s.gateway.Set(storage.PrefsKey(userID), string(data))
}
