// Package export bundles a user's persisted records into one JSON document
// and restores them. Sections travel in their native persisted shapes, so a
// bundle produced by ExportAll feeds back into ImportAll unchanged.
package export

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"

	"github.com/minigamehub/progress-engine/pkg/domain"
	"github.com/minigamehub/progress-engine/pkg/errors"
	"github.com/minigamehub/progress-engine/pkg/storage"
)

// Bundle is the export document. Every section is optional; a partial
// bundle (for example stats without preferences) is valid.
type Bundle struct {
	Stats       json.RawMessage `json:"stats,omitempty"`
	Preferences json.RawMessage `json:"preferences,omitempty"`
	Challenges  json.RawMessage `json:"challenges,omitempty"`
}

// Service reads and writes bundles through the storage gateway.
type Service struct {
	gateway storage.Gateway
	logger  *slog.Logger
}

// NewService creates an export/import service over the given gateway.
func NewService(gateway storage.Gateway, logger *slog.Logger) *Service {
	return &Service{gateway: gateway, logger: logger}
}

// ExportAll bundles the user's stats, preferences, and challenge log.
// Sections are read independently; absent or unreadable records are left out
// of the bundle rather than failing the export.
func (s *Service) ExportAll(userID string) (string, error) {
	bundle := Bundle{
		Stats:       s.section(storage.StatsKey(userID)),
		Preferences: s.section(storage.PrefsKey(userID)),
		Challenges:  s.section(storage.DailyKey(userID)),
	}

	data, err := json.Marshal(bundle)
	if err != nil {
		return "", errors.ErrStorage("marshal export bundle", err)
	}
	return string(data), nil
}

// ImportAll parses a bundle and writes each present section back for the
// given user. Sections are written individually and best-effort: a failure
// on one section is reported but does not roll back sections already
// written.
func (s *Service) ImportAll(userID, payload string) error {
	var bundle Bundle
	if err := json.Unmarshal([]byte(payload), &bundle); err != nil {
		return errors.ErrInvalidImport("not a JSON object", err)
	}
	if bundle.Stats == nil && bundle.Preferences == nil && bundle.Challenges == nil {
		return errors.ErrInvalidImport("no recognized sections", nil)
	}

	if bundle.Stats != nil {
		var stats domain.UserStats
		if err := json.Unmarshal(bundle.Stats, &stats); err != nil {
			return errors.ErrInvalidImport("stats section has the wrong shape", err)
		}
	}
	if bundle.Preferences != nil {
		var p domain.Preferences
		if err := json.Unmarshal(bundle.Preferences, &p); err != nil {
			return errors.ErrInvalidImport("preferences section has the wrong shape", err)
		}
	}
	if bundle.Challenges != nil {
		var log domain.ChallengeLog
		if err := json.Unmarshal(bundle.Challenges, &log); err != nil {
			return errors.ErrInvalidImport("challenges section has the wrong shape", err)
		}
	}

	var errs []error
	write := func(key string, section json.RawMessage) {
		if section == nil {
			return
		}
		if err := s.gateway.Set(key, string(section)); err != nil {
			s.logger.Error("import section write failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	write(storage.StatsKey(userID), bundle.Stats)
	write(storage.PrefsKey(userID), bundle.Preferences)
	write(storage.DailyKey(userID), bundle.Challenges)

	return stderrors.Join(errs...)
}

// section returns the raw stored value for the key, or nil when the key is
// absent or does not hold valid JSON.
func (s *Service) section(key string) json.RawMessage {
	raw, ok := s.gateway.Get(key)
	if !ok {
		return nil
	}
	if !json.Valid([]byte(raw)) {
		s.logger.Warn("skipping unreadable section in export", slog.String("key", key))
		return nil
	}
	return json.RawMessage(raw)
}
