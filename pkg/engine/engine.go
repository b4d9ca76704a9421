// Package engine assembles the progress subsystems behind the surface the
// game/UI layer depends on: record a play, read stats and badge progress,
// fetch the daily challenge, export and import.
package engine

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/minigamehub/progress-engine/pkg/badges"
	"github.com/minigamehub/progress-engine/pkg/challenge"
	"github.com/minigamehub/progress-engine/pkg/config"
	"github.com/minigamehub/progress-engine/pkg/domain"
	"github.com/minigamehub/progress-engine/pkg/export"
	"github.com/minigamehub/progress-engine/pkg/prefs"
	"github.com/minigamehub/progress-engine/pkg/stats"
	"github.com/minigamehub/progress-engine/pkg/storage"
)

// compactableGateway is what the engine needs from a backend: the gateway
// contract plus the cleanup hook registration.
type compactableGateway interface {
	storage.Gateway
	SetCompactor(storage.Compactor)
}

// Engine is the complete public surface. All methods are synchronous;
// RecordPlay returns only after the persist attempt resolves.
type Engine struct {
	gateway    storage.Gateway
	stats      *stats.Store
	prefs      *prefs.Store
	challenges *challenge.Generator
	exporter   *export.Service
	evaluator  *badges.Evaluator
	logger     *slog.Logger
	closer     io.Closer
}

// PlayResult is everything a single recorded play produced.
type PlayResult struct {
	// Stats is the fully updated record after the play and any reward.
	Stats *domain.UserStats

	// NewBadges lists the badge ids unlocked by this call, including any
	// granted by a challenge reward.
	NewBadges []domain.BadgeID

	// Reward is set when this play completed today's challenge.
	Reward *domain.Reward
}

// New builds an engine from configuration. When the configured backend is
// unreachable the engine falls back to an in-memory medium so play can
// continue for the session, without persistence.
func New(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	gw, closer, err := openGateway(cfg, logger)
	if err != nil {
		return nil, err
	}

	if !gw.Available() {
		logger.Warn("storage backend unavailable, continuing in memory only",
			slog.String("backend", cfg.StorageBackend))
		if closer != nil {
			closer.Close()
		}
		gw, closer = storage.NewMemoryGateway(cfg.QuotaBytes, logger), nil
	}

	e := newEngine(gw, cfg.HistoryCap, logger, time.Now)
	e.closer = closer
	return e, nil
}

// newEngine wires the subsystems over an open gateway. The clock is
// injected so tests control streaks, temporal badges, and challenge dates.
func newEngine(gw compactableGateway, historyCap int, logger *slog.Logger, now func() time.Time) *Engine {
	gw.SetCompactor(stats.NewQuotaCompactor(historyCap))

	evaluator := badges.NewEvaluatorAt(now)
	return &Engine{
		gateway:    gw,
		stats:      stats.NewStoreAt(gw, evaluator, logger, now),
		prefs:      prefs.NewStore(gw, logger),
		challenges: challenge.NewGeneratorAt(gw, logger, now),
		exporter:   export.NewService(gw, logger),
		evaluator:  evaluator,
		logger:     logger,
	}
}

// StorageAvailable probes whether the backing medium currently accepts
// writes. The UI can surface a session-only warning when it stops doing so
// mid-session (a removed data directory, a dropped database connection).
func (e *Engine) StorageAvailable() bool {
	return e.gateway.Available()
}

// Close releases the backing store when it holds one (sqlite, postgres).
func (e *Engine) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// RecordPlay records a finished game, evaluates badges, checks today's
// challenge, and applies its reward when the play completed it. Bonus-point
// rewards re-enter as a synthetic daily-bonus play; badge rewards are
// granted directly.
//
// A persist error (quota exceeded after cleanup, blocked medium) is
// returned alongside a fully populated result: in-memory state is updated
// either way so the session continues.
func (e *Engine) RecordPlay(userID string, event domain.PlayEvent) (*PlayResult, error) {
	st, newBadges, err := e.stats.RecordPlay(userID, event)
	if st == nil {
		return nil, err
	}
	res := &PlayResult{Stats: st, NewBadges: newBadges}

	reward, cerr := e.challenges.CheckCompletion(userID, event)
	if cerr != nil {
		e.logger.Warn("challenge completion could not be persisted",
			slog.String("user_id", userID),
			slog.String("error", cerr.Error()))
	}
	if reward == nil {
		return res, err
	}
	res.Reward = reward

	switch reward.Type {
	case domain.RewardBonus:
		bonusStats, bonusBadges, berr := e.stats.RecordPlay(userID, domain.PlayEvent{
			GameID:    domain.GameDailyBonus,
			Score:     reward.BonusPoints,
			Completed: true,
		})
		if bonusStats != nil {
			res.Stats = bonusStats
			res.NewBadges = append(res.NewBadges, bonusBadges...)
		}
		if berr != nil && err == nil {
			err = berr
		}
	case domain.RewardBadge:
		added, aerr := e.stats.AwardBadge(userID, reward.BadgeID)
		if added {
			res.NewBadges = append(res.NewBadges, reward.BadgeID)
			if st, lerr := e.stats.Load(userID); lerr == nil {
				res.Stats = st
			}
		}
		if aerr != nil && err == nil {
			err = aerr
		}
	}
	return res, err
}

// GetStats returns the user's stats, creating a fresh record on first
// access.
func (e *Engine) GetStats(userID string) (*domain.UserStats, error) {
	return e.stats.Load(userID)
}

// SetUserName updates the display name.
func (e *Engine) SetUserName(userID, name string) (*domain.UserStats, error) {
	return e.stats.SetUserName(userID, name)
}

// GetBadgeProgress returns the full catalog annotated with the user's
// unlocked state and, where measurable, a current/target pair.
func (e *Engine) GetBadgeProgress(userID string) ([]badges.BadgeProgress, error) {
	st, err := e.stats.Load(userID)
	if err != nil {
		return nil, err
	}
	return e.evaluator.Progress(st), nil
}

// GetTodayChallenge returns today's challenge, creating it on first access
// of the day.
func (e *Engine) GetTodayChallenge(userID string) (*domain.DailyChallenge, error) {
	return e.challenges.GetToday(userID)
}

// GetPreferences returns the user's preferences or the defaults.
func (e *Engine) GetPreferences(userID string) *domain.Preferences {
	return e.prefs.Load(userID)
}

// SetPreferences validates and persists the user's preferences.
func (e *Engine) SetPreferences(userID string, p *domain.Preferences) error {
	return e.prefs.Save(userID, p)
}

// ExportAll bundles the user's data into a single JSON document.
func (e *Engine) ExportAll(userID string) (string, error) {
	return e.exporter.ExportAll(userID)
}

// ImportAll restores a bundle for the user and drops any cached stats so
// subsequent reads see the imported record.
func (e *Engine) ImportAll(userID, payload string) error {
	err := e.exporter.ImportAll(userID, payload)
	e.stats.Forget(userID)
	return err
}

// openGateway constructs the configured backend.
func openGateway(cfg *config.Config, logger *slog.Logger) (compactableGateway, io.Closer, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return storage.NewMemoryGateway(cfg.QuotaBytes, logger), nil, nil

	case config.BackendFile:
		gw, err := storage.NewFileGateway(cfg.DataDir, cfg.QuotaBytes, logger)
		if err != nil {
			return nil, nil, err
		}
		return gw, nil, nil

	case config.BackendSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		gw, err := storage.OpenSQLiteGateway(filepath.Join(cfg.DataDir, "progress.db"), cfg.QuotaBytes, logger)
		if err != nil {
			return nil, nil, err
		}
		return gw, gw, nil

	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		gw, err := storage.NewPostgresGateway(db, cfg.QuotaBytes, logger)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return gw, db, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
