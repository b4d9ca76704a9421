package stats

import (
	"encoding/json"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/minigamehub/progress-engine/pkg/badges"
	"github.com/minigamehub/progress-engine/pkg/common"
	"github.com/minigamehub/progress-engine/pkg/domain"
	"github.com/minigamehub/progress-engine/pkg/errors"
	"github.com/minigamehub/progress-engine/pkg/storage"
)

// cacheSize bounds the in-memory stats cache. A single device rarely sees
// more than a handful of user records; the cache mainly exists so play can
// continue from memory when the storage medium is absent or failing.
const cacheSize = 128

// Store owns the UserStats entity: load-or-create, incremental update, and
// serialization through the storage gateway.
//
// The store assumes single-writer-per-key (no locking or versioning across
// processes); concurrent writers can race and last-write-wins.
type Store struct {
	gateway   storage.Gateway
	evaluator *badges.Evaluator
	cache     *lru.Cache
	logger    *slog.Logger
	now       func() time.Time
}

// NewStore creates a stats store using the real clock.
func NewStore(gateway storage.Gateway, evaluator *badges.Evaluator, logger *slog.Logger) *Store {
	return NewStoreAt(gateway, evaluator, logger, time.Now)
}

// NewStoreAt creates a stats store with an injected clock. Tests use this
// to pin calendar-day boundaries for streak computation.
func NewStoreAt(gateway storage.Gateway, evaluator *badges.Evaluator, logger *slog.Logger, now func() time.Time) *Store {
	cache, _ := lru.New(cacheSize)
	return &Store{
		gateway:   gateway,
		evaluator: evaluator,
		cache:     cache,
		logger:    logger,
		now:       now,
	}
}

// Load returns the stats record for a user, creating a fresh one when the
// stored value is missing or corrupt. It never fails: the returned stats
// are always usable. The returned error is advisory, non-nil only when
// corruption was detected and the record reinitialized, so callers can
// surface it through the same channel as other storage failures.
func (s *Store) Load(userID string) (*domain.UserStats, error) {
	// The cache holds the newest in-process state; it is authoritative over
	// the medium while this process is the only writer, and it keeps play
	// working when the medium is unavailable.
	if cached, ok := s.cache.Get(userID); ok {
		return cached.(*domain.UserStats), nil
	}

	key := storage.StatsKey(userID)
	raw, ok := s.gateway.Get(key)
	if !ok {
		fresh := domain.NewUserStats(userID)
		s.cache.Add(userID, fresh)
		return fresh, nil
	}

	var stats domain.UserStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		s.logger.Error("stats record is corrupt, reinitializing", "user_id", userID, "error", err)
		fresh := domain.NewUserStats(userID)
		s.cache.Add(userID, fresh)
		return fresh, errors.ErrCorruptData(key, err)
	}
	normalize(&stats, userID)

	s.cache.Add(userID, &stats)
	return &stats, nil
}

// RecordPlay is the core mutation: it updates the streak, appends a history
// entry, recomputes every aggregate, evaluates badge rules against the
// updated stats, and persists the whole record with a single gateway write.
//
// The returned stats are always the fully updated record and newBadges the
// ids added by this call. A non-nil error means the persist failed (quota
// even after cleanup, or blocked medium); the in-memory state is still
// updated so play continues, and the caller must surface the error.
func (s *Store) RecordPlay(userID string, event domain.PlayEvent) (*domain.UserStats, []domain.BadgeID, error) {
	// GameDailyBonus is engine-internal: it carries challenge bonus points
	// back through the same pipeline, so it bypasses the roster check.
	if !event.GameID.IsValid() && event.GameID != domain.GameDailyBonus {
		return nil, nil, errors.ErrInvalidGameID(string(event.GameID))
	}
	if event.Timestamp == 0 {
		event.Timestamp = s.now().UnixMilli()
	}

	stats, loadErr := s.Load(userID)
	if loadErr != nil {
		// Corruption already logged and reinitialized; keep going with the
		// fresh record rather than blocking the play.
		s.logger.Warn("recording play against reinitialized stats", "user_id", userID)
	}

	s.advanceStreak(stats)

	stats.GameHistory = append(stats.GameHistory, domain.GameHistoryEntry{
		GameID:    event.GameID,
		Score:     event.Score,
		Completed: event.Completed,
		Timestamp: event.Timestamp,
		Duration:  event.Duration,
	})

	stats.TotalGamesPlayed++
	stats.TotalScore += event.Score
	if event.Completed {
		stats.GamesCompleted++
	}
	stats.GamesByType[event.GameID]++

	if event.Completed && event.Score > 0 {
		stats.Achievements.PerfectGames++
	}
	if event.Duration < 120 {
		stats.Achievements.FastCompletions++
	}
	if event.Score > stats.Achievements.HighScores[event.GameID] {
		stats.Achievements.HighScores[event.GameID] = event.Score
	}

	newBadges := s.evaluator.Evaluate(stats, event)
	for _, id := range newBadges {
		stats.AddBadge(id)
	}

	if err := s.persist(userID, stats); err != nil {
		return stats, newBadges, err
	}
	return stats, newBadges, nil
}

// SetUserName updates the display name and persists.
func (s *Store) SetUserName(userID, name string) (*domain.UserStats, error) {
	stats, _ := s.Load(userID)
	stats.UserName = name
	return stats, s.persist(userID, stats)
}

// AwardBadge adds a badge directly (used for daily-challenge badge rewards)
// and persists when it was not already held. Returns whether it was added.
func (s *Store) AwardBadge(userID string, id domain.BadgeID) (bool, error) {
	stats, _ := s.Load(userID)
	if !stats.AddBadge(id) {
		return false, nil
	}
	return true, s.persist(userID, stats)
}

// Forget drops the cached record for a user so the next Load re-reads the
// medium. Called after an import replaces the stored record out from under
// the cache.
func (s *Store) Forget(userID string) {
	s.cache.Remove(userID)
}

// advanceStreak recomputes lastPlayedDate/playStreak purely from the stored
// date versus "today", never from a history scan.
func (s *Store) advanceStreak(stats *domain.UserStats) {
	today := common.DateKey(s.now())

	switch {
	case stats.LastPlayedDate == "":
		stats.PlayStreak = 1
	case stats.LastPlayedDate == today:
		// Repeat play on the same calendar day leaves the streak unchanged.
	default:
		days, ok := common.DaysBetween(stats.LastPlayedDate, today)
		if ok && days == 1 {
			stats.PlayStreak++
		} else {
			stats.PlayStreak = 1
		}
	}
	stats.LastPlayedDate = today
}

func (s *Store) persist(userID string, stats *domain.UserStats) error {
	s.cache.Add(userID, stats)

	data, err := json.Marshal(stats)
	if err != nil {
		return errors.ErrStorage("encode stats", err)
	}
	return s.gateway.Set(storage.StatsKey(userID), string(data))
}

// normalize repairs nil maps/slices after decoding sparse or hand-edited
// JSON so the rest of the engine can index without checks.
func normalize(stats *domain.UserStats, userID string) {
	if stats.UserID == "" {
		stats.UserID = userID
	}
	if stats.Badges == nil {
		stats.Badges = []domain.BadgeID{}
	}
	if stats.GameHistory == nil {
		stats.GameHistory = []domain.GameHistoryEntry{}
	}
	if stats.GamesByType == nil {
		stats.GamesByType = map[domain.GameID]int{}
	}
	if stats.Achievements.HighScores == nil {
		stats.Achievements.HighScores = map[domain.GameID]int{}
	}
}
