// Package challenge owns the daily challenge lifecycle: one challenge per
// user per calendar day, created lazily on first access, checked against
// play events, and pruned after seven days.
package challenge

import (
	"encoding/json"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/minigamehub/progress-engine/pkg/badges"
	"github.com/minigamehub/progress-engine/pkg/common"
	"github.com/minigamehub/progress-engine/pkg/domain"
	"github.com/minigamehub/progress-engine/pkg/errors"
	"github.com/minigamehub/progress-engine/pkg/storage"
)

// retentionDays bounds the challenge log: records older than this many days
// before today are dropped on the next write.
const retentionDays = 7

// Games where a lower score is better get completion challenges instead of
// score-threshold ones, since "score >= target" reads backwards for them.
var lowerIsBetter = map[domain.GameID]bool{
	domain.GameNumberGuess:  true,
	domain.GameReactionTime: true,
}

// Generator synthesizes and tracks daily challenges. It never mutates
// UserStats; completion rewards are returned to the caller to apply.
type Generator struct {
	gateway storage.Gateway
	logger  *slog.Logger
	now     func() time.Time
}

// NewGenerator creates a generator using the wall clock.
func NewGenerator(gateway storage.Gateway, logger *slog.Logger) *Generator {
	return NewGeneratorAt(gateway, logger, time.Now)
}

// NewGeneratorAt creates a generator with an injected clock.
func NewGeneratorAt(gateway storage.Gateway, logger *slog.Logger, now func() time.Time) *Generator {
	return &Generator{gateway: gateway, logger: logger, now: now}
}

// GetToday returns the current challenge for the user, creating it on first
// access of the day. Repeated calls on the same date return the same
// challenge unchanged. Creation prunes records older than seven days as a
// side effect of the same write.
func (g *Generator) GetToday(userID string) (*domain.DailyChallenge, error) {
	today := common.DateKey(g.now())
	log := g.loadLog(userID)

	if ch := log.ForDate(today); ch != nil {
		return ch, nil
	}

	ch := synthesize(userID, today)

	retained := log.Challenges[:0]
	for _, c := range log.Challenges {
		if !common.OlderThan(c.Date, today, retentionDays) {
			retained = append(retained, c)
		}
	}
	log.Challenges = append(retained, ch)

	return ch, g.persist(userID, log)
}

// CheckCompletion tests a play event against today's challenge. It is a
// no-op unless a challenge exists for today, targets the played game, and is
// not yet completed. On satisfaction the challenge is marked completed and
// persisted, and the reward descriptor is returned for the caller to apply.
func (g *Generator) CheckCompletion(userID string, event domain.PlayEvent) (*domain.Reward, error) {
	today := common.DateKey(g.now())
	log := g.loadLog(userID)

	ch := log.ForDate(today)
	if ch == nil || ch.Completed || ch.GameID != event.GameID {
		return nil, nil
	}
	if !satisfies(ch, event) {
		return nil, nil
	}

	ch.Completed = true
	if err := g.persist(userID, log); err != nil {
		return &ch.Reward, err
	}
	return &ch.Reward, nil
}

func satisfies(ch *domain.DailyChallenge, event domain.PlayEvent) bool {
	switch {
	case ch.TargetCompletion != nil:
		return event.Completed == *ch.TargetCompletion
	case ch.TargetScore != nil:
		return event.Score >= *ch.TargetScore
	default:
		return true
	}
}

// synthesize builds the challenge for (userID, date). The pick is seeded
// from the pair, so re-creating after a lost write yields the same game and
// template for the day; only the id differs.
func synthesize(userID, date string) *domain.DailyChallenge {
	h := fnv.New64a()
	h.Write([]byte(date))
	h.Write([]byte{'|'})
	h.Write([]byte(userID))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	game := domain.AllGames[rng.Intn(len(domain.AllGames))]

	ch := &domain.DailyChallenge{
		ID:     uuid.NewString(),
		Date:   date,
		GameID: game,
	}

	kind := rng.Intn(3)
	if kind == 2 && lowerIsBetter[game] {
		kind = 1
	}
	switch kind {
	case 0: // any play of the game counts
		ch.Reward = domain.Reward{Type: domain.RewardBonus, BonusPoints: 25}
	case 1: // finish the game
		done := true
		ch.TargetCompletion = &done
		ch.Reward = domain.Reward{Type: domain.RewardBonus, BonusPoints: 50}
	default: // hit a score threshold
		target := 50 + rng.Intn(3)*25
		ch.TargetScore = &target
		if rng.Intn(2) == 0 {
			ch.Reward = domain.Reward{Type: domain.RewardBadge, BadgeID: badges.BadgeDailyChampion}
		} else {
			ch.Reward = domain.Reward{Type: domain.RewardBonus, BonusPoints: 100}
		}
	}
	return ch
}

// loadLog reads the user's challenge log, treating missing or unreadable
// data as empty.
func (g *Generator) loadLog(userID string) *domain.ChallengeLog {
	raw, ok := g.gateway.Get(storage.DailyKey(userID))
	if !ok {
		return &domain.ChallengeLog{}
	}

	var log domain.ChallengeLog
	if err := json.Unmarshal([]byte(raw), &log); err != nil {
		g.logger.Warn("discarding unreadable challenge log",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return &domain.ChallengeLog{}
	}
	return &log
}

func (g *Generator) persist(userID string, log *domain.ChallengeLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		return errors.ErrStorage("marshal challenge log", err)
	}
	return g.gateway.Set(storage.DailyKey(userID), string(data))
}
