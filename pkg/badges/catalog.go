package badges

import (
	"time"

	"github.com/minigamehub/progress-engine/pkg/domain"
)

// Badge ids referenced elsewhere in the engine. Per-game master badge ids
// are derived as "<game-id>-master" and live only in the rule table.
const (
	BadgeFirstGame      domain.BadgeID = "first-game"
	BadgeDedicated      domain.BadgeID = "dedicated"
	BadgeCompletionist  domain.BadgeID = "completionist"
	BadgeHighRoller     domain.BadgeID = "high-roller"
	BadgeMathWhiz       domain.BadgeID = "math-whiz"
	BadgePuzzlePro      domain.BadgeID = "puzzle-pro"
	BadgeTotalRecall    domain.BadgeID = "total-recall"
	BadgeSpeedDemon     domain.BadgeID = "speed-demon"
	BadgeMarathoner     domain.BadgeID = "marathoner"
	BadgeStreakWeek     domain.BadgeID = "streak-week"
	BadgeDailyDevotee   domain.BadgeID = "daily-devotee"
	BadgeDailyChampion  domain.BadgeID = "daily-champion"
	BadgeNightOwl       domain.BadgeID = "night-owl"
	BadgeEarlyBird      domain.BadgeID = "early-bird"
	BadgeWeekendWarrior domain.BadgeID = "weekend-warrior"
)

// predicate decides whether a badge qualifies given the already-updated
// stats, the event that triggered evaluation, and the evaluation-time wall
// clock (used only by temporal rules).
type predicate func(s *domain.UserStats, e domain.PlayEvent, now time.Time) bool

// progressFunc reports a current/target pair for the badge-progress read
// model. Only milestone and aggregate badges have one.
type progressFunc func(s *domain.UserStats) (current, target int)

// rule is one row of the declarative catalog: adding a badge means adding
// a row here, never touching evaluator control flow.
type rule struct {
	badge     domain.Badge
	qualifies predicate
	progress  progressFunc
}

// masterSpec describes a per-game score badge. LowerIsBetter flips the
// comparison for games where the score counts attempts (fewer is better).
type masterSpec struct {
	Game          domain.GameID
	Name          string
	Description   string
	Threshold     int
	LowerIsBetter bool
}

// masterSpecs holds one row per playable game. This is the bulk of the
// catalog and is expected to keep growing with the roster.
var masterSpecs = []masterSpec{
	{Game: domain.GameNumberGuess, Name: "Number Guess Master", Description: "Guess the number in 3 tries or fewer", Threshold: 3, LowerIsBetter: true},
	{Game: domain.GameMathRush, Name: "Math Rush Master", Description: "Score 30+ in Math Rush", Threshold: 30},
	{Game: domain.GameNumberCrunch, Name: "Number Crunch Master", Description: "Score 25+ in Number Crunch", Threshold: 25},
	{Game: domain.GameSequenceSolver, Name: "Sequence Solver Master", Description: "Solve 12+ sequences in one run", Threshold: 12},
	{Game: domain.GameQuickMathDuel, Name: "Quick Math Duelist", Description: "Score 20+ in Quick Math Duel", Threshold: 20},
	{Game: domain.GameMemoryMatch, Name: "Memory Match Master", Description: "Score 20+ in Memory Match", Threshold: 20},
	{Game: domain.GamePatternRecall, Name: "Pattern Recall Master", Description: "Recall a 10-step pattern", Threshold: 10},
	{Game: domain.GameSimonSays, Name: "Simon Says Master", Description: "Reach round 15 in Simon Says", Threshold: 15},
	{Game: domain.GameSnakeAvoider, Name: "Snake Avoider Master", Description: "Score 50+ in Snake Avoider", Threshold: 50},
	{Game: domain.GameTicTacToe, Name: "Tic-Tac-Toe Master", Description: "Win 5 rounds in one session", Threshold: 5},
	{Game: domain.GameSudoku, Name: "Sudoku Master", Description: "Score 100+ in Sudoku", Threshold: 100},
	{Game: domain.GameWordScramble, Name: "Word Scramble Master", Description: "Unscramble 15+ words in one run", Threshold: 15},
	{Game: domain.GameReactionTime, Name: "Lightning Reflexes", Description: "Average reaction of 250ms or better", Threshold: 250, LowerIsBetter: true},
	{Game: domain.GameWhackAMole, Name: "Whack-a-Mole Master", Description: "Score 40+ in Whack-a-Mole", Threshold: 40},
	{Game: domain.GameColorMatch, Name: "Color Match Master", Description: "Score 25+ in Color Match", Threshold: 25},
	{Game: domain.GameDoodlePad, Name: "Dedicated Doodler", Description: "Finish a doodle", Threshold: 1},
	{Game: domain.GameTypingSprint, Name: "Typing Sprint Master", Description: "Score 60+ in Typing Sprint", Threshold: 60},
	{Game: domain.GameMazeRunner, Name: "Maze Runner Master", Description: "Score 20+ in Maze Runner", Threshold: 20},
	{Game: domain.GameMinesweeper, Name: "Minesweeper Master", Description: "Score 30+ in Minesweeper", Threshold: 30},
	{Game: domain.GameRockPaperScissors, Name: "RPS Master", Description: "Win a 10-round streak", Threshold: 10},
}

// MasterBadgeID derives the per-game master badge id.
func MasterBadgeID(game domain.GameID) domain.BadgeID {
	return domain.BadgeID(string(game) + "-master")
}

// buildRules assembles the full catalog. Order is fixed, which makes
// evaluation deterministic for identical inputs.
func buildRules() []rule {
	rules := []rule{
		// Milestone badges over running totals.
		{
			badge: domain.Badge{ID: BadgeFirstGame, Name: "First Steps", Description: "Play your first game", Rarity: domain.RarityCommon, Category: domain.CategoryMilestone},
			qualifies: func(s *domain.UserStats, _ domain.PlayEvent, _ time.Time) bool {
				return s.TotalGamesPlayed >= 1
			},
			progress: func(s *domain.UserStats) (int, int) { return s.TotalGamesPlayed, 1 },
		},
		{
			badge: domain.Badge{ID: BadgeDedicated, Name: "Dedicated", Description: "Play 20 games", Rarity: domain.RarityRare, Category: domain.CategoryMilestone},
			qualifies: func(s *domain.UserStats, _ domain.PlayEvent, _ time.Time) bool {
				return s.TotalGamesPlayed >= 20
			},
			progress: func(s *domain.UserStats) (int, int) { return s.TotalGamesPlayed, 20 },
		},
		{
			badge: domain.Badge{ID: BadgeCompletionist, Name: "Completionist", Description: "Complete 50 games", Rarity: domain.RarityEpic, Category: domain.CategoryMilestone},
			qualifies: func(s *domain.UserStats, _ domain.PlayEvent, _ time.Time) bool {
				return s.GamesCompleted >= 50
			},
			progress: func(s *domain.UserStats) (int, int) { return s.GamesCompleted, 50 },
		},
		{
			badge: domain.Badge{ID: BadgeHighRoller, Name: "High Roller", Description: "Accumulate 1000 total points", Rarity: domain.RarityEpic, Category: domain.CategoryMilestone},
			qualifies: func(s *domain.UserStats, _ domain.PlayEvent, _ time.Time) bool {
				return s.TotalScore >= 1000
			},
			progress: func(s *domain.UserStats) (int, int) { return s.TotalScore, 1000 },
		},

		// Aggregate badges over named game sets.
		{
			badge: domain.Badge{ID: BadgeMathWhiz, Name: "Math Whiz", Description: "Score 200 combined points across the math games", Rarity: domain.RarityRare, Category: domain.CategoryAggregate},
			qualifies: func(s *domain.UserStats, _ domain.PlayEvent, _ time.Time) bool {
				return mathScoreSum(s) >= 200
			},
			progress: func(s *domain.UserStats) (int, int) { return mathScoreSum(s), 200 },
		},
		{
			badge: domain.Badge{ID: BadgePuzzlePro, Name: "Puzzle Pro", Description: "Play 10 puzzle games", Rarity: domain.RarityRare, Category: domain.CategoryAggregate},
			qualifies: func(s *domain.UserStats, _ domain.PlayEvent, _ time.Time) bool {
				return playCount(s, domain.PuzzleGames) >= 10
			},
			progress: func(s *domain.UserStats) (int, int) { return playCount(s, domain.PuzzleGames), 10 },
		},
		{
			badge: domain.Badge{ID: BadgeTotalRecall, Name: "Total Recall", Description: "Play every memory game at least once", Rarity: domain.RarityEpic, Category: domain.CategoryAggregate},
			qualifies: func(s *domain.UserStats, _ domain.PlayEvent, _ time.Time) bool {
				return playedAll(s, domain.MemoryGames)
			},
			progress: func(s *domain.UserStats) (int, int) { return distinctPlayed(s, domain.MemoryGames), len(domain.MemoryGames) },
		},

		// Event-local badges over the just-finished play.
		{
			badge: domain.Badge{ID: BadgeSpeedDemon, Name: "Speed Demon", Description: "Complete a game in under 2 minutes", Rarity: domain.RarityCommon, Category: domain.CategoryPerGame},
			qualifies: func(_ *domain.UserStats, e domain.PlayEvent, _ time.Time) bool {
				return e.Completed && e.Duration < 120
			},
		},
		{
			badge: domain.Badge{ID: BadgeMarathoner, Name: "Marathoner", Description: "Survive 90 seconds in Snake Avoider", Rarity: domain.RarityRare, Category: domain.CategoryPerGame},
			qualifies: func(_ *domain.UserStats, e domain.PlayEvent, _ time.Time) bool {
				return e.GameID == domain.GameSnakeAvoider && e.Duration >= 90
			},
		},
		{
			badge: domain.Badge{ID: BadgeStreakWeek, Name: "Week Streak", Description: "Play 7 days in a row", Rarity: domain.RarityLegendary, Category: domain.CategoryMilestone},
			qualifies: func(s *domain.UserStats, _ domain.PlayEvent, _ time.Time) bool {
				return s.PlayStreak >= 7
			},
			progress: func(s *domain.UserStats) (int, int) { return s.PlayStreak, 7 },
		},
		{
			badge: domain.Badge{ID: BadgeDailyDevotee, Name: "Daily Devotee", Description: "Complete a daily challenge", Rarity: domain.RarityRare, Category: domain.CategoryChallenge},
			qualifies: func(_ *domain.UserStats, e domain.PlayEvent, _ time.Time) bool {
				return e.GameID == domain.GameDailyBonus
			},
		},

		// Temporal badges, keyed off the wall clock at evaluation time.
		{
			badge: domain.Badge{ID: BadgeNightOwl, Name: "Night Owl", Description: "Play between midnight and 5am", Rarity: domain.RarityRare, Category: domain.CategoryTemporal},
			qualifies: func(_ *domain.UserStats, _ domain.PlayEvent, now time.Time) bool {
				return now.Hour() < 5
			},
		},
		{
			badge: domain.Badge{ID: BadgeEarlyBird, Name: "Early Bird", Description: "Play between 5am and 8am", Rarity: domain.RarityRare, Category: domain.CategoryTemporal},
			qualifies: func(_ *domain.UserStats, _ domain.PlayEvent, now time.Time) bool {
				return now.Hour() >= 5 && now.Hour() < 8
			},
		},
		{
			badge: domain.Badge{ID: BadgeWeekendWarrior, Name: "Weekend Warrior", Description: "Play on a weekend", Rarity: domain.RarityCommon, Category: domain.CategoryTemporal},
			qualifies: func(_ *domain.UserStats, _ domain.PlayEvent, now time.Time) bool {
				return now.Weekday() == time.Saturday || now.Weekday() == time.Sunday
			},
		},
	}

	for _, spec := range masterSpecs {
		spec := spec
		rules = append(rules, rule{
			badge: domain.Badge{
				ID:          MasterBadgeID(spec.Game),
				Name:        spec.Name,
				Description: spec.Description,
				Rarity:      domain.RarityRare,
				Category:    domain.CategoryPerGame,
			},
			qualifies: func(_ *domain.UserStats, e domain.PlayEvent, _ time.Time) bool {
				if e.GameID != spec.Game || !e.Completed {
					return false
				}
				if spec.LowerIsBetter {
					return e.Score <= spec.Threshold
				}
				return e.Score >= spec.Threshold
			},
		})
	}

	// The daily-champion badge is granted directly by challenge rewards,
	// never by a predicate, but it still needs a catalog entry so the
	// badge page can render it.
	rules = append(rules, rule{
		badge: domain.Badge{ID: BadgeDailyChampion, Name: "Daily Champion", Description: "Earn a badge reward from a daily challenge", Rarity: domain.RarityLegendary, Category: domain.CategoryChallenge},
		qualifies: func(_ *domain.UserStats, _ domain.PlayEvent, _ time.Time) bool {
			return false
		},
	})

	return rules
}

func mathScoreSum(s *domain.UserStats) int {
	inSet := make(map[domain.GameID]bool, len(domain.MathGames))
	for _, g := range domain.MathGames {
		inSet[g] = true
	}
	sum := 0
	for _, entry := range s.GameHistory {
		if inSet[entry.GameID] {
			sum += entry.Score
		}
	}
	return sum
}

func playCount(s *domain.UserStats, set []domain.GameID) int {
	count := 0
	for _, g := range set {
		count += s.GamesByType[g]
	}
	return count
}

func playedAll(s *domain.UserStats, set []domain.GameID) bool {
	for _, g := range set {
		if s.GamesByType[g] < 1 {
			return false
		}
	}
	return true
}

func distinctPlayed(s *domain.UserStats, set []domain.GameID) int {
	count := 0
	for _, g := range set {
		if s.GamesByType[g] >= 1 {
			count++
		}
	}
	return count
}
