package badges

import (
	"testing"
	"time"

	"github.com/minigamehub/progress-engine/pkg/domain"
)

// weekdayNoon is a Wednesday at 12:00, outside every temporal rule window.
var weekdayNoon = time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestEvaluator() *Evaluator {
	return NewEvaluatorAt(fixedClock(weekdayNoon))
}

func containsBadge(ids []domain.BadgeID, want domain.BadgeID) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}

func TestCatalog_UniqueIDsAndValidRarities(t *testing.T) {
	e := newTestEvaluator()

	seen := make(map[domain.BadgeID]bool)
	for _, b := range e.Catalog() {
		if b.ID == "" {
			t.Error("catalog contains a badge with empty id")
		}
		if seen[b.ID] {
			t.Errorf("duplicate badge id %q in catalog", b.ID)
		}
		seen[b.ID] = true

		if !b.Rarity.IsValid() {
			t.Errorf("badge %q has invalid rarity %q", b.ID, b.Rarity)
		}
		if b.Name == "" || b.Description == "" {
			t.Errorf("badge %q is missing name or description", b.ID)
		}
	}

	// Every playable game must have a master badge row.
	for _, g := range domain.AllGames {
		if !seen[MasterBadgeID(g)] {
			t.Errorf("no master badge for game %q", g)
		}
	}
}

func TestEvaluate_FirstGameScenario(t *testing.T) {
	e := newTestEvaluator()

	// Fresh user plays number-guess: score 3, completed, 45s. Stats are
	// already updated for the event when the evaluator runs.
	stats := domain.NewUserStats("u1")
	stats.TotalGamesPlayed = 1
	stats.GamesCompleted = 1
	stats.TotalScore = 3
	stats.PlayStreak = 1
	stats.GamesByType[domain.GameNumberGuess] = 1
	stats.Achievements.HighScores[domain.GameNumberGuess] = 3

	event := domain.PlayEvent{GameID: domain.GameNumberGuess, Score: 3, Completed: true, Duration: 45}
	got := e.Evaluate(stats, event)

	for _, want := range []domain.BadgeID{BadgeFirstGame, BadgeSpeedDemon, MasterBadgeID(domain.GameNumberGuess)} {
		if !containsBadge(got, want) {
			t.Errorf("Evaluate() missing %q, got %v", want, got)
		}
	}
	if containsBadge(got, BadgeDedicated) {
		t.Errorf("Evaluate() emitted dedicated after a single game")
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	e := newTestEvaluator()

	stats := domain.NewUserStats("u1")
	stats.TotalGamesPlayed = 1
	stats.GamesCompleted = 1
	event := domain.PlayEvent{GameID: domain.GameSudoku, Score: 150, Completed: true, Duration: 60}

	first := e.Evaluate(stats, event)
	second := e.Evaluate(stats, event)

	if len(first) != len(second) {
		t.Fatalf("repeated Evaluate() lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("repeated Evaluate() differs at %d: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestEvaluate_HeldBadgesNeverReEmitted(t *testing.T) {
	e := newTestEvaluator()

	stats := domain.NewUserStats("u1")
	stats.TotalGamesPlayed = 5
	stats.Badges = []domain.BadgeID{BadgeFirstGame, BadgeSpeedDemon}

	event := domain.PlayEvent{GameID: domain.GameColorMatch, Score: 1, Completed: true, Duration: 30}
	got := e.Evaluate(stats, event)

	if containsBadge(got, BadgeFirstGame) || containsBadge(got, BadgeSpeedDemon) {
		t.Errorf("Evaluate() re-emitted held badges: %v", got)
	}
}

func TestEvaluate_DedicatedAtExactlyTwenty(t *testing.T) {
	e := newTestEvaluator()

	event := domain.PlayEvent{GameID: domain.GameTicTacToe, Score: 1, Completed: true, Duration: 200}

	stats := domain.NewUserStats("u1")
	stats.TotalGamesPlayed = 19
	if containsBadge(e.Evaluate(stats, event), BadgeDedicated) {
		t.Error("dedicated emitted at 19 games")
	}

	stats.TotalGamesPlayed = 20
	if !containsBadge(e.Evaluate(stats, event), BadgeDedicated) {
		t.Error("dedicated not emitted at 20 games")
	}
}

func TestEvaluate_AggregateRules(t *testing.T) {
	e := newTestEvaluator()
	event := domain.PlayEvent{GameID: domain.GameMathRush, Score: 10, Completed: false, Duration: 300}

	t.Run("math whiz sums history scores over the math set", func(t *testing.T) {
		stats := domain.NewUserStats("u1")
		stats.GameHistory = []domain.GameHistoryEntry{
			{GameID: domain.GameMathRush, Score: 90},
			{GameID: domain.GameNumberCrunch, Score: 80},
			{GameID: domain.GameSudoku, Score: 500}, // not in the math set
			{GameID: domain.GameQuickMathDuel, Score: 29},
		}
		if containsBadge(e.Evaluate(stats, event), BadgeMathWhiz) {
			t.Error("math-whiz emitted at 199 combined math points")
		}

		stats.GameHistory = append(stats.GameHistory, domain.GameHistoryEntry{GameID: domain.GameSequenceSolver, Score: 1})
		if !containsBadge(e.Evaluate(stats, event), BadgeMathWhiz) {
			t.Error("math-whiz not emitted at 200 combined math points")
		}
	})

	t.Run("puzzle pro counts plays over the puzzle set", func(t *testing.T) {
		stats := domain.NewUserStats("u1")
		stats.GamesByType[domain.GameSudoku] = 4
		stats.GamesByType[domain.GameMinesweeper] = 5
		if containsBadge(e.Evaluate(stats, event), BadgePuzzlePro) {
			t.Error("puzzle-pro emitted at 9 puzzle plays")
		}

		stats.GamesByType[domain.GameMazeRunner] = 1
		if !containsBadge(e.Evaluate(stats, event), BadgePuzzlePro) {
			t.Error("puzzle-pro not emitted at 10 puzzle plays")
		}
	})

	t.Run("total recall needs every memory game", func(t *testing.T) {
		stats := domain.NewUserStats("u1")
		stats.GamesByType[domain.GameMemoryMatch] = 3
		stats.GamesByType[domain.GamePatternRecall] = 1
		if containsBadge(e.Evaluate(stats, event), BadgeTotalRecall) {
			t.Error("total-recall emitted with one memory game unplayed")
		}

		stats.GamesByType[domain.GameSimonSays] = 1
		if !containsBadge(e.Evaluate(stats, event), BadgeTotalRecall) {
			t.Error("total-recall not emitted with all memory games played")
		}
	})
}

func TestEvaluate_EventLocalRules(t *testing.T) {
	e := newTestEvaluator()
	stats := domain.NewUserStats("u1")

	tests := []struct {
		name  string
		event domain.PlayEvent
		want  domain.BadgeID
		emit  bool
	}{
		{
			name:  "speed demon on fast completion",
			event: domain.PlayEvent{GameID: domain.GameColorMatch, Score: 1, Completed: true, Duration: 119},
			want:  BadgeSpeedDemon,
			emit:  true,
		},
		{
			name:  "no speed demon without completion",
			event: domain.PlayEvent{GameID: domain.GameColorMatch, Score: 1, Completed: false, Duration: 30},
			want:  BadgeSpeedDemon,
			emit:  false,
		},
		{
			name:  "no speed demon at exactly 120s",
			event: domain.PlayEvent{GameID: domain.GameColorMatch, Score: 1, Completed: true, Duration: 120},
			want:  BadgeSpeedDemon,
			emit:  false,
		},
		{
			name:  "marathoner at 90s in snake-avoider",
			event: domain.PlayEvent{GameID: domain.GameSnakeAvoider, Score: 5, Completed: false, Duration: 90},
			want:  BadgeMarathoner,
			emit:  true,
		},
		{
			name:  "no marathoner in other games",
			event: domain.PlayEvent{GameID: domain.GameSudoku, Score: 5, Completed: false, Duration: 400},
			want:  BadgeMarathoner,
			emit:  false,
		},
		{
			name:  "daily devotee on bonus event",
			event: domain.PlayEvent{GameID: domain.GameDailyBonus, Score: 50, Completed: true, Duration: 0},
			want:  BadgeDailyDevotee,
			emit:  true,
		},
		{
			name:  "lower-is-better master misses above threshold",
			event: domain.PlayEvent{GameID: domain.GameNumberGuess, Score: 4, Completed: true, Duration: 200},
			want:  MasterBadgeID(domain.GameNumberGuess),
			emit:  false,
		},
		{
			name:  "reaction-time master at or below threshold",
			event: domain.PlayEvent{GameID: domain.GameReactionTime, Score: 250, Completed: true, Duration: 200},
			want:  MasterBadgeID(domain.GameReactionTime),
			emit:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Evaluate(stats, tt.event)
			if containsBadge(got, tt.want) != tt.emit {
				t.Errorf("Evaluate() emit %q = %v, want %v (got %v)", tt.want, !tt.emit, tt.emit, got)
			}
		})
	}
}

func TestEvaluate_TemporalRules(t *testing.T) {
	stats := domain.NewUserStats("u1")
	event := domain.PlayEvent{GameID: domain.GameSudoku, Score: 1, Completed: false, Duration: 300}

	tests := []struct {
		name string
		now  time.Time
		want domain.BadgeID
		emit bool
	}{
		{name: "night owl at 3am", now: time.Date(2026, 1, 7, 3, 0, 0, 0, time.UTC), want: BadgeNightOwl, emit: true},
		{name: "no night owl at 5am", now: time.Date(2026, 1, 7, 5, 0, 0, 0, time.UTC), want: BadgeNightOwl, emit: false},
		{name: "early bird at 5am", now: time.Date(2026, 1, 7, 5, 0, 0, 0, time.UTC), want: BadgeEarlyBird, emit: true},
		{name: "no early bird at 8am", now: time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC), want: BadgeEarlyBird, emit: false},
		{name: "weekend warrior on Saturday", now: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC), want: BadgeWeekendWarrior, emit: true},
		{name: "weekend warrior on Sunday", now: time.Date(2026, 1, 11, 12, 0, 0, 0, time.UTC), want: BadgeWeekendWarrior, emit: true},
		{name: "no weekend warrior midweek", now: weekdayNoon, want: BadgeWeekendWarrior, emit: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEvaluatorAt(fixedClock(tt.now))
			got := e.Evaluate(stats, event)
			if containsBadge(got, tt.want) != tt.emit {
				t.Errorf("Evaluate() emit %q = %v, want %v", tt.want, !tt.emit, tt.emit)
			}
		})
	}
}

func TestEvaluate_DailyChampionNeverSelfAwards(t *testing.T) {
	e := newTestEvaluator()

	stats := domain.NewUserStats("u1")
	stats.TotalGamesPlayed = 100
	stats.GamesCompleted = 100
	stats.TotalScore = 100000
	event := domain.PlayEvent{GameID: domain.GameDailyBonus, Score: 500, Completed: true, Duration: 0}

	if containsBadge(e.Evaluate(stats, event), BadgeDailyChampion) {
		t.Error("daily-champion must only be granted by challenge rewards")
	}
}

func TestProgress_ReadModel(t *testing.T) {
	e := newTestEvaluator()

	stats := domain.NewUserStats("u1")
	stats.TotalGamesPlayed = 35 // past the dedicated target
	stats.Badges = []domain.BadgeID{BadgeFirstGame, BadgeDedicated}

	progress := e.Progress(stats)
	if len(progress) != len(e.Catalog()) {
		t.Fatalf("Progress() returned %d entries, want %d", len(progress), len(e.Catalog()))
	}

	byID := make(map[domain.BadgeID]BadgeProgress)
	for _, p := range progress {
		byID[p.Badge.ID] = p
	}

	if !byID[BadgeFirstGame].Unlocked {
		t.Error("first-game should be marked unlocked")
	}
	dedicated := byID[BadgeDedicated]
	if !dedicated.Unlocked || dedicated.Current != 20 || dedicated.Target != 20 {
		t.Errorf("dedicated progress = %+v, want unlocked with current clamped to target", dedicated)
	}
	completionist := byID[BadgeCompletionist]
	if completionist.Unlocked || completionist.Current != 0 || completionist.Target != 50 {
		t.Errorf("completionist progress = %+v, want locked 0/50", completionist)
	}
}
