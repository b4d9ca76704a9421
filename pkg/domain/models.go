package domain

// GameID identifies one of the mini-games in the fixed roster.
// The set is closed: events carrying an unknown id are rejected at the
// engine boundary instead of silently growing per-game aggregate maps.
type GameID string

const (
	GameNumberGuess       GameID = "number-guess"
	GameMathRush          GameID = "math-rush"
	GameNumberCrunch      GameID = "number-crunch"
	GameSequenceSolver    GameID = "sequence-solver"
	GameQuickMathDuel     GameID = "quick-math-duel"
	GameMemoryMatch       GameID = "memory-match"
	GamePatternRecall     GameID = "pattern-recall"
	GameSimonSays         GameID = "simon-says"
	GameSnakeAvoider      GameID = "snake-avoider"
	GameTicTacToe         GameID = "tic-tac-toe"
	GameSudoku            GameID = "sudoku"
	GameWordScramble      GameID = "word-scramble"
	GameReactionTime      GameID = "reaction-time"
	GameWhackAMole        GameID = "whack-a-mole"
	GameColorMatch        GameID = "color-match"
	GameDoodlePad         GameID = "doodle-pad"
	GameTypingSprint      GameID = "typing-sprint"
	GameMazeRunner        GameID = "maze-runner"
	GameMinesweeper       GameID = "minesweeper"
	GameRockPaperScissors GameID = "rock-paper-scissors"

	// GameDailyBonus is the synthetic id used when a daily challenge reward
	// feeds bonus points back through the stats store. It is a valid event
	// source but is not part of the playable roster.
	GameDailyBonus GameID = "daily-bonus"
)

// AllGames lists every playable game id (excludes the synthetic daily-bonus id).
var AllGames = []GameID{
	GameNumberGuess,
	GameMathRush,
	GameNumberCrunch,
	GameSequenceSolver,
	GameQuickMathDuel,
	GameMemoryMatch,
	GamePatternRecall,
	GameSimonSays,
	GameSnakeAvoider,
	GameTicTacToe,
	GameSudoku,
	GameWordScramble,
	GameReactionTime,
	GameWhackAMole,
	GameColorMatch,
	GameDoodlePad,
	GameTypingSprint,
	GameMazeRunner,
	GameMinesweeper,
	GameRockPaperScissors,
}

// IsValid returns true if the game id is part of the playable roster.
// The synthetic daily-bonus id is deliberately excluded: the UI boundary
// must reject it, and only the stats store accepts it as the carrier for
// challenge bonus points.
func (g GameID) IsValid() bool {
	for _, id := range AllGames {
		if g == id {
			return true
		}
	}
	return false
}

// Named game sets used by aggregate badge rules.
var (
	// MathGames feed the combined math score aggregate.
	MathGames = []GameID{GameMathRush, GameNumberCrunch, GameSequenceSolver, GameQuickMathDuel}

	// MemoryGames must each be played at least once for the memory collection badge.
	MemoryGames = []GameID{GameMemoryMatch, GamePatternRecall, GameSimonSays}

	// PuzzleGames feed the combined puzzle play count aggregate.
	PuzzleGames = []GameID{GameSudoku, GameMinesweeper, GameMazeRunner, GameWordScramble, GameTicTacToe}
)

// PlayEvent is the tuple the game/UI layer hands to the engine when a game
// finishes. Duration is in seconds, Timestamp in epoch milliseconds.
type PlayEvent struct {
	GameID    GameID `json:"gameId"`
	Score     int    `json:"score"`
	Completed bool   `json:"completed"`
	Duration  int    `json:"duration"`
	Timestamp int64  `json:"timestamp"`
}

// GameHistoryEntry is one recorded play. Entries are immutable once appended;
// the list may only ever be truncated from the front under storage pressure.
type GameHistoryEntry struct {
	GameID    GameID `json:"gameId"`
	Score     int    `json:"score"`
	Completed bool   `json:"completed"`
	Timestamp int64  `json:"timestamp"`
	Duration  int    `json:"duration"`
}

// Achievements holds the sub-aggregates maintained alongside the main counters.
type Achievements struct {
	PerfectGames    int            `json:"perfectGames"`
	FastCompletions int            `json:"fastCompletions"`
	HighScores      map[GameID]int `json:"highScores"`
}

// UserStats is the per-user aggregate record owned by the stats store.
//
// Counters are monotonically non-decreasing, Badges is append-only, and
// GameHistory keeps insertion order with the newest entry last. History
// truncation under storage pressure never touches the counters.
type UserStats struct {
	UserID           string             `json:"userId"`
	UserName         string             `json:"userName"`
	TotalGamesPlayed int                `json:"totalGamesPlayed"`
	GamesCompleted   int                `json:"gamesCompleted"`
	TotalScore       int                `json:"totalScore"`
	Badges           []BadgeID          `json:"badges"`
	GameHistory      []GameHistoryEntry `json:"gameHistory"`
	LastPlayedDate   string             `json:"lastPlayedDate"` // YYYY-MM-DD, empty until first play
	PlayStreak       int                `json:"playStreak"`
	GamesByType      map[GameID]int     `json:"gamesByType"`
	Achievements     Achievements       `json:"achievements"`
}

// NewUserStats returns a freshly initialized record for a user id.
func NewUserStats(userID string) *UserStats {
	return &UserStats{
		UserID:      userID,
		UserName:    "Player",
		Badges:      []BadgeID{},
		GameHistory: []GameHistoryEntry{},
		GamesByType: map[GameID]int{},
		Achievements: Achievements{
			HighScores: map[GameID]int{},
		},
	}
}

// HasBadge returns true if the badge id is already present.
func (s *UserStats) HasBadge(id BadgeID) bool {
	for _, b := range s.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// AddBadge appends the badge id if not already held and reports whether it
// was added. Badges never shrink, so this is the only mutation path.
func (s *UserStats) AddBadge(id BadgeID) bool {
	if s.HasBadge(id) {
		return false
	}
	s.Badges = append(s.Badges, id)
	return true
}

// Preferences is the auxiliary per-user settings dataset. It is the
// low-value dataset the storage gateway may drop under quota pressure.
type Preferences struct {
	Theme         string `json:"theme"`
	SoundEnabled  bool   `json:"soundEnabled"`
	ReducedMotion bool   `json:"reducedMotion"`
}

// DefaultPreferences returns the preferences applied to a fresh user.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Theme:        "system",
		SoundEnabled: true,
	}
}
