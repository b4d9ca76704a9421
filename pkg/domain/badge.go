package domain

// BadgeID identifies a badge from the static catalog.
type BadgeID string

// Rarity indicates how hard a badge is to earn, for display purposes only.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// IsValid returns true if the rarity is a known tier.
func (r Rarity) IsValid() bool {
	switch r {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	default:
		return false
	}
}

// BadgeCategory groups related badges in the UI.
type BadgeCategory string

const (
	CategoryMilestone BadgeCategory = "milestone"
	CategoryAggregate BadgeCategory = "aggregate"
	CategoryPerGame   BadgeCategory = "per-game"
	CategoryTemporal  BadgeCategory = "temporal"
	CategoryChallenge BadgeCategory = "challenge"
)

// Badge is a static catalog entry. The catalog is read-only reference data;
// user state only ever records badge ids.
type Badge struct {
	ID          BadgeID       `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Rarity      Rarity        `json:"rarity"`
	Category    BadgeCategory `json:"category"`
}

// RewardType distinguishes the two daily-challenge reward shapes.
type RewardType string

const (
	// RewardBonus grants bonus points, applied as a synthetic daily-bonus play.
	RewardBonus RewardType = "bonus"

	// RewardBadge grants a badge directly.
	RewardBadge RewardType = "badge"
)

// Reward describes what completing a daily challenge grants.
type Reward struct {
	Type        RewardType `json:"type"`
	BonusPoints int        `json:"bonusPoints,omitempty"`
	BadgeID     BadgeID    `json:"badgeId,omitempty"`
}

// DailyChallenge is the per-day, per-user mini-objective. Targeting fields
// are immutable once created; only Completed mutates.
//
// Exactly one of TargetScore / TargetCompletion may be set. When neither is
// set, any play of the target game satisfies the challenge.
type DailyChallenge struct {
	ID               string `json:"id"`
	Date             string `json:"date"` // YYYY-MM-DD
	GameID           GameID `json:"gameId"`
	TargetScore      *int   `json:"targetScore,omitempty"`
	TargetCompletion *bool  `json:"targetCompletion,omitempty"`
	Reward           Reward `json:"reward"`
	Completed        bool   `json:"completed"`
}

// ChallengeLog is the persisted daily-challenge dataset: the retained
// challenge records for a user, newest last. Records older than seven days
// are pruned opportunistically on write.
type ChallengeLog struct {
	Challenges []*DailyChallenge `json:"challenges"`
}

// ForDate returns the retained challenge for the given date, or nil.
func (l *ChallengeLog) ForDate(date string) *DailyChallenge {
	for _, c := range l.Challenges {
		if c.Date == date {
			return c
		}
	}
	return nil
}
