package stats

import (
	"encoding/json"
	"strings"

	"github.com/minigamehub/progress-engine/pkg/domain"
	"github.com/minigamehub/progress-engine/pkg/storage"
)

// QuotaCompactor is the bounded cleanup hook registered with the storage
// gateway. When a stats write overflows the quota it trims the history list
// down to the cap (front entries only, counters are untouched) and offers
// the user's daily-challenge dataset for deletion as the auxiliary
// low-value dataset.
type QuotaCompactor struct {
	historyCap int
}

// NewQuotaCompactor creates a compactor keeping at most historyCap entries.
func NewQuotaCompactor(historyCap int) *QuotaCompactor {
	if historyCap < 1 {
		historyCap = 1
	}
	return &QuotaCompactor{historyCap: historyCap}
}

// Compact implements storage.Compactor. Only stats payloads can be trimmed;
// for any other key there is nothing safe to shrink.
func (c *QuotaCompactor) Compact(key, value string) (string, []string, bool) {
	if !strings.HasPrefix(key, storage.KeyPrefixStats) {
		return "", nil, false
	}

	var stats domain.UserStats
	if err := json.Unmarshal([]byte(value), &stats); err != nil {
		return "", nil, false
	}

	if excess := len(stats.GameHistory) - c.historyCap; excess > 0 {
		stats.GameHistory = stats.GameHistory[excess:]
	}

	trimmed, err := json.Marshal(&stats)
	if err != nil {
		return "", nil, false
	}

	// Derive the companion daily-challenge key from the stats key suffix.
	userID := strings.TrimPrefix(strings.TrimPrefix(key, storage.KeyPrefixStats), "_")
	dropKeys := []string{storage.DailyKey(userID)}

	return string(trimmed), dropKeys, true
}
