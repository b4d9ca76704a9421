package storage

import (
	"log/slog"

	"github.com/minigamehub/progress-engine/pkg/errors"
)

// Storage key prefixes. Each dataset gets its own prefix, suffixed by user
// id when one is supplied; the bare prefix is the shared anonymous record.
const (
	KeyPrefixStats = "minigame_stats"
	KeyPrefixPrefs = "minigame_prefs"
	KeyPrefixDaily = "minigame_daily"
)

func userKey(prefix, userID string) string {
	if userID == "" {
		return prefix
	}
	return prefix + "_" + userID
}

// StatsKey returns the storage key for a user's stats record.
func StatsKey(userID string) string { return userKey(KeyPrefixStats, userID) }

// PrefsKey returns the storage key for a user's preferences record.
func PrefsKey(userID string) string { return userKey(KeyPrefixPrefs, userID) }

// DailyKey returns the storage key for a user's daily-challenge dataset.
func DailyKey(userID string) string { return userKey(KeyPrefixDaily, userID) }

// Gateway is the safe read/write surface over the underlying key-value
// medium. It has no knowledge of domain entities.
//
// Get never fails: misses and access errors both read as absent (access
// errors are logged by the implementation). Set returns nil or a typed
// *errors.ProgressError (STORAGE_QUOTA_EXCEEDED, STORAGE_BLOCKED,
// STORAGE_ERROR). Callers must not silently drop data on failure; they
// surface the error upward.
type Gateway interface {
	// Get returns the stored value and true, or ("", false) when absent.
	Get(key string) (string, bool)

	// Set stores the value. On quota overflow it runs one bounded cleanup
	// pass through the registered Compactor and retries exactly once before
	// reporting STORAGE_QUOTA_EXCEEDED.
	Set(key, value string) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key string) error

	// Available performs a cheap write+delete probe with a sentinel key.
	// Callers treat storage as possibly absent and degrade to in-memory
	// operation when this returns false.
	Available() bool
}

// Compactor is the bounded cleanup hook the domain layer registers with a
// gateway. The gateway itself stays ignorant of entity shapes: when a write
// hits the quota, it asks the compactor for a smaller replacement value and
// a list of auxiliary keys that may be dropped entirely, then retries once.
type Compactor interface {
	// Compact returns a trimmed replacement for the value being written and
	// any keys whose datasets may be discarded to free space. ok is false
	// when nothing can be trimmed, in which case the gateway fails the
	// write immediately.
	Compact(key, value string) (trimmed string, dropKeys []string, ok bool)
}

// sentinelKey is used by availability probes.
const sentinelKey = "minigame_probe"

// rawStore is the minimal backend surface shared by gateway implementations.
// put returns a typed *errors.ProgressError on failure.
type rawStore interface {
	put(key, value string) error
	del(key string) error
}

// setWithRecovery implements the common quota-recovery path: attempt the
// write, and on quota failure run exactly one compaction pass (trim the
// value, drop auxiliary keys) and retry exactly once.
func setWithRecovery(raw rawStore, compactor Compactor, logger *slog.Logger, key, value string) error {
	err := raw.put(key, value)
	if err == nil || !errors.IsQuotaExceeded(err) {
		return err
	}

	if compactor == nil {
		return errors.ErrQuotaExceeded(key)
	}

	trimmed, dropKeys, ok := compactor.Compact(key, value)
	if !ok {
		return errors.ErrQuotaExceeded(key)
	}

	for _, dropKey := range dropKeys {
		if delErr := raw.del(dropKey); delErr != nil {
			logger.Warn("cleanup delete failed", "key", dropKey, "error", delErr)
		}
	}
	logger.Warn("storage quota hit, retrying with compacted payload",
		"key", key,
		"original_bytes", len(value),
		"compacted_bytes", len(trimmed),
		"dropped_keys", len(dropKeys),
	)

	if err := raw.put(key, trimmed); err != nil {
		if errors.IsQuotaExceeded(err) {
			return errors.ErrQuotaExceeded(key)
		}
		return err
	}
	return nil
}

// probe runs the sentinel write+delete round trip shared by Available
// implementations.
func probe(raw rawStore) bool {
	if err := raw.put(sentinelKey, "1"); err != nil {
		return false
	}
	return raw.del(sentinelKey) == nil
}
