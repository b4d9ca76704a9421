package storage

import (
	"log/slog"
	"sync"

	"github.com/minigamehub/progress-engine/pkg/errors"
)

// MemoryGateway is an in-process Gateway. It backs tests, and is the
// fallback medium the engine switches to when the configured backend
// reports unavailable, so play can continue without persistence.
//
// A quota of zero means unlimited; a positive quota caps the total stored
// value bytes, mirroring the constrained media the engine targets.
type MemoryGateway struct {
	mu         sync.Mutex
	data       map[string]string
	quotaBytes int
	compactor  Compactor
	logger     *slog.Logger

	// Unavailable forces Available() to report false, for tests that need
	// to exercise the degraded path.
	Unavailable bool
}

// NewMemoryGateway creates an in-memory gateway with the given quota.
func NewMemoryGateway(quotaBytes int, logger *slog.Logger) *MemoryGateway {
	return &MemoryGateway{
		data:       make(map[string]string),
		quotaBytes: quotaBytes,
		logger:     logger,
	}
}

// SetCompactor registers the domain-layer cleanup hook.
func (g *MemoryGateway) SetCompactor(c Compactor) { g.compactor = c }

// Get returns the stored value, or ("", false) when absent.
func (g *MemoryGateway) Get(key string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, ok := g.data[key]
	return v, ok
}

// Set stores the value, running the one-shot compaction retry on quota
// overflow.
func (g *MemoryGateway) Set(key, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return setWithRecovery((*memoryRaw)(g), g.compactor, g.logger, key, value)
}

// Delete removes the key.
func (g *MemoryGateway) Delete(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.data, key)
	return nil
}

// Available reports whether the gateway accepts writes.
func (g *MemoryGateway) Available() bool {
	if g.Unavailable {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	return probe((*memoryRaw)(g))
}

// memoryRaw exposes the lock-free backend surface to setWithRecovery.
// Callers hold g.mu.
type memoryRaw MemoryGateway

func (r *memoryRaw) put(key, value string) error {
	if r.quotaBytes > 0 {
		used := 0
		for k, v := range r.data {
			if k == key {
				continue
			}
			used += len(v)
		}
		if used+len(value) > r.quotaBytes {
			return errors.ErrQuotaExceeded(key)
		}
	}
	r.data[key] = value
	return nil
}

func (r *memoryRaw) del(key string) error {
	delete(r.data, key)
	return nil
}
