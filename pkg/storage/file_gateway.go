package storage

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minigamehub/progress-engine/pkg/errors"
)

// FileGateway stores one JSON document per key in a data directory. It is
// the default single-device medium for the CLI and embedded use.
type FileGateway struct {
	mu         sync.Mutex
	dir        string
	quotaBytes int
	compactor  Compactor
	logger     *slog.Logger
}

// NewFileGateway creates the data directory if needed and returns a
// file-backed gateway. A quota of zero means unlimited.
func NewFileGateway(dir string, quotaBytes int, logger *slog.Logger) (*FileGateway, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		if os.IsPermission(err) {
			return nil, errors.ErrStorageBlocked(err)
		}
		return nil, errors.ErrStorage("create data directory", err)
	}
	return &FileGateway{
		dir:        dir,
		quotaBytes: quotaBytes,
		logger:     logger,
	}, nil
}

// SetCompactor registers the domain-layer cleanup hook.
func (g *FileGateway) SetCompactor(c Compactor) { g.compactor = c }

// Get returns the stored value, or ("", false) when absent. Read errors
// are logged and read as absent, per the gateway contract.
func (g *FileGateway) Get(key string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	data, err := os.ReadFile(g.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			g.logger.Warn("storage read failed", "key", key, "error", err)
		}
		return "", false
	}
	return string(data), true
}

// Set stores the value, running the one-shot compaction retry on quota
// overflow.
func (g *FileGateway) Set(key, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return setWithRecovery(&fileRaw{g}, g.compactor, g.logger, key, value)
}

// Delete removes the key.
func (g *FileGateway) Delete(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	return (&fileRaw{g}).del(key)
}

// Available probes the directory with a sentinel write+delete.
func (g *FileGateway) Available() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return probe(&fileRaw{g})
}

func (g *FileGateway) path(key string) string {
	return filepath.Join(g.dir, sanitizeKey(key)+".json")
}

// usedBytes sums the sizes of stored documents, excluding the key about to
// be rewritten.
func (g *FileGateway) usedBytes(excludeKey string) int {
	entries, err := os.ReadDir(g.dir)
	if err != nil {
		return 0
	}
	exclude := sanitizeKey(excludeKey) + ".json"
	total := 0
	for _, e := range entries {
		if e.IsDir() || e.Name() == exclude || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if info, err := e.Info(); err == nil {
			total += int(info.Size())
		}
	}
	return total
}

// sanitizeKey maps a storage key onto a safe file name. Keys are built from
// fixed prefixes plus externally supplied user ids, so anything outside a
// conservative character set is replaced.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
}

// fileRaw exposes the backend surface to setWithRecovery. Callers hold g.mu.
type fileRaw struct {
	g *FileGateway
}

func (r *fileRaw) put(key, value string) error {
	g := r.g
	if g.quotaBytes > 0 && g.usedBytes(key)+len(value) > g.quotaBytes {
		return errors.ErrQuotaExceeded(key)
	}
	if err := os.WriteFile(g.path(key), []byte(value), 0o644); err != nil {
		if os.IsPermission(err) {
			return errors.ErrStorageBlocked(err)
		}
		return errors.ErrStorage("write "+key, err)
	}
	return nil
}

func (r *fileRaw) del(key string) error {
	err := os.Remove(r.g.path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.ErrStorage("delete "+key, err)
	}
	return nil
}
