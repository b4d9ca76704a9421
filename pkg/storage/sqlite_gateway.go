package storage

import (
	"database/sql"
	"log/slog"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/minigamehub/progress-engine/pkg/errors"
)

// SQLiteGateway stores key-value pairs in a local SQLite database. This is
// the durable single-device medium for desktop deployments.
type SQLiteGateway struct {
	db         *sql.DB
	quotaBytes int
	compactor  Compactor
	logger     *slog.Logger
}

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS progress_kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
`

// OpenSQLiteGateway opens (creating if necessary) the database at path and
// applies the schema. A quota of zero means unlimited.
func OpenSQLiteGateway(path string, quotaBytes int, logger *slog.Logger) (*SQLiteGateway, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.ErrStorageBlocked(err)
	}
	return NewSQLiteGateway(db, quotaBytes, logger)
}

// NewSQLiteGateway wraps an existing connection. The schema is applied
// immediately; a failure here means the medium is unusable.
func NewSQLiteGateway(db *sql.DB, quotaBytes int, logger *slog.Logger) (*SQLiteGateway, error) {
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, errors.ErrStorageBlocked(err)
	}
	return &SQLiteGateway{
		db:         db,
		quotaBytes: quotaBytes,
		logger:     logger,
	}, nil
}

// SetCompactor registers the domain-layer cleanup hook.
func (g *SQLiteGateway) SetCompactor(c Compactor) { g.compactor = c }

// Get returns the stored value, or ("", false) when absent. Query errors
// are logged and read as absent, per the gateway contract.
func (g *SQLiteGateway) Get(key string) (string, bool) {
	var value string
	err := g.db.QueryRow(`SELECT value FROM progress_kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		g.logger.Warn("storage read failed", "key", key, "error", err)
		return "", false
	}
	return value, true
}

// Set stores the value, running the one-shot compaction retry on quota
// overflow.
func (g *SQLiteGateway) Set(key, value string) error {
	return setWithRecovery(&sqliteRaw{g}, g.compactor, g.logger, key, value)
}

// Delete removes the key.
func (g *SQLiteGateway) Delete(key string) error {
	return (&sqliteRaw{g}).del(key)
}

// Available probes the database with a sentinel write+delete.
func (g *SQLiteGateway) Available() bool {
	return probe(&sqliteRaw{g})
}

// Close closes the underlying database.
func (g *SQLiteGateway) Close() error {
	return g.db.Close()
}

type sqliteRaw struct {
	g *SQLiteGateway
}

func (r *sqliteRaw) put(key, value string) error {
	g := r.g
	if g.quotaBytes > 0 {
		var used int
		err := g.db.QueryRow(
			`SELECT COALESCE(SUM(LENGTH(value)), 0) FROM progress_kv WHERE key != ?`, key,
		).Scan(&used)
		if err != nil {
			return errors.ErrStorage("quota check", err)
		}
		if used+len(value) > g.quotaBytes {
			return errors.ErrQuotaExceeded(key)
		}
	}

	_, err := g.db.Exec(`
		INSERT INTO progress_kv (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return errors.ErrStorage("upsert "+key, err)
	}
	return nil
}

func (r *sqliteRaw) del(key string) error {
	if _, err := r.g.db.Exec(`DELETE FROM progress_kv WHERE key = ?`, key); err != nil {
		return errors.ErrStorage("delete "+key, err)
	}
	return nil
}
