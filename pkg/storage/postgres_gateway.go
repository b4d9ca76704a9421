package storage

import (
	"database/sql"
	"log/slog"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/minigamehub/progress-engine/pkg/errors"
)

// PostgresGateway stores key-value pairs in PostgreSQL. It exists for
// kiosk/arcade deployments where a shared database replaces per-device
// files; the contract is identical to the other backends, including the
// optional byte quota (useful for multi-tenant installs).
type PostgresGateway struct {
	db         *sql.DB
	quotaBytes int
	compactor  Compactor
	logger     *slog.Logger
}

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS progress_kv (
		key VARCHAR(200) PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	)
`

// NewPostgresGateway wraps an existing connection and applies the schema.
// A quota of zero means unlimited.
func NewPostgresGateway(db *sql.DB, quotaBytes int, logger *slog.Logger) (*PostgresGateway, error) {
	if _, err := db.Exec(postgresSchema); err != nil {
		return nil, errors.ErrStorageBlocked(err)
	}
	return &PostgresGateway{
		db:         db,
		quotaBytes: quotaBytes,
		logger:     logger,
	}, nil
}

// SetCompactor registers the domain-layer cleanup hook.
func (g *PostgresGateway) SetCompactor(c Compactor) { g.compactor = c }

// Get returns the stored value, or ("", false) when absent. Query errors
// are logged and read as absent, per the gateway contract.
func (g *PostgresGateway) Get(key string) (string, bool) {
	var value string
	err := g.db.QueryRow(`SELECT value FROM progress_kv WHERE key = $1`, key).Scan(&value)
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
func (g *PostgresGateway) Set(key, value string) error {
	return setWithRecovery(&postgresRaw{g}, g.compactor, g.logger, key, value)
}

// Delete removes the key.
func (g *PostgresGateway) Delete(key string) error {
	return (&postgresRaw{g}).del(key)
}

// Available probes the database with a sentinel write+delete.
func (g *PostgresGateway) Available() bool {
	return probe(&postgresRaw{g})
}

type postgresRaw struct {
	g *PostgresGateway
}

func (r *postgresRaw) put(key, value string) error {
	g := r.g
	if g.quotaBytes > 0 {
		var used int
		err := g.db.QueryRow(
			`SELECT COALESCE(SUM(LENGTH(value)), 0) FROM progress_kv WHERE key != $1`, key,
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
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`, key, value)
	if err != nil {
		return errors.ErrStorage("upsert "+key, err)
	}
	return nil
}

func (r *postgresRaw) del(key string) error {
	if _, err := r.g.db.Exec(`DELETE FROM progress_kv WHERE key = $1`, key); err != nil {
		return errors.ErrStorage("delete "+key, err)
	}
	return nil
}
