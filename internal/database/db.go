package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite connection used for scoring history.
type DB struct {
	*sql.DB
	path string
}

// NewDB opens (or creates) the scoring database under dataDir and applies
// the schema.
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dataDir, "scoring.db")
	sqlDB, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// History writes are fire-and-forget off the request path; a small pool
	// is plenty.
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	db := &DB{DB: sqlDB, path: path}

	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	slog.Info("Database initialized", "path", path)
	return db, nil
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scoring_history (
		id                    TEXT PRIMARY KEY,
		source                TEXT NOT NULL,
		profile               TEXT NOT NULL,
		credit_score          INTEGER NOT NULL,
		risk_band             TEXT NOT NULL,
		default_probability   REAL NOT NULL,
		repayment_probability REAL NOT NULL,
		predicted_default     INTEGER NOT NULL,
		top_factor            TEXT,
		created_at            TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_scoring_history_created_at
		ON scoring_history(created_at);
	CREATE INDEX IF NOT EXISTS idx_scoring_history_profile
		ON scoring_history(profile);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// GetPoolStats returns connection pool statistics
func (db *DB) GetPoolStats() map[string]interface{} {
	stats := db.DB.Stats()

	return map[string]interface{}{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
		"wait_duration_ms": stats.WaitDuration.Milliseconds(),
	}
}
