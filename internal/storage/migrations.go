package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      string
}

// migrations holds all database migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up: `
			-- Monitored addresses table
			CREATE TABLE IF NOT EXISTS monitored_addresses (
				id TEXT PRIMARY KEY,
				owner_id TEXT NOT NULL,
				email TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'safe',
				breach_count INTEGER NOT NULL DEFAULT 0,
				snapshot BLOB,
				is_identity INTEGER NOT NULL DEFAULT 0,
				last_checked_at DATETIME,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				UNIQUE (owner_id, email)
			);

			CREATE INDEX IF NOT EXISTS idx_addresses_owner ON monitored_addresses(owner_id);

			-- Breach event audit trail
			CREATE TABLE IF NOT EXISTS breach_events (
				id TEXT PRIMARY KEY,
				owner_id TEXT NOT NULL,
				email TEXT NOT NULL,
				new_breach_count INTEGER NOT NULL,
				breach_names_json TEXT NOT NULL,
				risk_score INTEGER NOT NULL,
				created_at DATETIME NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_events_owner ON breach_events(owner_id, created_at);
		`,
	},
}

// runMigrations applies all pending migrations.
func runMigrations(db *sql.DB) error {
	// Create migrations tracking table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	// Apply pending migrations
	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Name, time.Now().UTC(),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}
