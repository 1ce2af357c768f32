package db

import (
	"database/sql"
	"fmt"
)

// Migration is a single schema migration.
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations lists all migrations in order. The baseline schema in
// schema.go already reflects every migration here; migrations only
// matter for databases created before a change landed.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "baseline",
		Up:      func(*sql.DB) error { return nil },
	},
}

// Migrate applies any pending migrations.
func Migrate(database *sql.DB) error {
	var current int
	err := database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := m.Up(database); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		if _, err := database.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			m.Version, m.Name,
		); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}

	return nil
}
