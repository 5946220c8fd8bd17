package database

import (
	"database/sql"
	"fmt"
)

type databaseMigration struct {
	version         uint16
	name            string
	migrationScript string
}

var migrations = []*databaseMigration{

	/////////////////////////////////////////////////
	{
		version: 1,
		name:    "export usage ledger",
		migrationScript: `
	CREATE TABLE IF NOT EXISTS export_usage (
		id TEXT PRIMARY KEY,
		clip_id TEXT NOT NULL,
		clip_title TEXT NOT NULL,
		artifact_name TEXT NOT NULL,
		exported_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_export_usage_exported_at
		ON export_usage (exported_at);
		`,
	},
}

// ApplyMigrations brings the database schema up to the latest version.
func ApplyMigrations(db *sql.DB) error {
	if err := applyVersionsTable(db); err != nil {
		return err
	}
	row := db.QueryRow("SELECT coalesce(max(version), 0) max_version FROM migration")
	var maxVersion uint16
	if err := row.Scan(&maxVersion); err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("read schema version: %w", err)
	}
	for _, migration := range migrations {
		if migration.version > maxVersion {
			if err := applyMigration(db, migration); err != nil {
				return fmt.Errorf("migration %d (%s): %w", migration.version, migration.name, err)
			}
		}
	}
	return nil
}

func applyMigration(db *sql.DB, migration *databaseMigration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO migration (version, name) VALUES (?, ?)",
		migration.version, migration.name); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(migration.migrationScript); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func applyVersionsTable(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS migration (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
	`)
	return err
}
