package usage

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/reelpress/reelpress/internal/database"
)

// Open opens the usage database and applies migrations.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open usage db: %w", err)
	}
	if err := database.ApplyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Ledger is the plan-gating collaborator: a daily export quota backed by
// the sqlite usage table.
type Ledger struct {
	db         *sql.DB
	dailyLimit int
	log        *slog.Logger
}

// NewLedger creates a ledger with the given daily limit; a limit of zero
// or less means unlimited.
func NewLedger(db *sql.DB, dailyLimit int, log *slog.Logger) *Ledger {
	return &Ledger{db: db, dailyLimit: dailyLimit, log: log}
}

// AllowExport reports whether today's export count is under the plan
// limit. It has no side effects.
func (l *Ledger) AllowExport() bool {
	if l.dailyLimit <= 0 {
		return true
	}
	used, err := l.UsedToday()
	if err != nil {
		l.log.Error("usage query failed", "err", err)
		return false
	}
	return used < l.dailyLimit
}

// RecordExport appends one ledger row. Called exactly once per completed
// export, never on failure.
func (l *Ledger) RecordExport(clipID, clipTitle, artifactName string) error {
	_, err := l.db.Exec(`
	  INSERT INTO export_usage (id, clip_id, clip_title, artifact_name)
	  VALUES (?, ?, ?, ?)
	`, ulid.Make().String(), clipID, clipTitle, artifactName)
	if err != nil {
		return fmt.Errorf("record export: %w", err)
	}
	return nil
}

// UsedToday returns today's export count, for the dialog's status line.
func (l *Ledger) UsedToday() (int, error) {
	row := l.db.QueryRow(`
	  SELECT count(*) FROM export_usage
	  WHERE exported_at >= date('now')
	`)
	var used int
	if err := row.Scan(&used); err != nil {
		return 0, fmt.Errorf("usage query: %w", err)
	}
	return used, nil
}
