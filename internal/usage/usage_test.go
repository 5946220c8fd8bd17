package usage

import (
	"log/slog"
	"path/filepath"
	"testing"
)

func TestLedgerQuota(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "usage.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	ledger := NewLedger(db, 2, slog.Default())

	if !ledger.AllowExport() {
		t.Fatal("fresh ledger must allow export")
	}

	if err := ledger.RecordExport("c1", "First", "reelpress_first.mp4"); err != nil {
		t.Fatalf("RecordExport: %v", err)
	}
	if !ledger.AllowExport() {
		t.Error("one of two exports used, must still allow")
	}

	if err := ledger.RecordExport("c2", "Second", "reelpress_second.mp4"); err != nil {
		t.Fatalf("RecordExport: %v", err)
	}
	if ledger.AllowExport() {
		t.Error("quota exhausted, must block")
	}

	used, err := ledger.UsedToday()
	if err != nil {
		t.Fatalf("UsedToday: %v", err)
	}
	if used != 2 {
		t.Errorf("used = %d, want 2", used)
	}
}

func TestLedgerUnlimited(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "usage.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	ledger := NewLedger(db, 0, slog.Default())
	for i := 0; i < 5; i++ {
		if !ledger.AllowExport() {
			t.Fatal("zero limit means unlimited")
		}
		if err := ledger.RecordExport("c", "t", "a"); err != nil {
			t.Fatalf("RecordExport: %v", err)
		}
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("second open must not re-apply migrations: %v", err)
	}
	db.Close()
}
