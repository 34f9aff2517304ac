package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

// newTestDB opens a migrated database in a temp directory.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	if err := MigrateUpFromPath(path, "file://migrations"); err != nil {
		t.Fatalf("MigrateUpFromPath: %v", err)
	}
	conn, err := OpenWithDefaults(path)
	if err != nil {
		t.Fatalf("OpenWithDefaults: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestOpenEnablesWAL(t *testing.T) {
	conn, err := OpenWithDefaults(filepath.Join(t.TempDir(), "wal.db"))
	if err != nil {
		t.Fatalf("OpenWithDefaults: %v", err)
	}
	defer conn.Close()

	var mode string
	if err := conn.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("reading journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(ConnectionConfig{}); err == nil {
		t.Error("Open with empty path expected error")
	}
}

func TestHistoryInsertAndList(t *testing.T) {
	repo := NewHistoryRepository(newTestDB(t))
	ctx := context.Background()

	records := []GenerationRecord{
		{
			CorrelationID: "corr-1",
			BatchID:       "batch-1",
			VariantID:     "variant_0",
			Provider:      "fal",
			Prompt:        "matte black camera three_quarter view",
			Status:        StatusSuccess,
			Width:         1024,
			Height:        1024,
			Duration:      1200 * time.Millisecond,
		},
		{
			CorrelationID: "corr-1",
			BatchID:       "batch-1",
			VariantID:     "variant_1",
			Provider:      "fal",
			Prompt:        "matte black camera side view",
			Status:        StatusFailed,
			Error:         "quota exceeded",
		},
		{
			CorrelationID: "corr-2",
			BatchID:       "batch-2",
			VariantID:     "variant_0",
			Provider:      "bria",
			Prompt:        "ceramic kettle",
			Status:        StatusSuccess,
		},
	}
	for _, rec := range records {
		if _, err := repo.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert(%s): %v", rec.VariantID, err)
		}
	}

	batch, err := repo.ListByBatch(ctx, "batch-1")
	if err != nil {
		t.Fatalf("ListByBatch: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("batch-1 has %d records, want 2", len(batch))
	}
	if batch[0].VariantID != "variant_0" || batch[1].VariantID != "variant_1" {
		t.Errorf("batch order = [%s %s], want oldest first", batch[0].VariantID, batch[1].VariantID)
	}
	if batch[0].Duration != 1200*time.Millisecond {
		t.Errorf("Duration = %v, want 1.2s", batch[0].Duration)
	}
	if batch[1].Error != "quota exceeded" {
		t.Errorf("Error = %q, want quota exceeded", batch[1].Error)
	}
	if batch[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}

	recent, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 2 || recent[0].BatchID != "batch-2" {
		t.Errorf("ListRecent = %d records, first batch %s; want 2 records newest first",
			len(recent), recent[0].BatchID)
	}
}

func TestHistoryCountByStatus(t *testing.T) {
	repo := NewHistoryRepository(newTestDB(t))
	ctx := context.Background()

	for i, status := range []string{StatusSuccess, StatusSuccess, StatusFailed} {
		rec := GenerationRecord{
			CorrelationID: "c",
			BatchID:       "b",
			VariantID:     "v",
			Provider:      "fal",
			Prompt:        "p",
			Status:        status,
		}
		if _, err := repo.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
	}

	success, err := repo.CountByStatus(ctx, StatusSuccess)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if success != 2 {
		t.Errorf("success count = %d, want 2", success)
	}
}

func TestHistoryInsertRejectsBadStatus(t *testing.T) {
	repo := NewHistoryRepository(newTestDB(t))
	_, err := repo.Insert(context.Background(), GenerationRecord{Status: "pending"})
	if err == nil {
		t.Error("Insert with invalid status expected error")
	}
}

func TestMigrationVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ver.db")
	if err := MigrateUpFromPath(path, "file://migrations"); err != nil {
		t.Fatalf("MigrateUpFromPath: %v", err)
	}
	conn, err := OpenWithDefaults(path)
	if err != nil {
		t.Fatalf("OpenWithDefaults: %v", err)
	}
	version, dirty, err := MigrationVersion(conn, "file://migrations")
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("version = %d dirty = %v, want 1 clean", version, dirty)
	}
}
