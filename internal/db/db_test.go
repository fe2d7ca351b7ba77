package db

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDB_OpenAndClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "history.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	// Directory and database file are created on demand
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}

	if err := db.Close(); err != nil {
		t.Errorf("Failed to close database: %v", err)
	}
}

func TestDB_LogPatchEvent(t *testing.T) {
	db := openTestDB(t)

	if err := db.LogPatchEvent("startup", "ok", "3 patches applied"); err != nil {
		t.Fatalf("Failed to log patch event: %v", err)
	}
	if err := db.LogPatchEvent("verification-complete", "skipped", "debug target not reachable"); err != nil {
		t.Fatalf("Failed to log patch event: %v", err)
	}

	events, err := db.GetRecentPatchEvents(10)
	if err != nil {
		t.Fatalf("Failed to query patch events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 patch events, got %d", len(events))
	}

	// Newest first
	if events[0].Trigger != "verification-complete" || events[0].Outcome != "skipped" {
		t.Errorf("Unexpected first event: %+v", events[0])
	}
	if events[1].Trigger != "startup" || events[1].Details != "3 patches applied" {
		t.Errorf("Unexpected second event: %+v", events[1])
	}
}

func TestDB_LogDaemonEvent(t *testing.T) {
	db := openTestDB(t)

	if err := db.LogDaemonEvent("start", "version devel"); err != nil {
		t.Fatalf("Failed to log daemon event: %v", err)
	}

	events, err := db.GetRecentDaemonEvents(5)
	if err != nil {
		t.Fatalf("Failed to query daemon events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 daemon event, got %d", len(events))
	}
	if events[0].EventType != "start" {
		t.Errorf("Unexpected event type: %q", events[0].EventType)
	}
}

func TestDB_GetRecentPatchEventsLimit(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 5; i++ {
		if err := db.LogPatchEvent("startup", "ok", ""); err != nil {
			t.Fatalf("Failed to log patch event: %v", err)
		}
	}

	events, err := db.GetRecentPatchEvents(3)
	if err != nil {
		t.Fatalf("Failed to query patch events: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("Expected 3 events with limit, got %d", len(events))
	}
}
