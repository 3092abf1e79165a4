package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/tutor-assistant/internal"
)

// CreateInMemoryKV creates an in-memory SQLite KV for testing
func CreateInMemoryKV(t *testing.T) *internal.SQLiteKV {
	t.Helper()
	db, err := internal.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return internal.NewSQLiteKV(db)
}

// CreateStorageFixture creates an assistant database under dir holding a live
// session with one exchange and the given archived sessions. It returns the
// database path.
func CreateStorageFixture(t *testing.T, dir, liveID string, archived ...internal.ArchivedSession) string {
	t.Helper()
	path := filepath.Join(dir, "assistant.db")
	db, err := internal.OpenDatabase(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	kv := internal.NewSQLiteKV(db)
	if err := kv.Set(internal.KeySessionID, liveID); err != nil {
		t.Fatalf("Failed to write session id: %v", err)
	}

	store := internal.NewPersistence(kv)
	chat, conv := internal.CreateTestMessages(1)
	if err := store.Save(chat, conv); err != nil {
		t.Fatalf("Failed to save history: %v", err)
	}
	for _, a := range archived {
		if err := store.Archive(a); err != nil {
			t.Fatalf("Failed to archive %s: %v", a.SessionID, err)
		}
	}
	return path
}

// ArchivedAt is a shorthand for CreateTestArchivedSession at a fixed time
func ArchivedAt(id string, minutes int) internal.ArchivedSession {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
	return internal.CreateTestArchivedSession(id, at)
}
