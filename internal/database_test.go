package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenDatabase(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "new file database",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "assistant.db")
			},
			wantErr: false,
		},
		{
			name: "in-memory database",
			path: func(t *testing.T) string {
				return ":memory:"
			},
			wantErr: false,
		},
		{
			name: "missing parent directory",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing", "dir", "assistant.db")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := OpenDatabase(tt.path(t))
			if (err != nil) != tt.wantErr {
				t.Errorf("OpenDatabase() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			defer db.Close()

			// Schema must exist
			if _, err := db.Exec("INSERT INTO assistantKV (key, value) VALUES ('k', 'v')"); err != nil {
				t.Errorf("assistantKV table missing: %v", err)
			}
		})
	}
}

func TestOpenDatabase_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assistant.db")

	db, err := OpenDatabase(path)
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	if err := NewSQLiteKV(db).Set(KeySessionID, "session_1_abcd"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	db.Close()

	db, err = OpenDatabase(path)
	if err != nil {
		t.Fatalf("OpenDatabase() reopen error = %v", err)
	}
	defer db.Close()

	got, err := NewSQLiteKV(db).Get(KeySessionID)
	if err != nil || got != "session_1_abcd" {
		t.Errorf("Get() after reopen = %q, %v; want %q", got, err, "session_1_abcd")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}

func TestQueryAssistantKV(t *testing.T) {
	kv := newTestSQLiteKV(t)
	for _, k := range []string{"archivedSession:2:b", "archivedSession:1:a", "archivedSessionX", "chatHistory", "a%b", "a_c"} {
		if err := kv.Set(k, "v"); err != nil {
			t.Fatalf("Set(%q) error = %v", k, err)
		}
	}

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{
			name:   "archive prefix in key order",
			prefix: KeyArchivedPrefix,
			want:   []string{"archivedSession:1:a", "archivedSession:2:b"},
		},
		{
			name:   "exact key",
			prefix: "chatHistory",
			want:   []string{"chatHistory"},
		},
		{
			name:   "percent is literal",
			prefix: "a%",
			want:   []string{"a%b"},
		},
		{
			name:   "underscore is literal",
			prefix: "a_",
			want:   []string{"a_c"},
		},
		{
			name:   "no match",
			prefix: "zzz",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs, err := QueryAssistantKV(kv.db, tt.prefix)
			if err != nil {
				t.Fatalf("QueryAssistantKV() error = %v", err)
			}
			if len(pairs) != len(tt.want) {
				t.Fatalf("QueryAssistantKV(%q) returned %d pairs, want %d", tt.prefix, len(pairs), len(tt.want))
			}
			for i, p := range pairs {
				if p.Key != tt.want[i] {
					t.Errorf("QueryAssistantKV(%q)[%d] = %q, want %q", tt.prefix, i, p.Key, tt.want[i])
				}
			}
		})
	}
}

func TestQueryAssistantKV_NullValues(t *testing.T) {
	kv := newTestSQLiteKV(t)

	if _, err := kv.db.Exec("INSERT INTO assistantKV (key, value) VALUES (?, ?)", "test:key1", nil); err != nil {
		t.Fatalf("Failed to insert null value: %v", err)
	}
	if _, err := kv.db.Exec("INSERT INTO assistantKV (key, value) VALUES (?, ?)", "test:key2", "value2"); err != nil {
		t.Fatalf("Failed to insert value: %v", err)
	}

	pairs, err := QueryAssistantKV(kv.db, "test:")
	if err != nil {
		t.Fatalf("QueryAssistantKV() error = %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("QueryAssistantKV() returned %d pairs, want 1", len(pairs))
	}
	if pairs[0].Key != "test:key2" {
		t.Errorf("QueryAssistantKV() returned key %q, want test:key2", pairs[0].Key)
	}
}
