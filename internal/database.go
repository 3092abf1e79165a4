package internal

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS assistantKV (
	key TEXT PRIMARY KEY,
	value TEXT
)`

// OpenDatabase opens (and creates if needed) the assistant SQLite database
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the assistantKV table
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(kvSchema); err != nil {
		return fmt.Errorf("failed to create assistantKV table: %w", err)
	}
	return nil
}

// QueryAssistantKV queries the assistantKV table for keys starting with prefix, ordered by key
func QueryAssistantKV(db *sql.DB, prefix string) ([]KeyValuePair, error) {
	query := "SELECT key, value FROM assistantKV WHERE substr(key, 1, ?) = ? AND value IS NOT NULL ORDER BY key"
	rows, err := db.Query(query, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var pairs []KeyValuePair
	for rows.Next() {
		var pair KeyValuePair
		var value sql.NullString
		if err := rows.Scan(&pair.Key, &value); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if value.Valid {
			pair.Value = value.String
			pairs = append(pairs, pair)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return pairs, nil
}

// KeyValuePair represents a key-value pair from assistantKV
type KeyValuePair struct {
	Key   string
	Value string
}
