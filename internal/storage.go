package internal

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrKeyNotFound is returned by KV.Get when the key has never been written
var ErrKeyNotFound = errors.New("key not found")

// KVOp is a single write in an atomic batch. A nil Value deletes the key.
type KVOp struct {
	Key   string
	Value *string
}

// Put returns a KVOp that stores value under key
func Put(key, value string) KVOp {
	return KVOp{Key: key, Value: &value}
}

// Delete returns a KVOp that removes key
func Delete(key string) KVOp {
	return KVOp{Key: key}
}

// KV is the durable key/value facility shared by the assistant and the page layout
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
	// Scan returns all pairs whose key starts with prefix, ordered by key
	Scan(prefix string) ([]KeyValuePair, error)
	// Apply performs all ops atomically
	Apply(ops ...KVOp) error
}

// SQLiteKV stores key/value pairs in the assistantKV table
type SQLiteKV struct {
	db *sql.DB
}

// NewSQLiteKV creates a new SQLiteKV instance
func NewSQLiteKV(db *sql.DB) *SQLiteKV {
	return &SQLiteKV{db: db}
}

// Get returns the value stored under key
func (s *SQLiteKV) Get(key string) (string, error) {
	var value sql.NullString
	err := s.db.QueryRow("SELECT value FROM assistantKV WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !value.Valid) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", &StorageError{Key: key, Op: "get", Err: err}
	}
	return value.String, nil
}

// Set stores value under key, replacing any previous value
func (s *SQLiteKV) Set(key, value string) error {
	return s.Apply(Put(key, value))
}

// Remove deletes key. Removing a missing key is not an error.
func (s *SQLiteKV) Remove(key string) error {
	return s.Apply(Delete(key))
}

// Scan returns all pairs whose key starts with prefix
func (s *SQLiteKV) Scan(prefix string) ([]KeyValuePair, error) {
	pairs, err := QueryAssistantKV(s.db, prefix)
	if err != nil {
		return nil, &StorageError{Key: prefix, Op: "scan", Err: err}
	}
	return pairs, nil
}

// Apply runs every op inside one transaction
func (s *SQLiteKV) Apply(ops ...KVOp) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &StorageError{Op: "apply", Err: err}
	}
	for _, op := range ops {
		if op.Value == nil {
			_, err = tx.Exec("DELETE FROM assistantKV WHERE key = ?", op.Key)
		} else {
			_, err = tx.Exec("INSERT OR REPLACE INTO assistantKV (key, value) VALUES (?, ?)", op.Key, *op.Value)
		}
		if err != nil {
			_ = tx.Rollback()
			return &StorageError{Key: op.Key, Op: "apply", Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "apply", Err: err}
	}
	return nil
}

// MemoryKV is an in-process KV used when durable storage is unavailable
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV creates an empty MemoryKV
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

// Get returns the value stored under key
func (m *MemoryKV) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

// Set stores value under key
func (m *MemoryKV) Set(key, value string) error {
	return m.Apply(Put(key, value))
}

// Remove deletes key
func (m *MemoryKV) Remove(key string) error {
	return m.Apply(Delete(key))
}

// Scan returns all pairs whose key starts with prefix, ordered by key
func (m *MemoryKV) Scan(prefix string) ([]KeyValuePair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var pairs []KeyValuePair
	for k, v := range m.data {
		if strings.HasPrefix(k, prefix) {
			pairs = append(pairs, KeyValuePair{Key: k, Value: v})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	return pairs, nil
}

// Apply applies all ops under one lock
func (m *MemoryKV) Apply(ops ...KVOp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range ops {
		if op.Value == nil {
			delete(m.data, op.Key)
		} else {
			m.data[op.Key] = *op.Value
		}
	}
	return nil
}

// OpenKV opens durable storage at path, degrading to memory when it cannot be opened
func OpenKV(path string) (KV, func() error) {
	if path == "" {
		return NewMemoryKV(), func() error { return nil }
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			LogWarn("Storage unavailable at %s, falling back to memory: %v", path, err)
			return NewMemoryKV(), func() error { return nil }
		}
	}
	db, err := OpenDatabase(path)
	if err != nil {
		LogWarn("Storage unavailable at %s, falling back to memory: %v", path, err)
		return NewMemoryKV(), func() error { return nil }
	}
	return NewSQLiteKV(db), db.Close
}
