package internal

import (
	"errors"
	"sync"
	"testing"
)

var errStorageDown = errors.New("storage down")

// newTestSQLiteKV opens an in-memory SQLite KV closed on cleanup
func newTestSQLiteKV(t *testing.T) *SQLiteKV {
	t.Helper()
	db, err := OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("OpenDatabase(:memory:) error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteKV(db)
}

// failingKV is a MemoryKV whose reads and writes can be switched off
type failingKV struct {
	*MemoryKV

	mu        sync.Mutex
	failGet   bool
	failWrite bool
	applies   int
}

func newFailingKV() *failingKV {
	return &failingKV{MemoryKV: NewMemoryKV()}
}

func (f *failingKV) setFailures(get, write bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failGet, f.failWrite = get, write
}

func (f *failingKV) Get(key string) (string, error) {
	f.mu.Lock()
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return "", &StorageError{Key: key, Op: "get", Err: errStorageDown}
	}
	return f.MemoryKV.Get(key)
}

func (f *failingKV) Scan(prefix string) ([]KeyValuePair, error) {
	f.mu.Lock()
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return nil, &StorageError{Key: prefix, Op: "scan", Err: errStorageDown}
	}
	return f.MemoryKV.Scan(prefix)
}

func (f *failingKV) Set(key, value string) error {
	return f.Apply(Put(key, value))
}

func (f *failingKV) Remove(key string) error {
	return f.Apply(Delete(key))
}

func (f *failingKV) Apply(ops ...KVOp) error {
	f.mu.Lock()
	fail := f.failWrite
	f.applies++
	f.mu.Unlock()
	if fail {
		return &StorageError{Op: "apply", Err: errStorageDown}
	}
	return f.MemoryKV.Apply(ops...)
}
