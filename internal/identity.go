package internal

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// KeySessionID is the storage key holding the live session identifier
const KeySessionID = "chatSessionId"

// IdentityStore generates and persists the stable session identifier
type IdentityStore struct {
	kv  KV
	now func() time.Time

	mu        sync.Mutex
	ephemeral string
}

// NewIdentityStore creates an IdentityStore over kv
func NewIdentityStore(kv KV) *IdentityStore {
	return &IdentityStore{kv: kv, now: time.Now}
}

// Generate returns a fresh identifier without persisting it
func (s *IdentityStore) Generate() string {
	return fmt.Sprintf("session_%d_%s", s.now().UnixMilli(), uuid.NewString()[:8])
}

// GetOrCreateSessionID returns the persisted identifier, creating one on first use.
// When storage fails the id lives only in memory for the lifetime of the store.
func (s *IdentityStore) GetOrCreateSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ephemeral != "" {
		return s.ephemeral
	}

	id, err := s.kv.Get(KeySessionID)
	if err == nil && id != "" {
		return id
	}
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		LogWarn("Failed to read session id: %v", err)
		return s.ephemeralID()
	}

	id = s.Generate()
	if err := s.kv.Set(KeySessionID, id); err != nil {
		LogWarn("Failed to persist session id: %v", err)
		s.ephemeral = id
	}
	return id
}

func (s *IdentityStore) ephemeralID() string {
	if s.ephemeral == "" {
		s.ephemeral = s.Generate()
	}
	return s.ephemeral
}

// Switch makes id the live session identifier. The extra ops are applied in the
// same batch so the stored histories never outlive the id they belong to. On
// failure nothing changes, neither in storage nor in memory.
func (s *IdentityStore) Switch(id string, ops ...KVOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := append([]KVOp{Put(KeySessionID, id)}, ops...)
	if err := s.kv.Apply(batch...); err != nil {
		return fmt.Errorf("failed to switch session id: %w", err)
	}
	s.ephemeral = ""
	return nil
}
