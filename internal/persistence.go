package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Storage keys owned by the assistant
const (
	KeyChatHistory         = "chatHistory"
	KeyConversationHistory = "conversationHistory"
	KeyArchivedPrefix      = "archivedSession:"
)

// Persistence stores message history, conversation turns and archived sessions.
// Malformed stored data is discarded with a warning, never returned as an error.
type Persistence struct {
	kv KV
}

// NewPersistence creates a Persistence over kv
func NewPersistence(kv KV) *Persistence {
	return &Persistence{kv: kv}
}

// Save overwrites both histories in one batch
func (p *Persistence) Save(chat []ChatMessage, conv []ConversationTurn) error {
	chatJSON, err := json.Marshal(nonNilMessages(chat))
	if err != nil {
		return fmt.Errorf("failed to marshal chat history: %w", err)
	}
	convJSON, err := json.Marshal(nonNilTurns(conv))
	if err != nil {
		return fmt.Errorf("failed to marshal conversation history: %w", err)
	}
	return p.kv.Apply(
		Put(KeyChatHistory, string(chatJSON)),
		Put(KeyConversationHistory, string(convJSON)),
	)
}

// Load returns the stored histories. Absent or unreadable data yields nil slices.
func (p *Persistence) Load() ([]ChatMessage, []ConversationTurn) {
	var chat []ChatMessage
	for _, raw := range p.loadEntries(KeyChatHistory) {
		var msg ChatMessage
		if err := json.Unmarshal(raw, &msg); err != nil || !validRole(msg.Role) {
			LogWarn("Discarding malformed chat message: %v", &ParseError{Source: KeyChatHistory, Key: KeyChatHistory, Err: errOrInvalid(err)})
			continue
		}
		chat = append(chat, msg)
	}

	var conv []ConversationTurn
	for _, raw := range p.loadEntries(KeyConversationHistory) {
		var turn ConversationTurn
		if err := json.Unmarshal(raw, &turn); err != nil || !turn.Role.IsDialogue() {
			LogWarn("Discarding malformed conversation turn: %v", &ParseError{Source: KeyConversationHistory, Key: KeyConversationHistory, Err: errOrInvalid(err)})
			continue
		}
		conv = append(conv, turn)
	}

	return chat, conv
}

// loadEntries reads a JSON array stored under key and returns its raw elements
func (p *Persistence) loadEntries(key string) []json.RawMessage {
	value, err := p.kv.Get(key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			LogWarn("Failed to read %s: %v", key, err)
		}
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(value), &entries); err != nil {
		LogWarn("Discarding corrupt %s: %v", key, &ParseError{Source: key, Key: key, Err: err})
		return nil
	}
	return entries
}

// Archive appends session to the archived collection
func (p *Persistence) Archive(session ArchivedSession) error {
	op, err := archiveOp(session)
	if err != nil {
		return err
	}
	return p.kv.Apply(op)
}

// ListArchived returns archived sessions in the order they were archived
func (p *Persistence) ListArchived() []ArchivedSession {
	pairs, err := p.kv.Scan(KeyArchivedPrefix)
	if err != nil {
		LogWarn("Failed to list archived sessions: %v", err)
		return nil
	}

	archived := make([]ArchivedSession, 0, len(pairs))
	for _, pair := range pairs {
		var session ArchivedSession
		if err := json.Unmarshal([]byte(pair.Value), &session); err != nil || session.SessionID == "" {
			// Log error but continue
			LogWarn("Discarding corrupt archived session: %v", &ParseError{Source: "archivedSession", Key: pair.Key, Err: errOrInvalid(err)})
			continue
		}
		archived = append(archived, session)
	}
	return archived
}

// Clear removes both persisted histories
func (p *Persistence) Clear() error {
	return p.kv.Apply(ClearOps()...)
}

// ClearOps returns the batch that removes both persisted histories
func ClearOps() []KVOp {
	return []KVOp{Delete(KeyChatHistory), Delete(KeyConversationHistory)}
}

// ResetOps returns the batch that archives session and clears the live histories
func ResetOps(session ArchivedSession) ([]KVOp, error) {
	op, err := archiveOp(session)
	if err != nil {
		return nil, err
	}
	return append([]KVOp{op}, ClearOps()...), nil
}

func archiveOp(session ArchivedSession) (KVOp, error) {
	session.ChatHistory = nonNilMessages(session.ChatHistory)
	session.ConversationHistory = nonNilTurns(session.ConversationHistory)
	data, err := json.Marshal(session)
	if err != nil {
		return KVOp{}, fmt.Errorf("failed to marshal archived session: %w", err)
	}
	return Put(archiveKey(session), string(data)), nil
}

// archiveKey orders archives chronologically: archivedSession:<ms, zero padded>:<sessionId>
func archiveKey(session ArchivedSession) string {
	ms := time.Now().UnixMilli()
	if t := session.GetTime(); !t.IsZero() {
		ms = t.UnixMilli()
	}
	return fmt.Sprintf("%s%016d:%s", KeyArchivedPrefix, ms, session.SessionID)
}

func validRole(r Role) bool {
	return r == RoleUser || r == RoleAssistant || r == RoleSystem
}

func errOrInvalid(err error) error {
	if err != nil {
		return err
	}
	return errors.New("invalid entry")
}

func nonNilMessages(m []ChatMessage) []ChatMessage {
	if m == nil {
		return []ChatMessage{}
	}
	return m
}

func nonNilTurns(t []ConversationTurn) []ConversationTurn {
	if t == nil {
		return []ConversationTurn{}
	}
	return t
}
