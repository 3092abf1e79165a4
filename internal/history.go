package internal

import (
	"sync"
	"time"
)

// History holds the live session's messages and conversation turns and keeps
// the persisted copy in step with every append.
type History struct {
	store *Persistence
	now   func() time.Time

	mu   sync.Mutex
	chat []ChatMessage
	conv []ConversationTurn
}

// NewHistory creates a History backed by store
func NewHistory(store *Persistence) *History {
	return &History{store: store, now: time.Now}
}

// Restore loads the persisted histories and returns the restored messages
func (h *History) Restore() []ChatMessage {
	chat, conv := h.store.Load()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.chat = chat
	h.conv = conv
	return cloneMessages(h.chat)
}

// Append adds a message and persists
func (h *History) Append(role Role, content string) ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := ChatMessage{Role: role, Content: content, Timestamp: h.now().UnixMilli()}
	h.chat = append(h.chat, msg)
	h.saveLocked()
	return msg
}

// AppendTurns adds conversation turns and persists
func (h *History) AppendTurns(turns ...ConversationTurn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conv = append(h.conv, turns...)
	h.saveLocked()
}

// Messages returns a copy of the chat history
func (h *History) Messages() []ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return cloneMessages(h.chat)
}

// Turns returns a copy of the conversation history
func (h *History) Turns() []ConversationTurn {
	h.mu.Lock()
	defer h.mu.Unlock()
	return cloneTurns(h.conv)
}

// RecentTurns returns at most the last n turns
func (h *History) RecentTurns(n int) []ConversationTurn {
	h.mu.Lock()
	defer h.mu.Unlock()
	start := len(h.conv) - n
	if start < 0 {
		start = 0
	}
	return cloneTurns(h.conv[start:])
}

// Reset empties the in-memory histories. Persisted copies are left to the caller.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.chat = nil
	h.conv = nil
}

func (h *History) saveLocked() {
	if err := h.store.Save(h.chat, h.conv); err != nil {
		LogWarn("Failed to persist chat history: %v", err)
	}
}

func cloneMessages(m []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, len(m))
	copy(out, m)
	return out
}

func cloneTurns(t []ConversationTurn) []ConversationTurn {
	out := make([]ConversationTurn, len(t))
	copy(out, t)
	return out
}
