package internal

import "time"

// Role identifies who authored a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Session represents the live assistant session
type Session struct {
	ID        string    `json:"sessionId" yaml:"session_id"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

// ChatMessage represents a rendered message in the message list.
// Messages are append-only and never mutated after creation.
type ChatMessage struct {
	Role      Role   `json:"role" yaml:"role"`
	Content   string `json:"content" yaml:"content"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"` // unix milliseconds
}

// ConversationTurn is the backend-facing projection of a ChatMessage
type ConversationTurn struct {
	Role    Role   `json:"role" yaml:"role"` // "user" or "assistant"
	Content string `json:"content" yaml:"content"`
}

// ArchivedSession is an immutable snapshot taken when a session is reset
type ArchivedSession struct {
	SessionID           string             `json:"sessionId" yaml:"session_id"`
	Timestamp           string             `json:"timestamp" yaml:"timestamp"` // RFC3339
	ChatHistory         []ChatMessage      `json:"chatHistory" yaml:"chat_history"`
	ConversationHistory []ConversationTurn `json:"conversationHistory" yaml:"conversation_history"`
}

// ActivityEvent records a single user interaction with the host application
type ActivityEvent struct {
	Action    string `json:"action"`
	Element   string `json:"element"`
	Timestamp int64  `json:"timestamp"`
}

// ModuleContext is derived from the current navigation path
type ModuleContext struct {
	Key         string
	DisplayName string
}

// GetTime returns the message timestamp as time.Time
func (m ChatMessage) GetTime() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// IsDialogue reports whether the role can appear as a conversation turn
func (r Role) IsDialogue() bool {
	return r == RoleUser || r == RoleAssistant
}

// GetTime parses the archive timestamp. Zero time is returned for malformed values.
func (a ArchivedSession) GetTime() time.Time {
	t, err := time.Parse(time.RFC3339, a.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}
