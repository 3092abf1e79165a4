package internal

import (
	"context"
	"sync"
	"time"
)

// CreateTestMessages creates an alternating user/assistant exchange
func CreateTestMessages(exchanges int) ([]ChatMessage, []ConversationTurn) {
	var chat []ChatMessage
	var conv []ConversationTurn
	ts := time.Now().UnixMilli()
	for i := 0; i < exchanges; i++ {
		q := "What is a dot product?"
		a := "It is $\\sum a_i b_i$."
		chat = append(chat,
			ChatMessage{Role: RoleUser, Content: q, Timestamp: ts},
			ChatMessage{Role: RoleAssistant, Content: a, Timestamp: ts + 1},
		)
		conv = append(conv,
			ConversationTurn{Role: RoleUser, Content: q},
			ConversationTurn{Role: RoleAssistant, Content: a},
		)
		ts += 2
	}
	return chat, conv
}

// CreateTestArchivedSession creates an archived session with one exchange
func CreateTestArchivedSession(id string, at time.Time) ArchivedSession {
	chat, conv := CreateTestMessages(1)
	return ArchivedSession{
		SessionID:           id,
		Timestamp:           at.UTC().Format(archiveTimeLayout),
		ChatHistory:         chat,
		ConversationHistory: conv,
	}
}

// RecordingView records every update for assertions
type RecordingView struct {
	mu          sync.Mutex
	ModuleName  string
	Placeholder string
	Messages    []RecordedMessage
	Typing      bool
	Suggestions []string
	Input       string
	Open        bool
	Clears      int
}

// RecordedMessage is one AppendMessage call
type RecordedMessage struct {
	Role   Role
	Markup string
}

func (v *RecordingView) SetModuleName(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ModuleName = name
}

func (v *RecordingView) SetPlaceholder(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Placeholder = text
}

func (v *RecordingView) AppendMessage(role Role, markup string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Messages = append(v.Messages, RecordedMessage{Role: role, Markup: markup})
}

func (v *RecordingView) ClearMessages() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Messages = nil
	v.Clears++
}

func (v *RecordingView) ShowTyping() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Typing = true
}

func (v *RecordingView) HideTyping() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Typing = false
}

func (v *RecordingView) SetSuggestions(s []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Suggestions = append([]string(nil), s...)
}

func (v *RecordingView) ClearInput() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Input = ""
}

func (v *RecordingView) SetInput(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Input = text
}

func (v *RecordingView) SetOpen(open bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Open = open
}

// Snapshot returns a copy of the recorded messages
func (v *RecordingView) Snapshot() []RecordedMessage {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]RecordedMessage(nil), v.Messages...)
}

// IsTyping reports whether the typing indicator is shown
func (v *RecordingView) IsTyping() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.Typing
}

// StubBackend is a scripted Backend. Gate, when set, blocks Chat until closed.
type StubBackend struct {
	mu          sync.Mutex
	Reply       string
	Reject      bool
	ChatErr     error
	Suggestions []string
	SuggestErr  error
	Gate        chan struct{}

	ChatRequests    []ChatRequest
	SuggestRequests []SuggestRequest
}

func (b *StubBackend) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	b.mu.Lock()
	b.ChatRequests = append(b.ChatRequests, req)
	gate := b.Gate
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ChatErr != nil {
		return nil, b.ChatErr
	}
	if b.Reject {
		return &ChatResponse{Success: false}, nil
	}
	return &ChatResponse{Success: true, Response: b.Reply}, nil
}

func (b *StubBackend) Suggest(ctx context.Context, req SuggestRequest) (*SuggestResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.SuggestRequests = append(b.SuggestRequests, req)
	if b.SuggestErr != nil {
		return nil, b.SuggestErr
	}
	return &SuggestResponse{Suggestions: append([]string(nil), b.Suggestions...)}, nil
}

// ChatCalls returns the number of chat requests received
func (b *StubBackend) ChatCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ChatRequests)
}

// SuggestCalls returns the number of suggestion requests received
func (b *StubBackend) SuggestCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.SuggestRequests)
}
