package internal

import (
	"fmt"
	"sync"
	"time"
)

// archiveTimeLayout matches the millisecond ISO timestamps used for archives
const archiveTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// NewSessionPrompt is the confirmation question shown before a reset
const NewSessionPrompt = "Start a new chat session? Current conversation will be saved."

// Confirmer asks the user to confirm a destructive action
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Lifecycle starts, archives and resets sessions
type Lifecycle struct {
	identity    *IdentityStore
	store       *Persistence
	history     *History
	pipeline    *Pipeline
	suggestions *Suggester
	observer    *ContextObserver
	view        View
	renderer    *Renderer
	now         func() time.Time

	mu      sync.Mutex
	session Session
	usedIDs map[string]struct{}
}

// LifecycleOptions wires a Lifecycle
type LifecycleOptions struct {
	Identity    *IdentityStore
	Store       *Persistence
	History     *History
	Pipeline    *Pipeline
	Suggestions *Suggester
	Observer    *ContextObserver
	View        View
	Renderer    *Renderer
}

// NewLifecycle creates a Lifecycle
func NewLifecycle(opts LifecycleOptions) *Lifecycle {
	view := opts.View
	if view == nil {
		view = NopView{}
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = NewRenderer(HTMLMarkup, false)
	}
	return &Lifecycle{
		identity:    opts.Identity,
		store:       opts.Store,
		history:     opts.History,
		pipeline:    opts.Pipeline,
		suggestions: opts.Suggestions,
		observer:    opts.Observer,
		view:        view,
		renderer:    renderer,
		now:         time.Now,
		usedIDs:     make(map[string]struct{}),
	}
}

// Start resumes the persisted session, or creates one, and restores its history
func (l *Lifecycle) Start() Session {
	id := l.identity.GetOrCreateSessionID()

	l.mu.Lock()
	l.session = Session{ID: id, CreatedAt: l.now()}
	l.usedIDs[id] = struct{}{}
	for _, a := range l.store.ListArchived() {
		l.usedIDs[a.SessionID] = struct{}{}
	}
	session := l.session
	l.mu.Unlock()

	restored := l.history.Restore()
	if len(restored) == 0 {
		l.view.AppendMessage(RoleAssistant, l.renderer.Render(WelcomeText(l.observer.Current())))
	}
	for _, msg := range restored {
		l.view.AppendMessage(msg.Role, l.renderer.Render(msg.Content))
	}
	LogDebug("Session %s started with %d restored message(s)", id, len(restored))
	return session
}

// Current returns the live session
func (l *Lifecycle) Current() Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session
}

// NewSession archives the live session and starts a fresh one after the user
// confirms. A decline returns ErrDeclined without changing anything, and a reset
// is refused while a message is in flight. When the archive cannot be written
// the live session is kept as it was and the storage error is returned.
func (l *Lifecycle) NewSession(c Confirmer) (Session, error) {
	if l.pipeline != nil {
		if !l.pipeline.hold() {
			return l.Current(), ErrSendInFlight
		}
		defer l.pipeline.release()
	}
	if c == nil || !c.Confirm(NewSessionPrompt) {
		return l.Current(), ErrDeclined
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	archived := ArchivedSession{
		SessionID:           l.session.ID,
		Timestamp:           l.now().UTC().Format(archiveTimeLayout),
		ChatHistory:         l.history.Messages(),
		ConversationHistory: l.history.Turns(),
	}
	ops, err := ResetOps(archived)
	if err != nil {
		return l.session, fmt.Errorf("failed to archive session: %w", err)
	}

	id := l.freshIDLocked()
	if err := l.identity.Switch(id, ops...); err != nil {
		LogWarn("Session %s kept, reset failed: %v", l.session.ID, err)
		return l.session, fmt.Errorf("failed to start new session: %w", err)
	}

	l.usedIDs[id] = struct{}{}
	l.session = Session{ID: id, CreatedAt: l.now()}
	l.history.Reset()

	l.view.ClearMessages()
	l.view.AppendMessage(RoleAssistant, l.renderer.Render(NewSessionText(l.observer.Current())))
	if l.suggestions != nil {
		l.suggestions.Reset()
		l.suggestions.Refresh()
	}

	LogInfo("Archived session %s, started %s", archived.SessionID, id)
	return l.session, nil
}

// Announce records a system message in the live session. It is serialized with
// NewSession so the message never lands in a history that is being archived.
func (l *Lifecycle) Announce(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history.Append(RoleSystem, text)
	l.view.AppendMessage(RoleSystem, l.renderer.Render(text))
}

// freshIDLocked generates an id never used as a live id by this client
func (l *Lifecycle) freshIDLocked() string {
	for {
		id := l.identity.Generate()
		if _, used := l.usedIDs[id]; !used {
			return id
		}
	}
}

// WelcomeText greets the user when there is no history
func WelcomeText(m ModuleContext) string {
	return "👋 Hi! I'm your AI math tutor.\n**I can see you're on: " + m.DisplayName + "**\nAsk me anything about this module!"
}

// NewSessionText greets the user after a reset
func NewSessionText(m ModuleContext) string {
	return "🆕 New session started!\n**Module: " + m.DisplayName + "**\nWhat would you like to learn?"
}
