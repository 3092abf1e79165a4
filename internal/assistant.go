package internal

import (
	"context"
	"fmt"
	"sync"
)

// Assistant wires the session, context, pipeline and suggestion components.
// It is constructed once by the host and passed to whatever needs it.
type Assistant struct {
	identity    *IdentityStore
	store       *Persistence
	history     *History
	activity    *ActivityLog
	observer    *ContextObserver
	watcher     *RouteWatcher
	view        View
	renderer    *Renderer
	pipeline    *Pipeline
	suggestions *Suggester
	lifecycle   *Lifecycle
	layout      *LayoutPrefs

	mu   sync.Mutex
	open bool
}

// AssistantOptions configures NewAssistant. Config may be nil for defaults.
type AssistantOptions struct {
	Config   *Config
	KV       KV
	Backend  Backend
	View     View
	Location Location
	Markup   *Markup
}

// NewAssistant builds an Assistant. Call Start before use.
func NewAssistant(opts AssistantOptions) *Assistant {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	kv := opts.KV
	if kv == nil {
		kv = NewMemoryKV()
	}
	view := opts.View
	if view == nil {
		view = NopView{}
	}
	loc := opts.Location
	if loc == nil {
		loc = NewMemoryHistory("/")
	}
	markup := HTMLMarkup
	if opts.Markup != nil {
		markup = *opts.Markup
	}

	a := &Assistant{
		identity: NewIdentityStore(kv),
		store:    NewPersistence(kv),
		activity: NewActivityLog(cfg.Activity.Capacity),
		view:     view,
		renderer: NewRenderer(markup, cfg.Render.Sanitize),
		layout:   NewLayoutPrefs(kv),
	}
	a.history = NewHistory(a.store)
	a.observer = NewContextObserver(loc.Path(), a.activity)
	a.watcher = NewRouteWatcher(loc, cfg.Timing.LinkDelay)
	a.suggestions = NewSuggester(a.history, a.observer, opts.Backend, view)
	a.pipeline = NewPipeline(PipelineOptions{
		History:     a.history,
		Observer:    a.observer,
		Backend:     opts.Backend,
		View:        view,
		Renderer:    a.renderer,
		Suggestions: a.suggestions,
		SettleDelay: cfg.Timing.SettleDelay,
	})
	a.lifecycle = NewLifecycle(LifecycleOptions{
		Identity:    a.identity,
		Store:       a.store,
		History:     a.history,
		Pipeline:    a.pipeline,
		Suggestions: a.suggestions,
		Observer:    a.observer,
		View:        view,
		Renderer:    a.renderer,
	})

	a.watcher.Subscribe(func(path string) { a.observer.OnRoute(path) })
	a.observer.OnSwitch(a.handleSwitch)
	return a
}

// Start resumes the persisted session and draws the initial view
func (a *Assistant) Start() Session {
	current := a.observer.Current()
	a.view.SetModuleName(current.DisplayName)
	a.view.SetPlaceholder(Placeholder(current))
	return a.lifecycle.Start()
}

func (a *Assistant) handleSwitch(_, next ModuleContext) {
	a.view.SetModuleName(next.DisplayName)
	a.view.SetPlaceholder(Placeholder(next))

	a.lifecycle.Announce("Switched to " + next.DisplayName)

	if a.IsOpen() {
		a.suggestions.Refresh()
	}
}

// Toggle opens or closes the panel and returns the new state.
// Opening refreshes suggestions; closing does not abort pending requests.
func (a *Assistant) Toggle() bool {
	a.mu.Lock()
	a.open = !a.open
	open := a.open
	a.mu.Unlock()

	a.view.SetOpen(open)
	if open {
		a.suggestions.Refresh()
	}
	return open
}

// IsOpen reports whether the panel is open
func (a *Assistant) IsOpen() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.open
}

// Send sends a user message
func (a *Assistant) Send(ctx context.Context, text string) (*PendingSend, error) {
	return a.pipeline.Send(ctx, text)
}

// ActivateSuggestion puts the i-th displayed suggestion into the input and sends it
func (a *Assistant) ActivateSuggestion(ctx context.Context, i int) (*PendingSend, error) {
	current := a.suggestions.Current()
	if i < 0 || i >= len(current) {
		return nil, fmt.Errorf("no suggestion at position %d", i+1)
	}
	a.view.SetInput(current[i])
	return a.pipeline.Send(ctx, current[i])
}

// RecordInteraction logs a click on an interactive element
func (a *Assistant) RecordInteraction(element string) {
	a.activity.Push("interaction", element)
}

// NewSession archives the live session after confirmation and starts a new one
func (a *Assistant) NewSession(c Confirmer) (Session, error) {
	return a.lifecycle.NewSession(c)
}

// RegisterProvider attaches a module context provider
func (a *Assistant) RegisterProvider(p ContextProvider) {
	a.observer.RegisterProvider(p)
}

// Shutdown stops deferred work and waits for in-flight requests
func (a *Assistant) Shutdown() {
	a.watcher.Close()
	a.pipeline.Wait()
	a.suggestions.Close()
}

func (a *Assistant) Session() Session { return a.lifecycle.Current() }
func (a *Assistant) Watcher() *RouteWatcher { return a.watcher }
func (a *Assistant) Observer() *ContextObserver { return a.observer }
func (a *Assistant) History() *History { return a.history }
func (a *Assistant) Suggestions() *Suggester { return a.suggestions }
func (a *Assistant) Persistence() *Persistence { return a.store }
func (a *Assistant) Layout() *LayoutPrefs { return a.layout }
