package internal

import (
	"sync"
	"time"
)

// Location reports the host application's current navigation path
type Location interface {
	Path() string
}

// RouteListener is notified with the current path after every detected transition
type RouteListener func(path string)

// RouteWatcher detects navigation transitions reported by the host application.
// The host calls HistoryChanged after programmatic history updates, PopState on
// back/forward and LinkClicked when a link is activated. Listeners are composed,
// never replaced, so other subscribers keep working.
type RouteWatcher struct {
	loc       Location
	linkDelay time.Duration

	mu        sync.Mutex
	listeners []RouteListener
	pending   map[*time.Timer]struct{}
	closed    bool
}

// NewRouteWatcher creates a watcher reading paths from loc
func NewRouteWatcher(loc Location, linkDelay time.Duration) *RouteWatcher {
	return &RouteWatcher{
		loc:       loc,
		linkDelay: linkDelay,
		pending:   make(map[*time.Timer]struct{}),
	}
}

// Subscribe adds a listener and returns a function removing it
func (w *RouteWatcher) Subscribe(fn RouteListener) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
	idx := len(w.listeners) - 1
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if idx < len(w.listeners) {
			w.listeners[idx] = nil
		}
	}
}

// HistoryChanged reports a programmatic push or replace of the history state
func (w *RouteWatcher) HistoryChanged() {
	w.notify()
}

// PopState reports browser-style back/forward navigation
func (w *RouteWatcher) PopState() {
	w.notify()
}

// LinkClicked reports a link activation. The location is read after the link
// delay so the navigation has time to complete.
func (w *RouteWatcher) LinkClicked() {
	if w.linkDelay <= 0 {
		w.notify()
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(w.linkDelay, func() {
		w.mu.Lock()
		delete(w.pending, t)
		closed := w.closed
		w.mu.Unlock()
		if !closed {
			w.notify()
		}
	})
	w.pending[t] = struct{}{}
}

// Close cancels deferred link checks and stops notifications
func (w *RouteWatcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	for t := range w.pending {
		t.Stop()
	}
	w.pending = make(map[*time.Timer]struct{})
}

func (w *RouteWatcher) notify() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	listeners := make([]RouteListener, len(w.listeners))
	copy(listeners, w.listeners)
	w.mu.Unlock()

	path := w.loc.Path()
	LogDebug("Route transition detected: %s", path)
	for _, fn := range listeners {
		if fn != nil {
			fn(path)
		}
	}
}

// MemoryHistory is a minimal navigation history for hosts without a browser
type MemoryHistory struct {
	mu      sync.Mutex
	entries []string
	index   int
}

// NewMemoryHistory starts a history at path
func NewMemoryHistory(path string) *MemoryHistory {
	return &MemoryHistory{entries: []string{path}}
}

// Path returns the current path
func (h *MemoryHistory) Path() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Push navigates to path, dropping any forward entries
func (h *MemoryHistory) Push(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], path)
	h.index++
}

// Replace swaps the current entry for path
func (h *MemoryHistory) Replace(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = path
}

// Back moves one entry back. It reports false at the start of the history.
func (h *MemoryHistory) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == 0 {
		return false
	}
	h.index--
	return true
}

// Forward moves one entry forward. It reports false at the end of the history.
func (h *MemoryHistory) Forward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index >= len(h.entries)-1 {
		return false
	}
	h.index++
	return true
}
