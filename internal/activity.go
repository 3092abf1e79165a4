package internal

import (
	"strings"
	"sync"
	"time"
)

// NoActivityPlaceholder is reported when no interaction has been recorded yet
const NoActivityPlaceholder = "Just opened page"

// ActivityLog is a bounded FIFO of recent interactions
type ActivityLog struct {
	mu       sync.Mutex
	capacity int
	events   []ActivityEvent
	now      func() time.Time
}

// NewActivityLog creates a log holding at most capacity events
func NewActivityLog(capacity int) *ActivityLog {
	if capacity <= 0 {
		capacity = DefaultActivityCap
	}
	return &ActivityLog{
		capacity: capacity,
		events:   make([]ActivityEvent, 0, capacity),
		now:      time.Now,
	}
}

// Push records an interaction, evicting the oldest when full
func (l *ActivityLog) Push(action, element string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.events) == l.capacity {
		copy(l.events, l.events[1:])
		l.events = l.events[:len(l.events)-1]
	}
	l.events = append(l.events, ActivityEvent{
		Action:    action,
		Element:   element,
		Timestamp: l.now().UnixMilli(),
	})
}

// Entries returns a copy of the buffered events, oldest first
func (l *ActivityLog) Entries() []ActivityEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ActivityEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of buffered events
func (l *ActivityLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Trail joins the actions of the last n events, or returns the placeholder
func (l *ActivityLog) Trail(n int) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := len(l.events) - n
	if start < 0 {
		start = 0
	}
	actions := make([]string, 0, n)
	for _, e := range l.events[start:] {
		actions = append(actions, e.Action)
	}
	if len(actions) == 0 {
		return NoActivityPlaceholder
	}
	return strings.Join(actions, ", ")
}
