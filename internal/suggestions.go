package internal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	maxSuggestions     = 3
	suggestionTurnSpan = 4
)

// Generic onboarding phrases that make poor follow-up prompts
var suggestionDenylist = []string{"get started", "click", "button"}

// FilterSuggestions drops empty and generic candidates and keeps at most three
func FilterSuggestions(candidates []string) []string {
	out := make([]string, 0, maxSuggestions)
	for _, s := range candidates {
		if strings.TrimSpace(s) == "" || denied(s) {
			continue
		}
		out = append(out, s)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

func denied(s string) bool {
	lower := strings.ToLower(s)
	for _, phrase := range suggestionDenylist {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Suggester fetches follow-up prompts for the current conversation. Failures
// are absorbed: the previously shown suggestions stay in place.
type Suggester struct {
	history  *History
	observer *ContextObserver
	backend  Backend
	view     View

	group singleflight.Group
	wg    sync.WaitGroup

	mu         sync.Mutex
	current    []string
	generation uint64
	timers     map[*time.Timer]struct{}
	closed     bool
}

// NewSuggester creates a Suggester
func NewSuggester(history *History, observer *ContextObserver, backend Backend, view View) *Suggester {
	if view == nil {
		view = NopView{}
	}
	return &Suggester{
		history:  history,
		observer: observer,
		backend:  backend,
		view:     view,
		timers:   make(map[*time.Timer]struct{}),
	}
}

// Request builds the suggestion request for the current state
func (s *Suggester) Request() SuggestRequest {
	recent := s.history.RecentTurns(suggestionTurnSpan)
	lastUser := ""
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i].Role == RoleUser {
			lastUser = recent[i].Content
			break
		}
	}
	return SuggestRequest{
		Module:          s.observer.Current().Key,
		RecentMessages:  recent,
		LastUserMessage: lastUser,
		HasConversation: len(s.history.Turns()) > 0,
	}
}

// Load fetches, filters and displays suggestions. Concurrent loads for the same
// state share one backend call. Results that arrive after a Reset are dropped.
func (s *Suggester) Load(ctx context.Context) ([]string, error) {
	if s.backend == nil {
		return s.Current(), ErrNoBackend
	}
	s.mu.Lock()
	generation := s.generation
	s.mu.Unlock()

	req := s.Request()
	key := fmt.Sprintf("%d:%s:%d:%s", generation, req.Module, len(req.RecentMessages), req.LastUserMessage)

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		resp, err := s.backend.Suggest(ctx, req)
		if err != nil {
			return nil, err
		}
		return FilterSuggestions(resp.Suggestions), nil
	})
	if err != nil {
		LogDebug("Failed to load suggestions: %v", err)
		return s.Current(), err
	}

	suggestions := v.([]string)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		LogDebug("Dropping suggestions requested before the session changed")
		return append([]string(nil), s.current...), nil
	}
	s.current = suggestions
	s.view.SetSuggestions(suggestions)
	return append([]string(nil), suggestions...), nil
}

// Reset clears the displayed suggestions and invalidates loads still in flight
func (s *Suggester) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.current = nil
	s.view.SetSuggestions(nil)
}

// Current returns the suggestions last displayed
func (s *Suggester) Current() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.current))
	copy(out, s.current)
	return out
}

// Refresh loads suggestions in the background
func (s *Suggester) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.goLoad()
}

// RefreshAfter loads suggestions in the background once d has elapsed
func (s *Suggester) RefreshAfter(d time.Duration) {
	if d <= 0 {
		s.Refresh()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.timers, t)
		if !s.closed {
			s.goLoad()
		}
	})
	s.timers[t] = struct{}{}
}

// goLoad must be called with s.mu held
func (s *Suggester) goLoad() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, _ = s.Load(context.Background())
	}()
}

// Close cancels scheduled refreshes and waits for running ones
func (s *Suggester) Close() {
	s.mu.Lock()
	s.closed = true
	for t := range s.timers {
		t.Stop()
	}
	s.timers = make(map[*time.Timer]struct{})
	s.mu.Unlock()
	s.wg.Wait()
}
