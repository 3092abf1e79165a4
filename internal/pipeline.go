package internal

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Texts shown in place of a reply when a send fails
const (
	RejectedReplyText   = "Sorry, I encountered an error. Please try again."
	ConnectionErrorText = "Connection error. Please check your internet."
)

// SendState is the message pipeline state
type SendState int32

const (
	StateIdle SendState = iota
	StateSending
	StateSuccess
	StateFailure
)

func (s SendState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// SendOutcome describes how a send finished
type SendOutcome struct {
	State SendState // StateSuccess or StateFailure
	Reply string    // assistant reply, or the error text shown to the user
	Err   error
}

// PendingSend is the handle returned for an in-flight message
type PendingSend struct {
	done    chan struct{}
	outcome SendOutcome
}

// Done is closed once the send has finished and the pipeline is idle again
func (p *PendingSend) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the send finishes
func (p *PendingSend) Wait() SendOutcome {
	<-p.done
	return p.outcome
}

// SuggestionRefresher schedules a suggestion refresh
type SuggestionRefresher interface {
	RefreshAfter(d time.Duration)
}

// Pipeline sends user messages to the backend and records the exchange.
// At most one send is in flight; a second Send while busy is rejected.
type Pipeline struct {
	history     *History
	observer    *ContextObserver
	backend     Backend
	view        View
	renderer    *Renderer
	suggestions SuggestionRefresher
	settleDelay time.Duration

	state atomic.Int32
	wg    sync.WaitGroup
}

// PipelineOptions wires a Pipeline
type PipelineOptions struct {
	History     *History
	Observer    *ContextObserver
	Backend     Backend
	View        View
	Renderer    *Renderer
	Suggestions SuggestionRefresher
	SettleDelay time.Duration
}

// NewPipeline creates an idle Pipeline
func NewPipeline(opts PipelineOptions) *Pipeline {
	view := opts.View
	if view == nil {
		view = NopView{}
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = NewRenderer(HTMLMarkup, false)
	}
	return &Pipeline{
		history:     opts.History,
		observer:    opts.Observer,
		backend:     opts.Backend,
		view:        view,
		renderer:    renderer,
		suggestions: opts.Suggestions,
		settleDelay: opts.SettleDelay,
	}
}

// State returns the current pipeline state
func (p *Pipeline) State() SendState {
	return SendState(p.state.Load())
}

// Busy reports whether a send is in flight
func (p *Pipeline) Busy() bool {
	return p.State() != StateIdle
}

// Send echoes text into the history, then posts it to the backend in the
// background. Empty input returns ErrEmptyMessage and a concurrent call returns
// ErrSendInFlight; neither changes any state.
func (p *Pipeline) Send(ctx context.Context, text string) (*PendingSend, error) {
	message := strings.TrimSpace(text)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateSending)) {
		return nil, ErrSendInFlight
	}

	// History sent to the backend excludes the message being sent
	prior := p.history.Turns()

	p.history.Append(RoleUser, message)
	p.view.AppendMessage(RoleUser, p.renderer.Render(message))
	p.view.ClearInput()
	p.view.ShowTyping()

	module := p.observer.Current()
	req := ChatRequest{
		Message: message,
		Module:  module.Key,
		Context: p.observer.Snapshot(),
		History: prior,
	}

	pending := &PendingSend{done: make(chan struct{})}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		pending.outcome = p.complete(context.WithoutCancel(ctx), req)
		p.state.Store(int32(StateIdle))
		close(pending.done)
	}()
	return pending, nil
}

func (p *Pipeline) complete(ctx context.Context, req ChatRequest) SendOutcome {
	var resp *ChatResponse
	err := ErrNoBackend
	if p.backend != nil {
		resp, err = p.backend.Chat(ctx, req)
	}
	p.view.HideTyping()

	userTurn := ConversationTurn{Role: RoleUser, Content: req.Message}

	if err != nil || resp == nil || !resp.Success {
		p.state.Store(int32(StateFailure))
		text := ConnectionErrorText
		if err == nil {
			text = RejectedReplyText
			err = ErrBackendRejected
		}
		LogWarn("Chat request failed: %v", err)

		p.history.Append(RoleAssistant, text)
		p.view.AppendMessage(RoleAssistant, p.renderer.Render(text))
		p.history.AppendTurns(userTurn)
		return SendOutcome{State: StateFailure, Reply: text, Err: err}
	}

	p.state.Store(int32(StateSuccess))
	p.history.Append(RoleAssistant, resp.Response)
	p.view.AppendMessage(RoleAssistant, p.renderer.Render(resp.Response))
	p.history.AppendTurns(userTurn, ConversationTurn{Role: RoleAssistant, Content: resp.Response})

	if p.suggestions != nil {
		p.suggestions.RefreshAfter(p.settleDelay)
	}
	return SendOutcome{State: StateSuccess, Reply: resp.Response}
}

// hold blocks new sends while the caller mutates session state. It fails if a
// send is in flight.
func (p *Pipeline) hold() bool {
	return p.state.CompareAndSwap(int32(StateIdle), int32(StateSending))
}

func (p *Pipeline) release() {
	p.state.Store(int32(StateIdle))
}

// Wait blocks until every in-flight send has finished
func (p *Pipeline) Wait() {
	p.wg.Wait()
}
