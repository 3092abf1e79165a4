package internal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestAssistant(t *testing.T, path string) (*Assistant, *MemoryHistory, *StubBackend, *RecordingView) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Timing.LinkDelay = 0
	cfg.Timing.SettleDelay = 0

	loc := NewMemoryHistory(path)
	backend := &StubBackend{Reply: "Sure.", Suggestions: []string{"What next?", "Get started now"}}
	view := &RecordingView{}
	a := NewAssistant(AssistantOptions{
		Config:   cfg,
		KV:       NewMemoryKV(),
		Backend:  backend,
		View:     view,
		Location: loc,
	})
	t.Cleanup(a.Shutdown)
	return a, loc, backend, view
}

func TestAssistant_StartSetsModule(t *testing.T) {
	a, _, _, view := newTestAssistant(t, "/neural")
	session := a.Start()

	assert.Equal(t, session, a.Session())
	assert.Equal(t, "Neural Networks", view.ModuleName)
	assert.Equal(t, "Ask about Neural Networks...", view.Placeholder)
	require.Len(t, view.Snapshot(), 1)
}

func TestAssistant_NavigationSwitchesModule(t *testing.T) {
	a, loc, _, view := newTestAssistant(t, "/")
	a.Start()

	loc.Push("/vectors")
	a.Watcher().HistoryChanged()
	loc.Push("/vectors/span")
	a.Watcher().LinkClicked()

	assert.Equal(t, "vectors", a.Observer().Current().Key)
	assert.Equal(t, "Vector Spaces", view.ModuleName)
	assert.Equal(t, "Ask about Vector Spaces...", view.Placeholder)

	msgs := a.History().Messages()
	require.Len(t, msgs, 1, "one switch message for one module change")
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, "Switched to Vector Spaces", msgs[0].Content)
	assert.Empty(t, a.History().Turns())

	loc.Back()
	loc.Back()
	a.Watcher().PopState()
	msgs = a.History().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Switched to Dashboard", msgs[1].Content)
}

func TestAssistant_ToggleRefreshesSuggestions(t *testing.T) {
	a, _, backend, view := newTestAssistant(t, "/")
	a.Start()

	assert.True(t, a.Toggle())
	assert.True(t, view.Open)
	assert.Eventually(t, func() bool { return len(a.Suggestions().Current()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"What next?"}, a.Suggestions().Current())

	assert.False(t, a.Toggle())
	assert.False(t, a.IsOpen())
	a.Suggestions().Close()
	assert.Equal(t, 1, backend.SuggestCalls())
}

func TestAssistant_ActivateSuggestion(t *testing.T) {
	a, _, backend, view := newTestAssistant(t, "/pca")
	a.Start()

	_, err := a.ActivateSuggestion(context.Background(), 0)
	require.Error(t, err, "no suggestions loaded yet")

	_, err = a.Suggestions().Load(context.Background())
	require.NoError(t, err)

	pending, err := a.ActivateSuggestion(context.Background(), 0)
	require.NoError(t, err)
	outcome := pending.Wait()
	require.Equal(t, StateSuccess, outcome.State)

	require.Equal(t, 1, backend.ChatCalls())
	assert.Equal(t, "What next?", backend.ChatRequests[0].Message)
	assert.Equal(t, "", view.Input, "input cleared after send")

	_, err = a.ActivateSuggestion(context.Background(), 5)
	assert.Error(t, err)
}

func TestAssistant_RecordInteractionInContext(t *testing.T) {
	a, _, backend, _ := newTestAssistant(t, "/gradient")
	a.Start()

	provider := NewGradientProvider()
	provider.Set("learning_rate", "0.05")
	a.RegisterProvider(provider)
	a.RecordInteraction("step-button")
	a.RecordInteraction("reset-button")

	pending, err := a.Send(context.Background(), "Why does it diverge?")
	require.NoError(t, err)
	pending.Wait()

	ctx := backend.ChatRequests[0].Context
	assert.Equal(t, "interaction, interaction", ctx.RecentActions)
	assert.Equal(t, "0.05", ctx.Params["learning_rate"])
	assert.Equal(t, "Gradient Descent", ctx.PageTitle)
}

func TestAssistant_NewSession(t *testing.T) {
	a, _, _, view := newTestAssistant(t, "/")
	old := a.Start()

	pending, err := a.Send(context.Background(), "hello")
	require.NoError(t, err)
	pending.Wait()

	session, err := a.NewSession(ConfirmFunc(func(string) bool { return true }))
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, session.ID)
	assert.Equal(t, session, a.Session())

	archived := a.Persistence().ListArchived()
	require.Len(t, archived, 1)
	assert.Equal(t, old.ID, archived[0].SessionID)

	msgs := view.Snapshot()
	require.Len(t, msgs, 1)
	assert.True(t, strings.Contains(msgs[0].Markup, "New session started"))
}

func TestAssistant_ShutdownLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := DefaultConfig()
	cfg.Timing.SettleDelay = time.Hour
	backend := &StubBackend{Reply: "ok"}
	a := NewAssistant(AssistantOptions{Config: cfg, Backend: backend})
	a.Start()

	pending, err := a.Send(context.Background(), "hi")
	require.NoError(t, err)
	pending.Wait()
	a.Watcher().LinkClicked()

	a.Shutdown()
}
