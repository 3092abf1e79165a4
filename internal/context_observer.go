package internal

import (
	"encoding/json"
	"sync"
	"time"
)

// recentActionCount is how many activity entries are surfaced in chat context
const recentActionCount = 3

// ContextProvider exposes module-specific parameters to the assistant.
// Visualizers register one per module instead of the assistant reading their fields.
type ContextProvider interface {
	Module() string
	Version() int
	// Params returns the currently known parameters. Unset values are omitted.
	Params() map[string]string
}

// ChatContext is the context object sent alongside every chat message
type ChatContext struct {
	Module        string
	PageTitle     string
	Timestamp     string
	RecentActions string
	Params        map[string]string
}

// MarshalJSON flattens provider params next to the fixed keys
func (c ChatContext) MarshalJSON() ([]byte, error) {
	obj := make(map[string]interface{}, 4+len(c.Params))
	for k, v := range c.Params {
		obj[k] = v
	}
	obj["module"] = c.Module
	obj["page_title"] = c.PageTitle
	obj["timestamp"] = c.Timestamp
	obj["recent_actions"] = c.RecentActions
	return json.Marshal(obj)
}

// UnmarshalJSON is the inverse of MarshalJSON. Unknown string keys become Params.
func (c *ChatContext) UnmarshalJSON(data []byte) error {
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*c = ChatContext{}
	for k, v := range obj {
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch k {
		case "module":
			c.Module = s
		case "page_title":
			c.PageTitle = s
		case "timestamp":
			c.Timestamp = s
		case "recent_actions":
			c.RecentActions = s
		default:
			if c.Params == nil {
				c.Params = make(map[string]string)
			}
			c.Params[k] = s
		}
	}
	return nil
}

// SwitchHandler is called when the observed module changes
type SwitchHandler func(prev, next ModuleContext)

// ContextObserver tracks the active module and recent interactions
type ContextObserver struct {
	activity *ActivityLog
	now      func() time.Time

	mu        sync.RWMutex
	current   ModuleContext
	providers map[string]ContextProvider
	onSwitch  []SwitchHandler
}

// NewContextObserver creates an observer starting at path
func NewContextObserver(path string, activity *ActivityLog) *ContextObserver {
	return &ContextObserver{
		activity:  activity,
		now:       time.Now,
		current:   ModuleForPath(path),
		providers: make(map[string]ContextProvider),
	}
}

// OnSwitch registers a handler for module changes
func (o *ContextObserver) OnSwitch(fn SwitchHandler) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onSwitch = append(o.onSwitch, fn)
}

// RegisterProvider attaches a context provider to its module, replacing any
// provider with a lower version
func (o *ContextObserver) RegisterProvider(p ContextProvider) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if existing, ok := o.providers[p.Module()]; ok && existing.Version() > p.Version() {
		LogDebug("Ignoring %s context provider v%d, v%d already registered", p.Module(), p.Version(), existing.Version())
		return
	}
	o.providers[p.Module()] = p
}

// Current returns the active module
func (o *ContextObserver) Current() ModuleContext {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.current
}

// Activity returns the interaction log
func (o *ContextObserver) Activity() *ActivityLog {
	return o.activity
}

// OnRoute recomputes the module for path. It reports whether the module changed;
// switch handlers run only on change.
func (o *ContextObserver) OnRoute(path string) bool {
	next := ModuleForPath(path)

	o.mu.Lock()
	prev := o.current
	if prev.Key == next.Key {
		o.mu.Unlock()
		return false
	}
	o.current = next
	handlers := make([]SwitchHandler, len(o.onSwitch))
	copy(handlers, o.onSwitch)
	o.mu.Unlock()

	LogInfo("Module switched: %s -> %s", prev.Key, next.Key)
	for _, fn := range handlers {
		fn(prev, next)
	}
	return true
}

// Snapshot assembles the context payload for the current module
func (o *ContextObserver) Snapshot() ChatContext {
	o.mu.RLock()
	current := o.current
	provider := o.providers[current.Key]
	o.mu.RUnlock()

	ctx := ChatContext{
		Module:        current.Key,
		PageTitle:     current.DisplayName,
		Timestamp:     o.now().UTC().Format(time.RFC3339),
		RecentActions: o.activity.Trail(recentActionCount),
	}
	if provider != nil {
		params := make(map[string]string)
		for k, v := range provider.Params() {
			if v != "" {
				params[k] = v
			}
		}
		if len(params) > 0 {
			ctx.Params = params
		}
	}
	return ctx
}

// FieldProvider is a ContextProvider backed by named fields the host fills in
type FieldProvider struct {
	module  string
	version int
	fields  []string

	mu     sync.RWMutex
	values map[string]string
}

// NewFieldProvider creates a provider reporting the named fields of module
func NewFieldProvider(module string, version int, fields ...string) *FieldProvider {
	return &FieldProvider{
		module:  module,
		version: version,
		fields:  fields,
		values:  make(map[string]string),
	}
}

// NewGradientProvider reports the gradient descent visualizer's inputs
func NewGradientProvider() *FieldProvider {
	return NewFieldProvider("gradient", 1, "learning_rate", "iterations")
}

func (p *FieldProvider) Module() string { return p.module }

func (p *FieldProvider) Version() int { return p.version }

// Set updates a field. Unknown fields are ignored; an empty value clears the field.
func (p *FieldProvider) Set(field, value string) bool {
	known := false
	for _, f := range p.fields {
		if f == field {
			known = true
			break
		}
	}
	if !known {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if value == "" {
		delete(p.values, field)
	} else {
		p.values[field] = value
	}
	return true
}

// Params returns the fields that currently hold a value
func (p *FieldProvider) Params() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}
