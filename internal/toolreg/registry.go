// Package toolreg implements the tool registry contract: a name -> (handler,
// schema) mapping whose dispatch never raises to the caller.
package toolreg

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/conduitrun/conduit/internal/convo"
)

// Handler executes a tool call. It may return an error; Dispatch converts
// any error (or panic) into a stable tool-result string, never propagating
// it to the model loop.
type Handler func(arguments json.RawMessage) (string, error)

// entry pairs a handler with the schema the model sees for it.
type entry struct {
	handler Handler
	schema  convo.ToolSchema
}

// Registry is name -> (handler, schema), safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register installs handler under name, replacing any prior entry. schema is
// the single source of truth for the name the model sees.
func (r *Registry) Register(name string, handler Handler, schema convo.ToolSchema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; !exists {
		r.order = append(r.order, name)
	}
	r.entries[name] = entry{handler: handler, schema: schema}
}

// Unregister removes name, if present.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; !exists {
		return
	}
	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Schemas returns the ordered list of schemas to pass to a provider.
func (r *Registry) Schemas() []convo.ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]convo.ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].schema)
	}
	return out
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Dispatch invokes the handler registered under name with arguments,
// converting the result (or absence of one) to a string. It catches every
// handler error and panic, returning a string beginning with "Error:" or
// "Tool '<name>' failed:" that the model can read. Dispatch never raises.
func (r *Registry) Dispatch(name string, arguments json.RawMessage) (result string) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Sprintf("Error: Unknown tool '%s'", name)
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = fmt.Sprintf("Tool '%s' failed: panic: %v", name, rec)
		}
	}()

	out, err := e.handler(arguments)
	if err != nil {
		return fmt.Sprintf("Tool '%s' failed: %v", name, err)
	}
	return out
}

// Flags is a configuration bag of tool-group gates; file ops are always on,
// the rest are gated behind a matching boolean.
type Flags struct {
	Terminal  bool
	Web       bool
	Browser   bool
	Voice     bool
	Memory    bool
	Skills    bool
	Scheduler bool
	Registry  bool
	Screen    bool
	Sandbox   bool
	Presence  bool
	Recording bool
	Outreach  bool
	Connectors bool
}

// BuiltinGroup is one named group of tools, installed by BulkLoad when its
// flag is set (or always, for file ops).
type BuiltinGroup struct {
	Name    string
	Enabled func(Flags) bool
	Install func(*Registry)
}

// BulkLoad registers every built-in group whose Enabled predicate returns
// true for flags, plus any group with Enabled == nil (file ops: always on).
func BulkLoad(r *Registry, flags Flags, groups []BuiltinGroup) {
	names := make([]string, 0, len(groups))
	byName := make(map[string]BuiltinGroup, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
		byName[g.Name] = g
	}
	sort.Strings(names)
	for _, name := range names {
		g := byName[name]
		if g.Enabled == nil || g.Enabled(flags) {
			g.Install(r)
		}
	}
}
