// Package tools registers assessment providers by name and staff section
// and executes them through the execution event bus.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tailored-agentic-units/feasibility/bus"
)

// Tool describes a provider.
type Tool struct {
	Name        string         `json:"name" yaml:"name"`
	Section     string         `json:"section" yaml:"section"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Handler is the function signature for provider implementations. Results
// are section-specific; callers decode them into typed records.
type Handler func(ctx context.Context, params map[string]any) (any, error)

type entry struct {
	tool    Tool
	handler Handler
}

// Registry holds providers. When created with a Bus, every Execute is
// wrapped by Bus.Invoke so it is observable.
type Registry struct {
	entries map[string]entry
	bus     *bus.Bus
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry. b may be nil, in which case
// handlers run unobserved.
func NewRegistry(b *bus.Bus) *Registry {
	return &Registry{
		entries: make(map[string]entry),
		bus:     b,
	}
}

// Register adds a new provider.
// Returns ErrAlreadyExists if a provider with the same name is already registered.
// Use Replace to update an existing provider's handler.
func (r *Registry) Register(tool Tool, handler Handler) error {
	if tool.Name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, tool.Name)
	}

	r.entries[tool.Name] = entry{tool: tool, handler: handler}
	return nil
}

// Replace updates an existing provider's definition and handler.
// Returns ErrNotFound if no provider with the given name is registered.
func (r *Registry) Replace(tool Tool, handler Handler) error {
	if tool.Name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[tool.Name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, tool.Name)
	}

	r.entries[tool.Name] = entry{tool: tool, handler: handler}
	return nil
}

// Get retrieves a provider definition by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[name]
	return e.tool, exists
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List returns the definitions of all registered providers sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Tool, 0, len(r.entries))
	for _, e := range r.entries {
		list = append(list, e.tool)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Execute dispatches a call to the registered handler by name.
// Returns ErrNotFound if the provider is not registered; no events are
// emitted in that case. Handler errors are returned unchanged.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) (any, error) {
	r.mu.RLock()
	e, exists := r.entries[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	call := func(ctx context.Context) (any, error) {
		return e.handler(ctx, params)
	}

	if r.bus == nil {
		return call(ctx)
	}
	return r.bus.Invoke(ctx, bus.Call{
		Tool:       e.tool.Name,
		Section:    e.tool.Section,
		Parameters: params,
	}, call)
}
