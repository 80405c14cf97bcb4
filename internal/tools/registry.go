package tools

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dddabtc/winremote-mcp/internal/errors"
)

// Registry manages tool registration and lookup. Registration validates
// the tool's category; lookup enforces the enabled set computed from tier
// configuration. All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	enabled map[string]struct{}
}

// NewRegistry creates a Registry restricted to the given enabled tool
// names. A nil enabled set enables every registered tool.
func NewRegistry(enabled map[string]struct{}) *Registry {
	return &Registry{
		tools:   make(map[string]Tool),
		enabled: enabled,
	}
}

// Register adds a tool to the registry. The category is validated here,
// at registration time, so a submission can never reach the execution
// core with an unrecognized category from a registered tool.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return fmt.Errorf("%w: tool name cannot be empty", errors.ErrInvalidInput)
	}
	if t.Handler == nil {
		return fmt.Errorf("%w: tool %s has no handler", errors.ErrInvalidInput, t.Name)
	}
	if !t.Category.Valid() {
		return fmt.Errorf("%w: tool %s has category %q", errors.ErrUnknownCategory, t.Name, t.Category)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[t.Name]; ok {
		return fmt.Errorf("%w: tool %s already registered", errors.ErrInvalidInput, t.Name)
	}
	r.tools[t.Name] = t
	return nil
}

// Resolve returns the tool registered under name, enforcing the enabled
// set.
func (r *Registry) Resolve(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return Tool{}, fmt.Errorf("%w: %s", errors.ErrToolNotFound, name)
	}
	if !r.enabledLocked(name) {
		return Tool{}, fmt.Errorf("%w: %s", errors.ErrToolDisabled, name)
	}
	return t, nil
}

// Enabled reports whether the named tool or control operation is in the
// enabled set. Names outside the registry are checked against the set
// alone, which covers the task control operations served by dedicated
// endpoints.
func (r *Registry) Enabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabledLocked(name)
}

func (r *Registry) enabledLocked(name string) bool {
	if r.enabled == nil {
		return true
	}
	_, ok := r.enabled[name]
	return ok
}

// List returns all registered, enabled tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Tool, 0, len(r.tools))
	for name, t := range r.tools {
		if r.enabledLocked(name) {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Count returns the number of registered tools, enabled or not.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
