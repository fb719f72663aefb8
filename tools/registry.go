package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Registry is a thread-safe tool registry. Arguments are validated against
// each tool's InputSchema before Execute is called.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	schemas map[string]*gojsonschema.Schema
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:   make(map[string]Tool),
		schemas: make(map[string]*gojsonschema.Schema),
	}
}

// Register adds a tool to the registry. Returns an error if a tool with the
// same name is already registered or its InputSchema does not compile.
func (r *Registry) Register(t Tool) error {
	schema, err := compileSchema(t.InputSchema())
	if err != nil {
		return fmt.Errorf("tool %q: %w", t.Name(), err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("tool already registered: %q", t.Name())
	}
	r.tools[t.Name()] = t
	r.schemas[t.Name()] = schema
	return nil
}

// Get returns the tool with the given name, or nil if not found.
func (r *Registry) Get(name string) Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// List returns the names of all registered tools, sorted alphabetically.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the definitions of all registered tools, sorted by name.
func (r *Registry) Definitions() []Definition {
	names := r.List()

	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			defs = append(defs, ToDefinition(t))
		}
	}
	return defs
}

// Execute validates arguments and runs the named tool. Empty arguments are
// treated as an empty object.
func (r *Registry) Execute(ctx context.Context, name string, arguments json.RawMessage) (string, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	schema := r.schemas[name]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	arguments = normalizeArgs(arguments)
	if err := validateArgs(schema, name, arguments); err != nil {
		return "", err
	}
	return t.Execute(ctx, arguments)
}

// Filter returns a new Registry containing only tools whose names are in the
// allowed list. An empty list keeps every tool.
func (r *Registry) Filter(allowed []string) *Registry {
	filtered := NewRegistry()
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(allowed) == 0 {
		for name, tool := range r.tools {
			filtered.tools[name] = tool
			filtered.schemas[name] = r.schemas[name]
		}
		return filtered
	}

	allowSet := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		allowSet[name] = true
	}
	for name, tool := range r.tools {
		if allowSet[name] {
			filtered.tools[name] = tool
			filtered.schemas[name] = r.schemas[name]
		}
	}
	return filtered
}
