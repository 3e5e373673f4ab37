package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownTool = errors.New("unknown tool")

// ExecError reports a tool that ran and failed.
type ExecError struct {
	Tool string
	Err  error
}

func (e *ExecError) Error() string { return fmt.Sprintf("%s: %v", e.Tool, e.Err) }
func (e *ExecError) Unwrap() error { return e.Err }

// Registry maps tool names to their definitions.
type Registry struct {
	defs map[string]ToolDefinition
}

func NewRegistry(defs ...ToolDefinition) (*Registry, error) {
	r := &Registry{defs: make(map[string]ToolDefinition, len(defs))}
	for _, d := range defs {
		if d.Name == "" || d.Function == nil {
			return nil, fmt.Errorf("tool definition %q is incomplete", d.Name)
		}
		if _, dup := r.defs[d.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", d.Name)
		}
		r.defs[d.Name] = d
	}
	return r, nil
}

// Default returns the registry of all built-in tools.
func Default() *Registry {
	r, err := NewRegistry(RunShellCommandDefinition, ReadFileDefinition, ListFilesDefinition, EditFileDefinition)
	if err != nil {
		panic(err) // static list
	}
	return r
}

func (r *Registry) Lookup(name string) (ToolDefinition, bool) {
	if r == nil {
		return ToolDefinition{}, false
	}
	d, ok := r.defs[name]
	return d, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.defs)
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.defs))
	for n := range r.defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the definitions sorted by name.
func (r *Registry) Definitions() []ToolDefinition {
	names := r.Names()
	out := make([]ToolDefinition, 0, len(names))
	for _, n := range names {
		out = append(out, r.defs[n])
	}
	return out
}

// Run invokes the named tool. Unknown names yield ErrUnknownTool; tool
// failures are wrapped in *ExecError.
func (r *Registry) Run(ctx context.Context, name string, args json.RawMessage) (string, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	out, err := d.Function(ctx, args)
	if err != nil {
		return "", &ExecError{Tool: name, Err: err}
	}
	return out, nil
}
