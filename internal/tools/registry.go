// ABOUTME: Startup-built registry mapping tool names to descriptors in the mcpd process.
// ABOUTME: Manages registration, duplicate detection, and registration-order listing.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrDuplicateTool indicates a tool name is already registered.
var ErrDuplicateTool = errors.New("tool already registered")

// Handler executes a tool. It receives the schema-validated arguments
// object as JSON and returns a Result or an error. A returned error
// means the tool ran and failed; the dispatcher reports it as a
// tool-level error result, not a protocol failure.
type Handler func(ctx context.Context, args json.RawMessage) (*Result, error)

// Descriptor describes one registered tool. Created once at
// registration time and immutable thereafter; owned by the Registry.
type Descriptor struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     Handler

	schema *compiledSchema
}

// ValidateArguments checks an arguments object against the tool's
// input schema. Returns nil when the arguments are valid.
func (d *Descriptor) ValidateArguments(args json.RawMessage) []Violation {
	return d.schema.validate(args)
}

// Registry maintains the mapping from tool name to descriptor. It is
// populated by explicit Register calls during process startup, before
// the HTTP listener binds, and is read-only while serving.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Descriptor
	order  []*Descriptor
	logger *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		byName: make(map[string]*Descriptor),
		logger: logger,
	}
}

// Register validates and stores a tool descriptor. The input schema is
// compiled here so a malformed schema fails at startup rather than on
// the first call. Returns ErrDuplicateTool if the name is taken.
func (r *Registry) Register(d *Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if d.Handler == nil {
		return fmt.Errorf("tool '%s': handler is required", d.Name)
	}

	schema, err := compileSchema(d.InputSchema)
	if err != nil {
		return fmt.Errorf("tool '%s': %w", d.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[d.Name]; exists {
		return fmt.Errorf("%w: '%s'", ErrDuplicateTool, d.Name)
	}

	d.schema = schema
	r.byName[d.Name] = d
	r.order = append(r.order, d)

	r.logger.Info("tool registered", "tool_name", d.Name, "total_tools", len(r.order))

	return nil
}

// List returns all descriptors in registration order.
func (r *Registry) List() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Descriptor, len(r.order))
	copy(result, r.order)
	return result
}

// Get returns the descriptor for a tool name, or nil if not registered.
func (r *Registry) Get(name string) *Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.byName[name]
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Result is the outcome of one tool invocation.
type Result struct {
	Content           []Content `json:"content"`
	StructuredContent any       `json:"structuredContent,omitempty"`
	IsError           bool      `json:"isError"`
}

// Content is one typed content block in a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// TextResult builds a successful result carrying a text block and an
// optional structured mirror of the same data.
func TextResult(text string, structured any) *Result {
	return &Result{
		Content:           []Content{{Type: "text", Text: text}},
		StructuredContent: structured,
	}
}

// ErrorResult builds a tool-level failure result.
func ErrorResult(text string) *Result {
	return &Result{
		Content: []Content{{Type: "text", Text: text}},
		IsError: true,
	}
}
