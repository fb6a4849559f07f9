// Package executor maps parsed commands onto the action backends.
package executor

import (
	"context"
	"sort"
	"time"

	"github.com/flynn-ai/deskpilot/internal/intent"
)

// Handler performs the action behind one intent and returns the status line
// shown to the user.
type Handler interface {
	// Intent returns the intent the handler serves.
	Intent() intent.Intent

	// Description returns what the handler does.
	Description() string

	// Handle runs the action for cmd.
	Handle(ctx context.Context, cmd intent.ParsedCommand) (string, error)
}

// HandlerFunc adapts a function into a Handler.
type HandlerFunc struct {
	For  intent.Intent
	Desc string
	Fn   func(ctx context.Context, cmd intent.ParsedCommand) (string, error)
}

func (h HandlerFunc) Intent() intent.Intent { return h.For }
func (h HandlerFunc) Description() string   { return h.Desc }

func (h HandlerFunc) Handle(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	return h.Fn(ctx, cmd)
}

// Result is the outcome of dispatching one command.
type Result struct {
	Intent     intent.Intent `json:"intent" yaml:"intent"`
	Success    bool          `json:"success" yaml:"success"`
	Message    string        `json:"message" yaml:"message"`
	Code       string        `json:"code,omitempty" yaml:"code,omitempty"`
	DurationMs int64         `json:"duration_ms" yaml:"duration_ms"`

	// Err is the error behind a failed result
	Err error `json:"-" yaml:"-"`
}

// Duration returns the recorded duration.
func (r *Result) Duration() time.Duration {
	return time.Duration(r.DurationMs) * time.Millisecond
}

// TimedResult stamps a result with the time elapsed since start.
func TimedResult(result *Result, start time.Time) *Result {
	result.DurationMs = time.Since(start).Milliseconds()
	return result
}

// Registry holds the handler for each intent.
type Registry struct {
	handlers map[intent.Intent]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[intent.Intent]Handler),
	}
}

// Register adds a handler, replacing any previous one for the same intent.
func (r *Registry) Register(h Handler) {
	r.handlers[h.Intent()] = h
}

// Get retrieves the handler for an intent.
func (r *Registry) Get(i intent.Intent) (Handler, bool) {
	h, ok := r.handlers[i]
	return h, ok
}

// List returns all registered intents in name order.
func (r *Registry) List() []intent.Intent {
	out := make([]intent.Intent, 0, len(r.handlers))
	for i := range r.handlers {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// Execute runs the handler registered for cmd.Intent.
func (r *Registry) Execute(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	h, ok := r.Get(cmd.Intent)
	if !ok {
		return "", &HandlerNotFoundError{Intent: cmd.Intent}
	}
	return h.Handle(ctx, cmd)
}

// HandlerNotFoundError is returned when no handler serves an intent.
type HandlerNotFoundError struct {
	Intent intent.Intent
}

func (e *HandlerNotFoundError) Error() string {
	return "no handler for intent: " + string(e.Intent)
}
