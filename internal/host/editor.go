package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/nvimlink/internal/logging"
)

// ActionFunc executes a named editor action. Arguments arrive as decoded
// protocol values; implementations validate what they need.
type ActionFunc func(ctx context.Context, ed *Editor, args []any) (any, error)

// Editor is the host editor surface the bridge drives: an optional active
// view and a registry of named actions.
type Editor struct {
	mu      sync.RWMutex
	actions map[string]ActionFunc
	view    *View

	log *logging.Logger
}

// NewEditor creates an editor with no active view and an empty registry.
func NewEditor(log *logging.Logger) *Editor {
	if log == nil {
		log = logging.NullLogger
	}
	return &Editor{
		actions: make(map[string]ActionFunc),
		log:     log.WithComponent("host"),
	}
}

// SetActiveView sets the active view. A nil view means no editor is focused.
func (e *Editor) SetActiveView(v *View) {
	e.mu.Lock()
	e.view = v
	e.mu.Unlock()
}

// ActiveView returns the active view, or nil if none.
func (e *Editor) ActiveView() *View {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.view
}

// Register installs an action under the given name, replacing any previous
// registration.
func (e *Editor) Register(name string, fn ActionFunc) {
	e.mu.Lock()
	e.actions[name] = fn
	e.mu.Unlock()
}

// Execute runs the named action. Unknown names return ErrUnknownAction.
func (e *Editor) Execute(ctx context.Context, name string, args []any) (any, error) {
	e.mu.RLock()
	fn, ok := e.actions[name]
	e.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}

	e.log.Debug("action %s args=%v", name, args)
	return fn(ctx, e, args)
}

// Actions returns the registered action names.
func (e *Editor) Actions() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.actions))
	for name := range e.actions {
		names = append(names, name)
	}
	return names
}

// Sentinel errors for the host package.
var (
	// ErrUnknownAction is returned when no action is registered for a name.
	ErrUnknownAction = errors.New("unknown action")

	// ErrNoActiveView is returned by actions that require a focused view.
	ErrNoActiveView = errors.New("no active view")

	// ErrBadArgs is returned when an action receives malformed arguments.
	ErrBadArgs = errors.New("bad action arguments")
)
