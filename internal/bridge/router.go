package bridge

import (
	"context"
	"fmt"

	"github.com/dshills/nvimlink/internal/event"
	"github.com/dshills/nvimlink/internal/logging"
)

// Inbound RPC method names. The set is closed; anything else addressed to
// this endpoint is unknown.
const (
	methodAction = "vscode-action"
	methodEvent  = "vscode-neovim"
	methodRedraw = "redraw"
)

// TopicRedraw is the event bus topic carrying RedrawBatch payloads.
const TopicRedraw = "redraw"

// CallbackInvoker delivers action results to engine-side callbacks for
// notification-form actions carrying a callback id. Delivery is best
// effort: a one-way completion signal with no acknowledgment.
type CallbackInvoker interface {
	InvokeCallback(id string, result any, isError bool)
}

// Router demultiplexes inbound channel traffic: actions to the dispatcher,
// custom events to the bus, redraw fragments to the accumulator.
//
// The router and the request path are the only places where failures from
// deeper layers are caught; the dispatcher and accumulator below them let
// errors propagate unguarded.
type Router struct {
	dispatcher  *Dispatcher
	accumulator *Accumulator
	bus         event.Bus
	callbacks   CallbackInvoker
	log         *logging.Logger
}

// NewRouter creates a router. The callback invoker may be nil if the
// channel cannot deliver callbacks (results for callback-carrying
// notifications are then dropped with a log).
func NewRouter(dispatcher *Dispatcher, acc *Accumulator, bus event.Bus, callbacks CallbackInvoker, log *logging.Logger) *Router {
	if log == nil {
		log = logging.NullLogger
	}
	return &Router{
		dispatcher:  dispatcher,
		accumulator: acc,
		bus:         bus,
		callbacks:   callbacks,
		log:         log.WithComponent("router"),
	}
}

// HandleAction processes a "vscode-action" message.
//
// For the request form, the returned value and error become the RPC
// response; the channel layer sends exactly one response per request. For
// the notification form the channel discards the return values: a callback
// id routes the result to the engine, and errors are logged here because no
// response path exists.
func (r *Router) HandleAction(args []any) (any, error) {
	name, opts, err := r.decodeAction(args)
	if err != nil {
		r.log.Error("action decode: %v", err)
		return nil, err
	}

	result, execErr := r.dispatcher.Execute(context.Background(), name, opts)

	if opts.CallbackID != "" {
		if r.callbacks == nil {
			r.log.Warn("action %q: no callback invoker, dropping result for %s", name, opts.CallbackID)
		} else if execErr != nil {
			r.callbacks.InvokeCallback(opts.CallbackID, execErr.Error(), true)
		} else {
			r.callbacks.InvokeCallback(opts.CallbackID, result, false)
		}
	}

	if execErr != nil {
		r.log.Error("action %q: %v", name, execErr)
		return nil, execErr
	}
	return result, nil
}

// HandleEvent processes a "vscode-neovim" message: the named event and its
// arguments are republished on the bus, fire and forget.
func (r *Router) HandleEvent(args []any) {
	if len(args) == 0 {
		r.log.Error("event decode: %v", fmt.Errorf("%w: empty event", ErrMalformedPayload))
		return
	}
	name, ok := args[0].(string)
	if !ok {
		r.log.Error("event decode: %v", fmt.Errorf("%w: event name is %T, want string", ErrMalformedPayload, args[0]))
		return
	}

	r.bus.Publish(name, args[1:])
}

// HandleRedraw processes a "redraw" message: each update is decoded into a
// fragment and handed to the accumulator; a completed batch is published.
//
// The pending buffer mutation happens synchronously here, before anything
// that can suspend, so interleaved handler continuations cannot corrupt it.
func (r *Router) HandleRedraw(updates [][]any) {
	events := make([]RedrawEvent, 0, len(updates))
	for _, raw := range updates {
		ev, err := decodeRedrawEvent(raw)
		if err != nil {
			r.log.Error("redraw decode: %v", err)
			continue
		}
		events = append(events, ev)
	}
	if len(events) == 0 {
		return
	}

	batch, ok := r.accumulator.Add(events)
	if !ok {
		return
	}

	r.bus.Publish(TopicRedraw, batch)
}

// decodeAction decodes a "vscode-action" payload: the action name followed
// by optional options.
func (r *Router) decodeAction(args []any) (string, ActionOptions, error) {
	if len(args) == 0 {
		return "", ActionOptions{}, fmt.Errorf("%w: empty action payload", ErrMalformedPayload)
	}
	name, ok := args[0].(string)
	if !ok {
		return "", ActionOptions{}, fmt.Errorf("%w: action name is %T, want string", ErrMalformedPayload, args[0])
	}

	opts := defaultActionOptions()
	if len(args) > 1 {
		var err error
		opts, err = decodeActionOptions(args[1])
		if err != nil {
			return "", ActionOptions{}, fmt.Errorf("action %q: %w", name, err)
		}
	}

	return name, opts, nil
}
