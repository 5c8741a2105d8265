package bridge

import (
	"context"
	"fmt"

	"github.com/dshills/nvimlink/internal/host"
	"github.com/dshills/nvimlink/internal/logging"
)

// ActionOptions controls how an engine-requested action executes.
type ActionOptions struct {
	// Args are passed to the action verbatim.
	Args []any

	// Range, when present, scopes the action to a transient selection.
	Range RangeSpec

	// RestoreSelection restores the pre-action selections after a ranged
	// action. It defaults to true; only an explicit false disables it.
	RestoreSelection bool

	// CallbackID, when present on the notification form, routes the action
	// result to an engine-side callback instead of an RPC response.
	CallbackID string
}

// defaultActionOptions returns options with documented defaults applied.
func defaultActionOptions() ActionOptions {
	return ActionOptions{RestoreSelection: true}
}

// RangeSpec is a transient selection constraint. Two elements are a
// (startLine, endLine) pair expanded to the full span of those lines;
// four elements are (startLine, startCol, endLine, endCol) used verbatim
// and then clamped. A nil RangeSpec means no constraint.
type RangeSpec []int

// Resolve computes the effective selection span on the given document.
// Out-of-range coordinates are clamped, never rejected.
func (r RangeSpec) Resolve(doc *host.Document) host.Span {
	if len(r) == 2 {
		return doc.LineSpan(r[0], r[1])
	}
	span := host.Span{
		Start: host.Position{Line: r[0], Col: r[1]},
		End:   host.Position{Line: r[2], Col: r[3]},
	}
	return doc.ClampSpan(span)
}

// decodeActionOptions decodes the wire form of ActionOptions. The engine
// sends either a map, or an empty-string marker when no options apply.
func decodeActionOptions(raw any) (ActionOptions, error) {
	opts := defaultActionOptions()

	switch v := raw.(type) {
	case nil:
		return opts, nil
	case string:
		if v != "" {
			return opts, fmt.Errorf("%w: options marker %q", ErrMalformedPayload, v)
		}
		return opts, nil
	case map[string]any:
		return decodeOptionsMap(v)
	default:
		return opts, fmt.Errorf("%w: options are %T, want map", ErrMalformedPayload, raw)
	}
}

func decodeOptionsMap(m map[string]any) (ActionOptions, error) {
	opts := defaultActionOptions()

	if raw, ok := m["args"]; ok && raw != nil {
		args, ok := raw.([]any)
		if !ok {
			return opts, fmt.Errorf("%w: args are %T, want array", ErrMalformedPayload, raw)
		}
		opts.Args = args
	}

	if raw, ok := m["range"]; ok && raw != nil {
		spec, err := decodeRange(raw)
		if err != nil {
			return opts, err
		}
		opts.Range = spec
	}

	if raw, ok := m["restore_selection"]; ok {
		b, ok := raw.(bool)
		if !ok {
			return opts, fmt.Errorf("%w: restore_selection is %T, want bool", ErrMalformedPayload, raw)
		}
		opts.RestoreSelection = b
	}

	if raw, ok := m["callback_id"]; ok && raw != nil {
		id, ok := raw.(string)
		if !ok {
			return opts, fmt.Errorf("%w: callback_id is %T, want string", ErrMalformedPayload, raw)
		}
		opts.CallbackID = id
	}

	return opts, nil
}

// decodeRange decodes a wire range into a RangeSpec of length 2 or 4.
func decodeRange(raw any) (RangeSpec, error) {
	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: range is %T, want array", ErrMalformedPayload, raw)
	}
	if len(arr) != 2 && len(arr) != 4 {
		return nil, fmt.Errorf("%w: range has %d elements, want 2 or 4", ErrMalformedPayload, len(arr))
	}

	spec := make(RangeSpec, len(arr))
	for i, el := range arr {
		n, ok := asInt(el)
		if !ok {
			return nil, fmt.Errorf("%w: range element %d is %T, want integer", ErrMalformedPayload, i, el)
		}
		spec[i] = n
	}
	return spec, nil
}

// asInt converts the integer types the msgpack decoder produces.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// Dispatcher executes engine-requested actions against the host editor,
// honoring transient ranges and the selection save/restore discipline.
type Dispatcher struct {
	editor *host.Editor
	log    *logging.Logger
}

// NewDispatcher creates a dispatcher for the given editor.
func NewDispatcher(editor *host.Editor, log *logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.NullLogger
	}
	return &Dispatcher{
		editor: editor,
		log:    log.WithComponent("dispatch"),
	}
}

// Execute runs the named action with the given options.
//
// When a view is active, any in-flight cursor synchronization is awaited
// before selections are touched, so an externally-driven action never races
// a locally-driven cursor move. When a range is present the selection is
// set to exactly that range for the duration of the action and, unless
// restoration was disabled, put back afterward even if the action failed.
//
// Errors from the action propagate to the caller unswallowed; the router
// and the request path decide how to surface them.
func (d *Dispatcher) Execute(ctx context.Context, name string, opts ActionOptions) (any, error) {
	view := d.editor.ActiveView()

	if view != nil {
		if err := view.WaitCursorSettled(ctx); err != nil {
			return nil, fmt.Errorf("waiting for cursor: %w", err)
		}
	}

	if view == nil || opts.Range == nil {
		return d.editor.Execute(ctx, name, opts.Args)
	}

	span := opts.Range.Resolve(view.Document())
	saved := view.Selections()
	view.SetSelections([]host.Span{span})

	if opts.RestoreSelection {
		defer view.SetSelections(saved)
	}

	return d.editor.Execute(ctx, name, opts.Args)
}
