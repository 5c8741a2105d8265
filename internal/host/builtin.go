package host

import (
	"context"
	"fmt"
)

// RegisterBuiltins installs the host's basic editing actions. These cover
// what engine-driven macro replay and range-scoped commands need: typing
// text at the selections, directional cursor movement, and range
// replacement.
func RegisterBuiltins(e *Editor) {
	e.Register("type", actionType)
	e.Register("move", actionMove)
	e.Register("replace-range", actionReplaceRange)
}

// actionType inserts its text argument at the start of every selection and
// collapses each selection after the inserted text.
func actionType(_ context.Context, e *Editor, args []any) (any, error) {
	text, err := stringArg(args, 0)
	if err != nil {
		return nil, err
	}

	view := e.ActiveView()
	if view == nil {
		return nil, ErrNoActiveView
	}

	doc := view.Document()
	sels := view.Selections()
	out := make([]Span, len(sels))
	for i, sel := range sels {
		end := doc.InsertAt(sel.Normalized().Start, text)
		out[i] = Cursor(end)
	}
	view.SetSelections(out)
	return nil, nil
}

// actionMove moves every selection one step in the given direction,
// collapsing it. The column is preserved across vertical moves and clamped
// to the target line's length.
func actionMove(_ context.Context, e *Editor, args []any) (any, error) {
	dir, err := stringArg(args, 0)
	if err != nil {
		return nil, err
	}

	view := e.ActiveView()
	if view == nil {
		return nil, ErrNoActiveView
	}

	doc := view.Document()
	sels := view.Selections()
	out := make([]Span, len(sels))
	for i, sel := range sels {
		p := sel.Normalized().Start
		switch dir {
		case "down":
			p.Line++
		case "up":
			p.Line--
		case "left":
			p.Col--
		case "right":
			p.Col++
		default:
			return nil, fmt.Errorf("%w: move direction %q", ErrBadArgs, dir)
		}
		out[i] = Cursor(doc.Clamp(p))
	}
	view.SetSelections(out)
	return nil, nil
}

// actionReplaceRange replaces the text of every selection with its text
// argument, collapsing each selection after the replacement.
func actionReplaceRange(_ context.Context, e *Editor, args []any) (any, error) {
	text, err := stringArg(args, 0)
	if err != nil {
		return nil, err
	}

	view := e.ActiveView()
	if view == nil {
		return nil, ErrNoActiveView
	}

	doc := view.Document()
	sels := view.Selections()
	out := make([]Span, len(sels))
	for i, sel := range sels {
		end := doc.Replace(sel, text)
		out[i] = Cursor(end)
	}
	view.SetSelections(out)
	return nil, nil
}

// stringArg extracts a required string argument at index i.
func stringArg(args []any, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%w: missing argument %d", ErrBadArgs, i)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("%w: argument %d is %T, want string", ErrBadArgs, i, args[i])
	}
	return s, nil
}
