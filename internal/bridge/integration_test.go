package bridge

import (
	"reflect"
	"testing"

	"github.com/dshills/nvimlink/internal/event"
	"github.com/dshills/nvimlink/internal/host"
	"github.com/dshills/nvimlink/internal/logging"
)

func newReplayRouter(lines []string) (*Router, *host.View, event.Bus) {
	editor := host.NewEditor(logging.NullLogger)
	host.RegisterBuiltins(editor)

	view := host.NewView(host.NewDocument(lines))
	editor.SetActiveView(view)

	bus := event.NewBus(logging.NullLogger)
	router := NewRouter(NewDispatcher(editor, logging.NullLogger), NewAccumulator(), bus, nil, logging.NullLogger)
	return router, view, bus
}

// Macro replay arrives as a stream of action notifications. Each one must
// observe the document and cursor state the previous one left behind, or
// the edits land in the wrong place.
func TestActionReplaySequence(t *testing.T) {
	router, view, _ := newReplayRouter([]string{"a", "b", "c"})
	view.SetSelections([]host.Span{host.Cursor(host.Position{Line: 0, Col: 1})})

	replay := [][]any{
		{"type", map[string]any{"args": []any{"1"}}},
		{"move", map[string]any{"args": []any{"down"}}},
		{"type", map[string]any{"args": []any{"1"}}},
		{"move", map[string]any{"args": []any{"down"}}},
	}
	for i, msg := range replay {
		if _, err := router.HandleAction(msg); err != nil {
			t.Fatalf("step %d (%v): %v", i, msg[0], err)
		}
	}

	want := []string{"a1", "b1", "c"}
	if got := view.Document().Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %v, want %v", got, want)
	}

	sels := view.Selections()
	if len(sels) != 1 || sels[0] != host.Cursor(host.Position{Line: 2, Col: 1}) {
		t.Errorf("selections = %v, want collapsed cursor at line 2 col 1", sels)
	}
}

func TestActionWithRangeRestoresSelection(t *testing.T) {
	router, view, _ := newReplayRouter([]string{"first", "second", "third"})

	home := []host.Span{host.Cursor(host.Position{Line: 0, Col: 2})}
	view.SetSelections(home)

	msg := []any{"replace-range", map[string]any{
		"args":  []any{"SECOND"},
		"range": []any{int64(1), int64(1)},
	}}
	if _, err := router.HandleAction(msg); err != nil {
		t.Fatalf("HandleAction() error = %v", err)
	}

	want := []string{"first", "SECOND", "third"}
	if got := view.Document().Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %v, want %v", got, want)
	}
	if got := view.Selections(); !reflect.DeepEqual(got, home) {
		t.Errorf("selections = %v, want restored %v", got, home)
	}
}

// A session's inbound traffic interleaves redraw fragments with actions;
// neither stream may disturb the other.
func TestInterleavedRedrawAndActions(t *testing.T) {
	router, view, bus := newReplayRouter([]string{"x"})

	var batches []RedrawBatch
	bus.Subscribe(TopicRedraw, func(_ string, payload any) {
		batches = append(batches, payload.(RedrawBatch))
	})

	router.HandleRedraw([][]any{{"grid_line", []any{1}}})
	if _, err := router.HandleAction([]any{"type", map[string]any{"args": []any{"!"}}}); err != nil {
		t.Fatalf("HandleAction() error = %v", err)
	}
	router.HandleRedraw([][]any{{"grid_cursor_goto", []any{1, 0, 1}}, {"flush"}})

	if len(batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(batches))
	}
	names := make([]string, len(batches[0]))
	for i, ev := range batches[0] {
		names[i] = ev.Name
	}
	want := []string{"grid_line", "grid_cursor_goto", "flush"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("batch order = %v, want %v", names, want)
	}

	if got := view.Document().Line(0); got != "!x" {
		t.Errorf("line 0 = %q, want %q", got, "!x")
	}
}
