package bridge

import (
	"errors"
	"reflect"
	"testing"
)

func ev(name string, args ...any) RedrawEvent {
	return RedrawEvent{Name: name, Args: args}
}

func TestAccumulatorFlushInSingleMessage(t *testing.T) {
	a := NewAccumulator()

	events := []RedrawEvent{ev("line", 1), ev("eol", 2), ev("flush")}
	batch, ok := a.Add(events)
	if !ok {
		t.Fatal("Add() with flush should produce a batch")
	}
	if !reflect.DeepEqual([]RedrawEvent(batch), events) {
		t.Errorf("batch = %v, want %v", batch, events)
	}
	if a.PendingLen() != 0 {
		t.Errorf("PendingLen() = %d, want 0 after flush", a.PendingLen())
	}
}

func TestAccumulatorBuffersWithoutFlush(t *testing.T) {
	a := NewAccumulator()

	if _, ok := a.Add([]RedrawEvent{ev("line", 1)}); ok {
		t.Fatal("Add() without flush should not produce a batch")
	}
	if _, ok := a.Add([]RedrawEvent{ev("hl", 2)}); ok {
		t.Fatal("Add() without flush should not produce a batch")
	}

	if a.PendingLen() != 2 {
		t.Errorf("PendingLen() = %d, want 2", a.PendingLen())
	}

	// The buffer holds the ordered concatenation of the inputs, observable
	// through the batch a flush drains.
	batch, ok := a.Add([]RedrawEvent{ev("flush")})
	if !ok {
		t.Fatal("want batch on flush")
	}
	want := []RedrawEvent{ev("line", 1), ev("hl", 2), ev("flush")}
	if !reflect.DeepEqual([]RedrawEvent(batch), want) {
		t.Errorf("buffered content = %v, want %v", batch, want)
	}
}

func TestAccumulatorFlushSplitAcrossMessages(t *testing.T) {
	a := NewAccumulator()

	a.Add([]RedrawEvent{ev("line", "a"), ev("eol", "b")})
	batch, ok := a.Add([]RedrawEvent{ev("flush")})
	if !ok {
		t.Fatal("flush-bearing message should complete the batch")
	}

	want := []RedrawEvent{ev("line", "a"), ev("eol", "b"), ev("flush")}
	if !reflect.DeepEqual([]RedrawEvent(batch), want) {
		t.Errorf("batch = %v, want %v (one batch of three ordered fragments)", batch, want)
	}
}

func TestAccumulatorManyPreFlushMessages(t *testing.T) {
	a := NewAccumulator()

	a.Add([]RedrawEvent{ev("a", 1)})
	a.Add([]RedrawEvent{ev("b", 2), ev("c", 3)})
	a.Add([]RedrawEvent{ev("d", 4)})
	batch, ok := a.Add([]RedrawEvent{ev("e", 5), ev("flush"), ev("f", 6)})
	if !ok {
		t.Fatal("want batch")
	}

	want := []RedrawEvent{ev("a", 1), ev("b", 2), ev("c", 3), ev("d", 4), ev("e", 5), ev("flush"), ev("f", 6)}
	if !reflect.DeepEqual([]RedrawEvent(batch), want) {
		t.Errorf("batch = %v, want full ordered concatenation %v", batch, want)
	}
}

func TestAccumulatorResetsAfterFlush(t *testing.T) {
	a := NewAccumulator()

	a.Add([]RedrawEvent{ev("a"), ev("flush")})
	batch, ok := a.Add([]RedrawEvent{ev("b"), ev("flush")})
	if !ok {
		t.Fatal("want batch")
	}

	want := []RedrawEvent{ev("b"), ev("flush")}
	if !reflect.DeepEqual([]RedrawEvent(batch), want) {
		t.Errorf("second batch = %v, want %v (no leakage from first)", batch, want)
	}
}

func TestRedrawEventFirstLast(t *testing.T) {
	e := ev("grid_line", "first", "middle", "last")
	if e.First() != "first" {
		t.Errorf("First() = %v", e.First())
	}
	if e.Last() != "last" {
		t.Errorf("Last() = %v", e.Last())
	}

	empty := ev("flush")
	if empty.First() != nil || empty.Last() != nil {
		t.Error("First/Last on empty args should be nil")
	}
}

func TestDecodeRedrawEvent(t *testing.T) {
	got, err := decodeRedrawEvent([]any{"grid_line", []any{1, 2}, []any{3}})
	if err != nil {
		t.Fatalf("decodeRedrawEvent() error = %v", err)
	}
	if got.Name != "grid_line" || len(got.Args) != 2 {
		t.Errorf("decoded = %+v", got)
	}
}

func TestDecodeRedrawEventMalformed(t *testing.T) {
	if _, err := decodeRedrawEvent(nil); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("empty update = %v, want ErrMalformedPayload", err)
	}
	if _, err := decodeRedrawEvent([]any{42}); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("non-string name = %v, want ErrMalformedPayload", err)
	}
}
