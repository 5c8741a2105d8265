package event

import (
	"testing"

	"github.com/dshills/nvimlink/internal/logging"
)

func TestBusPublishSubscribe(t *testing.T) {
	b := NewBus(logging.NullLogger)

	var got []any
	b.Subscribe("redraw", func(name string, payload any) {
		if name != "redraw" {
			t.Errorf("handler name = %q, want %q", name, "redraw")
		}
		got = append(got, payload)
	})

	b.Publish("redraw", 1)
	b.Publish("other", 2)
	b.Publish("redraw", 3)

	if len(got) != 2 {
		t.Fatalf("delivered %d events, want 2", len(got))
	}
	if got[0] != 1 || got[1] != 3 {
		t.Errorf("got %v, want [1 3]", got)
	}
}

func TestBusDeliveryOrder(t *testing.T) {
	b := NewBus(logging.NullLogger)

	var order []int
	b.Subscribe("ev", func(string, any) { order = append(order, 1) })
	b.Subscribe(Wildcard, func(string, any) { order = append(order, 2) })
	b.Subscribe("ev", func(string, any) { order = append(order, 3) })

	b.Publish("ev", nil)

	if len(order) != 3 {
		t.Fatalf("delivered %d, want 3", len(order))
	}
	// Subscription order, interleaving exact and wildcard matches.
	if order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("order = %v, want [1 2 3]", order)
	}
}

func TestBusWildcard(t *testing.T) {
	b := NewBus(logging.NullLogger)

	var names []string
	b.Subscribe(Wildcard, func(name string, _ any) { names = append(names, name) })

	b.Publish("a", nil)
	b.Publish("b", nil)

	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("names = %v, want [a b]", names)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	b := NewBus(logging.NullLogger)

	count := 0
	sub := b.Subscribe("ev", func(string, any) { count++ })

	b.Publish("ev", nil)
	b.Unsubscribe(sub)
	b.Publish("ev", nil)

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestBusPanicRecovery(t *testing.T) {
	b := NewBus(logging.NullLogger)

	reached := false
	b.Subscribe("ev", func(string, any) { panic("boom") })
	b.Subscribe("ev", func(string, any) { reached = true })

	b.Publish("ev", nil)

	if !reached {
		t.Error("handler after panicking handler was not invoked")
	}
	if got := b.Stats().Panics; got != 1 {
		t.Errorf("Stats().Panics = %d, want 1", got)
	}
}

func TestBusStats(t *testing.T) {
	b := NewBus(logging.NullLogger)

	b.Subscribe("ev", func(string, any) {})
	b.Publish("ev", nil)
	b.Publish("unmatched", nil)

	stats := b.Stats()
	if stats.Published != 2 {
		t.Errorf("Published = %d, want 2", stats.Published)
	}
	if stats.Delivered != 1 {
		t.Errorf("Delivered = %d, want 1", stats.Delivered)
	}
}
