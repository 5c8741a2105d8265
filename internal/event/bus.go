// Package event provides the in-process event bus that carries engine
// events and redraw batches from the bridge to downstream collaborators.
//
// Delivery is synchronous and in registration order. Handlers must not
// block; anything slow belongs on the subscriber's own goroutine.
package event

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dshills/nvimlink/internal/logging"
)

// Wildcard subscribes a handler to every published event.
const Wildcard = "*"

// Handler receives events published on the bus.
type Handler func(name string, payload any)

// Subscription identifies a registered handler for later removal.
type Subscription struct {
	id   uint64
	name string
}

// Stats reports bus counters.
type Stats struct {
	Published uint64
	Delivered uint64
	Panics    uint64
}

// Bus is the publish/subscribe surface.
type Bus interface {
	// Publish delivers an event to all matching subscribers, in order.
	Publish(name string, payload any)

	// Subscribe registers a handler for the given event name.
	// Use Wildcard to receive every event.
	Subscribe(name string, h Handler) Subscription

	// Unsubscribe removes a previously registered handler.
	Unsubscribe(sub Subscription)

	// Stats returns delivery counters.
	Stats() Stats
}

// bus is the default Bus implementation.
type bus struct {
	mu      sync.RWMutex
	nextID  uint64
	entries map[string][]entry

	log *logging.Logger

	published atomic.Uint64
	delivered atomic.Uint64
	panics    atomic.Uint64
}

type entry struct {
	id uint64
	h  Handler
}

// NewBus creates a new event bus. Handler panics are recovered and logged.
func NewBus(log *logging.Logger) Bus {
	if log == nil {
		log = logging.NullLogger
	}
	return &bus{
		entries: make(map[string][]entry),
		log:     log.WithComponent("event"),
	}
}

// Subscribe implements Bus.
func (b *bus) Subscribe(name string, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.entries[name] = append(b.entries[name], entry{id: b.nextID, h: h})
	return Subscription{id: b.nextID, name: name}
}

// Unsubscribe implements Bus.
func (b *bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.entries[sub.name]
	for i, e := range entries {
		if e.id == sub.id {
			b.entries[sub.name] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(b.entries[sub.name]) == 0 {
		delete(b.entries, sub.name)
	}
}

// Publish implements Bus.
func (b *bus) Publish(name string, payload any) {
	b.published.Add(1)

	b.mu.RLock()
	matched := make([]entry, 0, len(b.entries[name])+len(b.entries[Wildcard]))
	matched = append(matched, b.entries[name]...)
	if name != Wildcard {
		matched = append(matched, b.entries[Wildcard]...)
	}
	b.mu.RUnlock()

	// Deliver in subscription order regardless of which pattern matched.
	sort.Slice(matched, func(i, j int) bool { return matched[i].id < matched[j].id })

	for _, e := range matched {
		b.deliver(e, name, payload)
	}
}

// deliver invokes a single handler with panic recovery.
func (b *bus) deliver(e entry, name string, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			b.log.Error("handler panic on %q: %v", name, r)
		}
	}()

	e.h(name, payload)
	b.delivered.Add(1)
}

// Stats implements Bus.
func (b *bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Panics:    b.panics.Load(),
	}
}
