package bridge

import (
	"fmt"
	"sync"
)

// flushEvent is the sentinel fragment name signaling that all fragments
// received since the previous flush form one complete batch.
const flushEvent = "flush"

// RedrawEvent is one UI update fragment from the engine. The payload is
// deliberately untyped; interpreting it belongs to downstream consumers.
type RedrawEvent struct {
	Name string
	Args []any
}

// First returns the first argument, or nil if there are none.
func (e RedrawEvent) First() any {
	if len(e.Args) == 0 {
		return nil
	}
	return e.Args[0]
}

// Last returns the last argument, or nil if there are none.
func (e RedrawEvent) Last() any {
	if len(e.Args) == 0 {
		return nil
	}
	return e.Args[len(e.Args)-1]
}

// RedrawBatch is an ordered, complete sequence of fragments ending in a
// flush. Batches are immutable once published.
type RedrawBatch []RedrawEvent

// Accumulator buffers redraw fragments across messages until a flush
// fragment arrives. It is safe for concurrent use, though the channel
// delivers redraw notifications serially.
//
// The pending buffer is unbounded: an engine that never flushes grows it
// for the whole session. That is an accepted risk, not defended against.
type Accumulator struct {
	mu      sync.Mutex
	pending []RedrawEvent
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add processes one message's fragments. If the message contains a flush
// fragment, the pending buffer is drained and the merged batch is returned
// with ok true; otherwise the fragments are appended to the pending buffer
// and ok is false. Arrival order is preserved within and across messages.
func (a *Accumulator) Add(events []RedrawEvent) (batch RedrawBatch, ok bool) {
	flush := false
	for _, ev := range events {
		if ev.Name == flushEvent {
			flush = true
			break
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !flush {
		a.pending = append(a.pending, events...)
		return nil, false
	}

	batch = make(RedrawBatch, 0, len(a.pending)+len(events))
	batch = append(batch, a.pending...)
	batch = append(batch, events...)
	a.pending = nil
	return batch, true
}

// PendingLen returns the number of buffered fragments awaiting a flush.
func (a *Accumulator) PendingLen() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// decodeRedrawEvent decodes one raw redraw update into a RedrawEvent.
// The wire shape is [name, arg, arg, ...] with a string name.
func decodeRedrawEvent(raw []any) (RedrawEvent, error) {
	if len(raw) == 0 {
		return RedrawEvent{}, fmt.Errorf("%w: empty redraw update", ErrMalformedPayload)
	}
	name, ok := raw[0].(string)
	if !ok {
		return RedrawEvent{}, fmt.Errorf("%w: redraw update name is %T, want string", ErrMalformedPayload, raw[0])
	}
	return RedrawEvent{Name: name, Args: raw[1:]}, nil
}
