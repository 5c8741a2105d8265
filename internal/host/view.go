package host

import (
	"context"
	"sync"
)

// View is an editor view onto a document: the selection set plus the
// cursor-settle gate the bridge waits on before mutating selections.
//
// The gate exists because cursor synchronization runs concurrently with
// engine-driven actions: a collaborator pushing a cursor update brackets it
// with BeginCursorUpdate/EndCursorUpdate, and WaitCursorSettled blocks until
// no update is in flight.
type View struct {
	doc *Document

	mu         sync.RWMutex
	selections []Span

	settleMu sync.Mutex
	inFlight int
	settled  chan struct{}
}

// NewView creates a view on the given document with a single collapsed
// selection at the document start.
func NewView(doc *Document) *View {
	return &View{
		doc:        doc,
		selections: []Span{Cursor(Position{})},
	}
}

// Document returns the viewed document.
func (v *View) Document() *Document {
	return v.doc
}

// Selections returns a copy of the current selection set.
func (v *View) Selections() []Span {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]Span, len(v.selections))
	copy(out, v.selections)
	return out
}

// SetSelections replaces the selection set. The slice is copied. An empty
// set is replaced with a collapsed selection at the document start.
func (v *View) SetSelections(sels []Span) {
	if len(sels) == 0 {
		sels = []Span{Cursor(Position{})}
	}
	out := make([]Span, len(sels))
	copy(out, sels)

	v.mu.Lock()
	v.selections = out
	v.mu.Unlock()
}

// BeginCursorUpdate marks a cursor synchronization as in flight.
// Every call must be paired with EndCursorUpdate.
func (v *View) BeginCursorUpdate() {
	v.settleMu.Lock()
	defer v.settleMu.Unlock()

	v.inFlight++
	if v.inFlight == 1 {
		v.settled = make(chan struct{})
	}
}

// EndCursorUpdate marks a cursor synchronization as complete.
func (v *View) EndCursorUpdate() {
	v.settleMu.Lock()
	defer v.settleMu.Unlock()

	if v.inFlight == 0 {
		return
	}
	v.inFlight--
	if v.inFlight == 0 {
		close(v.settled)
		v.settled = nil
	}
}

// WaitCursorSettled blocks until no cursor update is in flight, or until
// the context is done.
func (v *View) WaitCursorSettled(ctx context.Context) error {
	v.settleMu.Lock()
	ch := v.settled
	v.settleMu.Unlock()

	if ch == nil {
		return nil
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
