// Package host models the editor-side boundary the bridge drives: a line
// document, an active view with selections and a cursor-settle gate, and a
// registry of named actions the engine can invoke.
package host

// Position is a zero-based (line, column) location in a document.
type Position struct {
	Line int
	Col  int
}

// Before reports whether p sorts strictly before o.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Col < o.Col
}

// Span is a selection from Start to End. Start and End may be in either
// order; Normalized returns the forward-ordered form. A Span whose Start
// equals its End is a collapsed cursor.
type Span struct {
	Start Position
	End   Position
}

// Collapsed reports whether the span is a bare cursor.
func (s Span) Collapsed() bool {
	return s.Start == s.End
}

// Normalized returns the span with Start not after End.
func (s Span) Normalized() Span {
	if s.End.Before(s.Start) {
		return Span{Start: s.End, End: s.Start}
	}
	return s
}

// Cursor returns a collapsed span at the given position.
func Cursor(p Position) Span {
	return Span{Start: p, End: p}
}
