package host

import (
	"strings"
	"sync"
)

// Document is a line-oriented text store. It is safe for concurrent use.
//
// A document always has at least one line; the empty document is a single
// empty line.
type Document struct {
	mu    sync.RWMutex
	lines []string
}

// NewDocument creates a document from the given lines. The slice is copied.
func NewDocument(lines []string) *Document {
	if len(lines) == 0 {
		lines = []string{""}
	}
	d := &Document{lines: make([]string, len(lines))}
	copy(d.lines, lines)
	return d
}

// LineCount returns the number of lines.
func (d *Document) LineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.lines)
}

// Line returns the text of line i, or the empty string if i is out of range.
func (d *Document) Line(i int) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// LineLen returns the length of line i in bytes, or 0 if i is out of range.
func (d *Document) LineLen(i int) int {
	return len(d.Line(i))
}

// Lines returns a copy of all lines.
func (d *Document) Lines() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

// Clamp returns the position constrained to valid document coordinates:
// the line into [0, LineCount-1] and the column into [0, LineLen(line)].
func (d *Document) Clamp(p Position) Position {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.clampLocked(p)
}

func (d *Document) clampLocked(p Position) Position {
	if p.Line < 0 {
		p.Line = 0
	}
	if p.Line > len(d.lines)-1 {
		p.Line = len(d.lines) - 1
	}
	if p.Col < 0 {
		p.Col = 0
	}
	if max := len(d.lines[p.Line]); p.Col > max {
		p.Col = max
	}
	return p
}

// ClampSpan returns the span with both endpoints clamped to the document.
func (d *Document) ClampSpan(s Span) Span {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Span{Start: d.clampLocked(s.Start), End: d.clampLocked(s.End)}
}

// LineSpan returns the span covering the full text of lines start through
// end inclusive, both clamped to the document.
func (d *Document) LineSpan(start, end int) Span {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s := d.clampLocked(Position{Line: start})
	e := d.clampLocked(Position{Line: end})
	e.Col = len(d.lines[e.Line])
	return Span{Start: s, End: e}
}

// InsertAt inserts text at the given position (clamped) and returns the
// position immediately after the inserted text. Text may contain newlines.
func (d *Document) InsertAt(p Position, text string) Position {
	d.mu.Lock()
	defer d.mu.Unlock()

	p = d.clampLocked(p)
	line := d.lines[p.Line]
	head, tail := line[:p.Col], line[p.Col:]

	parts := strings.Split(text, "\n")
	if len(parts) == 1 {
		d.lines[p.Line] = head + text + tail
		return Position{Line: p.Line, Col: p.Col + len(text)}
	}

	inserted := make([]string, len(parts))
	copy(inserted, parts)
	inserted[0] = head + parts[0]
	lastCol := len(parts[len(parts)-1])
	inserted[len(parts)-1] += tail

	out := make([]string, 0, len(d.lines)+len(parts)-1)
	out = append(out, d.lines[:p.Line]...)
	out = append(out, inserted...)
	out = append(out, d.lines[p.Line+1:]...)
	d.lines = out

	return Position{Line: p.Line + len(parts) - 1, Col: lastCol}
}

// Replace replaces the text covered by the span (normalized, clamped) with
// the given text and returns the position after the replacement.
func (d *Document) Replace(s Span, text string) Position {
	d.mu.Lock()

	s = s.Normalized()
	s.Start = d.clampLocked(s.Start)
	s.End = d.clampLocked(s.End)

	head := d.lines[s.Start.Line][:s.Start.Col]
	tail := d.lines[s.End.Line][s.End.Col:]

	out := make([]string, 0, len(d.lines))
	out = append(out, d.lines[:s.Start.Line]...)
	out = append(out, head+tail)
	out = append(out, d.lines[s.End.Line+1:]...)
	d.lines = out
	d.mu.Unlock()

	return d.InsertAt(s.Start, text)
}
