package piecetree

import (
	"sort"
	"strings"
)

// Position is a 1-based line and column pair. Columns count code units from
// the line start.
type Position struct {
	Line int
	Col  int
}

// LineCount returns the number of lines: the terminator count, plus one when
// the document is non-empty and does not end in a terminator. An empty
// document has 0 lines.
func (t *Tree) LineCount() int {
	if t.length == 0 {
		return 0
	}
	last, _ := t.ByteAt(t.length - 1)
	if last == '\n' || last == '\r' {
		return t.breaks
	}
	return t.breaks + 1
}

// PositionAt translates a document offset into a 1-based position. Offsets
// are clamped to [0, Length()]; an empty document yields (1,1).
func (t *Tree) PositionAt(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > t.length {
		offset = t.length
	}
	if t.length == 0 {
		return Position{Line: 1, Col: 1}
	}

	var n *node
	var rel int
	if offset == t.length {
		n = t.last()
		rel = n.piece.Length
	} else {
		n, rel = t.findByOffset(offset)
	}

	// Terminators inside the piece that end before or at rel.
	local := sort.SearchInts(n.piece.LineStarts, rel+1)
	line := t.breaksBefore(n) + local + 1

	col := rel + 1
	if local > 0 {
		return Position{Line: line, Col: rel - n.piece.LineStarts[local-1] + 1}
	}

	// The line starts in an earlier piece; accumulate predecessor tails.
	for m := t.predecessor(n); m != t.sentinel; m = t.predecessor(m) {
		if b := m.piece.Breaks(); b > 0 {
			col += m.piece.Length - m.piece.LineStarts[b-1]
			break
		}
		col += m.piece.Length
	}
	return Position{Line: line, Col: col}
}

// OffsetAt translates a 1-based position into a document offset. The line is
// clamped to the document; a column beyond the line end clamps to the line
// end and never spills into the next line.
func (t *Tree) OffsetAt(line, col int) int {
	if t.length == 0 || line < 1 {
		return 0
	}
	if col < 1 {
		col = 1
	}

	maxLine := t.LineCount()
	if maxLine == 0 {
		maxLine = 1
	}
	if line > maxLine {
		return t.length
	}

	start := t.lineStartOffset(line)
	end := t.lineContentEnd(line)
	off := start + col - 1
	if off > end {
		off = end
	}
	return off
}

// lineStartOffset returns the absolute offset at which the 1-based line
// begins. Lines past the last start at the document end.
func (t *Tree) lineStartOffset(line int) int {
	n, rel, ok := t.findLineStart(line)
	if !ok {
		return t.length
	}
	if n == t.sentinel {
		return t.length
	}
	return t.offsetOf(n) + rel
}

// lineContentEnd returns the offset one past the line's content, excluding
// its terminator.
func (t *Tree) lineContentEnd(line int) int {
	if line > t.breaks {
		// Last line, not ended by a terminator.
		return t.length
	}
	next := t.lineStartOffset(line + 1)
	if next >= 2 {
		if a, _ := t.ByteAt(next - 2); a == '\r' {
			if b, _ := t.ByteAt(next - 1); b == '\n' {
				return next - 2
			}
		}
	}
	return next - 1
}

// LineContent returns the line's code units without its terminator. Lines
// outside the document yield the empty string.
func (t *Tree) LineContent(line int) string {
	if line < 1 || line > t.LineCount() {
		return ""
	}
	return t.TextRange(t.lineStartOffset(line), t.lineContentEnd(line))
}

// LineLength returns the length of the line's content, excluding its
// terminator. Lines outside the document yield 0.
func (t *Tree) LineLength(line int) int {
	if line < 1 || line > t.LineCount() {
		return 0
	}
	return t.lineContentEnd(line) - t.lineStartOffset(line)
}

// LineRange returns the half-open offset range of the line's content,
// excluding its terminator.
func (t *Tree) LineRange(line int) (start, end int) {
	if line < 1 || line > t.LineCount() {
		return 0, 0
	}
	return t.lineStartOffset(line), t.lineContentEnd(line)
}

// TextRange concatenates the slices of every piece intersecting [start,
// end). Bounds are clamped to the document.
func (t *Tree) TextRange(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > t.length {
		end = t.length
	}
	if start >= end {
		return ""
	}

	var sb strings.Builder
	sb.Grow(end - start)

	n, rel := t.findByOffset(start)
	remaining := end - start
	for remaining > 0 && n != t.sentinel {
		take := n.piece.Length - rel
		if take > remaining {
			take = remaining
		}
		sb.WriteString(t.store.Slice(n.piece.BufferID, n.piece.Start+rel, take))
		remaining -= take
		rel = 0
		n = t.successor(n)
	}
	return sb.String()
}

// Text returns the whole document.
func (t *Tree) Text() string {
	return t.TextRange(0, t.length)
}
