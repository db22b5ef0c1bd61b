package textbuf

import (
	"fmt"
	"sync/atomic"

	"github.com/dshills/textbuf/internal/engine/history"
	"github.com/dshills/textbuf/internal/engine/search"
)

// Position is a 1-based line and column pair. Columns count code units
// from the line start.
type Position struct {
	Line int
	Col  int
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Col)
}

// Compare returns -1 if p < other, 0 if equal, 1 if p > other.
func (p Position) Compare(other Position) int {
	if p.Line != other.Line {
		if p.Line < other.Line {
			return -1
		}
		return 1
	}
	if p.Col != other.Col {
		if p.Col < other.Col {
			return -1
		}
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// Range is a half-open byte range [Start, End) in the document.
type Range struct {
	Start int
	End   int
}

// NewRange creates a range from start and end offsets.
func NewRange(start, end int) Range {
	return Range{Start: start, End: end}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.Start, r.End)
}

// Len returns the range length.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// IsValid returns true if Start <= End.
func (r Range) IsValid() bool {
	return r.Start <= r.End
}

// Contains returns true if the offset lies within the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// RevisionID identifies one revision of a document. Every mutation
// produces a new revision.
type RevisionID uint64

var revisionCounter uint64

func newRevisionID() RevisionID {
	return RevisionID(atomic.AddUint64(&revisionCounter, 1))
}

// Re-exported engine types, so callers need only this package.
type (
	// SearchOptions control query interpretation.
	SearchOptions = search.Options

	// Match is one search hit in absolute offsets.
	Match = search.Match

	// HistoryEvent describes an undo/redo state transition.
	HistoryEvent = history.Event

	// HistoryListener receives history events.
	HistoryListener = history.Listener

	// ListenerToken identifies a registered listener.
	ListenerToken = history.ListenerToken
)

// MaxFindMatches is the hard cap on matches returned by one query.
const MaxFindMatches = search.MaxMatches

// DefaultMaxUndoLevels is the default undo stack depth.
const DefaultMaxUndoLevels = history.DefaultMaxUndoLevels
