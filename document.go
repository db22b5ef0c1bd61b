package textbuf

import (
	"errors"
	"sync"
	"unicode/utf8"

	"github.com/dshills/textbuf/internal/engine/bufstore"
	"github.com/dshills/textbuf/internal/engine/history"
	"github.com/dshills/textbuf/internal/engine/piecetree"
	"github.com/dshills/textbuf/internal/engine/search"
)

// Document is a mutable text document stored as a piece tree. It is the
// public surface of the package: editing runs through the command history,
// inspection reads the tree, and the EOL policy governs how incoming text
// is normalized.
type Document struct {
	mu     sync.RWMutex
	store  *bufstore.Store
	tree   *piecetree.Tree
	hist   *history.History
	finder *search.Engine

	eol       EOL
	normalize bool
	maxUndo   int
	revision  RevisionID
}

// New creates an empty document.
func New(opts ...Option) *Document {
	d := &Document{
		eol:       EOLNone,
		normalize: true,
		maxUndo:   DefaultMaxUndoLevels,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.store = bufstore.New()
	d.tree = piecetree.New(d.store)
	d.hist = history.New(d.maxUndo)
	d.finder = search.New(d.tree)
	d.revision = newRevisionID()
	return d
}

// NewFromString creates a document with initial content, normalized per
// the configured policy.
func NewFromString(text string, opts ...Option) *Document {
	d := New(opts...)
	d.loadOriginal(d.ingress(text))
	return d
}

// ingress rewrites terminators in incoming text to the policy sequence
// when normalization applies.
func (d *Document) ingress(text string) string {
	if !d.normalize || d.eol == EOLNone {
		return text
	}
	return convertEOL(text, d.eol.Sequence())
}

// loadOriginal stores text as original chunks and appends their pieces.
func (d *Document) loadOriginal(text string) {
	if len(text) == 0 {
		return
	}
	first, count := d.store.LoadOriginal(text)
	for i := 0; i < count; i++ {
		// AppendOriginal fails only for an unknown buffer id, which a
		// chunk just loaded cannot be; treat it as fatal like any other
		// broken internal invariant.
		if err := d.tree.AppendOriginal(first + bufstore.BufferID(i)); err != nil {
			panic("textbuf: load original chunk: " + err.Error())
		}
	}
}

// Reset empties the document and its history. The added buffer keeps its
// allocation and the EOL configuration is unchanged.
func (d *Document) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tree.Reset()
	d.hist.Clear()
	d.revision = newRevisionID()
}

// editTarget adapts the tree's primitives to the history.Target surface.
// Its methods run under the document lock and bypass history.
type editTarget struct {
	d *Document
}

// InsertText implements history.Target.
func (t editTarget) InsertText(offset int, text string) error {
	if err := t.d.tree.Insert(offset, text); err != nil {
		return mapTreeErr(err)
	}
	t.d.revision = newRevisionID()
	return nil
}

// DeleteRange implements history.Target.
func (t editTarget) DeleteRange(start, end int) error {
	if err := t.d.tree.Delete(start, end); err != nil {
		return mapTreeErr(err)
	}
	t.d.revision = newRevisionID()
	return nil
}

// ReplaceRange implements history.Target.
func (t editTarget) ReplaceRange(start, end int, text string) error {
	if err := t.d.tree.Replace(start, end, text); err != nil {
		return mapTreeErr(err)
	}
	t.d.revision = newRevisionID()
	return nil
}

// TextRange implements history.Target.
func (t editTarget) TextRange(start, end int) string {
	return t.d.tree.TextRange(start, end)
}

func mapTreeErr(err error) error {
	if errors.Is(err, piecetree.ErrOutOfRange) || errors.Is(err, piecetree.ErrRangeInvalid) {
		return ErrOutOfRange
	}
	return err
}

// Editing

// Insert places text at the document offset.
func (d *Document) Insert(offset int, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if offset < 0 || offset > d.tree.Length() {
		return ErrOutOfRange
	}
	if len(text) == 0 {
		return nil
	}
	cmd := history.NewInsert(offset, d.ingress(text))
	return d.hist.Execute(cmd, editTarget{d})
}

// InsertAt places text at a 1-based position. Columns beyond the line end
// clamp to the line end.
func (d *Document) InsertAt(line, col int, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if line < 1 || col < 1 {
		return ErrInvalidArgument
	}
	if len(text) == 0 {
		return nil
	}
	cmd := history.NewInsert(d.tree.OffsetAt(line, col), d.ingress(text))
	return d.hist.Execute(cmd, editTarget{d})
}

// Append places text at the end of the document.
func (d *Document) Append(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(text) == 0 {
		return nil
	}
	cmd := history.NewInsert(d.tree.Length(), d.ingress(text))
	return d.hist.Execute(cmd, editTarget{d})
}

// Delete removes the half-open range [start, end).
func (d *Document) Delete(start, end int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if start < 0 || start > end || end > d.tree.Length() {
		return ErrOutOfRange
	}
	if start == end {
		return nil
	}
	cmd := history.NewDelete(start, end-start)
	return d.hist.Execute(cmd, editTarget{d})
}

// DeleteRange removes the range r.
func (d *Document) DeleteRange(r Range) error {
	return d.Delete(r.Start, r.End)
}

// Replace substitutes [start, end) with text as one atomic operation and
// one history entry.
func (d *Document) Replace(start, end int, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if start < 0 || start > end || end > d.tree.Length() {
		return ErrOutOfRange
	}
	norm := d.ingress(text)
	if start == end && len(norm) == 0 {
		return nil
	}
	cmd := history.NewReplace(start, end-start, norm)
	return d.hist.Execute(cmd, editTarget{d})
}

// ReplaceRange substitutes the range r with text.
func (d *Document) ReplaceRange(r Range, text string) error {
	return d.Replace(r.Start, r.End, text)
}

// Inspection

// Text returns the whole document.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.Text()
}

// TextWithEOL returns the document with every terminator rewritten to the
// policy's sequence. EOLNone returns the content as stored.
func (d *Document) TextWithEOL(policy EOL) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	text := d.tree.Text()
	if policy == EOLNone {
		return text
	}
	return convertEOL(text, policy.Sequence())
}

// Len returns the document length in code units.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.Length()
}

// IsEmpty returns true for a zero-length document.
func (d *Document) IsEmpty() bool {
	return d.Len() == 0
}

// LineCount returns the number of lines. An empty document has 0 lines; a
// document ending in a terminator has as many lines as terminators.
func (d *Document) LineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.LineCount()
}

// LineContent returns a line's code units without its terminator. Lines
// outside the document yield "".
func (d *Document) LineContent(line int) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.LineContent(line)
}

// LinesContent returns the content of lines from..to inclusive.
func (d *Document) LinesContent(from, to int) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if from < 1 {
		from = 1
	}
	if max := d.tree.LineCount(); to > max {
		to = max
	}
	if from > to {
		return nil
	}
	lines := make([]string, 0, to-from+1)
	for line := from; line <= to; line++ {
		lines = append(lines, d.tree.LineContent(line))
	}
	return lines
}

// LineLength returns a line's content length, excluding its terminator.
func (d *Document) LineLength(line int) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.LineLength(line)
}

// LineRange returns the offset range of a line's content, excluding its
// terminator.
func (d *Document) LineRange(line int) Range {
	d.mu.RLock()
	defer d.mu.RUnlock()
	start, end := d.tree.LineRange(line)
	return Range{Start: start, End: end}
}

// CharAt returns the code unit at the offset.
func (d *Document) CharAt(offset int) (byte, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.ByteAt(offset)
}

// CharAtPosition returns the code unit at a 1-based position.
func (d *Document) CharAtPosition(pos Position) (byte, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.ByteAt(d.tree.OffsetAt(pos.Line, pos.Col))
}

// RuneAt returns the rune starting at the byte offset. It returns
// utf8.RuneError and size 0 when the offset is out of range.
func (d *Document) RuneAt(offset int) (rune, int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	length := d.tree.Length()
	if offset < 0 || offset >= length {
		return utf8.RuneError, 0
	}
	end := offset + utf8.UTFMax
	if end > length {
		end = length
	}
	return utf8.DecodeRuneInString(d.tree.TextRange(offset, end))
}

// TextRange returns the code units in [start, end), clamped to the
// document.
func (d *Document) TextRange(start, end int) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.TextRange(start, end)
}

// TextRangeOf returns the code units in the range r.
func (d *Document) TextRangeOf(r Range) string {
	return d.TextRange(r.Start, r.End)
}

// PositionAt translates an offset into a 1-based position. Out-of-range
// offsets clamp; an empty document yields (1,1).
func (d *Document) PositionAt(offset int) Position {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p := d.tree.PositionAt(offset)
	return Position{Line: p.Line, Col: p.Col}
}

// OffsetAt translates a 1-based position into an offset. Columns beyond
// the line end clamp to the line end.
func (d *Document) OffsetAt(line, col int) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.OffsetAt(line, col)
}

// Revision returns the current revision id.
func (d *Document) Revision() RevisionID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

// EOL policy

// EOL returns the effective policy: the configured one, or under EOLNone
// the policy detected from the content.
func (d *Document) EOL() EOL {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.eol != EOLNone {
		return d.eol
	}
	return DetectEOL(d.tree.Text())
}

// SetEOL changes the policy for subsequent ingress and egress. Stored
// content is not rewritten.
func (d *Document) SetEOL(policy EOL) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.eol = policy
}

// IsNormalizeEOL reports whether ingress normalization is enabled.
func (d *Document) IsNormalizeEOL() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.normalize
}

// SetNormalizeEOL enables or disables ingress normalization.
func (d *Document) SetNormalizeEOL(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.normalize = on
}

// History

// Undo reverses the most recent edit and returns the caret offset at the
// end of the restored region, or -1 when there is nothing to undo.
func (d *Document) Undo() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	off, err := d.hist.Undo(editTarget{d})
	if errors.Is(err, history.ErrNothingToUndo) {
		return -1, nil
	}
	return off, err
}

// Redo re-applies the most recently undone edit and returns the caret
// offset past the re-applied text, or -1 when there is nothing to redo.
func (d *Document) Redo() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	off, err := d.hist.Redo(editTarget{d})
	if errors.Is(err, history.ErrNothingToRedo) {
		return -1, nil
	}
	return off, err
}

// BeginGroup opens an undo group; groups nest.
func (d *Document) BeginGroup(description string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hist.BeginGroup(description)
}

// EndGroup closes one group level. Closing without an open group is an
// ErrIllegalState.
func (d *Document) EndGroup() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.hist.EndGroup(); err != nil {
		return ErrIllegalState
	}
	return nil
}

// Transaction runs fn inside an undo group named description. The group is
// closed whether or not fn fails.
func (d *Document) Transaction(description string, fn func() error) error {
	d.BeginGroup(description)
	if err := fn(); err != nil {
		_ = d.EndGroup()
		return err
	}
	return d.EndGroup()
}

// CanUndo reports whether an undo is available.
func (d *Document) CanUndo() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hist.CanUndo()
}

// CanRedo reports whether a redo is available.
func (d *Document) CanRedo() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hist.CanRedo()
}

// UndoDescription returns the description of the next undo, or "".
func (d *Document) UndoDescription() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hist.UndoDescription()
}

// RedoDescription returns the description of the next redo, or "".
func (d *Document) RedoDescription() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hist.RedoDescription()
}

// UndoSize returns the undo stack depth.
func (d *Document) UndoSize() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hist.UndoSize()
}

// RedoSize returns the redo stack depth.
func (d *Document) RedoSize() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hist.RedoSize()
}

// ClearHistory discards all undo and redo state.
func (d *Document) ClearHistory() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hist.Clear()
}

// SetMaxUndoLevels bounds the undo stack depth, trimming the oldest
// entries when exceeded.
func (d *Document) SetMaxUndoLevels(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hist.SetMaxLevels(n)
}

// AddListener registers a history listener and returns its removal token.
// Listeners run synchronously after each history transition, still under
// the document lock, and must not call back into mutating operations.
func (d *Document) AddListener(l HistoryListener) ListenerToken {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hist.AddListener(l)
}

// RemoveListener unregisters a listener by token.
func (d *Document) RemoveListener(tok ListenerToken) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hist.RemoveListener(tok)
}
