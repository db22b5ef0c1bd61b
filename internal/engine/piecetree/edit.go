package piecetree

import (
	"errors"

	"github.com/dshills/textbuf/internal/engine/bufstore"
)

// Errors returned by edit primitives.
var (
	ErrOutOfRange   = errors.New("offset out of range")
	ErrRangeInvalid = errors.New("invalid range")
)

// AppendOriginal appends one loaded original chunk as the rightmost piece.
// Chunks are expected in load order; bufstore guarantees a chunk boundary
// never splits a CRLF pair.
func (t *Tree) AppendOriginal(id bufstore.BufferID) error {
	length, err := t.store.BufferLen(id)
	if err != nil {
		return err
	}
	if length == 0 {
		return nil
	}
	z := t.newNode(makePiece(t.store, id, 0, length))
	t.insertAfter(t.last(), z)
	return nil
}

// Insert places text at the document offset. The text is appended to the
// added buffer and referenced by a single new piece; the piece containing
// the offset is split when the offset falls strictly inside it.
func (t *Tree) Insert(offset int, text string) error {
	if offset < 0 || offset > t.length {
		return ErrOutOfRange
	}
	if len(text) == 0 {
		return nil
	}

	start := t.store.AppendAdded(text)
	z := t.newNode(makePiece(t.store, bufstore.Added, start, len(text)))

	switch {
	case offset == t.length:
		t.insertAfter(t.last(), z)
	default:
		n, rel := t.findByOffset(offset)
		if rel == 0 {
			t.insertBefore(n, z)
		} else {
			right := t.newNode(subPiece(t.store, n.piece, rel, n.piece.Length-rel))
			t.setPiece(n, subPiece(t.store, n.piece, 0, rel))
			t.insertAfter(n, z)
			t.insertAfter(z, right)
		}
	}

	t.repairCRLF(offset)
	t.repairCRLF(offset + len(text))
	return nil
}

// Delete removes the half-open range [start, end). Deleting the whole
// document resets the tree and buffers while retaining the added buffer
// allocation.
func (t *Tree) Delete(start, end int) error {
	if start < 0 || start > end || end > t.length {
		return ErrRangeInvalid
	}
	if start == end {
		return nil
	}
	if start == 0 && end == t.length {
		t.Reset()
		return nil
	}

	toDelete := end - start
	n, rel := t.findByOffset(start)

	if rel > 0 {
		avail := n.piece.Length - rel
		if toDelete < avail {
			// Range lies strictly inside one piece: keep both residues.
			right := t.newNode(subPiece(t.store, n.piece, rel+toDelete, avail-toDelete))
			t.setPiece(n, subPiece(t.store, n.piece, 0, rel))
			t.insertAfter(n, right)
			t.repairCRLF(start)
			return nil
		}
		next := t.successor(n)
		t.setPiece(n, subPiece(t.store, n.piece, 0, rel))
		toDelete -= avail
		n = next
	}

	for toDelete > 0 {
		if n.piece.Length <= toDelete {
			next := t.successor(n)
			toDelete -= n.piece.Length
			t.removeNode(n)
			n = next
		} else {
			t.setPiece(n, subPiece(t.store, n.piece, toDelete, n.piece.Length-toDelete))
			toDelete = 0
		}
	}

	t.repairCRLF(start)
	return nil
}

// Replace substitutes the range [start, end) with text as one atomic
// operation: on error the tree is unchanged.
func (t *Tree) Replace(start, end int, text string) error {
	if start < 0 || start > end || end > t.length {
		return ErrRangeInvalid
	}
	if err := t.Delete(start, end); err != nil {
		return err
	}
	return t.Insert(start, text)
}

// Reset empties the tree and its store. The added buffer keeps its
// allocation.
func (t *Tree) Reset() {
	t.store.Reset()
	t.root = t.sentinel
	t.length = 0
	t.breaks = 0
}

// ByteAt returns the document byte at the offset.
func (t *Tree) ByteAt(offset int) (byte, bool) {
	n, rel := t.findByOffset(offset)
	if n == t.sentinel {
		return 0, false
	}
	return t.store.ByteAt(n.piece.BufferID, n.piece.Start+rel), true
}

// repairCRLF re-joins a CR and LF that an edit left in adjacent pieces. A
// document-order scan counts the pair as one terminator, so the two bytes
// are re-homed into a single fresh piece backed by the added buffer; the
// document content is unchanged.
func (t *Tree) repairCRLF(offset int) {
	if offset <= 0 || offset >= t.length {
		return
	}

	n, rel := t.findByOffset(offset)
	if rel != 0 {
		// CR and LF inside one piece are already recorded as one break.
		return
	}
	p := t.predecessor(n)
	if p == t.sentinel {
		return
	}
	if t.store.ByteAt(p.piece.BufferID, p.piece.End()-1) != '\r' ||
		t.store.ByteAt(n.piece.BufferID, n.piece.Start) != '\n' {
		return
	}

	start := t.store.AppendAdded("\r\n")
	z := t.newNode(Piece{
		BufferID:   bufstore.Added,
		Start:      start,
		Length:     2,
		LineStarts: []int{2},
	})

	// Trim the LF off the head of the right piece.
	anchor := t.sentinel
	if n.piece.Length == 1 {
		anchor = t.successor(n)
		t.removeNode(n)
		n = t.sentinel
	} else {
		t.setPiece(n, subPiece(t.store, n.piece, 1, n.piece.Length-1))
	}

	// Trim the CR off the tail of the left piece.
	if p.piece.Length == 1 {
		t.removeNode(p)
	} else {
		t.setPiece(p, subPiece(t.store, p.piece, 0, p.piece.Length-1))
	}

	switch {
	case n != t.sentinel:
		t.insertBefore(n, z)
	case anchor != t.sentinel:
		t.insertBefore(anchor, z)
	default:
		t.insertAfter(t.last(), z)
	}
}
