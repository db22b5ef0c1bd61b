package piecetree

import "github.com/dshills/textbuf/internal/engine/bufstore"

// Tree is a red-black tree of pieces ordered by document position. Each node
// carries aggregates over its left subtree so that offset and line lookups
// descend in O(log n) without touching piece content.
//
// The tree owns no text; it references ranges of the store it was built
// with. All methods assume the single-writer discipline described in the
// package documentation.
type Tree struct {
	store    *bufstore.Store
	sentinel *node
	root     *node

	length int // total document length
	breaks int // total line-terminator count
}

// New creates an empty tree over the given store.
func New(store *bufstore.Store) *Tree {
	s := &node{color: black}
	s.parent = s
	s.left = s
	s.right = s
	return &Tree{
		store:    store,
		sentinel: s,
		root:     s,
	}
}

// Store returns the buffer store backing this tree.
func (t *Tree) Store() *bufstore.Store {
	return t.store
}

// Length returns the total document length.
func (t *Tree) Length() int {
	return t.length
}

// LineBreakCount returns the total number of line terminators.
func (t *Tree) LineBreakCount() int {
	return t.breaks
}

// PieceCount returns the number of pieces in the tree.
func (t *Tree) PieceCount() int {
	count := 0
	for n := t.first(); n != t.sentinel; n = t.successor(n) {
		count++
	}
	return count
}

func (t *Tree) first() *node {
	if t.root == t.sentinel {
		return t.sentinel
	}
	return t.leftmost(t.root)
}

func (t *Tree) last() *node {
	if t.root == t.sentinel {
		return t.sentinel
	}
	return t.rightmost(t.root)
}

// findByOffset returns the node whose span contains offset, plus the offset
// relative to the node's start. An offset at a piece boundary resolves to
// the later piece. Returns the sentinel for offset >= Length().
func (t *Tree) findByOffset(offset int) (*node, int) {
	if offset < 0 || offset >= t.length {
		return t.sentinel, 0
	}
	n := t.root
	for n != t.sentinel {
		switch {
		case offset < n.sizeLeft:
			n = n.left
		case offset < n.sizeLeft+n.piece.Length:
			return n, offset - n.sizeLeft
		default:
			offset -= n.sizeLeft + n.piece.Length
			n = n.right
		}
	}
	return t.sentinel, 0
}

// findLineStart returns the node holding the start of the 1-based line and
// the offset of that start within the node. Line 1 starts at the leftmost
// node. If the requested line starts exactly at the document end (the
// document ends with a terminator), the sentinel is returned with ok true;
// lines beyond that return ok false.
func (t *Tree) findLineStart(line int) (*node, int, bool) {
	if line < 1 {
		return t.sentinel, 0, false
	}
	if line == 1 {
		if t.root == t.sentinel {
			return t.sentinel, 0, true
		}
		return t.first(), 0, true
	}

	rem := line - 1 // the line begins just past terminator #rem
	if rem > t.breaks {
		return t.sentinel, 0, false
	}

	n := t.root
	for n != t.sentinel {
		switch {
		case rem <= n.lfLeft:
			n = n.left
		case rem <= n.lfLeft+n.piece.Breaks():
			rel := n.piece.LineStarts[rem-n.lfLeft-1]
			if rel == n.piece.Length {
				// Line begins at the start of the next piece.
				succ := t.successor(n)
				return succ, 0, true
			}
			return n, rel, true
		default:
			rem -= n.lfLeft + n.piece.Breaks()
			n = n.right
		}
	}
	return t.sentinel, 0, false
}

// offsetOf returns the absolute document offset at which n's piece begins,
// accumulated by walking from the node to the root.
func (t *Tree) offsetOf(n *node) int {
	off := n.sizeLeft
	for n != t.root {
		if n == n.parent.right {
			off += n.parent.sizeLeft + n.parent.piece.Length
		}
		n = n.parent
	}
	return off
}

// breaksBefore returns the number of line terminators in all pieces that
// precede n in document order.
func (t *Tree) breaksBefore(n *node) int {
	count := n.lfLeft
	for n != t.root {
		if n == n.parent.right {
			count += n.parent.lfLeft + n.parent.piece.Breaks()
		}
		n = n.parent
	}
	return count
}

// newNode wraps a piece for insertion. New nodes start red.
func (t *Tree) newNode(p Piece) *node {
	return &node{
		piece:  p,
		parent: t.sentinel,
		left:   t.sentinel,
		right:  t.sentinel,
		color:  red,
	}
}

// insertBefore links z as the in-order predecessor of x and rebalances.
// With x == sentinel the tree must be empty and z becomes the root.
func (t *Tree) insertBefore(x *node, z *node) {
	if x == t.sentinel {
		t.attachRoot(z)
		return
	}
	if x.left == t.sentinel {
		x.left = z
	} else {
		p := t.rightmost(x.left)
		p.right = z
		x = p
	}
	z.parent = x
	t.afterAttach(z)
}

// insertAfter links z as the in-order successor of x and rebalances.
// With x == sentinel the tree must be empty and z becomes the root.
func (t *Tree) insertAfter(x *node, z *node) {
	if x == t.sentinel {
		t.attachRoot(z)
		return
	}
	if x.right == t.sentinel {
		x.right = z
	} else {
		s := t.leftmost(x.right)
		s.left = z
		x = s
	}
	z.parent = x
	t.afterAttach(z)
}

func (t *Tree) attachRoot(z *node) {
	t.root = z
	z.parent = t.sentinel
	z.color = black
	t.length += z.piece.Length
	t.breaks += z.piece.Breaks()
}

func (t *Tree) afterAttach(z *node) {
	t.updateUpward(z, z.piece.Length, z.piece.Breaks())
	t.length += z.piece.Length
	t.breaks += z.piece.Breaks()
	t.insertFixup(z)
}

func (t *Tree) insertFixup(z *node) {
	for z.parent.color == red {
		if z.parent == z.parent.parent.left {
			u := z.parent.parent.right
			if u.color == red {
				z.parent.color = black
				u.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.right {
					z = z.parent
					t.leftRotate(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.rightRotate(z.parent.parent)
			}
		} else {
			u := z.parent.parent.left
			if u.color == red {
				z.parent.color = black
				u.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.left {
					z = z.parent
					t.rightRotate(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.leftRotate(z.parent.parent)
			}
		}
		if z == t.root {
			break
		}
	}
	t.root.color = black
}

// setPiece replaces n's piece in place, propagating the length and
// terminator deltas through the aggregates and tree totals.
func (t *Tree) setPiece(n *node, p Piece) {
	dl := p.Length - n.piece.Length
	db := p.Breaks() - n.piece.Breaks()
	n.piece = p
	t.updateUpward(n, dl, db)
	t.length += dl
	t.breaks += db
}

// removeNode unlinks z from the tree and rebalances. Every other node keeps
// its identity: callers may hold references to z's neighbours across the
// call. z's piece no longer contributes to any aggregate afterwards.
func (t *Tree) removeNode(z *node) {
	if z.left == t.sentinel || z.right == t.sentinel {
		t.detachHalfLeaf(z)
		return
	}

	// Detach the successor (it has no left child), then relink it into z's
	// structural position so z can be discarded without moving pieces
	// between nodes.
	y := t.leftmost(z.right)
	t.detachHalfLeaf(y)

	y.parent = z.parent
	y.left = z.left
	y.right = z.right
	y.color = z.color
	y.sizeLeft = z.sizeLeft
	y.lfLeft = z.lfLeft

	if y.left != t.sentinel {
		y.left.parent = y
	}
	if y.right != t.sentinel {
		y.right.parent = y
	}
	switch {
	case z.parent == t.sentinel:
		t.root = y
	case z == z.parent.left:
		z.parent.left = y
	default:
		z.parent.right = y
	}

	t.updateUpward(y, y.piece.Length-z.piece.Length, y.piece.Breaks()-z.piece.Breaks())
	t.length += y.piece.Length - z.piece.Length
	t.breaks += y.piece.Breaks() - z.piece.Breaks()

	z.parent = nil
	z.left = nil
	z.right = nil
}

// detachHalfLeaf removes a node with at most one child, adjusting totals
// and ancestor aggregates for the loss of n's piece.
func (t *Tree) detachHalfLeaf(n *node) {
	t.updateUpward(n, -n.piece.Length, -n.piece.Breaks())
	t.length -= n.piece.Length
	t.breaks -= n.piece.Breaks()

	child := n.left
	if child == t.sentinel {
		child = n.right
	}

	child.parent = n.parent
	switch {
	case n.parent == t.sentinel:
		t.root = child
	case n == n.parent.left:
		n.parent.left = child
	default:
		n.parent.right = child
	}

	if n.color == black {
		t.deleteFixup(child)
	}

	// The sentinel may have been linked as a temporary child; restore it.
	t.sentinel.parent = t.sentinel
	t.sentinel.left = t.sentinel
	t.sentinel.right = t.sentinel
	t.sentinel.color = black

	n.parent = nil
	n.left = nil
	n.right = nil
}

func (t *Tree) deleteFixup(x *node) {
	for x != t.root && x.color == black {
		if x == x.parent.left {
			w := x.parent.right
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.leftRotate(x.parent)
				w = x.parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.right.color == black {
					w.left.color = black
					w.color = red
					t.rightRotate(w)
					w = x.parent.right
				}
				w.color = x.parent.color
				x.parent.color = black
				w.right.color = black
				t.leftRotate(x.parent)
				x = t.root
			}
		} else {
			w := x.parent.left
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rightRotate(x.parent)
				w = x.parent.left
			}
			if w.right.color == black && w.left.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.left.color == black {
					w.right.color = black
					w.color = red
					t.leftRotate(w)
					w = x.parent.left
				}
				w.color = x.parent.color
				x.parent.color = black
				w.left.color = black
				t.rightRotate(x.parent)
				x = t.root
			}
		}
	}
	x.color = black
}
