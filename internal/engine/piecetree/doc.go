// Package piecetree implements the document storage core: a red-black tree
// whose in-order traversal of immutable pieces yields the text.
//
// A piece names a contiguous range of a bufstore buffer and caches the
// line-start offsets inside that range. Edits never rewrite stored text;
// inserting appends to the added buffer and splices new pieces into the
// tree, deleting trims or removes pieces. Every node carries the total
// length and line-terminator count of its left subtree, which makes both
// offset and line lookups a single O(log n) descent.
//
// Invariants maintained between mutations:
//
//   - concatenating the pieces in order reproduces the document
//   - per-node aggregates agree with the subtrees they summarize
//   - red-black shape properties hold
//   - no piece has zero length
//   - a CR and LF forming one logical terminator always share a piece
//
// The last point matters because each piece's line starts are scanned
// independently: after an edit leaves a CR-ending piece next to an
// LF-starting one, the pair is re-homed into a single two-byte piece so
// per-piece counts stay consistent with a document-order scan.
//
// The tree is not safe for concurrent use; the facade serializes access.
package piecetree
