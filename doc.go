// Package textbuf provides the storage core of a text editor: a mutable
// document backed by a piece tree, with logarithmic insert, delete, offset
// and line lookups, search over the piecewise content, undo/redo with
// grouping, and restorable snapshots.
//
// The document is code-unit (byte) indexed. Lines and columns are 1-based,
// offsets are 0-based, and ranges are half-open [start, end).
//
// Basic usage:
//
//	doc := textbuf.NewFromString("Hello, World!")
//
//	doc.Insert(7, "Beautiful ") // "Hello, Beautiful World!"
//	doc.Delete(0, 7)            // "Beautiful World!"
//
//	offset, _ := doc.Undo() // "Hello, Beautiful World!"
//	_ = offset              // caret position after the undo
//
// Line endings are governed by an EOL policy. With normalization enabled
// and a concrete policy, every terminator in incoming text is rewritten to
// the policy's sequence; with EOLNone content is stored as written and the
// effective policy is detected from the content.
//
// All Document methods are safe for use from one goroutine at a time per
// document; a mutex serializes callers that share one.
package textbuf
