package piecetree

import "github.com/dshills/textbuf/internal/engine/bufstore"

// Piece describes a contiguous slice of a buffer. Pieces are value objects:
// an edit that partitions a piece produces new pieces over the same buffer
// bytes, it never rewrites one in place.
type Piece struct {
	BufferID bufstore.BufferID
	Start    int
	Length   int

	// LineStarts holds the offsets, relative to Start, one past each line
	// terminator inside the piece: one past LF, one past a CR not followed
	// by LF, and one past the LF of a CRLF pair (recorded once).
	LineStarts []int
}

// Breaks returns the number of line terminators inside the piece.
func (p Piece) Breaks() int {
	return len(p.LineStarts)
}

// End returns the in-buffer offset one past the piece.
func (p Piece) End() int {
	return p.Start + p.Length
}

// ScanLineStarts scans text once and records the offset one past each line
// terminator. A CRLF pair yields a single entry at the offset past the LF.
func ScanLineStarts(text string) []int {
	var starts []int
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			starts = append(starts, i+1)
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				starts = append(starts, i+2)
				i++
			} else {
				starts = append(starts, i+1)
			}
		}
	}
	return starts
}

// makePiece builds a piece over store bytes, scanning its content for line
// starts. Exactly one scan runs per newly created piece.
func makePiece(store *bufstore.Store, id bufstore.BufferID, start, length int) Piece {
	return Piece{
		BufferID:   id,
		Start:      start,
		Length:     length,
		LineStarts: ScanLineStarts(store.Slice(id, start, length)),
	}
}

// subPiece builds the piece covering [off, off+length) of p's range. The
// half is rescanned so a CRLF pair cut by the partition is reclassified
// correctly on each side.
func subPiece(store *bufstore.Store, p Piece, off, length int) Piece {
	return makePiece(store, p.BufferID, p.Start+off, length)
}
