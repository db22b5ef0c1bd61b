package textbuf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelloInsertion(t *testing.T) {
	doc := NewFromString("Initial text")

	require.NoError(t, doc.InsertAt(1, 1, "Hello, "))
	require.NoError(t, doc.Append("World!"))

	assert.Equal(t, "Hello, Initial textWorld!", doc.Text())
	assert.Equal(t, 25, doc.Len())
	assert.Equal(t, 1, doc.LineCount())
}

func TestMultiLineAccess(t *testing.T) {
	doc := NewFromString("ab\ncd\r\nef\rgh", WithEOL(EOLNone))

	assert.Equal(t, 4, doc.LineCount())
	assert.Equal(t, "ab", doc.LineContent(1))
	assert.Equal(t, "cd", doc.LineContent(2))
	assert.Equal(t, "ef", doc.LineContent(3))
	assert.Equal(t, "gh", doc.LineContent(4))
	assert.Equal(t, 7, doc.OffsetAt(3, 1))
	assert.Equal(t, Position{Line: 3, Col: 1}, doc.PositionAt(7))
}

func TestDeleteSpanningPieces(t *testing.T) {
	doc := NewFromString("abcdef")

	require.NoError(t, doc.Insert(3, "XY"))
	require.Equal(t, "abcXYdef", doc.Text())

	require.NoError(t, doc.Delete(2, 6))
	assert.Equal(t, "abef", doc.Text())
	assert.Equal(t, 4, doc.Len())
}

func TestUndoRedoReplace(t *testing.T) {
	doc := NewFromString("The quick brown fox")

	require.NoError(t, doc.Replace(4, 9, "slow"))
	assert.Equal(t, "The slow brown fox", doc.Text())

	_, err := doc.Undo()
	require.NoError(t, err)
	assert.Equal(t, "The quick brown fox", doc.Text())

	_, err = doc.Redo()
	require.NoError(t, err)
	assert.Equal(t, "The slow brown fox", doc.Text())
}

func TestEOLNormalization(t *testing.T) {
	doc := NewFromString("a\r\nb\rc\nd", WithEOL(EOLLF), WithNormalizeEOL(true))

	assert.Equal(t, "a\nb\nc\nd", doc.Text())
	assert.Equal(t, 4, doc.LineCount())
	assert.Equal(t, "a\r\nb\r\nc\r\nd", doc.TextWithEOL(EOLCRLF))
}

func TestFindAllCapScenario(t *testing.T) {
	doc := NewFromString(strings.Repeat("x", 2000))

	matches, err := doc.FindAll("x", 0, SearchOptions{CaseSensitive: true}, 1000)
	require.NoError(t, err)
	require.Len(t, matches, 1000)
	for i := 1; i < len(matches); i++ {
		require.Greater(t, matches[i].Start, matches[i-1].Start)
	}

	m, ok, err := doc.FindNext("x", matches[999].End, SearchOptions{CaseSensitive: true})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1000, m.Start)
}

func TestNewEmptyDocument(t *testing.T) {
	doc := New()

	assert.True(t, doc.IsEmpty())
	assert.Equal(t, 0, doc.Len())
	assert.Equal(t, 0, doc.LineCount())
	assert.Equal(t, "", doc.Text())
	assert.Equal(t, Position{Line: 1, Col: 1}, doc.PositionAt(0))
}

func TestInsertOutOfRange(t *testing.T) {
	doc := NewFromString("abc")

	assert.ErrorIs(t, doc.Insert(4, "x"), ErrOutOfRange)
	assert.ErrorIs(t, doc.Insert(-1, "x"), ErrOutOfRange)
	assert.Equal(t, "abc", doc.Text())
	assert.False(t, doc.CanUndo())
}

func TestInsertAtInvalidArgument(t *testing.T) {
	doc := NewFromString("abc")

	assert.ErrorIs(t, doc.InsertAt(0, 1, "x"), ErrInvalidArgument)
	assert.ErrorIs(t, doc.InsertAt(1, -1, "x"), ErrInvalidArgument)
}

func TestDeleteOutOfRange(t *testing.T) {
	doc := NewFromString("abc")

	assert.ErrorIs(t, doc.Delete(2, 1), ErrOutOfRange)
	assert.ErrorIs(t, doc.Delete(0, 4), ErrOutOfRange)
}

func TestEditAgainstReferenceString(t *testing.T) {
	doc := New(WithEOL(EOLNone))
	ref := ""

	insert := func(at int, s string) {
		require.NoError(t, doc.Insert(at, s))
		ref = ref[:at] + s + ref[at:]
	}
	del := func(start, end int) {
		require.NoError(t, doc.Delete(start, end))
		ref = ref[:start] + ref[end:]
	}

	insert(0, "the document body\n")
	insert(4, "whole ")
	insert(doc.Len(), "and a tail")
	del(0, 4)
	insert(10, "\r\nmixed\rterminators\n")
	del(5, 25)
	assert.Equal(t, ref, doc.Text())
	assert.Equal(t, len(ref), doc.Len())
}

func TestReplaceFirst(t *testing.T) {
	doc := NewFromString("one fish two fish")

	ok, err := doc.ReplaceFirst("fish", SearchOptions{CaseSensitive: true}, "cat")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "one cat two fish", doc.Text())

	ok, err = doc.ReplaceFirst("whale", SearchOptions{CaseSensitive: true}, "cat")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReplaceAll(t *testing.T) {
	doc := NewFromString("a.b.c.d")

	n, err := doc.ReplaceAll(".", SearchOptions{CaseSensitive: true}, "-", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "a-b-c-d", doc.Text())

	// One history entry for the whole pass.
	_, err = doc.Undo()
	require.NoError(t, err)
	assert.Equal(t, "a.b.c.d", doc.Text())
}

func TestReplaceAllMaxCount(t *testing.T) {
	doc := NewFromString("x x x x x")

	n, err := doc.ReplaceAll("x", SearchOptions{CaseSensitive: true}, "y", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "y y x x x", doc.Text())
}

func TestReplaceAllRegex(t *testing.T) {
	doc := NewFromString("item1 item22 item333")

	n, err := doc.ReplaceAll(`item\d+`, SearchOptions{UseRegex: true, CaseSensitive: true}, "item", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "item item item", doc.Text())
}

func TestReplaceAllInvalidQuery(t *testing.T) {
	doc := NewFromString("content")

	_, err := doc.ReplaceAll("(bad", SearchOptions{UseRegex: true}, "x", 0)
	assert.ErrorIs(t, err, ErrInvalidQuery)
	assert.Equal(t, "content", doc.Text())
}

func TestGroupedUndo(t *testing.T) {
	doc := NewFromString("base")

	doc.BeginGroup("add words")
	require.NoError(t, doc.Append(" one"))
	require.NoError(t, doc.Append(" two"))
	require.NoError(t, doc.EndGroup())

	assert.Equal(t, "base one two", doc.Text())
	assert.Equal(t, 1, doc.UndoSize())
	assert.Equal(t, "add words", doc.UndoDescription())

	_, err := doc.Undo()
	require.NoError(t, err)
	assert.Equal(t, "base", doc.Text())
}

func TestEndGroupWithoutBegin(t *testing.T) {
	doc := New()
	assert.ErrorIs(t, doc.EndGroup(), ErrIllegalState)
}

func TestUndoReturnsMinusOneWhenEmpty(t *testing.T) {
	doc := NewFromString("abc")

	off, err := doc.Undo()
	require.NoError(t, err)
	assert.Equal(t, -1, off)

	off, err = doc.Redo()
	require.NoError(t, err)
	assert.Equal(t, -1, off)
}

func TestUndoRedoPairIsIdentity(t *testing.T) {
	doc := NewFromString("stable content\nwith lines")

	require.NoError(t, doc.Insert(6, " mutated"))
	require.NoError(t, doc.Delete(0, 3))
	require.NoError(t, doc.Replace(2, 5, "XYZ"))
	after := doc.Text()

	for i := 0; i < 3; i++ {
		_, err := doc.Undo()
		require.NoError(t, err)
	}
	assert.Equal(t, "stable content\nwith lines", doc.Text())

	for i := 0; i < 3; i++ {
		_, err := doc.Redo()
		require.NoError(t, err)
	}
	assert.Equal(t, after, doc.Text())
}

func TestHistoryListenerThroughDocument(t *testing.T) {
	doc := NewFromString("abc")

	var kinds []string
	tok := doc.AddListener(func(e HistoryEvent) {
		kinds = append(kinds, e.Kind.String())
	})

	require.NoError(t, doc.Insert(0, "x"))
	_, err := doc.Undo()
	require.NoError(t, err)

	doc.RemoveListener(tok)
	require.NoError(t, doc.Insert(0, "y"))

	assert.Equal(t, []string{"executed", "undone"}, kinds)
}

func TestLinesContent(t *testing.T) {
	doc := NewFromString("one\ntwo\nthree\nfour")

	assert.Equal(t, []string{"two", "three"}, doc.LinesContent(2, 3))
	assert.Equal(t, []string{"one", "two", "three", "four"}, doc.LinesContent(1, 99))
	assert.Nil(t, doc.LinesContent(5, 6))
}

func TestLineRangeAndLength(t *testing.T) {
	doc := NewFromString("ab\ncdef\ng")

	assert.Equal(t, Range{Start: 3, End: 7}, doc.LineRange(2))
	assert.Equal(t, 4, doc.LineLength(2))
	assert.Equal(t, "cdef", doc.TextRangeOf(doc.LineRange(2)))
}

func TestCharAndRuneAccess(t *testing.T) {
	doc := NewFromString("héllo")

	b, ok := doc.CharAt(0)
	require.True(t, ok)
	assert.Equal(t, byte('h'), b)

	r, size := doc.RuneAt(1)
	assert.Equal(t, 'é', r)
	assert.Equal(t, 2, size)

	_, ok = doc.CharAt(99)
	assert.False(t, ok)

	b, ok = doc.CharAtPosition(Position{Line: 1, Col: 1})
	require.True(t, ok)
	assert.Equal(t, byte('h'), b)
}

func TestResetKeepsConfiguration(t *testing.T) {
	doc := NewFromString("a\r\nb", WithEOL(EOLCRLF), WithNormalizeEOL(true))
	require.NoError(t, doc.Append("\nmore"))

	doc.Reset()

	assert.Equal(t, 0, doc.Len())
	assert.False(t, doc.CanUndo())
	assert.Equal(t, EOLCRLF, doc.EOL())

	// Ingress normalization still applies after the reset.
	require.NoError(t, doc.Insert(0, "x\ny"))
	assert.Equal(t, "x\r\ny", doc.Text())
}

func TestRevisionChangesOnEdit(t *testing.T) {
	doc := NewFromString("abc")
	r1 := doc.Revision()

	require.NoError(t, doc.Insert(0, "x"))
	r2 := doc.Revision()
	assert.NotEqual(t, r1, r2)

	_ = doc.Text() // reads do not bump the revision
	assert.Equal(t, r2, doc.Revision())
}

func TestDocumentLineIterator(t *testing.T) {
	doc := NewFromString("a\nb\nc")

	var got []string
	it := doc.Lines()
	for it.Next() {
		got = append(got, it.Text())
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestTransactionGroupsEdits(t *testing.T) {
	doc := NewFromString("seed")

	err := doc.Transaction("grow", func() error {
		if err := doc.Append(" one"); err != nil {
			return err
		}
		return doc.Append(" two")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, doc.UndoSize())
}

func TestInsertLargeTextSplitsChunks(t *testing.T) {
	big := strings.Repeat("paragraph of text\n", 10000) // > 64 KiB
	doc := NewFromString(big)

	require.Equal(t, len(big), doc.Len())
	require.NoError(t, doc.Insert(len(big)/2, "MARK"))
	assert.Equal(t, len(big)+4, doc.Len())
	assert.Contains(t, doc.Text(), "MARK")
}
