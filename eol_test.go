package textbuf

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/transform"
)

func TestDetectEOL(t *testing.T) {
	tests := []struct {
		text string
		want EOL
	}{
		{"plain text", EOLLF},
		{"a\nb", EOLLF},
		{"a\r\nb", EOLCRLF},
		{"a\rb", EOLCR},
		{"a\nb\r\nc", EOLCRLF}, // CRLF wins when present
		{"", EOLLF},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectEOL(tt.text), "DetectEOL(%q)", tt.text)
	}
}

func TestConvertEOL(t *testing.T) {
	in := "a\r\nb\rc\nd"

	assert.Equal(t, "a\nb\nc\nd", convertEOL(in, "\n"))
	assert.Equal(t, "a\r\nb\r\nc\r\nd", convertEOL(in, "\r\n"))
	assert.Equal(t, "a\rb\rc\rd", convertEOL(in, "\r"))
	assert.Equal(t, "no terminators", convertEOL("no terminators", "\n"))
}

func TestEOLSequenceAndString(t *testing.T) {
	assert.Equal(t, "\n", EOLLF.Sequence())
	assert.Equal(t, "\r\n", EOLCRLF.Sequence())
	assert.Equal(t, "\r", EOLCR.Sequence())
	assert.Equal(t, "", EOLNone.Sequence())
	assert.Equal(t, "CRLF", EOLCRLF.String())

	for _, e := range []EOL{EOLLF, EOLCRLF, EOLCR, EOLNone} {
		parsed, err := ParseEOL(e.String())
		require.NoError(t, err)
		assert.Equal(t, e, parsed)
	}
	_, err := ParseEOL("bogus")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEOLNormalizerTransformer(t *testing.T) {
	out, _, err := transform.String(eolNormalizer{seq: "\n"}, "a\r\nb\rc\nd")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\nd", out)

	out, _, err = transform.String(eolNormalizer{seq: "\r\n"}, "a\nb")
	require.NoError(t, err)
	assert.Equal(t, "a\r\nb", out)
}

func TestEOLNormalizerSplitCRLF(t *testing.T) {
	// Feed the transformer one byte at a time so the CRLF pair is split
	// across Transform calls.
	norm := eolNormalizer{seq: "\n"}
	src := "x\r\ny\rz"
	var out []byte
	pending := []byte{}

	for i := 0; i < len(src); i++ {
		pending = append(pending, src[i])
		dst := make([]byte, 16)
		nDst, nSrc, err := norm.Transform(dst, pending, i == len(src)-1)
		if err != nil && err != transform.ErrShortSrc {
			t.Fatalf("transform: %v", err)
		}
		out = append(out, dst[:nDst]...)
		pending = pending[nSrc:]
	}

	assert.Equal(t, "x\ny\nz", string(out))
}

func TestNormalizationDisabled(t *testing.T) {
	doc := NewFromString("a\r\nb", WithEOL(EOLLF), WithNormalizeEOL(false))
	assert.Equal(t, "a\r\nb", doc.Text())
}

func TestEOLNoneDetectsFromContent(t *testing.T) {
	doc := NewFromString("a\r\nb", WithEOL(EOLNone))
	assert.Equal(t, EOLCRLF, doc.EOL())

	doc = NewFromString("a\rb", WithEOL(EOLNone))
	assert.Equal(t, EOLCR, doc.EOL())

	doc = New()
	assert.Equal(t, EOLLF, doc.EOL())
}

func TestSetEOLDoesNotRewriteContent(t *testing.T) {
	doc := NewFromString("a\nb", WithEOL(EOLLF))
	doc.SetEOL(EOLCRLF)

	assert.Equal(t, "a\nb", doc.Text())
	require.NoError(t, doc.Append("\nc"))
	assert.Equal(t, "a\nb\r\nc", doc.Text())
}

func TestNewFromReaderNormalizes(t *testing.T) {
	doc, err := NewFromReader(strings.NewReader("a\r\nb\rc\nd"), WithEOL(EOLLF), WithNormalizeEOL(true))
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\nd", doc.Text())
	assert.Equal(t, 4, doc.LineCount())
}

type sliceChunkSource struct {
	chunks []string
}

func (s *sliceChunkSource) NextChunk() (string, error) {
	if len(s.chunks) == 0 {
		return "", io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func TestNewFromChunks(t *testing.T) {
	src := &sliceChunkSource{chunks: []string{"first ", "second ", "third"}}
	doc, err := NewFromChunks(src, WithEOL(EOLNone))
	require.NoError(t, err)
	assert.Equal(t, "first second third", doc.Text())
}

func TestNewFromChunksSplitCRLF(t *testing.T) {
	// CRLF split across chunk boundaries must still count once.
	src := &sliceChunkSource{chunks: []string{"a\r", "\nb"}}
	doc, err := NewFromChunks(src, WithEOL(EOLNone))
	require.NoError(t, err)

	assert.Equal(t, "a\r\nb", doc.Text())
	assert.Equal(t, 2, doc.LineCount())
	assert.Equal(t, "a", doc.LineContent(1))
	assert.Equal(t, "b", doc.LineContent(2))
}

func TestNewFromChunksNil(t *testing.T) {
	_, err := NewFromChunks(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
