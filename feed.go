package textbuf

import (
	"io"

	"github.com/dshills/textbuf/internal/engine/bufstore"
	"golang.org/x/text/transform"
)

// ChunkSource feeds initial document content in chunks, so a caller doing
// its own I/O can yield between reads. NextChunk returns io.EOF after the
// final chunk.
type ChunkSource interface {
	NextChunk() (string, error)
}

// chunkSourceReader adapts a ChunkSource to io.Reader.
type chunkSourceReader struct {
	src ChunkSource
	rem string
	err error
}

func (r *chunkSourceReader) Read(p []byte) (int, error) {
	for r.rem == "" {
		if r.err != nil {
			return 0, r.err
		}
		r.rem, r.err = r.src.NextChunk()
	}
	n := copy(p, r.rem)
	r.rem = r.rem[n:]
	return n, nil
}

// NewFromReader creates a document by streaming content from r, applying
// EOL normalization chunk-safely.
func NewFromReader(r io.Reader, opts ...Option) (*Document, error) {
	d := New(opts...)

	src := r
	if d.normalize && d.eol != EOLNone {
		src = transform.NewReader(r, eolNormalizer{seq: d.eol.Sequence()})
	}

	if err := d.loadStream(src); err != nil {
		return nil, err
	}
	return d, nil
}

// NewFromChunks creates a document from a chunked content source.
func NewFromChunks(src ChunkSource, opts ...Option) (*Document, error) {
	if src == nil {
		return nil, ErrInvalidArgument
	}
	return NewFromReader(&chunkSourceReader{src: src}, opts...)
}

// loadStream reads src to exhaustion, storing original chunks. A trailing
// CR is held back between reads so a CRLF pair is never split across a
// chunk boundary.
func (d *Document) loadStream(src io.Reader) error {
	buf := make([]byte, bufstore.OriginalChunkSize)
	carry := false

	for {
		n, err := src.Read(buf)
		if n > 0 {
			chunk := string(buf[:n])
			if carry {
				chunk = "\r" + chunk
				carry = false
			}
			if chunk[len(chunk)-1] == '\r' {
				carry = true
				chunk = chunk[:len(chunk)-1]
			}
			d.loadOriginal(chunk)
		}
		if err == io.EOF {
			if carry {
				d.loadOriginal("\r")
			}
			return nil
		}
		if err != nil {
			return err
		}
	}
}
