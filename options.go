package textbuf

// Option is a functional option for configuring a Document.
type Option func(*Document)

// WithEOL sets the document's line ending policy.
func WithEOL(eol EOL) Option {
	return func(d *Document) {
		d.eol = eol
	}
}

// WithNormalizeEOL enables or disables terminator normalization on ingress.
// Normalization has no effect under the EOLNone policy.
func WithNormalizeEOL(on bool) Option {
	return func(d *Document) {
		d.normalize = on
	}
}

// WithMaxUndoLevels bounds the undo stack depth.
func WithMaxUndoLevels(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.maxUndo = n
		}
	}
}

// WithLF configures Unix line endings.
func WithLF() Option {
	return WithEOL(EOLLF)
}

// WithCRLF configures Windows line endings.
func WithCRLF() Option {
	return WithEOL(EOLCRLF)
}

// WithCR configures old Mac line endings.
func WithCR() Option {
	return WithEOL(EOLCR)
}
