package textbuf

import (
	"strings"

	"golang.org/x/text/transform"
)

// EOL is a line ending policy.
type EOL uint8

const (
	// EOLLF normalizes to Unix line endings (\n).
	EOLLF EOL = iota
	// EOLCRLF normalizes to Windows line endings (\r\n).
	EOLCRLF
	// EOLCR normalizes to old Mac line endings (\r).
	EOLCR
	// EOLNone stores content as written; the effective policy is detected
	// from the content.
	EOLNone
)

// String returns the policy name.
func (e EOL) String() string {
	switch e {
	case EOLLF:
		return "LF"
	case EOLCRLF:
		return "CRLF"
	case EOLCR:
		return "CR"
	case EOLNone:
		return "None"
	default:
		return "LF"
	}
}

// Sequence returns the terminator characters for the policy; empty for
// EOLNone.
func (e EOL) Sequence() string {
	switch e {
	case EOLLF:
		return "\n"
	case EOLCRLF:
		return "\r\n"
	case EOLCR:
		return "\r"
	default:
		return ""
	}
}

// ParseEOL resolves a policy name produced by EOL.String.
func ParseEOL(name string) (EOL, error) {
	switch name {
	case "LF":
		return EOLLF, nil
	case "CRLF":
		return EOLCRLF, nil
	case "CR":
		return EOLCR, nil
	case "None":
		return EOLNone, nil
	default:
		return EOLLF, ErrInvalidArgument
	}
}

// DetectEOL returns the policy the content is written in, checking CRLF,
// then LF, then CR, defaulting to LF.
func DetectEOL(text string) EOL {
	if strings.Contains(text, "\r\n") {
		return EOLCRLF
	}
	if strings.IndexByte(text, '\n') >= 0 {
		return EOLLF
	}
	if strings.IndexByte(text, '\r') >= 0 {
		return EOLCR
	}
	return EOLLF
}

// convertEOL rewrites every terminator in text to seq in one pass. CRLF
// counts as a single terminator.
func convertEOL(text, seq string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			sb.WriteString(seq)
		case '\n':
			sb.WriteString(seq)
		default:
			sb.WriteByte(text[i])
		}
	}
	return sb.String()
}

// eolNormalizer is a transform.Transformer that rewrites terminators to a
// fixed sequence. A CR at the end of the source is held back until more
// input arrives, so a CRLF split across chunk boundaries is still rewritten
// once.
type eolNormalizer struct {
	transform.NopResetter
	seq string
}

// Transform implements transform.Transformer.
func (n eolNormalizer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		switch src[nSrc] {
		case '\r':
			if nSrc+1 >= len(src) && !atEOF {
				return nDst, nSrc, transform.ErrShortSrc
			}
			width := 1
			if nSrc+1 < len(src) && src[nSrc+1] == '\n' {
				width = 2
			}
			if nDst+len(n.seq) > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			nDst += copy(dst[nDst:], n.seq)
			nSrc += width
		case '\n':
			if nDst+len(n.seq) > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			nDst += copy(dst[nDst:], n.seq)
			nSrc++
		default:
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = src[nSrc]
			nDst++
			nSrc++
		}
	}
	return nDst, nSrc, nil
}
