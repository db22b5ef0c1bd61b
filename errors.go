package textbuf

import (
	"errors"

	"github.com/dshills/textbuf/internal/engine/search"
)

// Errors returned by document operations.
var (
	// ErrOutOfRange indicates an offset or position outside the document.
	ErrOutOfRange = errors.New("offset out of range")

	// ErrInvalidArgument indicates a negative line or column, or a nil
	// value where one is forbidden.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidQuery indicates a query that failed to compile; the
	// wrapped message carries the compiler's diagnostic.
	ErrInvalidQuery = search.ErrInvalidQuery

	// ErrResource indicates a document size or allocation limit.
	ErrResource = errors.New("resource limit exceeded")

	// ErrIllegalState indicates a call outside its legal protocol, such
	// as EndGroup without a matching BeginGroup.
	ErrIllegalState = errors.New("illegal state")
)
