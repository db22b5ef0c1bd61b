// Package search finds literal and regular-expression matches in a
// piecewise document. Matching runs over a sliding window that follows the
// piece iterator, so a match may span any number of piece boundaries. The
// window drops only content before the current scan position, so while no
// further match is found it holds the whole rest of the document.
package search

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/dshills/textbuf/internal/engine/piecetree"
)

// MaxMatches caps the number of matches one query may return.
const MaxMatches = 1000

// windowTail is the minimum number of window bytes retained when sliding
// past scanned content, so matches straddling the trim point survive.
const windowTail = 128

// ErrInvalidQuery is returned when a query cannot be compiled.
var ErrInvalidQuery = errors.New("invalid query")

// Options control how a query is interpreted.
type Options struct {
	// UseRegex compiles the query as a regular expression instead of a
	// literal.
	UseRegex bool
	// CaseSensitive disables case folding; when false, matching ignores
	// case.
	CaseSensitive bool
	// WholeWord requires both match neighbours to be a document boundary
	// or a separator.
	WholeWord bool
	// WordSeparators overrides the separator class used by WholeWord.
	// Empty means whitespace or punctuation.
	WordSeparators string
	// CaptureGroups records submatch text on each match.
	CaptureGroups bool
}

// Match is one query hit, in absolute document offsets.
type Match struct {
	Start  int
	End    int
	Groups []string
}

// Engine searches one tree. It holds no state between queries.
type Engine struct {
	tree *piecetree.Tree
}

// New creates an engine over the tree.
func New(tree *piecetree.Tree) *Engine {
	return &Engine{tree: tree}
}

// compile builds the matcher for a query.
func compile(query string, opts Options) (*regexp.Regexp, error) {
	pattern := query
	if !opts.UseRegex {
		pattern = regexp.QuoteMeta(query)
	}
	if !opts.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return re, nil
}

// FindAll returns matches starting at or after startOffset in ascending
// start order, capped at maxMatches (and always at MaxMatches). A
// non-positive maxMatches means MaxMatches.
func (e *Engine) FindAll(query string, startOffset int, opts Options, maxMatches int) ([]Match, error) {
	re, err := compile(query, opts)
	if err != nil {
		return nil, err
	}

	limit := maxMatches
	if limit <= 0 || limit > MaxMatches {
		limit = MaxMatches
	}

	var matches []Match
	e.scan(re, startOffset, opts, func(m Match) bool {
		matches = append(matches, m)
		return len(matches) < limit
	})
	return matches, nil
}

// FindNext returns the first match whose start offset is >= startOffset.
func (e *Engine) FindNext(query string, startOffset int, opts Options) (Match, bool, error) {
	re, err := compile(query, opts)
	if err != nil {
		return Match{}, false, err
	}

	var found Match
	ok := false
	e.scan(re, startOffset, opts, func(m Match) bool {
		found = m
		ok = true
		return false
	})
	return found, ok, nil
}

// FindPrevious returns the last match whose end offset is <= endOffset.
// The scan runs forward and retains the final qualifying match.
func (e *Engine) FindPrevious(query string, endOffset int, opts Options) (Match, bool, error) {
	re, err := compile(query, opts)
	if err != nil {
		return Match{}, false, err
	}

	var found Match
	ok := false
	e.scan(re, 0, opts, func(m Match) bool {
		if m.End > endOffset {
			return false
		}
		found = m
		ok = true
		return true
	})
	return found, ok, nil
}

// scan drives the sliding window and calls emit for each match in
// ascending start order; emit returns false to stop.
func (e *Engine) scan(re *regexp.Regexp, from int, opts Options, emit func(Match) bool) {
	if from < 0 {
		from = 0
	}
	docLen := e.tree.Length()
	if from > docLen {
		return
	}

	var window []byte
	windowBase := -1
	searchPos := 0

	it := e.tree.Pieces()
	for it.Next() {
		pieceEnd := it.DocumentStart() + it.Piece().Length
		if pieceEnd <= from {
			continue
		}
		if windowBase < 0 {
			windowBase = it.DocumentStart()
			searchPos = from - windowBase
		}
		window = append(window, it.Text()...)
		last := pieceEnd == docLen

		if !e.drain(re, window, windowBase, &searchPos, last, opts, emit) {
			return
		}

		// Slide: keep a tail so a deferred boundary match stays intact.
		keep := len(window) - searchPos
		if keep < windowTail {
			keep = windowTail
		}
		if drop := len(window) - keep; drop > 0 {
			window = window[drop:]
			windowBase += drop
			searchPos -= drop
		}
	}
}

// drain reports matches inside the window. A match ending exactly at the
// window edge is deferred until more content arrives, unless the window
// already reaches the document end.
func (e *Engine) drain(re *regexp.Regexp, window []byte, windowBase int, searchPos *int, last bool, opts Options, emit func(Match) bool) bool {
	for *searchPos <= len(window) {
		loc := re.FindIndex(window[*searchPos:])
		if loc == nil {
			return true
		}
		s := *searchPos + loc[0]
		en := *searchPos + loc[1]
		if en == len(window) && !last {
			return true
		}

		abs := Match{Start: windowBase + s, End: windowBase + en}
		if opts.WholeWord && !e.wholeWordAt(abs.Start, abs.End, opts.WordSeparators) {
			*searchPos = s + 1
			continue
		}
		if opts.CaptureGroups {
			if sub := re.FindSubmatchIndex(window[s:]); sub != nil && sub[0] == 0 {
				abs.Groups = make([]string, 0, len(sub)/2)
				for g := 0; g < len(sub); g += 2 {
					if sub[g] < 0 {
						abs.Groups = append(abs.Groups, "")
						continue
					}
					abs.Groups = append(abs.Groups, string(window[s+sub[g]:s+sub[g+1]]))
				}
			}
		}

		if !emit(abs) {
			return false
		}
		if en == s {
			*searchPos = s + 1
		} else {
			*searchPos = en
		}
	}
	return true
}

// wholeWordAt reports whether the match neighbours are document boundaries
// or separators. Neighbours are read from the tree, not the window, so the
// check is independent of window trimming.
func (e *Engine) wholeWordAt(start, end int, separators string) bool {
	if start > 0 {
		b, _ := e.tree.ByteAt(start - 1)
		if !isSeparator(b, separators) {
			return false
		}
	}
	if end < e.tree.Length() {
		b, _ := e.tree.ByteAt(end)
		if !isSeparator(b, separators) {
			return false
		}
	}
	return true
}

func isSeparator(b byte, separators string) bool {
	if separators != "" {
		return strings.IndexByte(separators, b) >= 0
	}
	r := rune(b)
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}
