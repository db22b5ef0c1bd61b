package textbuf

import (
	"fmt"

	"github.com/dshills/textbuf/internal/engine/history"
)

// FindAll returns matches of the query starting at or after start, in
// ascending start order, capped at max (and always at MaxFindMatches). A
// non-positive max means MaxFindMatches.
func (d *Document) FindAll(query string, start int, opts SearchOptions, max int) ([]Match, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.finder.FindAll(query, start, opts, max)
}

// FindNext returns the first match whose start offset is >= start.
func (d *Document) FindNext(query string, start int, opts SearchOptions) (Match, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.finder.FindNext(query, start, opts)
}

// FindPrevious returns the last match whose end offset is <= end.
func (d *Document) FindPrevious(query string, end int, opts SearchOptions) (Match, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.finder.FindPrevious(query, end, opts)
}

// ReplaceFirst substitutes the first match of the query with text. It
// reports whether a match was replaced.
func (d *Document) ReplaceFirst(query string, opts SearchOptions, text string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok, err := d.finder.FindNext(query, 0, opts)
	if err != nil || !ok {
		return false, err
	}

	cmd := history.NewReplace(m.Start, m.End-m.Start, d.ingress(text))
	if err := d.hist.Execute(cmd, editTarget{d}); err != nil {
		return false, err
	}
	return true, nil
}

// ReplaceAll substitutes every match of the query with text, up to
// maxCount, as a single history entry. A non-positive maxCount means
// MaxFindMatches, which also caps larger values. It returns the number of
// replacements made.
func (d *Document) ReplaceAll(query string, opts SearchOptions, text string, maxCount int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	matches, err := d.finder.FindAll(query, 0, opts, maxCount)
	if err != nil || len(matches) == 0 {
		return 0, err
	}

	norm := d.ingress(text)
	group := history.NewComposite(fmt.Sprintf("Replace all %q", query))
	// Highest offset first, so earlier replacements do not shift later
	// match positions.
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		group.Add(history.NewReplace(m.Start, m.End-m.Start, norm))
	}

	if err := d.hist.Execute(group, editTarget{d}); err != nil {
		return 0, err
	}
	return len(matches), nil
}
