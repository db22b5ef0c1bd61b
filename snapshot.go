package textbuf

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Snapshot is a frozen document state: content, EOL policy, and the
// revision it captured. Snapshots are immutable and independent of the
// live buffers.
type Snapshot struct {
	id        uuid.UUID
	revision  RevisionID
	content   string
	eol       EOL
	normalize bool
}

// ID returns the snapshot's identifier.
func (s *Snapshot) ID() uuid.UUID {
	return s.id
}

// Revision returns the revision the snapshot captured.
func (s *Snapshot) Revision() RevisionID {
	return s.revision
}

// Text returns the frozen content.
func (s *Snapshot) Text() string {
	return s.content
}

// Len returns the frozen content length.
func (s *Snapshot) Len() int {
	return len(s.content)
}

// EOL returns the policy in effect when the snapshot was taken.
func (s *Snapshot) EOL() EOL {
	return s.eol
}

// MarshalJSON encodes the snapshot for persistence.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	out := "{}"
	var err error
	if out, err = sjson.Set(out, "id", s.id.String()); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if out, err = sjson.Set(out, "eol", s.eol.String()); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if out, err = sjson.Set(out, "normalize_eol", s.normalize); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if out, err = sjson.Set(out, "content", s.content); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return []byte(out), nil
}

// SnapshotFromJSON decodes a snapshot produced by MarshalJSON. The decoded
// snapshot carries a fresh revision.
func SnapshotFromJSON(data []byte) (*Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("decode snapshot: %w", ErrInvalidArgument)
	}
	doc := gjson.ParseBytes(data)

	idField := doc.Get("id")
	if !idField.Exists() {
		return nil, fmt.Errorf("decode snapshot: missing id: %w", ErrInvalidArgument)
	}
	id, err := uuid.Parse(idField.String())
	if err != nil {
		return nil, fmt.Errorf("decode snapshot id: %w", ErrInvalidArgument)
	}
	eol, err := ParseEOL(doc.Get("eol").String())
	if err != nil {
		return nil, fmt.Errorf("decode snapshot eol: %w", err)
	}

	return &Snapshot{
		id:        id,
		revision:  newRevisionID(),
		content:   doc.Get("content").String(),
		eol:       eol,
		normalize: doc.Get("normalize_eol").Bool(),
	}, nil
}

// CreateSnapshot freezes the current document state.
func (d *Document) CreateSnapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return &Snapshot{
		id:        uuid.New(),
		revision:  d.revision,
		content:   d.tree.Text(),
		eol:       d.eol,
		normalize: d.normalize,
	}
}

// RestoreSnapshot rebuilds the document from a snapshot: content, EOL
// policy, and normalization flag. History is cleared.
func (d *Document) RestoreSnapshot(s *Snapshot) error {
	if s == nil {
		return ErrInvalidArgument
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.tree.Reset()
	d.loadOriginal(s.content)
	d.eol = s.eol
	d.normalize = s.normalize
	d.hist.Clear()
	d.revision = newRevisionID()
	return nil
}
