package history

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxUndoLevels bounds the undo stack unless configured otherwise.
const DefaultMaxUndoLevels = 100

// Errors returned by history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrNotGrouping   = errors.New("end group without matching begin group")
)

// EventKind identifies a history state transition.
type EventKind uint8

const (
	EventExecuted EventKind = iota
	EventUndone
	EventRedone
	EventCleared
)

// String returns the event kind's name.
func (k EventKind) String() string {
	switch k {
	case EventExecuted:
		return "executed"
	case EventUndone:
		return "undone"
	case EventRedone:
		return "redone"
	case EventCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Event describes a history state transition delivered to listeners.
type Event struct {
	Kind        EventKind
	Description string
	CanUndo     bool
	CanRedo     bool
}

// Listener receives history events. Listeners are invoked synchronously
// after each transition and must not call back into mutating history
// operations.
type Listener func(Event)

// ListenerToken identifies a registered listener.
type ListenerToken = uuid.UUID

// entry wraps a command with metadata.
type entry struct {
	command   Command
	timestamp time.Time
}

// History manages the undo and redo stacks for one document. It is not
// safe for concurrent use; the document facade serializes access.
type History struct {
	undoStack []*entry
	redoStack []*entry

	groupDepth int
	group      *CompositeCommand

	maxLevels int
	listeners map[ListenerToken]Listener
}

// New creates a history with the given depth limit; non-positive means
// DefaultMaxUndoLevels.
func New(maxLevels int) *History {
	if maxLevels <= 0 {
		maxLevels = DefaultMaxUndoLevels
	}
	return &History{
		maxLevels: maxLevels,
		listeners: make(map[ListenerToken]Listener),
	}
}

// Execute runs a command against the target and records it. A failing
// command clears both stacks: once an edit half-applies, replaying the
// surviving entries can no longer be trusted.
func (h *History) Execute(cmd Command, t Target) error {
	if err := cmd.Execute(t); err != nil {
		h.clear()
		h.notify(EventCleared, "")
		return err
	}
	h.push(cmd)
	h.notify(EventExecuted, cmd.Description())
	return nil
}

// push records an executed command, routing it into the open group when
// one is active.
func (h *History) push(cmd Command) {
	if h.groupDepth > 0 {
		h.group.Add(cmd)
		return
	}
	h.pushEntry(cmd)
}

func (h *History) pushEntry(cmd Command) {
	h.undoStack = append(h.undoStack, &entry{command: cmd, timestamp: time.Now()})
	h.redoStack = nil

	if len(h.undoStack) > h.maxLevels {
		excess := len(h.undoStack) - h.maxLevels
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo reverses the most recent command and returns the cursor offset at
// the end of the restored region. Undo is unavailable inside an open group.
func (h *History) Undo(t Target) (int, error) {
	if !h.CanUndo() {
		return -1, ErrNothingToUndo
	}

	e := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]

	if err := e.command.Undo(t); err != nil {
		h.clear()
		h.notify(EventCleared, "")
		return -1, err
	}

	h.redoStack = append(h.redoStack, e)
	h.notify(EventUndone, e.command.Description())
	return e.command.CursorAfterUndo(), nil
}

// Redo re-applies the most recently undone command and returns the cursor
// offset past the re-applied text.
func (h *History) Redo(t Target) (int, error) {
	if !h.CanRedo() {
		return -1, ErrNothingToRedo
	}

	e := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]

	if err := e.command.Execute(t); err != nil {
		h.clear()
		h.notify(EventCleared, "")
		return -1, err
	}

	h.undoStack = append(h.undoStack, e)
	h.notify(EventRedone, e.command.Description())
	return e.command.CursorAfterExecute(), nil
}

// BeginGroup opens a command group. Groups nest: commands accumulate into
// one composite until the outermost EndGroup.
func (h *History) BeginGroup(name string) {
	h.groupDepth++
	if h.groupDepth == 1 {
		h.group = NewComposite(name)
	}
}

// EndGroup closes one nesting level. Closing the outermost level pushes
// the accumulated composite, if non-empty, as a single undo unit.
func (h *History) EndGroup() error {
	if h.groupDepth == 0 {
		return ErrNotGrouping
	}
	h.groupDepth--
	if h.groupDepth > 0 {
		return nil
	}

	group := h.group
	h.group = nil
	if group != nil && !group.IsEmpty() {
		h.pushEntry(group)
		h.notify(EventExecuted, group.Description())
	}
	return nil
}

// IsGrouping returns true while a group is open.
func (h *History) IsGrouping() bool {
	return h.groupDepth > 0
}

// Transaction executes fn inside a group named name.
func (h *History) Transaction(name string, fn func() error) error {
	h.BeginGroup(name)
	if err := fn(); err != nil {
		_ = h.EndGroup()
		return err
	}
	return h.EndGroup()
}

// CanUndo returns true when no group is open and the undo stack is
// non-empty.
func (h *History) CanUndo() bool {
	return h.groupDepth == 0 && len(h.undoStack) > 0
}

// CanRedo returns true when no group is open and the redo stack is
// non-empty.
func (h *History) CanRedo() bool {
	return h.groupDepth == 0 && len(h.redoStack) > 0
}

// UndoSize returns the undo stack depth.
func (h *History) UndoSize() int {
	return len(h.undoStack)
}

// RedoSize returns the redo stack depth.
func (h *History) RedoSize() int {
	return len(h.redoStack)
}

// UndoDescription returns the description of the next undo, or "".
func (h *History) UndoDescription() string {
	if len(h.undoStack) == 0 {
		return ""
	}
	return h.undoStack[len(h.undoStack)-1].command.Description()
}

// RedoDescription returns the description of the next redo, or "".
func (h *History) RedoDescription() string {
	if len(h.redoStack) == 0 {
		return ""
	}
	return h.redoStack[len(h.redoStack)-1].command.Description()
}

// Clear discards all recorded history.
func (h *History) Clear() {
	h.clear()
	h.notify(EventCleared, "")
}

func (h *History) clear() {
	h.undoStack = nil
	h.redoStack = nil
	h.groupDepth = 0
	h.group = nil
}

// SetMaxLevels changes the depth limit, trimming the oldest entries when
// the stack already exceeds it.
func (h *History) SetMaxLevels(max int) {
	if max <= 0 {
		max = DefaultMaxUndoLevels
	}
	h.maxLevels = max
	if len(h.undoStack) > max {
		excess := len(h.undoStack) - max
		h.undoStack = h.undoStack[excess:]
	}
}

// MaxLevels returns the current depth limit.
func (h *History) MaxLevels() int {
	return h.maxLevels
}

// AddListener registers a listener and returns its removal token.
func (h *History) AddListener(l Listener) ListenerToken {
	tok := uuid.New()
	h.listeners[tok] = l
	return tok
}

// RemoveListener unregisters the listener identified by the token.
func (h *History) RemoveListener(tok ListenerToken) {
	delete(h.listeners, tok)
}

func (h *History) notify(kind EventKind, description string) {
	if len(h.listeners) == 0 {
		return
	}
	ev := Event{
		Kind:        kind,
		Description: description,
		CanUndo:     h.CanUndo(),
		CanRedo:     h.CanRedo(),
	}
	for _, l := range h.listeners {
		l(ev)
	}
}
