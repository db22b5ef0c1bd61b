// Package history records reversible edit commands and replays them for
// undo and redo. Commands drive the editing primitives through the Target
// interface and never observe history state themselves.
package history

import (
	"fmt"
	"unicode/utf8"
)

// Target is the editing surface commands operate on. Text handed to
// commands is already normalized; Target implementations apply it verbatim.
type Target interface {
	// InsertText places text at the offset.
	InsertText(offset int, text string) error
	// DeleteRange removes the half-open range [start, end).
	DeleteRange(start, end int) error
	// ReplaceRange substitutes [start, end) with text atomically.
	ReplaceRange(start, end int, text string) error
	// TextRange reads the half-open range [start, end).
	TextRange(start, end int) string
}

// Command is one reversible edit. Execute runs it forward (and again on
// redo); Undo applies the inverse. Cursor methods report where the caret
// belongs after the corresponding replay.
type Command interface {
	Execute(t Target) error
	Undo(t Target) error
	Description() string
	CursorAfterExecute() int
	CursorAfterUndo() int
}

// InsertCommand inserts text at a fixed offset.
type InsertCommand struct {
	Offset int
	Text   string
}

// NewInsert creates an insert command.
func NewInsert(offset int, text string) *InsertCommand {
	return &InsertCommand{Offset: offset, Text: text}
}

// Execute inserts the text.
func (c *InsertCommand) Execute(t Target) error {
	if err := t.InsertText(c.Offset, c.Text); err != nil {
		return fmt.Errorf("insert at offset %d: %w", c.Offset, err)
	}
	return nil
}

// Undo removes the inserted text.
func (c *InsertCommand) Undo(t Target) error {
	if err := t.DeleteRange(c.Offset, c.Offset+len(c.Text)); err != nil {
		return fmt.Errorf("undo insert: %w", err)
	}
	return nil
}

// Description returns a human-readable description.
func (c *InsertCommand) Description() string {
	if len(c.Text) == 1 {
		if c.Text == "\n" {
			return "Insert newline"
		}
		if c.Text == "\t" {
			return "Insert tab"
		}
		return fmt.Sprintf("Type '%s'", c.Text)
	}
	if utf8.RuneCountInString(c.Text) <= 20 {
		return fmt.Sprintf("Insert %q", c.Text)
	}
	return fmt.Sprintf("Insert %d characters", utf8.RuneCountInString(c.Text))
}

// CursorAfterExecute returns the offset past the inserted text.
func (c *InsertCommand) CursorAfterExecute() int {
	return c.Offset + len(c.Text)
}

// CursorAfterUndo returns the insertion offset.
func (c *InsertCommand) CursorAfterUndo() int {
	return c.Offset
}

// DeleteCommand deletes a fixed range. The pre-image is captured when the
// command first executes so undo reinserts identical content instead of
// reconstructing it.
type DeleteCommand struct {
	Offset  int
	Length  int
	removed string
}

// NewDelete creates a delete command for [offset, offset+length).
func NewDelete(offset, length int) *DeleteCommand {
	return &DeleteCommand{Offset: offset, Length: length}
}

// Execute captures the doomed text, then deletes it.
func (c *DeleteCommand) Execute(t Target) error {
	c.removed = t.TextRange(c.Offset, c.Offset+c.Length)
	if err := t.DeleteRange(c.Offset, c.Offset+c.Length); err != nil {
		return fmt.Errorf("delete range [%d,%d): %w", c.Offset, c.Offset+c.Length, err)
	}
	return nil
}

// Undo reinserts the captured text.
func (c *DeleteCommand) Undo(t Target) error {
	if err := t.InsertText(c.Offset, c.removed); err != nil {
		return fmt.Errorf("undo delete: %w", err)
	}
	return nil
}

// Description returns a human-readable description.
func (c *DeleteCommand) Description() string {
	if c.Length == 1 {
		return "Delete"
	}
	return fmt.Sprintf("Delete %d characters", c.Length)
}

// CursorAfterExecute returns the deletion offset.
func (c *DeleteCommand) CursorAfterExecute() int {
	return c.Offset
}

// CursorAfterUndo returns the offset past the restored text.
func (c *DeleteCommand) CursorAfterUndo() int {
	return c.Offset + c.Length
}

// ReplaceCommand substitutes a fixed range with new text. Both the removed
// and the inserted text are retained: undo swaps the removed text back over
// the inserted text's range, redo does the reverse.
type ReplaceCommand struct {
	Offset   int
	Length   int
	Inserted string
	removed  string
}

// NewReplace creates a replace command for [offset, offset+length).
func NewReplace(offset, length int, text string) *ReplaceCommand {
	return &ReplaceCommand{Offset: offset, Length: length, Inserted: text}
}

// Execute captures the outgoing text, then replaces the range.
func (c *ReplaceCommand) Execute(t Target) error {
	c.removed = t.TextRange(c.Offset, c.Offset+c.Length)
	if err := t.ReplaceRange(c.Offset, c.Offset+c.Length, c.Inserted); err != nil {
		return fmt.Errorf("replace range [%d,%d): %w", c.Offset, c.Offset+c.Length, err)
	}
	return nil
}

// Undo swaps the captured text back over the inserted text's range.
func (c *ReplaceCommand) Undo(t Target) error {
	if err := t.ReplaceRange(c.Offset, c.Offset+len(c.Inserted), c.removed); err != nil {
		return fmt.Errorf("undo replace: %w", err)
	}
	return nil
}

// Description returns a human-readable description.
func (c *ReplaceCommand) Description() string {
	return fmt.Sprintf("Replace %d with %d characters", c.Length, utf8.RuneCountInString(c.Inserted))
}

// CursorAfterExecute returns the offset past the inserted text.
func (c *ReplaceCommand) CursorAfterExecute() int {
	return c.Offset + len(c.Inserted)
}

// CursorAfterUndo returns the offset past the restored text.
func (c *ReplaceCommand) CursorAfterUndo() int {
	return c.Offset + c.Length
}

// CompositeCommand groups commands into one undo unit.
type CompositeCommand struct {
	Name     string
	Commands []Command
}

// NewComposite creates a composite command.
func NewComposite(name string, commands ...Command) *CompositeCommand {
	return &CompositeCommand{Name: name, Commands: commands}
}

// Execute runs all commands in order, rolling back completed steps on
// failure.
func (c *CompositeCommand) Execute(t Target) error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(t); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Undo(t)
			}
			return fmt.Errorf("composite %q step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Undo reverses all commands in reverse order.
func (c *CompositeCommand) Undo(t Target) error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(t); err != nil {
			return fmt.Errorf("undo composite %q step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Description returns the composite's name, or a summary.
func (c *CompositeCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(c.Commands))
}

// CursorAfterExecute returns the last command's execute cursor.
func (c *CompositeCommand) CursorAfterExecute() int {
	if len(c.Commands) == 0 {
		return 0
	}
	return c.Commands[len(c.Commands)-1].CursorAfterExecute()
}

// CursorAfterUndo returns the first command's undo cursor.
func (c *CompositeCommand) CursorAfterUndo() int {
	if len(c.Commands) == 0 {
		return 0
	}
	return c.Commands[0].CursorAfterUndo()
}

// Add appends a command.
func (c *CompositeCommand) Add(cmd Command) {
	c.Commands = append(c.Commands, cmd)
}

// IsEmpty returns true when no commands have been added.
func (c *CompositeCommand) IsEmpty() bool {
	return len(c.Commands) == 0
}
