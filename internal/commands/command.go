// Package commands implements the reversible command engine for mailsmith.
//
// SYSTEM ARCHITECTURE ROLE:
// This module is the coordination layer between editing surfaces and the
// document model. Every mutation of a template document is wrapped in a
// Command that knows how to execute itself and how to reverse the exact
// mutation it performed, driving an undo/redo-capable history.
//
// KEY RESPONSIBILITIES:
// - Define the Command and UndoableCommand execution contracts
// - Drive the bounded, cursor-based History stack (undo/redo/truncate/evict)
// - Guarantee transactional execution: a failed command leaves the document
//   and the stack unchanged
//
// INTEGRATION POINTS:
// - internal/models: commands mutate templates only through the template's
//   own mutation methods and record how to reverse them
// - internal/errors: boundary conditions surface EMPTY_HISTORY and
//   NO_REDO_AVAILABLE; execution failures carry the command id
// - internal/service: editing sessions own one History per open template
//
// COMMAND FLOW:
// 1. A surface builds a concrete command with its payload
// 2. History.Push validates, executes, truncates the redo buffer and appends
// 3. Undo walks the cursor back, invoking Undo on the command behind it
// 4. Redo re-invokes Execute on the command at the cursor
// 5. Terminal commands (exports) execute without touching the stack
package commands

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/mailsmith/mailsmith/internal/errors"
)

// Command type tags, a closed enumeration.
const (
	CmdInsertNode     = "insert-node"
	CmdRemoveNode     = "remove-node"
	CmdMoveNode       = "move-node"
	CmdSetProperty    = "set-node-property"
	CmdUpdateMetadata = "update-metadata"
	CmdUpdateSettings = "update-settings"
	CmdExportTemplate = "export-template"
)

// Command is a unit of work against one template. Execute is called exactly
// once per push (and again on redo); it must either complete the whole
// mutation or leave no partial state behind.
type Command interface {
	ID() string
	Type() string
	Timestamp() time.Time
	Validate() error
	Execute() error
}

// UndoableCommand is a Command that can restore the document to the exact
// state preceding its Execute. Commands that do not implement it are
// terminal: they run and never enter the history.
type UndoableCommand interface {
	Command
	Undo() error
}

// base carries the identity fields shared by every command.
type base struct {
	id      string
	cmdType string
	ts      time.Time
}

func newBase(cmdType string) base {
	return base{
		id:      uuid.NewString(),
		cmdType: cmdType,
		ts:      time.Now(),
	}
}

func (b base) ID() string           { return b.id }
func (b base) Type() string         { return b.cmdType }
func (b base) Timestamp() time.Time { return b.ts }

// DefaultHistoryLimit caps the history when no explicit limit is configured.
const DefaultHistoryLimit = 100

// History is the undo/redo stack: an ordered sequence of executed undoable
// commands with a cursor at the last applied one. Entries past the cursor
// form the redo buffer and are discarded the moment a new command is pushed.
type History struct {
	entries []UndoableCommand
	cursor  int
	limit   int
}

// NewHistory creates a history bounded at limit entries; limit <= 0 selects
// DefaultHistoryLimit. On overflow the oldest entry is evicted, which never
// affects undo correctness for the retained ones.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Push validates and executes cmd. Undoable commands then truncate the redo
// buffer and append at the cursor; terminal commands return without touching
// the stack. A validation or execution failure surfaces the command id and
// leaves both the document and the stack unchanged.
func (h *History) Push(cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidCommand, "invalid command payload").
			WithContext("commandId", cmd.ID()).
			WithContext("commandType", cmd.Type())
	}
	if err := cmd.Execute(); err != nil {
		return apperrors.CommandFailedError(cmd.ID(), err)
	}
	undoable, ok := cmd.(UndoableCommand)
	if !ok {
		return nil
	}
	h.entries = h.entries[:h.cursor]
	h.entries = append(h.entries, undoable)
	if len(h.entries) > h.limit {
		over := len(h.entries) - h.limit
		h.entries = append([]UndoableCommand(nil), h.entries[over:]...)
	}
	h.cursor = len(h.entries)
	return nil
}

// Undo reverses the command behind the cursor.
func (h *History) Undo() error {
	if h.cursor == 0 {
		return apperrors.EmptyHistoryError()
	}
	cmd := h.entries[h.cursor-1]
	if err := cmd.Undo(); err != nil {
		return apperrors.CommandFailedError(cmd.ID(), err)
	}
	h.cursor--
	return nil
}

// Redo re-executes the command at the cursor.
func (h *History) Redo() error {
	if h.cursor >= len(h.entries) {
		return apperrors.NoRedoAvailableError()
	}
	cmd := h.entries[h.cursor]
	if err := cmd.Execute(); err != nil {
		return apperrors.CommandFailedError(cmd.ID(), err)
	}
	h.cursor++
	return nil
}

// CanUndo reports whether an undo is available.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether a redo is available.
func (h *History) CanRedo() bool { return h.cursor < len(h.entries) }

// Len returns the number of retained commands.
func (h *History) Len() int { return len(h.entries) }

// Cursor returns the index of the last applied command.
func (h *History) Cursor() int { return h.cursor }
