package service

import (
	"context"

	"github.com/mailsmith/mailsmith/internal/commands"
	"github.com/mailsmith/mailsmith/internal/models"
)

// Session is one active editing session over one template. The template and
// its history belong exclusively to the session; concurrent edits to the
// same template must be serialized outside the core (single writer at the
// storage layer).
type Session struct {
	svc      *Service
	template *models.Template
	history  *commands.History
}

// OpenSession loads a template and binds a fresh history to it.
func (s *Service) OpenSession(ctx context.Context, id string) (*Session, error) {
	t, err := s.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.NewSession(t), nil
}

// NewSession binds a history to an already-loaded template.
func (s *Service) NewSession(t *models.Template) *Session {
	return &Session{
		svc:      s,
		template: t,
		history:  commands.NewHistory(s.opts.HistoryLimit),
	}
}

// Template returns the session's document.
func (sess *Session) Template() *models.Template {
	return sess.template
}

// Apply executes a command through the session history.
func (sess *Session) Apply(cmd commands.Command) error {
	return sess.history.Push(cmd)
}

// Undo reverses the most recent applied command.
func (sess *Session) Undo() error { return sess.history.Undo() }

// Redo re-applies the most recently undone command.
func (sess *Session) Redo() error { return sess.history.Redo() }

// CanUndo reports whether an undo is available.
func (sess *Session) CanUndo() bool { return sess.history.CanUndo() }

// CanRedo reports whether a redo is available.
func (sess *Session) CanRedo() bool { return sess.history.CanRedo() }

// InsertNode inserts a node under a parent at the given index.
func (sess *Session) InsertNode(parentID string, index int, node *models.DocumentNode) error {
	return sess.Apply(commands.NewInsertNodeCommand(sess.template, parentID, index, node))
}

// RemoveNode removes a node by id.
func (sess *Session) RemoveNode(nodeID string) error {
	return sess.Apply(commands.NewRemoveNodeCommand(sess.template, nodeID))
}

// MoveNode reattaches a node under a new parent at the given index.
func (sess *Session) MoveNode(nodeID, newParentID string, index int) error {
	return sess.Apply(commands.NewMoveNodeCommand(sess.template, nodeID, newParentID, index))
}

// SetProperty sets one property on a node.
func (sess *Session) SetProperty(nodeID, key string, value interface{}) error {
	return sess.Apply(commands.NewSetNodePropertyCommand(sess.template, nodeID, key, value))
}

// UpdateMetadata patches the template's metadata.
func (sess *Session) UpdateMetadata(patch commands.MetadataPatch) error {
	return sess.Apply(commands.NewUpdateMetadataCommand(sess.template, patch))
}

// UpdateSettings patches the template's settings.
func (sess *Session) UpdateSettings(patch commands.SettingsPatch) error {
	return sess.Apply(commands.NewUpdateSettingsCommand(sess.template, patch))
}

// Save persists the session's template.
func (sess *Session) Save(ctx context.Context) error {
	return sess.svc.SaveTemplate(ctx, sess.template)
}

// Export serializes the session's template without persisting it.
func (sess *Session) Export(req ExportRequest) (*models.ExportResult, error) {
	return sess.svc.Export(sess.template, req)
}
