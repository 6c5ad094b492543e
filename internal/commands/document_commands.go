package commands

import (
	"fmt"

	"github.com/mailsmith/mailsmith/internal/models"
)

// InsertNodeCommand inserts a subtree under a parent node at an index.
type InsertNodeCommand struct {
	base
	Template *models.Template
	ParentID string
	Index    int
	Node     *models.DocumentNode
}

// NewInsertNodeCommand builds an insert command. Index may be len(children)
// to append.
func NewInsertNodeCommand(t *models.Template, parentID string, index int, node *models.DocumentNode) *InsertNodeCommand {
	return &InsertNodeCommand{
		base:     newBase(CmdInsertNode),
		Template: t,
		ParentID: parentID,
		Index:    index,
		Node:     node,
	}
}

func (c *InsertNodeCommand) Validate() error {
	if c.Template == nil {
		return fmt.Errorf("no template bound")
	}
	if c.Node == nil {
		return fmt.Errorf("no node to insert")
	}
	if c.ParentID == "" {
		return fmt.Errorf("no parent id")
	}
	if !models.IsValidNodeType(c.Node.Type) {
		return fmt.Errorf("unknown node type %q", c.Node.Type)
	}
	return nil
}

func (c *InsertNodeCommand) Execute() error {
	return c.Template.InsertNode(c.ParentID, c.Index, c.Node)
}

func (c *InsertNodeCommand) Undo() error {
	_, _, _, err := c.Template.RemoveNode(c.Node.ID)
	return err
}

// RemoveNodeCommand detaches a subtree and remembers where it came from.
type RemoveNodeCommand struct {
	base
	Template *models.Template
	NodeID   string

	removed  *models.DocumentNode
	parentID string
	index    int
}

func NewRemoveNodeCommand(t *models.Template, nodeID string) *RemoveNodeCommand {
	return &RemoveNodeCommand{
		base:     newBase(CmdRemoveNode),
		Template: t,
		NodeID:   nodeID,
	}
}

func (c *RemoveNodeCommand) Validate() error {
	if c.Template == nil {
		return fmt.Errorf("no template bound")
	}
	if c.NodeID == "" {
		return fmt.Errorf("no node id")
	}
	return nil
}

func (c *RemoveNodeCommand) Execute() error {
	removed, parentID, index, err := c.Template.RemoveNode(c.NodeID)
	if err != nil {
		return err
	}
	c.removed, c.parentID, c.index = removed, parentID, index
	return nil
}

func (c *RemoveNodeCommand) Undo() error {
	if c.removed == nil {
		return fmt.Errorf("remove command %s has not executed", c.ID())
	}
	return c.Template.InsertNode(c.parentID, c.index, c.removed)
}

// MoveNodeCommand reattaches a node under a new parent at a new index.
type MoveNodeCommand struct {
	base
	Template    *models.Template
	NodeID      string
	NewParentID string
	NewIndex    int

	oldParentID string
	oldIndex    int
	executed    bool
}

func NewMoveNodeCommand(t *models.Template, nodeID, newParentID string, newIndex int) *MoveNodeCommand {
	return &MoveNodeCommand{
		base:        newBase(CmdMoveNode),
		Template:    t,
		NodeID:      nodeID,
		NewParentID: newParentID,
		NewIndex:    newIndex,
	}
}

func (c *MoveNodeCommand) Validate() error {
	if c.Template == nil {
		return fmt.Errorf("no template bound")
	}
	if c.NodeID == "" || c.NewParentID == "" {
		return fmt.Errorf("move requires a node id and a parent id")
	}
	return nil
}

func (c *MoveNodeCommand) Execute() error {
	_, parent, index := c.Template.FindNode(c.NodeID)
	if parent == nil {
		return fmt.Errorf("node %s not found or is the root", c.NodeID)
	}
	if err := c.Template.MoveNode(c.NodeID, c.NewParentID, c.NewIndex); err != nil {
		return err
	}
	c.oldParentID, c.oldIndex = parent.ID, index
	c.executed = true
	return nil
}

func (c *MoveNodeCommand) Undo() error {
	if !c.executed {
		return fmt.Errorf("move command %s has not executed", c.ID())
	}
	return c.Template.MoveNode(c.NodeID, c.oldParentID, c.oldIndex)
}

// SetNodePropertyCommand sets one property on a node, remembering the
// previous value (or its absence) for undo.
type SetNodePropertyCommand struct {
	base
	Template *models.Template
	NodeID   string
	Key      string
	Value    interface{}

	previous interface{}
	existed  bool
	captured bool
}

func NewSetNodePropertyCommand(t *models.Template, nodeID, key string, value interface{}) *SetNodePropertyCommand {
	return &SetNodePropertyCommand{
		base:     newBase(CmdSetProperty),
		Template: t,
		NodeID:   nodeID,
		Key:      key,
		Value:    value,
	}
}

func (c *SetNodePropertyCommand) Validate() error {
	if c.Template == nil {
		return fmt.Errorf("no template bound")
	}
	if c.NodeID == "" {
		return fmt.Errorf("no node id")
	}
	if c.Key == "" {
		return fmt.Errorf("no property name")
	}
	return nil
}

func (c *SetNodePropertyCommand) Execute() error {
	previous, existed, err := c.Template.SetProperty(c.NodeID, c.Key, c.Value)
	if err != nil {
		return err
	}
	// Capture only on first execute; redo must not overwrite the original.
	if !c.captured {
		c.previous, c.existed, c.captured = previous, existed, true
	}
	return nil
}

func (c *SetNodePropertyCommand) Undo() error {
	if !c.captured {
		return fmt.Errorf("property command %s has not executed", c.ID())
	}
	if !c.existed {
		return c.Template.DeleteProperty(c.NodeID, c.Key)
	}
	_, _, err := c.Template.SetProperty(c.NodeID, c.Key, c.previous)
	return err
}

// MetadataPatch carries the mutable metadata fields; nil means unchanged.
// The template id and timestamps are never patched through commands.
type MetadataPatch struct {
	Name        *string
	Description *string
	Category    *string
}

// UpdateMetadataCommand applies a metadata patch, restoring the whole
// pre-execute metadata on undo.
type UpdateMetadataCommand struct {
	base
	Template *models.Template
	Patch    MetadataPatch

	previous models.TemplateMetadata
	captured bool
}

func NewUpdateMetadataCommand(t *models.Template, patch MetadataPatch) *UpdateMetadataCommand {
	return &UpdateMetadataCommand{
		base:     newBase(CmdUpdateMetadata),
		Template: t,
		Patch:    patch,
	}
}

func (c *UpdateMetadataCommand) Validate() error {
	if c.Template == nil {
		return fmt.Errorf("no template bound")
	}
	if c.Patch.Name == nil && c.Patch.Description == nil && c.Patch.Category == nil {
		return fmt.Errorf("empty metadata patch")
	}
	if c.Patch.Name != nil && *c.Patch.Name == "" {
		return fmt.Errorf("template name cannot be empty")
	}
	return nil
}

func (c *UpdateMetadataCommand) Execute() error {
	if !c.captured {
		c.previous, c.captured = c.Template.Metadata, true
	}
	if c.Patch.Name != nil {
		c.Template.Metadata.Name = *c.Patch.Name
	}
	if c.Patch.Description != nil {
		c.Template.Metadata.Description = *c.Patch.Description
	}
	if c.Patch.Category != nil {
		c.Template.Metadata.Category = *c.Patch.Category
	}
	return nil
}

func (c *UpdateMetadataCommand) Undo() error {
	if !c.captured {
		return fmt.Errorf("metadata command %s has not executed", c.ID())
	}
	c.Template.Metadata = c.previous
	return nil
}

// SettingsPatch carries the mutable settings fields; nil means unchanged.
type SettingsPatch struct {
	Target *string
	Locale *string
	Width  *int
	Height *int
}

// UpdateSettingsCommand applies a settings patch, restoring the whole
// pre-execute settings on undo.
type UpdateSettingsCommand struct {
	base
	Template *models.Template
	Patch    SettingsPatch

	previous models.TemplateSettings
	captured bool
}

func NewUpdateSettingsCommand(t *models.Template, patch SettingsPatch) *UpdateSettingsCommand {
	return &UpdateSettingsCommand{
		base:     newBase(CmdUpdateSettings),
		Template: t,
		Patch:    patch,
	}
}

func (c *UpdateSettingsCommand) Validate() error {
	if c.Template == nil {
		return fmt.Errorf("no template bound")
	}
	if c.Patch.Width != nil && *c.Patch.Width <= 0 {
		return fmt.Errorf("canvas width must be positive")
	}
	if c.Patch.Height != nil && *c.Patch.Height <= 0 {
		return fmt.Errorf("canvas height must be positive")
	}
	return nil
}

func (c *UpdateSettingsCommand) Execute() error {
	if !c.captured {
		c.previous, c.captured = c.Template.Settings, true
	}
	if c.Patch.Target != nil {
		c.Template.Settings.Target = *c.Patch.Target
	}
	if c.Patch.Locale != nil {
		c.Template.Settings.Locale = *c.Patch.Locale
	}
	if c.Patch.Width != nil {
		c.Template.Settings.CanvasDimensions.Width = *c.Patch.Width
	}
	if c.Patch.Height != nil {
		c.Template.Settings.CanvasDimensions.Height = *c.Patch.Height
	}
	return nil
}

func (c *UpdateSettingsCommand) Undo() error {
	if !c.captured {
		return fmt.Errorf("settings command %s has not executed", c.ID())
	}
	c.Template.Settings = c.previous
	return nil
}
