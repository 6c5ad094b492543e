package models

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeType tags a document node with its component kind. The set is closed:
// rendering and validation dispatch over these tags, and adding a kind means
// registering a handler, not scattering type checks.
type NodeType string

const (
	NodeContainer NodeType = "container"
	NodeSection   NodeType = "section"
	NodeColumns   NodeType = "columns"
	NodeColumn    NodeType = "column"
	NodeHeading   NodeType = "heading"
	NodeText      NodeType = "text"
	NodeImage     NodeType = "image"
	NodeButton    NodeType = "button"
	NodeDivider   NodeType = "divider"
	NodeSpacer    NodeType = "spacer"
)

// AllNodeTypes lists every member of the closed NodeType set.
var AllNodeTypes = []NodeType{
	NodeContainer, NodeSection, NodeColumns, NodeColumn,
	NodeHeading, NodeText, NodeImage, NodeButton, NodeDivider, NodeSpacer,
}

// leafTypes cannot carry children.
var leafTypes = map[NodeType]bool{
	NodeHeading: true,
	NodeText:    true,
	NodeImage:   true,
	NodeButton:  true,
	NodeDivider: true,
	NodeSpacer:  true,
}

// IsValidNodeType reports whether t belongs to the closed NodeType set.
func IsValidNodeType(t NodeType) bool {
	for _, nt := range AllNodeTypes {
		if nt == t {
			return true
		}
	}
	return false
}

// IsLeafType reports whether nodes of type t must have no children.
func IsLeafType(t NodeType) bool {
	return leafTypes[t]
}

// DocumentNode is one element of the template's component tree. Node ids are
// unique within a template; parent/child links form a single-rooted tree.
type DocumentNode struct {
	ID         string                 `json:"id"`
	Type       NodeType               `json:"type"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Children   []*DocumentNode        `json:"children,omitempty"`
}

// NewNode creates a node of the given type with a generated id.
func NewNode(t NodeType, props map[string]interface{}) *DocumentNode {
	return &DocumentNode{
		ID:         uuid.NewString(),
		Type:       t,
		Properties: props,
	}
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *DocumentNode) Clone() *DocumentNode {
	if n == nil {
		return nil
	}
	clone := &DocumentNode{
		ID:         n.ID,
		Type:       n.Type,
		Properties: cloneValueMap(n.Properties),
	}
	if n.Children != nil {
		clone.Children = make([]*DocumentNode, len(n.Children))
		for i, c := range n.Children {
			clone.Children[i] = c.Clone()
		}
	}
	return clone
}

// Walk visits n and every descendant depth-first, children in order. The
// walk stops early if fn returns false.
func (n *DocumentNode) Walk(fn func(node *DocumentNode) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// FindNode locates a node by id within the template's document tree. It
// returns the node, its parent (nil for the root) and the node's index
// within the parent's children.
func (t *Template) FindNode(id string) (node, parent *DocumentNode, index int) {
	index = -1
	if t.Document == nil {
		return nil, nil, -1
	}
	if t.Document.ID == id {
		return t.Document, nil, -1
	}
	var walk func(p *DocumentNode) bool
	walk = func(p *DocumentNode) bool {
		for i, c := range p.Children {
			if c.ID == id {
				node, parent, index = c, p, i
				return true
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(t.Document)
	return node, parent, index
}

// InsertNode places child under the parent with the given id at the given
// index (len(children) appends). It validates every precondition before
// touching the tree, so a failed insert leaves the document unchanged.
func (t *Template) InsertNode(parentID string, index int, child *DocumentNode) error {
	if child == nil {
		return fmt.Errorf("cannot insert nil node")
	}
	if !IsValidNodeType(child.Type) {
		return fmt.Errorf("unknown node type %q", child.Type)
	}
	parent, _, _ := t.FindNode(parentID)
	if parent == nil {
		return fmt.Errorf("parent node %s not found", parentID)
	}
	if IsLeafType(parent.Type) {
		return fmt.Errorf("node %s of type %q cannot have children", parentID, parent.Type)
	}
	if child.Type == NodeColumn && parent.Type != NodeColumns {
		return fmt.Errorf("column nodes may only be inserted under a columns node")
	}
	if existing, _, _ := t.FindNode(child.ID); existing != nil {
		return fmt.Errorf("node id %s already exists in document", child.ID)
	}
	if err := checkSubtreeIDs(t, child); err != nil {
		return err
	}
	if index < 0 || index > len(parent.Children) {
		return fmt.Errorf("insert index %d out of range [0,%d]", index, len(parent.Children))
	}
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[index+1:], parent.Children[index:])
	parent.Children[index] = child
	return nil
}

// RemoveNode detaches the node with the given id from its parent and returns
// the removed subtree along with its former position. The root cannot be
// removed.
func (t *Template) RemoveNode(id string) (removed *DocumentNode, parentID string, index int, err error) {
	node, parent, idx := t.FindNode(id)
	if node == nil {
		return nil, "", -1, fmt.Errorf("node %s not found", id)
	}
	if parent == nil {
		return nil, "", -1, fmt.Errorf("cannot remove the document root")
	}
	parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
	return node, parent.ID, idx, nil
}

// MoveNode reattaches the node with the given id under a new parent at the
// given index. Moving a node into its own subtree is rejected. On failure
// the tree is unchanged.
func (t *Template) MoveNode(id, newParentID string, index int) error {
	node, oldParent, oldIdx := t.FindNode(id)
	if node == nil {
		return fmt.Errorf("node %s not found", id)
	}
	if oldParent == nil {
		return fmt.Errorf("cannot move the document root")
	}
	newParent, _, _ := t.FindNode(newParentID)
	if newParent == nil {
		return fmt.Errorf("parent node %s not found", newParentID)
	}
	if IsLeafType(newParent.Type) {
		return fmt.Errorf("node %s of type %q cannot have children", newParentID, newParent.Type)
	}
	inSubtree := false
	node.Walk(func(d *DocumentNode) bool {
		if d.ID == newParentID {
			inSubtree = true
			return false
		}
		return true
	})
	if inSubtree {
		return fmt.Errorf("cannot move node %s into its own subtree", id)
	}
	// Detach, then clamp the index against the post-detach sibling list.
	oldParent.Children = append(oldParent.Children[:oldIdx], oldParent.Children[oldIdx+1:]...)
	if index < 0 || index > len(newParent.Children) {
		// Reattach at the original position before failing.
		oldParent.Children = append(oldParent.Children, nil)
		copy(oldParent.Children[oldIdx+1:], oldParent.Children[oldIdx:])
		oldParent.Children[oldIdx] = node
		return fmt.Errorf("move index %d out of range [0,%d]", index, len(newParent.Children))
	}
	newParent.Children = append(newParent.Children, nil)
	copy(newParent.Children[index+1:], newParent.Children[index:])
	newParent.Children[index] = node
	return nil
}

// SetProperty sets a single property on the node with the given id and
// returns the previous value (nil if unset) for undo capture.
func (t *Template) SetProperty(id, key string, value interface{}) (previous interface{}, existed bool, err error) {
	node, _, _ := t.FindNode(id)
	if node == nil {
		return nil, false, fmt.Errorf("node %s not found", id)
	}
	if node.Properties == nil {
		node.Properties = make(map[string]interface{})
	}
	previous, existed = node.Properties[key]
	node.Properties[key] = value
	return previous, existed, nil
}

// DeleteProperty removes a property from the node with the given id.
func (t *Template) DeleteProperty(id, key string) error {
	node, _, _ := t.FindNode(id)
	if node == nil {
		return fmt.Errorf("node %s not found", id)
	}
	delete(node.Properties, key)
	return nil
}

// Validate checks the structural invariants of the template: a present root,
// unique node ids, known node types, leaf types without children and column
// containment.
func (t *Template) Validate() error {
	if t.Metadata.ID == "" {
		return fmt.Errorf("template has no id")
	}
	if t.Document == nil {
		return fmt.Errorf("template %s has no document root", t.Metadata.ID)
	}
	seen := make(map[string]bool)
	var verr error
	var walk func(n, parent *DocumentNode) bool
	walk = func(n, parent *DocumentNode) bool {
		if n.ID == "" {
			verr = fmt.Errorf("node of type %q has no id", n.Type)
			return false
		}
		if seen[n.ID] {
			verr = fmt.Errorf("duplicate node id %s", n.ID)
			return false
		}
		seen[n.ID] = true
		if !IsValidNodeType(n.Type) {
			verr = fmt.Errorf("node %s has unknown type %q", n.ID, n.Type)
			return false
		}
		if IsLeafType(n.Type) && len(n.Children) > 0 {
			verr = fmt.Errorf("node %s of type %q must not have children", n.ID, n.Type)
			return false
		}
		if n.Type == NodeColumn && (parent == nil || parent.Type != NodeColumns) {
			verr = fmt.Errorf("column node %s must be a child of a columns node", n.ID)
			return false
		}
		for _, c := range n.Children {
			if !walk(c, n) {
				return false
			}
		}
		return true
	}
	walk(t.Document, nil)
	return verr
}

// checkSubtreeIDs rejects an insert whose subtree would collide with ids
// already present in the document.
func checkSubtreeIDs(t *Template, subtree *DocumentNode) error {
	var err error
	subtree.Walk(func(n *DocumentNode) bool {
		if n == subtree {
			return true
		}
		if existing, _, _ := t.FindNode(n.ID); existing != nil {
			err = fmt.Errorf("node id %s already exists in document", n.ID)
			return false
		}
		return true
	})
	return err
}
