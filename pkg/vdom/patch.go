package vdom

import "fmt"

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	PatchReplaceSubtree PatchOp = 0x01 // Replace a node (or the root content) with a new subtree
	PatchAddChild       PatchOp = 0x02 // Append a child under a parent
	PatchRemoveChild    PatchOp = 0x03 // Remove a child from a parent
	PatchUpdateText     PatchOp = 0x04 // Update text content
	PatchAddProperty    PatchOp = 0x05 // Add a property
	PatchUpdateProperty PatchOp = 0x06 // Change a property value
	PatchRemoveProperty PatchOp = 0x07 // Remove a property
	PatchAddHandler     PatchOp = 0x08 // Bind an event handler
	PatchRemoveHandler  PatchOp = 0x09 // Unbind an event handler
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchReplaceSubtree:
		return "ReplaceSubtree"
	case PatchAddChild:
		return "AddChild"
	case PatchRemoveChild:
		return "RemoveChild"
	case PatchUpdateText:
		return "UpdateText"
	case PatchAddProperty:
		return "AddProperty"
	case PatchUpdateProperty:
		return "UpdateProperty"
	case PatchRemoveProperty:
		return "RemoveProperty"
	case PatchAddHandler:
		return "AddHandler"
	case PatchRemoveHandler:
		return "RemoveHandler"
	default:
		return "Unknown"
	}
}

// Patch represents a single edit against the materialized document.
//
// Field use by Op:
//
//	ReplaceSubtree  NodeID (empty for root), Node, Prev
//	AddChild        ParentID, Node
//	RemoveChild     ParentID, NodeID, Prev
//	UpdateText      NodeID, Value
//	Add/UpdateProperty  NodeID, Name, Value
//	RemoveProperty  NodeID, Name
//	Add/RemoveHandler   NodeID, Name (event), Command
type Patch struct {
	Op       PatchOp
	NodeID   string  // Target node identity
	ParentID string  // Parent for AddChild/RemoveChild
	Name     string  // Property name or event name
	Value    string  // New text or property value
	Node     *VNode  // New subtree for ReplaceSubtree/AddChild
	Prev     *VNode  // Subtree being replaced or removed
	Command  Command // Handler command
}

// String returns a compact description used in logs and test failures.
func (p Patch) String() string {
	switch p.Op {
	case PatchReplaceSubtree:
		return fmt.Sprintf("ReplaceSubtree(%q)", p.NodeID)
	case PatchAddChild:
		id := ""
		if p.Node != nil {
			id = p.Node.ID
		}
		return fmt.Sprintf("AddChild(%q, %q)", p.ParentID, id)
	case PatchRemoveChild:
		return fmt.Sprintf("RemoveChild(%q, %q)", p.ParentID, p.NodeID)
	case PatchUpdateText:
		return fmt.Sprintf("UpdateText(%q, %q)", p.NodeID, p.Value)
	case PatchAddProperty, PatchUpdateProperty:
		return fmt.Sprintf("%s(%q, %s=%q)", p.Op, p.NodeID, p.Name, p.Value)
	case PatchRemoveProperty:
		return fmt.Sprintf("RemoveProperty(%q, %s)", p.NodeID, p.Name)
	case PatchAddHandler, PatchRemoveHandler:
		return fmt.Sprintf("%s(%q, %s, %v)", p.Op, p.NodeID, p.Name, p.Command)
	default:
		return fmt.Sprintf("Patch(op=%d)", p.Op)
	}
}
