package vdom

import (
	"slices"
	"strconv"
	"strings"
)

// DefaultRootID is the identity given to the root of a view tree.
const DefaultRootID = "r"

// idSep separates path segments in node identities ("r.0.2").
const idSep = "."

// ChildID returns the identity of the i-th child of the node with parentID.
func ChildID(parentID string, i int) string {
	return parentID + idSep + strconv.Itoa(i)
}

// SplitID splits a node identity into its parent identity and position.
// ok is false for a root identity.
func SplitID(id string) (parentID string, index int, ok bool) {
	i := strings.LastIndex(id, idSep)
	if i < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return id[:i], n, true
}

// Identify returns a copy of root with every node given its positional
// identity, leaving root untouched.
//
// Views may share nodes between renders (a package-level footer) or place
// one node at several positions, so identities are never written into the
// caller's nodes: each position gets its own copy. The runtime calls this
// once per View result, before diffing.
func Identify(root *VNode, rootID string) *VNode {
	if root == nil {
		return nil
	}
	if rootID == "" {
		rootID = DefaultRootID
	}
	return identify(root, rootID)
}

func identify(node *VNode, id string) *VNode {
	out := &VNode{
		Kind: node.Kind,
		ID:   id,
		Tag:  node.Tag,
		Text: node.Text,
	}
	if len(node.Attrs) > 0 {
		out.Attrs = slices.Clone(node.Attrs)
	}
	if len(node.Children) > 0 {
		out.Children = make([]*VNode, len(node.Children))
		for i, child := range node.Children {
			if child != nil {
				out.Children[i] = identify(child, ChildID(id, i))
			}
		}
	}
	return out
}

// AssignIDs gives every node in a freshly built tree its positional
// identity in place.
//
// The root receives rootID and the i-th child of a node receives
// ChildID(node.ID, i), so the same logical position carries the same
// identity across renders. A node reachable from more than one position
// ends up with the last identity written; use Identify for trees that may
// share nodes. Diff itself never writes identities.
func AssignIDs(root *VNode, rootID string) {
	if root == nil {
		return
	}
	if rootID == "" {
		rootID = DefaultRootID
	}
	assignIDs(root, rootID)
}

func assignIDs(node *VNode, id string) {
	node.ID = id
	for i, child := range node.Children {
		if child != nil {
			assignIDs(child, ChildID(id, i))
		}
	}
}

// CollectIDs returns a map of identity to VNode for all nodes in the tree.
func CollectIDs(node *VNode) map[string]*VNode {
	result := make(map[string]*VNode)
	Walk(node, func(n *VNode) bool {
		if n.ID != "" {
			result[n.ID] = n
		}
		return true
	})
	return result
}

// FindByID finds a node by its identity in the tree.
func FindByID(node *VNode, id string) *VNode {
	var found *VNode
	Walk(node, func(n *VNode) bool {
		if n.ID == id {
			found = n
			return false
		}
		return found == nil
	})
	return found
}

// CountInteractive returns the number of elements with handlers in the tree.
func CountInteractive(node *VNode) int {
	count := 0
	Walk(node, func(n *VNode) bool {
		if n.IsInteractive() {
			count++
		}
		return true
	})
	return count
}

// Walk visits the tree depth-first in document order. Returning false from fn
// skips the node's children.
func Walk(node *VNode, fn func(*VNode) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for _, child := range node.Children {
		Walk(child, fn)
	}
}

// HandlerRef locates one handler attribute in a tree.
type HandlerRef struct {
	NodeID  string
	Event   string
	Command Command
}

// CollectHandlers returns every handler in the tree in document order,
// attribute order within an element.
func CollectHandlers(node *VNode) []HandlerRef {
	var refs []HandlerRef
	Walk(node, func(n *VNode) bool {
		if n.Kind != KindElement {
			return true
		}
		for _, a := range n.Attrs {
			if a.Kind == AttrHandler {
				refs = append(refs, HandlerRef{NodeID: n.ID, Event: a.Name, Command: a.Command})
			}
		}
		return true
	})
	return refs
}

// ValidRootID reports whether id can serve as a root identity. Identities
// are embedded in markup comments and attribute values, so only letters,
// digits and underscores are accepted.
func ValidRootID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
