package vdom

import (
	"errors"
	"fmt"
)

// ErrMalformedTree is returned when a tree contains a node or attribute the
// runtime cannot interpret. It indicates a construction bug in a view.
var ErrMalformedTree = errors.New("vdom: malformed tree")

// MalformedTreeError describes where a tree is malformed.
type MalformedTreeError struct {
	NodeID string
	Reason string
}

// Error returns the error message.
func (e *MalformedTreeError) Error() string {
	if e.NodeID == "" {
		return "vdom: malformed tree: " + e.Reason
	}
	return fmt.Sprintf("vdom: malformed tree at %s: %s", e.NodeID, e.Reason)
}

// Is reports whether target is ErrMalformedTree.
func (e *MalformedTreeError) Is(target error) bool {
	return target == ErrMalformedTree
}

func malformed(node *VNode, format string, args ...any) error {
	id := ""
	if node != nil {
		id = node.ID
	}
	return &MalformedTreeError{NodeID: id, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the structural rules every view tree must satisfy:
// known node and attribute kinds, a tag on every element, no children under
// text or void elements, unique property names and unique handler event names
// per element, and a non-nil command on every handler.
func Validate(root *VNode) error {
	if root == nil {
		return &MalformedTreeError{Reason: "nil root"}
	}
	return validate(root)
}

func validate(node *VNode) error {
	switch node.Kind {
	case KindText:
		if len(node.Children) > 0 || len(node.Attrs) > 0 {
			return malformed(node, "text node with children or attributes")
		}
		return nil
	case KindElement:
		if node.Tag == "" {
			return malformed(node, "element without tag")
		}
		if IsVoidElement(node.Tag) && len(node.Children) > 0 {
			return malformed(node, "void element <%s> with children", node.Tag)
		}
		if err := validateAttrs(node); err != nil {
			return err
		}
		for i, child := range node.Children {
			if child == nil {
				return malformed(node, "nil child at index %d", i)
			}
			if err := validate(child); err != nil {
				return err
			}
		}
		return nil
	default:
		return malformed(node, "unknown node kind %d", node.Kind)
	}
}

func validateAttrs(node *VNode) error {
	if len(node.Attrs) == 0 {
		return nil
	}
	props := make(map[string]struct{}, len(node.Attrs))
	handlers := make(map[string]struct{})
	for _, a := range node.Attrs {
		if a.Name == "" {
			return malformed(node, "attribute without name")
		}
		switch a.Kind {
		case AttrProperty:
			if _, dup := props[a.Name]; dup {
				return malformed(node, "duplicate property %q", a.Name)
			}
			props[a.Name] = struct{}{}
		case AttrHandler:
			if _, dup := handlers[a.Name]; dup {
				return malformed(node, "duplicate handler %q", a.Name)
			}
			if a.Command == nil {
				return malformed(node, "handler %q without command", a.Name)
			}
			handlers[a.Name] = struct{}{}
		default:
			return malformed(node, "unknown attribute kind %d on %q", a.Kind, a.Name)
		}
	}
	return nil
}
