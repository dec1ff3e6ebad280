package vdom

import "reflect"

// Diff compares two VNode trees and returns the patches needed to transform
// prev into next.
//
// Diff is pure: it never mutates either tree. A nil prev means first render
// and yields a single root ReplaceSubtree. The only error is a malformed tree
// (unknown node kind, nil node), reported as *MalformedTreeError.
func Diff(prev, next *VNode) ([]Patch, error) {
	if next == nil {
		return nil, &MalformedTreeError{Reason: "nil next tree"}
	}
	if prev == nil {
		return []Patch{{Op: PatchReplaceSubtree, Node: next}}, nil
	}
	var patches []Patch
	if err := diff(prev, next, &patches); err != nil {
		return nil, err
	}
	return patches, nil
}

// diff recursively compares nodes and appends patches.
func diff(prev, next *VNode, patches *[]Patch) error {
	if err := checkKind(prev); err != nil {
		return err
	}
	if err := checkKind(next); err != nil {
		return err
	}

	// Different kinds - replace
	if prev.Kind != next.Kind {
		replace(prev, next, patches)
		return nil
	}

	switch prev.Kind {
	case KindText:
		diffText(prev, next, patches)
		return nil
	case KindElement:
		return diffElement(prev, next, patches)
	default:
		return malformed(prev, "unknown node kind %d", prev.Kind)
	}
}

func checkKind(node *VNode) error {
	if node == nil {
		return &MalformedTreeError{Reason: "nil node"}
	}
	switch node.Kind {
	case KindText, KindElement:
		return nil
	default:
		return malformed(node, "unknown node kind %d", node.Kind)
	}
}

func replace(prev, next *VNode, patches *[]Patch) {
	*patches = append(*patches, Patch{
		Op:     PatchReplaceSubtree,
		NodeID: prev.ID,
		Node:   next,
		Prev:   prev,
	})
}

// diffText compares text nodes.
func diffText(prev, next *VNode, patches *[]Patch) {
	if prev.Text != next.Text {
		*patches = append(*patches, Patch{
			Op:     PatchUpdateText,
			NodeID: prev.ID,
			Value:  next.Text,
		})
	}
}

// diffElement compares element nodes.
func diffElement(prev, next *VNode, patches *[]Patch) error {
	// Different tag - replace entire node, children are not reconciled
	if prev.Tag != next.Tag {
		replace(prev, next, patches)
		return nil
	}

	if err := diffAttrs(prev, next, patches); err != nil {
		return err
	}
	return diffChildren(prev, next, patches)
}

// attrIndex is one side's attributes split by kind, keyed by name.
type attrIndex struct {
	props    map[string]string
	handlers map[string]Command
}

func indexAttrs(node *VNode) (attrIndex, error) {
	idx := attrIndex{
		props:    make(map[string]string, len(node.Attrs)),
		handlers: make(map[string]Command),
	}
	for _, a := range node.Attrs {
		switch a.Kind {
		case AttrProperty:
			idx.props[a.Name] = a.Value
		case AttrHandler:
			idx.handlers[a.Name] = a.Command
		default:
			return idx, malformed(node, "unknown attribute kind %d on %q", a.Kind, a.Name)
		}
	}
	return idx, nil
}

// diffAttrs emits property patches, then handler patches. Within each kind,
// additions and changes follow next's attribute order and removals follow
// prev's attribute order.
func diffAttrs(prev, next *VNode, patches *[]Patch) error {
	if len(prev.Attrs) == 0 && len(next.Attrs) == 0 {
		return nil
	}
	old, err := indexAttrs(prev)
	if err != nil {
		return err
	}
	cur, err := indexAttrs(next)
	if err != nil {
		return err
	}
	id := prev.ID

	for _, a := range next.Attrs {
		if a.Kind != AttrProperty {
			continue
		}
		oldVal, exists := old.props[a.Name]
		switch {
		case !exists:
			*patches = append(*patches, Patch{Op: PatchAddProperty, NodeID: id, Name: a.Name, Value: a.Value})
		case oldVal != a.Value:
			*patches = append(*patches, Patch{Op: PatchUpdateProperty, NodeID: id, Name: a.Name, Value: a.Value})
		}
	}
	for _, a := range prev.Attrs {
		if a.Kind != AttrProperty {
			continue
		}
		if _, exists := cur.props[a.Name]; !exists {
			*patches = append(*patches, Patch{Op: PatchRemoveProperty, NodeID: id, Name: a.Name})
		}
	}

	for _, a := range next.Attrs {
		if a.Kind != AttrHandler {
			continue
		}
		oldCmd, exists := old.handlers[a.Name]
		if exists && CommandsEqual(oldCmd, a.Command) {
			continue
		}
		if exists {
			// A changed command gets a fresh binding; handlers are never
			// updated in place.
			*patches = append(*patches, Patch{Op: PatchRemoveHandler, NodeID: id, Name: a.Name, Command: oldCmd})
		}
		*patches = append(*patches, Patch{Op: PatchAddHandler, NodeID: id, Name: a.Name, Command: a.Command})
	}
	for _, a := range prev.Attrs {
		if a.Kind != AttrHandler {
			continue
		}
		if _, exists := cur.handlers[a.Name]; !exists {
			*patches = append(*patches, Patch{Op: PatchRemoveHandler, NodeID: id, Name: a.Name, Command: a.Command})
		}
	}
	return nil
}

// diffChildren compares children by position. Inserting or removing at the
// front of a list shifts every later sibling onto a different counterpart;
// that cost is accepted in exchange for not requiring keys.
func diffChildren(prev, next *VNode, patches *[]Patch) error {
	prevChildren := prev.Children
	nextChildren := next.Children

	maxLen := len(prevChildren)
	if len(nextChildren) > maxLen {
		maxLen = len(nextChildren)
	}

	for i := 0; i < maxLen; i++ {
		switch {
		case i >= len(prevChildren):
			child := nextChildren[i]
			if err := checkKind(child); err != nil {
				return err
			}
			*patches = append(*patches, Patch{
				Op:       PatchAddChild,
				ParentID: prev.ID,
				Node:     child,
			})
		case i >= len(nextChildren):
			child := prevChildren[i]
			if err := checkKind(child); err != nil {
				return err
			}
			*patches = append(*patches, Patch{
				Op:       PatchRemoveChild,
				ParentID: prev.ID,
				NodeID:   child.ID,
				Prev:     child,
			})
		default:
			if err := diff(prevChildren[i], nextChildren[i], patches); err != nil {
				return err
			}
		}
	}
	return nil
}

// CommandsEqual compares two commands structurally.
func CommandsEqual(a, b Command) bool {
	return reflect.DeepEqual(a, b)
}
