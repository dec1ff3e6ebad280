package protocol

import "fmt"

// OpKind identifies the Document primitive an Op frame carries.
type OpKind uint8

const (
	OpSetRootContent  OpKind = 0x01 // Replace everything under the root
	OpAppendChild     OpKind = 0x02 // Append markup under a parent
	OpRemoveChild     OpKind = 0x03 // Remove a child from a parent
	OpReplaceNode     OpKind = 0x04 // Replace a node with markup
	OpSetText         OpKind = 0x05 // Replace a text node's content
	OpSetAttribute    OpKind = 0x06 // Set an attribute
	OpRemoveAttribute OpKind = 0x07 // Remove an attribute
)

// String returns the string representation of the op kind.
func (k OpKind) String() string {
	switch k {
	case OpSetRootContent:
		return "SetRootContent"
	case OpAppendChild:
		return "AppendChild"
	case OpRemoveChild:
		return "RemoveChild"
	case OpReplaceNode:
		return "ReplaceNode"
	case OpSetText:
		return "SetText"
	case OpSetAttribute:
		return "SetAttribute"
	case OpRemoveAttribute:
		return "RemoveAttribute"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Op is one Document primitive call sent to the client.
//
// Field use by Kind:
//
//	SetRootContent   Value (markup)
//	AppendChild      NodeID (parent), Value (markup)
//	RemoveChild      NodeID (parent), ChildID
//	ReplaceNode      NodeID, Value (markup)
//	SetText          NodeID, Value (text)
//	SetAttribute     NodeID, Name, Value
//	RemoveAttribute  NodeID, Name
type Op struct {
	Kind    OpKind
	NodeID  string
	ChildID string
	Name    string
	Value   string
}

// String returns a compact description used in logs.
func (o Op) String() string {
	switch o.Kind {
	case OpSetRootContent:
		return fmt.Sprintf("SetRootContent(%d bytes)", len(o.Value))
	case OpAppendChild, OpReplaceNode:
		return fmt.Sprintf("%s(%q, %d bytes)", o.Kind, o.NodeID, len(o.Value))
	case OpRemoveChild:
		return fmt.Sprintf("RemoveChild(%q, %q)", o.NodeID, o.ChildID)
	case OpSetText:
		return fmt.Sprintf("SetText(%q, %q)", o.NodeID, o.Value)
	case OpSetAttribute:
		return fmt.Sprintf("SetAttribute(%q, %s=%q)", o.NodeID, o.Name, o.Value)
	default:
		return fmt.Sprintf("%s(%q, %s)", o.Kind, o.NodeID, o.Name)
	}
}

// EncodeOp encodes an op payload.
// Format: kind byte + fields in the order listed on Op, present per kind.
func EncodeOp(o Op) []byte {
	return AppendOp(make([]byte, 0, 16+len(o.NodeID)+len(o.ChildID)+len(o.Name)+len(o.Value)), o)
}

// AppendOp appends the encoding of o to b.
func AppendOp(b []byte, o Op) []byte {
	b = append(b, byte(o.Kind))
	switch o.Kind {
	case OpSetRootContent:
		b = appendString(b, o.Value)
	case OpAppendChild, OpReplaceNode, OpSetText:
		b = appendString(b, o.NodeID)
		b = appendString(b, o.Value)
	case OpRemoveChild:
		b = appendString(b, o.NodeID)
		b = appendString(b, o.ChildID)
	case OpSetAttribute:
		b = appendString(b, o.NodeID)
		b = appendString(b, o.Name)
		b = appendString(b, o.Value)
	case OpRemoveAttribute:
		b = appendString(b, o.NodeID)
		b = appendString(b, o.Name)
	}
	return b
}

// DecodeOp decodes an op payload.
func DecodeOp(data []byte) (Op, error) {
	d := NewDecoder(data)
	o, err := DecodeOpFrom(d)
	if err != nil {
		return Op{}, err
	}
	return o, d.done()
}

// DecodeOpFrom decodes an op from an existing decoder.
func DecodeOpFrom(d *Decoder) (Op, error) {
	kind, err := d.ReadByte()
	if err != nil {
		return Op{}, err
	}
	o := Op{Kind: OpKind(kind)}

	var fields []*string
	switch o.Kind {
	case OpSetRootContent:
		fields = []*string{&o.Value}
	case OpAppendChild, OpReplaceNode, OpSetText:
		fields = []*string{&o.NodeID, &o.Value}
	case OpRemoveChild:
		fields = []*string{&o.NodeID, &o.ChildID}
	case OpSetAttribute:
		fields = []*string{&o.NodeID, &o.Name, &o.Value}
	case OpRemoveAttribute:
		fields = []*string{&o.NodeID, &o.Name}
	default:
		return Op{}, fmt.Errorf("protocol: unknown op kind %d", kind)
	}
	for _, f := range fields {
		if *f, err = d.ReadString(); err != nil {
			return Op{}, err
		}
	}
	return o, nil
}
