package vdom

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement VKind = iota // <div>, <button>, etc.
	KindText                 // Plain text node
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
//
// A VNode is either a text leaf (Kind == KindText, Text set) or an element
// (Kind == KindElement, Tag/Attrs/Children set). Trees are treated as
// immutable once handed to the runtime.
type VNode struct {
	Kind     VKind    // Node type
	ID       string   // Positional identity, see AssignIDs
	Tag      string   // Element tag name (e.g., "div")
	Attrs    []Attr   // Properties and event handlers
	Children []*VNode // Child nodes
	Text     string   // For KindText
}

// IsElement reports whether the node is an element.
func (v *VNode) IsElement() bool {
	return v != nil && v.Kind == KindElement
}

// IsText reports whether the node is a text leaf.
func (v *VNode) IsText() bool {
	return v != nil && v.Kind == KindText
}

// Property returns the value of the named property and whether it is set.
func (v *VNode) Property(name string) (string, bool) {
	if v == nil {
		return "", false
	}
	for _, a := range v.Attrs {
		if a.Kind == AttrProperty && a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Handler returns the command bound to the named event and whether one is bound.
func (v *VNode) Handler(event string) (Command, bool) {
	if v == nil {
		return nil, false
	}
	for _, a := range v.Attrs {
		if a.Kind == AttrHandler && a.Name == event {
			return a.Command, true
		}
	}
	return nil, false
}

// IsInteractive returns true if this node has event handlers.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for _, a := range v.Attrs {
		if a.Kind == AttrHandler {
			return true
		}
	}
	return false
}

// Command is an application-defined value bound to an event handler.
// The runtime never inspects it; equality is structural (see CommandsEqual).
type Command any

// AttrKind discriminates the two attribute kinds.
type AttrKind uint8

const (
	AttrProperty AttrKind = iota // name="value"
	AttrHandler                  // event name bound to a Command
)

// String returns the string representation of the AttrKind.
func (k AttrKind) String() string {
	switch k {
	case AttrProperty:
		return "Property"
	case AttrHandler:
		return "Handler"
	default:
		return "Unknown"
	}
}

// Attr represents a single attribute.
type Attr struct {
	Kind    AttrKind
	Name    string  // Property name, or event name ("click") for handlers
	Value   string  // For AttrProperty
	Command Command // For AttrHandler
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Name == ""
}
