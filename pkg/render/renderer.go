package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vango-dev/mvu/pkg/vdom"
)

// IDAttr is the attribute carrying an element's identity.
const IDAttr = "data-vid"

// HandlerAttrPrefix prefixes the attribute exposing a handler for an event.
const HandlerAttrPrefix = "data-on-"

// HandlerAttr returns the attribute name that exposes the handler for event.
func HandlerAttr(event string) string {
	return HandlerAttrPrefix + event
}

// IsReservedAttr reports whether name is used for addressing or handler
// exposure and therefore cannot be set as a property.
func IsReservedAttr(name string) bool {
	return name == IDAttr || strings.HasPrefix(name, HandlerAttrPrefix)
}

// HandlerFunc returns the value exposed to the host for the handler of event
// on nodeID. The runtime uses it to bind the handler in its registry at the
// moment it is rendered.
type HandlerFunc func(nodeID, event string, cmd vdom.Command) (string, error)

// rawTextElements hold text the host does not parse as markup, so a text
// slot marker inside them would become visible content.
var rawTextElements = map[string]bool{
	"script":   true,
	"style":    true,
	"textarea": true,
	"title":    true,
}

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Handler produces the exposed value of every handler attribute.
	// Handlers are not rendered when Handler is nil.
	Handler HandlerFunc
}

// Renderer renders VNode trees to HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	return &Renderer{config: config}
}

// RenderToString renders a VNode tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.render(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter renders a VNode tree and writes it to w. Nothing is written
// if rendering fails.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	var buf bytes.Buffer
	if err := r.render(&buf, node); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) render(buf *bytes.Buffer, node *vdom.VNode) error {
	if node == nil {
		return &vdom.MalformedTreeError{Reason: "nil node"}
	}
	return r.renderNode(buf, node, "")
}

// renderNode dispatches rendering based on node kind.
func (r *Renderer) renderNode(buf *bytes.Buffer, node *vdom.VNode, parentTag string) error {
	if node == nil {
		return &vdom.MalformedTreeError{Reason: "nil child"}
	}
	switch node.Kind {
	case vdom.KindElement:
		return r.renderElement(buf, node)
	case vdom.KindText:
		return r.renderText(buf, node, parentTag)
	default:
		return &vdom.MalformedTreeError{NodeID: node.ID, Reason: fmt.Sprintf("unknown node kind %d", node.Kind)}
	}
}

// renderText writes the slot marker followed by the escaped text.
func (r *Renderer) renderText(buf *bytes.Buffer, node *vdom.VNode, parentTag string) error {
	if rawTextElements[parentTag] {
		return fmt.Errorf("render: text child of <%s> at %s is not addressable", parentTag, node.ID)
	}
	if node.ID != "" {
		if !validMarkerID(node.ID) {
			return fmt.Errorf("render: identity %q cannot be used as a text marker", node.ID)
		}
		buf.WriteString("<!--")
		buf.WriteString(node.ID)
		buf.WriteString("-->")
	}
	buf.WriteString(escapeHTML(node.Text))
	return nil
}

// renderElement renders an HTML element with its attributes and children.
func (r *Renderer) renderElement(buf *bytes.Buffer, node *vdom.VNode) error {
	tag := node.Tag
	if !ValidName(tag) {
		return fmt.Errorf("render: invalid tag %q at %s", tag, node.ID)
	}

	buf.WriteByte('<')
	buf.WriteString(tag)
	if node.ID != "" {
		fmt.Fprintf(buf, ` %s="%s"`, IDAttr, escapeAttr(node.ID))
	}
	if err := r.renderAttributes(buf, node); err != nil {
		return err
	}
	buf.WriteByte('>')

	if vdom.IsVoidElement(tag) {
		if len(node.Children) > 0 {
			return &vdom.MalformedTreeError{NodeID: node.ID, Reason: fmt.Sprintf("void element <%s> with children", tag)}
		}
		return nil
	}

	for _, child := range node.Children {
		if err := r.renderNode(buf, child, tag); err != nil {
			return err
		}
	}

	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteByte('>')
	return nil
}

// renderAttributes renders properties sorted by name, then handlers in
// attribute order.
func (r *Renderer) renderAttributes(buf *bytes.Buffer, node *vdom.VNode) error {
	if len(node.Attrs) == 0 {
		return nil
	}

	props := make([]vdom.Attr, 0, len(node.Attrs))
	for _, a := range node.Attrs {
		switch a.Kind {
		case vdom.AttrProperty:
			if !ValidName(a.Name) {
				return fmt.Errorf("render: invalid attribute name %q at %s", a.Name, node.ID)
			}
			if IsReservedAttr(a.Name) {
				return fmt.Errorf("render: attribute %q at %s is reserved", a.Name, node.ID)
			}
			props = append(props, a)
		case vdom.AttrHandler:
		default:
			return &vdom.MalformedTreeError{NodeID: node.ID, Reason: fmt.Sprintf("unknown attribute kind %d on %q", a.Kind, a.Name)}
		}
	}
	sort.SliceStable(props, func(i, j int) bool { return props[i].Name < props[j].Name })

	for _, a := range props {
		if a.Value == "" {
			buf.WriteByte(' ')
			buf.WriteString(a.Name)
			continue
		}
		fmt.Fprintf(buf, ` %s="%s"`, a.Name, escapeAttr(a.Value))
	}

	if r.config.Handler == nil {
		return nil
	}
	for _, a := range node.Attrs {
		if a.Kind != vdom.AttrHandler {
			continue
		}
		if !ValidName(a.Name) {
			return fmt.Errorf("render: invalid event name %q at %s", a.Name, node.ID)
		}
		value, err := r.config.Handler(node.ID, a.Name, a.Command)
		if err != nil {
			return fmt.Errorf("render: handler %s on %s: %w", a.Name, node.ID, err)
		}
		fmt.Fprintf(buf, ` %s="%s"`, HandlerAttr(a.Name), escapeAttr(value))
	}
	return nil
}
