package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/mvu/pkg/render"
)

// Lookup errors.
var (
	ErrNodeNotFound = errors.New("document: node not found")
	ErrNotElement   = errors.New("document: node is not an element")
	ErrNotText      = errors.New("document: node is not a text slot")
	ErrNotChild     = errors.New("document: node is not a child of parent")
)

// Document is a mutable HTML tree rooted at a container element.
// It is safe for concurrent use.
type Document struct {
	mu   sync.Mutex
	root *html.Node
}

// New creates an empty document whose root container is a div.
func New() *Document {
	return &Document{root: &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr:     []html.Attribute{{Key: "id", Val: render.RootContainerID}},
	}}
}

// Parse creates a document whose root content is markup.
func Parse(markup string) (*Document, error) {
	d := New()
	if err := d.SetRootContent(context.Background(), markup); err != nil {
		return nil, err
	}
	return d, nil
}

// HTML returns the content of the root container in canonical form:
// attributes are sorted by name.
func (d *Document) HTML() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var buf bytes.Buffer
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		canonicalize(c)
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

func canonicalize(n *html.Node) {
	if n.Type == html.ElementNode {
		sort.SliceStable(n.Attr, func(i, j int) bool { return n.Attr[i].Key < n.Attr[j].Key })
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		canonicalize(c)
	}
}

// Attribute returns the value of an attribute on element nodeID.
func (d *Document) Attribute(nodeID, name string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := d.element(nodeID)
	if err != nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Handler returns the exposed value of the handler for event on nodeID,
// which is what a host sends back when the event fires.
func (d *Document) Handler(nodeID, event string) (string, bool) {
	return d.Attribute(nodeID, render.HandlerAttr(event))
}

// Text returns the content of the text slot nodeID.
func (d *Document) Text(nodeID string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	marker, err := d.textSlot(nodeID)
	if err != nil {
		return "", err
	}
	if t := slotText(marker); t != nil {
		return t.Data, nil
	}
	return "", nil
}

// SetRootContent replaces everything under the root container.
func (d *Document) SetRootContent(ctx context.Context, markup string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	nodes, err := parseIn(d.root, markup)
	if err != nil {
		return err
	}
	for c := d.root.FirstChild; c != nil; {
		next := c.NextSibling
		d.root.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		d.root.AppendChild(n)
	}
	return nil
}

// AppendChild appends markup as the last child of parentID.
func (d *Document) AppendChild(ctx context.Context, parentID, markup string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	parent, err := d.element(parentID)
	if err != nil {
		return err
	}
	nodes, err := parseIn(parent, markup)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	return nil
}

// RemoveChild removes childID from parentID.
func (d *Document) RemoveChild(ctx context.Context, parentID, childID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	parent, err := d.element(parentID)
	if err != nil {
		return err
	}
	nodes, err := d.find(childID)
	if err != nil {
		return err
	}
	if nodes[0].Parent != parent {
		return fmt.Errorf("%w: %s under %s", ErrNotChild, childID, parentID)
	}
	for _, n := range nodes {
		parent.RemoveChild(n)
	}
	return nil
}

// ReplaceNode replaces oldID, element or text slot, with markup.
func (d *Document) ReplaceNode(ctx context.Context, oldID, markup string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	old, err := d.find(oldID)
	if err != nil {
		return err
	}
	parent := old[0].Parent
	fresh, err := parseIn(parent, markup)
	if err != nil {
		return err
	}
	for _, n := range fresh {
		parent.InsertBefore(n, old[0])
	}
	for _, n := range old {
		parent.RemoveChild(n)
	}
	return nil
}

// SetText replaces the content of the text slot nodeID.
func (d *Document) SetText(ctx context.Context, nodeID, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	marker, err := d.textSlot(nodeID)
	if err != nil {
		return err
	}
	t := slotText(marker)
	switch {
	case t != nil && text == "":
		marker.Parent.RemoveChild(t)
	case t != nil:
		t.Data = text
	case text != "":
		marker.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text}, marker.NextSibling)
	}
	return nil
}

// SetAttribute sets an attribute on element nodeID.
func (d *Document) SetAttribute(ctx context.Context, nodeID, name, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := d.element(nodeID)
	if err != nil {
		return err
	}
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return nil
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
	return nil
}

// RemoveAttribute removes an attribute from element nodeID. Removing an
// absent attribute is not an error.
func (d *Document) RemoveAttribute(ctx context.Context, nodeID, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := d.element(nodeID)
	if err != nil {
		return err
	}
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return nil
		}
	}
	return nil
}

// find returns the nodes that make up id: one element, or a text slot's
// marker followed by its text node when present.
func (d *Document) find(id string) ([]*html.Node, error) {
	n := lookup(d.root, id)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if n.Type == html.CommentNode {
		if t := slotText(n); t != nil {
			return []*html.Node{n, t}, nil
		}
	}
	return []*html.Node{n}, nil
}

func (d *Document) element(id string) (*html.Node, error) {
	n := lookup(d.root, id)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if n.Type != html.ElementNode {
		return nil, fmt.Errorf("%w: %s", ErrNotElement, id)
	}
	return n, nil
}

func (d *Document) textSlot(id string) (*html.Node, error) {
	n := lookup(d.root, id)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if n.Type != html.CommentNode {
		return nil, fmt.Errorf("%w: %s", ErrNotText, id)
	}
	return n, nil
}

// lookup finds the element carrying id or the comment marker naming it.
func lookup(root *html.Node, id string) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.CommentNode:
			if c.Data == id {
				return c
			}
		case html.ElementNode:
			for _, a := range c.Attr {
				if a.Key == render.IDAttr && a.Val == id {
					return c
				}
			}
			// Identities are paths, so only descend into an ancestor.
			if vid := attr(c, render.IDAttr); vid == "" || strings.HasPrefix(id, vid+".") {
				if found := lookup(c, id); found != nil {
					return found
				}
			}
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// slotText returns the text node belonging to a marker, if any.
func slotText(marker *html.Node) *html.Node {
	if next := marker.NextSibling; next != nil && next.Type == html.TextNode {
		return next
	}
	return nil
}

// parseIn parses markup as the content of parent.
func parseIn(parent *html.Node, markup string) ([]*html.Node, error) {
	if parent.Type != html.ElementNode {
		return nil, fmt.Errorf("%w: parse context", ErrNotElement)
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     parent.Data,
		DataAtom: parent.DataAtom,
	})
	if err != nil {
		return nil, fmt.Errorf("document: parse: %w", err)
	}
	return nodes, nil
}
