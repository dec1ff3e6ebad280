package runtime

import "context"

// Document is the externally owned materialization of the tree.
//
// Each method is one mutation primitive. Node ids are the identities
// assigned by vdom.Identify; markup is produced by the render package.
// Every call may block and every call may fail. The runtime never retries.
type Document interface {
	// SetRootContent replaces everything under the document root.
	SetRootContent(ctx context.Context, markup string) error

	// AppendChild appends markup as the last child of parentID.
	AppendChild(ctx context.Context, parentID, markup string) error

	// RemoveChild removes childID from parentID.
	RemoveChild(ctx context.Context, parentID, childID string) error

	// ReplaceNode replaces the node oldID with markup.
	ReplaceNode(ctx context.Context, oldID, markup string) error

	// SetText replaces the content of the text node nodeID.
	SetText(ctx context.Context, nodeID, text string) error

	// SetAttribute sets an attribute on element nodeID.
	SetAttribute(ctx context.Context, nodeID, name, value string) error

	// RemoveAttribute removes an attribute from element nodeID.
	RemoveAttribute(ctx context.Context, nodeID, name string) error
}
