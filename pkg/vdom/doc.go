// Package vdom provides the virtual tree model and diff engine for mvu.
//
// A view function returns a VNode tree describing the UI for one state. The
// runtime compares successive trees with Diff and applies the resulting
// patches to an externally owned document.
//
// # Core Types
//
// VNode is either a text leaf or an element with attributes and children.
// Attr is either a string-valued property or a handler binding an event name
// to an application-defined Command.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("counter"),
//	    Button(OnClick(Increment{}), Text("+")),
//	    Button(OnClick(Decrement{}), Text("-")),
//	    Textf("%d", count),
//	)
//
// # Identity
//
// Identify copies a tree and gives every node a positional identity ("r",
// "r.0", "r.0.1"). The same position keeps the same identity across
// renders, which is how patches address nodes that were materialized by an
// earlier render. Nodes a view shares between positions or renders are
// never written to.
//
// # Diffing
//
// Diff compares two trees and returns an ordered []Patch. Children are
// compared by position; there is no keyed reconciliation. A tag or node kind
// change replaces the whole subtree. A handler whose command changes is
// emitted as RemoveHandler followed by AddHandler.
package vdom
