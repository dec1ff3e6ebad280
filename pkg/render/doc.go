// Package render converts positioned VNode trees into HTML markup.
//
// The markup is what the runtime hands to the external document: the first
// paint, the content of a ReplaceSubtree patch and the child appended by an
// AddChild patch. It carries enough addressing for later patches to find the
// nodes it materialized:
//
//   - every element carries its identity in a data-vid attribute
//   - every text node is preceded by a comment holding its identity,
//     <!--r.0.1-->, so a text slot stays addressable after its siblings move
//   - every handler is exposed as data-on-<event>="<value>", where the value
//     comes from the configured HandlerFunc
//
// # Basic Usage
//
//	renderer := render.NewRenderer(render.RendererConfig{
//	    Handler: func(nodeID, event string, cmd vdom.Command) (string, error) {
//	        return binder.Expose(transport.HandlerID(nodeID, event, cmd), cmd)
//	    },
//	})
//	html, err := renderer.RenderToString(tree)
//
// Rendering is all-or-nothing: the markup is built in memory and nothing is
// written when any part of the tree fails to render. The HandlerFunc is
// called for every handler before any markup leaves the renderer.
//
// # Full Page Rendering
//
// RenderPage wraps a first paint in a complete HTML document whose root
// container is the target of SetRootContent.
//
// # Security
//
// Text and attribute values are always escaped. Tag, attribute and event
// names are checked instead of escaped; an invalid name is an error.
package render
