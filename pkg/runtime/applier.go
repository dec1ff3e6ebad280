package runtime

import (
	"context"
	"fmt"

	"github.com/vango-dev/mvu/pkg/render"
	"github.com/vango-dev/mvu/pkg/transport"
	"github.com/vango-dev/mvu/pkg/vdom"
)

// Applier translates patches into Document calls and keeps the registry in
// step with the handlers it materializes.
//
// Every patch results in exactly one Document call. Handlers inside rendered
// markup are bound while the markup is produced, before the Document sees
// it; handlers inside replaced or removed subtrees are released before the
// Document call that drops them.
type Applier struct {
	doc      Document
	registry *Registry
	binder   *transport.Binder
	renderer *render.Renderer
	metrics  *Metrics
}

// NewApplier creates an Applier over doc and registry.
func NewApplier(doc Document, registry *Registry, binder *transport.Binder, metrics *Metrics) *Applier {
	if binder == nil {
		binder = transport.DefaultBinder()
	}
	a := &Applier{
		doc:      doc,
		registry: registry,
		binder:   binder,
		metrics:  metrics,
	}
	a.renderer = render.NewRenderer(render.RendererConfig{Handler: a.bind})
	return a
}

// bind registers a handler and returns the value exposed to the host.
func (a *Applier) bind(nodeID, event string, cmd vdom.Command) (string, error) {
	id := a.binder.HandlerID(nodeID, event, cmd)
	before := a.registry.Len()
	if err := a.registry.Bind(id, cmd); err != nil {
		return "", err
	}
	a.metrics.addBindings(a.registry.Len() - before)
	return a.binder.Expose(id, cmd)
}

func (a *Applier) unbind(nodeID, event string, cmd vdom.Command) {
	before := a.registry.Len()
	a.registry.Unbind(a.binder.HandlerID(nodeID, event, cmd))
	a.metrics.addBindings(a.registry.Len() - before)
}

// release unbinds every handler in a subtree that is leaving the document.
func (a *Applier) release(node *vdom.VNode) {
	for _, ref := range vdom.CollectHandlers(node) {
		a.unbind(ref.NodeID, ref.Event, ref.Command)
	}
}

// Render renders node, binding its handlers.
func (a *Applier) Render(node *vdom.VNode) (string, error) {
	return a.renderer.RenderToString(node)
}

// Reset drops every binding.
func (a *Applier) Reset() {
	a.metrics.addBindings(-a.registry.Len())
	a.registry.Clear()
}

// Checkpoint captures the bindings so a failed cycle can put them back.
func (a *Applier) Checkpoint() map[string]vdom.Command {
	return a.registry.Snapshot()
}

// Rollback restores the bindings captured by Checkpoint.
func (a *Applier) Rollback(checkpoint map[string]vdom.Command) {
	before := a.registry.Len()
	a.registry.Restore(checkpoint)
	a.metrics.addBindings(a.registry.Len() - before)
}

// Apply performs one patch.
func (a *Applier) Apply(ctx context.Context, p vdom.Patch) error {
	err := a.apply(ctx, p)
	if err == nil {
		a.metrics.recordPatch(p.Op)
	}
	return err
}

func (a *Applier) apply(ctx context.Context, p vdom.Patch) error {
	switch p.Op {
	case vdom.PatchReplaceSubtree:
		if p.Prev != nil {
			a.release(p.Prev)
		}
		markup, err := a.Render(p.Node)
		if err != nil {
			return err
		}
		if p.NodeID == "" {
			return primitive("SetRootContent", "", a.doc.SetRootContent(ctx, markup))
		}
		return primitive("ReplaceNode", p.NodeID, a.doc.ReplaceNode(ctx, p.NodeID, markup))

	case vdom.PatchAddChild:
		markup, err := a.Render(p.Node)
		if err != nil {
			return err
		}
		return primitive("AppendChild", p.ParentID, a.doc.AppendChild(ctx, p.ParentID, markup))

	case vdom.PatchRemoveChild:
		if p.Prev != nil {
			a.release(p.Prev)
		}
		return primitive("RemoveChild", p.NodeID, a.doc.RemoveChild(ctx, p.ParentID, p.NodeID))

	case vdom.PatchUpdateText:
		return primitive("SetText", p.NodeID, a.doc.SetText(ctx, p.NodeID, p.Value))

	case vdom.PatchAddProperty, vdom.PatchUpdateProperty:
		return primitive("SetAttribute", p.NodeID, a.doc.SetAttribute(ctx, p.NodeID, p.Name, p.Value))

	case vdom.PatchRemoveProperty:
		return primitive("RemoveAttribute", p.NodeID, a.doc.RemoveAttribute(ctx, p.NodeID, p.Name))

	case vdom.PatchAddHandler:
		exposed, err := a.bind(p.NodeID, p.Name, p.Command)
		if err != nil {
			return err
		}
		return primitive("SetAttribute", p.NodeID, a.doc.SetAttribute(ctx, p.NodeID, render.HandlerAttr(p.Name), exposed))

	case vdom.PatchRemoveHandler:
		a.unbind(p.NodeID, p.Name, p.Command)
		return primitive("RemoveAttribute", p.NodeID, a.doc.RemoveAttribute(ctx, p.NodeID, render.HandlerAttr(p.Name)))

	default:
		return fmt.Errorf("runtime: unknown patch op %d", p.Op)
	}
}

func primitive(name, nodeID string, err error) error {
	if err == nil {
		return nil
	}
	return &PrimitiveError{Primitive: name, NodeID: nodeID, Err: err}
}
