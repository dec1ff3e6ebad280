package document

import (
	"context"
	"fmt"

	"github.com/vango-dev/mvu/pkg/protocol"
)

// Apply performs the primitive an op frame carries. Replaying a session's op
// stream through Apply mirrors what the thin client shows.
func (d *Document) Apply(ctx context.Context, op protocol.Op) error {
	switch op.Kind {
	case protocol.OpSetRootContent:
		return d.SetRootContent(ctx, op.Value)
	case protocol.OpAppendChild:
		return d.AppendChild(ctx, op.NodeID, op.Value)
	case protocol.OpRemoveChild:
		return d.RemoveChild(ctx, op.NodeID, op.ChildID)
	case protocol.OpReplaceNode:
		return d.ReplaceNode(ctx, op.NodeID, op.Value)
	case protocol.OpSetText:
		return d.SetText(ctx, op.NodeID, op.Value)
	case protocol.OpSetAttribute:
		return d.SetAttribute(ctx, op.NodeID, op.Name, op.Value)
	case protocol.OpRemoveAttribute:
		return d.RemoveAttribute(ctx, op.NodeID, op.Name)
	default:
		return fmt.Errorf("document: unknown op kind %d", op.Kind)
	}
}
