package server

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/mvu/pkg/protocol"
)

// socketDocument is a runtime.Document whose primitives are op frames sent
// to the thin client. A primitive succeeds once its frame is written.
type socketDocument struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	metrics      *metrics

	mu sync.Mutex
}

func newSocketDocument(conn *websocket.Conn, writeTimeout time.Duration, m *metrics) *socketDocument {
	return &socketDocument{conn: conn, writeTimeout: writeTimeout, metrics: m}
}

func (d *socketDocument) SetRootContent(ctx context.Context, markup string) error {
	return d.send(ctx, protocol.Op{Kind: protocol.OpSetRootContent, Value: markup})
}

func (d *socketDocument) AppendChild(ctx context.Context, parentID, markup string) error {
	return d.send(ctx, protocol.Op{Kind: protocol.OpAppendChild, NodeID: parentID, Value: markup})
}

func (d *socketDocument) RemoveChild(ctx context.Context, parentID, childID string) error {
	return d.send(ctx, protocol.Op{Kind: protocol.OpRemoveChild, NodeID: parentID, ChildID: childID})
}

func (d *socketDocument) ReplaceNode(ctx context.Context, oldID, markup string) error {
	return d.send(ctx, protocol.Op{Kind: protocol.OpReplaceNode, NodeID: oldID, Value: markup})
}

func (d *socketDocument) SetText(ctx context.Context, nodeID, text string) error {
	return d.send(ctx, protocol.Op{Kind: protocol.OpSetText, NodeID: nodeID, Value: text})
}

func (d *socketDocument) SetAttribute(ctx context.Context, nodeID, name, value string) error {
	return d.send(ctx, protocol.Op{Kind: protocol.OpSetAttribute, NodeID: nodeID, Name: name, Value: value})
}

func (d *socketDocument) RemoveAttribute(ctx context.Context, nodeID, name string) error {
	return d.send(ctx, protocol.Op{Kind: protocol.OpRemoveAttribute, NodeID: nodeID, Name: name})
}

func (d *socketDocument) send(ctx context.Context, op protocol.Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline := time.Now().Add(d.writeTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	return d.writeFrame(protocol.NewFrame(protocol.FrameOp, protocol.EncodeOp(op)), deadline)
}

// sendError writes an error frame.
func (d *socketDocument) sendError(em *protocol.ErrorMessage) error {
	frame := protocol.NewFrame(protocol.FrameError, protocol.EncodeErrorMessage(em))
	return d.writeFrame(frame, time.Now().Add(d.writeTimeout))
}

func (d *socketDocument) writeFrame(frame *protocol.Frame, deadline time.Time) error {
	data := frame.Encode()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.conn.SetWriteDeadline(deadline)
	if err := d.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		d.metrics.wsError("write")
		return err
	}
	d.metrics.frameSent(frame.Type, len(data))
	return nil
}

// ping writes a websocket ping. Browsers answer it without script help.
func (d *socketDocument) ping() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(d.writeTimeout)); err != nil {
		d.metrics.wsError("ping")
		return err
	}
	return nil
}

// close sends a close message and closes the connection.
func (d *socketDocument) close(code int, reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	msg := websocket.FormatCloseMessage(code, reason)
	_ = d.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = d.conn.Close()
}
