// Package protocol implements the binary wire protocol between the mvu
// websocket host and its thin client.
//
// The server sends one frame per Document primitive call; the client sends
// one frame per DOM event carrying the value of the element's data-on-*
// attribute. There is no reflection and no schema: every message is a short
// sequence of varints and length-prefixed strings.
//
// # Wire Format
//
// All messages are framed with a 5-byte header:
//
//	┌─────────────┬───────────────────────────────┐
//	│ Frame Type  │ Payload Length                │
//	│ (1 byte)    │ (4 bytes, big-endian)         │
//	└─────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameEvent (0x01): Client → Server event
//   - FrameOp (0x02): Server → Client primitive call
//   - FrameResync (0x03): Client → Server request for a full rebuild
//   - FrameError (0x05): Server → Client error
//
// # Encoding
//
//   - Varint: compact encoding for small integers (protobuf-style)
//   - Length-prefixed: strings prefixed with their varint length
//   - Big-endian: fixed-width integers
package protocol
