package protocol

import (
	"encoding/binary"
	"errors"
	"io"
)

// Frame constants.
const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 5

	// MaxPayloadSize is the largest payload accepted. First paint markup
	// travels in a single frame, so the limit follows the allocation limit.
	MaxPayloadSize = DefaultMaxAllocation
)

// FrameType identifies the type of frame.
type FrameType uint8

const (
	FrameEvent  FrameType = 0x01 // Client → Server event
	FrameOp     FrameType = 0x02 // Server → Client primitive call
	FrameResync FrameType = 0x03 // Client → Server resync request
	FrameError  FrameType = 0x05 // Server → Client error
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameEvent:
		return "Event"
	case FrameOp:
		return "Op"
	case FrameResync:
		return "Resync"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame represents a protocol frame with header and payload.
type Frame struct {
	Type    FrameType
	Payload []byte
}

// NewFrame creates a new frame with the given type and payload.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

// Encode encodes the frame to bytes including the header.
func (f *Frame) Encode() []byte {
	b := make([]byte, 0, FrameHeaderSize+len(f.Payload))
	b = append(b, byte(f.Type))
	b = binary.BigEndian.AppendUint32(b, uint32(len(f.Payload)))
	return append(b, f.Payload...)
}

// DecodeFrame decodes a frame from bytes. The input must contain the header
// and the full payload, and nothing after it.
func DecodeFrame(data []byte) (*Frame, error) {
	d := NewDecoder(data)
	ft, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	length, err := d.ReadUint32()
	if err != nil {
		return nil, err
	}
	if length > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}
	if int(length) != d.Remaining() {
		if int(length) > d.Remaining() {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, ErrTrailingBytes
	}
	payload, err := d.ReadBytes(int(length))
	if err != nil {
		return nil, err
	}

	frame := &Frame{Type: FrameType(ft), Payload: make([]byte, length)}
	copy(frame.Payload, payload)
	if frame.Type.String() == "Unknown" {
		return frame, ErrInvalidFrameType
	}
	return frame, nil
}

// ReadFrame reads a complete frame from an io.Reader.
func ReadFrame(r io.Reader) (*Frame, error) {
	header := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	length, _ := NewDecoder(header[1:]).ReadUint32()
	if length > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
	}
	return &Frame{Type: FrameType(header[0]), Payload: payload}, nil
}

// WriteFrame writes a complete frame to an io.Writer.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > MaxPayloadSize {
		return ErrFrameTooLarge
	}
	_, err := w.Write(f.Encode())
	return err
}
