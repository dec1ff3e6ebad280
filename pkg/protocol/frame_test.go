package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameEncodeDecode(t *testing.T) {
	tests := []struct {
		name    string
		frame   *Frame
		wantLen int
	}{
		{"empty resync", NewFrame(FrameResync, nil), FrameHeaderSize},
		{"event", NewFrame(FrameEvent, []byte{0x01, 0x02, 0x03}), FrameHeaderSize + 3},
		{"large op", NewFrame(FrameOp, bytes.Repeat([]byte{'x'}, 70000)), FrameHeaderSize + 70000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := tt.frame.Encode()
			if len(encoded) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(encoded), tt.wantLen)
			}

			decoded, err := DecodeFrame(encoded)
			if err != nil {
				t.Fatalf("DecodeFrame() error = %v", err)
			}
			if decoded.Type != tt.frame.Type {
				t.Errorf("Type = %v, want %v", decoded.Type, tt.frame.Type)
			}
			if !bytes.Equal(decoded.Payload, tt.frame.Payload) {
				t.Error("Payload mismatch")
			}
		})
	}
}

func TestFrameHeaderLayout(t *testing.T) {
	encoded := NewFrame(FrameOp, []byte("abc")).Encode()
	want := []byte{0x02, 0x00, 0x00, 0x00, 0x03, 'a', 'b', 'c'}
	if !bytes.Equal(encoded, want) {
		t.Errorf("Encode() = %x, want %x", encoded, want)
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, io.ErrUnexpectedEOF},
		{"short header", []byte{0x01, 0x00}, io.ErrUnexpectedEOF},
		{"short payload", []byte{0x01, 0x00, 0x00, 0x00, 0x05, 'a'}, io.ErrUnexpectedEOF},
		{"trailing", []byte{0x01, 0x00, 0x00, 0x00, 0x01, 'a', 'b'}, ErrTrailingBytes},
		{"too large", []byte{0x01, 0xFF, 0xFF, 0xFF, 0xFF}, ErrFrameTooLarge},
		{"unknown type", []byte{0x7F, 0x00, 0x00, 0x00, 0x00}, ErrInvalidFrameType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFrame(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("DecodeFrame() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	frames := []*Frame{
		NewFrame(FrameEvent, EncodeEvent(&Event{Seq: 1, ID: "r.0/click/1x"})),
		NewFrame(FrameResync, nil),
		NewFrame(FrameOp, EncodeOp(Op{Kind: OpSetText, NodeID: "r.2", Value: "1"})),
	}
	for _, f := range frames {
		if err := WriteFrame(&buf, f); err != nil {
			t.Fatalf("WriteFrame() error = %v", err)
		}
	}

	for i, want := range frames {
		got, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("ReadFrame(%d) error = %v", i, err)
		}
		if got.Type != want.Type || !bytes.Equal(got.Payload, want.Payload) {
			t.Errorf("frame %d = %v %x, want %v %x", i, got.Type, got.Payload, want.Type, want.Payload)
		}
	}

	if _, err := ReadFrame(&buf); err != io.EOF {
		t.Errorf("ReadFrame() at end error = %v, want io.EOF", err)
	}
}

func TestWriteFrameTooLarge(t *testing.T) {
	f := NewFrame(FrameOp, make([]byte, MaxPayloadSize+1))
	if err := WriteFrame(io.Discard, f); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("WriteFrame() error = %v, want ErrFrameTooLarge", err)
	}
}

func TestFrameTypeString(t *testing.T) {
	tests := []struct {
		ft   FrameType
		want string
	}{
		{FrameEvent, "Event"},
		{FrameOp, "Op"},
		{FrameResync, "Resync"},
		{FrameError, "Error"},
		{FrameType(0x42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.ft.String(); got != tt.want {
			t.Errorf("FrameType(%d).String() = %q, want %q", tt.ft, got, tt.want)
		}
	}
}
