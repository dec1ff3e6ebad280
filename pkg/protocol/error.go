package protocol

import "encoding/binary"

// ErrorCode represents a protocol error code.
type ErrorCode uint16

const (
	ErrUnknown        ErrorCode = 0x0000 // Unknown error
	ErrInvalidFrame   ErrorCode = 0x0001 // Frame could not be decoded
	ErrInvalidEvent   ErrorCode = 0x0002 // Event payload could not be decoded
	ErrUnknownCommand ErrorCode = 0x0003 // Event id is not bound
	ErrCycleFailed    ErrorCode = 0x0004 // Update or view failed
	ErrDesynced       ErrorCode = 0x0005 // Document out of step; a resync follows
	ErrBusy           ErrorCode = 0x0006 // A cycle was already in flight
	ErrServerError    ErrorCode = 0x00FF // Internal server error
)

// String returns the string representation of the error code.
func (ec ErrorCode) String() string {
	switch ec {
	case ErrUnknown:
		return "Unknown"
	case ErrInvalidFrame:
		return "InvalidFrame"
	case ErrInvalidEvent:
		return "InvalidEvent"
	case ErrUnknownCommand:
		return "UnknownCommand"
	case ErrCycleFailed:
		return "CycleFailed"
	case ErrDesynced:
		return "Desynced"
	case ErrBusy:
		return "Busy"
	case ErrServerError:
		return "ServerError"
	default:
		return "Unknown"
	}
}

// ErrorMessage is sent from server to client when an event fails.
type ErrorMessage struct {
	Seq     uint64    // Sequence of the event that failed, 0 if none
	Code    ErrorCode // Error code
	Message string    // Human-readable message
	Fatal   bool      // If true, the server closes the connection
}

// Error implements the error interface.
func (em *ErrorMessage) Error() string {
	return em.Code.String() + ": " + em.Message
}

// NewError creates a non-fatal error message.
func NewError(seq uint64, code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Seq: seq, Code: code, Message: message}
}

// NewFatalError creates a fatal error message.
func NewFatalError(seq uint64, code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Seq: seq, Code: code, Message: message, Fatal: true}
}

// EncodeErrorMessage encodes an error message.
// Format: varint seq + uint16 code + string message + bool fatal
func EncodeErrorMessage(em *ErrorMessage) []byte {
	b := appendUvarint(make([]byte, 0, 16+len(em.Message)), em.Seq)
	b = binary.BigEndian.AppendUint16(b, uint16(em.Code))
	b = appendString(b, em.Message)
	return appendBool(b, em.Fatal)
}

// DecodeErrorMessage decodes an error message.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)

	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	code, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}
	message, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	fatal, err := d.ReadBool()
	if err != nil {
		return nil, err
	}
	if err := d.done(); err != nil {
		return nil, err
	}

	return &ErrorMessage{
		Seq:     seq,
		Code:    ErrorCode(code),
		Message: message,
		Fatal:   fatal,
	}, nil
}
