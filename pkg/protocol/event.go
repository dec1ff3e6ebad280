package protocol

// Event is a client event: the handler id read from the element's
// data-on-* attribute, tagged with a client sequence number so error
// frames can refer back to it.
type Event struct {
	Seq uint64
	ID  string
}

// EncodeEvent encodes an event payload.
// Format: varint seq + string id
func EncodeEvent(ev *Event) []byte {
	b := appendUvarint(make([]byte, 0, 10+len(ev.ID)), ev.Seq)
	return appendString(b, ev.ID)
}

// DecodeEvent decodes an event payload.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	id, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return &Event{Seq: seq, ID: id}, nil
}
