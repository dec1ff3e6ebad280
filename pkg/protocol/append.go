package protocol

import "encoding/binary"

// The append helpers build payloads in place, in the layout Decoder reads:
// varints for sequence numbers and lengths, big-endian fixed-width codes.

func appendUvarint(b []byte, v uint64) []byte {
	return binary.AppendUvarint(b, v)
}

// appendString writes a varint length followed by the UTF-8 bytes.
func appendString(b []byte, s string) []byte {
	b = binary.AppendUvarint(b, uint64(len(s)))
	return append(b, s...)
}

func appendBool(b []byte, v bool) []byte {
	if v {
		return append(b, 1)
	}
	return append(b, 0)
}
