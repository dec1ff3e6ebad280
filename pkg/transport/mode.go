package transport

import "fmt"

// Mode selects how commands are exposed to the host.
type Mode string

const (
	// ModeIDIndirection exposes an opaque handler id.
	ModeIDIndirection Mode = "id-indirection"

	// ModeInline exposes the serialized command value.
	ModeInline Mode = "inline-serialization"
)

// String returns the configuration name of the mode.
func (m Mode) String() string { return string(m) }

// ParseMode parses a configuration value. The empty string selects
// ModeIDIndirection.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeIDIndirection:
		return ModeIDIndirection, nil
	case ModeInline:
		return ModeInline, nil
	default:
		return "", fmt.Errorf("transport: unknown mode %q (want %q or %q)", s, ModeIDIndirection, ModeInline)
	}
}
