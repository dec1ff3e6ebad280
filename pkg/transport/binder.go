package transport

import (
	"errors"
	"fmt"

	"github.com/vango-dev/mvu/pkg/vdom"
)

// ErrReplayUnsupported is returned by Replay in ModeIDIndirection.
var ErrReplayUnsupported = errors.New("transport: replay requires inline serialization")

// Binder applies one transport mode consistently: it names handlers, decides
// what the host sees for each handler and, in inline mode, replays
// serialized commands.
type Binder struct {
	mode  Mode
	codec Codec
}

// NewBinder creates a binder. ModeInline requires a codec.
func NewBinder(mode Mode, codec Codec) (*Binder, error) {
	switch mode {
	case ModeIDIndirection:
	case ModeInline:
		if codec == nil {
			return nil, fmt.Errorf("transport: mode %q requires a codec", mode)
		}
	default:
		return nil, fmt.Errorf("transport: unknown mode %q", mode)
	}
	return &Binder{mode: mode, codec: codec}, nil
}

// DefaultBinder returns an id-indirection binder.
func DefaultBinder() *Binder {
	return &Binder{mode: ModeIDIndirection}
}

// Mode returns the binder's transport mode.
func (b *Binder) Mode() Mode { return b.mode }

// HandlerID returns the registry id for the handler.
func (b *Binder) HandlerID(nodeID, event string, cmd vdom.Command) string {
	return HandlerID(nodeID, event, cmd)
}

// Expose returns the value the host sees for a handler bound under id.
func (b *Binder) Expose(id string, cmd vdom.Command) (string, error) {
	if b.mode == ModeInline {
		return b.codec.Encode(cmd)
	}
	return id, nil
}

// Replay decodes an exposed value back into a command.
func (b *Binder) Replay(exposed string) (vdom.Command, error) {
	if b.mode != ModeInline {
		return nil, ErrReplayUnsupported
	}
	return b.codec.Decode(exposed)
}
