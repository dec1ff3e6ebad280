package transport

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/vango-dev/mvu/pkg/vdom"
)

// fingerprintMode is deterministic so equal commands hash equally.
var fingerprintMode = func() cbor.EncMode {
	m, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return m
}()

// Fingerprint returns a stable hash of a command's type and value.
// Values CBOR cannot encode (funcs, chans) fall back to their %#v form.
func Fingerprint(cmd vdom.Command) uint64 {
	h := xxhash.New()
	if t := reflect.TypeOf(cmd); t != nil {
		_, _ = h.WriteString(t.PkgPath())
		_, _ = h.WriteString(t.String())
	}
	_, _ = h.Write([]byte{0})
	if data, err := fingerprintMode.Marshal(cmd); err == nil {
		_, _ = h.Write(data)
	} else {
		_, _ = fmt.Fprintf(h, "%#v", cmd)
	}
	return h.Sum64()
}

// HandlerID derives the opaque id of the handler for event on nodeID.
//
// The id is deterministic, so re-rendering an unchanged handler yields the
// same id; a changed command yields a different one.
func HandlerID(nodeID, event string, cmd vdom.Command) string {
	return nodeID + "/" + event + "/" + strconv.FormatUint(Fingerprint(cmd), 36)
}
