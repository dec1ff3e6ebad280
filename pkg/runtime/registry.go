package runtime

import (
	"fmt"
	"maps"
	"sort"

	"github.com/vango-dev/mvu/pkg/vdom"
)

// Registry maps handler ids to the commands they dispatch.
//
// A Registry belongs to one application instance and is only touched from
// inside a cycle, so it carries no lock of its own.
type Registry struct {
	entries map[string]vdom.Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]vdom.Command)}
}

// Bind associates id with cmd. Binding an id to a command equal to the one
// it already holds is a no-op; binding it to a different command fails with
// ErrDuplicateHandlerBinding and leaves the existing entry in place.
func (r *Registry) Bind(id string, cmd vdom.Command) error {
	if existing, ok := r.entries[id]; ok {
		if vdom.CommandsEqual(existing, cmd) {
			return nil
		}
		return fmt.Errorf("%w: %s bound to %#v, got %#v", ErrDuplicateHandlerBinding, id, existing, cmd)
	}
	r.entries[id] = cmd
	return nil
}

// Unbind removes id. Unbinding an unknown id is a no-op.
func (r *Registry) Unbind(id string) {
	delete(r.entries, id)
}

// Lookup returns the command bound to id.
func (r *Registry) Lookup(id string) (vdom.Command, bool) {
	cmd, ok := r.entries[id]
	return cmd, ok
}

// Len returns the number of bound handlers.
func (r *Registry) Len() int {
	return len(r.entries)
}

// IDs returns the bound ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns a copy of the current bindings.
func (r *Registry) Snapshot() map[string]vdom.Command {
	return maps.Clone(r.entries)
}

// Restore replaces every binding with those of a snapshot.
func (r *Registry) Restore(snapshot map[string]vdom.Command) {
	r.entries = maps.Clone(snapshot)
	if r.entries == nil {
		r.entries = make(map[string]vdom.Command)
	}
}

// Clear removes every binding.
func (r *Registry) Clear() {
	clear(r.entries)
}
