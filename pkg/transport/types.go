package transport

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/vango-dev/mvu/pkg/vdom"
)

// Type registry errors.
var (
	ErrUnregisteredType = errors.New("transport: command type not registered")
	ErrUnknownTypeName  = errors.New("transport: unknown command type name")
)

// Types maps wire names to concrete command types so that serialized
// commands can be decoded back into typed values.
type Types struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	byType map[reflect.Type]string
}

// NewTypes creates an empty type registry.
func NewTypes() *Types {
	return &Types{
		byName: make(map[string]reflect.Type),
		byType: make(map[reflect.Type]string),
	}
}

// Register associates name with the dynamic type of sample.
// Registering the same pair twice is a no-op.
func (t *Types) Register(name string, sample vdom.Command) error {
	if name == "" {
		return errors.New("transport: empty command type name")
	}
	if sample == nil {
		return fmt.Errorf("transport: nil sample for %q", name)
	}
	typ := reflect.TypeOf(sample)

	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.byName[name]; ok && existing != typ {
		return fmt.Errorf("transport: name %q already registered for %v", name, existing)
	}
	if existing, ok := t.byType[typ]; ok && existing != name {
		return fmt.Errorf("transport: type %v already registered as %q", typ, existing)
	}
	t.byName[name] = typ
	t.byType[typ] = name
	return nil
}

// MustRegister is like Register but panics on error.
func (t *Types) MustRegister(name string, sample vdom.Command) *Types {
	if err := t.Register(name, sample); err != nil {
		panic(err)
	}
	return t
}

// NameOf returns the wire name of cmd's type.
func (t *Types) NameOf(cmd vdom.Command) (string, error) {
	typ := reflect.TypeOf(cmd)
	t.mu.RLock()
	name, ok := t.byType[typ]
	t.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrUnregisteredType, typ)
	}
	return name, nil
}

// newValue returns a pointer to a fresh zero value of the named type.
func (t *Types) newValue(name string) (reflect.Value, error) {
	t.mu.RLock()
	typ, ok := t.byName[name]
	t.mu.RUnlock()
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %q", ErrUnknownTypeName, name)
	}
	return reflect.New(typ), nil
}
