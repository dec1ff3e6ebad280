package vtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Document mirrors the runtime's mutation primitives so that a Recorder can
// wrap any implementation of them.
type Document interface {
	SetRootContent(ctx context.Context, markup string) error
	AppendChild(ctx context.Context, parentID, markup string) error
	RemoveChild(ctx context.Context, parentID, childID string) error
	ReplaceNode(ctx context.Context, oldID, markup string) error
	SetText(ctx context.Context, nodeID, text string) error
	SetAttribute(ctx context.Context, nodeID, name, value string) error
	RemoveAttribute(ctx context.Context, nodeID, name string) error
}

// Call is one recorded primitive call.
type Call struct {
	Primitive string
	NodeID    string // Target node; the parent for AppendChild
	ChildID   string // RemoveChild only
	Name      string // Attribute name
	Value     string // Text, attribute value or markup
}

// String formats the call compactly for test failures.
func (c Call) String() string {
	switch c.Primitive {
	case "SetRootContent":
		return fmt.Sprintf("SetRootContent(%q)", c.Value)
	case "AppendChild", "ReplaceNode", "SetText":
		return fmt.Sprintf("%s(%s, %q)", c.Primitive, c.NodeID, c.Value)
	case "RemoveChild":
		return fmt.Sprintf("RemoveChild(%s, %s)", c.NodeID, c.ChildID)
	case "SetAttribute":
		return fmt.Sprintf("SetAttribute(%s, %s=%q)", c.NodeID, c.Name, c.Value)
	case "RemoveAttribute":
		return fmt.Sprintf("RemoveAttribute(%s, %s)", c.NodeID, c.Name)
	default:
		return c.Primitive
	}
}

type failure struct {
	primitive string
	nth       int
	err       error
}

// Recorder records primitive calls and optionally forwards them.
// It is safe for concurrent use.
type Recorder struct {
	next Document

	mu       sync.Mutex
	calls    []Call
	counts   map[string]int
	failures []failure
}

// NewRecorder creates a Recorder. If next is non-nil, successful calls are
// forwarded to it.
func NewRecorder(next Document) *Recorder {
	return &Recorder{next: next, counts: make(map[string]int)}
}

// FailOn makes the nth call (1-based, counted from now) of primitive fail
// with err. A nil err uses a generic error. Failed calls are recorded but
// not forwarded.
func (r *Recorder) FailOn(primitive string, nth int, err error) *Recorder {
	if err == nil {
		err = fmt.Errorf("vtest: injected %s failure", primitive)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, failure{primitive: primitive, nth: r.counts[primitive] + nth, err: err})
	return r
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Primitives returns the recorded primitive names in call order.
func (r *Recorder) Primitives() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Primitive
	}
	return out
}

// Len returns the number of recorded calls.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Reset clears recorded calls. Pending failures are kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// String lists the recorded calls one per line.
func (r *Recorder) String() string {
	var b strings.Builder
	for _, c := range r.Calls() {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	r.counts[c.Primitive]++
	for i, f := range r.failures {
		if f.primitive == c.Primitive && f.nth == r.counts[c.Primitive] {
			r.failures = append(r.failures[:i], r.failures[i+1:]...)
			return f.err
		}
	}
	return nil
}

// SetRootContent implements Document.
func (r *Recorder) SetRootContent(ctx context.Context, markup string) error {
	if err := r.record(Call{Primitive: "SetRootContent", Value: markup}); err != nil {
		return err
	}
	if r.next != nil {
		return r.next.SetRootContent(ctx, markup)
	}
	return nil
}

// AppendChild implements Document.
func (r *Recorder) AppendChild(ctx context.Context, parentID, markup string) error {
	if err := r.record(Call{Primitive: "AppendChild", NodeID: parentID, Value: markup}); err != nil {
		return err
	}
	if r.next != nil {
		return r.next.AppendChild(ctx, parentID, markup)
	}
	return nil
}

// RemoveChild implements Document.
func (r *Recorder) RemoveChild(ctx context.Context, parentID, childID string) error {
	if err := r.record(Call{Primitive: "RemoveChild", NodeID: parentID, ChildID: childID}); err != nil {
		return err
	}
	if r.next != nil {
		return r.next.RemoveChild(ctx, parentID, childID)
	}
	return nil
}

// ReplaceNode implements Document.
func (r *Recorder) ReplaceNode(ctx context.Context, oldID, markup string) error {
	if err := r.record(Call{Primitive: "ReplaceNode", NodeID: oldID, Value: markup}); err != nil {
		return err
	}
	if r.next != nil {
		return r.next.ReplaceNode(ctx, oldID, markup)
	}
	return nil
}

// SetText implements Document.
func (r *Recorder) SetText(ctx context.Context, nodeID, text string) error {
	if err := r.record(Call{Primitive: "SetText", NodeID: nodeID, Value: text}); err != nil {
		return err
	}
	if r.next != nil {
		return r.next.SetText(ctx, nodeID, text)
	}
	return nil
}

// SetAttribute implements Document.
func (r *Recorder) SetAttribute(ctx context.Context, nodeID, name, value string) error {
	if err := r.record(Call{Primitive: "SetAttribute", NodeID: nodeID, Name: name, Value: value}); err != nil {
		return err
	}
	if r.next != nil {
		return r.next.SetAttribute(ctx, nodeID, name, value)
	}
	return nil
}

// RemoveAttribute implements Document.
func (r *Recorder) RemoveAttribute(ctx context.Context, nodeID, name string) error {
	if err := r.record(Call{Primitive: "RemoveAttribute", NodeID: nodeID, Name: name}); err != nil {
		return err
	}
	if r.next != nil {
		return r.next.RemoveAttribute(ctx, nodeID, name)
	}
	return nil
}
