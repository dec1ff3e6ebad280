package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vango-dev/mvu/pkg/render"
	"github.com/vango-dev/mvu/pkg/transport"
	"github.com/vango-dev/mvu/pkg/vdom"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Program is the application triple: an initial state, a pure state
// transition and a pure view.
type Program[S, C any] struct {
	Init   S
	Update func(S, C) S
	View   func(S) *vdom.VNode
}

// Instance is the type-erased surface hosts drive.
type Instance interface {
	Mount(ctx context.Context) error
	Prerender() (string, error)
	Dispatch(ctx context.Context, eventID string) error
	Resync(ctx context.Context) error
	Desynced() bool
	Close()
}

// Phase is the cycle state of an App.
type Phase int32

const (
	PhaseIdle    Phase = iota // No cycle in flight
	PhaseCycling              // One cycle in progress
)

// String returns the string representation of the Phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseCycling:
		return "Cycling"
	default:
		return "Unknown"
	}
}

// App is one running application instance bound to one Document.
//
// All mutation happens inside a cycle: Mount, Prerender, Dispatch and
// Resync each run as one cycle, and cycles never overlap. State and tree are
// committed together and only when a cycle completes.
type App[S, C any] struct {
	program Program[S, C]
	doc     Document
	opts    options
	logger  *slog.Logger

	cycle    sync.Mutex
	registry *Registry
	applier  *Applier
	phase    atomic.Int32

	// Committed snapshot, readable while a cycle runs.
	mu       sync.RWMutex
	state    S
	tree     *vdom.VNode
	desynced bool
}

// New creates an application instance. doc may be nil for instances that
// are only prerendered.
func New[S, C any](program Program[S, C], doc Document, opts ...Option) (*App[S, C], error) {
	if program.Update == nil || program.View == nil {
		return nil, errors.New("runtime: program needs Update and View")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !vdom.ValidRootID(o.rootID) {
		return nil, fmt.Errorf("runtime: invalid root id %q", o.rootID)
	}

	registry := NewRegistry()
	return &App[S, C]{
		program:  program,
		doc:      doc,
		opts:     o,
		logger:   o.logger.With("transport", o.binder.Mode().String()),
		registry: registry,
		applier:  NewApplier(doc, registry, o.binder, o.metrics),
		state:    program.Init,
	}, nil
}

// State returns the committed state.
func (a *App[S, C]) State() S {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Tree returns the committed tree. It must not be modified.
func (a *App[S, C]) Tree() *vdom.VNode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tree
}

// Desynced reports whether a failed cycle left the document out of step
// with the committed tree. Resync or Mount clears it.
func (a *App[S, C]) Desynced() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.desynced
}

// Phase returns the current cycle phase.
func (a *App[S, C]) Phase() Phase {
	return Phase(a.phase.Load())
}

// HandlerIDs returns the bound handler ids in sorted order. It waits for a
// running cycle to finish.
func (a *App[S, C]) HandlerIDs() []string {
	a.cycle.Lock()
	defer a.cycle.Unlock()
	return a.registry.IDs()
}

// begin enters a cycle according to the concurrency policy.
func (a *App[S, C]) begin() (func(), error) {
	if a.opts.concurrency == ConcurrencyReject {
		if !a.cycle.TryLock() {
			return nil, ErrCycleInFlight
		}
	} else {
		a.cycle.Lock()
	}
	a.phase.Store(int32(PhaseCycling))
	return func() {
		a.phase.Store(int32(PhaseIdle))
		a.cycle.Unlock()
	}, nil
}

// Mount renders the committed state and replaces the whole document content
// with it. Mount may be called again to rebuild a document from scratch.
func (a *App[S, C]) Mount(ctx context.Context) error {
	end, err := a.begin()
	if err != nil {
		return cycleError("", "mount", err)
	}
	defer end()

	if a.doc == nil {
		return cycleError("", "mount", errors.New("runtime: no document"))
	}

	state := a.State()
	tree, err := a.view(state)
	if err != nil {
		return cycleError("", "view", err)
	}
	patches, err := vdom.Diff(nil, tree)
	if err != nil {
		return cycleError("", "diff", err)
	}

	checkpoint := a.applier.Checkpoint()
	a.applier.Reset()
	for _, p := range patches {
		if err := a.applier.Apply(ctx, p); err != nil {
			a.applier.Rollback(checkpoint)
			a.markDesynced()
			a.logger.Error("mount failed", "error", err)
			return cycleError("", "mount", err)
		}
	}

	a.commit(state, tree, true)
	a.logger.Info("mounted", "handlers", a.registry.Len())
	return nil
}

// Prerender renders the committed state to markup for a host that embeds it
// in its first page. The handlers in the markup are bound and the tree is
// committed, so later dispatches diff against it. No Document call is made.
func (a *App[S, C]) Prerender() (string, error) {
	end, err := a.begin()
	if err != nil {
		return "", cycleError("", "prerender", err)
	}
	defer end()

	state := a.State()
	tree, err := a.view(state)
	if err != nil {
		return "", cycleError("", "view", err)
	}
	checkpoint := a.applier.Checkpoint()
	a.applier.Reset()
	markup, err := a.applier.Render(tree)
	if err != nil {
		a.applier.Rollback(checkpoint)
		return "", cycleError("", "prerender", err)
	}
	a.commit(state, tree, true)
	return markup, nil
}

// Dispatch runs one update cycle for the handler exposed as eventID.
//
// The cycle looks the command up, applies Update, renders View, diffs
// against the committed tree and applies the patches in order. State and
// tree are committed only when every patch was applied. An unknown id fails
// with ErrUnknownCommand before anything changes. A failed patch aborts the
// remaining ones and puts the registry back to the committed tree's
// handlers. A failed primitive also fails with ErrExternalPrimitive and
// marks the instance desynced; the host should call Resync.
func (a *App[S, C]) Dispatch(ctx context.Context, eventID string) (err error) {
	start := time.Now()
	end, err := a.begin()
	if err != nil {
		a.opts.metrics.recordCycle(resultRejected, 0)
		return cycleError(eventID, "dispatch", err)
	}
	defer end()

	ctx, span := a.opts.tracer.Start(ctx, "mvu.dispatch",
		trace.WithAttributes(attribute.String("mvu.event_id", eventID)))
	defer span.End()

	patchCount := 0
	defer func() {
		a.finishCycle(span, eventID, patchCount, time.Since(start), err)
	}()

	a.mu.RLock()
	prevState, prevTree := a.state, a.tree
	a.mu.RUnlock()
	if prevTree == nil {
		return cycleError(eventID, "lookup", ErrNotMounted)
	}

	cmd, err := a.lookup(eventID)
	if err != nil {
		return cycleError(eventID, "lookup", err)
	}

	nextState, err := a.update(prevState, cmd)
	if err != nil {
		return cycleError(eventID, "update", err)
	}

	nextTree, err := a.view(nextState)
	if err != nil {
		return cycleError(eventID, "view", err)
	}

	patches, err := vdom.Diff(prevTree, nextTree)
	if err != nil {
		return cycleError(eventID, "diff", err)
	}
	patchCount = len(patches)
	span.SetAttributes(attribute.Int("mvu.patches", patchCount))

	checkpoint := a.applier.Checkpoint()
	for i, p := range patches {
		if err := a.applier.Apply(ctx, p); err != nil {
			a.applier.Rollback(checkpoint)
			a.markDesynced()
			a.logger.Error("cycle aborted",
				"event_id", eventID,
				"patch", p.String(),
				"applied", i,
				"remaining", len(patches)-i,
				"desynced", true,
				"error", err)
			return cycleError(eventID, "apply", err)
		}
	}

	a.commit(nextState, nextTree, false)
	return nil
}

// lookup resolves an event id to a typed command.
func (a *App[S, C]) lookup(eventID string) (C, error) {
	var zero C
	cmd, ok := a.registry.Lookup(eventID)
	if !ok && a.opts.binder.Mode() == transport.ModeInline {
		if replayed, err := a.opts.binder.Replay(eventID); err == nil {
			cmd, ok = replayed, true
		}
	}
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrUnknownCommand, eventID)
	}
	typed, ok := cmd.(C)
	if !ok {
		return zero, fmt.Errorf("%w: %T", ErrCommandType, cmd)
	}
	return typed, nil
}

func (a *App[S, C]) update(state S, cmd C) (next S, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("update panicked", "panic", r, "stack", string(debug.Stack()))
			err = panicError("Update", r)
		}
	}()
	return a.program.Update(state, cmd), nil
}

// view renders state into a tree the instance owns, with identities
// assigned, and validates the result.
func (a *App[S, C]) view(state S) (tree *vdom.VNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("view panicked", "panic", r, "stack", string(debug.Stack()))
			err = panicError("View", r)
		}
	}()
	tree = vdom.Identify(a.program.View(state), a.opts.rootID)
	if tree == nil {
		return nil, &vdom.MalformedTreeError{Reason: "view returned nil"}
	}
	if err := validate(tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// validate extends vdom.Validate with the renderer's rules: names it can
// write and the attribute names it reserves for addressing. A tree that
// passes renders without error, so no patch is applied for a tree that
// would fail halfway.
func validate(tree *vdom.VNode) error {
	if err := vdom.Validate(tree); err != nil {
		return err
	}
	var err error
	vdom.Walk(tree, func(n *vdom.VNode) bool {
		if n.Kind != vdom.KindElement {
			return true
		}
		if !render.ValidName(n.Tag) {
			err = &vdom.MalformedTreeError{NodeID: n.ID, Reason: fmt.Sprintf("invalid tag %q", n.Tag)}
			return false
		}
		for _, attr := range n.Attrs {
			switch {
			case !render.ValidName(attr.Name):
				err = &vdom.MalformedTreeError{NodeID: n.ID, Reason: fmt.Sprintf("invalid %s name %q", strings.ToLower(attr.Kind.String()), attr.Name)}
			case attr.Kind == vdom.AttrProperty && render.IsReservedAttr(attr.Name):
				err = &vdom.MalformedTreeError{NodeID: n.ID, Reason: fmt.Sprintf("reserved attribute %q", attr.Name)}
			}
			if err != nil {
				return false
			}
		}
		return true
	})
	return err
}

// commit publishes a cycle's result. A full render sets full, which also
// clears the desynced flag; an incremental cycle leaves it as it was.
func (a *App[S, C]) commit(state S, tree *vdom.VNode, full bool) {
	a.mu.Lock()
	a.state = state
	a.tree = tree
	if full {
		a.desynced = false
	}
	a.mu.Unlock()
}

func (a *App[S, C]) markDesynced() {
	a.mu.Lock()
	a.desynced = true
	a.mu.Unlock()
}

func (a *App[S, C]) finishCycle(span trace.Span, eventID string, patches int, d time.Duration, err error) {
	switch {
	case err == nil:
		a.opts.metrics.recordCycle(resultOK, d)
		a.logger.Debug("cycle complete", "event_id", eventID, "patches", patches, "duration", d)
		return
	case errors.Is(err, ErrUnknownCommand):
		a.opts.metrics.recordCycle(resultUnknownCommand, d)
		a.logger.Warn("unknown command", "event_id", eventID)
	case errors.Is(err, ErrExternalPrimitive):
		a.opts.metrics.recordCycle(resultPrimitive, d)
	default:
		a.opts.metrics.recordCycle(resultError, d)
		if !a.Desynced() {
			a.logger.Error("cycle failed", "event_id", eventID, "error", err)
		}
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Resync discards every binding and rebuilds the document from the committed
// tree with a single SetRootContent.
func (a *App[S, C]) Resync(ctx context.Context) error {
	end, err := a.begin()
	if err != nil {
		return cycleError("", "resync", err)
	}
	defer end()

	tree := a.Tree()
	if tree == nil {
		return cycleError("", "resync", ErrNotMounted)
	}
	if a.doc == nil {
		return cycleError("", "resync", errors.New("runtime: no document"))
	}

	checkpoint := a.applier.Checkpoint()
	a.applier.Reset()
	if err := a.applier.Apply(ctx, vdom.Patch{Op: vdom.PatchReplaceSubtree, Node: tree}); err != nil {
		a.applier.Rollback(checkpoint)
		a.markDesynced()
		a.logger.Error("resync failed", "error", err)
		return cycleError("", "resync", err)
	}

	a.mu.Lock()
	a.desynced = false
	a.mu.Unlock()
	a.opts.metrics.recordResync()
	a.logger.Info("resynced", "handlers", a.registry.Len())
	return nil
}

// Close releases the instance's bindings. The instance must not be used
// afterwards.
func (a *App[S, C]) Close() {
	a.cycle.Lock()
	defer a.cycle.Unlock()
	a.applier.Reset()
}
