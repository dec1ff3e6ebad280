package runtime

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/mvu/pkg/document"
	"github.com/vango-dev/mvu/pkg/transport"
	"github.com/vango-dev/mvu/pkg/vdom"
	"github.com/vango-dev/mvu/pkg/vtest"
)

type cmd struct {
	Op string
	N  int
}

var (
	incCmd = cmd{Op: "inc"}
	decCmd = cmd{Op: "dec"}
)

func counterProgram() Program[int, cmd] {
	return Program[int, cmd]{
		Init: 0,
		Update: func(n int, c cmd) int {
			switch c.Op {
			case "inc":
				return n + 1
			case "dec":
				return n - 1
			case "set":
				return c.N
			case "boom":
				panic("update exploded")
			}
			return n
		},
		View: func(n int) *vdom.VNode {
			return vdom.Div(
				vdom.Button(vdom.OnClick(incCmd), "+"),
				vdom.Button(vdom.OnClick(decCmd), "-"),
				vdom.Textf("%d", n),
			)
		},
	}
}

func handlerID(nodeID, event string, c vdom.Command) string {
	return transport.HandlerID(nodeID, event, c)
}

// treeHandlerIDs lists the ids every handler in tree should be bound under.
func treeHandlerIDs(tree *vdom.VNode) []string {
	ids := []string{}
	for _, ref := range vdom.CollectHandlers(tree) {
		ids = append(ids, transport.HandlerID(ref.NodeID, ref.Event, ref.Command))
	}
	sort.Strings(ids)
	return ids
}

func assertRegistryMatchesTree[S, C any](t *testing.T, app *App[S, C]) {
	t.Helper()
	assert.Equal(t, treeHandlerIDs(app.Tree()), app.HandlerIDs(), "registry must hold exactly the committed tree's handlers")
}

func mountedCounter(t *testing.T, opts ...Option) (*App[int, cmd], *vtest.Recorder) {
	t.Helper()
	rec := vtest.NewRecorder(nil)
	app, err := New(counterProgram(), rec, opts...)
	require.NoError(t, err)
	require.NoError(t, app.Mount(context.Background()))
	rec.Reset()
	return app, rec
}

func TestNewValidation(t *testing.T) {
	_, err := New(Program[int, cmd]{}, nil)
	assert.Error(t, err)

	_, err = New(counterProgram(), nil, WithRootID("a--b"))
	assert.Error(t, err)

	app, err := New(counterProgram(), nil, WithRootID("app"))
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, app.Phase())
}

func TestMount(t *testing.T) {
	rec := vtest.NewRecorder(nil)
	app, err := New(counterProgram(), rec)
	require.NoError(t, err)

	require.NoError(t, app.Mount(context.Background()))

	calls := rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "SetRootContent", calls[0].Primitive)
	assert.Equal(t, `<div data-vid="r">`+
		`<button data-vid="r.0" data-on-click="`+handlerID("r.0", "click", incCmd)+`"><!--r.0.0-->+</button>`+
		`<button data-vid="r.1" data-on-click="`+handlerID("r.1", "click", decCmd)+`"><!--r.1.0-->-</button>`+
		`<!--r.2-->0</div>`, calls[0].Value)

	assert.Equal(t, 0, app.State())
	assertRegistryMatchesTree(t, app)
	assert.Len(t, app.HandlerIDs(), 2)
}

func TestDispatchCounterScenario(t *testing.T) {
	app, rec := mountedCounter(t)

	require.NoError(t, app.Dispatch(context.Background(), handlerID("r.0", "click", incCmd)))

	assert.Equal(t, 1, app.State())
	assert.Equal(t, []vtest.Call{{Primitive: "SetText", NodeID: "r.2", Value: "1"}}, rec.Calls())
	assertRegistryMatchesTree(t, app)

	require.NoError(t, app.Dispatch(context.Background(), handlerID("r.1", "click", decCmd)))
	require.NoError(t, app.Dispatch(context.Background(), handlerID("r.1", "click", decCmd)))
	assert.Equal(t, -1, app.State())
	assert.Equal(t, "-1", vdom.FindByID(app.Tree(), "r.2").Text)
}

func TestDispatchUnknownCommand(t *testing.T) {
	app, rec := mountedCounter(t)
	tree := app.Tree()

	err := app.Dispatch(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownCommand)

	var ce *CycleError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "nope", ce.EventID)
	assert.Equal(t, "lookup", ce.Op)

	assert.Equal(t, 0, app.State())
	assert.Same(t, tree, app.Tree())
	assert.Zero(t, rec.Len())
	assert.False(t, app.Desynced())
}

func TestDispatchBeforeMount(t *testing.T) {
	app, err := New(counterProgram(), vtest.NewRecorder(nil))
	require.NoError(t, err)

	err = app.Dispatch(context.Background(), handlerID("r.0", "click", incCmd))
	assert.ErrorIs(t, err, ErrNotMounted)
}

func TestDispatchPrimitiveFailureDoesNotCommit(t *testing.T) {
	app, rec := mountedCounter(t)
	tree := app.Tree()
	rec.FailOn("SetText", 1, errors.New("socket closed"))

	err := app.Dispatch(context.Background(), handlerID("r.0", "click", incCmd))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExternalPrimitive)
	assert.NotErrorIs(t, err, ErrUnknownCommand)

	assert.Equal(t, 0, app.State(), "state must stay at its pre-cycle value")
	assert.Same(t, tree, app.Tree(), "tree must stay at its pre-cycle value")
	assert.True(t, app.Desynced())

	rec.Reset()
	require.NoError(t, app.Resync(context.Background()))
	assert.False(t, app.Desynced())
	assert.Equal(t, []string{"SetRootContent"}, rec.Primitives())
	assertRegistryMatchesTree(t, app)

	require.NoError(t, app.Dispatch(context.Background(), handlerID("r.0", "click", incCmd)))
	assert.Equal(t, 1, app.State())
}

func TestDesyncedSurvivesLaterCycles(t *testing.T) {
	app, rec := mountedCounter(t)
	rec.FailOn("SetText", 1, errors.New("socket closed"))

	require.Error(t, app.Dispatch(context.Background(), handlerID("r.0", "click", incCmd)))
	require.True(t, app.Desynced())

	require.NoError(t, app.Dispatch(context.Background(), handlerID("r.0", "click", incCmd)))
	assert.Equal(t, 1, app.State())
	assert.True(t, app.Desynced(), "only a full render clears the flag")
	assertRegistryMatchesTree(t, app)

	require.NoError(t, app.Mount(context.Background()))
	assert.False(t, app.Desynced())
}

func TestFailedCycleRestoresRegistry(t *testing.T) {
	set0 := cmd{Op: "set"}
	noop := cmd{Op: "noop"}
	program := counterProgram()
	program.View = func(n int) *vdom.VNode {
		return vdom.Div(
			vdom.Button(vdom.OnClick(incCmd), "+"),
			vdom.Button(vdom.OnClick(noop), "="),
			vdom.If(n > 0, vdom.Button(vdom.OnClick(set0), "reset")),
		)
	}
	ctx := context.Background()

	t.Run("added subtree", func(t *testing.T) {
		rec := vtest.NewRecorder(nil)
		app, err := New(program, rec)
		require.NoError(t, err)
		require.NoError(t, app.Mount(ctx))
		rec.FailOn("AppendChild", 1, errors.New("socket closed"))

		require.ErrorIs(t, app.Dispatch(ctx, handlerID("r.0", "click", incCmd)), ErrExternalPrimitive)
		assertRegistryMatchesTree(t, app)

		require.NoError(t, app.Dispatch(ctx, handlerID("r.1", "click", noop)))
		assertRegistryMatchesTree(t, app)
		assert.Equal(t, 0, app.State())

		err = app.Dispatch(ctx, handlerID("r.2", "click", set0))
		assert.ErrorIs(t, err, ErrUnknownCommand, "a handler outside the committed tree must not dispatch")
	})

	t.Run("replaced subtree", func(t *testing.T) {
		replacing := program
		replacing.View = func(n int) *vdom.VNode {
			if n > 0 {
				return vdom.Div(vdom.A(vdom.OnClick(set0), "reset"))
			}
			return vdom.Div(vdom.Button(vdom.OnClick(incCmd), "+"))
		}
		rec := vtest.NewRecorder(nil)
		app, err := New(replacing, rec)
		require.NoError(t, err)
		require.NoError(t, app.Mount(ctx))
		rec.FailOn("ReplaceNode", 1, errors.New("socket closed"))

		require.ErrorIs(t, app.Dispatch(ctx, handlerID("r.0", "click", incCmd)), ErrExternalPrimitive)
		assert.Equal(t, []string{handlerID("r.0", "click", incCmd)}, app.HandlerIDs())
		assertRegistryMatchesTree(t, app)
	})

	t.Run("failed resync", func(t *testing.T) {
		rec := vtest.NewRecorder(nil)
		app, err := New(program, rec)
		require.NoError(t, err)
		require.NoError(t, app.Mount(ctx))
		rec.FailOn("SetRootContent", 1, errors.New("socket closed"))

		require.Error(t, app.Resync(ctx))
		assert.True(t, app.Desynced())
		assertRegistryMatchesTree(t, app)
	})
}

// Views may return nodes they keep between renders; the committed tree must
// not change when such a node moves.
func TestSharedViewNodes(t *testing.T) {
	footer := vdom.Span("footer")
	icon := vdom.Span("*")
	program := counterProgram()
	program.View = func(n int) *vdom.VNode {
		return vdom.Div(
			vdom.Button(vdom.OnClick(incCmd), "+"),
			vdom.Div(vdom.If(n > 0, vdom.P("moved")), footer),
			vdom.Div(icon, icon),
			vdom.Textf("%d", n),
		)
	}
	doc := document.New()
	app, err := New(program, doc)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, app.Mount(ctx))

	first := app.Tree()
	assert.Equal(t, "r.1.0", first.Children[1].Children[0].ID)
	assert.Equal(t, "r.2.0", first.Children[2].Children[0].ID)
	assert.Equal(t, "r.2.1", first.Children[2].Children[1].ID)
	assert.Empty(t, footer.ID, "view nodes must not be written to")

	require.NoError(t, app.Dispatch(ctx, handlerID("r.0", "click", incCmd)))
	assert.Equal(t, "r.1.0", first.Children[1].Children[0].ID, "committed tree must not change")
	assert.Equal(t, "r.1.1", app.Tree().Children[1].Children[1].ID)

	want, _, _ := materialize(t, app.Tree())
	assert.Equal(t, want.HTML(), doc.HTML())
	text, err := doc.Text("r.3")
	require.NoError(t, err)
	assert.Equal(t, "1", text)

	require.NoError(t, app.Dispatch(ctx, handlerID("r.0", "click", incCmd)))
	want, _, _ = materialize(t, app.Tree())
	assert.Equal(t, want.HTML(), doc.HTML())
}

func TestDispatchPanicsAreRecovered(t *testing.T) {
	program := counterProgram()
	view := program.View
	program.View = func(n int) *vdom.VNode {
		if n == 5 {
			panic(errors.New("view exploded"))
		}
		node := view(n)
		node.Attrs = append(node.Attrs, vdom.OnInput(cmd{Op: "boom"}), vdom.OnChange(cmd{Op: "set", N: 5}))
		return node
	}
	rec := vtest.NewRecorder(nil)
	app, err := New(program, rec)
	require.NoError(t, err)
	require.NoError(t, app.Mount(context.Background()))
	rec.Reset()

	err = app.Dispatch(context.Background(), handlerID("r", "input", cmd{Op: "boom"}))
	assert.ErrorIs(t, err, ErrPanic)
	assert.Equal(t, 0, app.State())

	err = app.Dispatch(context.Background(), handlerID("r", "change", cmd{Op: "set", N: 5}))
	assert.ErrorIs(t, err, ErrPanic)
	assert.Equal(t, 0, app.State())

	assert.Zero(t, rec.Len())
	assert.Equal(t, PhaseIdle, app.Phase())
}

func TestDispatchMalformedView(t *testing.T) {
	program := counterProgram()
	view := program.View
	program.View = func(n int) *vdom.VNode {
		node := view(n)
		if n > 0 {
			node.Attrs = append(node.Attrs, vdom.Prop("data-vid", "x"))
		}
		return node
	}
	rec := vtest.NewRecorder(nil)
	app, err := New(program, rec)
	require.NoError(t, err)
	require.NoError(t, app.Mount(context.Background()))
	rec.Reset()

	err = app.Dispatch(context.Background(), handlerID("r.0", "click", incCmd))
	assert.ErrorIs(t, err, ErrMalformedTree)
	assert.Equal(t, 0, app.State())
	assert.Zero(t, rec.Len())
}

func TestDispatchUnrenderableNames(t *testing.T) {
	tests := []struct {
		name  string
		extra func() *vdom.VNode
	}{
		{"event name", func() *vdom.VNode {
			return vdom.Button(vdom.Attr{Kind: vdom.AttrHandler, Name: "on click", Command: incCmd})
		}},
		{"property name", func() *vdom.VNode { return vdom.Div(vdom.Prop("a=b", "x")) }},
		{"tag", func() *vdom.VNode { return vdom.El("my tag") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program := counterProgram()
			view := program.View
			program.View = func(n int) *vdom.VNode {
				node := view(n)
				if n > 0 {
					node.Children = append(node.Children, tt.extra())
				}
				return node
			}
			rec := vtest.NewRecorder(nil)
			app, err := New(program, rec)
			require.NoError(t, err)
			require.NoError(t, app.Mount(context.Background()))
			rec.Reset()

			err = app.Dispatch(context.Background(), handlerID("r.0", "click", incCmd))
			assert.ErrorIs(t, err, ErrMalformedTree)
			assert.Zero(t, rec.Len(), "no patch may be applied")
			assert.False(t, app.Desynced())
			assertRegistryMatchesTree(t, app)
		})
	}
}

func TestDispatchWrongCommandType(t *testing.T) {
	program := Program[int, int]{
		Update: func(n, d int) int { return n + d },
		View: func(n int) *vdom.VNode {
			return vdom.Button(vdom.OnClick("not an int"))
		},
	}
	app, err := New(program, vtest.NewRecorder(nil))
	require.NoError(t, err)
	require.NoError(t, app.Mount(context.Background()))

	err = app.Dispatch(context.Background(), handlerID("r", "click", "not an int"))
	assert.ErrorIs(t, err, ErrCommandType)
}

func TestChangedHandlerGetsFreshID(t *testing.T) {
	program := Program[int, cmd]{
		Update: func(_ int, c cmd) int { return c.N },
		View: func(n int) *vdom.VNode {
			return vdom.Button(vdom.OnClick(cmd{Op: "set", N: n + 1}), vdom.Textf("%d", n))
		},
	}
	rec := vtest.NewRecorder(nil)
	app, err := New(program, rec)
	require.NoError(t, err)
	require.NoError(t, app.Mount(context.Background()))
	rec.Reset()

	oldID := handlerID("r", "click", cmd{Op: "set", N: 1})
	require.NoError(t, app.Dispatch(context.Background(), oldID))
	assert.Equal(t, 1, app.State())

	newID := handlerID("r", "click", cmd{Op: "set", N: 2})
	assert.Equal(t, []vtest.Call{
		{Primitive: "RemoveAttribute", NodeID: "r", Name: "data-on-click"},
		{Primitive: "SetAttribute", NodeID: "r", Name: "data-on-click", Value: newID},
		{Primitive: "SetText", NodeID: "r.0", Value: "1"},
	}, rec.Calls())
	assert.Equal(t, []string{newID}, app.HandlerIDs())

	err = app.Dispatch(context.Background(), oldID)
	assert.ErrorIs(t, err, ErrUnknownCommand, "a stale id must not dispatch")
}

func TestRegistryTracksStructuralChanges(t *testing.T) {
	type list struct{ items []string }
	program := Program[list, cmd]{
		Init: list{items: []string{"a", "b", "c"}},
		Update: func(l list, c cmd) list {
			switch c.Op {
			case "remove":
				items := append([]string{}, l.items[:c.N]...)
				return list{items: append(items, l.items[c.N+1:]...)}
			case "add":
				return list{items: append(append([]string{}, l.items...), "new")}
			}
			return l
		},
		View: func(l list) *vdom.VNode {
			return vdom.Div(
				vdom.Button(vdom.OnClick(cmd{Op: "add"}), "add"),
				vdom.Ul(vdom.Map(l.items, func(_ int, item string) *vdom.VNode {
					return vdom.Li(item)
				})),
				vdom.If(len(l.items) > 0, vdom.Ul(vdom.Map(l.items, func(i int, _ string) *vdom.VNode {
					return vdom.Button(vdom.OnClick(cmd{Op: "remove", N: i}), "x")
				}))),
			)
		},
	}
	doc := document.New()
	rec := vtest.NewRecorder(doc)
	app, err := New(program, rec)
	require.NoError(t, err)
	require.NoError(t, app.Mount(context.Background()))
	assertRegistryMatchesTree(t, app)

	ctx := context.Background()
	require.NoError(t, app.Dispatch(ctx, handlerID("r.0", "click", cmd{Op: "add"})))
	assertRegistryMatchesTree(t, app)
	assert.Len(t, app.State().items, 4)

	for len(app.State().items) > 0 {
		id, ok := doc.Handler("r.2.0", "click")
		require.True(t, ok)
		require.NoError(t, app.Dispatch(ctx, id))
		assertRegistryMatchesTree(t, app)
	}
	assert.Equal(t, []string{handlerID("r.0", "click", cmd{Op: "add"})}, app.HandlerIDs())
}

func TestInlineSerializationMode(t *testing.T) {
	types := transport.NewTypes().MustRegister("cmd", cmd{})
	codec, err := transport.NewCBORCodec(types)
	require.NoError(t, err)
	binder, err := transport.NewBinder(transport.ModeInline, codec)
	require.NoError(t, err)

	doc := document.New()
	app, err := New(counterProgram(), doc, WithBinder(binder))
	require.NoError(t, err)
	require.NoError(t, app.Mount(context.Background()))

	exposed, ok := doc.Handler("r.0", "click")
	require.True(t, ok)
	decoded, err := codec.Decode(exposed)
	require.NoError(t, err)
	assert.Equal(t, incCmd, decoded, "the markup carries the serialized command")

	require.NoError(t, app.Dispatch(context.Background(), exposed))
	assert.Equal(t, 1, app.State())
	assertRegistryMatchesTree(t, app)

	require.NoError(t, app.Dispatch(context.Background(), handlerID("r.1", "click", decCmd)), "in-process ids still dispatch")
	assert.Equal(t, 0, app.State())

	err = app.Dispatch(context.Background(), "!!garbage")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestPrerender(t *testing.T) {
	rec := vtest.NewRecorder(nil)
	app, err := New(counterProgram(), rec)
	require.NoError(t, err)

	markup, err := app.Prerender()
	require.NoError(t, err)
	assert.Contains(t, markup, `<!--r.2-->0`)
	assert.Zero(t, rec.Len(), "prerendering touches no document")
	assertRegistryMatchesTree(t, app)

	require.NoError(t, app.Dispatch(context.Background(), handlerID("r.0", "click", incCmd)))
	assert.Equal(t, []string{"SetText"}, rec.Primitives())
}

// blockingDoc holds SetText until released.
type blockingDoc struct {
	*vtest.Recorder
	entered chan struct{}
	release chan struct{}
}

func (d *blockingDoc) SetText(ctx context.Context, nodeID, text string) error {
	d.entered <- struct{}{}
	<-d.release
	return d.Recorder.SetText(ctx, nodeID, text)
}

func TestConcurrencyReject(t *testing.T) {
	doc := &blockingDoc{Recorder: vtest.NewRecorder(nil), entered: make(chan struct{}), release: make(chan struct{})}
	app, err := New(counterProgram(), doc, WithConcurrency(ConcurrencyReject))
	require.NoError(t, err)
	require.NoError(t, app.Mount(context.Background()))

	id := handlerID("r.0", "click", incCmd)
	done := make(chan error, 1)
	go func() { done <- app.Dispatch(context.Background(), id) }()

	<-doc.entered
	assert.Equal(t, PhaseCycling, app.Phase())
	err = app.Dispatch(context.Background(), id)
	assert.ErrorIs(t, err, ErrCycleInFlight)

	close(doc.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, app.State())
	assert.Equal(t, PhaseIdle, app.Phase())
}

func TestConcurrencyQueue(t *testing.T) {
	doc := &blockingDoc{Recorder: vtest.NewRecorder(nil), entered: make(chan struct{}, 8), release: make(chan struct{})}
	app, err := New(counterProgram(), doc)
	require.NoError(t, err)
	require.NoError(t, app.Mount(context.Background()))

	id := handlerID("r.0", "click", incCmd)
	var wg sync.WaitGroup
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- app.Dispatch(context.Background(), id)
		}()
	}

	<-doc.entered
	select {
	case <-doc.entered:
		t.Fatal("a second cycle entered the document while the first was in flight")
	case <-time.After(20 * time.Millisecond):
	}
	close(doc.release)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 3, app.State())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))
	app, rec := mountedCounter(t, WithMetrics(m))

	require.NoError(t, app.Dispatch(context.Background(), handlerID("r.0", "click", incCmd)))
	_ = app.Dispatch(context.Background(), "nope")
	rec.FailOn("SetText", 1, nil)
	_ = app.Dispatch(context.Background(), handlerID("r.0", "click", incCmd))
	require.NoError(t, app.Resync(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues(resultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues(resultUnknownCommand)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues(resultPrimitive)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.patches.WithLabelValues("UpdateText")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.patches.WithLabelValues("ReplaceSubtree")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resyncs))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.bindings))

	app.Close()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.bindings))
}

func TestParseConcurrency(t *testing.T) {
	c, err := ParseConcurrency("")
	require.NoError(t, err)
	assert.Equal(t, ConcurrencyQueue, c)

	c, err = ParseConcurrency("reject")
	require.NoError(t, err)
	assert.Equal(t, "reject", c.String())

	_, err = ParseConcurrency("drop")
	assert.Error(t, err)
}
