package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/mvu/pkg/document"
	"github.com/vango-dev/mvu/pkg/vdom"
)

// materialize applies the first-render patches of tree to a fresh document.
func materialize(t *testing.T, tree *vdom.VNode) (*document.Document, *Applier, *Registry) {
	t.Helper()
	doc := document.New()
	reg := NewRegistry()
	a := NewApplier(doc, reg, nil, nil)
	patches, err := vdom.Diff(nil, tree)
	require.NoError(t, err)
	for _, p := range patches {
		require.NoError(t, a.Apply(context.Background(), p))
	}
	return doc, a, reg
}

// Applying Diff(A, B) to the materialization of A must yield the
// materialization of B, handler bindings included.
func TestDiffConvergesOnDocument(t *testing.T) {
	tests := []struct {
		name string
		a, b func() *vdom.VNode
	}{
		{
			name: "text update",
			a:    func() *vdom.VNode { return vdom.P("hello") },
			b:    func() *vdom.VNode { return vdom.P("world") },
		},
		{
			name: "empty text slots",
			a:    func() *vdom.VNode { return vdom.P("", "x", "") },
			b:    func() *vdom.VNode { return vdom.P("a", "", "c") },
		},
		{
			name: "properties",
			a:    func() *vdom.VNode { return vdom.Div(vdom.ID("a"), vdom.Class("c"), vdom.Title("t")) },
			b:    func() *vdom.VNode { return vdom.Div(vdom.Href("/x"), vdom.Class("d"), vdom.ID("a")) },
		},
		{
			name: "handlers",
			a: func() *vdom.VNode {
				return vdom.Button(vdom.OnClick(setCount{N: 1}), vdom.OnBlur(setCount{N: 9}), "go")
			},
			b: func() *vdom.VNode {
				return vdom.Button(vdom.OnClick(setCount{N: 2}), vdom.OnFocus(setCount{N: 3}), "go")
			},
		},
		{
			name: "children appended",
			a:    func() *vdom.VNode { return vdom.Ul(vdom.Li("a")) },
			b: func() *vdom.VNode {
				return vdom.Ul(vdom.Li("a"), vdom.Li(vdom.OnClick(setCount{N: 1}), "b"), vdom.Text("tail"))
			},
		},
		{
			name: "children removed",
			a: func() *vdom.VNode {
				return vdom.Ul(vdom.Li("a"), vdom.Li(vdom.OnClick(setCount{N: 1}), "b"), vdom.Text("tail"), vdom.Li("d"))
			},
			b: func() *vdom.VNode { return vdom.Ul(vdom.Li("a")) },
		},
		{
			name: "front insert shifts positions",
			a:    func() *vdom.VNode { return vdom.Ul(vdom.Li("b"), vdom.Li("c")) },
			b:    func() *vdom.VNode { return vdom.Ul(vdom.Li("a"), vdom.Li("b"), vdom.Li("c")) },
		},
		{
			name: "tag change",
			a: func() *vdom.VNode {
				return vdom.Div(vdom.Div(vdom.Class("a"), vdom.Button(vdom.OnClick(setCount{N: 1}), "x")), vdom.Span("s"))
			},
			b: func() *vdom.VNode {
				return vdom.Div(vdom.Section(vdom.Class("b"), vdom.Button(vdom.OnClick(setCount{N: 2}), "y")), vdom.Span("s"))
			},
		},
		{
			name: "text becomes element",
			a:    func() *vdom.VNode { return vdom.Div("a", vdom.Em("b")) },
			b:    func() *vdom.VNode { return vdom.Div(vdom.Strong("a"), "b") },
		},
		{
			name: "root tag change",
			a:    func() *vdom.VNode { return vdom.Div(vdom.OnClick(setCount{N: 1}), "x") },
			b:    func() *vdom.VNode { return vdom.Section(vdom.OnClick(setCount{N: 1}), "x") },
		},
		{
			name: "root text to element",
			a:    func() *vdom.VNode { return vdom.Text("plain") },
			b:    func() *vdom.VNode { return vdom.Main(vdom.H1("title")) },
		},
		{
			name: "nested mixed",
			a: func() *vdom.VNode {
				return vdom.Main(
					vdom.Header(vdom.H1("Todos"), vdom.Input(vdom.Value("milk"), vdom.OnInput(setCount{N: 0}))),
					vdom.Ul(vdom.Li(vdom.ClassIf(true, "done"), "one"), vdom.Li("two")),
					vdom.Footer(vdom.Textf("%d left", 2)),
				)
			},
			b: func() *vdom.VNode {
				return vdom.Main(
					vdom.Header(vdom.H1("Todos"), vdom.Input(vdom.Value(""), vdom.OnInput(setCount{N: 1}), vdom.Disabled(true))),
					vdom.Ul(vdom.Li("one"), vdom.Li(vdom.Class("done"), "two"), vdom.Li("three")),
					vdom.Footer(vdom.Textf("%d left", 1), vdom.Button(vdom.OnClick(setCount{}), "clear")),
				)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := positioned(tt.a())
			b := positioned(tt.b())

			doc, applier, reg := materialize(t, a)
			patches, err := vdom.Diff(a, b)
			require.NoError(t, err)
			for _, p := range patches {
				require.NoError(t, applier.Apply(context.Background(), p), "applying %s", p)
			}

			want, _, wantReg := materialize(t, positioned(tt.b()))
			assert.Equal(t, want.HTML(), doc.HTML())
			assert.Equal(t, wantReg.IDs(), reg.IDs())
			assert.Equal(t, treeHandlerIDs(b), reg.IDs())
		})
	}
}
