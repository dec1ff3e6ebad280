package document

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/mvu/pkg/protocol"
)

const counterMarkup = `<div data-vid="r">` +
	`<button data-on-click="inc" data-vid="r.0"><!--r.0.0-->+</button>` +
	`<button data-on-click="dec" data-vid="r.1"><!--r.1.0-->-</button>` +
	`<!--r.2-->0</div>`

func mustParse(t *testing.T, markup string) *Document {
	t.Helper()
	d, err := Parse(markup)
	require.NoError(t, err)
	return d
}

func TestParseAndHTML(t *testing.T) {
	d := mustParse(t, counterMarkup)
	assert.Equal(t, counterMarkup, d.HTML())

	v, ok := d.Handler("r.0", "click")
	assert.True(t, ok)
	assert.Equal(t, "inc", v)

	text, err := d.Text("r.2")
	require.NoError(t, err)
	assert.Equal(t, "0", text)
}

func TestHTMLSortsAttributes(t *testing.T) {
	d := mustParse(t, `<a data-vid="r" title="t" class="c"></a>`)
	assert.Equal(t, `<a class="c" data-vid="r" title="t"></a>`, d.HTML())
}

func TestSetText(t *testing.T) {
	ctx := context.Background()
	d := mustParse(t, `<p data-vid="r"><!--r.0-->a<!--r.1--><!--r.2-->c</p>`)

	require.NoError(t, d.SetText(ctx, "r.0", "x & y"))
	require.NoError(t, d.SetText(ctx, "r.1", "b"))
	require.NoError(t, d.SetText(ctx, "r.2", ""))
	assert.Equal(t, `<p data-vid="r"><!--r.0-->x &amp; y<!--r.1-->b<!--r.2--></p>`, d.HTML())

	err := d.SetText(ctx, "r", "x")
	assert.ErrorIs(t, err, ErrNotText)
}

func TestAttributes(t *testing.T) {
	ctx := context.Background()
	d := mustParse(t, `<div data-vid="r" class="a"></div>`)

	require.NoError(t, d.SetAttribute(ctx, "r", "class", "b"))
	require.NoError(t, d.SetAttribute(ctx, "r", "title", "t"))
	require.NoError(t, d.RemoveAttribute(ctx, "r", "missing"))
	assert.Equal(t, `<div class="b" data-vid="r" title="t"></div>`, d.HTML())

	require.NoError(t, d.RemoveAttribute(ctx, "r", "class"))
	_, ok := d.Attribute("r", "class")
	assert.False(t, ok)

	d2 := mustParse(t, `<!--r-->text`)
	assert.ErrorIs(t, d2.SetAttribute(ctx, "r", "a", "b"), ErrNotElement)
}

func TestAppendAndRemoveChild(t *testing.T) {
	ctx := context.Background()
	d := mustParse(t, `<ul data-vid="r"><li data-vid="r.0"><!--r.0.0-->a</li></ul>`)

	require.NoError(t, d.AppendChild(ctx, "r", `<li data-vid="r.1"><!--r.1.0-->b</li>`))
	require.NoError(t, d.AppendChild(ctx, "r", `<!--r.2-->tail`))
	assert.Equal(t,
		`<ul data-vid="r"><li data-vid="r.0"><!--r.0.0-->a</li><li data-vid="r.1"><!--r.1.0-->b</li><!--r.2-->tail</ul>`,
		d.HTML())

	require.NoError(t, d.RemoveChild(ctx, "r", "r.0"))
	require.NoError(t, d.RemoveChild(ctx, "r", "r.2"))
	assert.Equal(t, `<ul data-vid="r"><li data-vid="r.1"><!--r.1.0-->b</li></ul>`, d.HTML())

	assert.ErrorIs(t, d.RemoveChild(ctx, "r.1", "r.1"), ErrNotChild)
	assert.ErrorIs(t, d.RemoveChild(ctx, "r", "r.9"), ErrNodeNotFound)
}

func TestReplaceNode(t *testing.T) {
	ctx := context.Background()
	d := mustParse(t, `<div data-vid="r"><!--r.0-->a<span data-vid="r.1"><!--r.1.0-->b</span></div>`)

	require.NoError(t, d.ReplaceNode(ctx, "r.0", `<em data-vid="r.0"><!--r.0.0-->a</em>`))
	require.NoError(t, d.ReplaceNode(ctx, "r.1", `<!--r.1-->b`))
	assert.Equal(t, `<div data-vid="r"><em data-vid="r.0"><!--r.0.0-->a</em><!--r.1-->b</div>`, d.HTML())

	require.NoError(t, d.ReplaceNode(ctx, "r", `<p data-vid="r"></p>`))
	assert.Equal(t, `<p data-vid="r"></p>`, d.HTML())
}

func TestLookupDoesNotConfusePrefixes(t *testing.T) {
	markup := `<ul data-vid="r">`
	for i := 0; i < 11; i++ {
		markup += `<li data-vid="r.` + strconv.Itoa(i) + `"></li>`
	}
	markup += `</ul>`
	d := mustParse(t, markup)

	require.NoError(t, d.SetAttribute(context.Background(), "r.10", "class", "last"))
	v, ok := d.Attribute("r.10", "class")
	assert.True(t, ok)
	assert.Equal(t, "last", v)
	_, ok = d.Attribute("r.1", "class")
	assert.False(t, ok)
}

func TestNotFound(t *testing.T) {
	d := New()
	ctx := context.Background()
	for name, err := range map[string]error{
		"SetText":      d.SetText(ctx, "r", "x"),
		"AppendChild":  d.AppendChild(ctx, "r", "<p></p>"),
		"ReplaceNode":  d.ReplaceNode(ctx, "r", "<p></p>"),
		"SetAttribute": d.SetAttribute(ctx, "r", "a", "b"),
	} {
		if !errors.Is(err, ErrNodeNotFound) {
			t.Errorf("%s error = %v, want ErrNodeNotFound", name, err)
		}
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	d := New()

	ops := []protocol.Op{
		{Kind: protocol.OpSetRootContent, Value: counterMarkup},
		{Kind: protocol.OpSetText, NodeID: "r.2", Value: "1"},
		{Kind: protocol.OpSetAttribute, NodeID: "r", Name: "class", Value: "counter"},
		{Kind: protocol.OpAppendChild, NodeID: "r", Value: `<span data-vid="r.3"><!--r.3.0-->x</span>`},
		{Kind: protocol.OpReplaceNode, NodeID: "r.3", Value: `<b data-vid="r.3"></b>`},
		{Kind: protocol.OpRemoveAttribute, NodeID: "r.1", Name: "data-on-click"},
		{Kind: protocol.OpRemoveChild, NodeID: "r", ChildID: "r.3"},
	}
	for _, op := range ops {
		require.NoError(t, d.Apply(ctx, op), op.String())
	}

	text, err := d.Text("r.2")
	require.NoError(t, err)
	assert.Equal(t, "1", text)
	class, _ := d.Attribute("r", "class")
	assert.Equal(t, "counter", class)
	_, ok := d.Handler("r.1", "click")
	assert.False(t, ok)
	assert.NotContains(t, d.HTML(), "r.3")

	assert.Error(t, d.Apply(ctx, protocol.Op{Kind: protocol.OpKind(99)}))
}
