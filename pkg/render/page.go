package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vango-dev/mvu/pkg/vdom"
)

// RootContainerID is the id of the element whose content SetRootContent
// replaces in a page produced by RenderPage.
const RootContainerID = "mvu-root"

// DefaultClientScript is the path the thin client is served from.
const DefaultClientScript = "/_mvu/client.js"

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is the first paint placed inside the root container.
	Body *vdom.VNode

	// Markup is already rendered first paint, used when Body is nil.
	Markup string

	// Title is the page title
	Title string

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified
	Lang string

	// Meta contains meta tags for the page
	Meta []MetaTag

	// StyleSheets contains paths to external stylesheets
	StyleSheets []string

	// Styles contains inline CSS styles
	Styles []string

	// ClientScript is the path to the thin client JavaScript.
	// Defaults to DefaultClientScript. Set NoClient for a static page.
	ClientScript string

	// SocketPath is the websocket endpoint the thin client connects to.
	SocketPath string

	// NoClient omits the thin client script.
	NoClient bool
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name     string // name attribute
	Property string // property attribute (for OpenGraph)
	Content  string // content attribute
}

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	var body bytes.Buffer
	if page.Body != nil {
		if err := r.render(&body, page.Body); err != nil {
			return err
		}
	} else {
		body.WriteString(page.Markup)
	}

	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&buf, "<html lang=\"%s\">\n", escapeAttr(lang))
	r.renderHead(&buf, page)
	buf.WriteString("<body>\n")
	fmt.Fprintf(&buf, `<div id="%s">`, RootContainerID)
	body.WriteTo(&buf)
	buf.WriteString("</div>\n")
	r.renderClientScript(&buf, page)
	buf.WriteString("</body>\n</html>\n")

	_, err := buf.WriteTo(w)
	return err
}

// renderHead renders the document head section.
func (r *Renderer) renderHead(buf *bytes.Buffer, page PageData) {
	buf.WriteString("<head>\n")
	buf.WriteString(`  <meta charset="utf-8">` + "\n")
	buf.WriteString(`  <meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")

	if page.Title != "" {
		fmt.Fprintf(buf, "  <title>%s</title>\n", escapeHTML(page.Title))
	}

	for _, meta := range page.Meta {
		buf.WriteString("  <meta")
		if meta.Name != "" {
			fmt.Fprintf(buf, ` name="%s"`, escapeAttr(meta.Name))
		}
		if meta.Property != "" {
			fmt.Fprintf(buf, ` property="%s"`, escapeAttr(meta.Property))
		}
		fmt.Fprintf(buf, ` content="%s">`+"\n", escapeAttr(meta.Content))
	}

	for _, href := range page.StyleSheets {
		fmt.Fprintf(buf, `  <link rel="stylesheet" href="%s">`+"\n", escapeAttr(href))
	}

	for _, style := range page.Styles {
		fmt.Fprintf(buf, "  <style>%s</style>\n", style)
	}

	buf.WriteString("</head>\n")
}

// renderClientScript injects the thin client.
func (r *Renderer) renderClientScript(buf *bytes.Buffer, page PageData) {
	if page.NoClient {
		return
	}
	src := page.ClientScript
	if src == "" {
		src = DefaultClientScript
	}
	fmt.Fprintf(buf, `<script src="%s"`, escapeAttr(src))
	if page.SocketPath != "" {
		fmt.Fprintf(buf, ` data-ws="%s"`, escapeAttr(page.SocketPath))
	}
	fmt.Fprintf(buf, ` data-root="%s" defer></script>`+"\n", RootContainerID)
}
