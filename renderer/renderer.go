// Package renderer walks the AST and emits HTML into a writer.Buffer.
//
// Dispatch is a fixed table indexed by node kind. Source text is escaped
// exactly once, at the point it enters the buffer; HTML produced earlier
// in the walk (directive children, highlighter output) re-enters through
// Buffer.Raw and is never escaped again.
package renderer

import (
	"strconv"
	"strings"

	"github.com/margay/margay/ast"
	"github.com/margay/margay/internal/slug"
	"github.com/margay/margay/registry"
	"github.com/margay/margay/writer"
)

// Config carries the per-pipeline render settings.
type Config struct {
	Registry *registry.Registry

	// Highlight enables the Highlighter hook for code blocks.
	Highlight   bool
	Highlighter func(lang, code string) (string, bool)

	// Inline parses a raw span into inline nodes; the pipeline wires the
	// inline parser in here so table cells can be rendered without the
	// renderer depending on the parser.
	Inline func(raw string, loc ast.SourceLocation) []ast.Node
}

// Render emits the document as HTML. It never fails; degraded nodes
// render as visible markers.
func Render(doc *ast.Document, cfg Config) string {
	var buf writer.Buffer
	RenderTo(doc, cfg, &buf)
	return buf.String()
}

// RenderTo emits the document into an existing buffer.
func RenderTo(doc *ast.Document, cfg Config, buf *writer.Buffer) {
	st := &state{cfg: cfg, buf: buf, slugs: &slug.Dedupe{}}
	st.node(doc)
}

type state struct {
	cfg   Config
	buf   *writer.Buffer
	slugs *slug.Dedupe
}

type renderFunc func(*state, ast.Node)

var dispatch [ast.NumKinds]renderFunc

func init() {
	dispatch[ast.KindDocument] = (*state).document
	dispatch[ast.KindHeading] = (*state).heading
	dispatch[ast.KindParagraph] = (*state).paragraph
	dispatch[ast.KindList] = (*state).list
	dispatch[ast.KindListItem] = (*state).listItem
	dispatch[ast.KindBlockQuote] = (*state).blockQuote
	dispatch[ast.KindCodeBlock] = (*state).codeBlock
	dispatch[ast.KindThematicBreak] = (*state).thematicBreak
	dispatch[ast.KindDirective] = (*state).directive
	dispatch[ast.KindTable] = (*state).table
	dispatch[ast.KindText] = (*state).text
	dispatch[ast.KindEmphasis] = (*state).emphasis
	dispatch[ast.KindStrong] = (*state).strong
	dispatch[ast.KindStrikethrough] = (*state).strikethrough
	dispatch[ast.KindCodeSpan] = (*state).codeSpan
	dispatch[ast.KindLink] = (*state).link
	dispatch[ast.KindImage] = (*state).image
	dispatch[ast.KindRole] = (*state).role
	dispatch[ast.KindMathInline] = (*state).mathInline
	dispatch[ast.KindMathBlock] = (*state).mathBlock
	dispatch[ast.KindHardBreak] = (*state).hardBreak
}

func (st *state) node(n ast.Node) {
	if fn := dispatch[n.Kind()]; fn != nil {
		fn(st, n)
	}
}

func (st *state) children(ns []ast.Node) {
	for _, n := range ns {
		st.node(n)
	}
}

func (st *state) document(n ast.Node) {
	st.children(n.(*ast.Document).Children)
}

func (st *state) heading(n ast.Node) {
	h := n.(*ast.Heading)
	level := strconv.Itoa(h.Level)
	id := st.slugs.Claim(slug.Make(textOf(h.Children)))
	st.buf.Raw("<h" + level + ` id="`)
	st.buf.Attr(id)
	st.buf.Raw(`">`)
	st.children(h.Children)
	st.buf.Raw("</h" + level + ">\n")
}

func (st *state) paragraph(n ast.Node) {
	st.buf.Raw("<p>")
	st.children(n.(*ast.Paragraph).Children)
	st.buf.Raw("</p>\n")
}

func (st *state) list(n ast.Node) {
	l := n.(*ast.List)
	if l.Ordered {
		if l.Start != 1 && l.Start != 0 {
			st.buf.Raw(`<ol start="` + strconv.Itoa(l.Start) + "\">\n")
		} else {
			st.buf.Raw("<ol>\n")
		}
		st.children(l.Children)
		st.buf.Raw("</ol>\n")
		return
	}
	st.buf.Raw("<ul>\n")
	st.children(l.Children)
	st.buf.Raw("</ul>\n")
}

func (st *state) listItem(n ast.Node) {
	st.buf.Raw("<li>")
	st.children(n.(*ast.ListItem).Children)
	st.buf.Raw("</li>\n")
}

func (st *state) blockQuote(n ast.Node) {
	st.buf.Raw("<blockquote>\n")
	st.children(n.(*ast.BlockQuote).Children)
	st.buf.Raw("</blockquote>\n")
}

func (st *state) codeBlock(n ast.Node) {
	c := n.(*ast.CodeBlock)
	lang := ""
	if c.Info != "" {
		lang = strings.Fields(c.Info)[0]
	}
	if st.cfg.Highlight && st.cfg.Highlighter != nil {
		if html, ok := st.cfg.Highlighter(lang, c.Literal); ok {
			st.buf.Raw(html)
			return
		}
	}
	if lang != "" {
		st.buf.Raw(`<pre><code class="language-`)
		st.buf.Attr(lang)
		st.buf.Raw(`">`)
	} else {
		st.buf.Raw("<pre><code>")
	}
	st.buf.Text(c.Literal)
	if c.Literal != "" {
		st.buf.Byte('\n')
	}
	st.buf.Raw("</code></pre>\n")
}

func (st *state) thematicBreak(ast.Node) {
	st.buf.Raw("<hr>\n")
}

func (st *state) directive(n ast.Node) {
	d := n.(*ast.Directive)

	// Children are rendered up front so contracts receive finished HTML.
	var childBuf writer.Buffer
	sub := &state{cfg: st.cfg, buf: &childBuf, slugs: st.slugs}
	sub.children(d.Children)
	renderedChildren := childBuf.String()

	if d.Err != "" {
		st.buf.Raw(`<div class="directive-error">`)
		st.buf.Text(d.Err)
		st.buf.Raw("</div>\n")
		st.buf.Raw(renderedChildren)
		return
	}

	if c := st.cfg.Registry.Directive(d.Name); c != nil && c.Render != nil {
		c.Render(d, renderedChildren, st.buf)
		st.buf.Byte('\n')
		return
	}

	st.buf.Raw(`<div class="directive directive-`)
	st.buf.Attr(d.Name)
	st.buf.Raw(`">`)
	st.buf.Raw(renderedChildren)
	st.buf.Raw("</div>\n")
}

func (st *state) table(n ast.Node) {
	t := n.(*ast.Table)
	if len(t.Rows) == 0 {
		return
	}
	st.buf.Raw("<table>\n<thead>\n<tr>\n")
	for col, cell := range t.Rows[0] {
		st.tableCell("th", t, col, cell)
	}
	st.buf.Raw("</tr>\n</thead>\n")
	if len(t.Rows) > 1 {
		st.buf.Raw("<tbody>\n")
		for _, row := range t.Rows[1:] {
			st.buf.Raw("<tr>\n")
			for col, cell := range row {
				st.tableCell("td", t, col, cell)
			}
			st.buf.Raw("</tr>\n")
		}
		st.buf.Raw("</tbody>\n")
	}
	st.buf.Raw("</table>\n")
}

func (st *state) tableCell(tag string, t *ast.Table, col int, cell string) {
	align := ""
	if col < len(t.Alignments) {
		switch t.Alignments[col] {
		case ast.AlignLeft:
			align = "left"
		case ast.AlignCenter:
			align = "center"
		case ast.AlignRight:
			align = "right"
		}
	}
	if align != "" {
		st.buf.Raw("<" + tag + ` align="` + align + `">`)
	} else {
		st.buf.Raw("<" + tag + ">")
	}
	if st.cfg.Inline != nil {
		st.children(st.cfg.Inline(cell, t.Location))
	} else {
		st.buf.Text(cell)
	}
	st.buf.Raw("</" + tag + ">\n")
}

func (st *state) text(n ast.Node) {
	st.buf.Text(n.(*ast.Text).Content)
}

func (st *state) emphasis(n ast.Node) {
	st.buf.Raw("<em>")
	st.children(n.(*ast.Emphasis).Children)
	st.buf.Raw("</em>")
}

func (st *state) strong(n ast.Node) {
	st.buf.Raw("<strong>")
	st.children(n.(*ast.Strong).Children)
	st.buf.Raw("</strong>")
}

func (st *state) strikethrough(n ast.Node) {
	st.buf.Raw("<del>")
	st.children(n.(*ast.Strikethrough).Children)
	st.buf.Raw("</del>")
}

func (st *state) codeSpan(n ast.Node) {
	st.buf.Raw("<code>")
	st.buf.Text(n.(*ast.CodeSpan).Code)
	st.buf.Raw("</code>")
}

func (st *state) link(n ast.Node) {
	l := n.(*ast.Link)
	st.buf.Raw(`<a href="`)
	st.buf.Attr(l.Destination)
	if l.Title != "" {
		st.buf.Raw(`" title="`)
		st.buf.Attr(l.Title)
	}
	st.buf.Raw(`">`)
	st.children(l.Children)
	st.buf.Raw("</a>")
}

func (st *state) image(n ast.Node) {
	img := n.(*ast.Image)
	st.buf.Raw(`<img src="`)
	st.buf.Attr(img.Destination)
	st.buf.Raw(`" alt="`)
	st.buf.Attr(img.Alt)
	if img.Title != "" {
		st.buf.Raw(`" title="`)
		st.buf.Attr(img.Title)
	}
	st.buf.Raw(`">`)
}

func (st *state) role(n ast.Node) {
	r := n.(*ast.Role)
	if c := st.cfg.Registry.Role(r.Name); c != nil && c.Render != nil {
		c.Render(r, st.buf)
		return
	}
	st.buf.Raw(`<span class="role role-`)
	st.buf.Attr(r.Name)
	st.buf.Raw(`">`)
	st.buf.Text(r.Content)
	st.buf.Raw("</span>")
}

func (st *state) mathInline(n ast.Node) {
	st.buf.Raw(`<span class="math inline">\(`)
	st.buf.Text(n.(*ast.MathInline).Literal)
	st.buf.Raw(`\)</span>`)
}

func (st *state) mathBlock(n ast.Node) {
	st.buf.Raw(`<div class="math block">\[`)
	st.buf.Text(n.(*ast.MathBlock).Literal)
	st.buf.Raw("\\]</div>\n")
}

func (st *state) hardBreak(ast.Node) {
	st.buf.Raw("<br>\n")
}

// textOf flattens inline nodes to their plain text, for heading slugs.
func textOf(nodes []ast.Node) string {
	var b strings.Builder
	var walk func([]ast.Node)
	walk = func(ns []ast.Node) {
		for _, n := range ns {
			switch v := n.(type) {
			case *ast.Text:
				b.WriteString(v.Content)
			case *ast.CodeSpan:
				b.WriteString(v.Code)
			case *ast.Role:
				b.WriteString(v.Content)
			default:
				walk(ast.ContainerChildren(n))
			}
		}
	}
	walk(nodes)
	return b.String()
}
