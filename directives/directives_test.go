package directives

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/margay/margay/ast"
	"github.com/margay/margay/registry"
	"github.com/margay/margay/writer"
)

func decodeOpts(c *registry.DirectiveContract, raw ...registry.RawOption) ast.Options {
	return c.Options.Decode(raw)
}

func TestAdmonition_RenderShape(t *testing.T) {
	c := Admonition()
	node := &ast.Directive{Name: "note", Options: decodeOpts(c)}

	var buf writer.Buffer
	c.Render(node, "<p>body</p>\n", &buf)

	html := buf.String()
	require.Contains(t, html, `<div class="admonition note">`)
	require.Contains(t, html, `<p class="admonition-title">Note</p>`)
	require.Contains(t, html, "<p>body</p>")
	require.True(t, strings.HasSuffix(html, "</div>"))
}

func TestAdmonition_TitleAndClassOverride(t *testing.T) {
	c := Admonition()
	node := &ast.Directive{
		Name:    "warning",
		Title:   "Careful <now>",
		Options: decodeOpts(c, registry.RawOption{Key: "class", Value: "wide"}),
	}

	var buf writer.Buffer
	c.Render(node, "", &buf)

	html := buf.String()
	require.Contains(t, html, `<div class="admonition warning wide">`)
	require.Contains(t, html, "Careful &lt;now&gt;")
}

func TestAdmonition_CoversAllKinds(t *testing.T) {
	require.ElementsMatch(t,
		[]string{"note", "tip", "important", "warning", "caution", "danger"},
		Admonition().Names)
}

func TestDropdown_ClosedByDefault(t *testing.T) {
	c := Dropdown()
	node := &ast.Directive{Name: "dropdown", Title: "More", Options: decodeOpts(c)}

	var buf writer.Buffer
	c.Render(node, "<p>hidden</p>\n", &buf)

	html := buf.String()
	require.Contains(t, html, `<details class="dropdown">`)
	require.Contains(t, html, "<summary>More</summary>")
	require.NotContains(t, html, " open")
}

func TestDropdown_OpenFlag(t *testing.T) {
	c := Dropdown()
	node := &ast.Directive{
		Name:    "dropdown",
		Options: decodeOpts(c, registry.RawOption{Key: "open", Value: ""}),
	}

	var buf writer.Buffer
	c.Render(node, "", &buf)

	require.Contains(t, buf.String(), `<details class="dropdown" open>`)
	require.Contains(t, buf.String(), "<summary>Details</summary>")
}

func listTableNode(opts ast.Options, raw string) *ast.Directive {
	return &ast.Directive{Name: "list-table", Options: opts, RawContent: raw}
}

func TestListTable_RawFallbackWithHeader(t *testing.T) {
	c := ListTable()
	raw := "* - Header 1\n  - Header 2\n* - Cell 1\n  - Cell 2"
	node := listTableNode(decodeOpts(c, registry.RawOption{Key: "header-rows", Value: "1"}), raw)

	var buf writer.Buffer
	c.Render(node, "", &buf)
	html := buf.String()

	require.Equal(t, 1, strings.Count(html, "<table"))
	require.Equal(t, 2, strings.Count(html, "<th>"))
	require.Equal(t, 2, strings.Count(html, "<td"))
	require.Contains(t, html, "<thead>")
	require.Contains(t, html, "<tbody>")
	require.Contains(t, html, `data-label="Header 1"`)
}

func TestListTable_FromParsedChildren(t *testing.T) {
	cell := func(text string) *ast.ListItem {
		return &ast.ListItem{Children: []ast.Node{
			&ast.Paragraph{Children: []ast.Node{&ast.Text{Content: text}}},
		}}
	}
	row := func(cells ...ast.Node) *ast.ListItem {
		return &ast.ListItem{Children: []ast.Node{&ast.List{Children: cells}}}
	}
	c := ListTable()
	node := &ast.Directive{
		Name:    "list-table",
		Options: decodeOpts(c),
		Children: []ast.Node{&ast.List{Children: []ast.Node{
			row(cell("a"), cell("b")),
			row(cell("c"), cell("d")),
		}}},
	}

	var buf writer.Buffer
	c.Render(node, "", &buf)
	html := buf.String()

	require.Equal(t, 4, strings.Count(html, "<td"))
	require.NotContains(t, html, "<thead>")
	require.Contains(t, html, "<td>a</td>")
}

func TestListTable_WidthsColgroup(t *testing.T) {
	c := ListTable()
	node := listTableNode(
		decodeOpts(c, registry.RawOption{Key: "widths", Value: "30 70"}),
		"* - a\n  - b",
	)

	var buf writer.Buffer
	c.Render(node, "", &buf)
	html := buf.String()

	require.Contains(t, html, "<colgroup>")
	require.Contains(t, html, `<col style="width: 30%;">`)
	require.Contains(t, html, `<col style="width: 70%;">`)
}

func TestListTable_EmptyBodyRendersErrorMarker(t *testing.T) {
	c := ListTable()
	node := listTableNode(decodeOpts(c), "")

	var buf writer.Buffer
	c.Render(node, "", &buf)
	require.Contains(t, buf.String(), `<div class="list-table-error">`)
}

func TestListTable_PlaceholderCell(t *testing.T) {
	c := ListTable()
	node := listTableNode(decodeOpts(c), "* - a\n  - -")

	var buf writer.Buffer
	c.Render(node, "", &buf)
	require.Contains(t, buf.String(), `<span class="table-empty">—</span>`)
}

func TestRenderCell_InlineMarkdownSubset(t *testing.T) {
	require.Equal(t, "<code>x</code>", renderCell("`x`"))
	require.Equal(t, "<strong>x</strong>", renderCell("**x**"))
	require.Equal(t, "<em>x</em>", renderCell("*x*"))
	require.Equal(t, `<a href="u">t</a>`, renderCell("[t](u)"))
	require.Equal(t, "a &lt; b", renderCell("a < b"))
}

func TestRowsFromRaw_MultilineCell(t *testing.T) {
	rows := rowsFromRaw("* - first line\n    second line\n  - next cell")
	require.Equal(t, [][]string{{"first line\nsecond line", "next cell"}}, rows)
}
