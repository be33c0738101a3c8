package directives

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/margay/margay/ast"
	"github.com/margay/margay/registry"
	"github.com/margay/margay/writer"
)

// ListTable returns the contract for MyST-style tables built from nested
// lists:
//
//	:::{list-table}
//	:header-rows: 1
//	:widths: 30 70
//
//	* - Header 1
//	  - Header 2
//	* - Cell 1
//	  - Cell 2
//	:::
//
// "* -" starts a row, a deeper "-" item is the next cell in the row.
// Rows come from the parsed body when possible; raw content is the
// fallback so a body the block parser could not shape still produces a
// table.
func ListTable() *registry.DirectiveContract {
	return &registry.DirectiveContract{
		Names: []string{"list-table"},
		Options: registry.NewOptionSchema(
			registry.Field{Name: "header_rows", Aliases: []string{"header-rows"}, Kind: registry.FieldInt},
			registry.Field{Name: "widths", Kind: registry.FieldString},
			registry.Field{Name: "css_class", Aliases: []string{"class", "css-class"}, Kind: registry.FieldString},
		),
		ParseBody: true,
		Render:    renderListTable,
	}
}

func renderListTable(node *ast.Directive, _ string, out *writer.Buffer) {
	headerRows := node.Options.Int("header_rows")

	var widths []int
	if ws := node.Options.String("widths"); ws != "" {
		for _, w := range strings.Fields(ws) {
			n, err := strconv.Atoi(w)
			if err != nil {
				widths = nil
				break
			}
			widths = append(widths, n)
		}
	}

	rows := rowsFromChildren(node.Children)
	if len(rows) == 0 && node.RawContent != "" {
		rows = rowsFromRaw(node.RawContent)
	}
	if len(rows) == 0 {
		out.Raw(`<div class="list-table-error">List table has no rows</div>`)
		return
	}

	class := "list-table"
	if extra := node.Options.String("css_class"); extra != "" {
		class += " " + extra
	}
	out.Raw(`<table class="`)
	out.Attr(class)
	out.Raw("\">\n")

	if len(widths) > 0 {
		out.Raw("  <colgroup>\n")
		for _, w := range widths {
			out.Raw(`    <col style="width: ` + strconv.Itoa(w) + "%;\">\n")
		}
		out.Raw("  </colgroup>\n")
	}

	if headerRows > 0 {
		out.Raw("  <thead>\n")
		for i := 0; i < headerRows && i < len(rows); i++ {
			out.Raw("    <tr>\n")
			for _, cell := range rows[i] {
				out.Raw("      <th>")
				out.Raw(renderCell(cell))
				out.Raw("</th>\n")
			}
			out.Raw("    </tr>\n")
		}
		out.Raw("  </thead>\n")
	}

	// Header labels feed the data-label attributes responsive layouts use.
	var labels []string
	if headerRows > 0 {
		for _, cell := range rows[0] {
			label := strings.TrimSpace(cell)
			if len(label) >= 2 && label[0] == '`' && label[len(label)-1] == '`' {
				label = label[1 : len(label)-1]
			}
			labels = append(labels, label)
		}
	}

	if len(rows) > headerRows {
		out.Raw("  <tbody>\n")
		for _, row := range rows[headerRows:] {
			out.Raw("    <tr>\n")
			for col, cell := range row {
				if col < len(labels) {
					out.Raw(`      <td data-label="`)
					out.Attr(labels[col])
					out.Raw(`">`)
				} else {
					out.Raw("      <td>")
				}
				out.Raw(renderCell(cell))
				out.Raw("</td>\n")
			}
			out.Raw("    </tr>\n")
		}
		out.Raw("  </tbody>\n")
	}

	out.Raw("</table>")
}

// rowsFromChildren reads rows out of the parsed body. Each item of the
// outer list is a row; each row item carries an inner list with one item
// per cell. Cells keep lightweight markdown spelling (backticks, stars)
// so renderCell can reapply it.
func rowsFromChildren(children []ast.Node) [][]string {
	var rows [][]string
	for _, child := range children {
		list, ok := child.(*ast.List)
		if !ok {
			continue
		}
		for _, item := range list.Children {
			rowItem, ok := item.(*ast.ListItem)
			if !ok {
				continue
			}
			var row []string
			for _, inner := range rowItem.Children {
				if cells, ok := inner.(*ast.List); ok {
					for _, cell := range cells.Children {
						if ci, ok := cell.(*ast.ListItem); ok {
							collectCell(ci, &row)
						}
					}
				}
			}
			if len(row) > 0 {
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// collectCell extracts one cell's text, then descends into any nested
// list holding the remaining cells of the row.
func collectCell(item *ast.ListItem, row *[]string) {
	var parts []string
	var nested *ast.List
	for _, child := range item.Children {
		if l, ok := child.(*ast.List); ok {
			nested = l
			continue
		}
		if text := markdownText(child); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) > 0 {
		*row = append(*row, strings.Join(parts, ""))
	}
	if nested != nil {
		for _, cell := range nested.Children {
			if ci, ok := cell.(*ast.ListItem); ok {
				collectCell(ci, row)
			}
		}
	}
}

// markdownText flattens an inline subtree back to markdown-ish text.
func markdownText(node ast.Node) string {
	var b strings.Builder
	for _, child := range ast.ContainerChildren(node) {
		switch v := child.(type) {
		case *ast.Text:
			b.WriteString(v.Content)
		case *ast.CodeSpan:
			b.WriteString("`" + v.Code + "`")
		case *ast.Strong:
			b.WriteString("**" + markdownText(v) + "**")
		case *ast.Emphasis:
			b.WriteString("*" + markdownText(v) + "*")
		case *ast.Link:
			b.WriteString("[" + markdownText(v) + "](" + v.Destination + ")")
		default:
			b.WriteString(markdownText(child))
		}
	}
	return b.String()
}

var (
	rowMarker  = regexp.MustCompile(`^\*\s+-\s*`)
	cellMarker = regexp.MustCompile(`^  -\s*`)
)

// rowsFromRaw parses the raw body line by line: "* -" opens a row,
// "  -" the next cell, 4-space indented lines continue the current cell.
func rowsFromRaw(content string) [][]string {
	var rows [][]string
	var row []string
	var cell []string

	flushCell := func() {
		if len(cell) > 0 {
			row = append(row, strings.TrimSpace(strings.Join(cell, "\n")))
			cell = nil
		}
	}
	flushRow := func() {
		flushCell()
		if len(row) > 0 {
			rows = append(rows, row)
			row = nil
		}
	}

	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)
		switch {
		case rowMarker.MatchString(line):
			flushRow()
			if rest := strings.TrimSpace(rowMarker.ReplaceAllString(line, "")); rest != "" {
				cell = []string{rest}
			}
		case cellMarker.MatchString(line):
			flushCell()
			if rest := strings.TrimSpace(cellMarker.ReplaceAllString(line, "")); rest != "" {
				cell = []string{rest}
			}
		case stripped == "" && len(cell) > 0:
			cell = append(cell, "")
		case strings.HasPrefix(line, "    ") && len(cell) > 0:
			cell = append(cell, line[4:])
		}
	}
	flushRow()
	return rows
}

var (
	cellCode   = regexp.MustCompile("`([^`]+)`")
	cellStrong = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	cellEm     = regexp.MustCompile(`\*([^*]+)\*`)
	cellLink   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// renderCell escapes a cell and reapplies a small markdown subset: code
// spans, bold, italic, links. A bare "-" stands for an empty cell.
func renderCell(cell string) string {
	if strings.TrimSpace(cell) == "-" {
		return `<span class="table-empty">—</span>`
	}
	html := writer.EscapeText(cell)
	html = cellCode.ReplaceAllString(html, "<code>$1</code>")
	html = cellStrong.ReplaceAllString(html, "<strong>$1</strong>")
	html = cellEm.ReplaceAllString(html, "<em>$1</em>")
	html = cellLink.ReplaceAllString(html, `<a href="$2">$1</a>`)
	return html
}
