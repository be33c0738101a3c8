package parser

import (
	"strings"

	"github.com/margay/margay/ast"
)

// tryTable reinterprets a finalized paragraph as a pipe table when the
// table plugin is enabled: a header row containing '|' followed by a
// delimiter row. Returns nil when the shape does not hold, in which case
// the paragraph stands.
func (p *parser) tryTable(f *frame) ast.Node {
	lines := f.lines
	if len(lines) < 2 || !strings.Contains(lines[0], "|") {
		return nil
	}
	aligns, ok := parseDelimiterRow(lines[1])
	if !ok {
		return nil
	}
	header := splitTableRow(lines[0])
	if len(header) != len(aligns) {
		return nil
	}

	rows := make([][]string, 0, len(lines)-1)
	rows = append(rows, header)
	for _, ln := range lines[2:] {
		cells := splitTableRow(ln)
		// Normalize ragged rows to the header width.
		for len(cells) < len(header) {
			cells = append(cells, "")
		}
		rows = append(rows, cells[:len(header)])
	}
	return &ast.Table{Location: f.loc, Alignments: aligns, Rows: rows}
}

// parseDelimiterRow recognizes rows like `|---|:--:|` and returns the
// column alignments.
func parseDelimiterRow(line string) ([]ast.Alignment, bool) {
	cells := splitTableRow(line)
	if len(cells) == 0 {
		return nil, false
	}
	aligns := make([]ast.Alignment, 0, len(cells))
	for _, cell := range cells {
		if cell == "" {
			return nil, false
		}
		left := strings.HasPrefix(cell, ":")
		right := strings.HasSuffix(cell, ":")
		body := strings.TrimSuffix(strings.TrimPrefix(cell, ":"), ":")
		if body == "" || strings.Trim(body, "-") != "" {
			return nil, false
		}
		switch {
		case left && right:
			aligns = append(aligns, ast.AlignCenter)
		case left:
			aligns = append(aligns, ast.AlignLeft)
		case right:
			aligns = append(aligns, ast.AlignRight)
		default:
			aligns = append(aligns, ast.AlignNone)
		}
	}
	return aligns, true
}

// splitTableRow splits a row on unescaped pipes, dropping the optional
// leading and trailing pipe and trimming each cell.
func splitTableRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")

	var cells []string
	var cur strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '\\' && i+1 < len(line) && line[i+1] == '|' {
			cur.WriteByte('|')
			i++
			continue
		}
		if c == '|' {
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	cells = append(cells, strings.TrimSpace(cur.String()))
	return cells
}
