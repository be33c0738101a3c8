package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/margay/margay/ast"
	"github.com/margay/margay/registry"
)

func mustRegistry(t *testing.T, b *registry.Builder) *registry.Registry {
	t.Helper()
	reg, err := b.Build()
	require.NoError(t, err)
	return reg
}

func TestParse_HeadingAndParagraph(t *testing.T) {
	doc := Parse("# Title\n\nSome **bold** text.\n", Config{})
	require.Len(t, doc.Children, 2)

	h, ok := doc.Children[0].(*ast.Heading)
	require.True(t, ok)
	require.Equal(t, 1, h.Level)
	require.Equal(t, "Title", h.Children[0].(*ast.Text).Content)

	p, ok := doc.Children[1].(*ast.Paragraph)
	require.True(t, ok)
	require.Len(t, p.Children, 3)
	strong, ok := p.Children[1].(*ast.Strong)
	require.True(t, ok)
	require.Equal(t, "bold", strong.Children[0].(*ast.Text).Content)
}

func TestParse_ClosingHashesTrimmed(t *testing.T) {
	doc := Parse("## Title ##\n", Config{})
	h := doc.Children[0].(*ast.Heading)
	require.Equal(t, "Title", h.Children[0].(*ast.Text).Content)
}

func TestParse_CodeBlockVerbatim(t *testing.T) {
	doc := Parse("```go\nx := 1\n*not emphasis*\n```\n", Config{})
	require.Len(t, doc.Children, 1)
	cb := doc.Children[0].(*ast.CodeBlock)
	require.Equal(t, "go", cb.Info)
	require.Equal(t, "x := 1\n*not emphasis*", cb.Literal)
}

func TestParse_UnclosedFenceRunsToEOF(t *testing.T) {
	doc := Parse("```\ncode\n", Config{})
	cb := doc.Children[0].(*ast.CodeBlock)
	require.Equal(t, "code", cb.Literal)
}

func TestParse_BlockQuote(t *testing.T) {
	doc := Parse("> hello\n> world\n", Config{})
	require.Len(t, doc.Children, 1)
	q := doc.Children[0].(*ast.BlockQuote)
	p := q.Children[0].(*ast.Paragraph)
	require.Equal(t, "hello\nworld", p.Children[0].(*ast.Text).Content)
}

func TestParse_NestedBlockQuote(t *testing.T) {
	doc := Parse("> > inner\n", Config{})
	outer := doc.Children[0].(*ast.BlockQuote)
	inner := outer.Children[0].(*ast.BlockQuote)
	require.IsType(t, &ast.Paragraph{}, inner.Children[0])
}

func TestParse_BulletList(t *testing.T) {
	doc := Parse("- a\n- b\n", Config{})
	require.Len(t, doc.Children, 1)
	list := doc.Children[0].(*ast.List)
	require.False(t, list.Ordered)
	require.Len(t, list.Children, 2)
}

func TestParse_OrderedListKeepsStart(t *testing.T) {
	doc := Parse("3. x\n4. y\n", Config{})
	list := doc.Children[0].(*ast.List)
	require.True(t, list.Ordered)
	require.Equal(t, 3, list.Start)
	require.Len(t, list.Children, 2)
}

func TestParse_ChangedBulletStartsNewList(t *testing.T) {
	doc := Parse("- a\n+ b\n", Config{})
	require.Len(t, doc.Children, 2)
}

func TestParse_NestedList(t *testing.T) {
	doc := Parse("- a\n  - b\n", Config{})
	list := doc.Children[0].(*ast.List)
	require.Len(t, list.Children, 1)
	item := list.Children[0].(*ast.ListItem)
	// Paragraph "a" plus the nested list.
	require.Len(t, item.Children, 2)
	require.IsType(t, &ast.List{}, item.Children[1])
}

func TestParse_LazyContinuation(t *testing.T) {
	doc := Parse("- a\ncontinued\n", Config{})
	list := doc.Children[0].(*ast.List)
	item := list.Children[0].(*ast.ListItem)
	p := item.Children[0].(*ast.Paragraph)
	require.Equal(t, "a\ncontinued", p.Children[0].(*ast.Text).Content)
}

func TestParse_ThematicBreak(t *testing.T) {
	doc := Parse("a\n\n---\n\nb\n", Config{})
	require.Len(t, doc.Children, 3)
	require.IsType(t, &ast.ThematicBreak{}, doc.Children[1])
}

func TestParse_DirectiveWithOptionsAndBody(t *testing.T) {
	b := registry.NewBuilder()
	b.AddDirective(&registry.DirectiveContract{
		Names: []string{"box"},
		Options: registry.NewOptionSchema(
			registry.Field{Name: "count", Kind: registry.FieldInt, DefaultInt: 1},
		),
		ParseBody: true,
	})
	cfg := Config{Registry: mustRegistry(t, b)}

	doc := Parse(":::{box} My Title\n:count: 3\n\nbody text\n:::\n", cfg)
	require.Len(t, doc.Children, 1)
	d := doc.Children[0].(*ast.Directive)
	require.Equal(t, "box", d.Name)
	require.Equal(t, "My Title", d.Title)
	require.Equal(t, 3, d.Options.Int("count"))
	require.Empty(t, d.Err)
	require.Equal(t, "body text", d.RawContent)
	require.Len(t, d.Children, 1)
	require.IsType(t, &ast.Paragraph{}, d.Children[0])
}

func TestParse_DirectiveCoercionFailureFallsBack(t *testing.T) {
	b := registry.NewBuilder()
	b.AddDirective(&registry.DirectiveContract{
		Names: []string{"box"},
		Options: registry.NewOptionSchema(
			registry.Field{Name: "count", Kind: registry.FieldInt, DefaultInt: 7},
		),
		ParseBody: true,
	})
	cfg := Config{Registry: mustRegistry(t, b)}

	doc := Parse(":::{box}\n:count: banana\n:::\n", cfg)
	d := doc.Children[0].(*ast.Directive)
	require.Equal(t, 7, d.Options.Int("count"))
}

func TestParse_UnknownDirectiveFlagged(t *testing.T) {
	doc := Parse(":::{nonexistent}\ncontent\n:::\n", Config{})
	d := doc.Children[0].(*ast.Directive)
	require.Equal(t, "nonexistent", d.Name)
	require.Contains(t, d.Err, "nonexistent")
	// The body still parses so nothing is lost.
	require.Len(t, d.Children, 1)
}

func TestParse_RawBodyDirective(t *testing.T) {
	b := registry.NewBuilder()
	b.AddDirective(&registry.DirectiveContract{
		Names:     []string{"verbatim"},
		ParseBody: false,
	})
	cfg := Config{Registry: mustRegistry(t, b)}

	doc := Parse(":::{verbatim}\n# not a heading\n:::\n", cfg)
	d := doc.Children[0].(*ast.Directive)
	require.Equal(t, "# not a heading", d.RawContent)
	require.Empty(t, d.Children)
}

func TestParse_NestedDirectivesCloseInnermostFirst(t *testing.T) {
	b := registry.NewBuilder()
	b.AddDirective(&registry.DirectiveContract{Names: []string{"outer", "inner"}, ParseBody: true})
	cfg := Config{Registry: mustRegistry(t, b)}

	doc := Parse("::::{outer}\n:::{inner}\nx\n:::\n::::\n", cfg)
	require.Len(t, doc.Children, 1)
	outer := doc.Children[0].(*ast.Directive)
	require.Equal(t, "outer", outer.Name)
	require.Len(t, outer.Children, 1)
	require.Equal(t, "inner", outer.Children[0].(*ast.Directive).Name)
}

func TestParse_UnclosedDirectiveRunsToEOF(t *testing.T) {
	doc := Parse(":::{nonexistent}\ntail\n", Config{})
	d := doc.Children[0].(*ast.Directive)
	require.Equal(t, "tail", d.RawContent)
}

func TestParse_StrayCloseFenceIsText(t *testing.T) {
	doc := Parse(":::\n", Config{})
	require.Len(t, doc.Children, 1)
	require.IsType(t, &ast.Paragraph{}, doc.Children[0])
}

func TestParse_PipeTable(t *testing.T) {
	doc := Parse("A | B\n---|---:\n1 | 2\n", Config{Table: true})
	require.Len(t, doc.Children, 1)
	tbl := doc.Children[0].(*ast.Table)
	require.Equal(t, [][]string{{"A", "B"}, {"1", "2"}}, tbl.Rows)
	require.Equal(t, []ast.Alignment{ast.AlignNone, ast.AlignRight}, tbl.Alignments)
}

func TestParse_PipeTableDisabledStaysParagraph(t *testing.T) {
	doc := Parse("A | B\n---|---\n1 | 2\n", Config{})
	require.IsType(t, &ast.Paragraph{}, doc.Children[0])
}

func TestParse_MathBlock(t *testing.T) {
	doc := Parse("$$\nE = mc^2\n$$\n", Config{Math: true})
	mb := doc.Children[0].(*ast.MathBlock)
	require.Equal(t, "E = mc^2", mb.Literal)
}

func TestParse_DepthCeilingDegradesToLiteral(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		sb.WriteString(strings.Repeat("  ", i))
		sb.WriteString("- x\n")
	}
	doc := Parse(sb.String(), Config{MaxNestingDepth: 50})
	require.NotNil(t, doc)

	depth := 0
	maxDepth := 0
	lists := 0
	literal := false
	var walk func(ast.Node, int)
	walk = func(n ast.Node, d int) {
		if d > maxDepth {
			maxDepth = d
		}
		switch v := n.(type) {
		case *ast.List:
			lists++
		case *ast.Text:
			if strings.Contains(v.Content, "- x") {
				literal = true
			}
		}
		for _, c := range ast.ContainerChildren(n) {
			walk(c, d+1)
		}
	}
	walk(doc, depth)
	require.LessOrEqual(t, maxDepth, 52)

	// The ceiling must not close and reopen lists per deeper marker: one
	// list per permitted level, the rest accumulated as literal text.
	require.LessOrEqual(t, lists, 25)
	require.True(t, literal)
}

func TestParse_EmptyAndBlankInput(t *testing.T) {
	require.Empty(t, Parse("", Config{}).Children)
	require.Empty(t, Parse("\n\n\n", Config{}).Children)
}

func TestParse_LocationsTracked(t *testing.T) {
	doc := Parse("first\n\n# second\n", Config{})
	require.Equal(t, 1, doc.Children[0].Loc().Line)
	require.Equal(t, 3, doc.Children[1].Loc().Line)
	require.Equal(t, 7, doc.Children[1].Loc().Offset)
}
