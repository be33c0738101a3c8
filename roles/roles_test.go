package roles

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/margay/margay/ast"
	"github.com/margay/margay/writer"
)

func TestBadges_ColorFromName(t *testing.T) {
	c := Badges()
	for name, color := range map[string]string{
		"bdg":         "secondary",
		"bdg-success": "success",
		"bdg-dark":    "dark",
	} {
		node := c.Parse(name, "stable", ast.SourceLocation{}).(*ast.Role)
		var buf writer.Buffer
		c.Render(node, &buf)
		require.Equal(t, `<span class="badge badge-`+color+`">stable</span>`, buf.String())
	}
}

func TestBadges_EmptyContentRendersNothing(t *testing.T) {
	c := Badges()
	node := c.Parse("bdg", "   ", ast.SourceLocation{}).(*ast.Role)
	var buf writer.Buffer
	c.Render(node, &buf)
	require.Empty(t, buf.String())
}

func TestBadges_ContentEscaped(t *testing.T) {
	c := Badges()
	node := c.Parse("bdg-info", "<script>", ast.SourceLocation{}).(*ast.Role)
	var buf writer.Buffer
	c.Render(node, &buf)
	require.Equal(t, `<span class="badge badge-info">&lt;script&gt;</span>`, buf.String())
}

func TestText_WrapsByName(t *testing.T) {
	c := Text()
	for name, want := range map[string]string{
		"code": "<code>x</code>",
		"kbd":  "<kbd>x</kbd>",
		"sub":  "<sub>x</sub>",
		"sup":  "<sup>x</sup>",
	} {
		var buf writer.Buffer
		c.Render(&ast.Role{Name: name, Content: "x"}, &buf)
		require.Equal(t, want, buf.String())
	}
}

func TestAbbr_WithExpansion(t *testing.T) {
	c := Abbr()
	var buf writer.Buffer
	c.Render(&ast.Role{Name: "abbr", Content: "HTML (HyperText Markup Language)"}, &buf)
	require.Equal(t, `<abbr title="HyperText Markup Language">HTML</abbr>`, buf.String())
}

func TestAbbr_WithoutExpansion(t *testing.T) {
	c := Abbr()
	var buf writer.Buffer
	c.Render(&ast.Role{Name: "abbr", Content: "API"}, &buf)
	require.Equal(t, "<abbr>API</abbr>", buf.String())
}
