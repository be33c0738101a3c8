package roles

import (
	"strings"

	"github.com/margay/margay/ast"
	"github.com/margay/margay/registry"
	"github.com/margay/margay/writer"
)

// textTags maps role names to the HTML element that wraps the content.
var textTags = map[string]string{
	"code": "code",
	"kbd":  "kbd",
	"sub":  "sub",
	"sup":  "sup",
}

// Text returns the contract for simple wrapping roles: {code}, {kbd},
// {sub}, {sup}.
func Text() *registry.RoleContract {
	return &registry.RoleContract{
		Names: []string{"code", "kbd", "sub", "sup"},
		Render: func(node *ast.Role, out *writer.Buffer) {
			tag := textTags[node.Name]
			out.Raw("<" + tag + ">")
			out.Text(node.Content)
			out.Raw("</" + tag + ">")
		},
	}
}

// Abbr returns the contract for the {abbr} role. Content of the form
// "HTML (HyperText Markup Language)" becomes an <abbr> with the
// parenthesized expansion as its title; without parentheses the content
// is wrapped as-is.
func Abbr() *registry.RoleContract {
	return &registry.RoleContract{
		Names: []string{"abbr"},
		Render: func(node *ast.Role, out *writer.Buffer) {
			short, title := splitAbbr(node.Content)
			if title != "" {
				out.Raw(`<abbr title="`)
				out.Attr(title)
				out.Raw(`">`)
			} else {
				out.Raw("<abbr>")
			}
			out.Text(short)
			out.Raw("</abbr>")
		},
	}
}

func splitAbbr(content string) (short, title string) {
	open := strings.IndexByte(content, '(')
	if open < 0 || !strings.HasSuffix(content, ")") {
		return strings.TrimSpace(content), ""
	}
	short = strings.TrimSpace(content[:open])
	title = strings.TrimSpace(content[open+1 : len(content)-1])
	if short == "" {
		return strings.TrimSpace(content), ""
	}
	return short, title
}
