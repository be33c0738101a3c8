// Package directives provides the builtin block directive contracts.
package directives

import (
	"strings"

	"github.com/margay/margay/ast"
	"github.com/margay/margay/registry"
	"github.com/margay/margay/writer"
)

var admonitionKinds = []string{"note", "tip", "important", "warning", "caution", "danger"}

// Admonition returns the contract for the callout directives
// (:::{note}, :::{warning}, ...).
//
// Output shape:
//
//	<div class="admonition note">
//	  <p class="admonition-title">Note</p>
//	  ...body...
//	</div>
func Admonition() *registry.DirectiveContract {
	return &registry.DirectiveContract{
		Names: admonitionKinds,
		Options: registry.NewOptionSchema(
			registry.Field{Name: "css_class", Aliases: []string{"class", "css-class"}, Kind: registry.FieldString},
		),
		ParseBody: true,
		Render:    renderAdmonition,
	}
}

func renderAdmonition(node *ast.Directive, renderedChildren string, out *writer.Buffer) {
	class := "admonition " + node.Name
	if extra := node.Options.String("css_class"); extra != "" {
		class += " " + extra
	}
	title := node.Title
	if title == "" {
		title = capitalize(node.Name)
	}

	out.Raw(`<div class="`)
	out.Attr(class)
	out.Raw(`">`)
	out.Raw("\n" + `<p class="admonition-title">`)
	out.Text(title)
	out.Raw("</p>\n")
	out.Raw(renderedChildren)
	out.Raw("</div>")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
