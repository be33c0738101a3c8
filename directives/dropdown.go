package directives

import (
	"github.com/margay/margay/ast"
	"github.com/margay/margay/registry"
	"github.com/margay/margay/writer"
)

// Dropdown returns the contract for collapsible sections:
//
//	:::{dropdown} Click to expand
//	:open:
//	body
//	:::
func Dropdown() *registry.DirectiveContract {
	return &registry.DirectiveContract{
		Names: []string{"dropdown"},
		Options: registry.NewOptionSchema(
			registry.Field{Name: "open", Kind: registry.FieldBool},
			registry.Field{Name: "css_class", Aliases: []string{"class", "css-class"}, Kind: registry.FieldString},
		),
		ParseBody: true,
		Render:    renderDropdown,
	}
}

func renderDropdown(node *ast.Directive, renderedChildren string, out *writer.Buffer) {
	class := "dropdown"
	if extra := node.Options.String("css_class"); extra != "" {
		class += " " + extra
	}
	out.Raw(`<details class="`)
	out.Attr(class)
	out.Raw(`"`)
	if node.Options.Bool("open") {
		out.Raw(" open")
	}
	out.Raw(">\n<summary>")
	if node.Title != "" {
		out.Text(node.Title)
	} else {
		out.Raw("Details")
	}
	out.Raw("</summary>\n")
	out.Raw(renderedChildren)
	out.Raw("</details>")
}
