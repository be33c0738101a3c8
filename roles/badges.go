// Package roles provides the builtin inline role contracts.
package roles

import (
	"strings"

	"github.com/margay/margay/ast"
	"github.com/margay/margay/registry"
	"github.com/margay/margay/writer"
)

// Badges returns the contract for inline badge/pill elements:
//
//	{bdg}`text`          default (secondary) badge
//	{bdg-success}`text`  colored badge
//
// An empty badge renders nothing.
func Badges() *registry.RoleContract {
	return &registry.RoleContract{
		Names: []string{
			"bdg",
			"bdg-primary",
			"bdg-secondary",
			"bdg-success",
			"bdg-warning",
			"bdg-danger",
			"bdg-info",
			"bdg-light",
			"bdg-dark",
		},
		Parse: func(name, content string, loc ast.SourceLocation) ast.Node {
			return &ast.Role{Location: loc, Name: name, Content: strings.TrimSpace(content)}
		},
		Render: renderBadge,
	}
}

func renderBadge(node *ast.Role, out *writer.Buffer) {
	if node.Content == "" {
		return
	}
	color := "secondary"
	if node.Name != "bdg" {
		color = strings.TrimPrefix(node.Name, "bdg-")
	}
	out.Raw(`<span class="badge badge-`)
	out.Attr(color)
	out.Raw(`">`)
	out.Text(node.Content)
	out.Raw("</span>")
}
