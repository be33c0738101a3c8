// Package registry holds the directive and role contracts a pipeline is
// built with.
//
// A Registry is assembled exactly once, by the pipeline factory, and is
// read-only afterwards. Because no writer exists after construction,
// concurrent lookups from parallel parse calls need no synchronization.
package registry

import (
	"fmt"

	"github.com/margay/margay/ast"
	"github.com/margay/margay/internal/sets"
	"github.com/margay/margay/writer"
)

// DirectiveContract is what a plugin registers for one or more block
// directive names. All fields are read-only after registration.
type DirectiveContract struct {
	// Names this contract answers to (e.g. "note", "warning").
	Names []string

	// Options declares the typed option fields; nil means the directive
	// takes no options and any option lines are dropped.
	Options *OptionSchema

	// ParseBody asks the block parser to parse the directive body into
	// child block nodes. When false the body is only kept as RawContent.
	ParseBody bool

	// Parse builds the node from the finalized frame. A nil Parse gets
	// the default Directive node.
	Parse func(name, title string, opts ast.Options, raw string, children []ast.Node, loc ast.SourceLocation) ast.Node

	// Render writes the node. renderedChildren is already HTML and must
	// be written with Buffer.Raw.
	Render func(node *ast.Directive, renderedChildren string, out *writer.Buffer)
}

// RoleContract is the inline counterpart, for `{name}` + backtick spans.
type RoleContract struct {
	Names []string

	// Parse builds the node; nil gets the default Role node.
	Parse func(name, content string, loc ast.SourceLocation) ast.Node

	// Render writes the node.
	Render func(node *ast.Role, out *writer.Buffer)
}

// Registry maps directive and role names to their contracts. Lookups are
// allocation-free.
type Registry struct {
	directives map[string]*DirectiveContract
	roles      map[string]*RoleContract
}

// Directive returns the contract registered for name, or nil.
func (r *Registry) Directive(name string) *DirectiveContract {
	if r == nil {
		return nil
	}
	return r.directives[name]
}

// Role returns the contract registered for name, or nil.
func (r *Registry) Role(name string) *RoleContract {
	if r == nil {
		return nil
	}
	return r.roles[name]
}

// DirectiveNames returns the sorted registered directive names.
func (r *Registry) DirectiveNames() []string {
	s := sets.New[string]()
	for name := range r.directives {
		s.Add(name)
	}
	return sets.Sorted(s)
}

// Builder accumulates contracts during pipeline construction. Register
// calls fail fast on duplicate names; Build freezes the result.
type Builder struct {
	reg Registry
	err error
}

// NewBuilder returns an empty registry builder.
func NewBuilder() *Builder {
	return &Builder{reg: Registry{
		directives: make(map[string]*DirectiveContract),
		roles:      make(map[string]*RoleContract),
	}}
}

// AddDirective registers c under each of its names.
func (b *Builder) AddDirective(c *DirectiveContract) *Builder {
	if b.err != nil {
		return b
	}
	for _, name := range c.Names {
		if _, dup := b.reg.directives[name]; dup {
			b.err = fmt.Errorf("duplicate directive contract %q", name)
			return b
		}
		b.reg.directives[name] = c
	}
	return b
}

// AddRole registers c under each of its names.
func (b *Builder) AddRole(c *RoleContract) *Builder {
	if b.err != nil {
		return b
	}
	for _, name := range c.Names {
		if _, dup := b.reg.roles[name]; dup {
			b.err = fmt.Errorf("duplicate role contract %q", name)
			return b
		}
		b.reg.roles[name] = c
	}
	return b
}

// Build returns the frozen registry, or the first registration error.
func (b *Builder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &b.reg, nil
}
