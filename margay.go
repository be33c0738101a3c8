// Package margay is a MyST-flavored Markdown to HTML engine.
//
// A Pipeline is assembled once from a plugin set and reused: parsing is
// stateless per call, so one Pipeline may serve any number of goroutines.
// Content never fails a render; malformed constructs degrade to literal
// text or visible error markers. Configuration mistakes (unknown plugin,
// duplicate contract name) fail New before any document is parsed.
package margay

import (
	"fmt"
	"strings"

	"github.com/margay/margay/ast"
	"github.com/margay/margay/directives"
	"github.com/margay/margay/internal/sets"
	"github.com/margay/margay/parser"
	"github.com/margay/margay/registry"
	"github.com/margay/margay/renderer"
	"github.com/margay/margay/roles"
)

// Plugin names accepted by New.
const (
	PluginTable         = "table"         // pipe tables + list-table directive
	PluginStrikethrough = "strikethrough" // ~~text~~
	PluginMath          = "math"          // $...$ and $$ blocks
	PluginAdmonition    = "admonition"    // note/tip/important/warning/caution/danger
	PluginDropdown      = "dropdown"      // collapsible <details> sections
	PluginRole          = "role"          // badge and text roles
)

// DefaultPlugins is the plugin set used when Config.Plugins is nil.
var DefaultPlugins = []string{
	PluginTable, PluginStrikethrough, PluginMath,
	PluginAdmonition, PluginDropdown, PluginRole,
}

var knownPlugins = sets.New(
	PluginTable, PluginStrikethrough, PluginMath,
	PluginAdmonition, PluginDropdown, PluginRole,
)

// Config selects the dialect and resource ceilings for a Pipeline.
type Config struct {
	// Plugins is the requested plugin set; nil means DefaultPlugins,
	// an explicit empty slice means CommonMark core only. Unknown names
	// fail New.
	Plugins []string

	// Highlight routes fenced code blocks through Highlighter when set.
	Highlight   bool
	Highlighter func(lang, code string) (string, bool)

	// MaxNestingDepth bounds block nesting; zero means the parser default.
	MaxNestingDepth int

	// MaxDelimiterStack bounds the inline delimiter stack; zero means the
	// parser default.
	MaxDelimiterStack int
}

// Pipeline converts source text to HTML. Safe for concurrent use; output
// depends only on the input text and the Config it was built with.
type Pipeline struct {
	parseCfg  parser.Config
	renderCfg renderer.Config
}

// New validates cfg, builds the contract registry, and returns a
// reusable Pipeline.
func New(cfg Config) (*Pipeline, error) {
	plugins := cfg.Plugins
	if plugins == nil {
		plugins = DefaultPlugins
	}
	enabled := sets.New[string]()
	for _, name := range plugins {
		if !knownPlugins.Has(name) {
			return nil, fmt.Errorf("unknown plugin %q (known: %s)",
				name, strings.Join(sets.Sorted(knownPlugins), ", "))
		}
		enabled.Add(name)
	}

	b := registry.NewBuilder()
	if enabled.Has(PluginAdmonition) {
		b.AddDirective(directives.Admonition())
	}
	if enabled.Has(PluginDropdown) {
		b.AddDirective(directives.Dropdown())
	}
	if enabled.Has(PluginTable) {
		b.AddDirective(directives.ListTable())
	}
	if enabled.Has(PluginRole) {
		b.AddRole(roles.Badges())
		b.AddRole(roles.Text())
		b.AddRole(roles.Abbr())
	}
	reg, err := b.Build()
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		parseCfg: parser.Config{
			Registry:          reg,
			Table:             enabled.Has(PluginTable),
			Strikethrough:     enabled.Has(PluginStrikethrough),
			Math:              enabled.Has(PluginMath),
			MaxNestingDepth:   cfg.MaxNestingDepth,
			MaxDelimiterStack: cfg.MaxDelimiterStack,
		},
		renderCfg: renderer.Config{
			Registry:    reg,
			Highlight:   cfg.Highlight,
			Highlighter: cfg.Highlighter,
		},
	}
	p.renderCfg.Inline = func(raw string, loc ast.SourceLocation) []ast.Node {
		return parser.ParseInline(raw, loc, p.parseCfg)
	}
	return p, nil
}

// Parse returns the document tree for src. It never fails.
func (p *Pipeline) Parse(src string) *ast.Document {
	return parser.Parse(src, p.parseCfg)
}

// Render converts src to HTML. It never fails.
func (p *Pipeline) Render(src string) string {
	return renderer.Render(p.Parse(src), p.renderCfg)
}
