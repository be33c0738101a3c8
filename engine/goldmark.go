package engine

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// GoldmarkOptions selects the goldmark feature set.
type GoldmarkOptions struct {
	// GFM enables the GitHub extensions (tables, strikethrough,
	// autolinks, task lists).
	GFM bool

	// Unsafe passes raw HTML through instead of filtering it.
	Unsafe bool
}

type goldmarkEngine struct {
	md goldmark.Markdown
}

// Goldmark returns an Engine backed by goldmark. There is no output
// parity with the native pipeline; directives and roles render as the
// literal source text goldmark sees.
func Goldmark(opts GoldmarkOptions) Engine {
	var exts []goldmark.Option
	if opts.GFM {
		exts = append(exts, goldmark.WithExtensions(extension.GFM))
	}
	if opts.Unsafe {
		exts = append(exts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}
	return &goldmarkEngine{md: goldmark.New(exts...)}
}

func (e *goldmarkEngine) Render(src string) string {
	var sb strings.Builder
	if err := e.md.Convert([]byte(src), &sb); err != nil {
		// Convert only fails on writer errors; strings.Builder has none.
		return ""
	}
	return sb.String()
}
