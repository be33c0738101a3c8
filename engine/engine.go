// Package engine defines the rendering boundary the CLI and site layer
// program against, so a document can be rendered by the native pipeline
// or by goldmark without the caller caring which.
package engine

// Engine renders Markdown source to HTML. Implementations must be safe
// for concurrent use.
type Engine interface {
	Render(src string) string
}

// Func adapts a plain function to the Engine interface.
type Func func(src string) string

func (f Func) Render(src string) string { return f(src) }
