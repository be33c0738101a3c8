// Package writer provides the append-only HTML output buffer the renderer
// and contract Render hooks write into.
//
// The buffer draws the escaping boundary: Text and Attr escape their input,
// Raw does not. Source text must cross the boundary exactly once — anything
// already rendered to HTML goes back in through Raw.
package writer

import "strings"

// Buffer accumulates HTML fragments. The zero value is ready to use.
// A Buffer is single-call state and must not be shared across goroutines.
type Buffer struct {
	sb strings.Builder
}

// Grow reserves capacity, typically proportional to the source length.
func (b *Buffer) Grow(n int) { b.sb.Grow(n) }

// Raw appends s without escaping. s must already be valid HTML.
func (b *Buffer) Raw(s string) { b.sb.WriteString(s) }

// Byte appends a single raw byte.
func (b *Buffer) Byte(c byte) { b.sb.WriteByte(c) }

// Text appends s with HTML text escaping applied.
func (b *Buffer) Text(s string) { b.sb.WriteString(EscapeText(s)) }

// Attr appends s escaped for use inside a double-quoted attribute value.
func (b *Buffer) Attr(s string) { b.sb.WriteString(EscapeAttr(s)) }

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int { return b.sb.Len() }

// String returns the accumulated HTML.
func (b *Buffer) String() string { return b.sb.String() }

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// EscapeText escapes s for HTML text content.
func EscapeText(s string) string {
	// Fast path: most text has nothing to escape.
	if !strings.ContainsAny(s, "&<>") {
		return s
	}
	return textEscaper.Replace(s)
}

// EscapeAttr escapes s for a double-quoted HTML attribute value.
func EscapeAttr(s string) string {
	if !strings.ContainsAny(s, `&<>"`) {
		return s
	}
	return attrEscaper.Replace(s)
}
