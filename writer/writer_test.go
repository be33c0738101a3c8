package writer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffer_EscapeBoundary(t *testing.T) {
	var b Buffer
	b.Raw("<p>")
	b.Text("a < b & c")
	b.Attr(`say "hi"`)
	b.Byte('!')
	require.Equal(t, `<p>a &lt; b &amp; c`+"say &quot;hi&quot;!", b.String())
}

func TestEscapeText(t *testing.T) {
	require.Equal(t, "plain", EscapeText("plain"))
	require.Equal(t, "&lt;&gt;&amp;", EscapeText("<>&"))
	// Quotes pass through in text position.
	require.Equal(t, `"q"`, EscapeText(`"q"`))
}

func TestEscapeAttr(t *testing.T) {
	require.Equal(t, "plain", EscapeAttr("plain"))
	require.Equal(t, "&quot;&lt;&amp;", EscapeAttr(`"<&`))
}

func TestEscapeText_Idempotent(t *testing.T) {
	once := EscapeText("a & b")
	require.Equal(t, "a &amp; b", once)
	// Escaping the escaped form again would double-escape; the buffer
	// contract is that it happens exactly once.
	require.NotEqual(t, once, EscapeText(once))
}
