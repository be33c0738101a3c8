package scanner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string, cfg Config) []Token {
	t.Helper()
	s := New(src, cfg)
	var toks []Token
	for {
		tok, ok := s.Next()
		if !ok {
			return toks
		}
		toks = append(toks, tok)
	}
}

func TestScanner_Heading(t *testing.T) {
	toks := scanAll(t, "## Title text\n", Config{})
	require.Len(t, toks, 1)
	require.Equal(t, LineHeading, toks[0].Kind)
	require.Equal(t, 2, toks[0].HeadingLevel)
	require.Equal(t, "Title text", "## Title text"[toks[0].ContentStart:toks[0].End])
}

func TestScanner_HeadingNeedsSpace(t *testing.T) {
	toks := scanAll(t, "#nope\n", Config{})
	require.Equal(t, LineParagraph, toks[0].Kind)
}

func TestScanner_SevenHashesIsParagraph(t *testing.T) {
	toks := scanAll(t, "####### too deep\n", Config{})
	require.Equal(t, LineParagraph, toks[0].Kind)
}

func TestScanner_CodeFence(t *testing.T) {
	toks := scanAll(t, "```python\n", Config{})
	require.Equal(t, LineFence, toks[0].Kind)
	require.Equal(t, byte('`'), toks[0].FenceChar)
	require.Equal(t, 3, toks[0].FenceLen)
	require.Equal(t, "python", toks[0].Info)
}

func TestScanner_DirectiveFence(t *testing.T) {
	toks := scanAll(t, ":::{note} Watch out\n", Config{})
	require.Equal(t, LineDirectiveFence, toks[0].Kind)
	require.Equal(t, "note", toks[0].Name)
	require.Equal(t, "Watch out", toks[0].Title)
	require.Equal(t, 3, toks[0].FenceLen)
}

func TestScanner_DirectiveCloseFence(t *testing.T) {
	toks := scanAll(t, ":::\n", Config{})
	require.Equal(t, LineDirectiveFence, toks[0].Kind)
	require.Empty(t, toks[0].Name)
}

func TestScanner_MalformedDirectiveIsParagraph(t *testing.T) {
	for _, src := range []string{":::{}\n", ":::{bad name}\n", "::: {note}\n", "::{note}\n"} {
		toks := scanAll(t, src, Config{})
		require.NotEqual(t, LineDirectiveFence, toks[0].Kind, "src %q", src)
	}
}

func TestScanner_OptionLine(t *testing.T) {
	toks := scanAll(t, ":header-rows: 1\n:open:\n", Config{})
	require.Equal(t, LineOption, toks[0].Kind)
	require.Equal(t, "header-rows", toks[0].OptionKey)
	require.Equal(t, "1", toks[0].OptionValue)
	require.Equal(t, LineOption, toks[1].Kind)
	require.Equal(t, "open", toks[1].OptionKey)
	require.Empty(t, toks[1].OptionValue)
}

func TestScanner_BlockquoteMarkers(t *testing.T) {
	toks := scanAll(t, "> > # deep\n", Config{})
	require.Equal(t, LineHeading, toks[0].Kind)
	require.Equal(t, 2, toks[0].QuoteDepth)
}

func TestScanner_BulletListItem(t *testing.T) {
	toks := scanAll(t, "- item\n", Config{})
	require.Equal(t, LineListItem, toks[0].Kind)
	require.Equal(t, byte('-'), toks[0].Bullet)
	require.False(t, toks[0].Ordered)
	require.Equal(t, "item", "- item"[toks[0].ContentStart:toks[0].End])
}

func TestScanner_OrderedListItem(t *testing.T) {
	toks := scanAll(t, "3. third\n", Config{})
	require.Equal(t, LineListItem, toks[0].Kind)
	require.True(t, toks[0].Ordered)
	require.Equal(t, 3, toks[0].OrderedStart)
}

func TestScanner_TenDigitOrdinalIsParagraph(t *testing.T) {
	toks := scanAll(t, "1234567890. nope\n", Config{})
	require.Equal(t, LineParagraph, toks[0].Kind)
}

func TestScanner_ThematicBreak(t *testing.T) {
	for _, src := range []string{"---\n", "* * *\n", "____\n"} {
		toks := scanAll(t, src, Config{})
		require.Equal(t, LineThematicBreak, toks[0].Kind, "src %q", src)
	}
}

func TestScanner_MathFenceGated(t *testing.T) {
	toks := scanAll(t, "$$\n", Config{})
	require.Equal(t, LineParagraph, toks[0].Kind)

	toks = scanAll(t, "$$\n", Config{Math: true})
	require.Equal(t, LineMathFence, toks[0].Kind)
}

func TestScanner_TabIndentWidth(t *testing.T) {
	toks := scanAll(t, "\tcode\n", Config{})
	require.Equal(t, 4, toks[0].Indent)
}

func TestScanner_CRLF(t *testing.T) {
	toks := scanAll(t, "# a\r\nb\r\n", Config{})
	require.Len(t, toks, 2)
	require.Equal(t, "a", "# a\r\nb\r\n"[toks[0].ContentStart:toks[0].End])
}

func TestScanner_OffsetsAdvance(t *testing.T) {
	src := "one\ntwo\n"
	toks := scanAll(t, src, Config{})
	require.Equal(t, 0, toks[0].Offset)
	require.Equal(t, 4, toks[1].Offset)
	require.Equal(t, 1, toks[0].Line)
	require.Equal(t, 2, toks[1].Line)
}

func TestReclassifySpan(t *testing.T) {
	src := "* - cell"
	tok := ReclassifySpan(src, 2, len(src), 1, Config{})
	require.Equal(t, LineListItem, tok.Kind)
	require.Equal(t, byte('-'), tok.Bullet)
	require.Equal(t, "cell", src[tok.ContentStart:tok.End])
}
