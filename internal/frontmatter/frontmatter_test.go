package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter(t *testing.T) {
	raw, body, had, err := Split([]byte("# Just markdown\n"))
	require.NoError(t, err)
	require.False(t, had)
	require.Nil(t, raw)
	require.Equal(t, "# Just markdown\n", string(body))
}

func TestSplit_WithFrontmatter(t *testing.T) {
	src := []byte("---\ntitle: Hello\n---\nbody text\n")
	raw, body, had, err := Split(src)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "title: Hello\n", string(raw))
	require.Equal(t, "body text\n", string(body))
}

func TestSplit_EmptyFrontmatter(t *testing.T) {
	_, body, had, err := Split([]byte("---\n---\nbody\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "body\n", string(body))
}

func TestSplit_MissingClose(t *testing.T) {
	_, _, _, err := Split([]byte("---\ntitle: x\nno close"))
	require.ErrorIs(t, err, ErrMissingClose)
}

func TestSplit_CRLF(t *testing.T) {
	raw, body, had, err := Split([]byte("---\r\ntitle: x\r\n---\r\nbody\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "title: x\r\n", string(raw))
	require.Equal(t, "body\r\n", string(body))
}

func TestParse_KnownAndExtraFields(t *testing.T) {
	meta, err := Parse([]byte("title: Hi\ndraft: true\nauthor: ada\n"))
	require.NoError(t, err)
	require.Equal(t, "Hi", meta.Title)
	require.True(t, meta.Draft)
	require.Equal(t, "ada", meta.Extra["author"])
}

func TestParse_Empty(t *testing.T) {
	meta, err := Parse(nil)
	require.NoError(t, err)
	require.Empty(t, meta.Title)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte(":\n:bad\n"))
	require.Error(t, err)
}
