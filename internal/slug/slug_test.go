package slug

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Getting Started":    "getting-started",
		"  Spaces   galore ": "spaces-galore",
		"C++ & Go!":          "c-go",
		"Déjà Vu":            "deja-vu",
		"":                   "",
		"---":                "",
	}
	for in, want := range cases {
		require.Equal(t, want, Make(in), "input %q", in)
	}
}

func TestDedupe_Claim(t *testing.T) {
	var d Dedupe
	require.Equal(t, "x", d.Claim("x"))
	require.Equal(t, "x-1", d.Claim("x"))
	require.Equal(t, "x-2", d.Claim("x"))
	require.Equal(t, "y", d.Claim("y"))
}

func TestDedupe_EmptySlug(t *testing.T) {
	var d Dedupe
	first := d.Claim("")
	second := d.Claim("")
	require.NotEqual(t, first, second)
}
