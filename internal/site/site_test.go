package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/margay/margay/engine"
)

func writeDoc(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func upperEngine() engine.Engine {
	return engine.Func(func(src string) string {
		return "<p>" + strings.ToUpper(strings.TrimSpace(src)) + "</p>"
	})
}

func TestOpenSource_LocalDirectory(t *testing.T) {
	dir := t.TempDir()
	src, err := OpenSource(dir)
	require.NoError(t, err)
	require.False(t, src.Cloned)
	require.Equal(t, dir, src.Dir)
}

func TestOpenSource_MissingPathFails(t *testing.T) {
	_, err := OpenSource(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}

func TestSource_DocumentsSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "b.md", "b")
	writeDoc(t, dir, "a.md", "a")
	writeDoc(t, dir, "sub/c.md", "c")
	writeDoc(t, dir, ".hidden/d.md", "d")
	writeDoc(t, dir, "notes.txt", "skip")

	src, err := OpenSource(dir)
	require.NoError(t, err)
	docs, err := src.Documents()
	require.NoError(t, err)
	require.Equal(t, []string{"a.md", "b.md", "sub/c.md"}, docs)
}

func TestCache_RoundTrip(t *testing.T) {
	cache, err := OpenCache(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	key := Key([]byte("content"))

	_, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Put(ctx, key, "<p>html</p>"))
	html, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "<p>html</p>", html)
}

func TestKey_ContentSensitive(t *testing.T) {
	require.Equal(t, Key([]byte("a")), Key([]byte("a")))
	require.NotEqual(t, Key([]byte("a")), Key([]byte("b")))
}

func TestBuilder_RendersTree(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "index.md", "hello")
	writeDoc(t, dir, "guide/setup.md", "---\ntitle: Setup\n---\nsteps")
	out := t.TempDir()

	src, err := OpenSource(dir)
	require.NoError(t, err)

	b := &Builder{Engine: upperEngine()}
	res, err := b.Build(context.Background(), src, out)
	require.NoError(t, err)
	require.Equal(t, 2, res.Rendered)
	require.Zero(t, res.Failed)
	require.NotEmpty(t, res.BuildID)

	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(index), "<p>HELLO</p>")

	setup, err := os.ReadFile(filepath.Join(out, "guide", "setup.html"))
	require.NoError(t, err)
	require.Contains(t, string(setup), "<title>Setup</title>")
	require.Contains(t, string(setup), "<p>STEPS</p>")
}

func TestBuilder_SkipsDrafts(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "wip.md", "---\ndraft: true\n---\nnot yet")
	out := t.TempDir()

	src, err := OpenSource(dir)
	require.NoError(t, err)
	res, err := (&Builder{Engine: upperEngine()}).Build(context.Background(), src, out)
	require.NoError(t, err)
	require.Equal(t, 1, res.Skipped)
	require.Zero(t, res.Rendered)
	require.NoFileExists(t, filepath.Join(out, "wip.html"))
}

func TestBuilder_SlugOverridesFileName(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "long-internal-name.md", "---\nslug: intro\n---\nx")
	out := t.TempDir()

	src, err := OpenSource(dir)
	require.NoError(t, err)
	_, err = (&Builder{Engine: upperEngine()}).Build(context.Background(), src, out)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(out, "intro.html"))
}

func TestBuilder_CacheShortCircuitsSecondBuild(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.md", "body")

	cache, err := OpenCache(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	src, err := OpenSource(dir)
	require.NoError(t, err)
	b := &Builder{Engine: upperEngine(), Cache: cache}

	res, err := b.Build(context.Background(), src, t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 1, res.Rendered)

	res, err = b.Build(context.Background(), src, t.TempDir())
	require.NoError(t, err)
	require.Zero(t, res.Rendered)
	require.Equal(t, 1, res.Cached)
}

func TestBuilder_BadFrontmatterCountsFailed(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "bad.md", "---\ntitle: x\nno close")
	writeDoc(t, dir, "good.md", "fine")
	out := t.TempDir()

	src, err := OpenSource(dir)
	require.NoError(t, err)
	res, err := (&Builder{Engine: upperEngine()}).Build(context.Background(), src, out)
	require.NoError(t, err)
	require.Equal(t, 1, res.Failed)
	require.Equal(t, 1, res.Rendered)
}

func TestPublisher_NilIsNoop(t *testing.T) {
	var p *Publisher
	require.NotPanics(t, func() {
		p.Publish(SubjectBuildStarted, BuildEvent{BuildID: "x"})
		p.Close()
	})
}

func TestOutputName(t *testing.T) {
	require.Equal(t, "a.html", outputName("a.md", ""))
	require.Equal(t, filepath.Join("sub", "b.html"), outputName("sub/b.md", ""))
	require.Equal(t, "custom.html", outputName("a.md", "custom"))
}
