package site

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/margay/margay/engine"
	"github.com/margay/margay/internal/errs"
	"github.com/margay/margay/internal/frontmatter"
)

// Builder renders every Markdown document under a source into an output
// directory. Cache and Events are optional.
type Builder struct {
	Engine engine.Engine
	Cache  *Cache
	Events *Publisher
}

// Result summarizes one build.
type Result struct {
	BuildID  string
	Rendered int
	Cached   int
	Skipped  int
	Failed   int
	Elapsed  time.Duration
}

// Build renders src into outDir. Individual document failures are logged
// and counted but do not abort the build; an error return means the
// build as a whole could not run.
func (b *Builder) Build(ctx context.Context, src *Source, outDir string) (*Result, error) {
	if b.Engine == nil {
		return nil, errs.New(errs.CategoryConfig, "builder has no engine")
	}
	start := time.Now()
	res := &Result{BuildID: uuid.NewString()}
	log := slog.With("build_id", res.BuildID)

	docs, err := src.Documents()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errs.Wrap(err, errs.CategoryIO, "create output directory")
	}

	log.Info("build started", "source", src.Dir, "documents", len(docs))
	b.Events.Publish(SubjectBuildStarted, BuildEvent{BuildID: res.BuildID, Timestamp: start})

	for _, rel := range docs {
		if err := ctx.Err(); err != nil {
			return res, errs.Wrap(err, errs.CategoryBuild, "build canceled")
		}
		if err := b.buildDoc(ctx, log, src, outDir, rel, res); err != nil {
			res.Failed++
			log.Error("document failed", "doc", rel, "error", err)
		}
	}

	res.Elapsed = time.Since(start)
	log.Info("build completed",
		"rendered", res.Rendered, "cached", res.Cached,
		"skipped", res.Skipped, "failed", res.Failed,
		"elapsed", res.Elapsed)
	b.Events.Publish(SubjectBuildCompleted, BuildEvent{
		BuildID:   res.BuildID,
		Timestamp: time.Now(),
		Rendered:  res.Rendered,
		Failed:    res.Failed,
		Elapsed:   res.Elapsed.String(),
	})
	return res, nil
}

func (b *Builder) buildDoc(ctx context.Context, log *slog.Logger, src *Source, outDir, rel string, res *Result) error {
	content, err := src.Read(rel)
	if err != nil {
		return err
	}

	raw, body, _, err := frontmatter.Split(content)
	if err != nil {
		return errs.Wrap(err, errs.CategoryContent, rel)
	}
	meta, err := frontmatter.Parse(raw)
	if err != nil {
		return errs.Wrap(err, errs.CategoryContent, rel)
	}
	if meta.Draft {
		res.Skipped++
		log.Debug("skipping draft", "doc", rel)
		return nil
	}

	cached := false
	key := Key(content)
	var html string
	if b.Cache != nil {
		if hit, ok, cacheErr := b.Cache.Get(ctx, key); cacheErr != nil {
			log.Warn("cache read failed", "doc", rel, "error", cacheErr)
		} else if ok {
			html, cached = hit, true
		}
	}
	if !cached {
		html = page(title(meta, rel), b.Engine.Render(string(body)))
		if b.Cache != nil {
			if cacheErr := b.Cache.Put(ctx, key, html); cacheErr != nil {
				log.Warn("cache write failed", "doc", rel, "error", cacheErr)
			}
		}
	}

	outPath := filepath.Join(outDir, outputName(rel, meta.Slug))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return errs.Wrap(err, errs.CategoryIO, "create output subdirectory")
	}
	if err := os.WriteFile(outPath, []byte(html), 0o644); err != nil {
		return errs.Wrap(err, errs.CategoryIO, "write "+outPath)
	}

	if cached {
		res.Cached++
	} else {
		res.Rendered++
	}
	b.Events.Publish(SubjectDocRendered, BuildEvent{
		BuildID:   res.BuildID,
		Timestamp: time.Now(),
		Doc:       rel,
		Cached:    cached,
	})
	return nil
}

// outputName maps a source-relative .md path to its .html output path,
// honoring a frontmatter slug for the file name.
func outputName(rel, slug string) string {
	dir := filepath.Dir(rel)
	name := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	if slug != "" {
		name = slug
	}
	out := name + ".html"
	if dir != "." {
		out = filepath.Join(dir, out)
	}
	return out
}

func title(meta frontmatter.Meta, rel string) string {
	if meta.Title != "" {
		return meta.Title
	}
	return strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
}

// page wraps rendered body HTML in a minimal document shell.
func page(title, body string) string {
	var sb strings.Builder
	sb.Grow(len(body) + 128)
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	sb.WriteString(escapeTitle(title))
	sb.WriteString("</title>\n</head>\n<body>\n")
	sb.WriteString(body)
	sb.WriteString("</body>\n</html>\n")
	return sb.String()
}

func escapeTitle(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
