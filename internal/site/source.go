// Package site builds a tree of rendered HTML documents from a Markdown
// source: loading, caching, rendering and event publication.
package site

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/margay/margay/internal/errs"
)

// Source is a resolved document source: a local directory holding the
// Markdown tree.
type Source struct {
	// Dir is the directory the documents live in.
	Dir string

	// Cloned is set when Dir is a temporary clone the caller should
	// remove with Cleanup.
	Cloned bool
}

// OpenSource resolves a source reference. Plain paths must be existing
// directories; `git+<url>` (optionally `git+<url>#branch`) clones the
// repository into a temporary directory.
func OpenSource(ref string) (*Source, error) {
	if url, ok := strings.CutPrefix(ref, "git+"); ok {
		return cloneSource(url)
	}

	abs, err := filepath.Abs(ref)
	if err != nil {
		return nil, errs.Wrap(err, errs.CategoryIO, "resolve source path")
	}
	st, err := os.Stat(abs)
	if err != nil {
		return nil, errs.Wrap(err, errs.CategoryIO, "stat source")
	}
	if !st.IsDir() {
		return nil, errs.Newf(errs.CategoryConfig, "source %s is not a directory", abs)
	}
	return &Source{Dir: abs}, nil
}

func cloneSource(url string) (*Source, error) {
	branch := ""
	if i := strings.LastIndexByte(url, '#'); i > 0 {
		branch = url[i+1:]
		url = url[:i]
	}

	dir, err := os.MkdirTemp("", "margay-src-*")
	if err != nil {
		return nil, errs.Wrap(err, errs.CategoryIO, "create clone directory")
	}

	opts := &git.CloneOptions{URL: url, Depth: 1}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		opts.SingleBranch = true
	}

	slog.Debug("cloning source", "url", url, "branch", branch, "dir", dir)
	if _, err := git.PlainClone(dir, false, opts); err != nil {
		_ = os.RemoveAll(dir)
		return nil, errs.WrapRetryable(err, errs.CategoryIO, "clone source repository")
	}
	return &Source{Dir: dir, Cloned: true}, nil
}

// Cleanup removes a cloned checkout. Local directories are untouched.
func (s *Source) Cleanup() {
	if s.Cloned {
		_ = os.RemoveAll(s.Dir)
	}
}

// Documents returns the source-relative paths of all Markdown files,
// sorted for deterministic build order. Hidden directories are skipped.
func (s *Source) Documents() ([]string, error) {
	var docs []string
	err := filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != s.Dir && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(name), ".md") {
			rel, relErr := filepath.Rel(s.Dir, path)
			if relErr != nil {
				return relErr
			}
			docs = append(docs, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(err, errs.CategoryIO, "walk source tree")
	}
	sort.Strings(docs)
	return docs, nil
}

// Read returns the content of one source-relative document.
func (s *Source) Read(rel string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, errs.Wrap(err, errs.CategoryContent, "read document "+rel)
	}
	return data, nil
}
