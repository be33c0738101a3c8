// Package htmlcheck inspects rendered HTML files for structural
// problems the renderer cannot see: empty link targets and duplicate
// heading anchors.
package htmlcheck

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/margay/margay/internal/errs"
)

// Issue is one finding in one file.
type Issue struct {
	File    string
	Message string
}

func (i Issue) String() string { return fmt.Sprintf("%s: %s", i.File, i.Message) }

// CheckDir parses every .html file under dir and returns all findings.
func CheckDir(dir string) ([]Issue, error) {
	var issues []Issue
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		found, checkErr := Check(f)
		if checkErr != nil {
			return fmt.Errorf("%s: %w", rel, checkErr)
		}
		for _, msg := range found {
			issues = append(issues, Issue{File: filepath.ToSlash(rel), Message: msg})
		}
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(err, errs.CategoryIO, "check output tree")
	}
	return issues, nil
}

// Check parses one HTML document and reports findings as messages.
func Check(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var msgs []string
	headingIDs := map[string]int{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				if href, ok := attr(n, "href"); ok && strings.TrimSpace(href) == "" {
					msgs = append(msgs, "link with empty href")
				}
			case "img":
				if src, ok := attr(n, "src"); ok && strings.TrimSpace(src) == "" {
					msgs = append(msgs, "image with empty src")
				}
			case "h1", "h2", "h3", "h4", "h5", "h6":
				if id, ok := attr(n, "id"); ok && id != "" {
					headingIDs[id]++
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	// Map order would make repeated runs disagree.
	ids := make([]string, 0, len(headingIDs))
	for id, count := range headingIDs {
		if count > 1 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		msgs = append(msgs, fmt.Sprintf("duplicate heading id %q (%d times)", id, headingIDs[id]))
	}
	return msgs, nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
