// Package frontmatter splits `---` delimited YAML metadata from a
// Markdown document and decodes the fields the builder cares about.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClose indicates an opening delimiter without a closing one.
var ErrMissingClose = errors.New("frontmatter: opening delimiter without closing delimiter")

// Meta carries the decoded document metadata. Unknown fields land in
// Extra untouched.
type Meta struct {
	Title string `yaml:"title"`
	Slug  string `yaml:"slug"`
	Draft bool   `yaml:"draft"`

	Extra map[string]any `yaml:"-"`
}

// Split separates the raw YAML block from the Markdown body. A document
// without frontmatter returns had == false and the full input as body.
func Split(content []byte) (raw, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	after := content[len(open):]
	// Empty frontmatter: the close follows immediately.
	if bytes.HasPrefix(after, open) {
		return nil, after[len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(after, closeSeq)
	if idx < 0 {
		// A close at EOF without trailing newline also counts.
		tail := []byte(nl + "---")
		if bytes.HasSuffix(after, tail) {
			return after[:len(after)-len(tail)+len(nl)], nil, true, nil
		}
		return nil, nil, false, ErrMissingClose
	}
	return after[:idx+len(nl)], after[idx+len(closeSeq):], true, nil
}

// Parse decodes the raw YAML block into Meta. Unknown keys are kept in
// Meta.Extra rather than dropped.
func Parse(raw []byte) (Meta, error) {
	var meta Meta
	if len(raw) == 0 {
		return meta, nil
	}
	if err := yaml.Unmarshal(raw, &meta); err != nil {
		return Meta{}, err
	}

	var all map[string]any
	if err := yaml.Unmarshal(raw, &all); err == nil {
		delete(all, "title")
		delete(all, "slug")
		delete(all, "draft")
		if len(all) > 0 {
			meta.Extra = all
		}
	}
	return meta, nil
}

func detectNewline(content []byte) string {
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}
