// Package slug derives URL-safe anchor ids from heading text.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics decomposes and strips combining marks, so "Café" slugs
// to "cafe".
var foldDiacritics = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Make converts heading text into a lowercase, hyphen-separated anchor id.
// Returns "" when nothing survives (punctuation-only headings).
func Make(text string) string {
	folded, _, err := transform.String(foldDiacritics, text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastHyphen := true // suppress leading hyphens
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Dedupe tracks ids handed out for one document and suffixes repeats
// ("intro", "intro-1", "intro-2"). Not safe for concurrent use; allocate
// one per render call.
type Dedupe struct {
	seen map[string]int
}

// Claim returns a unique variant of id for this document.
func (d *Dedupe) Claim(id string) string {
	if id == "" {
		id = "section"
	}
	if d.seen == nil {
		d.seen = make(map[string]int)
	}
	n, ok := d.seen[id]
	d.seen[id] = n + 1
	if !ok {
		return id
	}
	// Keep probing in case "id-N" was itself claimed earlier.
	for {
		candidate := id + "-" + itoa(n)
		if _, taken := d.seen[candidate]; !taken {
			d.seen[candidate] = 1
			return candidate
		}
		n++
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
