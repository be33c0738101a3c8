package parser

import (
	"strings"

	"github.com/margay/margay/ast"
)

// parseInlines turns a leaf block's raw text into inline nodes.
//
// Two passes: a forward scan that resolves code spans, roles, math and
// links while collecting emphasis delimiter runs, then a back-to-front
// resolution of the remaining delimiters. Unmatched or malformed syntax
// always degrades to literal text.
func parseInlines(raw string, base ast.SourceLocation, cfg Config) []ast.Node {
	if raw == "" {
		return nil
	}
	ip := &inlineParser{raw: raw, base: base, cfg: cfg}
	ip.scan()
	return ip.buildNodes(ip.resolveEmphasis(ip.items))
}

// ParseInline parses a standalone raw span (a table cell, a directive
// title) into inline nodes under the same configuration as Parse.
func ParseInline(raw string, base ast.SourceLocation, cfg Config) []ast.Node {
	return parseInlines(raw, base, cfg)
}

// iitem is one entry of the inline work list: either a resolved node or a
// pending delimiter run.
type iitem struct {
	node  ast.Node
	delim *delim
}

type delim struct {
	ch      byte // '*', '_', '~', '[' (with image flag)
	n       int  // unconsumed run length
	pos     int  // index into raw
	canOpen bool
	canClose bool
	active  bool // bracket openers: still eligible for a link
	image   bool
}

type inlineParser struct {
	raw  string
	base ast.SourceLocation
	cfg  Config

	items    []iitem
	text     []byte // pending literal text
	brackets []int  // item indexes of open '[' delimiters
	delims   int    // live delimiter count, capped by MaxDelimiterStack

	// Failed forward searches, so pathological inputs stay linear.
	noBacktick map[int]int // run length -> position at which search first failed
	noMath     int         // `$` openers before this offset have no closer
}

func (ip *inlineParser) loc(pos int) ast.SourceLocation {
	return ast.SourceLocation{Offset: ip.base.Offset + pos, Line: ip.base.Line, Column: ip.base.Column}
}

func (ip *inlineParser) flushText() {
	if len(ip.text) == 0 {
		return
	}
	ip.items = append(ip.items, iitem{node: &ast.Text{Location: ip.loc(0), Content: string(ip.text)}})
	ip.text = ip.text[:0]
}

func (ip *inlineParser) pushDelim(d *delim) bool {
	if ip.delims >= ip.cfg.maxDelims() {
		return false
	}
	ip.flushText()
	ip.items = append(ip.items, iitem{delim: d})
	ip.delims++
	return true
}

func (ip *inlineParser) scan() {
	raw := ip.raw
	i := 0
	for i < len(raw) {
		c := raw[i]
		switch c {
		case '\\':
			if i+1 < len(raw) && raw[i+1] == '\n' {
				ip.flushText()
				ip.items = append(ip.items, iitem{node: &ast.HardBreak{Location: ip.loc(i)}})
				i += 2
				continue
			}
			if i+1 < len(raw) && isASCIIPunct(raw[i+1]) {
				ip.text = append(ip.text, raw[i+1])
				i += 2
				continue
			}
			ip.text = append(ip.text, '\\')
			i++

		case '\n':
			// Trailing spaces before the newline decide hard vs soft
			// break; either way they are dropped.
			trimmed := 0
			for len(ip.text) > 0 && ip.text[len(ip.text)-1] == ' ' {
				ip.text = ip.text[:len(ip.text)-1]
				trimmed++
			}
			if trimmed >= 2 {
				ip.flushText()
				ip.items = append(ip.items, iitem{node: &ast.HardBreak{Location: ip.loc(i)}})
			} else {
				ip.text = append(ip.text, '\n')
			}
			i++

		case '`':
			i = ip.scanCodeSpan(i)

		case '{':
			i = ip.scanRole(i)

		case '$':
			if ip.cfg.Math {
				i = ip.scanMath(i)
			} else {
				ip.text = append(ip.text, c)
				i++
			}

		case '*', '_':
			i = ip.scanEmphasisRun(i)

		case '~':
			if !ip.cfg.Strikethrough {
				ip.text = append(ip.text, c)
				i++
				continue
			}
			run := runLen(raw, i, '~')
			if run != 2 {
				ip.text = append(ip.text, raw[i:i+run]...)
				i += run
				continue
			}
			canOpen, canClose := flanking(raw, i, run, '~')
			if !ip.pushDelim(&delim{ch: '~', n: 2, pos: i, canOpen: canOpen, canClose: canClose}) {
				ip.text = append(ip.text, raw[i:i+run]...)
			}
			i += run

		case '!':
			if i+1 < len(raw) && raw[i+1] == '[' {
				if ip.pushDelim(&delim{ch: '[', n: 1, pos: i, active: true, image: true}) {
					ip.brackets = append(ip.brackets, len(ip.items)-1)
				} else {
					ip.text = append(ip.text, '!', '[')
				}
				i += 2
				continue
			}
			ip.text = append(ip.text, '!')
			i++

		case '[':
			if ip.pushDelim(&delim{ch: '[', n: 1, pos: i, active: true}) {
				ip.brackets = append(ip.brackets, len(ip.items)-1)
			} else {
				ip.text = append(ip.text, '[')
			}
			i++

		case ']':
			i = ip.scanCloseBracket(i)

		default:
			ip.text = append(ip.text, c)
			i++
		}
	}
	ip.flushText()
}

func (ip *inlineParser) scanEmphasisRun(i int) int {
	raw := ip.raw
	ch := raw[i]
	run := runLen(raw, i, ch)
	canOpen, canClose := flanking(raw, i, run, ch)
	if (!canOpen && !canClose) || !ip.pushDelim(&delim{ch: ch, n: run, pos: i, canOpen: canOpen, canClose: canClose}) {
		ip.text = append(ip.text, raw[i:i+run]...)
	}
	return i + run
}

// scanCodeSpan resolves a backtick run into a CodeSpan, or leaves it as
// literal text when no closing run of the same length exists.
func (ip *inlineParser) scanCodeSpan(i int) int {
	raw := ip.raw
	run := runLen(raw, i, '`')
	if limit, seen := ip.noBacktick[run]; seen && i >= limit {
		ip.text = append(ip.text, raw[i:i+run]...)
		return i + run
	}
	end := findRun(raw, i+run, '`', run)
	if end < 0 {
		if ip.noBacktick == nil {
			ip.noBacktick = make(map[int]int)
		}
		ip.noBacktick[run] = i
		ip.text = append(ip.text, raw[i:i+run]...)
		return i + run
	}
	code := strings.ReplaceAll(raw[i+run:end], "\n", " ")
	if len(code) >= 2 && code[0] == ' ' && code[len(code)-1] == ' ' && strings.TrimSpace(code) != "" {
		code = code[1 : len(code)-1]
	}
	ip.flushText()
	ip.items = append(ip.items, iitem{node: &ast.CodeSpan{Location: ip.loc(i), Code: code}})
	return end + run
}

// scanRole resolves `{name}` immediately followed by a backtick span.
// A registered name yields the contract's node; an unknown name keeps the
// entire original markup as literal text; anything not shaped like a role
// is a lone brace.
func (ip *inlineParser) scanRole(i int) int {
	raw := ip.raw
	j := i + 1
	for j < len(raw) && isNameByte(raw[j]) {
		j++
	}
	if j == i+1 || j >= len(raw) || raw[j] != '}' || j+1 >= len(raw) || raw[j+1] != '`' {
		ip.text = append(ip.text, '{')
		return i + 1
	}
	name := raw[i+1 : j]
	run := runLen(raw, j+1, '`')
	end := findRun(raw, j+1+run, '`', run)
	if end < 0 {
		ip.text = append(ip.text, '{')
		return i + 1
	}
	content := raw[j+1+run : end]
	after := end + run

	contract := ip.cfg.Registry.Role(name)
	if contract == nil {
		// Unknown role: the original markup is its own error marker.
		ip.text = append(ip.text, raw[i:after]...)
		return after
	}
	ip.flushText()
	var node ast.Node
	if contract.Parse != nil {
		node = contract.Parse(name, content, ip.loc(i))
	} else {
		node = &ast.Role{Location: ip.loc(i), Name: name, Content: content}
	}
	ip.items = append(ip.items, iitem{node: node})
	return after
}

func (ip *inlineParser) scanMath(i int) int {
	raw := ip.raw
	if i < ip.noMath {
		ip.text = append(ip.text, '$')
		return i + 1
	}
	if i+1 >= len(raw) || raw[i+1] == ' ' || raw[i+1] == '$' {
		ip.text = append(ip.text, '$')
		return i + 1
	}
	end := -1
	stop := len(raw)
	for j := i + 1; j < len(raw); j++ {
		if raw[j] == '\n' {
			stop = j
			break
		}
		if raw[j] == '$' && raw[j-1] != ' ' && raw[j-1] != '\\' {
			end = j
			break
		}
	}
	if end < 0 {
		// Nothing up to stop can close an inline span either.
		ip.noMath = stop
		ip.text = append(ip.text, '$')
		return i + 1
	}
	ip.flushText()
	ip.items = append(ip.items, iitem{node: &ast.MathInline{Location: ip.loc(i), Literal: raw[i+1 : end]}})
	return end + 1
}

// scanCloseBracket tries to complete the nearest open bracket into a
// Link or Image using the `(dest "title")` tail.
func (ip *inlineParser) scanCloseBracket(i int) int {
	if len(ip.brackets) == 0 {
		ip.text = append(ip.text, ']')
		return i + 1
	}
	openerIdx := ip.brackets[len(ip.brackets)-1]
	ip.brackets = ip.brackets[:len(ip.brackets)-1]
	opener := ip.items[openerIdx].delim

	dest, title, after, ok := parseLinkTail(ip.raw, i+1)
	if !ok || !opener.active {
		// The opener reverts to literal text; the ']' stays literal too.
		ip.items[openerIdx] = iitem{node: &ast.Text{Location: ip.loc(opener.pos), Content: bracketText(opener)}}
		ip.delims--
		ip.text = append(ip.text, ']')
		return i + 1
	}

	ip.flushText()
	sub := make([]iitem, len(ip.items)-openerIdx-1)
	copy(sub, ip.items[openerIdx+1:])
	children := ip.buildNodes(ip.resolveEmphasis(sub))
	ip.items = ip.items[:openerIdx]
	ip.delims--

	loc := ip.loc(opener.pos)
	if opener.image {
		ip.items = append(ip.items, iitem{node: &ast.Image{
			Location:    loc,
			Destination: dest,
			Title:       title,
			Alt:         flattenText(children),
		}})
	} else {
		ip.items = append(ip.items, iitem{node: &ast.Link{
			Location:    loc,
			Destination: dest,
			Title:       title,
			Children:    children,
		}})
		// Links do not nest: earlier openers can no longer form links.
		for _, idx := range ip.brackets {
			if d := ip.items[idx].delim; d != nil && !d.image {
				d.active = false
			}
		}
	}
	return after
}

func bracketText(d *delim) string {
	if d.image {
		return "!["
	}
	return "["
}

// parseLinkTail parses `(dest)`, `(dest "title")` or `(<dest> 'title')`
// starting at pos (just past the `]`).
func parseLinkTail(raw string, pos int) (dest, title string, after int, ok bool) {
	i := pos
	if i >= len(raw) || raw[i] != '(' {
		return "", "", 0, false
	}
	i++
	for i < len(raw) && (raw[i] == ' ' || raw[i] == '\n') {
		i++
	}
	if i < len(raw) && raw[i] == '<' {
		end := strings.IndexByte(raw[i:], '>')
		if end < 0 || strings.Contains(raw[i:i+end], "\n") {
			return "", "", 0, false
		}
		dest = raw[i+1 : i+end]
		i += end + 1
	} else {
		start := i
		depth := 0
		for i < len(raw) {
			c := raw[i]
			if c == ' ' || c == '\n' {
				break
			}
			if c == '(' {
				depth++
			}
			if c == ')' {
				if depth == 0 {
					break
				}
				depth--
			}
			if c == '\\' && i+1 < len(raw) {
				i++
			}
			i++
		}
		dest = raw[start:i]
	}
	for i < len(raw) && (raw[i] == ' ' || raw[i] == '\n') {
		i++
	}
	if i < len(raw) && (raw[i] == '"' || raw[i] == '\'') {
		quote := raw[i]
		end := strings.IndexByte(raw[i+1:], quote)
		if end < 0 {
			return "", "", 0, false
		}
		title = raw[i+1 : i+1+end]
		i += end + 2
		for i < len(raw) && (raw[i] == ' ' || raw[i] == '\n') {
			i++
		}
	}
	if i >= len(raw) || raw[i] != ')' {
		return "", "", 0, false
	}
	return dest, title, i + 1, true
}

// resolveEmphasis matches the remaining delimiter runs, preferring the
// innermost pair and consuming two markers at a time for Strong when both
// runs allow it. Leftover run lengths stay on the delimiters and are
// emitted as literal text by buildNodes. The spliced list is returned.
func (ip *inlineParser) resolveEmphasis(items []iitem) []iitem {
	for closerIdx := 0; closerIdx < len(items); {
		closer := items[closerIdx].delim
		if closer == nil || !closer.canClose || closer.n == 0 || closer.ch == '[' {
			closerIdx++
			continue
		}
		openerIdx := -1
		for k := closerIdx - 1; k >= 0; k-- {
			d := items[k].delim
			if d != nil && d.ch == closer.ch && d.canOpen && d.n > 0 {
				openerIdx = k
				break
			}
		}
		if openerIdx < 0 {
			closerIdx++
			continue
		}
		opener := items[openerIdx].delim

		use := 1
		if closer.ch == '~' {
			use = 2
		} else if opener.n >= 2 && closer.n >= 2 {
			use = 2
		}
		opener.n -= use
		closer.n -= use

		inner := make([]iitem, closerIdx-openerIdx-1)
		copy(inner, items[openerIdx+1:closerIdx])
		children := ip.buildNodes(inner)

		// The consumed markers sit after any leftover run on the opener.
		loc := ip.loc(opener.pos + opener.n)
		var node ast.Node
		switch {
		case closer.ch == '~':
			node = &ast.Strikethrough{Location: loc, Children: children}
		case use == 2:
			node = &ast.Strong{Location: loc, Children: children}
		default:
			node = &ast.Emphasis{Location: loc, Children: children}
		}

		// Splice: keep opener (it may have leftover markers), replace the
		// span with the node, keep closer.
		tail := make([]iitem, 0, len(items)-closerIdx+1)
		tail = append(tail, iitem{node: node})
		tail = append(tail, items[closerIdx:]...)
		items = append(items[:openerIdx+1], tail...)
		closerIdx = openerIdx + 2 // the closer moved here
	}
	return items
}

// buildNodes converts the resolved item list into nodes, turning leftover
// delimiters into literal text and merging adjacent text nodes.
func (ip *inlineParser) buildNodes(items []iitem) []ast.Node {
	var out []ast.Node
	var pending *ast.Text
	appendText := func(loc ast.SourceLocation, s string) {
		if s == "" {
			return
		}
		if pending != nil {
			pending.Content += s
			return
		}
		pending = &ast.Text{Location: loc, Content: s}
	}
	flush := func() {
		if pending != nil {
			out = append(out, pending)
			pending = nil
		}
	}
	for _, it := range items {
		if it.delim != nil {
			if it.delim.n > 0 {
				var s string
				if it.delim.ch == '[' {
					s = bracketText(it.delim)
				} else {
					s = strings.Repeat(string(it.delim.ch), it.delim.n)
				}
				appendText(ip.loc(it.delim.pos), s)
			}
			continue
		}
		if t, isText := it.node.(*ast.Text); isText {
			appendText(t.Location, t.Content)
			continue
		}
		flush()
		out = append(out, it.node)
	}
	flush()
	return out
}

// flattenText reduces inline nodes to plain text for image alt content.
func flattenText(nodes []ast.Node) string {
	var b strings.Builder
	var walk func([]ast.Node)
	walk = func(ns []ast.Node) {
		for _, n := range ns {
			switch v := n.(type) {
			case *ast.Text:
				b.WriteString(v.Content)
			case *ast.CodeSpan:
				b.WriteString(v.Code)
			case *ast.Role:
				b.WriteString(v.Content)
			case *ast.MathInline:
				b.WriteString(v.Literal)
			default:
				walk(ast.ContainerChildren(n))
			}
		}
	}
	walk(nodes)
	return b.String()
}

func runLen(s string, i int, ch byte) int {
	n := 0
	for i+n < len(s) && s[i+n] == ch {
		n++
	}
	return n
}

// findRun locates the next run of exactly want ch bytes at or after i,
// returning its start index or -1.
func findRun(s string, i int, ch byte, want int) int {
	for i < len(s) {
		j := strings.IndexByte(s[i:], ch)
		if j < 0 {
			return -1
		}
		i += j
		n := runLen(s, i, ch)
		if n == want {
			return i
		}
		i += n
	}
	return -1
}

// flanking classifies a delimiter run per the usual whitespace and
// punctuation rules, with the underscore intraword restriction.
func flanking(s string, i, n int, ch byte) (canOpen, canClose bool) {
	var before, after byte = ' ', ' '
	if i > 0 {
		before = s[i-1]
	}
	if i+n < len(s) {
		after = s[i+n]
	}
	beforeSpace, afterSpace := isSpaceByte(before), isSpaceByte(after)
	beforePunct, afterPunct := isASCIIPunct(before), isASCIIPunct(after)

	left := !afterSpace && (!afterPunct || beforeSpace || beforePunct)
	right := !beforeSpace && (!beforePunct || afterSpace || afterPunct)

	if ch == '_' {
		canOpen = left && (!right || beforePunct)
		canClose = right && (!left || afterPunct)
		return canOpen, canClose
	}
	return left, right
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n'
}

func isASCIIPunct(b byte) bool {
	return (b >= '!' && b <= '/') || (b >= ':' && b <= '@') || (b >= '[' && b <= '`') || (b >= '{' && b <= '~')
}

func isNameByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9', b == '-', b == '_':
		return true
	}
	return false
}
