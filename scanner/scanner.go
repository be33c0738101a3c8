// Package scanner performs the single forward pass that classifies each
// physical line of the source into a block-level token.
//
// The scanner is permissive: a line that almost looks like a marker but
// fails its shape check is classified as a paragraph line, never rejected.
// No character is visited again once its line has been classified; marker
// lookahead is bounded by the marker itself.
package scanner

import "strings"

// Kind classifies a scanned line.
type Kind uint8

const (
	LineBlank Kind = iota
	LineHeading
	LineThematicBreak
	LineFence          // backtick or tilde code fence
	LineDirectiveFence // colon fence, with or without {name}
	LineMathFence      // $$ fence (math plugin)
	LineListItem
	LineOption // :key: value
	LineParagraph
)

// Token is one classified line. Offsets index into the scanned source.
type Token struct {
	Kind Kind

	Line         int // 1-based line number
	Offset       int // byte offset of the line start
	AfterQuote   int // byte offset after quote markers, before indentation
	ContentStart int // byte offset after quote markers, indent and list marker
	End          int // byte offset of the line end (newline excluded)

	QuoteDepth int // number of leading "> " markers
	Indent     int // column width of indentation after quote markers

	// Heading.
	HeadingLevel int

	// Code / directive / math fences.
	FenceChar byte   // '`', '~', ':' or '$'
	FenceLen  int    // marker run length
	Info      string // code fence info string
	Name      string // directive name inside {...}, "" on a bare close fence
	Title     string // directive title text after {name}

	// List items.
	Ordered      bool
	OrderedStart int
	Bullet       byte // '-', '+' or '*' for bullet items
	MarkerWidth  int  // marker plus trailing spaces; content column is Indent+MarkerWidth

	// Option lines.
	OptionKey   string
	OptionValue string
}

// Scanner classifies lines of one source text. Allocate one per parse
// call via New; a Scanner is not reusable across sources.
type Scanner struct {
	src  string
	pos  int
	line int
	math bool
}

// Config toggles dialect-dependent line classes.
type Config struct {
	// Math enables `$$` fence recognition.
	Math bool
}

// New returns a scanner over src.
func New(src string, cfg Config) *Scanner {
	return &Scanner{src: src, math: cfg.Math}
}

// Next classifies the next line. It returns false once the source is
// exhausted.
func (s *Scanner) Next() (Token, bool) {
	if s.pos >= len(s.src) {
		return Token{}, false
	}
	s.line++
	start := s.pos
	end := start
	for end < len(s.src) && s.src[end] != '\n' {
		end++
	}
	next := end
	if next < len(s.src) {
		next++ // consume the newline
	}
	s.pos = next

	// Carriage returns are treated as trailing whitespace.
	trimmedEnd := end
	if trimmedEnd > start && s.src[trimmedEnd-1] == '\r' {
		trimmedEnd--
	}

	tok := Token{
		Line:   s.line,
		Offset: start,
		End:    trimmedEnd,
	}
	s.classify(&tok, start, trimmedEnd)
	return tok, true
}

// ReclassifySpan classifies [start, end) of src as if it started a line.
// The block parser uses it for the remainder of a list-item line, which
// may itself open another marker ("* - cell"). Lookahead stays bounded by
// the marker being examined.
func ReclassifySpan(src string, start, end, lineNo int, cfg Config) Token {
	s := &Scanner{src: src, math: cfg.Math}
	tok := Token{Line: lineNo, Offset: start, End: end}
	s.classify(&tok, start, end)
	return tok
}

// classify fills in tok for the line spanning [start, end).
func (s *Scanner) classify(tok *Token, start, end int) {
	i := start

	// Strip leading blockquote markers: up to 3 spaces of indent, '>',
	// optional one space, repeated.
	for {
		j, indent := skipIndent(s.src, i, end)
		if indent <= 3 && j < end && s.src[j] == '>' {
			j++
			if j < end && s.src[j] == ' ' {
				j++
			}
			tok.QuoteDepth++
			i = j
			continue
		}
		tok.AfterQuote = i
		tok.Indent = indent
		i = j
		break
	}
	tok.ContentStart = i

	if i >= end {
		tok.Kind = LineBlank
		return
	}

	rest := s.src[i:end]

	switch rest[0] {
	case '#':
		if s.scanHeading(tok, rest) {
			return
		}
	case '`', '~':
		if s.scanCodeFence(tok, rest) {
			return
		}
	case ':':
		if s.scanDirectiveFence(tok, rest) {
			return
		}
		if s.scanOption(tok, rest) {
			return
		}
	case '$':
		if s.math && s.scanMathFence(tok, rest) {
			return
		}
	}

	if isThematicBreak(rest) {
		tok.Kind = LineThematicBreak
		return
	}
	if s.scanListMarker(tok, rest) {
		return
	}
	tok.Kind = LineParagraph
}

func (s *Scanner) scanHeading(tok *Token, rest string) bool {
	level := 0
	for level < len(rest) && rest[level] == '#' {
		level++
	}
	if level > 6 {
		return false
	}
	if level < len(rest) && rest[level] != ' ' && rest[level] != '\t' {
		return false
	}
	tok.Kind = LineHeading
	tok.HeadingLevel = level
	after := level
	for after < len(rest) && (rest[after] == ' ' || rest[after] == '\t') {
		after++
	}
	tok.ContentStart += after
	return true
}

func (s *Scanner) scanCodeFence(tok *Token, rest string) bool {
	ch := rest[0]
	run := 0
	for run < len(rest) && rest[run] == ch {
		run++
	}
	if run < 3 {
		return false
	}
	info := strings.TrimSpace(rest[run:])
	// An info string containing the fence character cannot open a
	// backtick fence (CommonMark); treat as paragraph.
	if ch == '`' && strings.ContainsRune(info, '`') {
		return false
	}
	tok.Kind = LineFence
	tok.FenceChar = ch
	tok.FenceLen = run
	tok.Info = info
	return true
}

func (s *Scanner) scanDirectiveFence(tok *Token, rest string) bool {
	run := 0
	for run < len(rest) && rest[run] == ':' {
		run++
	}
	if run < 3 {
		return false
	}
	after := rest[run:]
	tok.FenceChar = ':'
	tok.FenceLen = run
	if strings.TrimSpace(after) == "" {
		// Bare close fence.
		tok.Kind = LineDirectiveFence
		return true
	}
	// The brace must follow the run directly; "::: {note}" with a space
	// is ordinary text.
	if after[0] != '{' {
		return false
	}
	close := strings.IndexByte(after, '}')
	if close < 0 {
		return false
	}
	name := strings.TrimSpace(after[1:close])
	if name == "" || !isDirectiveName(name) {
		return false
	}
	tok.Kind = LineDirectiveFence
	tok.Name = name
	tok.Title = strings.TrimSpace(after[close+1:])
	return true
}

func (s *Scanner) scanMathFence(tok *Token, rest string) bool {
	run := 0
	for run < len(rest) && rest[run] == '$' {
		run++
	}
	if run != 2 || strings.TrimSpace(rest[run:]) != "" {
		return false
	}
	tok.Kind = LineMathFence
	tok.FenceChar = '$'
	tok.FenceLen = 2
	return true
}

// scanOption matches `:key:` or `:key: value` lines used inside
// directive bodies. The block parser decides whether the context makes
// them options; anywhere else they are demoted to paragraph lines.
func (s *Scanner) scanOption(tok *Token, rest string) bool {
	if len(rest) < 3 || rest[0] != ':' {
		return false
	}
	close := strings.IndexByte(rest[1:], ':')
	if close <= 0 {
		return false
	}
	key := rest[1 : 1+close]
	if !isOptionKey(key) {
		return false
	}
	after := rest[close+2:]
	if after != "" && after[0] != ' ' && after[0] != '\t' {
		return false
	}
	tok.Kind = LineOption
	tok.OptionKey = key
	tok.OptionValue = strings.TrimSpace(after)
	return true
}

func (s *Scanner) scanListMarker(tok *Token, rest string) bool {
	switch rest[0] {
	case '-', '+', '*':
		if len(rest) == 1 {
			// A bare marker opens an empty item.
			tok.Kind = LineListItem
			tok.Bullet = rest[0]
			tok.MarkerWidth = 2
			tok.ContentStart += 1
			return true
		}
		if rest[1] != ' ' && rest[1] != '\t' {
			return false
		}
		w := 2
		for w < len(rest) && w < 5 && rest[w] == ' ' {
			w++
		}
		if w >= len(rest) {
			w = 2 // blank after marker: content column is marker+1
		}
		tok.Kind = LineListItem
		tok.Bullet = rest[0]
		tok.MarkerWidth = w
		tok.ContentStart += w
		return true
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		d := 0
		n := 0
		for d < len(rest) && d < 9 && rest[d] >= '0' && rest[d] <= '9' {
			n = n*10 + int(rest[d]-'0')
			d++
		}
		if d >= len(rest) || (rest[d] != '.' && rest[d] != ')') {
			return false
		}
		m := d + 1
		if m < len(rest) && rest[m] != ' ' && rest[m] != '\t' {
			return false
		}
		w := m
		if w < len(rest) {
			w++
			for w < len(rest) && w < m+4 && rest[w] == ' ' {
				w++
			}
		} else {
			w = m + 1
		}
		tok.Kind = LineListItem
		tok.Ordered = true
		tok.OrderedStart = n
		tok.MarkerWidth = w
		if tok.ContentStart+w <= tok.End {
			tok.ContentStart += w
		} else {
			tok.ContentStart = tok.End
		}
		return true
	}
	return false
}

// skipIndent advances over spaces and tabs, returning the new position and
// the column width covered (tab stops of 4).
func skipIndent(src string, i, end int) (int, int) {
	col := 0
	for i < end {
		switch src[i] {
		case ' ':
			col++
		case '\t':
			col += 4 - col%4
		default:
			return i, col
		}
		i++
	}
	return i, col
}

func isThematicBreak(rest string) bool {
	var ch byte
	count := 0
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if c == ' ' || c == '\t' {
			continue
		}
		if c != '-' && c != '_' && c != '*' {
			return false
		}
		if ch == 0 {
			ch = c
		} else if c != ch {
			return false
		}
		count++
	}
	return count >= 3
}

func isDirectiveName(name string) bool {
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

func isOptionKey(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
