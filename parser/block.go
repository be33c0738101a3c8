// Package parser turns source text into the typed AST: a block pass over
// scanner tokens driven by an explicit frame stack, followed by inline
// parsing of each finalized leaf.
//
// The frame stack replaces recursion: nesting depth is bounded by the
// configured ceiling, not the call stack. At the ceiling the parser stops
// opening frames and accumulates the offending lines as literal paragraph
// text in the nearest open container, so adversarial nesting degrades the
// output instead of the process.
package parser

import (
	"strings"

	"github.com/margay/margay/ast"
	"github.com/margay/margay/registry"
	"github.com/margay/margay/scanner"
)

// Defaults for the resource ceilings.
const (
	DefaultMaxNestingDepth   = 64
	DefaultMaxDelimiterStack = 128
)

// Config carries the per-pipeline parse settings. All fields are
// read-only during a parse; a single Config may serve concurrent calls.
type Config struct {
	Registry *registry.Registry

	// Dialect toggles, set by the pipeline from its plugin set.
	Table         bool
	Strikethrough bool
	Math          bool

	// MaxNestingDepth bounds the open-frame stack; zero means the
	// default.
	MaxNestingDepth int

	// MaxDelimiterStack bounds the inline delimiter stack; zero means
	// the default.
	MaxDelimiterStack int
}

func (c Config) maxDepth() int {
	if c.MaxNestingDepth > 0 {
		return c.MaxNestingDepth
	}
	return DefaultMaxNestingDepth
}

func (c Config) maxDelims() int {
	if c.MaxDelimiterStack > 0 {
		return c.MaxDelimiterStack
	}
	return DefaultMaxDelimiterStack
}

// Parse builds the document tree for src. It never fails: malformed
// input degrades to literal text by construction.
func Parse(src string, cfg Config) *ast.Document {
	p := &parser{
		src: src,
		cfg: cfg,
		scanCfg: scanner.Config{
			Math: cfg.Math,
		},
	}
	p.stack = append(p.stack, &frame{kind: frameDocument})

	sc := scanner.New(src, p.scanCfg)
	for {
		tok, ok := sc.Next()
		if !ok {
			break
		}
		p.curOffset = tok.Offset
		p.process(tok)
	}
	p.curOffset = len(src)
	p.closeTo(1)

	doc := &ast.Document{
		Location: ast.SourceLocation{Line: 1, Column: 1},
		Children: p.stack[0].children,
	}
	return doc
}

type frameKind uint8

const (
	frameDocument frameKind = iota
	frameQuote
	frameList
	frameListItem
	frameParagraph
	frameCode
	frameMath
	frameDirective
)

// frame is one open block on the stack.
type frame struct {
	kind frameKind
	loc  ast.SourceLocation

	children []ast.Node // finalized child blocks
	lines    []string   // accumulated raw lines (leaf frames)

	// Lists.
	ordered    bool
	start      int
	bullet     byte
	markerCol  int
	contentCol int

	// Code / math fences.
	quoteDepth int
	indent     int
	fenceChar  byte
	fenceLen   int
	info       string

	// Directives.
	name      string
	title     string
	contract  *registry.DirectiveContract
	rawOpts   []registry.RawOption
	optsPhase bool
	parseBody bool
	rawStart  int
	rawEnd    int
	errMsg    string
}

type parser struct {
	src       string
	cfg       Config
	scanCfg   scanner.Config
	stack     []*frame
	curOffset int
}

func (p *parser) top() *frame { return p.stack[len(p.stack)-1] }

func (p *parser) process(tok scanner.Token) {
	// Leaf fences absorb everything until their close line.
	switch p.top().kind {
	case frameCode:
		p.codeLine(tok)
		return
	case frameMath:
		p.mathLine(tok)
		return
	}

	// Option lines directly after a directive fence belong to that
	// directive; the first non-option line ends the option phase.
	if f := p.top(); f.kind == frameDirective && f.optsPhase {
		if tok.Kind == scanner.LineOption {
			f.rawOpts = append(f.rawOpts, registry.RawOption{Key: tok.OptionKey, Value: tok.OptionValue})
			return
		}
		f.optsPhase = false
	}
	p.markDirectiveRaw(tok)

	// A directive that keeps its body raw swallows everything except
	// its own close fence.
	if f := p.innermostDirective(); f != nil && !f.parseBody {
		if tok.Kind == scanner.LineDirectiveFence && tok.Name == "" && tok.FenceLen >= f.fenceLen {
			p.closeDirective(tok)
			return
		}
		return
	}

	matched, remQuote := p.matchContainers(tok)

	// Lazy continuation: a plain line extends an open paragraph even
	// when its container prefixes are missing.
	if tok.Kind == scanner.LineParagraph && remQuote == 0 && p.top().kind == frameParagraph {
		p.top().lines = append(p.top().lines, p.src[tok.ContentStart:tok.End])
		return
	}

	p.closeTo(matched)

	if tok.Kind == scanner.LineBlank {
		if p.top().kind == frameParagraph {
			p.closeTo(len(p.stack) - 1)
		}
		return
	}

	p.openBlocks(tok, remQuote, tok.Indent)
}

// matchContainers walks the open stack from the outside in and returns
// the number of frames the token's prefixes continue, plus the quote
// markers left unconsumed (which open new quotes).
func (p *parser) matchContainers(tok scanner.Token) (int, int) {
	rem := tok.QuoteDepth
	i := 1
	for ; i < len(p.stack); i++ {
		f := p.stack[i]
		switch f.kind {
		case frameQuote:
			if rem > 0 {
				rem--
				continue
			}
			return i, rem
		case frameList:
			continue
		case frameListItem:
			if tok.Kind == scanner.LineBlank {
				continue
			}
			if tok.Indent >= f.contentCol {
				continue
			}
			return i, rem
		case frameDirective:
			continue
		default:
			// Leaf frame: matching stops here.
			return i, rem
		}
	}
	return i, rem
}

// closeTo pops and finalizes frames until depth frames remain.
func (p *parser) closeTo(depth int) {
	for len(p.stack) > depth {
		f := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
		parent := p.stack[len(p.stack)-1]
		if node := p.finalize(f); node != nil {
			parent.children = append(parent.children, node)
		}
	}
}

// push adds a frame, honoring the depth ceiling. Returns false when the
// ceiling forbids the push; the caller then degrades to literal text.
func (p *parser) push(f *frame) bool {
	if len(p.stack) >= p.cfg.maxDepth() {
		return false
	}
	p.stack = append(p.stack, f)
	return true
}

// literalLine routes a line that could not open its block (depth ceiling)
// into a paragraph at the top of the stack.
func (p *parser) literalLine(tok scanner.Token) {
	text := p.src[tok.AfterQuote:tok.End]
	if p.top().kind != frameParagraph {
		f := &frame{kind: frameParagraph, loc: p.tokLoc(tok)}
		// One leaf above the ceiling is always allowed; it cannot nest.
		p.stack = append(p.stack, f)
	}
	p.top().lines = append(p.top().lines, text)
}

func (p *parser) tokLoc(tok scanner.Token) ast.SourceLocation {
	return ast.SourceLocation{Offset: tok.Offset, Line: tok.Line, Column: tok.Indent + 1}
}

// openBlocks starts whatever new structure the token calls for. effIndent
// is the token's indent column; it differs from tok.Indent for list-item
// remainders.
func (p *parser) openBlocks(tok scanner.Token, remQuote, effIndent int) {
	for remQuote > 0 {
		if !p.push(&frame{kind: frameQuote, loc: p.tokLoc(tok)}) {
			p.literalLine(tok)
			return
		}
		remQuote--
	}

	switch tok.Kind {
	case scanner.LineBlank:
		return

	case scanner.LineHeading:
		raw := trimATXSuffix(p.src[tok.ContentStart:tok.End])
		loc := p.tokLoc(tok)
		h := &ast.Heading{
			Location: loc,
			Level:    tok.HeadingLevel,
			Children: p.inlines(raw, contentLoc(tok)),
		}
		p.top().children = append(p.top().children, h)

	case scanner.LineThematicBreak:
		p.top().children = append(p.top().children, &ast.ThematicBreak{Location: p.tokLoc(tok)})

	case scanner.LineFence:
		f := &frame{
			kind:       frameCode,
			loc:        p.tokLoc(tok),
			quoteDepth: tok.QuoteDepth,
			indent:     effIndent,
			fenceChar:  tok.FenceChar,
			fenceLen:   tok.FenceLen,
			info:       tok.Info,
		}
		if !p.push(f) {
			p.literalLine(tok)
		}

	case scanner.LineMathFence:
		f := &frame{
			kind:       frameMath,
			loc:        p.tokLoc(tok),
			quoteDepth: tok.QuoteDepth,
			fenceChar:  '$',
			fenceLen:   2,
		}
		if !p.push(f) {
			p.literalLine(tok)
		}

	case scanner.LineDirectiveFence:
		if tok.Name == "" {
			p.closeDirective(tok)
			return
		}
		p.openDirective(tok)

	case scanner.LineListItem:
		p.openListItem(tok, effIndent)

	case scanner.LineOption, scanner.LineParagraph:
		if p.top().kind == frameParagraph {
			p.top().lines = append(p.top().lines, p.src[tok.ContentStart:tok.End])
			return
		}
		f := &frame{kind: frameParagraph, loc: p.tokLoc(tok)}
		f.lines = append(f.lines, p.src[tok.ContentStart:tok.End])
		if !p.push(f) {
			p.literalLine(tok)
		}
	}
}

func (p *parser) openDirective(tok scanner.Token) {
	f := &frame{
		kind:       frameDirective,
		loc:        p.tokLoc(tok),
		quoteDepth: tok.QuoteDepth,
		fenceChar:  ':',
		fenceLen:   tok.FenceLen,
		name:       tok.Name,
		title:      tok.Title,
		optsPhase:  true,
		parseBody:  true,
		rawStart:   -1,
		rawEnd:     -1,
	}
	if c := p.cfg.Registry.Directive(tok.Name); c != nil {
		f.contract = c
		f.parseBody = c.ParseBody
	} else {
		f.errMsg = "unknown directive: " + tok.Name
	}
	if !p.push(f) {
		p.literalLine(tok)
	}
}

// closeDirective handles a bare close fence: it finalizes the innermost
// directive whose fence the run can close, or degrades the line to
// paragraph text when no directive is open.
func (p *parser) closeDirective(tok scanner.Token) {
	for i := len(p.stack) - 1; i > 0; i-- {
		f := p.stack[i]
		if f.kind == frameDirective && tok.FenceLen >= f.fenceLen {
			f.rawEnd = tok.Offset
			p.closeTo(i)
			return
		}
	}
	// No open directive: the fence is ordinary text.
	if p.top().kind == frameParagraph {
		p.top().lines = append(p.top().lines, p.src[tok.ContentStart:tok.End])
		return
	}
	f := &frame{kind: frameParagraph, loc: p.tokLoc(tok)}
	f.lines = append(f.lines, p.src[tok.ContentStart:tok.End])
	if !p.push(f) {
		p.literalLine(tok)
	}
}

func (p *parser) openListItem(tok scanner.Token, effIndent int) {
	top := p.top()
	sameList := top.kind == frameList &&
		top.ordered == tok.Ordered &&
		(tok.Ordered || top.bullet == tok.Bullet) &&
		effIndent >= top.markerCol && effIndent < top.markerCol+4

	// Capacity check before any close/reopen: continuing a list needs one
	// slot (item), a fresh list needs two, and replacing the top list
	// frees a slot first. Without this, an at-ceiling list would be closed
	// and reopened for every deeper marker, emitting empty sibling lists
	// instead of literal text.
	need := 2
	if sameList || top.kind == frameList {
		need = 1
	}
	if len(p.stack)+need > p.cfg.maxDepth() {
		p.literalLine(tok)
		return
	}

	if top.kind == frameList && !sameList {
		p.closeTo(len(p.stack) - 1)
		top = p.top()
	}
	if top.kind != frameList || !sameList {
		list := &frame{
			kind:      frameList,
			loc:       p.tokLoc(tok),
			ordered:   tok.Ordered,
			start:     tok.OrderedStart,
			bullet:    tok.Bullet,
			markerCol: effIndent,
		}
		if !p.push(list) {
			p.literalLine(tok)
			return
		}
	}
	item := &frame{
		kind:       frameListItem,
		loc:        p.tokLoc(tok),
		contentCol: effIndent + tok.MarkerWidth,
	}
	if !p.push(item) {
		p.literalLine(tok)
		return
	}

	// The rest of the marker line may itself open a block ("* - cell",
	// "- > quoted", "1. # heading").
	if tok.ContentStart >= tok.End {
		return
	}
	rtok := scanner.ReclassifySpan(p.src, tok.ContentStart, tok.End, tok.Line, p.scanCfg)
	p.openBlocks(rtok, rtok.QuoteDepth, item.contentCol+rtok.Indent)
}

// codeLine feeds one line to the open code-fence frame.
func (p *parser) codeLine(tok scanner.Token) {
	f := p.top()
	if tok.Kind == scanner.LineFence &&
		tok.FenceChar == f.fenceChar &&
		tok.FenceLen >= f.fenceLen &&
		tok.Info == "" &&
		tok.QuoteDepth == f.quoteDepth {
		p.closeTo(len(p.stack) - 1)
		return
	}
	f.lines = append(f.lines, p.rawFenceLine(tok, f))
}

func (p *parser) mathLine(tok scanner.Token) {
	f := p.top()
	if tok.Kind == scanner.LineMathFence && tok.QuoteDepth == f.quoteDepth {
		p.closeTo(len(p.stack) - 1)
		return
	}
	f.lines = append(f.lines, p.rawFenceLine(tok, f))
}

// rawFenceLine recovers the verbatim line body for a fenced leaf,
// dedented by the fence's opening indentation.
func (p *parser) rawFenceLine(tok scanner.Token, f *frame) string {
	var raw string
	if f.quoteDepth == 0 {
		raw = p.src[tok.Offset:tok.End]
	} else {
		raw = p.src[tok.AfterQuote:tok.End]
	}
	return stripColumns(raw, f.indent)
}

// innermostDirective returns the deepest open directive frame, or nil.
func (p *parser) innermostDirective() *frame {
	for i := len(p.stack) - 1; i > 0; i-- {
		if p.stack[i].kind == frameDirective {
			return p.stack[i]
		}
	}
	return nil
}

// markDirectiveRaw records where the innermost directive's body text
// begins, once its option phase is over.
func (p *parser) markDirectiveRaw(tok scanner.Token) {
	f := p.innermostDirective()
	if f == nil || f.optsPhase || f.rawStart >= 0 {
		return
	}
	if tok.Kind == scanner.LineBlank {
		return
	}
	if tok.Kind == scanner.LineDirectiveFence && tok.Name == "" && tok.FenceLen >= f.fenceLen {
		return
	}
	f.rawStart = tok.Offset
}

// finalize converts a popped frame into its immutable node. Children were
// finalized first, so construction is bottom-up.
func (p *parser) finalize(f *frame) ast.Node {
	switch f.kind {
	case frameParagraph:
		raw := strings.Join(f.lines, "\n")
		if strings.TrimSpace(raw) == "" {
			return nil
		}
		if p.cfg.Table {
			if t := p.tryTable(f); t != nil {
				return t
			}
		}
		return &ast.Paragraph{Location: f.loc, Children: p.inlines(raw, f.loc)}

	case frameQuote:
		return &ast.BlockQuote{Location: f.loc, Children: f.children}

	case frameList:
		return &ast.List{Location: f.loc, Ordered: f.ordered, Start: f.start, Children: f.children}

	case frameListItem:
		return &ast.ListItem{Location: f.loc, Children: f.children}

	case frameCode:
		return &ast.CodeBlock{Location: f.loc, Info: f.info, Literal: strings.Join(f.lines, "\n")}

	case frameMath:
		return &ast.MathBlock{Location: f.loc, Literal: strings.Join(f.lines, "\n")}

	case frameDirective:
		return p.finalizeDirective(f)
	}
	return nil
}

func (p *parser) finalizeDirective(f *frame) ast.Node {
	rawEnd := f.rawEnd
	if rawEnd < 0 {
		rawEnd = p.curOffset
	}
	raw := ""
	if f.rawStart >= 0 && f.rawStart < rawEnd {
		raw = strings.TrimRight(p.src[f.rawStart:rawEnd], "\n")
	}

	var opts ast.Options
	var schema *registry.OptionSchema
	if f.contract != nil {
		schema = f.contract.Options
	}
	opts = schema.Decode(f.rawOpts)

	if f.contract != nil && f.contract.Parse != nil {
		return f.contract.Parse(f.name, f.title, opts, raw, f.children, f.loc)
	}
	return &ast.Directive{
		Location:   f.loc,
		Name:       f.name,
		Title:      f.title,
		Options:    opts,
		RawContent: raw,
		Children:   f.children,
		Err:        f.errMsg,
	}
}

// inlines runs the inline parser over a finalized leaf's raw text.
func (p *parser) inlines(raw string, loc ast.SourceLocation) []ast.Node {
	return parseInlines(raw, loc, p.cfg)
}

func contentLoc(tok scanner.Token) ast.SourceLocation {
	return ast.SourceLocation{Offset: tok.ContentStart, Line: tok.Line, Column: tok.Indent + 1}
}

// trimATXSuffix removes a trailing closing hash sequence ("## title ##").
func trimATXSuffix(s string) string {
	s = strings.TrimRight(s, " \t")
	i := len(s)
	for i > 0 && s[i-1] == '#' {
		i--
	}
	if i == len(s) {
		return s
	}
	if i == 0 {
		return ""
	}
	if s[i-1] == ' ' || s[i-1] == '\t' {
		return strings.TrimRight(s[:i], " \t")
	}
	return s
}

// stripColumns removes up to n columns of leading space from s.
func stripColumns(s string, n int) string {
	i := 0
	col := 0
	for i < len(s) && col < n {
		switch s[i] {
		case ' ':
			col++
		case '\t':
			col += 4 - col%4
		default:
			return s[i:]
		}
		i++
	}
	return s[i:]
}
