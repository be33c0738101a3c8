// Package ast defines the typed node set produced by the parser.
//
// Nodes form an owned tree: every node holds its children as an ordered
// slice, children are constructed before their parent, and there are no
// parent back-pointers. Once a node has been handed to a parent (or
// returned from a parse) it must be treated as immutable; nothing in this
// module mutates a node after construction, which is what makes sharing
// subtrees across goroutines safe.
package ast

// Kind tags a node variant. Renderers dispatch on the kind, never on the
// concrete type.
type Kind uint8

const (
	KindDocument Kind = iota
	KindHeading
	KindParagraph
	KindList
	KindListItem
	KindBlockQuote
	KindCodeBlock
	KindThematicBreak
	KindDirective
	KindTable

	KindText
	KindEmphasis
	KindStrong
	KindStrikethrough
	KindCodeSpan
	KindLink
	KindImage
	KindRole
	KindMathInline
	KindMathBlock
	KindHardBreak

	kindCount
)

var kindNames = [kindCount]string{
	"Document", "Heading", "Paragraph", "List", "ListItem", "BlockQuote",
	"CodeBlock", "ThematicBreak", "Directive", "Table",
	"Text", "Emphasis", "Strong", "Strikethrough", "CodeSpan", "Link",
	"Image", "Role", "MathInline", "MathBlock", "HardBreak",
}

// NumKinds is the number of node kinds; renderers size dispatch tables
// with it.
const NumKinds = int(kindCount)

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Node is the interface satisfied by every AST node.
type Node interface {
	Kind() Kind
	Loc() SourceLocation
}

// Document is the root node of a parsed source.
type Document struct {
	Location SourceLocation
	Children []Node
}

func (n *Document) Kind() Kind          { return KindDocument }
func (n *Document) Loc() SourceLocation { return n.Location }

// Heading is an ATX heading. Level is 1..6; Children are inline nodes.
type Heading struct {
	Location SourceLocation
	Level    int
	Children []Node
}

func (n *Heading) Kind() Kind          { return KindHeading }
func (n *Heading) Loc() SourceLocation { return n.Location }

// Paragraph holds inline children.
type Paragraph struct {
	Location SourceLocation
	Children []Node
}

func (n *Paragraph) Kind() Kind          { return KindParagraph }
func (n *Paragraph) Loc() SourceLocation { return n.Location }

// List is a bullet or ordered list of ListItem children.
type List struct {
	Location SourceLocation
	Ordered  bool
	Start    int // first number of an ordered list
	Children []Node
}

func (n *List) Kind() Kind          { return KindList }
func (n *List) Loc() SourceLocation { return n.Location }

// ListItem holds block children.
type ListItem struct {
	Location SourceLocation
	Children []Node
}

func (n *ListItem) Kind() Kind          { return KindListItem }
func (n *ListItem) Loc() SourceLocation { return n.Location }

// BlockQuote holds block children.
type BlockQuote struct {
	Location SourceLocation
	Children []Node
}

func (n *BlockQuote) Kind() Kind          { return KindBlockQuote }
func (n *BlockQuote) Loc() SourceLocation { return n.Location }

// CodeBlock is a fenced code block. Info is the trimmed info string
// ("python", possibly empty); Literal is the raw body, no trailing fence.
type CodeBlock struct {
	Location SourceLocation
	Info     string
	Literal  string
}

func (n *CodeBlock) Kind() Kind          { return KindCodeBlock }
func (n *CodeBlock) Loc() SourceLocation { return n.Location }

// ThematicBreak is a horizontal rule.
type ThematicBreak struct {
	Location SourceLocation
}

func (n *ThematicBreak) Kind() Kind          { return KindThematicBreak }
func (n *ThematicBreak) Loc() SourceLocation { return n.Location }

// Directive is a fenced block extension (`:::{name} title`).
//
// RawContent preserves the body text exactly as scanned (option lines
// stripped); Children hold the body parsed as blocks when the contract
// asked for that. Err is non-empty on degraded nodes (unknown name,
// unusable body); such nodes still render, as a visible marker.
type Directive struct {
	Location   SourceLocation
	Name       string
	Title      string
	Options    Options
	RawContent string
	Children   []Node
	Err        string
}

func (n *Directive) Kind() Kind          { return KindDirective }
func (n *Directive) Loc() SourceLocation { return n.Location }

// Alignment is a table column alignment.
type Alignment uint8

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Table is a pipe table (registered by the table plugin). Cells hold raw
// cell source; the renderer runs inline parsing per cell. The first row is
// the header row.
type Table struct {
	Location   SourceLocation
	Alignments []Alignment
	Rows       [][]string
}

func (n *Table) Kind() Kind          { return KindTable }
func (n *Table) Loc() SourceLocation { return n.Location }

// Text is a literal text run. Content is unescaped source text.
type Text struct {
	Location SourceLocation
	Content  string
}

func (n *Text) Kind() Kind          { return KindText }
func (n *Text) Loc() SourceLocation { return n.Location }

// Emphasis holds inline children.
type Emphasis struct {
	Location SourceLocation
	Children []Node
}

func (n *Emphasis) Kind() Kind          { return KindEmphasis }
func (n *Emphasis) Loc() SourceLocation { return n.Location }

// Strong holds inline children.
type Strong struct {
	Location SourceLocation
	Children []Node
}

func (n *Strong) Kind() Kind          { return KindStrong }
func (n *Strong) Loc() SourceLocation { return n.Location }

// Strikethrough holds inline children (strikethrough plugin).
type Strikethrough struct {
	Location SourceLocation
	Children []Node
}

func (n *Strikethrough) Kind() Kind          { return KindStrikethrough }
func (n *Strikethrough) Loc() SourceLocation { return n.Location }

// CodeSpan is inline code. Code is the raw span content.
type CodeSpan struct {
	Location SourceLocation
	Code     string
}

func (n *CodeSpan) Kind() Kind          { return KindCodeSpan }
func (n *CodeSpan) Loc() SourceLocation { return n.Location }

// Link holds inline children as the link text.
type Link struct {
	Location    SourceLocation
	Destination string
	Title       string
	Children    []Node
}

func (n *Link) Kind() Kind          { return KindLink }
func (n *Link) Loc() SourceLocation { return n.Location }

// Image carries its alt text as a plain string; nested markup inside alt
// text is flattened.
type Image struct {
	Location    SourceLocation
	Destination string
	Title       string
	Alt         string
}

func (n *Image) Kind() Kind          { return KindImage }
func (n *Image) Loc() SourceLocation { return n.Location }

// Role is an inline extension (`{name}` followed by backticked content).
type Role struct {
	Location SourceLocation
	Name     string
	Content  string
	Options  Options
	Err      string
}

func (n *Role) Kind() Kind          { return KindRole }
func (n *Role) Loc() SourceLocation { return n.Location }

// MathInline is `$...$` content (math plugin).
type MathInline struct {
	Location SourceLocation
	Literal  string
}

func (n *MathInline) Kind() Kind          { return KindMathInline }
func (n *MathInline) Loc() SourceLocation { return n.Location }

// MathBlock is `$$` fenced content (math plugin).
type MathBlock struct {
	Location SourceLocation
	Literal  string
}

func (n *MathBlock) Kind() Kind          { return KindMathBlock }
func (n *MathBlock) Loc() SourceLocation { return n.Location }

// HardBreak is an explicit line break inside a paragraph.
type HardBreak struct {
	Location SourceLocation
}

func (n *HardBreak) Kind() Kind          { return KindHardBreak }
func (n *HardBreak) Loc() SourceLocation { return n.Location }

// ContainerChildren returns the block or inline children of container
// kinds, and nil for leaves. Handy for generic walks.
func ContainerChildren(n Node) []Node {
	switch v := n.(type) {
	case *Document:
		return v.Children
	case *Heading:
		return v.Children
	case *Paragraph:
		return v.Children
	case *List:
		return v.Children
	case *ListItem:
		return v.Children
	case *BlockQuote:
		return v.Children
	case *Directive:
		return v.Children
	case *Emphasis:
		return v.Children
	case *Strong:
		return v.Children
	case *Strikethrough:
		return v.Children
	case *Link:
		return v.Children
	default:
		return nil
	}
}
