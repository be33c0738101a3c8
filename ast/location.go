package ast

import "fmt"

// SourceLocation identifies where a node begins in the source text.
// Offset is a byte offset; Line and Column are 1-based.
type SourceLocation struct {
	Offset int
	Line   int
	Column int
}

// String renders the location as "line:column".
func (l SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}
