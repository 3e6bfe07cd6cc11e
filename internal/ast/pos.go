// Package ast defines the Czar abstract syntax tree, per spec §3: top-level
// declarations, statements, expressions, and the Type variants they carry.
package ast

import "fmt"

// Pos is a source position carried by every node for diagnostics.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}
