package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDumpFnWithIfIndentsByBlock(t *testing.T) {
	f := &File{Decls: []Decl{
		&FnDecl{
			Name: "main",
			Body: &Block{Statements: []Stmt{
				&If{
					Cond: &Bool{Value: true},
					Then: &Block{Statements: []Stmt{&Return{Value: &Int{Value: 1}}}},
				},
			}},
		},
	}}
	out := Dump(f, "")
	assert.Contains(t, out, "Fn(main)")
	assert.Contains(t, out, "Block")
	assert.Contains(t, out, "If(true)")
	assert.Contains(t, out, "Return(return 1;)")
}

func TestDumpStructListsFieldsTypePrefixed(t *testing.T) {
	s := &StructDecl{Name: "P", Fields: []StructField{{Name: "x", Type: &Named{Name: "i32"}}}}
	out := Dump(s, "")
	assert.Equal(t, "Struct(P) { i32 x }", out)
}
