// Package pipeline threads one source file through Czar's five compiler
// stages. Grounded on the teacher's internal/pipeline/compile_unit.go: a
// single plain struct carrying each stage's artifact, retargeted from
// AILANG's Surface/Core/Iface/TypeEnv shape to Czar's
// Tokens/AST/Checked/Lowered/Output shape.
package pipeline

import (
	"github.com/shkschneider/czar/internal/ast"
	"github.com/shkschneider/czar/internal/lexer"
	"github.com/shkschneider/czar/internal/lower"
	"github.com/shkschneider/czar/internal/typecheck"
)

// CompileUnit carries one file's artifacts through lex/parse/check/lower/
// emit. In cmd/czar, `generator`/`build`/`run` read Output through
// Compile; the `lexer` and `parser` subcommands call those stages
// directly and do not use a CompileUnit.
type CompileUnit struct {
	File   string
	Source string

	Tokens  []lexer.Token
	AST     *ast.File
	Checked *typecheck.Checked
	Lowered *lower.Lowered
	Output  string
}

// GetFile returns the originating file path.
func (cu *CompileUnit) GetFile() string { return cu.File }
