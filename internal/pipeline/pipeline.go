package pipeline

import (
	"github.com/shkschneider/czar/internal/codegen"
	"github.com/shkschneider/czar/internal/diag"
	"github.com/shkschneider/czar/internal/lexer"
	"github.com/shkschneider/czar/internal/lower"
	"github.com/shkschneider/czar/internal/parser"
	"github.com/shkschneider/czar/internal/typecheck"
)

// New starts a CompileUnit for the given source.
func New(file, source string) *CompileUnit {
	return &CompileUnit{File: file, Source: source}
}

// RunLex lexes the unit's source, recording any diagnostics into d.
func (cu *CompileUnit) RunLex(d *diag.List) {
	cu.Tokens = lexer.Lex(cu.Source, cu.File, d)
}

// RunParse parses the unit's source into an AST, independent of RunLex
// (the parser drives its own lexer internally, per internal/parser.New).
func (cu *CompileUnit) RunParse(d *diag.List) {
	cu.AST = parser.New(cu.Source, cu.File, d).Parse()
}

// RunCheck type-checks the parsed AST. Callers must check d.HasErrors()
// after RunParse before calling this, per spec §7's propagation policy.
func (cu *CompileUnit) RunCheck(d *diag.List) {
	cu.Checked = typecheck.New(d).Check(cu.AST)
}

// RunLower lowers the checked AST. Callers must check d.HasErrors() after
// RunCheck before calling this.
func (cu *CompileUnit) RunLower() {
	cu.Lowered = lower.New(cu.Checked.Structs, cu.Checked.Funcs).Lower(cu.Checked.File)
}

// RunEmit generates the C11 translation unit from the lowered AST.
func (cu *CompileUnit) RunEmit(debug codegen.DebugConfig) {
	cu.Output = codegen.New(debug).Emit(cu.Lowered)
}

// Compile runs every stage in order, stopping early (and returning false)
// the moment d accumulates an error, per spec §7: each stage boundary is
// a hard gate, not best-effort continuation into the next stage.
func Compile(file, source string, d *diag.List, debug codegen.DebugConfig) (*CompileUnit, bool) {
	cu := New(file, source)
	cu.RunParse(d)
	if d.HasErrors() {
		return cu, false
	}
	cu.RunCheck(d)
	if d.HasErrors() {
		return cu, false
	}
	cu.RunLower()
	cu.RunEmit(debug)
	return cu, true
}
