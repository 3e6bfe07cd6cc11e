// Package lower performs the AST-to-AST rewrite of spec §4.4: flattening
// `else { if ... }` into `else if`, collecting per-scope cleanup lists,
// resolving method-call sites into concrete (function, receiver, args)
// triples, and rewriting `#defer stmt` into per-scope LIFO deferred-
// statement lists. Grounded on the teacher's Elaborator
// (internal/elaborate/elaborate.go): a single-purpose struct with one
// entry point that rewrites a whole program, retargeted from
// surface-AST-to-Core-ANF to Czar's AST-to-annotated-AST.
package lower

import (
	"github.com/shkschneider/czar/internal/ast"
	"github.com/shkschneider/czar/internal/typecheck"
)

// ResolvedCall is a method or free-function call site resolved to its
// concrete callee, receiver expression (nil for free functions), and
// positionally-ordered argument list. Static `T::m(...)` calls are not
// resolved here.
type ResolvedCall struct {
	FuncName string
	Receiver ast.Expr // nil if no receiver synthesis is needed
	Args     []ast.Expr
	Fn       *ast.FnDecl // nil when the callee could not be resolved
}

// ExitAction is one action run when a scope frame exits: either freeing
// a heap-owning binding or replaying a #defer statement. Both kinds share
// a single ordered list per frame so that frees and defers interleave in
// true reverse-declaration (LIFO) order, per spec §4.3/§4.4.
type ExitAction struct {
	FreeName string   // non-empty: emit a deallocation of this binding
	Struct   string   // struct type of FreeName, for destructor emission
	Stmt     ast.Stmt // non-nil: replay this #defer'd statement
}

// Lowered is the lowering stage's output, consumed by internal/codegen.
type Lowered struct {
	File    *ast.File
	Structs map[string]*ast.StructDecl
	Funcs   *typecheck.FuncTable

	// Cleanup maps each block to its exit actions (owner frees and
	// #defer replays interleaved) in LIFO order, run when control falls
	// off the end of the block without an explicit return.
	Cleanup map[*ast.Block][]ExitAction

	// ReturnCleanup maps each Return to the exit actions of every active
	// frame at that point, innermost first, per spec §4.3.
	ReturnCleanup map[*ast.Return][][]ExitAction

	// Calls maps each method Call, and each Call of a declared free
	// function, to its resolved form.
	Calls map[*ast.Call]*ResolvedCall

	// FreeStructs maps each explicit `free name;` statement to the struct
	// type of the freed binding, so the emitter can insert the destructor
	// call before the deallocation (spec §4.5).
	FreeStructs map[*ast.Free]string
}

// Lowerer performs the rewrite. It assumes the input is well-typed (the
// driver aborts before reaching this stage otherwise, per spec §7).
type Lowerer struct {
	structs map[string]*ast.StructDecl
	funcs   *typecheck.FuncTable
	out     *Lowered
}

// New builds a Lowerer over the struct and function tables produced by
// the type checker.
func New(structs map[string]*ast.StructDecl, funcs *typecheck.FuncTable) *Lowerer {
	return &Lowerer{structs: structs, funcs: funcs}
}

// Lower rewrites f and returns the annotated Lowered result.
func (l *Lowerer) Lower(f *ast.File) *Lowered {
	l.out = &Lowered{
		File:          f,
		Structs:       l.structs,
		Funcs:         l.funcs,
		Cleanup:       make(map[*ast.Block][]ExitAction),
		ReturnCleanup: make(map[*ast.Return][][]ExitAction),
		Calls:         make(map[*ast.Call]*ResolvedCall),
		FreeStructs:   make(map[*ast.Free]string),
	}
	for _, d := range f.Decls {
		if fn, ok := d.(*ast.FnDecl); ok {
			l.lowerFn(fn)
		}
	}
	return l.out
}

// lowerFn walks fn's body in a single frame holding both the parameters
// and the body's own declarations: a function body is one scope, not a
// parameter frame with a nested block frame.
func (l *Lowerer) lowerFn(fn *ast.FnDecl) {
	frame := newOwnerFrame(nil)
	for _, p := range fn.Params {
		if p.Name == "self" && fn.ReceiverType != "" {
			frame.declareStruct(p.Name, fn.ReceiverType)
		} else {
			frame.declareStruct(p.Name, structNameOfType(p.Type))
		}
	}
	for _, s := range fn.Body.Statements {
		l.lowerStmt(s, frame)
	}
	l.out.Cleanup[fn.Body] = frame.pendingActions()
}

// structNameOfType extracts the struct name a declared Type refers to, if
// any (Named whose name isn't a primitive, or a pointer chain ending in
// one).
func structNameOfType(t ast.Type) string {
	switch tt := t.(type) {
	case *ast.Named:
		if !ast.IsPrimitive(tt.Name) {
			return tt.Name
		}
	case *ast.Pointer:
		return structNameOfType(tt.To)
	}
	return ""
}
